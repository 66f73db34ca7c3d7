package constant

const (
	MaxFileSizeMB    = 16
	MaxFileSizeBytes = MaxFileSizeMB * 1024 * 1024

	ContentTypePDF = "application/pdf"

	StatusIdle    = "idle"
	StatusLoading = "loading"
	StatusSuccess = "success"
	StatusError   = "error"

	// Result types reported by the chunk trigger
	ChunkResultSuccess = "success"
	ChunkResultError   = "error"
	ChunkResultNeutral = "neutral"

	StatusMessageNoFileChosen  = "Please choose a PDF first!"
	StatusMessageAlreadyLoaded = "That PDF is already loaded!"
	StatusMessageLoading       = "Loading \"%s\"..."
	StatusMessageLoaded        = "Loaded!"
	StatusMessageNoText        = "No text could be found in \"%s\". Scanned or image-only PDFs are not supported."
	StatusMessageBrokerFailed  = "Could not get an upload target for \"%s\"."
	StatusMessageUploadFailed  = "Upload to S3 bucket failed. \n %d %s"
	StatusMessageTriggerFailed = "Splitting \"%s\" into chunks failed."
	StatusMessageTooLarge      = "PDF is too large :( Max size is 16 MB"
)
