package constant

const (
	MessageTypeRequest  = "request"
	MessageTypeResponse = "response"

	// Roles understood by the generation providers
	LLMRoleSystem    = "system"
	LLMRoleUser      = "user"
	LLMRoleAssistant = "assistant"

	WelcomeMessage  = "Hey! Load a PDF and then ask a question :)"
	GreetingMessage = "Ask a question about the PDF :)"

	StatusMessageEmptyQuestion    = "Please type a question first!"
	StatusMessageNoDocument       = "Please load a PDF before asking a question!"
	StatusMessageMissingKey       = "Please enter an API key first!"
	StatusMessageGenerationFailed = "Something went wrong while answering: %s"
	StatusMessageDocumentChanged  = "The PDF changed while answering. Please ask again."
	StatusMessageQueryInFlight    = "Still answering the previous question."

	// WindowExchanges is how many completed request/response pairs are fed into the next query.
	WindowExchanges = 1

	DocumentQATaskPrompt = `You are a helpful assistant answering questions about a PDF document the user has loaded.
Answer using only the document excerpts provided below. Each excerpt is tagged with its page number.`

	DocumentQAGuidelinesPrompt = `Guidelines:
1. Base your answer strictly on the excerpts; do not add outside knowledge.
2. Cite the page numbers you relied on, e.g. (page 3).
3. If the excerpts do not contain the answer, say so honestly.
4. Use the previous exchange only to resolve follow-up references such as "it" or "that section".`
)
