package entity

// Document is identified by its original filename.
type Document struct {
	FileName    string `json:"file_name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// Candidate is a selected document and its bytes, not yet ingested.
type Candidate struct {
	Document
	Data []byte `json:"-"`
}

// Chunk is an immutable unit of extracted text. Start and End are rune offsets
// into the extracted text of Page (1-based).
type Chunk struct {
	Index int    `json:"index"`
	Page  int    `json:"page"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// ChunkResult is what a chunking run reports back, locally or from the chunk trigger.
type ChunkResult struct {
	Type    string  `json:"type"`
	Message string  `json:"message"`
	Docs    []Chunk `json:"docs"`
}

// Snapshot is a consistent read of the current document's chunk set.
type Snapshot struct {
	FileName string
	Chunks   []Chunk
	Version  uint64
}

func (s Snapshot) Empty() bool {
	return len(s.Chunks) == 0
}
