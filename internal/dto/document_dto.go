package dto

import "pdf-chat-be/internal/entity"

type SelectCandidateResponse struct {
	Candidate entity.Document `json:"candidate"`
}

type LoadDocumentResponse struct {
	State    string        `json:"state"`
	Status   entity.Status `json:"status"`
	FileName string        `json:"file_name"`
	Chunks   int           `json:"chunks"`
	Code     string        `json:"code,omitempty"`
}

type GetDocumentResponse struct {
	Document  *entity.Document `json:"document"`
	Candidate *entity.Document `json:"candidate"`
	Version   uint64           `json:"version"`
	Chunks    []entity.Chunk   `json:"chunks"`
}
