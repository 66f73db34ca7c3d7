package dto

import "pdf-chat-be/internal/entity"

type GetStatusResponse struct {
	Status      entity.Status `json:"status"`
	Loading     bool          `json:"loading"`
	Answering   bool          `json:"answering"`
	LoadState   string        `json:"load_state,omitempty"`
	CurrentFile string        `json:"current_file,omitempty"`
}
