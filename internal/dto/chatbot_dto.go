package dto

import "pdf-chat-be/internal/entity"

type AskRequest struct {
	Question string `json:"question" validate:"max=4000"`
	ApiKey   string `json:"api_key" validate:"omitempty,max=512"`
}

type AskResponse struct {
	Message entity.Message `json:"message"`
	Window  *entity.Window `json:"window"`
}

type GetMessagesResponse struct {
	Messages []entity.Message `json:"messages"`
	Window   *entity.Window   `json:"window"`
}
