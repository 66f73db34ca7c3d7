package entity

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	Id        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	Type      string    `json:"type"` // "request" | "response"
	CreatedAt time.Time `json:"created_at"`
}

// Window is the trailing exchange fed into the next query.
type Window struct {
	PreviousRequestText  string `json:"previous_request_text"`
	PreviousResponseText string `json:"previous_response_text"`
}
