package dto

import (
	"encoding/json"

	"github.com/google/uuid"
)

type MessageResponse struct {
	ID              uuid.UUID       `json:"id"`
	APIKeyID        uuid.UUID       `json:"apikey_id"`
	RecipientEmails string          `json:"recipient_emails"`
	VisitorEmail    string          `json:"visitor_email"`
	Subject         string          `json:"subject"`
	Body            json.RawMessage `json:"body"`
	Status          string          `json:"status"`
	Error           string          `json:"error,omitempty"`
	ImageURL        *string         `json:"image_url,omitempty"`
	AcceptedAt      string          `json:"accepted_at"`
	SentAt          *string         `json:"sent_at,omitempty"`
}
