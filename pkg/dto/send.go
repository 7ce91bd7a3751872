package dto

import (
	"encoding/json"
)

// SendRequest is the public intake payload. Body may be a JSON object or
// a bare string; `website` is the spam honeypot and must stay blank.
type SendRequest struct {
	VisitorEmail string          `json:"visitor_email"`
	Subject      string          `json:"subject"`
	Body         json.RawMessage `json:"body"`
	ImageURL     string          `json:"image_url,omitempty"`
	Website      string          `json:"website,omitempty"`
}

type SendResponse struct {
	Detail       string `json:"detail"`
	APIKeyPrefix string `json:"api_key_prefix"`
	MessageID    string `json:"message_id"`
	Status       string `json:"status"`
}

type ValidationErrorResponse struct {
	Detail string            `json:"detail"`
	Errors map[string]string `json:"errors"`
}
