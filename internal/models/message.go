package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message lifecycle. Transitions run queued -> sent or queued -> failed,
// never backward.
const (
	MessageStatusQueued = "queued"
	MessageStatusSent   = "sent"
	MessageStatusFailed = "failed"
)

type Message struct {
	ID              uuid.UUID       `json:"id"`
	APIKeyID        uuid.UUID       `json:"apikey_id"`
	RecipientEmails string          `json:"recipient_emails"`
	VisitorEmail    string          `json:"visitor_email"`
	Subject         string          `json:"subject"`
	Body            json.RawMessage `json:"body"`
	Status          string          `json:"status"`
	Error           string          `json:"error,omitempty"`
	Attachment      *string         `json:"attachment,omitempty"`
	ImageURL        *string         `json:"image_url,omitempty"`
	AcceptedAt      time.Time       `json:"accepted_at"`
	SentAt          *time.Time      `json:"sent_at,omitempty"`
}

// Recipients splits the snapshotted comma-separated address list.
func (m *Message) Recipients() []string {
	var out []string
	for _, addr := range strings.Split(m.RecipientEmails, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
