package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Delivery channels. Email is the only supported channel for now.
const (
	ChannelEmail = "email"
)

type Route struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	Channel         string    `json:"channel"`
	IsActive        bool      `json:"is_active"`
	RecipientEmails string    `json:"recipient_emails"`
	CreatedAt       time.Time `json:"created_at"`
}

// Recipients splits the stored comma-separated address list, dropping
// empty entries.
func (r *Route) Recipients() []string {
	var out []string
	for _, addr := range strings.Split(r.RecipientEmails, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
