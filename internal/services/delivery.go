package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/formgate/formgate-api/internal/metrics"
	"github.com/formgate/formgate-api/internal/models"
)

// EmailSender is the outbound transport consumed by the pipeline.
// Implemented by EmailService; stubbed in tests.
type EmailSender interface {
	SendMessage(ctx context.Context, msg *models.Message) error
}

// Submission is a validated-not-yet payload posted to the send endpoint.
// Body arrives as raw JSON: either an object or a bare string.
type Submission struct {
	VisitorEmail string
	Subject      string
	Body         json.RawMessage
	ImageURL     string
	Honeypot     string

	AttachmentName string
	AttachmentSize int64
	Attachment     io.Reader
}

// TransmissionError reports a delivery attempt that failed after the
// message was durably recorded. The ledger row carries the reason.
type TransmissionError struct {
	Message *models.Message
	Err     error
}

func (e *TransmissionError) Error() string {
	return fmt.Sprintf("failed to send message %s: %v", e.Message.ID, e.Err)
}

func (e *TransmissionError) Unwrap() error {
	return e.Err
}

// DeliveryService runs the intake pipeline: route gate, payload
// validation, ledger write, synchronous send, terminal status, usage
// accounting. Gating failures reject before anything is persisted.
type DeliveryService struct {
	routes      *RouteService
	messages    *MessageService
	usage       *UsageService
	keys        *APIKeyService
	attachments *AttachmentStore
	sender      EmailSender
}

func NewDeliveryService(routes *RouteService, messages *MessageService, usage *UsageService, keys *APIKeyService, attachments *AttachmentStore, sender EmailSender) *DeliveryService {
	return &DeliveryService{
		routes:      routes,
		messages:    messages,
		usage:       usage,
		keys:        keys,
		attachments: attachments,
		sender:      sender,
	}
}

// Deliver processes one authenticated submission end to end. The returned
// message is in a terminal state; a *TransmissionError means the send
// failed but the failure is recorded on the ledger.
func (s *DeliveryService) Deliver(ctx context.Context, user *models.User, key *models.APIKey, sub *Submission) (*models.Message, error) {
	route, err := s.routes.ResolveForDelivery(ctx, key)
	if err != nil {
		return nil, err
	}

	if errs := validateSubmission(sub); len(errs) > 0 {
		return nil, errs
	}

	body, err := normalizeBody(sub.Body)
	if err != nil {
		return nil, FieldErrors{"body": "body must be a string or an object"}
	}

	var attachment *string
	if sub.Attachment != nil {
		path, err := s.attachments.Save(sub.AttachmentName, sub.Attachment)
		if err != nil {
			return nil, err
		}
		attachment = &path
	}

	var imageURL *string
	if sub.ImageURL != "" {
		imageURL = &sub.ImageURL
	}

	msg, err := s.messages.CreateQueued(ctx, key.ID, route.RecipientEmails, sub.VisitorEmail, sub.Subject, body, attachment, imageURL)
	if err != nil {
		if attachment != nil {
			if rmErr := s.attachments.Remove(*attachment); rmErr != nil {
				log.Printf("failed to remove orphaned attachment %s: %v", *attachment, rmErr)
			}
		}
		return nil, err
	}
	metrics.MessagesAccepted.Inc()

	if err := s.sender.SendMessage(ctx, msg); err != nil {
		if markErr := s.messages.MarkFailed(ctx, msg.ID, err.Error()); markErr != nil {
			log.Printf("failed to record delivery failure for message %s: %v", msg.ID, markErr)
		}
		msg.Status = models.MessageStatusFailed
		msg.Error = err.Error()
		metrics.MessagesFailed.Inc()
		return msg, &TransmissionError{Message: msg, Err: err}
	}

	if err := s.messages.MarkSent(ctx, msg.ID); err != nil {
		log.Printf("failed to record delivery success for message %s: %v", msg.ID, err)
	}
	msg.Status = models.MessageStatusSent
	metrics.MessagesSent.Inc()

	// Usage counts successful deliveries only. The email is already out,
	// so accounting trouble is logged rather than failing the request.
	if _, err := s.usage.Increment(ctx, user.ID); err != nil {
		log.Printf("failed to increment usage for user %s: %v", user.ID, err)
	}
	if err := s.keys.RecordUse(ctx, key.ID); err != nil {
		log.Printf("failed to record key use for key %s: %v", key.ID, err)
	}

	return msg, nil
}

// validateSubmission applies the payload gates. The honeypot rejection is
// shaped exactly like any other field error so scrapers learn nothing.
func validateSubmission(sub *Submission) FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(sub.VisitorEmail) == "" {
		errs["visitor_email"] = "this field is required"
	} else if !strings.Contains(sub.VisitorEmail, "@") || !strings.Contains(sub.VisitorEmail, ".") {
		errs["visitor_email"] = "invalid email address"
	}

	if strings.TrimSpace(sub.Subject) == "" {
		errs["subject"] = "this field is required"
	}

	if len(sub.Body) == 0 || string(sub.Body) == "null" {
		errs["body"] = "this field is required"
	}

	if sub.Honeypot != "" {
		errs["website"] = "invalid value"
	}

	if sub.Attachment != nil {
		if err := ValidateAttachment(sub.AttachmentName, sub.AttachmentSize); err != nil {
			errs["attachments"] = err.Error()
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// normalizeBody keeps stored bodies structured: a bare string becomes a
// single-field form, objects pass through untouched.
func normalizeBody(raw json.RawMessage) (json.RawMessage, error) {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		return raw, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return nil, err
	}
	return json.Marshal(map[string]string{"message": text})
}
