package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/formgate/formgate-api/internal/database"
	"github.com/formgate/formgate-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageService is the intake ledger. Every accepted submission gets a
// row before any delivery attempt, and terminal status writes commit on
// their own so a failed send is never lost.
type MessageService struct {
	db *database.DB
}

func NewMessageService(db *database.DB) *MessageService {
	return &MessageService{db: db}
}

// CreateQueued persists a message in its initial state, snapshotting the
// route's recipient list so later route edits do not rewrite history.
func (s *MessageService) CreateQueued(ctx context.Context, keyID uuid.UUID, recipientEmails, visitorEmail, subject string, body json.RawMessage, attachment, imageURL *string) (*models.Message, error) {
	var m models.Message
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO messages (apikey_id, recipient_emails, visitor_email, subject, body, attachment, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, apikey_id, recipient_emails, visitor_email, subject, body, status, error, attachment, image_url, accepted_at, sent_at
	`, keyID, recipientEmails, visitorEmail, subject, body, attachment, imageURL).Scan(
		&m.ID, &m.APIKeyID, &m.RecipientEmails, &m.VisitorEmail, &m.Subject,
		&m.Body, &m.Status, &m.Error, &m.Attachment, &m.ImageURL, &m.AcceptedAt, &m.SentAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// MarkSent transitions queued -> sent. The WHERE clause keeps terminal
// states terminal.
func (s *MessageService) MarkSent(ctx context.Context, messageID uuid.UUID) error {
	_, err := s.db.Pool.Exec(ctx, `
		UPDATE messages SET status = $2, sent_at = NOW()
		WHERE id = $1 AND status = $3
	`, messageID, models.MessageStatusSent, models.MessageStatusQueued)
	return err
}

// MarkFailed transitions queued -> failed, recording the transport error
// and stamping sent_at with the attempt time.
func (s *MessageService) MarkFailed(ctx context.Context, messageID uuid.UUID, sendErr string) error {
	_, err := s.db.Pool.Exec(ctx, `
		UPDATE messages SET status = $2, error = $3, sent_at = NOW()
		WHERE id = $1 AND status = $4
	`, messageID, models.MessageStatusFailed, sendErr, models.MessageStatusQueued)
	return err
}

// List returns messages sent through any of the user's keys, newest
// first. A non-empty search matches the key hash fragment, a recipient,
// or the status.
func (s *MessageService) List(ctx context.Context, userID uuid.UUID, search string) ([]models.Message, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT m.id, m.apikey_id, m.recipient_emails, m.visitor_email, m.subject, m.body,
		       m.status, m.error, m.attachment, m.image_url, m.accepted_at, m.sent_at
		FROM messages m
		JOIN api_keys k ON k.id = m.apikey_id
		WHERE k.user_id = $1
		  AND ($2 = '' OR k.key_hash LIKE '%' || $2 || '%'
		       OR m.recipient_emails LIKE '%' || $2 || '%'
		       OR m.status = $2)
		ORDER BY m.accepted_at DESC
	`, userID, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(
			&m.ID, &m.APIKeyID, &m.RecipientEmails, &m.VisitorEmail, &m.Subject, &m.Body,
			&m.Status, &m.Error, &m.Attachment, &m.ImageURL, &m.AcceptedAt, &m.SentAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (s *MessageService) GetByID(ctx context.Context, messageID, userID uuid.UUID) (*models.Message, error) {
	var m models.Message
	err := s.db.Pool.QueryRow(ctx, `
		SELECT m.id, m.apikey_id, m.recipient_emails, m.visitor_email, m.subject, m.body,
		       m.status, m.error, m.attachment, m.image_url, m.accepted_at, m.sent_at
		FROM messages m
		JOIN api_keys k ON k.id = m.apikey_id
		WHERE m.id = $1 AND k.user_id = $2
	`, messageID, userID).Scan(
		&m.ID, &m.APIKeyID, &m.RecipientEmails, &m.VisitorEmail, &m.Subject, &m.Body,
		&m.Status, &m.Error, &m.Attachment, &m.ImageURL, &m.AcceptedAt, &m.SentAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &m, nil
}
