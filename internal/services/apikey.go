package services

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/formgate/formgate-api/internal/database"
	"github.com/formgate/formgate-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrAPIKeyNotFound    = errors.New("api key not found")
	ErrAPIKeyInvalid     = errors.New("invalid api key")
	ErrAPIKeyRevoked     = errors.New("api key has been revoked")
	ErrRouteHasActiveKey = errors.New("route already has an active api key")
)

const (
	apiKeyRandomLen = 32
	apiKeyPrefixLen = 8
)

type APIKeyService struct {
	db     *database.DB
	secret []byte
}

func NewAPIKeyService(db *database.DB, secret string) *APIKeyService {
	return &APIKeyService{db: db, secret: []byte(secret)}
}

// HashKey computes the keyed one-way hash under which raw secrets are
// stored. HMAC-SHA256 rather than a bare hash, so a leaked table cannot
// be brute-forced without the server secret.
func (s *APIKeyService) HashKey(raw string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

// GenerateKey produces a fresh raw secret plus its stored hash and the
// short prefix kept visible for identification.
func (s *APIKeyService) GenerateKey() (raw, keyHash, prefix string) {
	randomBytes := make([]byte, apiKeyRandomLen)
	_, _ = rand.Read(randomBytes)
	raw = base64.RawURLEncoding.EncodeToString(randomBytes)
	return raw, s.HashKey(raw), raw[:apiKeyPrefixLen]
}

// Issue creates a key bound to a route owned by the user. The raw secret
// is returned exactly once and never stored. The partial unique index on
// active route bindings rejects a second active key for the same route,
// so concurrent issuance settles on a single winner.
func (s *APIKeyService) Issue(ctx context.Context, userID, routeID uuid.UUID) (*models.APIKey, string, error) {
	raw, keyHash, prefix := s.GenerateKey()

	var key models.APIKey
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO api_keys (user_id, key_hash, prefix, route_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, key_hash, prefix, is_active, revoked_at, route_id, last_used_at, usage_count, created_at
	`, userID, keyHash, prefix, routeID).Scan(
		&key.ID, &key.UserID, &key.KeyHash, &key.Prefix, &key.IsActive,
		&key.RevokedAt, &key.RouteID, &key.LastUsedAt, &key.UsageCount, &key.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, "", ErrRouteHasActiveKey
		}
		return nil, "", err
	}

	return &key, raw, nil
}

// Authenticate resolves a raw secret to its owner and key record. A hash
// match on a revoked key is reported distinctly from no match at all.
func (s *APIKeyService) Authenticate(ctx context.Context, raw string) (*models.User, *models.APIKey, error) {
	keyHash := s.HashKey(raw)

	var user models.User
	var key models.APIKey
	err := s.db.Pool.QueryRow(ctx, `
		SELECT k.id, k.user_id, k.key_hash, k.prefix, k.is_active, k.revoked_at,
		       k.route_id, k.last_used_at, k.usage_count, k.created_at,
		       u.id, u.email, u.name, u.created_at
		FROM api_keys k
		JOIN users u ON u.id = k.user_id
		WHERE k.key_hash = $1
	`, keyHash).Scan(
		&key.ID, &key.UserID, &key.KeyHash, &key.Prefix, &key.IsActive,
		&key.RevokedAt, &key.RouteID, &key.LastUsedAt, &key.UsageCount, &key.CreatedAt,
		&user.ID, &user.Email, &user.Name, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrAPIKeyInvalid
		}
		return nil, nil, fmt.Errorf("failed to look up api key: %w", err)
	}

	if !key.IsActive {
		return nil, nil, ErrAPIKeyRevoked
	}

	return &user, &key, nil
}

// List returns the user's keys, newest and active first. A non-empty
// search narrows by prefix.
func (s *APIKeyService) List(ctx context.Context, userID uuid.UUID, search string) ([]models.APIKey, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, user_id, key_hash, prefix, is_active, revoked_at, route_id, last_used_at, usage_count, created_at
		FROM api_keys
		WHERE user_id = $1 AND ($2 = '' OR prefix LIKE $2 || '%')
		ORDER BY is_active DESC, created_at DESC
	`, userID, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(
			&k.ID, &k.UserID, &k.KeyHash, &k.Prefix, &k.IsActive,
			&k.RevokedAt, &k.RouteID, &k.LastUsedAt, &k.UsageCount, &k.CreatedAt,
		); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *APIKeyService) GetByID(ctx context.Context, keyID, userID uuid.UUID) (*models.APIKey, error) {
	var k models.APIKey
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, user_id, key_hash, prefix, is_active, revoked_at, route_id, last_used_at, usage_count, created_at
		FROM api_keys
		WHERE id = $1 AND user_id = $2
	`, keyID, userID).Scan(
		&k.ID, &k.UserID, &k.KeyHash, &k.Prefix, &k.IsActive,
		&k.RevokedAt, &k.RouteID, &k.LastUsedAt, &k.UsageCount, &k.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAPIKeyNotFound
		}
		return nil, err
	}
	return &k, nil
}

// Revoke soft-deletes a key. Revoking an already-revoked key is a no-op
// success; revoked_at keeps the timestamp of the first revocation.
func (s *APIKeyService) Revoke(ctx context.Context, keyID, userID uuid.UUID) (*models.APIKey, error) {
	var k models.APIKey
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE api_keys
		SET is_active = FALSE, revoked_at = COALESCE(revoked_at, NOW())
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, key_hash, prefix, is_active, revoked_at, route_id, last_used_at, usage_count, created_at
	`, keyID, userID).Scan(
		&k.ID, &k.UserID, &k.KeyHash, &k.Prefix, &k.IsActive,
		&k.RevokedAt, &k.RouteID, &k.LastUsedAt, &k.UsageCount, &k.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAPIKeyNotFound
		}
		return nil, err
	}
	return &k, nil
}

// RecordUse bumps the key's usage counter and last-used stamp in a single
// statement, safe under concurrent sends through the same key.
func (s *APIKeyService) RecordUse(ctx context.Context, keyID uuid.UUID) error {
	_, err := s.db.Pool.Exec(ctx, `
		UPDATE api_keys SET usage_count = usage_count + 1, last_used_at = NOW() WHERE id = $1
	`, keyID)
	return err
}
