package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/changedesk-api/internal/models"
	appErrors "github.com/noah-isme/changedesk-api/pkg/errors"
)

// SessionRepository keeps gateway sessions in Redis as JSON with a TTL.
type SessionRepository struct {
	client *redis.Client
	prefix string
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(client *redis.Client, prefix string) *SessionRepository {
	if prefix == "" {
		prefix = "changedesk:session:"
	}
	return &SessionRepository{client: client, prefix: prefix}
}

func (r *SessionRepository) key(id string) string {
	return r.prefix + id
}

// Save stores sess for ttl.
func (r *SessionRepository) Save(ctx context.Context, sess *models.Session, ttl time.Duration) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", sess.ID, err)
	}
	if err := r.client.Set(ctx, r.key(sess.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Get loads a session; a missing key is reported as ErrCacheMiss.
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	raw, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sess, nil
}

// Delete removes a session.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}
