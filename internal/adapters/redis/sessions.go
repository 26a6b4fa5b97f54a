package redis

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/communityhub/community-services/internal/domain"
)

// Sessions resolves bearer credentials to user identities. The sessions
// themselves are written by the authentication layer, which is an
// external collaborator; this side only reads and revokes.
type Sessions struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessions(client *redis.Client, ttl time.Duration) *Sessions {
	return &Sessions{client: client, ttl: ttl}
}

func sessionKey(token string) string {
	return "session:" + token
}

// Resolve returns the user id behind a bearer token, or ErrNotFound when
// the session does not exist or has expired.
func (s *Sessions) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	val, err := s.client.Get(ctx, sessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, domain.ErrNotFound
	}
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "resolve session")
	}
	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "corrupt session value")
	}
	return userID, nil
}

// Put stores a session. Used by tests and the auth collaborator's seeding.
func (s *Sessions) Put(ctx context.Context, token string, userID uuid.UUID) error {
	return s.client.Set(ctx, sessionKey(token), userID.String(), s.ttl).Err()
}

func (s *Sessions) Revoke(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token)).Err()
}
