package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/novapay/backend/internal/model/payment"
)

// maxUpdateRetries bounds optimistic-transaction retries under contention.
const maxUpdateRetries = 5

// RedisStore implements Store on an external Redis instance. Sessions are
// stored as JSON strings keyed by session id, matching the layout polling
// frontends already depend on.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an already-configured Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Ping verifies the Redis connection is usable.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Get retrieves a session by identifier.
func (s *RedisStore) Get(ctx context.Context, id string) (payment.Session, error) {
	raw, err := s.client.Get(ctx, id).Result()
	if errors.Is(err, redis.Nil) {
		return payment.Session{}, ErrNotFound
	}
	if err != nil {
		return payment.Session{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var session payment.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return payment.Session{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	return session, nil
}

// Put stores a session, replacing any record under the same id.
func (s *RedisStore) Put(ctx context.Context, session payment.Session) error {
	buf, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.ID, err)
	}
	if err := s.client.Set(ctx, session.ID, buf, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// mutateError carries a mutation callback error through the Watch machinery
// so it can be told apart from transport failures.
type mutateError struct{ err error }

func (e *mutateError) Error() string { return e.err.Error() }

// Update applies mutate inside a WATCH/MULTI optimistic transaction. If the
// key changes between read and write the transaction is retried, so a
// concurrent completion of the same session cannot be lost.
func (s *RedisStore) Update(ctx context.Context, id string, mutate func(*payment.Session) error) (payment.Session, error) {
	var updated payment.Session

	txn := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, id).Result()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		var session payment.Session
		if err := json.Unmarshal([]byte(raw), &session); err != nil {
			return fmt.Errorf("decode session %s: %w", id, err)
		}

		if err := mutate(&session); err != nil {
			return &mutateError{err: err}
		}

		buf, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("encode session %s: %w", id, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, id, buf, 0)
			return nil
		})
		if err != nil {
			return err
		}

		updated = session
		return nil
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := s.client.Watch(ctx, txn, id)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		var me *mutateError
		if errors.As(err, &me) {
			return payment.Session{}, me.err
		}
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnavailable) {
			return payment.Session{}, err
		}
		return payment.Session{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return payment.Session{}, fmt.Errorf("%w: update contention on session %s", ErrUnavailable, id)
}

var _ Store = (*RedisStore)(nil)
