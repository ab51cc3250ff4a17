package store

import (
	"context"
	"errors"

	"github.com/novapay/backend/internal/model/payment"
)

var (
	// ErrNotFound indicates the session id does not resolve to a stored record.
	ErrNotFound = errors.New("session not found")
	// ErrUnavailable indicates the backing store could not be reached.
	ErrUnavailable = errors.New("store unavailable")
)

// Store persists payment sessions keyed by session id.
//
// Update runs the mutation as a per-key critical section: the record read by
// the callback is the record the write is applied to, so two concurrent
// updates of the same session cannot interleave. A mutation error aborts the
// update and is returned unchanged; the stored record is left untouched.
type Store interface {
	Get(ctx context.Context, id string) (payment.Session, error)
	Put(ctx context.Context, session payment.Session) error
	Update(ctx context.Context, id string, mutate func(*payment.Session) error) (payment.Session, error)
}
