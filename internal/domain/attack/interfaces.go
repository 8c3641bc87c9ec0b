package attack

import (
	"context"

	"github.com/galleonship/galleon/internal/domain/ledger"
)

// Repository provides persistence for attack records. Apply executes the
// whole attack (the segment update, the attack record, and the ledger
// event) inside a single transaction, returning repository.ErrDuplicate
// when the record's dedupe key already exists.
type Repository interface {
	Apply(ctx context.Context, ev *ledger.Event, rec *Record) error
	DedupeKeyExists(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, userID string, limit int) ([]Record, error)
}
