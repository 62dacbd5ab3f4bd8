package shortener

import (
	"context"

	"github.com/ajith05/url-shortener/internal/canon"
)

// Repository is the mapping store. The unique constraint on code is the only
// cross-request synchronization point; no method takes an in-process lock.
//
// Errors carry errx kinds: NotFound on a miss, Conflict when an insert hits
// the code uniqueness constraint, Unavailable when the store cannot be reached.
type Repository interface {
	// InitSchema creates the table when absent. Idempotent.
	InitSchema(ctx context.Context) error

	// FindByTuple returns the code of the oldest record holding exactly t.
	FindByTuple(ctx context.Context, t canon.Tuple) (string, error)

	// FindByCode returns the record issued under code.
	FindByCode(ctx context.Context, code string) (Link, error)

	// Insert stores a new record.
	Insert(ctx context.Context, code string, t canon.Tuple) (Link, error)

	// InsertIfAbsent stores a new record unless code is taken, in which case
	// the existing record is returned with inserted set to false.
	InsertIfAbsent(ctx context.Context, code string, t canon.Tuple) (link Link, inserted bool, err error)
}
