package driven

import (
	"context"

	"github.com/ericfisherdev/ptalbot/internal/domain/model"
)

// PTALStore defines the driven port for PTAL record persistence.
// FindByKey returns an empty slice, not an error, when nothing matches.
// Insert never rejects duplicates of the same pull request.
type PTALStore interface {
	FindByKey(ctx context.Context, key model.PRKey) ([]model.PTALRecord, error)
	Insert(ctx context.Context, record model.PTALRecord) (model.PTALRecord, error)
	ListAll(ctx context.Context) ([]model.PTALRecord, error)
	DeleteByKey(ctx context.Context, key model.PRKey) (int, error)
}
