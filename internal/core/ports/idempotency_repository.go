package ports

import (
	"context"

	"github.com/palettekit/palette-api/internal/core/domain"
)

// IdempotencyFilter identifies one (owner, key, scope, resourceType) tuple.
type IdempotencyFilter struct {
	OwnerID      string
	Key          string
	Scope        string
	ResourceType string
}

// IdempotencyEntry is the payload recorded after a creating mutation.
type IdempotencyEntry struct {
	OwnerID      string
	Key          string
	Scope        string
	ResourceType string
	ResourceID   string
}

// IdempotencyRepository records which resource a creating request produced so
// a retried request returns the original result instead of duplicating it.
type IdempotencyRepository interface {
	// FindActiveRecord returns the non-expired record matching the filter, or
	// nil when none exists.
	FindActiveRecord(ctx context.Context, filter IdempotencyFilter) (*domain.IdempotencyRecord, error)
	// Remember supersedes any prior record for the same tuple, prunes expired
	// records and caps the collection size, all in one atomic update.
	Remember(ctx context.Context, entry IdempotencyEntry) (*domain.IdempotencyRecord, error)
}
