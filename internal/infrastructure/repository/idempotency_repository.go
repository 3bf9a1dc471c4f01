package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/palettekit/palette-api/internal/core/domain"
	"github.com/palettekit/palette-api/internal/core/ports"
	"github.com/palettekit/palette-api/internal/infrastructure/store"
)

const (
	defaultIdempotencyTTL        = 24 * time.Hour
	defaultMaxIdempotencyRecords = 5000
)

// IdempotencyRepository persists idempotency records in the document store.
type IdempotencyRepository struct {
	store      *store.Store
	ttl        time.Duration
	maxRecords int
}

func NewIdempotencyRepository(st *store.Store, ttl time.Duration, maxRecords int) *IdempotencyRepository {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	if maxRecords <= 0 {
		maxRecords = defaultMaxIdempotencyRecords
	}
	return &IdempotencyRepository{store: st, ttl: ttl, maxRecords: maxRecords}
}

// FindActiveRecord returns the non-expired record for the tuple, or nil.
func (r *IdempotencyRepository) FindActiveRecord(ctx context.Context, filter ports.IdempotencyFilter) (*domain.IdempotencyRecord, error) {
	doc, err := r.store.Read(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for _, rec := range doc.IdempotencyRecords {
		if rec.Active(now) && rec.Matches(filter.OwnerID, filter.Key, filter.Scope, filter.ResourceType) {
			found := rec
			return &found, nil
		}
	}
	return nil, nil
}

// Remember records the resource produced for the tuple. In one atomic update
// it prunes expired records, supersedes any prior record for the same tuple,
// appends the new one, and evicts the oldest overflow past maxRecords.
func (r *IdempotencyRepository) Remember(ctx context.Context, entry ports.IdempotencyEntry) (*domain.IdempotencyRecord, error) {
	now := time.Now().UTC()
	record := domain.IdempotencyRecord{
		ID:           uuid.NewString(),
		OwnerID:      entry.OwnerID,
		Key:          entry.Key,
		Scope:        entry.Scope,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		CreatedAt:    now,
		ExpiresAt:    now.Add(r.ttl),
	}

	return store.UpdateResult(ctx, r.store, func(doc *store.Document) (*domain.IdempotencyRecord, error) {
		kept := make([]domain.IdempotencyRecord, 0, len(doc.IdempotencyRecords)+1)
		for _, rec := range doc.IdempotencyRecords {
			if !rec.Active(now) {
				continue
			}
			if rec.Matches(record.OwnerID, record.Key, record.Scope, record.ResourceType) {
				continue
			}
			kept = append(kept, rec)
		}

		kept = append(kept, record)
		if overflow := len(kept) - r.maxRecords; overflow > 0 {
			kept = kept[overflow:]
		}

		doc.IdempotencyRecords = kept
		return &record, nil
	})
}
