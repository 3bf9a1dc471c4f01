package repository

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/palettekit/palette-api/internal/core/domain"
	"github.com/palettekit/palette-api/internal/core/ports"
	"github.com/palettekit/palette-api/internal/infrastructure/store"
)

const (
	defaultPaletteListLimit = 20
	maxPaletteListLimit     = 100
)

// PaletteRepository persists palettes in the document store.
type PaletteRepository struct {
	store *store.Store
}

func NewPaletteRepository(st *store.Store) *PaletteRepository {
	return &PaletteRepository{store: st}
}

func (r *PaletteRepository) Create(ctx context.Context, input ports.NewPalette) (*domain.Palette, error) {
	now := time.Now().UTC()
	palette := domain.Palette{
		ID:          uuid.NewString(),
		OwnerID:     input.OwnerID,
		Name:        input.Name,
		Description: input.Description,
		Tags:        input.Tags,
		Tokens:      input.Tokens,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if palette.Tags == nil {
		palette.Tags = []string{}
	}

	err := r.store.Update(ctx, func(doc *store.Document) error {
		doc.Palettes = append(doc.Palettes, palette)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &palette, nil
}

// ListByOwner returns the owner's palettes matching an optional free-text
// query, newest-updated first.
func (r *PaletteRepository) ListByOwner(ctx context.Context, ownerID string, query ports.PaletteListQuery) (*ports.PaletteList, error) {
	doc, err := r.store.Read(ctx)
	if err != nil {
		return nil, err
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultPaletteListLimit
	}
	if limit > maxPaletteListLimit {
		limit = maxPaletteListLimit
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}
	needle := strings.ToLower(strings.TrimSpace(query.Query))

	matched := make([]domain.Palette, 0, len(doc.Palettes))
	for _, p := range doc.Palettes {
		if p.OwnerID != ownerID {
			continue
		}
		if needle != "" && !paletteMatches(p, needle) {
			continue
		}
		matched = append(matched, p)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].UpdatedAt.Equal(matched[j].UpdatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})

	total := len(matched)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	page := matched[offset:end]

	return &ports.PaletteList{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: end < total,
		Items:   page,
	}, nil
}

func (r *PaletteRepository) FindByIDForOwner(ctx context.Context, paletteID, ownerID string) (*domain.Palette, error) {
	doc, err := r.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	palette := doc.PaletteForOwner(paletteID, ownerID)
	if palette == nil {
		return nil, domain.ErrPaletteNotFound
	}
	return palette, nil
}

func (r *PaletteRepository) FindByShareID(ctx context.Context, shareID string) (*domain.Palette, error) {
	doc, err := r.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	for i := range doc.Palettes {
		if doc.Palettes[i].ShareID == shareID && doc.Palettes[i].IsPublic {
			return &doc.Palettes[i], nil
		}
	}
	return nil, domain.ErrPaletteNotFound
}

// UpdateForOwner applies a partial update field by field; nil patch fields
// leave the stored value untouched.
func (r *PaletteRepository) UpdateForOwner(ctx context.Context, paletteID, ownerID string, patch domain.PalettePatch) (*domain.Palette, error) {
	return store.UpdateResult(ctx, r.store, func(doc *store.Document) (*domain.Palette, error) {
		palette := doc.PaletteForOwner(paletteID, ownerID)
		if palette == nil {
			return nil, domain.ErrPaletteNotFound
		}

		if patch.Name != nil {
			palette.Name = *patch.Name
		}
		if patch.Description != nil {
			palette.Description = *patch.Description
		}
		if patch.Tags != nil {
			palette.Tags = patch.Tags
		}
		if patch.Tokens != nil {
			palette.Tokens = patch.Tokens
		}
		if patch.IsPublic != nil {
			palette.IsPublic = *patch.IsPublic
		}
		if patch.ShareID != nil {
			palette.ShareID = *patch.ShareID
		}
		palette.UpdatedAt = time.Now().UTC()

		copied := *palette
		return &copied, nil
	})
}

func (r *PaletteRepository) DeleteForOwner(ctx context.Context, paletteID, ownerID string) error {
	return r.store.Update(ctx, func(doc *store.Document) error {
		for i := range doc.Palettes {
			if doc.Palettes[i].ID == paletteID && doc.Palettes[i].OwnerID == ownerID {
				doc.Palettes = append(doc.Palettes[:i], doc.Palettes[i+1:]...)
				return nil
			}
		}
		return domain.ErrPaletteNotFound
	})
}

func paletteMatches(p domain.Palette, needle string) bool {
	haystack := strings.ToLower(p.Name + " " + p.Description + " " + strings.Join(p.Tags, " "))
	return strings.Contains(haystack, needle)
}
