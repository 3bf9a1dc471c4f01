package ports

import (
	"context"

	"github.com/palettekit/palette-api/internal/core/domain"
)

// NewPalette carries the fields needed to create a palette.
type NewPalette struct {
	OwnerID     string
	Name        string
	Description string
	Tags        []string
	Tokens      map[string]string
}

// PaletteListQuery filters and pages an owner's palettes.
type PaletteListQuery struct {
	Query  string
	Limit  int
	Offset int
}

// PaletteList is one page of results plus the unpaged total.
type PaletteList struct {
	Total   int              `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
	HasMore bool             `json:"hasMore"`
	Items   []domain.Palette `json:"items"`
}

// PaletteRepository persists palettes in the document store, always scoped
// to an owner except for public share lookups.
type PaletteRepository interface {
	Create(ctx context.Context, input NewPalette) (*domain.Palette, error)
	ListByOwner(ctx context.Context, ownerID string, query PaletteListQuery) (*PaletteList, error)
	FindByIDForOwner(ctx context.Context, paletteID, ownerID string) (*domain.Palette, error)
	FindByShareID(ctx context.Context, shareID string) (*domain.Palette, error)
	UpdateForOwner(ctx context.Context, paletteID, ownerID string, patch domain.PalettePatch) (*domain.Palette, error)
	DeleteForOwner(ctx context.Context, paletteID, ownerID string) error
}
