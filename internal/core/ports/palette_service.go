package ports

import (
	"context"

	"github.com/palettekit/palette-api/internal/core/domain"
)

// CreatePaletteInput is the request shape for palette creation and import.
type CreatePaletteInput struct {
	Name        string
	Description string
	Tags        []string
	Tokens      map[string]string
}

// PaletteAnalytics summarizes an owner's collection.
type PaletteAnalytics struct {
	Total        int             `json:"total"`
	PublicCount  int             `json:"publicCount"`
	PrivateCount int             `json:"privateCount"`
	TopTags      []TagCount      `json:"topTags"`
	Recent       []PaletteDigest `json:"recent"`
}

type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

type PaletteDigest struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UpdatedAt string `json:"updatedAt"`
	IsPublic  bool   `json:"isPublic"`
}

// PaletteService owns palette CRUD plus sharing. Creating operations accept
// an optional client idempotency key; a retried request with the same key
// returns the palette created by the first one.
type PaletteService interface {
	CreateForUser(ctx context.Context, userID string, input CreatePaletteInput, idempotencyKey string) (*domain.Palette, error)
	ImportForUser(ctx context.Context, userID string, input CreatePaletteInput, idempotencyKey string) (*domain.Palette, error)
	ListForUser(ctx context.Context, userID string, query PaletteListQuery) (*PaletteList, error)
	GetByIDForUser(ctx context.Context, userID, paletteID string) (*domain.Palette, error)
	UpdateForUser(ctx context.Context, userID, paletteID string, patch domain.PalettePatch) (*domain.Palette, error)
	DeleteForUser(ctx context.Context, userID, paletteID string) error
	ShareForUser(ctx context.Context, userID, paletteID string) (*domain.Palette, error)
	UnshareForUser(ctx context.Context, userID, paletteID string) (*domain.Palette, error)
	GetPublicByShareID(ctx context.Context, shareID string) (*domain.Palette, error)
	AnalyticsForUser(ctx context.Context, userID string) (*PaletteAnalytics, error)
}
