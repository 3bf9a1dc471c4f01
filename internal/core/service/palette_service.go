package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/palettekit/palette-api/internal/core/domain"
	"github.com/palettekit/palette-api/internal/core/ports"
)

const (
	maxPaletteNameLength        = 120
	maxPaletteDescriptionLength = 360
	maxPaletteTags              = 10
	maxPaletteTagLength         = 36

	scopePaletteCreate = "palettes:create"
	scopePaletteImport = "palettes:import"
	resourceTypePalette = "palette"
)

// PaletteService owns palette CRUD and sharing. Creating operations consult
// the idempotency repository before mutating and record the outcome after,
// so an unsafe-to-retry request replayed with the same key returns the
// palette created the first time.
type PaletteService struct {
	palettes    ports.PaletteRepository
	idempotency ports.IdempotencyRepository
	logger      zerolog.Logger
}

func NewPaletteService(palettes ports.PaletteRepository, idempotency ports.IdempotencyRepository, logger zerolog.Logger) *PaletteService {
	return &PaletteService{palettes: palettes, idempotency: idempotency, logger: logger}
}

func (s *PaletteService) CreateForUser(ctx context.Context, userID string, input ports.CreatePaletteInput, idempotencyKey string) (*domain.Palette, error) {
	return s.createWithIdempotency(ctx, userID, input, idempotencyKey, scopePaletteCreate)
}

// ImportForUser accepts an externally produced palette payload. It shares the
// create path but a different idempotency scope, so the same key may be used
// once per operation kind.
func (s *PaletteService) ImportForUser(ctx context.Context, userID string, input ports.CreatePaletteInput, idempotencyKey string) (*domain.Palette, error) {
	if input.Name == "" {
		input.Name = "Imported palette"
	}
	if len(input.Tags) == 0 {
		input.Tags = []string{"imported"}
	}
	return s.createWithIdempotency(ctx, userID, input, idempotencyKey, scopePaletteImport)
}

func (s *PaletteService) createWithIdempotency(ctx context.Context, userID string, input ports.CreatePaletteInput, idempotencyKey, scope string) (*domain.Palette, error) {
	if idempotencyKey != "" {
		prior, err := s.idempotency.FindActiveRecord(ctx, ports.IdempotencyFilter{
			OwnerID:      userID,
			Key:          idempotencyKey,
			Scope:        scope,
			ResourceType: resourceTypePalette,
		})
		if err != nil {
			return nil, err
		}
		if prior != nil {
			existing, findErr := s.palettes.FindByIDForOwner(ctx, prior.ResourceID, userID)
			if findErr == nil {
				s.logger.Info().
					Str("userId", userID).
					Str("paletteId", existing.ID).
					Str("scope", scope).
					Msg("idempotent replay")
				return existing, nil
			}
			// The recorded palette is gone; fall through and create anew.
			if !errors.Is(findErr, domain.ErrPaletteNotFound) {
				return nil, findErr
			}
		}
	}

	normalized, err := normalizePaletteInput(input)
	if err != nil {
		return nil, err
	}
	normalized.OwnerID = userID

	created, err := s.palettes.Create(ctx, normalized)
	if err != nil {
		return nil, err
	}

	if idempotencyKey != "" {
		if _, err := s.idempotency.Remember(ctx, ports.IdempotencyEntry{
			OwnerID:      userID,
			Key:          idempotencyKey,
			Scope:        scope,
			ResourceType: resourceTypePalette,
			ResourceID:   created.ID,
		}); err != nil {
			return nil, err
		}
	}

	s.logger.Info().Str("userId", userID).Str("paletteId", created.ID).Msg("palette created")
	return created, nil
}

func (s *PaletteService) ListForUser(ctx context.Context, userID string, query ports.PaletteListQuery) (*ports.PaletteList, error) {
	query.Query = domain.SanitizeText(query.Query, maxPaletteNameLength)
	return s.palettes.ListByOwner(ctx, userID, query)
}

func (s *PaletteService) GetByIDForUser(ctx context.Context, userID, paletteID string) (*domain.Palette, error) {
	palette, err := s.palettes.FindByIDForOwner(ctx, paletteID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrPaletteNotFound) {
			return nil, domain.NewPaletteNotFoundError()
		}
		return nil, err
	}
	return palette, nil
}

func (s *PaletteService) UpdateForUser(ctx context.Context, userID, paletteID string, patch domain.PalettePatch) (*domain.Palette, error) {
	if patch.Name != nil {
		name := domain.SanitizeText(*patch.Name, maxPaletteNameLength)
		patch.Name = &name
	}
	if patch.Description != nil {
		description := domain.SanitizeText(*patch.Description, maxPaletteDescriptionLength)
		patch.Description = &description
	}
	if patch.Tags != nil {
		patch.Tags = domain.SanitizeStringList(patch.Tags, maxPaletteTags, maxPaletteTagLength)
	}
	if patch.Tokens != nil {
		tokens, err := normalizeTokens(patch.Tokens)
		if err != nil {
			return nil, err
		}
		patch.Tokens = tokens
	}

	updated, err := s.palettes.UpdateForOwner(ctx, paletteID, userID, patch)
	if err != nil {
		if errors.Is(err, domain.ErrPaletteNotFound) {
			return nil, domain.NewPaletteNotFoundError()
		}
		return nil, err
	}
	return updated, nil
}

func (s *PaletteService) DeleteForUser(ctx context.Context, userID, paletteID string) error {
	if err := s.palettes.DeleteForOwner(ctx, paletteID, userID); err != nil {
		if errors.Is(err, domain.ErrPaletteNotFound) {
			return domain.NewPaletteNotFoundError()
		}
		return err
	}
	return nil
}

// ShareForUser makes the palette publicly reachable under a stable share id.
// Sharing an already shared palette keeps its existing id.
func (s *PaletteService) ShareForUser(ctx context.Context, userID, paletteID string) (*domain.Palette, error) {
	palette, err := s.GetByIDForUser(ctx, userID, paletteID)
	if err != nil {
		return nil, err
	}

	shareID := palette.ShareID
	if shareID == "" {
		shareID = newShareID()
	}
	isPublic := true

	return s.UpdateForUser(ctx, userID, paletteID, domain.PalettePatch{
		IsPublic: &isPublic,
		ShareID:  &shareID,
	})
}

func (s *PaletteService) UnshareForUser(ctx context.Context, userID, paletteID string) (*domain.Palette, error) {
	isPublic := false
	empty := ""
	return s.UpdateForUser(ctx, userID, paletteID, domain.PalettePatch{
		IsPublic: &isPublic,
		ShareID:  &empty,
	})
}

func (s *PaletteService) GetPublicByShareID(ctx context.Context, shareID string) (*domain.Palette, error) {
	palette, err := s.palettes.FindByShareID(ctx, domain.SanitizeText(shareID, 64))
	if err != nil {
		if errors.Is(err, domain.ErrPaletteNotFound) {
			return nil, domain.NewPublicPaletteNotFoundError()
		}
		return nil, err
	}
	return palette, nil
}

// AnalyticsForUser summarizes the owner's collection: visibility split, most
// used tags, and the most recently updated palettes.
func (s *PaletteService) AnalyticsForUser(ctx context.Context, userID string) (*ports.PaletteAnalytics, error) {
	list, err := s.palettes.ListByOwner(ctx, userID, ports.PaletteListQuery{Limit: 1000})
	if err != nil {
		return nil, err
	}

	publicCount := 0
	tagCounts := make(map[string]int)
	for _, p := range list.Items {
		if p.IsPublic {
			publicCount++
		}
		for _, tag := range p.Tags {
			tagCounts[tag]++
		}
	}

	topTags := make([]ports.TagCount, 0, len(tagCounts))
	for tag, count := range tagCounts {
		topTags = append(topTags, ports.TagCount{Tag: tag, Count: count})
	}
	sort.Slice(topTags, func(i, j int) bool {
		if topTags[i].Count == topTags[j].Count {
			return topTags[i].Tag < topTags[j].Tag
		}
		return topTags[i].Count > topTags[j].Count
	})
	if len(topTags) > 6 {
		topTags = topTags[:6]
	}

	recent := make([]ports.PaletteDigest, 0, 5)
	for _, p := range list.Items {
		recent = append(recent, ports.PaletteDigest{
			ID:        p.ID,
			Name:      p.Name,
			UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
			IsPublic:  p.IsPublic,
		})
		if len(recent) == 5 {
			break
		}
	}

	return &ports.PaletteAnalytics{
		Total:        list.Total,
		PublicCount:  publicCount,
		PrivateCount: list.Total - publicCount,
		TopTags:      topTags,
		Recent:       recent,
	}, nil
}

func normalizePaletteInput(input ports.CreatePaletteInput) (ports.NewPalette, error) {
	tokens, err := normalizeTokens(input.Tokens)
	if err != nil {
		return ports.NewPalette{}, err
	}

	name := domain.SanitizeText(input.Name, maxPaletteNameLength)
	if name == "" {
		name = "Untitled palette"
	}

	return ports.NewPalette{
		Name:        name,
		Description: domain.SanitizeText(input.Description, maxPaletteDescriptionLength),
		Tags:        domain.SanitizeStringList(input.Tags, maxPaletteTags, maxPaletteTagLength),
		Tokens:      tokens,
	}, nil
}

// normalizeTokens keeps only the known color roles and canonicalizes every
// value to "#RRGGBB". An unrecognized or invalid color is a validation error.
func normalizeTokens(raw map[string]string) (map[string]string, error) {
	tokens := make(map[string]string, len(domain.PaletteTokenKeys))
	for _, key := range domain.PaletteTokenKeys {
		value, ok := raw[key]
		if !ok {
			continue
		}
		normalized := domain.NormalizeHexColor(value)
		if normalized == "" {
			return nil, domain.NewAppError(http.StatusBadRequest, domain.CodeValidationError, "invalid color token: "+key)
		}
		tokens[key] = normalized
	}
	return tokens, nil
}

func newShareID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return hex.EncodeToString([]byte("fallback"))
	}
	return hex.EncodeToString(b)
}
