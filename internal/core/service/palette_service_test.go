package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/palettekit/palette-api/internal/core/domain"
	"github.com/palettekit/palette-api/internal/core/ports"
	"github.com/palettekit/palette-api/internal/infrastructure/repository"
	"github.com/palettekit/palette-api/internal/infrastructure/store"
)

func newPaletteService(t *testing.T) *PaletteService {
	t.Helper()
	st := store.New(filepath.Join(t.TempDir(), "database.json"), zerolog.Nop(), store.Options{})
	if err := st.Load(context.Background()); err != nil {
		t.Fatalf("load store: %v", err)
	}
	palettes := repository.NewPaletteRepository(st)
	idempotency := repository.NewIdempotencyRepository(st, time.Hour, 100)
	return NewPaletteService(palettes, idempotency, zerolog.Nop())
}

func validInput() ports.CreatePaletteInput {
	return ports.CreatePaletteInput{
		Name:        "Sunset",
		Description: "Warm evening tones",
		Tags:        []string{"warm", "evening"},
		Tokens: map[string]string{
			"primary":    "#ff6633",
			"background": "fff",
			"text":       "#1A1A2E",
		},
	}
}

func TestPaletteService_Create_NormalizesTokens(t *testing.T) {
	svc := newPaletteService(t)

	palette, err := svc.CreateForUser(context.Background(), "u1", validInput(), "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if palette.Tokens["primary"] != "#FF6633" {
		t.Fatalf("primary not canonicalized: %s", palette.Tokens["primary"])
	}
	// The 3-digit shorthand expands, with or without the leading "#".
	if palette.Tokens["background"] != "#FFFFFF" {
		t.Fatalf("shorthand not expanded: %s", palette.Tokens["background"])
	}
	if palette.Tokens["text"] != "#1A1A2E" {
		t.Fatalf("text token mangled: %s", palette.Tokens["text"])
	}
}

func TestPaletteService_Create_RejectsInvalidColor(t *testing.T) {
	svc := newPaletteService(t)

	input := validInput()
	input.Tokens["primary"] = "not-a-color"
	_, err := svc.CreateForUser(context.Background(), "u1", input, "")
	wantCode(t, err, domain.CodeValidationError)
}

func TestPaletteService_Create_IgnoresUnknownTokenKeys(t *testing.T) {
	svc := newPaletteService(t)

	input := validInput()
	input.Tokens["glow"] = "#123456"
	palette, err := svc.CreateForUser(context.Background(), "u1", input, "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, ok := palette.Tokens["glow"]; ok {
		t.Fatalf("unknown token key survived normalization")
	}
}

func TestPaletteService_Create_IdempotentReplay(t *testing.T) {
	svc := newPaletteService(t)
	ctx := context.Background()

	first, err := svc.CreateForUser(ctx, "u1", validInput(), "retry-key-1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Same key and owner replays the original palette.
	replayed, err := svc.CreateForUser(ctx, "u1", validInput(), "retry-key-1")
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if replayed.ID != first.ID {
		t.Fatalf("expected replay of %s, got %s", first.ID, replayed.ID)
	}

	list, err := svc.ListForUser(ctx, "u1", ports.PaletteListQuery{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if list.Total != 1 {
		t.Fatalf("expected a single palette, got %d", list.Total)
	}
}

func TestPaletteService_Create_KeyIsScopedPerOperation(t *testing.T) {
	svc := newPaletteService(t)
	ctx := context.Background()

	created, err := svc.CreateForUser(ctx, "u1", validInput(), "shared-key-1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// The same key under the import scope creates a distinct palette.
	imported, err := svc.ImportForUser(ctx, "u1", validInput(), "shared-key-1")
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if imported.ID == created.ID {
		t.Fatalf("import replayed the create record")
	}
}

func TestPaletteService_Create_ReplayedRecordWithDeletedPalette(t *testing.T) {
	svc := newPaletteService(t)
	ctx := context.Background()

	first, err := svc.CreateForUser(ctx, "u1", validInput(), "retry-key-1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.DeleteForUser(ctx, "u1", first.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	// The record points at a palette that no longer exists: create anew.
	second, err := svc.CreateForUser(ctx, "u1", validInput(), "retry-key-1")
	if err != nil {
		t.Fatalf("create after delete failed: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("expected a new palette, got the deleted id")
	}
}

func TestPaletteService_Import_Defaults(t *testing.T) {
	svc := newPaletteService(t)

	palette, err := svc.ImportForUser(context.Background(), "u1", ports.CreatePaletteInput{
		Tokens: map[string]string{"primary": "#336699"},
	}, "")
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if palette.Name != "Imported palette" {
		t.Fatalf("unexpected default name: %s", palette.Name)
	}
	if len(palette.Tags) != 1 || palette.Tags[0] != "imported" {
		t.Fatalf("unexpected default tags: %v", palette.Tags)
	}
}

func TestPaletteService_Update_SanitizesPatch(t *testing.T) {
	svc := newPaletteService(t)
	ctx := context.Background()

	created, err := svc.CreateForUser(ctx, "u1", validInput(), "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	name := "  New\x00Name  "
	palette, err := svc.UpdateForUser(ctx, "u1", created.ID, domain.PalettePatch{
		Name:   &name,
		Tokens: map[string]string{"accent": "abc"},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if palette.Name != "New Name" {
		t.Fatalf("name not sanitized: %q", palette.Name)
	}
	if palette.Tokens["accent"] != "#AABBCC" {
		t.Fatalf("accent not normalized: %s", palette.Tokens["accent"])
	}

	_, err = svc.UpdateForUser(ctx, "u1", "missing", domain.PalettePatch{Name: &name})
	wantCode(t, err, domain.CodePaletteNotFound)
}

func TestPaletteService_ShareLifecycle(t *testing.T) {
	svc := newPaletteService(t)
	ctx := context.Background()

	created, err := svc.CreateForUser(ctx, "u1", validInput(), "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	shared, err := svc.ShareForUser(ctx, "u1", created.ID)
	if err != nil {
		t.Fatalf("share failed: %v", err)
	}
	if !shared.IsPublic || shared.ShareID == "" {
		t.Fatalf("share did not publish: %+v", shared)
	}

	// Sharing again keeps the same id.
	again, err := svc.ShareForUser(ctx, "u1", created.ID)
	if err != nil {
		t.Fatalf("re-share failed: %v", err)
	}
	if again.ShareID != shared.ShareID {
		t.Fatalf("share id changed on re-share: %s vs %s", again.ShareID, shared.ShareID)
	}

	public, err := svc.GetPublicByShareID(ctx, shared.ShareID)
	if err != nil {
		t.Fatalf("public lookup failed: %v", err)
	}
	if public.ID != created.ID {
		t.Fatalf("public lookup resolved wrong palette")
	}

	unshared, err := svc.UnshareForUser(ctx, "u1", created.ID)
	if err != nil {
		t.Fatalf("unshare failed: %v", err)
	}
	if unshared.IsPublic || unshared.ShareID != "" {
		t.Fatalf("unshare did not retract: %+v", unshared)
	}

	_, err = svc.GetPublicByShareID(ctx, shared.ShareID)
	wantCode(t, err, domain.CodePublicPaletteNotFound)
}

func TestPaletteService_Analytics(t *testing.T) {
	svc := newPaletteService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		input := validInput()
		if _, err := svc.CreateForUser(ctx, "u1", input, ""); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}
	extra, err := svc.CreateForUser(ctx, "u1", ports.CreatePaletteInput{
		Name:   "Cool",
		Tags:   []string{"cool"},
		Tokens: map[string]string{"primary": "#336699"},
	}, "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.ShareForUser(ctx, "u1", extra.ID); err != nil {
		t.Fatalf("share failed: %v", err)
	}

	analytics, err := svc.AnalyticsForUser(ctx, "u1")
	if err != nil {
		t.Fatalf("analytics failed: %v", err)
	}
	if analytics.Total != 4 || analytics.PublicCount != 1 || analytics.PrivateCount != 3 {
		t.Fatalf("unexpected counts: %+v", analytics)
	}
	// Ties break alphabetically: "evening" and "warm" both count 3.
	if len(analytics.TopTags) != 3 || analytics.TopTags[0].Tag != "evening" || analytics.TopTags[1].Tag != "warm" {
		t.Fatalf("unexpected top tags: %+v", analytics.TopTags)
	}
	if len(analytics.Recent) != 4 {
		t.Fatalf("unexpected recent digest count: %d", len(analytics.Recent))
	}
	// Newest-updated first: the shared palette was touched last.
	if analytics.Recent[0].ID != extra.ID || !analytics.Recent[0].IsPublic {
		t.Fatalf("unexpected recent head: %+v", analytics.Recent[0])
	}
}
