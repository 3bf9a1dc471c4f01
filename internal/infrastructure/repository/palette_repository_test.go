package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palettekit/palette-api/internal/core/domain"
	"github.com/palettekit/palette-api/internal/core/ports"
)

func createTestPalette(t *testing.T, repo *PaletteRepository, ownerID, name string, tags ...string) *domain.Palette {
	t.Helper()
	palette, err := repo.Create(context.Background(), ports.NewPalette{
		OwnerID: ownerID,
		Name:    name,
		Tags:    tags,
		Tokens:  map[string]string{"primary": "#336699"},
	})
	require.NoError(t, err)
	return palette
}

func TestPaletteRepository_CreateAndFind(t *testing.T) {
	repo := NewPaletteRepository(newRepoStore(t))
	ctx := context.Background()

	created := createTestPalette(t, repo, "u1", "Sunset")
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	found, err := repo.FindByIDForOwner(ctx, created.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Sunset", found.Name)

	// Another owner cannot see it.
	_, err = repo.FindByIDForOwner(ctx, created.ID, "u2")
	assert.ErrorIs(t, err, domain.ErrPaletteNotFound)
}

func TestPaletteRepository_ListFiltersAndPages(t *testing.T) {
	repo := NewPaletteRepository(newRepoStore(t))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		createTestPalette(t, repo, "u1", fmt.Sprintf("Palette %d", i), "warm")
	}
	createTestPalette(t, repo, "u1", "Ocean blues", "cool")
	createTestPalette(t, repo, "u2", "Not mine")

	all, err := repo.ListByOwner(ctx, "u1", ports.PaletteListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 6, all.Total)
	assert.False(t, all.HasMore)

	// Free-text search covers name and tags.
	cool, err := repo.ListByOwner(ctx, "u1", ports.PaletteListQuery{Query: "ocean"})
	require.NoError(t, err)
	require.Len(t, cool.Items, 1)
	assert.Equal(t, "Ocean blues", cool.Items[0].Name)

	warm, err := repo.ListByOwner(ctx, "u1", ports.PaletteListQuery{Query: "warm"})
	require.NoError(t, err)
	assert.Equal(t, 5, warm.Total)

	page, err := repo.ListByOwner(ctx, "u1", ports.PaletteListQuery{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, 6, page.Total)
	assert.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)

	past, err := repo.ListByOwner(ctx, "u1", ports.PaletteListQuery{Limit: 2, Offset: 100})
	require.NoError(t, err)
	assert.Empty(t, past.Items)
	assert.False(t, past.HasMore)
}

func TestPaletteRepository_ListSortsByUpdatedAtDesc(t *testing.T) {
	repo := NewPaletteRepository(newRepoStore(t))
	ctx := context.Background()

	first := createTestPalette(t, repo, "u1", "First")
	second := createTestPalette(t, repo, "u1", "Second")

	// Touching the older palette moves it to the front.
	name := "First updated"
	_, err := repo.UpdateForOwner(ctx, first.ID, "u1", domain.PalettePatch{Name: &name})
	require.NoError(t, err)

	list, err := repo.ListByOwner(ctx, "u1", ports.PaletteListQuery{})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, first.ID, list.Items[0].ID)
	assert.Equal(t, second.ID, list.Items[1].ID)
}

func TestPaletteRepository_UpdatePatchSemantics(t *testing.T) {
	repo := NewPaletteRepository(newRepoStore(t))
	ctx := context.Background()
	created := createTestPalette(t, repo, "u1", "Sunset", "warm")

	description := "evening tones"
	updated, err := repo.UpdateForOwner(ctx, created.ID, "u1", domain.PalettePatch{Description: &description})
	require.NoError(t, err)

	// Untouched fields survive a partial patch.
	assert.Equal(t, "Sunset", updated.Name)
	assert.Equal(t, "evening tones", updated.Description)
	assert.Equal(t, []string{"warm"}, updated.Tags)

	_, err = repo.UpdateForOwner(ctx, created.ID, "u2", domain.PalettePatch{Description: &description})
	assert.ErrorIs(t, err, domain.ErrPaletteNotFound)
}

func TestPaletteRepository_ShareIDLookupRequiresPublic(t *testing.T) {
	repo := NewPaletteRepository(newRepoStore(t))
	ctx := context.Background()
	created := createTestPalette(t, repo, "u1", "Sunset")

	shareID := "abcd1234"
	isPublic := false
	_, err := repo.UpdateForOwner(ctx, created.ID, "u1", domain.PalettePatch{ShareID: &shareID, IsPublic: &isPublic})
	require.NoError(t, err)

	// A share id on a private palette does not resolve.
	_, err = repo.FindByShareID(ctx, shareID)
	assert.ErrorIs(t, err, domain.ErrPaletteNotFound)

	isPublic = true
	_, err = repo.UpdateForOwner(ctx, created.ID, "u1", domain.PalettePatch{IsPublic: &isPublic})
	require.NoError(t, err)

	found, err := repo.FindByShareID(ctx, shareID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

func TestPaletteRepository_Delete(t *testing.T) {
	repo := NewPaletteRepository(newRepoStore(t))
	ctx := context.Background()
	created := createTestPalette(t, repo, "u1", "Sunset")

	assert.ErrorIs(t, repo.DeleteForOwner(ctx, created.ID, "u2"), domain.ErrPaletteNotFound)
	require.NoError(t, repo.DeleteForOwner(ctx, created.ID, "u1"))
	assert.ErrorIs(t, repo.DeleteForOwner(ctx, created.ID, "u1"), domain.ErrPaletteNotFound)
}
