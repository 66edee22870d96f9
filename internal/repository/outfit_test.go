package repository

import (
	"context"
	"encoding/json"
	"testing"

	"gearswap/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutfitRepositoryCreateDefaultsItems(t *testing.T) {
	db := newTestDB(t)
	repo := NewOutfitRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "stylist")
	outfit := &models.Outfit{UserID: user.ID, Name: "Festival fit"}
	require.NoError(t, repo.Create(ctx, outfit))

	got, err := repo.GetByID(ctx, user.ID, outfit.ID)
	require.NoError(t, err)
	assert.Equal(t, "[]", got.Items)
}

func TestOutfitRepositoryAddAndRemoveItems(t *testing.T) {
	db := newTestDB(t)
	repo := NewOutfitRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "stylist")
	post := createTestPost(t, db, user.ID)
	outfit := &models.Outfit{UserID: user.ID, Name: "Layered look"}
	require.NoError(t, repo.Create(ctx, outfit))

	require.NoError(t, repo.AddItem(ctx, user.ID, outfit.ID, post.ID))

	err := repo.AddItem(ctx, user.ID, outfit.ID, post.ID)
	require.Error(t, err)
	assert.Equal(t, 409, models.StatusForError(err))

	got, err := repo.GetByID(ctx, user.ID, outfit.ID)
	require.NoError(t, err)
	var items []models.OutfitItem
	require.NoError(t, json.Unmarshal([]byte(got.Items), &items))
	require.Len(t, items, 1)
	assert.Equal(t, post.ID, items[0].PostID)

	require.NoError(t, repo.RemoveItem(ctx, user.ID, outfit.ID, post.ID))
	err = repo.RemoveItem(ctx, user.ID, outfit.ID, post.ID)
	assert.Equal(t, 404, models.StatusForError(err))
}

func TestOutfitRepositoryOwnership(t *testing.T) {
	db := newTestDB(t)
	repo := NewOutfitRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner")
	other := createTestUser(t, db, "other")
	outfit := &models.Outfit{UserID: owner.ID, Name: "Private"}
	require.NoError(t, repo.Create(ctx, outfit))

	_, err := repo.GetByID(ctx, other.ID, outfit.ID)
	assert.Equal(t, 404, models.StatusForError(err))

	err = repo.Delete(ctx, other.ID, outfit.ID)
	assert.Equal(t, 404, models.StatusForError(err))

	require.NoError(t, repo.Delete(ctx, owner.ID, outfit.ID))
}

func TestOutfitRepositoryUpdate(t *testing.T) {
	db := newTestDB(t)
	repo := NewOutfitRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "stylist")
	outfit := &models.Outfit{UserID: user.ID, Name: "Before"}
	require.NoError(t, repo.Create(ctx, outfit))

	outfit.Name = "After"
	outfit.Items = `[{"postId":3}]`
	require.NoError(t, repo.Update(ctx, outfit))

	got, err := repo.GetByID(ctx, user.ID, outfit.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", got.Name)
	assert.JSONEq(t, `[{"postId":3}]`, got.Items)
}
