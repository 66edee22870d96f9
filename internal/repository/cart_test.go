package repository

import (
	"context"
	"testing"

	"gearswap/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartRepositoryAddIncrementsQuantity(t *testing.T) {
	db := newTestDB(t)
	repo := NewCartRepository(db)
	ctx := context.Background()

	seller := createTestUser(t, db, "seller")
	buyer := createTestUser(t, db, "buyer")
	post := createTestPost(t, db, seller.ID)

	require.NoError(t, repo.AddItem(ctx, buyer.ID, post.ID, 1))
	require.NoError(t, repo.AddItem(ctx, buyer.ID, post.ID, 2))

	items, err := repo.List(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, post.ID, items[0].Post.ID)
}

func TestCartRepositoryAddMissingPost(t *testing.T) {
	db := newTestDB(t)
	repo := NewCartRepository(db)

	buyer := createTestUser(t, db, "buyer")
	err := repo.AddItem(context.Background(), buyer.ID, 999, 1)
	assert.Equal(t, 404, models.StatusForError(err))
}

func TestCartRepositoryUpdateQuantity(t *testing.T) {
	db := newTestDB(t)
	repo := NewCartRepository(db)
	ctx := context.Background()

	seller := createTestUser(t, db, "seller")
	buyer := createTestUser(t, db, "buyer")
	post := createTestPost(t, db, seller.ID)

	require.NoError(t, repo.AddItem(ctx, buyer.ID, post.ID, 1))
	require.NoError(t, repo.UpdateQuantity(ctx, buyer.ID, post.ID, 5))

	items, err := repo.List(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)

	// Zero quantity removes the row.
	require.NoError(t, repo.UpdateQuantity(ctx, buyer.ID, post.ID, 0))
	items, err = repo.List(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCartRepositoryRemoveAndClear(t *testing.T) {
	db := newTestDB(t)
	repo := NewCartRepository(db)
	ctx := context.Background()

	seller := createTestUser(t, db, "seller")
	buyer := createTestUser(t, db, "buyer")
	first := createTestPost(t, db, seller.ID)
	second := createTestPost(t, db, seller.ID)

	require.NoError(t, repo.AddItem(ctx, buyer.ID, first.ID, 1))
	require.NoError(t, repo.AddItem(ctx, buyer.ID, second.ID, 1))

	require.NoError(t, repo.RemoveItem(ctx, buyer.ID, first.ID))
	err := repo.RemoveItem(ctx, buyer.ID, first.ID)
	assert.Equal(t, 404, models.StatusForError(err))

	require.NoError(t, repo.Clear(ctx, buyer.ID))
	items, err := repo.List(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
