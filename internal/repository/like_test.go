package repository

import (
	"context"
	"testing"

	"gearswap/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeRepositoryLikeAndCount(t *testing.T) {
	db := newTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	seller := createTestUser(t, db, "seller")
	fan := createTestUser(t, db, "fan")
	post := createTestPost(t, db, seller.ID)

	require.NoError(t, repo.Like(ctx, fan.ID, post.ID))

	var got models.Post
	require.NoError(t, db.First(&got, post.ID).Error)
	assert.Equal(t, 1, got.LikeCount)

	liked, err := repo.IsLiked(ctx, fan.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, liked)
}

func TestLikeRepositoryDoubleLikeConflicts(t *testing.T) {
	db := newTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	seller := createTestUser(t, db, "seller")
	fan := createTestUser(t, db, "fan")
	post := createTestPost(t, db, seller.ID)

	require.NoError(t, repo.Like(ctx, fan.ID, post.ID))
	err := repo.Like(ctx, fan.ID, post.ID)
	require.Error(t, err)
	assert.Equal(t, 409, models.StatusForError(err))

	// The failed like must not bump the counter.
	var got models.Post
	require.NoError(t, db.First(&got, post.ID).Error)
	assert.Equal(t, 1, got.LikeCount)
}

func TestLikeRepositoryLikeMissingPost(t *testing.T) {
	db := newTestDB(t)
	repo := NewLikeRepository(db)

	fan := createTestUser(t, db, "fan")
	err := repo.Like(context.Background(), fan.ID, 999)
	assert.Equal(t, 404, models.StatusForError(err))
}

func TestLikeRepositoryUnlike(t *testing.T) {
	db := newTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	seller := createTestUser(t, db, "seller")
	fan := createTestUser(t, db, "fan")
	post := createTestPost(t, db, seller.ID)

	require.NoError(t, repo.Like(ctx, fan.ID, post.ID))
	require.NoError(t, repo.Unlike(ctx, fan.ID, post.ID))

	var got models.Post
	require.NoError(t, db.First(&got, post.ID).Error)
	assert.Equal(t, 0, got.LikeCount)

	err := repo.Unlike(ctx, fan.ID, post.ID)
	assert.Equal(t, 404, models.StatusForError(err))
}

func TestLikeRepositoryRecentLikedPosts(t *testing.T) {
	db := newTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	seller := createTestUser(t, db, "seller")
	fan := createTestUser(t, db, "fan")

	var postIDs []uint
	for i := 0; i < 12; i++ {
		post := createTestPost(t, db, seller.ID)
		postIDs = append(postIDs, post.ID)
		require.NoError(t, repo.Like(ctx, fan.ID, post.ID))
	}

	posts, err := repo.RecentLikedPosts(ctx, fan.ID, 10)
	require.NoError(t, err)
	assert.Len(t, posts, 10)
}

func TestLikeRepositoryListByUserPreloadsPost(t *testing.T) {
	db := newTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	seller := createTestUser(t, db, "seller")
	fan := createTestUser(t, db, "fan")
	post := createTestPost(t, db, seller.ID)

	require.NoError(t, repo.Like(ctx, fan.ID, post.ID))

	likes, err := repo.ListByUser(ctx, fan.ID, 20, 0)
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, post.ID, likes[0].Post.ID)
	assert.Equal(t, "Vintage denim jacket", likes[0].Post.Description)
}

func TestLikeRepositoryGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	seller := createTestUser(t, db, "seller")
	buyer := createTestUser(t, db, "buyer")
	post := createTestPost(t, db, seller.ID)

	_, err := repo.Get(ctx, buyer.ID, post.ID)
	assert.Equal(t, 404, models.StatusForError(err))

	require.NoError(t, repo.Like(ctx, buyer.ID, post.ID))

	like, err := repo.Get(ctx, buyer.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, like.Post.ID)
}
