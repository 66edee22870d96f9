package repository

import (
	"context"
	"testing"

	"gearswap/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepositoryCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Username:  "ada",
		Email:     "ada@example.com",
		Password:  "hashed",
	}
	require.NoError(t, repo.Create(ctx, user))
	require.NotZero(t, user.ID)

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada", got.Username)

	byEmail, err := repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, user.ID, byEmail.ID)

	missing, err := repo.GetByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepositoryDuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Username: "dup", Email: "a@example.com", Password: "x"}))
	err := repo.Create(ctx, &models.User{Username: "dup", Email: "b@example.com", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, 409, models.StatusForError(err))
}

func TestUserRepositoryGetByIDNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	_, err := repo.GetByID(context.Background(), 999)
	require.Error(t, err)
	assert.Equal(t, 404, models.StatusForError(err))
}

func TestUserRepositoryDeleteCascades(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	seller := createTestUser(t, db, "seller")
	buyer := createTestUser(t, db, "buyer")
	post := createTestPost(t, db, seller.ID)

	require.NoError(t, db.Create(&models.PostImage{PostID: post.ID, ImageData: []byte{1}, ContentType: "image/jpeg"}).Error)
	require.NoError(t, db.Create(&models.LikedPost{UserID: buyer.ID, PostID: post.ID}).Error)
	require.NoError(t, db.Create(&models.CartItem{UserID: buyer.ID, PostID: post.ID, Quantity: 1}).Error)
	require.NoError(t, db.Create(&models.UserProfile{UserID: seller.ID, Bio: "bio"}).Error)
	require.NoError(t, db.Create(&models.Follow{FollowerID: buyer.ID, FollowedID: seller.ID}).Error)
	require.NoError(t, db.Create(&models.Search{UserID: seller.ID, SearchQuery: "denim"}).Error)

	require.NoError(t, repo.Delete(ctx, seller.ID))

	var count int64
	db.Model(&models.Post{}).Where("user_id = ?", seller.ID).Count(&count)
	assert.Zero(t, count, "posts should be removed")
	db.Model(&models.PostImage{}).Count(&count)
	assert.Zero(t, count, "post images should be removed")
	db.Model(&models.LikedPost{}).Count(&count)
	assert.Zero(t, count, "likes on the seller's posts should be removed")
	db.Model(&models.CartItem{}).Count(&count)
	assert.Zero(t, count, "cart references to the seller's posts should be removed")
	db.Model(&models.UserProfile{}).Where("user_id = ?", seller.ID).Count(&count)
	assert.Zero(t, count, "profile should be removed")
	db.Model(&models.Follow{}).Count(&count)
	assert.Zero(t, count, "follow edges should be removed")

	// Buyer is untouched.
	_, err := repo.GetByID(ctx, buyer.ID)
	assert.NoError(t, err)
}

func TestUserRepositoryProfileUpsert(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "profiled")

	require.NoError(t, repo.UpsertProfile(ctx, &models.UserProfile{UserID: user.ID, Bio: "first", Location: "NYC"}))
	require.NoError(t, repo.UpsertProfile(ctx, &models.UserProfile{UserID: user.ID, Bio: "second", Location: "LA"}))

	profile, err := repo.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", profile.Bio)
	assert.Equal(t, "LA", profile.Location)

	var count int64
	db.Model(&models.UserProfile{}).Where("user_id = ?", user.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestUserRepositoryProfilePicture(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "pictured")
	data := []byte{0xFF, 0xD8, 0xFF}

	require.NoError(t, repo.UpdateProfilePicture(ctx, user.ID, data, "image/jpeg"))

	profile, err := repo.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, data, profile.ProfilePicture)
	assert.Equal(t, "image/jpeg", profile.ContentType)
}

func TestUserRepositoryFollows(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	require.NoError(t, repo.Follow(ctx, alice.ID, bob.ID))

	err := repo.Follow(ctx, alice.ID, bob.ID)
	require.Error(t, err)
	assert.Equal(t, 409, models.StatusForError(err))

	followers, err := repo.Followers(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, "alice", followers[0].Username)

	following, err := repo.Following(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "bob", following[0].Username)

	require.NoError(t, repo.Unfollow(ctx, alice.ID, bob.ID))
	err = repo.Unfollow(ctx, alice.ID, bob.ID)
	assert.Equal(t, 404, models.StatusForError(err))
}

func TestUserRepositoryUpdatePassword(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "rotating")
	require.NoError(t, repo.UpdatePassword(ctx, user.ID, "new-hash"))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.Password)

	err = repo.UpdatePassword(ctx, 12345, "x")
	assert.Equal(t, 404, models.StatusForError(err))
}
