package service

import (
	"context"
	"encoding/json"
	"testing"

	"gearswap/internal/models"
	"gearswap/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newResetFixture(t *testing.T) (*PasswordResetService, *gorm.DB, *fakeSender) {
	t.Helper()
	db := newTestDB(t)
	sender := &fakeSender{}
	svc := NewPasswordResetService(
		repository.NewUserRepository(db),
		repository.NewResetRepository(db),
		nil,
		sender,
		"https://gearswap.dev/reset-password",
	)
	return svc, db, sender
}

func TestResetRequestSendsMailWithToken(t *testing.T) {
	svc, db, sender := newResetFixture(t)
	ctx := context.Background()

	user := createTestUser(t, db, "forgetful")

	require.NoError(t, svc.Request(ctx, user.Email))

	require.Len(t, sender.sent, 1)
	mail := sender.sent[0]
	assert.Equal(t, user.Email, mail.To)
	assert.Contains(t, mail.Body, "https://gearswap.dev/reset-password?token=")

	var row models.PasswordResetToken
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&row).Error)
	assert.Contains(t, mail.Body, row.Token)
}

func TestResetRequestUnknownEmailIsSilent(t *testing.T) {
	svc, _, sender := newResetFixture(t)

	require.NoError(t, svc.Request(context.Background(), "ghost@example.com"))
	assert.Empty(t, sender.sent, "unknown accounts must not be probeable")
}

func TestResetRequestPublishesJobWhenRedisAvailable(t *testing.T) {
	db := newTestDB(t)
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sub := rdb.Subscribe(context.Background(), ResetJobChannel)
	t.Cleanup(func() { _ = sub.Close() })
	_, err = sub.Receive(context.Background())
	require.NoError(t, err)

	sender := &fakeSender{}
	svc := NewPasswordResetService(
		repository.NewUserRepository(db),
		repository.NewResetRepository(db),
		rdb,
		sender,
		"https://gearswap.dev/reset-password",
	)

	user := createTestUser(t, db, "queued")
	require.NoError(t, svc.Request(context.Background(), user.Email))

	msg, err := sub.ReceiveMessage(context.Background())
	require.NoError(t, err)

	var job ResetEmailJob
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &job))
	assert.Equal(t, user.Email, job.Email)
	assert.Contains(t, job.ResetURL, "?token=")

	assert.Empty(t, sender.sent, "inline send is only a fallback")
}

func TestResetVerifyUpdatesPasswordAndBurnsToken(t *testing.T) {
	svc, db, _ := newResetFixture(t)
	ctx := context.Background()

	user := createTestUser(t, db, "renewed")
	require.NoError(t, svc.Request(ctx, user.Email))

	var row models.PasswordResetToken
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&row).Error)

	require.NoError(t, svc.Verify(ctx, row.Token, "BrandNewPass12!"))

	var updated models.User
	require.NoError(t, db.First(&updated, user.ID).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.Password), []byte("BrandNewPass12!")))

	// The token is single-use.
	err := svc.Verify(ctx, row.Token, "AnotherNewPass12!")
	assert.Equal(t, 401, models.StatusForError(err))
}

func TestResetVerifyRejectsWeakPassword(t *testing.T) {
	svc, _, _ := newResetFixture(t)

	err := svc.Verify(context.Background(), "whatever", "short")
	assert.Equal(t, 400, models.StatusForError(err))
}

func TestResetVerifyRejectsUnknownToken(t *testing.T) {
	svc, _, _ := newResetFixture(t)

	err := svc.Verify(context.Background(), "does-not-exist", "BrandNewPass12!")
	assert.Equal(t, 401, models.StatusForError(err))
}
