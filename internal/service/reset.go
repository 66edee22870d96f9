package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"gearswap/internal/mailer"
	"gearswap/internal/middleware"
	"gearswap/internal/models"
	"gearswap/internal/repository"
	"gearswap/internal/validation"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const (
	resetTokenTTL = 24 * time.Hour
	// ResetJobChannel is the Redis channel the reset worker consumes email jobs from.
	ResetJobChannel = "reset:jobs"
)

// ResetEmailJob is the payload published to the reset worker.
type ResetEmailJob struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	ResetURL string `json:"resetUrl"`
}

// PasswordResetService issues and redeems single-use password reset tokens.
type PasswordResetService struct {
	users    repository.UserRepository
	tokens   repository.ResetRepository
	rdb      *redis.Client
	sender   mailer.Sender
	resetURL string
}

// NewPasswordResetService wires the reset flow. When rdb is available, email
// jobs are published for the reset worker; otherwise sender is used inline.
func NewPasswordResetService(
	users repository.UserRepository,
	tokens repository.ResetRepository,
	rdb *redis.Client,
	sender mailer.Sender,
	resetURL string,
) *PasswordResetService {
	return &PasswordResetService{
		users:    users,
		tokens:   tokens,
		rdb:      rdb,
		sender:   sender,
		resetURL: resetURL,
	}
}

// newResetToken returns 32 random bytes as a URL-safe string.
func newResetToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generating reset token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Request issues a token for the account behind email and dispatches the
// reset mail. An unknown email is NOT an error: the response is identical
// either way so the endpoint cannot be used to probe for accounts.
func (s *PasswordResetService) Request(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	token, err := newResetToken()
	if err != nil {
		return models.NewInternalError(err)
	}

	if err := s.tokens.Upsert(ctx, &models.PasswordResetToken{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}); err != nil {
		return err
	}

	job := ResetEmailJob{
		Email:    user.Email,
		Username: user.Username,
		ResetURL: fmt.Sprintf("%s?token=%s", s.resetURL, token),
	}
	s.dispatch(ctx, job)
	middleware.ResetEmailsSent.Inc()
	return nil
}

func (s *PasswordResetService) dispatch(ctx context.Context, job ResetEmailJob) {
	if s.rdb != nil {
		payload, err := json.Marshal(job)
		if err == nil {
			if err := s.rdb.Publish(ctx, ResetJobChannel, payload).Err(); err == nil {
				return
			}
			middleware.Logger.WarnContext(ctx, "reset job publish failed, sending inline")
		}
	}

	if s.sender == nil {
		middleware.Logger.WarnContext(ctx, "no mailer configured, dropping reset email",
			slog.String("email", job.Email))
		return
	}
	if err := SendResetEmail(s.sender, job); err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to send reset email",
			slog.String("error", err.Error()))
	}
}

// SendResetEmail renders and sends the reset mail for a job.
// Shared between the inline fallback and the reset worker.
func SendResetEmail(sender mailer.Sender, job ResetEmailJob) error {
	body := fmt.Sprintf(
		"Hi %s,\n\nSomeone requested a password reset for your GearSwap account.\n"+
			"If this was you, open the link below within 24 hours:\n\n%s\n\n"+
			"If you did not request this, you can ignore this email.\n",
		job.Username, job.ResetURL,
	)
	return sender.Send(job.Email, "Reset your GearSwap password", body)
}

// Verify redeems a token: validates it, sets the new password and deletes
// the token so it cannot be replayed.
func (s *PasswordResetService) Verify(ctx context.Context, token, newPassword string) error {
	if err := validation.ValidatePassword(newPassword); err != nil {
		return models.NewValidationError(err.Error())
	}

	row, err := s.tokens.GetValid(ctx, token)
	if err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}

	if err := s.users.UpdatePassword(ctx, row.UserID, string(hashed)); err != nil {
		return err
	}
	return s.tokens.Delete(ctx, row.UserID)
}
