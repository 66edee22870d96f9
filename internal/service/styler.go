// Package service holds the business logic between handlers and repositories.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"gearswap/internal/middleware"
	"gearswap/internal/models"
	"gearswap/internal/repository"
)

const (
	// tasteContextSize is how many recently liked listings inform the styler.
	tasteContextSize = 10
	trendingSize     = 20
	similarSize      = 10
	defaultModel     = "gpt-4o-mini"
)

// Pusher delivers a payload to a connected user, typically over WebSocket.
type Pusher interface {
	PushToUser(userID uint, payload []byte)
}

// StylerService answers style questions with an LLM, grounded in the user's
// liked listings and saved preferences.
type StylerService struct {
	likes  repository.LikeRepository
	styler repository.StylerRepository
	posts  repository.PostRepository
	client ChatClient
	model  string
	pusher Pusher
}

// NewStylerService wires the styler with its repositories and model client.
// model may be a fine-tuned model ID; empty falls back to the default.
func NewStylerService(
	likes repository.LikeRepository,
	styler repository.StylerRepository,
	posts repository.PostRepository,
	client ChatClient,
	model string,
	pusher Pusher,
) *StylerService {
	if model == "" {
		model = defaultModel
	}
	return &StylerService{
		likes:  likes,
		styler: styler,
		posts:  posts,
		client: client,
		model:  model,
		pusher: pusher,
	}
}

const stylerSystemPrompt = "You are a personal fashion stylist for a second-hand " +
	"clothing marketplace. Give specific, practical advice grounded in the " +
	"user's taste profile when one is provided. Keep answers concise."

// tasteContext renders the user's preferences and recent likes as a prompt block.
func (s *StylerService) tasteContext(ctx context.Context, userID uint) string {
	var b strings.Builder

	if prefs, err := s.styler.GetPreferences(ctx, userID); err == nil {
		b.WriteString("User style preferences (JSON): ")
		b.WriteString(prefs.Preferences)
		b.WriteString("\n")
	}

	liked, err := s.likes.RecentLikedPosts(ctx, userID, tasteContextSize)
	if err != nil || len(liked) == 0 {
		return b.String()
	}

	b.WriteString("Recently liked items:\n")
	for _, p := range liked {
		fmt.Fprintf(&b, "- %s %s (size %s, %s, $%.2f): %s\n",
			p.Condition, p.ClothingType, p.Size, p.Category, p.Price, p.Description)
	}
	return b.String()
}

// ask runs one styler exchange: prompt the model, log the turn, push the reply.
func (s *StylerService) ask(ctx context.Context, userID uint, requestType, userMessage, prompt string) (*models.ConversationLog, error) {
	messages := []ChatMessage{{Role: "system", Content: stylerSystemPrompt}}
	if taste := s.tasteContext(ctx, userID); taste != "" {
		messages = append(messages, ChatMessage{Role: "system", Content: taste})
	}
	messages = append(messages, ChatMessage{Role: "user", Content: prompt})

	reply, err := s.client.Complete(ctx, s.model, messages)
	if err != nil {
		middleware.StylerRequests.WithLabelValues(requestType, "error").Inc()
		middleware.Logger.ErrorContext(ctx, "styler completion failed",
			slog.String("request_type", requestType),
			slog.String("error", err.Error()),
		)
		return nil, models.NewInternalError(err)
	}
	middleware.StylerRequests.WithLabelValues(requestType, "ok").Inc()

	logEntry := &models.ConversationLog{
		UserID:      userID,
		UserMessage: userMessage,
		AIResponse:  reply,
		RequestType: requestType,
		ModelUsed:   s.model,
	}
	if err := s.styler.LogConversation(ctx, logEntry); err != nil {
		// The reply is already in hand; a failed log should not fail the request.
		middleware.Logger.WarnContext(ctx, "failed to persist styler conversation",
			slog.String("error", err.Error()),
		)
	}

	s.push(userID, requestType, reply)
	return logEntry, nil
}

func (s *StylerService) push(userID uint, requestType, reply string) {
	if s.pusher == nil {
		return
	}
	payload, err := json.Marshal(map[string]string{
		"type":        "styler_response",
		"requestType": requestType,
		"response":    reply,
	})
	if err != nil {
		return
	}
	s.pusher.PushToUser(userID, payload)
}

// Chat answers a free-form styling question.
func (s *StylerService) Chat(ctx context.Context, userID uint, message string) (*models.ConversationLog, error) {
	if strings.TrimSpace(message) == "" {
		return nil, models.NewValidationError("Message is required")
	}
	return s.ask(ctx, userID, "chat", message, message)
}

// SuggestOutfit builds an outfit recommendation for an occasion.
func (s *StylerService) SuggestOutfit(ctx context.Context, userID uint, occasion string) (*models.ConversationLog, error) {
	if strings.TrimSpace(occasion) == "" {
		return nil, models.NewValidationError("Occasion is required")
	}
	prompt := fmt.Sprintf("Suggest a complete outfit for this occasion: %s. "+
		"Prefer pieces similar to the items in my taste profile.", occasion)
	return s.ask(ctx, userID, "outfit", occasion, prompt)
}

// RecommendItem recommends a single item matching the description.
func (s *StylerService) RecommendItem(ctx context.Context, userID uint, description string) (*models.ConversationLog, error) {
	if strings.TrimSpace(description) == "" {
		return nil, models.NewValidationError("Item description is required")
	}
	prompt := fmt.Sprintf("Recommend one second-hand item matching: %s. "+
		"Explain briefly why it fits my style.", description)
	return s.ask(ctx, userID, "item", description, prompt)
}

// AnalyzeStyle summarizes the user's style from their likes and preferences.
func (s *StylerService) AnalyzeStyle(ctx context.Context, userID uint) (*models.ConversationLog, error) {
	prompt := "Analyze my personal style based on my taste profile above. " +
		"Name the dominant aesthetic, the color palette, and one gap worth filling."
	return s.ask(ctx, userID, "analysis", "style analysis", prompt)
}

// Trending returns the most-liked unsold listings. No model call involved.
func (s *StylerService) Trending(ctx context.Context) ([]*models.Post, error) {
	return s.posts.Trending(ctx, trendingSize)
}

// Similar returns listings in the same category and size as the seed post,
// most liked first. No model call involved.
func (s *StylerService) Similar(ctx context.Context, postID uint) ([]*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.posts.Similar(ctx, post, similarSize)
}

// History returns past styler exchanges, newest first.
func (s *StylerService) History(ctx context.Context, userID uint, limit, offset int) ([]models.ConversationLog, error) {
	return s.styler.ConversationHistory(ctx, userID, limit, offset)
}

// GetPreferences returns the user's saved preference document.
func (s *StylerService) GetPreferences(ctx context.Context, userID uint) (*models.StylerPreferences, error) {
	return s.styler.GetPreferences(ctx, userID)
}

// SavePreferences validates and stores the preference document.
func (s *StylerService) SavePreferences(ctx context.Context, userID uint, preferences json.RawMessage) error {
	if len(preferences) == 0 || !json.Valid(preferences) {
		return models.NewValidationError("Preferences must be a valid JSON document")
	}
	return s.styler.UpsertPreferences(ctx, &models.StylerPreferences{
		UserID:      userID,
		Preferences: string(preferences),
	})
}
