package server

import (
	"encoding/json"
	"log/slog"

	"gearswap/internal/middleware"
	"gearswap/internal/models"

	"github.com/gofiber/fiber/v2"
)

const stylerHistoryLimit = 50

// stylerReply is the common response shape for styler endpoints.
func stylerReply(c *fiber.Ctx, log *models.ConversationLog) error {
	return c.JSON(fiber.Map{
		"response":    log.AIResponse,
		"requestType": log.RequestType,
		"model":       log.ModelUsed,
		"timestamp":   log.CreatedAt,
	})
}

// StylerChat handles POST /api/styler/chat
func (s *Server) StylerChat(c *fiber.Ctx) error {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	log, err := s.stylerService.Chat(c.Context(), currentUserID(c), req.Message)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return stylerReply(c, log)
}

// StylerHistory handles GET /api/styler/chat/history
func (s *Server) StylerHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", stylerHistoryLimit)
	if limit < 1 || limit > stylerHistoryLimit {
		limit = stylerHistoryLimit
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	history, err := s.stylerService.History(c.Context(), currentUserID(c), limit, offset)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"history": history})
}

// SaveStylerPreferences handles PUT /api/styler/preferences
func (s *Server) SaveStylerPreferences(c *fiber.Ctx) error {
	var req struct {
		Preferences json.RawMessage `json:"preferences"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.stylerService.SavePreferences(c.Context(), currentUserID(c), req.Preferences); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"message": "Preferences saved"})
}

// GetStylerPreferences handles GET /api/styler/preferences
func (s *Server) GetStylerPreferences(c *fiber.Ctx) error {
	prefs, err := s.stylerService.GetPreferences(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"preferences": json.RawMessage(prefs.Preferences)})
}

// StylerOutfit handles POST /api/styler/outfit
func (s *Server) StylerOutfit(c *fiber.Ctx) error {
	var req struct {
		Occasion string `json:"occasion"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	log, err := s.stylerService.SuggestOutfit(c.Context(), currentUserID(c), req.Occasion)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return stylerReply(c, log)
}

// StylerItem handles POST /api/styler/item
func (s *Server) StylerItem(c *fiber.Ctx) error {
	var req struct {
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	log, err := s.stylerService.RecommendItem(c.Context(), currentUserID(c), req.Description)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return stylerReply(c, log)
}

// StylerAnalysis handles GET /api/styler/analysis
func (s *Server) StylerAnalysis(c *fiber.Ctx) error {
	log, err := s.stylerService.AnalyzeStyle(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return stylerReply(c, log)
}

// StylerTrending handles GET /api/styler/trending — the most-liked unsold
// listings, no model call.
func (s *Server) StylerTrending(c *fiber.Ctx) error {
	posts, err := s.stylerService.Trending(c.Context())
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return s.respondItems(c, posts)
}

// StylerSimilar handles GET /api/styler/similar/:postId — listings sharing
// the seed's category and size.
func (s *Server) StylerSimilar(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	posts, err := s.stylerService.Similar(c.Context(), postID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return s.respondItems(c, posts)
}

// respondItems renders listings with their cover image under an "items" key.
func (s *Server) respondItems(c *fiber.Ctx, posts []*models.Post) error {
	views := make([]postView, 0, len(posts))
	for _, post := range posts {
		view := toPostView(post)
		image, err := s.postRepo.FirstImage(c.Context(), post.ID)
		if err != nil {
			middleware.Logger.WarnContext(c.Context(), "failed to load listing cover image",
				slog.Uint64("post_id", uint64(post.ID)),
				slog.String("error", err.Error()),
			)
		}
		view.Image = toImageView(image)
		views = append(views, view)
	}
	return c.JSON(fiber.Map{"items": views})
}
