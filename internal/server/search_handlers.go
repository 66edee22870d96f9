package server

import (
	"strings"

	"gearswap/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AddSearch handles POST /api/search — records a history row for the caller.
func (s *Server) AddSearch(c *fiber.Ctx) error {
	var req struct {
		SearchQuery string `json:"searchQuery"`
	}
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.SearchQuery) == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("searchQuery is required"))
	}

	search := &models.Search{
		UserID:      currentUserID(c),
		SearchQuery: strings.TrimSpace(req.SearchQuery),
	}
	if err := s.searchRepo.Add(c.Context(), search); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.Status(fiber.StatusCreated).JSON(search)
}

// GetRecentSearches handles GET /api/search — the five most recent queries.
func (s *Server) GetRecentSearches(c *fiber.Ctx) error {
	searches, err := s.searchRepo.Recent(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"searches": searches})
}

// DeleteSearch handles DELETE /api/search/:id — owner scoped.
func (s *Server) DeleteSearch(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.searchRepo.Delete(c.Context(), currentUserID(c), id); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"message": "Search removed"})
}
