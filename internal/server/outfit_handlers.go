package server

import (
	"encoding/json"

	"gearswap/internal/models"

	"github.com/gofiber/fiber/v2"
)

// outfitView is an outfit with its stored item list decoded.
type outfitView struct {
	ID          uint                `json:"id"`
	UserID      uint                `json:"userId"`
	Name        string              `json:"name"`
	Items       []models.OutfitItem `json:"items"`
	DateCreated string              `json:"dateCreated"`
}

func toOutfitView(o *models.Outfit) outfitView {
	var items []models.OutfitItem
	if o.Items != "" {
		_ = json.Unmarshal([]byte(o.Items), &items)
	}
	if items == nil {
		items = []models.OutfitItem{}
	}
	return outfitView{
		ID:          o.ID,
		UserID:      o.UserID,
		Name:        o.Name,
		Items:       items,
		DateCreated: o.DateCreated.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// postsExist verifies every referenced post before an outfit points at it.
func (s *Server) postsExist(c *fiber.Ctx, items []models.OutfitItem) error {
	for _, item := range items {
		if _, err := s.postRepo.GetByID(c.Context(), item.PostID); err != nil {
			return err
		}
	}
	return nil
}

// CreateOutfit handles POST /api/outfits
func (s *Server) CreateOutfit(c *fiber.Ctx) error {
	var req struct {
		Name  string              `json:"name"`
		Items []models.OutfitItem `json:"items"`
	}
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Name is required"))
	}

	if err := s.postsExist(c, req.Items); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	items := req.Items
	if items == nil {
		items = []models.OutfitItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	outfit := &models.Outfit{
		UserID: currentUserID(c),
		Name:   req.Name,
		Items:  string(raw),
	}
	if err := s.outfitRepo.Create(c.Context(), outfit); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.Status(fiber.StatusCreated).JSON(toOutfitView(outfit))
}

// GetOutfits handles GET /api/outfits
func (s *Server) GetOutfits(c *fiber.Ctx) error {
	outfits, err := s.outfitRepo.ListByUser(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	views := make([]outfitView, 0, len(outfits))
	for i := range outfits {
		views = append(views, toOutfitView(&outfits[i]))
	}
	return c.JSON(fiber.Map{"outfits": views})
}

// GetOutfit handles GET /api/outfits/:id
func (s *Server) GetOutfit(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	outfit, err := s.outfitRepo.GetByID(c.Context(), currentUserID(c), id)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(toOutfitView(outfit))
}

// UpdateOutfit handles PUT /api/outfits/:id — rename and/or replace items.
func (s *Server) UpdateOutfit(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Name  *string              `json:"name"`
		Items *[]models.OutfitItem `json:"items"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	outfit, err := s.outfitRepo.GetByID(c.Context(), currentUserID(c), id)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	if req.Name != nil {
		outfit.Name = *req.Name
	}
	if req.Items != nil {
		if err := s.postsExist(c, *req.Items); err != nil {
			return models.RespondWithError(c, models.StatusForError(err), err)
		}
		raw, merr := json.Marshal(*req.Items)
		if merr != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(merr))
		}
		outfit.Items = string(raw)
	}

	if err := s.outfitRepo.Update(c.Context(), outfit); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(toOutfitView(outfit))
}

// DeleteOutfit handles DELETE /api/outfits/:id
func (s *Server) DeleteOutfit(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.outfitRepo.Delete(c.Context(), currentUserID(c), id); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"message": "Outfit deleted"})
}

// AddOutfitItem handles POST /api/outfits/:id/items
func (s *Server) AddOutfitItem(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		PostID uint `json:"postId"`
	}
	if err := c.BodyParser(&req); err != nil || req.PostID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("postId is required"))
	}

	if _, err := s.postRepo.GetByID(c.Context(), req.PostID); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	if err := s.outfitRepo.AddItem(c.Context(), currentUserID(c), id, req.PostID); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Item added"})
}

// RemoveOutfitItem handles DELETE /api/outfits/:id/items/:postId
func (s *Server) RemoveOutfitItem(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	if err := s.outfitRepo.RemoveItem(c.Context(), currentUserID(c), id, postID); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"message": "Item removed"})
}
