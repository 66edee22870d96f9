package server

import (
	"gearswap/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AddCartItem handles POST /api/cart. Adding an item already in the cart
// bumps its quantity instead of failing.
func (s *Server) AddCartItem(c *fiber.Ctx) error {
	var req struct {
		PostID   uint `json:"postId"`
		Quantity int  `json:"quantity"`
	}
	if err := c.BodyParser(&req); err != nil || req.PostID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("postId is required"))
	}

	if err := s.cartRepo.AddItem(c.Context(), currentUserID(c), req.PostID, req.Quantity); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Added to cart"})
}

// GetCart handles GET /api/cart
func (s *Server) GetCart(c *fiber.Ctx) error {
	items, err := s.cartRepo.List(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"items": items})
}

// UpdateCartItem handles PUT /api/cart — sets the quantity for an item.
func (s *Server) UpdateCartItem(c *fiber.Ctx) error {
	var req struct {
		PostID   uint `json:"postId"`
		Quantity int  `json:"quantity"`
	}
	if err := c.BodyParser(&req); err != nil || req.PostID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("postId is required"))
	}

	if err := s.cartRepo.UpdateQuantity(c.Context(), currentUserID(c), req.PostID, req.Quantity); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"message": "Cart updated"})
}

// RemoveCartItem handles DELETE /api/cart/:postId
func (s *Server) RemoveCartItem(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	if err := s.cartRepo.RemoveItem(c.Context(), currentUserID(c), postID); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"message": "Removed from cart"})
}
