package server

import (
	"errors"

	"gearswap/internal/models"

	"github.com/gofiber/fiber/v2"
)

// profileResponse renders a profile with the picture inlined as a data: URI.
type profileResponse struct {
	ID             uint   `json:"id"`
	UserID         uint   `json:"userId"`
	Bio            string `json:"bio"`
	Location       string `json:"location"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

func toProfileResponse(p *models.UserProfile) profileResponse {
	resp := profileResponse{
		ID:       p.ID,
		UserID:   p.UserID,
		Bio:      p.Bio,
		Location: p.Location,
	}
	if len(p.ProfilePicture) > 0 && p.ContentType != "" {
		resp.ProfilePicture = dataURI(p.ContentType, p.ProfilePicture)
	}
	return resp
}

// CreateProfile handles POST /api/users/:id/profile
func (s *Server) CreateProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if id != currentUserID(c) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewUnauthorizedError("You can only create your own profile"))
	}

	var req struct {
		Bio      string `json:"bio"`
		Location string `json:"location"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if existing, err := s.userRepo.GetProfile(c.Context(), id); err == nil && existing != nil {
		conflict := models.NewConflictError("Profile already exists")
		return models.RespondWithError(c, fiber.StatusConflict, conflict)
	}

	profile := &models.UserProfile{UserID: id, Bio: req.Bio, Location: req.Location}
	if err := s.userRepo.UpsertProfile(c.Context(), profile); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.Status(fiber.StatusCreated).JSON(toProfileResponse(profile))
}

// GetProfile handles GET /api/users/:id/profile
func (s *Server) GetProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	profile, err := s.userRepo.GetProfile(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(toProfileResponse(profile))
}

// UpdateProfile handles PUT /api/users/:id/profile. Partial update of bio
// and location; absent fields are left untouched.
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if id != currentUserID(c) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewUnauthorizedError("You can only update your own profile"))
	}

	var req struct {
		Bio      *string `json:"bio"`
		Location *string `json:"location"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	profile, err := s.userRepo.GetProfile(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.Location != nil {
		profile.Location = *req.Location
	}

	if err := s.userRepo.UpsertProfile(c.Context(), profile); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(toProfileResponse(profile))
}

// DeleteProfile handles DELETE /api/users/:id/profile
func (s *Server) DeleteProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if id != currentUserID(c) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewUnauthorizedError("You can only delete your own profile"))
	}

	if err := s.userRepo.DeleteProfile(c.Context(), id); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"message": "Profile deleted"})
}

// UpdateProfilePicture handles PUT /api/users/:id/profile/picture.
// The body carries the picture as base64 (raw or data: URI).
func (s *Server) UpdateProfilePicture(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if id != currentUserID(c) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewUnauthorizedError("You can only update your own profile"))
	}

	var req struct {
		Image string `json:"image"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	data, contentType, err := decodeImage(req.Image)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return models.RespondWithError(c, models.StatusForError(err), err)
		}
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid image payload"))
	}

	if err := s.userRepo.UpdateProfilePicture(c.Context(), id, data, contentType); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"message": "Profile picture updated", "contentType": contentType})
}
