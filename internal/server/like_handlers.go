package server

import (
	"gearswap/internal/models"

	"github.com/gofiber/fiber/v2"
)

// LikePost handles POST /api/likedPosts/:postId. Liking twice is a conflict.
func (s *Server) LikePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	if err := s.likeRepo.Like(c.Context(), currentUserID(c), postID); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Post liked"})
}

// GetLikedPosts handles GET /api/likedPosts
func (s *Server) GetLikedPosts(c *fiber.Ctx) error {
	p := parsePagination(c)
	likes, err := s.likeRepo.ListByUser(c.Context(), currentUserID(c), p.Limit(), p.Offset())
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"likedPosts": likes})
}

// GetLikedPost handles GET /api/likedPosts/:postId
func (s *Server) GetLikedPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	like, err := s.likeRepo.Get(c.Context(), currentUserID(c), postID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(like)
}

// UnlikePost handles DELETE /api/likedPosts/:postId
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	if err := s.likeRepo.Unlike(c.Context(), currentUserID(c), postID); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"message": "Post unliked"})
}
