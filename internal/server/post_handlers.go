package server

import (
	"encoding/json"
	"log/slog"
	"time"

	"gearswap/internal/middleware"
	"gearswap/internal/models"
	"gearswap/internal/repository"
	"gearswap/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// postImageView is the inline rendering of a stored listing photo.
type postImageView struct {
	ID          uint   `json:"id"`
	ContentType string `json:"contentType"`
	Data        string `json:"data"`
}

// postView is a listing as returned by the API: tags decoded from their
// stored JSON and images inlined as data: URIs.
type postView struct {
	ID           uint            `json:"id"`
	UserID       uint            `json:"userId"`
	Username     string          `json:"username,omitempty"`
	Price        float64         `json:"price"`
	Description  string          `json:"description"`
	Size         string          `json:"size"`
	Category     string          `json:"category"`
	ClothingType string          `json:"clothingType"`
	Condition    string          `json:"condition"`
	Tags         []string        `json:"tags"`
	IsSold       bool            `json:"isSold"`
	DatePosted   time.Time       `json:"datePosted"`
	LikeCount    int             `json:"likeCount"`
	Image        *postImageView  `json:"image,omitempty"`
	Images       []postImageView `json:"images,omitempty"`
}

func toImageView(img *models.PostImage) *postImageView {
	if img == nil {
		return nil
	}
	return &postImageView{
		ID:          img.ID,
		ContentType: img.ContentType,
		Data:        dataURI(img.ContentType, img.ImageData),
	}
}

func toPostView(post *models.Post) postView {
	var tags []string
	if post.Tags != "" {
		_ = json.Unmarshal([]byte(post.Tags), &tags)
	}
	if tags == nil {
		tags = []string{}
	}
	return postView{
		ID:           post.ID,
		UserID:       post.UserID,
		Username:     post.Username,
		Price:        post.Price,
		Description:  post.Description,
		Size:         post.Size,
		Category:     post.Category,
		ClothingType: post.ClothingType,
		Condition:    post.Condition,
		Tags:         tags,
		IsSold:       post.IsSold,
		DatePosted:   post.DatePosted,
		LikeCount:    post.LikeCount,
	}
}

// CreatePost handles POST /api/posts. Up to 5 inline base64 images are
// accepted alongside the listing fields; all of them are validated before
// anything is written.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Price        float64  `json:"price" validate:"required,gt=0"`
		Description  string   `json:"description" validate:"required"`
		Size         string   `json:"size" validate:"required"`
		Category     string   `json:"category" validate:"required"`
		ClothingType string   `json:"clothingType" validate:"required"`
		Condition    string   `json:"condition"`
		Tags         []string `json:"tags"`
		Images       []string `json:"images" validate:"max=5"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := validation.ValidateStruct(req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	type decoded struct {
		data        []byte
		contentType string
	}
	images := make([]decoded, 0, len(req.Images))
	for _, payload := range req.Images {
		data, contentType, err := decodeImage(payload)
		if err != nil {
			return models.RespondWithError(c, models.StatusForError(err), err)
		}
		images = append(images, decoded{data: data, contentType: contentType})
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	rawTags, err := json.Marshal(tags)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	post := &models.Post{
		UserID:       currentUserID(c),
		Price:        req.Price,
		Description:  req.Description,
		Size:         req.Size,
		Category:     req.Category,
		ClothingType: req.ClothingType,
		Condition:    req.Condition,
		Tags:         string(rawTags),
	}
	if err := s.postRepo.Create(c.Context(), post); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	view := toPostView(post)
	for _, img := range images {
		stored := &models.PostImage{
			PostID:      post.ID,
			ImageData:   img.data,
			ContentType: img.contentType,
		}
		if err := s.postRepo.AddImage(c.Context(), stored); err != nil {
			return models.RespondWithError(c, models.StatusForError(err), err)
		}
		view.Images = append(view.Images, *toImageView(stored))
	}

	return c.Status(fiber.StatusCreated).JSON(view)
}

// listEnvelope renders a page of listings with each post's first image.
func (s *Server) listEnvelope(c *fiber.Ctx, posts []*models.Post, total int64, p Pagination) error {
	views := make([]postView, 0, len(posts))
	for _, post := range posts {
		view := toPostView(post)
		first, err := s.postRepo.FirstImage(c.Context(), post.ID)
		if err != nil {
			middleware.Logger.WarnContext(c.Context(), "failed to load listing cover image",
				slog.Uint64("post_id", uint64(post.ID)),
				slog.String("error", err.Error()),
			)
		}
		view.Image = toImageView(first)
		views = append(views, view)
	}

	return c.JSON(fiber.Map{
		"posts":       views,
		"page":        p.Page,
		"page_size":   p.PageSize,
		"total_posts": total,
		"total_pages": p.TotalPages(total),
	})
}

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	p := parsePagination(c)
	posts, total, err := s.postRepo.List(c.Context(), repository.PostFilter{}, p.Limit(), p.Offset())
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return s.listEnvelope(c, posts, total, p)
}

// FilterPosts handles GET /api/posts/filter with allow-listed query filters.
func (s *Server) FilterPosts(c *fiber.Ctx) error {
	filter := repository.PostFilter{
		ClothingType: c.Query("clothingType"),
		Size:         c.Query("size"),
		Category:     c.Query("category"),
		Condition:    c.Query("condition"),
		Tag:          c.Query("tag"),
	}
	if userID := c.QueryInt("userId", 0); userID > 0 {
		filter.UserID = uint(userID)
	}
	if min := c.QueryFloat("minPrice", -1); min >= 0 {
		filter.MinPrice = &min
	}
	if max := c.QueryFloat("maxPrice", -1); max >= 0 {
		filter.MaxPrice = &max
	}

	p := parsePagination(c)
	posts, total, err := s.postRepo.List(c.Context(), filter, p.Limit(), p.Offset())
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return s.listEnvelope(c, posts, total, p)
}

// GetPost handles GET /api/posts/:id — the full listing with all images.
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	view := toPostView(post)
	images, err := s.postRepo.ListImages(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	for i := range images {
		view.Images = append(view.Images, *toImageView(&images[i]))
	}
	return c.JSON(view)
}

// ownedPost loads a post and verifies the caller owns it.
func (s *Server) ownedPost(c *fiber.Ctx, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(c.Context(), id)
	if err != nil {
		return nil, err
	}
	if post.UserID != currentUserID(c) {
		return nil, models.NewUnauthorizedError("You do not own this listing")
	}
	return post, nil
}

// UpdatePost handles PUT /api/posts/:id. Sparse update of allow-listed
// fields plus optional image add/remove actions.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.ownedPost(c, id)
	if err != nil {
		if models.StatusForError(err) == fiber.StatusUnauthorized {
			return models.RespondWithError(c, fiber.StatusForbidden, err)
		}
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	var req struct {
		Price          *float64  `json:"price"`
		Description    *string   `json:"description"`
		Size           *string   `json:"size"`
		Category       *string   `json:"category"`
		ClothingType   *string   `json:"clothingType"`
		Condition      *string   `json:"condition"`
		Tags           *[]string `json:"tags"`
		AddImages      []string  `json:"addImages"`
		RemoveImageIDs []uint    `json:"removeImageIds"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Price != nil {
		if *req.Price <= 0 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Price must be positive"))
		}
		post.Price = *req.Price
	}
	if req.Description != nil {
		post.Description = *req.Description
	}
	if req.Size != nil {
		post.Size = *req.Size
	}
	if req.Category != nil {
		post.Category = *req.Category
	}
	if req.ClothingType != nil {
		post.ClothingType = *req.ClothingType
	}
	if req.Condition != nil {
		post.Condition = *req.Condition
	}
	if req.Tags != nil {
		raw, merr := json.Marshal(*req.Tags)
		if merr != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(merr))
		}
		post.Tags = string(raw)
	}

	// The username column is query-time only; clear it so Save does not
	// try to persist it.
	post.Username = ""
	if err := s.postRepo.Update(c.Context(), post); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	for _, imageID := range req.RemoveImageIDs {
		if err := s.postRepo.DeleteImage(c.Context(), id, imageID); err != nil {
			return models.RespondWithError(c, models.StatusForError(err), err)
		}
	}
	for _, payload := range req.AddImages {
		data, contentType, derr := decodeImage(payload)
		if derr != nil {
			return models.RespondWithError(c, models.StatusForError(derr), derr)
		}
		img := &models.PostImage{PostID: id, ImageData: data, ContentType: contentType}
		if err := s.postRepo.AddImage(c.Context(), img); err != nil {
			return models.RespondWithError(c, models.StatusForError(err), err)
		}
	}

	view := toPostView(post)
	images, err := s.postRepo.ListImages(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	for i := range images {
		view.Images = append(view.Images, *toImageView(&images[i]))
	}
	return c.JSON(view)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if _, err := s.ownedPost(c, id); err != nil {
		if models.StatusForError(err) == fiber.StatusUnauthorized {
			return models.RespondWithError(c, fiber.StatusForbidden, err)
		}
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	if err := s.postRepo.Delete(c.Context(), id); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"message": "Listing deleted"})
}

// MarkPostSold handles POST /api/posts/:id/sold
func (s *Server) MarkPostSold(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if _, err := s.ownedPost(c, id); err != nil {
		if models.StatusForError(err) == fiber.StatusUnauthorized {
			return models.RespondWithError(c, fiber.StatusForbidden, err)
		}
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	var req struct {
		Sold *bool `json:"sold"`
	}
	sold := true
	if err := c.BodyParser(&req); err == nil && req.Sold != nil {
		sold = *req.Sold
	}

	if err := s.postRepo.SetSold(c.Context(), id, sold); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"id": id, "isSold": sold})
}

// AddPostImage handles POST /api/posts/:id/images
func (s *Server) AddPostImage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if _, err := s.ownedPost(c, id); err != nil {
		if models.StatusForError(err) == fiber.StatusUnauthorized {
			return models.RespondWithError(c, fiber.StatusForbidden, err)
		}
		return models.RespondWithError(c, models.StatusForError(err), err)
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
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	image := &models.PostImage{PostID: id, ImageData: data, ContentType: contentType}
	if err := s.postRepo.AddImage(c.Context(), image); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.Status(fiber.StatusCreated).JSON(toImageView(image))
}

// GetPostImage handles GET /api/posts/:id/images/:imageId.
// Returns the raw bytes with the stored Content-Type.
func (s *Server) GetPostImage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	imageID, err := s.parseID(c, "imageId")
	if err != nil {
		return nil
	}

	image, err := s.postRepo.GetImage(c.Context(), id, imageID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	c.Set(fiber.HeaderContentType, image.ContentType)
	return c.Send(image.ImageData)
}

// DeletePostImage handles DELETE /api/posts/:id/images/:imageId
func (s *Server) DeletePostImage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	imageID, err := s.parseID(c, "imageId")
	if err != nil {
		return nil
	}

	if _, err := s.ownedPost(c, id); err != nil {
		if models.StatusForError(err) == fiber.StatusUnauthorized {
			return models.RespondWithError(c, fiber.StatusForbidden, err)
		}
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	if err := s.postRepo.DeleteImage(c.Context(), id, imageID); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"message": "Image deleted"})
}
