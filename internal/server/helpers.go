package server

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gearswap/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const (
	defaultPageSize = 20
	maxPageSize     = 100

	// maxImageBytes caps a decoded profile picture or listing photo at 5 MiB.
	maxImageBytes = 5 * 1024 * 1024
)

// allowedImageTypes is the content-type allow-list for uploaded images.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Pagination holds parsed page/page_size query parameters.
type Pagination struct {
	Page     int
	PageSize int
}

// Limit returns the page size as a query LIMIT.
func (p Pagination) Limit() int { return p.PageSize }

// Offset returns the row offset for the requested page.
func (p Pagination) Offset() int { return (p.Page - 1) * p.PageSize }

// TotalPages derives the page count for a result envelope.
func (p Pagination) TotalPages(total int64) int {
	pages := int((total + int64(p.PageSize) - 1) / int64(p.PageSize))
	if pages < 1 {
		pages = 1
	}
	return pages
}

// parsePagination extracts page and page_size query parameters.
func parsePagination(c *fiber.Ctx) Pagination {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	size := c.QueryInt("page_size", defaultPageSize)
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return Pagination{Page: page, PageSize: size}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "postId" -> "post ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		return strings.ToLower(param[:len(param)-2]) + " ID"
	}
	return param
}

// currentUserID returns the authenticated user set by the auth middleware.
func currentUserID(c *fiber.Ctx) uint {
	return c.Locals("userID").(uint)
}

// decodeImage turns a base64 payload (raw or data: URI) into validated bytes.
// The sniffed content type must be on the allow-list and must agree with the
// declared one when a data: URI carries it.
func decodeImage(payload string) ([]byte, string, error) {
	payload = strings.TrimSpace(payload)
	declared := ""

	if strings.HasPrefix(payload, "data:") {
		rest := payload[len("data:"):]
		semi := strings.Index(rest, ";base64,")
		if semi < 0 {
			return nil, "", models.NewValidationError("Image must be base64 encoded")
		}
		declared = rest[:semi]
		payload = rest[semi+len(";base64,"):]
	}

	if payload == "" {
		return nil, "", models.NewValidationError("Image payload is required")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", models.NewValidationError("Image is not valid base64")
	}
	if len(data) > maxImageBytes {
		return nil, "", models.NewValidationError("Image exceeds the 5 MiB limit")
	}

	detected := http.DetectContentType(data)
	if !allowedImageTypes[detected] {
		return nil, "", models.NewValidationError("Only JPEG and PNG images are allowed")
	}
	if declared != "" && declared != detected {
		return nil, "", models.NewValidationError("Image content does not match its declared type")
	}
	return data, detected, nil
}

// dataURI renders stored image bytes as a data: URI for JSON responses.
func dataURI(contentType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
}
