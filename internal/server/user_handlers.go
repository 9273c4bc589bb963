package server

import (
	"careerhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMyFeatureFlags handles GET /api/users/me/feature-flags
func (s *Server) GetMyFeatureFlags(c *fiber.Ctx) error {
	return respondData(c, fiber.StatusOK, s.featureFlags.Snapshot(currentUserID(c)))
}

// GetMyKeywords handles GET /api/users/me/keywords/:path
func (s *Server) GetMyKeywords(c *fiber.Ctx) error {
	keywords, err := s.keywordService.List(c.UserContext(), currentUserID(c), c.Params("path"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, keywords)
}

// UpdateMyKeywords handles PUT /api/users/me/keywords/:path
func (s *Server) UpdateMyKeywords(c *fiber.Ctx) error {
	var req struct {
		Keywords []string `json:"keywords"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	keywords, err := s.keywordService.Replace(c.UserContext(), currentUserID(c), c.Params("path"), req.Keywords)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, keywords)
}
