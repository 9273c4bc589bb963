package server

import (
	"careerhub/internal/models"
	"careerhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetCommunities handles GET /api/community?path=
func (s *Server) GetCommunities(c *fiber.Ctx) error {
	posts, err := s.communityService.FindMany(c.UserContext(), c.Query("path"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, posts)
}

// CreateCommunity handles POST /api/community/create
func (s *Server) CreateCommunity(c *fiber.Ctx) error {
	var req struct {
		Path    string `json:"path"`
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.communityService.Create(c.UserContext(), service.CreatePostInput{
		UserID:  currentUserID(c),
		Path:    req.Path,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusCreated, post)
}

// GetCommunity handles GET /api/community/:id
func (s *Server) GetCommunity(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.communityService.FindOne(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, post)
}

// LikeCommunity handles POST /api/community/:id/like
func (s *Server) LikeCommunity(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	result, err := s.communityService.ToggleLike(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, result)
}

// CreateComment handles POST /api/community/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Comment string `json:"comment"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comments, err := s.communityService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID:      currentUserID(c),
		CommunityID: id,
		Comment:     req.Comment,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusCreated, comments)
}

// LikeComment handles POST /api/community/comments/:commentId/like
func (s *Server) LikeComment(c *fiber.Ctx) error {
	id, err := parseID(c, "commentId")
	if err != nil {
		return nil
	}
	result, err := s.communityService.CommentLike(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, result)
}
