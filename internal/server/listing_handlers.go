package server

import (
	"careerhub/internal/middleware"
	"careerhub/internal/models"
	"careerhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// reservedQueryKeys are query parameters that are never treated as filters.
var reservedQueryKeys = map[string]bool{"page": true, "count": true}

func unavailable(what string) error {
	return &models.AppError{Code: models.CodeNotFound, Message: what + " is not available"}
}

// listingGate tags the request with its category and listing ID, then rejects
// categories switched off for the caller.
func (s *Server) listingGate(c *fiber.Ctx) error {
	category := c.Params("path")
	middleware.WithListing(c, category, c.Params("id"))
	if !s.featureFlags.CategoryEnabled(category, currentUserID(c)) {
		return respondServiceError(c, unavailable("Category "+category))
	}
	return c.Next()
}

// requireFlag answers 404 while the named switch is off for the caller.
func (s *Server) requireFlag(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !s.featureFlags.Enabled(name, currentUserID(c)) {
			return respondServiceError(c, unavailable("Feature "+name))
		}
		return c.Next()
	}
}

// findManyInput reads the category, page, count flag and filter parameters of a
// listing request. Any non-empty count value asks for the number of matches.
func findManyInput(c *fiber.Ctx) service.FindManyInput {
	params := make(map[string]string)
	for k, v := range c.Queries() {
		if !reservedQueryKeys[k] {
			params[k] = v
		}
	}
	return service.FindManyInput{
		Category: c.Params("path"),
		Params:   params,
		Page:     c.Query("page"),
		Count:    c.Query("count") != "",
	}
}

func respondFindMany(c *fiber.Ctx, in service.FindManyInput, res *service.FindManyResult) error {
	if in.Count {
		return respondData(c, fiber.StatusOK, res.Total)
	}
	return respondData(c, fiber.StatusOK, res.Listings)
}

// GetListings handles GET /api/crawling/:path?page=&count=&<filters>
func (s *Server) GetListings(c *fiber.Ctx) error {
	in := findManyInput(c)
	res, err := s.listingService.FindMany(c.UserContext(), in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondFindMany(c, in, res)
}

// GetMyListings handles GET /api/crawling/:path/mine
func (s *Server) GetMyListings(c *fiber.Ctx) error {
	in := findManyInput(c)
	res, err := s.listingService.FindByUserKeyword(c.UserContext(), currentUserID(c), in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondFindMany(c, in, res)
}

// GetListing handles GET /api/crawling/:path/:id
func (s *Server) GetListing(c *fiber.Ctx) error {
	item, err := s.listingService.FindOne(c.UserContext(), c.Params("path"), c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, item)
}

// GetBestListings handles GET /api/crawling/:path/best
func (s *Server) GetBestListings(c *fiber.Ctx) error {
	items, err := s.listingService.BestOf(c.UserContext(), c.Params("path"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondData(c, fiber.StatusOK, items)
}

// GetRandomListings handles GET /api/crawling/random. Categories switched off
// for the caller are left out.
func (s *Server) GetRandomListings(c *fiber.Ctx) error {
	picks, err := s.listingService.RandomPick(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	for category := range picks {
		if !s.featureFlags.CategoryEnabled(category, currentUserID(c)) {
			delete(picks, category)
		}
	}
	return respondData(c, fiber.StatusOK, picks)
}
