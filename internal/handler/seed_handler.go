package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"storerating/internal/seed"
)

// Seeder fills empty tables with demo data.
type Seeder interface {
	Run(ctx context.Context) (seed.Result, error)
}

// SeedHandler handles seed data endpoints.
type SeedHandler struct {
	seeder Seeder
}

// NewSeedHandler creates a new seed handler.
func NewSeedHandler(seeder Seeder) *SeedHandler {
	return &SeedHandler{seeder: seeder}
}

// SeedResponse represents the seed response.
type SeedResponse struct {
	Message string `json:"message"`
	Users   int    `json:"users"`
	Stores  int    `json:"stores"`
}

// Seed godoc
// @Summary Seed demo users and stores
// @Description Only tables that are empty are filled. Not mounted in production.
// @Tags seed
// @Produce json
// @Success 200 {object} SeedResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /seed [post]
func (h *SeedHandler) Seed(c echo.Context) error {
	res, err := h.seeder.Run(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SeedResponse{
		Message: "Seed completed",
		Users:   res.Users,
		Stores:  res.Stores,
	})
}
