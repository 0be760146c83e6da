package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storerating/internal/auth"
	"storerating/internal/service"
)

// RatingHandler handles rating submission and edits.
type RatingHandler struct {
	ratings service.RatingService
}

// NewRatingHandler creates a new rating handler.
func NewRatingHandler(ratings service.RatingService) *RatingHandler {
	return &RatingHandler{ratings: ratings}
}

// SubmitRatingRequest represents a new rating. The author is always the
// signed in user.
type SubmitRatingRequest struct {
	StoreID uint `json:"storeId" validate:"required"`
	Rating  int  `json:"rating" validate:"min=1,max=5"`
}

// UpdateRatingRequest carries the new value of a rating.
type UpdateRatingRequest struct {
	Rating int `json:"rating"`
}

// SubmitRating godoc
// @Summary Rate a store
// @Tags ratings
// @Accept json
// @Produce json
// @Param request body SubmitRatingRequest true "Rating"
// @Success 201 {object} model.Rating
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /ratings [post]
func (h *RatingHandler) SubmitRating(c echo.Context) error {
	var req SubmitRatingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	rating, err := h.ratings.SubmitRating(c.Request().Context(), auth.CurrentUser(c), req.StoreID, req.Rating)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, rating)
}

// UpdateRating godoc
// @Summary Change a rating
// @Description Only the author of the rating may change it.
// @Tags ratings
// @Accept json
// @Produce json
// @Param id path int true "Rating ID"
// @Param request body UpdateRatingRequest true "New value"
// @Success 200 {object} model.Rating
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /ratings/{id} [put]
func (h *RatingHandler) UpdateRating(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req UpdateRatingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	rating, err := h.ratings.UpdateRating(c.Request().Context(), auth.CurrentUser(c), id, req.Rating)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rating)
}
