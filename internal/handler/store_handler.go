package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"storerating/internal/auth"
	"storerating/internal/service"
)

// StoreHandler serves the store catalog.
type StoreHandler struct {
	stores  service.StoreService
	ratings service.RatingService
}

// NewStoreHandler creates a new store handler.
func NewStoreHandler(stores service.StoreService, ratings service.RatingService) *StoreHandler {
	return &StoreHandler{stores: stores, ratings: ratings}
}

// CreateStoreRequest represents a new store.
type CreateStoreRequest struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address" validate:"required"`
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid id")
	}
	return uint(id), nil
}

// ListStores godoc
// @Summary List stores
// @Description Public listing with average rating. Signed in callers also get myRating.
// @Tags stores
// @Produce json
// @Param search query string false "Substring of name or address"
// @Success 200 {array} model.EnrichedStore
// @Failure 500 {object} errors.ErrorResponse
// @Router /stores [get]
func (h *StoreHandler) ListStores(c echo.Context) error {
	search := strings.TrimSpace(c.QueryParam("search"))
	stores, err := h.stores.ListStores(c.Request().Context(), search, auth.CurrentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stores)
}

// CreateStore godoc
// @Summary Create store
// @Tags stores
// @Accept json
// @Produce json
// @Param store body CreateStoreRequest true "Store payload"
// @Success 201 {object} model.Store
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /stores [post]
func (h *StoreHandler) CreateStore(c echo.Context) error {
	var req CreateStoreRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	store, err := h.stores.CreateStore(c.Request().Context(), req.Name, req.Address)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, store)
}

// GetStore godoc
// @Summary Get store by id
// @Tags stores
// @Produce json
// @Param id path int true "Store ID"
// @Success 200 {object} model.StoreDetail
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /stores/{id} [get]
func (h *StoreHandler) GetStore(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	detail, err := h.stores.GetStore(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, detail)
}

// ListRatings godoc
// @Summary Ratings for a store
// @Description Newest first, each with its author. Any store owner may read any store.
// @Tags stores
// @Produce json
// @Param id path int true "Store ID"
// @Success 200 {array} model.Rating
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /stores/{id}/ratings [get]
func (h *StoreHandler) ListRatings(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ratings, err := h.ratings.ListForStore(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ratings)
}
