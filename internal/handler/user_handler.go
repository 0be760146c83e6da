package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "storerating/internal/errors"
	"storerating/internal/model"
	"storerating/internal/repository"
	"storerating/internal/service"
)

// AdminHandler serves the admin dashboard endpoints.
type AdminHandler struct {
	users service.UserService
	stats service.StatsService
}

// NewAdminHandler creates a handler layer.
func NewAdminHandler(users service.UserService, stats service.StatsService) *AdminHandler {
	return &AdminHandler{users: users, stats: stats}
}

// CreateUserRequest is the admin form for adding an account of any role.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"email"`
	Password string `json:"password" validate:"min=8,max=16,uppercase_char,special_char"`
	Name     string `json:"name" validate:"min=20,max=60"`
	Address  string `json:"address" validate:"max=400"`
	Role     string `json:"role" validate:"omitempty,oneof=admin user store_owner"`
}

// Stats godoc
// @Summary Dashboard totals
// @Tags admin
// @Produce json
// @Success 200 {object} service.Stats
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/stats [get]
func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.stats.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// ListUsers godoc
// @Summary List users
// @Tags admin
// @Produce json
// @Param search query string false "Substring of name, email or address"
// @Param role query string false "Exact role" Enums(admin, user, store_owner)
// @Success 200 {array} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	filter := repository.UserFilter{Search: strings.TrimSpace(c.QueryParam("search"))}
	if raw := c.QueryParam("role"); raw != "" {
		role, ok := model.ParseRole(raw)
		if !ok {
			return apperrors.NewValidationError("Invalid role")
		}
		filter.Role = role
	}

	users, err := h.users.ListUsers(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// CreateUser godoc
// @Summary Create user
// @Description Admins may create users of any role; role defaults to user.
// @Tags admin
// @Accept json
// @Produce json
// @Param user body CreateUserRequest true "User payload"
// @Success 201 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/users [post]
func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	created, err := h.users.CreateUser(c.Request().Context(), service.NewUser{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Address:  req.Address,
		Role:     model.Role(req.Role),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}
