package router

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"storerating/internal/auth"
	apperrors "storerating/internal/errors"
	"storerating/internal/handler"
	"storerating/internal/logger"
	"storerating/internal/metrics"
	"storerating/internal/model"
	"storerating/internal/validation"
)

// Register wires routes and middleware. A nil seedHandler leaves the seed
// endpoint unmounted.
func Register(
	e *echo.Echo,
	log zerolog.Logger,
	resolver auth.SessionResolver,
	authHandler *handler.AuthHandler,
	adminHandler *handler.AdminHandler,
	storeHandler *handler.StoreHandler,
	ratingHandler *handler.RatingHandler,
	seedHandler *handler.SeedHandler,
) {
	e.HideBanner = true
	e.Validator = validation.New()
	e.HTTPErrorHandler = ErrorHandler(log)

	e.Use(middleware.RequestID())
	e.Use(metrics.Middleware())
	e.Use(logger.RequestLogger(log))
	e.Use(middleware.Recover())
	e.Use(auth.Authenticate(resolver))

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Session
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.POST("/logout", authHandler.Logout)
	api.GET("/user", authHandler.Me, auth.RequireAuth())
	api.POST("/user/password", authHandler.ChangePassword, auth.RequireAuth())

	// Admin
	admin := api.Group("/admin", auth.RequireRole(model.RoleAdmin))
	admin.GET("/stats", adminHandler.Stats)
	admin.GET("/users", adminHandler.ListUsers)
	admin.POST("/users", adminHandler.CreateUser)

	// Stores
	api.GET("/stores", storeHandler.ListStores)
	api.POST("/stores", storeHandler.CreateStore, auth.RequireRole(model.RoleAdmin))
	api.GET("/stores/:id", storeHandler.GetStore)
	api.GET("/stores/:id/ratings", storeHandler.ListRatings, auth.RequireRole(model.RoleAdmin, model.RoleStoreOwner))

	// Ratings
	raters := auth.RequireRole(model.RoleUser, model.RoleAdmin, model.RoleStoreOwner)
	api.POST("/ratings", ratingHandler.SubmitRating, raters)
	api.PUT("/ratings/:id", ratingHandler.UpdateRating, raters)

	// Development only
	if seedHandler != nil {
		api.POST("/seed", seedHandler.Seed)
	}
}

// ErrorHandler renders every error as an ErrorResponse. Domain errors go
// through MapErrorToHTTP; 5xx responses are logged.
func ErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var resp *apperrors.HTTPError
		var he *echo.HTTPError
		if errors.As(err, &he) {
			resp = apperrors.NewHTTPError(he.Code, messageOf(he), codeOf(he.Code))
		} else {
			resp = apperrors.MapErrorToHTTP(err)
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			log.Error().
				Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Msg("request failed")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(resp.StatusCode)
		} else {
			err = c.JSON(resp.StatusCode, resp.ToErrorResponse())
		}
		if err != nil {
			log.Error().Err(err).Msg("write error response")
		}
	}
}

func messageOf(he *echo.HTTPError) string {
	if msg, ok := he.Message.(string); ok {
		return msg
	}
	return fmt.Sprint(he.Message)
}

func codeOf(status int) string {
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}
