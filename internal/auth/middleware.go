package auth

import (
	"context"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	apperrors "storerating/internal/errors"
	"storerating/internal/model"
)

// SessionCookieName is the cookie holding the signed session token.
const SessionCookieName = "sid"

// SessionResolver maps a session cookie value to its user.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*model.User, error)
}

// Authenticate resolves the session cookie once per request and binds the
// user to both the echo context and the request context. Requests without a
// valid session continue anonymously; RequireRole decides what they may do.
func Authenticate(resolver SessionResolver) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "cookie:" + SessionCookieName,
		ContextKey:  ContextKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return resolver.ResolveSession(c.Request().Context(), token)
		},
		SuccessHandler: func(c echo.Context) {
			user, _ := c.Get(ContextKey).(*model.User)
			req := c.Request()
			c.SetRequest(req.WithContext(WithUser(req.Context(), user)))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return nil
		},
		ContinueOnIgnoredError: true,
	})
}

// CurrentUser returns the user Authenticate bound to the request context, or nil.
func CurrentUser(c echo.Context) *model.User {
	return UserFromContext(c.Request().Context())
}

// RequireRole admits only authenticated users holding one of roles.
// Missing identity fails as Unauthenticated before any role check.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return apperrors.ErrUnauthenticated
			}
			if !user.HasRole(roles...) {
				return apperrors.ErrForbidden
			}
			return next(c)
		}
	}
}

// RequireAuth admits any authenticated user.
func RequireAuth() echo.MiddlewareFunc {
	return RequireRole(model.AllRoles...)
}
