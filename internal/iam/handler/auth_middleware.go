package handler

import (
	"errors"
	"strings"

	"iam/internal/iam/model"
	"iam/internal/iam/service"

	"github.com/labstack/echo/v4"
)

const principalKey = "iam.principal"

// AuthMiddleware resolves a bearer token into a Principal and stores it on the context.
// Requests without a usable token continue anonymously; the guard decides what that means.
func AuthMiddleware(svc service.IAMService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return next(c)
			}

			p, err := svc.Authenticate(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, service.ErrUnauthenticated) {
					return next(c)
				}
				return respondError(c, err)
			}

			c.Set(principalKey, p)
			return next(c)
		}
	}
}

// PrincipalFrom returns the authenticated caller, or nil.
func PrincipalFrom(c echo.Context) *model.Principal {
	p, _ := c.Get(principalKey).(*model.Principal)
	return p
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
