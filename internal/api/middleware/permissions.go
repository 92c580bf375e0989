package middleware

import (
	"net/http"

	"assse/internal/services"

	"github.com/labstack/echo/v4"
)

// actionForMethod maps an HTTP method onto the CRUD right a role-menu
// permission row grants.
func actionForMethod(method string) (services.PolicyAction, bool) {
	switch method {
	case http.MethodGet:
		return services.PolicyActionView, true
	case http.MethodPost:
		return services.PolicyActionCreate, true
	case http.MethodPut, http.MethodPatch:
		return services.PolicyActionEdit, true
	case http.MethodDelete:
		return services.PolicyActionDelete, true
	default:
		return "", false
	}
}

// RequireMenuPermission gates a route group on the permission rows bound to
// one menu item. Admin and wildcard roles pass unconditionally inside the
// policy service.
func RequireMenuPermission(policy *services.PolicyService, menuItemID string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			action, ok := actionForMethod(c.Request().Method)
			if !ok {
				return echo.NewHTTPError(http.StatusForbidden, "invalid request method")
			}

			allowed, err := policy.CanPerform(c.Request().Context(), GetUserID(c), action, menuItemID)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "permission check failed")
			}
			if !allowed {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
			}

			return next(c)
		}
	}
}

// RequireRole gates a route on holding any of the given role codes. Admins
// always pass.
func RequireRole(codes ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if IsAdmin(c) {
				return next(c)
			}
			for _, code := range codes {
				if HasRole(c, code) {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
		}
	}
}

// RequireScrutinizer gates scrutiny endpoints.
func RequireScrutinizer() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if IsAdmin(c) || IsScrutinizer(c) {
				return next(c)
			}
			return echo.NewHTTPError(http.StatusForbidden, "scrutinizer role required")
		}
	}
}
