package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"assse/internal/db"
	"assse/internal/models"
	"assse/internal/utils/logger"
	"assse/internal/workflow"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

var log = logger.New("auth_middleware")

type AuthMiddleware struct {
	jwtSecret string
}

type Claims struct {
	UserID      string   `json:"user_id"`
	Email       string   `json:"email"`
	RoleCodes   []string `json:"role_codes"`
	Scrutinizer bool     `json:"scrutinizer"`
	Admin       bool     `json:"admin"`
	OfficeType  string   `json:"office_type,omitempty"`
	jwt.RegisteredClaims
}

func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
	}
}

func (m *AuthMiddleware) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization header")
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
			}

			return m.validateJWT(c, tokenParts[1], next)
		}
	}
}

func (m *AuthMiddleware) validateJWT(c echo.Context, tokenString string, next echo.HandlerFunc) error {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.jwtSecret), nil
	})

	if err != nil || !token.Valid {
		log.Error("Error parsing JWT token", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	// Validate expiration
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Token has expired")
	}

	// Verify auth transaction
	transaction := &models.AuthTransaction{}
	if err := db.DB.Where("user_id = ? AND token = ?",
		claims.UserID, tokenString).First(transaction).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Auth transaction not found")
	}

	// Verify user exists
	user := &models.User{}
	if err := db.DB.Preload("Roles").Where("id = ?", claims.UserID).First(user).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	// Role assignments in the store win over whatever the token was minted
	// with.
	c.Set("userID", user.ID)
	c.Set("email", user.Email)
	c.Set("roleCodes", user.RoleCodes())
	c.Set("scrutinizer", user.IsScrutinizer())
	c.Set("isAdmin", user.IsAdmin())
	c.Set("officeType", user.OfficeType)

	return next(c)
}

// GetUserID Helper functions to get values from context
func GetUserID(c echo.Context) string {
	if id, ok := c.Get("userID").(string); ok {
		return id
	}
	return ""
}

func GetRoleCodes(c echo.Context) []string {
	if codes, ok := c.Get("roleCodes").([]string); ok {
		return codes
	}
	return nil
}

func IsScrutinizer(c echo.Context) bool {
	if s, ok := c.Get("scrutinizer").(bool); ok {
		return s
	}
	return false
}

func IsAdmin(c echo.Context) bool {
	if a, ok := c.Get("isAdmin").(bool); ok {
		return a
	}
	return false
}

func GetOfficeType(c echo.Context) string {
	if t, ok := c.Get("officeType").(string); ok {
		return t
	}
	return ""
}

// GetActor builds the workflow actor for the authenticated user.
func GetActor(c echo.Context) workflow.Actor {
	return workflow.Actor{
		UserID:      GetUserID(c),
		RoleCodes:   GetRoleCodes(c),
		Scrutinizer: IsScrutinizer(c),
	}
}

// HasRole reports whether the authenticated user holds the role code.
func HasRole(c echo.Context, code string) bool {
	for _, rc := range GetRoleCodes(c) {
		if rc == code {
			return true
		}
	}
	return false
}
