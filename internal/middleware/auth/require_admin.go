package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/alphaboutique/storefront/internal/supabase"
)

// Guard verifies the identity provider's HS256 access tokens for the admin
// surface. An empty JWTSecret disables the guard entirely, which matches
// deployments that never configured one.
type Guard struct {
	JWTSecret []byte
	DB        *supabase.Client
	Log       *slog.Logger
}

func (g *Guard) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if len(g.JWTSecret) == 0 {
			return next(c)
		}

		header := c.Request().Header.Get("Authorization")
		raw := strings.TrimPrefix(header, "Bearer ")
		if raw == "" || raw == header {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
		}

		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signature method: %v", t.Header["alg"])
			}
			return g.JWTSecret, nil
		})
		if err != nil || !token.Valid {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
		sub, _ := claims["sub"].(string)
		if sub == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}

		rows, err := g.DB.Query(c.Request().Context(), "profiles", supabase.QuerySpec{
			Select:  "role",
			Filters: []supabase.Filter{supabase.Eq("id", sub)},
		})
		if err != nil {
			g.Log.Warn("admin role lookup failed", "user_id", sub, "error", err)
			return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
		}
		role := ""
		if len(rows) > 0 {
			role, _ = rows[0]["role"].(string)
		}
		if role != "Admin" {
			return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
		}

		c.Set("userID", sub)
		c.Set("role", role)
		return next(c)
	}
}
