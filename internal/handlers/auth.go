package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/alphaboutique/storefront/internal/models"
	"github.com/alphaboutique/storefront/internal/supabase"
)

type AuthHandler struct {
	DB        *supabase.Client
	AdminCode string
	Log       *slog.Logger
}

// Signup creates the account through the admin endpoint, then performs the
// secondary steps. Profile upsert and auto-login are soft: their failure is
// logged and the signup still reports success.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return errorResponse(c, http.StatusBadRequest, "email and password are required")
	}

	ctx := c.Request().Context()

	user, err := h.DB.AdminCreateUser(ctx, req.Email, req.Password)
	if err != nil {
		h.Log.Error("signup failed", "email", req.Email, "error", err)
		return errorResponse(c, http.StatusBadRequest, friendlySignupError(err))
	}
	if user.ID == "" {
		return errorResponse(c, http.StatusBadRequest, "Failed to create user account. Please try again.")
	}

	role := "User"
	if req.AdminCode == h.AdminCode {
		role = "Admin"
	}

	fullName := strings.TrimSpace(req.FirstName + " " + req.LastName)
	profile := map[string]any{
		"id":        user.ID,
		"email":     req.Email,
		"full_name": fullName,
		"role":      role,
	}
	if _, err := h.DB.Upsert(ctx, "profiles", profile, "id"); err != nil {
		h.Log.Warn("profile creation deferred", "user_id", user.ID, "error", err)
	}

	// Email is pre-confirmed, so the auto-login normally succeeds and the
	// client gets a usable token right away. The response token is null
	// when it does not.
	var accessToken any
	if session, err := h.DB.PasswordLogin(ctx, req.Email, req.Password); err != nil {
		h.Log.Warn("auto-login after signup failed", "email", req.Email, "error", err)
	} else {
		accessToken = session.AccessToken
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":       "success",
		"user_id":      user.ID,
		"role":         role,
		"access_token": accessToken,
		"name":         fullName,
		"email":        req.Email,
	})
}

// Login exchanges credentials for a token and resolves the profile, creating
// it lazily when the row does not exist yet. Every failure collapses to a
// generic unauthorized answer so the caller learns nothing about which step
// broke.
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusUnauthorized, "Invalid credentials")
	}

	ctx := c.Request().Context()

	session, err := h.DB.PasswordLogin(ctx, req.Email, req.Password)
	if err != nil || session.User == nil || session.User.ID == "" {
		h.Log.Warn("login failed", "email", req.Email, "error", err)
		return errorResponse(c, http.StatusUnauthorized, "Invalid credentials")
	}
	userID := session.User.ID

	profiles, err := h.DB.Query(ctx, "profiles", supabase.QuerySpec{
		Select:  "role, full_name",
		Filters: []supabase.Filter{supabase.Eq("id", userID)},
	})
	if err != nil {
		h.Log.Warn("profile lookup failed", "user_id", userID, "error", err)
		return errorResponse(c, http.StatusUnauthorized, "Invalid credentials")
	}

	role := "User"
	name := "Member"
	if len(profiles) == 0 {
		fullName := metadataName(session.User, req.Email)
		profile := map[string]any{
			"id":        userID,
			"email":     req.Email,
			"full_name": fullName,
			"role":      "User",
		}
		if _, err := h.DB.Upsert(ctx, "profiles", profile, "id"); err != nil {
			h.Log.Warn("lazy profile creation failed", "user_id", userID, "error", err)
		} else {
			h.Log.Info("profile created lazily on login", "user_id", userID)
			name = fullName
		}
	} else {
		if r, ok := profiles[0]["role"].(string); ok && r != "" {
			role = r
		}
		if n, ok := profiles[0]["full_name"].(string); ok && n != "" {
			name = n
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":       "success",
		"access_token": session.AccessToken,
		"role":         role,
		"name":         name,
		"email":        req.Email,
	})
}

// metadataName finds the best available display name: token metadata first,
// then the email's local part.
func metadataName(user *supabase.AuthUser, email string) string {
	if user != nil {
		if n, ok := user.UserMetadata["full_name"].(string); ok && n != "" {
			return n
		}
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

// friendlySignupError rewrites the identity provider's vocabulary into
// messages a shopper can act on.
func friendlySignupError(err error) string {
	msg := err.Error()
	if apiErr, ok := err.(*supabase.APIError); ok {
		msg = apiErr.Message
	}
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "User already registered"):
		return "This email is already registered. Please sign in instead."
	case strings.Contains(lower, "email rate limit exceeded"):
		return "Too many registration attempts. This email likely already has an account. Please try signing in instead."
	case strings.Contains(msg, "Password should be at least"):
		return "Password is too short. Please use at least 6 characters."
	case strings.Contains(lower, "too many requests"), strings.Contains(msg, "429"):
		return "Too many attempts. Please wait a few minutes before trying again."
	}
	return msg
}
