package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/alphaboutique/storefront/internal/models"
	"github.com/alphaboutique/storefront/internal/supabase"
)

// AdminHandler serves the back-office listings. Listings degrade to an
// empty array on upstream failure so the admin dashboard always renders.
type AdminHandler struct {
	DB  *supabase.Client
	Log *slog.Logger
}

func (h *AdminHandler) GetOrders(c echo.Context) error {
	return h.listing(c, "orders", supabase.QuerySpec{})
}

func (h *AdminHandler) GetRequests(c echo.Context) error {
	return h.listing(c, "item_requests", supabase.QuerySpec{})
}

func (h *AdminHandler) GetFeedback(c echo.Context) error {
	return h.listing(c, "feedback", supabase.QuerySpec{})
}

func (h *AdminHandler) GetUsers(c echo.Context) error {
	return h.listing(c, "profiles", supabase.QuerySpec{
		Select: "id,email,full_name,role,created_at",
	})
}

// FulfillRequest marks an item request as fulfilled.
func (h *AdminHandler) FulfillRequest(c echo.Context) error {
	var req models.FulfillRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.RequestID == "" {
		return errorResponse(c, http.StatusBadRequest, "request_id is required")
	}

	if _, err := h.DB.Update(c.Request().Context(), "item_requests",
		[]supabase.Filter{supabase.Eq("id", req.RequestID)},
		map[string]any{"status": "fulfilled"},
	); err != nil {
		h.Log.Warn("fulfill failed", "request_id", req.RequestID, "error", err)
		return errorResponse(c, http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}

func (h *AdminHandler) listing(c echo.Context, table string, spec supabase.QuerySpec) error {
	rows, err := h.DB.Query(c.Request().Context(), table, spec)
	if err != nil {
		h.Log.Warn("listing failed", "table", table, "error", err)
		return c.JSON(http.StatusOK, []map[string]any{})
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	return c.JSON(http.StatusOK, rows)
}
