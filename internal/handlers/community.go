package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/alphaboutique/storefront/internal/events"
	"github.com/alphaboutique/storefront/internal/models"
	"github.com/alphaboutique/storefront/internal/supabase"
)

// CommunityHandler covers the shopper-facing append-only records: item
// requests, feedback and notifications.
type CommunityHandler struct {
	DB     *supabase.Client
	Events *events.Producer
	Log    *slog.Logger
}

func (h *CommunityHandler) SubmitItemRequest(c echo.Context) error {
	var req models.ItemRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.ItemName == "" || req.UserEmail == "" {
		return errorResponse(c, http.StatusBadRequest, "item_name and user_email are required")
	}

	data := map[string]any{
		"item_name":  req.ItemName,
		"user_email": req.UserEmail,
		"status":     "pending",
	}
	result, err := h.DB.Insert(c.Request().Context(), "item_requests", []map[string]any{data})
	if err != nil {
		h.Log.Warn("item request failed", "user_email", req.UserEmail, "error", err)
		return errorResponse(c, http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": result})
}

func (h *CommunityHandler) SubmitFeedback(c echo.Context) error {
	var req models.CreateFeedback
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.UserEmail == "" || req.Message == "" {
		return errorResponse(c, http.StatusBadRequest, "user_email and message are required")
	}

	data := map[string]any{
		"user_email": req.UserEmail,
		"message":    req.Message,
	}
	result, err := h.DB.Insert(c.Request().Context(), "feedback", []map[string]any{data})
	if err != nil {
		h.Log.Warn("feedback failed", "user_email", req.UserEmail, "error", err)
		return errorResponse(c, http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": result})
}

func (h *CommunityHandler) GetNotifications(c echo.Context) error {
	rows, err := h.DB.Query(c.Request().Context(), "notifications", supabase.QuerySpec{})
	if err != nil {
		h.Log.Warn("notification listing failed", "error", err)
		return c.JSON(http.StatusOK, []map[string]any{})
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *CommunityHandler) CreateNotification(c echo.Context) error {
	var req models.CreateNotification
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Title == "" || req.Message == "" {
		return errorResponse(c, http.StatusBadRequest, "title and message are required")
	}
	if req.Type == "" {
		req.Type = "info"
	}

	ctx := c.Request().Context()
	data := map[string]any{
		"title":   req.Title,
		"message": req.Message,
		"type":    req.Type,
	}
	result, err := h.DB.Insert(ctx, "notifications", []map[string]any{data})
	if err != nil {
		h.Log.Warn("notification failed", "title", req.Title, "error", err)
		return errorResponse(c, http.StatusBadRequest, err.Error())
	}

	if err := h.Events.PublishEvent(ctx, events.TopicNotificationEvents, req.Type, map[string]any{
		"type":    "notification_posted",
		"title":   req.Title,
		"message": req.Message,
		"kind":    req.Type,
	}); err != nil {
		h.Log.Warn("notification event publish failed", "error", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": result})
}
