package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/alphaboutique/storefront/internal/events"
	"github.com/alphaboutique/storefront/internal/models"
	"github.com/alphaboutique/storefront/internal/mpesa"
	"github.com/alphaboutique/storefront/internal/supabase"
)

type PaymentHandler struct {
	DB     *supabase.Client
	Mpesa  *mpesa.Client
	Events *events.Producer
	Log    *slog.Logger
}

// STKPush asks the gateway to prompt the payer's device. On success a
// pending order is recorded when an email was supplied; the payment may
// already be in flight, so a failed order insert is logged, never surfaced.
func (h *PaymentHandler) STKPush(c echo.Context) error {
	var req models.STKPushRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.PhoneNumber == "" || req.Amount <= 0 {
		return errorResponse(c, http.StatusBadRequest, "phone_number and a positive amount are required")
	}

	ctx := c.Request().Context()

	result, err := h.Mpesa.STKPush(ctx, req.PhoneNumber, req.Amount, "AlphaBoutique", "Payment for order")
	if err != nil {
		h.Log.Error("stk push failed", "phone", req.PhoneNumber, "error", err)

		var pushErr *mpesa.PushError
		if errors.As(err, &pushErr) {
			return errorResponse(c, http.StatusBadRequest, pushErr.Message)
		}
		return errorResponse(c, http.StatusInternalServerError, err.Error())
	}

	if req.UserEmail != "" {
		order := map[string]any{
			"user_email":     req.UserEmail,
			"phone_number":   result.Phone,
			"amount":         req.Amount,
			"payment_method": "mpesa",
			"status":         "pending",
		}
		if _, err := h.DB.Insert(ctx, "orders", []map[string]any{order}); err != nil {
			h.Log.Warn("failed to save order", "user_email", req.UserEmail, "error", err)
		} else {
			h.Log.Info("order saved", "user_email", req.UserEmail)
			if err := h.Events.PublishEvent(ctx, events.TopicOrderEvents, req.UserEmail, map[string]any{
				"type":       "order_pending",
				"user_email": req.UserEmail,
				"amount":     req.Amount,
				"phone":      result.Phone,
			}); err != nil {
				h.Log.Warn("order event publish failed", "error", err)
			}
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"message": "STK Push initiated",
		"data":    result.Data,
	})
}
