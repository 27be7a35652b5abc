package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alphaboutique/storefront/internal/models"
	"github.com/alphaboutique/storefront/internal/mpesa"
)

func newDaraja(t *testing.T, push http.HandlerFunc) *mpesa.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/v1/generate" {
			w.Write([]byte(`{"access_token": "tok"}`))
			return
		}
		push(w, r)
	}))
	t.Cleanup(srv.Close)

	return mpesa.New(mpesa.Config{
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		Shortcode:      "174379",
		Passkey:        "passkey",
		CallbackURL:    "https://example.com/callback",
		BaseURL:        srv.URL,
	})
}

func TestSTKPushRecordsPendingOrder(t *testing.T) {
	var orders []map[string]any
	db := newSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/v1/orders", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&orders))
		w.Write([]byte(`[{"id": 1}]`))
	})
	gateway := newDaraja(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ResponseCode": "0", "CheckoutRequestID": "ws_CO_1"}`))
	})

	h := &PaymentHandler{DB: db, Mpesa: gateway, Log: testLogger()}

	rec, c := doJSON(t, http.MethodPost, "/auth/stkpush", models.STKPushRequest{
		PhoneNumber: "0712345678",
		Amount:      5000,
		UserEmail:   "jane@example.com",
	})
	require.NoError(t, h.STKPush(c))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody(t, rec)
	require.Equal(t, "success", resp["status"])
	require.Equal(t, "STK Push initiated", resp["message"])

	require.Len(t, orders, 1)
	require.Equal(t, "jane@example.com", orders[0]["user_email"])
	require.Equal(t, "254712345678", orders[0]["phone_number"])
	require.Equal(t, float64(5000), orders[0]["amount"])
	require.Equal(t, "mpesa", orders[0]["payment_method"])
	require.Equal(t, "pending", orders[0]["status"])
}

func TestSTKPushWithoutEmailSkipsOrder(t *testing.T) {
	orderCalls := 0
	db := newSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		orderCalls++
		w.Write([]byte(`[]`))
	})
	gateway := newDaraja(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ResponseCode": "0"}`))
	})

	h := &PaymentHandler{DB: db, Mpesa: gateway, Log: testLogger()}

	rec, c := doJSON(t, http.MethodPost, "/auth/stkpush", models.STKPushRequest{
		PhoneNumber: "0712345678",
		Amount:      100,
	})
	require.NoError(t, h.STKPush(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 0, orderCalls)
}

func TestSTKPushSurvivesOrderFailure(t *testing.T) {
	db := newSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	gateway := newDaraja(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ResponseCode": "0"}`))
	})

	h := &PaymentHandler{DB: db, Mpesa: gateway, Log: testLogger()}

	rec, c := doJSON(t, http.MethodPost, "/auth/stkpush", models.STKPushRequest{
		PhoneNumber: "0712345678",
		Amount:      100,
		UserEmail:   "jane@example.com",
	})
	require.NoError(t, h.STKPush(c))
	// the push already happened, so the response still reports success
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "success", decodeBody(t, rec)["status"])
}

func TestSTKPushRejectedByGateway(t *testing.T) {
	db := newSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no order should be recorded for a rejected push")
	})
	gateway := newDaraja(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errorMessage": "Invalid Amount"}`))
	})

	h := &PaymentHandler{DB: db, Mpesa: gateway, Log: testLogger()}

	rec, c := doJSON(t, http.MethodPost, "/auth/stkpush", models.STKPushRequest{
		PhoneNumber: "0712345678",
		Amount:      100,
		UserEmail:   "jane@example.com",
	})
	require.NoError(t, h.STKPush(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid Amount", decodeBody(t, rec)["message"])
}

func TestSTKPushMissingCredentials(t *testing.T) {
	h := &PaymentHandler{
		DB:    brokenSupabase(t),
		Mpesa: mpesa.New(mpesa.Config{}),
		Log:   testLogger(),
	}

	rec, c := doJSON(t, http.MethodPost, "/auth/stkpush", models.STKPushRequest{
		PhoneNumber: "0712345678",
		Amount:      100,
	})
	require.NoError(t, h.STKPush(c))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSTKPushValidation(t *testing.T) {
	h := &PaymentHandler{DB: brokenSupabase(t), Mpesa: mpesa.New(mpesa.Config{}), Log: testLogger()}

	rec, c := doJSON(t, http.MethodPost, "/auth/stkpush", models.STKPushRequest{Amount: 100})
	require.NoError(t, h.STKPush(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
