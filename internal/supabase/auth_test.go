package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdminCreateUser(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/v1/admin/users", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Write([]byte(`{"id": "user-1", "email": "a@b.com"}`))
	})

	user, err := client.AdminCreateUser(context.Background(), "a@b.com", "secret123")
	require.NoError(t, err)
	require.Equal(t, "user-1", user.ID)
	require.Equal(t, "a@b.com", user.Email)

	// the admin endpoint pre-confirms the email so no confirmation mail is sent
	require.Equal(t, true, body["email_confirm"])
	require.Equal(t, "a@b.com", body["email"])
}

func TestPasswordLogin(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/v1/token", r.URL.Path)
		require.Equal(t, "password", r.URL.Query().Get("grant_type"))
		w.Write([]byte(`{"access_token": "tok", "user": {"id": "user-1", "user_metadata": {"full_name": "Jane Doe"}}}`))
	})

	session, err := client.PasswordLogin(context.Background(), "a@b.com", "secret123")
	require.NoError(t, err)
	require.Equal(t, "tok", session.AccessToken)
	require.Equal(t, "user-1", session.User.ID)
	require.Equal(t, "Jane Doe", session.User.UserMetadata["full_name"])
}

func TestAuthMessagePriority(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"msg wins", `{"msg": "a", "message": "b", "error_description": "c", "error": "d"}`, "a"},
		{"message next", `{"message": "b", "error_description": "c", "error": "d"}`, "b"},
		{"error_description next", `{"error_description": "c", "error": "d"}`, "c"},
		{"error last", `{"error": "d"}`, "d"},
		{"fallback to status text", `not json`, http.StatusText(http.StatusBadRequest)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, authMessage([]byte(tc.body), http.StatusBadRequest))
		})
	}
}

func TestAdminCreateUserError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"msg": "User already registered"}`))
	})

	_, err := client.AdminCreateUser(context.Background(), "a@b.com", "secret123")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "User already registered", apiErr.Message)
}

func TestPasswordLoginError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error_description": "Invalid login credentials"}`))
	})

	_, err := client.PasswordLogin(context.Background(), "a@b.com", "wrong")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "Invalid login credentials", apiErr.Message)
}

func TestPasswordLoginNetworkError(t *testing.T) {
	client, err := New(Config{URL: "http://127.0.0.1:1", APIKey: "k"})
	require.NoError(t, err)

	_, err = client.PasswordLogin(context.Background(), "a@b.com", "pw")
	require.Error(t, err)
	require.Contains(t, err.Error(), "could not connect to authentication server")
}
