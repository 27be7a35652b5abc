package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// AuthUser is the identity provider's view of an account.
type AuthUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone"`
	UserMetadata map[string]any `json:"user_metadata"`
}

// Session is the result of a password grant.
type Session struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	RefreshToken string    `json:"refresh_token"`
	User         *AuthUser `json:"user"`
}

// AdminCreateUser creates an account through the administrative endpoint
// with the email pre-confirmed, so no confirmation email is ever sent.
func (c *Client) AdminCreateUser(ctx context.Context, email, password string) (*AuthUser, error) {
	reqURL := fmt.Sprintf("%s/auth/v1/admin/users", c.baseURL)
	req, err := c.newRequest(ctx, http.MethodPost, reqURL, map[string]any{
		"email":         email,
		"password":      password,
		"email_confirm": true,
	})
	if err != nil {
		return nil, err
	}

	status, body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("could not connect to authentication server: %w", err)
	}
	if status >= 400 {
		return nil, &APIError{StatusCode: status, Message: authMessage(body, status)}
	}

	// The admin endpoint returns the user object at the root.
	var user AuthUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &user, nil
}

// PasswordLogin exchanges credentials for an access token via the password
// grant. Every call is independently authenticated; no session state is
// retained locally.
func (c *Client) PasswordLogin(ctx context.Context, email, password string) (*Session, error) {
	reqURL := fmt.Sprintf("%s/auth/v1/token?grant_type=password", c.baseURL)
	req, err := c.newRequest(ctx, http.MethodPost, reqURL, map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	status, body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("could not connect to authentication server: %w", err)
	}
	if status >= 400 {
		return nil, &APIError{StatusCode: status, Message: authMessage(body, status)}
	}

	var session Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &session, nil
}

// authMessage picks the first present field from the identity provider's
// error vocabulary, falling back to the status text.
func authMessage(body []byte, status int) string {
	var errResp struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
		Err              string `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil {
		for _, m := range []string{errResp.Msg, errResp.Message, errResp.ErrorDescription, errResp.Err} {
			if m != "" {
				return m
			}
		}
	}
	return http.StatusText(status)
}
