// Package mpesa initiates STK push payments against the Daraja API.
// The synchronous acknowledgment is not the payment outcome; settlement
// arrives later on the configured callback URL, which an external system
// receives.
package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	sandboxURL    = "https://sandbox.safaricom.co.ke"
	productionURL = "https://api.safaricom.co.ke"
)

type Config struct {
	ConsumerKey    string
	ConsumerSecret string
	Shortcode      string
	Passkey        string
	CallbackURL    string
	Environment    string // "sandbox" or "production"
	BaseURL        string // overrides Environment when set, used by tests
	HTTPClient     *http.Client
}

type Client struct {
	cfg     Config
	baseURL string
	http    *http.Client
	now     func() time.Time
}

// ErrNotConfigured reports missing gateway credentials before any network
// call is attempted.
type ErrNotConfigured struct{}

func (ErrNotConfigured) Error() string {
	return "mpesa credentials not configured on server"
}

// PushError is a push request the gateway processed and rejected, as
// opposed to a transport or token failure.
type PushError struct {
	Message string
}

func (e *PushError) Error() string {
	return e.Message
}

func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		if cfg.Environment == "production" {
			baseURL = productionURL
		} else {
			baseURL = sandboxURL
		}
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{cfg: cfg, baseURL: baseURL, http: httpClient, now: time.Now}
}

// PushResult is the gateway's synchronous acknowledgment, returned verbatim
// alongside the normalized payer number.
type PushResult struct {
	Phone string
	Data  map[string]any
}

// STKPush obtains a bearer token via client credentials, then asks the
// gateway to prompt the payer's device for the amount.
func (c *Client) STKPush(ctx context.Context, phoneNumber string, amount int, accountRef, description string) (*PushResult, error) {
	if c.cfg.ConsumerKey == "" || c.cfg.ConsumerSecret == "" || c.cfg.Passkey == "" {
		return nil, ErrNotConfigured{}
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := c.now().Format("20060102150405")
	phone := NormalizePhone(phoneNumber)

	payload := map[string]any{
		"BusinessShortCode": c.cfg.Shortcode,
		"Password":          password(c.cfg.Shortcode, c.cfg.Passkey, timestamp),
		"Timestamp":         timestamp,
		"TransactionType":   "CustomerPayBillOnline",
		"Amount":            amount,
		"PartyA":            phone,
		"PartyB":            c.cfg.Shortcode,
		"PhoneNumber":       phone,
		"CallBackURL":       c.cfg.CallbackURL,
		"AccountReference":  accountRef,
		"TransactionDesc":   description,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal push request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/mpesa/stkpush/v1/processrequest", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stk push request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var data map[string]any
	if err := json.Unmarshal(respBody, &data); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg, _ := data["errorMessage"].(string)
		if msg == "" {
			msg = "Failed to initiate M-Pesa payment"
		}
		return nil, &PushError{Message: msg}
	}

	return &PushResult{Phone: phone, Data: data}, nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/oauth/v1/generate?grant_type=client_credentials", nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	auth := base64.StdEncoding.EncodeToString([]byte(c.cfg.ConsumerKey + ":" + c.cfg.ConsumerSecret))
	req.Header.Set("Authorization", "Basic "+auth)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("mpesa: token exchange failed with status %d", resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("mpesa: empty access token")
	}
	return tokenResp.AccessToken, nil
}

// password builds the time-stamped transaction password. The gateway's
// documented scheme is plain base64 encoding, not a cryptographic hash.
func password(shortcode, passkey, timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(shortcode + passkey + timestamp))
}

// NormalizePhone rewrites a phone number into the leading-254 international
// form. Normalization is idempotent: an already normalized number passes
// through unchanged.
func NormalizePhone(phone string) string {
	p := strings.ReplaceAll(strings.TrimSpace(phone), "+", "")
	switch {
	case strings.HasPrefix(p, "0"):
		return "254" + p[1:]
	case strings.HasPrefix(p, "254"):
		return p
	default:
		return "254" + p
	}
}
