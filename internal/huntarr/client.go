package huntarr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// API is the subset of backend operations the rest of the application
// consumes. Implemented by *Client; fakes implement it in tests.
type API interface {
	SetupStatus(ctx context.Context) (bool, error)
	Login(ctx context.Context, creds Credentials) (LoginResult, error)
	Logout(ctx context.Context) error
	Setup(ctx context.Context, username, password, confirm string) error
	UserInfo(ctx context.Context) (*UserInfo, error)
	ChangeUsername(ctx context.Context, username, password string) error
	ChangePassword(ctx context.Context, current, next string) error
	TwoFactorSetup(ctx context.Context) (*TwoFactorSetup, error)
	TwoFactorVerify(ctx context.Context, code string) error
	TwoFactorDisable(ctx context.Context, password, code string) error
	FetchSettings(ctx context.Context) (*Settings, error)
	UpdateSettings(ctx context.Context, app string, payload any) (*Settings, error)
	ResetSettings(ctx context.Context, app string) error
	SaveTheme(ctx context.Context, darkMode bool) error
	FetchStats(ctx context.Context) (Stats, error)
	ResetStats(ctx context.Context, app string) error
	StartHunt(ctx context.Context) error
	StopHunt(ctx context.Context) error
	TestConnection(ctx context.Context, app, apiURL, apiKey string) (*ConnectionTest, error)
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// Client talks to the Huntarr HTTP API. The session cookie issued by /login
// lives in the client's cookie jar, so one Client carries one session.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string

	// Throttles connection tests so a held-down retry key cannot hammer
	// the third-party services behind the backend.
	testLimiter *rate.Limiter
}

const (
	defaultServerURL      = "http://127.0.0.1:9705"
	defaultUserAgent      = "huntarr-tui/0.1"
	defaultRequestTimeout = 15 * time.Second
)

// NewClient builds a Client for the given server URL. A zero timeout uses the
// default; every request carries an explicit deadline.
func NewClient(serverURL string, timeout time.Duration) (*Client, error) {
	base, err := parseBaseURL(serverURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("init cookie jar: %w", err)
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		userAgent:   defaultUserAgent,
		testLimiter: rate.NewLimiter(rate.Every(time.Second), 2),
	}, nil
}

// BaseURL returns the normalized server base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// HTTPClient returns a client sharing this client's cookie jar but without a
// timeout, for long-lived streaming requests.
func (c *Client) HTTPClient() *http.Client {
	return &http.Client{Jar: c.http.Jar}
}

// SetupStatus reports whether the backend still requires first-run setup.
func (c *Client) SetupStatus(ctx context.Context) (bool, error) {
	var payload struct {
		RequiresSetup *bool `json:"requires_setup"`
		NeedsSetup    *bool `json:"needs_setup"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/setup-status", nil, &payload); err != nil {
		return false, err
	}
	if payload.RequiresSetup != nil {
		return *payload.RequiresSetup, nil
	}
	if payload.NeedsSetup != nil {
		return *payload.NeedsSetup, nil
	}
	return false, nil
}

// Login posts credentials and classifies the response into one of the three
// login branches. The two-factor challenge arrives on a rejected status, so
// the body is parsed regardless of the status code.
func (c *Client) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	status, raw, err := c.doRaw(ctx, http.MethodPost, "/login", creds)
	if err != nil {
		return LoginResult{}, err
	}
	var payload struct {
		Success     bool   `json:"success"`
		Redirect    string `json:"redirect"`
		Error       string `json:"error"`
		Requires2FA bool   `json:"requires_2fa"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		// A proxy in front of the backend can answer with an HTML error
		// page; treat any rejected non-JSON body as a plain failure.
		if status >= 300 {
			return LoginResult{
				Outcome: LoginFailed,
				Message: fmt.Sprintf("login failed with status %d", status),
			}, nil
		}
		return LoginResult{}, fmt.Errorf("decode login response: %w", err)
	}
	switch {
	case status < 300 && payload.Success:
		return LoginResult{Outcome: LoginSucceeded, Redirect: payload.Redirect}, nil
	case payload.Requires2FA:
		message := payload.Error
		if creds.OTPCode != "" && message == "" {
			message = "Invalid two-factor code"
		}
		return LoginResult{Outcome: LoginChallenge, Message: message}, nil
	default:
		message := payload.Error
		if message == "" {
			message = fmt.Sprintf("login failed with status %d", status)
		}
		return LoginResult{Outcome: LoginFailed, Message: message}, nil
	}
}

// Logout ends the session server-side.
func (c *Client) Logout(ctx context.Context) error {
	return c.postChecked(ctx, "/logout", nil)
}

// Setup creates the initial account. Validation happens before the call; the
// backend re-validates and its message wins.
func (c *Client) Setup(ctx context.Context, username, password, confirm string) error {
	body := map[string]string{
		"username":         username,
		"password":         password,
		"confirm_password": confirm,
	}
	return c.postChecked(ctx, "/setup", body)
}

// UserInfo fetches the authenticated account, or a 401 RequestError when no
// session is established.
func (c *Client) UserInfo(ctx context.Context) (*UserInfo, error) {
	var payload UserInfo
	if err := c.do(ctx, http.MethodGet, "/api/user/info", nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ChangeUsername updates the account name. The session is invalidated
// server-side afterwards.
func (c *Client) ChangeUsername(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}
	return c.postChecked(ctx, "/api/user/change-username", body)
}

// ChangePassword updates the account password.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	body := map[string]string{"current_password": current, "new_password": next}
	return c.postChecked(ctx, "/api/user/change-password", body)
}

// TwoFactorSetup begins 2FA enrolment and returns the QR code URL and secret.
func (c *Client) TwoFactorSetup(ctx context.Context) (*TwoFactorSetup, error) {
	var payload struct {
		apiResponse
		TwoFactorSetup
	}
	if err := c.do(ctx, http.MethodPost, "/api/user/2fa/setup", nil, &payload); err != nil {
		return nil, err
	}
	if err := payload.apiResponse.err(); err != nil {
		return nil, err
	}
	return &payload.TwoFactorSetup, nil
}

// TwoFactorVerify confirms enrolment with a code from the authenticator.
func (c *Client) TwoFactorVerify(ctx context.Context, code string) error {
	return c.postChecked(ctx, "/api/user/2fa/verify", map[string]string{"code": code})
}

// TwoFactorDisable turns 2FA off; requires the password and a current code.
func (c *Client) TwoFactorDisable(ctx context.Context, password, code string) error {
	body := map[string]string{"password": password, "code": code}
	return c.postChecked(ctx, "/api/user/2fa/disable", body)
}

// FetchSettings retrieves the full settings bundle.
func (c *Client) FetchSettings(ctx context.Context) (*Settings, error) {
	var payload Settings
	if err := c.do(ctx, http.MethodGet, "/api/settings", nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// UpdateSettings posts a partial update for one app and returns the server's
// merged bundle. The server merges at the top level; the client never merges
// locally.
func (c *Client) UpdateSettings(ctx context.Context, app string, payload any) (*Settings, error) {
	body := map[string]any{app: payload}
	var updated Settings
	if err := c.do(ctx, http.MethodPost, "/api/settings", body, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// ResetSettings restores server-side defaults for one app, or for everything
// when app is empty.
func (c *Client) ResetSettings(ctx context.Context, app string) error {
	var body any
	if app != "" {
		body = map[string]string{"app": app}
	}
	status, raw, err := c.doRaw(ctx, http.MethodPost, "/api/settings/reset", body)
	if err != nil {
		return err
	}
	if status >= 300 {
		return &RequestError{Status: status, Message: messageFromBody(raw)}
	}
	// The body is either a success envelope or the restored bundle; only
	// an explicit failure envelope is an error.
	var envelope apiResponse
	if json.Unmarshal(raw, &envelope) == nil && envelope.Error != "" {
		return envelope.err()
	}
	return nil
}

// SaveTheme pushes the dark-mode preference. Callers treat failures as
// best-effort; the local theme is applied regardless.
func (c *Client) SaveTheme(ctx context.Context, darkMode bool) error {
	body := map[string]bool{"dark_mode": darkMode}
	status, raw, err := c.doRaw(ctx, http.MethodPost, "/api/settings/theme", body)
	if err != nil {
		return err
	}
	if status >= 300 {
		return &RequestError{Status: status, Message: messageFromBody(raw)}
	}
	return nil
}

// FetchStats retrieves the per-app hunt counters.
func (c *Client) FetchStats(ctx context.Context) (Stats, error) {
	var payload struct {
		apiResponse
		Stats Stats `json:"stats"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/stats", nil, &payload); err != nil {
		return nil, err
	}
	if err := payload.apiResponse.err(); err != nil {
		return nil, err
	}
	return payload.Stats, nil
}

// ResetStats zeroes the counters for one app, or all apps when app is empty.
func (c *Client) ResetStats(ctx context.Context, app string) error {
	body := map[string]string{}
	if app != "" {
		body["app_type"] = app
	}
	return c.postChecked(ctx, "/api/stats/reset", body)
}

// StartHunt kicks off a hunt cycle across the configured apps.
func (c *Client) StartHunt(ctx context.Context) error {
	return c.postChecked(ctx, "/api/hunt/start", nil)
}

// StopHunt halts the running hunt cycle.
func (c *Client) StopHunt(ctx context.Context) error {
	return c.postChecked(ctx, "/api/hunt/stop", nil)
}

// TestConnection asks the backend to probe one app's API with the given
// credentials. The URL is trimmed and stripped of trailing slashes first.
func (c *Client) TestConnection(ctx context.Context, app, apiURL, apiKey string) (*ConnectionTest, error) {
	if err := c.testLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("throttle connection test: %w", err)
	}
	body := map[string]string{
		"api_url": NormalizeAPIURL(apiURL),
		"api_key": strings.TrimSpace(apiKey),
	}
	var payload struct {
		ConnectionTest
		Error string `json:"error"`
	}
	path := fmt.Sprintf("/api/%s/test-connection", url.PathEscape(app))
	if err := c.do(ctx, http.MethodPost, path, body, &payload); err != nil {
		return nil, err
	}
	result := payload.ConnectionTest
	if !result.Success && result.Message == "" {
		result.Message = payload.Error
	}
	return &result, nil
}

// NormalizeAPIURL trims whitespace and trailing slashes from a user-entered URL.
func NormalizeAPIURL(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}

// apiResponse is the generic success envelope most mutating endpoints return.
type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (r apiResponse) err() error {
	if r.Success {
		return nil
	}
	message := r.Error
	if message == "" {
		message = r.Message
	}
	if message == "" {
		message = "request failed"
	}
	return &RequestError{Status: http.StatusOK, Message: message}
}

// postChecked posts a JSON body and fails when the envelope reports failure.
func (c *Client) postChecked(ctx context.Context, path string, body any) error {
	var envelope apiResponse
	if err := c.do(ctx, http.MethodPost, path, body, &envelope); err != nil {
		return err
	}
	return envelope.err()
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	status, raw, err := c.doRaw(ctx, method, path, body)
	if err != nil {
		return err
	}
	if status >= 300 {
		return &RequestError{Status: status, Message: messageFromBody(raw)}
	}
	if dest == nil {
		return nil
	}
	if len(raw) == 0 || status == http.StatusNoContent {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// doRaw executes the request and returns the status and body without
// interpreting non-2xx statuses. Transport failures become NetworkErrors.
func (c *Client) doRaw(ctx context.Context, method, path string, body any) (int, []byte, error) {
	reqURL := c.baseURL.ResolveReference(&url.URL{Path: path})

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, &NetworkError{Op: method + " " + path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &NetworkError{Op: method + " " + path, Err: err}
	}
	return resp.StatusCode, raw, nil
}

// messageFromBody extracts the server-provided error or message field.
func messageFromBody(raw []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &payload) != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}

func parseBaseURL(serverURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(serverURL)
	if trimmed == "" {
		trimmed = defaultServerURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse server url %q: %w", serverURL, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
