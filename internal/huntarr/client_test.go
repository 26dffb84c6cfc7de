package huntarr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != defaultServerURL {
		t.Fatalf("base = %q, want %q", u.String(), defaultServerURL)
	}

	u, err = parseBaseURL("example.com:9705/path?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Host != "example.com:9705" {
		t.Fatalf("base = %q, want http scheme and host preserved", u.String())
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
}

func TestClient_LoginBranches(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var creds Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		w.Header().Set("Content-Type", "application/json")

		switch {
		case creds.Username == "admin" && creds.Password == "hunter22hunter" && creds.OTPCode == "123456":
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "redirect": "/home"})
		case creds.Username == "admin" && creds.Password == "hunter22hunter":
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "requires_2fa": true})
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "Invalid username or password"})
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, 0)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx := context.Background()

	result, err := c.Login(ctx, Credentials{Username: "admin", Password: "hunter22hunter"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if result.Outcome != LoginChallenge {
		t.Fatalf("outcome = %v, want challenge", result.Outcome)
	}
	if result.Message != "" {
		t.Fatalf("first challenge carried message %q, want none", result.Message)
	}

	result, err = c.Login(ctx, Credentials{Username: "admin", Password: "hunter22hunter", OTPCode: "000000"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if result.Outcome != LoginChallenge {
		t.Fatalf("outcome with bad code = %v, want challenge again", result.Outcome)
	}
	if result.Message == "" {
		t.Fatalf("rejected code should carry a message")
	}

	result, err = c.Login(ctx, Credentials{Username: "admin", Password: "hunter22hunter", OTPCode: "123456"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if result.Outcome != LoginSucceeded || result.Redirect != "/home" {
		t.Fatalf("result = %#v, want success with redirect /home", result)
	}

	result, err = c.Login(ctx, Credentials{Username: "admin", Password: "wrong"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if result.Outcome != LoginFailed || result.Message != "Invalid username or password" {
		t.Fatalf("result = %#v, want plain failure with server message", result)
	}
}

func TestClient_SettingsRoundTripPreservesUnknownFields(t *testing.T) {
	t.Parallel()

	var gotUpdate map[string]json.RawMessage
	bundle := `{
		"sonarr": {"api_url": "http://x:8989", "api_key": "k", "hunt_missing": 3, "future_flag": {"nested": true}},
		"radarr": {}, "lidarr": {}, "readarr": {}, "whisparr": {},
		"general": {"timezone": "UTC", "dark_mode": true, "auto_update": false}
	}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/settings" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost {
			_ = json.NewDecoder(r.Body).Decode(&gotUpdate)
		}
		_, _ = w.Write([]byte(bundle))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, 0)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	settings, err := c.FetchSettings(context.Background())
	if err != nil {
		t.Fatalf("FetchSettings returned error: %v", err)
	}
	if settings.Sonarr.APIURL != "http://x:8989" || settings.Sonarr.HuntMissing != 3 {
		t.Fatalf("sonarr settings = %#v, want decoded fields", settings.Sonarr)
	}
	if _, ok := settings.Sonarr.Extra["future_flag"]; !ok {
		t.Fatalf("unknown field dropped: extra = %v", settings.Sonarr.Extra)
	}

	draft := settings.Sonarr.Clone()
	draft.HuntMissing = 5
	if _, err := c.UpdateSettings(context.Background(), "sonarr", draft); err != nil {
		t.Fatalf("UpdateSettings returned error: %v", err)
	}
	if len(gotUpdate) != 1 {
		t.Fatalf("update body had %d top-level keys, want only sonarr", len(gotUpdate))
	}
	var sent map[string]json.RawMessage
	if err := json.Unmarshal(gotUpdate["sonarr"], &sent); err != nil {
		t.Fatalf("decode sent sonarr object: %v", err)
	}
	if string(sent["hunt_missing"]) != "5" {
		t.Fatalf("hunt_missing sent as %s, want 5", sent["hunt_missing"])
	}
	if string(sent["api_url"]) != `"http://x:8989"` {
		t.Fatalf("api_url sent as %s, want preserved value", sent["api_url"])
	}
	if _, ok := sent["future_flag"]; !ok {
		t.Fatalf("unknown field not round-tripped in update body")
	}
}

func TestClient_StatsAndReset(t *testing.T) {
	t.Parallel()

	var gotResetBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/stats":
			_, _ = w.Write([]byte(`{"success": true, "stats": {"sonarr": {"hunted": 12, "upgraded": 4}}}`))
		case "/api/stats/reset":
			_ = json.NewDecoder(r.Body).Decode(&gotResetBody)
			_, _ = w.Write([]byte(`{"success": true, "message": "Statistics reset"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, 0)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	stats, err := c.FetchStats(context.Background())
	if err != nil {
		t.Fatalf("FetchStats returned error: %v", err)
	}
	if stats["sonarr"].Hunted != 12 || stats["sonarr"].Upgraded != 4 {
		t.Fatalf("stats = %#v, want sonarr 12/4", stats)
	}

	if err := c.ResetStats(context.Background(), "sonarr"); err != nil {
		t.Fatalf("ResetStats returned error: %v", err)
	}
	if gotResetBody["app_type"] != "sonarr" {
		t.Fatalf("reset body = %v, want app_type sonarr", gotResetBody)
	}

	gotResetBody = nil
	if err := c.ResetStats(context.Background(), ""); err != nil {
		t.Fatalf("ResetStats (all) returned error: %v", err)
	}
	if len(gotResetBody) != 0 {
		t.Fatalf("reset-all body = %v, want empty object", gotResetBody)
	}
}

func TestClient_TestConnectionNormalizesURL(t *testing.T) {
	t.Parallel()

	var gotBody map[string]string
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "message": "Connected", "version": "4.0.1"}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, 0)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	result, err := c.TestConnection(context.Background(), "sonarr", "  http://x:8989//  ", " key ")
	if err != nil {
		t.Fatalf("TestConnection returned error: %v", err)
	}
	if gotPath != "/api/sonarr/test-connection" {
		t.Fatalf("path = %q, want /api/sonarr/test-connection", gotPath)
	}
	if gotBody["api_url"] != "http://x:8989" {
		t.Fatalf("api_url = %q, want trimmed with trailing slashes stripped", gotBody["api_url"])
	}
	if gotBody["api_key"] != "key" {
		t.Fatalf("api_key = %q, want trimmed", gotBody["api_key"])
	}
	if !result.Success || result.Version != "4.0.1" {
		t.Fatalf("result = %#v, want success with version", result)
	}
}

func TestClient_ErrorTaxonomy(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/user/info":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error": "Not authenticated"}`))
		case "/api/user/change-password":
			_, _ = w.Write([]byte(`{"success": false, "error": "Passwords do not match"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, 0)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.UserInfo(context.Background())
	if !IsUnauthorized(err) {
		t.Fatalf("UserInfo error = %v, want 401 RequestError", err)
	}
	if !strings.Contains(err.Error(), "Not authenticated") {
		t.Fatalf("error message = %q, want server-provided text", err.Error())
	}

	err = c.ChangePassword(context.Background(), "old", "new")
	if err == nil || !strings.Contains(err.Error(), "Passwords do not match") {
		t.Fatalf("ChangePassword error = %v, want envelope failure surfaced", err)
	}

	// Unreachable server classifies as a network error.
	dead, err := NewClient("127.0.0.1:1", 200*time.Millisecond)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = dead.FetchStats(context.Background())
	if !IsNetworkError(err) {
		t.Fatalf("error = %v, want NetworkError", err)
	}
}

func TestClient_SetupStatusAcceptsBothFieldNames(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`{"requires_setup": true}`, `{"needs_setup": true}`} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		}))

		c, err := NewClient(server.URL, 0)
		if err != nil {
			t.Fatalf("NewClient returned error: %v", err)
		}
		required, err := c.SetupStatus(context.Background())
		if err != nil {
			t.Fatalf("SetupStatus returned error: %v", err)
		}
		if !required {
			t.Fatalf("SetupStatus = false for body %s, want true", body)
		}
		server.Close()
	}
}

func TestClient_LoginNonJSONRejection(t *testing.T) {
	t.Parallel()

	// A reverse proxy in front of the backend answers with an HTML error page.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html><body><h1>502 Bad Gateway</h1></body></html>"))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, 0)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	result, err := c.Login(context.Background(), Credentials{Username: "admin", Password: "hunter22hunter"})
	if err != nil {
		t.Fatalf("Login returned error: %v, want plain failure", err)
	}
	if result.Outcome != LoginFailed {
		t.Fatalf("outcome = %v, want failure", result.Outcome)
	}
	if result.Message != "login failed with status 502" {
		t.Fatalf("message = %q, want status-based fallback", result.Message)
	}
}

func TestClient_HuntStartStop(t *testing.T) {
	t.Parallel()

	var gotPaths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("hunt control used method %s, want POST", r.Method)
		}
		gotPaths = append(gotPaths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/hunt/start":
			_, _ = w.Write([]byte(`{"success": true, "message": "Hunt started"}`))
		case "/api/hunt/stop":
			_, _ = w.Write([]byte(`{"success": false, "error": "No hunt is running"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, 0)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	if err := c.StartHunt(context.Background()); err != nil {
		t.Fatalf("StartHunt returned error: %v", err)
	}
	err = c.StopHunt(context.Background())
	if err == nil || !strings.Contains(err.Error(), "No hunt is running") {
		t.Fatalf("StopHunt error = %v, want envelope failure surfaced", err)
	}
	if len(gotPaths) != 2 || gotPaths[0] != "/api/hunt/start" || gotPaths[1] != "/api/hunt/stop" {
		t.Fatalf("paths = %v, want start then stop", gotPaths)
	}
}
