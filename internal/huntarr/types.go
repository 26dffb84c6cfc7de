package huntarr

import (
	"encoding/json"
	"time"
)

// Apps is the closed set of media-manager integrations Huntarr manages.
// "general" is deliberately excluded; it is a settings bucket, not an app.
var Apps = []string{"sonarr", "radarr", "lidarr", "readarr", "whisparr"}

// Instance is a secondary connection profile for an app that supports
// multiple backend servers.
type Instance struct {
	Name    string `json:"name"`
	APIURL  string `json:"api_url"`
	APIKey  string `json:"api_key"`
	Enabled bool   `json:"enabled"`
}

// AppSettings holds one app's configuration. Fields the client does not know
// about are preserved verbatim in Extra so a save round-trips them untouched.
type AppSettings struct {
	APIURL                   string     `json:"api_url"`
	APIKey                   string     `json:"api_key"`
	HuntMissing              int        `json:"hunt_missing"`
	HuntUpgrades             int        `json:"hunt_upgrades"`
	IntervalMinutes          int        `json:"interval_minutes"`
	MonitoredOnly            bool       `json:"monitored_only"`
	SkipFutureReleases       bool       `json:"skip_future_releases"`
	RandomMissing            bool       `json:"random_missing"`
	RandomUpgrades           bool       `json:"random_upgrades"`
	DebugMode                bool       `json:"debug_mode"`
	APITimeout               int        `json:"api_timeout"`
	CommandWaitDelay         int        `json:"command_wait_delay"`
	CommandWaitAttempts      int        `json:"command_wait_attempts"`
	MinimumDownloadQueueSize int        `json:"minimum_download_queue_size"`
	Instances                []Instance `json:"instances,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var knownAppSettingKeys = []string{
	"api_url", "api_key", "hunt_missing", "hunt_upgrades", "interval_minutes",
	"monitored_only", "skip_future_releases", "random_missing",
	"random_upgrades", "debug_mode", "api_timeout", "command_wait_delay",
	"command_wait_attempts", "minimum_download_queue_size", "instances",
}

// UnmarshalJSON decodes the known fields and stashes everything else in Extra.
func (s *AppSettings) UnmarshalJSON(data []byte) error {
	type plain AppSettings
	var known plain
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, key := range knownAppSettingKeys {
		delete(raw, key)
	}
	if len(raw) == 0 {
		raw = nil
	}
	known.Extra = raw
	*s = AppSettings(known)
	return nil
}

// MarshalJSON emits the known fields merged with the preserved unknown ones.
func (s AppSettings) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Extra)+len(knownAppSettingKeys))
	for key, value := range s.Extra {
		out[key] = value
	}
	out["api_url"] = s.APIURL
	out["api_key"] = s.APIKey
	out["hunt_missing"] = s.HuntMissing
	out["hunt_upgrades"] = s.HuntUpgrades
	out["interval_minutes"] = s.IntervalMinutes
	out["monitored_only"] = s.MonitoredOnly
	out["skip_future_releases"] = s.SkipFutureReleases
	out["random_missing"] = s.RandomMissing
	out["random_upgrades"] = s.RandomUpgrades
	out["debug_mode"] = s.DebugMode
	out["api_timeout"] = s.APITimeout
	out["command_wait_delay"] = s.CommandWaitDelay
	out["command_wait_attempts"] = s.CommandWaitAttempts
	out["minimum_download_queue_size"] = s.MinimumDownloadQueueSize
	if s.Instances != nil {
		out["instances"] = s.Instances
	}
	return json.Marshal(out)
}

// Clone returns a deep copy.
func (s AppSettings) Clone() AppSettings {
	dup := s
	if s.Instances != nil {
		dup.Instances = make([]Instance, len(s.Instances))
		copy(dup.Instances, s.Instances)
	}
	if s.Extra != nil {
		dup.Extra = make(map[string]json.RawMessage, len(s.Extra))
		for key, value := range s.Extra {
			dup.Extra[key] = value
		}
	}
	return dup
}

// GeneralSettings is the non-app settings bucket.
type GeneralSettings struct {
	Timezone   string `json:"timezone"`
	DarkMode   bool   `json:"dark_mode"`
	AutoUpdate bool   `json:"auto_update"`
}

// Settings is the full settings bundle exchanged with /api/settings.
type Settings struct {
	Sonarr   AppSettings     `json:"sonarr"`
	Radarr   AppSettings     `json:"radarr"`
	Lidarr   AppSettings     `json:"lidarr"`
	Readarr  AppSettings     `json:"readarr"`
	Whisparr AppSettings     `json:"whisparr"`
	General  GeneralSettings `json:"general"`
}

// App returns a pointer to the named app's settings, or nil for an unknown name.
func (s *Settings) App(name string) *AppSettings {
	switch name {
	case "sonarr":
		return &s.Sonarr
	case "radarr":
		return &s.Radarr
	case "lidarr":
		return &s.Lidarr
	case "readarr":
		return &s.Readarr
	case "whisparr":
		return &s.Whisparr
	}
	return nil
}

// Clone returns a deep copy of the bundle.
func (s *Settings) Clone() *Settings {
	if s == nil {
		return nil
	}
	return &Settings{
		Sonarr:   s.Sonarr.Clone(),
		Radarr:   s.Radarr.Clone(),
		Lidarr:   s.Lidarr.Clone(),
		Readarr:  s.Readarr.Clone(),
		Whisparr: s.Whisparr.Clone(),
		General:  s.General,
	}
}

// AppStats is the per-app counter pair.
type AppStats struct {
	Hunted   int `json:"hunted"`
	Upgraded int `json:"upgraded"`
}

// Stats maps app name to its counters.
type Stats map[string]AppStats

// UserInfo describes the authenticated account.
type UserInfo struct {
	Username     string `json:"username"`
	Is2FAEnabled bool   `json:"is_2fa_enabled"`
}

// Credentials are the /login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	OTPCode  string `json:"otp_code,omitempty"`
}

// LoginOutcome distinguishes the three login branches.
type LoginOutcome int

const (
	// LoginFailed means the credentials were rejected outright.
	LoginFailed LoginOutcome = iota
	// LoginSucceeded means a session was established.
	LoginSucceeded
	// LoginChallenge means the credentials were accepted but a one-time
	// code is required (or the supplied code was wrong). Not a failure.
	LoginChallenge
)

// LoginResult is the parsed outcome of a login attempt.
type LoginResult struct {
	Outcome  LoginOutcome
	Redirect string
	Message  string
}

// TwoFactorSetup is the enrolment payload from /api/user/2fa/setup.
type TwoFactorSetup struct {
	QRCodeURL string `json:"qr_code_url"`
	Secret    string `json:"secret"`
}

// ConnectionTest is the result of probing an app's API.
type ConnectionTest struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Version string `json:"version"`
}

// LogEntry is one line from the server log stream.
type LogEntry struct {
	Level     string `json:"level"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp,omitempty"`
	App       string `json:"app,omitempty"`
}

// ParsedTime returns the entry timestamp, or the zero time when absent or
// unparseable.
func (e LogEntry) ParsedTime() time.Time {
	if e.Timestamp == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, e.Timestamp); err == nil {
			return ts
		}
	}
	return time.Time{}
}
