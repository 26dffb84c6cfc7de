// Package auth tracks the backend session and validates account input.
package auth

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/Fiala06/Huntarr.io/internal/huntarr"
)

// State is the session lifecycle: Unknown until the first probe resolves,
// then Authenticated or Unauthenticated.
type State int

const (
	StateUnknown State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// API is the slice of the backend client the session needs.
type API interface {
	UserInfo(ctx context.Context) (*huntarr.UserInfo, error)
	Login(ctx context.Context, creds huntarr.Credentials) (huntarr.LoginResult, error)
	Logout(ctx context.Context) error
}

// Session owns the client-side view of the login session: current state plus
// a cached copy of the user record, invalidated after any mutating call.
type Session struct {
	api API

	mu    sync.Mutex
	state State
	user  *huntarr.UserInfo
}

// NewSession starts in StateUnknown; call Probe to resolve it.
func NewSession(api API) *Session {
	return &Session{api: api, state: StateUnknown}
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User returns the cached user record, or nil when not authenticated.
func (s *Session) User() *huntarr.UserInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	dup := *s.user
	return &dup
}

// Probe checks the session endpoint. Any failure, network or 401, resolves
// to StateUnauthenticated; protected views stay on a loading placeholder
// until this returns.
func (s *Session) Probe(ctx context.Context) State {
	user, err := s.api.UserInfo(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil || user == nil || user.Username == "" {
		s.state = StateUnauthenticated
		s.user = nil
		return s.state
	}
	s.state = StateAuthenticated
	s.user = user
	return s.state
}

// Login submits credentials. A challenge result leaves the session
// unauthenticated but is not a failure; the caller re-prompts for a code.
func (s *Session) Login(ctx context.Context, creds huntarr.Credentials) (huntarr.LoginResult, error) {
	result, err := s.api.Login(ctx, creds)
	if err != nil {
		return huntarr.LoginResult{}, err
	}
	if result.Outcome == huntarr.LoginSucceeded {
		s.mu.Lock()
		s.state = StateAuthenticated
		s.user = &huntarr.UserInfo{Username: creds.Username}
		s.mu.Unlock()
	}
	return result, nil
}

// Logout posts the logout request. On failure the session state is left
// unchanged and the error surfaced; the caller stays logged in client-side.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.api.Logout(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	s.state = StateUnauthenticated
	s.user = nil
	s.mu.Unlock()
	return nil
}

// InvalidateUser drops the cached user record so the next probe refetches.
// Called after any mutating account call.
func (s *Session) InvalidateUser() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
}

const (
	minUsernameLen = 3
	minPasswordLen = 10
)

var otpPattern = regexp.MustCompile(`^\d{6}$`)

// ValidateSetup checks first-run account input client-side. Nothing is sent
// to the backend until this passes.
func ValidateSetup(username, password, confirm string) error {
	if len(strings.TrimSpace(username)) < minUsernameLen {
		return fmt.Errorf("Username must be at least %d characters", minUsernameLen)
	}
	if len(password) < minPasswordLen {
		return fmt.Errorf("Password must be at least %d characters", minPasswordLen)
	}
	if password != confirm {
		return fmt.Errorf("Passwords do not match")
	}
	return nil
}

// ValidateOTP checks a two-factor code client-side: exactly six digits.
func ValidateOTP(code string) error {
	if !otpPattern.MatchString(strings.TrimSpace(code)) {
		return fmt.Errorf("Code must be 6 digits")
	}
	return nil
}
