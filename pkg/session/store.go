// Package session owns the token/user pair for the process lifetime.
//
// The Store is the single writer of session state: pages and CLI commands
// read the current token and user through it, and the API client picks the
// token up via the client.TokenSource interface. Mutating operations are
// serialized with a mutex so interleaved token writes cannot happen.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/defectflow/defectflow-go/pkg/client"
)

// State is the session lifecycle state.
type State int

const (
	// StateUnauthenticated is the initial state; also reached after logout
	// or after a persisted token fails validation.
	StateUnauthenticated State = iota
	// StateRestoring means a persisted token was found and its identity
	// fetch is in flight.
	StateRestoring
	// StateAuthenticated means the token was validated and the user is set.
	StateAuthenticated
	// StateFailed means the last explicit login or register attempt failed.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateRestoring:
		return "restoring"
	case StateAuthenticated:
		return "authenticated"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Store holds the current token and user and drives the session lifecycle.
type Store struct {
	api    *client.Client
	tokens TokenStore
	log    zerolog.Logger

	mu    sync.RWMutex
	state State
	token string
	user  *client.User
}

// NewStore wires a Store to the API client and a token store. The returned
// Store satisfies client.TokenSource; pass it as Options.TokenSource so
// requests without an explicit token pick up the session token.
func NewStore(api *client.Client, tokens TokenStore, log zerolog.Logger) *Store {
	return &Store{api: api, tokens: tokens, log: log, state: StateUnauthenticated}
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Token returns the current bearer token, empty when unauthenticated.
// Implements client.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the current user, or nil when unauthenticated.
func (s *Store) User() *client.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Restore loads a persisted token and re-validates it with an identity
// fetch. A rejected token is discarded silently: the session comes up
// unauthenticated and no error is returned, matching an implicit logout.
// Only token-store I/O problems surface as errors.
func (s *Store) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.tokens.Load(ctx)
	if err != nil {
		return fmt.Errorf("load persisted token: %w", err)
	}
	if stored == "" {
		s.state = StateUnauthenticated
		return nil
	}

	s.state = StateRestoring
	subject := tokenSubject(stored)
	s.log.Debug().Str("subject", subject).Msg("validating persisted token")

	user, err := s.api.Auth.Me(ctx, stored)
	if err != nil {
		// Implicit logout: the stored token is stale or the backend
		// rejected it. Never surfaced as a user-facing error.
		s.log.Info().Err(err).Msg("persisted token rejected, clearing session")
		if clearErr := s.tokens.Clear(ctx); clearErr != nil {
			s.log.Warn().Err(clearErr).Msg("failed to remove rejected token")
		}
		s.clearLocked()
		return nil
	}

	if subject != "" && subject != user.Username {
		s.log.Warn().
			Str("subject", subject).
			Str("username", user.Username).
			Msg("token subject does not match fetched identity")
	}

	s.token = stored
	s.user = user
	s.state = StateAuthenticated
	s.log.Info().Str("username", user.Username).Str("role", user.Role).Msg("session restored")
	return nil
}

// Login authenticates with the backend and populates the session. The token
// is persisted before the identity fetch so that a concurrent restart sees a
// consistent store.
func (s *Store) Login(ctx context.Context, username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.api.Auth.Login(ctx, username, password)
	if err != nil {
		s.state = StateFailed
		return err
	}

	if err := s.tokens.Save(ctx, token.AccessToken); err != nil {
		s.state = StateFailed
		return fmt.Errorf("persist token: %w", err)
	}
	s.token = token.AccessToken

	user, err := s.api.Auth.Me(ctx, token.AccessToken)
	if err != nil {
		if clearErr := s.tokens.Clear(ctx); clearErr != nil {
			s.log.Warn().Err(clearErr).Msg("failed to remove token after identity fetch error")
		}
		s.clearLocked()
		s.state = StateFailed
		return err
	}

	s.user = user
	s.state = StateAuthenticated
	s.log.Info().Str("username", user.Username).Str("role", user.Role).Msg("logged in")
	return nil
}

// Register creates a new account. The new user's role is observer no matter
// what the caller asked for; see client.AuthService.Register. Registration
// does not log the session in.
func (s *Store) Register(ctx context.Context, u client.UserCreate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.api.Auth.Register(ctx, u); err != nil {
		s.state = StateFailed
		return err
	}
	s.log.Info().Str("username", u.Username).Msg("registered")
	return nil
}

// Logout discards the token and user. Pure local transition: no network
// call, cannot fail. Token-store removal problems are only logged.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.tokens.Clear(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to remove persisted token on logout")
	}
	s.clearLocked()
	s.log.Info().Msg("logged out")
}

func (s *Store) clearLocked() {
	s.token = ""
	s.user = nil
	s.state = StateUnauthenticated
}

// tokenSubject reads the sub claim without verifying the signature. The
// backend signs with a secret the client never holds; the subject is used
// for logging and a consistency check only, never for authorization.
func tokenSubject(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	subject, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return subject
}
