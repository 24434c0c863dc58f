package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/defectflow/defectflow-go/pkg/client"
)

// memStore is an in-memory TokenStore for tests.
type memStore struct {
	mu    sync.Mutex
	token string
}

func (m *memStore) Load(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *memStore) Save(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *memStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

func (m *memStore) current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func signToken(t *testing.T, subject string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": subject})
	signed, err := tok.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

// newBackend fakes the auth endpoints: one valid credential pair
// (alice/s3cret) and bearer validation against the issued token.
func newBackend(t *testing.T) (*echo.Echo, string) {
	t.Helper()
	issued := signToken(t, "alice")

	e := echo.New()
	e.POST("/v1/auth/token", func(c echo.Context) error {
		if c.FormValue("username") == "alice" && c.FormValue("password") == "s3cret" {
			return c.JSON(http.StatusOK, client.Token{AccessToken: issued, TokenType: "bearer"})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"success": false,
			"error":   map[string]string{"code": "AUTH_401", "message": "Invalid credentials"},
		})
	})
	e.GET("/v1/auth/users/me", func(c echo.Context) error {
		auth := c.Request().Header.Get("Authorization")
		if auth != "Bearer "+issued {
			return c.JSON(http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
		}
		return c.JSON(http.StatusOK, client.User{
			ID: 7, Username: "alice", Email: "alice@example.com", Role: client.RoleEngineer, IsActive: true,
		})
	})
	return e, issued
}

func newTestStore(t *testing.T, e *echo.Echo, tokens TokenStore) *Store {
	t.Helper()
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	api := client.New(client.Options{BaseURL: srv.URL})
	store := NewStore(api, tokens, zerolog.Nop())
	api.SetTokenSource(store)
	return store
}

func TestStore_LoginThenIdentity(t *testing.T) {
	e, issued := newBackend(t)
	tokens := &memStore{}
	store := newTestStore(t, e, tokens)

	if err := store.Login(context.Background(), "alice", "s3cret"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if store.State() != StateAuthenticated {
		t.Fatalf("state %v, want authenticated", store.State())
	}
	if store.Token() != issued {
		t.Fatalf("store token does not match issued token")
	}
	if tokens.current() != issued {
		t.Fatalf("token not persisted")
	}

	user := store.User()
	if user == nil || user.ID != 7 {
		t.Fatalf("unexpected user: %+v", user)
	}
	// The identity matches the token's subject.
	if user.Username != "alice" {
		t.Fatalf("user %q does not match token subject", user.Username)
	}
}

func TestStore_LoginPersistsTokenBeforeIdentityFetch(t *testing.T) {
	tokens := &memStore{}
	issued := signToken(t, "alice")
	var persistedAtFetch string

	e := echo.New()
	e.POST("/v1/auth/token", func(c echo.Context) error {
		return c.JSON(http.StatusOK, client.Token{AccessToken: issued, TokenType: "bearer"})
	})
	e.GET("/v1/auth/users/me", func(c echo.Context) error {
		persistedAtFetch = tokens.current()
		return c.JSON(http.StatusOK, client.User{ID: 7, Username: "alice"})
	})
	store := newTestStore(t, e, tokens)

	if err := store.Login(context.Background(), "alice", "s3cret"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if persistedAtFetch != issued {
		t.Fatalf("token was not persisted before the identity fetch (saw %q)", persistedAtFetch)
	}
}

func TestStore_LoginBadCredentials(t *testing.T) {
	e, _ := newBackend(t)
	tokens := &memStore{}
	store := newTestStore(t, e, tokens)

	err := store.Login(context.Background(), "bob", "wrong")
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *client.APIError, got %v", err)
	}
	if apiErr.Message != "Invalid credentials" {
		t.Fatalf("unexpected message %q", apiErr.Message)
	}
	if store.State() != StateFailed {
		t.Fatalf("state %v, want failed", store.State())
	}
	if store.Token() != "" || tokens.current() != "" {
		t.Fatalf("no token should be stored after a failed login")
	}
}

func TestStore_RestoreValidToken(t *testing.T) {
	e, issued := newBackend(t)
	tokens := &memStore{token: issued}
	store := newTestStore(t, e, tokens)

	if err := store.Restore(context.Background()); err != nil {
		t.Fatalf("Restore returned error: %v", err)
	}
	if store.State() != StateAuthenticated {
		t.Fatalf("state %v, want authenticated", store.State())
	}
	user := store.User()
	if user == nil || user.Username != "alice" {
		t.Fatalf("unexpected user after restore: %+v", user)
	}
}

func TestStore_RestoreRejectedTokenIsSilent(t *testing.T) {
	e, _ := newBackend(t)
	tokens := &memStore{token: signToken(t, "alice") + "stale"}
	store := newTestStore(t, e, tokens)

	// A rejected persisted token is an implicit logout, not an error.
	if err := store.Restore(context.Background()); err != nil {
		t.Fatalf("Restore must not surface validation failure, got %v", err)
	}
	if store.State() != StateUnauthenticated {
		t.Fatalf("state %v, want unauthenticated", store.State())
	}
	if tokens.current() != "" {
		t.Fatalf("rejected token must be removed from storage")
	}
	if store.User() != nil || store.Token() != "" {
		t.Fatalf("session not cleared")
	}
}

func TestStore_RestoreWithoutToken(t *testing.T) {
	e, _ := newBackend(t)
	store := newTestStore(t, e, &memStore{})

	if err := store.Restore(context.Background()); err != nil {
		t.Fatalf("Restore returned error: %v", err)
	}
	if store.State() != StateUnauthenticated {
		t.Fatalf("state %v, want unauthenticated", store.State())
	}
}

func TestStore_Logout(t *testing.T) {
	e, _ := newBackend(t)
	tokens := &memStore{}
	store := newTestStore(t, e, tokens)

	if err := store.Login(context.Background(), "alice", "s3cret"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	store.Logout(context.Background())

	if store.State() != StateUnauthenticated {
		t.Fatalf("state %v, want unauthenticated", store.State())
	}
	if store.Token() != "" || store.User() != nil {
		t.Fatalf("session not cleared on logout")
	}
	if tokens.current() != "" {
		t.Fatalf("persisted token not removed on logout")
	}
}

func TestStore_RegisterDoesNotAuthenticate(t *testing.T) {
	e, _ := newBackend(t)
	e.POST("/v1/auth/register", func(c echo.Context) error {
		var payload client.UserCreate
		if err := c.Bind(&payload); err != nil {
			return err
		}
		if payload.Role != client.RoleObserver {
			return c.JSON(http.StatusBadRequest, map[string]string{"detail": "unexpected role"})
		}
		return c.JSON(http.StatusOK, client.User{ID: 11, Username: payload.Username, Role: client.RoleObserver})
	})
	store := newTestStore(t, e, &memStore{})

	err := store.Register(context.Background(), client.UserCreate{
		Username: "carol", Email: "carol@example.com", Password: "pass1234", Role: client.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if store.State() != StateUnauthenticated {
		t.Fatalf("register must not authenticate, state %v", store.State())
	}
}

func TestTokenSubject(t *testing.T) {
	if got := tokenSubject(signToken(t, "alice")); got != "alice" {
		t.Fatalf("subject %q, want alice", got)
	}
	if got := tokenSubject("not-a-jwt"); got != "" {
		t.Fatalf("expected empty subject for junk token, got %q", got)
	}
}

func TestState_String(t *testing.T) {
	cases := map[State]string{
		StateUnauthenticated: "unauthenticated",
		StateRestoring:       "restoring",
		StateAuthenticated:   "authenticated",
		StateFailed:          "failed",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Fatalf("State(%d).String() = %q, want %q", int(state), got, want)
		}
	}
	if !strings.HasPrefix(State(42).String(), "state(") {
		t.Fatalf("unexpected format for unknown state")
	}
}
