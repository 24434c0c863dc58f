package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// AuthService covers login, registration and user administration.
type AuthService struct {
	c *Client
}

// Login exchanges credentials for a bearer token using the OAuth2 password
// grant. This is the only endpoint that takes a form-urlencoded body.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Token, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var token Token
	err := s.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/token",
		form:   form,
	}, &token)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// Register creates a new user account. The role is always forced to
// observer before sending: the backend overrides it anyway, and the client
// must not signal a different expectation.
func (s *AuthService) Register(ctx context.Context, u UserCreate) (*User, error) {
	u.Role = RoleObserver
	if err := checkPayload(u); err != nil {
		return nil, err
	}

	var user User
	err := s.c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/auth/register",
		jsonBody: u,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Me fetches the identity behind the given token.
func (s *AuthService) Me(ctx context.Context, token string) (*User, error) {
	var user User
	err := s.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/auth/users/me",
		token:  token,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsersOptions carries optional pagination for Users.
type ListUsersOptions struct {
	Skip  int
	Limit int
}

// Users lists all users. Privileged: the backend rejects callers without a
// manager or admin role.
func (s *AuthService) Users(ctx context.Context, token string, opts *ListUsersOptions) ([]User, error) {
	query := url.Values{}
	if opts != nil {
		if opts.Skip > 0 {
			query.Set("skip", strconv.Itoa(opts.Skip))
		}
		if opts.Limit > 0 {
			query.Set("limit", strconv.Itoa(opts.Limit))
		}
	}

	var users []User
	err := s.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/auth/users",
		query:  query,
		token:  token,
	}, &users)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUserRole changes another user's role. Privileged. Granting admin is
// not part of the client surface and is rejected locally.
func (s *AuthService) UpdateUserRole(ctx context.Context, token string, userID int, newRole string) (*User, error) {
	switch newRole {
	case RoleManager, RoleEngineer, RoleObserver:
	default:
		return nil, &ValidationError{Message: fmt.Sprintf("role must be one of: %s, %s, %s", RoleManager, RoleEngineer, RoleObserver)}
	}

	query := url.Values{}
	query.Set("new_role", newRole)

	var user User
	err := s.c.do(ctx, request{
		method: http.MethodPut,
		path:   fmt.Sprintf("/auth/users/%d/role", userID),
		query:  query,
		token:  token,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
