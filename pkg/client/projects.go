package client

import (
	"context"
	"fmt"
	"net/http"
)

// ProjectsService covers project CRUD.
type ProjectsService struct {
	c *Client
}

// List returns every project visible to the caller.
func (s *ProjectsService) List(ctx context.Context, token string) ([]Project, error) {
	var projects []Project
	err := s.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/projects/",
		token:  token,
	}, &projects)
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// Create adds a new project.
func (s *ProjectsService) Create(ctx context.Context, token string, p ProjectCreate) (*Project, error) {
	if err := checkPayload(p); err != nil {
		return nil, err
	}

	var project Project
	err := s.c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/projects/",
		jsonBody: p,
		token:    token,
	}, &project)
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Get fetches a single project by id.
func (s *ProjectsService) Get(ctx context.Context, token string, projectID int) (*Project, error) {
	var project Project
	err := s.c.do(ctx, request{
		method: http.MethodGet,
		path:   fmt.Sprintf("/projects/%d", projectID),
		token:  token,
	}, &project)
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Update replaces a project's mutable fields.
func (s *ProjectsService) Update(ctx context.Context, token string, projectID int, p ProjectCreate) (*Project, error) {
	if err := checkPayload(p); err != nil {
		return nil, err
	}

	var project Project
	err := s.c.do(ctx, request{
		method:   http.MethodPut,
		path:     fmt.Sprintf("/projects/%d", projectID),
		jsonBody: p,
		token:    token,
	}, &project)
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Delete removes a project.
func (s *ProjectsService) Delete(ctx context.Context, token string, projectID int) error {
	return s.c.do(ctx, request{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/projects/%d", projectID),
		token:  token,
	}, nil)
}
