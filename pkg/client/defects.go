package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// DefectsService covers defect CRUD plus the comment and attachment
// sub-resources scoped under a parent defect.
type DefectsService struct {
	c *Client
}

// List returns every defect visible to the caller.
func (s *DefectsService) List(ctx context.Context, token string) ([]Defect, error) {
	var defects []Defect
	err := s.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/defects/",
		token:  token,
	}, &defects)
	if err != nil {
		return nil, err
	}
	return defects, nil
}

// Create reports a new defect.
func (s *DefectsService) Create(ctx context.Context, token string, d DefectCreate) (*Defect, error) {
	if err := checkPayload(d); err != nil {
		return nil, err
	}

	var defect Defect
	err := s.c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/defects/",
		jsonBody: d,
		token:    token,
	}, &defect)
	if err != nil {
		return nil, err
	}
	return &defect, nil
}

// Get fetches a single defect by id.
func (s *DefectsService) Get(ctx context.Context, token string, defectID int) (*Defect, error) {
	var defect Defect
	err := s.c.do(ctx, request{
		method: http.MethodGet,
		path:   fmt.Sprintf("/defects/%d", defectID),
		token:  token,
	}, &defect)
	if err != nil {
		return nil, err
	}
	return &defect, nil
}

// Update replaces a defect's mutable fields.
func (s *DefectsService) Update(ctx context.Context, token string, defectID int, d DefectUpdate) (*Defect, error) {
	if err := checkPayload(d); err != nil {
		return nil, err
	}

	var defect Defect
	err := s.c.do(ctx, request{
		method:   http.MethodPut,
		path:     fmt.Sprintf("/defects/%d", defectID),
		jsonBody: d,
		token:    token,
	}, &defect)
	if err != nil {
		return nil, err
	}
	return &defect, nil
}

// Delete removes a defect.
func (s *DefectsService) Delete(ctx context.Context, token string, defectID int) error {
	return s.c.do(ctx, request{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/defects/%d", defectID),
		token:  token,
	}, nil)
}

// Comments lists the comments under a defect.
func (s *DefectsService) Comments(ctx context.Context, token string, defectID int) ([]Comment, error) {
	var comments []Comment
	err := s.c.do(ctx, request{
		method: http.MethodGet,
		path:   fmt.Sprintf("/defects/%d/comments/", defectID),
		token:  token,
	}, &comments)
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// AddComment posts a comment under a defect.
func (s *DefectsService) AddComment(ctx context.Context, token string, defectID int, content string) (*Comment, error) {
	payload := CommentCreate{Content: content, DefectID: defectID}
	if err := checkPayload(payload); err != nil {
		return nil, err
	}

	var comment Comment
	err := s.c.do(ctx, request{
		method:   http.MethodPost,
		path:     fmt.Sprintf("/defects/%d/comments/", defectID),
		jsonBody: payload,
		token:    token,
	}, &comment)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Attachments lists the files uploaded against a defect.
func (s *DefectsService) Attachments(ctx context.Context, token string, defectID int) ([]Attachment, error) {
	var attachments []Attachment
	err := s.c.do(ctx, request{
		method: http.MethodGet,
		path:   fmt.Sprintf("/defects/%d/attachments/", defectID),
		token:  token,
	}, &attachments)
	if err != nil {
		return nil, err
	}
	return attachments, nil
}

// UploadAttachment streams a file to a defect as a multipart form with a
// single "file" part.
func (s *DefectsService) UploadAttachment(ctx context.Context, token string, defectID int, filename string, content io.Reader) (*Attachment, error) {
	if filename == "" {
		return nil, &ValidationError{Message: "filename is required"}
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("read attachment content: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	var attachment Attachment
	err = s.c.do(ctx, request{
		method:      http.MethodPost,
		path:        fmt.Sprintf("/defects/%d/attachments/", defectID),
		stream:      &buf,
		contentType: mw.FormDataContentType(),
		token:       token,
	}, &attachment)
	if err != nil {
		return nil, err
	}
	return &attachment, nil
}

// DeleteAttachment removes an uploaded file from a defect.
func (s *DefectsService) DeleteAttachment(ctx context.Context, token string, defectID, attachmentID int) error {
	return s.c.do(ctx, request{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/defects/%d/attachments/%d", defectID, attachmentID),
		token:  token,
	}, nil)
}
