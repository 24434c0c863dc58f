// Package client is a typed Go client for the defect-tracker REST API.
//
// A single *Client carries the HTTP plumbing; per-resource services (Auth,
// Projects, Defects, Reports) map individual endpoints to typed results.
// Every response is normalized through the envelope decoder in envelope.go,
// and every failure surfaces as *APIError. The client itself is stateless:
// it never stores tokens or retries requests.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const defaultAPIVersion = "/v1"

// TokenSource supplies the ambient bearer token for requests that do not
// carry an explicit one. The session store implements it.
type TokenSource interface {
	Token() string
}

// Options configures a Client.
type Options struct {
	// BaseURL is the backend root, e.g. "http://localhost:8000".
	BaseURL string
	// Version is the API version path segment. Defaults to "/v1".
	Version string
	// HTTPClient overrides the transport. Defaults to a 30s-timeout client.
	HTTPClient *http.Client
	// Logger receives request/failure logs.
	Logger zerolog.Logger
	// TokenSource supplies tokens when a call passes an empty token.
	TokenSource TokenSource
}

// Client talks to the defect-tracker backend.
type Client struct {
	baseURL    string
	version    string
	httpClient *http.Client
	log        zerolog.Logger
	tokens     TokenSource

	Auth     *AuthService
	Projects *ProjectsService
	Defects  *DefectsService
	Reports  *ReportsService
}

// New builds a Client from Options.
func New(opts Options) *Client {
	version := opts.Version
	if version == "" {
		version = defaultAPIVersion
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	c := &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		version:    version,
		httpClient: httpClient,
		log:        opts.Logger,
		tokens:     opts.TokenSource,
	}
	c.Auth = &AuthService{c: c}
	c.Projects = &ProjectsService{c: c}
	c.Defects = &DefectsService{c: c}
	c.Reports = &ReportsService{c: c}
	return c
}

// SetTokenSource injects the ambient token source after construction. The
// session store and the client reference each other, so one of the two has
// to be wired late; call this before issuing any request.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// request describes one outbound call. Exactly one of jsonBody, form or
// stream may be set.
type request struct {
	method string
	path   string
	query  url.Values
	token  string // explicit bearer token; ambient TokenSource when empty

	jsonBody any
	form     url.Values
	stream   io.Reader // pre-encoded body (multipart upload)

	contentType string // required with stream
	raw         bool   // binary response: skip envelope normalization on 2xx
}

// do executes a request and decodes the response into out (or, for raw
// requests, into *[]byte). All failures come back as *APIError.
func (c *Client) do(ctx context.Context, r request, out any) error {
	u := c.baseURL + c.version + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case r.jsonBody != nil:
		buf, err := json.Marshal(r.jsonBody)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(buf)
		contentType = "application/json"
	case r.form != nil:
		body = strings.NewReader(r.form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case r.stream != nil:
		body = r.stream
		contentType = r.contentType
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.resolveToken(r.token); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// No response at all: transport-level failure. Logged apart from
		// HTTP failures, but surfaced to the caller the same way.
		requestsTotal.WithLabelValues(r.method, "0").Inc()
		requestFailuresTotal.WithLabelValues("network").Inc()
		c.log.Error().Err(err).
			Str("method", r.method).
			Str("path", r.path).
			Msg("request failed without a response")
		return &APIError{Message: genericErrorMessage}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	requestDuration.WithLabelValues(r.method).Observe(time.Since(start).Seconds())
	requestsTotal.WithLabelValues(r.method, strconv.Itoa(resp.StatusCode)).Inc()
	if err != nil {
		requestFailuresTotal.WithLabelValues("network").Inc()
		c.log.Error().Err(err).
			Str("method", r.method).
			Str("path", r.path).
			Msg("reading response body failed")
		return &APIError{Message: genericErrorMessage}
	}

	if r.raw && is2xx(resp.StatusCode) {
		if dst, ok := out.(*[]byte); ok {
			*dst = payload
		}
		return nil
	}

	if err := decodeEnvelope(resp.StatusCode, payload, out); err != nil {
		if apiErr, ok := err.(*APIError); ok {
			requestFailuresTotal.WithLabelValues("api").Inc()
			c.log.Debug().
				Str("method", r.method).
				Str("path", r.path).
				Int("status", resp.StatusCode).
				Str("code", apiErr.Code).
				Str("message", apiErr.Message).
				Msg("api error")
			return apiErr
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) resolveToken(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if c.tokens != nil {
		return c.tokens.Token()
	}
	return ""
}
