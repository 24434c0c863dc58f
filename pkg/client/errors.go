package client

import "fmt"

// genericErrorMessage is the localized fallback shown when the backend
// response matches no known envelope shape or never arrives.
const genericErrorMessage = "Что-то пошло не так"

// APIError is the single normalized failure value surfaced by the client.
// Both envelope shapes and transport-level failures collapse into it.
type APIError struct {
	// Code is the machine-readable error code from the versioned envelope,
	// e.g. "AUTH_401". Empty for legacy-envelope and transport failures.
	Code string
	// Message is the human-readable error text.
	Message string
	// Status is the HTTP status code of the response, 0 when no response
	// was received at all.
	Status int
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// IsNetwork reports whether the failure happened before any response was
// received.
func (e *APIError) IsNetwork() bool { return e.Status == 0 }

// ValidationError reports a client-side payload problem detected before any
// network call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
