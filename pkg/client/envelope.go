package client

import "encoding/json"

// The backend answers in one of two envelope conventions and never signals
// which one it used. Responses are classified by shape, in a fixed order:
//
//	versioned-success  {"success":true,"data":...}
//	versioned-error    {"success":false,"error":{"code","message"}}
//	legacy-detail      non-2xx + {"detail":"..."}
//	legacy-raw         2xx, body is the payload itself
//
// Anything else falls through to a generic failure.
type envelopeShape int

const (
	shapeVersionedSuccess envelopeShape = iota
	shapeVersionedError
	shapeLegacyDetail
	shapeLegacyRaw
	shapeUnknown
)

type envelopeErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// envelopeProbe is the superset of fields the two conventions may carry.
// Decoding it never fails for JSON objects; arrays and scalars leave every
// field zero, which classify treats as legacy-raw.
type envelopeProbe struct {
	Success *bool              `json:"success"`
	Data    json.RawMessage    `json:"data"`
	Error   *envelopeErrorBody `json:"error"`
	Detail  string             `json:"detail"`
}

// classify sniffs the response body and returns its envelope shape. Versioned
// matchers run first, so a body carrying both "success" and "detail" is
// treated as versioned.
func classify(status int, body []byte) (envelopeShape, envelopeProbe) {
	var p envelopeProbe
	if len(body) > 0 && json.Unmarshal(body, &p) == nil {
		switch {
		case p.Success != nil && *p.Success && p.Data != nil:
			return shapeVersionedSuccess, p
		case p.Success != nil && !*p.Success && p.Error != nil:
			return shapeVersionedError, p
		case !is2xx(status) && p.Detail != "":
			return shapeLegacyDetail, p
		}
	}
	if is2xx(status) {
		return shapeLegacyRaw, p
	}
	return shapeUnknown, p
}

// decodeEnvelope normalizes a response body into out (which may be nil when
// the caller has no payload to receive) or into an *APIError.
func decodeEnvelope(status int, body []byte, out any) error {
	shape, p := classify(status, body)

	switch shape {
	case shapeVersionedSuccess:
		if out == nil {
			return nil
		}
		return json.Unmarshal(p.Data, out)

	case shapeVersionedError:
		return &APIError{Code: p.Error.Code, Message: p.Error.Message, Status: status}

	case shapeLegacyDetail:
		return &APIError{Message: p.Detail, Status: status}

	case shapeLegacyRaw:
		if out == nil || len(body) == 0 {
			return nil
		}
		return json.Unmarshal(body, out)

	default:
		return &APIError{Message: genericErrorMessage, Status: status}
	}
}

func is2xx(status int) bool { return status >= 200 && status < 300 }
