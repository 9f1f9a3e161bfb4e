package resource

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error kinds. Match with errors.Is.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidRequest = errors.New("invalid request")
	ErrAuthentication = errors.New("authentication failed")
	ErrAPI            = errors.New("api error")
	ErrCard           = errors.New("card declined")
	ErrConnection     = errors.New("connection error")
)

// Error types reported in the "type" field of the error envelope.
const (
	TypeAPIError            = "api_error"
	TypeCardError           = "card_error"
	TypeInvalidRequestError = "invalid_request_error"
	TypeAuthenticationError = "authentication_error"
)

// Error is returned for every failed call. Kind is one of the Err* sentinels.
type Error struct {
	Kind       error  `json:"-"`
	HTTPStatus int    `json:"status,omitempty"`
	Type       string `json:"type,omitempty"`
	Code       string `json:"code,omitempty"`
	Param      string `json:"param,omitempty"`
	Message    string `json:"message,omitempty"`
	RequestID  string `json:"request_id,omitempty"`

	cause error
}

func (e *Error) Error() string {
	var sb strings.Builder
	if e.Kind != nil {
		sb.WriteString(e.Kind.Error())
	} else {
		sb.WriteString("request failed")
	}
	if e.HTTPStatus != 0 {
		fmt.Fprintf(&sb, " (status %d)", e.HTTPStatus)
	}
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	if e.cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.cause.Error())
	}
	if e.RequestID != "" {
		fmt.Fprintf(&sb, " [request %s]", e.RequestID)
	}
	return sb.String()
}

// Is reports whether target is the kind of this error.
func (e *Error) Is(target error) bool {
	return e.Kind != nil && e.Kind == target
}

// Unwrap exposes the transport failure, if any.
func (e *Error) Unwrap() error { return e.cause }

type errorEnvelope struct {
	Error *struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Param   string `json:"param"`
		Message string `json:"message"`
	} `json:"error"`
}

// newAPIError builds an Error from a non-2xx response.
func newAPIError(status int, body []byte, requestID string) *Error {
	e := &Error{HTTPStatus: status, RequestID: requestID}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		e.Type = env.Error.Type
		e.Code = env.Error.Code
		e.Param = env.Error.Param
		e.Message = env.Error.Message
	} else {
		e.Message = bodySnippet(body)
	}

	e.Kind = classify(status, e.Type)
	return e
}

func newInvalidRequest(msg string) *Error {
	return &Error{Kind: ErrInvalidRequest, Type: TypeInvalidRequestError, Message: msg}
}

func newConnectionError(err error) *Error {
	return &Error{Kind: ErrConnection, cause: err}
}

// classify maps status and error type onto an error kind.
func classify(status int, typ string) error {
	switch {
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ErrAuthentication
	case typ == TypeCardError:
		return ErrCard
	case status >= 500, typ == TypeAPIError:
		return ErrAPI
	default:
		return ErrInvalidRequest
	}
}

func bodySnippet(body []byte) string {
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}
