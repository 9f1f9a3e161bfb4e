package httpclient

import (
	"context"
	"net/http"
)

// Request describes a single outbound call. Query and Body are already encoded.
type Request struct {
	Method  string
	URL     string
	Query   string
	Body    string
	Headers map[string]string
}

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Header() http.Header
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Do(ctx context.Context, req Request) (Response, error)
}
