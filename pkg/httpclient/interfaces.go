package httpclient

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Request is the wire-level request handed to a Transport.
type Request struct {
	Method  string
	URL     *url.URL
	Header  http.Header
	Body    []byte
	Timeout time.Duration
}

// Response is the raw result of a transport call.
type Response interface {
	Body() []byte
}

// HTTPResponse is a Response that carries HTTP metadata.
type HTTPResponse interface {
	Response
	StatusCode() int
	Header() http.Header
	URL() string
}

// Transport performs network I/O so callers can inject fakes or different stacks.
type Transport interface {
	Do(ctx context.Context, req *Request) (Response, error)
}
