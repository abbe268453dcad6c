package network

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/classly-hq/classly-networking/pkg/httpclient"
)

// RequestTimeout bounds every call made by a Manager.
const RequestTimeout = 30 * time.Second

// Manager turns descriptors into transport calls and typed results.
// It holds no mutable state and is safe for concurrent use.
type Manager struct {
	transport httpclient.Transport
	codec     Codec
	log       Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithCodec replaces the default JSON codec.
func WithCodec(c Codec) Option {
	return func(m *Manager) {
		if c != nil {
			m.codec = c
		}
	}
}

// WithLogger attaches a diagnostic logger. The default discards everything.
func WithLogger(log Logger) Option {
	return func(m *Manager) { m.log = ensureLogger(log) }
}

// NewManager builds a Manager around transport. A nil transport gets a
// resty transport owned by this manager.
func NewManager(transport httpclient.Transport, opts ...Option) *Manager {
	if transport == nil {
		transport = httpclient.NewRestyTransport(RequestTimeout)
	}
	m := &Manager{
		transport: transport,
		codec:     JSONCodec{},
		log:       noopLogger{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Execute performs req and decodes the response into Resp.
func Execute[Resp any](ctx context.Context, m *Manager, req Request[Resp]) (Resp, error) {
	var zero Resp
	wire, err := m.newWireRequest(req)
	if err != nil {
		return zero, err
	}
	return decodeResponse[Resp](m, req, m.dispatch(ctx, wire))
}

// ExecuteWithBody encodes the request body, performs req and decodes the
// response into Resp.
func ExecuteWithBody[Resp, Body any](ctx context.Context, m *Manager, req RequestWithBody[Resp, Body]) (Resp, error) {
	var zero Resp
	wire, err := m.newWireRequest(req)
	if err != nil {
		return zero, err
	}
	payload, err := m.codec.Marshal(req.Body())
	if err != nil {
		return zero, &Error{Kind: KindEncodingFailed, Err: err}
	}
	wire.Body = payload
	if ct := m.codec.ContentType(); ct != "" && !hasHeader(req.Headers(), "Content-Type") {
		wire.Header.Set("Content-Type", ct)
	}
	return decodeResponse[Resp](m, req, m.dispatch(ctx, wire))
}

// newWireRequest validates the URL and builds the transport request.
func (m *Manager) newWireRequest(d Descriptor) (*httpclient.Request, error) {
	u, err := parseCompleteURL(CompleteURL(d))
	if err != nil {
		return nil, &Error{Kind: KindInvalidURL, Err: err}
	}
	if params := d.QueryParams(); params != nil {
		q := u.Query()
		for k, v := range params {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	header := make(http.Header)
	d.Headers().apply(header)

	return &httpclient.Request{
		Method:  d.HTTPMethod().String(),
		URL:     u,
		Header:  header,
		Timeout: RequestTimeout,
	}, nil
}

func parseCompleteURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, errors.New("url is empty")
	}
	if i := strings.IndexFunc(raw, illegalURLRune); i >= 0 {
		r, _ := utf8.DecodeRuneInString(raw[i:])
		return nil, fmt.Errorf("url contains illegal character %q at offset %d", r, i)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.New("url must be absolute")
	}
	return u, nil
}

// illegalURLRune reports runes outside the RFC 3986 unreserved and reserved
// sets. '%' is allowed here; url.Parse rejects malformed escapes.
func illegalURLRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	case strings.ContainsRune("-._~:/?#[]@!$&'()*+,;=%", r):
		return false
	}
	return true
}

func hasHeader(h Headers, name string) bool {
	canonical := http.CanonicalHeaderKey(name)
	for _, f := range h {
		if http.CanonicalHeaderKey(f.Name) == canonical {
			return true
		}
	}
	return false
}

type dispatchResult struct {
	resp httpclient.HTTPResponse
	err  error
}

// dispatch performs the transport call and checks the result is an HTTP response.
func (m *Manager) dispatch(ctx context.Context, wire *httpclient.Request) dispatchResult {
	m.log.DebugObj("performing request", "network_request", map[string]any{
		"method": wire.Method,
		"url":    wire.URL.String(),
	})

	raw, err := m.transport.Do(ctx, wire)
	if err != nil {
		return dispatchResult{err: &Error{Kind: KindRequestFailed, Err: err}}
	}
	resp, ok := raw.(httpclient.HTTPResponse)
	if !ok {
		return dispatchResult{err: &Error{Kind: KindInvalidResponseType}}
	}

	m.log.DebugObj("received response", "network_response", map[string]any{
		"status_code": resp.StatusCode(),
		"url":         resp.URL(),
		"headers":     resp.Header(),
		"body":        string(resp.Body()),
	})
	return dispatchResult{resp: resp}
}

func decodeResponse[Resp any](m *Manager, d Descriptor, res dispatchResult) (Resp, error) {
	var out Resp
	if res.err != nil {
		return out, res.err
	}

	code := res.resp.StatusCode()
	if !acceptsStatus(d, code) {
		return out, &Error{Kind: KindInvalidResponse, StatusCode: code}
	}
	if _, ok := any(out).(NoContent); ok {
		return out, nil
	}
	if err := m.codec.Unmarshal(res.resp.Body(), &out); err != nil {
		var zero Resp
		return zero, &Error{Kind: KindDecodingFailed, Err: err}
	}
	return out, nil
}

// acceptsStatus allows 200-299 only. A StatusValidator list narrows that
// range; codes it lists outside 2xx are never accepted.
func acceptsStatus(d Descriptor, code int) bool {
	if code < http.StatusOK || code > 299 {
		return false
	}
	if sv, ok := d.(StatusValidator); ok {
		if valid := sv.ValidStatusCodes(); len(valid) > 0 {
			return slices.Contains(valid, code)
		}
	}
	return true
}
