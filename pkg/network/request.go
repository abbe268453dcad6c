package network

import (
	"net/http"
	"sort"
)

// Header is a single header field. A nil Value removes the field.
type Header struct {
	Name  string
	Value *string
}

// Headers is an ordered list of header fields. Fields are applied in order,
// so a later entry overwrites an earlier one with the same canonical name.
type Headers []Header

// SetHeader returns a Header that sets name to value.
func SetHeader(name, value string) Header {
	return Header{Name: name, Value: &value}
}

// RemoveHeader returns a Header that deletes name.
func RemoveHeader(name string) Header {
	return Header{Name: name}
}

// HeadersFromMap converts m into Headers, ordered by key.
func HeadersFromMap(m map[string]string) Headers {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(Headers, 0, len(keys))
	for _, k := range keys {
		out = append(out, SetHeader(k, m[k]))
	}
	return out
}

// apply writes the fields into dst.
func (h Headers) apply(dst http.Header) {
	for _, f := range h {
		if f.Name == "" {
			continue
		}
		if f.Value == nil {
			dst.Del(f.Name)
			continue
		}
		dst.Set(f.Name, *f.Value)
	}
}

// Descriptor describes one HTTP call without performing any I/O.
type Descriptor interface {
	HTTPMethod() Method
	BaseURL() string
	Endpoint() string
	Headers() Headers
	// QueryParams returns nil when the call has no query parameters. The
	// pairs are merged into any query already in the URL, replacing keys
	// with the same name.
	QueryParams() map[string]string
}

// CompleteURL concatenates the base URL and the endpoint verbatim.
func CompleteURL(d Descriptor) string {
	return d.BaseURL() + d.Endpoint()
}

// Request is a Descriptor whose successful response decodes into Resp.
type Request[Resp any] interface {
	Descriptor
	ZeroResponse() Resp
}

// RequestWithBody is a Request that also transmits a serialized Body.
type RequestWithBody[Resp, Body any] interface {
	Request[Resp]
	Body() Body
}

// Returns can be embedded in a descriptor to declare its response type.
//
//	type getUser struct {
//		network.Returns[User]
//		id string
//	}
type Returns[Resp any] struct{}

// ZeroResponse implements Request.
func (Returns[Resp]) ZeroResponse() Resp {
	var zero Resp
	return zero
}

// StatusValidator is implemented by descriptors that accept only some of the
// 2xx status codes. Listed codes outside 200-299 never count as success.
type StatusValidator interface {
	ValidStatusCodes() []int
}

// NoContent is a response type for calls whose body is ignored.
type NoContent struct{}
