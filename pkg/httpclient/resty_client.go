package httpclient

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestyTransport adapts resty.Client to the httpclient.Transport interface.
type RestyTransport struct {
	client *resty.Client
}

// NewRestyTransport creates a RestyTransport whose client gives up after timeout.
func NewRestyTransport(timeout time.Duration) *RestyTransport {
	c := resty.New()
	c.SetTimeout(timeout)
	return &RestyTransport{client: c}
}

// NewRestyTransportWithClient wraps an existing platform client.
func NewRestyTransportWithClient(hc *http.Client) *RestyTransport {
	if hc == nil {
		hc = &http.Client{}
	}
	return &RestyTransport{client: resty.NewWithClient(hc)}
}

// Do performs req and returns the buffered response.
func (r *RestyTransport) Do(ctx context.Context, req *Request) (Response, error) {
	if req == nil || req.URL == nil {
		return nil, errors.New("httpclient: request has no url")
	}
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	rr := r.client.R().SetContext(ctx)
	if len(req.Header) > 0 {
		rr.Header = req.Header.Clone()
	}
	if len(req.Body) > 0 {
		rr.SetBody(req.Body)
	}

	resp, err := rr.Execute(req.Method, req.URL.String())
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp, url: req.URL.String()}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.HTTPResponse interface.
type restyResponseAdapter struct {
	resp *resty.Response
	url  string
}

func (r *restyResponseAdapter) Body() []byte        { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int     { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Header() http.Header { return r.resp.Header() }

func (r *restyResponseAdapter) URL() string {
	if raw := r.resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		return raw.Request.URL.String()
	}
	return r.url
}
