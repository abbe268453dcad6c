package reporters

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/classly-hq/classly-networking/pkg/httpclient"
	"github.com/classly-hq/classly-networking/pkg/network"
)

// webhookHeaderPrefix namespaces the report attributes sent as headers,
// e.g. X-Netreq-Request-Id.
const webhookHeaderPrefix = "X-Netreq-"

// webhookDelivery is one report sent to an HTTP sink. Its response body is
// ignored; any 2xx counts as delivered.
type webhookDelivery struct {
	network.Returns[network.NoContent]
	method  network.Method
	url     string
	headers network.Headers
	report  Report
}

func (w webhookDelivery) HTTPMethod() network.Method     { return w.method }
func (w webhookDelivery) BaseURL() string                { return w.url }
func (w webhookDelivery) Endpoint() string               { return "" }
func (w webhookDelivery) Headers() network.Headers       { return w.headers }
func (w webhookDelivery) QueryParams() map[string]string { return nil }
func (w webhookDelivery) Body() Report                   { return w.report }

type httpReporter struct {
	id      string
	method  network.Method
	url     string
	headers network.Headers
	manager *network.Manager
	log     Logger
}

func newHTTPReporter(_ context.Context, cfg ReporterConfig, log Logger) (Reporter, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("reporter %q missing http configuration", cfg.ID)
	}
	method, err := network.ParseMethod(cfg.HTTP.Method)
	if err != nil {
		return nil, fmt.Errorf("reporter %q: %w", cfg.ID, err)
	}

	log = ensureLogger(log)
	timeout := time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second
	return &httpReporter{
		id:      cfg.ID,
		method:  method,
		url:     cfg.HTTP.URL,
		headers: network.HeadersFromMap(cfg.HTTP.Headers),
		manager: network.NewManager(httpclient.NewRestyTransport(timeout), network.WithLogger(log)),
		log:     log,
	}, nil
}

func (h *httpReporter) ID() string   { return h.id }
func (h *httpReporter) Type() string { return TypeHTTP }

// Report sends r as JSON. Report attributes travel as X-Netreq-* headers;
// configured headers are applied after them and win on conflicts.
func (h *httpReporter) Report(ctx context.Context, r Report) error {
	req := webhookDelivery{
		method:  h.method,
		url:     h.url,
		headers: append(attributeHeaders(r), h.headers...),
		report:  r,
	}
	if _, err := network.ExecuteWithBody[network.NoContent, Report](ctx, h.manager, req); err != nil {
		h.log.ErrorObj("webhook delivery failed", "reporter_http_error", map[string]any{
			"reporter_id":  h.id,
			"execution_id": r.Execution.ID,
			"error":        err.Error(),
		})
		return fmt.Errorf("deliver report: %w", err)
	}
	h.log.DebugObj("webhook delivered report", "reporter_http_delivery", map[string]any{
		"reporter_id":  h.id,
		"execution_id": r.Execution.ID,
		"outcome":      r.Outcome,
	})
	return nil
}

// attributeHeaders turns r.Attributes() into headers, so "status_code"
// becomes "X-Netreq-Status-Code".
func attributeHeaders(r Report) network.Headers {
	attrs := r.Attributes()
	named := make(map[string]string, len(attrs))
	for k, v := range attrs {
		named[webhookHeaderPrefix+strings.ReplaceAll(k, "_", "-")] = v
	}
	return network.HeadersFromMap(named)
}
