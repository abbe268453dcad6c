package catalog

import (
	"context"

	json "github.com/goccy/go-json"

	"github.com/classly-hq/classly-networking/pkg/network"
)

// Entry is a catalog definition usable as a network descriptor.
type Entry struct {
	def Definition
}

// NewEntry wraps def without file level validation.
func NewEntry(def Definition) Entry { return Entry{def: sanitizeDefinition(def)} }

// Definition returns a copy of the underlying definition.
func (e Entry) Definition() Definition { return e.def }

func (e Entry) ID() string                     { return e.def.ID }
func (e Entry) HTTPMethod() network.Method     { return network.Method(e.def.Method) }
func (e Entry) BaseURL() string                { return e.def.BaseURL }
func (e Entry) Endpoint() string               { return e.def.Endpoint }
func (e Entry) Headers() network.Headers       { return network.HeadersFromMap(e.def.Headers) }
func (e Entry) QueryParams() map[string]string { return e.def.Params }
func (e Entry) ValidStatusCodes() []int        { return e.def.ValidStatus }
func (e Entry) ZeroResponse() json.RawMessage  { return nil }
func (e Entry) HasBody() bool                  { return e.def.Body != nil }

// bodyEntry is the body-bearing form of an Entry.
type bodyEntry struct{ Entry }

func (b bodyEntry) Body() any { return b.def.Body }

// discardEntry ignores the response body.
type discardEntry struct{ Entry }

func (discardEntry) ZeroResponse() network.NoContent { return network.NoContent{} }

type discardBodyEntry struct{ discardEntry }

func (b discardBodyEntry) Body() any { return b.def.Body }

// Run executes e through m and returns the raw JSON response. Entries that
// discard their body return nil on success.
func Run(ctx context.Context, m *network.Manager, e Entry) (json.RawMessage, error) {
	switch {
	case e.def.DiscardBody && e.HasBody():
		_, err := network.ExecuteWithBody[network.NoContent, any](ctx, m, discardBodyEntry{discardEntry{e}})
		return nil, err
	case e.def.DiscardBody:
		_, err := network.Execute[network.NoContent](ctx, m, discardEntry{e})
		return nil, err
	case e.HasBody():
		return network.ExecuteWithBody[json.RawMessage, any](ctx, m, bodyEntry{e})
	default:
		return network.Execute[json.RawMessage](ctx, m, e)
	}
}
