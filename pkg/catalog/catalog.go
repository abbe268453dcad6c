package catalog

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/classly-hq/classly-networking/internal/fileconf"
	"github.com/go-playground/validator/v10"
)

// Package catalog loads named request definitions from YAML/JSON files.

// Definition is a single request entry declared in a catalog file.
type Definition struct {
	ID          string            `json:"id" yaml:"id" validate:"required"`
	Description string            `json:"description" yaml:"description"`
	Method      string            `json:"method" yaml:"method" validate:"required,oneof=GET POST PUT DELETE"`
	BaseURL     string            `json:"base_url" yaml:"base_url" validate:"required,url"`
	Endpoint    string            `json:"endpoint" yaml:"endpoint"`
	Headers     map[string]string `json:"headers" yaml:"headers"`
	Params      map[string]string `json:"params" yaml:"params"`
	Body        any               `json:"body" yaml:"body"`
	ValidStatus []int             `json:"valid_status" yaml:"valid_status" validate:"dive,gte=200,lte=299"`
	// DiscardBody skips decoding the response, for endpoints answering 204.
	DiscardBody bool `json:"discard_body" yaml:"discard_body"`
}

type catalogFile struct {
	Requests []Definition `json:"requests" yaml:"requests"`
}

// Catalog holds the entries loaded from a catalog file.
type Catalog struct {
	mu      sync.RWMutex
	entries []Entry
	idx     map[string]Entry
}

var validate = validator.New()

// Load reads and validates a catalog file.
func Load(path string) (*Catalog, error) {
	var f catalogFile
	if err := fileconf.ReadFile(path, "catalog", &f); err != nil {
		return nil, err
	}
	return build(f)
}

// Parse builds a Catalog from raw file content. ext selects the decoder; an
// empty ext tries YAML then JSON.
func Parse(raw []byte, ext string) (*Catalog, error) {
	var f catalogFile
	if err := fileconf.Decode(raw, ext, "catalog", &f); err != nil {
		return nil, err
	}
	return build(f)
}

func build(f catalogFile) (*Catalog, error) {
	if len(f.Requests) == 0 {
		return nil, errors.New("catalog file contains no requests entries")
	}

	c := &Catalog{
		entries: make([]Entry, 0, len(f.Requests)),
		idx:     make(map[string]Entry, len(f.Requests)),
	}
	for i := range f.Requests {
		def := sanitizeDefinition(f.Requests[i])
		if err := validateDefinition(def); err != nil {
			return nil, fmt.Errorf("requests[%d]: %w", i, err)
		}
		if _, exists := c.idx[def.ID]; exists {
			return nil, fmt.Errorf("duplicate request id %q", def.ID)
		}
		e := Entry{def: def}
		c.entries = append(c.entries, e)
		c.idx[def.ID] = e
	}
	return c, nil
}

func sanitizeDefinition(d Definition) Definition {
	d.ID = strings.TrimSpace(d.ID)
	d.Description = strings.TrimSpace(d.Description)
	d.Method = strings.ToUpper(strings.TrimSpace(d.Method))
	if d.Method == "" {
		d.Method = "GET"
	}
	d.BaseURL = strings.TrimSpace(d.BaseURL)
	d.Headers = sanitizeMap(d.Headers)
	return d
}

// sanitizeMap trims keys and values and drops entries with an empty key.
func sanitizeMap(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}
		out[key] = strings.TrimSpace(v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func validateDefinition(d Definition) error {
	if err := validate.Struct(d); err != nil {
		return validationError(d.ID, err)
	}
	if d.Body != nil && d.Method == "GET" {
		return fmt.Errorf("body is not allowed for GET request %q", d.ID)
	}
	return nil
}

// validationError turns validator failures into a single readable error.
func validationError(id string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field '%s' is required", e.Field()))
		case "url":
			msgs = append(msgs, fmt.Sprintf("field '%s' must be a valid URL", e.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("field '%s' must be one of %s", e.Field(), e.Param()))
		case "gte", "lte":
			msgs = append(msgs, fmt.Sprintf("field '%s' must only list 2xx status codes", e.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("field '%s' failed on the '%s' tag", e.Field(), e.Tag()))
		}
	}
	if id == "" {
		return errors.New(strings.Join(msgs, ", "))
	}
	return fmt.Errorf("request %q: %s", id, strings.Join(msgs, ", "))
}

// All returns the entries in file order.
func (c *Catalog) All() []Entry {
	if c == nil {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// ByID returns the entry with the given id.
func (c *Catalog) ByID(id string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Entry{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.idx[id]
	return e, ok
}

// Select returns the entries for ids in the given order, or every entry when
// ids is empty.
func (c *Catalog) Select(ids []string) ([]Entry, error) {
	if len(ids) == 0 {
		return c.All(), nil
	}
	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		e, ok := c.ByID(id)
		if !ok {
			return nil, fmt.Errorf("unknown request id %q", id)
		}
		out = append(out, e)
	}
	return out, nil
}
