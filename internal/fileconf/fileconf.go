// Package fileconf decodes the YAML or JSON files that describe catalogs and
// reporters.
package fileconf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

type decoder struct {
	format string
	exts   []string
	fn     func([]byte, any) error
}

var decoders = []decoder{
	{format: "yaml", exts: []string{".yaml", ".yml"}, fn: yaml.Unmarshal},
	{format: "json", exts: []string{".json"}, fn: json.Unmarshal},
}

// ReadFile reads path and decodes it into dst, choosing the format from the
// file extension. kind names the file in error messages.
func ReadFile(path, kind string, dst any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("%s file path is empty", kind)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s file: %w", kind, err)
	}
	return Decode(raw, filepath.Ext(path), kind, dst)
}

// Decode decodes raw into dst. An empty or unknown ext tries every format in
// turn.
func Decode(raw []byte, ext, kind string, dst any) error {
	ext = strings.ToLower(strings.TrimSpace(ext))
	candidates := decoders
	for _, d := range decoders {
		for _, e := range d.exts {
			if e == ext {
				candidates = []decoder{d}
			}
		}
	}

	var errs []error
	for _, d := range candidates {
		if err := d.fn(raw, dst); err != nil {
			errs = append(errs, fmt.Errorf("decode %s %s: %w", d.format, kind, err))
			continue
		}
		return nil
	}
	return fmt.Errorf("%s file format not recognized (expected YAML or JSON): %w", kind, errors.Join(errs...))
}
