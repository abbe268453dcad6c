package fileconf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string   `json:"name" yaml:"name"`
	Items []string `json:"items" yaml:"items"`
}

func TestReadFilePicksDecoderByExtension(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"a.yaml": "name: a\nitems: [x, y]\n",
		"b.yml":  "name: b\nitems: [x, y]\n",
		"c.json": `{"name":"c","items":["x","y"]}`,
		"d.conf": `{"name":"d","items":["x","y"]}`,
	}
	for file, content := range files {
		path := filepath.Join(dir, file)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", file, err)
		}
		var got sample
		if err := ReadFile(path, "sample", &got); err != nil {
			t.Fatalf("ReadFile(%s): %v", file, err)
		}
		if got.Name != strings.TrimSuffix(file, filepath.Ext(file)) || len(got.Items) != 2 {
			t.Fatalf("ReadFile(%s) = %+v", file, got)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	var s sample
	err := Decode([]byte(`{"name": [`), ".json", "sample", &s)
	if err == nil || !strings.Contains(err.Error(), "sample file format not recognized") {
		t.Fatalf("unexpected error %v", err)
	}
	if !strings.Contains(err.Error(), "decode json sample") {
		t.Fatalf("decoder error not included: %v", err)
	}

	if err := ReadFile("  ", "sample", &s); err == nil || err.Error() != "sample file path is empty" {
		t.Fatalf("unexpected error %v", err)
	}
	if err := ReadFile(filepath.Join(t.TempDir(), "missing.yaml"), "sample", &s); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
