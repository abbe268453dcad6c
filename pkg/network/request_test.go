package network

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseMethod(t *testing.T) {
	for in, want := range map[string]Method{"get": MethodGet, " POST ": MethodPost, "Put": MethodPut, "delete": MethodDelete} {
		got, err := ParseMethod(in)
		if err != nil || got != want {
			t.Fatalf("ParseMethod(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseMethod("PATCH"); err == nil {
		t.Fatalf("expected PATCH to be rejected")
	}
}

func TestCompleteURLConcatenatesVerbatim(t *testing.T) {
	got := CompleteURL(getUser{base: "https://api.example.com/", path: "/users"})
	if got != "https://api.example.com//users" {
		t.Fatalf("CompleteURL = %q", got)
	}
}

func TestHeadersFromMapIsSortedAndApplied(t *testing.T) {
	h := HeadersFromMap(map[string]string{"b": "2", "A": "1", "a": "3"})
	names := make([]string, len(h))
	for i, f := range h {
		names[i] = f.Name
	}
	if diff := cmp.Diff([]string{"A", "a", "b"}, names); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}

	dst := http.Header{}
	h.apply(dst)
	if got := dst.Get("A"); got != "3" {
		t.Fatalf("later entry should win, got %q", got)
	}
	if HeadersFromMap(nil) != nil {
		t.Fatalf("expected nil headers for empty map")
	}
}

func TestErrorMatchingAndMessages(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("call: %w", &Error{Kind: KindDecodingFailed, Err: cause})

	if !errors.Is(err, ErrDecodingFailed) || !errors.Is(err, cause) {
		t.Fatalf("expected kind and cause to match: %v", err)
	}
	if errors.Is(err, ErrEncodingFailed) {
		t.Fatalf("kinds must not cross-match")
	}
	if KindOf(err) != KindDecodingFailed {
		t.Fatalf("KindOf = %v", KindOf(err))
	}
	if KindOf(cause) != 0 {
		t.Fatalf("plain errors carry no kind")
	}
	if _, ok := StatusCode(err); ok {
		t.Fatalf("decoding failure has no status code")
	}

	resp := &Error{Kind: KindInvalidResponse, StatusCode: 503}
	if resp.Error() != "network: invalid_response: status 503" {
		t.Fatalf("message = %q", resp.Error())
	}
	if errors.Is(resp, &Error{Kind: KindInvalidResponse, StatusCode: 500}) {
		t.Fatalf("status code must match when the target sets one")
	}
	if ErrorKind(99).String() != "unknown(99)" {
		t.Fatalf("unexpected unknown kind string")
	}
}

func TestErrorIsToleratesNilTarget(t *testing.T) {
	var target *Error
	err := &Error{Kind: KindRequestFailed}
	if errors.Is(err, target) {
		t.Fatalf("a nil *Error target must not match")
	}
}
