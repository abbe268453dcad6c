package reporters

import (
	"context"
	"io"
	"testing"

	"github.com/classly-hq/classly-networking/internal/domain"
)

func TestFilterAccepts(t *testing.T) {
	ok := NewReport("run", domain.Execution{ID: "e1", RequestID: "list-users"})
	failed := NewReport("run", domain.Execution{ID: "e2", RequestID: "get-user", StatusCode: 500, ErrorKind: "invalid_response"})

	cases := []struct {
		name   string
		filter Filter
		report Report
		want   bool
	}{
		{"zero filter passes success", Filter{}, ok, true},
		{"zero filter passes failure", Filter{}, failed, true},
		{"only failures drops success", Filter{OnlyFailures: true}, ok, false},
		{"only failures keeps failure", Filter{OnlyFailures: true}, failed, true},
		{"request list match", Filter{Requests: []string{"list-users"}}, ok, true},
		{"request list miss", Filter{Requests: []string{"list-users"}}, failed, false},
		{"both conditions", Filter{OnlyFailures: true, Requests: []string{"get-user"}}, failed, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.filter.Accepts(tc.report); got != tc.want {
				t.Fatalf("Accepts = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFilteredSkipsWrappingForZeroFilter(t *testing.T) {
	rep := &stubReporter{id: "a", typ: TypeHTTP}
	if got := Filtered(rep, Filter{}); got != Reporter(rep) {
		t.Fatalf("zero filter should return the reporter unchanged")
	}
	if Filtered(nil, Filter{OnlyFailures: true}) != nil {
		t.Fatalf("nil reporter should stay nil")
	}
}

func TestFilteredReporterDropsRejectedReports(t *testing.T) {
	inner := &stubReporter{id: "alerts", typ: TypeSNS}
	rep := Filtered(inner, Filter{OnlyFailures: true})
	if rep.ID() != "alerts" || rep.Type() != TypeSNS {
		t.Fatalf("identity not forwarded: %s/%s", rep.ID(), rep.Type())
	}

	ctx := context.Background()
	if err := rep.Report(ctx, NewReport("run", domain.Execution{ID: "e1"})); err != nil {
		t.Fatalf("Report: %v", err)
	}
	if inner.calls != 0 {
		t.Fatalf("success report should be dropped")
	}
	if err := rep.Report(ctx, NewReport("run", domain.Execution{ID: "e2", ErrorKind: "network_error"})); err != nil {
		t.Fatalf("Report: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("failure report should be delivered, calls=%d", inner.calls)
	}

	if err := rep.(io.Closer).Close(); err != nil || !inner.closed {
		t.Fatalf("Close should reach the wrapped reporter: %v closed=%v", err, inner.closed)
	}
}

func TestReportAttributes(t *testing.T) {
	r := NewReport("run-1", domain.Execution{ID: "e1", RequestID: "list-users", Method: "GET", StatusCode: 200})
	if r.Outcome != OutcomeSuccess {
		t.Fatalf("Outcome = %q", r.Outcome)
	}
	attrs := r.Attributes()
	if attrs["status_code"] != "200" || attrs["method"] != "GET" || attrs["run_id"] != "run-1" {
		t.Fatalf("unexpected attributes: %v", attrs)
	}
	if _, ok := attrs["error_kind"]; ok {
		t.Fatalf("empty error_kind should be omitted: %v", attrs)
	}
}
