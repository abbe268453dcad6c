package executor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/classly-hq/classly-networking/internal/domain"
	"github.com/classly-hq/classly-networking/pkg/catalog"
	"github.com/classly-hq/classly-networking/pkg/network"
	"github.com/classly-hq/classly-networking/pkg/reporters"
)

// fakeRecorder keeps executions in memory and can inject errors.
type fakeRecorder struct {
	mu    sync.Mutex
	execs map[string]domain.Execution
	err   error
}

func (f *fakeRecorder) Record(exec domain.Execution) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.execs == nil {
		f.execs = make(map[string]domain.Execution)
	}
	f.execs[exec.ID] = exec
	return nil
}

// fakeReporter records reports.
type fakeReporter struct {
	mu      sync.Mutex
	reports []reporters.Report
	err     error
}

func (f *fakeReporter) Report(_ context.Context, r reporters.Report) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, r)
	if f.err != nil {
		return 0, f.err
	}
	return 1, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"ok":true}`))
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func entry(id, base, endpoint string) catalog.Entry {
	return catalog.NewEntry(catalog.Definition{ID: id, Method: "GET", BaseURL: base, Endpoint: endpoint})
}

func TestServiceRunRecordsAndReportsOutcomes(t *testing.T) {
	srv := newTestServer(t)
	rec := &fakeRecorder{}
	rep := &fakeReporter{}
	svc := NewService(network.NewManager(nil), rec, rep, 2, nil)

	entries := []catalog.Entry{
		entry("good", srv.URL, "/ok"),
		entry("bad", srv.URL, "/fail"),
	}
	execs, err := svc.Run(context.Background(), "run-1", entries)
	if err == nil || !strings.Contains(err.Error(), "request bad") {
		t.Fatalf("expected joined error naming the failed request, got %v", err)
	}
	if !errors.Is(err, network.ErrInvalidResponse) {
		t.Fatalf("expected invalid response in error chain, got %v", err)
	}

	if len(execs) != 2 {
		t.Fatalf("expected 2 executions, got %d", len(execs))
	}
	good, bad := execs[0], execs[1]
	if good.ID != "run-1/good" || !good.Succeeded() || string(good.Response) != `{"ok":true}` {
		t.Fatalf("unexpected good execution: %+v", good)
	}
	if good.URL != srv.URL+"/ok" || good.Method != "GET" {
		t.Fatalf("unexpected good execution target: %s %s", good.Method, good.URL)
	}
	if bad.Succeeded() || bad.ErrorKind != "invalid_response" || bad.StatusCode != http.StatusInternalServerError {
		t.Fatalf("unexpected bad execution: %+v", bad)
	}

	if len(rec.execs) != 2 {
		t.Fatalf("expected 2 recorded executions, got %d", len(rec.execs))
	}
	if len(rep.reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(rep.reports))
	}
	for _, r := range rep.reports {
		if r.RunID != "run-1" {
			t.Fatalf("report carries wrong run id: %q", r.RunID)
		}
	}
}

func TestServiceRunSurfacesJournalAndReportErrors(t *testing.T) {
	srv := newTestServer(t)
	journalErr := errors.New("disk full")
	reportErr := errors.New("sink down")
	svc := NewService(nil, &fakeRecorder{err: journalErr}, &fakeReporter{err: reportErr}, 1, nil)

	execs, err := svc.Run(context.Background(), "run-2", []catalog.Entry{entry("good", srv.URL, "/ok")})
	if !errors.Is(err, journalErr) || !errors.Is(err, reportErr) {
		t.Fatalf("expected journal and report errors, got %v", err)
	}
	if len(execs) != 1 || !execs[0].Succeeded() {
		t.Fatalf("request outcome should still be returned: %+v", execs)
	}
}

func TestServiceRunRespectsConcurrencyLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		inFlight.Add(-1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	entries := make([]catalog.Entry, 6)
	for i := range entries {
		entries[i] = entry(string(rune('a'+i)), srv.URL, "/")
	}

	svc := NewService(nil, nil, nil, 2, nil)
	if _, err := svc.Run(context.Background(), "run-3", entries); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := peak.Load(); got > 2 {
		t.Fatalf("expected at most 2 requests in flight, saw %d", got)
	}
}

func TestServiceRunRejectsEmptySelection(t *testing.T) {
	svc := NewService(nil, nil, nil, 1, nil)
	if _, err := svc.Run(context.Background(), "run", nil); err == nil {
		t.Fatalf("expected error for empty selection")
	}
}

func TestServiceRunSkipsEntriesAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		cancel()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	rec := &fakeRecorder{}
	rep := &fakeReporter{}
	svc := NewService(nil, rec, rep, 1, nil)

	entries := []catalog.Entry{
		entry("first", srv.URL, "/"),
		entry("second", srv.URL, "/"),
		entry("third", srv.URL, "/"),
	}
	execs, err := svc.Run(ctx, "run-4", entries)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation in error chain, got %v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("expected only the first request to be sent, got %d", got)
	}
	if len(execs) != 1 || execs[0].RequestID != "first" {
		t.Fatalf("expected only the first execution, got %+v", execs)
	}
	if len(rec.execs) != 1 {
		t.Fatalf("skipped entries must not be journaled, got %d records", len(rec.execs))
	}
}

func TestServiceRunWithCancelledContextSendsNothing(t *testing.T) {
	srv := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &fakeRecorder{}
	execs, err := NewService(nil, rec, nil, 2, nil).Run(ctx, "run-5", []catalog.Entry{entry("good", srv.URL, "/ok")})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if len(execs) != 0 || len(rec.execs) != 0 {
		t.Fatalf("nothing should run or be recorded: %+v %v", execs, rec.execs)
	}
}
