package reporters

import (
	"strconv"
	"time"

	"github.com/classly-hq/classly-networking/internal/domain"
)

// Outcome labels carried by every delivered report.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Report is the payload delivered to reporters after a request ran.
type Report struct {
	RunID      string           `json:"run_id"`
	Outcome    string           `json:"outcome"`
	Execution  domain.Execution `json:"execution"`
	ReportedAt time.Time        `json:"reported_at"`
}

// NewReport constructs a Report for one execution of run runID.
func NewReport(runID string, exec domain.Execution) Report {
	outcome := OutcomeSuccess
	if !exec.Succeeded() {
		outcome = OutcomeFailure
	}
	return Report{
		RunID:      runID,
		Outcome:    outcome,
		Execution:  exec,
		ReportedAt: time.Now().UTC(),
	}
}

// Attributes returns the routing metadata sinks attach next to the JSON
// body: message attributes on queues and topics, headers on webhooks.
// Empty values are left out.
func (r Report) Attributes() map[string]string {
	attrs := map[string]string{
		"run_id":       r.RunID,
		"execution_id": r.Execution.ID,
		"request_id":   r.Execution.RequestID,
		"method":       r.Execution.Method,
		"outcome":      r.Outcome,
		"error_kind":   r.Execution.ErrorKind,
	}
	if r.Execution.StatusCode != 0 {
		attrs["status_code"] = strconv.Itoa(r.Execution.StatusCode)
	}
	for k, v := range attrs {
		if v == "" {
			delete(attrs, k)
		}
	}
	return attrs
}
