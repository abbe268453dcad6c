package domain

import (
	"time"

	json "github.com/goccy/go-json"
)

// Execution is the recorded outcome of one catalog request.
type Execution struct {
	ID         string        `json:"id"`
	RequestID  string        `json:"request_id"`
	Method     string        `json:"method"`
	URL        string        `json:"url"`
	StatusCode int           `json:"status_code,omitempty"`
	ErrorKind  string        `json:"error_kind,omitempty"`
	Error      string        `json:"error,omitempty"`
	Elapsed    time.Duration `json:"elapsed_ns"`
	StartedAt  time.Time     `json:"started_at"`
	// Response holds the raw JSON body of a successful call.
	Response json.RawMessage `json:"response,omitempty"`
}

// Succeeded reports whether the call returned a decoded response.
func (e Execution) Succeeded() bool { return e.ErrorKind == "" && e.Error == "" }
