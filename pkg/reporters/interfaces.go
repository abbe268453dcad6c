package reporters

import "context"

// Reporter sends execution reports to a downstream sink (HTTP, SQS, etc).
type Reporter interface {
	ID() string
	Type() string
	Report(ctx context.Context, r Report) error
}
