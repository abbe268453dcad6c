package reporters

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	json "github.com/goccy/go-json"
	"google.golang.org/api/option"
)

// pubsubReporter publishes reports to a Google Cloud Pub/Sub topic. With
// ordering enabled, reports of the same request share an ordering key and
// arrive in the order they were published.
type pubsubReporter struct {
	id      string
	ordered bool
	client  *pubsub.Client
	topic   *pubsub.Topic
	log     Logger
}

func newPubSubReporter(ctx context.Context, cfg ReporterConfig, log Logger) (Reporter, error) {
	if cfg.PubSub == nil {
		return nil, fmt.Errorf("reporter %q missing pubsub configuration", cfg.ID)
	}

	var opts []option.ClientOption
	if cfg.PubSub.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.PubSub.CredentialsFile))
	}
	client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	return newPubSubReporterWithClient(cfg, client, log), nil
}

func newPubSubReporterWithClient(cfg ReporterConfig, client *pubsub.Client, log Logger) *pubsubReporter {
	topic := client.Topic(cfg.PubSub.Topic)
	topic.EnableMessageOrdering = cfg.PubSub.Ordered
	return &pubsubReporter{
		id:      cfg.ID,
		ordered: cfg.PubSub.Ordered,
		client:  client,
		topic:   topic,
		log:     ensureLogger(log),
	}
}

func (p *pubsubReporter) ID() string   { return p.id }
func (p *pubsubReporter) Type() string { return TypePubSub }

// Report publishes r and waits for the server to acknowledge it.
func (p *pubsubReporter) Report(ctx context.Context, r Report) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	msg := &pubsub.Message{Data: payload, Attributes: r.Attributes()}
	if p.ordered {
		msg.OrderingKey = r.Execution.RequestID
	}
	msgID, err := p.topic.Publish(ctx, msg).Get(ctx)
	if err != nil {
		// A failed publish pauses its ordering key until resumed.
		if msg.OrderingKey != "" {
			p.topic.ResumePublish(msg.OrderingKey)
		}
		p.log.ErrorObj("pubsub delivery failed", "reporter_pubsub_error", map[string]any{
			"reporter_id":  p.id,
			"execution_id": r.Execution.ID,
			"error":        err.Error(),
		})
		return fmt.Errorf("publish to pubsub: %w", err)
	}
	p.log.DebugObj("pubsub delivered report", "reporter_pubsub_delivery", map[string]any{
		"reporter_id":  p.id,
		"execution_id": r.Execution.ID,
		"message_id":   msgID,
	})
	return nil
}

// Close flushes pending messages and releases the client.
func (p *pubsubReporter) Close() error {
	p.topic.Stop()
	return p.client.Close()
}
