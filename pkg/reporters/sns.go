package reporters

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	json "github.com/goccy/go-json"
)

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// snsReporter publishes reports to an SNS topic. Message attributes mirror the
// report attributes so subscription filter policies can route on outcome or
// error kind.
type snsReporter struct {
	id       string
	topicARN string
	fifo     bool
	client   snsAPI
	log      Logger
}

func newSNSReporter(ctx context.Context, cfg ReporterConfig, log Logger) (Reporter, error) {
	if cfg.SNS == nil {
		return nil, fmt.Errorf("reporter %q missing sns configuration", cfg.ID)
	}
	awsCfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(cfg.SNS.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &snsReporter{
		id:       cfg.ID,
		topicARN: cfg.SNS.TopicARN,
		fifo:     strings.HasSuffix(cfg.SNS.TopicARN, ".fifo"),
		client:   sns.NewFromConfig(awsCfg),
		log:      ensureLogger(log),
	}, nil
}

func (s *snsReporter) ID() string   { return s.id }
func (s *snsReporter) Type() string { return TypeSNS }

func (s *snsReporter) Report(ctx context.Context, r Report) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	attrs := r.Attributes()
	in := &sns.PublishInput{
		TopicArn:          aws.String(s.topicARN),
		Message:           aws.String(string(body)),
		Subject:           aws.String(fmt.Sprintf("%s %s", r.Execution.RequestID, r.Outcome)),
		MessageAttributes: make(map[string]types.MessageAttributeValue, len(attrs)),
	}
	for k, v := range attrs {
		in.MessageAttributes[k] = types.MessageAttributeValue{DataType: aws.String(attributeDataType(k)), StringValue: aws.String(v)}
	}
	if s.fifo {
		in.MessageGroupId = aws.String(r.Execution.RequestID)
		in.MessageDeduplicationId = aws.String(r.Execution.ID)
	}

	out, err := s.client.Publish(ctx, in)
	if err != nil {
		s.log.ErrorObj("sns delivery failed", "reporter_sns_error", map[string]any{
			"reporter_id":  s.id,
			"execution_id": r.Execution.ID,
			"error":        err.Error(),
		})
		return fmt.Errorf("publish to sns: %w", err)
	}
	s.log.DebugObj("sns delivered report", "reporter_sns_delivery", map[string]any{
		"reporter_id":  s.id,
		"execution_id": r.Execution.ID,
		"message_id":   aws.ToString(out.MessageId),
	})
	return nil
}
