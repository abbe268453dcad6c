package reporters

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	json "github.com/goccy/go-json"
)

type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// sqsReporter sends reports to an SQS queue. The report attributes become
// message attributes so consumers can filter without decoding the body.
type sqsReporter struct {
	id       string
	queueURL string
	fifo     bool
	client   sqsAPI
	log      Logger
}

func newSQSReporter(ctx context.Context, cfg ReporterConfig, log Logger) (Reporter, error) {
	if cfg.SQS == nil {
		return nil, fmt.Errorf("reporter %q missing sqs configuration", cfg.ID)
	}
	awsCfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(cfg.SQS.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &sqsReporter{
		id:       cfg.ID,
		queueURL: cfg.SQS.QueueURL,
		fifo:     strings.HasSuffix(cfg.SQS.QueueURL, ".fifo"),
		client:   sqs.NewFromConfig(awsCfg),
		log:      ensureLogger(log),
	}, nil
}

func (s *sqsReporter) ID() string   { return s.id }
func (s *sqsReporter) Type() string { return TypeSQS }

func (s *sqsReporter) Report(ctx context.Context, r Report) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	in := &sqs.SendMessageInput{
		QueueUrl:          aws.String(s.queueURL),
		MessageBody:       aws.String(string(body)),
		MessageAttributes: sqsAttributes(r.Attributes()),
	}
	if s.fifo {
		in.MessageGroupId = aws.String(r.Execution.RequestID)
		in.MessageDeduplicationId = aws.String(r.Execution.ID)
	}

	out, err := s.client.SendMessage(ctx, in)
	if err != nil {
		s.log.ErrorObj("sqs delivery failed", "reporter_sqs_error", map[string]any{
			"reporter_id":  s.id,
			"execution_id": r.Execution.ID,
			"error":        err.Error(),
		})
		return fmt.Errorf("send message to sqs: %w", err)
	}
	s.log.DebugObj("sqs delivered report", "reporter_sqs_delivery", map[string]any{
		"reporter_id":  s.id,
		"execution_id": r.Execution.ID,
		"message_id":   aws.ToString(out.MessageId),
	})
	return nil
}

// sqsAttributes types status_code as a Number so SQS consumers can compare it.
func sqsAttributes(attrs map[string]string) map[string]types.MessageAttributeValue {
	out := make(map[string]types.MessageAttributeValue, len(attrs))
	for k, v := range attrs {
		out[k] = types.MessageAttributeValue{DataType: aws.String(attributeDataType(k)), StringValue: aws.String(v)}
	}
	return out
}

func attributeDataType(key string) string {
	if key == "status_code" {
		return "Number"
	}
	return "String"
}
