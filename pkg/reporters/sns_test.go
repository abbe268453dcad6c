package reporters

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/classly-hq/classly-networking/internal/domain"
	"github.com/classly-hq/classly-networking/pkg/network"
)

type fakeSNSClient struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNSClient) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-123")}, nil
}

func TestSNSReporterPublishSuccess(t *testing.T) {
	client := &fakeSNSClient{}
	rep := &snsReporter{
		id:       "topic",
		topicARN: "arn:aws:sns:eu-west-1:123:outcomes",
		client:   client,
		log:      network.Discard,
	}

	err := rep.Report(context.Background(), NewReport("run-1", domain.Execution{
		ID: "e1", RequestID: "create-user", ErrorKind: "invalid_response", StatusCode: 500,
	}))
	if err != nil {
		t.Fatalf("Report returned error: %v", err)
	}
	in := client.input
	if in == nil {
		t.Fatalf("client was not called")
	}
	if got := aws.ToString(in.TopicArn); got != rep.topicARN {
		t.Fatalf("TopicArn = %s", got)
	}
	if got := aws.ToString(in.Subject); got != "create-user failure" {
		t.Fatalf("Subject = %q", got)
	}
	kind := in.MessageAttributes["error_kind"]
	if aws.ToString(kind.StringValue) != "invalid_response" || aws.ToString(kind.DataType) != "String" {
		t.Fatalf("error_kind attribute = %#v", kind)
	}
	code := in.MessageAttributes["status_code"]
	if aws.ToString(code.StringValue) != "500" || aws.ToString(code.DataType) != "Number" {
		t.Fatalf("status_code attribute = %#v", code)
	}
	msg := aws.ToString(in.Message)
	if !strings.Contains(msg, `"error_kind":"invalid_response"`) || !strings.Contains(msg, `"outcome":"failure"`) {
		t.Fatalf("Message missing outcome fields: %s", msg)
	}
}

func TestSNSReporterFIFOTopicSetsGroupAndDedup(t *testing.T) {
	client := &fakeSNSClient{}
	rep := &snsReporter{
		id:       "topic",
		topicARN: "arn:aws:sns:eu-west-1:123:outcomes.fifo",
		fifo:     true,
		client:   client,
		log:      network.Discard,
	}

	if err := rep.Report(context.Background(), NewReport("run-1", domain.Execution{ID: "e2", RequestID: "list-users"})); err != nil {
		t.Fatalf("Report: %v", err)
	}
	if aws.ToString(client.input.MessageGroupId) != "list-users" || aws.ToString(client.input.MessageDeduplicationId) != "e2" {
		t.Fatalf("FIFO ids = %v / %v", aws.ToString(client.input.MessageGroupId), aws.ToString(client.input.MessageDeduplicationId))
	}
}

func TestSNSReporterPublishError(t *testing.T) {
	rep := &snsReporter{
		id:       "topic",
		topicARN: "arn:aws:sns:::topic",
		client:   &fakeSNSClient{err: errors.New("boom")},
		log:      network.Discard,
	}

	if err := rep.Report(context.Background(), Report{}); err == nil {
		t.Fatalf("expected error from Report")
	}
}
