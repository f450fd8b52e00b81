package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/kingrain94/tenant-notify-api/internal/config"
	"github.com/kingrain94/tenant-notify-api/internal/domain"
)

// AttributeTenantIdentifier is the message attribute consumers resolve the
// tenant from. The body is never trusted for that.
const AttributeTenantIdentifier = "tenant_identifier"

// SQSAPI is the subset of the SQS client used here.
//
//go:generate mockery --name SQSAPI --output ../../mocks
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// ReceivedMessage is one change event pulled from the queue. DecodeErr is
// set when the body could not be parsed; such messages are still returned so
// the consumer can drop them.
type ReceivedMessage struct {
	Event         domain.ChangeEvent
	Attributes    map[string]string
	ReceiptHandle *string
	DecodeErr     error
}

type SQSService struct {
	client         SQSAPI
	changeQueueURL string
}

func NewSQSService(client SQSAPI, config *config.SQSConfig) *SQSService {
	return &SQSService{
		client:         client,
		changeQueueURL: config.ChangeQueueURL,
	}
}

func (s *SQSService) SendChangeEvent(ctx context.Context, event domain.ChangeEvent) error {
	msgBody, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}

	input := &sqs.SendMessageInput{
		MessageBody: aws.String(string(msgBody)),
		QueueUrl:    aws.String(s.changeQueueURL),
		MessageAttributes: map[string]types.MessageAttributeValue{
			AttributeTenantIdentifier: {
				DataType:    aws.String("String"),
				StringValue: aws.String(event.TenantIdentifier),
			},
		},
	}

	if _, err := s.client.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (s *SQSService) ReceiveMessages(ctx context.Context, maxMessages int32, waitTimeSeconds int32) ([]ReceivedMessage, error) {
	input := &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(s.changeQueueURL),
		MaxNumberOfMessages:   maxMessages,
		WaitTimeSeconds:       waitTimeSeconds,
		MessageAttributeNames: []string{"All"},
	}

	output, err := s.client.ReceiveMessage(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to receive messages: %w", err)
	}

	messages := make([]ReceivedMessage, 0, len(output.Messages))
	for _, msg := range output.Messages {
		received := ReceivedMessage{
			Attributes:    make(map[string]string, len(msg.MessageAttributes)),
			ReceiptHandle: msg.ReceiptHandle,
		}
		for name, value := range msg.MessageAttributes {
			received.Attributes[name] = aws.ToString(value.StringValue)
		}
		if err := json.Unmarshal([]byte(aws.ToString(msg.Body)), &received.Event); err != nil {
			received.DecodeErr = fmt.Errorf("failed to unmarshal message: %w", err)
		}
		messages = append(messages, received)
	}

	return messages, nil
}

func (s *SQSService) DeleteMessage(ctx context.Context, receiptHandle *string) error {
	input := &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(s.changeQueueURL),
		ReceiptHandle: receiptHandle,
	}

	if _, err := s.client.DeleteMessage(ctx, input); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}
