package callback

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/ignite/sparkpost-monitor/internal/pkg/logger"
)

// Consumer is an alternative ingestion path for the same SNS-delivered SES
// notifications ServeHTTP handles, for deployments that route SNS through an
// SQS queue instead of a direct HTTPS webhook subscription. It polls long,
// deletes on successful (or permanently unprocessable) handling, and leaves
// the message for SQS's own redelivery/DLQ policy on a transient failure.
type Consumer struct {
	client   *sqs.Client
	queueURL string
	handler  *Handler
}

// NewConsumer builds a Consumer that feeds messages from queueURL through
// handler's notification-handling logic.
func NewConsumer(client *sqs.Client, queueURL string, handler *Handler) *Consumer {
	return &Consumer{client: client, queueURL: queueURL, handler: handler}
}

// Run polls until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	logger.Info("callback: sqs consumer started", "queue_url", c.queueURL)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		out, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(c.queueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     20,
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("callback: sqs receive failed", "error", err.Error())
			time.Sleep(5 * time.Second)
			continue
		}

		for _, msg := range out.Messages {
			if msg.Body == nil {
				continue
			}
			if err := c.handler.IngestEnvelope(ctx, []byte(*msg.Body)); err != nil {
				logger.Warn("callback: sqs message processing failed, leaving for redelivery",
					"error", err.Error())
				continue
			}
			c.delete(ctx, msg.ReceiptHandle)
		}
	}
}

func (c *Consumer) delete(ctx context.Context, handle *string) {
	if _, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: handle,
	}); err != nil {
		logger.Warn("callback: sqs delete message failed", "error", err.Error())
	}
}
