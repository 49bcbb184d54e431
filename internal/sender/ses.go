package sender

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/ignite/sparkpost-monitor/internal/pkg/logger"
)

// SESSender implements MailSender against AWS SES v2's SendEmail API.
type SESSender struct {
	client *sesv2.Client
}

// NewSESSender builds an SES sender from the default AWS credential chain
// (environment, shared config, or container/instance role), pinned to region.
func NewSESSender(ctx context.Context, region string) (*SESSender, error) {
	if region == "" {
		region = "us-east-1"
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SESSender{client: sesv2.NewFromConfig(cfg)}, nil
}

// Send delivers one email through SES. The caller owns appending the
// open-tracking pixel to body — this function ships exactly what it's given.
func (s *SESSender) Send(ctx context.Context, from, to, subject, body string) (string, error) {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination:      &types.Destination{ToAddresses: []string{to}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(body), Charset: aws.String("UTF-8")},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		logger.Error("ses send failed", "to", to, "error", err.Error())
		return "", fmt.Errorf("ses send: %w", err)
	}

	messageID := ""
	if result.MessageId != nil {
		messageID = *result.MessageId
	}
	logger.Info("ses send ok", "to", to, "message_id", messageID)
	return messageID, nil
}
