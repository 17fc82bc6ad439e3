package services

import (
	"context"
	"fmt"
	"net/mail"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESAPI is the subset of the SES client used here.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESTransport sends through Amazon SES. The client is created lazily on
// first send so credentials are resolved with the caller's context.
type SESTransport struct {
	region string

	once    sync.Once
	client  SESAPI
	initErr error
}

func NewSESTransport(region string) *SESTransport {
	return &SESTransport{region: region}
}

// NewSESTransportWithClient uses a preconfigured client.
func NewSESTransportWithClient(client SESAPI) *SESTransport {
	t := &SESTransport{client: client}
	t.once.Do(func() {})
	return t
}

func (t *SESTransport) Name() string { return "ses" }

func (t *SESTransport) Send(ctx context.Context, msg Message) error {
	t.once.Do(func() {
		cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(t.region))
		if err != nil {
			t.initErr = fmt.Errorf("failed to load AWS config: %w", err)
			return
		}
		t.client = ses.NewFromConfig(cfg)
	})
	if t.initErr != nil {
		return t.initErr
	}

	from := (&mail.Address{Name: msg.FromName, Address: msg.FromEmail}).String()
	_, err := t.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(from),
		Destination: &types.Destination{ToAddresses: []string{msg.To}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(msg.Body), Charset: aws.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send failed: %w", err)
	}
	return nil
}
