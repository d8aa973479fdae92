package ses

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"mrstrict/internal/config"
	"mrstrict/internal/domain"
	"mrstrict/internal/email"
	"mrstrict/internal/port"
)

// API is the subset of the SES v2 client used by the sender.
type API interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type sesSender struct {
	client API
	from   string
	now    func() time.Time
}

// NewSESSender creates a new SES-backed Notifier using the default AWS
// credential chain.
func NewSESSender(ctx context.Context, cfg config.EmailConfig) (port.Notifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return NewSESSenderWithClient(sesv2.NewFromConfig(awsCfg), cfg), nil
}

// NewSESSenderWithClient creates a Notifier around an existing SES client.
func NewSESSenderWithClient(client API, cfg config.EmailConfig) port.Notifier {
	return &sesSender{
		client: client,
		from:   email.FormatAddress(cfg.FromName, cfg.FromAddress),
		now:    time.Now,
	}
}

// Send delivers msg as a raw MIME message so the attachment survives.
func (s *sesSender) Send(ctx context.Context, msg domain.Message) error {
	raw, err := email.BuildMIME(s.from, msg, s.now())
	if err != nil {
		return err
	}

	_, err = s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Content: &types.EmailContent{
			Raw: &types.RawMessage{Data: raw},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}
