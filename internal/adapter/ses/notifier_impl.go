// Package ses delivers report notifications through Amazon SES.
package ses

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/user/imagewatch/internal/repository"
)

const charset = "UTF-8"

// SendEmailAPI is the subset of the SES client the notifier needs.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Notifier sends HTML emails.
type Notifier struct {
	client SendEmailAPI
}

// NewNotifier creates a notifier backed by an SES client built from cfg.
func NewNotifier(cfg aws.Config) *Notifier {
	return NewNotifierWithClient(sesv2.NewFromConfig(cfg))
}

// NewNotifierWithClient creates a notifier around an existing client.
func NewNotifierWithClient(client SendEmailAPI) *Notifier {
	return &Notifier{client: client}
}

func (n *Notifier) Send(ctx context.Context, notification repository.Notification) error {
	_, err := n.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(notification.From),
		Destination: &types.Destination{
			ToAddresses: []string{notification.To},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(notification.Subject), Charset: aws.String(charset)},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(notification.Body), Charset: aws.String(charset)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %w", repository.ErrSend, err)
	}
	return nil
}
