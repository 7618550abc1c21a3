// internal/notify/alert/email.go
package alert

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"vascomart-client/internal/models"
)

// SESService is the slice of the SES API the channel needs; mockable in
// tests.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// Email forwards notifications to a fixed address over AWS SES.
type Email struct {
	client SESService
	from   string
	to     string
}

func NewEmail(client SESService, from, to string) *Email {
	return &Email{client: client, from: from, to: to}
}

func (e *Email) Name() string { return "email" }

func (e *Email) Notify(ctx context.Context, n *models.Notification) error {
	_, err := e.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(e.from),
		Destination: &types.Destination{
			ToAddresses: []string{e.to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(n.Title)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(n.Message)},
			},
		},
	})
	return err
}
