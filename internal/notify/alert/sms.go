// internal/notify/alert/sms.go
package alert

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"vascomart-client/internal/models"
)

// SNSService is the slice of the SNS API the channel needs; mockable in
// tests.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput) (*sns.PublishOutput, error)
}

// SMS forwards notifications to a fixed phone number over AWS SNS.
type SMS struct {
	client SNSService
	phone  string
}

func NewSMS(client SNSService, phone string) *SMS {
	return &SMS{client: client, phone: phone}
}

func (s *SMS) Name() string { return "sms" }

func (s *SMS) Notify(ctx context.Context, n *models.Notification) error {
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(s.phone),
		Message:     aws.String(fmt.Sprintf("%s: %s", n.Title, n.Message)),
	})
	return err
}
