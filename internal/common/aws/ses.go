// internal/common/aws/ses.go
package aws

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

type SESClient struct {
	client *ses.Client
	from   string
}

func NewSESClient(ctx context.Context, region, fromEmail string) (*SESClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SESClient{client: ses.NewFromConfig(cfg), from: fromEmail}, nil
}

func (s *SESClient) SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	return s.client.SendEmail(ctx, input)
}

// SendVerification delivers the account verification mail for a new
// registration.
func (s *SESClient) SendVerification(ctx context.Context, to, username, verifyURL string) error {
	subject := "Verify your jobtrail account"
	body := fmt.Sprintf(
		"Hi %s,\n\nConfirm your email address to finish setting up your account:\n\n%s\n",
		username, verifyURL,
	)

	_, err := s.SendEmail(ctx, &ses.SendEmailInput{
		Source: &s.from,
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: &subject},
			Body: &types.Body{
				Text: &types.Content{Data: &body},
			},
		},
	})
	return err
}
