// Package ses sends production event emails through AWS SES.
package ses

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"formulab/internal/domain"
	"formulab/internal/port"
)

type sesNotifier struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	toAddress   string
}

// NewSESNotifier creates an SES-backed Notifier. toAddress receives every
// production event; there is one recipient per plant.
func NewSESNotifier(region, fromAddress, fromName, toAddress string) (port.Notifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesNotifier{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
		toAddress:   toAddress,
	}, nil
}

func (s *sesNotifier) NotifyOrderCreated(ctx context.Context, order *domain.Order) error {
	subject := fmt.Sprintf("Orden de produccion %s emitida", order.ID)
	body := fmt.Sprintf(
		"Orden: %s\nFormula: %s\nGalones: %s\nEmitida por: %s\nFecha: %s\n",
		order.ID, order.FormulaKey, order.TargetGal, order.CreatedBy,
		order.CreatedAt.Format("2006-01-02 15:04"),
	)
	return s.send(ctx, subject, body)
}

func (s *sesNotifier) NotifyOrderProduced(ctx context.Context, order *domain.Order) error {
	subject := fmt.Sprintf("Orden de produccion %s completada", order.ID)
	body := fmt.Sprintf(
		"Orden: %s\nFormula: %s\nGalones: %s\nP/G medido: %s\nNotas: %s\n",
		order.ID, order.FormulaKey, order.TargetGal, order.MeasuredWPV, order.Notes,
	)
	return s.send(ctx, subject, body)
}

func (s *sesNotifier) send(ctx context.Context, subject, textBody string) error {
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{s.toAddress},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}
