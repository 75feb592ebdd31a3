// internal/notify/alerts.go

// Package notify fans out retention alerts when a prediction lands in the
// High risk tier. Alerting is best-effort: failures are logged and swallowed
// so they never affect the prediction response.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"churnshield/internal/common/aws"
	"churnshield/internal/common/config"
	"churnshield/internal/common/logger"
	"churnshield/internal/models"
)

// Alerter publishes high-risk churn alerts over SNS and optionally sends a
// retention email over SES.
type Alerter struct {
	sns    *aws.SNSClient
	ses    *aws.SESClient
	cfg    config.NotificationConfig
	logger logger.Logger
}

// New builds an Alerter; either client may be nil, disabling that channel.
func New(snsClient *aws.SNSClient, sesClient *aws.SESClient, cfg config.NotificationConfig, log logger.Logger) *Alerter {
	return &Alerter{
		sns:    snsClient,
		ses:    sesClient,
		cfg:    cfg,
		logger: log.WithFields(map[string]interface{}{"component": "alerter"}),
	}
}

type alertMessage struct {
	CustomerID  string  `json:"customer_id"`
	Probability float64 `json:"churn_probability"`
	RiskLevel   string  `json:"risk_level"`
	TopFeature  string  `json:"top_feature,omitempty"`
}

// HighRiskAlert fires the configured channels for one High tier prediction.
func (a *Alerter) HighRiskAlert(ctx context.Context, result *models.PredictionResult) {
	msg := alertMessage{
		CustomerID:  result.CustomerID,
		Probability: result.ChurnProbability,
		RiskLevel:   string(result.RiskLevel),
	}
	if len(result.Explanations) > 0 {
		msg.TopFeature = result.Explanations[0].Feature
	}

	if a.sns != nil && a.cfg.SNSTopic != "" {
		a.publishSNS(ctx, msg)
	}
	if a.ses != nil && a.cfg.EmailTo != "" {
		a.sendEmail(ctx, msg)
	}
}

func (a *Alerter) publishSNS(ctx context.Context, msg alertMessage) {
	body, err := json.Marshal(msg)
	if err != nil {
		a.logger.Error("failed to marshal alert", map[string]interface{}{"error": err})
		return
	}

	_, err = a.sns.Publish(ctx, &sns.PublishInput{
		TopicArn: awssdk.String(a.cfg.SNSTopic),
		Subject:  awssdk.String("High churn risk detected"),
		Message:  awssdk.String(string(body)),
	})
	if err != nil {
		a.logger.Warn("failed to publish churn alert", map[string]interface{}{
			"customerId": msg.CustomerID,
			"error":      err,
		})
	}
}

func (a *Alerter) sendEmail(ctx context.Context, msg alertMessage) {
	subject := fmt.Sprintf("High churn risk: customer %s", msg.CustomerID)
	body := fmt.Sprintf(
		"Customer %s has a churn probability of %.1f%%.\nLeading factor: %s\n",
		msg.CustomerID, msg.Probability*100, msg.TopFeature)

	_, err := a.ses.SendEmail(ctx, &ses.SendEmailInput{
		Source: awssdk.String(a.cfg.EmailFrom),
		Destination: &sestypes.Destination{
			ToAddresses: []string{a.cfg.EmailTo},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: awssdk.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: awssdk.String(body)},
			},
		},
	})
	if err != nil {
		a.logger.Warn("failed to send retention email", map[string]interface{}{
			"customerId": msg.CustomerID,
			"error":      err,
		})
	}
}
