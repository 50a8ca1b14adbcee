package email

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/finsight/advisor-service/internal/config"
	"github.com/finsight/advisor-service/internal/models"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendRiskAlert notifies a user that their latest scoring pass crossed
// the risk threshold.
func (s *Sender) SendRiskAlert(to, username string, result *models.ScoreResult) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Financial Risk Alert"

	body := fmt.Sprintf("Dear %s,\n\n", username)
	body += fmt.Sprintf(
		"Your latest financial check-up produced a risk score of %.2f (status: %s).\n",
		result.RiskScore, result.HealthStatus,
	)
	if result.InsuranceGap.IsPositive() {
		body += fmt.Sprintf(
			"Your insurance coverage is %s below the recommended level.\n",
			result.InsuranceGap.StringFixed(2),
		)
	}
	body += "Consider reviewing your expenses and debt, or ask the advisor for a personalized plan.\n"
	body += "\nBest regards,\nFinsight Advisor"
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
