package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/zeyidhocam/z-gate-crm-sub001/internal/config"
	"github.com/zeyidhocam/z-gate-crm-sub001/internal/models"
)

// Sender handles sending owner digest emails via SMTP
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

// Enabled reports whether SMTP and an owner address are configured.
func (s *Sender) Enabled() bool {
	return s.cfg.SMTPHost != "" && s.cfg.OwnerEmail != ""
}

// SendReminderDigest sends the daily list of due and overdue installments
// to the business owner.
func (s *Sender) SendReminderDigest(day time.Time, items []models.ReminderItem) error {
	if !s.Enabled() {
		s.logger.Debug("Email disabled, dropping reminder digest")
		return nil
	}

	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{s.cfg.OwnerEmail}
	e.Subject = fmt.Sprintf("Tahsilat özeti — %s", day.Format("02.01.2006"))

	body := fmt.Sprintf("Bugün vadesi gelen veya geçmiş %d taksit var:\n\n", len(items))
	for _, item := range items {
		body += fmt.Sprintf(
			"- %s: %.2f TL, vade %s\n",
			item.Client.Name, item.Schedule.AmountDue, item.Schedule.DueDate.Format("02.01.2006"),
		)
	}
	body += "\nz-gate CRM"
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send digest to %s: %v", s.cfg.OwnerEmail, err)
		return fmt.Errorf("failed to send digest: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", s.cfg.OwnerEmail, e.Subject)
	return nil
}
