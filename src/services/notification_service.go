package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/username/dealsync/src/config"
	"github.com/username/dealsync/src/logger"
	"github.com/username/dealsync/src/models"
)

// NewNotificationService picks the provider from config. Anything other than
// a fully configured mailgun setup falls back to the mock, which only logs.
func NewNotificationService() NotificationService {
	if config.Cfg == nil {
		logger.L.Warn("Configuration (config.Cfg) is nil. Notification service will default to mock.")
		return &MockNotificationService{}
	}

	provider := strings.ToLower(config.Cfg.EmailServiceProvider)
	logger.L.Info("Initializing notification service", "provider", provider)

	switch provider {
	case "mailgun":
		if config.Cfg.MailgunDomain == "" || config.Cfg.MailgunPrivateAPIKey == "" || config.Cfg.NotifyEmail == "" {
			logger.L.Warn("Mailgun configuration incomplete (Domain, API Key, or NotifyEmail missing). Falling back to MockNotificationService.")
			return &MockNotificationService{}
		}
		mg := mailgun.NewMailgun(config.Cfg.MailgunDomain, config.Cfg.MailgunPrivateAPIKey)
		logger.L.Info("Mailgun client initialized", "domain", config.Cfg.MailgunDomain)
		return &MailgunNotificationService{
			mg:          mg,
			senderEmail: config.Cfg.SenderEmail,
			senderName:  config.Cfg.SenderName,
			notifyEmail: config.Cfg.NotifyEmail,
		}
	default:
		logger.L.Info("Defaulting to MockNotificationService.")
		return &MockNotificationService{}
	}
}

type MailgunNotificationService struct {
	mg          mailgun.Mailgun
	senderEmail string
	senderName  string
	notifyEmail string
}

func (s *MailgunNotificationService) SendSyncFailureReport(report *models.SyncReport) error {
	from := fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail)
	subject := fmt.Sprintf("DealSync: %d item(s) failed in run %s", report.Failed, report.RunID)

	var body strings.Builder
	fmt.Fprintf(&body, "Sync run %s on board %s finished at %s with %d failed item(s):\n\n",
		report.RunID, report.BoardID, report.FinishedAt.Format(time.RFC3339), report.Failed)
	for _, outcome := range report.Outcomes {
		if outcome.Status != models.StatusFailed {
			continue
		}
		fmt.Fprintf(&body, "- %s (%s): %s\n", outcome.ItemName, outcome.ItemID, outcome.Reason)
	}
	fmt.Fprintf(&body, "\nUpdated: %d, Skipped: %d, Failed: %d\n", report.Updated, report.Skipped, report.Failed)

	message := s.mg.NewMessage(from, subject, body.String(), s.notifyEmail)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*20)
	defer cancel()
	resp, id, err := s.mg.Send(ctx, message)
	if err != nil {
		logger.L.Error("Failed to send sync failure report via Mailgun", "error", err, "to", s.notifyEmail, "mailgunResp", resp, "mailgunId", id)
		return fmt.Errorf("mailgun send failed: %w", err)
	}
	logger.L.Info("Sync failure report sent via Mailgun", "to", s.notifyEmail, "id", id)
	return nil
}

// MockNotificationService logs the report instead of delivering it. Used in
// development and whenever mailgun is not configured.
type MockNotificationService struct{}

func (s *MockNotificationService) SendSyncFailureReport(report *models.SyncReport) error {
	logger.L.Info("Mock notification: sync failure report",
		"runID", report.RunID,
		"boardID", report.BoardID,
		"failed", report.Failed)
	return nil
}
