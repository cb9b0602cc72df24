// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/xkmato/uvocollab-sub001/internal/config"
	"github.com/xkmato/uvocollab-sub001/internal/models"
)

type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: config,
	}
}

// Matching notifications

func (s *NotificationService) SendMatchFoundNotification(match *models.Match, recipient *models.User, counterpartName string) error {
	s.recordNotification(&recipient.ID, "match_found", "New Match Found",
		fmt.Sprintf("You matched with %s (compatibility %d%%)", counterpartName, match.CompatibilityScore),
		"match", &match.ID)

	data := map[string]interface{}{
		"Name":            recipient.Username,
		"CounterpartName": counterpartName,
		"Score":           match.CompatibilityScore,
		"MatchURL":        fmt.Sprintf("%s/matches/%s", s.config.Frontend.BaseURL, match.ID),
	}

	subject := "You have a new match on UvoCollab"
	tmpl := s.getEmailTemplate("match_found")
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(recipient.Email, subject, body)
}

// Collaboration notifications

func (s *NotificationService) SendPitchReceivedNotification(collab *models.Collaboration, provider *models.User) error {
	s.recordNotification(&provider.ID, "pitch_received", "New Pitch",
		fmt.Sprintf("%s pitched a collaboration", collab.Buyer.Username),
		"collaboration", &collab.ID)

	data := map[string]interface{}{
		"Name":      provider.Username,
		"BuyerName": collab.Buyer.Username,
		"Price":     collab.Price,
		"PitchURL":  fmt.Sprintf("%s/collaborations/%s", s.config.Frontend.BaseURL, collab.ID),
	}

	subject := "New collaboration pitch"
	tmpl := s.getEmailTemplate("pitch_received")
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(provider.Email, subject, body)
}

func (s *NotificationService) SendPitchOutcomeNotification(collab *models.Collaboration, buyer *models.User, accepted bool) error {
	outcome := "declined"
	if accepted {
		outcome = "accepted"
	}

	s.recordNotification(&buyer.ID, "pitch_"+outcome, "Pitch "+outcome,
		fmt.Sprintf("Your pitch was %s", outcome),
		"collaboration", &collab.ID)

	data := map[string]interface{}{
		"Name":     buyer.Username,
		"Outcome":  outcome,
		"Price":    collab.Price,
		"ViewURL":  fmt.Sprintf("%s/collaborations/%s", s.config.Frontend.BaseURL, collab.ID),
		"Accepted": accepted,
	}

	subject := fmt.Sprintf("Your pitch was %s", outcome)
	tmpl := s.getEmailTemplate("pitch_outcome")
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(buyer.Email, subject, body)
}

func (s *NotificationService) SendPaymentConfirmedNotification(collab *models.Collaboration, recipient *models.User) error {
	s.recordNotification(&recipient.ID, "payment_confirmed", "Payment Received",
		fmt.Sprintf("Payment of %.2f is held in escrow", collab.Price),
		"collaboration", &collab.ID)

	data := map[string]interface{}{
		"Name":    recipient.Username,
		"Amount":  collab.Price,
		"ViewURL": fmt.Sprintf("%s/collaborations/%s", s.config.Frontend.BaseURL, collab.ID),
	}

	subject := "Payment received and held in escrow"
	tmpl := s.getEmailTemplate("payment_confirmed")
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(recipient.Email, subject, body)
}

// Scheduling notifications

func (s *NotificationService) SendScheduleProposedNotification(collab *models.Collaboration, recipient *models.User, slots int) error {
	s.recordNotification(&recipient.ID, "schedule_proposed", "Schedule Proposed",
		fmt.Sprintf("%d candidate slot(s) proposed for your collaboration", slots),
		"collaboration", &collab.ID)

	data := map[string]interface{}{
		"Name":    recipient.Username,
		"Slots":   slots,
		"ViewURL": fmt.Sprintf("%s/collaborations/%s/schedule", s.config.Frontend.BaseURL, collab.ID),
	}

	subject := "New schedule proposal"
	tmpl := s.getEmailTemplate("schedule_proposed")
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(recipient.Email, subject, body)
}

func (s *NotificationService) SendScheduleConfirmedNotification(collab *models.Collaboration, recipient *models.User) error {
	schedule := collab.CurrentSchedule()
	when := ""
	if schedule != nil {
		when = fmt.Sprintf("%s %s (%s)", schedule.Date, schedule.Time, schedule.Timezone)
	}

	s.recordNotification(&recipient.ID, "schedule_confirmed", "Recording Scheduled",
		fmt.Sprintf("Your session is scheduled for %s", when),
		"collaboration", &collab.ID)

	data := map[string]interface{}{
		"Name":    recipient.Username,
		"When":    when,
		"ViewURL": fmt.Sprintf("%s/collaborations/%s", s.config.Frontend.BaseURL, collab.ID),
	}

	subject := "Recording session scheduled"
	tmpl := s.getEmailTemplate("schedule_confirmed")
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(recipient.Email, subject, body)
}

func (s *NotificationService) SendRescheduleRequestedNotification(collab *models.Collaboration, recipient *models.User, reason string) error {
	s.recordNotification(&recipient.ID, "reschedule_requested", "Reschedule Requested",
		fmt.Sprintf("The other party asked to reschedule: %s", reason),
		"collaboration", &collab.ID)

	data := map[string]interface{}{
		"Name":    recipient.Username,
		"Reason":  reason,
		"ViewURL": fmt.Sprintf("%s/collaborations/%s/schedule", s.config.Frontend.BaseURL, collab.ID),
	}

	subject := "Reschedule requested"
	tmpl := s.getEmailTemplate("reschedule_requested")
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(recipient.Email, subject, body)
}

// Payout notifications

func (s *NotificationService) SendPayoutReleasedNotification(collab *models.Collaboration, recipient *models.User) error {
	amount := 0.0
	if collab.LegendAmount != nil {
		amount = *collab.LegendAmount
	}

	s.recordNotification(&recipient.ID, "payout_released", "Payout Released",
		fmt.Sprintf("%.2f has been released from escrow to your account", amount),
		"collaboration", &collab.ID)

	data := map[string]interface{}{
		"Name":      recipient.Username,
		"Amount":    amount,
		"Reference": collab.PayoutReference,
	}

	subject := "Your payout is on the way"
	tmpl := s.getEmailTemplate("payout_released")
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(recipient.Email, subject, body)
}

// Helper methods

// recordNotification writes the in-app row; email failures never lose the event.
func (s *NotificationService) recordNotification(userID *uuid.UUID, notifType, title, message, resourceType string, resourceID *uuid.UUID) {
	notification := &models.PlatformNotification{
		UserID:              userID,
		Type:                notifType,
		Title:               title,
		Message:             message,
		Priority:            "medium",
		RelatedResourceType: resourceType,
		RelatedResourceID:   resourceID,
	}

	if err := s.db.Create(notification).Error; err != nil {
		logrus.WithError(err).WithField("type", notifType).Error("Failed to create platform notification")
	}
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("Email dispatch skipped (SMTP not configured)")
		return nil
	}

	// Setup authentication
	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	// Compose message
	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", to, subject, body))

	// Send email
	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	// In a real implementation, these would be loaded from files or database
	templates := map[string]EmailTemplate{
		"match_found": {
			Subject: "You have a new match",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Name}}!</h2>
	<p>We found a match for you: <strong>{{.CounterpartName}}</strong> (compatibility {{.Score}}%).</p>
	<a href="{{.MatchURL}}">View Match</a>
	<p>Best regards,<br>The UvoCollab Team</p>
</body>
</html>`,
		},
		"pitch_received": {
			Subject: "New collaboration pitch",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Name}},</h2>
	<p>{{.BuyerName}} pitched a collaboration to you.</p>
	<a href="{{.PitchURL}}">Review Pitch</a>
	<p>Best regards,<br>The UvoCollab Team</p>
</body>
</html>`,
		},
		"schedule_confirmed": {
			Subject: "Recording session scheduled",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Name}},</h2>
	<p>Your recording session is confirmed for <strong>{{.When}}</strong>.</p>
	<a href="{{.ViewURL}}">View Collaboration</a>
	<p>Best regards,<br>The UvoCollab Team</p>
</body>
</html>`,
		},
		"payout_released": {
			Subject: "Payout released",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Name}},</h2>
	<p>{{printf "%.2f" .Amount}} has been released from escrow to your connected account.</p>
	<p>Reference: {{.Reference}}</p>
	<p>Best regards,<br>The UvoCollab Team</p>
</body>
</html>`,
		},
	}

	if tmpl, exists := templates[templateType]; exists {
		return tmpl
	}

	// Default template
	return EmailTemplate{
		Subject: "Notification",
		Body:    "<p>Hello {{.Name}}, there is an update on your collaboration.</p>",
	}
}
