package notification

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

// Service sends registration confirmation emails and records outcomes.
// All sends are best-effort; a failure never propagates to the caller's
// main flow.
type Service interface {
	SendRegistrationConfirmation(registrationID uint, recipient, eventTitle, eventDate, successMessage string)
}

type service struct {
	db    *gorm.DB
	email Channel
}

func NewService(db *gorm.DB, email Channel) Service {
	return &service{db: db, email: email}
}

// SendRegistrationConfirmation emails the registrant after a successful
// public submission. No recipient email means nothing to do.
func (s *service) SendRegistrationConfirmation(registrationID uint, recipient, eventTitle, eventDate, successMessage string) {
	if recipient == "" {
		return
	}

	subject := fmt.Sprintf("Registration confirmed: %s", eventTitle)
	if successMessage == "" {
		successMessage = "Your registration has been received."
	}
	body := fmt.Sprintf(
		"<h2>%s</h2><p>%s</p><p><strong>Date:</strong> %s</p>",
		eventTitle, successMessage, eventDate,
	)

	entry := &NotificationLog{
		RegistrationID: &registrationID,
		Recipient:      recipient,
		Subject:        subject,
		Status:         "sent",
	}

	if err := s.email.Send([]string{recipient}, subject, body); err != nil {
		log.Printf("⚠️ Failed to send confirmation email to %s: %v", recipient, err)
		entry.Status = "failed"
		entry.Error = err.Error()
	}

	if err := s.db.Create(entry).Error; err != nil {
		log.Printf("⚠️ Failed to record notification log: %v", err)
	}
}
