package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// ReminderEmailData holds data for the event reminder sent to every registrant.
type ReminderEmailData struct {
	Name        string
	Email       string
	Phone       string
	LuckyNumber int
	GuestCount  int
	Roles       string
	Slot        string
	Remarks     string
	PortalURL   string
}

// NewReminderEmailData builds the reminder payload for a registrant.
func NewReminderEmailData(r *Registrant, portalURL string) *ReminderEmailData {
	return &ReminderEmailData{
		Name:        r.Name,
		Email:       r.Email,
		Phone:       r.Phone,
		LuckyNumber: r.LuckyNumber,
		GuestCount:  r.GuestCount,
		Roles:       r.RolesLabel(),
		Slot:        string(r.Slot),
		Remarks:     r.Remarks,
		PortalURL:   portalURL,
	}
}

// NotificationService sends bulk messages through the notification relay.
type NotificationService interface {
	// SendBulk sends one reminder per registrant and stops at the first failure.
	// It returns the number of messages sent before returning.
	SendBulk(ctx context.Context, recipients []*Registrant) (sent int, err error)
}
