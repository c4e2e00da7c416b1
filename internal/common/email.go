package common

// EmailSender delivers transactional mail, currently only payment receipts.
// The real delivery backend is deployment-specific; wiring uses the nop
// sender until one exists.
type EmailSender interface {
	Send(to, subject, html string) error
}

// Email is one captured message.
type Email struct {
	To      string
	Subject string
	HTML    string
}

// InMemoryEmail records sent mail so tests can assert on receipts.
type InMemoryEmail struct {
	Outbox []Email
}

// Send appends the message to the outbox.
func (m *InMemoryEmail) Send(to, subject, html string) error {
	if m == nil {
		return nil
	}
	m.Outbox = append(m.Outbox, Email{To: to, Subject: subject, HTML: html})
	return nil
}

// NopEmailSender drops every message.
type NopEmailSender struct{}

// Send implements EmailSender.
func (NopEmailSender) Send(string, string, string) error { return nil }
