// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package notify delivers structured platform events by email. Delivery
// is fire-and-forget: senders hand an event to Send and continue, and
// failures are logged, never surfaced to the request that produced the
// event. SMTP parameters come from the admin-editable email settings;
// when none are configured, events are dropped with a debug log.
package notify

import (
	"fmt"
	"log/slog"
	"net/smtp"

	"brocante/internal/store"
)

// Event is a notification handed to the mailer.
type Event struct {
	To      string
	Subject string
	Body    string
}

// AdApproved builds the event sent to an owner when their ad goes live.
func AdApproved(to, adTitle string) Event {
	return Event{
		To:      to,
		Subject: "Votre annonce est en ligne",
		Body:    fmt.Sprintf("Votre annonce « %s » a été approuvée et est maintenant visible.", adTitle),
	}
}

// AdRejected builds the event sent to an owner when their ad is refused.
func AdRejected(to, adTitle string) Event {
	return Event{
		To:      to,
		Subject: "Votre annonce a été refusée",
		Body:    fmt.Sprintf("Votre annonce « %s » a été refusée par la modération.", adTitle),
	}
}

// AccountCreated builds the welcome event for a new user.
func AccountCreated(to, firstName string) Event {
	return Event{
		To:      to,
		Subject: "Bienvenue sur Brocante",
		Body:    fmt.Sprintf("Bonjour %s, votre compte a bien été créé.", firstName),
	}
}

// Mailer sends events over SMTP using the stored email settings.
type Mailer struct {
	settings *store.SettingStore
}

// NewMailer returns a mailer reading its SMTP configuration from the
// setting store on every send, so admin edits apply immediately.
func NewMailer(settings *store.SettingStore) *Mailer {
	return &Mailer{settings: settings}
}

// Send delivers the event asynchronously. It never blocks the caller.
func (m *Mailer) Send(ev Event) {
	go func() {
		if err := m.deliver(ev); err != nil {
			slog.Warn("notification delivery failed",
				"to", ev.To,
				"subject", ev.Subject,
				"error", err,
			)
		}
	}()
}

func (m *Mailer) deliver(ev Event) error {
	cfg, err := m.settings.EmailSettings()
	if err != nil {
		return err
	}
	if cfg == nil {
		slog.Debug("no email settings configured, dropping notification", "subject", ev.Subject)
		return nil
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	msg := []byte(fmt.Sprintf(
		"From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		cfg.FromName, cfg.FromEmail, ev.To, ev.Subject, ev.Body,
	))

	var a smtp.Auth
	if cfg.User != "" {
		a = smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)
	}
	if err := smtp.SendMail(addr, a, cfg.FromEmail, []string{ev.To}, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
