// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import "testing"

func TestSettingStoreDefaults(t *testing.T) {
	db := testDB(t)
	s := NewSettingStore(db)

	// Clear any state left from previous runs so defaults apply.
	db.Exec("DELETE FROM site_settings WHERE key IN ($1, $2)", SettingModeration, SettingExpiryDays)

	moderation, err := s.ModerationEnabled()
	if err != nil {
		t.Fatalf("ModerationEnabled: %v", err)
	}
	if !moderation {
		t.Error("moderation defaults to on")
	}

	days, err := s.ExpiryDays()
	if err != nil {
		t.Fatalf("ExpiryDays: %v", err)
	}
	if days != 60 {
		t.Errorf("expiry defaults to 60 days, got %d", days)
	}
}

func TestSettingStoreRoundTrip(t *testing.T) {
	db := testDB(t)
	s := NewSettingStore(db)
	t.Cleanup(func() {
		db.Exec("DELETE FROM site_settings WHERE key IN ($1, $2)", SettingModeration, SettingExpiryDays)
	})

	if err := s.SetModerationEnabled(false); err != nil {
		t.Fatalf("SetModerationEnabled: %v", err)
	}
	moderation, err := s.ModerationEnabled()
	if err != nil {
		t.Fatalf("ModerationEnabled: %v", err)
	}
	if moderation {
		t.Error("expected moderation off")
	}

	if err := s.SetExpiryDays(30); err != nil {
		t.Fatalf("SetExpiryDays: %v", err)
	}
	days, err := s.ExpiryDays()
	if err != nil {
		t.Fatalf("ExpiryDays: %v", err)
	}
	if days != 30 {
		t.Errorf("got %d, want 30", days)
	}

	// Upsert, not insert: setting again overwrites.
	if err := s.SetExpiryDays(90); err != nil {
		t.Fatalf("SetExpiryDays again: %v", err)
	}
	days, _ = s.ExpiryDays()
	if days != 90 {
		t.Errorf("got %d, want 90", days)
	}
}

func TestSettingStoreEmailSettings(t *testing.T) {
	db := testDB(t)
	s := NewSettingStore(db)
	t.Cleanup(func() { db.Exec("DELETE FROM email_settings") })

	// Nothing saved yet.
	db.Exec("DELETE FROM email_settings")
	current, err := s.EmailSettings()
	if err != nil {
		t.Fatalf("EmailSettings: %v", err)
	}
	if current != nil {
		t.Fatalf("expected nil before first save, got %+v", current)
	}

	if err := s.SaveEmailSettings(&EmailSettings{
		Host: "smtp.example.com", Port: 587, Secure: true,
		User: "mailer", Password: "hunter2",
		FromEmail: "noreply@example.com", FromName: "Brocante",
	}); err != nil {
		t.Fatalf("SaveEmailSettings: %v", err)
	}

	// Saving again replaces the previous row; the latest wins.
	if err := s.SaveEmailSettings(&EmailSettings{
		Host: "smtp2.example.com", Port: 465, Secure: true,
		FromEmail: "hello@example.com", FromName: "Brocante",
	}); err != nil {
		t.Fatalf("SaveEmailSettings again: %v", err)
	}

	current, err = s.EmailSettings()
	if err != nil {
		t.Fatalf("EmailSettings: %v", err)
	}
	if current == nil || current.Host != "smtp2.example.com" {
		t.Fatalf("expected latest settings, got %+v", current)
	}

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM email_settings").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected a single row, got %d", n)
	}
}
