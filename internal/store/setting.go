// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Well-known site setting keys.
const (
	SettingModeration = "moderation_enabled"
	SettingExpiryDays = "ad_expiry_days"
)

// Setting defaults applied when no row exists yet.
const (
	defaultModeration = true
	defaultExpiryDays = 60
)

// SettingStore manages the key/value site settings and the SMTP
// configuration rows.
type SettingStore struct {
	db *sql.DB
}

// NewSettingStore returns a new SettingStore.
func NewSettingStore(db *sql.DB) *SettingStore {
	return &SettingStore{db: db}
}

// get reads one setting value; found is false when no row exists.
func (s *SettingStore) get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM site_settings WHERE key = $1`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, true, nil
}

// set upserts one setting value.
func (s *SettingStore) set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO site_settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, key, value)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

// ModerationEnabled reports whether new ads enter the lifecycle as
// pending (true) or go straight to active (false).
func (s *SettingStore) ModerationEnabled() (bool, error) {
	value, found, err := s.get(SettingModeration)
	if err != nil {
		return false, err
	}
	if !found {
		return defaultModeration, nil
	}
	return value == "true", nil
}

// SetModerationEnabled toggles platform-wide moderation.
func (s *SettingStore) SetModerationEnabled(enabled bool) error {
	return s.set(SettingModeration, strconv.FormatBool(enabled))
}

// ExpiryDays returns the age in days after which active ads expire.
func (s *SettingStore) ExpiryDays() (int, error) {
	value, found, err := s.get(SettingExpiryDays)
	if err != nil {
		return 0, err
	}
	if !found {
		return defaultExpiryDays, nil
	}
	days, err := strconv.Atoi(value)
	if err != nil || days < 1 {
		return defaultExpiryDays, nil
	}
	return days, nil
}

// SetExpiryDays updates the ad expiry window.
func (s *SettingStore) SetExpiryDays(days int) error {
	return s.set(SettingExpiryDays, strconv.Itoa(days))
}

// EmailSettings is the SMTP configuration used by the notifier.
type EmailSettings struct {
	ID        uuid.UUID `json:"id"`
	Host      string    `json:"smtp_host"`
	Port      int       `json:"smtp_port"`
	Secure    bool      `json:"smtp_secure"`
	User      string    `json:"smtp_user"`
	Password  string    `json:"-"`
	FromEmail string    `json:"from_email"`
	FromName  string    `json:"from_name"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EmailSettings returns the current SMTP configuration, or nil when
// none has been saved yet.
func (s *SettingStore) EmailSettings() (*EmailSettings, error) {
	var e EmailSettings
	err := s.db.QueryRow(`
		SELECT id, smtp_host, smtp_port, smtp_secure, smtp_user, smtp_password,
		       from_email, from_name, updated_at
		FROM email_settings ORDER BY created_at DESC LIMIT 1
	`).Scan(&e.ID, &e.Host, &e.Port, &e.Secure, &e.User, &e.Password,
		&e.FromEmail, &e.FromName, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get email settings: %w", err)
	}
	return &e, nil
}

// SaveEmailSettings replaces the SMTP configuration; the latest saved
// row wins.
func (s *SettingStore) SaveEmailSettings(e *EmailSettings) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM email_settings`); err != nil {
		return fmt.Errorf("clear email settings: %w", err)
	}
	_, err = tx.Exec(`
		INSERT INTO email_settings (smtp_host, smtp_port, smtp_secure, smtp_user,
		                            smtp_password, from_email, from_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.Host, e.Port, e.Secure, e.User, e.Password, e.FromEmail, e.FromName)
	if err != nil {
		return fmt.Errorf("save email settings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit email settings: %w", err)
	}
	return nil
}
