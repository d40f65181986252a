// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"brocante/internal/cache"
	"brocante/internal/models"
	"brocante/internal/notify"
	"brocante/internal/store"
)

// Admin groups the moderation and administration HTTP handlers.
type Admin struct {
	adStore      *store.AdStore
	userStore    *store.UserStore
	settingStore *store.SettingStore
	mailer       *notify.Mailer
	listingCache *cache.ListingCache
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(adStore *store.AdStore, userStore *store.UserStore, settingStore *store.SettingStore, mailer *notify.Mailer, listingCache *cache.ListingCache) *Admin {
	return &Admin{
		adStore:      adStore,
		userStore:    userStore,
		settingStore: settingStore,
		mailer:       mailer,
		listingCache: listingCache,
	}
}

// Ads serves the moderation queue: every ad in every status, with an
// optional status filter and a search that also matches the owner.
func (a *Admin) Ads(w http.ResponseWriter, r *http.Request) {
	status := models.AdStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		writeErrorMsg(w, http.StatusUnprocessableEntity, "unknown status filter")
		return
	}

	q := store.ModerationQuery{
		Status:       status,
		CategorySlug: r.URL.Query().Get("category"),
		Search:       strings.TrimSpace(r.URL.Query().Get("search")),
		Page:         queryInt(r, "page"),
		Limit:        queryInt(r, "limit"),
	}

	ads, total, err := a.adStore.ListForModeration(q)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listingResponse(ads, total, q.Page, q.Limit))
}

// Approve moves a pending or rejected ad to active and notifies the
// owner.
func (a *Admin) Approve(w http.ResponseWriter, r *http.Request) {
	a.moderate(w, r, models.StatusActive)
}

// Reject moves a pending ad to rejected and notifies the owner.
func (a *Admin) Reject(w http.ResponseWriter, r *http.Request) {
	a.moderate(w, r, models.StatusRejected)
}

func (a *Admin) moderate(w http.ResponseWriter, r *http.Request, to models.AdStatus) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	ad, err := a.adStore.FindByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if ad == nil {
		writeErrorMsg(w, http.StatusNotFound, "ad not found")
		return
	}

	if err := a.adStore.Transition(id, to); err != nil {
		writeError(w, err)
		return
	}

	a.notifyOwner(ad, to)
	a.listingCache.InvalidateAll(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": string(to)})
}

// notifyOwner emails the ad's owner about the moderation decision,
// best-effort.
func (a *Admin) notifyOwner(ad *models.Ad, to models.AdStatus) {
	owner, err := a.userStore.FindByID(ad.OwnerID)
	if err != nil || owner == nil {
		slog.Warn("owner lookup for notification failed", "error", err, "ad", ad.ID)
		return
	}
	switch to {
	case models.StatusActive:
		a.mailer.Send(notify.AdApproved(owner.Email, ad.Title))
	case models.StatusRejected:
		a.mailer.Send(notify.AdRejected(owner.Email, ad.Title))
	}
}

// Stats serves the dashboard counters.
func (a *Admin) Stats(w http.ResponseWriter, r *http.Request) {
	total, err := a.adStore.Count()
	if err != nil {
		writeError(w, err)
		return
	}

	byStatus := make(map[string]int, len(models.AdStatuses))
	for _, st := range models.AdStatuses {
		n, err := a.adStore.CountByStatus(st)
		if err != nil {
			writeError(w, err)
			return
		}
		byStatus[string(st)] = n
	}

	users, err := a.userStore.Count()
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total_ads": total,
		"by_status": byStatus,
		"users":     users,
	})
}

// Users lists registered accounts with an optional search.
func (a *Admin) Users(w http.ResponseWriter, r *http.Request) {
	users, err := a.userStore.List(
		strings.TrimSpace(r.URL.Query().Get("search")),
		queryInt(r, "page"),
		queryInt(r, "limit"),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

// Settings serves the site-wide moderation and expiry settings.
func (a *Admin) Settings(w http.ResponseWriter, r *http.Request) {
	moderation, err := a.settingStore.ModerationEnabled()
	if err != nil {
		writeError(w, err)
		return
	}
	expiryDays, err := a.settingStore.ExpiryDays()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"moderation_enabled": moderation,
		"expiry_days":        expiryDays,
	})
}

type settingsRequest struct {
	ModerationEnabled bool `json:"moderation_enabled"`
	ExpiryDays        int  `json:"expiry_days"`
}

// SaveSettings updates the site-wide settings.
func (a *Admin) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ExpiryDays < 1 {
		writeErrorMsg(w, http.StatusUnprocessableEntity, "expiry_days must be positive")
		return
	}

	if err := a.settingStore.SetModerationEnabled(req.ModerationEnabled); err != nil {
		writeError(w, err)
		return
	}
	if err := a.settingStore.SetExpiryDays(req.ExpiryDays); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// EmailSettings serves the current SMTP configuration. The password is
// never echoed back.
func (a *Admin) EmailSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := a.settingStore.EmailSettings()
	if err != nil {
		writeError(w, err)
		return
	}
	if settings == nil {
		writeJSON(w, http.StatusOK, map[string]any{"email": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"email": settings})
}

type emailSettingsRequest struct {
	Host      string `json:"smtp_host"`
	Port      int    `json:"smtp_port"`
	Secure    bool   `json:"smtp_secure"`
	User      string `json:"smtp_user"`
	Password  string `json:"smtp_password"`
	FromEmail string `json:"from_email"`
	FromName  string `json:"from_name"`
}

// SaveEmailSettings replaces the SMTP configuration.
func (a *Admin) SaveEmailSettings(w http.ResponseWriter, r *http.Request) {
	var req emailSettingsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Host) == "" || req.Port < 1 || req.Port > 65535 {
		writeErrorMsg(w, http.StatusUnprocessableEntity, "a valid SMTP host and port are required")
		return
	}
	if !emailRe.MatchString(req.FromEmail) {
		writeErrorMsg(w, http.StatusUnprocessableEntity, "a valid sender address is required")
		return
	}

	err := a.settingStore.SaveEmailSettings(&store.EmailSettings{
		Host:      strings.TrimSpace(req.Host),
		Port:      req.Port,
		Secure:    req.Secure,
		User:      req.User,
		Password:  req.Password,
		FromEmail: req.FromEmail,
		FromName:  strings.TrimSpace(req.FromName),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}
