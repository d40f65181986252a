// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"brocante/internal/auth"
	"brocante/internal/middleware"
	"brocante/internal/notify"
	"brocante/internal/store"
)

// Registration limits.
const (
	maxEmailLen    = 254
	maxNameLen     = 100
	minPasswordLen = 8
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Auth groups the authentication HTTP handlers.
type Auth struct {
	userStore *store.UserStore
	mailer    *notify.Mailer
	jwtSecret string
}

// NewAuth creates a new Auth handler group.
func NewAuth(userStore *store.UserStore, mailer *notify.Mailer, jwtSecret string) *Auth {
	return &Auth{
		userStore: userStore,
		mailer:    mailer,
		jwtSecret: jwtSecret,
	}
}

type registerRequest struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     *string `json:"phone"`
}

// Register creates a new user account and returns a token for it.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)

	if msg := validateRegistration(&req); msg != "" {
		writeErrorMsg(w, http.StatusUnprocessableEntity, msg)
		return
	}

	user, err := a.userStore.Create(req.Email, req.Password, req.FirstName, req.LastName, req.Phone)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := auth.GenerateToken(a.jwtSecret, user)
	if err != nil {
		slog.Error("token generation failed", "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "internal server error")
		return
	}

	a.mailer.Send(notify.AccountCreated(user.Email, user.FirstName))

	writeJSON(w, http.StatusCreated, map[string]any{
		"token": token,
		"user":  user,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and returns a signed token.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := a.userStore.Authenticate(email, req.Password)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil {
		// Same response for unknown email and wrong password.
		writeErrorMsg(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := auth.GenerateToken(a.jwtSecret, user)
	if err != nil {
		slog.Error("token generation failed", "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}

// Validate returns the account behind the presented token. The frontend
// calls this on startup to restore a session.
func (a *Auth) Validate(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromCtx(r.Context())

	user, err := a.userStore.FindByID(claims.UserID)
	if err != nil {
		slog.Error("user lookup failed", "error", err)
		writeErrorMsg(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil {
		// Token outlived the account.
		writeErrorMsg(w, http.StatusUnauthorized, "account no longer exists")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// validateRegistration checks the registration payload and returns the
// first problem found.
func validateRegistration(req *registerRequest) string {
	if req.Email == "" || !emailRe.MatchString(req.Email) {
		return "a valid email address is required"
	}
	if utf8.RuneCountInString(req.Email) > maxEmailLen {
		return "email is too long"
	}
	if utf8.RuneCountInString(req.Password) < minPasswordLen {
		return "password must be at least 8 characters"
	}
	if req.FirstName == "" || req.LastName == "" {
		return "first and last name are required"
	}
	if utf8.RuneCountInString(req.FirstName) > maxNameLen || utf8.RuneCountInString(req.LastName) > maxNameLen {
		return "name is too long (max 100 characters)"
	}
	return ""
}
