// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
)

func TestRegisterLoginValidate(t *testing.T) {
	env := newTestEnv(t)
	email := "flow-" + uuid.NewString()[:8] + "@example.com"
	t.Cleanup(func() { env.db.Exec("DELETE FROM users WHERE email = $1", email) })

	// Register.
	code, body := env.request(t, "POST", "/api/auth/register", "", map[string]any{
		"email":      email,
		"password":   "longenoughpassword",
		"first_name": "Claire",
		"last_name":  "Moreau",
	})
	if code != http.StatusCreated {
		t.Fatalf("register: got %d: %v", code, body)
	}
	if body["token"] == nil {
		t.Fatal("register should return a token")
	}

	// Login.
	code, body = env.request(t, "POST", "/api/auth/login", "", map[string]any{
		"email":    email,
		"password": "longenoughpassword",
	})
	if code != http.StatusOK {
		t.Fatalf("login: got %d: %v", code, body)
	}
	token := body["token"].(string)

	// Validate restores the session.
	code, body = env.request(t, "GET", "/api/auth/validate", token, nil)
	if code != http.StatusOK {
		t.Fatalf("validate: got %d: %v", code, body)
	}
	user := body["user"].(map[string]any)
	if user["email"] != email {
		t.Errorf("validate email: got %v", user["email"])
	}
	// The password hash never leaves the server.
	if _, leaked := user["password_hash"]; leaked {
		t.Error("password hash leaked in validate response")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	_, user := env.signupUser(t)

	code, _ := env.request(t, "POST", "/api/auth/register", "", map[string]any{
		"email":      user.Email,
		"password":   "longenoughpassword",
		"first_name": "Other",
		"last_name":  "Person",
	})
	if code != http.StatusConflict {
		t.Errorf("duplicate email: got %d, want 409", code)
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	// Short password.
	code, _ := env.request(t, "POST", "/api/auth/register", "", map[string]any{
		"email":      "short-" + uuid.NewString()[:8] + "@example.com",
		"password":   "short",
		"first_name": "A",
		"last_name":  "B",
	})
	if code != http.StatusUnprocessableEntity {
		t.Errorf("short password: got %d, want 422", code)
	}

	// Broken email.
	code, _ = env.request(t, "POST", "/api/auth/register", "", map[string]any{
		"email":      "not-an-email",
		"password":   "longenoughpassword",
		"first_name": "A",
		"last_name":  "B",
	})
	if code != http.StatusUnprocessableEntity {
		t.Errorf("bad email: got %d, want 422", code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	_, user := env.signupUser(t)

	code, _ := env.request(t, "POST", "/api/auth/login", "", map[string]any{
		"email":    user.Email,
		"password": "not-the-password",
	})
	if code != http.StatusUnauthorized {
		t.Errorf("wrong password: got %d, want 401", code)
	}

	code, _ = env.request(t, "POST", "/api/auth/login", "", map[string]any{
		"email":    "ghost@example.com",
		"password": "whatever",
	})
	if code != http.StatusUnauthorized {
		t.Errorf("unknown email: got %d, want 401", code)
	}
}

func TestValidateRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	code, _ := env.request(t, "GET", "/api/auth/validate", "", nil)
	if code != http.StatusUnauthorized {
		t.Errorf("anonymous validate: got %d, want 401", code)
	}
}
