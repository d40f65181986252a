// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"brocante/internal/apperr"
	"brocante/internal/models"
)

func TestUserStoreCreateAndAuthenticate(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	email := "auth-" + uuid.NewString()[:8] + "@example.com"
	t.Cleanup(func() { db.Exec("DELETE FROM users WHERE email = $1", email) })

	created, err := s.Create(email, "correct-horse", "Marie", "Dupont", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Role != models.RoleUser {
		t.Errorf("new accounts default to the user role, got %s", created.Role)
	}
	if created.PasswordHash == "correct-horse" {
		t.Error("password must be stored hashed")
	}

	user, err := s.Authenticate(email, "correct-horse")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if user == nil || user.ID != created.ID {
		t.Fatalf("expected user %s, got %+v", created.ID, user)
	}

	// Wrong password and unknown email look the same to the caller.
	user, err = s.Authenticate(email, "wrong")
	if err != nil || user != nil {
		t.Errorf("wrong password: got (%+v, %v)", user, err)
	}
	user, err = s.Authenticate("nobody@example.com", "whatever")
	if err != nil || user != nil {
		t.Errorf("unknown email: got (%+v, %v)", user, err)
	}
}

func TestUserStoreDuplicateEmail(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)
	u := testUser(t, db)

	_, err := s.Create(u.Email, "whatever-pass", "Jean", "Martin", nil)
	var conflict *apperr.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError for duplicate email, got %v", err)
	}
}

func TestUserStoreList(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)
	u := testUser(t, db)

	users, err := s.List(u.Email, 1, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 match, got %d", len(users))
	}
	if users[0].ID != u.ID {
		t.Errorf("got %s, want %s", users[0].ID, u.ID)
	}
}
