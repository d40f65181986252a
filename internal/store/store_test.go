// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"brocante/internal/database"
	"brocante/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "brocante")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "brocante")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testCategory creates a throwaway category and registers its cleanup.
// Deleting the category cascades to its subcategories and form fields.
func testCategory(t *testing.T, db *sql.DB) *models.Category {
	t.Helper()
	s := NewCategoryStore(db)
	name := "Test " + uuid.NewString()[:8]
	cat, err := s.Create(name, "test-"+uuid.NewString()[:8], "📦")
	if err != nil {
		t.Fatalf("create test category: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM ads WHERE category_id = $1", cat.ID)
		db.Exec("DELETE FROM categories WHERE id = $1", cat.ID)
	})
	return cat
}

// testUser creates a throwaway account and registers its cleanup.
// Deleting the user cascades to their ads.
func testUser(t *testing.T, db *sql.DB) *models.User {
	t.Helper()
	s := NewUserStore(db)
	email := "test-" + uuid.NewString()[:8] + "@example.com"
	u, err := s.Create(email, "secret-password", "Test", "User", nil)
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM users WHERE id = $1", u.ID) })
	return u
}

// testAd creates a pending ad in the given category and registers its
// cleanup.
func testAd(t *testing.T, db *sql.DB, owner *models.User, cat *models.Category) *models.Ad {
	t.Helper()
	s := NewAdStore(db)
	ad, err := s.Create(&models.Ad{
		OwnerID:     owner.ID,
		CategoryID:  cat.ID,
		Title:       "Test ad " + uuid.NewString()[:8],
		Description: "Integration test listing.",
		Price:       42,
		Condition:   models.ConditionGood,
		Location:    "Paris",
		Status:      models.StatusPending,
	}, nil)
	if err != nil {
		t.Fatalf("create test ad: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM ads WHERE id = $1", ad.ID) })
	return ad
}
