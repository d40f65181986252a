// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL is unavailable.
package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"brocante/internal/auth"
	"brocante/internal/cache"
	"brocante/internal/database"
	"brocante/internal/middleware"
	"brocante/internal/models"
	"brocante/internal/notify"
	"brocante/internal/store"
)

const testSecret = "handler-test-secret"

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "brocante")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "brocante")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testEnv bundles the wired handler groups and router for one test.
// Object storage is nil and caching is the no-op mode, so only the
// database is required.
type testEnv struct {
	db            *sql.DB
	router        chi.Router
	userStore     *store.UserStore
	categoryStore *store.CategoryStore
	fieldStore    *store.FieldStore
	adStore       *store.AdStore
	settingStore  *store.SettingStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testDB(t)

	userStore := store.NewUserStore(db)
	categoryStore := store.NewCategoryStore(db)
	fieldStore := store.NewFieldStore(db)
	adStore := store.NewAdStore(db)
	settingStore := store.NewSettingStore(db)

	listingCache := cache.NewListingCache(nil, 0)
	mailer := notify.NewMailer(settingStore)

	authH := NewAuth(userStore, mailer, testSecret)
	taxonomyH := NewTaxonomy(categoryStore, listingCache)
	fieldsH := NewFields(fieldStore)
	adsH := NewAds(adStore, fieldStore, settingStore, nil, listingCache)
	adminH := NewAdmin(adStore, userStore, settingStore, mailer, listingCache)

	// Routes mirror the server wiring minus CORS and rate limits.
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testSecret))
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authH.Register)
		r.Post("/auth/login", authH.Login)
		r.With(middleware.RequireAuth).Get("/auth/validate", authH.Validate)

		r.Get("/categories", taxonomyH.List)
		r.Get("/categories/{id}/fields", fieldsH.List)
		r.Get("/ads", adsH.List)
		r.Get("/ads/{id}", adsH.Detail)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/ads", adsH.Submit)
			r.Get("/my-ads", adsH.MyAds)
			r.Post("/ads/{id}/sold", adsH.MarkSold)
			r.Delete("/ads/{id}", adsH.Delete)
			r.Put("/ads/{id}/images/order", adsH.ReorderImages)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Post("/categories", taxonomyH.Create)
			r.Delete("/categories/{id}", taxonomyH.Delete)
			r.Post("/categories/{id}/subcategories", taxonomyH.CreateSubcategory)
			r.Post("/categories/{id}/fields", fieldsH.Add)
			r.Get("/ads", adminH.Ads)
			r.Post("/ads/{id}/approve", adminH.Approve)
			r.Post("/ads/{id}/reject", adminH.Reject)
			r.Get("/stats", adminH.Stats)
			r.Put("/settings", adminH.SaveSettings)
		})
	})

	return &testEnv{
		db:            db,
		router:        r,
		userStore:     userStore,
		categoryStore: categoryStore,
		fieldStore:    fieldStore,
		adStore:       adStore,
		settingStore:  settingStore,
	}
}

// request performs one request against the test router and decodes the
// JSON response body into a generic map.
func (e *testEnv) request(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	decoded := map[string]any{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec.Code, decoded
}

// signupUser registers a throwaway account through the API and returns
// its token.
func (e *testEnv) signupUser(t *testing.T) (string, *models.User) {
	t.Helper()
	email := "handler-" + uuid.NewString()[:8] + "@example.com"

	code, body := e.request(t, "POST", "/api/auth/register", "", map[string]any{
		"email":      email,
		"password":   "longenoughpassword",
		"first_name": "Test",
		"last_name":  "Caller",
	})
	if code != http.StatusCreated {
		t.Fatalf("register: got %d: %v", code, body)
	}

	user, err := e.userStore.FindByEmail(email)
	if err != nil || user == nil {
		t.Fatalf("find registered user: %v", err)
	}
	t.Cleanup(func() { e.db.Exec("DELETE FROM users WHERE id = $1", user.ID) })

	return body["token"].(string), user
}

// adminToken mints a token for a synthetic admin account.
func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	email := "handler-admin-" + uuid.NewString()[:8] + "@example.com"

	user, err := e.userStore.Create(email, "longenoughpassword", "Admin", "Caller", nil)
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	if _, err := e.db.Exec("UPDATE users SET role = 'admin' WHERE id = $1", user.ID); err != nil {
		t.Fatalf("promote admin: %v", err)
	}
	user.Role = models.RoleAdmin
	t.Cleanup(func() { e.db.Exec("DELETE FROM users WHERE id = $1", user.ID) })

	token, err := auth.GenerateToken(testSecret, user)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return token
}

// makeCategory creates a category through the admin API.
func (e *testEnv) makeCategory(t *testing.T, adminTok string) uuid.UUID {
	t.Helper()
	code, body := e.request(t, "POST", "/api/admin/categories", adminTok, map[string]any{
		"name": "Handler Test " + uuid.NewString()[:8],
	})
	if code != http.StatusCreated {
		t.Fatalf("create category: got %d: %v", code, body)
	}
	id, err := uuid.Parse(body["id"].(string))
	if err != nil {
		t.Fatalf("category id: %v", err)
	}
	t.Cleanup(func() {
		e.db.Exec("DELETE FROM ads WHERE category_id = $1", id)
		e.db.Exec("DELETE FROM categories WHERE id = $1", id)
	})
	return id
}
