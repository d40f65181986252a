// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestCategoriesPublicList(t *testing.T) {
	env := newTestEnv(t)
	adminTok := env.adminToken(t)
	env.makeCategory(t, adminTok)

	// No token needed for the public tree.
	code, body := env.request(t, "GET", "/api/categories", "", nil)
	if code != http.StatusOK {
		t.Fatalf("list: got %d: %v", code, body)
	}
	if _, ok := body["categories"].([]any); !ok {
		t.Fatalf("expected categories array, got %v", body)
	}
}

func TestCategoryMutationsRequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	userTok, _ := env.signupUser(t)

	// Anonymous.
	code, _ := env.request(t, "POST", "/api/admin/categories", "", map[string]any{"name": "Nope"})
	if code != http.StatusUnauthorized {
		t.Errorf("anonymous create: got %d, want 401", code)
	}

	// Plain user.
	code, _ = env.request(t, "POST", "/api/admin/categories", userTok, map[string]any{"name": "Nope"})
	if code != http.StatusForbidden {
		t.Errorf("user create: got %d, want 403", code)
	}
}

func TestCategoryCreateDerivesSlug(t *testing.T) {
	env := newTestEnv(t)
	adminTok := env.adminToken(t)

	name := "Vélos & Trottinettes " + uuid.NewString()[:8]
	code, body := env.request(t, "POST", "/api/admin/categories", adminTok, map[string]any{
		"name": name,
	})
	if code != http.StatusCreated {
		t.Fatalf("create: got %d: %v", code, body)
	}
	id, _ := uuid.Parse(body["id"].(string))
	t.Cleanup(func() { env.db.Exec("DELETE FROM categories WHERE id = $1", id) })

	// The accent fold and ampersand removal both apply.
	slug := body["slug"].(string)
	if !strings.HasPrefix(slug, "velos-trottinettes-") {
		t.Errorf("derived slug: got %q", slug)
	}
}

func TestCategoryDuplicateSlugConflict(t *testing.T) {
	env := newTestEnv(t)
	adminTok := env.adminToken(t)

	slug := "dup-" + uuid.NewString()[:8]
	code, body := env.request(t, "POST", "/api/admin/categories", adminTok, map[string]any{
		"name": "First", "slug": slug,
	})
	if code != http.StatusCreated {
		t.Fatalf("create: got %d: %v", code, body)
	}
	id, _ := uuid.Parse(body["id"].(string))
	t.Cleanup(func() { env.db.Exec("DELETE FROM categories WHERE id = $1", id) })

	code, _ = env.request(t, "POST", "/api/admin/categories", adminTok, map[string]any{
		"name": "Second", "slug": slug,
	})
	if code != http.StatusConflict {
		t.Errorf("duplicate slug: got %d, want 409", code)
	}
}

func TestSubcategoryCreateAndFieldSchema(t *testing.T) {
	env := newTestEnv(t)
	adminTok := env.adminToken(t)
	catID := env.makeCategory(t, adminTok)

	code, body := env.request(t, "POST", "/api/admin/categories/"+catID.String()+"/subcategories", adminTok, map[string]any{
		"name": "Sous-cat",
	})
	if code != http.StatusCreated {
		t.Fatalf("create subcategory: got %d: %v", code, body)
	}

	// Add a select field, then read the schema publicly.
	code, body = env.request(t, "POST", "/api/admin/categories/"+catID.String()+"/fields", adminTok, map[string]any{
		"field_type": "select",
		"name":       "brand",
		"label":      "Marque",
		"options":    []string{"BMW", "Audi"},
		"required":   true,
	})
	if code != http.StatusCreated {
		t.Fatalf("add field: got %d: %v", code, body)
	}

	code, body = env.request(t, "GET", "/api/categories/"+catID.String()+"/fields", "", nil)
	if code != http.StatusOK {
		t.Fatalf("list fields: got %d: %v", code, body)
	}
	fields := body["fields"].([]any)
	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}
	field := fields[0].(map[string]any)
	if field["name"] != "brand" {
		t.Errorf("field name: got %v", field["name"])
	}
}

func TestFieldDefinitionRejected(t *testing.T) {
	env := newTestEnv(t)
	adminTok := env.adminToken(t)
	catID := env.makeCategory(t, adminTok)

	// select without options is a validation failure with field detail.
	code, body := env.request(t, "POST", "/api/admin/categories/"+catID.String()+"/fields", adminTok, map[string]any{
		"field_type": "select",
		"name":       "brand",
		"label":      "Marque",
	})
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("got %d: %v", code, body)
	}
	fields, ok := body["fields"].(map[string]any)
	if !ok {
		t.Fatalf("expected per-field detail, got %v", body)
	}
	if _, ok := fields["options"]; !ok {
		t.Errorf("expected options violation, got %v", fields)
	}
}

func TestCategoryDeleteUnknown(t *testing.T) {
	env := newTestEnv(t)
	adminTok := env.adminToken(t)

	code, _ := env.request(t, "DELETE", "/api/admin/categories/"+uuid.NewString(), adminTok, nil)
	if code != http.StatusNotFound {
		t.Errorf("unknown category delete: got %d, want 404", code)
	}
}
