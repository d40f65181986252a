// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"brocante/internal/cache"
	"brocante/internal/slug"
	"brocante/internal/store"
)

const maxCategoryNameLen = 100

// Taxonomy groups the category and subcategory HTTP handlers. Public
// reads and admin mutations share the same store; writes invalidate the
// listing cache because category pages embed the tree.
type Taxonomy struct {
	categoryStore *store.CategoryStore
	listingCache  *cache.ListingCache
}

// NewTaxonomy creates a new Taxonomy handler group.
func NewTaxonomy(categoryStore *store.CategoryStore, listingCache *cache.ListingCache) *Taxonomy {
	return &Taxonomy{
		categoryStore: categoryStore,
		listingCache:  listingCache,
	}
}

// List returns every category with its subcategories, ordered by
// order_index. This is the public navigation tree.
func (t *Taxonomy) List(w http.ResponseWriter, r *http.Request) {
	categories, err := t.categoryStore.List()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

type categoryRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
	Icon string `json:"icon"`
}

// Create adds a new category at the end of the ordering. The slug is
// derived from the name when not given explicitly.
func (t *Taxonomy) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	name, sl, msg := normalizeCategoryInput(req.Name, req.Slug)
	if msg != "" {
		writeErrorMsg(w, http.StatusUnprocessableEntity, msg)
		return
	}

	created, err := t.categoryStore.Create(name, sl, strings.TrimSpace(req.Icon))
	if err != nil {
		writeError(w, err)
		return
	}

	t.listingCache.InvalidateAll(r.Context())
	writeJSON(w, http.StatusCreated, created)
}

// Update renames a category or changes its slug or icon.
func (t *Taxonomy) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req categoryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	name, sl, msg := normalizeCategoryInput(req.Name, req.Slug)
	if msg != "" {
		writeErrorMsg(w, http.StatusUnprocessableEntity, msg)
		return
	}

	if err := t.categoryStore.Update(id, name, sl, strings.TrimSpace(req.Icon)); err != nil {
		writeError(w, err)
		return
	}

	t.listingCache.InvalidateAll(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Delete removes an empty category together with its subcategories and
// form fields. Categories that still have ads are refused.
func (t *Taxonomy) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	if err := t.categoryStore.Delete(id); err != nil {
		writeError(w, err)
		return
	}

	t.listingCache.InvalidateAll(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type subcategoryRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CreateSubcategory adds a subcategory at the end of its category's
// ordering.
func (t *Taxonomy) CreateSubcategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req subcategoryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	name, sl, msg := normalizeCategoryInput(req.Name, req.Slug)
	if msg != "" {
		writeErrorMsg(w, http.StatusUnprocessableEntity, msg)
		return
	}

	created, err := t.categoryStore.CreateSubcategory(categoryID, name, sl)
	if err != nil {
		writeError(w, err)
		return
	}

	t.listingCache.InvalidateAll(r.Context())
	writeJSON(w, http.StatusCreated, created)
}

// DeleteSubcategory removes a subcategory. Ads that referenced it keep
// their category and lose the subcategory.
func (t *Taxonomy) DeleteSubcategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "subID")
	if !ok {
		return
	}

	if err := t.categoryStore.DeleteSubcategory(id); err != nil {
		writeError(w, err)
		return
	}

	t.listingCache.InvalidateAll(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type reorderRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

// Reorder rewrites the display order of all categories. The body must
// list every category exactly once.
func (t *Taxonomy) Reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := t.categoryStore.Reorder(req.IDs); err != nil {
		writeError(w, err)
		return
	}

	t.listingCache.InvalidateAll(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": "reordered"})
}

// ReorderSubcategories rewrites the display order of one category's
// subcategories.
func (t *Taxonomy) ReorderSubcategories(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req reorderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := t.categoryStore.ReorderSubcategories(categoryID, req.IDs); err != nil {
		writeError(w, err)
		return
	}

	t.listingCache.InvalidateAll(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": "reordered"})
}

// normalizeCategoryInput trims the name, derives the slug from the name
// when absent, and validates both.
func normalizeCategoryInput(name, sl string) (string, string, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", "name is required"
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLen {
		return "", "", "name is too long (max 100 characters)"
	}

	sl = strings.TrimSpace(sl)
	if sl == "" {
		sl = slug.Generate(name)
	} else {
		sl = slug.Generate(sl)
	}
	if sl == "" {
		return "", "", "name does not produce a usable slug"
	}
	return name, sl, ""
}

// parseID reads a UUID URL parameter, writing a 400 on failure.
func parseID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
