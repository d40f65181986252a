// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"

	"brocante/internal/models"
	"brocante/internal/store"
)

// Fields groups the per-category form schema HTTP handlers. The list
// endpoint is public so the frontend can render the submit form; all
// mutations are admin-only.
type Fields struct {
	fieldStore *store.FieldStore
}

// NewFields creates a new Fields handler group.
func NewFields(fieldStore *store.FieldStore) *Fields {
	return &Fields{fieldStore: fieldStore}
}

// List returns a category's form fields in display order.
func (f *Fields) List(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	fields, err := f.fieldStore.ListByCategory(categoryID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"fields": fields})
}

type fieldRequest struct {
	Type     string   `json:"field_type"`
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Options  []string `json:"options"`
	Required bool     `json:"required"`
}

// Add appends a field to a category's form schema.
func (f *Fields) Add(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req fieldRequest
	if !decodeBody(w, r, &req) {
		return
	}

	field := &models.FormField{
		CategoryID: categoryID,
		Type:       models.FieldType(req.Type),
		Name:       strings.TrimSpace(req.Name),
		Label:      strings.TrimSpace(req.Label),
		Options:    trimOptions(req.Options),
		Required:   req.Required,
	}

	created, err := f.fieldStore.Add(field)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update rewrites an existing field's definition. Ads already submitted
// keep their snapshot; only future submissions see the change.
func (f *Fields) Update(w http.ResponseWriter, r *http.Request) {
	fieldID, ok := parseID(w, r, "fieldID")
	if !ok {
		return
	}

	var req fieldRequest
	if !decodeBody(w, r, &req) {
		return
	}

	field := &models.FormField{
		ID:       fieldID,
		Type:     models.FieldType(req.Type),
		Name:     strings.TrimSpace(req.Name),
		Label:    strings.TrimSpace(req.Label),
		Options:  trimOptions(req.Options),
		Required: req.Required,
	}

	if err := f.fieldStore.Update(field); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Delete removes a field from the schema and closes the ordering gap.
func (f *Fields) Delete(w http.ResponseWriter, r *http.Request) {
	fieldID, ok := parseID(w, r, "fieldID")
	if !ok {
		return
	}

	if err := f.fieldStore.Delete(fieldID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Reorder rewrites the display order of a category's fields. The body
// must list every field of the category exactly once.
func (f *Fields) Reorder(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req reorderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := f.fieldStore.Reorder(categoryID, req.IDs); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reordered"})
}

func trimOptions(options []string) []string {
	var out []string
	for _, o := range options {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
