// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"brocante/internal/apperr"
	"brocante/internal/models"
	"brocante/internal/schema"
)

// FieldStore manages the dynamic form schema attached to each category.
// Field order is dense and 1-based within the category. Option lists are
// stored as a JSONB array, present only for choice-type fields.
type FieldStore struct {
	db *sql.DB
}

// NewFieldStore returns a new FieldStore.
func NewFieldStore(db *sql.DB) *FieldStore {
	return &FieldStore{db: db}
}

const fieldColumns = `id, category_id, field_type, name, label, options, required, order_index, created_at`

func scanField(scanner interface{ Scan(...any) error }) (*models.FormField, error) {
	var f models.FormField
	var options []byte
	err := scanner.Scan(
		&f.ID, &f.CategoryID, &f.Type, &f.Name, &f.Label,
		&options, &f.Required, &f.OrderIndex, &f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if options != nil {
		if err := json.Unmarshal(options, &f.Options); err != nil {
			return nil, fmt.Errorf("decode field options: %w", err)
		}
	}
	return &f, nil
}

// ListByCategory returns the category's fields in form order. A category
// with no custom fields returns an empty (never nil) slice.
func (s *FieldStore) ListByCategory(categoryID uuid.UUID) ([]models.FormField, error) {
	var exists bool
	if err := s.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, categoryID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check category: %w", err)
	}
	if !exists {
		return nil, apperr.NotFound("category")
	}

	rows, err := s.db.Query(`
		SELECT `+fieldColumns+` FROM form_fields
		WHERE category_id = $1
		ORDER BY order_index
	`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list form fields: %w", err)
	}
	defer rows.Close()

	items := []models.FormField{}
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, fmt.Errorf("scan form field: %w", err)
		}
		items = append(items, *f)
	}
	return items, rows.Err()
}

// Add appends a new field to the category's form. The definition is
// shape-checked first: choice types need a non-empty option list,
// everything else must not carry one.
func (s *FieldStore) Add(f *models.FormField) (*models.FormField, error) {
	if err := schema.ValidateDefinition(f); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, f.CategoryID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check category: %w", err)
	}
	if !exists {
		return nil, apperr.NotFound("category")
	}

	if err := tx.QueryRow(`
		SELECT EXISTS (SELECT 1 FROM form_fields WHERE category_id = $1 AND name = $2)
	`, f.CategoryID, f.Name).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check field name: %w", err)
	}
	if exists {
		return nil, apperr.Conflict("field", fmt.Sprintf("name %q already exists in this category", f.Name))
	}

	var next int
	if err := tx.QueryRow(`
		SELECT COALESCE(MAX(order_index), 0) + 1 FROM form_fields WHERE category_id = $1
	`, f.CategoryID).Scan(&next); err != nil {
		return nil, fmt.Errorf("next field order: %w", err)
	}

	options, err := encodeOptions(f)
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(`
		INSERT INTO form_fields (category_id, field_type, name, label, options, required, order_index)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+fieldColumns,
		f.CategoryID, f.Type, f.Name, f.Label, options, f.Required, next,
	)
	created, err := scanField(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("field", fmt.Sprintf("name %q already exists in this category", f.Name))
		}
		return nil, fmt.Errorf("create form field: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create field: %w", err)
	}
	return created, nil
}

// Update modifies a field's definition in place, keeping its position.
// Edits are not versioned: ads submitted under the old definition keep
// their stored values untouched.
func (s *FieldStore) Update(f *models.FormField) error {
	if err := schema.ValidateDefinition(f); err != nil {
		return err
	}

	options, err := encodeOptions(f)
	if err != nil {
		return err
	}

	res, err := s.db.Exec(`
		UPDATE form_fields
		SET field_type = $1, name = $2, label = $3, options = $4, required = $5
		WHERE id = $6
	`, f.Type, f.Name, f.Label, options, f.Required, f.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("field", fmt.Sprintf("name %q already exists in this category", f.Name))
		}
		return fmt.Errorf("update form field: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("field")
	}
	return nil
}

// Delete removes one field and compacts the order of its siblings.
func (s *FieldStore) Delete(id uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var categoryID uuid.UUID
	err = tx.QueryRow(`DELETE FROM form_fields WHERE id = $1 RETURNING category_id`, id).Scan(&categoryID)
	if err == sql.ErrNoRows {
		return apperr.NotFound("field")
	}
	if err != nil {
		return fmt.Errorf("delete form field: %w", err)
	}

	if err := compactOrder(tx, "form_fields", "category_id", categoryID, 1); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete field: %w", err)
	}
	return nil
}

// Reorder applies a complete new ordering of one category's fields,
// assigning 1..n atomically.
func (s *FieldStore) Reorder(categoryID uuid.UUID, orderedIDs []uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, categoryID).Scan(&exists); err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if !exists {
		return apperr.NotFound("category")
	}

	if err := reorderSiblings(tx, "form_fields", "category_id", categoryID, orderedIDs, 1); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reorder fields: %w", err)
	}
	return nil
}

// encodeOptions serialises the option list for storage. Fields without
// options store NULL, not an empty array.
func encodeOptions(f *models.FormField) (any, error) {
	if len(f.Options) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(f.Options)
	if err != nil {
		return nil, fmt.Errorf("encode field options: %w", err)
	}
	return data, nil
}
