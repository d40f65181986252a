// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"brocante/internal/apperr"
	"brocante/internal/models"
)

// CategoryStore manages the two-level category/subcategory taxonomy.
// Category slugs are unique site-wide; subcategory slugs are unique
// within their owning category. Order indices are dense and 1-based per
// scope after every successful mutation.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, slug, icon, order_index, created_at`

func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(&c.ID, &c.Name, &c.Slug, &c.Icon, &c.OrderIndex, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories in display order, each carrying its
// ordered subcategories. Subcategories is always a slice, empty when a
// category has none.
func (s *CategoryStore) List() ([]models.Category, error) {
	rows, err := s.db.Query(`SELECT ` + categoryColumns + ` FROM categories ORDER BY order_index`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	items := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Subcategories = []models.Subcategory{}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	subs, err := s.db.Query(`
		SELECT id, category_id, name, slug, order_index, created_at
		FROM subcategories
		ORDER BY category_id, order_index
	`)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	defer subs.Close()

	byCategory := make(map[uuid.UUID][]models.Subcategory)
	for subs.Next() {
		var sub models.Subcategory
		if err := subs.Scan(&sub.ID, &sub.CategoryID, &sub.Name, &sub.Slug, &sub.OrderIndex, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subcategory: %w", err)
		}
		byCategory[sub.CategoryID] = append(byCategory[sub.CategoryID], sub)
	}
	if err := subs.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		if list, ok := byCategory[items[i].ID]; ok {
			items[i].Subcategories = list
		}
	}
	return items, nil
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves a category by its slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(slug string) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, slug)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// FindSubcategory retrieves a subcategory by slug within one category.
// Returns nil if not found.
func (s *CategoryStore) FindSubcategory(categoryID uuid.UUID, slug string) (*models.Subcategory, error) {
	var sub models.Subcategory
	err := s.db.QueryRow(`
		SELECT id, category_id, name, slug, order_index, created_at
		FROM subcategories WHERE category_id = $1 AND slug = $2
	`, categoryID, slug).Scan(&sub.ID, &sub.CategoryID, &sub.Name, &sub.Slug, &sub.OrderIndex, &sub.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find subcategory: %w", err)
	}
	return &sub, nil
}

// Create inserts a new category at the end of the display order. Fails
// with a conflict if the slug is already taken anywhere on the site.
func (s *CategoryStore) Create(name, slug, icon string) (*models.Category, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS (SELECT 1 FROM categories WHERE slug = $1)`, slug).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check category slug: %w", err)
	}
	if exists {
		return nil, apperr.Conflict("category", fmt.Sprintf("slug %q already exists", slug))
	}

	// Append at the end of the current order.
	var next int
	if err := tx.QueryRow(`SELECT COALESCE(MAX(order_index), 0) + 1 FROM categories`).Scan(&next); err != nil {
		return nil, fmt.Errorf("next category order: %w", err)
	}

	row := tx.QueryRow(`
		INSERT INTO categories (name, slug, icon, order_index)
		VALUES ($1, $2, $3, $4)
		RETURNING `+categoryColumns,
		name, slug, icon, next,
	)
	c, err := scanCategory(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("category", fmt.Sprintf("slug %q already exists", slug))
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	c.Subcategories = []models.Subcategory{}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create category: %w", err)
	}
	return c, nil
}

// CreateSubcategory inserts a new subcategory at the end of its parent's
// order. Fails with NotFound if the category is unknown, Conflict if the
// slug collides within that category.
func (s *CategoryStore) CreateSubcategory(categoryID uuid.UUID, name, slug string) (*models.Subcategory, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, categoryID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check category: %w", err)
	}
	if !exists {
		return nil, apperr.NotFound("category")
	}

	if err := tx.QueryRow(`
		SELECT EXISTS (SELECT 1 FROM subcategories WHERE category_id = $1 AND slug = $2)
	`, categoryID, slug).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check subcategory slug: %w", err)
	}
	if exists {
		return nil, apperr.Conflict("subcategory", fmt.Sprintf("slug %q already exists in this category", slug))
	}

	var next int
	if err := tx.QueryRow(`
		SELECT COALESCE(MAX(order_index), 0) + 1 FROM subcategories WHERE category_id = $1
	`, categoryID).Scan(&next); err != nil {
		return nil, fmt.Errorf("next subcategory order: %w", err)
	}

	var sub models.Subcategory
	err = tx.QueryRow(`
		INSERT INTO subcategories (category_id, name, slug, order_index)
		VALUES ($1, $2, $3, $4)
		RETURNING id, category_id, name, slug, order_index, created_at
	`, categoryID, name, slug, next).Scan(
		&sub.ID, &sub.CategoryID, &sub.Name, &sub.Slug, &sub.OrderIndex, &sub.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("subcategory", fmt.Sprintf("slug %q already exists in this category", slug))
		}
		return nil, fmt.Errorf("create subcategory: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create subcategory: %w", err)
	}
	return &sub, nil
}

// Update modifies a category's name, slug and icon. The new slug must
// not collide with another category.
func (s *CategoryStore) Update(id uuid.UUID, name, slug, icon string) error {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS (SELECT 1 FROM categories WHERE slug = $1 AND id <> $2)
	`, slug, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check category slug: %w", err)
	}
	if exists {
		return apperr.Conflict("category", fmt.Sprintf("slug %q already exists", slug))
	}

	res, err := s.db.Exec(`
		UPDATE categories SET name = $1, slug = $2, icon = $3 WHERE id = $4
	`, name, slug, icon, id)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("category", fmt.Sprintf("slug %q already exists", slug))
		}
		return fmt.Errorf("update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("category")
	}
	return nil
}

// Delete removes a category together with its subcategories and form
// fields, then compacts the remaining category order. A category that
// still has ads cannot be deleted; the ads must be removed or reassigned
// first.
func (s *CategoryStore) Delete(id uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var adCount int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM ads WHERE category_id = $1`, id).Scan(&adCount); err != nil {
		return fmt.Errorf("count category ads: %w", err)
	}
	if adCount > 0 {
		return apperr.Conflict("category", fmt.Sprintf("%d ads still reference this category", adCount))
	}

	// Subcategories and form fields cascade via foreign keys.
	res, err := tx.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperr.Conflict("category", "ads still reference this category")
		}
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("category")
	}

	if err := compactOrder(tx, "categories", "", uuid.Nil, 1); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete category: %w", err)
	}
	return nil
}

// DeleteSubcategory removes a single subcategory and compacts the order
// of its remaining siblings. Ads referencing it keep their category but
// lose the subcategory (set null by the foreign key).
func (s *CategoryStore) DeleteSubcategory(id uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var categoryID uuid.UUID
	err = tx.QueryRow(`DELETE FROM subcategories WHERE id = $1 RETURNING category_id`, id).Scan(&categoryID)
	if err == sql.ErrNoRows {
		return apperr.NotFound("subcategory")
	}
	if err != nil {
		return fmt.Errorf("delete subcategory: %w", err)
	}

	if err := compactOrder(tx, "subcategories", "category_id", categoryID, 1); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete subcategory: %w", err)
	}
	return nil
}

// Reorder applies a complete new ordering of all categories. The id list
// must match the current category set exactly; indices are rewritten as
// the contiguous range 1..n in one transaction.
func (s *CategoryStore) Reorder(orderedIDs []uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := reorderSiblings(tx, "categories", "", uuid.Nil, orderedIDs, 1); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reorder categories: %w", err)
	}
	return nil
}

// ReorderSubcategories applies a complete new ordering of one category's
// subcategories, assigning 1..n.
func (s *CategoryStore) ReorderSubcategories(categoryID uuid.UUID, orderedIDs []uuid.UUID) error {
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

	if err := reorderSiblings(tx, "subcategories", "category_id", categoryID, orderedIDs, 1); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reorder subcategories: %w", err)
	}
	return nil
}
