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
)

// AdStore manages ads, their images and their lifecycle status. The ad
// row and its image rows always change together inside one transaction,
// so readers never see an ad without its images or a half-applied
// status change.
type AdStore struct {
	db *sql.DB
}

// NewAdStore returns a new AdStore.
func NewAdStore(db *sql.DB) *AdStore {
	return &AdStore{db: db}
}

const adColumns = `id, owner_id, category_id, subcategory_id, title, description, price,
	condition, location, status, featured, views, dynamic_fields, created_at, updated_at`

func scanAd(scanner interface{ Scan(...any) error }) (*models.Ad, error) {
	var a models.Ad
	var dynamic []byte
	err := scanner.Scan(
		&a.ID, &a.OwnerID, &a.CategoryID, &a.SubcategoryID, &a.Title, &a.Description,
		&a.Price, &a.Condition, &a.Location, &a.Status, &a.Featured, &a.Views,
		&dynamic, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(dynamic) > 0 {
		if err := json.Unmarshal(dynamic, &a.DynamicFields); err != nil {
			return nil, fmt.Errorf("decode dynamic fields: %w", err)
		}
	}
	a.Images = []string{}
	return &a, nil
}

// Create persists a new ad together with its image metadata in one
// transaction. The images receive contiguous 0-based order indices in
// the order given; index 0 is the primary image. SubcategoryID, when
// set, must belong to the ad's category.
func (s *AdStore) Create(ad *models.Ad, images []models.AdImage) (*models.Ad, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, ad.CategoryID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check category: %w", err)
	}
	if !exists {
		return nil, apperr.NotFound("category")
	}

	if ad.SubcategoryID != nil {
		if err := tx.QueryRow(`
			SELECT EXISTS (SELECT 1 FROM subcategories WHERE id = $1 AND category_id = $2)
		`, *ad.SubcategoryID, ad.CategoryID).Scan(&exists); err != nil {
			return nil, fmt.Errorf("check subcategory: %w", err)
		}
		if !exists {
			return nil, apperr.ValidationField("subcategory", "does not belong to the chosen category")
		}
	}

	dynamic, err := json.Marshal(ad.DynamicFields)
	if err != nil {
		return nil, fmt.Errorf("encode dynamic fields: %w", err)
	}
	if ad.DynamicFields == nil {
		dynamic = []byte(`{}`)
	}

	row := tx.QueryRow(`
		INSERT INTO ads (owner_id, category_id, subcategory_id, title, description,
		                 price, condition, location, status, dynamic_fields)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+adColumns,
		ad.OwnerID, ad.CategoryID, ad.SubcategoryID, ad.Title, ad.Description,
		ad.Price, ad.Condition, ad.Location, ad.Status, dynamic,
	)
	created, err := scanAd(row)
	if err != nil {
		return nil, fmt.Errorf("create ad: %w", err)
	}

	for i, img := range images {
		_, err := tx.Exec(`
			INSERT INTO ad_images (ad_id, filename, original_name, order_index)
			VALUES ($1, $2, $3, $4)
		`, created.ID, img.Filename, img.OriginalName, i)
		if err != nil {
			return nil, fmt.Errorf("create ad image %d: %w", i, err)
		}
		created.Images = append(created.Images, img.Filename)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create ad: %w", err)
	}
	return created, nil
}

// FindByID retrieves an ad with its images. Returns nil if not found.
func (s *AdStore) FindByID(id uuid.UUID) (*models.Ad, error) {
	row := s.db.QueryRow(`SELECT `+adColumns+` FROM ads WHERE id = $1`, id)
	a, err := scanAd(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find ad by id: %w", err)
	}
	if err := s.loadImages(a); err != nil {
		return nil, err
	}
	return a, nil
}

// FindForDisplay retrieves an ad for detail display, incrementing its
// view counter by exactly one in the same statement. Returns nil if not
// found.
func (s *AdStore) FindForDisplay(id uuid.UUID) (*models.Ad, error) {
	row := s.db.QueryRow(`
		UPDATE ads SET views = views + 1 WHERE id = $1
		RETURNING `+adColumns, id)
	a, err := scanAd(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find ad for display: %w", err)
	}
	if err := s.loadImages(a); err != nil {
		return nil, err
	}
	if err := s.loadNames(a); err != nil {
		return nil, err
	}
	return a, nil
}

// Transition moves an ad to a new lifecycle status. The current status
// is locked and checked against the transition table inside the
// transaction, so a concurrent writer cannot race the check: the ad
// either moves through a permitted edge or stays untouched.
func (s *AdStore) Transition(id uuid.UUID, to models.AdStatus) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var from models.AdStatus
	err = tx.QueryRow(`SELECT status FROM ads WHERE id = $1 FOR UPDATE`, id).Scan(&from)
	if err == sql.ErrNoRows {
		return apperr.NotFound("ad")
	}
	if err != nil {
		return fmt.Errorf("lock ad status: %w", err)
	}

	if !models.CanTransition(from, to) {
		return apperr.InvalidTransition(string(from), string(to))
	}

	if _, err := tx.Exec(`UPDATE ads SET status = $1, updated_at = NOW() WHERE id = $2`, to, id); err != nil {
		return fmt.Errorf("update ad status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ad transition: %w", err)
	}
	return nil
}

// ExpireOlderThan marks active ads older than the given number of days
// as expired and returns how many were affected. Driven by the process
// scheduler, not by request handling.
func (s *AdStore) ExpireOlderThan(days int) (int64, error) {
	res, err := s.db.Exec(`
		UPDATE ads SET status = 'expired', updated_at = NOW()
		WHERE status = 'active' AND created_at < NOW() - make_interval(days => $1)
	`, days)
	if err != nil {
		return 0, fmt.Errorf("expire ads: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expire ads rows: %w", err)
	}
	return n, nil
}

// ListByOwner returns all of one user's ads, newest first, any status,
// with images.
func (s *AdStore) ListByOwner(ownerID uuid.UUID) ([]models.Ad, error) {
	rows, err := s.db.Query(`
		SELECT `+adColumns+` FROM ads
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list ads by owner: %w", err)
	}
	defer rows.Close()

	items := []models.Ad{}
	for rows.Next() {
		a, err := scanAd(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ad: %w", err)
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		if err := s.loadImages(&items[i]); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// Delete removes an ad and returns the filenames of its images so the
// caller can delete the blobs from object storage. Image rows cascade.
func (s *AdStore) Delete(id uuid.UUID) ([]string, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query(`SELECT filename FROM ad_images WHERE ad_id = $1 ORDER BY order_index`, id)
	if err != nil {
		return nil, fmt.Errorf("list ad images: %w", err)
	}
	var filenames []string
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan ad image: %w", err)
		}
		filenames = append(filenames, f)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	res, err := tx.Exec(`DELETE FROM ads WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("delete ad: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperr.NotFound("ad")
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit delete ad: %w", err)
	}
	return filenames, nil
}

// ReorderImages applies a complete new ordering of one ad's images,
// assigning 0..n-1. Index 0 becomes the primary image.
func (s *AdStore) ReorderImages(adID uuid.UUID, orderedIDs []uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS (SELECT 1 FROM ads WHERE id = $1)`, adID).Scan(&exists); err != nil {
		return fmt.Errorf("check ad: %w", err)
	}
	if !exists {
		return apperr.NotFound("ad")
	}

	if err := reorderSiblings(tx, "ad_images", "ad_id", adID, orderedIDs, 0); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reorder images: %w", err)
	}
	return nil
}

// Images returns the image rows of one ad in display order.
func (s *AdStore) Images(adID uuid.UUID) ([]models.AdImage, error) {
	rows, err := s.db.Query(`
		SELECT id, ad_id, filename, original_name, order_index, created_at
		FROM ad_images WHERE ad_id = $1 ORDER BY order_index
	`, adID)
	if err != nil {
		return nil, fmt.Errorf("list ad images: %w", err)
	}
	defer rows.Close()

	items := []models.AdImage{}
	for rows.Next() {
		var img models.AdImage
		if err := rows.Scan(&img.ID, &img.AdID, &img.Filename, &img.OriginalName, &img.OrderIndex, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ad image: %w", err)
		}
		items = append(items, img)
	}
	return items, rows.Err()
}

// CountByStatus returns how many ads are in the given status.
func (s *AdStore) CountByStatus(status models.AdStatus) (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM ads WHERE status = $1`, status).Scan(&count); err != nil {
		return 0, fmt.Errorf("count ads by status: %w", err)
	}
	return count, nil
}

// Count returns the total number of ads.
func (s *AdStore) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM ads`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count ads: %w", err)
	}
	return count, nil
}

// loadImages populates the ad's ordered image filename list.
func (s *AdStore) loadImages(a *models.Ad) error {
	rows, err := s.db.Query(`
		SELECT filename FROM ad_images WHERE ad_id = $1 ORDER BY order_index
	`, a.ID)
	if err != nil {
		return fmt.Errorf("load ad images: %w", err)
	}
	defer rows.Close()

	a.Images = []string{}
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return fmt.Errorf("scan ad image: %w", err)
		}
		a.Images = append(a.Images, f)
	}
	return rows.Err()
}

// loadNames populates category, subcategory and owner display names.
func (s *AdStore) loadNames(a *models.Ad) error {
	err := s.db.QueryRow(`
		SELECT c.name, sc.name, u.first_name || ' ' || u.last_name
		FROM ads a
		JOIN categories c ON c.id = a.category_id
		JOIN users u ON u.id = a.owner_id
		LEFT JOIN subcategories sc ON sc.id = a.subcategory_id
		WHERE a.id = $1
	`, a.ID).Scan(&a.CategoryName, &a.SubcategoryName, &a.OwnerName)
	if err != nil {
		return fmt.Errorf("load ad names: %w", err)
	}
	return nil
}
