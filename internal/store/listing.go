// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// listing.go builds the filtered, sorted, paginated reads over ads.
// The public listing always narrows to active ads; the moderation
// listing sees every status. Invalid pagination values are clamped to
// defaults instead of failing so the public surface stays resilient.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"brocante/internal/models"
)

// SortKey selects a listing order.
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortTitleAsc  SortKey = "title_asc"
)

// Pagination defaults and bounds.
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// orderClauses maps sort keys to ORDER BY clauses. Unknown keys fall
// back to newest-first.
var orderClauses = map[SortKey]string{
	SortNewest:    "a.created_at DESC",
	SortPriceAsc:  "a.price ASC, a.created_at DESC",
	SortPriceDesc: "a.price DESC, a.created_at DESC",
	SortTitleAsc:  "a.title ASC",
}

// PublicQuery filters the public listing. Search matches title or
// description, case-insensitively.
type PublicQuery struct {
	CategorySlug    string
	SubcategorySlug string
	Search          string
	Sort            SortKey
	Page            int
	Limit           int
}

// ModerationQuery filters the administrative listing. Status empty
// means every status; Search additionally matches the owner's name and
// email.
type ModerationQuery struct {
	Status       models.AdStatus
	CategorySlug string
	Search       string
	Page         int
	Limit        int
}

// clampPage normalizes page/limit: non-positive values fall back to
// defaults, limit is capped.
func clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

const listingSelect = `
	SELECT a.id, a.owner_id, a.category_id, a.subcategory_id, a.title, a.description,
	       a.price, a.condition, a.location, a.status, a.featured, a.views,
	       a.dynamic_fields, a.created_at, a.updated_at,
	       c.name, sc.name, u.first_name || ' ' || u.last_name,
	       COALESCE(img.filenames, '')
	FROM ads a
	JOIN categories c ON c.id = a.category_id
	JOIN users u ON u.id = a.owner_id
	LEFT JOIN subcategories sc ON sc.id = a.subcategory_id
	LEFT JOIN LATERAL (
		SELECT string_agg(ai.filename, ',' ORDER BY ai.order_index) AS filenames
		FROM ad_images ai WHERE ai.ad_id = a.id
	) img ON TRUE
`

const listingCount = `
	SELECT COUNT(*)
	FROM ads a
	JOIN categories c ON c.id = a.category_id
	JOIN users u ON u.id = a.owner_id
	LEFT JOIN subcategories sc ON sc.id = a.subcategory_id
`

// ListPublic returns one page of publicly visible ads plus the total
// match count. Only active ads ever appear, whatever the filters.
func (s *AdStore) ListPublic(q PublicQuery) ([]models.Ad, int, error) {
	page, limit := clampPage(q.Page, q.Limit)

	where := []string{"a.status = 'active'"}
	var args []any

	if q.CategorySlug != "" {
		args = append(args, q.CategorySlug)
		where = append(where, fmt.Sprintf("c.slug = $%d", len(args)))
	}
	if q.SubcategorySlug != "" {
		args = append(args, q.SubcategorySlug)
		where = append(where, fmt.Sprintf("sc.slug = $%d", len(args)))
	}
	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		where = append(where, fmt.Sprintf("(a.title ILIKE $%d OR a.description ILIKE $%d)", len(args), len(args)))
	}

	order, ok := orderClauses[q.Sort]
	if !ok {
		order = orderClauses[SortNewest]
	}

	return s.runListing(where, args, order, page, limit)
}

// ListForModeration returns one page of ads for the admin surface. No
// status restriction is applied unless one is requested.
func (s *AdStore) ListForModeration(q ModerationQuery) ([]models.Ad, int, error) {
	page, limit := clampPage(q.Page, q.Limit)

	var where []string
	var args []any

	if q.Status != "" {
		args = append(args, q.Status)
		where = append(where, fmt.Sprintf("a.status = $%d", len(args)))
	}
	if q.CategorySlug != "" {
		args = append(args, q.CategorySlug)
		where = append(where, fmt.Sprintf("c.slug = $%d", len(args)))
	}
	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(a.title ILIKE $%d OR u.first_name ILIKE $%d OR u.last_name ILIKE $%d OR u.email ILIKE $%d)",
			n, n, n, n))
	}

	return s.runListing(where, args, orderClauses[SortNewest], page, limit)
}

// runListing executes the count and page queries for the given filters.
func (s *AdStore) runListing(where []string, args []any, order string, page, limit int) ([]models.Ad, int, error) {
	var clause string
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRow(listingCount+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count listing: %w", err)
	}

	pageArgs := append(args, limit, (page-1)*limit)
	query := fmt.Sprintf("%s%s ORDER BY %s LIMIT $%d OFFSET $%d",
		listingSelect, clause, order, len(args)+1, len(args)+2)

	rows, err := s.db.Query(query, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("query listing: %w", err)
	}
	defer rows.Close()

	items := []models.Ad{}
	for rows.Next() {
		a, err := scanListingRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *a)
	}
	return items, total, rows.Err()
}

// scanListingRow scans one joined listing row including the aggregated
// image filename list.
func scanListingRow(rows *sql.Rows) (*models.Ad, error) {
	var a models.Ad
	var dynamic []byte
	var filenames string
	err := rows.Scan(
		&a.ID, &a.OwnerID, &a.CategoryID, &a.SubcategoryID, &a.Title, &a.Description,
		&a.Price, &a.Condition, &a.Location, &a.Status, &a.Featured, &a.Views,
		&dynamic, &a.CreatedAt, &a.UpdatedAt,
		&a.CategoryName, &a.SubcategoryName, &a.OwnerName, &filenames,
	)
	if err != nil {
		return nil, fmt.Errorf("scan listing row: %w", err)
	}
	if len(dynamic) > 0 {
		if err := json.Unmarshal(dynamic, &a.DynamicFields); err != nil {
			return nil, fmt.Errorf("decode dynamic fields: %w", err)
		}
	}
	a.Images = []string{}
	if filenames != "" {
		a.Images = strings.Split(filenames, ",")
	}
	return &a, nil
}
