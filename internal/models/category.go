// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a top-level classified-ads category. Slugs are unique
// across the whole site; OrderIndex values are dense and 1-based.
type Category struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	Icon       string    `json:"icon"`
	OrderIndex int       `json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`

	// Virtual fields populated by store methods.
	Subcategories []Subcategory `json:"subcategories"`
	AdCount       int           `json:"ad_count,omitempty"`
}

// Subcategory is a second-level node owned by exactly one Category.
// Slugs are unique within the owning category, OrderIndex is dense and
// 1-based among siblings.
type Subcategory struct {
	ID         uuid.UUID `json:"id"`
	CategoryID uuid.UUID `json:"category_id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	OrderIndex int       `json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
}
