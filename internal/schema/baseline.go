// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package schema

import (
	"strings"
	"unicode/utf8"

	"brocante/internal/apperr"
	"brocante/internal/models"
)

// Baseline field limits. These fields are intrinsic to every ad and are
// never part of a category's dynamic schema.
const (
	maxTitleLen       = 200
	maxDescriptionLen = 10_000
	maxLocationLen    = 200
)

// ValidateBaseline checks the fixed fields every ad carries regardless
// of category. Like dynamic validation, every violation is reported.
func ValidateBaseline(ad *models.Ad) error {
	problems := map[string]string{}

	if strings.TrimSpace(ad.Title) == "" {
		problems["title"] = "title is required"
	} else if utf8.RuneCountInString(ad.Title) > maxTitleLen {
		problems["title"] = "title is too long (max 200 characters)"
	}

	if strings.TrimSpace(ad.Description) == "" {
		problems["description"] = "description is required"
	} else if utf8.RuneCountInString(ad.Description) > maxDescriptionLen {
		problems["description"] = "description is too long (max 10,000 characters)"
	}

	if ad.Price < 0 {
		problems["price"] = "price cannot be negative"
	}

	if !ad.Condition.Valid() {
		problems["condition"] = "unknown condition"
	}

	if strings.TrimSpace(ad.Location) == "" {
		problems["location"] = "location is required"
	} else if utf8.RuneCountInString(ad.Location) > maxLocationLen {
		problems["location"] = "location is too long (max 200 characters)"
	}

	if len(problems) > 0 {
		return apperr.Validation(problems)
	}
	return nil
}
