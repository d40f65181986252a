// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package schema validates dynamic form field definitions and ad
// submissions against them. It is pure logic: the ordered field list
// comes from the store, the payload from the request, and validation
// reports every failing field at once.
package schema

import (
	"regexp"
	"strconv"
	"strings"

	"brocante/internal/apperr"
	"brocante/internal/models"
)

var (
	// fieldNameRe restricts machine names to form-safe identifiers.
	fieldNameRe = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,99}$`)
	emailRe     = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	telAllowed  = regexp.MustCompile(`^[0-9+\-().\s]+$`)
)

// checkbox submissions arrive as a single string with comma-separated
// selections, matching how the original form serialises multi-selects.
const checkboxSeparator = ","

// ValidateDefinition checks a field definition before it is persisted.
// Choice types (select, checkbox, radio) require a non-empty ordered
// option list; every other type must not carry options.
func ValidateDefinition(f *models.FormField) error {
	problems := map[string]string{}

	if !f.Type.Valid() {
		problems["field_type"] = "unknown field type"
	}
	if !fieldNameRe.MatchString(f.Name) {
		problems["name"] = "must start with a letter and contain only lowercase letters, digits, '-' or '_'"
	}
	if strings.TrimSpace(f.Label) == "" {
		problems["label"] = "label is required"
	}

	if f.Type.Valid() {
		switch {
		case f.Type.HasOptions() && len(f.Options) == 0:
			problems["options"] = "at least one option is required for " + string(f.Type) + " fields"
		case !f.Type.HasOptions() && len(f.Options) > 0:
			problems["options"] = string(f.Type) + " fields cannot have options"
		}
	}
	for _, o := range f.Options {
		if strings.TrimSpace(o) == "" {
			problems["options"] = "options cannot be blank"
			break
		}
	}

	if len(problems) > 0 {
		return apperr.Validation(problems)
	}
	return nil
}

// ValidateSubmission checks a submitted payload against the category's
// ordered field list and returns the normalized payload (trimmed values,
// unknown keys dropped). Every violated field is reported, not just the
// first.
func ValidateSubmission(fields []models.FormField, payload map[string]string) (map[string]string, error) {
	problems := map[string]string{}
	normalized := make(map[string]string, len(fields))

	for i := range fields {
		f := &fields[i]
		value := strings.TrimSpace(payload[f.Name])

		if value == "" {
			if f.Required {
				problems[f.Name] = f.Label + " is required"
			}
			continue
		}

		switch f.Type {
		case models.FieldTypeSelect, models.FieldTypeRadio:
			if !f.HasOption(value) {
				problems[f.Name] = "must be one of the available options"
				continue
			}
		case models.FieldTypeCheckbox:
			ok := true
			for _, v := range strings.Split(value, checkboxSeparator) {
				if !f.HasOption(strings.TrimSpace(v)) {
					ok = false
					break
				}
			}
			if !ok {
				problems[f.Name] = "contains a value that is not an available option"
				continue
			}
		case models.FieldTypeNumber:
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				problems[f.Name] = "must be a number"
				continue
			}
		case models.FieldTypeEmail:
			if !emailRe.MatchString(value) {
				problems[f.Name] = "must be a valid email address"
				continue
			}
		case models.FieldTypeTel:
			if !validTel(value) {
				problems[f.Name] = "must be a valid phone number"
				continue
			}
		}

		normalized[f.Name] = value
	}

	if len(problems) > 0 {
		return nil, apperr.Validation(problems)
	}
	return normalized, nil
}

// validTel accepts phone-looking strings: only dial characters and at
// least six digits.
func validTel(s string) bool {
	if !telAllowed.MatchString(s) {
		return false
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 6
}
