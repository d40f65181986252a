// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// FieldType enumerates the input kinds a category form field can take.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeSelect   FieldType = "select"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeNumber   FieldType = "number"
	FieldTypeEmail    FieldType = "email"
	FieldTypeTel      FieldType = "tel"
)

// FieldTypes lists every valid field type, used for boundary validation.
var FieldTypes = []FieldType{
	FieldTypeText, FieldTypeTextarea, FieldTypeSelect, FieldTypeCheckbox,
	FieldTypeRadio, FieldTypeNumber, FieldTypeEmail, FieldTypeTel,
}

// Valid reports whether t is one of the known field types.
func (t FieldType) Valid() bool {
	for _, ft := range FieldTypes {
		if t == ft {
			return true
		}
	}
	return false
}

// HasOptions reports whether this field type carries an option list.
// Only select, checkbox and radio fields do; the option list is ordered
// and must be non-empty for them, and absent for every other type.
func (t FieldType) HasOptions() bool {
	return t == FieldTypeSelect || t == FieldTypeCheckbox || t == FieldTypeRadio
}

// FormField is one entry of a category's dynamic submission form.
// OrderIndex is dense and 1-based within the owning category.
type FormField struct {
	ID         uuid.UUID `json:"id"`
	CategoryID uuid.UUID `json:"category_id"`
	Type       FieldType `json:"field_type"`
	Name       string    `json:"name"`
	Label      string    `json:"label"`
	Options    []string  `json:"options,omitempty"`
	Required   bool      `json:"required"`
	OrderIndex int       `json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
}

// HasOption reports whether value is one of the field's declared options.
func (f *FormField) HasOption(value string) bool {
	for _, o := range f.Options {
		if o == value {
			return true
		}
	}
	return false
}
