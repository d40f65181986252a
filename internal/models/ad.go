// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// AdStatus is the moderation state of an ad. The set is closed: adding a
// status means extending the transition table below.
type AdStatus string

const (
	StatusPending  AdStatus = "pending"
	StatusActive   AdStatus = "active"
	StatusSold     AdStatus = "sold"
	StatusExpired  AdStatus = "expired"
	StatusRejected AdStatus = "rejected"
)

// AdStatuses lists every valid ad status, used for filter validation.
var AdStatuses = []AdStatus{
	StatusPending, StatusActive, StatusSold, StatusExpired, StatusRejected,
}

// Valid reports whether s is one of the known statuses.
func (s AdStatus) Valid() bool {
	for _, st := range AdStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// adTransitions is the complete lifecycle table. Any (from, to) pair not
// present here is invalid. rejected → active is the one re-entry from a
// terminal state (moderator re-approval).
var adTransitions = map[AdStatus][]AdStatus{
	StatusPending:  {StatusActive, StatusRejected},
	StatusActive:   {StatusSold, StatusExpired},
	StatusRejected: {StatusActive},
}

// CanTransition reports whether an ad may move from one status to another.
func CanTransition(from, to AdStatus) bool {
	for _, next := range adTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Condition describes the physical state of the item being sold.
type Condition string

const (
	ConditionNew       Condition = "new"
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
	ConditionForParts  Condition = "for-parts"
)

// Conditions lists every valid item condition.
var Conditions = []Condition{
	ConditionNew, ConditionExcellent, ConditionGood, ConditionFair, ConditionForParts,
}

// Valid reports whether c is one of the known conditions.
func (c Condition) Valid() bool {
	for _, cond := range Conditions {
		if c == cond {
			return true
		}
	}
	return false
}

// Ad is a single classified listing. SubcategoryID, when set, always
// references a subcategory of CategoryID. DynamicFields holds the values
// submitted against the category's form schema at creation time; it is a
// snapshot, later schema edits do not touch it.
type Ad struct {
	ID            uuid.UUID         `json:"id"`
	OwnerID       uuid.UUID         `json:"owner_id"`
	CategoryID    uuid.UUID         `json:"category_id"`
	SubcategoryID *uuid.UUID        `json:"subcategory_id,omitempty"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Price         float64           `json:"price"`
	Condition     Condition         `json:"condition"`
	Location      string            `json:"location"`
	Status        AdStatus          `json:"status"`
	Featured      bool              `json:"featured"`
	Views         int               `json:"views"`
	DynamicFields map[string]string `json:"dynamic_fields,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`

	// Virtual fields populated by listing queries.
	CategoryName    string   `json:"category_name,omitempty"`
	SubcategoryName *string  `json:"subcategory_name,omitempty"`
	OwnerName       string   `json:"owner_name,omitempty"`
	Images          []string `json:"images"`
}

// AdImage is the metadata row for one uploaded picture of an ad. The
// bytes live in object storage under Filename; OrderIndex is dense and
// 0-based, index 0 is the primary image.
type AdImage struct {
	ID           uuid.UUID `json:"id"`
	AdID         uuid.UUID `json:"ad_id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	OrderIndex   int       `json:"order_index"`
	CreatedAt    time.Time `json:"created_at"`
}
