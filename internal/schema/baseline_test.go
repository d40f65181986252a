// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package schema

import (
	"errors"
	"strings"
	"testing"

	"brocante/internal/apperr"
	"brocante/internal/models"
)

func validAd() *models.Ad {
	return &models.Ad{
		Title:       "Vélo de course vintage",
		Description: "Peugeot des années 80, très bon état.",
		Price:       150,
		Condition:   models.ConditionGood,
		Location:    "Lyon",
	}
}

func TestValidateBaselineValid(t *testing.T) {
	if err := ValidateBaseline(validAd()); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	// Free is a legal price.
	ad := validAd()
	ad.Price = 0
	if err := ValidateBaseline(ad); err != nil {
		t.Fatalf("price 0 should be valid, got %v", err)
	}
}

func TestValidateBaselineAggregates(t *testing.T) {
	ad := &models.Ad{
		Title:       "",
		Description: "",
		Price:       -5,
		Condition:   "pristine",
		Location:    "",
	}

	var verr *apperr.ValidationError
	if !errors.As(ValidateBaseline(ad), &verr) {
		t.Fatal("expected ValidationError")
	}
	for _, field := range []string{"title", "description", "price", "condition", "location"} {
		if _, ok := verr.Fields[field]; !ok {
			t.Errorf("expected %q among failing fields, got %v", field, verr.Fields)
		}
	}
}

func TestValidateBaselineLengths(t *testing.T) {
	ad := validAd()
	ad.Title = strings.Repeat("a", 201)

	var verr *apperr.ValidationError
	if !errors.As(ValidateBaseline(ad), &verr) {
		t.Fatal("expected ValidationError")
	}
	if _, ok := verr.Fields["title"]; !ok {
		t.Errorf("expected title length violation, got %v", verr.Fields)
	}

	ad = validAd()
	ad.Description = strings.Repeat("b", 10_001)
	if !errors.As(ValidateBaseline(ad), &verr) {
		t.Fatal("expected ValidationError for long description")
	}
}
