// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "testing"

// TestCanTransition walks the full status matrix. Everything not
// explicitly allowed must be refused, including self-transitions.
func TestCanTransition(t *testing.T) {
	allowed := map[[2]AdStatus]bool{
		{StatusPending, StatusActive}:   true,
		{StatusPending, StatusRejected}: true,
		{StatusActive, StatusSold}:      true,
		{StatusActive, StatusExpired}:   true,
		{StatusRejected, StatusActive}:  true,
	}

	for _, from := range AdStatuses {
		for _, to := range AdStatuses {
			want := allowed[[2]AdStatus{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestCanTransitionUnknownStatus(t *testing.T) {
	if CanTransition(AdStatus("bogus"), StatusActive) {
		t.Error("unknown source status must not transition")
	}
	if CanTransition(StatusPending, AdStatus("bogus")) {
		t.Error("unknown target status must not transition")
	}
}

func TestAdStatusValid(t *testing.T) {
	for _, st := range AdStatuses {
		if !st.Valid() {
			t.Errorf("%s should be valid", st)
		}
	}
	if AdStatus("archived").Valid() {
		t.Error("archived is not a known status")
	}
	if AdStatus("").Valid() {
		t.Error("empty status is not valid")
	}
}

func TestConditionValid(t *testing.T) {
	for _, c := range Conditions {
		if !c.Valid() {
			t.Errorf("%s should be valid", c)
		}
	}
	if Condition("mint").Valid() {
		t.Error("mint is not a known condition")
	}
}
