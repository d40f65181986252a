// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package apperr defines the domain error taxonomy. Stores and services
// return these types; handlers map them to HTTP statuses without
// inspecting error strings. Anything not in this taxonomy is treated as
// an internal failure.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ConflictError reports a uniqueness violation, e.g. a duplicate slug
// within its governing scope or a category that still has ads.
type ConflictError struct {
	Resource string // "category", "subcategory", "user", ...
	Detail   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Resource, e.Detail)
}

// Conflict builds a ConflictError.
func Conflict(resource, detail string) *ConflictError {
	return &ConflictError{Resource: resource, Detail: detail}
}

// NotFoundError reports a missing entity, typically an unknown parent id
// or slug.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// NotFound builds a NotFoundError.
func NotFound(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// ValidationError carries every failing field of a request, not just the
// first one found.
type ValidationError struct {
	Fields map[string]string // field name → human-readable problem
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "validation failed: " + strings.Join(names, ", ")
}

// Validation builds a ValidationError from field → message pairs.
func Validation(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// ValidationField builds a ValidationError for a single field.
func ValidationField(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// InvalidTransitionError reports an ad lifecycle action that is not
// permitted from the ad's current status. The caller can re-query the
// status and retry with a valid action.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s → %s", e.From, e.To)
}

// InvalidTransition builds an InvalidTransitionError.
func InvalidTransition(from, to string) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to}
}

// Status maps a domain error to its HTTP status code. Unrecognised
// errors are internal failures.
func Status(err error) int {
	var (
		conflict   *ConflictError
		notFound   *NotFoundError
		validation *ValidationError
		transition *InvalidTransitionError
	)
	switch {
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation):
		return http.StatusUnprocessableEntity
	case errors.As(err, &transition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
