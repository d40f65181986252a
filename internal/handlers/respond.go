// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the brocante API.
// Handlers are grouped by concern (auth, taxonomy, fields, ads, admin)
// and receive their dependencies through the handler struct. Every
// response body is JSON.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"brocante/internal/apperr"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps a domain error to its HTTP status and writes a JSON
// error body. Validation errors carry the per-field detail map so the
// frontend can annotate the form.
func writeError(w http.ResponseWriter, err error) {
	status := apperr.Status(err)

	var verr *apperr.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, status, map[string]any{
			"error":  verr.Error(),
			"fields": verr.Fields,
		})
		return
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
		writeJSON(w, status, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeErrorMsg writes a plain JSON error body with an explicit status.
func writeErrorMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeBody decodes a JSON request body into dst, rejecting unknown
// payloads larger than 1 MB.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
