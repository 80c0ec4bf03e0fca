// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blogstore/internal/blog"
	"blogstore/internal/middleware"
	"blogstore/internal/store"
)

const (
	maxBodyBytes = 1 << 20
	maxPageSize  = 500
)

// apiError is the JSON error envelope.
type apiError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Errors  []fieldError `json:"errors,omitempty"`
}

// fieldError is a single request validation failure.
type fieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// errBadRequest marks malformed input: bad JSON, ids or query values.
var errBadRequest = errors.New("bad request")

// validationError carries the field errors of a rejected request body.
type validationError struct {
	fields []fieldError
}

func (e *validationError) Error() string { return "validation failed" }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

// writeError maps service errors onto HTTP status codes. Anything not
// recognised is logged and reported as a 500 without details.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *validationError
		pe *store.PersistenceError
	)

	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, apiError{Code: "validation_failed", Message: "Validation failed", Errors: ve.fields})
	case errors.Is(err, errBadRequest):
		writeJSON(w, http.StatusBadRequest, apiError{Code: "bad_request", Message: err.Error()})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, apiError{Code: "not_found", Message: "Not Found"})
	case errors.Is(err, blog.ErrCategoryCycle):
		writeJSON(w, http.StatusUnprocessableEntity, apiError{Code: "category_cycle", Message: blog.ErrCategoryCycle.Error()})
	case errors.As(err, &pe) && pe.IsConstraintViolation():
		writeJSON(w, http.StatusConflict, apiError{Code: "conflict", Message: conflictMessage(pe)})
	default:
		slog.Error("request failed",
			"request_id", middleware.RequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, apiError{Code: "internal_error", Message: "Internal Server Error"})
	}
}

func conflictMessage(pe *store.PersistenceError) string {
	switch pe.Code {
	case "23505":
		return "A record with the same value already exists (" + pe.Constraint + ")."
	case "23503":
		return "The record is still referenced or refers to a missing record (" + pe.Constraint + ")."
	default:
		return "The change violates a constraint (" + pe.Constraint + ")."
	}
}

// decodeJSON reads a size-limited JSON body into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", errBadRequest)
		}
		return fmt.Errorf("%w: invalid JSON: %v", errBadRequest, err)
	}
	return nil
}

// idParam parses the {id} URL parameter.
func idParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id", errBadRequest)
	}
	return id, nil
}

// pageParams reads the start and limit query parameters. Missing values are
// zero, which the store treats as unbounded.
func pageParams(r *http.Request) (start, limit int, err error) {
	if start, err = intQuery(r, "start"); err != nil {
		return 0, 0, err
	}
	if limit, err = intQuery(r, "limit"); err != nil {
		return 0, 0, err
	}
	if limit > maxPageSize {
		return 0, 0, fmt.Errorf("%w: limit must not exceed %d", errBadRequest, maxPageSize)
	}
	return start, limit, nil
}

func intQuery(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", errBadRequest, name)
	}
	return n, nil
}
