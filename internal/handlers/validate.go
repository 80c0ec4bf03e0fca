// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"blogstore/internal/slug"
)

type categoryRequest struct {
	Name     string     `json:"name" validate:"required,notblank,max=200"`
	Slug     string     `json:"slug" validate:"omitempty,slug,max=200"`
	ParentID *uuid.UUID `json:"parent_id"`
}

type moveRequest struct {
	ParentID *uuid.UUID `json:"parent_id"`
}

type postRequest struct {
	Title       string      `json:"title" validate:"required,notblank,max=300"`
	Slug        string      `json:"slug" validate:"omitempty,slug,max=200"`
	Body        string      `json:"body" validate:"max=100000"`
	PublishedAt *time.Time  `json:"published_at"`
	CategoryIDs []uuid.UUID `json:"category_ids" validate:"max=50"`
}

// newValidator returns a validator that reports JSON field names and knows
// the slug and notblank rules.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// A valid slug is one Generate leaves unchanged.
	v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s != "" && slug.Generate(s) == s
	})
	v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return v
}

// validateRequest runs the struct tag rules on req and converts failures into
// a *validationError listing one message per field.
func (a *API) validateRequest(req any) error {
	err := a.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]fieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fieldError{Field: fe.Field(), Error: fieldMessage(fe)})
	}
	return &validationError{fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s items", fe.Param())
	case "slug":
		return "must contain only lowercase letters, digits and single hyphens"
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("failed %s:%s", fe.Tag(), fe.Param())
		}
		return "failed " + fe.Tag()
	}
}
