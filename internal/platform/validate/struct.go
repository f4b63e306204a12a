// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/taibuivan/laundrytrack/internal/platform/apperr"
)

// structValidator is safe for concurrent use and caches struct metadata.
var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names so details match the request payload.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	return v
}

// Struct validates a request payload against its `validate` struct tags.
//
// Failures come back as a single VALIDATION_ERROR [apperr.AppError] with one
// [apperr.FieldError] per failing field, the same shape [Validator.Err] produces.
func Struct(payload any) error {
	err := structValidator.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return apperr.Internal(err)
	}

	details := make([]apperr.FieldError, 0, len(fieldErrors))
	for _, fieldError := range fieldErrors {
		details = append(details, apperr.FieldError{
			Field:   fieldError.Field(),
			Message: friendlyMessage(fieldError),
		})
	}

	return apperr.ValidationError("Validation failed", details...)
}

func friendlyMessage(fieldError validator.FieldError) string {
	switch fieldError.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		return fmt.Sprintf("Minimum %s characters", fieldError.Param())
	case "max":
		return fmt.Sprintf("Maximum %s characters", fieldError.Param())
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(fieldError.Param(), " ", ", ")
	case "url", "http_url":
		return "Must be a valid http(s) URL"
	default:
		return "Is invalid"
	}
}
