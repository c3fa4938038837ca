// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// ValidationError is one failed rule on one field.
type ValidationError struct {
	field   string
	tag     string
	param   string
	value   interface{}
	message string
}

// Field returns the field name, taken from its json tag when it has one.
func (e *ValidationError) Field() string { return e.field }

// Tag returns the failed rule, e.g. "latitude" or "lte".
func (e *ValidationError) Tag() string { return e.tag }

// Param returns the rule parameter, e.g. "100" for lte=100.
func (e *ValidationError) Param() string { return e.param }

// Value returns the rejected value.
func (e *ValidationError) Value() interface{} { return e.value }

func (e *ValidationError) Error() string { return e.message }

// RequestValidationError collects every failed rule of one struct.
type RequestValidationError struct {
	errors []ValidationError
}

// Errors returns the individual failures in field order.
func (ve *RequestValidationError) Errors() []ValidationError {
	return ve.errors
}

func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	var b strings.Builder
	for i := range ve.errors {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ve.errors[i].message)
	}
	return b.String()
}

// APIError has the shape of models.APIError without importing models.
type APIError struct {
	Code    string
	Message string
	Details map[string]interface{}
}

// ToAPIError converts the failures into a VALIDATION_ERROR response body.
// A single failure reports field, tag and value; several report a fields
// list.
func (ve *RequestValidationError) ToAPIError() *APIError {
	out := &APIError{Code: "VALIDATION_ERROR", Message: "Validation failed"}

	switch len(ve.errors) {
	case 0:
		return out
	case 1:
		e := ve.errors[0]
		out.Message = e.message
		out.Details = map[string]interface{}{
			"field": e.field,
			"tag":   e.tag,
			"value": e.value,
		}
		return out
	}

	fields := make([]map[string]interface{}, 0, len(ve.errors))
	parts := make([]string, 0, len(ve.errors))
	for _, e := range ve.errors {
		fields = append(fields, map[string]interface{}{
			"field":   e.field,
			"tag":     e.tag,
			"message": e.message,
		})
		parts = append(parts, e.field+": "+e.message)
	}
	out.Message = strings.Join(parts, "; ")
	out.Details = map[string]interface{}{"fields": fields}
	return out
}

// Severity words accepted on the wire. ParseSeverity in models maps them
// onto the six ranked severities.
var severityWords = map[string]bool{
	"critical": true,
	"fatal":    true,
	"high":     true,
	"error":    true,
	"medium":   true,
	"warn":     true,
	"warning":  true,
	"low":      true,
	"info":     true,
	"debug":    true,
	"success":  true,
	"unknown":  true,
}

// Log levels a system_log line may carry.
var logLevels = map[string]bool{
	"DEBUG": true, "INFO": true, "WARN": true, "WARNING": true, "ERROR": true, "CRITICAL": true,
}

// vocabulary builds a rule accepting the empty string or a word of vocab
// after normalizing with norm.
func vocabulary(vocab map[string]bool, norm func(string) string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := norm(strings.TrimSpace(fl.Field().String()))
		return s == "" || vocab[s]
	}
}

// jsonFieldName reports fields by their wire name so API clients see the
// keys they sent.
func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// GetValidator returns the shared validator with the severity and
// loglevel rules registered.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonFieldName)

		// Registration only fails for an empty tag or nil func.
		_ = validate.RegisterValidation("severity", vocabulary(severityWords, strings.ToLower))
		_ = validate.RegisterValidation("loglevel", vocabulary(logLevels, strings.ToUpper))
	})
	return validate
}

// ValidateStruct validates s and returns nil or a *RequestValidationError.
// The pointer return keeps callers from comparing a typed nil to nil.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &RequestValidationError{errors: []ValidationError{{
			field:   "unknown",
			tag:     "unknown",
			message: err.Error(),
		}}}
	}

	out := &RequestValidationError{errors: make([]ValidationError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.errors = append(out.errors, ValidationError{
			field:   fe.Field(),
			tag:     fe.Tag(),
			param:   fe.Param(),
			value:   fe.Value(),
			message: message(fe),
		})
	}
	return out
}

// message renders one failure for humans.
func message(fe validator.FieldError) string {
	field, param := fe.Field(), fe.Param()

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "ip":
		return field + " must be a valid IP address"
	case "url":
		return field + " must be a valid URL"
	case "latitude":
		return field + " must be a valid latitude (-90 to 90)"
	case "longitude":
		return field + " must be a valid longitude (-180 to 180)"
	case "severity":
		return field + " must be a known severity"
	case "loglevel":
		return field + " must be a known log level"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, param)
	case "min", "max":
		bound := "at least"
		if fe.Tag() == "max" {
			bound = "at most"
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be %s %s characters", field, bound, param)
		}
		return fmt.Sprintf("%s must be %s %s", field, bound, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
