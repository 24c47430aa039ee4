// Package validation holds input checks shared by services and request DTOs.
package validation

import (
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Messages returned by ValidateURL.
const (
	MessageURLRequired = "URL is required"
	MessageURLInvalid  = "Invalid URL format"
	MessageURLScheme   = "URL must use http or https"
)

var urlChecker = validator.New()

// Result describes the outcome of a URL check.
type Result struct {
	Valid   bool
	Message string
}

// ValidateURL checks that raw is an absolute http(s) URL with a host.
func ValidateURL(raw string) Result {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Result{Message: MessageURLRequired}
	}

	if err := urlChecker.Var(trimmed, "url"); err != nil {
		return Result{Message: MessageURLInvalid}
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" {
		return Result{Message: MessageURLInvalid}
	}

	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	default:
		return Result{Message: MessageURLScheme}
	}

	if strings.ContainsAny(parsed.Host, " \t") {
		return Result{Message: MessageURLInvalid}
	}

	return Result{Valid: true}
}

// New returns the validator used across the API. Errors report fields by their JSON name.
func New() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}
