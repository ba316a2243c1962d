package binder

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	categoryRE = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	slugRE     = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// categoryValidator ensures the value is a normalized category key like
// "fyzika-6". The empty string is allowed so the validator can be combined
// with omitempty; add `required` when the field is mandatory.
func categoryValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return categoryRE.MatchString(value)
}

// slugValidator ensures the value is an already-normalized page slug.
func slugValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return slugRE.MatchString(value)
}
