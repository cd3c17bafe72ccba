// Package validation collects per-field problems so a request can report all of them at once.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Violations maps a field name to a violation code (translatable via i18n).
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func PositiveInt(field string, val int, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

func NonNegativeInt(field string, val int, v Violations) {
	if val < 0 {
		v[field] = "must_not_be_negative"
	}
}

func MaxLen(field, value string, limit int, v Violations) {
	if utf8.RuneCountInString(value) > limit {
		v[field] = "too_long"
	}
}

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Color accepts an empty value or a #RGB / #RRGGBB code.
func Color(field, value string, v Violations) {
	if value != "" && !hexColor.MatchString(value) {
		v[field] = "invalid_color"
	}
}
