// Package validator checks and normalizes untrusted form input before it
// reaches business logic.
//
// Validation is total: every rule for a schema is evaluated and all
// violations are collected into one ordered result, so the caller can render
// a complete error list in a single round trip instead of failing on the
// first broken field.
package validator

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Violation is a single field-level validation failure.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Violations is an ordered collection of validation failures.
// It implements error so a non-empty result can travel error paths.
type Violations []Violation

// Error implements the error interface.
func (v Violations) Error() string {
	if len(v) == 0 {
		return "no violations"
	}
	msgs := make([]string, len(v))
	for i, violation := range v {
		msgs[i] = fmt.Sprintf("%s: %s", violation.Field, violation.Message)
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether the given field has a violation.
func (v Violations) Has(field string) bool {
	return slices.ContainsFunc(v, func(violation Violation) bool {
		return violation.Field == field
	})
}

// Rule pairs a predicate with the violation reported when it fails.
type Rule struct {
	Check     func() bool
	Violation Violation
}

// Apply evaluates every rule and collects all failures in order.
func Apply(rules ...Rule) Violations {
	var violations Violations
	for _, rule := range rules {
		if !rule.Check() {
			violations = append(violations, rule.Violation)
		}
	}
	return violations
}

// Required checks that a value is present after trimming whitespace.
func Required(field, value, message string) Rule {
	return Rule{
		Check:     func() bool { return strings.TrimSpace(value) != "" },
		Violation: Violation{Field: field, Message: message},
	}
}

// LengthBetween checks a value's length bounds. Empty values pass so the
// rule composes with Required or applies to optional fields.
func LengthBetween(field, value string, min, max int, message string) Rule {
	return Rule{
		Check: func() bool {
			if value == "" {
				return true
			}
			return len(value) >= min && len(value) <= max
		},
		Violation: Violation{Field: field, Message: message},
	}
}

// MaxLen checks a value's maximum length. Empty values pass.
func MaxLen(field, value string, max int, message string) Rule {
	return LengthBetween(field, value, 0, max, message)
}

// Matches checks an optional value against a pattern. Empty values pass.
func Matches(field, value string, pattern *regexp.Regexp, message string) Rule {
	return Rule{
		Check: func() bool {
			if value == "" {
				return true
			}
			return pattern.MatchString(value)
		},
		Violation: Violation{Field: field, Message: message},
	}
}

// OneOf checks that a value is a member of a fixed enumeration.
// Empty values pass; pair with Required for mandatory enums.
func OneOf(field, value string, allowed []string, message string) Rule {
	return Rule{
		Check: func() bool {
			if value == "" {
				return true
			}
			return slices.Contains(allowed, value)
		},
		Violation: Violation{Field: field, Message: message},
	}
}

// emailPattern is deliberately loose: real deliverability is decided by the
// mail system, validation only rejects obvious garbage.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Email checks that a value looks like an email address. Empty values pass.
func Email(field, value, message string) Rule {
	return Matches(field, value, emailPattern, message)
}

// NormalizeEmail canonicalizes an email address for storage and lookups.
// Downstream stages must use the normalized value, never the raw input.
func NormalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
