package models

import (
	"regexp"
	"sort"
	"strings"
)

// Messages shared by the field validators
const (
	MsgRequired     = "This field is required"
	MsgInvalidEmail = "Please enter a valid email address"
)

// Loose email check, same pattern the booking forms use client side
var emailRegex = regexp.MustCompile(`\S+@\S+\.\S+`)

// ValidationErrors maps a field name to the message shown next to it
type ValidationErrors map[string]string

// Error implements the error interface
func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+v[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a message for a field, keeping the first one reported
func (v ValidationErrors) Add(field, message string) {
	if _, exists := v[field]; !exists {
		v[field] = message
	}
}

// Merge copies messages from other that are not already present
func (v ValidationErrors) Merge(other ValidationErrors) {
	for field, message := range other {
		v.Add(field, message)
	}
}

// Empty reports whether no field failed
func (v ValidationErrors) Empty() bool {
	return len(v) == 0
}

// OrNil returns nil when there are no errors so callers can return it directly
func (v ValidationErrors) OrNil() error {
	if v.Empty() {
		return nil
	}
	return v
}

// IsValidEmail reports whether s looks like an email address
func IsValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}
