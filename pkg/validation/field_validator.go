// Package validation checks names that end up verbatim in DynamoDB requests
// rather than behind an expression alias.
package validation

import (
	"fmt"
	"regexp"
	"unicode"
)

// Name limits enforced by DynamoDB
const (
	MinTableNameLength       = 3
	MaxTableNameLength       = 255
	MaxKeyAttributeNameBytes = 255
)

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// NameError reports an invalid table or attribute name
type NameError struct {
	Kind   string
	Name   string
	Detail string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Kind, e.Name, e.Detail)
}

// ValidateTableName validates a DynamoDB table name
func ValidateTableName(name string) error {
	if len(name) < MinTableNameLength || len(name) > MaxTableNameLength {
		return &NameError{
			Kind:   "table name",
			Name:   name,
			Detail: fmt.Sprintf("length must be between %d and %d", MinTableNameLength, MaxTableNameLength),
		}
	}
	if !tableNamePattern.MatchString(name) {
		return &NameError{Kind: "table name", Name: name, Detail: "allowed characters are a-z, A-Z, 0-9, '_', '-' and '.'"}
	}
	return nil
}

// ValidateKeyAttributeName validates a partition or sort key attribute name.
// Key attributes may use any characters, since they are always aliased, but
// are limited to 255 bytes and must not contain control characters.
func ValidateKeyAttributeName(name string) error {
	if name == "" {
		return &NameError{Kind: "key attribute", Name: name, Detail: "name cannot be empty"}
	}
	if len(name) > MaxKeyAttributeNameBytes {
		return &NameError{Kind: "key attribute", Name: name, Detail: "name exceeds 255 bytes"}
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return &NameError{Kind: "key attribute", Name: name, Detail: "name contains control characters"}
		}
	}
	return nil
}
