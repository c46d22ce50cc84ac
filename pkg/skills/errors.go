package skills

import (
	"fmt"

	"github.com/pkg/errors"
)

// MalformedHeaderError is returned when a document opens a header block that
// is not well formed.
type MalformedHeaderError struct {
	Path   string
	Line   int // 1-based line number, 0 when not tied to a line
	Reason string
}

func (e *MalformedHeaderError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed header in %s at line %d: %s", e.Path, e.Line, e.Reason)
	}
	return fmt.Sprintf("malformed header in %s: %s", e.Path, e.Reason)
}

// DuplicateIdentifierError is returned when two documents resolve to the
// same identifier.
type DuplicateIdentifierError struct {
	Identifier string
	FirstPath  string
	SecondPath string
}

func (e *DuplicateIdentifierError) Error() string {
	return fmt.Sprintf("duplicate skill identifier '%s' in %s and %s", e.Identifier, e.FirstPath, e.SecondPath)
}

// NotFoundError is returned when a lookup misses.
type NotFoundError struct {
	Identifier string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("skill '%s' not found", e.Identifier)
}

// IsMalformedHeader reports whether err wraps a MalformedHeaderError.
func IsMalformedHeader(err error) bool {
	var target *MalformedHeaderError
	return errors.As(err, &target)
}

// IsDuplicateIdentifier reports whether err wraps a DuplicateIdentifierError.
func IsDuplicateIdentifier(err error) bool {
	var target *DuplicateIdentifierError
	return errors.As(err, &target)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
