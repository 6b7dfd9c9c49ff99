// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on library-scoped data, while
// ErrNotMember is the membership predicate's negative answer that
// handlers translate to 403 without leaking whether the library exists.
package repository

import (
	"errors"
	"strings"
)

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrNotMember is returned when the acting user holds no membership row
// for the library in question.  Handlers map it to HTTP 403.
var ErrNotMember = errors.New("not a member of this library")

// ErrLibraryNotFound is returned when a library id or join code matches no row.
var ErrLibraryNotFound = errors.New("library not found")

// ErrMemberNotFound is returned when a target membership row is absent.
var ErrMemberNotFound = errors.New("member not found")

// ErrPhotoNotFound is returned when a photo cannot be found in the DB.
var ErrPhotoNotFound = errors.New("photo not found")

// ErrMessageNotFound is returned when a message cannot be found in the DB.
var ErrMessageNotFound = errors.New("message not found")

// ErrCodeExhausted is returned when join-code generation keeps colliding
// with existing codes past the retry bound. Practically unreachable given
// the code space; handlers map it to HTTP 500.
var ErrCodeExhausted = errors.New("could not generate a unique library code")

// ErrInvalidRecipients is returned when a heart message names a recipient
// who is not currently a member of the library.
var ErrInvalidRecipients = errors.New("one or more recipients are not members of this library")

// isDuplicate reports whether err is a unique-constraint violation.  MySQL
// reports error 1062 ("Duplicate entry ... for key ..."); SQLite, used by
// the test suite, reports "UNIQUE constraint failed: table.column".  Both
// messages carry the offending column name, which duplicateOn relies on.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "1062") || strings.Contains(msg, "unique")
}

// duplicateOn reports whether a duplicate-key error mentions the given column.
func duplicateOn(err error, column string) bool {
	return isDuplicate(err) && strings.Contains(strings.ToLower(err.Error()), column)
}
