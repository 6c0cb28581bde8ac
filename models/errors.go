package models

import (
	"errors"
	"fmt"
)

// Kind classifies an Error for HTTP mapping.
type Kind int

const (
	KindUpstream Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindInvalidSignature
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindInvalidSignature:
		return "invalid_signature"
	case KindForbidden:
		return "forbidden"
	default:
		return "upstream"
	}
}

// Error carries a user-facing message and the kind used to pick a status code.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) error { return &Error{Kind: KindValidation, Message: msg} }
func Conflict(msg string) error   { return &Error{Kind: KindConflict, Message: msg} }
func NotFound(msg string) error   { return &Error{Kind: KindNotFound, Message: msg} }
func Forbidden(msg string) error  { return &Error{Kind: KindForbidden, Message: msg} }

func InvalidSignature(err error) error {
	return &Error{Kind: KindInvalidSignature, Message: "error verifying webhook", Err: err}
}

// Upstream wraps a database or identity-provider failure. Already classified errors pass through.
func Upstream(msg string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindUpstream, Message: msg, Err: err}
}

// KindOf reports the kind of err; unclassified errors are KindUpstream.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstream
}

// MessageOf returns the user-facing message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

var (
	ErrDuplicateSlug    = Conflict("course with this slug already exists")
	ErrDuplicateUser    = Conflict("user already exists")
	ErrMissingParameter = Validation("instructor id is required")
	ErrCourseNotFound   = NotFound("course not found")
	ErrSectionNotFound  = NotFound("section not found")
	ErrLectureNotFound  = NotFound("lecture not found")
	ErrUserNotFound     = NotFound("user not found")
)
