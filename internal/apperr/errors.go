// Package apperr defines the single tagged error kind used across apogee.
package apperr

import (
	"errors"
	"fmt"
	"maps"
)

// Kind tags an Error with the condition that produced it.
type Kind string

const (
	KindInternal          Kind = "internal"
	KindConfig            Kind = "config"
	KindParse             Kind = "parse"
	KindPermission        Kind = "permission"
	KindDuplicatePage     Kind = "duplicate_page"
	KindUnknownExtension  Kind = "unknown_extension"
	KindExtensionConflict Kind = "extension_conflict"
	KindUnknownOperation  Kind = "unknown_operation"
	KindUnknownHandler    Kind = "unknown_handler"
	KindNoContentPath     Kind = "no_content_path"
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
)

// Sentinels for errors.Is. They match any Error of the same kind.
var (
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrDuplicatePage     = &Error{Kind: KindDuplicatePage}
	ErrUnknownExtension  = &Error{Kind: KindUnknownExtension}
	ErrExtensionConflict = &Error{Kind: KindExtensionConflict}
	ErrUnknownOperation  = &Error{Kind: KindUnknownOperation}
	ErrUnknownHandler    = &Error{Kind: KindUnknownHandler}
	ErrNoContentPath     = &Error{Kind: KindNoContentPath}
	ErrPermission        = &Error{Kind: KindPermission}
	ErrParse             = &Error{Kind: KindParse}
	ErrConfig            = &Error{Kind: KindConfig}
)

// Error carries a human-readable message, an optional cause and optional
// structured data for the top-level reporter.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
	Data    map[string]any
}

// New creates an Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given kind around cause.
func Wrap(cause error, kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// With returns a copy of e with key set in its data.
func (e *Error) With(key string, value any) *Error {
	data := make(map[string]any, len(e.Data)+1)
	maps.Copy(data, e.Data)
	data[key] = value
	return &Error{Kind: e.Kind, Message: e.Message, Cause: e.Cause, Data: data}
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an Error of the same kind. A target with a
// message only matches an identical message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// KindOf returns the kind of the first Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// DataOf returns the data of the first Error in err's chain.
func DataOf(err error) map[string]any {
	var e *Error
	if errors.As(err, &e) {
		return e.Data
	}
	return nil
}
