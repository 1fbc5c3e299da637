// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package apperr defines the error kinds surfaced by metasearch and the
// fixed user-facing message for each kind. Causes stay attached for logging
// but are never shown verbatim.
package apperr

import (
	"errors"
	"strings"
	"unicode"
)

// Kind classifies an error for propagation and display.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindConfiguration
	KindNetwork
	KindNotFound
	KindSearch
	KindFetch
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConfiguration:
		return "configuration"
	case KindNetwork:
		return "network"
	case KindNotFound:
		return "not_found"
	case KindSearch:
		return "search"
	case KindFetch:
		return "fetch"
	default:
		return "unknown"
	}
}

// Error is the single error type used across services.
type Error struct {
	Kind Kind
	// Op names the failing operation, e.g. "search" or "suggest".
	Op string
	// Msg is a short description. For KindSearch it may hold the provider's
	// own message, which UserMessage echoes only after validation.
	Msg string
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Msg != "" {
		b.WriteString(e.Msg)
	} else {
		b.WriteString(e.Kind.String() + " error")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinels by kind, so errors.Is(err, ErrNotFound) holds for any
// NotFound error regardless of its message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrValidation    = &Error{Kind: KindValidation}
	ErrConfiguration = &Error{Kind: KindConfiguration}
	ErrNetwork       = &Error{Kind: KindNetwork}
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrSearch        = &Error{Kind: KindSearch}
	ErrFetch         = &Error{Kind: KindFetch}
)

// New returns an error of the given kind.
func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// Wrap returns an error of the given kind wrapping cause.
func Wrap(kind Kind, op, msg string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: cause}
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

const maxEchoLen = 160

// UserMessage returns the friendly string for err's kind.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return "Something went wrong."
	}
	switch e.Kind {
	case KindValidation:
		if e.Msg != "" && isShortText(e.Msg) {
			return capitalize(e.Msg) + "."
		}
		return "Please check your input."
	case KindConfiguration:
		return "Search is not configured: API credentials are missing."
	case KindNetwork:
		return "Could not reach the service. Check your connection and try again."
	case KindNotFound:
		return "Price not found."
	case KindSearch:
		if e.Msg != "" && isShortText(e.Msg) {
			return "Search failed: " + e.Msg
		}
		return "Search failed. Please try again."
	case KindFetch:
		return "Could not fetch the page."
	default:
		return "Something went wrong."
	}
}

// isShortText reports whether s is safe to echo: short, single line and
// printable.
func isShortText(s string) bool {
	if len(s) > maxEchoLen {
		return false
	}
	for _, r := range s {
		if r == '\n' || r == '\r' || !unicode.IsPrint(r) {
			return false
		}
	}
	return !strings.ContainsAny(s, "<>{}")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
