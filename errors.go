// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package opaque

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/nyxauth/opaque/internal"
)

var (
	// ErrInvalidInput indicates a size mismatch, a nil buffer, or an out-of-order state
	// transition. Never wraps a cryptographic failure: it is returned before any crypto runs.
	ErrInvalidInput = ErrCodeInvalidInput.New("invalid input")

	// ErrCrypto indicates an RNG, group-math, or KDF failure.
	ErrCrypto = ErrCodeCrypto.New("cryptographic operation failed")

	// ErrMemory indicates an allocation or memory-protection failure.
	ErrMemory = ErrCodeMemory.New("memory error")

	// ErrValidation indicates a malformed structured field.
	ErrValidation = ErrCodeValidation.New("validation error")

	// ErrAuthentication indicates a MAC or envelope tag mismatch.
	ErrAuthentication = ErrCodeAuthentication.New("authentication failed")

	// ErrInvalidPublicKey indicates a decoded group element is the identity or malformed.
	ErrInvalidPublicKey = ErrCodeInvalidPublicKey.New("invalid public key")
)

// ErrorCode categorizes protocol errors and maps 1:1 onto the wire-stable status codes a
// handle-based dispatch layer returns across a language boundary.
type ErrorCode byte //nolint:errname // This is an error code, not an error type.

const (
	// ErrCodeSuccess represents no error.
	ErrCodeSuccess ErrorCode = iota

	// ErrCodeInvalidInput represents a size mismatch or out-of-order call.
	ErrCodeInvalidInput

	// ErrCodeCrypto represents an RNG, group-math, or KDF failure.
	ErrCodeCrypto

	// ErrCodeMemory represents an allocation or memory-protection failure.
	ErrCodeMemory

	// ErrCodeValidation represents a malformed structured field.
	ErrCodeValidation

	// ErrCodeAuthentication represents a MAC or envelope tag mismatch.
	ErrCodeAuthentication

	// ErrCodeInvalidPublicKey represents a decoded group element that is the identity or malformed.
	ErrCodeInvalidPublicKey
)

// Status returns the wire-stable, negative integer status code for this ErrorCode, matching the
// C-ABI taxonomy this library's callers dispatch on (0 success; -1 InvalidInput; -2 CryptoError;
// -3 MemoryError; -4 ValidationError; -5 AuthenticationError; -6 InvalidPublicKey).
func (c ErrorCode) Status() int {
	switch c {
	case ErrCodeSuccess:
		return 0
	case ErrCodeInvalidInput:
		return -1
	case ErrCodeCrypto:
		return -2
	case ErrCodeMemory:
		return -3
	case ErrCodeValidation:
		return -4
	case ErrCodeAuthentication:
		return -5
	case ErrCodeInvalidPublicKey:
		return -6
	default:
		return -1
	}
}

// New creates a new Error carrying this code, an optional message, and wrapped causes.
func (c ErrorCode) New(message string, errs ...error) *Error {
	if message == "" {
		message = strings.ReplaceAll(c.String(), "_", " ")
	}

	return &Error{
		Code:    c,
		Message: message,
		Err:     errors.Join(errs...),
	}
}

// String returns a human-readable name for the ErrorCode.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeSuccess:
		return "success"
	case ErrCodeInvalidInput:
		return "invalid_input"
	case ErrCodeCrypto:
		return "crypto_error"
	case ErrCodeMemory:
		return "memory_error"
	case ErrCodeValidation:
		return "validation_error"
	case ErrCodeAuthentication:
		return "authentication_error"
	case ErrCodeInvalidPublicKey:
		return "invalid_public_key"
	default:
		return "unknown_error"
	}
}

// Error implements the error interface for ErrorCode.
func (c ErrorCode) Error() string { return c.String() }

// Is implements errors.Is for ErrorCode, matching either another ErrorCode or an *Error carrying
// the same code.
func (c ErrorCode) Is(target error) bool {
	var code ErrorCode
	if errors.As(target, &code) {
		return byte(c) == byte(code)
	}

	var opaqueErr *Error
	if errors.As(target, &opaqueErr) {
		return byte(c) == byte(opaqueErr.Code)
	}

	return false
}

// Error represents a categorized protocol error.
type Error struct {
	Err     error
	Message string
	Code    ErrorCode
}

// Error implements the error interface. By convention it returns only the concise form; use
// Unwrap to retrieve the full cause chain.
func (e *Error) Error() string { return e.Message }

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.Err }

// Join wraps additional causes onto this error.
func (e *Error) Join(errs ...error) error {
	return errors.Join(e, errors.Join(errs...))
}

// Status returns the wire-stable status code for this error.
func (e *Error) Status() int { return e.Code.Status() }

// LogValue implements slog.LogValuer so *Error logs as a structured group rather than a flat
// string.
func (e *Error) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("code", int(e.Code)),
		slog.String("code_name", e.Code.String()),
		slog.String("message", e.Message),
	}
	if e.Err != nil {
		attrs = append(attrs, slog.Any("error", e.Err))
	}

	return slog.GroupValue(attrs...)
}

// Format implements fmt.Formatter, giving %+v a full cause chain and %s/%v/%q the concise form.
func (e *Error) Format(f fmt.State, verb rune) {
	switch verb {
	case 'v':
		if f.Flag('+') {
			e.formatV(f)
			return
		}

		fallthrough
	case 's':
		_, _ = io.WriteString(f, e.Error()) //nolint:errcheck // human-readable
	case 'q':
		_, _ = fmt.Fprintf(f, "%q", e.Error()) //nolint:errcheck // quoted string
	default:
		_, _ = io.WriteString(f, e.Error()) //nolint:errcheck // safe default
	}
}

func (e *Error) formatV(f fmt.State) {
	_, _ = fmt.Fprintf(f, "code=%d(%s)", e.Code, e.Code.String()) //nolint:errcheck
	if e.Message != "" {
		_, _ = fmt.Fprintf(f, " message=%q", e.Message) //nolint:errcheck
	}

	if e.Err != nil {
		printCause(f, e.Err, 0)
	}
}

func printCause(f fmt.State, err error, depth int) {
	if err == nil {
		return
	}

	prefix := strings.Repeat("  ", depth)
	_, _ = fmt.Fprintf(f, "\n%s↳ %v", prefix, err) //nolint:errcheck

	var multi interface{ Unwrap() []error }
	if errors.As(err, &multi) {
		for _, child := range multi.Unwrap() {
			printCause(f, child, depth+1)
		}

		return
	}

	var single interface{ Unwrap() error }
	if errors.As(err, &single) {
		printCause(f, single.Unwrap(), depth+1)
	}
}

// wrap classifies an internal sentinel error into a public *Error carrying the matching status
// code, so package internals never leak raw sentinel errors across the public API.
func wrap(err error) *Error {
	if err == nil {
		return nil
	}

	var opaqueErr *Error
	if errors.As(err, &opaqueErr) {
		return opaqueErr
	}

	switch {
	case errors.Is(err, internal.ErrInvalidInput), errors.Is(err, internal.ErrStateReused):
		return ErrCodeInvalidInput.New("", err)
	case errors.Is(err, internal.ErrCrypto), errors.Is(err, internal.ErrZeroScalar):
		return ErrCodeCrypto.New("", err)
	case errors.Is(err, internal.ErrMemory):
		return ErrCodeMemory.New("", err)
	case errors.Is(err, internal.ErrValidation):
		return ErrCodeValidation.New("", err)
	case errors.Is(err, internal.ErrAuthentication):
		return ErrCodeAuthentication.New("", err)
	case errors.Is(err, internal.ErrInvalidPublicKey):
		return ErrCodeInvalidPublicKey.New("", err)
	default:
		return ErrCodeCrypto.New("", err)
	}
}
