/*
 * errors.go, part of cifxyz.
 *
 * Copyright 2025 the cifxyz authors.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package chem

import (
	"errors"
	"strings"
)

// The kinds of failure a conversion can end in. Every *Error
// carries exactly one of them, so errors.Is can be used to classify it.
var (
	// The input text is empty or whitespace-only.
	ErrEmptyInput = errors.New("empty input")
	// The file extension (or format tag) is neither cif nor xyz.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// The CIF or XYZ grammar rejected the body.
	ErrMalformedInput = errors.New("malformed input")
	// The writer rejected a structure. This means an internal invariant was broken.
	ErrConversionWrite = errors.New("conversion write failed")
)

// Error is the error type returned by the conversion layers. It follows the
// "decorated" errors used through the library: the Decorate method allows to add
// the names of the functions the error goes through, without changing its type.
type Error struct {
	kind     error
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	cause    error
}

// NewError returns an error of the given kind (one of the Err* variables of this package)
// with an optional message and underlying cause.
func NewError(kind error, message string, cause error, deco ...string) *Error {
	return &Error{kind: kind, message: message, cause: cause, deco: deco}
}

// Error returns a string with an error message.
func (err *Error) Error() string {
	parts := make([]string, 0, 4)
	if err.filename != "" {
		parts = append(parts, err.filename)
	}
	if err.kind != nil {
		parts = append(parts, err.kind.Error())
	}
	if err.message != "" {
		parts = append(parts, err.message)
	}
	if err.cause != nil {
		parts = append(parts, err.cause.Error())
	}
	return strings.Join(parts, ": ")
}

// Decorate adds dec to the decoration slice of the error,
// and returns the resulting slice. An empty dec just returns the current slice.
func (err *Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Kind returns the Err* variable that classifies the error.
func (err *Error) Kind() error { return err.kind }

// FileName returns the file to which the failing conversion was associated,
// or an empty string.
func (err *Error) FileName() string { return err.filename }

// Message returns the error message without the kind, file name or cause.
func (err *Error) Message() string { return err.message }

// Cause returns the error that caused this one, if any.
func (err *Error) Cause() error { return err.cause }

// Critical returns true for errors that mean something is wrong on our side,
// not on the input's.
func (err *Error) Critical() bool { return !isClientKind(err.kind) }

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (err *Error) Unwrap() []error {
	ret := make([]error, 0, 2)
	if err.kind != nil {
		ret = append(ret, err.kind)
	}
	if err.cause != nil {
		ret = append(ret, err.cause)
	}
	return ret
}

// WithFile returns a copy of the error associated to the file filename.
func (err *Error) WithFile(filename string) *Error {
	e := *err
	e.filename = filename
	e.deco = append([]string(nil), err.deco...)
	return &e
}

// IsClientError returns true if err is one of the errors caused by the input
// (empty, unsupported or malformed), false otherwise.
func IsClientError(err error) bool {
	for _, k := range []error{ErrEmptyInput, ErrUnsupportedFormat, ErrMalformedInput} {
		if errors.Is(err, k) {
			return true
		}
	}
	return false
}

func isClientKind(kind error) bool {
	return kind == ErrEmptyInput || kind == ErrUnsupportedFormat || kind == ErrMalformedInput
}
