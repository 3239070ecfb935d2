// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errors implements the tagged error values returned throughout this
// module. Every fallible operation returns one of the Kind values named in
// the error taxonomy instead of a bare string, so callers can discriminate
// on Kind with errors.Is/errors.As rather than parsing messages.
package errors

import "fmt"

// Kind tags an Error with one of the error taxonomy entries.
type Kind string

const (
	KindValidation Kind = "ValidationError"

	KindFieldNotFound         Kind = "FieldNotFound"
	KindFieldNotFoundByNumber Kind = "FieldNotFoundByNumber"
	KindTypeMismatch          Kind = "TypeMismatch"
	KindMessageTypeMismatch   Kind = "MessageTypeMismatch"
	KindNotRepeated           Kind = "NotRepeated"
	KindNotMap                Kind = "NotMap"
	KindMapKeyTypeInvalid     Kind = "MapKeyTypeInvalid"

	KindIndexOutOfBounds Kind = "IndexOutOfBounds"

	KindDuplicateFile   Kind = "DuplicateFile"
	KindDuplicateSymbol Kind = "DuplicateSymbol"
	KindSymbolNotFound  Kind = "SymbolNotFound"

	KindTruncated      Kind = "Truncated"
	KindInvalidTag     Kind = "InvalidTag"
	KindInvalidVarint  Kind = "InvalidVarint"
	KindLengthOverflow Kind = "LengthOverflow"
	KindUtf8Invalid    Kind = "Utf8Invalid"

	KindJSONInvalid      Kind = "JsonInvalid"
	KindNumberOutOfRange Kind = "NumberOutOfRange"
	KindUnknownEnumName  Kind = "UnknownEnumName"
	KindUnknownField     Kind = "UnknownField"
)

// Error is a tagged, "protoreflect: "-prefixed error value.
type Error struct {
	Kind Kind
	msg  string
}

func (e *Error) Error() string { return "protoreflect: " + string(e.Kind) + ": " + e.msg }

// Is implements the errors.Is protocol: two *Error values match if they
// share a Kind, which lets callers write errors.Is(err, errors.Sentinel(KindFieldNotFound)).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// New builds an *Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Sentinel returns a zero-message *Error of the given kind, suitable only as
// the target of errors.Is.
func Sentinel(kind Kind) error { return &Error{Kind: kind} }

// KindOf extracts the Kind from err, returning "" if err is not an *Error.
func KindOf(err error) Kind {
	e, ok := err.(*Error)
	if !ok {
		return ""
	}
	return e.Kind
}
