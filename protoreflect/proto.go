// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package protoreflect declares the vocabulary shared by every other package
// in this module: the scalar Kind enumeration, field Cardinality, qualified
// Name/FullName identifiers, field numbers, and the tagged Value variant
// used to hold any field's contents without static typing.
//
// Nothing in this package depends on the descriptor graph or the dynamic
// message container; both are built on top of these primitives.
package protoreflect

import (
	"regexp"
	"strings"
)

// Syntax is the language version a file descriptor was declared with.
type Syntax int8

const (
	Proto2 Syntax = 2
	Proto3 Syntax = 3
)

func (s Syntax) IsValid() bool {
	return s == Proto2 || s == Proto3
}

func (s Syntax) String() string {
	switch s {
	case Proto2:
		return "proto2"
	case Proto3:
		return "proto3"
	default:
		return "<unknown>"
	}
}

// Cardinality determines whether a field is optional, required, or repeated.
type Cardinality int8

const (
	Optional Cardinality = 1
	Required Cardinality = 2
	Repeated Cardinality = 3
)

func (c Cardinality) IsValid() bool {
	switch c {
	case Optional, Required, Repeated:
		return true
	}
	return false
}

func (c Cardinality) String() string {
	switch c {
	case Optional:
		return "optional"
	case Required:
		return "required"
	case Repeated:
		return "repeated"
	default:
		return "<unknown>"
	}
}

// Kind indicates the basic proto type of a field, matching the closed
// scalar set named in the specification's data model.
type Kind int8

const (
	DoubleKind   Kind = 1
	FloatKind    Kind = 2
	Int64Kind    Kind = 3
	Uint64Kind   Kind = 4
	Int32Kind    Kind = 5
	Fixed64Kind  Kind = 6
	Fixed32Kind  Kind = 7
	BoolKind     Kind = 8
	StringKind   Kind = 9
	GroupKind    Kind = 10
	MessageKind  Kind = 11
	BytesKind    Kind = 12
	Uint32Kind   Kind = 13
	EnumKind     Kind = 14
	Sfixed32Kind Kind = 15
	Sfixed64Kind Kind = 16
	Sint32Kind   Kind = 17
	Sint64Kind   Kind = 18
)

func (k Kind) IsValid() bool {
	switch k {
	case DoubleKind, FloatKind, Int64Kind, Uint64Kind, Int32Kind, Fixed64Kind,
		Fixed32Kind, BoolKind, StringKind, GroupKind, MessageKind, BytesKind,
		Uint32Kind, EnumKind, Sfixed32Kind, Sfixed64Kind, Sint32Kind, Sint64Kind:
		return true
	}
	return false
}

func (k Kind) String() string {
	switch k {
	case DoubleKind:
		return "double"
	case FloatKind:
		return "float"
	case Int64Kind:
		return "int64"
	case Uint64Kind:
		return "uint64"
	case Int32Kind:
		return "int32"
	case Fixed64Kind:
		return "fixed64"
	case Fixed32Kind:
		return "fixed32"
	case BoolKind:
		return "bool"
	case StringKind:
		return "string"
	case GroupKind:
		return "group"
	case MessageKind:
		return "message"
	case BytesKind:
		return "bytes"
	case Uint32Kind:
		return "uint32"
	case EnumKind:
		return "enum"
	case Sfixed32Kind:
		return "sfixed32"
	case Sfixed64Kind:
		return "sfixed64"
	case Sint32Kind:
		return "sint32"
	case Sint64Kind:
		return "sint64"
	default:
		return "<unknown>"
	}
}

// IsIntegral reports whether k is one of the integral kinds permitted as map
// keys alongside bool and string.
func (k Kind) IsIntegral() bool {
	switch k {
	case Int32Kind, Int64Kind, Uint32Kind, Uint64Kind, Sint32Kind, Sint64Kind,
		Fixed32Kind, Fixed64Kind, Sfixed32Kind, Sfixed64Kind:
		return true
	}
	return false
}

// IsValidMapKeyKind reports whether k may be used as a map field's key type:
// integral, bool, or string — never float, bytes, message, or enum.
func (k Kind) IsValidMapKeyKind() bool {
	return k.IsIntegral() || k == BoolKind || k == StringKind
}

// FieldNumber is a protobuf field number.
type FieldNumber int32

// MinReservedNumber and MaxReservedNumber bound the closed reserved range
// 19000-19999 that field numbers may never occupy.
const (
	MinReservedNumber FieldNumber = 19000
	MaxReservedNumber FieldNumber = 19999
)

// IsValidNumber reports whether n is positive and outside the reserved range.
func (n FieldNumber) IsValidNumber() bool {
	return n > 0 && !(n >= MinReservedNumber && n <= MaxReservedNumber)
}

// EnumNumber is the numeric value of an enum constant.
type EnumNumber int32

var (
	regexName     = regexp.MustCompile(`^[_a-zA-Z][_a-zA-Z0-9]*$`)
	regexFullName = regexp.MustCompile(`^[_a-zA-Z][_a-zA-Z0-9]*(\.[_a-zA-Z][_a-zA-Z0-9]*)*$`)
)

// Name is an unqualified declaration name, e.g. "Timestamp".
type Name string

func (n Name) IsValid() bool { return regexName.MatchString(string(n)) }

// FullName is a package-and-parent-qualified, dot-separated identifier,
// e.g. "google.protobuf.Timestamp".
type FullName string

func (n FullName) IsValid() bool { return regexFullName.MatchString(string(n)) }

// Name returns the last dot-separated segment.
func (n FullName) Name() Name {
	if i := strings.LastIndexByte(string(n), '.'); i >= 0 {
		return Name(n[i+1:])
	}
	return Name(n)
}

// Parent returns n with its trailing segment removed, or "" if n has only
// one segment.
func (n FullName) Parent() FullName {
	if i := strings.LastIndexByte(string(n), '.'); i >= 0 {
		return n[:i]
	}
	return ""
}

// Append concatenates n with a child short name.
func (n FullName) Append(s Name) FullName {
	if n == "" {
		return FullName(s)
	}
	return n + "." + FullName(s)
}
