// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package protojson implements the canonical protobuf-to-JSON mapping over
// the protoreflect/dynamicpb value model, the JSON-side sibling of the
// wireformat package: Marshal and Unmarshal drive themselves off a
// MessageDescriptor exactly as wireformat's binary codec does, and the two
// packages share the same mutableMessage contract for decode-time
// construction.
//
// Field names follow FieldDescriptor.JSONName() (lowerCamelCase) by default;
// decode additionally accepts a field's original proto name. 64-bit integer
// kinds marshal as quoted decimal strings, to survive JSON's float64 number
// precision ceiling; every other integer kind marshals as a bare number.
// NaN/+Inf/-Inf marshal as the quoted strings "NaN", "Infinity",
// "-Infinity". Bytes fields use standard base64. Enum fields marshal by
// symbolic name, falling back to the bare number when the value has no
// matching EnumValueDescriptor.
//
// google.protobuf.Any, Timestamp, Duration, Empty, the nine scalar wrapper
// types, and the Struct/Value/ListValue family each get the custom JSON
// form google/protobuf/*.proto documents; see wellknown.go.
package protojson

import (
	"github.com/protowire/protoreflect/internal/jsonwire"
	"github.com/protowire/protoreflect/protoreflect"
)

// Resolver resolves a fully-qualified message name to its descriptor. It is
// required whenever the message graph being marshaled or unmarshaled can
// contain a google.protobuf.Any; *registry.Pool satisfies it directly.
type Resolver interface {
	FindMessageByName(name protoreflect.FullName) protoreflect.MessageDescriptor
}

// MarshalOptions configures Marshal.
type MarshalOptions struct {
	// Indent, when non-empty, pretty-prints with this per-level indent
	// (spaces or tabs only).
	Indent string
	// EmitUnpopulated includes fields at their zero value. Proto3 scalar
	// fields outside a oneof are normally omitted when unset; singular
	// message fields and oneof members are never emitted unless actually
	// set, regardless of this option.
	EmitUnpopulated bool
	// UseProtoNames emits each field's original proto name instead of its
	// lowerCamelCase JSON name.
	UseProtoNames bool
	// Resolver expands google.protobuf.Any values. Required if the message
	// graph can contain one; marshaling an Any without one fails.
	Resolver Resolver
}

// Marshal renders m as canonical protobuf JSON per opts.
func Marshal(m protoreflect.Message, opts MarshalOptions) ([]byte, error) {
	enc, err := jsonwire.NewEncoder(opts.Indent)
	if err != nil {
		return nil, err
	}
	if err := marshalMessage(enc, m, opts); err != nil {
		return nil, err
	}
	return enc.Bytes(), nil
}

// UnmarshalOptions configures Unmarshal.
type UnmarshalOptions struct {
	// DiscardUnknown ignores JSON object members with no matching field,
	// instead of failing with KindUnknownField.
	DiscardUnknown bool
	// Resolver expands google.protobuf.Any values. Required if the input
	// can contain one.
	Resolver Resolver
}

// mutableMessage is the narrow surface Unmarshal needs from a dynamic
// message: enough to populate repeated and map fields incrementally,
// mirroring wireformat's identically-named interface.
type mutableMessage interface {
	protoreflect.Message
	AddRepeated(fd protoreflect.FieldDescriptor, v protoreflect.Value) error
	SetMapEntry(fd protoreflect.FieldDescriptor, key, val protoreflect.Value) error
}

// Unmarshal parses canonical protobuf JSON from b into m.
func Unmarshal(b []byte, m mutableMessage, opts UnmarshalOptions) error {
	dec := jsonwire.NewDecoder(b)
	if err := unmarshalMessage(dec, m, opts); err != nil {
		return err
	}
	typ, err := dec.Peek()
	if err != nil {
		return err
	}
	if typ != jsonwire.EOF {
		return errTrailingData()
	}
	return nil
}
