// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wireformat implements the protobuf binary wire codec over the
// protoreflect/dynamicpb value model: Marshal and Unmarshal drive themselves
// off a MessageDescriptor rather than a generated Go struct's field tags,
// the same way filedesc's own bootstrap decoder drives itself off hardcoded
// FileDescriptorProto field numbers. Fields are always emitted in ascending
// field-number order; unknown fields round-trip verbatim through
// GetUnknown/SetUnknown.
package wireformat

import (
	"math"

	"github.com/protowire/protoreflect/internal/errors"
	"github.com/protowire/protoreflect/internal/wireparse"
	"github.com/protowire/protoreflect/protoreflect"
)

// nativeWireType returns the wire type a scalar Kind is encoded with when
// not packed. Message and group kinds are handled by their callers, not
// here, since their wire type depends on context (length-delimited vs
// start/end group).
func nativeWireType(kind protoreflect.Kind) wireparse.Type {
	switch kind {
	case protoreflect.Fixed64Kind, protoreflect.Sfixed64Kind, protoreflect.DoubleKind:
		return wireparse.Fixed64
	case protoreflect.Fixed32Kind, protoreflect.Sfixed32Kind, protoreflect.FloatKind:
		return wireparse.Fixed32
	case protoreflect.StringKind, protoreflect.BytesKind, protoreflect.MessageKind:
		return wireparse.Bytes
	case protoreflect.GroupKind:
		return wireparse.StartGroup
	default:
		return wireparse.Varint
	}
}

// isPackable reports whether kind may appear in a packed repeated encoding.
func isPackable(kind protoreflect.Kind) bool {
	switch kind {
	case protoreflect.StringKind, protoreflect.BytesKind, protoreflect.MessageKind, protoreflect.GroupKind:
		return false
	default:
		return true
	}
}

// varintPayload returns the raw varint payload for a scalar value of the
// given integral/bool/enum kind, applying zigzag where the wire format
// requires it.
func varintPayload(kind protoreflect.Kind, v protoreflect.Value) uint64 {
	switch kind {
	case protoreflect.BoolKind:
		if v.Bool() {
			return 1
		}
		return 0
	case protoreflect.Sint32Kind:
		return wireparse.EncodeZigzag32(int32(v.Int()))
	case protoreflect.Sint64Kind:
		return wireparse.EncodeZigzag64(v.Int())
	case protoreflect.Int32Kind, protoreflect.Int64Kind:
		return uint64(v.Int())
	case protoreflect.EnumKind:
		return uint64(uint32(v.Enum()))
	default: // Uint32Kind, Uint64Kind
		return v.Uint()
	}
}

// valueFromVarint reconstructs a Value of the given kind from a decoded
// varint payload, inverting varintPayload.
func valueFromVarint(kind protoreflect.Kind, raw uint64) protoreflect.Value {
	switch kind {
	case protoreflect.BoolKind:
		return protoreflect.BoolValue(raw != 0)
	case protoreflect.Sint32Kind:
		return protoreflect.Int32Value(wireparse.DecodeZigzag32(raw))
	case protoreflect.Sint64Kind:
		return protoreflect.Int64Value(wireparse.DecodeZigzag64(raw))
	case protoreflect.Int32Kind:
		return protoreflect.Int32Value(int32(raw))
	case protoreflect.Int64Kind:
		return protoreflect.Int64Value(int64(raw))
	case protoreflect.EnumKind:
		return protoreflect.EnumValue(protoreflect.EnumNumber(int32(uint32(raw))))
	case protoreflect.Uint32Kind:
		return protoreflect.Uint32Value(uint32(raw))
	default: // Uint64Kind
		return protoreflect.Uint64Value(raw)
	}
}

func fixed32Payload(kind protoreflect.Kind, v protoreflect.Value) uint32 {
	if kind == protoreflect.FloatKind {
		return uint32(math.Float32bits(float32(v.Float())))
	}
	if kind == protoreflect.Sfixed32Kind {
		return uint32(v.Int())
	}
	return uint32(v.Uint())
}

func valueFromFixed32(kind protoreflect.Kind, raw uint32) protoreflect.Value {
	switch kind {
	case protoreflect.FloatKind:
		return protoreflect.Float32Value(math.Float32frombits(raw))
	case protoreflect.Sfixed32Kind:
		return protoreflect.Int32Value(int32(raw))
	default: // Fixed32Kind
		return protoreflect.Uint32Value(raw)
	}
}

func fixed64Payload(kind protoreflect.Kind, v protoreflect.Value) uint64 {
	if kind == protoreflect.DoubleKind {
		return math.Float64bits(v.Float())
	}
	if kind == protoreflect.Sfixed64Kind {
		return uint64(v.Int())
	}
	return v.Uint()
}

func valueFromFixed64(kind protoreflect.Kind, raw uint64) protoreflect.Value {
	switch kind {
	case protoreflect.DoubleKind:
		return protoreflect.Float64Value(math.Float64frombits(raw))
	case protoreflect.Sfixed64Kind:
		return protoreflect.Int64Value(int64(raw))
	default: // Fixed64Kind
		return protoreflect.Uint64Value(raw)
	}
}

// scalarSize returns the encoded byte length of a single non-length-
// delimited scalar value (string/bytes/message handled separately by their
// callers, which know the payload length directly).
func scalarSize(kind protoreflect.Kind, v protoreflect.Value) int {
	switch nativeWireType(kind) {
	case wireparse.Fixed32:
		return 4
	case wireparse.Fixed64:
		return 8
	default:
		return wireparse.SizeVarint(varintPayload(kind, v))
	}
}

func errInvalidKindForWire(fd protoreflect.FieldDescriptor, typ wireparse.Type) error {
	return errors.New(errors.KindInvalidTag, "%s: unexpected wire type %d for kind %v", fd.FullName(), typ, fd.Kind())
}
