// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package protojson

import (
	"encoding/base64"
	"math"
	"strconv"

	"github.com/protowire/protoreflect/dynamicpb"
	"github.com/protowire/protoreflect/internal/errors"
	"github.com/protowire/protoreflect/internal/jsonwire"
	"github.com/protowire/protoreflect/protoreflect"
)

func errUnexpectedToken(tok jsonwire.Value) error {
	return errors.New(errors.KindJSONInvalid, "unexpected JSON token %v", tok.Type())
}

func errTrailingData() error {
	return errors.New(errors.KindJSONInvalid, "trailing data after top-level JSON value")
}

func unmarshalMessage(dec *jsonwire.Decoder, m mutableMessage, opts UnmarshalOptions) error {
	if custom, ok := customUnmarshalers[m.Descriptor().FullName()]; ok {
		return custom(dec, m, opts)
	}
	tok, err := dec.ReadNext()
	if err != nil {
		return err
	}
	if tok.Type() != jsonwire.StartObject {
		return errUnexpectedToken(tok)
	}
	return unmarshalFieldsUntilEndObject(dec, m, opts)
}

// unmarshalFieldsUntilEndObject reads "name": value members until EndObject.
// Split out from unmarshalMessage so google.protobuf.Any can splice an
// embedded message's fields directly out of its own braces, the mirror of
// marshalFields on the encode side.
func unmarshalFieldsUntilEndObject(dec *jsonwire.Decoder, m mutableMessage, opts UnmarshalOptions) error {
	fields := m.Descriptor().Fields()
	for {
		tok, err := dec.ReadNext()
		if err != nil {
			return err
		}
		if tok.Type() == jsonwire.EndObject {
			return nil
		}
		name, err := tok.Name()
		if err != nil {
			return err
		}
		fd := fields.ByJSONName(name)
		if fd == nil {
			fd = fields.ByName(protoreflect.Name(name))
		}
		if fd == nil {
			if opts.DiscardUnknown {
				if err := skipValue(dec); err != nil {
					return err
				}
				continue
			}
			return errors.New(errors.KindUnknownField, "%s: unknown field %q", m.Descriptor().FullName(), name)
		}
		if err := unmarshalFieldValue(dec, m, fd, opts); err != nil {
			return err
		}
	}
}

// unmarshalFieldValue reads fd's JSON representation and applies it to m. A
// JSON null leaves fd cleared, per the canonical mapping's "null is
// accepted ... treated as the default value" rule.
func unmarshalFieldValue(dec *jsonwire.Decoder, m mutableMessage, fd protoreflect.FieldDescriptor, opts UnmarshalOptions) error {
	typ, err := dec.Peek()
	if err != nil {
		return err
	}
	if typ == jsonwire.Null {
		dec.ReadNext()
		m.Clear(fd)
		return nil
	}
	switch {
	case fd.IsMap():
		return unmarshalMap(dec, m, fd, opts)
	case fd.Cardinality() == protoreflect.Repeated:
		return unmarshalList(dec, m, fd, opts)
	default:
		v, err := unmarshalSingularValue(dec, fd, opts)
		if err != nil {
			return err
		}
		return m.Set(fd, v)
	}
}

func unmarshalList(dec *jsonwire.Decoder, m mutableMessage, fd protoreflect.FieldDescriptor, opts UnmarshalOptions) error {
	tok, err := dec.ReadNext()
	if err != nil {
		return err
	}
	if tok.Type() != jsonwire.StartArray {
		return errUnexpectedToken(tok)
	}
	for {
		typ, err := dec.Peek()
		if err != nil {
			return err
		}
		if typ == jsonwire.EndArray {
			dec.ReadNext()
			return nil
		}
		v, err := unmarshalSingularValue(dec, fd, opts)
		if err != nil {
			return err
		}
		if err := m.AddRepeated(fd, v); err != nil {
			return err
		}
	}
}

func unmarshalMap(dec *jsonwire.Decoder, m mutableMessage, fd protoreflect.FieldDescriptor, opts UnmarshalOptions) error {
	tok, err := dec.ReadNext()
	if err != nil {
		return err
	}
	if tok.Type() != jsonwire.StartObject {
		return errUnexpectedToken(tok)
	}
	entry := fd.MapEntry()
	keyField, valField := entry.KeyField(), entry.ValueField()
	for {
		tok, err := dec.ReadNext()
		if err != nil {
			return err
		}
		if tok.Type() == jsonwire.EndObject {
			return nil
		}
		name, err := tok.Name()
		if err != nil {
			return err
		}
		key, err := parseMapKey(keyField.Kind(), name)
		if err != nil {
			return err
		}
		val, err := unmarshalSingularValue(dec, valField, opts)
		if err != nil {
			return err
		}
		if err := m.SetMapEntry(fd, key, val); err != nil {
			return err
		}
	}
}

func parseMapKey(kind protoreflect.Kind, name string) (protoreflect.Value, error) {
	switch kind {
	case protoreflect.BoolKind:
		switch name {
		case "true":
			return protoreflect.BoolValue(true), nil
		case "false":
			return protoreflect.BoolValue(false), nil
		}
		return protoreflect.Value{}, errors.New(errors.KindMapKeyTypeInvalid, "invalid bool map key %q", name)
	case protoreflect.StringKind:
		return protoreflect.StringValue(name), nil
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		n, err := strconv.ParseInt(name, 10, 32)
		if err != nil {
			return protoreflect.Value{}, errors.New(errors.KindMapKeyTypeInvalid, "invalid int32 map key %q", name)
		}
		return protoreflect.Int32Value(int32(n)), nil
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		n, err := strconv.ParseInt(name, 10, 64)
		if err != nil {
			return protoreflect.Value{}, errors.New(errors.KindMapKeyTypeInvalid, "invalid int64 map key %q", name)
		}
		return protoreflect.Int64Value(n), nil
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		n, err := strconv.ParseUint(name, 10, 32)
		if err != nil {
			return protoreflect.Value{}, errors.New(errors.KindMapKeyTypeInvalid, "invalid uint32 map key %q", name)
		}
		return protoreflect.Uint32Value(uint32(n)), nil
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		n, err := strconv.ParseUint(name, 10, 64)
		if err != nil {
			return protoreflect.Value{}, errors.New(errors.KindMapKeyTypeInvalid, "invalid uint64 map key %q", name)
		}
		return protoreflect.Uint64Value(n), nil
	default:
		return protoreflect.Value{}, errors.New(errors.KindMapKeyTypeInvalid, "unsupported map key kind %v", kind)
	}
}

func unmarshalSingularValue(dec *jsonwire.Decoder, fd protoreflect.FieldDescriptor, opts UnmarshalOptions) (protoreflect.Value, error) {
	switch fd.Kind() {
	case protoreflect.MessageKind, protoreflect.GroupKind:
		md := fd.MessageType()
		if md == nil {
			return protoreflect.Value{}, errors.New(errors.KindSymbolNotFound, "%s: message type not resolved", fd.FullName())
		}
		sub := dynamicpb.NewMessage(md)
		if err := unmarshalMessage(dec, sub, opts); err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.MessageValue(sub), nil

	case protoreflect.BoolKind:
		tok, err := dec.ReadNext()
		if err != nil {
			return protoreflect.Value{}, err
		}
		b, err := tok.Bool()
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.BoolValue(b), nil

	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		n, err := unmarshalIntToken(dec, 32)
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.Int32Value(int32(n)), nil

	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		n, err := unmarshalIntToken(dec, 64)
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.Int64Value(n), nil

	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		n, err := unmarshalUintToken(dec, 32)
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.Uint32Value(uint32(n)), nil

	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		n, err := unmarshalUintToken(dec, 64)
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.Uint64Value(n), nil

	case protoreflect.FloatKind:
		f, err := unmarshalFloatToken(dec, 32)
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.Float32Value(float32(f)), nil

	case protoreflect.DoubleKind:
		f, err := unmarshalFloatToken(dec, 64)
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.Float64Value(f), nil

	case protoreflect.StringKind:
		tok, err := dec.ReadNext()
		if err != nil {
			return protoreflect.Value{}, err
		}
		if tok.Type() != jsonwire.String {
			return protoreflect.Value{}, errUnexpectedToken(tok)
		}
		return protoreflect.StringValue(tok.String()), nil

	case protoreflect.BytesKind:
		tok, err := dec.ReadNext()
		if err != nil {
			return protoreflect.Value{}, err
		}
		if tok.Type() != jsonwire.String {
			return protoreflect.Value{}, errUnexpectedToken(tok)
		}
		b, err := base64.StdEncoding.DecodeString(tok.String())
		if err != nil {
			return protoreflect.Value{}, errors.New(errors.KindJSONInvalid, "%s: invalid base64 %q", fd.FullName(), tok.String())
		}
		return protoreflect.BytesValue(b), nil

	case protoreflect.EnumKind:
		return unmarshalEnumToken(dec, fd)

	default:
		return protoreflect.Value{}, errors.New(errors.KindJSONInvalid, "%s: unsupported kind %v", fd.FullName(), fd.Kind())
	}
}

func unmarshalIntToken(dec *jsonwire.Decoder, bitSize int) (int64, error) {
	tok, err := dec.ReadNext()
	if err != nil {
		return 0, err
	}
	switch tok.Type() {
	case jsonwire.Number:
		return tok.Int(bitSize)
	case jsonwire.String:
		n, err := strconv.ParseInt(tok.String(), 10, bitSize)
		if err != nil {
			return 0, errors.New(errors.KindNumberOutOfRange, "invalid integer %q", tok.String())
		}
		return n, nil
	default:
		return 0, errUnexpectedToken(tok)
	}
}

func unmarshalUintToken(dec *jsonwire.Decoder, bitSize int) (uint64, error) {
	tok, err := dec.ReadNext()
	if err != nil {
		return 0, err
	}
	switch tok.Type() {
	case jsonwire.Number:
		return tok.Uint(bitSize)
	case jsonwire.String:
		n, err := strconv.ParseUint(tok.String(), 10, bitSize)
		if err != nil {
			return 0, errors.New(errors.KindNumberOutOfRange, "invalid unsigned integer %q", tok.String())
		}
		return n, nil
	default:
		return 0, errUnexpectedToken(tok)
	}
}

func unmarshalFloatToken(dec *jsonwire.Decoder, bitSize int) (float64, error) {
	tok, err := dec.ReadNext()
	if err != nil {
		return 0, err
	}
	switch tok.Type() {
	case jsonwire.Number:
		return tok.Float(bitSize)
	case jsonwire.String:
		switch tok.String() {
		case "NaN":
			return math.NaN(), nil
		case "Infinity":
			return math.Inf(1), nil
		case "-Infinity":
			return math.Inf(-1), nil
		}
		f, err := strconv.ParseFloat(tok.String(), bitSize)
		if err != nil {
			return 0, errors.New(errors.KindNumberOutOfRange, "invalid float %q", tok.String())
		}
		return f, nil
	default:
		return 0, errUnexpectedToken(tok)
	}
}

func unmarshalEnumToken(dec *jsonwire.Decoder, fd protoreflect.FieldDescriptor) (protoreflect.Value, error) {
	tok, err := dec.ReadNext()
	if err != nil {
		return protoreflect.Value{}, err
	}
	switch tok.Type() {
	case jsonwire.String:
		name := tok.String()
		if ed := fd.EnumType(); ed != nil {
			if ev := ed.Values().ByName(protoreflect.Name(name)); ev != nil {
				return protoreflect.EnumValue(ev.Number()), nil
			}
		}
		return protoreflect.Value{}, errors.New(errors.KindUnknownEnumName, "%s: unknown enum value name %q", fd.FullName(), name)
	case jsonwire.Number:
		n, err := tok.Int(32)
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.EnumValue(protoreflect.EnumNumber(n)), nil
	default:
		return protoreflect.Value{}, errUnexpectedToken(tok)
	}
}

// skipValue discards one JSON value (scalar, object, or array), used to
// ignore an unrecognized field's value when DiscardUnknown is set.
func skipValue(dec *jsonwire.Decoder) error {
	tok, err := dec.ReadNext()
	if err != nil {
		return err
	}
	switch tok.Type() {
	case jsonwire.StartObject:
		for {
			t, err := dec.ReadNext()
			if err != nil {
				return err
			}
			if t.Type() == jsonwire.EndObject {
				return nil
			}
			if err := skipValue(dec); err != nil {
				return err
			}
		}
	case jsonwire.StartArray:
		for {
			typ, err := dec.Peek()
			if err != nil {
				return err
			}
			if typ == jsonwire.EndArray {
				dec.ReadNext()
				return nil
			}
			if err := skipValue(dec); err != nil {
				return err
			}
		}
	}
	return nil
}
