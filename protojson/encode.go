// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package protojson

import (
	"encoding/base64"
	"sort"
	"strconv"

	"github.com/protowire/protoreflect/internal/errors"
	"github.com/protowire/protoreflect/internal/jsonwire"
	"github.com/protowire/protoreflect/protoreflect"
)

func marshalMessage(enc *jsonwire.Encoder, m protoreflect.Message, opts MarshalOptions) error {
	if marshalCustom, ok := customMarshalers[m.Descriptor().FullName()]; ok {
		return marshalCustom(enc, m, opts)
	}
	enc.StartObject()
	if err := marshalFields(enc, m, opts); err != nil {
		return err
	}
	enc.EndObject()
	return nil
}

// marshalFields writes m's "name": value members, without the enclosing
// braces, so google.protobuf.Any can splice an embedded message's fields
// directly into its own object.
func marshalFields(enc *jsonwire.Encoder, m protoreflect.Message, opts MarshalOptions) error {
	fields := m.Descriptor().Fields()
	if !opts.EmitUnpopulated {
		var ferr error
		m.Range(func(fd protoreflect.FieldDescriptor, v protoreflect.Value) bool {
			if err := marshalField(enc, fd, v, opts); err != nil {
				ferr = err
				return false
			}
			return true
		})
		return ferr
	}

	for i := 0; i < fields.Len(); i++ {
		fd := fields.Get(i)
		if m.Has(fd) {
			if err := marshalField(enc, fd, m.Get(fd), opts); err != nil {
				return err
			}
			continue
		}
		// Unset singular message fields and oneof members stay absent even
		// under EmitUnpopulated: there is no zero value for "which oneof
		// case" to emit, and an absent message distinguishes from an empty
		// one. Repeated/map fields of message kind do have a sensible zero
		// value (an empty array or object) and are emitted like any other
		// unset repeated field.
		isSingularMessage := (fd.Kind() == protoreflect.MessageKind || fd.Kind() == protoreflect.GroupKind) &&
			fd.Cardinality() != protoreflect.Repeated
		if fd.ContainingOneof() != nil || isSingularMessage {
			continue
		}
		if err := marshalField(enc, fd, m.Get(fd), opts); err != nil {
			return err
		}
	}
	return nil
}

func fieldJSONName(fd protoreflect.FieldDescriptor, opts MarshalOptions) string {
	if opts.UseProtoNames {
		return string(fd.Name())
	}
	return fd.JSONName()
}

func marshalField(enc *jsonwire.Encoder, fd protoreflect.FieldDescriptor, v protoreflect.Value, opts MarshalOptions) error {
	if err := enc.WriteName(fieldJSONName(fd, opts)); err != nil {
		return err
	}
	return marshalValue(enc, fd, v, opts)
}

func marshalValue(enc *jsonwire.Encoder, fd protoreflect.FieldDescriptor, v protoreflect.Value, opts MarshalOptions) error {
	switch {
	case fd.IsMap():
		return marshalMap(enc, fd, v.Map(), opts)
	case fd.Cardinality() == protoreflect.Repeated:
		return marshalList(enc, fd, v.List(), opts)
	default:
		return marshalSingular(enc, fd, v, opts)
	}
}

func marshalList(enc *jsonwire.Encoder, fd protoreflect.FieldDescriptor, list protoreflect.List, opts MarshalOptions) error {
	enc.StartArray()
	for i := 0; i < list.Len(); i++ {
		if err := marshalSingular(enc, fd, list.Get(i), opts); err != nil {
			return err
		}
	}
	enc.EndArray()
	return nil
}

func marshalMap(enc *jsonwire.Encoder, fd protoreflect.FieldDescriptor, m protoreflect.Map, opts MarshalOptions) error {
	entry := fd.MapEntry()
	keyField, valField := entry.KeyField(), entry.ValueField()

	type kv struct {
		name string
		key  protoreflect.Value
		val  protoreflect.Value
	}
	pairs := make([]kv, 0, m.Len())
	m.Range(func(k, v protoreflect.Value) bool {
		pairs = append(pairs, kv{mapKeyString(keyField.Kind(), k), k, v})
		return true
	})
	// Sort numerically for int/uint key kinds, lexically otherwise; map
	// member order is not semantically significant but deterministic
	// output is.
	switch keyField.Kind() {
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind,
		protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].key.Int() < pairs[j].key.Int() })
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind, protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].key.Uint() < pairs[j].key.Uint() })
	default:
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].name < pairs[j].name })
	}

	enc.StartObject()
	for _, p := range pairs {
		if err := enc.WriteName(p.name); err != nil {
			return err
		}
		if err := marshalSingular(enc, valField, p.val, opts); err != nil {
			return err
		}
	}
	enc.EndObject()
	return nil
}

func mapKeyString(kind protoreflect.Kind, v protoreflect.Value) string {
	switch kind {
	case protoreflect.BoolKind:
		if v.Bool() {
			return "true"
		}
		return "false"
	case protoreflect.StringKind:
		return v.String()
	default:
		if v.IsUint() {
			return strconv.FormatUint(v.Uint(), 10)
		}
		return strconv.FormatInt(v.Int(), 10)
	}
}

func marshalSingular(enc *jsonwire.Encoder, fd protoreflect.FieldDescriptor, v protoreflect.Value, opts MarshalOptions) error {
	switch fd.Kind() {
	case protoreflect.BoolKind:
		enc.WriteBool(v.Bool())
		return nil

	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		enc.WriteInt(v.Int())
		return nil

	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		enc.WriteUint(v.Uint())
		return nil

	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		enc.WriteIntString(v.Int())
		return nil

	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		enc.WriteUintString(v.Uint())
		return nil

	case protoreflect.FloatKind:
		enc.WriteFloat(v.Float(), 32)
		return nil

	case protoreflect.DoubleKind:
		enc.WriteFloat(v.Float(), 64)
		return nil

	case protoreflect.StringKind:
		return enc.WriteString(v.String())

	case protoreflect.BytesKind:
		return enc.WriteString(base64.StdEncoding.EncodeToString(v.Bytes()))

	case protoreflect.EnumKind:
		return marshalEnum(enc, fd, v.Enum())

	case protoreflect.MessageKind, protoreflect.GroupKind:
		return marshalMessage(enc, v.Message(), opts)

	default:
		return errors.New(errors.KindJSONInvalid, "%s: unsupported kind %v", fd.FullName(), fd.Kind())
	}
}

func marshalEnum(enc *jsonwire.Encoder, fd protoreflect.FieldDescriptor, n protoreflect.EnumNumber) error {
	if ed := fd.EnumType(); ed != nil {
		if ed.FullName() == "google.protobuf.NullValue" {
			enc.WriteNull()
			return nil
		}
		if ev := ed.Values().ByNumber(n); ev != nil {
			return enc.WriteString(string(ev.Name()))
		}
	}
	enc.WriteInt(int64(n))
	return nil
}
