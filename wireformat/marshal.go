// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wireformat

import (
	"github.com/protowire/protoreflect/internal/wireparse"
	"github.com/protowire/protoreflect/protoreflect"
)

// Marshal encodes m to its canonical wire-format bytes: known fields in
// ascending field-number order, followed by any preserved unknown fields.
func Marshal(m protoreflect.Message) ([]byte, error) {
	return appendMessage(nil, m)
}

// Size precomputes the byte length Marshal(m) would produce, without
// allocating the output buffer.
func Size(m protoreflect.Message) int {
	n := 0
	var ferr error
	m.Range(func(fd protoreflect.FieldDescriptor, v protoreflect.Value) bool {
		sz, err := fieldSize(fd, v)
		if err != nil {
			ferr = err
			return false
		}
		n += sz
		return true
	})
	if ferr != nil {
		return 0
	}
	n += len(m.GetUnknown())
	return n
}

func appendMessage(b []byte, m protoreflect.Message) ([]byte, error) {
	var ferr error
	m.Range(func(fd protoreflect.FieldDescriptor, v protoreflect.Value) bool {
		var err error
		b, err = appendField(b, fd, v)
		if err != nil {
			ferr = err
			return false
		}
		return true
	})
	if ferr != nil {
		return nil, ferr
	}
	b = append(b, m.GetUnknown()...)
	return b, nil
}

func appendField(b []byte, fd protoreflect.FieldDescriptor, v protoreflect.Value) ([]byte, error) {
	switch {
	case fd.IsMap():
		entry := fd.MapEntry()
		var ferr error
		v.Map().Range(func(k, val protoreflect.Value) bool {
			var eb []byte
			var err error
			eb, err = appendField(eb, entry.KeyField(), k)
			if err == nil {
				eb, err = appendField(eb, entry.ValueField(), val)
			}
			if err != nil {
				ferr = err
				return false
			}
			b = wireparse.AppendVarint(b, wireparse.EncodeTag(wireparse.Number(fd.Number()), wireparse.Bytes))
			b = wireparse.AppendVarint(b, uint64(len(eb)))
			b = append(b, eb...)
			return true
		})
		return b, ferr

	case fd.Cardinality() == protoreflect.Repeated:
		list := v.List()
		if fd.IsPacked() && isPackable(fd.Kind()) {
			var payload []byte
			for i := 0; i < list.Len(); i++ {
				payload = appendScalarPayload(payload, fd.Kind(), list.Get(i))
			}
			b = wireparse.AppendVarint(b, wireparse.EncodeTag(wireparse.Number(fd.Number()), wireparse.Bytes))
			b = wireparse.AppendVarint(b, uint64(len(payload)))
			b = append(b, payload...)
			return b, nil
		}
		var err error
		for i := 0; i < list.Len(); i++ {
			b, err = appendSingular(b, fd, list.Get(i))
			if err != nil {
				return nil, err
			}
		}
		return b, nil

	default:
		return appendSingular(b, fd, v)
	}
}

func appendSingular(b []byte, fd protoreflect.FieldDescriptor, v protoreflect.Value) ([]byte, error) {
	kind := fd.Kind()
	switch kind {
	case protoreflect.MessageKind:
		inner, err := appendMessage(nil, v.Message())
		if err != nil {
			return nil, err
		}
		b = wireparse.AppendVarint(b, wireparse.EncodeTag(wireparse.Number(fd.Number()), wireparse.Bytes))
		b = wireparse.AppendVarint(b, uint64(len(inner)))
		return append(b, inner...), nil

	case protoreflect.GroupKind:
		b = wireparse.AppendVarint(b, wireparse.EncodeTag(wireparse.Number(fd.Number()), wireparse.StartGroup))
		b, err := appendMessage(b, v.Message())
		if err != nil {
			return nil, err
		}
		return wireparse.AppendVarint(b, wireparse.EncodeTag(wireparse.Number(fd.Number()), wireparse.EndGroup)), nil

	case protoreflect.StringKind:
		s := v.String()
		b = wireparse.AppendVarint(b, wireparse.EncodeTag(wireparse.Number(fd.Number()), wireparse.Bytes))
		b = wireparse.AppendVarint(b, uint64(len(s)))
		return append(b, s...), nil

	case protoreflect.BytesKind:
		bs := v.Bytes()
		b = wireparse.AppendVarint(b, wireparse.EncodeTag(wireparse.Number(fd.Number()), wireparse.Bytes))
		b = wireparse.AppendVarint(b, uint64(len(bs)))
		return append(b, bs...), nil

	default:
		b = wireparse.AppendVarint(b, wireparse.EncodeTag(wireparse.Number(fd.Number()), nativeWireType(kind)))
		return appendScalarPayload(b, kind, v), nil
	}
}

func appendScalarPayload(b []byte, kind protoreflect.Kind, v protoreflect.Value) []byte {
	switch nativeWireType(kind) {
	case wireparse.Fixed32:
		return wireparse.AppendFixed32(b, fixed32Payload(kind, v))
	case wireparse.Fixed64:
		return wireparse.AppendFixed64(b, fixed64Payload(kind, v))
	default:
		return wireparse.AppendVarint(b, varintPayload(kind, v))
	}
}

func fieldSize(fd protoreflect.FieldDescriptor, v protoreflect.Value) (int, error) {
	switch {
	case fd.IsMap():
		n := 0
		entry := fd.MapEntry()
		v.Map().Range(func(k, val protoreflect.Value) bool {
			ksz, _ := fieldSize(entry.KeyField(), k)
			vsz, _ := fieldSize(entry.ValueField(), val)
			entrySize := ksz + vsz
			n += wireparse.SizeVarint(wireparse.EncodeTag(wireparse.Number(fd.Number()), wireparse.Bytes)) +
				wireparse.SizeVarint(uint64(entrySize)) + entrySize
			return true
		})
		return n, nil

	case fd.Cardinality() == protoreflect.Repeated:
		list := v.List()
		if fd.IsPacked() && isPackable(fd.Kind()) {
			payload := 0
			for i := 0; i < list.Len(); i++ {
				payload += scalarSize(fd.Kind(), list.Get(i))
			}
			return wireparse.SizeVarint(wireparse.EncodeTag(wireparse.Number(fd.Number()), wireparse.Bytes)) +
				wireparse.SizeVarint(uint64(payload)) + payload, nil
		}
		n := 0
		for i := 0; i < list.Len(); i++ {
			sz, err := singularSize(fd, list.Get(i))
			if err != nil {
				return 0, err
			}
			n += sz
		}
		return n, nil

	default:
		return singularSize(fd, v)
	}
}

func singularSize(fd protoreflect.FieldDescriptor, v protoreflect.Value) (int, error) {
	switch fd.Kind() {
	case protoreflect.MessageKind:
		inner := Size(v.Message())
		return wireparse.SizeVarint(wireparse.EncodeTag(wireparse.Number(fd.Number()), wireparse.Bytes)) +
			wireparse.SizeVarint(uint64(inner)) + inner, nil
	case protoreflect.GroupKind:
		inner := Size(v.Message())
		return 2*wireparse.SizeVarint(wireparse.EncodeTag(wireparse.Number(fd.Number()), wireparse.StartGroup)) + inner, nil
	case protoreflect.StringKind:
		s := len(v.String())
		return wireparse.SizeVarint(wireparse.EncodeTag(wireparse.Number(fd.Number()), wireparse.Bytes)) +
			wireparse.SizeVarint(uint64(s)) + s, nil
	case protoreflect.BytesKind:
		s := len(v.Bytes())
		return wireparse.SizeVarint(wireparse.EncodeTag(wireparse.Number(fd.Number()), wireparse.Bytes)) +
			wireparse.SizeVarint(uint64(s)) + s, nil
	default:
		return wireparse.SizeVarint(wireparse.EncodeTag(wireparse.Number(fd.Number()), nativeWireType(fd.Kind()))) +
			scalarSize(fd.Kind(), v), nil
	}
}
