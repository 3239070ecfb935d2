// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wireformat

import (
	"github.com/protowire/protoreflect/dynamicpb"
	"github.com/protowire/protoreflect/internal/errors"
	"github.com/protowire/protoreflect/internal/wireparse"
	"github.com/protowire/protoreflect/protoreflect"
)

// mutableMessage is the subset of *dynamicpb.Message's API Unmarshal needs.
// It is declared locally (rather than imported) so decoding works against
// protoreflect's vocabulary plus this narrow extra surface, the same way
// filedesc depends on a narrow TypeResolver rather than the whole registry;
// dynamicpb is used only to construct fresh sub-messages (newSubMessage).
type mutableMessage interface {
	protoreflect.Message
	AddRepeated(fd protoreflect.FieldDescriptor, v protoreflect.Value) error
	SetMapEntry(fd protoreflect.FieldDescriptor, key, val protoreflect.Value) error
}

// newSubMessage constructs a fresh empty submessage for fd, which must be of
// MessageKind or GroupKind with a resolved MessageType. It always allocates a
// new element directly from fd's descriptor, rather than going through
// m.NewField(fd) (which, for a repeated field, returns the field's *list*
// container, not a fresh element to put inside it).
func newSubMessage(fd protoreflect.FieldDescriptor) (mutableMessage, error) {
	md := fd.MessageType()
	if md == nil {
		return nil, errors.New(errors.KindTypeMismatch, "%s: message type is unresolved", fd.FullName())
	}
	return dynamicpb.NewMessage(md), nil
}

// Unmarshal decodes b into m, which must start empty or be merged into
// (repeated fields append, singular message fields merge field-by-field,
// all other singular fields are overwritten by the last occurrence on the
// wire, per protobuf's merge semantics). Fields not present in m's
// descriptor are preserved verbatim in m's unknown fields.
func Unmarshal(b []byte, m mutableMessage) error {
	unknown := append(protoreflect.RawFields(nil), m.GetUnknown()...)
	fields := m.Descriptor().Fields()

	for len(b) > 0 {
		num, typ, n := wireparse.ConsumeTag(b)
		if n < 0 {
			return wireparse.ErrorForConsume(n)
		}
		tagBytes := b[:n]
		rest := b[n:]

		fd := fields.ByNumber(protoreflect.FieldNumber(num))
		if fd == nil {
			vn := wireparse.ConsumeFieldValue(num, typ, rest)
			if vn < 0 {
				return wireparse.ErrorForConsume(vn)
			}
			unknown = append(unknown, tagBytes...)
			unknown = append(unknown, rest[:vn]...)
			b = rest[vn:]
			continue
		}

		consumed, err := unmarshalField(fd, typ, rest, m)
		if err != nil {
			return err
		}
		b = rest[consumed:]
	}

	m.SetUnknown(unknown)
	return nil
}

// unmarshalField decodes a single wire entry for fd (tag already consumed,
// typ already decoded) and applies it to m, returning the number of bytes of
// rest consumed by the value.
func unmarshalField(fd protoreflect.FieldDescriptor, typ wireparse.Type, rest []byte, m mutableMessage) (int, error) {
	if fd.IsMap() {
		if typ != wireparse.Bytes {
			return 0, errInvalidKindForWire(fd, typ)
		}
		size, n := wireparse.ConsumeVarint(rest)
		if n < 0 {
			return 0, wireparse.ErrorForConsume(n)
		}
		if uint64(len(rest)-n) < size {
			return 0, errors.New(errors.KindLengthOverflow, "%s: map entry length exceeds remaining input", fd.FullName())
		}
		entryBytes := rest[n : n+int(size)]
		key, val, err := decodeMapEntry(fd, entryBytes)
		if err != nil {
			return 0, err
		}
		if err := m.SetMapEntry(fd, key, val); err != nil {
			return 0, err
		}
		return n + int(size), nil
	}

	if fd.Cardinality() == protoreflect.Repeated && typ == wireparse.Bytes && isPackable(fd.Kind()) {
		size, n := wireparse.ConsumeVarint(rest)
		if n < 0 {
			return 0, wireparse.ErrorForConsume(n)
		}
		if uint64(len(rest)-n) < size {
			return 0, errors.New(errors.KindLengthOverflow, "%s: packed payload length exceeds remaining input", fd.FullName())
		}
		payload := rest[n : n+int(size)]
		for len(payload) > 0 {
			v, consumed, err := decodeScalar(fd.Kind(), nativeWireType(fd.Kind()), payload)
			if err != nil {
				return 0, err
			}
			if err := m.AddRepeated(fd, v); err != nil {
				return 0, err
			}
			payload = payload[consumed:]
		}
		return n + int(size), nil
	}

	v, consumed, err := decodeFieldValue(fd, typ, rest)
	if err != nil {
		return 0, err
	}

	if fd.Cardinality() == protoreflect.Repeated {
		if err := m.AddRepeated(fd, v); err != nil {
			return 0, err
		}
		return consumed, nil
	}

	if fd.Kind() == protoreflect.MessageKind {
		// Singular embedded messages merge into any existing value rather
		// than being replaced outright, per protobuf merge semantics.
		if existing := m.Get(fd); existing.IsMessage() {
			if err := mergeInto(existing.Message(), v.Message()); err != nil {
				return 0, err
			}
			return consumed, nil
		}
	}

	if err := m.Set(fd, v); err != nil {
		return 0, err
	}
	return consumed, nil
}

// mergeInto copies every explicitly-set field of src onto dst, recursively
// merging nested messages. Repeated fields concatenate.
func mergeInto(dst, src protoreflect.Message) error {
	mdst, ok := dst.(mutableMessage)
	if !ok {
		return errors.New(errors.KindTypeMismatch, "message implementation does not support merging")
	}
	var ferr error
	src.Range(func(fd protoreflect.FieldDescriptor, v protoreflect.Value) bool {
		switch {
		case fd.IsMap():
			v.Map().Range(func(k, val protoreflect.Value) bool {
				if err := mdst.SetMapEntry(fd, k, val); err != nil {
					ferr = err
					return false
				}
				return true
			})
		case fd.Cardinality() == protoreflect.Repeated:
			list := v.List()
			for i := 0; i < list.Len(); i++ {
				if err := mdst.AddRepeated(fd, list.Get(i)); err != nil {
					ferr = err
					return false
				}
			}
		case fd.Kind() == protoreflect.MessageKind:
			if existing := dst.Get(fd); existing.IsMessage() {
				if err := mergeInto(existing.Message(), v.Message()); err != nil {
					ferr = err
					return false
				}
				break
			}
			if err := mdst.Set(fd, v); err != nil {
				ferr = err
				return false
			}
		default:
			if err := mdst.Set(fd, v); err != nil {
				ferr = err
				return false
			}
		}
		return ferr == nil
	})
	return ferr
}

// decodeFieldValue decodes one wire-format occurrence of fd (not packed,
// not a map) starting at the front of rest.
func decodeFieldValue(fd protoreflect.FieldDescriptor, typ wireparse.Type, rest []byte) (protoreflect.Value, int, error) {
	switch fd.Kind() {
	case protoreflect.MessageKind:
		if typ != wireparse.Bytes {
			return protoreflect.Value{}, 0, errInvalidKindForWire(fd, typ)
		}
		size, n := wireparse.ConsumeVarint(rest)
		if n < 0 {
			return protoreflect.Value{}, 0, wireparse.ErrorForConsume(n)
		}
		if uint64(len(rest)-n) < size {
			return protoreflect.Value{}, 0, errors.New(errors.KindLengthOverflow, "%s: message length exceeds remaining input", fd.FullName())
		}
		sub, err := newSubMessage(fd)
		if err != nil {
			return protoreflect.Value{}, 0, err
		}
		if err := Unmarshal(rest[n:n+int(size)], sub); err != nil {
			return protoreflect.Value{}, 0, err
		}
		return protoreflect.MessageValue(sub), n + int(size), nil

	case protoreflect.GroupKind:
		if typ != wireparse.StartGroup {
			return protoreflect.Value{}, 0, errInvalidKindForWire(fd, typ)
		}
		sub, err := newSubMessage(fd)
		if err != nil {
			return protoreflect.Value{}, 0, err
		}
		consumed, err := unmarshalGroup(fd.Number(), rest, sub)
		if err != nil {
			return protoreflect.Value{}, 0, err
		}
		return protoreflect.MessageValue(sub), consumed, nil

	case protoreflect.StringKind, protoreflect.BytesKind:
		if typ != wireparse.Bytes {
			return protoreflect.Value{}, 0, errInvalidKindForWire(fd, typ)
		}
		size, n := wireparse.ConsumeVarint(rest)
		if n < 0 {
			return protoreflect.Value{}, 0, wireparse.ErrorForConsume(n)
		}
		if uint64(len(rest)-n) < size {
			return protoreflect.Value{}, 0, errors.New(errors.KindLengthOverflow, "%s: length exceeds remaining input", fd.FullName())
		}
		raw := rest[n : n+int(size)]
		if fd.Kind() == protoreflect.StringKind {
			return protoreflect.StringValue(string(raw)), n + int(size), nil
		}
		return protoreflect.BytesValue(raw), n + int(size), nil

	default:
		return decodeScalar(fd.Kind(), typ, rest)
	}
}

// decodeScalar decodes a single non-length-delimited scalar value of kind
// from the front of b according to typ (varint, fixed32 or fixed64). typ is
// not checked against kind's native wire type; any other wire type is
// rejected with an error.
func decodeScalar(kind protoreflect.Kind, typ wireparse.Type, b []byte) (protoreflect.Value, int, error) {
	switch typ {
	case wireparse.Varint:
		raw, n := wireparse.ConsumeVarint(b)
		if n < 0 {
			return protoreflect.Value{}, 0, wireparse.ErrorForConsume(n)
		}
		return valueFromVarint(kind, raw), n, nil
	case wireparse.Fixed32:
		raw, n := wireparse.ConsumeFixed32(b)
		if n < 0 {
			return protoreflect.Value{}, 0, wireparse.ErrorForConsume(n)
		}
		return valueFromFixed32(kind, raw), n, nil
	case wireparse.Fixed64:
		raw, n := wireparse.ConsumeFixed64(b)
		if n < 0 {
			return protoreflect.Value{}, 0, wireparse.ErrorForConsume(n)
		}
		return valueFromFixed64(kind, raw), n, nil
	default:
		return protoreflect.Value{}, 0, errors.New(errors.KindInvalidTag, "unexpected wire type %d for kind %v", typ, kind)
	}
}

// unmarshalGroup decodes a StartGroup-delimited submessage, terminated by
// the matching EndGroup tag for num.
func unmarshalGroup(num protoreflect.FieldNumber, b []byte, m mutableMessage) (int, error) {
	unknown := append(protoreflect.RawFields(nil), m.GetUnknown()...)
	fields := m.Descriptor().Fields()
	total := 0

	for {
		gnum, gtyp, n := wireparse.ConsumeTag(b)
		if n < 0 {
			return 0, wireparse.ErrorForConsume(n)
		}
		tagBytes := b[:n]
		rest := b[n:]
		total += n

		if gtyp == wireparse.EndGroup {
			if wireparse.Number(num) != gnum {
				return 0, errors.New(errors.KindInvalidTag, "mismatched end group")
			}
			m.SetUnknown(unknown)
			return total, nil
		}

		fd := fields.ByNumber(protoreflect.FieldNumber(gnum))
		if fd == nil {
			vn := wireparse.ConsumeFieldValue(gnum, gtyp, rest)
			if vn < 0 {
				return 0, wireparse.ErrorForConsume(vn)
			}
			unknown = append(unknown, tagBytes...)
			unknown = append(unknown, rest[:vn]...)
			b = rest[vn:]
			total += vn
			continue
		}

		consumed, err := unmarshalField(fd, gtyp, rest, m)
		if err != nil {
			return 0, err
		}
		b = rest[consumed:]
		total += consumed
	}
}

// decodeMapEntry decodes a synthetic map-entry submessage's wire bytes
// directly (field 1 = key, field 2 = value) without constructing an
// intermediate dynamicpb.Message, since the entry message exists only to
// describe the wire shape, never as a value a caller holds onto.
func decodeMapEntry(fd protoreflect.FieldDescriptor, b []byte) (key, val protoreflect.Value, err error) {
	entry := fd.MapEntry()
	keyField, valField := entry.KeyField(), entry.ValueField()
	key = zeroMapValue(keyField.Kind())
	val = zeroMapValue(valField.Kind())

	for len(b) > 0 {
		num, typ, n := wireparse.ConsumeTag(b)
		if n < 0 {
			return protoreflect.Value{}, protoreflect.Value{}, wireparse.ErrorForConsume(n)
		}
		rest := b[n:]
		switch protoreflect.FieldNumber(num) {
		case 1:
			v, consumed, derr := decodeFieldValue(keyField, typ, rest)
			if derr != nil {
				return protoreflect.Value{}, protoreflect.Value{}, derr
			}
			key = v
			b = rest[consumed:]
		case 2:
			v, consumed, derr := decodeFieldValue(valField, typ, rest)
			if derr != nil {
				return protoreflect.Value{}, protoreflect.Value{}, derr
			}
			val = v
			b = rest[consumed:]
		default:
			vn := wireparse.ConsumeFieldValue(num, typ, rest)
			if vn < 0 {
				return protoreflect.Value{}, protoreflect.Value{}, wireparse.ErrorForConsume(vn)
			}
			b = rest[vn:]
		}
	}
	return key, val, nil
}

func zeroMapValue(kind protoreflect.Kind) protoreflect.Value {
	switch kind {
	case protoreflect.StringKind:
		return protoreflect.StringValue("")
	case protoreflect.BoolKind:
		return protoreflect.BoolValue(false)
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		return protoreflect.Int32Value(0)
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return protoreflect.Int64Value(0)
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return protoreflect.Uint32Value(0)
	default: // Uint64Kind, Fixed64Kind
		return protoreflect.Uint64Value(0)
	}
}
