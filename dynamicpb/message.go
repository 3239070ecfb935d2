// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dynamicpb implements Message, a schema-less protobuf message
// container driven entirely by a protoreflect.MessageDescriptor. It is
// adapted from the teacher's types/dynamicpb.Message: every operation that
// panicked on programmer error there (checkField, typecheckSingular) here
// returns a tagged error instead, per the Design Notes' "Exceptions/throws
// -> result types" mandate. Get/Has/Clear/Range/WhichOneof still cannot
// fail -- reading an unset or foreign field is well-defined, matching
// spec.md's "never fails" accessor contract -- only Set and the
// repeated/map mutators that can receive a mismatched Value return errors.
package dynamicpb

import (
	"sort"

	"github.com/protowire/protoreflect/internal/errors"
	"github.com/protowire/protoreflect/protoreflect"
)

// Message is a dynamically-typed protobuf message: its shape comes entirely
// from desc, never from a generated Go struct. It is not safe for
// concurrent use, matching spec.md §5's "dynamic message operations are not
// internally synchronized."
type Message struct {
	desc    protoreflect.MessageDescriptor
	known   map[protoreflect.FieldNumber]protoreflect.Value
	unknown protoreflect.RawFields
}

// NewMessage returns an empty message bound to desc.
func NewMessage(desc protoreflect.MessageDescriptor) *Message {
	return &Message{desc: desc, known: make(map[protoreflect.FieldNumber]protoreflect.Value)}
}

func (m *Message) Descriptor() protoreflect.MessageDescriptor { return m.desc }

// Get returns the current value of fd, or its default/zero value if unset.
// A field descriptor from a different message type returns the zero Value.
func (m *Message) Get(fd protoreflect.FieldDescriptor) protoreflect.Value {
	if v, ok := m.known[fd.Number()]; ok {
		return v
	}
	if fd.Cardinality() == protoreflect.Repeated {
		if fd.IsMap() {
			return protoreflect.MapValue(newMap(mapKeyKind(fd)))
		}
		return protoreflect.ListValue(newList())
	}
	if fd.HasDefault() {
		return fd.Default()
	}
	return zeroValue(fd)
}

// Has reports whether fd has been explicitly assigned, per spec.md's "has
// is equivalent to 'value has been assigned' (not 'value differs from
// default')": presence tracks known map membership only, so a scalar set
// to its zero value -- an empty string, a 0, a false -- is still present.
func (m *Message) Has(fd protoreflect.FieldDescriptor) bool {
	v, ok := m.known[fd.Number()]
	if !ok {
		return false
	}
	if fd.Cardinality() == protoreflect.Repeated {
		if fd.IsMap() {
			return v.Map().Len() > 0
		}
		return v.List().Len() > 0
	}
	return true
}

// Clear resets fd to unset.
func (m *Message) Clear(fd protoreflect.FieldDescriptor) {
	delete(m.known, fd.Number())
}

// Range iterates every explicitly-set field in ascending field-number order.
func (m *Message) Range(f func(protoreflect.FieldDescriptor, protoreflect.Value) bool) {
	nums := make([]protoreflect.FieldNumber, 0, len(m.known))
	for n := range m.known {
		nums = append(nums, n)
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })
	for _, n := range nums {
		fd := m.desc.Fields().ByNumber(n)
		if fd == nil {
			continue // stored under a number that no longer matches a current field
		}
		if !f(fd, m.known[n]) {
			return
		}
	}
}

// WhichOneof returns the field currently set within od, or nil.
func (m *Message) WhichOneof(od protoreflect.OneofDescriptor) protoreflect.FieldDescriptor {
	fields := od.Fields()
	for i := 0; i < fields.Len(); i++ {
		fd := fields.Get(i)
		if _, ok := m.known[fd.Number()]; ok {
			return fd
		}
	}
	return nil
}

// NewField returns a freshly constructed, empty value suitable for fd: an
// empty dynamic message, list, or map, or the kind's zero value for scalars.
func (m *Message) NewField(fd protoreflect.FieldDescriptor) protoreflect.Value {
	if fd.Cardinality() == protoreflect.Repeated {
		if fd.IsMap() {
			return protoreflect.MapValue(newMap(mapKeyKind(fd)))
		}
		return protoreflect.ListValue(newList())
	}
	if fd.Kind() == protoreflect.MessageKind || fd.Kind() == protoreflect.GroupKind {
		if md := fd.MessageType(); md != nil {
			return protoreflect.MessageValue(NewMessage(md))
		}
	}
	return zeroValue(fd)
}

func (m *Message) GetUnknown() protoreflect.RawFields  { return m.unknown }
func (m *Message) SetUnknown(b protoreflect.RawFields) { m.unknown = b }

// Set assigns v to fd, clearing any sibling field in fd's oneof. It returns
// a tagged error if v's variant does not structurally match fd.
func (m *Message) Set(fd protoreflect.FieldDescriptor, v protoreflect.Value) error {
	if err := typecheck(fd, v); err != nil {
		return err
	}
	if oo := fd.ContainingOneof(); oo != nil {
		m.clearOneof(oo)
	}
	m.known[fd.Number()] = v
	return nil
}

// AddRepeated appends v to fd's list, per spec.md's add_repeated operation.
func (m *Message) AddRepeated(fd protoreflect.FieldDescriptor, v protoreflect.Value) error {
	if fd.Cardinality() != protoreflect.Repeated || fd.IsMap() {
		return errors.New(errors.KindNotRepeated, "%s is not a repeated (non-map) field", fd.FullName())
	}
	if err := typecheckElement(fd, v); err != nil {
		return err
	}
	lv, ok := m.known[fd.Number()]
	if !ok {
		lv = protoreflect.ListValue(newList())
		m.known[fd.Number()] = lv
	}
	lv.List().Append(v)
	return nil
}

// SetMapEntry assigns val at key within fd's map, per spec.md's
// set_map_entry operation.
func (m *Message) SetMapEntry(fd protoreflect.FieldDescriptor, key, val protoreflect.Value) error {
	if !fd.IsMap() {
		return errors.New(errors.KindNotMap, "%s is not a map field", fd.FullName())
	}
	entry := fd.MapEntry()
	if err := typecheckValueAgainst(entry.KeyField().Kind(), key); err != nil {
		return errors.New(errors.KindMapKeyTypeInvalid, "%s: invalid map key: %v", fd.FullName(), err)
	}
	if err := typecheckValueAgainstField(entry.ValueField(), val); err != nil {
		return err
	}
	mv, ok := m.known[fd.Number()]
	if !ok {
		mv = protoreflect.MapValue(newMap(entry.KeyField().Kind()))
		m.known[fd.Number()] = mv
	}
	mv.Map().Set(key, val)
	return nil
}

// RemoveMapEntry deletes key from fd's map, per spec.md's remove_map_entry
// operation. Removing an absent key is a no-op, matching the "never fails"
// accessor contract for read-adjacent operations.
func (m *Message) RemoveMapEntry(fd protoreflect.FieldDescriptor, key protoreflect.Value) error {
	if !fd.IsMap() {
		return errors.New(errors.KindNotMap, "%s is not a map field", fd.FullName())
	}
	mv, ok := m.known[fd.Number()]
	if !ok {
		return nil
	}
	mv.Map().Clear(key)
	return nil
}

// Equals reports structural equality with other: same descriptor full name,
// same set of explicitly-set fields holding equal values, same unknown
// bytes. Message-typed fields recurse; since the descriptor graph's cycles
// are broken by full-name reference rather than pointer identity (see
// filedesc's TypeResolver design), this recursion terminates on any
// well-formed message graph without needing a visited set of its own --
// there is no way to construct a Message value that contains itself.
func (m *Message) Equals(other *Message) bool {
	if other == nil {
		return false
	}
	if m.desc.FullName() != other.desc.FullName() {
		return false
	}
	if len(m.known) != len(other.known) {
		return false
	}
	for n, v := range m.known {
		ov, ok := other.known[n]
		if !ok || !valuesEqual(v, ov) {
			return false
		}
	}
	return string(m.unknown) == string(other.unknown)
}

func (m *Message) clearOneof(od protoreflect.OneofDescriptor) {
	fields := od.Fields()
	for i := 0; i < fields.Len(); i++ {
		delete(m.known, fields.Get(i).Number())
	}
}

func mapKeyKind(fd protoreflect.FieldDescriptor) protoreflect.Kind {
	if entry := fd.MapEntry(); entry != nil {
		return entry.KeyField().Kind()
	}
	return protoreflect.StringKind
}

func zeroValue(fd protoreflect.FieldDescriptor) protoreflect.Value {
	switch fd.Kind() {
	case protoreflect.BoolKind:
		return protoreflect.BoolValue(false)
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		return protoreflect.Int32Value(0)
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return protoreflect.Int64Value(0)
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return protoreflect.Uint32Value(0)
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return protoreflect.Uint64Value(0)
	case protoreflect.FloatKind:
		return protoreflect.Float32Value(0)
	case protoreflect.DoubleKind:
		return protoreflect.Float64Value(0)
	case protoreflect.StringKind:
		return protoreflect.StringValue("")
	case protoreflect.BytesKind:
		return protoreflect.BytesValue(nil)
	case protoreflect.EnumKind:
		return protoreflect.EnumValue(0)
	default:
		return protoreflect.Value{}
	}
}

func valuesEqual(a, b protoreflect.Value) bool {
	switch {
	case a.IsBool():
		return b.IsBool() && a.Bool() == b.Bool()
	case a.IsInt():
		return b.IsInt() && a.Int() == b.Int()
	case a.IsUint():
		return b.IsUint() && a.Uint() == b.Uint()
	case a.IsFloat():
		return b.IsFloat() && a.Float() == b.Float()
	case a.IsString():
		return b.IsString() && a.String() == b.String()
	case a.IsBytes():
		return b.IsBytes() && string(a.Bytes()) == string(b.Bytes())
	case a.IsEnum():
		return b.IsEnum() && a.Enum() == b.Enum()
	case a.IsMessage():
		am, aok := a.Message().(*Message)
		bm, bok := b.Message().(*Message)
		return b.IsMessage() && aok && bok && am.Equals(bm)
	case a.IsList():
		if !b.IsList() {
			return false
		}
		al, bl := a.List(), b.List()
		if al.Len() != bl.Len() {
			return false
		}
		for i := 0; i < al.Len(); i++ {
			if !valuesEqual(al.Get(i), bl.Get(i)) {
				return false
			}
		}
		return true
	case a.IsMap():
		if !b.IsMap() {
			return false
		}
		am, bm := a.Map(), b.Map()
		if am.Len() != bm.Len() {
			return false
		}
		equal := true
		am.Range(func(k, v protoreflect.Value) bool {
			bv, ok := bm.Get(k)
			if !ok || !valuesEqual(v, bv) {
				equal = false
				return false
			}
			return true
		})
		return equal
	default:
		return !a.IsValid() && !b.IsValid()
	}
}
