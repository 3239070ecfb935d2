// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package prototest exercises the get/set/has/clear/range contract of a
// dynamic message against its descriptor, plus a wire marshal/unmarshal
// round trip. It is meant to be driven from a _test.go file in another
// package, one call per message descriptor under test.
package prototest

import (
	"fmt"
	"math"
	"testing"

	"github.com/protowire/protoreflect/dynamicpb"
	"github.com/protowire/protoreflect/protoreflect"
	"github.com/protowire/protoreflect/wireformat"
)

// Exercise runs md's fields through Set/Get/Has/Clear/Range, then checks
// that marshaling and unmarshaling a populated message preserves it.
func Exercise(t testing.TB, md protoreflect.MessageDescriptor) {
	m := dynamicpb.NewMessage(md)
	fields := md.Fields()
	for i := 0; i < fields.Len(); i++ {
		fd := fields.Get(i)
		switch {
		case fd.IsMap():
			exerciseMapField(t, m, fd)
		case fd.Cardinality() == protoreflect.Repeated:
			exerciseListField(t, m, fd)
		default:
			exerciseScalarField(t, m, fd)
		}
	}
	exerciseUnknown(t, m)

	populated := dynamicpb.NewMessage(md)
	populateMessage(populated, 1, nil)
	b, err := wireformat.Marshal(populated)
	if err != nil {
		t.Errorf("Marshal(%v) = %v, want nil", md.FullName(), err)
		return
	}
	roundTripped := dynamicpb.NewMessage(md)
	if err := wireformat.Unmarshal(b, roundTripped); err != nil {
		t.Errorf("Unmarshal(%v) = %v, want nil", md.FullName(), err)
		return
	}
	if !populated.Equals(roundTripped) {
		t.Errorf("round-trip marshal/unmarshal did not preserve message %v", md.FullName())
	}
}

// exerciseScalarField sets a field through a handful of seeds, checking
// Has/Get/Range agree after each, then confirms Clear restores the default.
func exerciseScalarField(t testing.TB, m *dynamicpb.Message, fd protoreflect.FieldDescriptor) {
	name := fd.FullName()
	for _, n := range []seed{1, 0, minVal, maxVal} {
		v := newScalarValue(fd, n)
		if err := m.Set(fd, v); err != nil {
			t.Errorf("Set(%v, seed %d) = %v, want nil", name, n, err)
			continue
		}
		// Presence tracks assignment, so a field set to its zero value is
		// still present.
		wantHas := true
		if got := m.Has(fd); got != wantHas {
			t.Errorf("after Set(%v, seed %d): Has = %v, want %v", name, n, got, wantHas)
		}
		if got := m.Get(fd); !scalarEqual(got, v) {
			t.Errorf("after Set(%v, seed %d): Get = %v, want %v", name, n, formatValue(got), formatValue(v))
		}
		seen := false
		m.Range(func(d protoreflect.FieldDescriptor, got protoreflect.Value) bool {
			if d == fd {
				seen = true
				if !scalarEqual(got, v) {
					t.Errorf("after Set(%v, seed %d): Range saw %v, want %v", name, n, formatValue(got), formatValue(v))
				}
			}
			return true
		})
		if seen != wantHas {
			t.Errorf("after Set(%v, seed %d): Range visited = %v, want %v", name, n, seen, wantHas)
		}
	}
	m.Clear(fd)
	if m.Has(fd) {
		t.Errorf("after Clear(%v): Has = true, want false", name)
	}
}

// exerciseListField exercises append/set/truncate on a repeated field.
func exerciseListField(t testing.TB, m *dynamicpb.Message, fd protoreflect.FieldDescriptor) {
	name := fd.FullName()
	m.Clear(fd)
	for i, n := range []seed{1, 0, minVal, maxVal} {
		v := newElementValue(fd, n)
		if err := m.AddRepeated(fd, v); err != nil {
			t.Errorf("AddRepeated(%v, seed %d) = %v, want nil", name, n, err)
			return
		}
		list := m.Get(fd).List()
		if got, want := list.Len(), i+1; got != want {
			t.Errorf("after appending %d elements to %v: List.Len() = %v, want %v", i+1, name, got, want)
		}
	}
	list := m.Get(fd).List()
	for i := 0; i < list.Len(); i++ {
		v := newElementValue(fd, seed(i+10))
		list.Set(i, v)
		if got := list.Get(i); !scalarEqual(got, v) {
			t.Errorf("after setting element %d of %v: List.Get = %v, want %v", i, name, formatValue(got), formatValue(v))
		}
	}
	list.Truncate(0)
	if m.Has(fd) {
		t.Errorf("after truncating %v to 0: Has = true, want false", name)
	}
}

// exerciseMapField exercises insert/overwrite/clear on a map field.
func exerciseMapField(t testing.TB, m *dynamicpb.Message, fd protoreflect.FieldDescriptor) {
	name := fd.FullName()
	m.Clear(fd)
	keyFd := fd.MapEntry().KeyField()
	valFd := fd.MapEntry().ValueField()
	keys := make([]protoreflect.Value, 0, 4)
	for i, n := range []seed{1, 0, minVal, maxVal} {
		k := newScalarValue(keyFd, seed(i+1))
		v := newElementValue(valFd, n)
		if err := m.SetMapEntry(fd, k, v); err != nil {
			t.Errorf("SetMapEntry(%v, seed %d) = %v, want nil", name, n, err)
			return
		}
		keys = append(keys, k)
		mv := m.Get(fd).Map()
		if got, want := mv.Len(), i+1; got != want {
			t.Errorf("after inserting %d entries into %v: Map.Len() = %v, want %v", i+1, name, got, want)
		}
	}
	mv := m.Get(fd).Map()
	for _, k := range keys {
		if _, ok := mv.Get(k); !ok {
			t.Errorf("Map.Get(%v) in %v: missing key %v", name, name, formatValue(k))
		}
		mv.Clear(k)
	}
	if m.Has(fd) {
		t.Errorf("after clearing every entry of %v: Has = true, want false", name)
	}
	mv.Clear(keys[0]) // clearing an absent key is a no-op, never a panic
}

func exerciseUnknown(t testing.TB, m *dynamicpb.Message) {
	b := []byte{0xd0, 0x3e, 0xc9, 0x07} // field 1002, varint 969
	m.SetUnknown(protoreflect.RawFields(b))
	if got := []byte(m.GetUnknown()); string(got) != string(b) {
		t.Errorf("after SetUnknown: GetUnknown() = %v, want %v", got, b)
	}
}

func formatValue(v protoreflect.Value) string {
	switch {
	case v.IsMessage():
		return string(v.Message().Descriptor().FullName())
	case v.IsBool():
		return fmt.Sprint(v.Bool())
	case v.IsInt():
		return fmt.Sprint(v.Int())
	case v.IsUint():
		return fmt.Sprint(v.Uint())
	case v.IsFloat():
		return fmt.Sprint(v.Float())
	case v.IsString():
		return fmt.Sprintf("%q", v.String())
	case v.IsBytes():
		return fmt.Sprintf("%x", v.Bytes())
	case v.IsEnum():
		return fmt.Sprint(v.Enum())
	default:
		return "<invalid>"
	}
}

func scalarEqual(a, b protoreflect.Value) bool {
	switch {
	case a.IsMessage():
		am, ok := a.Message().(*dynamicpb.Message)
		if !ok {
			return false
		}
		bm, ok := b.Message().(*dynamicpb.Message)
		return ok && am.Equals(bm)
	case a.IsFloat():
		return math.Float64bits(a.Float()) == math.Float64bits(b.Float())
	case a.IsBool():
		return a.Bool() == b.Bool()
	case a.IsInt():
		return a.Int() == b.Int()
	case a.IsUint():
		return a.Uint() == b.Uint()
	case a.IsString():
		return a.String() == b.String()
	case a.IsBytes():
		return string(a.Bytes()) == string(b.Bytes())
	case a.IsEnum():
		return a.Enum() == b.Enum()
	default:
		return false
	}
}

// seed varies the generated value: 0 is the zero value, minVal/maxVal are
// the type's extremes, anything else is an arbitrary distinct value.
type seed int

const (
	minVal seed = -1
	maxVal seed = -2
)

func newElementValue(fd protoreflect.FieldDescriptor, n seed) protoreflect.Value {
	if fd.Kind() == protoreflect.MessageKind || fd.Kind() == protoreflect.GroupKind {
		sub := dynamicpb.NewMessage(fd.MessageType())
		populateMessage(sub, n, nil)
		return protoreflect.MessageValue(sub)
	}
	return newScalarValue(fd, n)
}

func newScalarValue(fd protoreflect.FieldDescriptor, n seed) protoreflect.Value {
	switch fd.Kind() {
	case protoreflect.MessageKind, protoreflect.GroupKind:
		sub := dynamicpb.NewMessage(fd.MessageType())
		populateMessage(sub, n, nil)
		return protoreflect.MessageValue(sub)
	case protoreflect.BoolKind:
		return protoreflect.BoolValue(n != 0)
	case protoreflect.EnumKind:
		return protoreflect.EnumValue(protoreflect.EnumNumber(n))
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		switch n {
		case minVal:
			return protoreflect.Int32Value(math.MinInt32)
		case maxVal:
			return protoreflect.Int32Value(math.MaxInt32)
		default:
			return protoreflect.Int32Value(int32(n))
		}
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		switch n {
		case minVal:
			return protoreflect.Uint32Value(1)
		case maxVal:
			return protoreflect.Uint32Value(math.MaxUint32)
		default:
			return protoreflect.Uint32Value(uint32(n))
		}
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		switch n {
		case minVal:
			return protoreflect.Int64Value(math.MinInt64)
		case maxVal:
			return protoreflect.Int64Value(math.MaxInt64)
		default:
			return protoreflect.Int64Value(int64(n))
		}
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		switch n {
		case minVal:
			return protoreflect.Uint64Value(1)
		case maxVal:
			return protoreflect.Uint64Value(math.MaxUint64)
		default:
			return protoreflect.Uint64Value(uint64(n))
		}
	case protoreflect.FloatKind:
		switch n {
		case minVal:
			return protoreflect.Float32Value(math.SmallestNonzeroFloat32)
		case maxVal:
			return protoreflect.Float32Value(math.MaxFloat32)
		default:
			return protoreflect.Float32Value(1.5 * float32(n))
		}
	case protoreflect.DoubleKind:
		switch n {
		case minVal:
			return protoreflect.Float64Value(math.SmallestNonzeroFloat64)
		case maxVal:
			return protoreflect.Float64Value(math.MaxFloat64)
		default:
			return protoreflect.Float64Value(1.5 * float64(n))
		}
	case protoreflect.StringKind:
		if n == 0 {
			return protoreflect.StringValue("")
		}
		return protoreflect.StringValue(string(rune('a' + (int(n) % 26))))
	case protoreflect.BytesKind:
		if n == 0 {
			return protoreflect.BytesValue(nil)
		}
		return protoreflect.BytesValue([]byte{byte(n)})
	default:
		panic("prototest: unhandled kind " + fd.Kind().String())
	}
}

// populateMessage sets every field of m to a seeded, non-zero value.
// stack guards against infinite recursion through recursive message types.
func populateMessage(m *dynamicpb.Message, n seed, stack []protoreflect.MessageDescriptor) {
	if n == 0 {
		return
	}
	md := m.Descriptor()
	for _, x := range stack {
		if x == md {
			return
		}
	}
	stack = append(stack, md)
	fields := md.Fields()
	for i := 0; i < fields.Len(); i++ {
		fd := fields.Get(i)
		switch {
		case fd.IsMap():
			keyFd, valFd := fd.MapEntry().KeyField(), fd.MapEntry().ValueField()
			k := newScalarValue(keyFd, n)
			var v protoreflect.Value
			if valFd.Kind() == protoreflect.MessageKind {
				sub := dynamicpb.NewMessage(valFd.MessageType())
				populateMessage(sub, n, stack)
				v = protoreflect.MessageValue(sub)
			} else {
				v = newScalarValue(valFd, n)
			}
			m.SetMapEntry(fd, k, v)
		case fd.Cardinality() == protoreflect.Repeated:
			m.AddRepeated(fd, newElementValue(fd, n))
		case fd.Kind() == protoreflect.MessageKind || fd.Kind() == protoreflect.GroupKind:
			sub := dynamicpb.NewMessage(fd.MessageType())
			populateMessage(sub, n, stack)
			m.Set(fd, protoreflect.MessageValue(sub))
		default:
			m.Set(fd, newScalarValue(fd, n))
		}
	}
}
