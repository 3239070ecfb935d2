// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package protoreflect

import (
	"fmt"
	"math"
)

// valueKind discriminates the variant held by a Value. It is deliberately
// unexported: callers switch on it indirectly via the Is* predicates and
// typed accessors below, never by comparing tags directly.
type valueKind int8

const (
	valueInvalid valueKind = iota
	valueBool
	valueInt
	valueUint
	valueFloat32
	valueFloat64
	valueString
	valueBytes
	valueEnum
	valueMessage
	valueList
	valueMap
)

// Value is an explicit tagged union over every shape a field's contents can
// take. It replaces the reflect.Value/interface{}-typed containers common to
// older reflection APIs: construction happens only through the typed
// constructors below (BoolValue, Int32Value, ...), so a Value can never hold
// a type outside this closed set, and reading it back never requires a
// failable type assertion — Bool/Int/Float/etc. are safe to call once the
// caller has checked the Kind that produced the Value.
//
// The zero Value is invalid; use Value{} only as a placeholder never meant
// to be read.
type Value struct {
	kind valueKind
	num  uint64 // bool, int64, uint64, enum number, float32/64 bits
	str  string
	bin  []byte
	msg  Message
	list List
	mp   Map
}

// IsValid reports whether v was produced by one of the constructors below.
func (v Value) IsValid() bool { return v.kind != valueInvalid }

func BoolValue(b bool) Value {
	var n uint64
	if b {
		n = 1
	}
	return Value{kind: valueBool, num: n}
}

func Int32Value(i int32) Value { return Value{kind: valueInt, num: uint64(int64(i))} }
func Int64Value(i int64) Value { return Value{kind: valueInt, num: uint64(i)} }

func Uint32Value(u uint32) Value { return Value{kind: valueUint, num: uint64(u)} }
func Uint64Value(u uint64) Value { return Value{kind: valueUint, num: u} }

func Float32Value(f float32) Value {
	return Value{kind: valueFloat32, num: uint64(math.Float32bits(f))}
}
func Float64Value(f float64) Value {
	return Value{kind: valueFloat64, num: math.Float64bits(f)}
}

func StringValue(s string) Value { return Value{kind: valueString, str: s} }

// BytesValue copies b so the Value does not alias caller-owned memory.
func BytesValue(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{kind: valueBytes, bin: cp}
}

func EnumValue(n EnumNumber) Value { return Value{kind: valueEnum, num: uint64(uint32(n))} }

func MessageValue(m Message) Value { return Value{kind: valueMessage, msg: m} }

func ListValue(l List) Value { return Value{kind: valueList, list: l} }

func MapValue(m Map) Value { return Value{kind: valueMap, mp: m} }

func (v Value) IsBool() bool    { return v.kind == valueBool }
func (v Value) IsInt() bool     { return v.kind == valueInt }
func (v Value) IsUint() bool    { return v.kind == valueUint }
func (v Value) IsFloat() bool   { return v.kind == valueFloat32 || v.kind == valueFloat64 }
func (v Value) IsString() bool  { return v.kind == valueString }
func (v Value) IsBytes() bool   { return v.kind == valueBytes }
func (v Value) IsEnum() bool    { return v.kind == valueEnum }
func (v Value) IsMessage() bool { return v.kind == valueMessage }
func (v Value) IsList() bool    { return v.kind == valueList }
func (v Value) IsMap() bool     { return v.kind == valueMap }

// Bool returns the boolean held by v. Callers must first confirm IsBool();
// calling it on any other variant panics, matching the ordinary Go contract
// for a typed accessor on a tagged union (a programmer error, not a value
// that can arise from untrusted input).
func (v Value) Bool() bool {
	v.mustBe(valueBool)
	return v.num != 0
}

func (v Value) Int() int64 {
	v.mustBe(valueInt)
	return int64(v.num)
}

func (v Value) Uint() uint64 {
	v.mustBe(valueUint)
	return v.num
}

// Float returns the value as a float64 regardless of whether it was
// constructed with Float32Value or Float64Value.
func (v Value) Float() float64 {
	switch v.kind {
	case valueFloat32:
		return float64(math.Float32frombits(uint32(v.num)))
	case valueFloat64:
		return math.Float64frombits(v.num)
	default:
		panic(fmt.Sprintf("protoreflect: Value holds variant %d, not a float", v.kind))
	}
}

func (v Value) String() string {
	v.mustBe(valueString)
	return v.str
}

func (v Value) Bytes() []byte {
	v.mustBe(valueBytes)
	return v.bin
}

func (v Value) Enum() EnumNumber {
	v.mustBe(valueEnum)
	return EnumNumber(int32(uint32(v.num)))
}

func (v Value) Message() Message {
	v.mustBe(valueMessage)
	return v.msg
}

func (v Value) List() List {
	v.mustBe(valueList)
	return v.list
}

func (v Value) Map() Map {
	v.mustBe(valueMap)
	return v.mp
}

func (v Value) mustBe(k valueKind) {
	if v.kind != k {
		panic(fmt.Sprintf("protoreflect: Value holds variant %d, not %d", v.kind, k))
	}
}

// List is an ordered, 0-indexed sequence backing a repeated field.
type List interface {
	Len() int
	Get(i int) Value
	Set(i int, v Value)
	Append(v Value)
	Truncate(n int)
}

// Map is an unordered key/value collection backing a map field. Keys are
// always one of BoolValue, Int32/64Value, Uint32/64Value, or StringValue, per
// Kind.IsValidMapKeyKind.
type Map interface {
	Len() int
	Get(key Value) (Value, bool)
	Set(key, val Value)
	Clear(key Value)
	Range(f func(key, val Value) bool)
}

// Enum is implemented by dynamically-typed enum values; currently redundant
// with EnumNumber but kept as a distinct interface so a future closed/named
// enum wrapper can be introduced without changing Value's shape.
type Enum interface {
	Descriptor() EnumDescriptor
	Number() EnumNumber
}

// Message is the interface a dynamic message container implements; it is
// declared here (rather than in a lower-level package) so Value can hold one
// without an import cycle between protoreflect and the concrete message
// package.
type Message interface {
	Descriptor() MessageDescriptor

	// Get returns the current value of fd, or its default/zero value if
	// unset. Get never fails: reading an unset field is well-defined.
	Get(fd FieldDescriptor) Value
	// Set assigns v to fd, clearing any other member of fd's oneof. It
	// returns an error if v's variant does not match fd.Kind().
	Set(fd FieldDescriptor, v Value) error
	// Has reports whether fd has been explicitly assigned -- presence
	// tracks assignment, not whether the current value differs from the
	// kind's zero value.
	Has(fd FieldDescriptor) bool
	// Clear resets fd to unset.
	Clear(fd FieldDescriptor)
	// Range iterates over all explicitly-set fields in field-number order.
	Range(f func(FieldDescriptor, Value) bool)
	// WhichOneof returns the field set within od, or nil if none is set.
	WhichOneof(od OneofDescriptor) FieldDescriptor

	// NewField returns a freshly constructed, empty value suitable to pass
	// to Set for fd: an empty dynamic message, list, or map as appropriate.
	NewField(fd FieldDescriptor) Value

	GetUnknown() RawFields
	SetUnknown(RawFields)
}

// RawFields holds undecoded wire bytes for fields a message's descriptor
// does not recognize, preserved verbatim across decode/re-encode.
type RawFields []byte
