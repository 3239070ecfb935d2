// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wireparse implements the fundamental varint, zigzag, fixed-width,
// and tag primitives shared by the bootstrap FileDescriptorProto decoder and
// the public binary wire codec. It has no dependency on the descriptor or
// dynamic message packages so that both can build on top of it.
package wireparse

import (
	"encoding/binary"
	"math"

	"github.com/protowire/protoreflect/internal/errors"
)

// Type is the three-bit wire type suffix of a field tag.
type Type int8

const (
	Varint          Type = 0
	Fixed64         Type = 1
	Bytes           Type = 2
	StartGroup      Type = 3
	EndGroup        Type = 4
	Fixed32         Type = 5
	maxVarintBytes       = 10 // maximum varint size for a 64-bit number
)

// Number is a protobuf field number.
type Number int32

// MinValidNumber and MaxValidNumber bound legal, non-reserved field numbers.
const (
	MinValidNumber     Number = 1
	MaxValidNumber     Number = 1<<29 - 1
	FirstReservedRange Number = 19000
	LastReservedRange  Number = 19999
)

// EncodeTag returns the wire tag for the given field number and wire type.
func EncodeTag(num Number, typ Type) uint64 {
	return uint64(num)<<3 | uint64(typ&7)
}

// DecodeTag splits a wire tag into its field number and wire type.
func DecodeTag(tag uint64) (Number, Type) {
	return Number(tag >> 3), Type(tag & 7)
}

// AppendVarint appends x to b in varint form.
func AppendVarint(b []byte, x uint64) []byte {
	for x >= 1<<7 {
		b = append(b, uint8(x&0x7f|0x80))
		x >>= 7
	}
	return append(b, uint8(x))
}

// SizeVarint returns the number of bytes AppendVarint would write for x.
func SizeVarint(x uint64) int {
	n := 1
	for x >= 1<<7 {
		x >>= 7
		n++
	}
	return n
}

// ConsumeVarint parses a varint at the front of b, returning the decoded
// value and the number of bytes consumed, or n<0 on error.
func ConsumeVarint(b []byte) (v uint64, n int) {
	for shift := uint(0); shift < 64; shift += 7 {
		if n >= len(b) {
			return 0, -1 // truncated
		}
		c := b[n]
		n++
		v |= uint64(c&0x7f) << shift
		if c < 0x80 {
			return v, n
		}
	}
	// More than 10 bytes of varint: always invalid, whatever follows.
	if n < len(b) && n == maxVarintBytes {
		return 0, -2 // invalid: more than 10 bytes
	}
	return 0, -2
}

// EncodeZigzag32 maps a signed 32-bit integer onto an unsigned one so that
// numbers with a small absolute value have a small varint encoding.
func EncodeZigzag32(v int32) uint64 {
	return uint64(uint32((v << 1) ^ (v >> 31)))
}

// DecodeZigzag32 inverts EncodeZigzag32.
func DecodeZigzag32(v uint64) int32 {
	x := uint32(v)
	return int32(x>>1) ^ -int32(x&1)
}

// EncodeZigzag64 is the 64-bit analog of EncodeZigzag32.
func EncodeZigzag64(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

// DecodeZigzag64 inverts EncodeZigzag64.
func DecodeZigzag64(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

// AppendFixed32 appends x in little-endian form.
func AppendFixed32(b []byte, x uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], x)
	return append(b, buf[:]...)
}

// AppendFixed64 appends x in little-endian form.
func AppendFixed64(b []byte, x uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], x)
	return append(b, buf[:]...)
}

// ConsumeFixed32 reads a little-endian uint32 from the front of b.
func ConsumeFixed32(b []byte) (v uint32, n int) {
	if len(b) < 4 {
		return 0, -1
	}
	return binary.LittleEndian.Uint32(b), 4
}

// ConsumeFixed64 reads a little-endian uint64 from the front of b.
func ConsumeFixed64(b []byte) (v uint64, n int) {
	if len(b) < 8 {
		return 0, -1
	}
	return binary.LittleEndian.Uint64(b), 8
}

// AppendFloat32 appends the IEEE-754 bit pattern of f as a fixed32.
func AppendFloat32(b []byte, f float32) []byte {
	return AppendFixed32(b, math.Float32bits(f))
}

// AppendFloat64 appends the IEEE-754 bit pattern of f as a fixed64.
func AppendFloat64(b []byte, f float64) []byte {
	return AppendFixed64(b, math.Float64bits(f))
}

// ConsumeTag parses a field tag at the front of b.
func ConsumeTag(b []byte) (num Number, typ Type, n int) {
	v, n := ConsumeVarint(b)
	if n < 0 {
		return 0, 0, n
	}
	num, typ = DecodeTag(v)
	return num, typ, n
}

// ConsumeFieldValue skips over a single field's value (not its tag) of the
// given wire type, returning the number of bytes consumed or n<0 on error.
// For StartGroup, it skips until the matching EndGroup for the same field
// number, recursively skipping nested fields.
func ConsumeFieldValue(num Number, typ Type, b []byte) (n int) {
	switch typ {
	case Varint:
		_, n = ConsumeVarint(b)
		return n
	case Fixed32:
		_, n = ConsumeFixed32(b)
		return n
	case Fixed64:
		_, n = ConsumeFixed64(b)
		return n
	case Bytes:
		size, n2 := ConsumeVarint(b)
		if n2 < 0 {
			return n2
		}
		if size > uint64(len(b)-n2) {
			return -3 // length overflow
		}
		return n2 + int(size)
	case StartGroup:
		n0 := 0
		for {
			gnum, gtyp, n1 := ConsumeTag(b[n0:])
			if n1 < 0 {
				return n1
			}
			n0 += n1
			if gtyp == EndGroup {
				if gnum != num {
					return -4 // invalid: mismatched end group
				}
				return n0
			}
			n2 := ConsumeFieldValue(gnum, gtyp, b[n0:])
			if n2 < 0 {
				return n2
			}
			n0 += n2
		}
	case EndGroup:
		return -4
	default:
		return -4 // invalid tag
	}
}

// ErrorForConsume converts a negative ConsumeXxx result into a tagged error.
func ErrorForConsume(n int) error {
	switch n {
	case -1:
		return errors.New(errors.KindTruncated, "unexpected end of input")
	case -2:
		return errors.New(errors.KindInvalidVarint, "varint exceeds 10 bytes")
	case -3:
		return errors.New(errors.KindLengthOverflow, "length-delimited payload exceeds remaining input")
	case -4:
		return errors.New(errors.KindInvalidTag, "invalid wire tag")
	default:
		return errors.New(errors.KindTruncated, "malformed wire data")
	}
}
