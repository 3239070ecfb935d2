// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wireparse

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVarintRoundTrip(t *testing.T) {
	tests := []uint64{0, 1, 127, 128, 150, 300, 1 << 20, 1<<64 - 1}
	for _, want := range tests {
		b := AppendVarint(nil, want)
		require.Equal(t, SizeVarint(want), len(b))
		got, n := ConsumeVarint(b)
		require.Greater(t, n, 0)
		require.Equal(t, len(b), n)
		require.Equal(t, want, got)
	}
}

func TestVarintTruncated(t *testing.T) {
	b := AppendVarint(nil, 300)
	_, n := ConsumeVarint(b[:1])
	require.Equal(t, -1, n)
}

func TestVarintOverlong(t *testing.T) {
	b := make([]byte, 11)
	for i := range b {
		b[i] = 0x80
	}
	b[10] = 0x01
	_, n := ConsumeVarint(b)
	require.Less(t, n, 0)
}

func TestZigzag32(t *testing.T) {
	tests := []int32{0, -1, 1, 2147483647, -2147483648}
	for _, v := range tests {
		require.Equal(t, v, DecodeZigzag32(EncodeZigzag32(v)))
	}
	// Known encodings per the protobuf spec.
	require.Equal(t, uint64(0), EncodeZigzag32(0))
	require.Equal(t, uint64(1), EncodeZigzag32(-1))
	require.Equal(t, uint64(2), EncodeZigzag32(1))
}

func TestZigzag64(t *testing.T) {
	tests := []int64{0, -1, 1, 1 << 62, -(1 << 62)}
	for _, v := range tests {
		require.Equal(t, v, DecodeZigzag64(EncodeZigzag64(v)))
	}
}

func TestFixed32RoundTrip(t *testing.T) {
	b := AppendFixed32(nil, 0xdeadbeef)
	v, n := ConsumeFixed32(b)
	require.Equal(t, 4, n)
	require.Equal(t, uint32(0xdeadbeef), v)
}

func TestFixed64RoundTrip(t *testing.T) {
	b := AppendFixed64(nil, 0x0102030405060708)
	v, n := ConsumeFixed64(b)
	require.Equal(t, 8, n)
	require.Equal(t, uint64(0x0102030405060708), v)
}

func TestTagRoundTrip(t *testing.T) {
	tag := EncodeTag(15, Bytes)
	num, typ := DecodeTag(tag)
	require.EqualValues(t, 15, num)
	require.Equal(t, Bytes, typ)
}

func TestConsumeFieldValueBytes(t *testing.T) {
	payload := []byte("foo")
	b := AppendVarint(nil, uint64(len(payload)))
	b = append(b, payload...)
	n := ConsumeFieldValue(1, Bytes, b)
	require.Equal(t, len(b), n)
}

func TestConsumeFieldValueLengthOverflow(t *testing.T) {
	b := AppendVarint(nil, 100)
	n := ConsumeFieldValue(1, Bytes, b)
	require.Equal(t, -3, n)
}
