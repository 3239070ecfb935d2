// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package protoreflect

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNameValidity(t *testing.T) {
	require.True(t, Name("Foo").IsValid())
	require.True(t, Name("_foo2").IsValid())
	require.False(t, Name("2Foo").IsValid())
	require.False(t, Name("foo.bar").IsValid())
}

func TestFullNameOps(t *testing.T) {
	fn := FullName("google.protobuf.Timestamp")
	require.True(t, fn.IsValid())
	require.Equal(t, Name("Timestamp"), fn.Name())
	require.Equal(t, FullName("google.protobuf"), fn.Parent())
	require.Equal(t, FullName("google.protobuf.Timestamp"), FullName("google.protobuf").Append("Timestamp"))
	require.Equal(t, FullName("Timestamp"), FullName("").Append("Timestamp"))
}

func TestFieldNumberReservedRange(t *testing.T) {
	require.True(t, FieldNumber(1).IsValidNumber())
	require.True(t, FieldNumber(18999).IsValidNumber())
	require.False(t, FieldNumber(19000).IsValidNumber())
	require.False(t, FieldNumber(19999).IsValidNumber())
	require.True(t, FieldNumber(20000).IsValidNumber())
	require.False(t, FieldNumber(0).IsValidNumber())
	require.False(t, FieldNumber(-1).IsValidNumber())
}

func TestKindPredicates(t *testing.T) {
	require.True(t, Int64Kind.IsIntegral())
	require.False(t, StringKind.IsIntegral())
	require.True(t, Kind(1).IsValid())
	require.False(t, Kind(99).IsValid())
}
