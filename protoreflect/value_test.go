// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package protoreflect

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValueVariants(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want interface{}
	}{
		{"bool", BoolValue(true), true},
		{"int", Int64Value(-42), int64(-42)},
		{"uint", Uint64Value(42), uint64(42)},
		{"float32", Float32Value(1.5), float64(1.5)},
		{"float64", Float64Value(3.14), float64(3.14)},
		{"string", StringValue("hi"), "hi"},
		{"bytes", BytesValue([]byte("hi")), []byte("hi")},
		{"enum", EnumValue(EnumNumber(7)), EnumNumber(7)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, tt.v.IsValid())
			switch want := tt.want.(type) {
			case bool:
				require.True(t, tt.v.IsBool())
				require.Equal(t, want, tt.v.Bool())
			case int64:
				require.True(t, tt.v.IsInt())
				require.Equal(t, want, tt.v.Int())
			case uint64:
				require.True(t, tt.v.IsUint())
				require.Equal(t, want, tt.v.Uint())
			case float64:
				require.True(t, tt.v.IsFloat())
				require.Equal(t, want, tt.v.Float())
			case string:
				require.True(t, tt.v.IsString())
				require.Equal(t, want, tt.v.String())
			case []byte:
				require.True(t, tt.v.IsBytes())
				require.Equal(t, want, tt.v.Bytes())
			case EnumNumber:
				require.True(t, tt.v.IsEnum())
				require.Equal(t, want, tt.v.Enum())
			}
		})
	}
}

func TestBytesValueCopies(t *testing.T) {
	b := []byte("mutable")
	v := BytesValue(b)
	b[0] = 'X'
	require.Equal(t, "mutable", string(v.Bytes()))
}

func TestZeroValueInvalid(t *testing.T) {
	var v Value
	require.False(t, v.IsValid())
}

func TestWrongAccessorPanics(t *testing.T) {
	v := StringValue("s")
	require.Panics(t, func() { v.Int() })
	require.Panics(t, func() { v.Bool() })
}

func TestMapKeyKindGating(t *testing.T) {
	require.True(t, Int32Kind.IsValidMapKeyKind())
	require.True(t, StringKind.IsValidMapKeyKind())
	require.True(t, BoolKind.IsValidMapKeyKind())
	require.False(t, DoubleKind.IsValidMapKeyKind())
	require.False(t, BytesKind.IsValidMapKeyKind())
	require.False(t, MessageKind.IsValidMapKeyKind())
}
