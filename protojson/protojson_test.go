// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package protojson

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/protowire/protoreflect/dynamicpb"
	"github.com/protowire/protoreflect/filedesc"
	"github.com/protowire/protoreflect/protoreflect"
	"github.com/protowire/protoreflect/registry"
	"github.com/protowire/protoreflect/wellknown"
	"github.com/protowire/protoreflect/wireformat"
)

func buildWidgetFile(t *testing.T) *filedesc.File {
	t.Helper()
	f, err := filedesc.Build(&filedesc.FileBuilder{
		Name:    "widget.proto",
		Package: "acme.widget",
		Syntax:  "proto3",
		Messages: []*filedesc.MessageBuilder{
			{
				Name: "Widget",
				Fields: []*filedesc.FieldBuilder{
					{Name: "id", Number: 1, Label: int32(protoreflect.Optional), Type: int32(protoreflect.Int32Kind)},
					{Name: "name", Number: 2, Label: int32(protoreflect.Optional), Type: int32(protoreflect.StringKind)},
					{Name: "tags", Number: 3, Label: int32(protoreflect.Repeated), Type: int32(protoreflect.StringKind)},
					{Name: "big", Number: 4, Label: int32(protoreflect.Optional), Type: int32(protoreflect.Int64Kind)},
					{Name: "child", Number: 5, Label: int32(protoreflect.Optional), Type: int32(protoreflect.MessageKind), TypeName: "acme.widget.Child"},
					{Name: "scores", Number: 6, Label: int32(protoreflect.Repeated), Type: int32(protoreflect.MessageKind), TypeName: "acme.widget.Widget.ScoresEntry"},
					{Name: "mood", Number: 7, Label: int32(protoreflect.Optional), Type: int32(protoreflect.EnumKind), TypeName: "acme.widget.Mood"},
					{Name: "payload", Number: 8, Label: int32(protoreflect.Optional), Type: int32(protoreflect.MessageKind), TypeName: "google.protobuf.Any"},
				},
				Messages: []*filedesc.MessageBuilder{{
					Name:       "ScoresEntry",
					IsMapEntry: true,
					Fields: []*filedesc.FieldBuilder{
						{Name: "key", Number: 1, Label: int32(protoreflect.Optional), Type: int32(protoreflect.StringKind)},
						{Name: "value", Number: 2, Label: int32(protoreflect.Optional), Type: int32(protoreflect.Int32Kind)},
					},
				}},
			},
			{
				Name: "Child",
				Fields: []*filedesc.FieldBuilder{
					{Name: "note", Number: 1, Label: int32(protoreflect.Optional), Type: int32(protoreflect.StringKind)},
				},
			},
		},
		Enums: []*filedesc.EnumBuilder{{
			Name: "Mood",
			Values: []*filedesc.EnumValueBuilder{
				{Name: "HAPPY", Number: 0},
				{Name: "SAD", Number: 1},
			},
		}},
	})
	require.NoError(t, err)
	return f
}

func buildPool(t *testing.T, f *filedesc.File) *registry.Pool {
	t.Helper()
	pool := registry.NewPool()
	for _, wk := range wellknown.Files() {
		require.NoError(t, pool.RegisterFile(wk))
	}
	require.NoError(t, pool.RegisterFile(f))
	return pool
}

func TestMarshalUnmarshalScalarsRoundTrip(t *testing.T) {
	f := buildWidgetFile(t)
	pool := buildPool(t, f)
	widget := pool.FindMessageByName("acme.widget.Widget")

	idField := widget.Fields().ByName("id")
	nameField := widget.Fields().ByName("name")
	tagsField := widget.Fields().ByName("tags")
	bigField := widget.Fields().ByName("big")
	moodField := widget.Fields().ByName("mood")

	m := dynamicpb.NewMessage(widget)
	require.NoError(t, m.Set(idField, protoreflect.Int32Value(7)))
	require.NoError(t, m.Set(nameField, protoreflect.StringValue("gadget")))
	require.NoError(t, m.AddRepeated(tagsField, protoreflect.StringValue("a")))
	require.NoError(t, m.AddRepeated(tagsField, protoreflect.StringValue("b")))
	require.NoError(t, m.Set(bigField, protoreflect.Int64Value(9007199254740993)))
	require.NoError(t, m.Set(moodField, protoreflect.EnumValue(1)))

	b, err := Marshal(m, MarshalOptions{Resolver: pool})
	require.NoError(t, err)
	require.JSONEq(t, `{"id":7,"name":"gadget","tags":["a","b"],"big":"9007199254740993","mood":"SAD"}`, string(b))

	out := dynamicpb.NewMessage(widget)
	require.NoError(t, Unmarshal(b, out, UnmarshalOptions{Resolver: pool}))
	require.Equal(t, int64(7), out.Get(idField).Int())
	require.Equal(t, "gadget", out.Get(nameField).String())
	require.Equal(t, int64(9007199254740993), out.Get(bigField).Int())
	require.Equal(t, protoreflect.EnumNumber(1), out.Get(moodField).Enum())
}

func TestMarshalEmitUnpopulated(t *testing.T) {
	f := buildWidgetFile(t)
	pool := buildPool(t, f)
	widget := pool.FindMessageByName("acme.widget.Widget")

	m := dynamicpb.NewMessage(widget)
	b, err := Marshal(m, MarshalOptions{EmitUnpopulated: true, Resolver: pool})
	require.NoError(t, err)
	require.JSONEq(t, `{"id":0,"name":"","tags":[],"big":"0","scores":{},"mood":"HAPPY"}`, string(b))
}

func TestUnmarshalLenientFieldNames(t *testing.T) {
	f := buildWidgetFile(t)
	pool := buildPool(t, f)
	widget := pool.FindMessageByName("acme.widget.Widget")
	nameField := widget.Fields().ByName("name")

	out := dynamicpb.NewMessage(widget)
	require.NoError(t, Unmarshal([]byte(`{"name":"snake"}`), out, UnmarshalOptions{Resolver: pool}))
	require.Equal(t, "snake", out.Get(nameField).String())
}

func TestUnmarshalUnknownFieldRejectedByDefault(t *testing.T) {
	f := buildWidgetFile(t)
	pool := buildPool(t, f)
	widget := pool.FindMessageByName("acme.widget.Widget")

	out := dynamicpb.NewMessage(widget)
	err := Unmarshal([]byte(`{"bogus":1}`), out, UnmarshalOptions{Resolver: pool})
	require.Error(t, err)
}

func TestUnmarshalDiscardUnknown(t *testing.T) {
	f := buildWidgetFile(t)
	pool := buildPool(t, f)
	widget := pool.FindMessageByName("acme.widget.Widget")

	out := dynamicpb.NewMessage(widget)
	err := Unmarshal([]byte(`{"bogus":1,"name":"ok"}`), out, UnmarshalOptions{DiscardUnknown: true, Resolver: pool})
	require.NoError(t, err)
	require.Equal(t, "ok", out.Get(widget.Fields().ByName("name")).String())
}

func TestMapFieldMarshalsAsObject(t *testing.T) {
	f := buildWidgetFile(t)
	pool := buildPool(t, f)
	widget := pool.FindMessageByName("acme.widget.Widget")
	scoresField := widget.Fields().ByName("scores")

	m := dynamicpb.NewMessage(widget)
	require.NoError(t, m.SetMapEntry(scoresField, protoreflect.StringValue("z"), protoreflect.Int32Value(1)))
	require.NoError(t, m.SetMapEntry(scoresField, protoreflect.StringValue("a"), protoreflect.Int32Value(2)))

	b, err := Marshal(m, MarshalOptions{Resolver: pool})
	require.NoError(t, err)
	require.JSONEq(t, `{"scores":{"z":1,"a":2}}`, string(b))
}

func TestDurationRoundTrip(t *testing.T) {
	pool := registry.NewPool()
	for _, wk := range wellknown.Files() {
		require.NoError(t, pool.RegisterFile(wk))
	}
	dur := pool.FindMessageByName("google.protobuf.Duration")
	m := dynamicpb.NewMessage(dur)
	require.NoError(t, m.Set(dur.Fields().ByName("seconds"), protoreflect.Int64Value(3)))
	require.NoError(t, m.Set(dur.Fields().ByName("nanos"), protoreflect.Int32Value(1500000)))

	b, err := Marshal(m, MarshalOptions{})
	require.NoError(t, err)
	require.Equal(t, `"3.001500s"`, string(b))

	out := dynamicpb.NewMessage(dur)
	require.NoError(t, Unmarshal(b, out, UnmarshalOptions{}))
	require.Equal(t, int64(3), out.Get(dur.Fields().ByName("seconds")).Int())
	require.Equal(t, int64(1500000), out.Get(dur.Fields().ByName("nanos")).Int())
}

func TestTimestampRoundTrip(t *testing.T) {
	pool := registry.NewPool()
	for _, wk := range wellknown.Files() {
		require.NoError(t, pool.RegisterFile(wk))
	}
	ts := pool.FindMessageByName("google.protobuf.Timestamp")
	m := dynamicpb.NewMessage(ts)
	require.NoError(t, m.Set(ts.Fields().ByName("seconds"), protoreflect.Int64Value(1257894000)))

	b, err := Marshal(m, MarshalOptions{})
	require.NoError(t, err)
	require.Equal(t, `"2009-11-10T23:00:00Z"`, string(b))

	out := dynamicpb.NewMessage(ts)
	require.NoError(t, Unmarshal(b, out, UnmarshalOptions{}))
	require.Equal(t, int64(1257894000), out.Get(ts.Fields().ByName("seconds")).Int())
}

func TestWrapperTypeRoundTrip(t *testing.T) {
	pool := registry.NewPool()
	for _, wk := range wellknown.Files() {
		require.NoError(t, pool.RegisterFile(wk))
	}
	sv := pool.FindMessageByName("google.protobuf.StringValue")
	m := dynamicpb.NewMessage(sv)
	require.NoError(t, m.Set(sv.Fields().ByNumber(1), protoreflect.StringValue("hi")))

	b, err := Marshal(m, MarshalOptions{})
	require.NoError(t, err)
	require.Equal(t, `"hi"`, string(b))

	out := dynamicpb.NewMessage(sv)
	require.NoError(t, Unmarshal(b, out, UnmarshalOptions{}))
	require.Equal(t, "hi", out.Get(sv.Fields().ByNumber(1)).String())
}

func TestStructValueRoundTrip(t *testing.T) {
	pool := registry.NewPool()
	for _, wk := range wellknown.Files() {
		require.NoError(t, pool.RegisterFile(wk))
	}
	structMD := pool.FindMessageByName("google.protobuf.Struct")

	in := []byte(`{"a":1,"b":"two","c":true,"d":null,"e":[1,2],"f":{"g":3}}`)
	m := dynamicpb.NewMessage(structMD)
	require.NoError(t, Unmarshal(in, m, UnmarshalOptions{}))

	out, err := Marshal(m, MarshalOptions{})
	require.NoError(t, err)
	require.JSONEq(t, string(in), string(out))
}

func TestAnyRoundTrip(t *testing.T) {
	f := buildWidgetFile(t)
	pool := buildPool(t, f)
	widget := pool.FindMessageByName("acme.widget.Widget")
	any := pool.FindMessageByName("google.protobuf.Any")

	inner := dynamicpb.NewMessage(widget)
	require.NoError(t, inner.Set(widget.Fields().ByName("name"), protoreflect.StringValue("boxed")))

	// Build the Any the way unmarshal would, then round-trip it through JSON.
	innerWire, err := wireformat.Marshal(inner)
	require.NoError(t, err)
	a := dynamicpb.NewMessage(any)
	require.NoError(t, a.Set(any.Fields().ByName("type_url"), protoreflect.StringValue("type.googleapis.com/acme.widget.Widget")))
	require.NoError(t, a.Set(any.Fields().ByName("value"), protoreflect.BytesValue(innerWire)))

	out, err := Marshal(a, MarshalOptions{Resolver: pool})
	require.NoError(t, err)
	require.JSONEq(t, `{"@type":"type.googleapis.com/acme.widget.Widget","name":"boxed"}`, string(out))

	roundTripped := dynamicpb.NewMessage(any)
	require.NoError(t, Unmarshal(out, roundTripped, UnmarshalOptions{Resolver: pool}))
	require.Equal(t, "type.googleapis.com/acme.widget.Widget", roundTripped.Get(any.Fields().ByName("type_url")).String())
}
