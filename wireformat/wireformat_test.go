// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wireformat

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/protowire/protoreflect/dynamicpb"
	"github.com/protowire/protoreflect/filedesc"
	"github.com/protowire/protoreflect/internal/wireparse"
	"github.com/protowire/protoreflect/protoreflect"
)

type selfResolver struct{ f *filedesc.File }

func (r selfResolver) FindMessageByName(name protoreflect.FullName) protoreflect.MessageDescriptor {
	d := r.f.DescriptorByName(name)
	md, _ := d.(protoreflect.MessageDescriptor)
	return md
}
func (r selfResolver) FindEnumByName(name protoreflect.FullName) protoreflect.EnumDescriptor {
	d := r.f.DescriptorByName(name)
	ed, _ := d.(protoreflect.EnumDescriptor)
	return ed
}

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
					{Name: "codes", Number: 4, Label: int32(protoreflect.Repeated), Type: int32(protoreflect.Int32Kind), Packed: true, HasPacked: true},
					{Name: "child", Number: 5, Label: int32(protoreflect.Optional), Type: int32(protoreflect.MessageKind), TypeName: "acme.widget.Child"},
					{Name: "scores", Number: 6, Label: int32(protoreflect.Repeated), Type: int32(protoreflect.MessageKind), TypeName: "acme.widget.Widget.ScoresEntry"},
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
					{Name: "value", Number: 2, Label: int32(protoreflect.Optional), Type: int32(protoreflect.Int32Kind)},
				},
			},
		},
	})
	require.NoError(t, err)
	f.SetResolver(selfResolver{f})
	return f
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	f := buildWidgetFile(t)
	widget := f.Messages().ByName("Widget")
	child := f.Messages().ByName("Child")

	idField := widget.Fields().ByName("id")
	nameField := widget.Fields().ByName("name")
	tagsField := widget.Fields().ByName("tags")
	codesField := widget.Fields().ByName("codes")
	childField := widget.Fields().ByName("child")
	scoresField := widget.Fields().ByName("scores")

	m := dynamicpb.NewMessage(widget)
	require.NoError(t, m.Set(idField, protoreflect.Int32Value(7)))
	require.NoError(t, m.Set(nameField, protoreflect.StringValue("gadget")))
	require.NoError(t, m.AddRepeated(tagsField, protoreflect.StringValue("a")))
	require.NoError(t, m.AddRepeated(tagsField, protoreflect.StringValue("b")))
	require.NoError(t, m.AddRepeated(codesField, protoreflect.Int32Value(1)))
	require.NoError(t, m.AddRepeated(codesField, protoreflect.Int32Value(300)))
	require.NoError(t, m.SetMapEntry(scoresField, protoreflect.StringValue("alice"), protoreflect.Int32Value(10)))

	c := dynamicpb.NewMessage(child)
	require.NoError(t, c.Set(c.Descriptor().Fields().ByName("note"), protoreflect.StringValue("hi")))
	require.NoError(t, m.Set(childField, protoreflect.MessageValue(c)))

	b, err := Marshal(m)
	require.NoError(t, err)
	require.Equal(t, len(b), Size(m))

	out := dynamicpb.NewMessage(widget)
	require.NoError(t, Unmarshal(b, out))

	require.Equal(t, int64(7), out.Get(idField).Int())
	require.Equal(t, "gadget", out.Get(nameField).String())
	require.Equal(t, 2, out.Get(tagsField).List().Len())
	require.Equal(t, "a", out.Get(tagsField).List().Get(0).String())
	require.Equal(t, "b", out.Get(tagsField).List().Get(1).String())
	require.Equal(t, 2, out.Get(codesField).List().Len())
	require.Equal(t, int64(300), out.Get(codesField).List().Get(1).Int())

	v, ok := out.Get(scoresField).Map().Get(protoreflect.StringValue("alice"))
	require.True(t, ok)
	require.Equal(t, int64(10), v.Int())

	require.Equal(t, "hi", out.Get(childField).Message().Get(child.Fields().ByName("note")).String())
	require.True(t, m.Equals(out))
}

func TestUnmarshalPreservesUnknownFields(t *testing.T) {
	f := buildWidgetFile(t)
	widget := f.Messages().ByName("Widget")
	idField := widget.Fields().ByName("id")

	m := dynamicpb.NewMessage(widget)
	require.NoError(t, m.Set(idField, protoreflect.Int32Value(1)))
	b, err := Marshal(m)
	require.NoError(t, err)

	// Field 99 is not declared on Widget; append a varint field for it.
	b = wireparse.AppendVarint(b, wireparse.EncodeTag(99, wireparse.Varint))
	b = wireparse.AppendVarint(b, 42)

	out := dynamicpb.NewMessage(widget)
	require.NoError(t, Unmarshal(b, out))
	require.Equal(t, int64(1), out.Get(idField).Int())
	require.NotEmpty(t, out.GetUnknown())

	// Round-tripping the unknown bytes back out must reproduce them exactly.
	b2, err := Marshal(out)
	require.NoError(t, err)
	require.Equal(t, b, b2)
}

func TestUnmarshalTruncatedInput(t *testing.T) {
	f := buildWidgetFile(t)
	widget := f.Messages().ByName("Widget")
	m := dynamicpb.NewMessage(widget)
	err := Unmarshal([]byte{0x08}, m) // tag for field 1 varint, but no value byte
	require.Error(t, err)
}
