// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dynamicpb

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/protowire/protoreflect/filedesc"
	"github.com/protowire/protoreflect/protoreflect"
)

func buildWidget(t *testing.T) *filedesc.File {
	t.Helper()
	f, err := filedesc.Build(&filedesc.FileBuilder{
		Name:    "widget.proto",
		Package: "acme.widget",
		Syntax:  "proto3",
		Messages: []*filedesc.MessageBuilder{{
			Name: "Widget",
			Fields: []*filedesc.FieldBuilder{
				{Name: "id", Number: 1, Label: int32(protoreflect.Optional), Type: int32(protoreflect.Int32Kind)},
				{Name: "name", Number: 2, Label: int32(protoreflect.Optional), Type: int32(protoreflect.StringKind)},
				{Name: "tags", Number: 3, Label: int32(protoreflect.Repeated), Type: int32(protoreflect.StringKind)},
				{Name: "label", Number: 4, Label: int32(protoreflect.Optional), Type: int32(protoreflect.StringKind), OneofIndex: 0, HasOneofIndex: true},
				{Name: "code", Number: 5, Label: int32(protoreflect.Optional), Type: int32(protoreflect.Int32Kind), OneofIndex: 0, HasOneofIndex: true},
				{Name: "scores", Number: 6, Label: int32(protoreflect.Repeated), Type: int32(protoreflect.MessageKind), TypeName: "acme.widget.Widget.ScoresEntry"},
			},
			Oneofs: []*filedesc.OneofBuilder{{Name: "kind"}},
			Messages: []*filedesc.MessageBuilder{{
				Name:       "ScoresEntry",
				IsMapEntry: true,
				Fields: []*filedesc.FieldBuilder{
					{Name: "key", Number: 1, Label: int32(protoreflect.Optional), Type: int32(protoreflect.StringKind)},
					{Name: "value", Number: 2, Label: int32(protoreflect.Optional), Type: int32(protoreflect.Int32Kind)},
				},
			}},
		}},
	})
	require.NoError(t, err)

	md := f.DescriptorByName("acme.widget.Widget.ScoresEntry")
	require.NotNil(t, md)
	f.SetResolver(selfResolver{f})
	return f
}

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

func widgetMsg(t *testing.T) protoreflect.MessageDescriptor {
	f := buildWidget(t)
	md := f.Messages().ByName("Widget")
	require.NotNil(t, md)
	return md
}

func TestSetGetHasClear(t *testing.T) {
	md := widgetMsg(t)
	m := NewMessage(md)
	idField := md.Fields().ByName("id")

	require.False(t, m.Has(idField))
	require.Equal(t, int64(0), m.Get(idField).Int())

	require.NoError(t, m.Set(idField, protoreflect.Int32Value(42)))
	require.True(t, m.Has(idField))
	require.Equal(t, int64(42), m.Get(idField).Int())

	m.Clear(idField)
	require.False(t, m.Has(idField))
}

func TestProto3ZeroValueIsExplicitlySet(t *testing.T) {
	md := widgetMsg(t)
	m := NewMessage(md)
	nameField := md.Fields().ByName("name")

	require.False(t, m.Has(nameField))

	require.NoError(t, m.Set(nameField, protoreflect.StringValue("")))
	require.True(t, m.Has(nameField))

	require.NoError(t, m.Set(nameField, protoreflect.StringValue("x")))
	require.True(t, m.Has(nameField))

	m.Clear(nameField)
	require.False(t, m.Has(nameField))
}

func TestSetTypeMismatch(t *testing.T) {
	md := widgetMsg(t)
	m := NewMessage(md)
	idField := md.Fields().ByName("id")

	err := m.Set(idField, protoreflect.StringValue("nope"))
	require.Error(t, err)
}

func TestOneofExclusivity(t *testing.T) {
	md := widgetMsg(t)
	m := NewMessage(md)
	label := md.Fields().ByName("label")
	code := md.Fields().ByName("code")
	kind := md.Oneofs().ByName("kind")

	require.NoError(t, m.Set(label, protoreflect.StringValue("a")))
	require.Equal(t, label, m.WhichOneof(kind))

	require.NoError(t, m.Set(code, protoreflect.Int32Value(7)))
	require.Equal(t, code, m.WhichOneof(kind))
	require.False(t, m.Has(label))
}

func TestRepeatedFieldOperations(t *testing.T) {
	md := widgetMsg(t)
	m := NewMessage(md)
	tags := md.Fields().ByName("tags")

	require.NoError(t, m.AddRepeated(tags, protoreflect.StringValue("a")))
	require.NoError(t, m.AddRepeated(tags, protoreflect.StringValue("b")))
	require.True(t, m.Has(tags))
	require.Equal(t, 2, m.Get(tags).List().Len())

	err := m.AddRepeated(tags, protoreflect.Int32Value(1))
	require.Error(t, err)
}

func TestMapFieldOperations(t *testing.T) {
	md := widgetMsg(t)
	m := NewMessage(md)
	scores := md.Fields().ByName("scores")
	require.True(t, scores.IsMap())

	require.NoError(t, m.SetMapEntry(scores, protoreflect.StringValue("alice"), protoreflect.Int32Value(10)))
	require.NoError(t, m.SetMapEntry(scores, protoreflect.StringValue("bob"), protoreflect.Int32Value(20)))
	require.True(t, m.Has(scores))

	v, ok := m.Get(scores).Map().Get(protoreflect.StringValue("alice"))
	require.True(t, ok)
	require.Equal(t, int64(10), v.Int())

	require.NoError(t, m.RemoveMapEntry(scores, protoreflect.StringValue("alice")))
	_, ok = m.Get(scores).Map().Get(protoreflect.StringValue("alice"))
	require.False(t, ok)

	// Removing an absent key is a no-op, not an error.
	require.NoError(t, m.RemoveMapEntry(scores, protoreflect.StringValue("carol")))

	err := m.SetMapEntry(scores, protoreflect.Int32Value(1), protoreflect.Int32Value(1))
	require.Error(t, err)
}

func TestRangeAscendingFieldNumber(t *testing.T) {
	md := widgetMsg(t)
	m := NewMessage(md)
	nameField := md.Fields().ByName("name")
	idField := md.Fields().ByName("id")

	require.NoError(t, m.Set(nameField, protoreflect.StringValue("x")))
	require.NoError(t, m.Set(idField, protoreflect.Int32Value(1)))

	var seen []protoreflect.FieldNumber
	m.Range(func(fd protoreflect.FieldDescriptor, v protoreflect.Value) bool {
		seen = append(seen, fd.Number())
		return true
	})
	require.Equal(t, []protoreflect.FieldNumber{1, 2}, seen)
}

func TestUnknownFieldsRoundTrip(t *testing.T) {
	md := widgetMsg(t)
	m := NewMessage(md)
	require.Empty(t, m.GetUnknown())

	raw := protoreflect.RawFields([]byte{0x08, 0x01})
	m.SetUnknown(raw)
	require.Equal(t, raw, m.GetUnknown())
}

func TestEquals(t *testing.T) {
	md := widgetMsg(t)
	idField := md.Fields().ByName("id")
	tags := md.Fields().ByName("tags")

	a := NewMessage(md)
	require.NoError(t, a.Set(idField, protoreflect.Int32Value(1)))
	require.NoError(t, a.AddRepeated(tags, protoreflect.StringValue("x")))

	b := NewMessage(md)
	require.NoError(t, b.Set(idField, protoreflect.Int32Value(1)))
	require.NoError(t, b.AddRepeated(tags, protoreflect.StringValue("x")))

	require.True(t, a.Equals(b))

	require.NoError(t, b.AddRepeated(tags, protoreflect.StringValue("y")))
	require.False(t, a.Equals(b))
}

func TestNewFieldConstructsEmptyContainers(t *testing.T) {
	md := widgetMsg(t)
	m := NewMessage(md)
	tags := md.Fields().ByName("tags")
	scores := md.Fields().ByName("scores")

	lv := m.NewField(tags)
	require.True(t, lv.IsList())
	require.Equal(t, 0, lv.List().Len())

	mv := m.NewField(scores)
	require.True(t, mv.IsMap())
	require.Equal(t, 0, mv.Map().Len())
}
