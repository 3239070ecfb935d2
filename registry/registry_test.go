// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package registry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/protowire/protoreflect/filedesc"
	"github.com/protowire/protoreflect/protoreflect"
)

func widgetFile() *filedesc.File {
	f, err := filedesc.Build(&filedesc.FileBuilder{
		Name:    "widget.proto",
		Package: "acme.widget",
		Syntax:  "proto3",
		Messages: []*filedesc.MessageBuilder{{
			Name: "Widget",
			Fields: []*filedesc.FieldBuilder{
				{Name: "id", Number: 1, Label: int32(protoreflect.Optional), Type: int32(protoreflect.Int32Kind)},
			},
		}},
	})
	if err != nil {
		panic(err)
	}
	return f
}

func TestRegisterAndFind(t *testing.T) {
	p := NewPool()
	require.NoError(t, p.RegisterFile(widgetFile()))

	md := p.FindMessageByName("acme.widget.Widget")
	require.NotNil(t, md)
	require.Equal(t, protoreflect.FullName("acme.widget.Widget"), md.FullName())

	fd := p.FindFieldByName("acme.widget.Widget.id")
	require.NotNil(t, fd)
	require.Equal(t, protoreflect.FieldNumber(1), fd.Number())

	file, ok := p.FindFileByPath("widget.proto")
	require.True(t, ok)
	require.Equal(t, "widget.proto", file.Path())
}

func TestDuplicateFileRejected(t *testing.T) {
	p := NewPool()
	require.NoError(t, p.RegisterFile(widgetFile()))
	err := p.RegisterFile(widgetFile())
	require.Error(t, err)
}

func TestDuplicateSymbolRejectedAtomically(t *testing.T) {
	p := NewPool()
	require.NoError(t, p.RegisterFile(widgetFile()))

	f2, err := filedesc.Build(&filedesc.FileBuilder{
		Name:    "widget2.proto",
		Package: "acme.widget",
		Syntax:  "proto3",
		Messages: []*filedesc.MessageBuilder{
			{Name: "Gizmo"},
			{Name: "Widget"}, // collides with widget.proto's acme.widget.Widget
		},
	})
	require.NoError(t, err)

	err = p.RegisterFile(f2)
	require.Error(t, err)

	// Atomicity: Gizmo must not have leaked in despite being declared first
	// in the same (rejected) file.
	require.Nil(t, p.FindMessageByName("acme.widget.Gizmo"))
}

func TestMissingDependencyRejected(t *testing.T) {
	p := NewPool()
	f, err := filedesc.Build(&filedesc.FileBuilder{
		Name:         "dependent.proto",
		Package:      "acme.dep",
		Syntax:       "proto3",
		Dependencies: []string{"missing.proto"},
	})
	require.NoError(t, err)
	require.Error(t, p.RegisterFile(f))
}

func TestWithBuiltins(t *testing.T) {
	p := NewPool(WithBuiltins())
	require.NotNil(t, p.FindMessageByName("google.protobuf.Any"))
	require.NotNil(t, p.FindMessageByName("google.protobuf.Timestamp"))
	require.NotNil(t, p.FindMessageByName("google.protobuf.Duration"))
	require.NotNil(t, p.FindMessageByName("google.protobuf.Empty"))
	require.NotNil(t, p.FindMessageByName("google.protobuf.StringValue"))

	structMD := p.FindMessageByName("google.protobuf.Struct")
	require.NotNil(t, structMD)
	valueMD := p.FindMessageByName("google.protobuf.Value")
	require.NotNil(t, valueMD)

	// The Struct <-> Value reference cycle must resolve through the pool.
	fieldsField := structMD.Fields().ByName("fields")
	require.NotNil(t, fieldsField)
	require.True(t, fieldsField.IsMap())
	entry := fieldsField.MapEntry()
	require.NotNil(t, entry)
	require.Equal(t, protoreflect.FullName("google.protobuf.Value"), entry.ValueField().TypeName())
	require.Equal(t, valueMD, entry.ValueField().MessageType())

	structValueField := valueMD.Fields().ByName("struct_value")
	require.NotNil(t, structValueField)
	require.Equal(t, structMD, structValueField.MessageType())
}

func TestRangeFiles(t *testing.T) {
	p := NewPool()
	require.NoError(t, p.RegisterFile(widgetFile()))
	var seen []string
	p.RangeFiles(func(f protoreflect.FileDescriptor) bool {
		seen = append(seen, f.Path())
		return true
	})
	require.Equal(t, []string{"widget.proto"}, seen)
}

func crateFile() *filedesc.File {
	f, err := filedesc.Build(&filedesc.FileBuilder{
		Name:    "crate.proto",
		Package: "acme.crate",
		Syntax:  "proto3",
		Enums: []*filedesc.EnumBuilder{{
			Name:   "Status",
			Values: []*filedesc.EnumValueBuilder{{Name: "STATUS_UNKNOWN", Number: 0}},
		}},
		Messages: []*filedesc.MessageBuilder{
			{
				Name: "Crate",
				Fields: []*filedesc.FieldBuilder{
					{Name: "status", Number: 1, Label: int32(protoreflect.Optional), Type: int32(protoreflect.EnumKind), TypeName: "acme.crate.Status"},
					{Name: "contents", Number: 2, Label: int32(protoreflect.Optional), Type: int32(protoreflect.MessageKind), TypeName: "acme.crate.Item"},
					{Name: "labels", Number: 3, Label: int32(protoreflect.Repeated), Type: int32(protoreflect.MessageKind), TypeName: "acme.crate.Crate.LabelsEntry"},
				},
				Messages: []*filedesc.MessageBuilder{{
					Name:       "LabelsEntry",
					IsMapEntry: true,
					Fields: []*filedesc.FieldBuilder{
						{Name: "key", Number: 1, Label: int32(protoreflect.Optional), Type: int32(protoreflect.StringKind)},
						{Name: "value", Number: 2, Label: int32(protoreflect.Optional), Type: int32(protoreflect.StringKind)},
					},
				}},
			},
			{
				Name: "Item",
				Fields: []*filedesc.FieldBuilder{
					{Name: "sku", Number: 1, Label: int32(protoreflect.Optional), Type: int32(protoreflect.StringKind)},
				},
			},
		},
	})
	if err != nil {
		panic(err)
	}
	return f
}

func TestDependenciesClosure(t *testing.T) {
	p := NewPool()
	require.NoError(t, p.RegisterFile(crateFile()))

	deps := p.Dependencies("acme.crate.Crate")
	require.ElementsMatch(t, []protoreflect.FullName{
		"acme.crate.Status",
		"acme.crate.Item",
		"acme.crate.Crate.LabelsEntry",
	}, deps)
}

func TestDependenciesUnknownMessage(t *testing.T) {
	p := NewPool()
	require.NoError(t, p.RegisterFile(crateFile()))
	require.Nil(t, p.Dependencies("acme.crate.Missing"))
}

func TestDependenciesCycleSafe(t *testing.T) {
	p := NewPool(WithBuiltins())
	deps := p.Dependencies("google.protobuf.Struct")
	require.Contains(t, deps, protoreflect.FullName("google.protobuf.Value"))
}

func TestCreateMessage(t *testing.T) {
	p := NewPool()
	require.NoError(t, p.RegisterFile(widgetFile()))

	m, ok := p.CreateMessage("acme.widget.Widget")
	require.True(t, ok)
	require.Equal(t, protoreflect.FullName("acme.widget.Widget"), m.Descriptor().FullName())

	idField := m.Descriptor().Fields().ByName("id")
	require.False(t, m.Has(idField))

	_, ok = p.CreateMessage("acme.widget.Missing")
	require.False(t, ok)
}

func TestCreateMessageWithFields(t *testing.T) {
	p := NewPool()
	require.NoError(t, p.RegisterFile(widgetFile()))

	m, err := p.CreateMessageWithFields("acme.widget.Widget", map[string]interface{}{
		"id": int32(7),
	})
	require.NoError(t, err)
	idField := m.Descriptor().Fields().ByName("id")
	require.True(t, m.Has(idField))
	require.Equal(t, int64(7), m.Get(idField).Int())

	_, err = p.CreateMessageWithFields("acme.widget.Missing", nil)
	require.Error(t, err)
}
