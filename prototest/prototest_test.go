// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package prototest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/protowire/protoreflect/filedesc"
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

func buildCrateFile(t *testing.T) *filedesc.File {
	t.Helper()
	f, err := filedesc.Build(&filedesc.FileBuilder{
		Name:    "crate.proto",
		Package: "acme.crate",
		Syntax:  "proto3",
		Messages: []*filedesc.MessageBuilder{
			{
				Name: "Crate",
				Fields: []*filedesc.FieldBuilder{
					{Name: "id", Number: 1, Label: int32(protoreflect.Optional), Type: int32(protoreflect.Int32Kind)},
					{Name: "label", Number: 2, Label: int32(protoreflect.Optional), Type: int32(protoreflect.StringKind)},
					{Name: "weight", Number: 3, Label: int32(protoreflect.Optional), Type: int32(protoreflect.DoubleKind)},
					{Name: "tags", Number: 4, Label: int32(protoreflect.Repeated), Type: int32(protoreflect.StringKind)},
					{Name: "contents", Number: 5, Label: int32(protoreflect.Optional), Type: int32(protoreflect.MessageKind), TypeName: "acme.crate.Item"},
					{Name: "items", Number: 6, Label: int32(protoreflect.Repeated), Type: int32(protoreflect.MessageKind), TypeName: "acme.crate.Item"},
					{Name: "bins", Number: 7, Label: int32(protoreflect.Repeated), Type: int32(protoreflect.MessageKind), TypeName: "acme.crate.Crate.BinsEntry"},
				},
				Messages: []*filedesc.MessageBuilder{{
					Name:       "BinsEntry",
					IsMapEntry: true,
					Fields: []*filedesc.FieldBuilder{
						{Name: "key", Number: 1, Label: int32(protoreflect.Optional), Type: int32(protoreflect.StringKind)},
						{Name: "value", Number: 2, Label: int32(protoreflect.Optional), Type: int32(protoreflect.Int32Kind)},
					},
				}},
			},
			{
				Name: "Item",
				Fields: []*filedesc.FieldBuilder{
					{Name: "sku", Number: 1, Label: int32(protoreflect.Optional), Type: int32(protoreflect.StringKind)},
					{Name: "quantity", Number: 2, Label: int32(protoreflect.Optional), Type: int32(protoreflect.Int32Kind)},
				},
			},
		},
	})
	require.NoError(t, err)
	f.SetResolver(selfResolver{f})
	return f
}

func TestExerciseCrate(t *testing.T) {
	f := buildCrateFile(t)
	crate := f.Messages().ByName("Crate")
	require.NotNil(t, crate)
	Exercise(t, crate)
}

func TestExerciseItem(t *testing.T) {
	f := buildCrateFile(t)
	item := f.Messages().ByName("Item")
	require.NotNil(t, item)
	Exercise(t, item)
}
