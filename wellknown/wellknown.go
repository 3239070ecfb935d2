// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wellknown hardcodes the descriptors for the well-known protobuf
// types spec.md §4.5 names as the built-in pool (Any, Timestamp, Duration,
// Empty, and the scalar wrapper types), plus the google.protobuf.Struct
// family carried forward from the canonical JSON mapping document per
// SPEC_FULL.md §8/§11.
//
// Each descriptor is built directly through filedesc.Build from an explicit
// FileBuilder rather than decoded from wire bytes: these types describe
// themselves, so there is no bootstrap chicken-and-egg problem here the way
// there is for FileDescriptorProto itself, but authoring them by hand still
// avoids ever depending on a generated descriptor.pb.go.
package wellknown

import (
	"github.com/protowire/protoreflect/filedesc"
	"github.com/protowire/protoreflect/protoreflect"
)

const pkg = "google.protobuf"

func field(name string, number int32, card protoreflect.Cardinality, kind protoreflect.Kind, typeName string) *filedesc.FieldBuilder {
	return &filedesc.FieldBuilder{
		Name:     name,
		Number:   number,
		Label:    int32(card),
		Type:     int32(kind),
		TypeName: typeName,
	}
}

func oneofField(name string, number int32, kind protoreflect.Kind, typeName string, oneofIndex int32) *filedesc.FieldBuilder {
	fb := field(name, number, protoreflect.Optional, kind, typeName)
	fb.HasOneofIndex, fb.OneofIndex = true, oneofIndex
	return fb
}

func mustBuild(fb *filedesc.FileBuilder) *filedesc.File {
	f, err := filedesc.Build(fb)
	if err != nil {
		panic("wellknown: " + err.Error())
	}
	f.SetResolver(selfResolver{f})
	return f
}

// selfResolver resolves message/enum references within a single built-in
// file that never references outside its own package (Any and the wrapper
// types are self-contained; struct.proto's Struct/Value/ListValue cycle is
// resolved within this same file too).
type selfResolver struct{ f *filedesc.File }

func (r selfResolver) FindMessageByName(n protoreflect.FullName) protoreflect.MessageDescriptor {
	if d, ok := r.f.DescriptorByName(n).(protoreflect.MessageDescriptor); ok {
		return d
	}
	return nil
}

func (r selfResolver) FindEnumByName(n protoreflect.FullName) protoreflect.EnumDescriptor {
	if d, ok := r.f.DescriptorByName(n).(protoreflect.EnumDescriptor); ok {
		return d
	}
	return nil
}

// Any returns the google.protobuf.Any descriptor: {string type_url = 1;
// bytes value = 2;}.
func Any() *filedesc.File {
	return mustBuild(&filedesc.FileBuilder{
		Name:    "google/protobuf/any.proto",
		Package: pkg,
		Syntax:  "proto3",
		Messages: []*filedesc.MessageBuilder{{
			Name: "Any",
			Fields: []*filedesc.FieldBuilder{
				field("type_url", 1, protoreflect.Optional, protoreflect.StringKind, ""),
				field("value", 2, protoreflect.Optional, protoreflect.BytesKind, ""),
			},
		}},
	})
}

// Timestamp returns the google.protobuf.Timestamp descriptor: {int64
// seconds = 1; int32 nanos = 2;}.
func Timestamp() *filedesc.File {
	return mustBuild(&filedesc.FileBuilder{
		Name:    "google/protobuf/timestamp.proto",
		Package: pkg,
		Syntax:  "proto3",
		Messages: []*filedesc.MessageBuilder{{
			Name: "Timestamp",
			Fields: []*filedesc.FieldBuilder{
				field("seconds", 1, protoreflect.Optional, protoreflect.Int64Kind, ""),
				field("nanos", 2, protoreflect.Optional, protoreflect.Int32Kind, ""),
			},
		}},
	})
}

// Duration returns the google.protobuf.Duration descriptor: {int64
// seconds = 1; int32 nanos = 2;}.
func Duration() *filedesc.File {
	return mustBuild(&filedesc.FileBuilder{
		Name:    "google/protobuf/duration.proto",
		Package: pkg,
		Syntax:  "proto3",
		Messages: []*filedesc.MessageBuilder{{
			Name: "Duration",
			Fields: []*filedesc.FieldBuilder{
				field("seconds", 1, protoreflect.Optional, protoreflect.Int64Kind, ""),
				field("nanos", 2, protoreflect.Optional, protoreflect.Int32Kind, ""),
			},
		}},
	})
}

// Empty returns the google.protobuf.Empty descriptor: {} (no fields).
func Empty() *filedesc.File {
	return mustBuild(&filedesc.FileBuilder{
		Name:    "google/protobuf/empty.proto",
		Package: pkg,
		Syntax:  "proto3",
		Messages: []*filedesc.MessageBuilder{{
			Name: "Empty",
		}},
	})
}

// wrapperKinds lists the nine scalar wrapper message names alongside the
// Kind their single "value" field carries, per
// google/protobuf/wrappers.proto.
var wrapperKinds = []struct {
	name string
	kind protoreflect.Kind
}{
	{"DoubleValue", protoreflect.DoubleKind},
	{"FloatValue", protoreflect.FloatKind},
	{"Int64Value", protoreflect.Int64Kind},
	{"UInt64Value", protoreflect.Uint64Kind},
	{"Int32Value", protoreflect.Int32Kind},
	{"UInt32Value", protoreflect.Uint32Kind},
	{"BoolValue", protoreflect.BoolKind},
	{"StringValue", protoreflect.StringKind},
	{"BytesValue", protoreflect.BytesKind},
}

// Wrappers returns the google.protobuf.*Value scalar wrapper descriptors,
// each a single-field message {<kind> value = 1;}.
func Wrappers() *filedesc.File {
	fb := &filedesc.FileBuilder{
		Name:    "google/protobuf/wrappers.proto",
		Package: pkg,
		Syntax:  "proto3",
	}
	for _, w := range wrapperKinds {
		fb.Messages = append(fb.Messages, &filedesc.MessageBuilder{
			Name: w.name,
			Fields: []*filedesc.FieldBuilder{
				field("value", 1, protoreflect.Optional, w.kind, ""),
			},
		})
	}
	return mustBuild(fb)
}

// Struct returns the google.protobuf.{Struct,Value,ListValue,NullValue}
// family from google/protobuf/struct.proto. Struct.fields is a map field
// backed by a synthetic FieldsEntry message; Value is a oneof over every
// JSON scalar shape plus nested Struct/ListValue, forming a legal reference
// cycle (Struct -> Value -> Struct) that filedesc/registry must tolerate by
// construction (late-bound type names, no pointer cycles).
func Struct() *filedesc.File {
	fieldsEntry := &filedesc.MessageBuilder{
		Name:       "FieldsEntry",
		IsMapEntry: true,
		Fields: []*filedesc.FieldBuilder{
			field("key", 1, protoreflect.Optional, protoreflect.StringKind, ""),
			field("value", 2, protoreflect.Optional, protoreflect.MessageKind, ".google.protobuf.Value"),
		},
	}
	structMsg := &filedesc.MessageBuilder{
		Name: "Struct",
		Fields: []*filedesc.FieldBuilder{
			field("fields", 1, protoreflect.Repeated, protoreflect.MessageKind, ".google.protobuf.Struct.FieldsEntry"),
		},
		Messages: []*filedesc.MessageBuilder{fieldsEntry},
	}
	valueMsg := &filedesc.MessageBuilder{
		Name:   "Value",
		Oneofs: []*filedesc.OneofBuilder{{Name: "kind"}},
		Fields: []*filedesc.FieldBuilder{
			oneofField("null_value", 1, protoreflect.EnumKind, ".google.protobuf.NullValue", 0),
			oneofField("number_value", 2, protoreflect.DoubleKind, "", 0),
			oneofField("string_value", 3, protoreflect.StringKind, "", 0),
			oneofField("bool_value", 4, protoreflect.BoolKind, "", 0),
			oneofField("struct_value", 5, protoreflect.MessageKind, ".google.protobuf.Struct", 0),
			oneofField("list_value", 6, protoreflect.MessageKind, ".google.protobuf.ListValue", 0),
		},
	}
	listValueMsg := &filedesc.MessageBuilder{
		Name: "ListValue",
		Fields: []*filedesc.FieldBuilder{
			field("values", 1, protoreflect.Repeated, protoreflect.MessageKind, ".google.protobuf.Value"),
		},
	}
	nullValueEnum := &filedesc.EnumBuilder{
		Name: "NullValue",
		Values: []*filedesc.EnumValueBuilder{
			{Name: "NULL_VALUE", Number: 0},
		},
	}

	return mustBuild(&filedesc.FileBuilder{
		Name:     "google/protobuf/struct.proto",
		Package:  pkg,
		Syntax:   "proto3",
		Messages: []*filedesc.MessageBuilder{structMsg, valueMsg, listValueMsg},
		Enums:    []*filedesc.EnumBuilder{nullValueEnum},
	})
}

// Files returns every built-in file this package hardcodes, in an order
// safe to register sequentially (none depend on another).
func Files() []*filedesc.File {
	return []*filedesc.File{Any(), Timestamp(), Duration(), Empty(), Wrappers(), Struct()}
}
