// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package filedesc implements the concrete descriptor graph: File, Message,
// Field, Oneof, Enum, EnumValue, Service, and Method descriptors satisfying
// the interfaces declared in protoreflect, plus the means to build that
// graph either from the wire bytes of a FileDescriptorProto or from an
// explicit in-memory Builder.
//
// Decoding FileDescriptorProto wire bytes cannot go through this module's
// own generic wire codec (wireformat), since that codec needs a
// MessageDescriptor to drive it and FileDescriptorProto's own descriptor is
// exactly what a bootstrap load is trying to produce. Instead decodeFile
// and friends read directly off the wire using package-private field
// numbers recovered from the public descriptor.proto schema, mirroring how
// the teacher's internal/fileinit bootstraps its own descriptor types.
package filedesc

// FileBuilder is the explicit, in-memory construction path for a file
// descriptor: every field mirrors google.protobuf.FileDescriptorProto,
// keeping only what this library models (no extension ranges, no custom
// options). decodeFile populates a FileBuilder from wire bytes; callers
// building a descriptor by hand (e.g. the well-known-type bootstrap set)
// populate one directly and pass it to Build.
type FileBuilder struct {
	Name         string
	Package      string
	Dependencies []string
	Messages     []*MessageBuilder
	Enums        []*EnumBuilder
	Services     []*ServiceBuilder
	Syntax       string // "proto2", "proto3", or "" meaning proto2
}

// MessageBuilder mirrors google.protobuf.DescriptorProto.
type MessageBuilder struct {
	Name           string
	Fields         []*FieldBuilder
	Oneofs         []*OneofBuilder
	Messages       []*MessageBuilder
	Enums          []*EnumBuilder
	IsMapEntry     bool
	ReservedNames  []string
	ReservedRanges [][2]int32 // [start, end), per descriptor.proto convention
}

// FieldBuilder mirrors google.protobuf.FieldDescriptorProto.
type FieldBuilder struct {
	Name          string
	Number        int32
	Label         int32 // raw protoreflect.Cardinality value
	Type          int32 // raw protoreflect.Kind value
	TypeName      string
	JSONName      string
	HasJSONName   bool
	OneofIndex    int32
	HasOneofIndex bool
	DefaultValue  string
	HasDefault    bool
	Packed        bool
	HasPacked     bool
}

// OneofBuilder mirrors google.protobuf.OneofDescriptorProto.
type OneofBuilder struct {
	Name string
}

// EnumBuilder mirrors google.protobuf.EnumDescriptorProto.
type EnumBuilder struct {
	Name          string
	Values        []*EnumValueBuilder
	ReservedNames []string
}

// EnumValueBuilder mirrors google.protobuf.EnumValueDescriptorProto.
type EnumValueBuilder struct {
	Name   string
	Number int32
}

// ServiceBuilder mirrors google.protobuf.ServiceDescriptorProto.
type ServiceBuilder struct {
	Name    string
	Methods []*MethodBuilder
}

// MethodBuilder mirrors google.protobuf.MethodDescriptorProto.
type MethodBuilder struct {
	Name            string
	InputType       string
	OutputType      string
	ClientStreaming bool
	ServerStreaming bool
}
