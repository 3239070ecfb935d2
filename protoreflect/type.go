// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package protoreflect

// Descriptor is the set of accessors common to every descriptor kind. Each
// descriptor wraps the equivalent self-description message (e.g.
// MessageDescriptor mirrors google.protobuf.DescriptorProto) but adds
// efficient name-based lookup.
//
// Message- and enum-typed fields reference their target by FullName only;
// resolving that name to a concrete Descriptor is deferred to a Registry
// (see the registry package) so that reference cycles between descriptors
// never require circular pointers.
type Descriptor interface {
	// Parent returns the enclosing descriptor, or (nil, false) at the file
	// level or when the parent is not tracked.
	Parent() (Descriptor, bool)
	// Index is this descriptor's position within its parent's declaration
	// list, or 0 if unknown.
	Index() int
	// Syntax is the proto file syntax this descriptor was declared under.
	Syntax() Syntax
	// Name is the unqualified declaration name.
	Name() Name
	// FullName is the package-and-parent-qualified name.
	FullName() FullName
}

// FileDescriptor describes a complete proto file.
type FileDescriptor interface {
	Descriptor // FullName() == Package()

	// Path is the file name as it appeared in the FileDescriptorProto.
	Path() string
	// Package is the proto package namespace declared by the file.
	Package() FullName
	// Dependencies lists the paths of files this file imports.
	Dependencies() []string

	Messages() MessageDescriptors
	Enums() EnumDescriptors
	Services() ServiceDescriptors

	// DescriptorByName looks up any message, enum, or nested declaration in
	// this file by full name. It returns nil if not found.
	DescriptorByName(FullName) Descriptor
}

// MessageDescriptors is an ordered, name-indexed list of message declarations.
type MessageDescriptors interface {
	Len() int
	Get(i int) MessageDescriptor
	ByName(s Name) MessageDescriptor
}

// EnumDescriptors is an ordered, name-indexed list of enum declarations.
type EnumDescriptors interface {
	Len() int
	Get(i int) EnumDescriptor
	ByName(s Name) EnumDescriptor
}

// ServiceDescriptors is an ordered, name-indexed list of service declarations.
type ServiceDescriptors interface {
	Len() int
	Get(i int) ServiceDescriptor
	ByName(s Name) ServiceDescriptor
}

// FieldDescriptors is an ordered, multiply-indexed list of field declarations.
type FieldDescriptors interface {
	Len() int
	Get(i int) FieldDescriptor
	ByName(s Name) FieldDescriptor
	ByJSONName(s string) FieldDescriptor
	ByNumber(n FieldNumber) FieldDescriptor
}

// OneofDescriptors is an ordered, name-indexed list of oneof declarations.
type OneofDescriptors interface {
	Len() int
	Get(i int) OneofDescriptor
	ByName(s Name) OneofDescriptor
}

// EnumValueDescriptors is an ordered, multiply-indexed list of enum values.
type EnumValueDescriptors interface {
	Len() int
	Get(i int) EnumValueDescriptor
	ByName(s Name) EnumValueDescriptor
	ByNumber(n EnumNumber) EnumValueDescriptor
}

// MethodDescriptors is an ordered, name-indexed list of method declarations.
type MethodDescriptors interface {
	Len() int
	Get(i int) MethodDescriptor
	ByName(s Name) MethodDescriptor
}

// MapEntryInfo describes the synthetic two-field entry message backing a map
// field: field 1 is the key, field 2 is the value.
type MapEntryInfo interface {
	KeyField() FieldDescriptor
	ValueField() FieldDescriptor
}

// MessageDescriptor describes a message type.
type MessageDescriptor interface {
	Descriptor

	// IsMapEntry reports whether this is the compiler-synthesized entry
	// message for some map field (fields numbered 1 = key, 2 = value).
	IsMapEntry() bool

	Fields() FieldDescriptors
	Oneofs() OneofDescriptors
	Messages() MessageDescriptors
	Enums() EnumDescriptors

	// ReservedNumbers reports the field numbers reserved by "reserved"
	// declarations; used only for validation, not enforced at runtime here.
	ReservedNumbers() []FieldNumber
}

// FieldDescriptor describes a single field within a message.
type FieldDescriptor interface {
	Descriptor

	Number() FieldNumber
	Cardinality() Cardinality
	Kind() Kind

	// JSONName is the lowerCamelCase name used on the JSON wire, computed
	// from Name unless the descriptor carries an explicit json_name.
	JSONName() string

	// IsPacked reports whether a repeated scalar field should be encoded
	// packed. Always false for message, string, and bytes kinds.
	IsPacked() bool

	// IsMap reports whether this field represents a map; if true, Kind is
	// MessageKind, Cardinality is Repeated, and MessageType().IsMapEntry()
	// is true.
	IsMap() bool
	MapEntry() MapEntryInfo // non-nil iff IsMap()

	// HasExplicitPresence reports whether this field distinguishes "unset"
	// from "set to the zero value": proto2 scalars, oneof members, and
	// singular message fields all have explicit presence; proto3 scalars
	// outside a oneof do not.
	HasExplicitPresence() bool

	// HasDefault reports whether a scalar default was declared.
	HasDefault() bool
	// Default returns the parsed default value for scalar kinds.
	Default() Value

	// ContainingOneof is the oneof this field belongs to, or nil.
	ContainingOneof() OneofDescriptor

	// TypeName is the fully qualified name for message/enum fields.
	TypeName() FullName
	// MessageType resolves TypeName against a registry; it is nil until
	// resolved (registry.Pool.RegisterFile attaches the pool as resolver).
	MessageType() MessageDescriptor
	// EnumType resolves TypeName against a registry for enum fields.
	EnumType() EnumDescriptor
}

// OneofDescriptor describes a oneof declaration.
type OneofDescriptor interface {
	Descriptor
	Fields() FieldDescriptors
}

// EnumDescriptor describes an enum type.
type EnumDescriptor interface {
	Descriptor
	Values() EnumValueDescriptors
}

// EnumValueDescriptor describes a single named constant of an enum. Per the
// protobuf namespacing rule, its FullName is a sibling of the enum's
// FullName, not a child of it.
type EnumValueDescriptor interface {
	Descriptor
	Number() EnumNumber
}

// ServiceDescriptor describes a service declaration. Recorded for
// completeness; no runtime dispatch is implemented for it.
type ServiceDescriptor interface {
	Descriptor
	Methods() MethodDescriptors
}

// MethodDescriptor describes a single RPC method.
type MethodDescriptor interface {
	Descriptor
	InputType() MessageDescriptor
	OutputType() MessageDescriptor
	IsStreamingClient() bool
	IsStreamingServer() bool
}
