// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package filedesc

import (
	"github.com/protowire/protoreflect/protoreflect"
)

// File is the concrete protoreflect.FileDescriptor implementation.
type File struct {
	path         string
	pkg          protoreflect.FullName
	deps         []string
	syntax       protoreflect.Syntax
	messages     messageList
	enums        enumList
	services     serviceList
	bySymbol     map[protoreflect.FullName]protoreflect.Descriptor
}

func (f *File) Parent() (protoreflect.Descriptor, bool) { return nil, false }
func (f *File) Index() int                              { return 0 }
func (f *File) Syntax() protoreflect.Syntax              { return f.syntax }
func (f *File) Name() protoreflect.Name                  { return f.pkg.Name() }
func (f *File) FullName() protoreflect.FullName          { return f.pkg }
func (f *File) Path() string                             { return f.path }
func (f *File) Package() protoreflect.FullName           { return f.pkg }
func (f *File) Dependencies() []string                   { return f.deps }
func (f *File) Messages() protoreflect.MessageDescriptors { return &f.messages }
func (f *File) Enums() protoreflect.EnumDescriptors       { return &f.enums }
func (f *File) Services() protoreflect.ServiceDescriptors { return &f.services }

func (f *File) DescriptorByName(n protoreflect.FullName) protoreflect.Descriptor {
	return f.bySymbol[n]
}

// RangeSymbols iterates every message, enum, and service this
// file declares (its full flat symbol table), stopping early if fn returns
// false. Used by registry.Pool to index a newly registered file.
func (f *File) RangeSymbols(fn func(protoreflect.FullName, protoreflect.Descriptor) bool) {
	for n, d := range f.bySymbol {
		if !fn(n, d) {
			return
		}
	}
}

// Message is the concrete protoreflect.MessageDescriptor implementation.
type Message struct {
	parent     protoreflect.Descriptor
	index      int
	syntax     protoreflect.Syntax
	name       protoreflect.Name
	fullName   protoreflect.FullName
	isMapEntry bool
	fields     fieldList
	oneofs     oneofList
	messages   messageList
	enums      enumList
	reserved   []protoreflect.FieldNumber
}

func (m *Message) Parent() (protoreflect.Descriptor, bool) { return m.parent, m.parent != nil }
func (m *Message) Index() int                              { return m.index }
func (m *Message) Syntax() protoreflect.Syntax              { return m.syntax }
func (m *Message) Name() protoreflect.Name                  { return m.name }
func (m *Message) FullName() protoreflect.FullName          { return m.fullName }
func (m *Message) IsMapEntry() bool                         { return m.isMapEntry }
func (m *Message) Fields() protoreflect.FieldDescriptors    { return &m.fields }
func (m *Message) Oneofs() protoreflect.OneofDescriptors     { return &m.oneofs }
func (m *Message) Messages() protoreflect.MessageDescriptors { return &m.messages }
func (m *Message) Enums() protoreflect.EnumDescriptors       { return &m.enums }
func (m *Message) ReservedNumbers() []protoreflect.FieldNumber { return m.reserved }

// mapEntryInfo implements protoreflect.MapEntryInfo for a map field whose
// MessageType is a synthetic entry message (field 1 = key, field 2 = value).
type mapEntryInfo struct {
	key, val protoreflect.FieldDescriptor
}

func (e *mapEntryInfo) KeyField() protoreflect.FieldDescriptor   { return e.key }
func (e *mapEntryInfo) ValueField() protoreflect.FieldDescriptor { return e.val }

// Field is the concrete protoreflect.FieldDescriptor implementation. Message-
// and enum-typed fields store only the referenced FullName; MessageType and
// EnumType resolve it lazily by asking the owning File's resolver (set by
// the registry at registration/resolution time).
type Field struct {
	parent        protoreflect.Descriptor
	index         int
	syntax        protoreflect.Syntax
	name          protoreflect.Name
	fullName      protoreflect.FullName
	number        protoreflect.FieldNumber
	cardinality   protoreflect.Cardinality
	kind          protoreflect.Kind
	jsonName      string
	packed        bool
	hasDefault    bool
	def           protoreflect.Value
	oneof         protoreflect.OneofDescriptor
	typeName      protoreflect.FullName
	resolver      TypeResolver
}

// TypeResolver resolves a message/enum field's TypeName to its descriptor.
// A File's fields share one TypeResolver, installed by the registry once the
// file (and its dependencies) are registered; until then MessageType/EnumType
// return nil, matching spec.md's "may be absent until the containing file is
// registered."
type TypeResolver interface {
	FindMessageByName(protoreflect.FullName) protoreflect.MessageDescriptor
	FindEnumByName(protoreflect.FullName) protoreflect.EnumDescriptor
}

func (f *Field) Parent() (protoreflect.Descriptor, bool) { return f.parent, f.parent != nil }
func (f *Field) Index() int                              { return f.index }
func (f *Field) Syntax() protoreflect.Syntax              { return f.syntax }
func (f *Field) Name() protoreflect.Name                  { return f.name }
func (f *Field) FullName() protoreflect.FullName          { return f.fullName }
func (f *Field) Number() protoreflect.FieldNumber          { return f.number }
func (f *Field) Cardinality() protoreflect.Cardinality     { return f.cardinality }
func (f *Field) Kind() protoreflect.Kind                   { return f.kind }
func (f *Field) JSONName() string                          { return f.jsonName }
func (f *Field) HasDefault() bool                          { return f.hasDefault }
func (f *Field) Default() protoreflect.Value               { return f.def }
func (f *Field) ContainingOneof() protoreflect.OneofDescriptor { return f.oneof }
func (f *Field) TypeName() protoreflect.FullName           { return f.typeName }

func (f *Field) IsPacked() bool {
	if f.cardinality != protoreflect.Repeated {
		return false
	}
	switch f.kind {
	case protoreflect.MessageKind, protoreflect.GroupKind, protoreflect.StringKind, protoreflect.BytesKind:
		return false
	}
	return f.packed
}

func (f *Field) IsMap() bool {
	if !f.IsPacked() && f.cardinality == protoreflect.Repeated && f.kind == protoreflect.MessageKind {
		if md := f.MessageType(); md != nil {
			return md.IsMapEntry()
		}
	}
	return false
}

func (f *Field) MapEntry() protoreflect.MapEntryInfo {
	md := f.MessageType()
	if md == nil || !md.IsMapEntry() {
		return nil
	}
	return &mapEntryInfo{key: md.Fields().ByNumber(1), val: md.Fields().ByNumber(2)}
}

// HasExplicitPresence reports presence tracking per spec.md's rule: proto2
// fields, oneof members, and singular message fields all track presence;
// proto3 scalars outside a oneof do not.
func (f *Field) HasExplicitPresence() bool {
	if f.cardinality == protoreflect.Repeated {
		return false
	}
	if f.oneof != nil {
		return true
	}
	if f.kind == protoreflect.MessageKind || f.kind == protoreflect.GroupKind {
		return true
	}
	return f.syntax == protoreflect.Proto2
}

func (f *Field) MessageType() protoreflect.MessageDescriptor {
	if f.resolver == nil || f.typeName == "" {
		return nil
	}
	return f.resolver.FindMessageByName(f.typeName)
}

func (f *Field) EnumType() protoreflect.EnumDescriptor {
	if f.resolver == nil || f.typeName == "" {
		return nil
	}
	return f.resolver.FindEnumByName(f.typeName)
}

// Oneof is the concrete protoreflect.OneofDescriptor implementation.
type Oneof struct {
	parent   protoreflect.Descriptor
	index    int
	syntax   protoreflect.Syntax
	name     protoreflect.Name
	fullName protoreflect.FullName
	fields   fieldList // the subset of the parent message's fields in this oneof
}

func (o *Oneof) Parent() (protoreflect.Descriptor, bool)  { return o.parent, o.parent != nil }
func (o *Oneof) Index() int                               { return o.index }
func (o *Oneof) Syntax() protoreflect.Syntax               { return o.syntax }
func (o *Oneof) Name() protoreflect.Name                   { return o.name }
func (o *Oneof) FullName() protoreflect.FullName           { return o.fullName }
func (o *Oneof) Fields() protoreflect.FieldDescriptors     { return &o.fields }

// Enum is the concrete protoreflect.EnumDescriptor implementation.
type Enum struct {
	parent   protoreflect.Descriptor
	index    int
	syntax   protoreflect.Syntax
	name     protoreflect.Name
	fullName protoreflect.FullName
	values   enumValueList
}

func (e *Enum) Parent() (protoreflect.Descriptor, bool) { return e.parent, e.parent != nil }
func (e *Enum) Index() int                              { return e.index }
func (e *Enum) Syntax() protoreflect.Syntax              { return e.syntax }
func (e *Enum) Name() protoreflect.Name                  { return e.name }
func (e *Enum) FullName() protoreflect.FullName          { return e.fullName }
func (e *Enum) Values() protoreflect.EnumValueDescriptors { return &e.values }

// EnumValue is the concrete protoreflect.EnumValueDescriptor implementation.
// Per protobuf's C++-scoping rule, its FullName is a sibling of the
// enclosing Enum's FullName (Enum.Parent().Append(valueName)), not a child
// of the enum itself.
type EnumValue struct {
	parent   protoreflect.Descriptor
	index    int
	syntax   protoreflect.Syntax
	name     protoreflect.Name
	fullName protoreflect.FullName
	number   protoreflect.EnumNumber
}

func (v *EnumValue) Parent() (protoreflect.Descriptor, bool) { return v.parent, v.parent != nil }
func (v *EnumValue) Index() int                              { return v.index }
func (v *EnumValue) Syntax() protoreflect.Syntax              { return v.syntax }
func (v *EnumValue) Name() protoreflect.Name                  { return v.name }
func (v *EnumValue) FullName() protoreflect.FullName          { return v.fullName }
func (v *EnumValue) Number() protoreflect.EnumNumber           { return v.number }

// Service is the concrete protoreflect.ServiceDescriptor implementation.
// Stored for completeness; no dispatch is implemented over it.
type Service struct {
	parent   protoreflect.Descriptor
	index    int
	syntax   protoreflect.Syntax
	name     protoreflect.Name
	fullName protoreflect.FullName
	methods  methodList
}

func (s *Service) Parent() (protoreflect.Descriptor, bool) { return s.parent, s.parent != nil }
func (s *Service) Index() int                              { return s.index }
func (s *Service) Syntax() protoreflect.Syntax              { return s.syntax }
func (s *Service) Name() protoreflect.Name                  { return s.name }
func (s *Service) FullName() protoreflect.FullName          { return s.fullName }
func (s *Service) Methods() protoreflect.MethodDescriptors  { return &s.methods }

// Method is the concrete protoreflect.MethodDescriptor implementation.
type Method struct {
	parent            protoreflect.Descriptor
	index             int
	syntax            protoreflect.Syntax
	name              protoreflect.Name
	fullName          protoreflect.FullName
	inputTypeName     protoreflect.FullName
	outputTypeName    protoreflect.FullName
	clientStreaming   bool
	serverStreaming   bool
	resolver          TypeResolver
}

func (m *Method) Parent() (protoreflect.Descriptor, bool) { return m.parent, m.parent != nil }
func (m *Method) Index() int                              { return m.index }
func (m *Method) Syntax() protoreflect.Syntax              { return m.syntax }
func (m *Method) Name() protoreflect.Name                  { return m.name }
func (m *Method) FullName() protoreflect.FullName          { return m.fullName }
func (m *Method) IsStreamingClient() bool                  { return m.clientStreaming }
func (m *Method) IsStreamingServer() bool                  { return m.serverStreaming }

func (m *Method) InputType() protoreflect.MessageDescriptor {
	if m.resolver == nil {
		return nil
	}
	return m.resolver.FindMessageByName(m.inputTypeName)
}

func (m *Method) OutputType() protoreflect.MessageDescriptor {
	if m.resolver == nil {
		return nil
	}
	return m.resolver.FindMessageByName(m.outputTypeName)
}
