// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package filedesc

import (
	"strconv"
	"strings"

	"github.com/protowire/protoreflect/internal/errors"
	"github.com/protowire/protoreflect/protoreflect"
)

// NewFileFromProto decodes the wire bytes of a FileDescriptorProto and
// builds a fully-formed, validated File. The resulting descriptors have
// unresolved message/enum field types (MessageType/EnumType return nil)
// until File.SetResolver is given a TypeResolver (registry.Pool.RegisterFile
// does this on registration).
func NewFileFromProto(b []byte) (*File, error) {
	fb, err := decodeFile(b)
	if err != nil {
		return nil, err
	}
	return Build(fb)
}

// Build constructs and validates a File from an explicit FileBuilder,
// without going through the wire decoder. Used both by NewFileFromProto and
// directly by callers hand-authoring a descriptor (the well-known type
// bootstrap set).
func Build(fb *FileBuilder) (*File, error) {
	if fb.Name == "" {
		return nil, errors.New(errors.KindValidation, "file descriptor has no name")
	}
	syntax := protoreflect.Proto2
	switch fb.Syntax {
	case "", "proto2":
		syntax = protoreflect.Proto2
	case "proto3":
		syntax = protoreflect.Proto3
	default:
		return nil, errors.New(errors.KindValidation, "file %q: unrecognized syntax %q", fb.Name, fb.Syntax)
	}

	f := &File{
		path:   fb.Name,
		pkg:    protoreflect.FullName(fb.Package),
		deps:   append([]string(nil), fb.Dependencies...),
		syntax: syntax,
	}
	if f.pkg != "" && !f.pkg.IsValid() {
		return nil, errors.New(errors.KindValidation, "file %q: invalid package name %q", fb.Name, fb.Package)
	}

	b := &fileBuildCtx{file: f, bySymbol: make(map[protoreflect.FullName]protoreflect.Descriptor)}

	for i, mb := range fb.Messages {
		m, err := b.buildMessage(mb, f, i, f.pkg)
		if err != nil {
			return nil, err
		}
		f.messages.list = append(f.messages.list, m)
	}
	for i, eb := range fb.Enums {
		e, err := b.buildEnum(eb, f, i, f.pkg)
		if err != nil {
			return nil, err
		}
		f.enums.list = append(f.enums.list, e)
	}
	for i, sb := range fb.Services {
		s, err := b.buildService(sb, f, i)
		if err != nil {
			return nil, err
		}
		f.services.list = append(f.services.list, s)
	}

	f.messages.byName = indexByName(f.messages.list, func(m *Message) protoreflect.Name { return m.name })
	f.enums.byName = indexByName(f.enums.list, func(e *Enum) protoreflect.Name { return e.name })
	f.services.byName = indexByName(f.services.list, func(s *Service) protoreflect.Name { return s.name })
	f.bySymbol = b.bySymbol

	if err := validateFile(f); err != nil {
		return nil, err
	}
	return f, nil
}

// fileBuildCtx accumulates the flat symbol table while descending the tree.
type fileBuildCtx struct {
	file     *File
	bySymbol map[protoreflect.FullName]protoreflect.Descriptor
}

func indexByName[T any](list []T, name func(T) protoreflect.Name) map[protoreflect.Name]T {
	m := make(map[protoreflect.Name]T, len(list))
	for _, v := range list {
		m[name(v)] = v
	}
	return m
}

func (b *fileBuildCtx) buildMessage(mb *MessageBuilder, parent protoreflect.Descriptor, index int, parentName protoreflect.FullName) (*Message, error) {
	if !protoreflect.Name(mb.Name).IsValid() {
		return nil, errors.New(errors.KindValidation, "invalid message name %q", mb.Name)
	}
	fullName := parentName.Append(protoreflect.Name(mb.Name))
	if _, dup := b.bySymbol[fullName]; dup {
		return nil, errors.New(errors.KindDuplicateSymbol, "duplicate symbol %q", fullName)
	}
	m := &Message{
		parent:     parent,
		index:      index,
		syntax:     b.file.syntax,
		name:       protoreflect.Name(mb.Name),
		fullName:   fullName,
		isMapEntry: mb.IsMapEntry,
	}
	b.bySymbol[fullName] = m

	for _, rr := range mb.ReservedRanges {
		for n := rr[0]; n < rr[1]; n++ {
			m.reserved = append(m.reserved, protoreflect.FieldNumber(n))
		}
	}

	// Build nested types first so field resolution of nested message/enum
	// references at least finds siblings declared before this pass recurses
	// into fields (cross-references are still resolved lazily via TypeName).
	for i, nb := range mb.Messages {
		nm, err := b.buildMessage(nb, m, i, fullName)
		if err != nil {
			return nil, err
		}
		m.messages.list = append(m.messages.list, nm)
	}
	for i, eb := range mb.Enums {
		ne, err := b.buildEnum(eb, m, i, fullName)
		if err != nil {
			return nil, err
		}
		m.enums.list = append(m.enums.list, ne)
	}

	oneofs := make([]*Oneof, len(mb.Oneofs))
	for i, ob := range mb.Oneofs {
		if !protoreflect.Name(ob.Name).IsValid() {
			return nil, errors.New(errors.KindValidation, "%s: invalid oneof name %q", fullName, ob.Name)
		}
		oneofs[i] = &Oneof{
			parent:   m,
			index:    i,
			syntax:   b.file.syntax,
			name:     protoreflect.Name(ob.Name),
			fullName: fullName.Append(protoreflect.Name(ob.Name)),
		}
	}

	seenNumbers := make(map[protoreflect.FieldNumber]bool, len(mb.Fields))
	for i, fdb := range mb.Fields {
		fd, err := b.buildField(fdb, m, i, fullName, oneofs)
		if err != nil {
			return nil, err
		}
		if seenNumbers[fd.number] {
			return nil, errors.New(errors.KindValidation, "%s: duplicate field number %d", fullName, fd.number)
		}
		seenNumbers[fd.number] = true
		m.fields.list = append(m.fields.list, fd)
		if fd.oneof != nil {
			oo := fd.oneof.(*Oneof)
			oo.fields.list = append(oo.fields.list, fd)
		}
	}

	m.oneofs.list = oneofs
	m.oneofs.byName = indexByName(oneofs, func(o *Oneof) protoreflect.Name { return o.name })
	for _, oo := range oneofs {
		oo.fields.byName = indexByName(oo.fields.list, func(f *Field) protoreflect.Name { return f.name })
		byNum := make(map[protoreflect.FieldNumber]*Field, len(oo.fields.list))
		for _, f := range oo.fields.list {
			byNum[f.number] = f
		}
		oo.fields.byNumber = byNum
	}

	m.fields.byName = indexByName(m.fields.list, func(f *Field) protoreflect.Name { return f.name })
	m.fields.byJSONName = make(map[string]*Field, len(m.fields.list))
	m.fields.byNumber = make(map[protoreflect.FieldNumber]*Field, len(m.fields.list))
	for _, f := range m.fields.list {
		m.fields.byJSONName[f.jsonName] = f
		m.fields.byNumber[f.number] = f
	}

	m.messages.byName = indexByName(m.messages.list, func(x *Message) protoreflect.Name { return x.name })
	m.enums.byName = indexByName(m.enums.list, func(x *Enum) protoreflect.Name { return x.name })

	return m, nil
}

func (b *fileBuildCtx) buildField(fdb *FieldBuilder, parent *Message, index int, parentName protoreflect.FullName, oneofs []*Oneof) (*Field, error) {
	if !protoreflect.Name(fdb.Name).IsValid() {
		return nil, errors.New(errors.KindValidation, "%s: invalid field name %q", parentName, fdb.Name)
	}
	num := protoreflect.FieldNumber(fdb.Number)
	if !num.IsValidNumber() {
		return nil, errors.New(errors.KindValidation, "%s.%s: invalid field number %d", parentName, fdb.Name, fdb.Number)
	}
	card := protoreflect.Cardinality(fdb.Label)
	if !card.IsValid() {
		return nil, errors.New(errors.KindValidation, "%s.%s: invalid cardinality %d", parentName, fdb.Name, fdb.Label)
	}
	kind := protoreflect.Kind(fdb.Type)
	if !kind.IsValid() {
		return nil, errors.New(errors.KindValidation, "%s.%s: invalid kind %d", parentName, fdb.Name, fdb.Type)
	}

	jsonName := fdb.JSONName
	if !fdb.HasJSONName {
		jsonName = jsonNameFromFieldName(fdb.Name)
	}

	f := &Field{
		parent:      parent,
		index:       index,
		syntax:      b.file.syntax,
		name:        protoreflect.Name(fdb.Name),
		fullName:    parentName.Append(protoreflect.Name(fdb.Name)),
		number:      num,
		cardinality: card,
		kind:        kind,
		jsonName:    jsonName,
		packed:      fdb.Packed,
	}

	if kind == protoreflect.MessageKind || kind == protoreflect.GroupKind || kind == protoreflect.EnumKind {
		if fdb.TypeName == "" {
			return nil, errors.New(errors.KindValidation, "%s: missing type_name for message/enum field", f.fullName)
		}
		f.typeName = protoreflect.FullName(strings.TrimPrefix(fdb.TypeName, "."))
	}

	if fdb.HasOneofIndex {
		if int(fdb.OneofIndex) < 0 || int(fdb.OneofIndex) >= len(oneofs) {
			return nil, errors.New(errors.KindValidation, "%s: oneof_index %d out of range", f.fullName, fdb.OneofIndex)
		}
		f.oneof = oneofs[fdb.OneofIndex]
	}

	if fdb.HasDefault {
		v, err := parseDefault(kind, fdb.DefaultValue)
		if err != nil {
			return nil, errors.New(errors.KindValidation, "%s: invalid default %q: %v", f.fullName, fdb.DefaultValue, err)
		}
		f.def, f.hasDefault = v, true
	}

	return f, nil
}

func (b *fileBuildCtx) buildEnum(eb *EnumBuilder, parent protoreflect.Descriptor, index int, parentName protoreflect.FullName) (*Enum, error) {
	if !protoreflect.Name(eb.Name).IsValid() {
		return nil, errors.New(errors.KindValidation, "invalid enum name %q", eb.Name)
	}
	fullName := parentName.Append(protoreflect.Name(eb.Name))
	if _, dup := b.bySymbol[fullName]; dup {
		return nil, errors.New(errors.KindDuplicateSymbol, "duplicate symbol %q", fullName)
	}
	e := &Enum{
		parent:   parent,
		index:    index,
		syntax:   b.file.syntax,
		name:     protoreflect.Name(eb.Name),
		fullName: fullName,
	}
	b.bySymbol[fullName] = e

	if len(eb.Values) == 0 {
		return nil, errors.New(errors.KindValidation, "%s: enum has no values", fullName)
	}
	if e.syntax == protoreflect.Proto3 && eb.Values[0].Number != 0 {
		return nil, errors.New(errors.KindValidation, "%s: proto3 enum's first value must be zero", fullName)
	}

	byNumber := make(map[protoreflect.EnumNumber]*EnumValue, len(eb.Values))
	for i, vb := range eb.Values {
		if !protoreflect.Name(vb.Name).IsValid() {
			return nil, errors.New(errors.KindValidation, "%s: invalid enum value name %q", fullName, vb.Name)
		}
		// Enum values are siblings of the enum itself in the namespace, not
		// children of it (protobuf's C++-scoping quirk).
		valFullName := parentName.Append(protoreflect.Name(vb.Name))
		v := &EnumValue{
			parent:   e,
			index:    i,
			syntax:   e.syntax,
			name:     protoreflect.Name(vb.Name),
			fullName: valFullName,
			number:   protoreflect.EnumNumber(vb.Number),
		}
		e.values.list = append(e.values.list, v)
		if _, ok := byNumber[v.number]; !ok {
			byNumber[v.number] = v
		}
	}
	e.values.byName = indexByName(e.values.list, func(v *EnumValue) protoreflect.Name { return v.name })
	e.values.byNumber = byNumber
	return e, nil
}

func (b *fileBuildCtx) buildService(sb *ServiceBuilder, parent protoreflect.Descriptor, index int) (*Service, error) {
	if !protoreflect.Name(sb.Name).IsValid() {
		return nil, errors.New(errors.KindValidation, "invalid service name %q", sb.Name)
	}
	fullName := b.file.pkg.Append(protoreflect.Name(sb.Name))
	s := &Service{
		parent:   parent,
		index:    index,
		syntax:   b.file.syntax,
		name:     protoreflect.Name(sb.Name),
		fullName: fullName,
	}
	b.bySymbol[fullName] = s

	for i, mb := range sb.Methods {
		if !protoreflect.Name(mb.Name).IsValid() {
			return nil, errors.New(errors.KindValidation, "%s: invalid method name %q", fullName, mb.Name)
		}
		m := &Method{
			parent:          s,
			index:           i,
			syntax:          s.syntax,
			name:            protoreflect.Name(mb.Name),
			fullName:        fullName.Append(protoreflect.Name(mb.Name)),
			inputTypeName:   protoreflect.FullName(strings.TrimPrefix(mb.InputType, ".")),
			outputTypeName:  protoreflect.FullName(strings.TrimPrefix(mb.OutputType, ".")),
			clientStreaming: mb.ClientStreaming,
			serverStreaming: mb.ServerStreaming,
		}
		s.methods.list = append(s.methods.list, m)
	}
	s.methods.byName = indexByName(s.methods.list, func(m *Method) protoreflect.Name { return m.name })
	return s, nil
}

// jsonNameFromFieldName implements descriptor.proto's default json_name
// derivation: drop underscores, capitalizing the following letter.
func jsonNameFromFieldName(s string) string {
	var out strings.Builder
	upcaseNext := false
	for _, r := range s {
		if r == '_' {
			upcaseNext = true
			continue
		}
		if upcaseNext && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		upcaseNext = false
		out.WriteRune(r)
	}
	return out.String()
}

func parseDefault(kind protoreflect.Kind, s string) (protoreflect.Value, error) {
	switch kind {
	case protoreflect.BoolKind:
		v, err := strconv.ParseBool(s)
		return protoreflect.BoolValue(v), err
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		v, err := strconv.ParseInt(s, 10, 32)
		return protoreflect.Int32Value(int32(v)), err
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		v, err := strconv.ParseInt(s, 10, 64)
		return protoreflect.Int64Value(v), err
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		v, err := strconv.ParseUint(s, 10, 32)
		return protoreflect.Uint32Value(uint32(v)), err
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		v, err := strconv.ParseUint(s, 10, 64)
		return protoreflect.Uint64Value(v), err
	case protoreflect.FloatKind:
		v, err := strconv.ParseFloat(s, 32)
		return protoreflect.Float32Value(float32(v)), err
	case protoreflect.DoubleKind:
		v, err := strconv.ParseFloat(s, 64)
		return protoreflect.Float64Value(v), err
	case protoreflect.StringKind:
		return protoreflect.StringValue(s), nil
	case protoreflect.BytesKind:
		return protoreflect.BytesValue([]byte(s)), nil
	case protoreflect.EnumKind:
		// Resolved by number is not possible without the target EnumDescriptor,
		// so an enum default is stored as EnumNumber(0); the declared symbol
		// name is not kept and the default is not re-resolved later.
		return protoreflect.EnumValue(0), nil
	default:
		return protoreflect.Value{}, errors.New(errors.KindValidation, "kind %v has no scalar default", kind)
	}
}
