// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package filedesc

import (
	"github.com/protowire/protoreflect/internal/errors"
	"github.com/protowire/protoreflect/protoreflect"
)

// validateFile is the single fail-fast validation entrypoint run once, at
// the end of Build, over the fully-assembled descriptor tree: empty names
// are rejected during construction already, so this pass covers what needs
// the whole tree present — duplicate field numbers (checked per-message
// during construction), map-entry layout, and same-file dangling
// message/enum references. Cross-file references are left unresolved until
// a TypeResolver is attached with File.SetResolver (registry.Pool.RegisterFile
// attaches the pool).
func validateFile(f *File) error {
	for i := 0; i < f.messages.Len(); i++ {
		if err := validateMessage(f, f.messages.Get(i).(*Message)); err != nil {
			return err
		}
	}
	return nil
}

func validateMessage(f *File, m *Message) error {
	if m.isMapEntry {
		if err := validateMapEntry(m); err != nil {
			return err
		}
	}
	for i := 0; i < m.fields.Len(); i++ {
		fd := m.fields.Get(i).(*Field)
		if fd.kind == protoreflect.MessageKind || fd.kind == protoreflect.GroupKind || fd.kind == protoreflect.EnumKind {
			if err := validateLocalReference(f, fd); err != nil {
				return err
			}
		}
	}
	for i := 0; i < m.messages.Len(); i++ {
		if err := validateMessage(f, m.messages.Get(i).(*Message)); err != nil {
			return err
		}
	}
	return nil
}

// validateLocalReference checks a message/enum-typed field's type_name
// against this file's own symbol table when the name appears to be declared
// locally (i.e. it has this file's non-empty package as a prefix; in a file
// with no package nothing is flagged). References into other files are left
// for registry resolution,
// since this file's dependencies are not loaded yet at Build time.
func validateLocalReference(f *File, fd *Field) error {
	if _, ok := f.bySymbol[fd.typeName]; ok {
		return nil
	}
	// Only flag as dangling when the name is clearly intended to resolve
	// within this file's own package; an unresolvable cross-package name is
	// valid until the dependency graph is registered.
	if f.pkg != "" && !hasPrefix(fd.typeName, f.pkg) {
		return nil
	}
	if f.pkg == "" {
		return nil
	}
	return errors.New(errors.KindValidation, "%s: dangling reference to %q", fd.fullName, fd.typeName)
}

func hasPrefix(name, pkg protoreflect.FullName) bool {
	n, p := string(name), string(pkg)
	return len(n) > len(p) && n[:len(p)] == p && n[len(p)] == '.'
}

// validateMapEntry enforces the synthetic map-entry layout: exactly two
// non-repeated fields, numbered 1 (key) and 2 (value), with a key kind drawn
// from protoreflect.Kind.IsValidMapKeyKind.
func validateMapEntry(m *Message) error {
	if m.fields.Len() != 2 {
		return errors.New(errors.KindValidation, "%s: map entry must have exactly 2 fields", m.fullName)
	}
	key := m.fields.ByNumber(1)
	val := m.fields.ByNumber(2)
	if key == nil || val == nil {
		return errors.New(errors.KindValidation, "%s: map entry must number fields 1 (key) and 2 (value)", m.fullName)
	}
	if key.Cardinality() == protoreflect.Repeated || val.Cardinality() == protoreflect.Repeated {
		return errors.New(errors.KindValidation, "%s: map entry fields must not be repeated", m.fullName)
	}
	if !key.Kind().IsValidMapKeyKind() {
		return errors.New(errors.KindMapKeyTypeInvalid, "%s: invalid map key kind %v", m.fullName, key.Kind())
	}
	return nil
}
