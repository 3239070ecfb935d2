// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package filedesc

import "github.com/protowire/protoreflect/protoreflect"

// messageList implements protoreflect.MessageDescriptors over a slice built
// once at construction time; byName is populated alongside.
type messageList struct {
	list   []*Message
	byName map[protoreflect.Name]*Message
}

func (l *messageList) Len() int { return len(l.list) }
func (l *messageList) Get(i int) protoreflect.MessageDescriptor { return l.list[i] }
func (l *messageList) ByName(s protoreflect.Name) protoreflect.MessageDescriptor {
	if m, ok := l.byName[s]; ok {
		return m
	}
	return nil
}

type enumList struct {
	list   []*Enum
	byName map[protoreflect.Name]*Enum
}

func (l *enumList) Len() int { return len(l.list) }
func (l *enumList) Get(i int) protoreflect.EnumDescriptor { return l.list[i] }
func (l *enumList) ByName(s protoreflect.Name) protoreflect.EnumDescriptor {
	if e, ok := l.byName[s]; ok {
		return e
	}
	return nil
}

type serviceList struct {
	list   []*Service
	byName map[protoreflect.Name]*Service
}

func (l *serviceList) Len() int { return len(l.list) }
func (l *serviceList) Get(i int) protoreflect.ServiceDescriptor { return l.list[i] }
func (l *serviceList) ByName(s protoreflect.Name) protoreflect.ServiceDescriptor {
	if v, ok := l.byName[s]; ok {
		return v
	}
	return nil
}

type methodList struct {
	list   []*Method
	byName map[protoreflect.Name]*Method
}

func (l *methodList) Len() int { return len(l.list) }
func (l *methodList) Get(i int) protoreflect.MethodDescriptor { return l.list[i] }
func (l *methodList) ByName(s protoreflect.Name) protoreflect.MethodDescriptor {
	if v, ok := l.byName[s]; ok {
		return v
	}
	return nil
}

type oneofList struct {
	list   []*Oneof
	byName map[protoreflect.Name]*Oneof
}

func (l *oneofList) Len() int { return len(l.list) }
func (l *oneofList) Get(i int) protoreflect.OneofDescriptor { return l.list[i] }
func (l *oneofList) ByName(s protoreflect.Name) protoreflect.OneofDescriptor {
	if v, ok := l.byName[s]; ok {
		return v
	}
	return nil
}

type enumValueList struct {
	list     []*EnumValue
	byName   map[protoreflect.Name]*EnumValue
	byNumber map[protoreflect.EnumNumber]*EnumValue
}

func (l *enumValueList) Len() int { return len(l.list) }
func (l *enumValueList) Get(i int) protoreflect.EnumValueDescriptor { return l.list[i] }
func (l *enumValueList) ByName(s protoreflect.Name) protoreflect.EnumValueDescriptor {
	if v, ok := l.byName[s]; ok {
		return v
	}
	return nil
}
func (l *enumValueList) ByNumber(n protoreflect.EnumNumber) protoreflect.EnumValueDescriptor {
	// First value wins on alias collisions, matching proto2's allow_alias rule
	// of treating the first declared name as canonical for reverse lookup.
	if v, ok := l.byNumber[n]; ok {
		return v
	}
	return nil
}

// fieldList implements protoreflect.FieldDescriptors, indexed by name,
// number, and JSON name.
type fieldList struct {
	list        []*Field
	byName      map[protoreflect.Name]*Field
	byJSONName  map[string]*Field
	byNumber    map[protoreflect.FieldNumber]*Field
}

func (l *fieldList) Len() int { return len(l.list) }
func (l *fieldList) Get(i int) protoreflect.FieldDescriptor { return l.list[i] }
func (l *fieldList) ByName(s protoreflect.Name) protoreflect.FieldDescriptor {
	if v, ok := l.byName[s]; ok {
		return v
	}
	return nil
}
func (l *fieldList) ByJSONName(s string) protoreflect.FieldDescriptor {
	if v, ok := l.byJSONName[s]; ok {
		return v
	}
	return nil
}
func (l *fieldList) ByNumber(n protoreflect.FieldNumber) protoreflect.FieldDescriptor {
	if v, ok := l.byNumber[n]; ok {
		return v
	}
	return nil
}
