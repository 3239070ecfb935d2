// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dynamicpb

import (
	"github.com/protowire/protoreflect/internal/errors"
	"github.com/protowire/protoreflect/protoreflect"
)

// typecheck validates v against fd's full shape (cardinality and kind)
// before Set stores it. It is the replacement for the teacher's
// checkField/typecheckSingular panics.
func typecheck(fd protoreflect.FieldDescriptor, v protoreflect.Value) error {
	if !v.IsValid() {
		return errors.New(errors.KindTypeMismatch, "%s: value is invalid", fd.FullName())
	}
	if fd.Cardinality() == protoreflect.Repeated {
		if fd.IsMap() {
			if !v.IsMap() {
				return errors.New(errors.KindTypeMismatch, "%s: expected map value", fd.FullName())
			}
			return nil
		}
		if !v.IsList() {
			return errors.New(errors.KindTypeMismatch, "%s: expected list value", fd.FullName())
		}
		return nil
	}
	return typecheckValueAgainstField(fd, v)
}

// typecheckElement validates v as a single element to append to fd's list,
// i.e. fd's Kind but singular cardinality.
func typecheckElement(fd protoreflect.FieldDescriptor, v protoreflect.Value) error {
	return typecheckValueAgainstField(fd, v)
}

// typecheckValueAgainstField validates v's variant against fd's declared
// Kind, and for message kinds additionally checks that the message's full
// name matches fd's resolved MessageType. Enum values are checked by variant
// only.
func typecheckValueAgainstField(fd protoreflect.FieldDescriptor, v protoreflect.Value) error {
	if err := typecheckValueAgainst(fd.Kind(), v); err != nil {
		return errors.New(errors.KindTypeMismatch, "%s: %v", fd.FullName(), err)
	}
	switch fd.Kind() {
	case protoreflect.MessageKind, protoreflect.GroupKind:
		md := fd.MessageType()
		if md == nil {
			return nil // unresolved type_name; nothing further to check
		}
		if got := v.Message().Descriptor(); got != nil && got.FullName() != md.FullName() {
			return errors.New(errors.KindMessageTypeMismatch,
				"%s: expected message %s, got %s", fd.FullName(), md.FullName(), got.FullName())
		}
	}
	return nil
}

// typecheckValueAgainst validates v's variant against a bare Kind, ignoring
// message-type identity (used for map keys, which are never message-typed).
func typecheckValueAgainst(kind protoreflect.Kind, v protoreflect.Value) error {
	switch kind {
	case protoreflect.BoolKind:
		if !v.IsBool() {
			return errors.New(errors.KindTypeMismatch, "expected bool, got non-bool value")
		}
	case protoreflect.Int32Kind, protoreflect.Int64Kind,
		protoreflect.Sint32Kind, protoreflect.Sint64Kind,
		protoreflect.Sfixed32Kind, protoreflect.Sfixed64Kind:
		if !v.IsInt() {
			return errors.New(errors.KindTypeMismatch, "expected signed integer, got non-int value")
		}
	case protoreflect.Uint32Kind, protoreflect.Uint64Kind,
		protoreflect.Fixed32Kind, protoreflect.Fixed64Kind:
		if !v.IsUint() {
			return errors.New(errors.KindTypeMismatch, "expected unsigned integer, got non-uint value")
		}
	case protoreflect.FloatKind, protoreflect.DoubleKind:
		if !v.IsFloat() {
			return errors.New(errors.KindTypeMismatch, "expected float, got non-float value")
		}
	case protoreflect.StringKind:
		if !v.IsString() {
			return errors.New(errors.KindTypeMismatch, "expected string, got non-string value")
		}
	case protoreflect.BytesKind:
		if !v.IsBytes() {
			return errors.New(errors.KindTypeMismatch, "expected bytes, got non-bytes value")
		}
	case protoreflect.EnumKind:
		if !v.IsEnum() {
			return errors.New(errors.KindTypeMismatch, "expected enum, got non-enum value")
		}
	case protoreflect.MessageKind, protoreflect.GroupKind:
		if !v.IsMessage() {
			return errors.New(errors.KindTypeMismatch, "expected message, got non-message value")
		}
	}
	return nil
}
