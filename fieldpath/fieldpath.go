package fieldpath

import (
	"strconv"

	"github.com/protowire/protoreflect/dynamicpb"
	"github.com/protowire/protoreflect/internal/errors"
	"github.com/protowire/protoreflect/protoreflect"
)

// mutableMessage is the narrow surface the set/clear walk needs beyond the
// read-only protoreflect.Message contract: the two repeated/map mutators
// that have no counterpart there. Declared locally, mirroring the
// identically-named interface in wireformat and protojson, so the walk works
// against this interface; dynamicpb is used only to construct fresh
// sub-messages.
type mutableMessage interface {
	protoreflect.Message
	AddRepeated(fd protoreflect.FieldDescriptor, v protoreflect.Value) error
	SetMapEntry(fd protoreflect.FieldDescriptor, key, val protoreflect.Value) error
}

// Get resolves path against m and returns the value at that location, or
// ok=false if any component along the way is unset, out of range, or
// absent from a map. An error is returned for a malformed path, a field
// name the descriptor doesn't have, a subscript applied to a field kind
// that doesn't support it, or a path that descends through a non-message
// value.
func Get(m protoreflect.Message, path string) (protoreflect.Value, bool, error) {
	comps, err := Parse(path)
	if err != nil {
		return protoreflect.Value{}, false, err
	}
	cur := m
	for i, comp := range comps {
		fd, err := fieldFor(cur.Descriptor(), comp)
		if err != nil {
			return protoreflect.Value{}, false, err
		}
		v, ok, err := resolveComponent(cur, fd, comp)
		if err != nil || !ok {
			return protoreflect.Value{}, false, err
		}
		if i == len(comps)-1 {
			return v, true, nil
		}
		if !v.IsMessage() {
			return protoreflect.Value{}, false, errors.New(errors.KindTypeMismatch, "%s: cannot descend into a non-message value", fd.FullName())
		}
		cur = v.Message()
	}
	return protoreflect.Value{}, false, nil
}

// Has reports whether path resolves to a present value. It never fails for
// value-level absence, only for the same schema-level reasons Get does.
func Has(m protoreflect.Message, path string) (bool, error) {
	_, ok, err := Get(m, path)
	return ok, err
}

// Set resolves path against m, creating intermediate message containers on
// demand, and assigns v at the final component. Setting a repeated index
// equal to the current length appends; an index beyond the length fails
// with IndexOutOfBounds. Setting a map key inserts or replaces.
func Set(m mutableMessage, path string, v protoreflect.Value) error {
	comps, err := Parse(path)
	if err != nil {
		return err
	}
	cur := m
	for i, comp := range comps {
		fd, err := fieldFor(cur.Descriptor(), comp)
		if err != nil {
			return err
		}
		last := i == len(comps)-1
		switch comp.Subscript {
		case subscriptNone:
			if fd.IsMap() || fd.Cardinality() == protoreflect.Repeated {
				return errors.New(errors.KindTypeMismatch, "%s: repeated/map field requires a subscript", fd.FullName())
			}
			if last {
				return cur.Set(fd, v)
			}
			next, err := descendMessage(cur, fd)
			if err != nil {
				return err
			}
			cur = next

		case subscriptIndex:
			if fd.IsMap() || fd.Cardinality() != protoreflect.Repeated {
				return errors.New(errors.KindNotRepeated, "%s: not a repeated field", fd.FullName())
			}
			n := cur.Get(fd).List().Len()
			if comp.Index < 0 || comp.Index > n {
				return errors.New(errors.KindIndexOutOfBounds, "%s: index %d out of bounds (len %d)", fd.FullName(), comp.Index, n)
			}
			if last {
				if comp.Index == n {
					return cur.AddRepeated(fd, v)
				}
				cur.Get(fd).List().Set(comp.Index, v)
				return nil
			}
			next, err := descendListElement(cur, fd, comp.Index, n)
			if err != nil {
				return err
			}
			cur = next

		case subscriptKey:
			if !fd.IsMap() {
				return errors.New(errors.KindNotMap, "%s: not a map field", fd.FullName())
			}
			key, err := mapKeyValue(fd, comp.Key)
			if err != nil {
				return err
			}
			if last {
				return cur.SetMapEntry(fd, key, v)
			}
			next, err := descendMapValue(cur, fd, key)
			if err != nil {
				return err
			}
			cur = next
		}
	}
	return nil
}

// Clear resolves path and removes the value at the final component. An
// absent intermediate container makes Clear a no-op: there is nothing to
// remove. Clearing a repeated index beyond the current length fails with
// IndexOutOfBounds; clearing an absent map key is a no-op.
func Clear(m mutableMessage, path string) error {
	comps, err := Parse(path)
	if err != nil {
		return err
	}
	cur := m
	for i, comp := range comps {
		fd, err := fieldFor(cur.Descriptor(), comp)
		if err != nil {
			return err
		}
		last := i == len(comps)-1
		switch comp.Subscript {
		case subscriptNone:
			if last {
				cur.Clear(fd)
				return nil
			}
			if !cur.Has(fd) {
				return nil
			}
			next, ok := cur.Get(fd).Message().(mutableMessage)
			if !ok {
				return errors.New(errors.KindTypeMismatch, "%s: message does not support path traversal", fd.FullName())
			}
			cur = next

		case subscriptIndex:
			if fd.IsMap() || fd.Cardinality() != protoreflect.Repeated {
				return errors.New(errors.KindNotRepeated, "%s: not a repeated field", fd.FullName())
			}
			list := cur.Get(fd).List()
			n := list.Len()
			if comp.Index < 0 || comp.Index >= n {
				if last {
					return errors.New(errors.KindIndexOutOfBounds, "%s: index %d out of bounds (len %d)", fd.FullName(), comp.Index, n)
				}
				return nil
			}
			if last {
				removeListIndex(list, comp.Index)
				return nil
			}
			sub, ok := list.Get(comp.Index).Message().(mutableMessage)
			if !ok {
				return errors.New(errors.KindTypeMismatch, "%s: element does not support path traversal", fd.FullName())
			}
			cur = sub

		case subscriptKey:
			if !fd.IsMap() {
				return errors.New(errors.KindNotMap, "%s: not a map field", fd.FullName())
			}
			key, err := mapKeyValue(fd, comp.Key)
			if err != nil {
				return err
			}
			mp := cur.Get(fd).Map()
			if last {
				mp.Clear(key)
				return nil
			}
			v, ok := mp.Get(key)
			if !ok {
				return nil
			}
			sub, ok := v.Message().(mutableMessage)
			if !ok {
				return errors.New(errors.KindTypeMismatch, "%s: map value does not support path traversal", fd.FullName())
			}
			cur = sub
		}
	}
	return nil
}

func fieldFor(md protoreflect.MessageDescriptor, comp Component) (protoreflect.FieldDescriptor, error) {
	fd := md.Fields().ByName(comp.Name)
	if fd == nil {
		return nil, errors.New(errors.KindFieldNotFound, "%s: field %q not found", md.FullName(), comp.Name)
	}
	return fd, nil
}

func resolveComponent(cur protoreflect.Message, fd protoreflect.FieldDescriptor, comp Component) (protoreflect.Value, bool, error) {
	switch comp.Subscript {
	case subscriptIndex:
		if fd.IsMap() || fd.Cardinality() != protoreflect.Repeated {
			return protoreflect.Value{}, false, errors.New(errors.KindNotRepeated, "%s: not a repeated field", fd.FullName())
		}
		list := cur.Get(fd).List()
		if comp.Index < 0 || comp.Index >= list.Len() {
			return protoreflect.Value{}, false, nil
		}
		return list.Get(comp.Index), true, nil

	case subscriptKey:
		if !fd.IsMap() {
			return protoreflect.Value{}, false, errors.New(errors.KindNotMap, "%s: not a map field", fd.FullName())
		}
		key, err := mapKeyValue(fd, comp.Key)
		if err != nil {
			return protoreflect.Value{}, false, err
		}
		v, ok := cur.Get(fd).Map().Get(key)
		return v, ok, nil

	default:
		if fd.IsMap() || fd.Cardinality() == protoreflect.Repeated {
			return protoreflect.Value{}, false, errors.New(errors.KindTypeMismatch, "%s: repeated/map field requires a subscript", fd.FullName())
		}
		if !cur.Has(fd) {
			return protoreflect.Value{}, false, nil
		}
		return cur.Get(fd), true, nil
	}
}

// descendMessage returns fd's current message value on cur, constructing
// and attaching a fresh empty one first if fd is unset.
func descendMessage(cur mutableMessage, fd protoreflect.FieldDescriptor) (mutableMessage, error) {
	if fd.Kind() != protoreflect.MessageKind && fd.Kind() != protoreflect.GroupKind {
		return nil, errors.New(errors.KindTypeMismatch, "%s: not a message field", fd.FullName())
	}
	if cur.Has(fd) {
		sub, ok := cur.Get(fd).Message().(mutableMessage)
		if !ok {
			return nil, errors.New(errors.KindTypeMismatch, "%s: message does not support path traversal", fd.FullName())
		}
		return sub, nil
	}
	nv := cur.NewField(fd)
	if err := cur.Set(fd, nv); err != nil {
		return nil, err
	}
	sub, ok := nv.Message().(mutableMessage)
	if !ok {
		return nil, errors.New(errors.KindTypeMismatch, "%s: message does not support path traversal", fd.FullName())
	}
	return sub, nil
}

// descendListElement returns the element at idx, appending a fresh empty
// message to fd's list first if idx equals the list's current length n.
func descendListElement(cur mutableMessage, fd protoreflect.FieldDescriptor, idx, n int) (mutableMessage, error) {
	if idx < n {
		sub, ok := cur.Get(fd).List().Get(idx).Message().(mutableMessage)
		if !ok {
			return nil, errors.New(errors.KindTypeMismatch, "%s: element does not support path traversal", fd.FullName())
		}
		return sub, nil
	}
	ev, sub, err := newMessageElement(fd)
	if err != nil {
		return nil, err
	}
	if err := cur.AddRepeated(fd, ev); err != nil {
		return nil, err
	}
	return sub, nil
}

// descendMapValue returns the value at key, inserting a fresh empty message
// first if key is absent.
func descendMapValue(cur mutableMessage, fd protoreflect.FieldDescriptor, key protoreflect.Value) (mutableMessage, error) {
	if v, ok := cur.Get(fd).Map().Get(key); ok {
		sub, ok := v.Message().(mutableMessage)
		if !ok {
			return nil, errors.New(errors.KindTypeMismatch, "%s: map value does not support path traversal", fd.FullName())
		}
		return sub, nil
	}
	entry := fd.MapEntry()
	ev, sub, err := newMessageElement(entry.ValueField())
	if err != nil {
		return nil, err
	}
	if err := cur.SetMapEntry(fd, key, ev); err != nil {
		return nil, err
	}
	return sub, nil
}

// newMessageElement constructs a fresh dynamic message for fd's message
// type, for use as a repeated element or map value.
func newMessageElement(fd protoreflect.FieldDescriptor) (protoreflect.Value, mutableMessage, error) {
	md := fd.MessageType()
	if md == nil {
		return protoreflect.Value{}, nil, errors.New(errors.KindTypeMismatch, "%s: message type not resolved", fd.FullName())
	}
	sub := dynamicpb.NewMessage(md)
	return protoreflect.MessageValue(sub), sub, nil
}

// removeListIndex deletes the element at idx by shifting subsequent
// elements down and truncating, since List exposes no direct delete.
func removeListIndex(list protoreflect.List, idx int) {
	n := list.Len()
	for i := idx; i < n-1; i++ {
		list.Set(i, list.Get(i+1))
	}
	list.Truncate(n - 1)
}

func mapKeyValue(fd protoreflect.FieldDescriptor, raw string) (protoreflect.Value, error) {
	entry := fd.MapEntry()
	kind := entry.KeyField().Kind()
	switch kind {
	case protoreflect.BoolKind:
		switch raw {
		case "true":
			return protoreflect.BoolValue(true), nil
		case "false":
			return protoreflect.BoolValue(false), nil
		default:
			return protoreflect.Value{}, errors.New(errors.KindMapKeyTypeInvalid, "%s: invalid bool map key %q", fd.FullName(), raw)
		}
	case protoreflect.StringKind:
		return protoreflect.StringValue(raw), nil
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return protoreflect.Value{}, errors.New(errors.KindMapKeyTypeInvalid, "%s: invalid int32 map key %q", fd.FullName(), raw)
		}
		return protoreflect.Int32Value(int32(n)), nil
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return protoreflect.Value{}, errors.New(errors.KindMapKeyTypeInvalid, "%s: invalid int64 map key %q", fd.FullName(), raw)
		}
		return protoreflect.Int64Value(n), nil
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return protoreflect.Value{}, errors.New(errors.KindMapKeyTypeInvalid, "%s: invalid uint32 map key %q", fd.FullName(), raw)
		}
		return protoreflect.Uint32Value(uint32(n)), nil
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return protoreflect.Value{}, errors.New(errors.KindMapKeyTypeInvalid, "%s: invalid uint64 map key %q", fd.FullName(), raw)
		}
		return protoreflect.Uint64Value(n), nil
	default:
		return protoreflect.Value{}, errors.New(errors.KindMapKeyTypeInvalid, "%s: unsupported map key kind %v", fd.FullName(), kind)
	}
}
