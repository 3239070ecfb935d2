package fieldpath

import (
	"github.com/protowire/protoreflect/internal/errors"
	"github.com/protowire/protoreflect/protoreflect"
)

// Builder is a fluent wrapper over Set/Clear/Has that chains calls and
// reports the first error encountered, so a caller can compose a sequence
// of path assignments without checking an error after every step. Build
// returns the underlying message, or the first error raised along the way.
type Builder struct {
	msg mutableMessage
	err error
}

// NewBuilder starts a Builder over msg. msg is mutated in place; Build
// returns the same value back once chaining is done.
func NewBuilder(msg mutableMessage) *Builder {
	return &Builder{msg: msg}
}

// Set assigns value at path, coercing common Go shapes into the message
// vocabulary: a map[string]interface{} becomes a nested message whose
// fields are set by key, and a []interface{} becomes a repeated field set
// elementwise. Any other value is coerced to a protoreflect.Value on the
// target field's kind. Once an error is recorded, later Set and Clear calls
// do nothing; Build returns that first error.
func (b *Builder) Set(path string, value interface{}) *Builder {
	if b.err != nil {
		return b
	}
	b.err = b.setCoerced(path, value)
	return b
}

// Clear removes the value at path. It does nothing once an earlier call has
// recorded an error.
func (b *Builder) Clear(path string) *Builder {
	if b.err != nil {
		return b
	}
	b.err = Clear(b.msg, path)
	return b
}

// Has reports whether path currently resolves to a present value. A
// schema-level error from Has is returned directly and is not recorded for
// Build; if an earlier Set or Clear already recorded an error, Has returns
// that error.
func (b *Builder) Has(path string) (bool, error) {
	if b.err != nil {
		return false, b.err
	}
	return Has(b.msg, path)
}

// Build returns the underlying message, or the first error raised by a
// chained Set/Clear call.
func (b *Builder) Build() (protoreflect.Message, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.msg, nil
}

// setCoerced resolves path down to its parent message and final field,
// coerces value against what that final component addresses, and applies
// it directly -- a bare field name addressing a whole repeated/map field
// assigns it elementwise from a sequence/mapping, while an explicit [n] or
// ['key'] on the final component addresses one element, same as Set.
func (b *Builder) setCoerced(path string, value interface{}) error {
	cur, fd, last, err := b.finalStep(path)
	if err != nil {
		return err
	}
	switch last.Subscript {
	case subscriptIndex:
		if fd.IsMap() || fd.Cardinality() != protoreflect.Repeated {
			return errors.New(errors.KindNotRepeated, "%s: not a repeated field", fd.FullName())
		}
		nv, err := coerce(fd, value)
		if err != nil {
			return err
		}
		n := cur.Get(fd).List().Len()
		switch {
		case last.Index == n:
			return cur.AddRepeated(fd, nv)
		case last.Index >= 0 && last.Index < n:
			cur.Get(fd).List().Set(last.Index, nv)
			return nil
		default:
			return errors.New(errors.KindIndexOutOfBounds, "%s: index %d out of bounds (len %d)", fd.FullName(), last.Index, n)
		}

	case subscriptKey:
		if !fd.IsMap() {
			return errors.New(errors.KindNotMap, "%s: not a map field", fd.FullName())
		}
		valField := fd.MapEntry().ValueField()
		nv, err := coerce(valField, value)
		if err != nil {
			return err
		}
		key, err := mapKeyValue(fd, last.Key)
		if err != nil {
			return err
		}
		return cur.SetMapEntry(fd, key, nv)

	default:
		if fd.IsMap() {
			return setRepeatedOrMap(cur, fd, value)
		}
		if fd.Cardinality() == protoreflect.Repeated {
			return setRepeatedOrMap(cur, fd, value)
		}
		nv, err := coerce(fd, value)
		if err != nil {
			return err
		}
		return cur.Set(fd, nv)
	}
}

// finalStep resolves every component of path against the descriptor,
// auto-vivifying intermediate message containers exactly as Set would, and
// returns the parent message, the final component's field descriptor, and
// the final component itself.
func (b *Builder) finalStep(path string) (mutableMessage, protoreflect.FieldDescriptor, Component, error) {
	comps, err := Parse(path)
	if err != nil {
		return nil, nil, Component{}, err
	}
	cur := b.msg
	for i, comp := range comps {
		fd, err := fieldFor(cur.Descriptor(), comp)
		if err != nil {
			return nil, nil, Component{}, err
		}
		if i == len(comps)-1 {
			return cur, fd, comp, nil
		}
		switch comp.Subscript {
		case subscriptNone:
			next, err := descendMessage(cur, fd)
			if err != nil {
				return nil, nil, Component{}, err
			}
			cur = next
		case subscriptIndex:
			n := cur.Get(fd).List().Len()
			next, err := descendListElement(cur, fd, comp.Index, n)
			if err != nil {
				return nil, nil, Component{}, err
			}
			cur = next
		case subscriptKey:
			key, err := mapKeyValue(fd, comp.Key)
			if err != nil {
				return nil, nil, Component{}, err
			}
			next, err := descendMapValue(cur, fd, key)
			if err != nil {
				return nil, nil, Component{}, err
			}
			cur = next
		}
	}
	return nil, nil, Component{}, errors.New(errors.KindFieldNotFound, "fieldpath: empty path %q", path)
}

// coerce converts a plain Go value into the protoreflect.Value shape fd's
// final element expects. A map[string]interface{} targeting a message
// field is expanded into a fresh sub-message with its fields set by name. A
// []interface{} is rejected here; a whole repeated or map field is instead
// assigned elementwise by setRepeatedOrMap.
func coerce(fd protoreflect.FieldDescriptor, value interface{}) (protoreflect.Value, error) {
	switch val := value.(type) {
	case protoreflect.Value:
		return val, nil
	case map[string]interface{}:
		if fd.Kind() != protoreflect.MessageKind && fd.Kind() != protoreflect.GroupKind {
			return protoreflect.Value{}, errors.New(errors.KindTypeMismatch, "%s: cannot set a mapping on a non-message field", fd.FullName())
		}
		md := fd.MessageType()
		if md == nil {
			return protoreflect.Value{}, errors.New(errors.KindTypeMismatch, "%s: message type not resolved", fd.FullName())
		}
		_, sub, err := newMessageElement(fd)
		if err != nil {
			return protoreflect.Value{}, err
		}
		fields := md.Fields()
		for name, elem := range val {
			nested := fields.ByName(protoreflect.Name(name))
			if nested == nil {
				return protoreflect.Value{}, errors.New(errors.KindFieldNotFound, "%s: field %q not found", md.FullName(), name)
			}
			if nested.IsMap() || nested.Cardinality() == protoreflect.Repeated {
				if err := setRepeatedOrMap(sub, nested, elem); err != nil {
					return protoreflect.Value{}, err
				}
				continue
			}
			nv, err := coerce(nested, elem)
			if err != nil {
				return protoreflect.Value{}, err
			}
			if err := sub.Set(nested, nv); err != nil {
				return protoreflect.Value{}, err
			}
		}
		return protoreflect.MessageValue(sub), nil
	case []interface{}:
		return protoreflect.Value{}, errors.New(errors.KindTypeMismatch, "%s: a sequence must be assigned elementwise, not as a single value", fd.FullName())
	default:
		return scalarValue(fd, value)
	}
}

// setRepeatedOrMap populates nested, a repeated or map field on sub,
// elementwise from raw (expected to be a []interface{} or
// map[string]interface{} matching nested's shape).
func setRepeatedOrMap(sub mutableMessage, nested protoreflect.FieldDescriptor, raw interface{}) error {
	if nested.IsMap() {
		entries, ok := raw.(map[string]interface{})
		if !ok {
			return errors.New(errors.KindTypeMismatch, "%s: expected a mapping for a map field", nested.FullName())
		}
		valField := nested.MapEntry().ValueField()
		for k, elem := range entries {
			key, err := mapKeyValue(nested, k)
			if err != nil {
				return err
			}
			ev, err := coerce(valField, elem)
			if err != nil {
				return err
			}
			if err := sub.SetMapEntry(nested, key, ev); err != nil {
				return err
			}
		}
		return nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return errors.New(errors.KindTypeMismatch, "%s: expected a sequence for a repeated field", nested.FullName())
	}
	for _, elem := range items {
		ev, err := coerce(nested, elem)
		if err != nil {
			return err
		}
		if err := sub.AddRepeated(nested, ev); err != nil {
			return err
		}
	}
	return nil
}

// scalarValue converts a plain Go scalar into the protoreflect.Value shape
// matching fd's kind.
func scalarValue(fd protoreflect.FieldDescriptor, value interface{}) (protoreflect.Value, error) {
	switch fd.Kind() {
	case protoreflect.BoolKind:
		b, ok := value.(bool)
		if !ok {
			return protoreflect.Value{}, errors.New(errors.KindTypeMismatch, "%s: expected bool, got %T", fd.FullName(), value)
		}
		return protoreflect.BoolValue(b), nil
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		n, err := toInt64(fd, value)
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.Int32Value(int32(n)), nil
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		n, err := toInt64(fd, value)
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.Int64Value(n), nil
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		n, err := toUint64(fd, value)
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.Uint32Value(uint32(n)), nil
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		n, err := toUint64(fd, value)
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.Uint64Value(n), nil
	case protoreflect.FloatKind:
		f, err := toFloat64(fd, value)
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.Float32Value(float32(f)), nil
	case protoreflect.DoubleKind:
		f, err := toFloat64(fd, value)
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.Float64Value(f), nil
	case protoreflect.StringKind:
		s, ok := value.(string)
		if !ok {
			return protoreflect.Value{}, errors.New(errors.KindTypeMismatch, "%s: expected string, got %T", fd.FullName(), value)
		}
		return protoreflect.StringValue(s), nil
	case protoreflect.BytesKind:
		bs, ok := value.([]byte)
		if !ok {
			return protoreflect.Value{}, errors.New(errors.KindTypeMismatch, "%s: expected []byte, got %T", fd.FullName(), value)
		}
		return protoreflect.BytesValue(bs), nil
	case protoreflect.EnumKind:
		switch ev := value.(type) {
		case string:
			vd := fd.EnumType().Values().ByName(protoreflect.Name(ev))
			if vd == nil {
				return protoreflect.Value{}, errors.New(errors.KindUnknownEnumName, "%s: unknown enum name %q", fd.FullName(), ev)
			}
			return protoreflect.EnumValue(vd.Number()), nil
		case int:
			return protoreflect.EnumValue(protoreflect.EnumNumber(ev)), nil
		case protoreflect.EnumNumber:
			return protoreflect.EnumValue(ev), nil
		default:
			return protoreflect.Value{}, errors.New(errors.KindTypeMismatch, "%s: expected string or int enum value, got %T", fd.FullName(), value)
		}
	default:
		return protoreflect.Value{}, errors.New(errors.KindTypeMismatch, "%s: unsupported value %T for kind %v", fd.FullName(), value, fd.Kind())
	}
}

func toInt64(fd protoreflect.FieldDescriptor, value interface{}) (int64, error) {
	switch n := value.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	default:
		return 0, errors.New(errors.KindTypeMismatch, "%s: expected an integer, got %T", fd.FullName(), value)
	}
}

func toUint64(fd protoreflect.FieldDescriptor, value interface{}) (uint64, error) {
	switch n := value.(type) {
	case uint:
		return uint64(n), nil
	case uint32:
		return uint64(n), nil
	case uint64:
		return n, nil
	case int:
		if n < 0 {
			return 0, errors.New(errors.KindTypeMismatch, "%s: negative value for unsigned field", fd.FullName())
		}
		return uint64(n), nil
	default:
		return 0, errors.New(errors.KindTypeMismatch, "%s: expected an unsigned integer, got %T", fd.FullName(), value)
	}
}

func toFloat64(fd protoreflect.FieldDescriptor, value interface{}) (float64, error) {
	switch f := value.(type) {
	case float32:
		return float64(f), nil
	case float64:
		return f, nil
	case int:
		return float64(f), nil
	default:
		return 0, errors.New(errors.KindTypeMismatch, "%s: expected a float, got %T", fd.FullName(), value)
	}
}
