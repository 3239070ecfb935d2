// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dynamicpb

import "github.com/protowire/protoreflect/protoreflect"

// mapKey is a comparable stand-in for a protoreflect.Value used as a map
// key. protoreflect.Value itself is not comparable (it carries a []byte
// field for the Bytes variant), even though valid map keys are restricted
// to the bool/int/uint/string kinds that Kind.IsValidMapKeyKind allows.
type mapKey struct {
	b bool
	i int64
	u uint64
	s string
	k protoreflect.Kind // disambiguates int32 vs int64 etc. for Range's reverse mapping
}

func toMapKey(v protoreflect.Value, kind protoreflect.Kind) mapKey {
	k := mapKey{k: kind}
	switch {
	case v.IsBool():
		k.b = v.Bool()
	case v.IsInt():
		k.i = v.Int()
	case v.IsUint():
		k.u = v.Uint()
	case v.IsString():
		k.s = v.String()
	}
	return k
}

func (k mapKey) toValue() protoreflect.Value {
	switch {
	case k.k == protoreflect.BoolKind:
		return protoreflect.BoolValue(k.b)
	case k.k.IsIntegral() && isSignedKind(k.k):
		if k.k == protoreflect.Int32Kind || k.k == protoreflect.Sint32Kind || k.k == protoreflect.Sfixed32Kind {
			return protoreflect.Int32Value(int32(k.i))
		}
		return protoreflect.Int64Value(k.i)
	case k.k.IsIntegral():
		if k.k == protoreflect.Uint32Kind || k.k == protoreflect.Fixed32Kind {
			return protoreflect.Uint32Value(uint32(k.u))
		}
		return protoreflect.Uint64Value(k.u)
	default:
		return protoreflect.StringValue(k.s)
	}
}

func isSignedKind(k protoreflect.Kind) bool {
	switch k {
	case protoreflect.Int32Kind, protoreflect.Int64Kind, protoreflect.Sint32Kind, protoreflect.Sint64Kind,
		protoreflect.Sfixed32Kind, protoreflect.Sfixed64Kind:
		return true
	}
	return false
}

// dynamicMap is the concrete protoreflect.Map backing a map field.
type dynamicMap struct {
	keyKind protoreflect.Kind
	entries map[mapKey]protoreflect.Value
}

func newMap(keyKind protoreflect.Kind) *dynamicMap {
	return &dynamicMap{keyKind: keyKind, entries: make(map[mapKey]protoreflect.Value)}
}

func (m *dynamicMap) Len() int { return len(m.entries) }

func (m *dynamicMap) Get(key protoreflect.Value) (protoreflect.Value, bool) {
	v, ok := m.entries[toMapKey(key, m.keyKind)]
	return v, ok
}

func (m *dynamicMap) Set(key, val protoreflect.Value) {
	m.entries[toMapKey(key, m.keyKind)] = val
}

func (m *dynamicMap) Clear(key protoreflect.Value) {
	delete(m.entries, toMapKey(key, m.keyKind))
}

func (m *dynamicMap) Range(f func(key, val protoreflect.Value) bool) {
	for k, v := range m.entries {
		if !f(k.toValue(), v) {
			return
		}
	}
}
