// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package filedesc

import (
	"github.com/protowire/protoreflect/internal/errors"
	"github.com/protowire/protoreflect/internal/wireparse"
)

// Field numbers for the subset of descriptor.proto this library decodes.
// Recovered from the public descriptor.proto schema (the same numbers the
// teacher hardcodes in internal/fileinit/desc_wire.go for its own bootstrap
// decoder).
const (
	fileName         = 1
	filePackage      = 2
	fileDependency   = 3
	fileMessageType  = 4
	fileEnumType     = 5
	fileService      = 6
	fileSyntax       = 12

	msgName           = 1
	msgField          = 2
	msgNestedType     = 3
	msgEnumType       = 4
	msgOneofDecl      = 8
	msgReservedRange  = 9
	msgReservedName   = 10
	msgOptions        = 7

	msgOptIsMapEntry = 7

	reservedRangeStart = 1
	reservedRangeEnd   = 2

	fieldName         = 1
	fieldNumber       = 3
	fieldLabel        = 4
	fieldType         = 5
	fieldTypeName     = 6
	fieldDefault      = 7
	fieldOptions      = 8
	fieldOneofIndex   = 9
	fieldJSONName     = 10

	fieldOptIsPacked = 2

	oneofName = 1

	enumName          = 1
	enumValue         = 2
	enumReservedName  = 5

	enumValueName   = 1
	enumValueNumber = 2

	svcName   = 1
	svcMethod = 2

	methodName            = 1
	methodInputType       = 2
	methodOutputType      = 3
	methodClientStreaming = 5
	methodServerStreaming = 6
)

// decodeFile parses the wire bytes of a FileDescriptorProto.
func decodeFile(b []byte) (*FileBuilder, error) {
	f := &FileBuilder{}
	for len(b) > 0 {
		num, typ, n := wireparse.ConsumeTag(b)
		if n < 0 {
			return nil, wireparse.ErrorForConsume(n)
		}
		b = b[n:]
		switch typ {
		case wireparse.Bytes:
			payload, rest, err := consumeBytes(b)
			if err != nil {
				return nil, err
			}
			b = rest
			switch num {
			case fileName:
				f.Name = string(payload)
			case filePackage:
				f.Package = string(payload)
			case fileDependency:
				f.Dependencies = append(f.Dependencies, string(payload))
			case fileMessageType:
				m, err := decodeMessage(payload)
				if err != nil {
					return nil, err
				}
				f.Messages = append(f.Messages, m)
			case fileEnumType:
				e, err := decodeEnum(payload)
				if err != nil {
					return nil, err
				}
				f.Enums = append(f.Enums, e)
			case fileService:
				s, err := decodeService(payload)
				if err != nil {
					return nil, err
				}
				f.Services = append(f.Services, s)
			case fileSyntax:
				f.Syntax = string(payload)
			default:
				// Unrecognized/unsupported (extensions, options): skip.
			}
		default:
			n, err := skipScalar(num, typ, b)
			if err != nil {
				return nil, err
			}
			b = b[n:]
		}
	}
	return f, nil
}

func decodeMessage(b []byte) (*MessageBuilder, error) {
	m := &MessageBuilder{}
	for len(b) > 0 {
		num, typ, n := wireparse.ConsumeTag(b)
		if n < 0 {
			return nil, wireparse.ErrorForConsume(n)
		}
		b = b[n:]
		switch typ {
		case wireparse.Bytes:
			payload, rest, err := consumeBytes(b)
			if err != nil {
				return nil, err
			}
			b = rest
			switch num {
			case msgName:
				m.Name = string(payload)
			case msgField:
				fd, err := decodeField(payload)
				if err != nil {
					return nil, err
				}
				m.Fields = append(m.Fields, fd)
			case msgNestedType:
				nm, err := decodeMessage(payload)
				if err != nil {
					return nil, err
				}
				m.Messages = append(m.Messages, nm)
			case msgEnumType:
				e, err := decodeEnum(payload)
				if err != nil {
					return nil, err
				}
				m.Enums = append(m.Enums, e)
			case msgOneofDecl:
				oo, err := decodeOneof(payload)
				if err != nil {
					return nil, err
				}
				m.Oneofs = append(m.Oneofs, oo)
			case msgReservedRange:
				start, end, err := decodeReservedRange(payload)
				if err != nil {
					return nil, err
				}
				m.ReservedRanges = append(m.ReservedRanges, [2]int32{start, end})
			case msgReservedName:
				m.ReservedNames = append(m.ReservedNames, string(payload))
			case msgOptions:
				if isMapEntry, ok := decodeMessageOptions(payload); ok {
					m.IsMapEntry = isMapEntry
				}
			default:
			}
		default:
			n, err := skipScalar(num, typ, b)
			if err != nil {
				return nil, err
			}
			b = b[n:]
		}
	}
	return m, nil
}

func decodeMessageOptions(b []byte) (isMapEntry bool, ok bool) {
	for len(b) > 0 {
		num, typ, n := wireparse.ConsumeTag(b)
		if n < 0 {
			return false, false
		}
		b = b[n:]
		if num == msgOptIsMapEntry && typ == wireparse.Varint {
			v, n := wireparse.ConsumeVarint(b)
			if n < 0 {
				return false, false
			}
			b = b[n:]
			isMapEntry, ok = v != 0, true
			continue
		}
		n2, err := skipScalar(num, typ, b)
		if err != nil {
			return false, false
		}
		b = b[n2:]
	}
	return isMapEntry, ok
}

func decodeReservedRange(b []byte) (start, end int32, err error) {
	for len(b) > 0 {
		num, typ, n := wireparse.ConsumeTag(b)
		if n < 0 {
			return 0, 0, wireparse.ErrorForConsume(n)
		}
		b = b[n:]
		if typ != wireparse.Varint {
			n2, err := skipScalar(num, typ, b)
			if err != nil {
				return 0, 0, err
			}
			b = b[n2:]
			continue
		}
		v, n := wireparse.ConsumeVarint(b)
		if n < 0 {
			return 0, 0, wireparse.ErrorForConsume(n)
		}
		b = b[n:]
		switch num {
		case reservedRangeStart:
			start = int32(v)
		case reservedRangeEnd:
			end = int32(v)
		}
	}
	return start, end, nil
}

func decodeField(b []byte) (*FieldBuilder, error) {
	fd := &FieldBuilder{}
	for len(b) > 0 {
		num, typ, n := wireparse.ConsumeTag(b)
		if n < 0 {
			return nil, wireparse.ErrorForConsume(n)
		}
		b = b[n:]
		switch typ {
		case wireparse.Bytes:
			payload, rest, err := consumeBytes(b)
			if err != nil {
				return nil, err
			}
			b = rest
			switch num {
			case fieldName:
				fd.Name = string(payload)
			case fieldTypeName:
				fd.TypeName = string(payload)
			case fieldDefault:
				fd.DefaultValue, fd.HasDefault = string(payload), true
			case fieldJSONName:
				fd.JSONName, fd.HasJSONName = string(payload), true
			case fieldOptions:
				if packed, ok := decodeFieldOptions(payload); ok {
					fd.Packed, fd.HasPacked = packed, true
				}
			default:
			}
		case wireparse.Varint:
			v, n := wireparse.ConsumeVarint(b)
			if n < 0 {
				return nil, wireparse.ErrorForConsume(n)
			}
			b = b[n:]
			switch num {
			case fieldNumber:
				fd.Number = int32(v)
			case fieldLabel:
				fd.Label = int32(v)
			case fieldType:
				fd.Type = int32(v)
			case fieldOneofIndex:
				fd.OneofIndex, fd.HasOneofIndex = int32(v), true
			default:
			}
		default:
			n, err := skipScalar(num, typ, b)
			if err != nil {
				return nil, err
			}
			b = b[n:]
		}
	}
	return fd, nil
}

func decodeFieldOptions(b []byte) (packed bool, ok bool) {
	for len(b) > 0 {
		num, typ, n := wireparse.ConsumeTag(b)
		if n < 0 {
			return false, false
		}
		b = b[n:]
		if num == fieldOptIsPacked && typ == wireparse.Varint {
			v, n := wireparse.ConsumeVarint(b)
			if n < 0 {
				return false, false
			}
			b = b[n:]
			packed, ok = v != 0, true
			continue
		}
		n2, err := skipScalar(num, typ, b)
		if err != nil {
			return false, false
		}
		b = b[n2:]
	}
	return packed, ok
}

func decodeOneof(b []byte) (*OneofBuilder, error) {
	oo := &OneofBuilder{}
	for len(b) > 0 {
		num, typ, n := wireparse.ConsumeTag(b)
		if n < 0 {
			return nil, wireparse.ErrorForConsume(n)
		}
		b = b[n:]
		if num == oneofName && typ == wireparse.Bytes {
			payload, rest, err := consumeBytes(b)
			if err != nil {
				return nil, err
			}
			oo.Name = string(payload)
			b = rest
			continue
		}
		n2, err := skipScalar(num, typ, b)
		if err != nil {
			return nil, err
		}
		b = b[n2:]
	}
	return oo, nil
}

func decodeEnum(b []byte) (*EnumBuilder, error) {
	e := &EnumBuilder{}
	for len(b) > 0 {
		num, typ, n := wireparse.ConsumeTag(b)
		if n < 0 {
			return nil, wireparse.ErrorForConsume(n)
		}
		b = b[n:]
		if typ != wireparse.Bytes {
			n2, err := skipScalar(num, typ, b)
			if err != nil {
				return nil, err
			}
			b = b[n2:]
			continue
		}
		payload, rest, err := consumeBytes(b)
		if err != nil {
			return nil, err
		}
		b = rest
		switch num {
		case enumName:
			e.Name = string(payload)
		case enumValue:
			ev, err := decodeEnumValue(payload)
			if err != nil {
				return nil, err
			}
			e.Values = append(e.Values, ev)
		case enumReservedName:
			e.ReservedNames = append(e.ReservedNames, string(payload))
		default:
		}
	}
	return e, nil
}

func decodeEnumValue(b []byte) (*EnumValueBuilder, error) {
	ev := &EnumValueBuilder{}
	for len(b) > 0 {
		num, typ, n := wireparse.ConsumeTag(b)
		if n < 0 {
			return nil, wireparse.ErrorForConsume(n)
		}
		b = b[n:]
		switch {
		case num == enumValueName && typ == wireparse.Bytes:
			payload, rest, err := consumeBytes(b)
			if err != nil {
				return nil, err
			}
			ev.Name = string(payload)
			b = rest
		case num == enumValueNumber && typ == wireparse.Varint:
			v, n := wireparse.ConsumeVarint(b)
			if n < 0 {
				return nil, wireparse.ErrorForConsume(n)
			}
			ev.Number = int32(v)
			b = b[n:]
		default:
			n2, err := skipScalar(num, typ, b)
			if err != nil {
				return nil, err
			}
			b = b[n2:]
		}
	}
	return ev, nil
}

func decodeService(b []byte) (*ServiceBuilder, error) {
	s := &ServiceBuilder{}
	for len(b) > 0 {
		num, typ, n := wireparse.ConsumeTag(b)
		if n < 0 {
			return nil, wireparse.ErrorForConsume(n)
		}
		b = b[n:]
		if typ != wireparse.Bytes {
			n2, err := skipScalar(num, typ, b)
			if err != nil {
				return nil, err
			}
			b = b[n2:]
			continue
		}
		payload, rest, err := consumeBytes(b)
		if err != nil {
			return nil, err
		}
		b = rest
		switch num {
		case svcName:
			s.Name = string(payload)
		case svcMethod:
			m, err := decodeMethod(payload)
			if err != nil {
				return nil, err
			}
			s.Methods = append(s.Methods, m)
		default:
		}
	}
	return s, nil
}

func decodeMethod(b []byte) (*MethodBuilder, error) {
	m := &MethodBuilder{}
	for len(b) > 0 {
		num, typ, n := wireparse.ConsumeTag(b)
		if n < 0 {
			return nil, wireparse.ErrorForConsume(n)
		}
		b = b[n:]
		switch typ {
		case wireparse.Bytes:
			payload, rest, err := consumeBytes(b)
			if err != nil {
				return nil, err
			}
			b = rest
			switch num {
			case methodName:
				m.Name = string(payload)
			case methodInputType:
				m.InputType = string(payload)
			case methodOutputType:
				m.OutputType = string(payload)
			}
		case wireparse.Varint:
			v, n := wireparse.ConsumeVarint(b)
			if n < 0 {
				return nil, wireparse.ErrorForConsume(n)
			}
			b = b[n:]
			switch num {
			case methodClientStreaming:
				m.ClientStreaming = v != 0
			case methodServerStreaming:
				m.ServerStreaming = v != 0
			}
		default:
			n, err := skipScalar(num, typ, b)
			if err != nil {
				return nil, err
			}
			b = b[n:]
		}
	}
	return m, nil
}

// consumeBytes reads the varint length prefix and payload of a
// length-delimited field, returning the payload and the remainder of b.
func consumeBytes(b []byte) (payload, rest []byte, err error) {
	size, n := wireparse.ConsumeVarint(b)
	if n < 0 {
		return nil, nil, wireparse.ErrorForConsume(n)
	}
	if size > uint64(len(b)-n) {
		return nil, nil, errors.New(errors.KindLengthOverflow, "length-delimited field exceeds remaining input")
	}
	return b[n : n+int(size)], b[n+int(size):], nil
}

// skipScalar consumes a non-Bytes field's value and returns the number of
// bytes consumed.
func skipScalar(num wireparse.Number, typ wireparse.Type, b []byte) (int, error) {
	n := wireparse.ConsumeFieldValue(num, typ, b)
	if n < 0 {
		return 0, wireparse.ErrorForConsume(n)
	}
	return n, nil
}
