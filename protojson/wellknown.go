// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package protojson

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/protowire/protoreflect/dynamicpb"
	"github.com/protowire/protoreflect/internal/errors"
	"github.com/protowire/protoreflect/internal/jsonwire"
	"github.com/protowire/protoreflect/protoreflect"
	"github.com/protowire/protoreflect/wireformat"
)

// customMarshalers and customUnmarshalers key the well-known types that
// marshal/unmarshal to something other than the generic {"field": value}
// object form. marshalMessage/unmarshalMessage consult these before falling
// back to the field-by-field walk.
var customMarshalers map[protoreflect.FullName]func(*jsonwire.Encoder, protoreflect.Message, MarshalOptions) error

var customUnmarshalers map[protoreflect.FullName]func(*jsonwire.Decoder, mutableMessage, UnmarshalOptions) error

// The tables are assigned in init because their entries reach
// marshalMessage/unmarshalMessage, which read them; a direct initializer
// would be an initialization cycle.
func init() {
	customMarshalers = wellKnownMarshalers
	customUnmarshalers = wellKnownUnmarshalers
}

var wellKnownMarshalers = map[protoreflect.FullName]func(*jsonwire.Encoder, protoreflect.Message, MarshalOptions) error{
	"google.protobuf.Any":         marshalAny,
	"google.protobuf.Timestamp":   marshalTimestamp,
	"google.protobuf.Duration":    marshalDuration,
	"google.protobuf.Empty":       marshalEmpty,
	"google.protobuf.DoubleValue": marshalWrapper,
	"google.protobuf.FloatValue":  marshalWrapper,
	"google.protobuf.Int64Value":  marshalWrapper,
	"google.protobuf.UInt64Value": marshalWrapper,
	"google.protobuf.Int32Value":  marshalWrapper,
	"google.protobuf.UInt32Value": marshalWrapper,
	"google.protobuf.BoolValue":   marshalWrapper,
	"google.protobuf.StringValue": marshalWrapper,
	"google.protobuf.BytesValue":  marshalWrapper,
	"google.protobuf.Struct":      marshalStruct,
	"google.protobuf.ListValue":   marshalListValue,
	"google.protobuf.Value":       marshalValueMessage,
}

var wellKnownUnmarshalers = map[protoreflect.FullName]func(*jsonwire.Decoder, mutableMessage, UnmarshalOptions) error{
	"google.protobuf.Any":         unmarshalAny,
	"google.protobuf.Timestamp":   unmarshalTimestamp,
	"google.protobuf.Duration":    unmarshalDuration,
	"google.protobuf.Empty":       unmarshalEmpty,
	"google.protobuf.DoubleValue": unmarshalWrapper,
	"google.protobuf.FloatValue":  unmarshalWrapper,
	"google.protobuf.Int64Value":  unmarshalWrapper,
	"google.protobuf.UInt64Value": unmarshalWrapper,
	"google.protobuf.Int32Value":  unmarshalWrapper,
	"google.protobuf.UInt32Value": unmarshalWrapper,
	"google.protobuf.BoolValue":   unmarshalWrapper,
	"google.protobuf.StringValue": unmarshalWrapper,
	"google.protobuf.BytesValue":  unmarshalWrapper,
	"google.protobuf.Struct":      unmarshalStruct,
	"google.protobuf.ListValue":   unmarshalListValue,
	"google.protobuf.Value":       unmarshalValueMessage,
}

// Any: {"@type": "<type_url>", ...}, where ... is either the embedded
// message's own fields spliced directly in, or (when the embedded type is
// itself one of the types above) a nested "value" holding that type's own
// custom form.

func typeNameFromURL(url string) protoreflect.FullName {
	if i := strings.LastIndexByte(url, '/'); i >= 0 {
		return protoreflect.FullName(url[i+1:])
	}
	return protoreflect.FullName(url)
}

func marshalAny(enc *jsonwire.Encoder, m protoreflect.Message, opts MarshalOptions) error {
	fields := m.Descriptor().Fields()
	fdType, fdValue := fields.ByName("type_url"), fields.ByName("value")
	if !m.Has(fdType) && !m.Has(fdValue) {
		enc.StartObject()
		enc.EndObject()
		return nil
	}

	typeURL := m.Get(fdType).String()
	if opts.Resolver == nil {
		return errors.New(errors.KindSymbolNotFound, "google.protobuf.Any: no Resolver configured to expand %q", typeURL)
	}
	name := typeNameFromURL(typeURL)
	md := opts.Resolver.FindMessageByName(name)
	if md == nil {
		return errors.New(errors.KindSymbolNotFound, "google.protobuf.Any: type %q not found", name)
	}
	embedded := dynamicpb.NewMessage(md)
	if err := wireformat.Unmarshal(m.Get(fdValue).Bytes(), embedded); err != nil {
		return err
	}

	enc.StartObject()
	if err := enc.WriteName("@type"); err != nil {
		return err
	}
	if err := enc.WriteString(typeURL); err != nil {
		return err
	}
	if _, ok := customMarshalers[md.FullName()]; ok {
		if err := enc.WriteName("value"); err != nil {
			return err
		}
		if err := marshalMessage(enc, embedded, opts); err != nil {
			return err
		}
	} else if err := marshalFields(enc, embedded, opts); err != nil {
		return err
	}
	enc.EndObject()
	return nil
}

// findAnyTypeURL scans raw (an Any object not yet consumed from the real
// decoder) for its "@type" member without disturbing the real decoder's
// position. ok is false for a literal "{}", the empty-Any representation.
func findAnyTypeURL(raw []byte) (typeURL string, ok bool, err error) {
	look := jsonwire.NewDecoder(raw)
	tok, err := look.ReadNext()
	if err != nil {
		return "", false, err
	}
	if tok.Type() != jsonwire.StartObject {
		return "", false, errUnexpectedToken(tok)
	}
	first := true
	for {
		tok, err := look.ReadNext()
		if err != nil {
			return "", false, err
		}
		if tok.Type() == jsonwire.EndObject {
			if first {
				return "", false, nil
			}
			return "", false, errors.New(errors.KindJSONInvalid, `google.protobuf.Any: missing "@type"`)
		}
		first = false
		name, err := tok.Name()
		if err != nil {
			return "", false, err
		}
		if name == "@type" {
			v, err := look.ReadNext()
			if err != nil {
				return "", false, err
			}
			if v.Type() != jsonwire.String {
				return "", false, errUnexpectedToken(v)
			}
			return v.String(), true, nil
		}
		if err := skipValue(look); err != nil {
			return "", false, err
		}
	}
}

func unmarshalAny(dec *jsonwire.Decoder, m mutableMessage, opts UnmarshalOptions) error {
	typeURL, ok, err := findAnyTypeURL(dec.Remaining())
	if err != nil {
		return err
	}

	if !ok {
		if tok, err := dec.ReadNext(); err != nil || tok.Type() != jsonwire.StartObject {
			if err != nil {
				return err
			}
			return errUnexpectedToken(tok)
		}
		tok, err := dec.ReadNext()
		if err != nil {
			return err
		}
		if tok.Type() != jsonwire.EndObject {
			return errUnexpectedToken(tok)
		}
		return nil
	}

	if opts.Resolver == nil {
		return errors.New(errors.KindSymbolNotFound, "google.protobuf.Any: no Resolver configured to expand %q", typeURL)
	}
	name := typeNameFromURL(typeURL)
	md := opts.Resolver.FindMessageByName(name)
	if md == nil {
		return errors.New(errors.KindSymbolNotFound, "google.protobuf.Any: type %q not found", name)
	}
	embedded := dynamicpb.NewMessage(md)
	unmarshalCustom, isCustom := customUnmarshalers[md.FullName()]

	tok, err := dec.ReadNext()
	if err != nil {
		return err
	}
	if tok.Type() != jsonwire.StartObject {
		return errUnexpectedToken(tok)
	}

	embeddedFields := md.Fields()
	for {
		tok, err := dec.ReadNext()
		if err != nil {
			return err
		}
		if tok.Type() == jsonwire.EndObject {
			break
		}
		memberName, err := tok.Name()
		if err != nil {
			return err
		}
		switch {
		case memberName == "@type":
			if _, err := dec.ReadNext(); err != nil {
				return err
			}
		case isCustom && memberName == "value":
			if err := unmarshalCustom(dec, embedded, opts); err != nil {
				return err
			}
		case isCustom:
			if opts.DiscardUnknown {
				if err := skipValue(dec); err != nil {
					return err
				}
				continue
			}
			return errors.New(errors.KindUnknownField, "google.protobuf.Any: unexpected field %q alongside custom value", memberName)
		default:
			fd := embeddedFields.ByJSONName(memberName)
			if fd == nil {
				fd = embeddedFields.ByName(protoreflect.Name(memberName))
			}
			if fd == nil {
				if opts.DiscardUnknown {
					if err := skipValue(dec); err != nil {
						return err
					}
					continue
				}
				return errors.New(errors.KindUnknownField, "%s: unknown field %q", md.FullName(), memberName)
			}
			if err := unmarshalFieldValue(dec, embedded, fd, opts); err != nil {
				return err
			}
		}
	}

	payload, err := wireformat.Marshal(embedded)
	if err != nil {
		return err
	}
	fields := m.Descriptor().Fields()
	if err := m.Set(fields.ByName("type_url"), protoreflect.StringValue(typeURL)); err != nil {
		return err
	}
	return m.Set(fields.ByName("value"), protoreflect.BytesValue(payload))
}

// Timestamp/Duration share the canonical mapping's trailing-zero-trimmed
// fractional-seconds rendering, always to 0, 3, 6, or 9 digits.
const (
	secondsInNanos       = 999999999
	maxSecondsInDuration = 315576000000
	maxTimestampSeconds  = 253402300799
	minTimestampSeconds  = -62135596800
)

func trimmedNanos(nanos int32) string {
	s := fmt.Sprintf("%09d", nanos)
	s = strings.TrimSuffix(s, "000")
	s = strings.TrimSuffix(s, "000")
	s = strings.TrimSuffix(s, "000")
	return s
}

func formatDecimalSeconds(seconds int64, nanos int32) string {
	sign := ""
	if seconds < 0 || (seconds == 0 && nanos < 0) {
		sign = "-"
		seconds, nanos = -seconds, -nanos
	}
	frac := trimmedNanos(nanos)
	if frac == "" {
		return fmt.Sprintf("%s%d", sign, seconds)
	}
	return fmt.Sprintf("%s%d.%s", sign, seconds, frac)
}

func marshalTimestamp(enc *jsonwire.Encoder, m protoreflect.Message, opts MarshalOptions) error {
	fields := m.Descriptor().Fields()
	seconds := m.Get(fields.ByName("seconds")).Int()
	nanos := int32(m.Get(fields.ByName("nanos")).Int())
	if seconds < minTimestampSeconds || seconds > maxTimestampSeconds {
		return errors.New(errors.KindNumberOutOfRange, "google.protobuf.Timestamp: seconds %d out of range", seconds)
	}
	if nanos < 0 || nanos > secondsInNanos {
		return errors.New(errors.KindNumberOutOfRange, "google.protobuf.Timestamp: nanos %d out of range", nanos)
	}
	s := time.Unix(seconds, 0).UTC().Format("2006-01-02T15:04:05")
	if frac := trimmedNanos(nanos); frac != "" {
		s += "." + frac
	}
	return enc.WriteString(s + "Z")
}

func unmarshalTimestamp(dec *jsonwire.Decoder, m mutableMessage, opts UnmarshalOptions) error {
	tok, err := dec.ReadNext()
	if err != nil {
		return err
	}
	if tok.Type() != jsonwire.String {
		return errUnexpectedToken(tok)
	}
	t, err := time.Parse(time.RFC3339Nano, tok.String())
	if err != nil {
		return errors.New(errors.KindJSONInvalid, "google.protobuf.Timestamp: invalid value %q", tok.String())
	}
	seconds, nanos := t.Unix(), int32(t.Nanosecond())
	if seconds < minTimestampSeconds || seconds > maxTimestampSeconds {
		return errors.New(errors.KindNumberOutOfRange, "google.protobuf.Timestamp: seconds %d out of range", seconds)
	}
	fields := m.Descriptor().Fields()
	if err := m.Set(fields.ByName("seconds"), protoreflect.Int64Value(seconds)); err != nil {
		return err
	}
	return m.Set(fields.ByName("nanos"), protoreflect.Int32Value(nanos))
}

func marshalDuration(enc *jsonwire.Encoder, m protoreflect.Message, opts MarshalOptions) error {
	fields := m.Descriptor().Fields()
	seconds := m.Get(fields.ByName("seconds")).Int()
	nanos := int32(m.Get(fields.ByName("nanos")).Int())
	if seconds < -maxSecondsInDuration || seconds > maxSecondsInDuration {
		return errors.New(errors.KindNumberOutOfRange, "google.protobuf.Duration: seconds %d out of range", seconds)
	}
	if nanos < -secondsInNanos || nanos > secondsInNanos {
		return errors.New(errors.KindNumberOutOfRange, "google.protobuf.Duration: nanos %d out of range", nanos)
	}
	return enc.WriteString(formatDecimalSeconds(seconds, nanos) + "s")
}

func parseDuration(s string) (int64, int32, error) {
	if !strings.HasSuffix(s, "s") {
		return 0, 0, errors.New(errors.KindJSONInvalid, `google.protobuf.Duration: missing trailing "s"`)
	}
	s = s[:len(s)-1]
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg, s = true, s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if intPart == "" || len(fracPart) > 9 {
		return 0, 0, errors.New(errors.KindJSONInvalid, "google.protobuf.Duration: invalid value %q", s)
	}
	for _, c := range intPart + fracPart {
		if c < '0' || c > '9' {
			return 0, 0, errors.New(errors.KindJSONInvalid, "google.protobuf.Duration: invalid value %q", s)
		}
	}
	for len(fracPart) < 9 {
		fracPart += "0"
	}
	seconds, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, 0, errors.New(errors.KindNumberOutOfRange, "google.protobuf.Duration: seconds out of range")
	}
	nanos64, _ := strconv.ParseInt(fracPart, 10, 32)
	nanos := int32(nanos64)
	if neg {
		seconds, nanos = -seconds, -nanos
	}
	return seconds, nanos, nil
}

func unmarshalDuration(dec *jsonwire.Decoder, m mutableMessage, opts UnmarshalOptions) error {
	tok, err := dec.ReadNext()
	if err != nil {
		return err
	}
	if tok.Type() != jsonwire.String {
		return errUnexpectedToken(tok)
	}
	seconds, nanos, err := parseDuration(tok.String())
	if err != nil {
		return err
	}
	if seconds < -maxSecondsInDuration || seconds > maxSecondsInDuration {
		return errors.New(errors.KindNumberOutOfRange, "google.protobuf.Duration: seconds %d out of range", seconds)
	}
	fields := m.Descriptor().Fields()
	if err := m.Set(fields.ByName("seconds"), protoreflect.Int64Value(seconds)); err != nil {
		return err
	}
	return m.Set(fields.ByName("nanos"), protoreflect.Int32Value(nanos))
}

func marshalEmpty(enc *jsonwire.Encoder, m protoreflect.Message, opts MarshalOptions) error {
	enc.StartObject()
	enc.EndObject()
	return nil
}

func unmarshalEmpty(dec *jsonwire.Decoder, m mutableMessage, opts UnmarshalOptions) error {
	tok, err := dec.ReadNext()
	if err != nil {
		return err
	}
	if tok.Type() != jsonwire.StartObject {
		return errUnexpectedToken(tok)
	}
	tok, err = dec.ReadNext()
	if err != nil {
		return err
	}
	if tok.Type() != jsonwire.EndObject {
		return errUnexpectedToken(tok)
	}
	return nil
}

// The nine scalar wrapper types (DoubleValue, ..., BytesValue) each marshal
// as their bare "value" field, field number 1, whatever its kind.

func marshalWrapper(enc *jsonwire.Encoder, m protoreflect.Message, opts MarshalOptions) error {
	fd := m.Descriptor().Fields().ByNumber(1)
	return marshalSingular(enc, fd, m.Get(fd), opts)
}

func unmarshalWrapper(dec *jsonwire.Decoder, m mutableMessage, opts UnmarshalOptions) error {
	fd := m.Descriptor().Fields().ByNumber(1)
	v, err := unmarshalSingularValue(dec, fd, opts)
	if err != nil {
		return err
	}
	return m.Set(fd, v)
}

// Struct marshals as its "fields" map directly; ListValue as its "values"
// repeated field directly; Value as whichever oneof member is set.

func marshalStruct(enc *jsonwire.Encoder, m protoreflect.Message, opts MarshalOptions) error {
	fd := m.Descriptor().Fields().ByName("fields")
	return marshalMap(enc, fd, m.Get(fd).Map(), opts)
}

func unmarshalStruct(dec *jsonwire.Decoder, m mutableMessage, opts UnmarshalOptions) error {
	fd := m.Descriptor().Fields().ByName("fields")
	return unmarshalMap(dec, m, fd, opts)
}

func marshalListValue(enc *jsonwire.Encoder, m protoreflect.Message, opts MarshalOptions) error {
	fd := m.Descriptor().Fields().ByName("values")
	return marshalList(enc, fd, m.Get(fd).List(), opts)
}

func unmarshalListValue(dec *jsonwire.Decoder, m mutableMessage, opts UnmarshalOptions) error {
	fd := m.Descriptor().Fields().ByName("values")
	return unmarshalList(dec, m, fd, opts)
}

func marshalValueMessage(enc *jsonwire.Encoder, m protoreflect.Message, opts MarshalOptions) error {
	od := m.Descriptor().Oneofs().Get(0)
	fd := m.WhichOneof(od)
	if fd == nil {
		enc.WriteNull()
		return nil
	}
	switch fd.Name() {
	case "null_value":
		enc.WriteNull()
		return nil
	case "number_value":
		enc.WriteFloat(m.Get(fd).Float(), 64)
		return nil
	case "string_value":
		return enc.WriteString(m.Get(fd).String())
	case "bool_value":
		enc.WriteBool(m.Get(fd).Bool())
		return nil
	case "struct_value", "list_value":
		return marshalMessage(enc, m.Get(fd).Message(), opts)
	default:
		return errors.New(errors.KindJSONInvalid, "google.protobuf.Value: unknown oneof member %q", fd.Name())
	}
}

func unmarshalValueMessage(dec *jsonwire.Decoder, m mutableMessage, opts UnmarshalOptions) error {
	fields := m.Descriptor().Fields()
	typ, err := dec.Peek()
	if err != nil {
		return err
	}
	switch typ {
	case jsonwire.Null:
		dec.ReadNext()
		return m.Set(fields.ByName("null_value"), protoreflect.EnumValue(0))
	case jsonwire.Bool:
		tok, err := dec.ReadNext()
		if err != nil {
			return err
		}
		b, err := tok.Bool()
		if err != nil {
			return err
		}
		return m.Set(fields.ByName("bool_value"), protoreflect.BoolValue(b))
	case jsonwire.Number:
		tok, err := dec.ReadNext()
		if err != nil {
			return err
		}
		f, err := tok.Float(64)
		if err != nil {
			return err
		}
		return m.Set(fields.ByName("number_value"), protoreflect.Float64Value(f))
	case jsonwire.String:
		tok, err := dec.ReadNext()
		if err != nil {
			return err
		}
		return m.Set(fields.ByName("string_value"), protoreflect.StringValue(tok.String()))
	case jsonwire.StartObject:
		fd := fields.ByName("struct_value")
		sub := dynamicpb.NewMessage(fd.MessageType())
		if err := unmarshalMessage(dec, sub, opts); err != nil {
			return err
		}
		return m.Set(fd, protoreflect.MessageValue(sub))
	case jsonwire.StartArray:
		fd := fields.ByName("list_value")
		sub := dynamicpb.NewMessage(fd.MessageType())
		if err := unmarshalMessage(dec, sub, opts); err != nil {
			return err
		}
		return m.Set(fd, protoreflect.MessageValue(sub))
	default:
		tok, _ := dec.ReadNext()
		return errUnexpectedToken(tok)
	}
}
