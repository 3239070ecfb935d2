// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package jsonwire is a low-level, allocation-light JSON writer and token
// reader tailored to the canonical protobuf JSON mapping: it preserves full
// int64 precision through the number grammar (encoding/json's own decoder
// collapses everything to float64) and lets its caller choose float-vs-string
// formatting per field, which protojson's well-known-type handling needs.
package jsonwire

import (
	"strconv"
	"strings"

	"github.com/protowire/protoreflect/internal/errors"
)

// Type identifies a token emitted by Decoder.ReadNext or accepted by Encoder.
type Type uint

const (
	_ Type = (1 << iota) / 2
	EOF
	Null
	Bool
	Number
	String
	StartObject
	EndObject
	Name
	StartArray
	EndArray

	comma // internal only, never surfaced by ReadNext
)

func (t Type) String() string {
	switch t {
	case EOF:
		return "eof"
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case StartObject:
		return "{"
	case EndObject:
		return "}"
	case Name:
		return "name"
	case StartArray:
		return "["
	case EndArray:
		return "]"
	}
	return "<invalid>"
}

// Encoder writes a stream of JSON tokens. The caller is responsible for
// emitting a well-formed sequence; Encoder does not validate nesting.
type Encoder struct {
	indent   string
	lastType Type
	indents  []byte
	out      []byte
}

// NewEncoder returns an Encoder. A non-empty indent (spaces or tabs only)
// pretty-prints every array/object entry on its own line.
func NewEncoder(indent string) (*Encoder, error) {
	e := &Encoder{}
	if len(indent) > 0 {
		if strings.Trim(indent, " \t") != "" {
			return nil, errors.New(errors.KindJSONInvalid, "indent must be composed of spaces or tabs only")
		}
		e.indent = indent
	}
	return e, nil
}

// Bytes returns the bytes written so far.
func (e *Encoder) Bytes() []byte { return e.out }

func (e *Encoder) WriteNull() {
	e.prepareNext(Null)
	e.out = append(e.out, "null"...)
}

func (e *Encoder) WriteBool(b bool) {
	e.prepareNext(Bool)
	if b {
		e.out = append(e.out, "true"...)
	} else {
		e.out = append(e.out, "false"...)
	}
}

func (e *Encoder) WriteString(s string) error {
	e.prepareNext(String)
	out, err := appendString(e.out, s)
	e.out = out
	return err
}

// WriteFloat writes n as a JSON number, or as the quoted strings "NaN",
// "Infinity", "-Infinity" per the canonical JSON mapping's special forms.
// bitSize (32 or 64) controls the shortest round-tripping representation.
func (e *Encoder) WriteFloat(n float64, bitSize int) {
	e.prepareNext(Number)
	e.out = appendFloat(e.out, n, bitSize)
}

func (e *Encoder) WriteInt(n int64) {
	e.prepareNext(Number)
	e.out = strconv.AppendInt(e.out, n, 10)
}

func (e *Encoder) WriteUint(n uint64) {
	e.prepareNext(Number)
	e.out = strconv.AppendUint(e.out, n, 10)
}

// WriteIntString writes n as a quoted decimal string, used for 64-bit
// integer fields per the canonical JSON mapping.
func (e *Encoder) WriteIntString(n int64) {
	e.prepareNext(String)
	e.out = append(e.out, '"')
	e.out = strconv.AppendInt(e.out, n, 10)
	e.out = append(e.out, '"')
}

// WriteUintString writes n as a quoted decimal string.
func (e *Encoder) WriteUintString(n uint64) {
	e.prepareNext(String)
	e.out = append(e.out, '"')
	e.out = strconv.AppendUint(e.out, n, 10)
	e.out = append(e.out, '"')
}

func (e *Encoder) StartObject() {
	e.prepareNext(StartObject)
	e.out = append(e.out, '{')
}

func (e *Encoder) EndObject() {
	e.prepareNext(EndObject)
	e.out = append(e.out, '}')
}

// WriteName writes s as an object member name followed by ':'.
func (e *Encoder) WriteName(s string) error {
	e.prepareNext(Name)
	out, err := appendString(e.out, s)
	e.out = append(out, ':')
	return err
}

func (e *Encoder) StartArray() {
	e.prepareNext(StartArray)
	e.out = append(e.out, '[')
}

func (e *Encoder) EndArray() {
	e.prepareNext(EndArray)
	e.out = append(e.out, ']')
}

// prepareNext inserts the comma/indentation needed before the next token,
// given what was written last.
func (e *Encoder) prepareNext(next Type) {
	defer func() { e.lastType = next }()

	if len(e.indent) == 0 {
		if e.lastType&(Null|Bool|Number|String|EndObject|EndArray) != 0 &&
			next&(Name|Null|Bool|Number|String|StartObject|StartArray) != 0 {
			e.out = append(e.out, ',')
		}
		return
	}

	switch {
	case e.lastType&(StartObject|StartArray) != 0:
		if next&(EndObject|EndArray) == 0 {
			e.indents = append(e.indents, e.indent...)
			e.out = append(e.out, '\n')
			e.out = append(e.out, e.indents...)
		}

	case e.lastType&(Null|Bool|Number|String|EndObject|EndArray) != 0:
		switch {
		case next&(Name|Null|Bool|Number|String|StartObject|StartArray) != 0:
			e.out = append(e.out, ',', '\n')
		case next&(EndObject|EndArray) != 0:
			e.indents = e.indents[:len(e.indents)-len(e.indent)]
			e.out = append(e.out, '\n')
		}
		e.out = append(e.out, e.indents...)

	case e.lastType&Name != 0:
		e.out = append(e.out, ' ')
	}
}
