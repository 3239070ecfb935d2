// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jsonwire

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"unicode/utf8"

	"github.com/protowire/protoreflect/internal/errors"
)

// Decoder is a token-based JSON reader over an in-memory buffer.
type Decoder struct {
	lastType Type

	// startStack tracks the StartObject/StartArray nesting the current
	// value sits directly inside.
	startStack []Type

	orig []byte // full input, used only for line/column reporting
	in   []byte // unconsumed input

	havePeek bool
	peeked   Value
	peekErr  error
}

func NewDecoder(b []byte) *Decoder {
	return &Decoder{orig: b, in: b}
}

// Remaining returns the unconsumed input, usable to spin up an independent
// lookahead Decoder (e.g. to scan an Any object for "@type" before the main
// pass consumes its fields).
func (d *Decoder) Remaining() []byte { return d.in }

// Peek returns the type of the next token without consuming it.
func (d *Decoder) Peek() (Type, error) {
	if !d.havePeek {
		d.peeked, d.peekErr = d.readNext()
		d.havePeek = true
	}
	return d.peeked.typ, d.peekErr
}

// ReadNext returns the next JSON token. String tokens that double as object
// member names are reported as Name, not String.
func (d *Decoder) ReadNext() (Value, error) {
	if d.havePeek {
		d.havePeek = false
		return d.peeked, d.peekErr
	}
	return d.readNext()
}

func (d *Decoder) readNext() (Value, error) {
	value, n, err := d.parseNext()
	if err != nil {
		return Value{}, err
	}

	switch value.typ {
	case EOF:
		if len(d.startStack) != 0 {
			return Value{}, io.ErrUnexpectedEOF
		}

	case Null:
		if !d.isValueNext() {
			return Value{}, d.newSyntaxError("unexpected value null")
		}

	case Bool, Number:
		if !d.isValueNext() {
			return Value{}, d.newSyntaxError("unexpected value %v", value)
		}

	case String:
		if d.isValueNext() {
			break
		}
		if d.lastType&(StartObject|comma) == 0 {
			return Value{}, d.newSyntaxError("unexpected value %q", value)
		}
		d.in = d.in[n:]
		d.consume(0)
		if len(d.in) == 0 || d.in[0] != ':' {
			return Value{}, d.newSyntaxError(`missing ":" after object name`)
		}
		n = 1
		value.typ = Name

	case StartObject, StartArray:
		if !d.isValueNext() {
			return Value{}, d.newSyntaxError("unexpected character %v", value)
		}
		d.startStack = append(d.startStack, value.typ)

	case EndObject:
		if len(d.startStack) == 0 || d.lastType == comma ||
			d.startStack[len(d.startStack)-1] != StartObject {
			return Value{}, d.newSyntaxError("unexpected character }")
		}
		d.startStack = d.startStack[:len(d.startStack)-1]

	case EndArray:
		if len(d.startStack) == 0 || d.lastType == comma ||
			d.startStack[len(d.startStack)-1] != StartArray {
			return Value{}, d.newSyntaxError("unexpected character ]")
		}
		d.startStack = d.startStack[:len(d.startStack)-1]

	case comma:
		if len(d.startStack) == 0 ||
			d.lastType&(Null|Bool|Number|String|EndObject|EndArray) == 0 {
			return Value{}, d.newSyntaxError("unexpected character ,")
		}
	}

	d.lastType = value.typ
	d.in = d.in[n:]

	if d.lastType == comma {
		return d.readNext()
	}
	return value, nil
}

var (
	literalRegexp = regexp.MustCompile(`^(null|true|false)`)
	errRegexp     = regexp.MustCompile(`^([-+._a-zA-Z0-9]{1,32}|.)`)
)

func (d *Decoder) parseNext() (value Value, n int, err error) {
	d.consume(0)

	in := d.in
	if len(in) == 0 {
		return d.newValue(EOF, nil, nil), 0, nil
	}

	switch in[0] {
	case 'n', 't', 'f':
		n := matchWithDelim(literalRegexp, in)
		if n == 0 {
			return Value{}, 0, d.newSyntaxError("invalid value %s", errRegexp.Find(in))
		}
		switch in[0] {
		case 'n':
			return d.newValue(Null, in[:n], nil), n, nil
		case 't':
			return d.newValue(Bool, in[:n], true), n, nil
		default:
			return d.newValue(Bool, in[:n], false), n, nil
		}

	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		num, n := parseNumber(in)
		if num == nil {
			return Value{}, 0, d.newSyntaxError("invalid number %s", errRegexp.Find(in))
		}
		return d.newValue(Number, in[:n], num), n, nil

	case '"':
		s, n, err := d.parseString(in)
		if err != nil {
			return Value{}, 0, err
		}
		return d.newValue(String, in[:n], s), n, nil

	case '{':
		return d.newValue(StartObject, in[:1], nil), 1, nil
	case '}':
		return d.newValue(EndObject, in[:1], nil), 1, nil
	case '[':
		return d.newValue(StartArray, in[:1], nil), 1, nil
	case ']':
		return d.newValue(EndArray, in[:1], nil), 1, nil
	case ',':
		return d.newValue(comma, in[:1], nil), 1, nil
	}
	return Value{}, 0, d.newSyntaxError("invalid value %s", errRegexp.Find(in))
}

func (d *Decoder) position() (int, int) {
	b := d.orig[:len(d.orig)-len(d.in)]
	line := bytes.Count(b, []byte("\n")) + 1
	if i := bytes.LastIndexByte(b, '\n'); i >= 0 {
		b = b[i+1:]
	}
	column := utf8.RuneCount(b) + 1
	return line, column
}

func (d *Decoder) newSyntaxError(f string, x ...interface{}) error {
	line, column := d.position()
	return errors.New(errors.KindJSONInvalid, "syntax error (line %d:%d): %s", line, column, fmt.Sprintf(f, x...))
}

// matchWithDelim matches r against b and requires the match to end at a
// delimiter (or EOF), so "truefoo" is not mistaken for the literal "true".
func matchWithDelim(r *regexp.Regexp, b []byte) int {
	n := len(r.Find(b))
	if n < len(b) && isNotDelim(b[n]) {
		return 0
	}
	return n
}

func isNotDelim(c byte) bool {
	return c == '-' || c == '+' || c == '.' || c == '_' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

func (d *Decoder) consume(n int) {
	d.in = d.in[n:]
	for len(d.in) > 0 {
		switch d.in[0] {
		case ' ', '\n', '\r', '\t':
			d.in = d.in[1:]
		default:
			return
		}
	}
}

func (d *Decoder) isValueNext() bool {
	if len(d.startStack) == 0 {
		return d.lastType == 0
	}
	switch d.startStack[len(d.startStack)-1] {
	case StartObject:
		return d.lastType&Name != 0
	case StartArray:
		return d.lastType&(StartArray|comma) != 0
	}
	panic(fmt.Sprintf("unreachable: lastType %v, startStack top %v", d.lastType, d.startStack[len(d.startStack)-1]))
}

func (d *Decoder) newValue(typ Type, input []byte, value interface{}) Value {
	line, column := d.position()
	return Value{input: input, line: line, column: column, typ: typ, value: value}
}

// Value is a single token read by Decoder.ReadNext.
type Value struct {
	input  []byte
	line   int
	column int
	typ    Type
	value  interface{}
}

func (v Value) newError(f string, x ...interface{}) error {
	return errors.New(errors.KindJSONInvalid, "error (line %d:%d): %s", v.line, v.column, fmt.Sprintf(f, x...))
}

func (v Value) Type() Type { return v.typ }

func (v Value) Position() (int, int) { return v.line, v.column }

func (v Value) Bool() (bool, error) {
	if v.typ != Bool {
		return false, v.newError("%s is not a bool", v.input)
	}
	return v.value.(bool), nil
}

// String returns the decoded string for a String/Name token, or the raw
// input text for any other token (useful in error messages).
func (v Value) String() string {
	if v.typ != String && v.typ != Name {
		return string(v.input)
	}
	return v.value.(string)
}

func (v Value) Name() (string, error) {
	if v.typ != Name {
		return "", v.newError("%s is not an object name", v.input)
	}
	return v.value.(string), nil
}

// Float returns the token as a float64, validated to the given bit size
// (32 or 64).
func (v Value) Float(bitSize int) (float64, error) {
	if v.typ != Number {
		return 0, v.newError("%s is not a number", v.input)
	}
	f, err := strconv.ParseFloat(string(v.input), bitSize)
	if err != nil {
		return 0, v.newError("%v", err)
	}
	return f, nil
}

// Int returns the token as a signed integer, failing if it has a nonzero
// fractional part or overflows bitSize.
func (v Value) Int(bitSize int) (int64, error) {
	s, err := v.getIntStr()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(s, 10, bitSize)
	if err != nil {
		return 0, v.newError("%v", err)
	}
	return n, nil
}

func (v Value) Uint(bitSize int) (uint64, error) {
	s, err := v.getIntStr()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(s, 10, bitSize)
	if err != nil {
		return 0, v.newError("%v", err)
	}
	return n, nil
}

func (v Value) getIntStr() (string, error) {
	if v.typ != Number {
		return "", v.newError("%s is not a number", v.input)
	}
	num, ok := normalizeToIntString(v.value.(*numberParts))
	if !ok {
		return "", v.newError("cannot convert %s to integer", v.input)
	}
	return num, nil
}
