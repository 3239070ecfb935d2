// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dynamicpb

import "github.com/protowire/protoreflect/protoreflect"

// list is the concrete protoreflect.List backing a repeated field.
type list struct {
	elems []protoreflect.Value
}

func newList() *list { return &list{} }

func (l *list) Len() int                  { return len(l.elems) }
func (l *list) Get(i int) protoreflect.Value { return l.elems[i] }
func (l *list) Set(i int, v protoreflect.Value) { l.elems[i] = v }
func (l *list) Append(v protoreflect.Value) { l.elems = append(l.elems, v) }
func (l *list) Truncate(n int)             { l.elems = l.elems[:n] }
