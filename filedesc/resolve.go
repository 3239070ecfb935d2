// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package filedesc

// SetResolver installs r as the TypeResolver used by every message/enum
// field and every method in f to resolve its TypeName/InputType/OutputType
// lazily. The registry calls this once a file and its dependency closure are
// registered; until then, MessageType/EnumType/InputType/OutputType return
// nil, matching spec.md's "a field's resolved descriptor may be absent until
// the containing file is registered."
func (f *File) SetResolver(r TypeResolver) {
	for i := 0; i < f.messages.Len(); i++ {
		setMessageResolver(f.messages.list[i], r)
	}
	for i := 0; i < f.services.Len(); i++ {
		for _, m := range f.services.list[i].methods.list {
			m.resolver = r
		}
	}
}

func setMessageResolver(m *Message, r TypeResolver) {
	for _, fd := range m.fields.list {
		fd.resolver = r
	}
	for _, nm := range m.messages.list {
		setMessageResolver(nm, r)
	}
}
