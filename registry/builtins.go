// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package registry

import (
	"github.com/protowire/protoreflect/protoreflect"
	"github.com/protowire/protoreflect/wellknown"
)

// builtinFiles adapts wellknown's concrete *filedesc.File values to the
// protoreflect.FileDescriptor interface RegisterFile expects.
func builtinFiles() []protoreflect.FileDescriptor {
	files := wellknown.Files()
	out := make([]protoreflect.FileDescriptor, len(files))
	for i, f := range files {
		out[i] = f
	}
	return out
}
