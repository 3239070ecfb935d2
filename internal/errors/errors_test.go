// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestNewKind(t *testing.T) {
	err := New(KindFieldNotFound, "field %q", "name")
	got := err.Error()
	if !strings.HasPrefix(got, "protoreflect: FieldNotFound:") {
		t.Errorf("Error() = %q, missing kind prefix", got)
	}
	if !strings.Contains(got, `"name"`) {
		t.Errorf("Error() = %q, missing formatted argument", got)
	}
	if KindOf(err) != KindFieldNotFound {
		t.Errorf("KindOf() = %v, want %v", KindOf(err), KindFieldNotFound)
	}
}

func TestIsByKind(t *testing.T) {
	err := New(KindNotMap, "field %q is not a map", "x")
	if !errors.Is(err, Sentinel(KindNotMap)) {
		t.Errorf("errors.Is(err, Sentinel(KindNotMap)) = false, want true")
	}
	if errors.Is(err, Sentinel(KindNotRepeated)) {
		t.Errorf("errors.Is(err, Sentinel(KindNotRepeated)) = true, want false")
	}
}

func TestKindOfNonTagged(t *testing.T) {
	if got := KindOf(errors.New("plain")); got != "" {
		t.Errorf("KindOf(plain error) = %v, want empty", got)
	}
}
