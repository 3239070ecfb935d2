// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package registry implements the thread-safe descriptor pool: atomic file
// registration, full-name symbol lookup, dependency-closure tracking, and
// the built-in well-known-type set.
//
// The teacher splits this concern into two pools — protoregistry.Files
// (descriptors only) and protoregistry.Types (descriptors plus the
// generated Go type that implements them), the latter needed only because
// generated code exists to construct. This library has no code generation:
// every message is a dynamicpb.Message constructed straight from its
// descriptor, so there is nothing a "Types" pool would add. Pool plays both
// roles.
package registry

import (
	"sync"

	"github.com/protowire/protoreflect/dynamicpb"
	"github.com/protowire/protoreflect/fieldpath"
	"github.com/protowire/protoreflect/filedesc"
	"github.com/protowire/protoreflect/internal/errors"
	"github.com/protowire/protoreflect/protoreflect"
)

// symbolRanger is implemented by *filedesc.File; declared locally so Pool
// depends only on the narrow capability it needs.
type symbolRanger interface {
	RangeSymbols(func(protoreflect.FullName, protoreflect.Descriptor) bool)
}

// resolverSetter is implemented by *filedesc.File.
type resolverSetter interface {
	SetResolver(filedesc.TypeResolver)
}

// Pool is a thread-safe store of registered file descriptors and their
// nested symbols. The zero value is not usable; construct with NewPool.
type Pool struct {
	mu       sync.RWMutex
	byPath   map[string]protoreflect.FileDescriptor
	byPkg    map[protoreflect.FullName][]protoreflect.FileDescriptor
	symbols  map[protoreflect.FullName]protoreflect.Descriptor
	fields   map[protoreflect.FullName]protoreflect.FieldDescriptor // "<message>.<field>"
}

// Option configures a Pool at construction time.
type Option func(*Pool)

// WithBuiltins pre-registers google.protobuf.{Any,Timestamp,Duration,Empty},
// the scalar wrapper types, and the Struct/Value/ListValue/NullValue family,
// matching spec.md §4.5's "built-in pool"
// requirement. It panics if the built-in descriptors themselves fail to
// build or register, which would indicate a bug in this library, not in
// caller-supplied input.
func WithBuiltins() Option {
	return func(p *Pool) {
		for _, f := range builtinFiles() {
			if err := p.RegisterFile(f); err != nil {
				panic("registry: failed to register built-in file: " + err.Error())
			}
		}
	}
}

// NewPool constructs an empty Pool, applying the given options in order.
func NewPool(opts ...Option) *Pool {
	p := &Pool{
		byPath:  make(map[string]protoreflect.FileDescriptor),
		byPkg:   make(map[protoreflect.FullName][]protoreflect.FileDescriptor),
		symbols: make(map[protoreflect.FullName]protoreflect.Descriptor),
		fields:  make(map[protoreflect.FullName]protoreflect.FieldDescriptor),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RegisterFile registers f atomically: either every symbol it declares
// becomes visible, or (on any error) none does. Registering a file whose
// Path() is already present fails with KindDuplicateFile. Registering a
// file any of whose symbols collides with an already-registered symbol
// fails with KindDuplicateSymbol, and no symbol from f is published.
func (p *Pool) RegisterFile(f protoreflect.FileDescriptor) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.byPath[f.Path()]; ok {
		return errors.New(errors.KindDuplicateFile, "file %q already registered", f.Path())
	}
	for _, dep := range f.Dependencies() {
		if _, ok := p.byPath[dep]; !ok {
			return errors.New(errors.KindSymbolNotFound, "file %q depends on unregistered file %q", f.Path(), dep)
		}
	}

	ranger, ok := f.(symbolRanger)
	if !ok {
		return errors.New(errors.KindValidation, "file %q: descriptor does not support symbol enumeration", f.Path())
	}

	// Collect candidates first so a mid-walk collision leaves the pool
	// untouched (registration either publishes everything or nothing).
	candidates := make(map[protoreflect.FullName]protoreflect.Descriptor)
	var collision protoreflect.FullName
	ranger.RangeSymbols(func(name protoreflect.FullName, d protoreflect.Descriptor) bool {
		if _, exists := p.symbols[name]; exists {
			collision = name
			return false
		}
		candidates[name] = d
		return true
	})
	if collision != "" {
		return errors.New(errors.KindDuplicateSymbol, "symbol %q already registered", collision)
	}

	for name, d := range candidates {
		p.symbols[name] = d
		if md, ok := d.(protoreflect.MessageDescriptor); ok {
			fields := md.Fields()
			for i := 0; i < fields.Len(); i++ {
				fd := fields.Get(i)
				p.fields[name.Append(fd.Name())] = fd
			}
		}
	}
	p.byPath[f.Path()] = f
	p.byPkg[f.Package()] = append(p.byPkg[f.Package()], f)

	if rs, ok := f.(resolverSetter); ok {
		rs.SetResolver(p)
	}
	return nil
}

// FindFileByPath returns the file registered at path, or (nil, false).
func (p *Pool) FindFileByPath(path string) (protoreflect.FileDescriptor, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	f, ok := p.byPath[path]
	return f, ok
}

// FindDescriptorByName returns any registered descriptor by full name, or nil.
func (p *Pool) FindDescriptorByName(name protoreflect.FullName) protoreflect.Descriptor {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.symbols[name]
}

// FindMessageByName implements filedesc.TypeResolver.
func (p *Pool) FindMessageByName(name protoreflect.FullName) protoreflect.MessageDescriptor {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if md, ok := p.symbols[name].(protoreflect.MessageDescriptor); ok {
		return md
	}
	return nil
}

// FindEnumByName implements filedesc.TypeResolver.
func (p *Pool) FindEnumByName(name protoreflect.FullName) protoreflect.EnumDescriptor {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if ed, ok := p.symbols[name].(protoreflect.EnumDescriptor); ok {
		return ed
	}
	return nil
}

// FindExtensionByName is intentionally absent: proto2 extensions are a
// Non-goal (spec.md §4.1, §Non-goals).

// FindFieldByName resolves "<enclosing_message_full_name>.<field_name>".
func (p *Pool) FindFieldByName(name protoreflect.FullName) protoreflect.FieldDescriptor {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.fields[name]
}

// RangeFiles calls fn for every registered file, in unspecified order,
// stopping early if fn returns false.
func (p *Pool) RangeFiles(fn func(protoreflect.FileDescriptor) bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, f := range p.byPath {
		if !fn(f) {
			return
		}
	}
}

// RangeFilesByPackage calls fn for every file registered under pkg.
func (p *Pool) RangeFilesByPackage(pkg protoreflect.FullName, fn func(protoreflect.FileDescriptor) bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, f := range p.byPkg[pkg] {
		if !fn(f) {
			return
		}
	}
}

// NewFile decodes FileDescriptorProto wire bytes and registers the result.
// It is a convenience wrapper around filedesc.NewFileFromProto + RegisterFile.
func (p *Pool) NewFile(b []byte) (protoreflect.FileDescriptor, error) {
	f, err := filedesc.NewFileFromProto(b)
	if err != nil {
		return nil, err
	}
	if err := p.RegisterFile(f); err != nil {
		return nil, err
	}
	return f, nil
}

// Dependencies returns the closure of message and enum full names reachable
// from name's field types and nested type declarations, transitively, per
// spec.md §4.5. The walk is guarded by a visited set, so it terminates on
// any registered descriptor graph regardless of cycles. It returns nil if
// name does not resolve to a registered message.
func (p *Pool) Dependencies(name protoreflect.FullName) []protoreflect.FullName {
	p.mu.RLock()
	defer p.mu.RUnlock()

	root, ok := p.symbols[name].(protoreflect.MessageDescriptor)
	if !ok {
		return nil
	}

	visited := map[protoreflect.FullName]bool{name: true}
	var order []protoreflect.FullName
	visit := func(n protoreflect.FullName) bool {
		if visited[n] {
			return false
		}
		visited[n] = true
		order = append(order, n)
		return true
	}

	var walk func(md protoreflect.MessageDescriptor)
	walk = func(md protoreflect.MessageDescriptor) {
		fields := md.Fields()
		for i := 0; i < fields.Len(); i++ {
			fd := fields.Get(i)
			switch fd.Kind() {
			case protoreflect.MessageKind, protoreflect.GroupKind:
				if sub := fd.MessageType(); sub != nil && visit(sub.FullName()) {
					walk(sub)
				}
			case protoreflect.EnumKind:
				if ed := fd.EnumType(); ed != nil {
					visit(ed.FullName())
				}
			}
		}

		nested := md.Messages()
		for i := 0; i < nested.Len(); i++ {
			if sub := nested.Get(i); visit(sub.FullName()) {
				walk(sub)
			}
		}
		enums := md.Enums()
		for i := 0; i < enums.Len(); i++ {
			visit(enums.Get(i).FullName())
		}
	}
	walk(root)
	return order
}

// CreateMessage implements spec.md §4.5's create_message(type_name): it
// returns a new empty dynamic message bound to name's registered message
// descriptor, or (nil, false) if name is not registered or not a message.
func (p *Pool) CreateMessage(name protoreflect.FullName) (*dynamicpb.Message, bool) {
	p.mu.RLock()
	md, ok := p.symbols[name].(protoreflect.MessageDescriptor)
	p.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return dynamicpb.NewMessage(md), true
}

// CreateMessageWithFields implements spec.md §4.5's
// create_message(type_name, field_values): it constructs an empty message as
// CreateMessage does, then applies fieldValues -- a field-name-to-value
// mapping -- through the same validating setters fieldpath.Builder uses for
// path assignment, so the coercion and error behavior match Builder.Set
// exactly.
func (p *Pool) CreateMessageWithFields(name protoreflect.FullName, fieldValues map[string]interface{}) (*dynamicpb.Message, error) {
	m, ok := p.CreateMessage(name)
	if !ok {
		return nil, errors.New(errors.KindSymbolNotFound, "message %q not registered", name)
	}
	b := fieldpath.NewBuilder(m)
	for path, v := range fieldValues {
		b.Set(path, v)
	}
	if _, err := b.Build(); err != nil {
		return nil, err
	}
	return m, nil
}
