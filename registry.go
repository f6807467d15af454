// Copyright 2026 The Rod Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rod

import (
	"fmt"
	"reflect"
	"sync"
)

// Registry maps types to their compiled rule trees. Registration stores the
// declaration; compilation happens lazily on the type's first validation (or
// eagerly via [PrecompileIn]) and at most once, no matter how many
// goroutines race the first use. A declaration that fails to compile stays
// failed: every later validation of that type returns the same schema error.
//
// A Registry is safe for concurrent use. Compiled schemas are immutable and
// shared; each validation call builds its own result state.
type Registry struct {
	cfg   *config
	types sync.Map // reflect.Type -> *regEntry
}

// regEntry is one registered type: its declaration and, once compiled, its
// schema or permanent compile error.
type regEntry struct {
	decl   *TypeDecl
	once   sync.Once
	schema *schema
	err    error
}

// NewRegistry creates a [Registry] with the given options.
func NewRegistry(opts ...Option) *Registry {
	cfg := &config{matcher: NewFormatMatcher()}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Registry{cfg: cfg}
}

// Package-level default registry for the convenience functions [Register],
// [Validate], [ValidateAll], and [Precompile].
var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the process-wide default [Registry], creating it on first
// use.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})

	return defaultRegistry
}

// Register stores the declaration for type T in the default registry.
// Registration is expected at program initialization; registering a type
// again replaces its declaration for subsequent first compilations.
func Register[T any](d *TypeDecl) {
	RegisterIn[T](Default(), d)
}

// RegisterIn stores the declaration for type T in the given registry.
func RegisterIn[T any](r *Registry, d *TypeDecl) {
	r.types.Store(reflect.TypeFor[T](), &regEntry{decl: d})
}

// Precompile eagerly compiles T's declaration in the default registry,
// returning any schema-construction error that first validation would
// otherwise surface.
func Precompile[T any]() error {
	return PrecompileIn[T](Default())
}

// PrecompileIn eagerly compiles T's declaration in the given registry.
func PrecompileIn[T any](r *Registry) error {
	_, err := r.schemaFor(reflect.TypeFor[T]())
	return err
}

// schemaFor returns the compiled schema for t, compiling the stored
// declaration on first use. The compile-and-publish step runs under the
// entry's once guard, so concurrent first validations observe a single
// consistent schema, and a compile failure is cached as the permanent
// outcome for the type.
func (r *Registry) schemaFor(t reflect.Type) (*schema, error) {
	v, ok := r.types.Load(t)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, t)
	}

	e := v.(*regEntry)
	e.once.Do(func() {
		c := &compiler{matcher: r.cfg.matcher}
		e.schema, e.err = c.compile(t, e.decl)
	})

	return e.schema, e.err
}

// declFor returns the stored declaration for t, used by the JSON Schema
// exporter.
func (r *Registry) declFor(t reflect.Type) (*TypeDecl, bool) {
	v, ok := r.types.Load(t)
	if !ok {
		return nil, false
	}

	return v.(*regEntry).decl, true
}
