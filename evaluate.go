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
	"strconv"
)

// maxDepth bounds nested-schema recursion so that cyclic values cannot
// overflow the stack.
const maxDepth = 100

// path is the rendered location of a value within the walked structure:
// dot-separated named fields, bracket-indexed tuple and element positions.
type path string

func (p path) field(name string) path {
	if p == "" {
		return path(name)
	}

	return p + "." + path(name)
}

func (p path) index(i int) path {
	return p + path("["+strconv.Itoa(i)+"]")
}

// render returns the path for display; the root renders as "value".
func (p path) render() string {
	if p == "" {
		return "value"
	}

	return string(p)
}

// walker threads one validation call's state through the depth-first walk:
// the registry for nested lookups, the execution mode, and the violations
// discovered so far. Fail-fast and collect-all share the walk; the mode only
// decides whether a reported violation stops it.
type walker struct {
	reg      *Registry
	failFast bool
	depth    int
	err      error
	out      Violations
}

// report records a violation and reports whether the walk must stop.
func (w *walker) report(v Violation) bool {
	w.out = append(w.out, v)
	return w.failFast
}

// fail aborts the walk with a non-violation error (schema or registry
// failure discovered mid-walk).
func (w *walker) fail(err error) bool {
	if w.err == nil {
		w.err = err
	}

	return true
}

// runRules executes a compiled rule sequence in order against one value.
// Within a sequence every rule is evaluated in collect-all mode; in
// fail-fast mode the first violation stops it. fallback is the message
// applied to rules without an override of their own.
func runRules(entries []ruleEntry, fallback string, v reflect.Value, p path, w *walker) bool {
	for _, e := range entries {
		msg := e.message
		if msg == "" {
			msg = fallback
		}
		if e.chk.check(v, p, w, msg) {
			return true
		}
	}

	return false
}

// run executes one field plan against its enclosing value.
func (f *fieldPlan) run(v reflect.Value, p path, w *walker) bool {
	target := v
	child := p

	switch {
	case f.idx < 0:
		// Self plan: the value itself, no extra segment.
	case f.byIndex:
		if v.Kind() == reflect.Struct {
			target = v.Field(f.idx)
		} else {
			target = v.Index(f.idx)
		}
		child = p.index(f.idx)
	default:
		target = v.Field(f.idx)
		child = p.field(f.name)
	}

	return runRules(f.entries, f.message, target, child, w)
}

// walk evaluates the schema against v, recursing through nested schemas.
// Record schemas evaluate fields in declaration order; union schemas
// dispatch on the value's concrete type and evaluate only the active
// variant.
func (s *schema) walk(v reflect.Value, p path, w *walker) bool {
	w.depth++
	defer func() { w.depth-- }()
	if w.depth > maxDepth {
		return w.fail(fmt.Errorf("validation aborted: nesting exceeds %d levels at `%s`", maxDepth, p.render()))
	}

	if s.variants != nil {
		return s.dispatch(v, p, w)
	}

	for _, f := range s.fields {
		if f.run(v, p, w) {
			return true
		}
	}

	return false
}

// dispatch resolves the active union variant and runs its payload plan.
func (s *schema) dispatch(v reflect.Value, p path, w *walker) bool {
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return w.report(Violation{
				Path:    string(p),
				Code:    "enum.variant",
				Expect:  "a value of a declared variant",
				Message: fmt.Sprintf("expected `%s` to be a value of a declared variant, got nil", p.render()),
			})
		}
		v = v.Elem()
	}
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return w.report(Violation{
				Path:    string(p),
				Code:    "enum.variant",
				Expect:  "a value of a declared variant",
				Message: fmt.Sprintf("expected `%s` to be a value of a declared variant, got nil", p.render()),
			})
		}
		v = v.Elem()
	}

	vp, ok := s.variants[v.Type()]
	if !ok {
		observed := v.Type().String()
		return w.report(Violation{
			Path:     string(p),
			Code:     "enum.variant",
			Expect:   fmt.Sprintf("one of the declared variants of %s", s.typ),
			Observed: observed,
			Message:  fmt.Sprintf("expected `%s` to be one of the declared variants of %s, got %s", p.render(), s.typ, observed),
		})
	}

	for _, f := range vp.fields {
		if f.run(v, p, w) {
			return true
		}
	}

	return false
}

// Validate checks v against T's registered declaration and returns nil or
// the first violation in declaration order, as a [*Violation]. Pass the
// declared union interface type (or let it be inferred from an
// interface-typed variable) when validating tagged unions, so dispatch sees
// the union rather than the concrete variant.
//
// A schema-construction error in T's declaration, or an unregistered T,
// is returned as an ordinary error distinguishable with errors.Is
// ([ErrSchema], [ErrNotRegistered]).
func Validate[T any](v T) error {
	return ValidateIn(Default(), v)
}

// ValidateAll checks v against T's registered declaration and returns nil
// or every violation as [Violations], ordered by a left-to-right,
// depth-first walk of the rules.
func ValidateAll[T any](v T) error {
	return ValidateAllIn(Default(), v)
}

// ValidateIn is [Validate] against an explicit registry.
func ValidateIn[T any](r *Registry, v T) error {
	return r.run(reflect.TypeFor[T](), reflect.ValueOf(&v).Elem(), true)
}

// ValidateAllIn is [ValidateAll] against an explicit registry.
func ValidateAllIn[T any](r *Registry, v T) error {
	return r.run(reflect.TypeFor[T](), reflect.ValueOf(&v).Elem(), false)
}

// run looks up the compiled schema and performs one validation walk.
func (r *Registry) run(t reflect.Type, rv reflect.Value, failFast bool) error {
	for t.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return ErrCannotValidateNilValue
		}
		t = t.Elem()
		rv = rv.Elem()
	}

	s, err := r.schemaFor(t)
	if err != nil {
		return err
	}

	w := &walker{reg: r, failFast: failFast}
	s.walk(rv, "", w)

	if w.err != nil {
		return w.err
	}
	if len(w.out) == 0 {
		return nil
	}
	if failFast {
		v := w.out[0]
		return &v
	}

	return w.out
}
