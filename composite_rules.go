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
	"reflect"
)

// Literal requires the field to be strictly equal to the expected value.
// The expected value must be of the field's type or losslessly convertible
// to it; anything else is a schema-construction error. Booleans are
// constrained this way: Literal(true) on a bool field.
func Literal(want any) Rule {
	return literalRule{want: want}
}

type literalRule struct {
	want any
}

func (r literalRule) compile(_ *compiler, t reflect.Type) (checker, error) {
	if r.want == nil {
		return nil, schemaErr("literal value must not be nil")
	}

	wv := reflect.ValueOf(r.want)
	if wv.Type() != t {
		// Allow lossless conversions (untyped-constant style literals),
		// but never cross the string/numeric divide.
		stringMismatch := (wv.Kind() == reflect.String) != (t.Kind() == reflect.String)
		if !wv.Type().ConvertibleTo(t) || stringMismatch {
			return nil, schemaErr("literal value of type %s is not compatible with field type %s", wv.Type(), t)
		}
		// The conversion must round-trip: a truncating or wrapping literal
		// (1.5 on an int field, -1 on a uint field) can never compare equal,
		// so the declaration is unsatisfiable.
		cv := wv.Convert(t)
		if cv.Convert(wv.Type()).Interface() != wv.Interface() {
			return nil, schemaErr("literal value %v of type %s does not convert losslessly to field type %s", wv.Interface(), wv.Type(), t)
		}
		wv = cv
	}
	if !t.Comparable() {
		return nil, schemaErr("literal comparison requires a comparable field type, not %s", t)
	}

	want := wv.Interface()
	expect := "exactly " + renderValue(wv)
	return checkFunc(func(v reflect.Value) *expectation {
		if v.Interface() == want {
			return nil
		}
		return &expectation{code: "literal", expect: expect, observed: renderValue(v)}
	}), nil
}

// Absent requires an optional field (pointer, slice, map, or interface) to
// be nil.
func Absent() Rule {
	return absentRule{}
}

type absentRule struct{}

func (absentRule) compile(_ *compiler, t reflect.Type) (checker, error) {
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
	default:
		return nil, schemaErr("Absent applies to nilable fields, not %s", t)
	}

	return checkFunc(func(v reflect.Value) *expectation {
		if v.IsNil() {
			return nil
		}
		observed := renderValue(v)
		if v.Kind() == reflect.Pointer {
			observed = renderValue(v.Elem())
		}
		return &expectation{code: "option.absent", expect: "absent", observed: observed}
	}), nil
}

// Optional applies the given rules to a pointer field's value when it is
// present. A nil field succeeds trivially; absence alone is never a
// violation. The rules run against the dereferenced value at the field's own
// path, without an extra path segment.
func Optional(rules ...Rule) Rule {
	return optionalRule{rules: rules}
}

type optionalRule struct {
	rules []Rule
}

func (r optionalRule) compile(c *compiler, t reflect.Type) (checker, error) {
	if t.Kind() != reflect.Pointer {
		return nil, schemaErr("Optional applies to pointer fields, not %s", t)
	}

	inner, err := c.compileRules(r.rules, t.Elem())
	if err != nil {
		return nil, err
	}

	return optionalChecker{inner: inner}, nil
}

type optionalChecker struct {
	inner []ruleEntry
}

func (o optionalChecker) check(v reflect.Value, p path, w *walker, fallback string) bool {
	if v.IsNil() {
		return false
	}

	return runRules(o.inner, fallback, v.Elem(), p, w)
}

// Each applies the given rules to every element of a slice or array field,
// left to right. Element violations are reported at the field's path with a
// bracketed index appended. Combine with [Length] to constrain the number of
// elements; the length check always runs before element checks.
func Each(rules ...Rule) Rule {
	return eachRule{rules: rules}
}

type eachRule struct {
	rules []Rule
}

func (r eachRule) compile(c *compiler, t reflect.Type) (checker, error) {
	if t.Kind() != reflect.Slice && t.Kind() != reflect.Array {
		return nil, schemaErr("Each applies to slices and arrays, not %s", t)
	}

	inner, err := c.compileRules(r.rules, t.Elem())
	if err != nil {
		return nil, err
	}

	return eachChecker{inner: inner}, nil
}

type eachChecker struct {
	inner []ruleEntry
}

func (e eachChecker) check(v reflect.Value, p path, w *walker, fallback string) bool {
	for i := range v.Len() {
		if runRules(e.inner, fallback, v.Index(i), p.index(i), w) {
			return true
		}
	}

	return false
}

// TupleSlot is the rule sequence for one tuple position. Build with [Slot].
type TupleSlot struct {
	rules []Rule
}

// Slot groups the rules for one tuple position.
func Slot(rules ...Rule) TupleSlot {
	return TupleSlot{rules: rules}
}

// Tuple applies per-position rule sequences to a struct or array field,
// positions matched one to one with the field's slots in order. Position
// violations are reported with a bracketed index appended to the field path.
func Tuple(slots ...TupleSlot) Rule {
	return tupleRule{slots: slots}
}

type tupleRule struct {
	slots []TupleSlot
}

func (r tupleRule) compile(c *compiler, t reflect.Type) (checker, error) {
	switch t.Kind() {
	case reflect.Struct:
		if t.NumField() != len(r.slots) {
			return nil, schemaErr("tuple with %d slots does not match %s with %d fields", len(r.slots), t, t.NumField())
		}

		chk := tupleChecker{slots: make([][]ruleEntry, len(r.slots))}
		for i, slot := range r.slots {
			f := t.Field(i)
			if !f.IsExported() {
				return nil, schemaErr("tuple slot %d of %s is unexported", i, t)
			}
			entries, err := c.compileRules(slot.rules, f.Type)
			if err != nil {
				return nil, err
			}
			chk.slots[i] = entries
		}
		return chk, nil

	case reflect.Array:
		if t.Len() != len(r.slots) {
			return nil, schemaErr("tuple with %d slots does not match %s with %d elements", len(r.slots), t, t.Len())
		}

		chk := tupleChecker{array: true, slots: make([][]ruleEntry, len(r.slots))}
		for i, slot := range r.slots {
			entries, err := c.compileRules(slot.rules, t.Elem())
			if err != nil {
				return nil, err
			}
			chk.slots[i] = entries
		}
		return chk, nil

	default:
		return nil, schemaErr("Tuple applies to structs and arrays, not %s", t)
	}
}

type tupleChecker struct {
	array bool
	slots [][]ruleEntry
}

func (t tupleChecker) check(v reflect.Value, p path, w *walker, fallback string) bool {
	for i, entries := range t.slots {
		slot := v.Field
		if t.array {
			slot = v.Index
		}
		if runRules(entries, fallback, slot(i), p.index(i), w) {
			return true
		}
	}

	return false
}

// Custom applies an opaque predicate to the field's value. The predicate
// receives the raw value and must return a boolean; it carries no
// introspectable failure reason, so attach a message with [Msg]. A predicate
// that panics is not caught: the panic propagates out of the validation
// call.
func Custom(fn func(v any) bool) Rule {
	return customRule{fn: fn}
}

type customRule struct {
	fn func(v any) bool
}

func (r customRule) compile(_ *compiler, _ reflect.Type) (checker, error) {
	if r.fn == nil {
		return nil, schemaErr("custom predicate must not be nil")
	}

	return checkFunc(func(v reflect.Value) *expectation {
		if r.fn(v.Interface()) {
			return nil
		}
		return &expectation{
			code:     "custom",
			expect:   "a value satisfying a custom check",
			observed: renderValue(v),
		}
	}), nil
}

// Nested validates the field against T's own registered declaration,
// resolved through the registry by type identity at evaluation time. The
// indirection lets mutually recursive types reference each other without
// eager construction. The field must be of type T or *T; a nil pointer
// succeeds trivially (wrap in [Optional] or add [Absent] to constrain
// presence).
func Nested[T any]() Rule {
	return nestedRule{typ: reflect.TypeFor[T]()}
}

type nestedRule struct {
	typ reflect.Type
}

func (r nestedRule) compile(_ *compiler, t reflect.Type) (checker, error) {
	switch t {
	case r.typ:
		return nestedChecker{typ: r.typ}, nil
	case reflect.PointerTo(r.typ):
		return nestedChecker{typ: r.typ, deref: true}, nil
	default:
		return nil, schemaErr("Nested[%s] does not match field type %s", r.typ, t)
	}
}

type nestedChecker struct {
	typ   reflect.Type
	deref bool
}

func (n nestedChecker) check(v reflect.Value, p path, w *walker, _ string) bool {
	if n.deref {
		if v.IsNil() {
			return false
		}
		v = v.Elem()
	}

	s, err := w.reg.schemaFor(n.typ)
	if err != nil {
		return w.fail(err)
	}

	return s.walk(v, p, w)
}
