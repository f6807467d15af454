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
	"strconv"
)

// TypeDecl is the declaration of a type's validation rules, built with
// [Object] or [Enum] and registered with [Register]. Declarations are inert
// until first use: they compile into an immutable rule tree when the type is
// first validated (or eagerly via [Precompile]), and structural mistakes
// (unknown fields, rules incompatible with a field's type, empty ranges,
// zero steps, unsupported formats) surface at that compilation, never while
// a value is being walked.
type TypeDecl struct {
	fields   []*FieldDecl
	variants []*VariantDecl
	union    bool
}

// Object declares the rules for a record (struct) type, one [FieldDecl] per
// validated field. Fields without a declaration are not validated.
// Declaration order is evaluation order, which determines the reported
// violation under fail-fast validation.
func Object(fields ...*FieldDecl) *TypeDecl {
	return &TypeDecl{fields: fields}
}

// Enum declares the rules for a tagged union: an interface type whose
// variants are concrete implementations declared with [Case]. Only the
// active variant's rules are evaluated for a given value.
func Enum(variants ...*VariantDecl) *TypeDecl {
	return &TypeDecl{variants: variants, union: true}
}

// VariantDecl declares the payload rules for one union variant. Build with
// [Case].
type VariantDecl struct {
	typ    reflect.Type
	fields []*FieldDecl
}

// Case declares a union variant of concrete type V. A variant declared with
// no fields (no payload, or an unconstrained payload) trivially succeeds.
// Payload fields are declared record-style with [Field], tuple-style with
// [Index], or, for variants that are themselves scalar types, with
// [Value].
func Case[V any](fields ...*FieldDecl) *VariantDecl {
	t := reflect.TypeFor[V]()
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return &VariantDecl{typ: t, fields: fields}
}

// FieldDecl is an ordered rule sequence attached to one field or slot,
// optionally with a default message covering every rule in the sequence
// that has no message of its own.
type FieldDecl struct {
	name    string
	pos     int
	self    bool
	byIndex bool
	rules   []Rule
	message string
}

// Field declares rules for the named struct field. Rules execute in the
// given order.
func Field(name string, rules ...Rule) *FieldDecl {
	return &FieldDecl{name: name, rules: rules}
}

// Index declares rules for a positional slot: the i-th field of a struct or
// the i-th element of an array. The slot's path segment renders as a
// bracketed index.
func Index(i int, rules ...Rule) *FieldDecl {
	return &FieldDecl{pos: i, byIndex: true, rules: rules}
}

// Value declares rules for the value itself rather than one of its fields.
// It is used inside [Case] for scalar variants and must be the only
// declaration when present.
func Value(rules ...Rule) *FieldDecl {
	return &FieldDecl{self: true, rules: rules}
}

// Message sets the default message for every rule in the field's sequence
// that carries no [Msg] override of its own.
func (d *FieldDecl) Message(m string) *FieldDecl {
	d.message = m
	return d
}

// schema is the compiled, immutable rule tree for one type.
type schema struct {
	typ reflect.Type

	// Record form: field plans in declaration order.
	fields []*fieldPlan

	// Union form: payload plans keyed by variant type.
	variants map[reflect.Type]*variantPlan
}

// variantPlan is the compiled payload plan for one union variant.
type variantPlan struct {
	typ    reflect.Type
	fields []*fieldPlan
}

// fieldPlan is the compiled rule sequence for one field or slot.
type fieldPlan struct {
	name    string // named field, or "" for positional/self plans
	idx     int    // struct field or array index; -1 for self plans
	byIndex bool
	message string
	entries []ruleEntry
}

// ruleEntry is one compiled rule with its optional message override.
type ruleEntry struct {
	chk     checker
	message string
}

// compiler binds declarations to concrete types, producing compiled
// schemas. All structural validation of a declaration happens here.
type compiler struct {
	matcher FormatMatcher
}

func (c *compiler) compile(t reflect.Type, d *TypeDecl) (*schema, error) {
	if d == nil {
		return nil, schemaErr("nil declaration for %s", t)
	}

	if d.union {
		return c.compileUnion(t, d)
	}

	if t.Kind() != reflect.Struct {
		return nil, schemaErr("Object declaration requires a struct type, %s is %s", t, t.Kind())
	}

	fields, err := c.compilePlans(t, d.fields)
	if err != nil {
		return nil, err
	}

	return &schema{typ: t, fields: fields}, nil
}

func (c *compiler) compileUnion(t reflect.Type, d *TypeDecl) (*schema, error) {
	if t.Kind() != reflect.Interface {
		return nil, schemaErr("Enum declaration requires an interface type, %s is %s", t, t.Kind())
	}

	s := &schema{typ: t, variants: make(map[reflect.Type]*variantPlan, len(d.variants))}
	for _, vd := range d.variants {
		if !vd.typ.Implements(t) && !reflect.PointerTo(vd.typ).Implements(t) {
			return nil, schemaErr("variant %s does not implement %s", vd.typ, t)
		}
		if _, dup := s.variants[vd.typ]; dup {
			return nil, schemaErr("variant %s declared twice for %s", vd.typ, t)
		}

		fields, err := c.compilePlans(vd.typ, vd.fields)
		if err != nil {
			return nil, err
		}
		s.variants[vd.typ] = &variantPlan{typ: vd.typ, fields: fields}
	}

	return s, nil
}

func (c *compiler) compilePlans(t reflect.Type, decls []*FieldDecl) ([]*fieldPlan, error) {
	plans := make([]*fieldPlan, 0, len(decls))
	seen := make(map[string]bool, len(decls))

	for _, d := range decls {
		switch {
		case d.self:
			if len(decls) != 1 {
				return nil, schemaErr("Value must be the only declaration for %s", t)
			}
			entries, err := c.compileRules(d.rules, t)
			if err != nil {
				return nil, err
			}
			plans = append(plans, &fieldPlan{idx: -1, message: d.message, entries: entries})

		case d.byIndex:
			ft, err := slotType(t, d.pos)
			if err != nil {
				return nil, err
			}
			key := "#" + strconv.Itoa(d.pos)
			if seen[key] {
				return nil, schemaErr("slot %d declared twice for %s", d.pos, t)
			}
			seen[key] = true

			entries, err := c.compileRules(d.rules, ft)
			if err != nil {
				return nil, err
			}
			plans = append(plans, &fieldPlan{idx: d.pos, byIndex: true, message: d.message, entries: entries})

		default:
			if t.Kind() != reflect.Struct {
				return nil, schemaErr("named field %q on non-struct type %s", d.name, t)
			}
			idx, err := fieldIndex(t, d.name)
			if err != nil {
				return nil, err
			}
			if seen[d.name] {
				return nil, schemaErr("field %q declared twice for %s", d.name, t)
			}
			seen[d.name] = true

			entries, err := c.compileRules(d.rules, t.Field(idx).Type)
			if err != nil {
				return nil, err
			}
			plans = append(plans, &fieldPlan{name: d.name, idx: idx, message: d.message, entries: entries})
		}
	}

	return plans, nil
}

// compileRules compiles an ordered rule sequence against the target type.
// For collection targets the length check is ordered ahead of element
// checks: a too-short or too-long collection reports before any element
// does.
func (c *compiler) compileRules(rules []Rule, t reflect.Type) ([]ruleEntry, error) {
	lengths := make([]ruleEntry, 0, 1)
	rest := make([]ruleEntry, 0, len(rules))

	for _, r := range rules {
		r, msg := unwrapMsg(r)
		chk, err := r.compile(c, t)
		if err != nil {
			return nil, err
		}

		entry := ruleEntry{chk: chk, message: msg}
		if _, isLen := r.(lengthRule); isLen && (t.Kind() == reflect.Slice || t.Kind() == reflect.Array) {
			lengths = append(lengths, entry)
		} else {
			rest = append(rest, entry)
		}
	}

	return append(lengths, rest...), nil
}

// unwrapMsg peels [Msg] wrappers, keeping the outermost message.
func unwrapMsg(r Rule) (Rule, string) {
	msg := ""
	for {
		m, ok := r.(msgRule)
		if !ok {
			return r, msg
		}
		if msg == "" {
			msg = m.message
		}
		r = m.rule
	}
}

// fieldIndex finds a direct, exported struct field by name.
func fieldIndex(t reflect.Type, name string) (int, error) {
	for i := range t.NumField() {
		f := t.Field(i)
		if f.Name != name {
			continue
		}
		if !f.IsExported() {
			return 0, schemaErr("field %q of %s is unexported", name, t)
		}
		return i, nil
	}

	return 0, schemaErr("type %s has no field %q", t, name)
}

// slotType resolves the type of positional slot i on a struct or array.
func slotType(t reflect.Type, i int) (reflect.Type, error) {
	switch t.Kind() {
	case reflect.Struct:
		if i < 0 || i >= t.NumField() {
			return nil, schemaErr("slot %d out of range for %s with %d fields", i, t, t.NumField())
		}
		f := t.Field(i)
		if !f.IsExported() {
			return nil, schemaErr("slot %d of %s is unexported", i, t)
		}
		return f.Type, nil

	case reflect.Array:
		if i < 0 || i >= t.Len() {
			return nil, schemaErr("slot %d out of range for %s with %d elements", i, t, t.Len())
		}
		return t.Elem(), nil

	default:
		return nil, schemaErr("positional slot %d on %s, which is neither struct nor array", i, t)
	}
}
