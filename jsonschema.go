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
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const jsonSchemaDialect = "https://json-schema.org/draft/2020-12/schema"

// JSONSchema exports the registered declaration for T from the default
// registry as a draft 2020-12 JSON Schema document. Rules without a JSON
// Schema rendering ([Custom], [Is]) are omitted; everything else maps to the
// standard vocabulary: [Length] to minLength/maxLength (or
// minItems/maxItems), [Matches] to format or pattern, [Size] to
// minimum/maximum, [Step] to multipleOf, [Literal] to const, [Nested] to a
// $ref into $defs, and [Enum] declarations to oneOf.
func JSONSchema[T any]() (string, error) {
	return JSONSchemaIn[T](Default())
}

// JSONSchemaIn exports the registered declaration for T from the given
// registry as a draft 2020-12 JSON Schema document.
func JSONSchemaIn[T any](r *Registry) (string, error) {
	t := reflect.TypeFor[T]()

	// Surface declaration mistakes as compile errors before exporting.
	if _, err := r.schemaFor(t); err != nil {
		return "", err
	}

	e := &schemaExporter{
		reg:    r,
		defs:   make(map[string]any),
		active: map[reflect.Type]string{t: "#"},
	}
	root, err := e.typeDoc(t)
	if err != nil {
		return "", err
	}

	doc := map[string]any{"$schema": jsonSchemaDialect}
	for k, v := range root {
		doc[k] = v
	}
	if len(e.defs) > 0 {
		doc["$defs"] = e.defs
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}

	return string(out), nil
}

// CompiledJSONSchema exports T's declaration from the default registry and
// compiles the document, guaranteeing the export is a well-formed schema.
func CompiledJSONSchema[T any]() (*jsonschema.Schema, error) {
	return CompiledJSONSchemaIn[T](Default())
}

// CompiledJSONSchemaIn exports T's declaration from the given registry and
// compiles the document.
func CompiledJSONSchemaIn[T any](r *Registry) (*jsonschema.Schema, error) {
	raw, err := JSONSchemaIn[T](r)
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat()
	compiler.AssertContent()

	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("decode exported schema: %w", err)
	}
	if err := compiler.AddResource("schema.json", doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}

	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile exported schema: %w", err)
	}

	return schema, nil
}

// schemaExporter walks stored declarations, building JSON Schema documents.
// Referenced types are hoisted into $defs; active tracks types already being
// exported so recursive declarations terminate at a $ref.
type schemaExporter struct {
	reg    *Registry
	defs   map[string]any
	active map[reflect.Type]string
}

// fragmenter is implemented by rules with a JSON Schema rendering.
type fragmenter interface {
	fragment(e *schemaExporter, t reflect.Type) (map[string]any, error)
}

func (e *schemaExporter) typeDoc(t reflect.Type) (map[string]any, error) {
	d, ok := e.reg.declFor(t)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, t)
	}

	if d.union {
		variants := make([]any, 0, len(d.variants))
		for _, vd := range d.variants {
			doc, err := e.plansDoc(vd.typ, vd.fields)
			if err != nil {
				return nil, err
			}
			variants = append(variants, doc)
		}
		return map[string]any{"oneOf": variants}, nil
	}

	return e.plansDoc(t, d.fields)
}

// refTo returns a $ref to t's declaration, exporting it into $defs on first
// use. The active marker is set before the recursive export so mutually
// recursive declarations resolve to a reference instead of looping.
func (e *schemaExporter) refTo(t reflect.Type) (map[string]any, error) {
	if ref, ok := e.active[t]; ok {
		return map[string]any{"$ref": ref}, nil
	}

	// The referenced declaration must compile before it is exported, so a
	// broken nested schema surfaces here instead of producing a bad $defs
	// entry.
	if _, err := e.reg.schemaFor(t); err != nil {
		return nil, err
	}

	name := defName(t)
	e.active[t] = "#/$defs/" + name
	doc, err := e.typeDoc(t)
	if err != nil {
		return nil, err
	}
	e.defs[name] = doc

	return map[string]any{"$ref": e.active[t]}, nil
}

func (e *schemaExporter) plansDoc(t reflect.Type, decls []*FieldDecl) (map[string]any, error) {
	var named, positional int
	for _, d := range decls {
		switch {
		case d.self:
			return e.rulesDoc(d.rules, t)
		case d.byIndex:
			positional++
		default:
			named++
		}
	}
	if named > 0 && positional > 0 {
		return nil, fmt.Errorf("cannot export mixed named and positional declarations for %s", t)
	}

	if positional > 0 {
		return e.tupleDoc(t, decls)
	}

	return e.objectDoc(t, decls)
}

func (e *schemaExporter) objectDoc(t reflect.Type, decls []*FieldDecl) (map[string]any, error) {
	properties := make(map[string]any, len(decls))
	required := make([]string, 0, len(decls))

	for _, d := range decls {
		idx, err := fieldIndex(t, d.name)
		if err != nil {
			return nil, err
		}
		f := t.Field(idx)

		doc, err := e.rulesDoc(d.rules, f.Type)
		if err != nil {
			return nil, err
		}

		name := jsonName(f)
		properties[name] = doc
		if !nilable(f.Type) {
			required = append(required, name)
		}
	}

	doc := map[string]any{"type": "object", "properties": properties}
	if len(required) > 0 {
		doc["required"] = required
	}

	return doc, nil
}

// tupleDoc renders positional declarations as a fixed-length array schema,
// the JSON representation of a tuple payload.
func (e *schemaExporter) tupleDoc(t reflect.Type, decls []*FieldDecl) (map[string]any, error) {
	size := 0
	switch t.Kind() {
	case reflect.Struct:
		size = t.NumField()
	case reflect.Array:
		size = t.Len()
	default:
		return nil, fmt.Errorf("cannot export positional declarations for %s", t)
	}

	slots := make([]any, size)
	for i := range slots {
		slots[i] = map[string]any{}
	}
	for _, d := range decls {
		ft, err := slotType(t, d.pos)
		if err != nil {
			return nil, err
		}
		doc, err := e.rulesDoc(d.rules, ft)
		if err != nil {
			return nil, err
		}
		slots[d.pos] = doc
	}

	return map[string]any{
		"type":        "array",
		"prefixItems": slots,
		"items":       false,
		"minItems":    size,
		"maxItems":    size,
	}, nil
}

// rulesDoc merges the fragments of a rule sequence into one schema. A
// keyword set by two fragments with different values pushes the later
// fragment into an allOf branch instead of overwriting.
func (e *schemaExporter) rulesDoc(rules []Rule, t reflect.Type) (map[string]any, error) {
	doc := map[string]any{}
	if bt := baseType(t); bt != "" {
		doc["type"] = bt
	}

	var branches []any
	for _, r := range rules {
		r, _ = unwrapMsg(r)
		fr, ok := r.(fragmenter)
		if !ok {
			continue
		}

		frag, err := fr.fragment(e, t)
		if err != nil {
			return nil, err
		}
		if !mergeFragment(doc, frag) {
			branches = append(branches, frag)
		}
	}
	if len(branches) > 0 {
		doc["allOf"] = branches
	}

	return doc, nil
}

// mergeFragment merges frag into doc, reporting false when a keyword
// conflict prevents the merge. Identical values are not a conflict.
func mergeFragment(doc, frag map[string]any) bool {
	for k, v := range frag {
		if prev, ok := doc[k]; ok && !reflect.DeepEqual(prev, v) {
			return false
		}
	}
	for k, v := range frag {
		doc[k] = v
	}

	return true
}

func (l lengthRule) fragment(_ *schemaExporter, t reflect.Type) (map[string]any, error) {
	var lo, hi string
	switch t.Kind() {
	case reflect.String:
		lo, hi = "minLength", "maxLength"
	case reflect.Map:
		lo, hi = "minProperties", "maxProperties"
	default:
		lo, hi = "minItems", "maxItems"
	}

	frag := map[string]any{}
	if l.r.hasMin {
		frag[lo] = l.r.min
	}
	if l.r.hasMax {
		frag[hi] = l.r.max
	}

	return frag, nil
}

func (r stringRule) fragment(*schemaExporter, reflect.Type) (map[string]any, error) {
	var pattern string
	switch r.code {
	case "string.starts_with":
		pattern = "^" + regexp.QuoteMeta(r.arg)
	case "string.ends_with":
		pattern = regexp.QuoteMeta(r.arg) + "$"
	default:
		pattern = regexp.QuoteMeta(r.arg)
	}

	return map[string]any{"pattern": pattern}, nil
}

// jsonFormats maps the named formats to their JSON Schema format keywords.
var jsonFormats = map[Format]string{
	FormatEmail:    "email",
	FormatURL:      "uri",
	FormatUUID:     "uuid",
	FormatIPv4:     "ipv4",
	FormatIPv6:     "ipv6",
	FormatDateTime: "date-time",
}

func (r formatRule) fragment(*schemaExporter, reflect.Type) (map[string]any, error) {
	if name, ok := jsonFormats[r.f]; ok {
		return map[string]any{"format": name}, nil
	}

	return map[string]any{"pattern": string(r.f)}, nil
}

func (s sizeRule[T]) fragment(*schemaExporter, reflect.Type) (map[string]any, error) {
	frag := map[string]any{}
	if s.r.hasMin {
		frag["minimum"] = s.r.min
	}
	if s.r.hasMax {
		frag["maximum"] = s.r.max
	}

	return frag, nil
}

func (r signRule) fragment(*schemaExporter, reflect.Type) (map[string]any, error) {
	switch r.s {
	case Positive:
		return map[string]any{"exclusiveMinimum": 0}, nil
	case Negative:
		return map[string]any{"exclusiveMaximum": 0}, nil
	case NonPositive:
		return map[string]any{"maximum": 0}, nil
	case NonNegative:
		return map[string]any{"minimum": 0}, nil
	default:
		return nil, schemaErr("unknown sign class %d", int(r.s))
	}
}

func (r stepRule) fragment(*schemaExporter, reflect.Type) (map[string]any, error) {
	step := r.n
	if step < 0 {
		step = -step
	}

	return map[string]any{"multipleOf": step}, nil
}

func (r literalRule) fragment(*schemaExporter, reflect.Type) (map[string]any, error) {
	return map[string]any{"const": r.want}, nil
}

func (absentRule) fragment(*schemaExporter, reflect.Type) (map[string]any, error) {
	return map[string]any{"type": "null"}, nil
}

func (r optionalRule) fragment(e *schemaExporter, t reflect.Type) (map[string]any, error) {
	if t.Kind() != reflect.Pointer {
		return nil, schemaErr("Optional applies to pointer fields, not %s", t)
	}

	return e.rulesDoc(r.rules, t.Elem())
}

func (r eachRule) fragment(e *schemaExporter, t reflect.Type) (map[string]any, error) {
	if t.Kind() != reflect.Slice && t.Kind() != reflect.Array {
		return nil, schemaErr("Each applies to slices and arrays, not %s", t)
	}

	items, err := e.rulesDoc(r.rules, t.Elem())
	if err != nil {
		return nil, err
	}

	return map[string]any{"items": items}, nil
}

func (r tupleRule) fragment(e *schemaExporter, t reflect.Type) (map[string]any, error) {
	slots := make([]any, len(r.slots))
	for i, slot := range r.slots {
		ft, err := slotType(t, i)
		if err != nil {
			return nil, err
		}
		doc, err := e.rulesDoc(slot.rules, ft)
		if err != nil {
			return nil, err
		}
		slots[i] = doc
	}

	return map[string]any{
		"type":        "array",
		"prefixItems": slots,
		"items":       false,
		"minItems":    len(slots),
		"maxItems":    len(slots),
	}, nil
}

func (r nestedRule) fragment(e *schemaExporter, _ reflect.Type) (map[string]any, error) {
	return e.refTo(r.typ)
}

// baseType maps a Go kind to its JSON Schema type keyword. Pointers and
// structs carry no keyword of their own: a pointer's constraints come from
// [Optional] or [Absent], a struct's from [Nested] or [Tuple].
func baseType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map:
		return "object"
	default:
		return ""
	}
}

func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return true
	default:
		return false
	}
}

// jsonName returns the field's wire name: the json tag when present,
// otherwise the Go name.
func jsonName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" || tag == "-" {
		return f.Name
	}
	if i := strings.IndexByte(tag, ','); i >= 0 {
		tag = tag[:i]
	}
	if tag == "" {
		return f.Name
	}

	return tag
}

// defName returns the $defs key for a type.
func defName(t reflect.Type) string {
	if t.Name() != "" {
		return t.Name()
	}

	return strings.NewReplacer("/", "_", ".", "_").Replace(t.String())
}
