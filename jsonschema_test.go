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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type exportUser struct {
	Email string `json:"email"`
	Age   int    `json:"age"`
	Nick  *string
	Tags  []string `json:"tags"`
}

func exportRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	RegisterIn[exportUser](r, Object(
		Field("Email", Length(Between(3, 50)), Matches(FormatEmail)),
		Field("Age", Size(Between(18, 130)), Step(1)),
		Field("Nick", Optional(Length(AtMost(10)))),
		Field("Tags", Length(AtMost(3)), Each(Length(AtLeast(1)))),
	))

	return r
}

func decodeSchema(t *testing.T, raw string) map[string]any {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	return doc
}

func TestJSONSchema_Object(t *testing.T) {
	t.Parallel()
	r := exportRegistry(t)

	raw, err := JSONSchemaIn[exportUser](r)
	require.NoError(t, err)
	doc := decodeSchema(t, raw)

	assert.Equal(t, "https://json-schema.org/draft/2020-12/schema", doc["$schema"])
	assert.Equal(t, "object", doc["type"])

	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)

	email := props["email"].(map[string]any)
	assert.Equal(t, "string", email["type"])
	assert.EqualValues(t, 3, email["minLength"])
	assert.EqualValues(t, 50, email["maxLength"])
	assert.Equal(t, "email", email["format"])

	age := props["age"].(map[string]any)
	assert.Equal(t, "integer", age["type"])
	assert.EqualValues(t, 18, age["minimum"])
	assert.EqualValues(t, 130, age["maximum"])
	assert.EqualValues(t, 1, age["multipleOf"])

	nick := props["Nick"].(map[string]any)
	assert.Equal(t, "string", nick["type"])
	assert.EqualValues(t, 10, nick["maxLength"])

	tags := props["tags"].(map[string]any)
	assert.Equal(t, "array", tags["type"])
	assert.EqualValues(t, 3, tags["maxItems"])
	items := tags["items"].(map[string]any)
	assert.EqualValues(t, 1, items["minLength"])

	// Nilable fields are not required.
	required, ok := doc["required"].([]any)
	require.True(t, ok)
	assert.ElementsMatch(t, []any{"email", "age"}, required)
}

func TestJSONSchema_NestedRef(t *testing.T) {
	t.Parallel()
	type exportAddress struct {
		Zip string `json:"zip"`
	}
	type exportCustomer struct {
		Address exportAddress `json:"address"`
	}

	r := NewRegistry()
	RegisterIn[exportAddress](r, Object(Field("Zip", Pattern(`^\d{5}$`))))
	RegisterIn[exportCustomer](r, Object(Field("Address", Nested[exportAddress]())))

	raw, err := JSONSchemaIn[exportCustomer](r)
	require.NoError(t, err)
	doc := decodeSchema(t, raw)

	props := doc["properties"].(map[string]any)
	addr := props["address"].(map[string]any)
	assert.Equal(t, "#/$defs/exportAddress", addr["$ref"])

	defs := doc["$defs"].(map[string]any)
	nested := defs["exportAddress"].(map[string]any)
	zip := nested["properties"].(map[string]any)["zip"].(map[string]any)
	assert.Equal(t, `^\d{5}$`, zip["pattern"])
}

func TestJSONSchema_RecursiveTypeRefsRoot(t *testing.T) {
	t.Parallel()
	type exportNode struct {
		Children []*exportNode `json:"children"`
	}

	r := NewRegistry()
	RegisterIn[exportNode](r, Object(
		Field("Children", Each(Nested[exportNode]())),
	))

	raw, err := JSONSchemaIn[exportNode](r)
	require.NoError(t, err)
	doc := decodeSchema(t, raw)

	children := doc["properties"].(map[string]any)["children"].(map[string]any)
	items := children["items"].(map[string]any)
	assert.Equal(t, "#", items["$ref"])
}

func TestJSONSchema_Enum(t *testing.T) {
	t.Parallel()
	r := newShapeRegistry(t)

	raw, err := JSONSchemaIn[testShape](r)
	require.NoError(t, err)
	doc := decodeSchema(t, raw)

	variants, ok := doc["oneOf"].([]any)
	require.True(t, ok)
	assert.Len(t, variants, 3)
}

func TestJSONSchema_Tuple(t *testing.T) {
	t.Parallel()
	type exportPair struct {
		Pair [2]int `json:"pair"`
	}

	r := NewRegistry()
	RegisterIn[exportPair](r, Object(
		Field("Pair", Tuple(Slot(Sign(NonNegative)), Slot(Sign(Positive)))),
	))

	raw, err := JSONSchemaIn[exportPair](r)
	require.NoError(t, err)
	doc := decodeSchema(t, raw)

	pair := doc["properties"].(map[string]any)["pair"].(map[string]any)
	assert.Equal(t, "array", pair["type"])
	assert.Equal(t, false, pair["items"])

	slots := pair["prefixItems"].([]any)
	require.Len(t, slots, 2)
	assert.EqualValues(t, 0, slots[0].(map[string]any)["minimum"])
	assert.EqualValues(t, 0, slots[1].(map[string]any)["exclusiveMinimum"])
}

func TestJSONSchema_LiteralAndSign(t *testing.T) {
	t.Parallel()
	type exportConsent struct {
		Accepted bool `json:"accepted"`
		Score    int  `json:"score"`
	}

	r := NewRegistry()
	RegisterIn[exportConsent](r, Object(
		Field("Accepted", Literal(true)),
		Field("Score", Sign(NonPositive)),
	))

	raw, err := JSONSchemaIn[exportConsent](r)
	require.NoError(t, err)
	doc := decodeSchema(t, raw)

	props := doc["properties"].(map[string]any)
	assert.Equal(t, true, props["accepted"].(map[string]any)["const"])
	assert.EqualValues(t, 0, props["score"].(map[string]any)["maximum"])
}

func TestJSONSchema_ConflictingKeywordsUseAllOf(t *testing.T) {
	t.Parallel()
	type exportCode struct {
		Code string `json:"code"`
	}

	r := NewRegistry()
	RegisterIn[exportCode](r, Object(
		Field("Code", StartsWith("ab"), EndsWith("yz")),
	))

	raw, err := JSONSchemaIn[exportCode](r)
	require.NoError(t, err)
	doc := decodeSchema(t, raw)

	code := doc["properties"].(map[string]any)["code"].(map[string]any)
	assert.Equal(t, "^ab", code["pattern"])

	branches := code["allOf"].([]any)
	require.Len(t, branches, 1)
	assert.Equal(t, "yz$", branches[0].(map[string]any)["pattern"])
}

func TestJSONSchema_Errors(t *testing.T) {
	t.Parallel()
	type exportMissing struct {
		X int
	}

	r := NewRegistry()
	_, err := JSONSchemaIn[exportMissing](r)
	require.ErrorIs(t, err, ErrNotRegistered)

	RegisterIn[exportMissing](r, Object(Field("X", Step(0))))
	_, err = JSONSchemaIn[exportMissing](r)
	require.ErrorIs(t, err, ErrSchema)
}

func TestJSONSchema_BrokenNestedDeclaration(t *testing.T) {
	t.Parallel()
	type exportInner struct {
		N int
	}
	type exportOuter struct {
		Inner exportInner `json:"inner"`
	}

	r := NewRegistry()
	RegisterIn[exportInner](r, Object(Field("N", Step(0))))
	RegisterIn[exportOuter](r, Object(Field("Inner", Nested[exportInner]())))

	// The outer declaration compiles (nested resolution is lazy), but the
	// export must refuse to emit a $defs entry for a broken declaration.
	require.NoError(t, PrecompileIn[exportOuter](r))

	_, err := JSONSchemaIn[exportOuter](r)
	require.ErrorIs(t, err, ErrSchema)
}

func TestCompiledJSONSchema_ValidatesExport(t *testing.T) {
	t.Parallel()
	r := exportRegistry(t)

	schema, err := CompiledJSONSchemaIn[exportUser](r)
	require.NoError(t, err)
	require.NotNil(t, schema)

	instance := map[string]any{
		"email": "jo@example.com",
		"age":   float64(30),
		"tags":  []any{"a"},
	}
	assert.NoError(t, schema.Validate(instance))

	bad := map[string]any{
		"email": "no",
		"age":   float64(30),
	}
	assert.Error(t, schema.Validate(bad))
}
