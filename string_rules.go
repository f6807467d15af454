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
	"strings"
)

// Length constrains the length of a string or the number of elements in a
// slice, array, or map. For strings the length is measured in bytes. The
// bounds are inclusive; use [AtLeast] or [AtMost] for a half-open range.
//
// On a collection the violation is reported at the field's own path, not at
// an element index.
func Length(r Range[int]) Rule {
	return lengthRule{r: r}
}

type lengthRule struct {
	r Range[int]
}

func (l lengthRule) compile(c *compiler, t reflect.Type) (checker, error) {
	if l.r.empty() {
		return nil, schemaErr("length range %s is empty", l.r)
	}

	switch t.Kind() {
	case reflect.String:
		expect := "a string with length " + l.r.desc()
		return checkFunc(func(v reflect.Value) *expectation {
			if l.r.Contains(v.Len()) {
				return nil
			}
			return &expectation{
				code:     "string.length",
				expect:   expect,
				observed: fmt.Sprintf("length %d", v.Len()),
			}
		}), nil
	case reflect.Slice, reflect.Array, reflect.Map:
		expect := "a collection with length " + l.r.desc()
		return checkFunc(func(v reflect.Value) *expectation {
			if l.r.Contains(v.Len()) {
				return nil
			}
			return &expectation{
				code:     "iterable.length",
				expect:   expect,
				observed: fmt.Sprintf("length %d", v.Len()),
			}
		}), nil
	default:
		return nil, schemaErr("Length applies to strings and collections, not %s", t)
	}
}

// StartsWith requires the string to begin with the given prefix.
func StartsWith(prefix string) Rule {
	return stringRule{
		code:   "string.starts_with",
		expect: fmt.Sprintf("a string starting with %q", prefix),
		arg:    prefix,
		ok:     strings.HasPrefix,
	}
}

// EndsWith requires the string to end with the given suffix.
func EndsWith(suffix string) Rule {
	return stringRule{
		code:   "string.ends_with",
		expect: fmt.Sprintf("a string ending with %q", suffix),
		arg:    suffix,
		ok:     strings.HasSuffix,
	}
}

// Includes requires the string to contain the given substring.
func Includes(substring string) Rule {
	return stringRule{
		code:   "string.includes",
		expect: fmt.Sprintf("a string including %q", substring),
		arg:    substring,
		ok:     strings.Contains,
	}
}

// stringRule is a predicate over a string field with a fixed expectation.
type stringRule struct {
	code   string
	expect string
	arg    string
	ok     func(s, arg string) bool
}

func (r stringRule) compile(_ *compiler, t reflect.Type) (checker, error) {
	if t.Kind() != reflect.String {
		return nil, schemaErr("%s applies to strings, not %s", r.code, t)
	}

	return checkFunc(func(v reflect.Value) *expectation {
		if r.ok(v.String(), r.arg) {
			return nil
		}
		return &expectation{
			code:     r.code,
			expect:   r.expect,
			observed: fmt.Sprintf("%q", v.String()),
		}
	}), nil
}

// Matches requires the string to satisfy a named format ([FormatEmail],
// [FormatURL], ...) or, for any other value, to match it as a regular
// expression pattern. The check is delegated to the registry's
// [FormatMatcher]; a matcher that does not support the format makes the
// declaration a schema-construction error, surfaced when the type compiles.
func Matches(f Format) Rule {
	return formatRule{f: f}
}

// Pattern requires the string to match the given regular expression.
// It is shorthand for [Matches] with the pattern as the format.
func Pattern(expr string) Rule {
	return formatRule{f: Format(expr)}
}

type formatRule struct {
	f Format
}

func (r formatRule) compile(c *compiler, t reflect.Type) (checker, error) {
	if t.Kind() != reflect.String {
		return nil, schemaErr("string.format applies to strings, not %s", t)
	}
	if !c.matcher.Supports(r.f) {
		if r.f.known() {
			return nil, schemaErr("format %s is not supported by the configured matcher", r.f)
		}
		return nil, schemaErr("invalid pattern %q", string(r.f))
	}

	code, expect := "string.format", fmt.Sprintf("a string with format %s", r.f)
	if !r.f.known() {
		code, expect = "string.pattern", fmt.Sprintf("a string matching pattern `%s`", string(r.f))
	}

	matcher := c.matcher
	return checkFunc(func(v reflect.Value) *expectation {
		if matcher.Matches(r.f, v.String()) {
			return nil
		}
		return &expectation{
			code:     code,
			expect:   expect,
			observed: fmt.Sprintf("%q", v.String()),
		}
	}), nil
}
