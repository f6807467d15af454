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
	"cmp"
	"fmt"
	"reflect"
)

// Rule is one typed constraint attached to a field, tuple slot, or element.
// Rules are built with the package constructors ([Length], [Size], [Matches],
// [Optional], [Each], [Tuple], [Literal], [Custom], [Nested], ...) and
// compiled once per type when the type's declaration is first used.
//
// A rule must be structurally compatible with the declared Go type it is
// attached to; incompatibilities are schema-construction errors reported at
// compile time, never at evaluation time.
type Rule interface {
	// compile binds the rule to the concrete field type, verifying
	// structural compatibility and resolving any compile-time resources
	// (regular expressions, format capabilities, literal conversions).
	compile(c *compiler, t reflect.Type) (checker, error)
}

// checker is a compiled rule bound to a concrete field type.
type checker interface {
	// check evaluates v at path p, reporting violations through w.
	// fallback is the message inherited from the rule or field declaration,
	// or empty when the generated default applies. It reports true when the
	// surrounding walk must stop (fail-fast mode hit a violation).
	check(v reflect.Value, p path, w *walker, fallback string) bool
}

// expectation describes a single failed leaf check: a stable code, the
// violated expectation, and a rendering of the observed value.
type expectation struct {
	code     string
	expect   string
	observed string
}

// violation resolves the display message and builds the reported [Violation].
func (e *expectation) violation(p path, fallback string) Violation {
	msg := fallback
	if msg == "" {
		msg = fmt.Sprintf("expected `%s` to be %s, got %s", p.render(), e.expect, e.observed)
	}

	return Violation{
		Path:     string(p),
		Code:     e.code,
		Expect:   e.expect,
		Observed: e.observed,
		Message:  msg,
	}
}

// checkFunc adapts a leaf evaluation function to the checker interface.
type checkFunc func(v reflect.Value) *expectation

func (f checkFunc) check(v reflect.Value, p path, w *walker, fallback string) bool {
	e := f(v)
	if e == nil {
		return false
	}

	return w.report(e.violation(p, fallback))
}

// msgRule wraps a rule with an overriding error message.
type msgRule struct {
	rule    Rule
	message string
}

func (m msgRule) compile(c *compiler, t reflect.Type) (checker, error) {
	return m.rule.compile(c, t)
}

// Msg attaches an overriding error message to a rule. The message takes
// precedence over the field's default message and the generated default.
// For composite rules ([Optional], [Each], [Tuple]) the message also serves
// as the fallback for inner rules that carry no message of their own; it
// does not override messages produced by a [Nested] type's own rules.
func Msg(r Rule, message string) Rule {
	return msgRule{rule: r, message: message}
}

// Range is an inclusive range with optionally open ends, mirroring the
// start..=end, start.. and ..=end shapes accepted by schema declarations.
// The zero Range contains every value.
type Range[T cmp.Ordered] struct {
	min, max       T
	hasMin, hasMax bool
	exact          bool
}

// Between returns a range with inclusive bounds on both ends (lo..=hi).
func Between[T cmp.Ordered](lo, hi T) Range[T] {
	return Range[T]{min: lo, max: hi, hasMin: true, hasMax: true}
}

// AtLeast returns a range with an inclusive lower bound only (lo..).
func AtLeast[T cmp.Ordered](lo T) Range[T] {
	return Range[T]{min: lo, hasMin: true}
}

// AtMost returns a range with an inclusive upper bound only (..=hi).
func AtMost[T cmp.Ordered](hi T) Range[T] {
	return Range[T]{max: hi, hasMax: true}
}

// Exactly returns a degenerate range matching a single value.
func Exactly[T cmp.Ordered](v T) Range[T] {
	return Range[T]{min: v, max: v, hasMin: true, hasMax: true, exact: true}
}

// Contains reports whether v falls within the range.
func (r Range[T]) Contains(v T) bool {
	if r.hasMin && v < r.min {
		return false
	}
	if r.hasMax && v > r.max {
		return false
	}

	return true
}

// empty reports whether no value can satisfy the range.
func (r Range[T]) empty() bool {
	return r.hasMin && r.hasMax && r.min > r.max
}

// String renders the range in declaration notation: "3..=50", "3..", "..=50",
// or the bare value for an exact range.
func (r Range[T]) String() string {
	switch {
	case r.exact:
		return fmt.Sprintf("%v", r.min)
	case r.hasMin && r.hasMax:
		return fmt.Sprintf("%v..=%v", r.min, r.max)
	case r.hasMin:
		return fmt.Sprintf("%v..", r.min)
	case r.hasMax:
		return fmt.Sprintf("..=%v", r.max)
	default:
		return ".."
	}
}

// desc renders the range for generated messages: "in 3..=50" or "exactly 5".
func (r Range[T]) desc() string {
	if r.exact {
		return "exactly " + r.String()
	}

	return "in " + r.String()
}

// SignClass is the sign constraint for numeric rules.
type SignClass int

const (
	// Positive requires the value to be strictly greater than zero.
	Positive SignClass = iota + 1
	// Negative requires the value to be strictly less than zero.
	Negative
	// NonPositive requires the value to be less than or equal to zero.
	NonPositive
	// NonNegative requires the value to be greater than or equal to zero.
	NonNegative
)

// String returns the declaration name of the sign class.
func (s SignClass) String() string {
	switch s {
	case Positive:
		return "Positive"
	case Negative:
		return "Negative"
	case NonPositive:
		return "NonPositive"
	case NonNegative:
		return "NonNegative"
	default:
		return fmt.Sprintf("SignClass(%d)", int(s))
	}
}

// FloatClass is the floating-point classification constraint.
type FloatClass int

const (
	// Finite requires the value to be neither infinite nor NaN.
	Finite FloatClass = iota + 1
	// Infinite requires the value to be positive or negative infinity.
	Infinite
	// NaN requires the value to be NaN.
	NaN
	// Normal requires a finite, non-zero value with full precision.
	Normal
	// Subnormal requires a finite, non-zero value below the normal range.
	Subnormal
)

// String returns the declaration name of the float class.
func (c FloatClass) String() string {
	switch c {
	case Finite:
		return "Finite"
	case Infinite:
		return "Infinite"
	case NaN:
		return "NaN"
	case Normal:
		return "Normal"
	case Subnormal:
		return "Subnormal"
	default:
		return fmt.Sprintf("FloatClass(%d)", int(c))
	}
}

// renderValue builds the observed-value summary used in generated messages.
func renderValue(v reflect.Value) string {
	if !v.IsValid() {
		return "nil"
	}
	if v.Kind() == reflect.String {
		return fmt.Sprintf("%q", v.String())
	}

	return fmt.Sprintf("%v", v.Interface())
}
