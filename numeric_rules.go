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
	"math"
	"reflect"
)

// Number is the constraint for numeric range bounds.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Smallest positive normal values per float width.
const (
	minNormal32 = 0x1p-126
	minNormal64 = 0x1p-1022
)

// Size constrains a numeric field to an inclusive range. Integer bounds
// apply to integer fields and float bounds to float fields; mixing the two
// is a schema-construction error.
func Size[T Number](r Range[T]) Rule {
	return sizeRule[T]{r: r}
}

type sizeRule[T Number] struct {
	r Range[T]
}

func (s sizeRule[T]) compile(_ *compiler, t reflect.Type) (checker, error) {
	if s.r.empty() {
		return nil, schemaErr("size range %s is empty", s.r)
	}

	boundsAreFloat := isFloatKind(reflect.TypeFor[T]().Kind())

	switch t.Kind() {
	case reflect.Float32, reflect.Float64:
		if !boundsAreFloat {
			return nil, schemaErr("integer bounds %s on float field %s", s.r, t)
		}

		min, max := float64(s.r.min), float64(s.r.max)
		expect := "a float " + s.r.desc()
		return checkFunc(func(v reflect.Value) *expectation {
			f := v.Float()
			if (!s.r.hasMin || f >= min) && (!s.r.hasMax || f <= max) {
				return nil
			}
			return &expectation{code: "float.size", expect: expect, observed: renderValue(v)}
		}), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if boundsAreFloat {
			return nil, schemaErr("float bounds %s on integer field %s", s.r, t)
		}

		// Unsigned bounds above MaxInt64 must not wrap through int64: a
		// huge upper bound contains every int64, a huge lower bound none.
		var min, max int64
		minHuge, maxHuge := false, false
		if isUintKind(reflect.TypeFor[T]().Kind()) {
			umin, umax := uint64(s.r.min), uint64(s.r.max)
			minHuge, maxHuge = umin > math.MaxInt64, umax > math.MaxInt64
			if !minHuge {
				min = int64(umin)
			}
			if !maxHuge {
				max = int64(umax)
			}
		} else {
			min, max = int64(s.r.min), int64(s.r.max)
		}

		expect := "an integer " + s.r.desc()
		return checkFunc(func(v reflect.Value) *expectation {
			n := v.Int()
			ok := true
			if s.r.hasMin && (minHuge || n < min) {
				ok = false
			}
			if s.r.hasMax && !maxHuge && n > max {
				ok = false
			}
			if ok {
				return nil
			}
			return &expectation{code: "int.size", expect: expect, observed: renderValue(v)}
		}), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if boundsAreFloat {
			return nil, schemaErr("float bounds %s on integer field %s", s.r, t)
		}

		// Signed bounds may be negative; unsigned bounds must be compared
		// through uint64 so values above MaxInt64 keep their magnitude.
		var umin, umax uint64
		minNeg, maxNeg := false, false
		if isUintKind(reflect.TypeFor[T]().Kind()) {
			umin, umax = uint64(s.r.min), uint64(s.r.max)
		} else {
			smin, smax := int64(s.r.min), int64(s.r.max)
			minNeg, maxNeg = smin < 0, smax < 0
			if !minNeg {
				umin = uint64(smin)
			}
			if !maxNeg {
				umax = uint64(smax)
			}
		}

		expect := "an integer " + s.r.desc()
		return checkFunc(func(v reflect.Value) *expectation {
			u := v.Uint()
			ok := true
			if s.r.hasMin && !minNeg && u < umin {
				ok = false
			}
			if s.r.hasMax && (maxNeg || u > umax) {
				ok = false
			}
			if ok {
				return nil
			}
			return &expectation{code: "int.size", expect: expect, observed: renderValue(v)}
		}), nil

	default:
		return nil, schemaErr("Size applies to numeric fields, not %s", t)
	}
}

// Sign constrains the sign of a numeric field. The comparison is a direct
// numeric predicate against zero; NaN fails every sign class.
func Sign(s SignClass) Rule {
	return signRule{s: s}
}

type signRule struct {
	s SignClass
}

func (r signRule) compile(_ *compiler, t reflect.Type) (checker, error) {
	holds, err := signPredicate(r.s)
	if err != nil {
		return nil, err
	}

	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		expect := fmt.Sprintf("an integer with sign %s", r.s)
		return checkFunc(func(v reflect.Value) *expectation {
			if holds(float64(v.Int())) {
				return nil
			}
			return &expectation{code: "int.sign", expect: expect, observed: renderValue(v)}
		}), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		expect := fmt.Sprintf("an integer with sign %s", r.s)
		return checkFunc(func(v reflect.Value) *expectation {
			var ok bool
			switch r.s {
			case Positive:
				ok = v.Uint() > 0
			case Negative:
				ok = false
			case NonPositive:
				ok = v.Uint() == 0
			case NonNegative:
				ok = true
			}
			if ok {
				return nil
			}
			return &expectation{code: "int.sign", expect: expect, observed: renderValue(v)}
		}), nil

	case reflect.Float32, reflect.Float64:
		expect := fmt.Sprintf("a float with sign %s", r.s)
		return checkFunc(func(v reflect.Value) *expectation {
			if holds(v.Float()) {
				return nil
			}
			return &expectation{code: "float.sign", expect: expect, observed: renderValue(v)}
		}), nil

	default:
		return nil, schemaErr("Sign applies to numeric fields, not %s", t)
	}
}

// signPredicate returns the numeric predicate for a sign class.
// NaN compares false against zero under every operator, so NaN fails here
// regardless of class.
func signPredicate(s SignClass) (func(float64) bool, error) {
	switch s {
	case Positive:
		return func(f float64) bool { return f > 0 }, nil
	case Negative:
		return func(f float64) bool { return f < 0 }, nil
	case NonPositive:
		return func(f float64) bool { return f <= 0 }, nil
	case NonNegative:
		return func(f float64) bool { return f >= 0 }, nil
	default:
		return nil, schemaErr("unknown sign class %d", int(s))
	}
}

// Step requires an integer field to be an exact multiple of n.
// A zero step is a schema-construction error.
func Step(n int64) Rule {
	return stepRule{n: n}
}

type stepRule struct {
	n int64
}

func (r stepRule) compile(_ *compiler, t reflect.Type) (checker, error) {
	if r.n == 0 {
		return nil, schemaErr("step must be non-zero")
	}

	expect := fmt.Sprintf("an integer with step %d", r.n)

	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return checkFunc(func(v reflect.Value) *expectation {
			if v.Int()%r.n == 0 {
				return nil
			}
			return &expectation{code: "int.step", expect: expect, observed: renderValue(v)}
		}), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		step := r.n
		if step < 0 {
			step = -step
		}
		return checkFunc(func(v reflect.Value) *expectation {
			if v.Uint()%uint64(step) == 0 {
				return nil
			}
			return &expectation{code: "int.step", expect: expect, observed: renderValue(v)}
		}), nil

	default:
		return nil, schemaErr("Step applies to integer fields, not %s", t)
	}
}

// Is constrains the classification of a float field.
func Is(class FloatClass) Rule {
	return classRule{class: class}
}

type classRule struct {
	class FloatClass
}

func (r classRule) compile(_ *compiler, t reflect.Type) (checker, error) {
	var wide bool
	switch t.Kind() {
	case reflect.Float64:
		wide = true
	case reflect.Float32:
		wide = false
	default:
		return nil, schemaErr("Is applies to float fields, not %s", t)
	}

	expect := fmt.Sprintf("a float of class %s", r.class)
	return checkFunc(func(v reflect.Value) *expectation {
		if classify(v.Float(), wide) == r.class || (r.class == Finite && isFinite(v.Float())) {
			return nil
		}
		return &expectation{code: "float.class", expect: expect, observed: renderValue(v)}
	}), nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// classify returns the most specific class of f. Normality is judged against
// the field's own width: a subnormal float32 stays subnormal even though its
// float64 widening is normal.
func classify(f float64, wide bool) FloatClass {
	switch {
	case math.IsNaN(f):
		return NaN
	case math.IsInf(f, 0):
		return Infinite
	case f == 0:
		return Finite
	}

	minNormal := minNormal64
	if !wide {
		minNormal = minNormal32
	}
	if math.Abs(f) < minNormal {
		return Subnormal
	}

	return Normal
}

func isFloatKind(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isUintKind(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	default:
		return false
	}
}
