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
	"errors"
	"fmt"
	"strings"
)

// ErrValidation is a sentinel error for validation failures.
// Use errors.Is(err, ErrValidation) to check whether an error carries
// one or more [Violation] values.
var ErrValidation = errors.New("validation")

// Predefined schema and registry errors.
var (
	// ErrSchema is the sentinel wrapped by every schema-construction error.
	// Schema errors are detected when a type's declaration is compiled, never
	// while a value is being validated.
	ErrSchema = errors.New("invalid schema")

	// ErrNotRegistered is returned when validating a type that has no
	// registered declaration.
	ErrNotRegistered = errors.New("type not registered")

	// ErrCannotValidateNilValue is returned when attempting to validate a nil value.
	ErrCannotValidateNilValue = errors.New("cannot validate nil value")
)

// schemaErr builds a schema-construction error wrapping [ErrSchema].
func schemaErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSchema, fmt.Sprintf(format, args...))
}

// Violation is a single validation failure: the qualified path of the
// offending field, a stable machine-readable code, the violated expectation,
// a rendering of the observed value, and the resolved display message.
//
// The message is resolved by priority: a message attached to the specific
// rule, then the field's default message, then a generated message of the
// form "expected `user.email` to be a string with length in 3..=50, got
// length 2".
type Violation struct {
	Path     string `json:"path"`     // Qualified path (e.g. "address.zip", "items[1]")
	Code     string `json:"code"`     // Stable code (e.g. "string.length", "int.sign")
	Expect   string `json:"expect"`   // Human-readable expectation
	Observed string `json:"observed"` // Rendering of the offending value
	Message  string `json:"message"`  // Resolved display message
}

// Error returns the resolved message verbatim.
func (v *Violation) Error() string {
	return v.Message
}

// Unwrap returns [ErrValidation] for errors.Is compatibility.
func (v *Violation) Unwrap() error {
	return ErrValidation
}

// Violations is an ordered collection of validation failures, in the order
// they were discovered by a left-to-right, depth-first walk of the value.
// It is never empty when returned from [ValidateAll].
type Violations []Violation

// Error returns a formatted error message joining every violation.
func (vs Violations) Error() string {
	if len(vs) == 0 {
		return "validation failed"
	}
	if len(vs) == 1 {
		return vs[0].Message
	}

	msgs := make([]string, 0, len(vs))
	for _, v := range vs {
		msgs = append(msgs, v.Message)
	}

	return "validation failed: " + strings.Join(msgs, "; ")
}

// Unwrap returns [ErrValidation] for errors.Is compatibility.
func (vs Violations) Unwrap() error {
	return ErrValidation
}

// Has reports whether any violation was recorded at the given path.
func (vs Violations) Has(path string) bool {
	for _, v := range vs {
		if v.Path == path {
			return true
		}
	}

	return false
}

// HasCode reports whether any violation carries the given code.
func (vs Violations) HasCode(code string) bool {
	for _, v := range vs {
		if v.Code == code {
			return true
		}
	}

	return false
}

// Get returns every violation recorded at the given path.
func (vs Violations) Get(path string) []Violation {
	var out []Violation
	for _, v := range vs {
		if v.Path == path {
			out = append(out, v)
		}
	}

	return out
}

// Paths returns the distinct violation paths in discovery order.
func (vs Violations) Paths() []string {
	var paths []string
	seen := make(map[string]bool, len(vs))
	for _, v := range vs {
		if !seen[v.Path] {
			paths = append(paths, v.Path)
			seen[v.Path] = true
		}
	}

	return paths
}
