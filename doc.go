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

// Package rod validates structured values against declarative, per-field
// rule trees.
//
// # Getting Started
//
// Declare rules for a type with [Object] and register the declaration, then
// validate values of that type:
//
//	type User struct {
//		Email string
//		Age   int
//	}
//
//	rod.Register[User](rod.Object(
//		rod.Field("Email", rod.Length(rod.Between(3, 50)), rod.Matches(rod.FormatEmail)),
//		rod.Field("Age", rod.Size(rod.AtLeast(18))),
//	))
//
//	if err := rod.Validate(User{Email: "no", Age: 15}); err != nil {
//		var v *rod.Violation
//		if errors.As(err, &v) {
//			fmt.Println(v.Path, v.Code, v.Message)
//		}
//	}
//
// [Validate] stops at the first violation in declaration order; [ValidateAll]
// walks the whole value and returns every violation as [Violations]. Both
// modes share one depth-first evaluation and report identical first
// violations.
//
// # Declarations
//
// A declaration is inert data: it compiles into an immutable rule tree the
// first time the type is validated (or eagerly via [Precompile]), and at most
// once per registry no matter how many goroutines race the first use.
// Structural mistakes (unknown fields, rules incompatible with the field
// type, empty ranges, zero steps, unsupported formats) are
// schema-construction errors wrapping [ErrSchema], reported at compilation
// and never while a value is walked.
//
// Nested structures reference each other's declarations with [Nested], which
// resolves through the registry by type identity at evaluation time, so
// recursive and mutually recursive types need no eager construction.
//
// Tagged unions are declared over interface types with [Enum] and [Case];
// validation dispatches on the value's concrete type and evaluates only the
// active variant's rules.
//
// # Messages
//
// Violation messages resolve by priority: a per-rule [Msg] override, then the
// field's [FieldDecl.Message] default, then a generated message of the form
//
//	expected `user.email` to be a string with length in 3..=50, got length 2
//
// # Registries
//
// The package-level functions use a process-wide default registry. Create an
// isolated [Registry] with [NewRegistry], optionally with a custom
// [FormatMatcher] via [WithFormatMatcher], and use the *In variants
// ([RegisterIn], [ValidateIn], [ValidateAllIn], [PrecompileIn]) against it.
//
// # JSON Schema
//
// [JSONSchema] exports a registered declaration as a draft 2020-12 JSON
// Schema document; [CompiledJSONSchema] additionally compiles the export,
// guaranteeing it is well-formed.
package rod
