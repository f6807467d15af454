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

import "testing"

type benchUser struct {
	Email string
	Age   int
	Tags  []string
}

func benchRegistry() *Registry {
	r := NewRegistry()
	RegisterIn[benchUser](r, Object(
		Field("Email", Length(Between(3, 50)), Matches(FormatEmail)),
		Field("Age", Size(Between(18, 130))),
		Field("Tags", Length(AtMost(5)), Each(Length(AtLeast(1)))),
	))

	return r
}

func BenchmarkValidate_Valid(b *testing.B) {
	r := benchRegistry()
	u := benchUser{Email: "john@example.com", Age: 25, Tags: []string{"a", "b"}}

	b.ResetTimer()
	b.ReportAllocs()
	for b.Loop() {
		//nolint:errcheck // Benchmark measures performance; error checking would skew results
		ValidateIn(r, u)
	}
}

func BenchmarkValidate_FirstViolation(b *testing.B) {
	r := benchRegistry()
	u := benchUser{Email: "x", Age: 25}

	b.ResetTimer()
	b.ReportAllocs()
	for b.Loop() {
		//nolint:errcheck // Benchmark measures performance; error checking would skew results
		ValidateIn(r, u)
	}
}

func BenchmarkValidateAll_ManyViolations(b *testing.B) {
	r := benchRegistry()
	u := benchUser{Email: "x", Age: 3, Tags: []string{"", "", "", "", "", ""}}

	b.ResetTimer()
	b.ReportAllocs()
	for b.Loop() {
		//nolint:errcheck // Benchmark measures performance; error checking would skew results
		ValidateAllIn(r, u)
	}
}

func BenchmarkValidate_Nested(b *testing.B) {
	type benchAddress struct {
		City string
		Zip  string
	}
	type benchCustomer struct {
		Name    string
		Address benchAddress
	}

	r := NewRegistry()
	RegisterIn[benchAddress](r, Object(
		Field("City", Length(AtLeast(1))),
		Field("Zip", Pattern(`^\d{5}$`)),
	))
	RegisterIn[benchCustomer](r, Object(
		Field("Name", Length(AtLeast(1))),
		Field("Address", Nested[benchAddress]()),
	))

	c := benchCustomer{Name: "Ada", Address: benchAddress{City: "Paris", Zip: "75001"}}

	b.ResetTimer()
	b.ReportAllocs()
	for b.Loop() {
		//nolint:errcheck // Benchmark measures performance; error checking would skew results
		ValidateIn(r, c)
	}
}

func BenchmarkValidate_Concurrent(b *testing.B) {
	r := benchRegistry()
	u := benchUser{Email: "john@example.com", Age: 25}

	b.ResetTimer()
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			//nolint:errcheck // Benchmark measures performance; error checking would skew results
			ValidateIn(r, u)
		}
	})
}
