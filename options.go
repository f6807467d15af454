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

// config holds registry configuration set through [Option] values.
type config struct {
	matcher FormatMatcher
}

// Option is a functional option for configuring a [Registry].
type Option func(*config)

// WithFormatMatcher replaces the registry's format matcher capability.
// Declarations using a format the matcher does not support fail at schema
// compilation. The default matcher handles the built-in named formats and
// treats any other format as a regular-expression pattern.
func WithFormatMatcher(m FormatMatcher) Option {
	return func(c *config) {
		c.matcher = m
	}
}
