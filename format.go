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
	"regexp"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Format identifies a string format for the [Matches] rule. The named
// constants select a built-in check; any other value is treated as a
// regular-expression pattern.
type Format string

// Built-in named formats.
const (
	FormatEmail    Format = "Email"
	FormatURL      Format = "Url"
	FormatUUID     Format = "Uuid"
	FormatIPv4     Format = "Ipv4"
	FormatIPv6     Format = "Ipv6"
	FormatDateTime Format = "DateTime"
)

// known reports whether f is one of the built-in named formats.
func (f Format) known() bool {
	switch f {
	case FormatEmail, FormatURL, FormatUUID, FormatIPv4, FormatIPv6, FormatDateTime:
		return true
	default:
		return false
	}
}

// FormatMatcher is the pluggable capability behind the [Matches] rule.
// Support is checked once, at schema compilation: a declaration naming a
// format the matcher does not support never produces a rule tree.
// Implementations must be safe for concurrent use.
type FormatMatcher interface {
	// Supports reports whether the matcher can evaluate the format.
	Supports(f Format) bool

	// Matches reports whether s satisfies the format. It is only called
	// with formats the matcher supports.
	Matches(f Format, s string) bool
}

// patternCache compiles and caches arbitrary regular-expression formats.
type patternCache struct {
	patterns sync.Map // Format -> *regexp.Regexp
}

func (c *patternCache) get(f Format) (*regexp.Regexp, bool) {
	if re, ok := c.patterns.Load(f); ok {
		return re.(*regexp.Regexp), true
	}

	re, err := regexp.Compile(string(f))
	if err != nil {
		return nil, false
	}
	actual, _ := c.patterns.LoadOrStore(f, re)

	return actual.(*regexp.Regexp), true
}

// NewFormatMatcher returns the default [FormatMatcher]: named formats are
// backed by go-playground/validator (email, URL, IP addresses), google/uuid
// (canonical UUIDs), and RFC 3339 parsing (date-time, with the seconds-only
// form without a zone also accepted); any other format compiles as a
// regular expression.
func NewFormatMatcher() FormatMatcher {
	return &defaultMatcher{v: validator.New()}
}

type defaultMatcher struct {
	v     *validator.Validate
	cache patternCache
}

func (m *defaultMatcher) Supports(f Format) bool {
	if f.known() {
		return true
	}
	_, ok := m.cache.get(f)

	return ok
}

func (m *defaultMatcher) Matches(f Format, s string) bool {
	switch f {
	case FormatEmail:
		return m.v.Var(s, "email") == nil
	case FormatURL:
		return m.v.Var(s, "url") == nil
	case FormatIPv4:
		return m.v.Var(s, "ipv4") == nil
	case FormatIPv6:
		return m.v.Var(s, "ipv6") == nil
	case FormatUUID:
		// Canonical dashed form only.
		if len(s) != 36 {
			return false
		}
		_, err := uuid.Parse(s)
		return err == nil
	case FormatDateTime:
		if _, err := time.Parse(time.RFC3339, s); err == nil {
			return true
		}
		_, err := time.Parse("2006-01-02T15:04:05", s)
		return err == nil
	default:
		re, ok := m.cache.get(f)
		return ok && re.MatchString(s)
	}
}

// Regular-expression table for [NewRegexpMatcher], one pattern per named
// format.
var formatPatterns = map[Format]*regexp.Regexp{
	FormatEmail:    regexp.MustCompile(`(?:[a-z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+(?:\.[a-z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+)*|"(?:[\x01-\x08\x0b\x0c\x0e-\x1f\x21\x23-\x5b\x5d-\x7f]|\\[\x01-\x09\x0b\x0c\x0e-\x7f])*")@(?:(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\.)+[a-z0-9](?:[a-z0-9-]*[a-z0-9])?|\[(?:(?:(2(5[0-5]|[0-4][0-9])|1[0-9][0-9]|[1-9]?[0-9]))\.){3}(?:(2(5[0-5]|[0-4][0-9])|1[0-9][0-9]|[1-9]?[0-9])|[a-z0-9-]*[a-z0-9]:(?:[\x01-\x08\x0b\x0c\x0e-\x1f\x21-\x5a\x53-\x7f]|\\[\x01-\x09\x0b\x0c\x0e-\x7f])+)\])`),
	FormatURL:      regexp.MustCompile(`^[-a-zA-Z0-9@:%._\+~#=]{1,256}\.[a-zA-Z0-9()]{1,6}\b(?:[-a-zA-Z0-9()@:%_\+.~#?&//=]*)$`),
	FormatUUID:     regexp.MustCompile(`(?i:^[0-9a-f]{8}-[0-9a-f]{4}-[0-5][0-9a-f]{3}-[089ab][0-9a-f]{3}-[0-9a-f]{12}$)`),
	FormatIPv4:     regexp.MustCompile(`^(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)$`),
	FormatIPv6:     regexp.MustCompile(`^(([0-9a-fA-F]{1,4}:){7,7}[0-9a-fA-F]{1,4}|([0-9a-fA-F]{1,4}:){1,7}:|([0-9a-fA-F]{1,4}:){1,6}:[0-9a-fA-F]{1,4}|([0-9a-fA-F]{1,4}:){1,5}(:[0-9a-fA-F]{1,4}){1,2}|([0-9a-fA-F]{1,4}:){1,4}(:[0-9a-fA-F]{1,4}){1,3}|([0-9a-fA-F]{1,4}:){1,3}(:[0-9a-fA-F]{1,4}){1,4}|([0-9a-fA-F]{1,4}:){1,2}(:[0-9a-fA-F]{1,4}){1,5}|[0-9a-fA-F]{1,4}:((:[0-9a-fA-F]{1,4}){1,6})|:((:[0-9a-fA-F]{1,4}){1,7}|:)|fe80:(:[0-9a-fA-F]{0,4}){0,4}%[0-9a-zA-Z]{1,}|::(ffff(:0{1,4}){0,1}:){0,1}((25[0-5]|(2[0-4]|1{0,1}[0-9]){0,1}[0-9])\.){3,3}(25[0-5]|(2[0-4]|1{0,1}[0-9]){0,1}[0-9])|([0-9a-fA-F]{1,4}:){1,4}:((25[0-5]|(2[0-4]|1{0,1}[0-9]){0,1}[0-9])\.){3,3}(25[0-5]|(2[0-4]|1{0,1}[0-9]){0,1}[0-9]))$`),
	FormatDateTime: regexp.MustCompile(`^(?:\d{4})-(?:\d{2})-(?:\d{2})T(?:\d{2}):(?:\d{2}):(?:\d{2}(?:\.\d*)?)(?:(?:-(?:\d{2}):(?:\d{2})|Z)?)$`),
}

// NewRegexpMatcher returns a [FormatMatcher] that evaluates every format,
// named or not, with a regular expression: named formats use the fixed
// table above, everything else compiles as a pattern. Use it when the
// stricter built-in checks of [NewFormatMatcher] are not wanted.
func NewRegexpMatcher() FormatMatcher {
	return &regexpMatcher{}
}

type regexpMatcher struct {
	cache patternCache
}

func (m *regexpMatcher) Supports(f Format) bool {
	if f.known() {
		return true
	}
	_, ok := m.cache.get(f)

	return ok
}

func (m *regexpMatcher) Matches(f Format, s string) bool {
	if re, ok := formatPatterns[f]; ok {
		return re.MatchString(s)
	}

	re, ok := m.cache.get(f)
	return ok && re.MatchString(s)
}
