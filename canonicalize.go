// Copyright 2026 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package headingfix rewrites stored rich-text heading values
// into a single canonical form: one h1 element wrapping the heading's inline markup.
//
// Values may have been stored as plain text, as HTML-escaped markup
// (possibly escaped more than once), as a paragraph,
// or as a heading wrapping a redundant paragraph.
// [Canonicalize] recognizes these shapes and reassembles them,
// leaving inline markup such as emphasis, superscripts, and links untouched.
// Values whose shape cannot be determined confidently are left alone.
//
// Canonicalization is idempotent:
// canonicalizing a rewritten value always reports no change.
package headingfix

import "strings"

// SkipReason describes why a value was not rewritten.
type SkipReason string

const (
	// SkipOpaque means the value's structure was ambiguous
	// or used an element other than a heading or paragraph.
	SkipOpaque SkipReason = "opaque"
	// SkipInvalidInput means the value was absent, not a string, or blank.
	SkipInvalidInput SkipReason = "invalid-input"
)

// Result is the outcome of canonicalizing a single value.
type Result struct {
	// Changed is true if Value should replace the stored value.
	Changed bool
	// Value is the canonical value. It is only set if Changed is true.
	Value string
	// Skipped is set when the value was left alone for a reason
	// other than already being canonical.
	Skipped SkipReason
	// Diagnostics describes how the result was reached.
	Diagnostics Diagnostics
}

// Diagnostics records the decisions made while canonicalizing one value.
// Callers that want aggregate counts should sum Diagnostics themselves.
type Diagnostics struct {
	// DecodePasses is the number of character reference decoding passes
	// that changed the value.
	DecodePasses int
	// Shape is the classification of the decoded value.
	// It is zero if the value was not classified.
	Shape Kind
	// Layers is the number of redundant nested wrappers removed.
	Layers int
	// EscapedWrapper is true if a removed wrapper
	// was stored as escaped markup inside the outer element.
	EscapedWrapper bool
}

// A Canonicalizer rewrites heading values into canonical form.
// The zero value is ready to use.
// A Canonicalizer is safe to use from multiple goroutines
// as long as its fields are not modified.
type Canonicalizer struct {
	// Decoder resolves character references in escaped values.
	Decoder EntityDecoder
	// Parser splits markup into top-level nodes.
	// If nil, [TokenizerParser] is used.
	Parser FragmentParser
	// MaxUnwrapDepth bounds how many wrapper layers are resolved,
	// counting the outer element.
	// Values less than or equal to zero mean [DefaultMaxUnwrapDepth].
	MaxUnwrapDepth int
	// If KeepWrapperAttributes is true,
	// attributes on a paragraph promoted to a heading are kept.
	// By default, they are dropped.
	KeepWrapperAttributes bool
}

// Canonicalize rewrites a single stored value
// using the default [Canonicalizer] options.
func Canonicalize(raw string) Result {
	return new(Canonicalizer).Canonicalize(raw)
}

// CanonicalizeValue rewrites a single stored value of unknown type
// using the default [Canonicalizer] options.
func CanonicalizeValue(v any) Result {
	return new(Canonicalizer).CanonicalizeValue(v)
}

// CanonicalizeValue is like [Canonicalizer.Canonicalize],
// but accepts a value decoded from a content store.
// Values that are not a string or a non-nil *string
// are reported as [SkipInvalidInput].
func (c *Canonicalizer) CanonicalizeValue(v any) Result {
	switch v := v.(type) {
	case string:
		return c.Canonicalize(v)
	case *string:
		if v != nil {
			return c.Canonicalize(*v)
		}
	}
	return Result{Skipped: SkipInvalidInput}
}

// Canonicalize rewrites a single stored value.
// It never fails: values it cannot confidently rewrite
// are reported as unchanged with a [SkipReason].
func (c *Canonicalizer) Canonicalize(raw string) Result {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Result{Skipped: SkipInvalidInput}
	}

	// Only decode as far as needed to surface markup,
	// so that character references in the markup's text survive.
	decoded, passes := c.Decoder.decodeUntil(trimmed, hasHTMLTag)
	class := c.classify(decoded)
	diag := Diagnostics{
		DecodePasses: passes,
		Shape:        class.Kind,
	}

	switch class.Kind {
	case PlainKind:
		candidate := h1Start + EscapeText(decoded) + "</h1>"
		if candidate == raw {
			return Result{Diagnostics: diag}
		}
		return Result{Changed: true, Value: candidate, Diagnostics: diag}
	case WrappedKind:
		u, ok := c.unwrap(class.Element)
		if !ok {
			diag.Shape = OpaqueKind
			return Result{Skipped: SkipOpaque, Diagnostics: diag}
		}
		diag.Layers = u.Layers
		diag.EscapedWrapper = u.Escaped
		candidate := u.Open + u.Inner + "</h1>"
		if candidate == raw || candidate == decoded {
			return Result{Diagnostics: diag}
		}
		return Result{Changed: true, Value: candidate, Diagnostics: diag}
	default:
		return Result{Skipped: SkipOpaque, Diagnostics: diag}
	}
}
