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

package headingfix

import (
	"strings"

	"golang.org/x/net/html"
)

// DefaultMaxDecodePasses is the number of unescaping passes
// an [EntityDecoder] applies when MaxPasses is zero.
const DefaultMaxDecodePasses = 5

// An EntityDecoder resolves HTML character references,
// including values that have been escaped more than once
// (for example "&amp;lt;p&amp;gt;").
// The zero value decodes with [html.UnescapeString]
// and stops after [DefaultMaxDecodePasses] passes.
type EntityDecoder struct {
	// Unescape performs a single decoding pass.
	// If nil, [html.UnescapeString] is used.
	Unescape func(string) string
	// MaxPasses bounds the number of times Unescape is applied.
	// Values less than or equal to zero mean [DefaultMaxDecodePasses].
	MaxPasses int
}

// Decode trims s and then applies the decoder's unescaping function
// until the value stops changing or the pass limit is reached.
// It returns the decoded value and the number of passes that changed it.
// Hitting the pass limit is not an error:
// the value from the last pass is returned.
func (d *EntityDecoder) Decode(s string) (decoded string, passes int) {
	return d.decodeUntil(strings.TrimSpace(s), nil)
}

// decodeUntil is the bounded fixed-point loop behind [EntityDecoder.Decode].
// If stop is not nil, decoding also ends as soon as stop reports true
// for the current value (including before the first pass).
func (d *EntityDecoder) decodeUntil(s string, stop func(string) bool) (string, int) {
	unescape := html.UnescapeString
	maxPasses := DefaultMaxDecodePasses
	if d != nil {
		if d.Unescape != nil {
			unescape = d.Unescape
		}
		if d.MaxPasses > 0 {
			maxPasses = d.MaxPasses
		}
	}

	passes := 0
	for passes < maxPasses {
		if stop != nil && stop(s) {
			break
		}
		next := strings.TrimSpace(unescape(s))
		if next == s {
			break
		}
		s = next
		passes++
	}
	return s, passes
}

// Decode resolves HTML character references in s
// using the default [EntityDecoder] and trims the result.
func Decode(s string) string {
	decoded, _ := new(EntityDecoder).Decode(s)
	return decoded
}
