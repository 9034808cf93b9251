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

import "strings"

// hasHTMLTag reports whether s contains at least one well-formed
// [open tag] or [closing tag].
// Text like "a < b" or "<3" does not count as markup.
//
// [open tag]: https://spec.commonmark.org/0.30/#open-tag
// [closing tag]: https://spec.commonmark.org/0.30/#closing-tag
func hasHTMLTag(s string) bool {
	for i := strings.IndexByte(s, '<'); i >= 0; {
		r := &tagScanner{s: s, pos: i + 1}
		if r.pos < len(s) {
			if r.current() == '/' {
				if r.next() && parseClosingTag(r) {
					return true
				}
			} else if parseOpenTag(r) {
				return true
			}
		}
		j := strings.IndexByte(s[i+1:], '<')
		if j < 0 {
			break
		}
		i += 1 + j
	}
	return false
}

// tagScanner is a cursor over a string.
type tagScanner struct {
	s   string
	pos int
}

func (r *tagScanner) current() byte {
	if r.pos >= len(r.s) {
		return 0
	}
	return r.s[r.pos]
}

// next advances the cursor and reports whether any bytes remain.
func (r *tagScanner) next() bool {
	if r.pos < len(r.s) {
		r.pos++
	}
	return r.pos < len(r.s)
}

func (r *tagScanner) skipSpace() bool {
	for r.pos < len(r.s) && isSpaceTabOrLineEnding(r.current()) {
		r.pos++
	}
	return r.pos < len(r.s)
}

// parseOpenTag parses an open tag sans the leading '<'.
func parseOpenTag(r *tagScanner) bool {
	if !parseTagName(r) {
		return false
	}
	for {
		beforeSpace := r.pos
		if !r.skipSpace() {
			return false
		}
		switch r.current() {
		case '/':
			if !r.next() {
				return false
			}
			return r.current() == '>'
		case '>':
			return true
		}
		if r.pos == beforeSpace || !parseAttribute(r) {
			return false
		}
	}
}

// parseClosingTag parses a closing tag sans the leading "</".
func parseClosingTag(r *tagScanner) bool {
	if !parseTagName(r) {
		return false
	}
	if !r.skipSpace() {
		return false
	}
	return r.current() == '>'
}

func parseTagName(r *tagScanner) bool {
	if !isASCIILetter(r.current()) {
		return false
	}
	for r.next() {
		if c := r.current(); !isASCIILetter(c) && !isASCIIDigit(c) && c != '-' {
			break
		}
	}
	return true
}

func parseAttribute(r *tagScanner) bool {
	// Attribute name.
	if c := r.current(); !isASCIILetter(c) && c != '_' && c != ':' {
		return false
	}
	for r.next() {
		if c := r.current(); !isASCIILetter(c) && !isASCIIDigit(c) && strings.IndexByte("_.:-", c) < 0 {
			break
		}
	}

	// Optional attribute value.
	// Don't consume space unless it is followed by an equal sign,
	// since it will cause future attributes to fail.
	prevState := *r
	if !r.skipSpace() || r.current() != '=' {
		*r = prevState
		return true
	}
	if !r.next() || !r.skipSpace() {
		// Must have an attribute value following equals sign.
		return false
	}
	switch c := r.current(); {
	case c == '\'' || c == '"':
		end := strings.IndexByte(r.s[r.pos+1:], c)
		if end < 0 {
			return false
		}
		r.pos += end + 2
		return true
	case isUnquotedAttributeValueChar(c):
		for r.next() && isUnquotedAttributeValueChar(r.current()) {
		}
		return true
	default:
		return false
	}
}

func isUnquotedAttributeValueChar(c byte) bool {
	return !isSpaceTabOrLineEnding(c) && strings.IndexByte("\"'=<>`", c) < 0
}

func isSpaceTabOrLineEnding(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isASCIILetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isASCIIDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
