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

// Package normhtml normalizes heading markup
// so that values can be compared by their inline content.
package normhtml

import (
	"regexp"
	"sort"
	"strings"

	"go4.org/bytereplacer"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

var htmlEscaper = bytereplacer.New(
	"&", "&amp;",
	`'`, "&apos;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
)

// Inline returns the inline content of heading markup in a normal form.
// Paragraph and h1 tags (and their attributes) are dropped,
// remaining attributes are sorted,
// runs of whitespace become a single space,
// and text is escaped uniformly.
// Two values with the same inline content normalize to the same string
// regardless of how they were wrapped or escaped.
func Inline(s string) string {
	type htmlAttribute struct {
		key   string
		value string
	}

	tok := html.NewTokenizerFragment(strings.NewReader(s), "div")
	var output []byte
	for {
		tt := tok.Next()
		switch tt {
		case html.ErrorToken:
			return strings.TrimSpace(string(output))
		case html.TextToken:
			data := whitespaceRE.ReplaceAll(tok.Text(), []byte(" "))
			output = append(output, htmlEscaper.Replace(data)...)
		case html.EndTagToken:
			tagBytes, _ := tok.TagName()
			if isWrapperTag(tagBytes) {
				continue
			}
			output = append(output, "</"...)
			output = append(output, tagBytes...)
			output = append(output, ">"...)
		case html.StartTagToken, html.SelfClosingTagToken:
			tagBytes, hasAttr := tok.TagName()
			if isWrapperTag(tagBytes) {
				continue
			}
			output = append(output, "<"...)
			output = append(output, tagBytes...)
			if hasAttr {
				var attrs []htmlAttribute
				for {
					k, v, more := tok.TagAttr()
					attrs = append(attrs, htmlAttribute{string(k), string(v)})
					if !more {
						break
					}
				}
				sort.Slice(attrs, func(i, j int) bool {
					return attrs[i].key < attrs[j].key
				})
				for _, attr := range attrs {
					output = append(output, " "...)
					output = append(output, attr.key...)
					if attr.value != "" {
						output = append(output, `="`...)
						output = append(output, html.EscapeString(attr.value)...)
						output = append(output, `"`...)
					}
				}
			}
			output = append(output, ">"...)
		case html.CommentToken:
			output = append(output, tok.Raw()...)
		}
	}
}

func isWrapperTag(tag []byte) bool {
	a := atom.Lookup(tag)
	return a == atom.P || a == atom.H1
}
