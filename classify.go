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

//go:generate stringer -type=Kind -output=kind_string.go

package headingfix

// Kind is an enumeration of the shapes a stored heading can take.
type Kind int

const (
	// PlainKind is text without any markup.
	PlainKind Kind = 1 + iota
	// WrappedKind is a single element that spans the whole value.
	WrappedKind
	// OpaqueKind is anything else.
	// Opaque values are never rewritten.
	OpaqueKind
)

// A Classification is the result of [Classify].
type Classification struct {
	Kind Kind
	// Element is the wrapping element if Kind is [WrappedKind].
	Element *Node
}

// Classify determines the shape of an entity-decoded, trimmed heading value
// using [TokenizerParser].
func Classify(decoded string) Classification {
	return new(Canonicalizer).classify(decoded)
}

func (c *Canonicalizer) classify(s string) Classification {
	if !hasHTMLTag(s) {
		return Classification{Kind: PlainKind}
	}
	nodes, err := c.parser().ParseFragment(s)
	if err != nil {
		return Classification{Kind: OpaqueKind}
	}
	if isTextOnly(nodes) {
		return Classification{Kind: PlainKind}
	}
	elem := loneElement(nodes)
	if elem == nil || elem.Start != 0 || elem.End != len(s) {
		return Classification{Kind: OpaqueKind}
	}
	return Classification{Kind: WrappedKind, Element: elem}
}

func isTextOnly(nodes []Node) bool {
	for i := range nodes {
		if nodes[i].Kind != TextNode {
			return false
		}
	}
	return true
}

func (c *Canonicalizer) parser() FragmentParser {
	if c == nil || c.Parser == nil {
		return TokenizerParser{}
	}
	return c.Parser
}
