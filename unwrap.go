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

import "golang.org/x/net/html/atom"

// DefaultMaxUnwrapDepth is the number of wrapper layers
// (the outer element plus redundant inner wrappers)
// a [Canonicalizer] resolves when MaxUnwrapDepth is zero.
const DefaultMaxUnwrapDepth = 2

// Unwrapped is a heading element ready to be assembled.
type Unwrapped struct {
	// Open is the start tag of the heading element.
	// It is always an h1 start tag, possibly with attributes.
	Open string
	// Inner is the preserved inner markup.
	Inner string
	// Layers is the number of redundant nested wrappers removed.
	Layers int
	// Escaped is true if the inner wrapper was recovered
	// by decoding character references.
	Escaped bool
}

const h1Start = "<h1>"

// unwrap converts a wrapping element into heading content.
// It reports false if the element is not a heading or paragraph,
// or if it nests more wrappers than the configured depth allows.
func (c *Canonicalizer) unwrap(n *Node) (Unwrapped, bool) {
	if n.SelfClosing {
		return Unwrapped{}, false
	}
	var u Unwrapped
	switch atom.Lookup([]byte(n.Tag)) {
	case atom.H1:
		u.Open = retag(n.Open, n.Tag)
	case atom.P:
		u.Open = h1Start
		if c.KeepWrapperAttributes {
			u.Open = retag(n.Open, n.Tag)
		}
	default:
		return Unwrapped{}, false
	}
	u.Inner = n.Inner

	for depth := 1; ; depth++ {
		w, escaped := c.redundantWrapper(u.Inner)
		if w == nil {
			return u, true
		}
		if depth >= c.maxUnwrapDepth() {
			return Unwrapped{}, false
		}
		u.Inner = w.Inner
		u.Layers++
		u.Escaped = u.Escaped || escaped
	}
}

// redundantWrapper returns the paragraph or heading element
// that makes up the entirety of inner (ignoring surrounding whitespace).
// If inner has no markup but a single decoding pass turns it into such a wrapper,
// the decoded element is returned and escaped is true.
// Decoding is limited to one pass so that escaped text produced by
// plain-text canonicalization is never mistaken for a wrapper.
func (c *Canonicalizer) redundantWrapper(inner string) (_ *Node, escaped bool) {
	if !hasHTMLTag(inner) {
		once := EntityDecoder{Unescape: c.Decoder.Unescape, MaxPasses: 1}
		decoded, passes := once.Decode(inner)
		if passes == 0 || !hasHTMLTag(decoded) {
			return nil, false
		}
		inner = decoded
		escaped = true
	}
	nodes, err := c.parser().ParseFragment(inner)
	if err != nil {
		return nil, false
	}
	w := loneElement(nodes)
	if w == nil || w.SelfClosing {
		return nil, false
	}
	switch atom.Lookup([]byte(w.Tag)) {
	case atom.P, atom.H1:
		return w, escaped
	default:
		return nil, false
	}
}

// retag rewrites a start tag to an h1 start tag,
// keeping its attributes verbatim.
func retag(open string, tag string) string {
	return "<h1" + open[1+len(tag):]
}

func (c *Canonicalizer) maxUnwrapDepth() int {
	if c == nil || c.MaxUnwrapDepth <= 0 {
		return DefaultMaxUnwrapDepth
	}
	return c.MaxUnwrapDepth
}
