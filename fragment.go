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
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NodeKind is an enumeration of top-level fragment node types.
type NodeKind uint8

const (
	TextNode NodeKind = 1 + iota
	ElementNode
	CommentNode
)

// A Node is a top-level node of an HTML fragment.
// Element nodes retain their source text verbatim
// so that inner markup can be reused without re-serialization.
type Node struct {
	Kind NodeKind
	// Tag is the lowercased tag name of an element.
	Tag string
	// Attr is the element's attribute list with decoded values.
	Attr []html.Attribute
	// Open is the element's start tag as it appears in the source.
	Open string
	// Inner is the source text between the element's start and end tags.
	// For text and comment nodes, it is the node's source text.
	Inner string
	// SelfClosing is true for void elements
	// and elements written with a trailing "/>".
	SelfClosing bool
	// Start and End are the byte offsets of the node in the source.
	Start int
	End   int
}

// isBlank reports whether the node is whitespace-only text.
func (n *Node) isBlank() bool {
	return n.Kind == TextNode && strings.TrimSpace(n.Inner) == ""
}

// A FragmentParser splits an HTML fragment into its top-level nodes.
// Implementations must return an error rather than guess
// when the fragment is not well-balanced.
type FragmentParser interface {
	ParseFragment(s string) ([]Node, error)
}

// TokenizerParser is a [FragmentParser]
// that uses the [html.Tokenizer] from golang.org/x/net/html.
// It does not apply the HTML5 tree construction rules:
// every non-void element must be explicitly closed
// by a matching end tag.
type TokenizerParser struct{}

type openElement struct {
	tag        string
	attr       []html.Attribute
	start      int
	innerStart int
}

// ParseFragment returns the top-level nodes of s.
func (TokenizerParser) ParseFragment(s string) ([]Node, error) {
	tok := html.NewTokenizerFragment(strings.NewReader(s), "div")
	var nodes []Node
	var stack []openElement
	pos := 0
	for {
		tt := tok.Next()
		start := pos
		pos += len(tok.Raw())
		switch tt {
		case html.ErrorToken:
			if err := tok.Err(); err != io.EOF {
				return nil, fmt.Errorf("parse html fragment: %w", err)
			}
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				return nil, fmt.Errorf("parse html fragment: <%s> at offset %d is never closed", top.tag, top.start)
			}
			return nodes, nil
		case html.TextToken:
			if len(stack) == 0 {
				nodes = append(nodes, Node{
					Kind:  TextNode,
					Inner: s[start:pos],
					Start: start,
					End:   pos,
				})
			}
		case html.CommentToken:
			if len(stack) == 0 {
				nodes = append(nodes, Node{
					Kind:  CommentNode,
					Inner: s[start:pos],
					Start: start,
					End:   pos,
				})
			}
		case html.DoctypeToken:
			return nil, fmt.Errorf("parse html fragment: unexpected doctype at offset %d", start)
		case html.StartTagToken, html.SelfClosingTagToken:
			tagBytes, hasAttr := tok.TagName()
			tag := string(tagBytes)
			var attrs []html.Attribute
			for hasAttr {
				var k, v []byte
				k, v, hasAttr = tok.TagAttr()
				attrs = append(attrs, html.Attribute{Key: string(k), Val: string(v)})
			}
			if tt == html.StartTagToken && !isVoidElement(tag) {
				stack = append(stack, openElement{
					tag:        tag,
					attr:       attrs,
					start:      start,
					innerStart: pos,
				})
				continue
			}
			if len(stack) == 0 {
				nodes = append(nodes, Node{
					Kind:        ElementNode,
					Tag:         tag,
					Attr:        attrs,
					Open:        s[start:pos],
					SelfClosing: true,
					Start:       start,
					End:         pos,
				})
			}
		case html.EndTagToken:
			tagBytes, _ := tok.TagName()
			tag := string(tagBytes)
			if len(stack) == 0 {
				return nil, fmt.Errorf("parse html fragment: unexpected </%s> at offset %d", tag, start)
			}
			top := stack[len(stack)-1]
			if top.tag != tag {
				return nil, fmt.Errorf("parse html fragment: </%s> at offset %d does not close <%s>", tag, start, top.tag)
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				nodes = append(nodes, Node{
					Kind:  ElementNode,
					Tag:   tag,
					Attr:  top.attr,
					Open:  s[top.start:top.innerStart],
					Inner: s[top.innerStart:start],
					Start: top.start,
					End:   pos,
				})
			}
		}
	}
}

// loneElement returns the only element in nodes
// if every other node is whitespace-only text.
// It returns nil if there are zero or several elements,
// significant text, or comments.
func loneElement(nodes []Node) *Node {
	var elem *Node
	for i := range nodes {
		n := &nodes[i]
		switch {
		case n.isBlank():
		case n.Kind == ElementNode && elem == nil:
			elem = n
		default:
			return nil
		}
	}
	return elem
}

var voidElements = map[atom.Atom]struct{}{
	atom.Area:   {},
	atom.Base:   {},
	atom.Br:     {},
	atom.Col:    {},
	atom.Embed:  {},
	atom.Hr:     {},
	atom.Img:    {},
	atom.Input:  {},
	atom.Link:   {},
	atom.Meta:   {},
	atom.Param:  {},
	atom.Source: {},
	atom.Track:  {},
	atom.Wbr:    {},
}

func isVoidElement(tag string) bool {
	a := atom.Lookup([]byte(tag))
	if a == 0 {
		return false
	}
	_, ok := voidElements[a]
	return ok
}
