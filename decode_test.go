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

import "testing"

func TestEntityDecoder(t *testing.T) {
	tests := []struct {
		s          string
		want       string
		wantPasses int
	}{
		{"", "", 0},
		{"plain", "plain", 0},
		{"  padded  ", "padded", 0},
		{" Tom &amp; Jerry ", "Tom & Jerry", 1},
		{"&lt;p&gt;", "<p>", 1},
		{"&amp;lt;p&amp;gt;", "<p>", 2},
		{"&amp;amp;lt;", "<", 3},
		{"Caf&eacute; &#8364;5", "Café €5", 1},
		{"Fish & Chips", "Fish & Chips", 0},
		// Stops at the pass limit without resolving everything.
		{"&amp;amp;amp;amp;amp;amp;lt;", "&amp;lt;", DefaultMaxDecodePasses},
	}
	for _, test := range tests {
		got, passes := new(EntityDecoder).Decode(test.s)
		if got != test.want || passes != test.wantPasses {
			t.Errorf("new(EntityDecoder).Decode(%q) = %q, %d; want %q, %d",
				test.s, got, passes, test.want, test.wantPasses)
		}
	}
}

func TestEntityDecoderMaxPasses(t *testing.T) {
	d := &EntityDecoder{
		Unescape:  func(s string) string { return s + "!" },
		MaxPasses: 3,
	}
	if got, passes := d.Decode("a"); got != "a!!!" || passes != 3 {
		t.Errorf("d.Decode(%q) = %q, %d; want %q, %d", "a", got, passes, "a!!!", 3)
	}
}

func TestDecodeUntil(t *testing.T) {
	const s = "&amp;lt;p&amp;gt;Fish &amp;amp;amp; Chips&amp;lt;/p&amp;gt;"
	const want = "<p>Fish &amp; Chips</p>"
	got, passes := new(EntityDecoder).decodeUntil(s, hasHTMLTag)
	if got != want || passes != 2 {
		t.Errorf("decodeUntil(%q, hasHTMLTag) = %q, %d; want %q, 2", s, got, passes, want)
	}
}

func TestDecode(t *testing.T) {
	if got, want := Decode("&amp;lt;b&amp;gt;"), "<b>"; got != want {
		t.Errorf("Decode(%q) = %q; want %q", "&amp;lt;b&amp;gt;", got, want)
	}
}
