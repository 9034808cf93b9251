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

import "go4.org/bytereplacer"

// textEscaper matches the escaping the content editor applies
// to plain text headings.
var textEscaper = bytereplacer.New(
	"&", "&amp;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
	`'`, "&#039;",
)

// EscapeText escapes the characters reserved in HTML text and attributes.
func EscapeText(s string) string {
	return string(textEscaper.Replace([]byte(s)))
}
