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

// Package vectors provides stored heading values observed in content exports
// along with their expected canonical forms.
package vectors

import (
	_ "embed"
	"encoding/json"
)

// Vector is a single stored value and its expected outcome.
type Vector struct {
	Name    string
	Raw     string
	Changed bool
	Value   string
	Skipped string
}

//go:embed vectors.json
var vectorData []byte

// Load returns the test vectors.
func Load() ([]Vector, error) {
	var vectors []Vector
	if err := json.Unmarshal(vectorData, &vectors); err != nil {
		return nil, err
	}
	return vectors, nil
}
