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

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"zombiezen.com/go/headingfix"
)

func newCheckCommand() *cobra.Command {
	c := new(headingfix.Canonicalizer)
	cmd := &cobra.Command{
		Use:   "check VALUE",
		Short: "Canonicalize a single value and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printResult(cmd.OutOrStdout(), args[0], c.Canonicalize(args[0]))
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVar(&c.KeepWrapperAttributes, "keep-wrapper-attributes", false, "keep attributes of paragraphs promoted to headings")
	f.IntVar(&c.MaxUnwrapDepth, "max-unwrap-depth", headingfix.DefaultMaxUnwrapDepth, "maximum number of wrapper layers")
	f.IntVar(&c.Decoder.MaxPasses, "max-decode-passes", headingfix.DefaultMaxDecodePasses, "maximum number of unescaping passes")
	return cmd
}

func printResult(w io.Writer, raw string, res headingfix.Result) {
	status := "unchanged"
	value := raw
	switch {
	case res.Changed:
		status = "changed"
		value = res.Value
	case res.Skipped != "":
		status = string(res.Skipped)
	}
	fmt.Fprintf(w, "status: %s\n", status)
	fmt.Fprintf(w, "value: %s\n", value)
	if res.Diagnostics.Shape != 0 {
		fmt.Fprintf(w, "shape: %v\n", res.Diagnostics.Shape)
	}
	fmt.Fprintf(w, "decode passes: %d\n", res.Diagnostics.DecodePasses)
	fmt.Fprintf(w, "layers: %d\n", res.Diagnostics.Layers)
	if res.Diagnostics.EscapedWrapper {
		fmt.Fprintln(w, "escaped wrapper: true")
	}
}
