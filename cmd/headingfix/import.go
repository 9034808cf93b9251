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
	"github.com/spf13/cobra"

	"zombiezen.com/go/headingfix/internal/config"
	"zombiezen.com/go/headingfix/internal/store/jsonstore"
	"zombiezen.com/go/headingfix/internal/store/sqlitestore"
)

func newImportCommand() *cobra.Command {
	contentTypes := []string{config.Default().ContentType}
	cmd := &cobra.Command{
		Use:   "import EXPORT DATABASE",
		Short: "Copy entries from an export file into a SQLite database",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()
			src, err := jsonstore.Open(args[0])
			if err != nil {
				return err
			}
			dst, err := sqlitestore.Open(ctx, args[1])
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := dst.Close(); err == nil {
					err = closeErr
				}
			}()

			locales, err := src.Locales(ctx)
			if err != nil {
				return err
			}
			defaultLocale := src.DefaultLocale()
			for _, code := range locales {
				if err := dst.AddLocale(ctx, code, code == defaultLocale); err != nil {
					return err
				}
			}
			n := 0
			for _, ct := range contentTypes {
				entries, err := src.Entries(ctx, ct)
				if err != nil {
					return err
				}
				for _, e := range entries {
					if err := dst.Put(ctx, e); err != nil {
						return err
					}
				}
				n += len(entries)
			}
			cmd.Printf("Imported %d entries and %d locales.\n", n, len(locales))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&contentTypes, "content-type", contentTypes, "content type `ID` to import (may be repeated)")
	return cmd
}
