/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/eslsoft/vocstudy/internal/app"
	"github.com/eslsoft/vocstudy/internal/entity"
	"github.com/eslsoft/vocstudy/internal/usecase"
)

var setsCmd = &cobra.Command{
	Use:   "sets",
	Short: "List vocabulary sets with their progress",
	Example: `  vocstudy sets --search animal
  vocstudy sets --progress lt50
  vocstudy sets --filter 'category == "topic" && percent < 100' --order-by 'weak desc'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		progress, _ := cmd.Flags().GetString("progress")
		filter, _ := cmd.Flags().GetString("filter")
		orderBy, _ := cmd.Flags().GetString("order-by")
		asJSON, _ := cmd.Flags().GetBool("json")

		pf, err := entity.ParseProgressFilter(progress)
		if err != nil {
			return err
		}
		return withContainer(func(c *app.Container) error {
			view, err := c.Library.Browse(usecase.LibraryQuery{
				Search:   search,
				Progress: pf,
				Filter:   filter,
				OrderBy:  orderBy,
			})
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}
			return renderLibrary(cmd.OutOrStdout(), view)
		})
	},
}

func init() {
	rootCmd.AddCommand(setsCmd)

	setsCmd.Flags().String("search", "", "case-insensitive match on title or description")
	setsCmd.Flags().String("progress", "all", "all, completed, incomplete, gt50 or lt50")
	setsCmd.Flags().String("filter", "", "CEL filter over id, category, title, words, percent, weak and dynamic")
	setsCmd.Flags().String("order-by", "", "catalog, title, percent, words or weak, optionally followed by asc or desc")
	setsCmd.Flags().Bool("json", false, "print JSON instead of a table")
}
