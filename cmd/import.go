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
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/vocstudy/internal/usecase/backup"
)

const (
	importInputKey   = "backup.import.input"
	importGzipKey    = "backup.import.gzip"
	importKeysKey    = "backup.import.keys"
	importReplaceKey = "backup.import.replace"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Restore study progress from an export file",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		src := viper.GetString(importInputKey)
		if src == "" {
			return errors.New("--input is required, use - for stdin")
		}

		service, cleanup, err := openBackupService()
		if err != nil {
			return err
		}
		defer cleanup()

		in, err := openBackupFile(src, cmd.InOrStdin(), viper.GetBool(importGzipKey) || isGzipPath(src))
		if err != nil {
			return err
		}
		defer func() { err = errors.Join(err, in.Close()) }()

		opts := []backup.ImportOption{backup.WithReplace(viper.GetBool(importReplaceKey))}
		if keys := keysFromConfig(importKeysKey); len(keys) > 0 {
			opts = append(opts, backup.WithImportKeys(keys))
		}
		if err := service.Import(cmd.Context(), in, opts...); err != nil {
			return fmt.Errorf("import backup: %w", err)
		}

		from := src
		if src == "-" {
			from = "stdin"
		}
		cmd.Printf("import finished: %s\n", from)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringP("input", "i", "", "backup file path, - for stdin")
	importCmd.Flags().Bool("gzip", false, "input is gzip compressed")
	importCmd.Flags().StringSlice("keys", nil, "only import these keys, comma separated or repeated")
	importCmd.Flags().Bool("replace", false, "remove stored keys missing from the backup")

	bindFlagToViper(importInputKey, importCmd.Flags().Lookup("input"))
	bindFlagToViper(importGzipKey, importCmd.Flags().Lookup("gzip"))
	bindFlagToViper(importKeysKey, importCmd.Flags().Lookup("keys"))
	bindFlagToViper(importReplaceKey, importCmd.Flags().Lookup("replace"))
}
