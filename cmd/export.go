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
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/vocstudy/internal/usecase/backup"
)

const (
	exportOutputKey = "backup.export.output"
	exportGzipKey   = "backup.export.gzip"
	exportKeysKey   = "backup.export.keys"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export study progress and the saved session as NDJSON",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		compress := viper.GetBool(exportGzipKey)
		dest := viper.GetString(exportOutputKey)
		if dest == "" {
			dest = defaultExportFilename(time.Now(), compress)
		}
		compress = compress || isGzipPath(dest)

		service, cleanup, err := openBackupService()
		if err != nil {
			return err
		}
		defer cleanup()

		out, err := createBackupFile(dest, cmd.OutOrStdout(), compress)
		if err != nil {
			return err
		}
		defer func() { err = errors.Join(err, out.Close()) }()

		opts := []backup.ExportOption{backup.WithProgressReporter(&cliProgress{out: cmd.ErrOrStderr()})}
		if keys := keysFromConfig(exportKeysKey); len(keys) > 0 {
			opts = append(opts, backup.WithKeys(keys))
		}
		if err := service.Export(cmd.Context(), out, opts...); err != nil {
			return fmt.Errorf("export backup: %w", err)
		}
		if dest != "-" {
			cmd.PrintErrf("export finished: %s\n", dest)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", "", "backup file path, - for stdout")
	exportCmd.Flags().Bool("gzip", false, "gzip the output")
	exportCmd.Flags().StringSlice("keys", nil, "only export these keys, comma separated or repeated")

	bindFlagToViper(exportOutputKey, exportCmd.Flags().Lookup("output"))
	bindFlagToViper(exportGzipKey, exportCmd.Flags().Lookup("gzip"))
	bindFlagToViper(exportKeysKey, exportCmd.Flags().Lookup("keys"))
}

func defaultExportFilename(now time.Time, gzipEnabled bool) string {
	filename := fmt.Sprintf("vocstudy-backup-%s.jsonl", now.UTC().Format("20060102-150405"))
	if gzipEnabled {
		filename += ".gz"
	}
	return filename
}

// cliProgress writes a running key count to out.
type cliProgress struct {
	out   io.Writer
	total int
	done  int
}

func (p *cliProgress) Start(total int) {
	p.total, p.done = max(total, 0), 0
	fmt.Fprintf(p.out, "exporting %d keys\n", p.total)
}

func (p *cliProgress) Advance(key string) {
	p.done++
	fmt.Fprintf(p.out, "%*d/%d %s\n", len(strconv.Itoa(p.total)), p.done, p.total, key)
}

func (p *cliProgress) Finish() {
	fmt.Fprintf(p.out, "done, %d of %d keys written\n", p.done, p.total)
}
