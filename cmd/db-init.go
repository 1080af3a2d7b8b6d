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
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	kvrepo "github.com/eslsoft/vocstudy/internal/adapter/repository"
	"github.com/eslsoft/vocstudy/internal/infrastructure/config"
	"github.com/eslsoft/vocstudy/internal/infrastructure/database"
	"github.com/eslsoft/vocstudy/internal/infrastructure/server"
)

//go:embed samplecatalog
var sampleCatalog embed.FS

const sampleCatalogRoot = "samplecatalog"

// dbInitCmd prepares the storage backend and optionally installs the sample catalog.
var dbInitCmd = &cobra.Command{
	Use:   "db-init",
	Short: "Create the storage schema and install a starter catalog",
	Long: `Create the key-value table for SQL storage drivers (redis and memory need no
schema). With --sample-catalog the bundled vocabulary sets are written to
catalog.dir. go-sqlite3 needs a CGO_ENABLED=1 build.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		withSample, _ := cmd.Flags().GetBool("sample-catalog")
		force, _ := cmd.Flags().GetBool("force")

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger, err := server.NewLogger(cfg)
		if err != nil {
			return err
		}

		_, cleanup, err := database.NewKeyValueStore(cfg, logger)
		if err != nil {
			return fmt.Errorf("prepare storage: %w", err)
		}
		cleanup()
		driver, _ := cfg.DatabaseDriver()
		logger.WithField("driver", driver).Info("storage ready")

		if !withSample {
			return nil
		}
		written, err := installSampleCatalog(cfg.Catalog.Dir, cfg.Catalog.Index, force)
		if err != nil {
			return err
		}
		sets, err := countCatalogSets(cmd.Context(), cfg.Catalog.Dir, cfg.Catalog.Index, logger)
		if err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{
			"dir":   cfg.Catalog.Dir,
			"files": written,
			"sets":  sets,
		}).Info("sample catalog installed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbInitCmd)
	dbInitCmd.Flags().Bool("sample-catalog", false, "write the bundled sample catalog to catalog.dir")
	dbInitCmd.Flags().Bool("force", false, "overwrite catalog files that already exist")
}

var errCatalogExists = errors.New("catalog file already exists, use --force to overwrite")

// installSampleCatalog copies the embedded catalog into dir, renaming its index to
// index. It returns the number of files written.
func installSampleCatalog(dir, index string, force bool) (int, error) {
	if index == "" {
		index = kvrepo.DefaultIndexFile
	}
	src, err := fs.Sub(sampleCatalog, sampleCatalogRoot)
	if err != nil {
		return 0, err
	}

	written := 0
	err = fs.WalkDir(src, ".", func(name string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return walkErr
		}
		target := name
		if name == kvrepo.DefaultIndexFile {
			target = index
		}
		dst := filepath.Join(dir, filepath.FromSlash(target))
		if !force {
			if _, statErr := os.Stat(dst); statErr == nil {
				return fmt.Errorf("%s: %w", dst, errCatalogExists)
			}
		}
		raw, err := fs.ReadFile(src, name)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("create catalog directory: %w", err)
		}
		if err := os.WriteFile(dst, raw, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", dst, err)
		}
		written++
		return nil
	})
	return written, err
}

func countCatalogSets(ctx context.Context, dir, index string, logger logrus.FieldLogger) (int, error) {
	catalog, err := kvrepo.NewFileCatalogSource(os.DirFS(dir), path.Clean(filepath.ToSlash(index)), logger).LoadCatalog(ctx)
	if err != nil {
		return 0, err
	}
	return len(catalog.Sets), nil
}
