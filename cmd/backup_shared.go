package cmd

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/eslsoft/vocstudy/internal/infrastructure/config"
	"github.com/eslsoft/vocstudy/internal/infrastructure/database"
	"github.com/eslsoft/vocstudy/internal/infrastructure/server"
	"github.com/eslsoft/vocstudy/internal/usecase/backup"
)

func keysFromConfig(key string) []string {
	return normalizeKeys(viper.GetStringSlice(key))
}

// normalizeKeys splits comma separated values and drops blanks. Keys are case sensitive.
func normalizeKeys(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	result := make([]string, 0, len(values))
	for _, value := range values {
		for _, name := range strings.Split(value, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			result = append(result, name)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// openBackupService connects to the configured store without loading the catalog.
func openBackupService() (*backup.Service, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := server.NewLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	store, cleanup, err := database.NewKeyValueStore(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}
	service, err := backup.NewService(store, backup.WithLogger(logger))
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("create backup service: %w", err)
	}
	return service, cleanup, nil
}

func bindFlagToViper(key string, flag *pflag.Flag) {
	if flag == nil {
		return
	}
	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// closerStack closes the layers of a backup stream innermost first and keeps
// the first error.
type closerStack []io.Closer

func (cs closerStack) Close() error {
	var first error
	for i := len(cs) - 1; i >= 0; i-- {
		if err := cs[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type backupWriter struct {
	io.Writer
	closerStack
}

type backupReader struct {
	io.Reader
	closerStack
}

// isGzipPath reports whether path names a gzip file. "-" never does.
func isGzipPath(path string) bool {
	return path != "-" && strings.EqualFold(filepath.Ext(path), ".gz")
}

// createBackupFile opens the export destination. "-" writes to stdout, which
// is never closed.
func createBackupFile(path string, stdout io.Writer, compress bool) (io.WriteCloser, error) {
	bw := &backupWriter{Writer: stdout}
	if path != "-" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("create backup file: %w", err)
		}
		bw.Writer, bw.closerStack = f, closerStack{f}
	}
	if compress {
		gz := gzip.NewWriter(bw.Writer)
		bw.Writer, bw.closerStack = gz, append(bw.closerStack, gz)
	}
	return bw, nil
}

// openBackupFile opens the import source. "-" reads from stdin.
func openBackupFile(path string, stdin io.Reader, compressed bool) (io.ReadCloser, error) {
	br := &backupReader{Reader: stdin}
	if path != "-" {
		f, err := os.Open(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("open backup file: %w", err)
		}
		br.Reader, br.closerStack = f, closerStack{f}
	}
	if compressed {
		gz, err := gzip.NewReader(br.Reader)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("open gzip stream: %w", err), br.Close())
		}
		br.Reader, br.closerStack = gz, append(br.closerStack, gz)
	}
	return br, nil
}
