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
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/eslsoft/vocstudy/internal/app"
)

const shutdownGrace = 5 * time.Second

// httpRunner is the part of the server the serve command drives.
type httpRunner interface {
	StartHTTP() error
	Shutdown(ctx context.Context) error
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the study HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		container, cleanup, err := app.Initialize()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serveUntilDone(ctx, container.Server, container.Logger, shutdownGrace)
	},
}

// serveUntilDone runs srv until it fails or ctx ends. A cancelled ctx drains
// in-flight requests for at most grace before returning.
func serveUntilDone(ctx context.Context, srv httpRunner, logger logrus.FieldLogger, grace time.Duration) error {
	failed := make(chan error, 1)
	go func() { failed <- srv.StartHTTP() }()

	select {
	case err := <-failed:
		return err
	case <-ctx.Done():
	}

	logger.WithField("grace", grace).Info("stopping HTTP API")
	drainCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-failed
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "HTTP port (overrides server.http_port)")
	serveCmd.Flags().String("host", "", "listen host (overrides server.host)")
	bindFlagToViper("server.http_port", serveCmd.Flags().Lookup("port"))
	bindFlagToViper("server.host", serveCmd.Flags().Lookup("host"))
}
