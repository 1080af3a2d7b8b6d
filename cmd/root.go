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
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vocstudy",
	Short: "Vocabulary study sessions: flashcards, learn quizzes and matching games",
	Long: `vocstudy studies curated vocabulary sets with three modes (flashcard,
learn and matching), remembers learned and weak words, and can resume an
interrupted session. Run "vocstudy serve" for the HTTP API or "vocstudy study"
for a terminal session.`,
	SilenceUsage: true,
}

// Execute runs the root command; called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("catalog-dir", "", "directory holding the catalog index and topic files")
	flags.String("storage-driver", "", "storage backend: sqlite3, postgres, pgx, redis or memory")
	flags.String("storage-path", "", "sqlite database file")
	flags.String("log-level", "", "log level (debug, info, warn, error)")

	bindFlagToViper("catalog.dir", flags.Lookup("catalog-dir"))
	bindFlagToViper("storage.driver", flags.Lookup("storage-driver"))
	bindFlagToViper("storage.path", flags.Lookup("storage-path"))
	bindFlagToViper("log.level", flags.Lookup("log-level"))
}
