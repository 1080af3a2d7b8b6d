package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/samber/lo"

	"github.com/eslsoft/vocstudy/internal/app"
	"github.com/eslsoft/vocstudy/internal/entity"
	"github.com/eslsoft/vocstudy/internal/usecase"
)

// withContainer builds the application graph for a single command run.
func withContainer(fn func(c *app.Container) error) error {
	container, cleanup, err := app.Initialize()
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(container)
}

func renderLibrary(w io.Writer, view *usecase.LibraryView) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tWORDS\tLEARNED\tWEAK")
	row := func(s usecase.SetSummary) {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d/%d (%d%%)\t%d\n",
			s.ID, s.Title, s.WordCount, s.Progress.Learned, s.Progress.Total, s.Progress.Percent, s.WeakCount)
	}
	if view.WeakReview != nil {
		fmt.Fprintln(tw, "# review\t\t\t\t")
		row(*view.WeakReview)
	}
	for _, section := range view.Sections {
		fmt.Fprintf(tw, "# %s\t\t\t\t\n", section.Category.Title)
		lo.ForEach(section.Sets, func(s usecase.SetSummary, _ int) { row(s) })
	}
	if view.WeakReview == nil && len(view.Sections) == 0 {
		fmt.Fprintln(tw, "(no sets)\t\t\t\t")
	}
	return tw.Flush()
}

func renderStats(w io.Writer, stats entity.Stats) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Words learned\t%d\n", stats.TotalWords)
	fmt.Fprintf(tw, "Weak words\t%d\n", stats.WeakWords)
	fmt.Fprintf(tw, "Sessions\t%d\n", stats.Sessions)
	fmt.Fprintf(tw, "Minutes studied\t%d\n", stats.TotalMinutes)
	fmt.Fprintf(tw, "Learn accuracy\t%d%% (%d/%d)\n",
		stats.LearnAccuracy.Percent(), stats.LearnAccuracy.Correct, stats.LearnAccuracy.Attempts)
	fmt.Fprintf(tw, "Matching accuracy\t%d%% (%d/%d)\n",
		stats.MatchingAccuracy.Percent(), stats.MatchingAccuracy.Correct, stats.MatchingAccuracy.Attempts)
	return tw.Flush()
}

func renderSummary(w io.Writer, summary *entity.SessionSummary) {
	fmt.Fprintf(w, "\nSession complete (%s, %d min)\n", summary.Mode, summary.Minutes)
	switch {
	case summary.Flashcard != nil:
		s := summary.Flashcard
		fmt.Fprintf(w, "known %d, still learning %d\n", s.Known, s.Learning)
	case summary.Learn != nil:
		s := summary.Learn
		fmt.Fprintf(w, "%d/%d correct (%d%%): %s\n", s.Correct, s.Total, s.Accuracy, verdictMessage(s.Verdict))
	case summary.Matching != nil:
		s := summary.Matching
		fmt.Fprintf(w, "%d pairs in %ds, %d wrong attempts, accuracy %d%%\n",
			s.TotalPairs, s.ElapsedSeconds, s.WrongAttempts, s.Accuracy)
	}
	if summary.CanRelearn {
		fmt.Fprintln(w, "some words need review: run again with --relearn")
	}
}

func verdictMessage(v entity.LearnVerdict) string {
	switch v {
	case entity.LearnPerfect:
		return "perfect!"
	case entity.LearnGood:
		return "good job"
	default:
		return "keep trying"
	}
}

func renderMatchingBoard(w io.Writer, view *usecase.MatchingView) {
	fmt.Fprintf(w, "batch %d/%d, %d/%d pairs, %ds\n",
		view.ActiveBatch+1, view.BatchCount, view.CorrectPairs, view.TotalPairs, view.ElapsedSeconds)
	for i, card := range view.Cards {
		mark := " "
		switch {
		case card.Matched:
			mark = "✓"
		case card.Error:
			mark = "✗"
		case card.Selected:
			mark = "*"
		}
		content := card.Content
		if card.Matched {
			content = strings.Repeat("-", len([]rune(content)))
		}
		fmt.Fprintf(w, "%2d %s %s\n", i+1, mark, content)
	}
}
