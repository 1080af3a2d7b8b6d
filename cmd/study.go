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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/eslsoft/vocstudy/internal/app"
	"github.com/eslsoft/vocstudy/internal/entity"
	"github.com/eslsoft/vocstudy/internal/usecase"
)

const (
	settlePoll    = 50 * time.Millisecond
	settleTimeout = 10 * time.Second
)

var errQuit = errors.New("quit")

var studyCmd = &cobra.Command{
	Use:   "study",
	Short: "Run a study session in the terminal",
	Example: `  vocstudy study --set animals --mode learn --policy fixed --count 10
  vocstudy study --resume
  vocstudy study --repeat
  vocstudy study --set animals --relearn`,
	RunE: func(cmd *cobra.Command, args []string) error {
		setID, _ := cmd.Flags().GetString("set")
		modeFlag, _ := cmd.Flags().GetString("mode")
		policyFlag, _ := cmd.Flags().GetString("policy")
		count, _ := cmd.Flags().GetInt("count")
		resume, _ := cmd.Flags().GetBool("resume")
		repeat, _ := cmd.Flags().GetBool("repeat")
		relearn, _ := cmd.Flags().GetBool("relearn")

		mode, err := entity.ParseStudyMode(modeFlag)
		if err != nil {
			return err
		}
		policy, err := entity.ParseSelectionPolicy(policyFlag, count)
		if err != nil {
			return err
		}
		if !resume && !repeat && setID == "" {
			return errors.New("--set is required unless --resume or --repeat is given")
		}

		return withContainer(func(c *app.Container) error {
			ctx := cmd.Context()
			core := c.Core

			var view *usecase.SessionView
			switch {
			case resume:
				view, err = core.Resume(ctx)
			case repeat:
				view, err = core.RepeatLastSession(ctx)
			case relearn:
				if _, err = core.SelectSet(ctx, entity.SetByID(setID)); err == nil {
					view, err = core.StartRelearn(ctx, mode)
				}
			default:
				view, err = core.StartSession(ctx, entity.SetByID(setID), mode, policy)
			}
			if err != nil {
				return err
			}

			s := &terminalSession{
				ctx:  ctx,
				core: core,
				in:   bufio.NewScanner(cmd.InOrStdin()),
				out:  cmd.OutOrStdout(),
			}
			return s.run(view)
		})
	},
}

func init() {
	rootCmd.AddCommand(studyCmd)

	studyCmd.Flags().String("set", "", "set id to study, as listed by the sets command")
	studyCmd.Flags().String("mode", string(entity.ModeFlashcard), "flashcard, learn or matching")
	studyCmd.Flags().String("policy", string(entity.PolicyAll), "all, fixed, unlearned or custom")
	studyCmd.Flags().Int("count", 0, "word count for the fixed, unlearned and custom policies")
	studyCmd.Flags().Bool("resume", false, "continue the interrupted session")
	studyCmd.Flags().Bool("repeat", false, "repeat the last session configuration")
	studyCmd.Flags().Bool("relearn", false, "study only the weak words of --set")
}

// terminalSession drives a SessionController from line-based input.
type terminalSession struct {
	ctx  context.Context
	core usecase.SessionController
	in   *bufio.Scanner
	out  io.Writer
}

func (s *terminalSession) run(view *usecase.SessionView) error {
	fmt.Fprintf(s.out, "%s: %s (%d words)\n", view.Mode, view.SetTitle, view.Total)
	if view.Notice != "" {
		fmt.Fprintln(s.out, view.Notice)
	}
	var err error
	for !view.Completed {
		switch view.Mode {
		case entity.ModeFlashcard:
			view, err = s.flashcardStep(view)
		case entity.ModeLearn:
			view, err = s.learnStep(view)
		case entity.ModeMatching:
			view, err = s.matchingStep(view)
		default:
			return fmt.Errorf("unsupported mode %q", view.Mode)
		}
		if errors.Is(err, errQuit) {
			fmt.Fprintln(s.out, "session saved, continue later with --resume")
			return s.core.EndSession(s.ctx)
		}
		if err != nil {
			return err
		}
	}
	if view.Summary != nil {
		renderSummary(s.out, view.Summary)
	}
	return nil
}

func (s *terminalSession) prompt(label string) (string, error) {
	fmt.Fprint(s.out, label)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", errQuit
	}
	line := strings.TrimSpace(s.in.Text())
	if strings.EqualFold(line, "q") {
		return "", errQuit
	}
	return line, nil
}

func (s *terminalSession) flashcardStep(view *usecase.SessionView) (*usecase.SessionView, error) {
	card := view.Flashcard.Card
	fmt.Fprintf(s.out, "\n[%d/%d] %s", view.Index+1, view.Total, card.Word)
	if card.IPA != "" {
		fmt.Fprintf(s.out, " %s", card.IPA)
	}
	fmt.Fprintln(s.out)
	if view.Flashcard.Flipped {
		fmt.Fprintf(s.out, "  = %s\n", card.Meaning)
		if card.Example != "" {
			fmt.Fprintf(s.out, "  e.g. %s\n", card.Example)
		}
	}
	for {
		line, err := s.prompt("[f]lip [k]nown [l]earning [q]uit > ")
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(line) {
		case "f", "":
			return s.core.Flip(s.ctx)
		case "k":
			return s.core.Swipe(s.ctx, entity.SwipeKnown)
		case "l":
			return s.core.Swipe(s.ctx, entity.SwipeLearning)
		}
	}
}

func (s *terminalSession) learnStep(view *usecase.SessionView) (*usecase.SessionView, error) {
	q := view.Learn.Question
	fmt.Fprintf(s.out, "\n[%d/%d] %s\n", view.Index+1, view.Total, q.Prompt)
	for i, opt := range q.Options {
		fmt.Fprintf(s.out, "  %d) %s\n", i+1, opt.Text)
	}
	for {
		line, err := s.prompt("answer > ")
		if err != nil {
			return nil, err
		}
		n, convErr := strconv.Atoi(line)
		if convErr != nil || n < 1 || n > len(q.Options) {
			continue
		}
		answered, err := s.core.SubmitAnswer(s.ctx, q.Options[n-1].ID)
		if err != nil {
			return nil, err
		}
		if fb := answered.Learn; fb != nil && fb.Feedback != nil {
			if fb.Feedback.Correct {
				fmt.Fprintln(s.out, "correct")
			} else {
				correct, _ := lo.Find(q.Options, func(o entity.LearnOption) bool { return o.ID == fb.Feedback.CorrectID })
				fmt.Fprintf(s.out, "wrong, the answer is %s\n", correct.Text)
			}
		}
		return s.settle(func(v *usecase.SessionView) bool {
			return v.Completed || v.Learn == nil || !v.Learn.Locked
		})
	}
}

func (s *terminalSession) matchingStep(view *usecase.SessionView) (*usecase.SessionView, error) {
	fmt.Fprintln(s.out)
	renderMatchingBoard(s.out, view.Matching)
	for {
		line, err := s.prompt("card > ")
		if err != nil {
			return nil, err
		}
		n, convErr := strconv.Atoi(line)
		if convErr != nil || n < 1 || n > len(view.Matching.Cards) {
			continue
		}
		if _, err := s.core.SelectCard(s.ctx, view.Matching.Cards[n-1].ID); err != nil {
			return nil, err
		}
		return s.settle(func(v *usecase.SessionView) bool {
			if v.Completed || v.Matching == nil {
				return true
			}
			pending := lo.CountBy(v.Matching.Cards, func(c usecase.MatchCardView) bool { return c.Selected && !c.Matched })
			flashing := lo.ContainsBy(v.Matching.Cards, func(c usecase.MatchCardView) bool { return c.Error })
			return pending < 2 && !flashing
		})
	}
}

// settle polls the controller until the delayed transitions it is waiting for have run.
func (s *terminalSession) settle(done func(*usecase.SessionView) bool) (*usecase.SessionView, error) {
	deadline := time.Now().Add(settleTimeout)
	for {
		view, err := s.core.View(s.ctx)
		if err != nil {
			return nil, err
		}
		if done(view) || time.Now().After(deadline) {
			return view, nil
		}
		select {
		case <-s.ctx.Done():
			return nil, s.ctx.Err()
		case <-time.After(settlePoll):
		}
	}
}
