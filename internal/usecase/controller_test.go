package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eslsoft/vocstudy/internal/entity"
)

func TestFlashcardSessionRecordsLearnedAndWeakWords(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	view, err := env.core.StartSession(ctx, entity.SetByID("A"), entity.ModeFlashcard, entity.AllWords())
	require.NoError(t, err)
	require.Equal(t, 5, view.Total)
	require.Equal(t, entity.WordID("a1"), view.Flashcard.Card.ID)

	for range 3 {
		view, err = env.core.Swipe(ctx, entity.SwipeKnown)
		require.NoError(t, err)
	}
	for range 2 {
		view, err = env.core.Swipe(ctx, entity.SwipeLearning)
		require.NoError(t, err)
	}

	require.True(t, view.Completed)
	require.NotNil(t, view.Summary)
	assert.Equal(t, entity.FlashcardSummary{Known: 3, Learning: 2, UniqueWrong: 2}, *view.Summary.Flashcard)
	assert.True(t, view.Summary.CanRelearn)

	for _, id := range []entity.WordID{"a1", "a2", "a3"} {
		assert.True(t, env.mastery.IsLearned(id), "expected %s learned", id)
	}
	assert.Equal(t, []entity.WordID{"a4", "a5"}, env.mastery.WeakIDs("A"))
	assert.Nil(t, env.snapshots.stored(), "completed session must drop its snapshot")

	stored := env.repo.stored()
	require.NotNil(t, stored)
	assert.Equal(t, 3, stored.TotalWords)
	assert.Equal(t, 1, stored.Sessions)
}

func TestFlashcardRejectsUnknownDirectionAndFlips(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.core.StartSession(ctx, entity.SetByID("B"), entity.ModeFlashcard, entity.AllWords())
	require.NoError(t, err)

	_, err = env.core.Swipe(ctx, entity.SwipeDirection("up"))
	require.ErrorIs(t, err, entity.ErrInvalidSwipe)

	view, err := env.core.Flip(ctx)
	require.NoError(t, err)
	assert.True(t, view.Flashcard.Flipped)

	view, err = env.core.Swipe(ctx, entity.SwipeKnown)
	require.NoError(t, err)
	assert.False(t, view.Flashcard.Flipped, "next card starts face up")
	assert.Equal(t, 1, view.Index)
}

func TestLearnSingleWordSetUsesCrossSetDistractors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	view, err := env.core.StartSession(ctx, entity.SetByID("C"), entity.ModeLearn, entity.AllWords())
	require.NoError(t, err)
	question := view.Learn.Question
	require.NotNil(t, question)
	require.Len(t, question.Options, LearnOptionCount)

	foreign := lo.CountBy(question.Options, func(opt entity.LearnOption) bool { return opt.SourceSetID != "C" })
	assert.Equal(t, 3, foreign)
	assert.Len(t, lo.UniqBy(question.Options, func(opt entity.LearnOption) entity.WordID { return opt.ID }), LearnOptionCount)

	view, err = env.core.SubmitAnswer(ctx, "c1")
	require.NoError(t, err)
	require.True(t, view.Learn.Locked)
	require.NotNil(t, view.Learn.Feedback)
	assert.True(t, view.Learn.Feedback.Correct)

	env.tick(time.Second)

	view, err = env.core.View(ctx)
	require.NoError(t, err)
	require.True(t, view.Completed)
	assert.Equal(t, 1, view.Summary.Learn.Correct)
	assert.Equal(t, 0, view.Summary.Learn.Wrong)
	assert.Equal(t, 100, view.Summary.Learn.Accuracy)
	assert.Equal(t, entity.LearnPerfect, view.Summary.Learn.Verdict)
	assert.False(t, view.Summary.CanRelearn)

	assert.True(t, env.mastery.IsLearned("c1"))
	assert.Empty(t, env.mastery.WeakIDs("C"))
	assert.Equal(t, entity.Accuracy{Attempts: 1, Correct: 1}, env.mastery.Stats().LearnAccuracy)
}

func TestLearnIgnoresAnswersWhileLocked(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	view, err := env.core.StartSession(ctx, entity.SetByID("B"), entity.ModeLearn, entity.AllWords())
	require.NoError(t, err)
	question := view.Learn.Question

	_, err = env.core.SubmitAnswer(ctx, "not-an-option")
	require.ErrorIs(t, err, entity.ErrUnknownWord)

	wrong, ok := lo.Find(question.Options, func(opt entity.LearnOption) bool { return opt.ID != question.WordID })
	require.True(t, ok)
	view, err = env.core.SubmitAnswer(ctx, wrong.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Learn.Wrong)
	assert.False(t, view.Learn.Feedback.Correct)
	assert.Equal(t, question.WordID, view.Learn.Feedback.CorrectID)

	view, err = env.core.SubmitAnswer(ctx, question.WordID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Learn.Wrong)
	assert.Equal(t, 0, view.Learn.Correct)

	env.tick(time.Second)
	view, err = env.core.View(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Index)
	assert.False(t, view.Learn.Locked)
	assert.Nil(t, view.Learn.Feedback)
}

func TestLearnQuestionsKeepDirectionAndOptions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	view, err := env.core.StartSession(ctx, entity.SetByID("D"), entity.ModeLearn, entity.FixedCount(8))
	require.NoError(t, err)
	require.Equal(t, 8, view.Total)

	for i := 0; i < 8; i++ {
		q := view.Learn.Question
		require.NotNil(t, q)
		require.Len(t, q.Options, LearnOptionCount)
		set, _ := env.catalog.Set("D")
		word, ok := set.Lookup(q.WordID)
		require.True(t, ok)
		if q.EngToViet {
			assert.Equal(t, word.Word, q.Prompt)
		} else {
			assert.Equal(t, word.Meaning, q.Prompt)
		}
		_, err = env.core.SubmitAnswer(ctx, q.WordID)
		require.NoError(t, err)
		env.tick(time.Second)
		view, err = env.core.View(ctx)
		require.NoError(t, err)
	}
	require.True(t, view.Completed)
	assert.Equal(t, 8, view.Summary.Learn.Correct)
}

func TestMatchingPairsAndMismatches(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	view, err := env.core.StartSession(ctx, entity.SetByID("B"), entity.ModeMatching, entity.AllWords())
	require.NoError(t, err)
	require.Len(t, view.Matching.Cards, 8)
	assert.Equal(t, 4, view.Matching.TotalPairs)

	_, err = env.core.SelectCard(ctx, "nope")
	require.ErrorIs(t, err, entity.ErrUnknownCard)

	_, err = env.core.SelectCard(ctx, "w-b1")
	require.NoError(t, err)
	view, err = env.core.SelectCard(ctx, "m-b2")
	require.NoError(t, err)
	view, err = env.core.SelectCard(ctx, "w-b3")
	require.NoError(t, err)
	assert.Len(t, selectedCards(view), 2, "a third card is ignored while a pair is pending")

	env.tick(300 * time.Millisecond)
	view, err = env.core.View(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Matching.WrongAttempts)
	assert.Empty(t, selectedCards(view))
	assert.ElementsMatch(t, []string{"w-b1", "m-b2"}, errorCards(view))

	env.tick(600 * time.Millisecond)
	view, err = env.core.View(ctx)
	require.NoError(t, err)
	assert.Empty(t, errorCards(view))

	for _, id := range []string{"b1", "b2", "b3", "b4"} {
		_, err = env.core.SelectCard(ctx, "w-"+id)
		require.NoError(t, err)
		_, err = env.core.SelectCard(ctx, "m-"+id)
		require.NoError(t, err)
		env.tick(300 * time.Millisecond)
	}

	view, err = env.core.View(ctx)
	require.NoError(t, err)
	require.True(t, view.Completed)
	summary := view.Summary.Matching
	assert.Equal(t, 4, summary.CorrectPairs)
	assert.Equal(t, 1, summary.WrongAttempts)
	assert.Equal(t, 80, summary.Accuracy)
	assert.Empty(t, env.mastery.WeakIDs("B"), "mismatches never record weak words")
	assert.Equal(t, entity.Accuracy{Attempts: 5, Correct: 4}, env.mastery.Stats().MatchingAccuracy)
	assert.Zero(t, env.scheduler.pending(), "ticker stops when the game completes")
}

func TestMatchingTickerPersistsElapsedTime(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.core.StartSession(ctx, entity.SetByID("A"), entity.ModeMatching, entity.AllWords())
	require.NoError(t, err)

	env.tick(3 * time.Second)
	view, err := env.core.View(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, view.Matching.ElapsedSeconds)
	require.NotNil(t, env.snapshots.stored())
	assert.Equal(t, 3, env.snapshots.stored().Matching.ElapsedSeconds)

	require.NoError(t, env.core.EndSession(ctx))
	assert.Zero(t, env.scheduler.pending())
	env.tick(5 * time.Second)
	assert.Equal(t, 3, env.snapshots.stored().Matching.ElapsedSeconds)
}

func TestMatchingShowsOneBatchAtATime(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	view, err := env.core.StartSession(ctx, entity.SetByID("D"), entity.ModeMatching, entity.AllWords())
	require.NoError(t, err)
	assert.Equal(t, 3, view.Matching.BatchCount)
	assert.Len(t, view.Matching.Cards, 20)

	cards := env.snapshots.stored().Matching.Cards
	later, ok := lo.Find(cards, func(c entity.MatchCard) bool { return c.Batch == 1 })
	require.True(t, ok)
	view, err = env.core.SelectCard(ctx, later.ID)
	require.NoError(t, err)
	assert.Empty(t, selectedCards(view))

	first := lo.Filter(cards, func(c entity.MatchCard, _ int) bool { return c.Batch == 0 && c.Side == entity.CardTerm })
	for _, c := range first {
		_, err = env.core.SelectCard(ctx, "w-"+c.Pair)
		require.NoError(t, err)
		_, err = env.core.SelectCard(ctx, "m-"+c.Pair)
		require.NoError(t, err)
		env.tick(300 * time.Millisecond)
	}
	view, err = env.core.View(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Matching.ActiveBatch)
	assert.Equal(t, 10, view.Matching.CorrectPairs)
}

func TestStartSessionRejectsUnusableInput(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.core.StartSession(ctx, entity.SetByID("missing"), entity.ModeFlashcard, entity.AllWords())
	assert.ErrorIs(t, err, entity.ErrSetNotFound)

	_, err = env.core.StartSession(ctx, entity.SetByID("A"), entity.ModeFlashcard, entity.CustomCount(0))
	assert.ErrorIs(t, err, entity.ErrInvalidWordCount)

	_, err = env.core.StartSession(ctx, entity.SetByID("A"), entity.StudyMode("quiz"), entity.AllWords())
	assert.ErrorIs(t, err, entity.ErrInvalidMode)

	_, err = env.core.StartSession(ctx, entity.SetByID(entity.WeakReviewSetID), entity.ModeFlashcard, entity.AllWords())
	assert.ErrorIs(t, err, entity.ErrNoWeakWords)

	for _, word := range words("c", 1) {
		_, err = env.mastery.MarkLearned(ctx, word.ID)
		require.NoError(t, err)
	}
	_, err = env.core.StartSession(ctx, entity.SetByID("C"), entity.ModeFlashcard, entity.UnlearnedOnly())
	assert.ErrorIs(t, err, entity.ErrEmptySelection)

	assert.Zero(t, env.mastery.Stats().Sessions, "rejected starts do not count as sessions")
	_, err = env.core.View(ctx)
	assert.ErrorIs(t, err, entity.ErrNoActiveSession)
}

func TestFixedCountWithoutCountUsesDefault(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	view, err := env.core.StartSession(ctx, entity.SetByID("D"), entity.ModeFlashcard, entity.FixedCount(0))
	require.NoError(t, err)
	assert.Equal(t, 20, view.Total)
}

func TestCommandsRequireMatchingMode(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.core.Swipe(ctx, entity.SwipeKnown)
	require.ErrorIs(t, err, entity.ErrNoActiveSession)

	_, err = env.core.StartSession(ctx, entity.SetByID("A"), entity.ModeFlashcard, entity.AllWords())
	require.NoError(t, err)
	_, err = env.core.SubmitAnswer(ctx, "a1")
	assert.ErrorIs(t, err, entity.ErrModeMismatch)
	_, err = env.core.SelectCard(ctx, "w-a1")
	assert.ErrorIs(t, err, entity.ErrModeMismatch)
}

func TestStartingSessionCancelsPendingTransitions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	view, err := env.core.StartSession(ctx, entity.SetByID("B"), entity.ModeLearn, entity.AllWords())
	require.NoError(t, err)
	_, err = env.core.SubmitAnswer(ctx, view.Learn.Question.WordID)
	require.NoError(t, err)

	view, err = env.core.StartSession(ctx, entity.SetByID("A"), entity.ModeLearn, entity.AllWords())
	require.NoError(t, err)
	sessionID := view.SessionID

	env.tick(2 * time.Second)
	view, err = env.core.View(ctx)
	require.NoError(t, err)
	assert.Equal(t, sessionID, view.SessionID)
	assert.Equal(t, 0, view.Index)
	assert.Equal(t, "A", env.snapshots.stored().SetID, "one snapshot slot holds only the latest session")
}

func TestResumeContinuesFlashcardAfterRestart(t *testing.T) {
	ctx := context.Background()
	first := newTestEnv(t)

	_, err := first.core.StartSession(ctx, entity.SetByID("A"), entity.ModeFlashcard, entity.AllWords())
	require.NoError(t, err)
	_, err = first.core.Swipe(ctx, entity.SwipeKnown)
	require.NoError(t, err)
	_, err = first.core.Swipe(ctx, entity.SwipeLearning)
	require.NoError(t, err)

	restarted := newTestEnvWith(t, testCatalog(), first.repo, first.snapshots)
	view, err := restarted.core.Resume(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Index)
	assert.Equal(t, 5, view.Total)
	assert.Equal(t, 1, view.Flashcard.Known)
	assert.Equal(t, 1, view.Flashcard.Learning)
	assert.Equal(t, entity.WordID("a3"), view.Flashcard.Card.ID)

	for range 3 {
		view, err = restarted.core.Swipe(ctx, entity.SwipeKnown)
		require.NoError(t, err)
	}
	require.True(t, view.Completed)
	assert.Equal(t, entity.FlashcardSummary{Known: 4, Learning: 1, UniqueWrong: 1}, *view.Summary.Flashcard)
	assert.Equal(t, []entity.WordID{"a2"}, restarted.mastery.WeakIDs("A"))
}

func TestResumeAdvancesLockedLearnQuestion(t *testing.T) {
	ctx := context.Background()
	first := newTestEnv(t)

	view, err := first.core.StartSession(ctx, entity.SetByID("B"), entity.ModeLearn, entity.AllWords())
	require.NoError(t, err)
	_, err = first.core.SubmitAnswer(ctx, view.Learn.Question.WordID)
	require.NoError(t, err)
	require.True(t, first.snapshots.stored().Learn.Locked)

	restarted := newTestEnvWith(t, testCatalog(), first.repo, first.snapshots)
	view, err = restarted.core.Resume(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Index)
	assert.Equal(t, 1, view.Learn.Correct)
	assert.False(t, view.Learn.Locked)
	require.NotNil(t, view.Learn.Question)
	assert.Len(t, view.Learn.Question.Options, LearnOptionCount)
}

func TestResumeRestartsMatchingTicker(t *testing.T) {
	ctx := context.Background()
	first := newTestEnv(t)

	_, err := first.core.StartSession(ctx, entity.SetByID("B"), entity.ModeMatching, entity.AllWords())
	require.NoError(t, err)
	first.tick(2 * time.Second)
	first.core.Close()

	restarted := newTestEnvWith(t, testCatalog(), first.repo, first.snapshots)
	view, err := restarted.core.Resume(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Matching.ElapsedSeconds)

	restarted.tick(time.Second)
	view, err = restarted.core.View(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, view.Matching.ElapsedSeconds)
}

func TestResumeDiscardsUnresolvableSnapshot(t *testing.T) {
	ctx := context.Background()

	cases := map[string]*entity.Snapshot{
		"missing set": {
			Version: entity.SnapshotVersion, Mode: entity.ModeFlashcard, SetID: "gone",
			Words: words("g", 2), Flashcard: &entity.FlashcardState{},
		},
		"no words": {
			Version: entity.SnapshotVersion, Mode: entity.ModeFlashcard, SetID: "A",
			Flashcard: &entity.FlashcardState{},
		},
		"missing mode state": {
			Version: entity.SnapshotVersion, Mode: entity.ModeLearn, SetID: "A",
			Words: words("a", 2),
		},
	}
	for name, snap := range cases {
		t.Run(name, func(t *testing.T) {
			env := newTestEnvWith(t, testCatalog(), &fakeMasteryRepo{}, &fakeSnapshotRepo{snap: snap})
			_, err := env.core.Resume(ctx)
			require.ErrorIs(t, err, entity.ErrNoSnapshot)
			assert.Nil(t, env.snapshots.stored())
		})
	}

	env := newTestEnv(t)
	_, err := env.core.Resume(ctx)
	assert.ErrorIs(t, err, entity.ErrNoSnapshot)
}

func TestResumeDiscardsCorruptSnapshot(t *testing.T) {
	ctx := context.Background()

	cases := map[string]struct {
		mode    entity.StudyMode
		corrupt func(*entity.Snapshot)
	}{
		"negative index": {entity.ModeFlashcard, func(s *entity.Snapshot) { s.Index = -1 }},
		"index past words": {entity.ModeFlashcard, func(s *entity.Snapshot) { s.Index = len(s.Words) + 1 }},
		"index past questions": {entity.ModeLearn, func(s *entity.Snapshot) {
			s.Learn.Questions = s.Learn.Questions[:1]
			s.Index = 3
		}},
		"unknown matched card": {entity.ModeMatching, func(s *entity.Snapshot) {
			s.Matching.Matched = []string{"no-such-card"}
		}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			first := newTestEnv(t)
			_, err := first.core.StartSession(ctx, entity.SetByID("A"), tc.mode, entity.AllWords())
			require.NoError(t, err)
			first.core.Close()
			first.snapshots.mu.Lock()
			tc.corrupt(first.snapshots.snap)
			first.snapshots.mu.Unlock()

			restarted := newTestEnvWith(t, testCatalog(), first.repo, first.snapshots)
			require.NotPanics(t, func() {
				_, err = restarted.core.Resume(ctx)
			})
			require.ErrorIs(t, err, entity.ErrNoSnapshot)
			assert.Nil(t, restarted.snapshots.stored())
		})
	}
}

func TestResumeWeakReviewAfterWordsWereCleared(t *testing.T) {
	ctx := context.Background()
	first := newTestEnv(t)

	require.NoError(t, first.mastery.RecordWeak(ctx, []entity.WrongAnswer{{WordID: "a1", SourceSetID: "A"}}, ""))
	view, err := first.core.StartSession(ctx, entity.SetByID(entity.WeakReviewSetID), entity.ModeLearn, entity.AllWords())
	require.NoError(t, err)
	_, err = first.core.SubmitAnswer(ctx, view.Learn.Question.WordID)
	require.NoError(t, err)
	require.True(t, first.snapshots.stored().Learn.Locked)
	first.core.Close()

	restarted := newTestEnvWith(t, testCatalog(), first.repo, first.snapshots)
	assert.Empty(t, restarted.mastery.WeakIDs("A"))
	view, err = restarted.core.Resume(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.WeakReviewSetID, view.SetID)
	require.True(t, view.Completed)
	assert.Equal(t, entity.Accuracy{Attempts: 1, Correct: 1}, restarted.mastery.Stats().LearnAccuracy)
}

func TestEndSessionKeepsSnapshotForResume(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.core.StartSession(ctx, entity.SetByID("A"), entity.ModeFlashcard, entity.AllWords())
	require.NoError(t, err)
	_, err = env.core.Swipe(ctx, entity.SwipeKnown)
	require.NoError(t, err)

	env.now = env.now.Add(4 * time.Minute)
	require.NoError(t, env.core.EndSession(ctx))
	assert.Equal(t, 4, env.mastery.Stats().TotalMinutes)

	_, err = env.core.View(ctx)
	require.ErrorIs(t, err, entity.ErrNoActiveSession)
	require.ErrorIs(t, env.core.EndSession(ctx), entity.ErrNoActiveSession)

	view, err := env.core.Resume(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Index)
}

func TestStartRelearnStudiesWeakWordsOnly(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.core.StartRelearn(ctx, entity.ModeLearn)
	require.ErrorIs(t, err, entity.ErrNoLastSession)

	_, err = env.core.StartSession(ctx, entity.SetByID("A"), entity.ModeFlashcard, entity.AllWords())
	require.NoError(t, err)
	swipes := []entity.SwipeDirection{entity.SwipeLearning, entity.SwipeLearning, entity.SwipeKnown, entity.SwipeKnown, entity.SwipeKnown}
	for _, dir := range swipes {
		_, err = env.core.Swipe(ctx, dir)
		require.NoError(t, err)
	}
	require.Equal(t, []entity.WordID{"a1", "a2"}, env.mastery.WeakIDs("A"))

	view, err := env.core.StartRelearn(ctx, entity.ModeMatching)
	require.NoError(t, err)
	assert.Equal(t, entity.ModeFlashcard, view.Mode, "relearn falls back to flashcards")

	view, err = env.core.StartRelearn(ctx, entity.ModeLearn)
	require.NoError(t, err)
	assert.Equal(t, entity.ModeLearn, view.Mode)
	assert.True(t, view.IsRelearn)
	assert.Equal(t, 2, view.Total)

	for range 2 {
		_, err = env.core.SubmitAnswer(ctx, view.Learn.Question.WordID)
		require.NoError(t, err)
		env.tick(time.Second)
		view, err = env.core.View(ctx)
		require.NoError(t, err)
	}
	require.True(t, view.Completed)
	assert.Empty(t, env.mastery.WeakIDs("A"))

	_, err = env.core.StartRelearn(ctx, entity.ModeLearn)
	assert.ErrorIs(t, err, entity.ErrNoWeakWords)
}

func TestRepeatLastSession(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.core.RepeatLastSession(ctx)
	require.ErrorIs(t, err, entity.ErrNoLastSession)

	_, err = env.core.StartSession(ctx, entity.SetByID("D"), entity.ModeLearn, entity.CustomCount(6))
	require.NoError(t, err)

	view, err := env.core.RepeatLastSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.ModeLearn, view.Mode)
	assert.Equal(t, "D", view.SetID)
	assert.Equal(t, 6, view.Total)
	assert.Equal(t, 2, env.mastery.Stats().Sessions)
}

func TestRepeatWeakSessionFallsBackToWholeSet(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	require.NoError(t, env.mastery.RecordWeak(ctx, []entity.WrongAnswer{{WordID: "b2", SourceSetID: "B"}}, ""))
	_, err := env.core.SelectSet(ctx, entity.SetByID("B"))
	require.NoError(t, err)

	view, err := env.core.StartRelearn(ctx, entity.ModeFlashcard)
	require.NoError(t, err)
	require.Equal(t, 1, view.Total)
	view, err = env.core.Swipe(ctx, entity.SwipeKnown)
	require.NoError(t, err)
	require.True(t, view.Completed)
	require.Empty(t, env.mastery.WeakIDs("B"))

	view, err = env.core.RepeatLastSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, NoticeWeakExhausted, view.Notice)
	assert.False(t, view.IsRelearn)
	assert.Equal(t, 4, view.Total)

	last, ok := env.mastery.LastSession()
	require.True(t, ok)
	assert.Equal(t, entity.DatasetFull, last.Dataset)
}

func TestWeakReviewSessionClearsWordsInTheirSourceSets(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	require.NoError(t, env.mastery.RecordWeak(ctx, []entity.WrongAnswer{
		{WordID: "a3", SourceSetID: "A"},
		{WordID: "b1", SourceSetID: "B"},
	}, ""))

	detail, err := env.core.SelectSet(ctx, entity.SetByID(entity.WeakReviewSetID))
	require.NoError(t, err)
	assert.True(t, detail.IsDynamic)
	assert.Equal(t, 2, detail.WordCount)

	view, err := env.core.StartSession(ctx, entity.SetByID(entity.WeakReviewSetID), entity.ModeFlashcard, entity.AllWords())
	require.NoError(t, err)
	assert.True(t, view.IsRelearn)
	assert.Equal(t, entity.WeakReviewSetID, view.SetID)

	_, err = env.core.Swipe(ctx, entity.SwipeKnown)
	require.NoError(t, err)
	view, err = env.core.Swipe(ctx, entity.SwipeKnown)
	require.NoError(t, err)
	require.True(t, view.Completed)

	assert.Empty(t, env.mastery.WeakIDs("A"))
	assert.Empty(t, env.mastery.WeakIDs("B"))
	_, ok := env.mastery.BuildWeakReviewSet()
	assert.False(t, ok)

	_, err = env.core.RepeatLastSession(ctx)
	assert.ErrorIs(t, err, entity.ErrNoWeakWords)
}

func TestResetAllProgress(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.core.StartSession(ctx, entity.SetByID("A"), entity.ModeFlashcard, entity.AllWords())
	require.NoError(t, err)
	_, err = env.core.Swipe(ctx, entity.SwipeKnown)
	require.NoError(t, err)

	require.NoError(t, env.core.ResetAllProgress(ctx))

	assert.Equal(t, entity.Stats{}, env.mastery.Stats())
	assert.Nil(t, env.repo.stored())
	assert.Nil(t, env.snapshots.stored())
	_, err = env.core.View(ctx)
	assert.ErrorIs(t, err, entity.ErrNoActiveSession)
	_, err = env.core.RepeatLastSession(ctx)
	assert.ErrorIs(t, err, entity.ErrNoLastSession)
}

func selectedCards(view *SessionView) []string {
	return lo.FilterMap(view.Matching.Cards, func(c MatchCardView, _ int) (string, bool) { return c.ID, c.Selected })
}

func errorCards(view *SessionView) []string {
	return lo.FilterMap(view.Matching.Cards, func(c MatchCardView, _ int) (string, bool) { return c.ID, c.Error })
}
