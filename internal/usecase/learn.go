package usecase

import (
	"context"
	"errors"

	"github.com/samber/lo"

	"github.com/eslsoft/vocstudy/internal/entity"
)

// LearnOptionCount is the number of answers offered per question.
const LearnOptionCount = 4

type learnEngine struct {
	mastery  *MasteryService
	catalog  *Catalog
	shuffler *Shuffler
}

func (e learnEngine) start(s *activeSession) {
	questions := lo.Map(s.snap.Words, func(word entity.WordEntry, _ int) entity.LearnQuestion {
		return entity.LearnQuestion{Word: word, EngToViet: e.shuffler.Bool()}
	})
	Permute(e.shuffler, questions)
	s.snap.Learn = &entity.LearnState{Questions: questions}
	e.prepare(s)
}

// prepare draws the options of the current question.
func (e learnEngine) prepare(s *activeSession) {
	st := s.snap.Learn
	st.Options = nil
	if s.snap.Index >= len(st.Questions) {
		return
	}
	st.Options = e.options(s.set, st.Questions[s.snap.Index])
}

// options returns the correct answer plus distractors from the same set, backfilled
// from the other catalog sets when the set is too small.
func (e learnEngine) options(set entity.VocabSet, q entity.LearnQuestion) []entity.LearnOption {
	correct := q.Word
	used := map[entity.WordID]struct{}{correct.ID: {}}
	pick := func(pool []entity.WordEntry, n int) []entity.WordEntry {
		pool = lo.Filter(pool, func(item entity.WordEntry, _ int) bool {
			_, taken := used[item.ID]
			return !taken
		})
		Permute(e.shuffler, pool)
		var out []entity.WordEntry
		for _, item := range pool {
			if len(out) == n {
				break
			}
			if _, taken := used[item.ID]; taken {
				continue
			}
			used[item.ID] = struct{}{}
			out = append(out, item)
		}
		return out
	}

	distractors := pick(set.Data, LearnOptionCount-1)
	if missing := LearnOptionCount - 1 - len(distractors); missing > 0 {
		var others []entity.WordEntry
		for _, other := range e.catalog.Sets() {
			if other.ID == set.ID {
				continue
			}
			for _, item := range other.Data {
				if item.SourceSetID == "" {
					item.SourceSetID = other.ID
				}
				others = append(others, item)
			}
		}
		distractors = append(distractors, pick(others, missing)...)
	}

	entries := append([]entity.WordEntry{correct}, distractors...)
	opts := lo.Map(entries, func(item entity.WordEntry, _ int) entity.LearnOption {
		text := item.Word
		if q.EngToViet {
			text = item.Meaning
		}
		return entity.LearnOption{ID: item.ID, SourceSetID: item.SourceSetID, Text: text}
	})
	Permute(e.shuffler, opts)
	return opts
}

// answer scores the current question and locks it until advance. Answers while
// locked are ignored and report accepted=false.
func (e learnEngine) answer(ctx context.Context, s *activeSession, selected entity.WordID) (accepted, correct bool, err error) {
	st := s.snap.Learn
	if st.Locked || s.snap.Index >= len(st.Questions) {
		return false, false, nil
	}
	if !lo.ContainsBy(st.Options, func(opt entity.LearnOption) bool { return opt.ID == selected }) {
		return false, false, entity.ErrUnknownWord
	}

	st.Locked = true
	word := st.Questions[s.snap.Index].Word
	correct = selected == word.ID

	var errs []error
	if correct {
		st.Correct++
		if _, err := e.mastery.MarkLearned(ctx, word.ID); err != nil {
			errs = append(errs, err)
		}
		if s.snap.IsRelearn {
			if err := e.mastery.ClearWeak(ctx, word.ID, s.sourceOf(word)); err != nil {
				errs = append(errs, err)
			}
		}
	} else {
		st.Wrong++
		s.recordWrong(word)
	}
	return true, correct, errors.Join(errs...)
}

// advance unlocks and moves to the next question. It reports whether the quiz is done.
func (e learnEngine) advance(s *activeSession) bool {
	s.snap.Learn.Locked = false
	s.snap.Index++
	e.prepare(s)
	return s.snap.Index >= len(s.snap.Learn.Questions)
}

func (e learnEngine) finish(ctx context.Context, s *activeSession) (*entity.LearnSummary, error) {
	st := s.snap.Learn
	total := len(st.Questions)

	var errs []error
	if err := e.mastery.RecordWeak(ctx, s.snap.WrongAnswers, s.snap.SetID); err != nil {
		errs = append(errs, err)
	}
	if err := e.mastery.AddLearnAccuracy(ctx, total, st.Correct); err != nil {
		errs = append(errs, err)
	}

	return &entity.LearnSummary{
		Correct:     st.Correct,
		Wrong:       st.Wrong,
		Total:       total,
		Accuracy:    entity.Percent(st.Correct, total),
		UniqueWrong: s.uniqueWrong(),
		Verdict:     learnVerdict(st.Correct, st.Wrong, total),
	}, errors.Join(errs...)
}

func learnVerdict(correct, wrong, total int) entity.LearnVerdict {
	switch {
	case correct == total:
		return entity.LearnPerfect
	case correct > wrong:
		return entity.LearnGood
	default:
		return entity.LearnKeepTrying
	}
}

func (e learnEngine) view(s *activeSession) *LearnView {
	st := s.snap.Learn
	v := &LearnView{
		Correct:  st.Correct,
		Wrong:    st.Wrong,
		Locked:   st.Locked,
		Feedback: s.feedback,
	}
	if s.snap.Index < len(st.Questions) {
		q := st.Questions[s.snap.Index]
		prompt := q.Word.Meaning
		if q.EngToViet {
			prompt = q.Word.Word
		}
		v.Question = &entity.RenderedQuestion{
			WordID:    q.Word.ID,
			Prompt:    prompt,
			EngToViet: q.EngToViet,
			Options:   append([]entity.LearnOption(nil), st.Options...),
		}
	}
	return v
}
