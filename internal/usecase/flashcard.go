package usecase

import (
	"context"
	"errors"

	"github.com/eslsoft/vocstudy/internal/entity"
)

type flashcardEngine struct {
	mastery *MasteryService
}

func (e flashcardEngine) start(s *activeSession) {
	s.snap.Flashcard = &entity.FlashcardState{}
}

// swipe judges the current card and advances. It reports whether the deck is done.
func (e flashcardEngine) swipe(ctx context.Context, s *activeSession, dir entity.SwipeDirection) (bool, error) {
	st := s.snap.Flashcard
	if s.snap.Index >= len(s.snap.Words) {
		return true, nil
	}
	word := s.snap.Words[s.snap.Index]

	var errs []error
	switch dir {
	case entity.SwipeKnown:
		st.Known++
		if _, err := e.mastery.MarkLearned(ctx, word.ID); err != nil {
			errs = append(errs, err)
		}
		if s.snap.IsRelearn {
			if err := e.mastery.ClearWeak(ctx, word.ID, s.sourceOf(word)); err != nil {
				errs = append(errs, err)
			}
		}
	case entity.SwipeLearning:
		st.Learning++
		s.recordWrong(word)
	default:
		return false, entity.ErrInvalidSwipe
	}

	st.Flipped = false
	s.snap.Index++
	return s.snap.Index >= len(s.snap.Words), errors.Join(errs...)
}

func (e flashcardEngine) flip(s *activeSession) {
	s.snap.Flashcard.Flipped = !s.snap.Flashcard.Flipped
}

func (e flashcardEngine) finish(ctx context.Context, s *activeSession) (*entity.FlashcardSummary, error) {
	err := e.mastery.RecordWeak(ctx, s.snap.WrongAnswers, s.snap.SetID)
	return &entity.FlashcardSummary{
		Known:       s.snap.Flashcard.Known,
		Learning:    s.snap.Flashcard.Learning,
		UniqueWrong: s.uniqueWrong(),
	}, err
}

func (e flashcardEngine) view(s *activeSession) *FlashcardView {
	st := s.snap.Flashcard
	v := &FlashcardView{
		Known:    st.Known,
		Learning: st.Learning,
		Flipped:  st.Flipped,
	}
	if s.snap.Index < len(s.snap.Words) {
		card := s.snap.Words[s.snap.Index]
		v.Card = &card
	}
	return v
}
