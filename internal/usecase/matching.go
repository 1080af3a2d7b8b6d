package usecase

import (
	"context"
	"errors"

	"github.com/samber/lo"

	"github.com/eslsoft/vocstudy/internal/entity"
)

// DefaultBatchPairs is the number of pairs shown at once in a matching game.
const DefaultBatchPairs = 10

type matchingEngine struct {
	mastery    *MasteryService
	shuffler   *Shuffler
	batchPairs int
}

// matchOutcome reports what evaluating a pair did.
type matchOutcome struct {
	matched  bool
	mismatch bool
	done     bool
	pair     []string
}

func (e matchingEngine) start(s *activeSession) {
	batchPairs := e.batchPairs
	if batchPairs <= 0 {
		batchPairs = DefaultBatchPairs
	}
	keys := pairKeys(s.snap.Words)
	cards := make([]entity.MatchCard, 0, 2*len(s.snap.Words))
	for i, word := range s.snap.Words {
		source := s.sourceOf(word)
		cards = append(cards,
			entity.MatchCard{
				ID:          "w-" + keys[i],
				RefID:       word.ID,
				Pair:        keys[i],
				SourceSetID: source,
				Side:        entity.CardTerm,
				Content:     word.Word,
				Batch:       i / batchPairs,
			},
			entity.MatchCard{
				ID:          "m-" + keys[i],
				RefID:       word.ID,
				Pair:        keys[i],
				SourceSetID: source,
				Side:        entity.CardDefinition,
				Content:     word.Meaning,
				Batch:       i / batchPairs,
			},
		)
	}
	Permute(e.shuffler, cards)
	s.snap.Matching = &entity.MatchingState{
		Cards:      cards,
		Matched:    []string{},
		BatchPairs: batchPairs,
	}
	s.selected = nil
	s.flashing = nil
}

// pairKeys gives every word a unique pair key: its id, qualified by its source
// set when the id repeats.
func pairKeys(words []entity.WordEntry) []string {
	counts := make(map[entity.WordID]int, len(words))
	for _, word := range words {
		counts[word.ID]++
	}
	used := make(map[string]struct{}, len(words))
	keys := make([]string, len(words))
	for i, word := range words {
		key := string(word.ID)
		if counts[word.ID] > 1 {
			key = string(word.ID) + "@" + word.SourceSetID
		}
		for _, taken := used[key]; taken; _, taken = used[key] {
			key += "'"
		}
		used[key] = struct{}{}
		keys[i] = key
	}
	return keys
}

func (e matchingEngine) card(s *activeSession, id string) (entity.MatchCard, bool) {
	return lo.Find(s.snap.Matching.Cards, func(c entity.MatchCard) bool { return c.ID == id })
}

func (e matchingEngine) batchCount(s *activeSession) int {
	st := s.snap.Matching
	if len(st.Cards) == 0 {
		return 0
	}
	return lo.MaxBy(st.Cards, func(a, b entity.MatchCard) bool { return a.Batch > b.Batch }).Batch + 1
}

func (e matchingEngine) batchComplete(s *activeSession, batch int) bool {
	st := s.snap.Matching
	return lo.EveryBy(st.Cards, func(c entity.MatchCard) bool {
		return c.Batch != batch || lo.Contains(st.Matched, c.ID)
	})
}

// advanceBatch moves the display window past fully matched batches.
func (e matchingEngine) advanceBatch(s *activeSession) {
	st := s.snap.Matching
	for st.ActiveBatch < e.batchCount(s)-1 && e.batchComplete(s, st.ActiveBatch) {
		st.ActiveBatch++
	}
}

// selectCard adds a card to the pending pair. Matched, already selected, hidden
// cards and selections beyond two are ignored. It reports whether the pair is ready
// for evaluation.
func (e matchingEngine) selectCard(s *activeSession, id string) (bool, error) {
	st := s.snap.Matching
	c, ok := e.card(s, id)
	if !ok {
		return false, entity.ErrUnknownCard
	}
	if lo.Contains(st.Matched, id) || lo.Contains(s.selected, id) || len(s.selected) >= 2 || c.Batch != st.ActiveBatch {
		return false, nil
	}
	s.selected = append(s.selected, id)
	return len(s.selected) == 2, nil
}

// evaluate resolves the pending pair and always clears the selection.
func (e matchingEngine) evaluate(ctx context.Context, s *activeSession) (matchOutcome, error) {
	selected := s.selected
	s.selected = nil
	if len(selected) != 2 {
		return matchOutcome{}, nil
	}
	st := s.snap.Matching
	first, _ := e.card(s, selected[0])
	second, _ := e.card(s, selected[1])

	if first.Pair != second.Pair {
		st.WrongAttempts++
		return matchOutcome{mismatch: true, pair: selected}, nil
	}

	st.CorrectPairs++
	st.Matched = append(st.Matched, first.ID, second.ID)
	var errs []error
	if _, err := e.mastery.MarkLearned(ctx, first.RefID); err != nil {
		errs = append(errs, err)
	}
	e.advanceBatch(s)
	return matchOutcome{
		matched: true,
		done:    len(st.Matched) == len(st.Cards),
		pair:    selected,
	}, errors.Join(errs...)
}

func (e matchingEngine) tick(s *activeSession) {
	s.snap.Matching.ElapsedSeconds++
}

func (e matchingEngine) finish(ctx context.Context, s *activeSession) (*entity.MatchingSummary, error) {
	st := s.snap.Matching
	attempts := st.CorrectPairs + st.WrongAttempts
	err := e.mastery.AddMatchingAccuracy(ctx, attempts, st.CorrectPairs)
	return &entity.MatchingSummary{
		ElapsedSeconds: st.ElapsedSeconds,
		CorrectPairs:   st.CorrectPairs,
		TotalPairs:     len(st.Cards) / 2,
		WrongAttempts:  st.WrongAttempts,
		Accuracy:       entity.Percent(st.CorrectPairs, attempts),
	}, err
}

func (e matchingEngine) view(s *activeSession) *MatchingView {
	st := s.snap.Matching
	v := &MatchingView{
		ElapsedSeconds: st.ElapsedSeconds,
		CorrectPairs:   st.CorrectPairs,
		WrongAttempts:  st.WrongAttempts,
		TotalPairs:     len(st.Cards) / 2,
		ActiveBatch:    st.ActiveBatch,
		BatchCount:     e.batchCount(s),
	}
	for _, c := range st.Cards {
		if c.Batch != st.ActiveBatch {
			continue
		}
		v.Cards = append(v.Cards, MatchCardView{
			ID:       c.ID,
			Side:     c.Side,
			Content:  c.Content,
			Matched:  lo.Contains(st.Matched, c.ID),
			Selected: lo.Contains(s.selected, c.ID),
			Error:    lo.Contains(s.flashing, c.ID),
		})
	}
	return v
}
