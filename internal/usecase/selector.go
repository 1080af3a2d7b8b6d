package usecase

import (
	"context"
	"math"

	"github.com/samber/lo"

	"github.com/eslsoft/vocstudy/internal/entity"
)

const (
	DefaultOverlapRatio = 0.2
	DefaultHistoryLimit = 100
)

// SelectorConfig tunes the anti-repeat sampling.
type SelectorConfig struct {
	// OverlapRatio caps the share of a sample that may come from recent history.
	OverlapRatio float64
	// HistoryLimit bounds the per-set selection history.
	HistoryLimit int
}

func (c SelectorConfig) withDefaults() SelectorConfig {
	if c.OverlapRatio <= 0 || c.OverlapRatio > 1 {
		c.OverlapRatio = DefaultOverlapRatio
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = DefaultHistoryLimit
	}
	return c
}

// WordSelector turns a set and a selection policy into a session word list.
type WordSelector struct {
	mastery  *MasteryService
	shuffler *Shuffler
	cfg      SelectorConfig
}

func NewWordSelector(mastery *MasteryService, shuffler *Shuffler, cfg SelectorConfig) *WordSelector {
	return &WordSelector{mastery: mastery, shuffler: shuffler, cfg: cfg.withDefaults()}
}

// Select returns the working list for a session over set. An empty result means
// there is nothing to study; it is not an error.
func (s *WordSelector) Select(ctx context.Context, set entity.VocabSet, policy entity.SelectionPolicy) ([]entity.WordEntry, error) {
	if policy.IsZero() {
		policy = entity.AllWords()
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	pool := set.Data
	switch policy.Kind {
	case entity.PolicyAll:
		return append([]entity.WordEntry(nil), pool...), nil
	case entity.PolicyUnlearnedOnly:
		learned := s.mastery.LearnedSet()
		pool = lo.Filter(pool, func(item entity.WordEntry, _ int) bool {
			_, ok := learned[item.ID]
			return !ok
		})
		if policy.Count <= 0 {
			return pool, nil
		}
	}

	target := policy.Count
	if target <= 0 || len(pool) == 0 {
		return []entity.WordEntry{}, nil
	}
	if len(pool) <= target {
		return Shuffled(s.shuffler, pool), nil
	}

	selected := s.sample(pool, s.mastery.History(set.ID), target)
	ids := lo.Map(selected, func(item entity.WordEntry, _ int) entity.WordID { return item.ID })
	if err := s.mastery.RecordSelection(ctx, set.ID, ids, s.cfg.HistoryLimit); err != nil {
		return selected, err
	}
	return selected, nil
}

// sample draws target entries from pool, taking at most floor(target*OverlapRatio)
// from history unless fresh entries run out.
func (s *WordSelector) sample(pool []entity.WordEntry, history []entity.WordID, target int) []entity.WordEntry {
	recent := make(map[entity.WordID]struct{}, len(history))
	for _, id := range history {
		recent[id] = struct{}{}
	}
	var seen, fresh []entity.WordEntry
	for _, item := range pool {
		if _, ok := recent[item.ID]; ok {
			seen = append(seen, item)
		} else {
			fresh = append(fresh, item)
		}
	}
	Permute(s.shuffler, seen)
	Permute(s.shuffler, fresh)

	seenCap := int(math.Floor(float64(target) * s.cfg.OverlapRatio))
	takeSeen := min(seenCap, len(seen))
	takeFresh := min(target-takeSeen, len(fresh))

	out := make([]entity.WordEntry, 0, target)
	out = append(out, seen[:takeSeen]...)
	out = append(out, fresh[:takeFresh]...)
	if short := target - len(out); short > 0 {
		end := min(takeSeen+short, len(seen))
		out = append(out, seen[takeSeen:end]...)
	}
	Permute(s.shuffler, out)
	return out
}
