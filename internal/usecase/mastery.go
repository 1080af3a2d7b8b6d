package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/vocstudy/internal/entity"
	"github.com/eslsoft/vocstudy/internal/repository"
)

// Weak-review set presentation.
const (
	WeakReviewCategoryID  = "weak"
	WeakReviewTitle       = "Ôn tập tổng hợp"
	WeakReviewDescription = "Chủ đề chứa toàn bộ các từ bạn cần học lại."
	WeakReviewColor       = "orange"
)

// MasteryService owns the persisted mastery record. Every mutation is applied in
// memory and then written through to the repository.
type MasteryService struct {
	mu      sync.RWMutex
	repo    repository.MasteryRepository
	catalog *Catalog
	logger  logrus.FieldLogger
	record  *entity.MasteryRecord
}

// NewMasteryService loads the stored record; a missing or unreadable record
// starts from an empty one.
func NewMasteryService(ctx context.Context, repo repository.MasteryRepository, catalog *Catalog, logger logrus.FieldLogger) *MasteryService {
	s := &MasteryService{
		repo:    repo,
		catalog: catalog,
		logger:  logger,
	}
	s.record = s.load(ctx)
	return s
}

func (s *MasteryService) load(ctx context.Context) *entity.MasteryRecord {
	record, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("failed to load study progress, starting empty")
		return entity.NewMasteryRecord()
	}
	if record == nil {
		return entity.NewMasteryRecord()
	}
	record.Normalize()
	return record
}

// Reload replaces the in-memory record with the stored one.
func (s *MasteryService) Reload(ctx context.Context) {
	record := s.load(ctx)
	s.mu.Lock()
	s.record = record
	s.mu.Unlock()
}

// update runs fn against the record and persists when fn reports a change.
func (s *MasteryService) update(ctx context.Context, fn func(r *entity.MasteryRecord) bool) error {
	s.mu.Lock()
	changed := fn(s.record)
	var snapshot *entity.MasteryRecord
	if changed {
		snapshot = s.record.Clone()
	}
	s.mu.Unlock()

	if !changed {
		return nil
	}
	if err := s.repo.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("persist study progress: %w", err)
	}
	return nil
}

// Record returns a copy of the current record.
func (s *MasteryService) Record() *entity.MasteryRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.Clone()
}

// MarkLearned records id as mastered and reports whether it was the first time.
func (s *MasteryService) MarkLearned(ctx context.Context, id entity.WordID) (bool, error) {
	var first bool
	err := s.update(ctx, func(r *entity.MasteryRecord) bool {
		if lo.Contains(r.LearnedIDs, id) {
			return false
		}
		r.LearnedIDs = append(r.LearnedIDs, id)
		r.TotalWords++
		first = true
		return true
	})
	return first, err
}

// IsLearned reports whether id was ever marked learned.
func (s *MasteryService) IsLearned(id entity.WordID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Contains(s.record.LearnedIDs, id)
}

// LearnedSet returns the learned ids as a lookup set.
func (s *MasteryService) LearnedSet() map[entity.WordID]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[entity.WordID]struct{}, len(s.record.LearnedIDs))
	for _, id := range s.record.LearnedIDs {
		out[id] = struct{}{}
	}
	return out
}

// RecordWeak merges wrong answers into the per-set weak lists. Entries without a
// source set fall back to fallbackSetID. Ids missing from the live set data are
// dropped, and so are stale ids already stored for the touched sets.
func (s *MasteryService) RecordWeak(ctx context.Context, wrong []entity.WrongAnswer, fallbackSetID string) error {
	if len(wrong) == 0 {
		return nil
	}
	grouped := make(map[string][]entity.WordID)
	var order []string
	for _, item := range wrong {
		setID := item.SourceSetID
		if setID == "" {
			setID = fallbackSetID
		}
		if setID == "" || setID == entity.WeakReviewSetID {
			continue
		}
		if _, seen := grouped[setID]; !seen {
			order = append(order, setID)
		}
		grouped[setID] = append(grouped[setID], item.WordID)
	}

	return s.update(ctx, func(r *entity.MasteryRecord) bool {
		changed := false
		for _, setID := range order {
			set, ok := s.catalog.Set(setID)
			if !ok {
				s.logger.WithField("set_id", setID).Debug("dropping weak words of unknown set")
				continue
			}
			valid := set.IDSet()
			merged := append(append([]entity.WordID{}, r.WeakWords[setID]...), grouped[setID]...)
			merged = lo.Uniq(lo.Filter(merged, func(id entity.WordID, _ int) bool {
				_, ok := valid[id]
				return ok
			}))
			r.WeakWords[setID] = merged
			changed = true
		}
		return changed
	})
}

// ClearWeak removes id from the weak list of setID.
func (s *MasteryService) ClearWeak(ctx context.Context, id entity.WordID, setID string) error {
	return s.update(ctx, func(r *entity.MasteryRecord) bool {
		list, ok := r.WeakWords[setID]
		if !ok || !lo.Contains(list, id) {
			return false
		}
		r.WeakWords[setID] = lo.Without(list, id)
		return true
	})
}

// WeakIDs returns the weak list of one set.
func (s *MasteryService) WeakIDs(setID string) []entity.WordID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entity.WordID(nil), s.record.WeakWords[setID]...)
}

// WeakEntries resolves the weak list of set against its data, in set order.
func (s *MasteryService) WeakEntries(set entity.VocabSet) []entity.WordEntry {
	weak := s.WeakIDs(set.ID)
	if len(weak) == 0 {
		return nil
	}
	return lo.Filter(set.Data, func(item entity.WordEntry, _ int) bool {
		return lo.Contains(weak, item.ID)
	})
}

// BuildWeakReviewSet aggregates every resolvable weak word across catalog sets.
// It reports false when there is nothing to review.
func (s *MasteryService) BuildWeakReviewSet() (entity.VocabSet, bool) {
	s.mu.RLock()
	weak := make(map[string][]entity.WordID, len(s.record.WeakWords))
	for setID, ids := range s.record.WeakWords {
		weak[setID] = append([]entity.WordID(nil), ids...)
	}
	s.mu.RUnlock()

	var data []entity.WordEntry
	for _, set := range s.catalog.Sets() {
		for _, id := range weak[set.ID] {
			word, ok := set.Lookup(id)
			if !ok {
				continue
			}
			word.SourceSetID = set.ID
			data = append(data, word)
		}
	}
	if len(data) == 0 {
		return entity.VocabSet{}, false
	}
	return entity.VocabSet{
		ID:          entity.WeakReviewSetID,
		CategoryID:  WeakReviewCategoryID,
		Title:       WeakReviewTitle,
		Description: WeakReviewDescription,
		Color:       WeakReviewColor,
		IsDynamic:   true,
		Data:        data,
	}, true
}

// History returns the most-recent-first selection history of a set.
func (s *MasteryService) History(setID string) []entity.WordID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entity.WordID(nil), s.record.RandomSelectionHistory[setID]...)
}

// RecordSelection prepends ids to the set's history and truncates it to limit.
func (s *MasteryService) RecordSelection(ctx context.Context, setID string, ids []entity.WordID, limit int) error {
	if len(ids) == 0 {
		return nil
	}
	return s.update(ctx, func(r *entity.MasteryRecord) bool {
		history := append(append([]entity.WordID{}, ids...), r.RandomSelectionHistory[setID]...)
		if limit > 0 && len(history) > limit {
			history = history[:limit]
		}
		r.RandomSelectionHistory[setID] = history
		return true
	})
}

// TrackSessionStart counts a new session and remembers how it was started.
func (s *MasteryService) TrackSessionStart(ctx context.Context, last entity.LastSession) error {
	return s.update(ctx, func(r *entity.MasteryRecord) bool {
		r.Sessions++
		r.LastSession = &last
		return true
	})
}

// TrackSessionEnd adds studied minutes.
func (s *MasteryService) TrackSessionEnd(ctx context.Context, minutes int) error {
	if minutes <= 0 {
		return nil
	}
	return s.update(ctx, func(r *entity.MasteryRecord) bool {
		r.TotalMinutes += minutes
		return true
	})
}

func (s *MasteryService) AddLearnAccuracy(ctx context.Context, attempts, correct int) error {
	return s.update(ctx, func(r *entity.MasteryRecord) bool {
		r.LearnAccuracy.Attempts += attempts
		r.LearnAccuracy.Correct += correct
		return attempts > 0
	})
}

func (s *MasteryService) AddMatchingAccuracy(ctx context.Context, attempts, correct int) error {
	return s.update(ctx, func(r *entity.MasteryRecord) bool {
		r.MatchingAccuracy.Attempts += attempts
		r.MatchingAccuracy.Correct += correct
		return attempts > 0
	})
}

// LastSession returns how the most recent session was started, if any.
func (s *MasteryService) LastSession() (entity.LastSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.record.LastSession == nil || s.record.LastSession.Mode == "" {
		return entity.LastSession{}, false
	}
	return *s.record.LastSession, true
}

// Progress reports how many words of set are learned.
func (s *MasteryService) Progress(set entity.VocabSet) entity.Progress {
	total := len(set.Data)
	if total == 0 {
		return entity.Progress{}
	}
	learned := s.LearnedSet()
	count := lo.CountBy(set.Data, func(item entity.WordEntry) bool {
		_, ok := learned[item.ID]
		return ok
	})
	return entity.Progress{Learned: count, Total: total, Percent: entity.Percent(count, total)}
}

// Stats summarises the record.
func (s *MasteryService) Stats() entity.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	weak := 0
	for _, ids := range s.record.WeakWords {
		weak += len(ids)
	}
	return entity.Stats{
		TotalWords:       s.record.TotalWords,
		TotalMinutes:     s.record.TotalMinutes,
		Sessions:         s.record.Sessions,
		WeakWords:        weak,
		LearnAccuracy:    s.record.LearnAccuracy,
		MatchingAccuracy: s.record.MatchingAccuracy,
	}
}

// Reset wipes all progress.
func (s *MasteryService) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.record = entity.NewMasteryRecord()
	s.mu.Unlock()
	if err := s.repo.Delete(ctx); err != nil {
		return fmt.Errorf("delete study progress: %w", err)
	}
	return nil
}
