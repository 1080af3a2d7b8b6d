package usecase

import (
	"time"

	"github.com/eslsoft/vocstudy/internal/entity"
)

// activeSession is the controller's in-memory view of the running session. snap is
// what gets persisted; everything else is transient.
type activeSession struct {
	snap       entity.Snapshot
	set        entity.VocabSet
	generation uint64
	trackedAt  time.Time

	completed bool
	summary   *entity.SessionSummary
	notice    string

	feedback *AnswerFeedback

	selected   []string
	flashing   []string
	stopTicker func() bool
	timers     []func() bool
}

// sourceOf returns the catalog set a session word belongs to.
func (s *activeSession) sourceOf(word entity.WordEntry) string {
	if word.SourceSetID != "" {
		return word.SourceSetID
	}
	return s.snap.SetID
}

func (s *activeSession) recordWrong(word entity.WordEntry) {
	s.snap.WrongAnswers = append(s.snap.WrongAnswers, entity.WrongAnswer{
		WordID:      word.ID,
		SourceSetID: s.sourceOf(word),
	})
}

// uniqueWrong counts distinct (set, word) pairs answered wrong.
func (s *activeSession) uniqueWrong() int {
	seen := make(map[entity.WrongAnswer]struct{}, len(s.snap.WrongAnswers))
	for _, item := range s.snap.WrongAnswers {
		if item.SourceSetID == "" {
			item.SourceSetID = s.snap.SetID
		}
		seen[item] = struct{}{}
	}
	return len(seen)
}

// stopTimers cancels the ticker and any pending delayed transition.
func (s *activeSession) stopTimers() {
	if s.stopTicker != nil {
		s.stopTicker()
		s.stopTicker = nil
	}
	for _, stop := range s.timers {
		stop()
	}
	s.timers = nil
}
