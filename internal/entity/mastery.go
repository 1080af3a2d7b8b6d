package entity

import (
	"math"
	"strings"
)

// Accuracy is a cumulative attempts/correct counter for one study mode.
type Accuracy struct {
	Attempts int `json:"attempts"`
	Correct  int `json:"correct"`
}

// Percent returns the rounded share of correct attempts, 0 when nothing was attempted.
func (a Accuracy) Percent() int {
	return Percent(a.Correct, a.Attempts)
}

// Percent rounds part/total*100, returning 0 for an empty total.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// Dataset tells whether a session ran over the full set or only its weak words.
type Dataset string

const (
	DatasetFull Dataset = "full"
	DatasetWeak Dataset = "weak"
)

// LastSession remembers the most recently started session for "repeat".
type LastSession struct {
	Mode    StudyMode       `json:"mode"`
	Dataset Dataset         `json:"dataset"`
	SetID   string          `json:"setId"`
	Policy  SelectionPolicy `json:"policy"`
}

// MasteryRecord is the persisted learning progress aggregate.
type MasteryRecord struct {
	TotalWords             int                 `json:"totalWords"`
	TotalMinutes           int                 `json:"totalMinutes"`
	Sessions               int                 `json:"sessions"`
	LearnedIDs             []WordID            `json:"learnedIds"`
	WeakWords              map[string][]WordID `json:"weakWords"`
	RandomSelectionHistory map[string][]WordID `json:"randomSelectionHistory"`
	MatchingAccuracy       Accuracy            `json:"matchingAccuracy"`
	LearnAccuracy          Accuracy            `json:"learnAccuracy"`
	LastSession            *LastSession        `json:"lastSession,omitempty"`
}

// NewMasteryRecord returns an empty record.
func NewMasteryRecord() *MasteryRecord {
	r := &MasteryRecord{}
	r.Normalize()
	return r
}

// Normalize fills nil collections and removes duplicate learned ids.
func (r *MasteryRecord) Normalize() {
	if r.LearnedIDs == nil {
		r.LearnedIDs = []WordID{}
	}
	if r.WeakWords == nil {
		r.WeakWords = map[string][]WordID{}
	}
	if r.RandomSelectionHistory == nil {
		r.RandomSelectionHistory = map[string][]WordID{}
	}
	seen := make(map[WordID]struct{}, len(r.LearnedIDs))
	learned := r.LearnedIDs[:0]
	for _, id := range r.LearnedIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		learned = append(learned, id)
	}
	r.LearnedIDs = learned
	if r.TotalWords < len(r.LearnedIDs) {
		r.TotalWords = len(r.LearnedIDs)
	}
}

// Clone returns a deep copy.
func (r *MasteryRecord) Clone() *MasteryRecord {
	if r == nil {
		return nil
	}
	out := *r
	out.LearnedIDs = append([]WordID(nil), r.LearnedIDs...)
	out.WeakWords = cloneIDMap(r.WeakWords)
	out.RandomSelectionHistory = cloneIDMap(r.RandomSelectionHistory)
	if r.LastSession != nil {
		last := *r.LastSession
		out.LastSession = &last
	}
	return &out
}

func cloneIDMap(in map[string][]WordID) map[string][]WordID {
	out := make(map[string][]WordID, len(in))
	for k, v := range in {
		out[k] = append([]WordID(nil), v...)
	}
	return out
}

// Progress is the learned share of one set.
type Progress struct {
	Learned int `json:"learned"`
	Total   int `json:"total"`
	Percent int `json:"percent"`
}

// Stats is the global progress summary.
type Stats struct {
	TotalWords       int      `json:"totalWords"`
	TotalMinutes     int      `json:"totalMinutes"`
	Sessions         int      `json:"sessions"`
	WeakWords        int      `json:"weakWords"`
	LearnAccuracy    Accuracy `json:"learnAccuracy"`
	MatchingAccuracy Accuracy `json:"matchingAccuracy"`
}

// ProgressFilter narrows the library by completion.
type ProgressFilter string

const (
	ProgressAll        ProgressFilter = "all"
	ProgressCompleted  ProgressFilter = "completed"
	ProgressIncomplete ProgressFilter = "incomplete"
	ProgressOverHalf   ProgressFilter = "gt50"
	ProgressUnderHalf  ProgressFilter = "lt50"
)

// ParseProgressFilter accepts the filter names; an empty string means all.
func ParseProgressFilter(s string) (ProgressFilter, error) {
	switch f := ProgressFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "", ProgressAll:
		return ProgressAll, nil
	case ProgressCompleted, ProgressIncomplete, ProgressOverHalf, ProgressUnderHalf:
		return f, nil
	default:
		return "", ErrInvalidFilter
	}
}

// Matches reports whether a set at the given completion percent passes the filter.
func (f ProgressFilter) Matches(percent int) bool {
	switch f {
	case ProgressCompleted:
		return percent == 100
	case ProgressIncomplete:
		return percent < 100
	case ProgressOverHalf:
		return percent > 50 && percent < 100
	case ProgressUnderHalf:
		return percent < 50
	default:
		return true
	}
}
