package entity

import (
	"strings"
	"time"
)

// StudyMode selects the session engine.
type StudyMode string

const (
	ModeFlashcard StudyMode = "flashcard"
	ModeLearn     StudyMode = "learn"
	ModeMatching  StudyMode = "matching"
)

// ParseStudyMode converts user input into a StudyMode.
func ParseStudyMode(s string) (StudyMode, error) {
	switch StudyMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeFlashcard:
		return ModeFlashcard, nil
	case ModeLearn:
		return ModeLearn, nil
	case ModeMatching:
		return ModeMatching, nil
	default:
		return "", ErrInvalidMode
	}
}

// SwipeDirection is the flashcard verdict.
type SwipeDirection string

const (
	SwipeKnown    SwipeDirection = "known"
	SwipeLearning SwipeDirection = "learning"
)

// ParseSwipeDirection accepts known/learning and the right/left gesture aliases.
func ParseSwipeDirection(s string) (SwipeDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "known", "right":
		return SwipeKnown, nil
	case "learning", "left":
		return SwipeLearning, nil
	default:
		return "", ErrInvalidSwipe
	}
}

// PolicyKind enumerates word selection policies.
type PolicyKind string

const (
	PolicyAll           PolicyKind = "all"
	PolicyFixedCount    PolicyKind = "fixed"
	PolicyUnlearnedOnly PolicyKind = "unlearned"
	PolicyCustomCount   PolicyKind = "custom"
)

// SelectionPolicy decides which words of a set populate a session.
// Count limits UnlearnedOnly when positive and is required for the count policies.
type SelectionPolicy struct {
	Kind  PolicyKind `json:"kind"`
	Count int        `json:"count,omitempty"`
}

func AllWords() SelectionPolicy         { return SelectionPolicy{Kind: PolicyAll} }
func FixedCount(n int) SelectionPolicy  { return SelectionPolicy{Kind: PolicyFixedCount, Count: n} }
func UnlearnedOnly() SelectionPolicy    { return SelectionPolicy{Kind: PolicyUnlearnedOnly} }
func CustomCount(n int) SelectionPolicy { return SelectionPolicy{Kind: PolicyCustomCount, Count: n} }

func (p SelectionPolicy) IsZero() bool   { return p.Kind == "" }
func (p SelectionPolicy) String() string { return string(p.Kind) }

// Validate rejects user-supplied counts that cannot produce a session.
func (p SelectionPolicy) Validate() error {
	switch p.Kind {
	case PolicyAll, PolicyFixedCount, PolicyUnlearnedOnly:
		return nil
	case PolicyCustomCount:
		if p.Count <= 0 {
			return ErrInvalidWordCount
		}
		return nil
	default:
		return ErrInvalidPolicy
	}
}

// ParseSelectionPolicy builds a policy from its textual kind; an empty kind means all.
func ParseSelectionPolicy(kind string, count int) (SelectionPolicy, error) {
	var p SelectionPolicy
	switch PolicyKind(strings.ToLower(strings.TrimSpace(kind))) {
	case "", PolicyAll:
		p = AllWords()
	case PolicyFixedCount:
		p = FixedCount(count)
	case PolicyUnlearnedOnly:
		p = SelectionPolicy{Kind: PolicyUnlearnedOnly, Count: count}
	case PolicyCustomCount:
		p = CustomCount(count)
	default:
		return SelectionPolicy{}, ErrInvalidPolicy
	}
	return p, p.Validate()
}

// WrongAnswer records a word answered incorrectly during a session.
type WrongAnswer struct {
	WordID      WordID `json:"wordId"`
	SourceSetID string `json:"sourceSetId"`
}

// LearnQuestion is a word with a prompt direction fixed for the session.
type LearnQuestion struct {
	Word      WordEntry `json:"word"`
	EngToViet bool      `json:"isEngToViet"`
}

// LearnOption is one of the four answers offered for a question.
type LearnOption struct {
	ID          WordID `json:"id"`
	SourceSetID string `json:"sourceSetId,omitempty"`
	Text        string `json:"text"`
}

// RenderedQuestion is what the presentation shows for a learn question.
type RenderedQuestion struct {
	WordID    WordID        `json:"wordId"`
	Prompt    string        `json:"prompt"`
	EngToViet bool          `json:"isEngToViet"`
	Options   []LearnOption `json:"options"`
}

// CardSide tells whether a matching card shows the term or its definition.
type CardSide string

const (
	CardTerm       CardSide = "term"
	CardDefinition CardSide = "definition"
)

// MatchCard is one face of a matching pair. Both faces share RefID and Pair; Pair
// only differs from RefID when two session words carry the same id.
type MatchCard struct {
	ID          string   `json:"id"`
	RefID       WordID   `json:"refId"`
	Pair        string   `json:"pair"`
	SourceSetID string   `json:"sourceSetId,omitempty"`
	Side        CardSide `json:"side"`
	Content     string   `json:"content"`
	Batch       int      `json:"batch"`
}

// FlashcardState is the flashcard part of a snapshot.
type FlashcardState struct {
	Known    int  `json:"known"`
	Learning int  `json:"learning"`
	Flipped  bool `json:"flipped,omitempty"`
}

// LearnState is the learn part of a snapshot.
type LearnState struct {
	Questions []LearnQuestion `json:"questions"`
	Options   []LearnOption   `json:"options,omitempty"`
	Correct   int             `json:"correct"`
	Wrong     int             `json:"wrong"`
	Locked    bool            `json:"answerLocked,omitempty"`
}

// MatchingState is the matching part of a snapshot. Pending selections are not
// persisted; a resumed game starts with nothing selected.
type MatchingState struct {
	Cards          []MatchCard `json:"cards"`
	Matched        []string    `json:"matched"`
	ElapsedSeconds int         `json:"elapsedSeconds"`
	CorrectPairs   int         `json:"correctPairs"`
	WrongAttempts  int         `json:"wrongAttempts"`
	BatchPairs     int         `json:"batchPairs"`
	ActiveBatch    int         `json:"activeBatch"`
}

// SnapshotVersion is bumped when the snapshot layout changes incompatibly.
const SnapshotVersion = 1

// Snapshot is the persisted form of an in-flight session.
type Snapshot struct {
	Version      int             `json:"version"`
	SessionID    string          `json:"sessionId"`
	Mode         StudyMode       `json:"mode"`
	SetID        string          `json:"setId"`
	Words        []WordEntry     `json:"words"`
	IsRelearn    bool            `json:"isRelearn"`
	StartedAt    time.Time       `json:"startedAt"`
	SavedAt      time.Time       `json:"savedAt"`
	Index        int             `json:"index"`
	WrongAnswers []WrongAnswer   `json:"wrongAnswers"`
	Flashcard    *FlashcardState `json:"flashcard,omitempty"`
	Learn        *LearnState     `json:"learn,omitempty"`
	Matching     *MatchingState  `json:"matching,omitempty"`
}

// FlashcardSummary is reported when a flashcard session completes.
type FlashcardSummary struct {
	Known       int `json:"known"`
	Learning    int `json:"learning"`
	UniqueWrong int `json:"uniqueWrong"`
}

// LearnVerdict grades a finished learn session.
type LearnVerdict string

const (
	LearnPerfect    LearnVerdict = "perfect"
	LearnGood       LearnVerdict = "good"
	LearnKeepTrying LearnVerdict = "keep_trying"
)

// LearnSummary is reported when a learn session completes.
type LearnSummary struct {
	Correct     int          `json:"correct"`
	Wrong       int          `json:"wrong"`
	Total       int          `json:"total"`
	Accuracy    int          `json:"accuracy"`
	UniqueWrong int          `json:"uniqueWrong"`
	Verdict     LearnVerdict `json:"verdict"`
}

// MatchingSummary is reported when a matching game completes.
type MatchingSummary struct {
	ElapsedSeconds int `json:"elapsedSeconds"`
	CorrectPairs   int `json:"correctPairs"`
	TotalPairs     int `json:"totalPairs"`
	WrongAttempts  int `json:"wrongAttempts"`
	Accuracy       int `json:"accuracy"`
}

// SessionSummary wraps the mode-specific result of a completed session.
type SessionSummary struct {
	SessionID   string            `json:"sessionId"`
	Mode        StudyMode         `json:"mode"`
	SetID       string            `json:"setId"`
	IsRelearn   bool              `json:"isRelearn"`
	Minutes     int               `json:"minutes"`
	CanRelearn  bool              `json:"canRelearn"`
	Flashcard   *FlashcardSummary `json:"flashcard,omitempty"`
	Learn       *LearnSummary     `json:"learn,omitempty"`
	Matching    *MatchingSummary  `json:"matching,omitempty"`
	CompletedAt time.Time         `json:"completedAt"`
}
