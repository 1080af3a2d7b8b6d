package usecase

import "github.com/eslsoft/vocstudy/internal/entity"

// Notices attached to a session view.
const (
	NoticeWeakExhausted = "weak words already cleared, studying the whole set"
)

// AnswerFeedback describes the last learn answer while its question is locked.
type AnswerFeedback struct {
	Selected  entity.WordID `json:"selected"`
	CorrectID entity.WordID `json:"correctId"`
	Correct   bool          `json:"correct"`
}

type FlashcardView struct {
	Card     *entity.WordEntry `json:"card,omitempty"`
	Known    int               `json:"known"`
	Learning int               `json:"learning"`
	Flipped  bool              `json:"flipped"`
}

type LearnView struct {
	Question *entity.RenderedQuestion `json:"question,omitempty"`
	Correct  int                      `json:"correct"`
	Wrong    int                      `json:"wrong"`
	Locked   bool                     `json:"locked"`
	Feedback *AnswerFeedback          `json:"feedback,omitempty"`
}

// MatchCardView is a card of the active batch.
type MatchCardView struct {
	ID       string          `json:"id"`
	Side     entity.CardSide `json:"side"`
	Content  string          `json:"content"`
	Matched  bool            `json:"matched"`
	Selected bool            `json:"selected"`
	Error    bool            `json:"error"`
}

type MatchingView struct {
	Cards          []MatchCardView `json:"cards"`
	ElapsedSeconds int             `json:"elapsedSeconds"`
	CorrectPairs   int             `json:"correctPairs"`
	WrongAttempts  int             `json:"wrongAttempts"`
	TotalPairs     int             `json:"totalPairs"`
	ActiveBatch    int             `json:"activeBatch"`
	BatchCount     int             `json:"batchCount"`
}

// SessionView is the read model handed to the presentation layer.
type SessionView struct {
	SessionID string                 `json:"sessionId"`
	Mode      entity.StudyMode       `json:"mode"`
	SetID     string                 `json:"setId"`
	SetTitle  string                 `json:"setTitle"`
	IsRelearn bool                   `json:"isRelearn"`
	Index     int                    `json:"index"`
	Total     int                    `json:"total"`
	Completed bool                   `json:"completed"`
	Notice    string                 `json:"notice,omitempty"`
	Flashcard *FlashcardView         `json:"flashcard,omitempty"`
	Learn     *LearnView             `json:"learn,omitempty"`
	Matching  *MatchingView          `json:"matching,omitempty"`
	Summary   *entity.SessionSummary `json:"summary,omitempty"`
}
