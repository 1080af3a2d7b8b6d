package entity

import "errors"

// Domain errors for the study core.
var (
	ErrKeyNotFound      = errors.New("key not found")
	ErrSetNotFound      = errors.New("vocabulary set not found")
	ErrEmptySelection   = errors.New("no words available for this session")
	ErrInvalidWordCount = errors.New("word count must be a positive number")
	ErrInvalidPolicy    = errors.New("invalid selection policy")
	ErrInvalidMode      = errors.New("invalid study mode")
	ErrInvalidSwipe     = errors.New("invalid swipe direction")
	ErrNoActiveSession  = errors.New("no active study session")
	ErrModeMismatch     = errors.New("command does not apply to the active study mode")
	ErrNoWeakWords      = errors.New("no weak words to relearn")
	ErrNoSnapshot       = errors.New("no resumable session")
	ErrNoLastSession    = errors.New("no previous session to repeat")
	ErrUnknownCard      = errors.New("unknown matching card")
	ErrUnknownWord      = errors.New("word is not part of the active session")
	ErrAnswerLocked     = errors.New("answer already submitted for this question")
	ErrInvalidFilter    = errors.New("invalid library filter")
)
