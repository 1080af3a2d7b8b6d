package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/vocstudy/internal/entity"
	"github.com/eslsoft/vocstudy/internal/repository"
)

// Scheduler runs fn once after d. The returned func cancels it.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (stop func() bool)
}

type timerScheduler struct{}

// NewTimerScheduler schedules on runtime timers.
func NewTimerScheduler() Scheduler { return timerScheduler{} }

func (timerScheduler) AfterFunc(d time.Duration, fn func()) func() bool {
	return time.AfterFunc(d, fn).Stop
}

// StudyOptions holds the timing and layout knobs of the session engines.
// DefaultCount fills a fixed-count policy that carries no count.
type StudyOptions struct {
	FeedbackDelay   time.Duration
	MatchEvalDelay  time.Duration
	MatchResetDelay time.Duration
	TickInterval    time.Duration
	BatchPairs      int
	DefaultCount    int
}

func DefaultStudyOptions() StudyOptions {
	return StudyOptions{
		FeedbackDelay:   time.Second,
		MatchEvalDelay:  300 * time.Millisecond,
		MatchResetDelay: 600 * time.Millisecond,
		TickInterval:    time.Second,
		BatchPairs:      DefaultBatchPairs,
		DefaultCount:    20,
	}
}

func (o StudyOptions) withDefaults() StudyOptions {
	d := DefaultStudyOptions()
	if o.FeedbackDelay <= 0 {
		o.FeedbackDelay = d.FeedbackDelay
	}
	if o.MatchEvalDelay <= 0 {
		o.MatchEvalDelay = d.MatchEvalDelay
	}
	if o.MatchResetDelay <= 0 {
		o.MatchResetDelay = d.MatchResetDelay
	}
	if o.TickInterval <= 0 {
		o.TickInterval = d.TickInterval
	}
	if o.BatchPairs <= 0 {
		o.BatchPairs = d.BatchPairs
	}
	if o.DefaultCount <= 0 {
		o.DefaultCount = d.DefaultCount
	}
	return o
}

// SessionController is the command surface used by the presentation layer.
type SessionController interface {
	SelectSet(ctx context.Context, ref entity.SetReference) (*SetDetail, error)
	StartSession(ctx context.Context, ref entity.SetReference, mode entity.StudyMode, policy entity.SelectionPolicy) (*SessionView, error)
	Swipe(ctx context.Context, dir entity.SwipeDirection) (*SessionView, error)
	Flip(ctx context.Context) (*SessionView, error)
	SubmitAnswer(ctx context.Context, optionID entity.WordID) (*SessionView, error)
	SelectCard(ctx context.Context, cardID string) (*SessionView, error)
	Resume(ctx context.Context) (*SessionView, error)
	RepeatLastSession(ctx context.Context) (*SessionView, error)
	StartRelearn(ctx context.Context, mode entity.StudyMode) (*SessionView, error)
	EndSession(ctx context.Context) error
	ResetAllProgress(ctx context.Context) error
	View(ctx context.Context) (*SessionView, error)
	Close()
}

// Core holds the catalog, the mastery store and at most one running session.
// Commands and timer callbacks are serialised on mu.
type Core struct {
	mu sync.Mutex

	catalog   *Catalog
	mastery   *MasteryService
	selector  *WordSelector
	library   *Library
	snapshots repository.SnapshotRepository
	scheduler Scheduler
	logger    logrus.FieldLogger
	opts      StudyOptions
	clock     func() time.Time
	newID     func() string

	flashcard flashcardEngine
	learn     learnEngine
	matching  matchingEngine

	current    *entity.VocabSet
	active     *activeSession
	generation uint64
}

var _ SessionController = (*Core)(nil)

func NewCore(
	catalog *Catalog,
	mastery *MasteryService,
	selector *WordSelector,
	library *Library,
	snapshots repository.SnapshotRepository,
	shuffler *Shuffler,
	scheduler Scheduler,
	opts StudyOptions,
	logger logrus.FieldLogger,
) *Core {
	opts = opts.withDefaults()
	return &Core{
		catalog:   catalog,
		mastery:   mastery,
		selector:  selector,
		library:   library,
		snapshots: snapshots,
		scheduler: scheduler,
		logger:    logger,
		opts:      opts,
		clock:     time.Now,
		newID:     uuid.NewString,
		flashcard: flashcardEngine{mastery: mastery},
		learn:     learnEngine{mastery: mastery, catalog: catalog, shuffler: shuffler},
		matching:  matchingEngine{mastery: mastery, shuffler: shuffler, batchPairs: opts.BatchPairs},
	}
}

// resolve turns a reference into a set whose entries all carry a source set id.
func (c *Core) resolve(ref entity.SetReference) (entity.VocabSet, error) {
	if set, ok := ref.Resolved(); ok {
		return set.WithSourceSet(), nil
	}
	id := ref.ID()
	if id == entity.WeakReviewSetID {
		set, ok := c.mastery.BuildWeakReviewSet()
		if !ok {
			return entity.VocabSet{}, entity.ErrNoWeakWords
		}
		return set, nil
	}
	set, ok := c.catalog.Set(id)
	if !ok {
		return entity.VocabSet{}, fmt.Errorf("%w: %q", entity.ErrSetNotFound, id)
	}
	return set.WithSourceSet(), nil
}

func (c *Core) SelectSet(ctx context.Context, ref entity.SetReference) (*SetDetail, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	set, err := c.resolve(ref)
	if err != nil {
		return nil, err
	}
	c.current = &set
	detail := c.library.Detail(set)
	return &detail, nil
}

func (c *Core) StartSession(ctx context.Context, ref entity.SetReference, mode entity.StudyMode, policy entity.SelectionPolicy) (*SessionView, error) {
	if _, err := entity.ParseStudyMode(string(mode)); err != nil {
		return nil, err
	}
	if policy.IsZero() {
		policy = entity.AllWords()
	}
	if policy.Kind == entity.PolicyFixedCount && policy.Count <= 0 {
		policy.Count = c.opts.DefaultCount
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	set, err := c.resolve(ref)
	if err != nil {
		return nil, err
	}
	words, err := c.selector.Select(ctx, set, policy)
	if err != nil {
		c.warn(err, "selection history not persisted")
	}
	if len(words) == 0 {
		return nil, entity.ErrEmptySelection
	}

	weakReview := set.ID == entity.WeakReviewSetID
	dataset := entity.DatasetFull
	if weakReview {
		dataset = entity.DatasetWeak
	}
	c.current = &set
	return c.begin(ctx, set, mode, words, weakReview && mode != entity.ModeMatching, entity.LastSession{
		Mode:    mode,
		Dataset: dataset,
		SetID:   set.ID,
		Policy:  policy,
	}), nil
}

// begin replaces any running session with a new one over words.
func (c *Core) begin(ctx context.Context, set entity.VocabSet, mode entity.StudyMode, words []entity.WordEntry, relearn bool, last entity.LastSession) *SessionView {
	c.teardown(ctx, true)

	now := c.clock()
	c.generation++
	s := &activeSession{
		snap: entity.Snapshot{
			Version:      entity.SnapshotVersion,
			SessionID:    c.newID(),
			Mode:         mode,
			SetID:        set.ID,
			Words:        words,
			IsRelearn:    relearn,
			StartedAt:    now,
			WrongAnswers: []entity.WrongAnswer{},
		},
		set:        set,
		generation: c.generation,
		trackedAt:  now,
	}
	if err := c.mastery.TrackSessionStart(ctx, last); err != nil {
		c.warn(err, "session start not persisted")
	}

	switch mode {
	case entity.ModeLearn:
		c.learn.start(s)
	case entity.ModeMatching:
		c.matching.start(s)
	default:
		c.flashcard.start(s)
	}
	c.active = s
	if mode == entity.ModeMatching {
		c.startTicker(s)
	}
	c.persist(ctx, s)

	c.logger.WithFields(logrus.Fields{
		"session_id": s.snap.SessionID,
		"mode":       mode,
		"set_id":     set.ID,
		"words":      len(words),
		"relearn":    relearn,
	}).Info("study session started")
	return c.viewLocked(s)
}

// teardown stops the running session. Completed sessions were already accounted for.
func (c *Core) teardown(ctx context.Context, trackEnd bool) {
	s := c.active
	if s == nil {
		return
	}
	c.active = nil
	c.generation++
	s.stopTimers()
	if s.completed || !trackEnd {
		return
	}
	if err := c.mastery.TrackSessionEnd(ctx, c.minutesSince(s.trackedAt)); err != nil {
		c.warn(err, "study time not persisted")
	}
}

func (c *Core) minutesSince(t time.Time) int {
	return int(math.Round(c.clock().Sub(t).Minutes()))
}

// require returns the running session when it is in mode.
func (c *Core) require(mode entity.StudyMode) (*activeSession, error) {
	s := c.active
	if s == nil || s.completed {
		return nil, entity.ErrNoActiveSession
	}
	if s.snap.Mode != mode {
		return nil, entity.ErrModeMismatch
	}
	return s, nil
}

func (c *Core) Swipe(ctx context.Context, dir entity.SwipeDirection) (*SessionView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, err := c.require(entity.ModeFlashcard)
	if err != nil {
		return nil, err
	}
	done, err := c.flashcard.swipe(ctx, s, dir)
	if errors.Is(err, entity.ErrInvalidSwipe) {
		return nil, err
	}
	if err != nil {
		c.warn(err, "flashcard progress not persisted")
	}
	if done {
		c.finish(ctx, s)
	} else {
		c.persist(ctx, s)
	}
	return c.viewLocked(s), nil
}

func (c *Core) Flip(ctx context.Context) (*SessionView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, err := c.require(entity.ModeFlashcard)
	if err != nil {
		return nil, err
	}
	c.flashcard.flip(s)
	c.persist(ctx, s)
	return c.viewLocked(s), nil
}

func (c *Core) SubmitAnswer(ctx context.Context, optionID entity.WordID) (*SessionView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, err := c.require(entity.ModeLearn)
	if err != nil {
		return nil, err
	}
	question := s.snap.Learn.Questions[min(s.snap.Index, len(s.snap.Learn.Questions)-1)]
	accepted, correct, err := c.learn.answer(ctx, s, optionID)
	if errors.Is(err, entity.ErrUnknownWord) {
		return nil, err
	}
	if err != nil {
		c.warn(err, "learn progress not persisted")
	}
	if !accepted {
		return c.viewLocked(s), nil
	}

	s.feedback = &AnswerFeedback{Selected: optionID, CorrectID: question.Word.ID, Correct: correct}
	c.persist(ctx, s)
	c.schedule(s, c.opts.FeedbackDelay, func(ctx context.Context) {
		s.feedback = nil
		if c.learn.advance(s) {
			c.finish(ctx, s)
			return
		}
		c.persist(ctx, s)
	})
	return c.viewLocked(s), nil
}

func (c *Core) SelectCard(ctx context.Context, cardID string) (*SessionView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, err := c.require(entity.ModeMatching)
	if err != nil {
		return nil, err
	}
	ready, err := c.matching.selectCard(s, cardID)
	if err != nil {
		return nil, err
	}
	if ready {
		c.schedule(s, c.opts.MatchEvalDelay, func(ctx context.Context) {
			c.evaluatePair(ctx, s)
		})
	}
	return c.viewLocked(s), nil
}

func (c *Core) evaluatePair(ctx context.Context, s *activeSession) {
	out, err := c.matching.evaluate(ctx, s)
	if err != nil {
		c.warn(err, "matching progress not persisted")
	}
	if out.mismatch {
		pair := out.pair
		s.flashing = pair
		c.schedule(s, c.opts.MatchResetDelay, func(context.Context) {
			if slices.Equal(s.flashing, pair) {
				s.flashing = nil
			}
		})
	}
	if out.done {
		c.finish(ctx, s)
		return
	}
	c.persist(ctx, s)
}

// schedule runs fn under the lock after d unless the session was replaced,
// finished or torn down in the meantime.
func (c *Core) schedule(s *activeSession, d time.Duration, fn func(ctx context.Context)) {
	gen := s.generation
	stop := c.scheduler.AfterFunc(d, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.active != s || s.generation != gen || s.completed {
			return
		}
		fn(context.Background())
	})
	s.timers = append(s.timers, stop)
}

func (c *Core) startTicker(s *activeSession) {
	gen := s.generation
	var tick func()
	tick = func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.active != s || s.generation != gen || s.completed {
			return
		}
		c.matching.tick(s)
		c.persist(context.Background(), s)
		s.stopTicker = c.scheduler.AfterFunc(c.opts.TickInterval, tick)
	}
	s.stopTicker = c.scheduler.AfterFunc(c.opts.TickInterval, tick)
}

// finish converts the session into progress updates and drops its snapshot.
func (c *Core) finish(ctx context.Context, s *activeSession) {
	s.stopTimers()

	summary := &entity.SessionSummary{
		SessionID:   s.snap.SessionID,
		Mode:        s.snap.Mode,
		SetID:       s.snap.SetID,
		IsRelearn:   s.snap.IsRelearn,
		Minutes:     c.minutesSince(s.trackedAt),
		CompletedAt: c.clock(),
	}
	var err error
	switch s.snap.Mode {
	case entity.ModeLearn:
		summary.Learn, err = c.learn.finish(ctx, s)
		summary.CanRelearn = summary.Learn.UniqueWrong > 0
	case entity.ModeMatching:
		summary.Matching, err = c.matching.finish(ctx, s)
	default:
		summary.Flashcard, err = c.flashcard.finish(ctx, s)
		summary.CanRelearn = summary.Flashcard.UniqueWrong > 0
	}
	if err != nil {
		c.warn(err, "session results not persisted")
	}
	if err := c.mastery.TrackSessionEnd(ctx, summary.Minutes); err != nil {
		c.warn(err, "study time not persisted")
	}
	if err := c.snapshots.Clear(ctx); err != nil {
		c.warn(err, "failed to clear session snapshot")
	}

	s.completed = true
	s.summary = summary
	s.feedback = nil
	s.selected = nil
	s.flashing = nil

	c.logger.WithFields(logrus.Fields{
		"session_id": s.snap.SessionID,
		"mode":       s.snap.Mode,
		"set_id":     s.snap.SetID,
	}).Info("study session completed")
}

// Resume restores the persisted session. Snapshots that no longer resolve are
// discarded and reported as ErrNoSnapshot.
func (c *Core) Resume(ctx context.Context) (*SessionView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap, err := c.snapshots.Load(ctx)
	if err != nil {
		c.warn(err, "failed to load session snapshot")
		return nil, entity.ErrNoSnapshot
	}
	if snap == nil {
		return nil, entity.ErrNoSnapshot
	}
	set, err := c.resumeSet(snap)
	if err != nil || len(snap.Words) == 0 || !snapshotConsistent(snap) {
		c.logger.WithError(err).WithField("set_id", snap.SetID).Debug("discarding unresumable session snapshot")
		c.discardSnapshot(ctx)
		return nil, entity.ErrNoSnapshot
	}

	c.teardown(ctx, true)
	c.generation++
	s := &activeSession{
		snap:       *snap,
		set:        set,
		generation: c.generation,
		trackedAt:  c.clock(),
	}
	if s.snap.WrongAnswers == nil {
		s.snap.WrongAnswers = []entity.WrongAnswer{}
	}
	c.active = s
	c.current = &set

	done := false
	switch s.snap.Mode {
	case entity.ModeFlashcard:
		done = s.snap.Index >= len(s.snap.Words)
	case entity.ModeLearn:
		st := s.snap.Learn
		if st.Locked {
			done = c.learn.advance(s)
		} else {
			done = s.snap.Index >= len(st.Questions)
			if !done && len(st.Options) == 0 {
				c.learn.prepare(s)
			}
		}
	case entity.ModeMatching:
		st := s.snap.Matching
		done = len(st.Matched) >= len(st.Cards)
		if !done {
			c.matching.advanceBatch(s)
			c.startTicker(s)
		}
	}
	if done {
		c.finish(ctx, s)
	} else {
		c.persist(ctx, s)
	}

	c.logger.WithFields(logrus.Fields{
		"session_id": s.snap.SessionID,
		"mode":       s.snap.Mode,
		"index":      s.snap.Index,
	}).Info("study session resumed")
	return c.viewLocked(s), nil
}

// resumeSet finds the set a snapshot was taken from. The weak-review set is
// rebuilt from the snapshot's own words, since the session may already have
// cleared them from the weak lists.
func (c *Core) resumeSet(snap *entity.Snapshot) (entity.VocabSet, error) {
	if snap.SetID != entity.WeakReviewSetID {
		return c.resolve(entity.SetByID(snap.SetID))
	}
	if len(snap.Words) == 0 {
		return entity.VocabSet{}, entity.ErrNoWeakWords
	}
	return entity.VocabSet{
		ID:          entity.WeakReviewSetID,
		CategoryID:  WeakReviewCategoryID,
		Title:       WeakReviewTitle,
		Description: WeakReviewDescription,
		Color:       WeakReviewColor,
		IsDynamic:   true,
		Data:        append([]entity.WordEntry(nil), snap.Words...),
	}, nil
}

// snapshotConsistent rejects snapshots whose mode state cannot be rendered.
func snapshotConsistent(snap *entity.Snapshot) bool {
	if snap.Index < 0 || snap.Index > len(snap.Words) {
		return false
	}
	switch snap.Mode {
	case entity.ModeFlashcard:
		return snap.Flashcard != nil
	case entity.ModeLearn:
		st := snap.Learn
		return st != nil && len(st.Questions) > 0 && snap.Index <= len(st.Questions)
	case entity.ModeMatching:
		st := snap.Matching
		if st == nil || len(st.Cards) == 0 {
			return false
		}
		ids := lo.SliceToMap(st.Cards, func(c entity.MatchCard) (string, struct{}) {
			return c.ID, struct{}{}
		})
		return lo.EveryBy(st.Matched, func(id string) bool {
			_, ok := ids[id]
			return ok
		}) && len(lo.Uniq(st.Matched)) == len(st.Matched)
	default:
		return false
	}
}

// RepeatLastSession restarts the most recent session configuration. A weak-only
// session whose weak words are gone falls back to the whole set with a notice.
func (c *Core) RepeatLastSession(ctx context.Context) (*SessionView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.repeatLocked(ctx)
}

func (c *Core) repeatLocked(ctx context.Context) (*SessionView, error) {
	last, ok := c.mastery.LastSession()
	if !ok {
		return nil, entity.ErrNoLastSession
	}

	var (
		set entity.VocabSet
		err error
	)
	if c.current != nil && c.current.ID == last.SetID && last.SetID != entity.WeakReviewSetID {
		set = *c.current
	} else if set, err = c.resolve(entity.SetByID(last.SetID)); err != nil {
		return nil, err
	}

	var (
		words   []entity.WordEntry
		relearn bool
		notice  string
		dataset = entity.DatasetFull
	)
	switch {
	case set.ID == entity.WeakReviewSetID:
		words = append([]entity.WordEntry(nil), set.Data...)
		relearn = last.Mode != entity.ModeMatching
		dataset = entity.DatasetWeak
	case last.Dataset == entity.DatasetWeak && last.Mode != entity.ModeMatching:
		words = c.mastery.WeakEntries(set)
		if len(words) > 0 {
			relearn = true
			dataset = entity.DatasetWeak
		} else {
			notice = NoticeWeakExhausted
		}
	}
	if dataset == entity.DatasetFull {
		policy := last.Policy
		if policy.IsZero() || policy.Validate() != nil {
			policy = entity.AllWords()
		}
		if words, err = c.selector.Select(ctx, set, policy); err != nil {
			c.warn(err, "selection history not persisted")
		}
		last.Policy = policy
	}
	if len(words) == 0 {
		return nil, entity.ErrEmptySelection
	}

	c.current = &set
	last.Dataset = dataset
	last.SetID = set.ID
	v := c.begin(ctx, set, last.Mode, words, relearn, last)
	c.active.notice = notice
	v.Notice = notice
	return v, nil
}

// StartRelearn studies only the weak words of the current set. Learn stays learn,
// every other mode becomes flashcards. On the weak-review set it repeats the last
// session over the rebuilt set.
func (c *Core) StartRelearn(ctx context.Context, mode entity.StudyMode) (*SessionView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	setID := ""
	if c.current != nil {
		setID = c.current.ID
	} else if last, ok := c.mastery.LastSession(); ok {
		setID = last.SetID
	}
	if setID == "" {
		return nil, entity.ErrNoLastSession
	}
	if setID == entity.WeakReviewSetID {
		if _, ok := c.mastery.LastSession(); !ok {
			return nil, entity.ErrNoLastSession
		}
		return c.repeatLocked(ctx)
	}

	set, err := c.resolve(entity.SetByID(setID))
	if err != nil {
		return nil, err
	}
	words := c.mastery.WeakEntries(set)
	if len(words) == 0 {
		return nil, entity.ErrNoWeakWords
	}
	if mode != entity.ModeLearn {
		mode = entity.ModeFlashcard
	}
	c.current = &set
	return c.begin(ctx, set, mode, words, true, entity.LastSession{
		Mode:    mode,
		Dataset: entity.DatasetWeak,
		SetID:   set.ID,
		Policy:  entity.AllWords(),
	}), nil
}

// EndSession leaves the running session. An unfinished session keeps its snapshot
// so it can be resumed later.
func (c *Core) EndSession(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return entity.ErrNoActiveSession
	}
	if !c.active.completed {
		c.persist(ctx, c.active)
	}
	c.teardown(ctx, true)
	return nil
}

// ResetAllProgress wipes the mastery record and any saved session.
func (c *Core) ResetAllProgress(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardown(ctx, false)
	c.current = nil

	var errs []error
	if err := c.mastery.Reset(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := c.snapshots.Clear(ctx); err != nil {
		errs = append(errs, fmt.Errorf("clear session snapshot: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	c.logger.Info("study progress reset")
	return nil
}

func (c *Core) View(ctx context.Context) (*SessionView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return nil, entity.ErrNoActiveSession
	}
	return c.viewLocked(c.active), nil
}

// Close stops timers and accounts for the running session's study time.
func (c *Core) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardown(context.Background(), true)
}

func (c *Core) persist(ctx context.Context, s *activeSession) {
	s.snap.SavedAt = c.clock()
	if err := c.snapshots.Save(ctx, &s.snap); err != nil {
		c.warn(err, "failed to save session snapshot")
	}
}

func (c *Core) discardSnapshot(ctx context.Context) {
	if err := c.snapshots.Clear(ctx); err != nil {
		c.warn(err, "failed to clear session snapshot")
	}
}

func (c *Core) warn(err error, msg string) {
	entry := c.logger.WithError(err)
	if c.active != nil {
		entry = entry.WithField("session_id", c.active.snap.SessionID)
	}
	entry.Warn(msg)
}

func (c *Core) viewLocked(s *activeSession) *SessionView {
	v := &SessionView{
		SessionID: s.snap.SessionID,
		Mode:      s.snap.Mode,
		SetID:     s.snap.SetID,
		SetTitle:  s.set.Title,
		IsRelearn: s.snap.IsRelearn,
		Index:     s.snap.Index,
		Total:     len(s.snap.Words),
		Completed: s.completed,
		Notice:    s.notice,
		Summary:   s.summary,
	}
	if s.completed {
		return v
	}
	switch s.snap.Mode {
	case entity.ModeFlashcard:
		v.Flashcard = c.flashcard.view(s)
	case entity.ModeLearn:
		v.Learn = c.learn.view(s)
	case entity.ModeMatching:
		v.Matching = c.matching.view(s)
	}
	return v
}
