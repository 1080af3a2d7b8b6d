package usecase

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/vocstudy/internal/entity"
)

type fakeMasteryRepo struct {
	mu      sync.Mutex
	record  *entity.MasteryRecord
	saves   int
	saveErr error
}

func (r *fakeMasteryRepo) Load(ctx context.Context) (*entity.MasteryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.record == nil {
		return nil, nil
	}
	return r.record.Clone(), nil
}

func (r *fakeMasteryRepo) Save(ctx context.Context, record *entity.MasteryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	r.record = record.Clone()
	return nil
}

func (r *fakeMasteryRepo) Delete(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record = nil
	return nil
}

func (r *fakeMasteryRepo) stored() *entity.MasteryRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.record == nil {
		return nil
	}
	return r.record.Clone()
}

type fakeSnapshotRepo struct {
	mu    sync.Mutex
	snap  *entity.Snapshot
	saves int
}

func (r *fakeSnapshotRepo) Load(ctx context.Context) (*entity.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snap == nil {
		return nil, nil
	}
	return cloneSnapshot(r.snap), nil
}

func (r *fakeSnapshotRepo) Save(ctx context.Context, snapshot *entity.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.snap = cloneSnapshot(snapshot)
	return nil
}

func (r *fakeSnapshotRepo) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap = nil
	return nil
}

func (r *fakeSnapshotRepo) stored() *entity.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snap == nil {
		return nil
	}
	return cloneSnapshot(r.snap)
}

// cloneSnapshot deep-copies the parts a session mutates in place.
func cloneSnapshot(in *entity.Snapshot) *entity.Snapshot {
	out := *in
	out.Words = append([]entity.WordEntry(nil), in.Words...)
	out.WrongAnswers = append([]entity.WrongAnswer(nil), in.WrongAnswers...)
	if in.Flashcard != nil {
		fc := *in.Flashcard
		out.Flashcard = &fc
	}
	if in.Learn != nil {
		ls := *in.Learn
		ls.Questions = append([]entity.LearnQuestion(nil), in.Learn.Questions...)
		ls.Options = append([]entity.LearnOption(nil), in.Learn.Options...)
		out.Learn = &ls
	}
	if in.Matching != nil {
		ms := *in.Matching
		ms.Cards = append([]entity.MatchCard(nil), in.Matching.Cards...)
		ms.Matched = append([]string(nil), in.Matching.Matched...)
		out.Matching = &ms
	}
	return &out
}

type manualTask struct {
	at      time.Duration
	fn      func()
	fired   bool
	stopped bool
}

// manualScheduler runs scheduled callbacks only when the test advances its clock.
type manualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	tasks []*manualTask
}

func (m *manualScheduler) AfterFunc(d time.Duration, fn func()) func() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	task := &manualTask{at: m.now + d, fn: fn}
	m.tasks = append(m.tasks, task)
	return func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		if task.fired || task.stopped {
			return false
		}
		task.stopped = true
		return true
	}
}

// Advance moves the clock by d and runs every callback that falls due, in order.
func (m *manualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()
	for {
		m.mu.Lock()
		var next *manualTask
		for _, task := range m.tasks {
			if task.fired || task.stopped || task.at > target {
				continue
			}
			if next == nil || task.at < next.at {
				next = task
			}
		}
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		next.fired = true
		m.now = next.at
		m.mu.Unlock()
		next.fn()
	}
}

func (m *manualScheduler) pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, task := range m.tasks {
		if !task.fired && !task.stopped {
			n++
		}
	}
	return n
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func words(setID string, n int) []entity.WordEntry {
	out := make([]entity.WordEntry, n)
	for i := range out {
		out[i] = entity.WordEntry{
			ID:      entity.WordID(fmt.Sprintf("%s%d", setID, i+1)),
			Word:    fmt.Sprintf("%s-word-%d", setID, i+1),
			Meaning: fmt.Sprintf("%s-meaning-%d", setID, i+1),
		}
	}
	return out
}

func testCatalog() *Catalog {
	return NewCatalog(nil, []entity.VocabSet{
		{ID: "A", CategoryID: "topic", Title: "Animals", Description: "Pets and wild animals", Data: words("a", 5)},
		{ID: "B", CategoryID: "topic", Title: "Food", Description: "Things to eat", Data: words("b", 4)},
		{ID: "C", CategoryID: "gdpt", Title: "Unit 1", Description: "Greetings", Data: words("c", 1)},
		{ID: "D", CategoryID: "gdpt", Title: "Unit 2", Description: "School", Data: words("d", 25)},
	})
}

type testEnv struct {
	core      *Core
	catalog   *Catalog
	mastery   *MasteryService
	library   *Library
	repo      *fakeMasteryRepo
	snapshots *fakeSnapshotRepo
	scheduler *manualScheduler
	now       time.Time
}

func (e *testEnv) tick(d time.Duration) {
	e.now = e.now.Add(d)
	e.scheduler.Advance(d)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, testCatalog(), &fakeMasteryRepo{}, &fakeSnapshotRepo{})
}

func newTestEnvWith(t *testing.T, catalog *Catalog, repo *fakeMasteryRepo, snapshots *fakeSnapshotRepo) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := quietLogger()
	env := &testEnv{
		catalog:   catalog,
		repo:      repo,
		snapshots: snapshots,
		scheduler: &manualScheduler{},
		now:       time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	shuffler := NewShuffler(42)
	env.mastery = NewMasteryService(ctx, repo, catalog, logger)
	env.library = NewLibrary(catalog, env.mastery)
	selector := NewWordSelector(env.mastery, shuffler, SelectorConfig{})
	env.core = NewCore(catalog, env.mastery, selector, env.library, snapshots, shuffler, env.scheduler, StudyOptions{BatchPairs: 10}, logger)
	env.core.clock = func() time.Time { return env.now }
	seq := 0
	env.core.newID = func() string {
		seq++
		return fmt.Sprintf("session-%d", seq)
	}
	t.Cleanup(env.core.Close)
	return env
}
