package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kvrepo "github.com/eslsoft/vocstudy/internal/adapter/repository"
	"github.com/eslsoft/vocstudy/internal/entity"
	"github.com/eslsoft/vocstudy/internal/usecase"
)

// idleScheduler never fires; delayed transitions are covered by the usecase tests.
type idleScheduler struct{}

func (idleScheduler) AfterFunc(time.Duration, func()) func() bool {
	return func() bool { return true }
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	data := func(prefix string, n int) []entity.WordEntry {
		out := make([]entity.WordEntry, n)
		for i := range out {
			out[i] = entity.WordEntry{
				ID:      entity.WordID(fmt.Sprintf("%s%d", prefix, i+1)),
				Word:    fmt.Sprintf("word %d", i+1),
				Meaning: fmt.Sprintf("meaning %d", i+1),
			}
		}
		return out
	}
	catalog := usecase.NewCatalog(nil, []entity.VocabSet{
		{ID: "A", CategoryID: "topic", Title: "Animals", Data: data("a", 4)},
		{ID: "B", CategoryID: "gdpt", Title: "Unit 1", Data: data("b", 6)},
	})
	store := kvrepo.NewMemoryKeyValueStore()
	mastery := usecase.NewMasteryService(ctx, kvrepo.NewMasteryRepository(store, logger), catalog, logger)
	shuffler := usecase.NewShuffler(1)
	library := usecase.NewLibrary(catalog, mastery)
	core := usecase.NewCore(
		catalog,
		mastery,
		usecase.NewWordSelector(mastery, shuffler, usecase.SelectorConfig{}),
		library,
		kvrepo.NewSnapshotRepository(store, logger),
		shuffler,
		idleScheduler{},
		usecase.DefaultStudyOptions(),
		logger,
	)
	t.Cleanup(core.Close)
	return NewHandler(core, library, logger).Routes()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestFlashcardSessionOverHTTP(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/session", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "no_active_session", decodeBody[errorResponse](t, rec).Code)

	rec = do(t, h, http.MethodPost, "/sessions", `{"setId":"A","mode":"flashcard"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	view := decodeBody[usecase.SessionView](t, rec)
	assert.Equal(t, 4, view.Total)
	require.NotNil(t, view.Flashcard)

	rec = do(t, h, http.MethodPost, "/session/flip", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[usecase.SessionView](t, rec).Flashcard.Flipped)

	rec = do(t, h, http.MethodPost, "/session/swipe", `{"direction":"right"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeBody[usecase.SessionView](t, rec).Index)

	rec = do(t, h, http.MethodPost, "/session/swipe", `{"direction":"up"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/session/answer", `{"optionId":"a1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "mode_mismatch", decodeBody[errorResponse](t, rec).Code)

	rec = do(t, h, http.MethodDelete, "/session", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodPost, "/session/resume", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeBody[usecase.SessionView](t, rec).Index)

	rec = do(t, h, http.MethodGet, "/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decodeBody[entity.Stats](t, rec)
	assert.Equal(t, 1, stats.TotalWords)
	assert.Equal(t, 1, stats.Sessions, "resuming does not count as a new session")
}

func TestStartSessionValidation(t *testing.T) {
	h := newTestHandler(t)

	cases := []struct {
		name string
		body string
		code int
	}{
		{"unknown mode", `{"setId":"A","mode":"quiz"}`, http.StatusBadRequest},
		{"missing set", `{"mode":"learn"}`, http.StatusBadRequest},
		{"unknown field", `{"setId":"A","mode":"learn","extra":1}`, http.StatusBadRequest},
		{"malformed", `{"setId":`, http.StatusBadRequest},
		{"custom without count", `{"setId":"A","mode":"learn","policy":"custom"}`, http.StatusBadRequest},
		{"unknown set", `{"setId":"Z","mode":"learn"}`, http.StatusNotFound},
		{"no weak words", `{"setId":"weak-review","mode":"learn"}`, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/sessions", tc.body)
			assert.Equal(t, tc.code, rec.Code, rec.Body.String())
		})
	}
}

func TestLearnAndMatchingOverHTTP(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/sessions", `{"setId":"B","mode":"learn","policy":"fixed","count":3}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	view := decodeBody[usecase.SessionView](t, rec)
	require.Equal(t, 3, view.Total)
	require.NotNil(t, view.Learn.Question)

	body := fmt.Sprintf(`{"optionId":%q}`, view.Learn.Question.WordID)
	rec = do(t, h, http.MethodPost, "/session/answer", body)
	require.Equal(t, http.StatusOK, rec.Code)
	view = decodeBody[usecase.SessionView](t, rec)
	assert.True(t, view.Learn.Locked)
	assert.True(t, view.Learn.Feedback.Correct)

	rec = do(t, h, http.MethodPost, "/sessions", `{"setId":"A","mode":"matching"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	view = decodeBody[usecase.SessionView](t, rec)
	require.Len(t, view.Matching.Cards, 8)

	rec = do(t, h, http.MethodPost, "/session/cards/"+view.Matching.Cards[0].ID+"/select", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[usecase.SessionView](t, rec).Matching.Cards[0].Selected)

	rec = do(t, h, http.MethodPost, "/session/cards/bogus/select", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/session/repeat", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entity.ModeMatching, decodeBody[usecase.SessionView](t, rec).Mode)

	rec = do(t, h, http.MethodPost, "/session/relearn", `{"mode":"learn"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "no_weak_words", decodeBody[errorResponse](t, rec).Code)
}

func TestLibraryOverHTTP(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/library?search=unit", "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeBody[usecase.LibraryView](t, rec)
	require.Len(t, view.Sections, 1)
	assert.Equal(t, "B", view.Sections[0].Sets[0].ID)
	assert.Nil(t, view.WeakReview)

	rec = do(t, h, http.MethodGet, "/library?filter="+url.QueryEscape(`words >= 5`), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[usecase.LibraryView](t, rec).Sections, 1)

	rec = do(t, h, http.MethodGet, "/library?progress=half", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, h, http.MethodGet, "/library?order_by=random", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/sets/A", "")
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decodeBody[usecase.SetDetail](t, rec)
	assert.Equal(t, 4, detail.WordCount)
	assert.False(t, detail.CanRelearn)

	rec = do(t, h, http.MethodGet, "/sets/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "set_not_found", decodeBody[errorResponse](t, rec).Code)
}

func TestResetProgressOverHTTP(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/sessions", `{"setId":"A","mode":"flashcard"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = do(t, h, http.MethodPost, "/session/swipe", `{"direction":"known"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/progress/reset", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/stats", "")
	assert.Equal(t, entity.Stats{}, decodeBody[entity.Stats](t, rec))
	rec = do(t, h, http.MethodPost, "/session/resume", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestToStatus(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: %q", entity.ErrSetNotFound, "x"), http.StatusNotFound},
		{entity.ErrNoSnapshot, http.StatusNotFound},
		{entity.ErrEmptySelection, http.StatusConflict},
		{fmt.Errorf("%w: bad", entity.ErrInvalidFilter), http.StatusBadRequest},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		got, _ := toStatus(tc.err)
		assert.Equal(t, tc.code, got, tc.err.Error())
	}
}
