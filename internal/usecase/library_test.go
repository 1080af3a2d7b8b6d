package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eslsoft/vocstudy/internal/entity"
	"github.com/eslsoft/vocstudy/internal/repository"
)

func sectionIDs(view *LibraryView) map[string][]string {
	out := make(map[string][]string, len(view.Sections))
	for _, section := range view.Sections {
		out[section.Category.ID] = lo.Map(section.Sets, func(s SetSummary, _ int) string { return s.ID })
	}
	return out
}

func newLibraryFixture(t *testing.T) (*Library, *MasteryService) {
	t.Helper()
	ctx := context.Background()
	catalog := testCatalog()
	mastery := NewMasteryService(ctx, &fakeMasteryRepo{}, catalog, quietLogger())
	for _, id := range []entity.WordID{"a1", "a2", "a3", "a4", "a5", "b1", "c1"} {
		_, err := mastery.MarkLearned(ctx, id)
		require.NoError(t, err)
	}
	require.NoError(t, mastery.RecordWeak(ctx, []entity.WrongAnswer{
		{WordID: "b3", SourceSetID: "B"},
		{WordID: "d2", SourceSetID: "D"},
		{WordID: "d3", SourceSetID: "D"},
	}, ""))
	return NewLibrary(catalog, mastery), mastery
}

func TestBrowseGroupsByCategory(t *testing.T) {
	library, _ := newLibraryFixture(t)

	view, err := library.Browse(LibraryQuery{})
	require.NoError(t, err)

	assert.Equal(t, map[string][]string{"gdpt": {"C", "D"}, "topic": {"A", "B"}}, sectionIDs(view))
	assert.Equal(t, "gdpt", view.Sections[0].Category.ID, "sections follow category order")
	require.NotNil(t, view.WeakReview)
	assert.Equal(t, 3, view.WeakReview.WordCount)
	assert.True(t, view.WeakReview.IsDynamic)

	a := view.Sections[1].Sets[0]
	assert.Equal(t, entity.Progress{Learned: 5, Total: 5, Percent: 100}, a.Progress)
}

func TestBrowseSearchAndProgress(t *testing.T) {
	library, _ := newLibraryFixture(t)

	view, err := library.Browse(LibraryQuery{Search: "eat"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"topic": {"B"}}, sectionIDs(view))
	assert.Nil(t, view.WeakReview, "the review card obeys the search too")

	view, err = library.Browse(LibraryQuery{Progress: entity.ProgressCompleted})
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"gdpt": {"C"}, "topic": {"A"}}, sectionIDs(view))

	view, err = library.Browse(LibraryQuery{Progress: entity.ProgressUnderHalf})
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"gdpt": {"D"}, "topic": {"B"}}, sectionIDs(view))
}

func TestBrowseFilterAndOrder(t *testing.T) {
	library, _ := newLibraryFixture(t)

	view, err := library.Browse(LibraryQuery{Filter: `category == "gdpt" && words >= 2`})
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"gdpt": {"D"}}, sectionIDs(view))

	view, err = library.Browse(LibraryQuery{Filter: `weak > 0 && dynamic == false`, OrderBy: "weak desc"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"gdpt": {"D"}, "topic": {"B"}}, sectionIDs(view))
	assert.Nil(t, view.WeakReview)

	view, err = library.Browse(LibraryQuery{OrderBy: "percent desc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, sectionIDs(view)["topic"])
	assert.Equal(t, []string{"C", "D"}, sectionIDs(view)["gdpt"])

	view, err = library.Browse(LibraryQuery{Filter: `title.startsWith("Unit")`, OrderBy: "title desc"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"gdpt": {"D", "C"}}, sectionIDs(view))
}

func TestBrowseRejectsInvalidFilter(t *testing.T) {
	library, _ := newLibraryFixture(t)

	for _, q := range []LibraryQuery{
		{Filter: `colour == "red"`},
		{Filter: `words >= "many"`},
		{OrderBy: "shuffle"},
	} {
		_, err := library.Browse(q)
		assert.True(t, errors.Is(err, entity.ErrInvalidFilter), "query %+v: %v", q, err)
	}
}

func TestDetailReportsRelearnAndLastSession(t *testing.T) {
	ctx := context.Background()
	library, mastery := newLibraryFixture(t)
	set, _ := testCatalog().Set("D")

	detail := library.Detail(set)
	assert.True(t, detail.CanRelearn)
	assert.Equal(t, 2, detail.WeakCount)
	assert.Nil(t, detail.LastSession)

	last := entity.LastSession{Mode: entity.ModeMatching, Dataset: entity.DatasetFull, SetID: "D", Policy: entity.AllWords()}
	require.NoError(t, mastery.TrackSessionStart(ctx, last))
	detail = library.Detail(set)
	require.NotNil(t, detail.LastSession)
	assert.Equal(t, last, *detail.LastSession)

	assert.Equal(t, 7, library.Stats().TotalWords)
	assert.Equal(t, 3, library.Stats().WeakWords)
}

func TestCatalogIgnoresDuplicateAndReservedIDs(t *testing.T) {
	catalog := NewCatalog(nil, []entity.VocabSet{
		{ID: "A", Title: "first", Data: words("a", 2)},
		{ID: "A", Title: "second"},
		{ID: entity.WeakReviewSetID, Title: "reserved"},
	})
	set, ok := catalog.Set("A")
	require.True(t, ok)
	assert.Equal(t, "first", set.Title)
	assert.Len(t, catalog.Sets(), 1)
	assert.Equal(t, 2, catalog.WordCount())
	assert.Equal(t, entity.DefaultCategories(), catalog.Categories())
}

type failingCatalogSource struct{}

func (failingCatalogSource) LoadCatalog(context.Context) (*repository.Catalog, error) {
	return nil, errStorageDown
}

func TestLoadCatalogDegradesToEmpty(t *testing.T) {
	catalog := LoadCatalog(context.Background(), failingCatalogSource{}, quietLogger())
	assert.Empty(t, catalog.Sets())
	assert.Zero(t, catalog.WordCount())
}
