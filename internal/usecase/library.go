package usecase

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/eslsoft/vocstudy/internal/entity"
	"github.com/eslsoft/vocstudy/pkg/filterexpr"
)

// LibraryQuery narrows the library listing.
type LibraryQuery struct {
	Search   string
	Progress entity.ProgressFilter
	// Filter is a CEL conjunction over the set summary fields, e.g.
	// `category == 'topic' && percent >= 50`.
	Filter  string
	OrderBy string
}

func (q LibraryQuery) GetFilter() string  { return q.Filter }
func (q LibraryQuery) GetOrderBy() string { return q.OrderBy }

// SetSummary is a library card.
type SetSummary struct {
	ID          string          `json:"id"`
	CategoryID  string          `json:"categoryId"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Color       string          `json:"color,omitempty"`
	WordCount   int             `json:"wordCount"`
	Progress    entity.Progress `json:"progress"`
	WeakCount   int             `json:"weakCount"`
	IsDynamic   bool            `json:"isDynamic,omitempty"`
}

type LibrarySection struct {
	Category entity.Category `json:"category"`
	Sets     []SetSummary    `json:"sets"`
}

// LibraryView lists the weak-review card, when there is one, ahead of the category sections.
type LibraryView struct {
	WeakReview *SetSummary      `json:"weakReview,omitempty"`
	Sections   []LibrarySection `json:"sections"`
}

// SetDetail is shown when a set is selected.
type SetDetail struct {
	SetSummary
	Topics      []entity.Topic      `json:"topics,omitempty"`
	CanRelearn  bool                `json:"canRelearn"`
	LastSession *entity.LastSession `json:"lastSession,omitempty"`
}

// libraryParams receives the bound CEL filter.
type libraryParams struct {
	Category     *string
	Categories   []string
	ID           *string
	IDs          []string
	TitlePrefix  *string
	TitleHas     *string
	PercentMin   *float64
	PercentOver  *float64
	PercentMax   *float64
	PercentUnder *float64
	WordsMin     *float64
	WordsMax     *float64
	WeakMin      *float64
	WeakOver     *float64
	Dynamic      *bool
	Order        []filterexpr.OrderKey
}

var librarySchema = filterexpr.Schema{
	Fields: map[string]filterexpr.FieldRule{
		"id": {
			Kind: filterexpr.KindString,
			Ops:  map[filterexpr.Op]string{filterexpr.OpEQ: "ID", filterexpr.OpIN: "IDs"},
		},
		"category": {
			Kind: filterexpr.KindString,
			Ops:  map[filterexpr.Op]string{filterexpr.OpEQ: "Category", filterexpr.OpIN: "Categories"},
		},
		"title": {
			Kind: filterexpr.KindString,
			Ops:  map[filterexpr.Op]string{filterexpr.OpSW: "TitlePrefix", filterexpr.OpContains: "TitleHas"},
		},
		"percent": {
			Kind: filterexpr.KindNumber,
			Ops: map[filterexpr.Op]string{
				filterexpr.OpGTE: "PercentMin",
				filterexpr.OpGT:  "PercentOver",
				filterexpr.OpLTE: "PercentMax",
				filterexpr.OpLT:  "PercentUnder",
			},
		},
		"words": {
			Kind: filterexpr.KindNumber,
			Ops:  map[filterexpr.Op]string{filterexpr.OpGTE: "WordsMin", filterexpr.OpLTE: "WordsMax"},
		},
		"weak": {
			Kind: filterexpr.KindNumber,
			Ops:  map[filterexpr.Op]string{filterexpr.OpGTE: "WeakMin", filterexpr.OpGT: "WeakOver"},
		},
		"dynamic": {
			Kind: filterexpr.KindBool,
			Ops:  map[filterexpr.Op]string{filterexpr.OpEQ: "Dynamic"},
		},
	},
	Order: filterexpr.OrderSchema{
		Fields:  []string{"catalog", "title", "percent", "words", "weak"},
		Default: []filterexpr.OrderKey{{Key: "catalog"}},
		MaxKeys: 2,
	},
}

func (p libraryParams) matches(s SetSummary) bool {
	percent := float64(s.Progress.Percent)
	words := float64(s.WordCount)
	weak := float64(s.WeakCount)
	switch {
	case p.ID != nil && s.ID != *p.ID,
		len(p.IDs) > 0 && !lo.Contains(p.IDs, s.ID),
		p.Category != nil && s.CategoryID != *p.Category,
		len(p.Categories) > 0 && !lo.Contains(p.Categories, s.CategoryID),
		p.TitlePrefix != nil && !strings.HasPrefix(s.Title, *p.TitlePrefix),
		p.TitleHas != nil && !strings.Contains(strings.ToLower(s.Title), strings.ToLower(*p.TitleHas)),
		p.PercentMin != nil && percent < *p.PercentMin,
		p.PercentOver != nil && percent <= *p.PercentOver,
		p.PercentMax != nil && percent > *p.PercentMax,
		p.PercentUnder != nil && percent >= *p.PercentUnder,
		p.WordsMin != nil && words < *p.WordsMin,
		p.WordsMax != nil && words > *p.WordsMax,
		p.WeakMin != nil && weak < *p.WeakMin,
		p.WeakOver != nil && weak <= *p.WeakOver,
		p.Dynamic != nil && s.IsDynamic != *p.Dynamic:
		return false
	}
	return true
}

func (p libraryParams) sort(sets []SetSummary) {
	slices.SortStableFunc(sets, func(a, b SetSummary) int {
		for _, key := range p.Order {
			var c int
			switch key.Key {
			case "title":
				c = strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
			case "percent":
				c = cmp.Compare(a.Progress.Percent, b.Progress.Percent)
			case "words":
				c = cmp.Compare(a.WordCount, b.WordCount)
			case "weak":
				c = cmp.Compare(a.WeakCount, b.WeakCount)
			}
			if key.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
}

// Library builds the read-only library, set detail and stats views.
type Library struct {
	catalog *Catalog
	mastery *MasteryService
}

func NewLibrary(catalog *Catalog, mastery *MasteryService) *Library {
	return &Library{catalog: catalog, mastery: mastery}
}

// Summary describes one set with its current progress.
func (l *Library) Summary(set entity.VocabSet) SetSummary {
	weak := len(l.mastery.WeakIDs(set.ID))
	if set.ID == entity.WeakReviewSetID {
		weak = len(set.Data)
	}
	return SetSummary{
		ID:          set.ID,
		CategoryID:  set.CategoryID,
		Title:       set.Title,
		Description: set.Description,
		Color:       set.Color,
		WordCount:   len(set.Data),
		Progress:    l.mastery.Progress(set),
		WeakCount:   weak,
		IsDynamic:   set.IsDynamic,
	}
}

// Browse lists the library. The weak-review card obeys the same search and
// filters as the catalog sets.
func (l *Library) Browse(q LibraryQuery) (*LibraryView, error) {
	var params libraryParams
	if err := filterexpr.Bind(q, &params, librarySchema); err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrInvalidFilter, err)
	}
	search := strings.ToLower(strings.TrimSpace(q.Search))
	keep := func(s SetSummary) bool {
		if search != "" &&
			!strings.Contains(strings.ToLower(s.Title), search) &&
			!strings.Contains(strings.ToLower(s.Description), search) {
			return false
		}
		return q.Progress.Matches(s.Progress.Percent) && params.matches(s)
	}

	view := &LibraryView{Sections: []LibrarySection{}}
	if weakSet, ok := l.mastery.BuildWeakReviewSet(); ok {
		if summary := l.Summary(weakSet); keep(summary) {
			view.WeakReview = &summary
		}
	}
	for _, category := range l.catalog.Categories() {
		var sets []SetSummary
		for _, set := range l.catalog.SetsInCategory(category.ID) {
			if summary := l.Summary(set); keep(summary) {
				sets = append(sets, summary)
			}
		}
		if len(sets) == 0 {
			continue
		}
		params.sort(sets)
		view.Sections = append(view.Sections, LibrarySection{Category: category, Sets: sets})
	}
	return view, nil
}

// Detail describes a resolved set.
func (l *Library) Detail(set entity.VocabSet) SetDetail {
	detail := SetDetail{
		SetSummary: l.Summary(set),
		Topics:     set.Topics,
	}
	detail.CanRelearn = detail.WeakCount > 0
	if last, ok := l.mastery.LastSession(); ok && last.SetID == set.ID {
		detail.LastSession = &last
	}
	return detail
}

func (l *Library) Stats() entity.Stats {
	return l.mastery.Stats()
}
