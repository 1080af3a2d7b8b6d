package usecase

import (
	"context"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/vocstudy/internal/entity"
	"github.com/eslsoft/vocstudy/internal/repository"
)

// Catalog is the immutable set of vocabulary sets available to study.
type Catalog struct {
	categories []entity.Category
	sets       []entity.VocabSet
	byID       map[string]int
}

// NewCatalog indexes the given sets. Later duplicates of a set id are ignored.
func NewCatalog(categories []entity.Category, sets []entity.VocabSet) *Catalog {
	if len(categories) == 0 {
		categories = entity.DefaultCategories()
	}
	c := &Catalog{
		categories: append([]entity.Category(nil), categories...),
		byID:       make(map[string]int, len(sets)),
	}
	for _, set := range sets {
		if _, dup := c.byID[set.ID]; dup || set.ID == entity.WeakReviewSetID {
			continue
		}
		c.byID[set.ID] = len(c.sets)
		c.sets = append(c.sets, set)
	}
	return c
}

// LoadCatalog reads the catalog from src. A failing source yields an empty catalog.
func LoadCatalog(ctx context.Context, src repository.CatalogSource, logger logrus.FieldLogger) *Catalog {
	loaded, err := src.LoadCatalog(ctx)
	if err != nil {
		logger.WithError(err).Error("failed to load vocabulary catalog, continuing with an empty catalog")
		return NewCatalog(nil, nil)
	}
	c := NewCatalog(loaded.Categories, loaded.Sets)
	logger.WithFields(logrus.Fields{
		"sets":  len(c.sets),
		"words": c.WordCount(),
	}).Info("vocabulary catalog loaded")
	return c
}

func (c *Catalog) Categories() []entity.Category {
	return append([]entity.Category(nil), c.categories...)
}

// Sets returns the catalog sets in load order.
func (c *Catalog) Sets() []entity.VocabSet {
	return append([]entity.VocabSet(nil), c.sets...)
}

// Set looks up a catalog set by id.
func (c *Catalog) Set(id string) (entity.VocabSet, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return entity.VocabSet{}, false
	}
	return c.sets[idx], true
}

// SetsInCategory returns the sets of one category in load order.
func (c *Catalog) SetsInCategory(categoryID string) []entity.VocabSet {
	return lo.Filter(c.sets, func(set entity.VocabSet, _ int) bool {
		return set.CategoryID == categoryID
	})
}

func (c *Catalog) WordCount() int {
	return lo.SumBy(c.sets, func(set entity.VocabSet) int { return len(set.Data) })
}
