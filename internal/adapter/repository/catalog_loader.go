package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/vocstudy/internal/entity"
	"github.com/eslsoft/vocstudy/internal/repository"
)

// DefaultIndexFile is the catalog index looked up at the root of the catalog tree.
const DefaultIndexFile = "index.json"

type catalogIndex struct {
	Categories []entity.Category `json:"categories"`
	Sets       []indexedSet      `json:"sets"`
}

type indexedSet struct {
	ID          string             `json:"id"`
	CategoryID  string             `json:"categoryId"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Color       string             `json:"color"`
	Topics      []entity.Topic     `json:"topics"`
	Words       []entity.WordEntry `json:"data"`
}

type topicFile struct {
	Words []entity.WordEntry `json:"words"`
}

// FileCatalogSource reads an index file and the topic files it references from a
// file system. Topic paths are relative to the index.
type FileCatalogSource struct {
	fsys   fs.FS
	index  string
	logger logrus.FieldLogger
}

func NewFileCatalogSource(fsys fs.FS, index string, logger logrus.FieldLogger) *FileCatalogSource {
	if index == "" {
		index = DefaultIndexFile
	}
	return &FileCatalogSource{fsys: fsys, index: index, logger: logger}
}

var _ repository.CatalogSource = (*FileCatalogSource)(nil)

func (s *FileCatalogSource) LoadCatalog(ctx context.Context) (*repository.Catalog, error) {
	raw, err := fs.ReadFile(s.fsys, s.index)
	if err != nil {
		return nil, fmt.Errorf("read catalog index %s: %w", s.index, err)
	}
	var idx catalogIndex
	if err := json.Unmarshal(raw, &idx); err != nil {
		return nil, fmt.Errorf("decode catalog index %s: %w", s.index, err)
	}

	base := path.Dir(s.index)
	catalog := &repository.Catalog{
		Categories: idx.Categories,
		Sets:       make([]entity.VocabSet, 0, len(idx.Sets)),
	}
	if len(catalog.Categories) == 0 {
		catalog.Categories = entity.DefaultCategories()
	}

	for _, meta := range idx.Sets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if meta.ID == "" || meta.ID == entity.WeakReviewSetID {
			s.logger.WithField("set_id", meta.ID).Warn("skipping catalog set with reserved or empty id")
			continue
		}
		set := entity.VocabSet{
			ID:          meta.ID,
			CategoryID:  meta.CategoryID,
			Title:       meta.Title,
			Description: meta.Description,
			Color:       meta.Color,
			Data:        append([]entity.WordEntry{}, meta.Words...),
		}
		for _, topic := range meta.Topics {
			words, err := s.loadTopic(base, topic)
			if err != nil {
				s.logger.WithError(err).WithFields(logrus.Fields{
					"set_id":   meta.ID,
					"topic_id": topic.ID,
				}).Error("failed to load catalog topic")
				continue
			}
			set.Topics = append(set.Topics, entity.Topic{ID: topic.ID, Title: topic.Title})
			set.Data = append(set.Data, words...)
		}
		set.Data = lo.UniqBy(set.Data, func(item entity.WordEntry) entity.WordID { return item.ID })
		catalog.Sets = append(catalog.Sets, set)
	}
	return catalog, nil
}

func (s *FileCatalogSource) loadTopic(base string, topic entity.Topic) ([]entity.WordEntry, error) {
	if topic.File == "" {
		return nil, fmt.Errorf("topic %s has no file", topic.ID)
	}
	raw, err := fs.ReadFile(s.fsys, path.Join(base, topic.File))
	if err != nil {
		return nil, err
	}
	var tf topicFile
	if err := json.Unmarshal(raw, &tf); err != nil {
		return nil, fmt.Errorf("decode topic %s: %w", topic.File, err)
	}
	return lo.Map(tf.Words, func(word entity.WordEntry, _ int) entity.WordEntry {
		word.TopicID = topic.ID
		word.TopicTitle = topic.Title
		word.SourceSetID = ""
		return word
	}), nil
}
