package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// WeakReviewSetID is the reserved id of the synthetic set aggregating weak words.
const WeakReviewSetID = "weak-review"

// WordID identifies a word entry within its owning set. Catalog files may carry ids
// as JSON strings or numbers; both decode to the same textual id.
type WordID string

// UnmarshalJSON accepts both `"12"` and `12`.
func (id *WordID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = WordID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("word id: %w", err)
	}
	*id = WordID(n.String())
	return nil
}

func (id WordID) String() string { return string(id) }

// WordEntry is a single vocabulary item.
type WordEntry struct {
	ID         WordID `json:"id"`
	Word       string `json:"word"`
	Meaning    string `json:"meaning"`
	IPA        string `json:"ipa,omitempty"`
	Type       string `json:"type,omitempty"`
	Example    string `json:"example,omitempty"`
	TopicID    string `json:"topicId,omitempty"`
	TopicTitle string `json:"topicTitle,omitempty"`
	// SourceSetID records the catalog set an entry came from once it is placed in a
	// session or in the weak-review set.
	SourceSetID string `json:"sourceSetId,omitempty"`
}

// Topic is a named slice of a set as listed in the catalog index.
type Topic struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	File  string `json:"file,omitempty"`
}

// VocabSet is an ordered collection of word entries.
type VocabSet struct {
	ID          string      `json:"id"`
	CategoryID  string      `json:"categoryId"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Color       string      `json:"color,omitempty"`
	Topics      []Topic     `json:"topics,omitempty"`
	Data        []WordEntry `json:"data"`
	IsDynamic   bool        `json:"isDynamic,omitempty"`
}

// Lookup returns the entry with the given id.
func (s *VocabSet) Lookup(id WordID) (WordEntry, bool) {
	for _, item := range s.Data {
		if item.ID == id {
			return item, true
		}
	}
	return WordEntry{}, false
}

// IDSet returns the ids of all entries in the set.
func (s *VocabSet) IDSet() map[WordID]struct{} {
	ids := make(map[WordID]struct{}, len(s.Data))
	for _, item := range s.Data {
		ids[item.ID] = struct{}{}
	}
	return ids
}

// WithSourceSet returns a copy of the set whose entries all carry a source set id,
// defaulting to the set's own id.
func (s VocabSet) WithSourceSet() VocabSet {
	data := make([]WordEntry, len(s.Data))
	for i, item := range s.Data {
		if item.SourceSetID == "" {
			item.SourceSetID = s.ID
		}
		data[i] = item
	}
	s.Data = data
	return s
}

// Category groups sets in the library.
type Category struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// DefaultCategories are used when the catalog index does not declare any.
func DefaultCategories() []Category {
	return []Category{
		{ID: "gdpt", Title: "Chương trình GDPT"},
		{ID: "advanced_gdpt", Title: "(Nâng cao) Chương trình GDPT"},
		{ID: "topic", Title: "Từ vựng theo chủ đề"},
	}
}

// SetReference names a set either by id or by an already resolved value.
type SetReference struct {
	id  string
	set *VocabSet
}

// SetByID references a set that must be resolved against the catalog.
func SetByID(id string) SetReference {
	return SetReference{id: strings.TrimSpace(id)}
}

// ResolvedSet references a set value directly.
func ResolvedSet(set VocabSet) SetReference {
	return SetReference{id: set.ID, set: &set}
}

// ID returns the referenced set id.
func (r SetReference) ID() string { return r.id }

// Resolved returns the carried set when the reference was built from a value.
func (r SetReference) Resolved() (*VocabSet, bool) {
	return r.set, r.set != nil
}

// IsZero reports whether the reference names nothing.
func (r SetReference) IsZero() bool { return r.id == "" && r.set == nil }
