package backup

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/vocstudy/internal/entity"
	"github.com/eslsoft/vocstudy/internal/repository"
)

const (
	formatVersion = 1

	recordMeta  = "meta"
	recordEntry = "entry"
)

var errNoKeysSelected = errors.New("backup: no keys selected")

// ProgressReporter receives progress callbacks during export.
type ProgressReporter interface {
	Start(total int)
	Advance(key string)
	Finish()
}

type noopProgress struct{}

func (noopProgress) Start(int)      {}
func (noopProgress) Advance(string) {}
func (noopProgress) Finish()        {}

// Store is a key-value store whose keys can be enumerated.
type Store interface {
	repository.KeyValueStore
	repository.KeyLister
}

// Service dumps and restores the persisted study keys as NDJSON: one meta record
// followed by one record per key.
type Service struct {
	store  Store
	logger logrus.FieldLogger
	clock  func() time.Time
}

type Option func(*Service)

func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewService binds a backup service to store. The store must support key listing.
func NewService(store repository.KeyValueStore, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("backup: store is required")
	}
	listable, ok := store.(Store)
	if !ok {
		return nil, fmt.Errorf("backup: store %T cannot list its keys", store)
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	svc := &Service{store: listable, logger: logger, clock: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

type ExportOption func(*exportConfig)

type exportConfig struct {
	keys     []string
	reporter ProgressReporter
}

// WithKeys restricts export to the provided keys.
func WithKeys(keys []string) ExportOption {
	return func(cfg *exportConfig) {
		if len(keys) == 0 {
			return
		}
		cfg.keys = append([]string{}, keys...)
	}
}

// WithProgressReporter registers a reporter that receives progress callbacks during export.
func WithProgressReporter(reporter ProgressReporter) ExportOption {
	return func(cfg *exportConfig) {
		cfg.reporter = reporter
	}
}

type ImportOption func(*importConfig)

type importConfig struct {
	keys    []string
	replace bool
}

// WithImportKeys restricts import to the provided keys.
func WithImportKeys(keys []string) ImportOption {
	return func(cfg *importConfig) {
		if len(keys) == 0 {
			return
		}
		cfg.keys = append([]string{}, keys...)
	}
}

// WithReplace removes selected keys that are absent from the backup.
func WithReplace(replace bool) ImportOption {
	return func(cfg *importConfig) {
		cfg.replace = replace
	}
}

type record struct {
	Type       string          `json:"type"`
	Version    int             `json:"version,omitempty"`
	ExportedAt *time.Time      `json:"exported_at,omitempty"`
	Keys       []string        `json:"keys,omitempty"`
	Checksum   string          `json:"checksum,omitempty"`
	Key        string          `json:"key,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Raw        *string         `json:"raw,omitempty"`
}

type entry struct {
	key   string
	value string
}

// Export writes the selected keys to w.
func (s *Service) Export(ctx context.Context, w io.Writer, opts ...ExportOption) error {
	cfg := exportConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	reporter := cfg.reporter
	if reporter == nil {
		reporter = noopProgress{}
	}

	stored, err := s.store.Keys(ctx)
	if err != nil {
		return fmt.Errorf("list keys: %w", err)
	}
	keys, err := selectKeys(stored, cfg.keys)
	if err != nil {
		return err
	}

	entries := make([]entry, 0, len(keys))
	for _, key := range keys {
		value, err := s.store.Get(ctx, key)
		if errors.Is(err, entity.ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read key %s: %w", key, err)
		}
		entries = append(entries, entry{key: key, value: value})
	}

	writer := bufio.NewWriter(w)
	defer writer.Flush()

	now := s.clock().UTC()
	meta := record{
		Type:       recordMeta,
		Version:    formatVersion,
		ExportedAt: &now,
		Keys:       lo.Map(entries, func(e entry, _ int) string { return e.key }),
		Checksum:   checksum(entries),
	}
	if err := writeRecord(writer, meta); err != nil {
		return err
	}

	reporter.Start(len(entries))
	for _, e := range entries {
		rec := record{Type: recordEntry, Key: e.key}
		if json.Valid([]byte(e.value)) {
			rec.Payload = json.RawMessage(e.value)
		} else {
			raw := e.value
			rec.Raw = &raw
		}
		if err := writeRecord(writer, rec); err != nil {
			return err
		}
		reporter.Advance(e.key)
	}
	reporter.Finish()

	s.logger.WithField("keys", len(entries)).Info("backup exported")
	return writer.Flush()
}

// Import reads a backup from r. The whole stream is validated before any key is
// written.
func (s *Service) Import(ctx context.Context, r io.Reader, opts ...ImportOption) error {
	cfg := importConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	br := bufio.NewReader(r)
	var (
		meta     *record
		entries  []entry
		restored = make(map[string]struct{})
	)
	for {
		line, err := br.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read backup: %w", err)
		}
		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			var rec record
			if err := json.Unmarshal(line, &rec); err != nil {
				return fmt.Errorf("decode record: %w", err)
			}
			switch rec.Type {
			case recordMeta:
				if meta != nil {
					return errors.New("backup: duplicate meta record")
				}
				meta = &rec
			case recordEntry:
				e, err := decodeEntry(rec)
				if err != nil {
					return err
				}
				if _, dup := restored[e.key]; dup {
					return fmt.Errorf("backup: duplicate key %s", e.key)
				}
				restored[e.key] = struct{}{}
				entries = append(entries, e)
			default:
				return fmt.Errorf("backup: unknown record type %q", rec.Type)
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
	}

	if meta == nil {
		return errors.New("backup: missing meta record")
	}
	if meta.Version != formatVersion {
		return fmt.Errorf("backup: unsupported format version %d", meta.Version)
	}
	if meta.Checksum != "" && meta.Checksum != checksum(entries) {
		return errors.New("backup: checksum mismatch")
	}

	if len(cfg.keys) > 0 {
		entries = lo.Filter(entries, func(e entry, _ int) bool { return lo.Contains(cfg.keys, e.key) })
	}
	for _, e := range entries {
		if err := s.store.Set(ctx, e.key, e.value); err != nil {
			return fmt.Errorf("restore key %s: %w", e.key, err)
		}
	}

	removed := 0
	if cfg.replace {
		stored, err := s.store.Keys(ctx)
		if err != nil {
			return fmt.Errorf("list keys: %w", err)
		}
		for _, key := range stored {
			if _, ok := restored[key]; ok {
				continue
			}
			if len(cfg.keys) > 0 && !lo.Contains(cfg.keys, key) {
				continue
			}
			if err := s.store.Remove(ctx, key); err != nil {
				return fmt.Errorf("remove key %s: %w", key, err)
			}
			removed++
		}
	}

	s.logger.WithFields(logrus.Fields{
		"restored": len(entries),
		"removed":  removed,
	}).Info("backup imported")
	return nil
}

func decodeEntry(rec record) (entry, error) {
	key := strings.TrimSpace(rec.Key)
	if key == "" {
		return entry{}, errors.New("backup: entry record without key")
	}
	switch {
	case len(rec.Payload) > 0:
		var compact bytes.Buffer
		if err := json.Compact(&compact, rec.Payload); err != nil {
			return entry{}, fmt.Errorf("backup: payload for %s: %w", key, err)
		}
		return entry{key: key, value: compact.String()}, nil
	case rec.Raw != nil:
		return entry{key: key, value: *rec.Raw}, nil
	default:
		return entry{}, fmt.Errorf("backup: missing payload for key %s", key)
	}
}

func selectKeys(stored, requested []string) ([]string, error) {
	if len(requested) == 0 {
		if len(stored) == 0 {
			return nil, nil
		}
		keys := slices.Clone(stored)
		slices.Sort(keys)
		return keys, nil
	}
	keys := lo.Filter(lo.Uniq(requested), func(key string, _ int) bool { return lo.Contains(stored, key) })
	if len(keys) == 0 {
		return nil, errNoKeysSelected
	}
	slices.Sort(keys)
	return keys, nil
}

// checksum hashes values in the canonical compact form so that re-indented
// payloads still verify.
func checksum(entries []entry) string {
	sorted := slices.Clone(entries)
	slices.SortFunc(sorted, func(a, b entry) int { return strings.Compare(a.key, b.key) })
	h := sha256.New()
	for _, e := range sorted {
		value := e.value
		var compact bytes.Buffer
		if json.Valid([]byte(value)) && json.Compact(&compact, []byte(value)) == nil {
			value = compact.String()
		}
		fmt.Fprintf(h, "%s\x00%s\x00", e.key, value)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeRecord(w io.Writer, rec record) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("write %s record: %w", rec.Type, err)
	}
	return nil
}
