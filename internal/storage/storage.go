package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/ignite/creative-catalog/internal/domain"
	"github.com/ignite/creative-catalog/internal/pkg/logger"
)

var (
	// ErrCorruptCatalog means the catalog file exists but is not valid JSON
	// in either supported layout. It is fatal: overwriting it would lose data.
	ErrCorruptCatalog = errors.New("storage: catalog file is corrupt")
	// ErrNotFound is returned by Update for unknown keys.
	ErrNotFound = errors.New("storage: record not found")
)

// Layout selects the on-disk JSON shape of the catalog.
type Layout string

const (
	// LayoutObject writes an object keyed by record key, sorted by key.
	LayoutObject Layout = "object"
	// LayoutArray writes an array of records in insertion order.
	LayoutArray Layout = "array"
)

// Mirror is a remote copy of the catalog file.
type Mirror interface {
	PutCatalog(ctx context.Context, data []byte) error
	GetCatalog(ctx context.Context) ([]byte, error)
}

// CatalogStore is the JSON-file-backed map of AdRecords every pipeline
// stage reads and enriches. Batch jobs are single writers; the mutex lets
// the dashboard read while a job saves.
type CatalogStore struct {
	path   string
	layout Layout
	mirror Mirror

	mu      sync.RWMutex
	records map[string]*domain.AdRecord
	order   []string
	// modTime and size of the file as last read or written
	modTime time.Time
	size    int64
}

// Option configures a CatalogStore.
type Option func(*CatalogStore)

// WithLayout sets the layout used by Save. Load accepts either layout.
func WithLayout(l Layout) Option {
	return func(s *CatalogStore) {
		if l == LayoutArray || l == LayoutObject {
			s.layout = l
		}
	}
}

// WithMirror copies every saved catalog to m and restores from it when
// the local file is missing.
func WithMirror(m Mirror) Option {
	return func(s *CatalogStore) { s.mirror = m }
}

// Open creates a store for path and loads it. A missing file yields an
// empty catalog; an unparseable one returns ErrCorruptCatalog.
func Open(ctx context.Context, path string, opts ...Option) (*CatalogStore, error) {
	s := &CatalogStore{
		path:    path,
		layout:  LayoutObject,
		records: make(map[string]*domain.AdRecord),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the catalog file location.
func (s *CatalogStore) Path() string { return s.path }

func (s *CatalogStore) load(ctx context.Context) error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		if s.mirror == nil {
			return nil
		}
		data, err = s.mirror.GetCatalog(ctx)
		if errors.Is(err, ErrMirrorNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("restore catalog from mirror: %w", err)
		}
		logger.Info("storage: catalog restored from mirror", "path", s.path)
	} else if err != nil {
		return fmt.Errorf("read catalog %s: %w", s.path, err)
	}

	records, err := decodeCatalog(data)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptCatalog, s.path, err)
	}
	s.records, s.order = index(records)
	s.stamp()
	return nil
}

func index(records []domain.AdRecord) (map[string]*domain.AdRecord, []string) {
	byKey := make(map[string]*domain.AdRecord, len(records))
	order := make([]string, 0, len(records))
	for _, rec := range records {
		r := rec
		key := r.Key()
		if _, exists := byKey[key]; !exists {
			order = append(order, key)
		}
		byKey[key] = &r
	}
	return byKey, order
}

// stamp remembers the file's current modification time and size.
func (s *CatalogStore) stamp() {
	if st, err := os.Stat(s.path); err == nil {
		s.modTime, s.size = st.ModTime(), st.Size()
	}
}

// Reload re-reads the catalog when the file changed since this store last
// read or wrote it, so a long-running reader sees batch runs made by other
// processes. It reports whether anything was reloaded.
func (s *CatalogStore) Reload(ctx context.Context) (bool, error) {
	st, err := os.Stat(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat catalog %s: %w", s.path, err)
	}

	s.mu.RLock()
	unchanged := st.ModTime().Equal(s.modTime) && st.Size() == s.size
	s.mu.RUnlock()
	if unchanged {
		return false, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return false, fmt.Errorf("read catalog %s: %w", s.path, err)
	}
	records, err := decodeCatalog(data)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrCorruptCatalog, s.path, err)
	}
	byKey, order := index(records)

	s.mu.Lock()
	s.records, s.order = byKey, order
	s.modTime, s.size = st.ModTime(), st.Size()
	s.mu.Unlock()

	logger.Debug("storage: catalog reloaded", "path", s.path, "records", len(order))
	return true, nil
}

// decodeCatalog accepts an array of records or an object keyed by record
// key. Object entries without a name take the key as their name.
func decodeCatalog(data []byte) ([]domain.AdRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var list []domain.AdRecord
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var byKey map[string]domain.AdRecord
	if err := json.Unmarshal(trimmed, &byKey); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	list := make([]domain.AdRecord, 0, len(keys))
	for _, k := range keys {
		rec := byKey[k]
		if rec.Name == "" {
			rec.Name = k
		}
		list = append(list, rec)
	}
	return list, nil
}

// Get returns a copy of the record stored under key.
func (s *CatalogStore) Get(key string) (domain.AdRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key]
	if !ok {
		return domain.AdRecord{}, false
	}
	return rec.Clone(), true
}

// Len returns the number of records.
func (s *CatalogStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Keys returns record keys in insertion order.
func (s *CatalogStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Records returns copies of every record in insertion order.
func (s *CatalogStore) Records() []domain.AdRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AdRecord, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.records[k].Clone())
	}
	return out
}

// Merge inserts rec or overlays it onto the existing record with the same
// key. The later call wins for every field rec carries: the export columns
// listed in rec.Sourced, blank or not, plus any other field rec sets.
// Fields absent from rec keep their stored value, so enrichment survives
// re-ingestion and merging the same record twice is the same as merging it
// once. Returns the merged record.
func (s *CatalogStore) Merge(rec domain.AdRecord) domain.AdRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := rec.Key()
	existing, ok := s.records[key]
	if !ok {
		r := rec.Clone()
		r.Sourced = nil
		s.records[key] = &r
		s.order = append(s.order, key)
		return r.Clone()
	}
	overlay(existing, rec.Clone())
	return existing.Clone()
}

// Replace stores rec as-is, discarding whatever was under its key.
func (s *CatalogStore) Replace(rec domain.AdRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := rec.Key()
	if _, ok := s.records[key]; !ok {
		s.order = append(s.order, key)
	}
	r := rec.Clone()
	r.Sourced = nil
	s.records[key] = &r
}

// Update applies fn to the record under key. fn must not change the
// record's name or category.
func (s *CatalogStore) Update(key string, fn func(*domain.AdRecord)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	r := rec.Clone()
	fn(&r)
	s.records[key] = &r
	return nil
}

// Save writes the catalog atomically: a temp file in the same directory is
// renamed over the target, so a crash never leaves a truncated catalog.
// When a mirror is configured the same bytes are copied to it; mirror
// failures are logged, not returned.
func (s *CatalogStore) Save(ctx context.Context) error {
	data, err := s.encode()
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("save catalog %s: %w", s.path, err)
	}
	s.mu.Lock()
	s.stamp()
	s.mu.Unlock()
	if s.mirror != nil {
		if err := s.mirror.PutCatalog(ctx, data); err != nil {
			logger.Warn("storage: catalog mirror failed", "error", err)
		}
	}
	return nil
}

func (s *CatalogStore) encode() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload interface{}
	switch s.layout {
	case LayoutArray:
		list := make([]*domain.AdRecord, 0, len(s.order))
		for _, k := range s.order {
			list = append(list, s.records[k])
		}
		payload = list
	default:
		// encoding/json writes map keys sorted
		payload = s.records
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(payload); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
