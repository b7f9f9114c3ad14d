package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/Saul-Punybz/newsdesk/internal/models"
)

// anyCountry keys entries fetched without a country filter.
const anyCountry = "_"

// cacheFile is the on-disk shape: one file per (environment, language),
// holding one timestamped entry per country.
type cacheFile struct {
	Language string                `json:"language"`
	Entries  map[string]cacheEntry `json:"entries"`
}

type cacheEntry struct {
	Timestamp time.Time         `json:"timestamp"`
	Items     []models.NewsItem `json:"items"`
}

func (f *cacheFile) valid(language string) bool {
	if f.Language != language || f.Entries == nil {
		return false
	}
	for _, e := range f.Entries {
		if e.Timestamp.IsZero() || e.Items == nil {
			return false
		}
	}
	return true
}

// Cached is a file-backed, time-boxed cache in front of a Provider with an
// in-memory layer on top. Cache failures never fail a fetch.
type Cached struct {
	next   Provider
	dir    string
	env    string
	ttl    time.Duration
	now    func() time.Time
	memory *gocache.Cache

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// CacheOption configures a Cached provider.
type CacheOption func(*Cached)

// WithClock overrides the time source used for TTL checks.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cached) { c.now = now }
}

// NewCached wraps next with a cache stored under dir. env separates
// development and production entries that share a directory.
func NewCached(next Provider, dir, env string, ttl time.Duration, opts ...CacheOption) *Cached {
	c := &Cached{
		next:   next,
		dir:    dir,
		env:    env,
		ttl:    ttl,
		now:    time.Now,
		memory: gocache.New(ttl, 2*ttl),
		locks:  make(map[string]*sync.Mutex),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// FetchNews serves a fresh cache entry when one exists. Otherwise it calls
// the wrapped provider and stores a non-empty result. Upstream failures are
// logged and degrade to an empty result.
func (c *Cached) FetchNews(ctx context.Context, opts Options) ([]models.NewsItem, error) {
	language := strings.ToLower(opts.Language)
	country := strings.ToLower(opts.Country)
	if country == "" {
		country = anyCountry
	}
	key := c.key(language)

	lock := c.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	memKey := key + "/" + country
	if v, ok := c.memory.Get(memKey); ok {
		if e := v.(cacheEntry); c.fresh(e) {
			slog.Debug("news cache: memory hit", "key", memKey)
			return e.Items, nil
		}
		c.memory.Delete(memKey)
	}

	file := c.read(key, language)
	if file != nil {
		if e, ok := file.Entries[country]; ok && c.fresh(e) {
			slog.Debug("news cache: file hit", "key", key, "country", country)
			c.remember(memKey, e)
			return e.Items, nil
		}
	}

	items, err := c.next.FetchNews(ctx, opts)
	if err != nil {
		slog.Warn("news cache: upstream fetch failed", "country", opts.Country, "language", opts.Language, "err", err)
		return []models.NewsItem{}, nil
	}
	if len(items) == 0 {
		return items, nil
	}

	entry := cacheEntry{Timestamp: c.now().UTC(), Items: items}
	c.remember(memKey, entry)

	if file == nil {
		file = &cacheFile{Language: language, Entries: make(map[string]cacheEntry)}
	}
	file.Entries[country] = entry
	if err := c.write(key, file); err != nil {
		slog.Warn("news cache: write failed", "key", key, "err", err)
	}
	return items, nil
}

func (c *Cached) key(language string) string {
	if language == "" {
		language = "all"
	}
	return fmt.Sprintf("news-%s-%s", c.env, language)
}

func (c *Cached) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// fresh reports whether e was written less than ttl ago.
func (c *Cached) fresh(e cacheEntry) bool {
	return c.now().Before(e.Timestamp.Add(c.ttl))
}

func (c *Cached) remember(memKey string, e cacheEntry) {
	remaining := e.Timestamp.Add(c.ttl).Sub(c.now())
	if remaining <= 0 {
		return
	}
	c.memory.Set(memKey, e, remaining)
}

// read loads the cache file for key. A file that cannot be parsed or has
// the wrong shape is deleted so the next write starts clean.
func (c *Cached) read(key, language string) *cacheFile {
	path := c.path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("news cache: read failed", "path", path, "err", err)
		}
		return nil
	}

	var f cacheFile
	if err := json.Unmarshal(data, &f); err != nil || !f.valid(language) {
		slog.Warn("news cache: removing corrupted file", "path", path, "err", err)
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			slog.Warn("news cache: remove failed", "path", path, "err", rmErr)
		}
		return nil
	}
	return &f
}

// write stores f atomically via a temp file and rename.
func (c *Cached) write(key string, f *cacheFile) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal cache file: %w", err)
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(c.dir, key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename cache file: %w", err)
	}
	return nil
}

func (c *Cached) lockFor(key string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[key]
	if !ok {
		l = &sync.Mutex{}
		c.locks[key] = l
	}
	return l
}
