// Package metacache is the metadata cache (component C3): an LRU-bounded,
// TTL'd cache of parsed-or-raw repository metadata, with an in-memory tier
// and an optional on-disk tier with one file per Key. Adapted from the
// teacher's recipe cache (internal/registry/cache.go,
// internal/registry/cache_manager.go), generalized from "one recipe TOML
// keyed by name" to "one metadata blob keyed by (family, repo URL, arch,
// artefact kind)".
package metacache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/depssmuggler/core/internal/ospkg"
)

// ArtefactKind names the shape of metadata stored under a Key.
type ArtefactKind string

const (
	ArtefactRepomd   ArtefactKind = "repomd"
	ArtefactPrimary  ArtefactKind = "primary"
	ArtefactPackages ArtefactKind = "packages"
	ArtefactRelease  ArtefactKind = "release"
	ArtefactAPKIndex ArtefactKind = "apkindex"
)

// Key identifies one cached artefact.
type Key struct {
	Family       ospkg.PackageManager
	RepoURL      string
	Architecture ospkg.Architecture
	Artefact     ArtefactKind
}

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// filename derives a safe on-disk filename from a Key by replacing every
// non-alphanumeric run with "_", per spec's persisted-state convention.
func (k Key) filename() string {
	raw := fmt.Sprintf("%s_%s_%s_%s", k.Family, k.RepoURL, k.Architecture, k.Artefact)
	return nonAlnum.ReplaceAllString(raw, "_") + ".json"
}

// Entry is one cached artefact and its bookkeeping.
type Entry struct {
	Key        Key
	Data       []byte
	Timestamp  time.Time // when this entry was fetched/produced
	LastAccess time.Time
	Size       int64
}

// onDiskEntry is Entry's JSON-serializable shadow (Data is base64 via
// encoding/json's []byte handling).
type onDiskEntry struct {
	Family       ospkg.PackageManager `json:"family"`
	RepoURL      string               `json:"repo_url"`
	Architecture ospkg.Architecture   `json:"architecture"`
	Artefact     ArtefactKind         `json:"artefact"`
	Data         []byte               `json:"data"`
	Timestamp    time.Time            `json:"timestamp"`
	LastAccess   time.Time            `json:"last_access"`
	Size         int64                `json:"size"`
}

// Mode selects which tiers a Cache maintains.
type Mode string

const (
	ModeSession    Mode = "session"    // memory only
	ModePersistent Mode = "persistent" // memory + on-disk
	ModeNone       Mode = "none"       // caching disabled; Get always misses
)

// Stats reports cache effectiveness.
type Stats struct {
	Hits       int64
	Misses     int64
	EntryCount int
	TotalSize  int64
}

// HitRate returns Hits / (Hits + Misses), or 0 if there have been no
// lookups yet.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Options configures a Cache.
type Options struct {
	Mode    Mode
	TTL     time.Duration // Default 1h.
	MaxSize int64         // Bytes. Default 500 MiB.
	Dir     string        // On-disk tier root. Default DefaultDir().
}

// Cache is the metadata cache. Safe for concurrent use: reads of a key
// while a write to that key is in flight observe either the pre-write or
// post-write value, never a torn one, because every access holds mu for
// its entire critical section.
type Cache struct {
	mu      sync.RWMutex
	mode    Mode
	ttl     time.Duration
	maxSize int64
	dir     string

	entries map[string]*Entry // keyed by Key.filename()
	hits    int64
	misses  int64
}

// DefaultDir is the default on-disk tier root:
// $DEPSSMUGGLER_HOME/cache/os-packages when DEPSSMUGGLER_HOME is set,
// else ~/.depssmuggler/cache/os-packages.
func DefaultDir() string {
	if h := os.Getenv("DEPSSMUGGLER_HOME"); h != "" {
		return filepath.Join(h, "cache", "os-packages")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".depssmuggler", "cache", "os-packages")
}

// New constructs a Cache. If Mode is ModePersistent, the on-disk tier is
// scanned immediately: expired files are removed and live entries are
// rehydrated into memory, per spec §4.3.
func New(opts Options) (*Cache, error) {
	if opts.TTL == 0 {
		opts.TTL = time.Hour
	}
	if opts.MaxSize == 0 {
		opts.MaxSize = 500 * 1024 * 1024
	}
	if opts.Dir == "" {
		opts.Dir = DefaultDir()
	}
	if opts.Mode == "" {
		opts.Mode = ModeSession
	}

	c := &Cache{
		mode:    opts.Mode,
		ttl:     opts.TTL,
		maxSize: opts.MaxSize,
		dir:     opts.Dir,
		entries: make(map[string]*Entry),
	}

	if c.mode == ModePersistent {
		if err := c.rehydrate(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Get returns the cached entry for key, or (nil, false) if absent or
// expired. An expired entry is treated as absent on read, per spec §3.
func (c *Cache) Get(key Key) (*Entry, bool) {
	if c.mode == ModeNone {
		return nil, false
	}

	name := key.filename()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[name]
	if !ok || time.Since(e.Timestamp) > c.ttl {
		c.misses++
		if ok {
			delete(c.entries, name)
		}
		return nil, false
	}

	e.LastAccess = time.Now()
	c.hits++
	if c.mode == ModePersistent {
		c.writeToDisk(name, e)
	}
	cp := *e
	return &cp, true
}

// Set stores data under key, evicting LRU entries first if necessary to
// keep total cached size at or under maxSize.
func (c *Cache) Set(key Key, data []byte) {
	if c.mode == ModeNone {
		return
	}

	now := time.Now()
	e := &Entry{
		Key:        key,
		Data:       data,
		Timestamp:  now,
		LastAccess: now,
		Size:       int64(len(data)),
	}
	name := key.filename()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[name] = e
	c.evictLocked()

	if c.mode == ModePersistent {
		c.writeToDisk(name, e)
	}
}

// Stats returns current cache effectiveness counters. Hits/Misses are
// cumulative since construction; EntryCount/TotalSize are current.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var total int64
	for _, e := range c.entries {
		total += e.Size
	}
	return Stats{
		Hits:       c.hits,
		Misses:     c.misses,
		EntryCount: len(c.entries),
		TotalSize:  total,
	}
}

// evictLocked removes least-recently-accessed entries until total size is
// at or under maxSize. Caller must hold mu.
func (c *Cache) evictLocked() {
	var total int64
	for _, e := range c.entries {
		total += e.Size
	}
	if total <= c.maxSize {
		return
	}

	type kv struct {
		name string
		e    *Entry
	}
	ordered := make([]kv, 0, len(c.entries))
	for n, e := range c.entries {
		ordered = append(ordered, kv{n, e})
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].e.LastAccess.Before(ordered[j].e.LastAccess)
	})

	for _, item := range ordered {
		if total <= c.maxSize {
			break
		}
		total -= item.e.Size
		delete(c.entries, item.name)
		if c.mode == ModePersistent {
			_ = os.Remove(filepath.Join(c.dir, item.name))
		}
	}
}

func (c *Cache) diskPath(name string) string {
	return filepath.Join(c.dir, name)
}

func (c *Cache) writeToDisk(name string, e *Entry) {
	rec := onDiskEntry{
		Family:       e.Key.Family,
		RepoURL:      e.Key.RepoURL,
		Architecture: e.Key.Architecture,
		Artefact:     e.Key.Artefact,
		Data:         e.Data,
		Timestamp:    e.Timestamp,
		LastAccess:   e.LastAccess,
		Size:         e.Size,
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return
	}
	_ = os.WriteFile(c.diskPath(name), b, 0644)
}

// rehydrate scans the on-disk tier: expired files are deleted, live files
// are loaded into the in-memory map.
func (c *Cache) rehydrate() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("metacache: scan %s: %w", c.dir, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, fi := range entries {
		if fi.IsDir() {
			continue
		}
		path := filepath.Join(c.dir, fi.Name())
		b, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var rec onDiskEntry
		if err := json.Unmarshal(b, &rec); err != nil {
			continue
		}
		if time.Since(rec.Timestamp) > c.ttl {
			_ = os.Remove(path)
			continue
		}
		c.entries[fi.Name()] = &Entry{
			Key: Key{
				Family:       rec.Family,
				RepoURL:      rec.RepoURL,
				Architecture: rec.Architecture,
				Artefact:     rec.Artefact,
			},
			Data:       rec.Data,
			Timestamp:  rec.Timestamp,
			LastAccess: rec.LastAccess,
			Size:       rec.Size,
		}
	}
	return nil
}

// contentHash returns the hex SHA-256 of data. It is unexported and has no
// callers outside this file.
func contentHash(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
