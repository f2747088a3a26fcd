package speech

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/hammamikhairi/ottocoach/internal/logger"
)

// cacheKey identifies one rendering: the same sentence in another voice or
// profile is a different entry.
type cacheKey string

func newCacheKey(voice string, profile Profile, text string) cacheKey {
	sum := sha256.Sum256([]byte(voice + ":" + profile.String() + ":" + text))
	return cacheKey(hex.EncodeToString(sum[:]))
}

// wavDir is the on-disk tier: one <key>.wav file per entry. Reads are
// always allowed; writes only when writable is set.
type wavDir struct {
	root     string
	writable bool
}

func (d wavDir) enabled() bool { return d.root != "" }

func (d wavDir) file(k cacheKey) string { return filepath.Join(d.root, string(k)+".wav") }

func (d wavDir) load(k cacheKey) ([]byte, bool) {
	if !d.enabled() {
		return nil, false
	}
	data, err := os.ReadFile(d.file(k))
	return data, err == nil
}

func (d wavDir) exists(k cacheKey) bool {
	if !d.enabled() {
		return false
	}
	_, err := os.Stat(d.file(k))
	return err == nil
}

func (d wavDir) store(k cacheKey, wav []byte) error {
	if !d.enabled() || !d.writable {
		return nil
	}
	return os.WriteFile(d.file(k), wav, 0o644)
}

// AudioCache keeps synthesized WAV audio in memory, backed by an optional
// directory that survives restarts. Safe for concurrent use.
type AudioCache struct {
	log  *logger.Logger
	disk wavDir

	mu      sync.RWMutex
	entries map[cacheKey][]byte

	hits, misses atomic.Int64
}

// NewAudioCache creates an audio cache. An empty dir disables the disk
// tier; diskWrite lets Put add files to it.
func NewAudioCache(dir string, diskWrite bool, log *logger.Logger) *AudioCache {
	if dir != "" && diskWrite {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Error("cache: create %s: %v", dir, err)
		}
	}
	return &AudioCache{
		log:     log,
		disk:    wavDir{root: dir, writable: diskWrite},
		entries: make(map[cacheKey][]byte),
	}
}

func (c *AudioCache) memory(k cacheKey) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok := c.entries[k]
	return data, ok
}

// Get returns the cached audio, looking in memory and then on disk. A disk
// hit is kept in memory for next time.
func (c *AudioCache) Get(voice string, profile Profile, text string) ([]byte, bool) {
	k := newCacheKey(voice, profile, text)

	if data, ok := c.memory(k); ok {
		c.hits.Add(1)
		return data, true
	}
	if data, ok := c.disk.load(k); ok {
		c.mu.Lock()
		c.entries[k] = data
		c.mu.Unlock()
		c.hits.Add(1)
		c.log.Debug("cache: loaded %q from disk", preview(text))
		return data, true
	}

	c.misses.Add(1)
	return nil, false
}

// Put stores audio in memory, and on disk when writes are allowed.
func (c *AudioCache) Put(voice string, profile Profile, text string, audio []byte) {
	k := newCacheKey(voice, profile, text)

	c.mu.Lock()
	c.entries[k] = audio
	c.mu.Unlock()

	if err := c.disk.store(k, audio); err != nil {
		c.log.Error("cache: write %s: %v", c.disk.file(k), err)
	}
	c.log.Debug("cache: stored %q (%d bytes)", preview(text), len(audio))
}

// Has reports whether Get would hit, without counting it.
func (c *AudioCache) Has(voice string, profile Profile, text string) bool {
	k := newCacheKey(voice, profile, text)
	if _, ok := c.memory(k); ok {
		return true
	}
	return c.disk.exists(k)
}

// Len returns the number of in-memory entries.
func (c *AudioCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns hit and miss counts.
func (c *AudioCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
