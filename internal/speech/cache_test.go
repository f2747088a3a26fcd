package speech

import (
	"os"
	"testing"

	"github.com/hammamikhairi/ottocoach/internal/logger"
)

func TestAudioCacheMemory(t *testing.T) {
	c := NewAudioCache("", false, logger.New(logger.LevelOff, nil))

	if _, ok := c.Get("v", ProfileSentence, "Well done!"); ok {
		t.Fatal("expected miss on empty cache")
	}
	c.Put("v", ProfileSentence, "Well done!", []byte("wav"))

	got, ok := c.Get("v", ProfileSentence, "Well done!")
	if !ok || string(got) != "wav" {
		t.Fatalf("expected hit, got %q (ok=%v)", got, ok)
	}
	if hits, misses := c.Stats(); hits != 1 || misses != 1 {
		t.Fatalf("expected 1 hit and 1 miss, got %d/%d", hits, misses)
	}
}

func TestAudioCacheKeyIncludesVoiceAndProfile(t *testing.T) {
	c := NewAudioCache("", false, logger.New(logger.LevelOff, nil))
	c.Put("andrew", ProfileShort, "3", []byte("a"))

	if c.Has("sonia", ProfileShort, "3") {
		t.Fatal("different voice must not hit")
	}
	if c.Has("andrew", ProfileSentence, "3") {
		t.Fatal("different profile must not hit")
	}
	if !c.Has("andrew", ProfileShort, "3") {
		t.Fatal("expected hit for same key")
	}
}

func TestAudioCacheDisk(t *testing.T) {
	dir := t.TempDir()
	log := logger.New(logger.LevelOff, nil)

	writer := NewAudioCache(dir, true, log)
	writer.Put("v", ProfileSentence, "Pause for 60 seconds", []byte("pause-wav"))

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 file on disk, got %d", len(entries))
	}

	// A fresh cache over the same directory serves from disk even when
	// it is not allowed to write.
	reader := NewAudioCache(dir, false, log)
	if !reader.Has("v", ProfileSentence, "Pause for 60 seconds") {
		t.Fatal("expected Has to see disk entry")
	}
	got, ok := reader.Get("v", ProfileSentence, "Pause for 60 seconds")
	if !ok || string(got) != "pause-wav" {
		t.Fatalf("expected disk hit, got %q (ok=%v)", got, ok)
	}
	if reader.Len() != 1 {
		t.Fatalf("expected disk hit promoted to memory, got %d entries", reader.Len())
	}

	reader.Put("v", ProfileSentence, "new", []byte("x"))
	entries, _ = os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("read-only cache must not write, got %d files", len(entries))
	}
}
