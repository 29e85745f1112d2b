package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCache_PutGet(t *testing.T) {
	dir := t.TempDir()
	c, err := New(true, dir, 86400)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	key := "test-key"
	value := `{"reviewer":"Prosecutor","score":2}`

	if _, ok := c.Get(key); ok {
		t.Error("Expected cache miss before put")
	}

	if err := c.Put(key, value); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	got, ok := c.Get(key)
	if !ok {
		t.Fatal("Expected cache hit after put")
	}
	if got != value {
		t.Errorf("Got = %q, want %q", got, value)
	}
}

func TestCache_TTLExpiration(t *testing.T) {
	dir := t.TempDir()
	c, err := New(true, dir, 1)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	key := "expire-test"
	if err := c.Put(key, "data"); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	if _, ok := c.Get(key); !ok {
		t.Error("Expected cache hit before expiration")
	}

	time.Sleep(1100 * time.Millisecond)

	if _, ok := c.Get(key); ok {
		t.Error("Expected cache miss after TTL expiration")
	}
}

func TestCache_Disabled(t *testing.T) {
	c, err := New(false, "", 0)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if c.Enabled() {
		t.Error("Cache should be disabled")
	}

	if err := c.Put("key", "value"); err != nil {
		t.Errorf("Put on disabled cache should not error: %v", err)
	}
	if _, ok := c.Get("key"); ok {
		t.Error("Get on disabled cache should always miss")
	}
	if err := c.Clear(); err != nil {
		t.Errorf("Clear on disabled cache should not error: %v", err)
	}
}

func TestCache_Clear(t *testing.T) {
	dir := t.TempDir()
	c, err := New(true, dir, 86400)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	for i := 0; i < 5; i++ {
		key := string(rune('a' + i))
		if err := c.Put(key, "data"); err != nil {
			t.Fatalf("Put error: %v", err)
		}
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear error: %v", err)
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".json" {
			t.Fatalf("entry %s survived Clear", e.Name())
		}
	}
}

func TestCache_GetStats(t *testing.T) {
	dir := t.TempDir()
	c, err := New(true, dir, 86400)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	stats, err := c.GetStats()
	if err != nil {
		t.Fatalf("GetStats error: %v", err)
	}
	if stats.Entries != 0 {
		t.Errorf("Entries = %d, want 0", stats.Entries)
	}

	c.Put("key1", "value1")
	c.Put("key2", "value2")

	stats, err = c.GetStats()
	if err != nil {
		t.Fatalf("GetStats error: %v", err)
	}
	if stats.Entries != 2 {
		t.Errorf("Entries = %d, want 2", stats.Entries)
	}
	if stats.TotalBytes <= 0 {
		t.Error("TotalBytes should be > 0")
	}
	if stats.Dir != dir {
		t.Errorf("Dir = %q, want %q", stats.Dir, dir)
	}
}

func TestBuildOpinionKey(t *testing.T) {
	k1 := BuildOpinionKey("anthropic", "claude-sonnet-4-5", "Prosecutor", "git_forensics", "digest")
	k2 := BuildOpinionKey("anthropic", "claude-sonnet-4-5", "Prosecutor", "git_forensics", "digest")
	if k1 != k2 {
		t.Error("Same inputs should produce same cache key")
	}

	variants := []string{
		BuildOpinionKey("openai", "claude-sonnet-4-5", "Prosecutor", "git_forensics", "digest"),
		BuildOpinionKey("anthropic", "gpt-4o", "Prosecutor", "git_forensics", "digest"),
		BuildOpinionKey("anthropic", "claude-sonnet-4-5", "Defense", "git_forensics", "digest"),
		BuildOpinionKey("anthropic", "claude-sonnet-4-5", "Prosecutor", "state_management", "digest"),
		BuildOpinionKey("anthropic", "claude-sonnet-4-5", "Prosecutor", "git_forensics", "other"),
	}
	for i, v := range variants {
		if v == k1 {
			t.Errorf("variant %d should produce a different key", i)
		}
	}

	if len(k1) != 64 {
		t.Errorf("key length = %d, want 64 hex chars", len(k1))
	}
}
