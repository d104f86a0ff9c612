package cache

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestPredictionKey(t *testing.T) {
	k1 := PredictionKey("jpred", "MKTAYIAK")
	k2 := PredictionKey("JPred", "mktayiak")
	if k1 != k2 {
		t.Errorf("keys should ignore case: %s vs %s", k1, k2)
	}
	if !strings.HasPrefix(k1, "foldswitch:v1:jpred:") {
		t.Errorf("unexpected key prefix: %s", k1)
	}
	if PredictionKey("archive", "MKTAYIAK") == k1 {
		t.Error("different providers must not share keys")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss")
	}
	if err := c.Set("k", []byte("HHEE"), 0); err != nil {
		t.Fatal(err)
	}
	if got, ok := c.Get("k"); !ok || string(got) != "HHEE" {
		t.Errorf("Get = %q, %v", got, ok)
	}
	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after delete")
	}
}

func TestDiskCache_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	key := PredictionKey("jpred", "MKTAY")

	if err := c.Set(key, []byte("CHHEC"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// A fresh instance over the same directory sees the entry.
	got, ok := NewDiskCache(dir, time.Hour).Get(key)
	if !ok || string(got) != "CHHEC" {
		t.Errorf("Get = %q, %v", got, ok)
	}

	if err := c.Delete(key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := c.Delete(key); err != nil {
		t.Errorf("second Delete should be a no-op, got %v", err)
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	key := PredictionKey("jpred", "MKTAY")

	if err := c.Set(key, []byte("HHH"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get(key); ok {
		t.Error("expected expired entry to miss")
	}
	if _, err := os.Stat(c.path(key)); !os.IsNotExist(err) {
		t.Error("expired entry should be removed from disk")
	}
}

func TestDiskCache_NoExpiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), -1)
	if err := c.Set("foldswitch:v1:x:abcd", []byte("E"), 0); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("foldswitch:v1:x:abcd"); !ok {
		t.Error("entry without expiry should hit")
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	key := PredictionKey("jpred", "MKTAY")

	if err := NewDiskCache(dir, time.Hour).Set(key, []byte("HHEEC"), 0); err != nil {
		t.Fatal(err)
	}

	c := NewLayeredCache(time.Minute, dir, time.Hour)
	if got, ok := c.Get(key); !ok || string(got) != "HHEEC" {
		t.Fatalf("Get = %q, %v", got, ok)
	}
	if _, ok := c.memory.Get(key); !ok {
		t.Error("disk hit should be promoted to memory")
	}

	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get(key); ok {
		t.Error("expected miss after Clear")
	}
}
