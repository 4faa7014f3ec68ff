package httputil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCache_GetSet(t *testing.T) {
	c, err := NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		key  string
		body []byte
	}{
		{"https://example.com/a.png", []byte("a")},
		{"https://example.com/b.png", []byte{0x89, 'P', 'N', 'G'}},
		{"", []byte("empty key")},
	}
	for _, tt := range tests {
		if err := c.Set(tt.key, tt.body); err != nil {
			t.Fatalf("Set(%q): %v", tt.key, err)
		}
		got, ok, err := c.Get(tt.key)
		if !ok || err != nil {
			t.Fatalf("Get(%q) = %v, %v", tt.key, ok, err)
		}
		if string(got) != string(tt.body) {
			t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.body)
		}
	}
}

func TestCache_Miss(t *testing.T) {
	c, _ := NewCache(t.TempDir(), time.Hour)
	body, ok, err := c.Get("missing")
	if ok || err != nil || body != nil {
		t.Errorf("Get(missing) = %q, %v, %v", body, ok, err)
	}
}

func TestCache_Expired(t *testing.T) {
	c, _ := NewCache(t.TempDir(), time.Minute)
	if err := c.Set("k", []byte("old")); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(c.keyPath("k"), past, past); err != nil {
		t.Fatal(err)
	}

	body, ok, err := c.Get("k")
	if ok || !errors.Is(err, ErrExpired) {
		t.Fatalf("Get() = %v, %v, want ErrExpired", ok, err)
	}
	if string(body) != "old" {
		t.Errorf("stale body = %q", body)
	}
}

func TestCache_NoTTL(t *testing.T) {
	c, _ := NewCache(t.TempDir(), 0)
	_ = c.Set("k", []byte("v"))
	past := time.Now().Add(-24 * 365 * time.Hour)
	_ = os.Chtimes(c.keyPath("k"), past, past)

	if _, ok, err := c.Get("k"); !ok || err != nil {
		t.Errorf("entry without TTL expired: %v, %v", ok, err)
	}
}

func TestCache_Namespace(t *testing.T) {
	c, _ := NewCache(t.TempDir(), time.Hour)
	a := c.Namespace("a:")
	b := c.Namespace("b:")

	_ = a.Set("k", []byte("from a"))
	if _, ok, _ := b.Get("k"); ok {
		t.Error("namespaces share keys")
	}
	if got, ok, _ := c.Get("a:k"); !ok || string(got) != "from a" {
		t.Errorf("parent view of a:k = %q, %v", got, ok)
	}
	if got, ok, _ := c.Namespace("a").Namespace(":").Get("k"); !ok || string(got) != "from a" {
		t.Errorf("chained namespace = %q, %v", got, ok)
	}
}

func TestNewCache_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "downloads")
	c, err := NewCache(dir, 0)
	if err != nil {
		t.Fatal(err)
	}
	if c.Dir() != dir {
		t.Errorf("Dir() = %q", c.Dir())
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("directory not created: %v", err)
	}
}
