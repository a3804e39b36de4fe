package histcache_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/dlepage/ghist/internal/histcache"
)

func TestGetMissOnEmptyCache(t *testing.T) {
	c := histcache.New()
	if _, ok := c.Get(histcache.Key("log", "a.go", "0")); ok {
		t.Errorf("expected miss on empty cache")
	}
}

func TestSetThenGet(t *testing.T) {
	c := histcache.New()
	key := histcache.Key("log", "a.go", "0")
	c.Set(key, "payload", histcache.Tags{FilePath: "a.go"})

	v, ok := c.Get(key)
	if !ok {
		t.Fatalf("expected hit after set")
	}
	if v.(string) != "payload" {
		t.Errorf("unexpected payload %v", v)
	}
}

func TestKeyDistinguishesArguments(t *testing.T) {
	c := histcache.New()
	c.Set(histcache.Key("log", "a.go", "0"), "page0", histcache.Tags{FilePath: "a.go"})
	c.Set(histcache.Key("log", "a.go", "1"), "page1", histcache.Tags{FilePath: "a.go"})

	if v, _ := c.Get(histcache.Key("log", "a.go", "1")); v != "page1" {
		t.Errorf("argument collision: got %v", v)
	}
	// An op/arg split point must not alias: ("ab","c") != ("a","bc").
	c.Set(histcache.Key("ab", "c"), "x", histcache.Tags{})
	if _, ok := c.Get(histcache.Key("a", "bc")); ok {
		t.Errorf("composite key aliased across op/arg boundary")
	}
}

func TestInvalidateFileIsScoped(t *testing.T) {
	c := histcache.New()
	c.Set(histcache.Key("log", "fileA", "0"), 1, histcache.Tags{FilePath: "fileA"})
	c.Set(histcache.Key("log", "fileB", "0"), 2, histcache.Tags{FilePath: "fileB"})
	c.Set(histcache.Key("changed", "abc"), 3, histcache.Tags{CommitHash: "abc"})

	c.InvalidateFile("fileA")

	if _, ok := c.Get(histcache.Key("log", "fileA", "0")); ok {
		t.Errorf("fileA entry survived invalidation")
	}
	if _, ok := c.Get(histcache.Key("log", "fileB", "0")); !ok {
		t.Errorf("fileB entry evicted by fileA invalidation")
	}
	if _, ok := c.Get(histcache.Key("changed", "abc")); !ok {
		t.Errorf("commit-scoped entry evicted by file invalidation")
	}
}

func TestInvalidateCommitIsScoped(t *testing.T) {
	c := histcache.New()
	c.Set(histcache.Key("tree", "abc", "auto"), 1, histcache.Tags{CommitHash: "abc"})
	c.Set(histcache.Key("tree", "def", "auto"), 2, histcache.Tags{CommitHash: "def"})

	c.InvalidateCommit("abc")

	if _, ok := c.Get(histcache.Key("tree", "abc", "auto")); ok {
		t.Errorf("commit abc tree survived invalidation")
	}
	if _, ok := c.Get(histcache.Key("tree", "def", "auto")); !ok {
		t.Errorf("commit def tree evicted with abc")
	}
}

func TestInvalidateAll(t *testing.T) {
	c := histcache.New()
	for i := 0; i < 10; i++ {
		key := histcache.Key("op", fmt.Sprintf("%d", i))
		c.Set(key, i, histcache.Tags{FilePath: fmt.Sprintf("f%d", i)})
	}

	c.InvalidateAll()

	if c.Len() != 0 {
		t.Errorf("expected empty cache got %d entries", c.Len())
	}
}

func TestLastWriterWins(t *testing.T) {
	c := histcache.New()
	key := histcache.Key("content", "abc", "a.go")
	c.Set(key, "first", histcache.Tags{CommitHash: "abc"})
	c.Set(key, "second", histcache.Tags{CommitHash: "abc"})

	if v, _ := c.Get(key); v != "second" {
		t.Errorf("expected last write to win, got %v", v)
	}
	if c.Len() != 1 {
		t.Errorf("duplicate entries for one key: %d", c.Len())
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := histcache.New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := histcache.Key("op", fmt.Sprintf("%d-%d", n, j))
				c.Set(key, j, histcache.Tags{FilePath: "shared"})
				c.Get(key)
				if j%10 == 0 {
					c.InvalidateFile("shared")
				}
			}
		}(i)
	}
	wg.Wait()
}
