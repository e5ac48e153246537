package sixel

import (
	"strconv"
	"testing"

	"github.com/Gaurav-Gosain/gridterm/pkg/cell"
)

func TestCacheGetPut(t *testing.T) {
	c := NewCache(4)
	if _, ok := c.Get(1); ok {
		t.Fatal("empty cache returned a hit")
	}
	c.Put(1, "one")
	got, ok := c.Get(1)
	if !ok || got != "one" {
		t.Fatalf("Get(1) = %q, %v", got, ok)
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(3)
	c.Put(1, "a")
	c.Put(2, "b")
	c.Put(3, "c")
	// Touch 1 so 2 becomes the oldest.
	c.Get(1)
	c.Put(4, "d")

	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
	if _, ok := c.Get(2); ok {
		t.Error("key 2 should have been evicted")
	}
	for _, k := range []uint64{1, 3, 4} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("key %d missing", k)
		}
	}
}

func TestCacheOverwrite(t *testing.T) {
	c := NewCache(2)
	c.Put(7, "old")
	c.Put(7, "new")
	if got, _ := c.Get(7); got != "new" {
		t.Errorf("Get(7) = %q, want %q", got, "new")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCacheDefaultCapacity(t *testing.T) {
	c := NewCache(0)
	for i := range DefaultCacheCapacity + 10 {
		c.Put(uint64(i), strconv.Itoa(i))
	}
	if c.Len() != DefaultCacheCapacity {
		t.Errorf("Len() = %d, want %d", c.Len(), DefaultCacheCapacity)
	}
}

func TestKeyMatchesContentNotPosition(t *testing.T) {
	mk := func(seed int) []cell.Cell {
		img := cell.NewImage(4, 4)
		img.Set(0, 0, cell.RGB(seed))
		c := cell.NewCell()
		c.Image = img
		return []cell.Cell{c}
	}
	a, b := mk(0x112233), mk(0x112233)
	if Key(a) != Key(b) {
		t.Error("identical content should share a key")
	}
	if Key(mk(0x112233)) == Key(mk(0x445566)) {
		t.Error("different content should not share a key")
	}
}
