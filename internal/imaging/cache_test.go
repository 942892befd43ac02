package imaging

import (
	"context"
	"image"
	"image/color"
	"strings"
	"sync"
	"testing"
)

// newSolidImage creates an in-memory image filled with a single color
func newSolidImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestNewRasterCache(t *testing.T) {
	cache := NewRasterCache()
	if cache == nil {
		t.Fatal("NewRasterCache returned nil")
	}
	if cache.Len() != 0 {
		t.Errorf("new cache should be empty, got %d entries", cache.Len())
	}
}

func TestRasterCache_PutGet(t *testing.T) {
	ctx := context.Background()
	cache := NewRasterCache()
	img := newSolidImage(10, 10, color.White)

	if _, ok, _ := cache.Get(ctx, "k"); ok {
		t.Fatal("Get on empty cache should miss")
	}

	if err := cache.Put(ctx, "k", img); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok, err := cache.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get after Put: ok=%v err=%v", ok, err)
	}
	if got != image.Image(img) {
		t.Error("Get should return the cached instance")
	}
}

func TestRasterCache_Evict(t *testing.T) {
	ctx := context.Background()
	cache := NewRasterCache()
	_ = cache.Put(ctx, "a", newSolidImage(1, 1, color.Black))
	_ = cache.Put(ctx, "b", newSolidImage(1, 1, color.Black))

	cache.Evict("a")
	cache.Evict("missing")

	if _, ok, _ := cache.Get(ctx, "a"); ok {
		t.Error("evicted key should miss")
	}
	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1", cache.Len())
	}
}

func TestRasterCache_Clear(t *testing.T) {
	ctx := context.Background()
	cache := NewRasterCache()
	for _, k := range []string{"a", "b", "c"} {
		_ = cache.Put(ctx, k, newSolidImage(1, 1, color.Black))
	}

	cache.Clear()

	if cache.Len() != 0 {
		t.Errorf("Len after Clear: got %d, want 0", cache.Len())
	}
}

func TestRasterCache_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	cache := NewRasterCache()
	img := newSolidImage(4, 4, color.White)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i%5))
			_ = cache.Put(ctx, key, img)
			_, _, _ = cache.Get(ctx, key)
		}(i)
	}
	wg.Wait()

	if cache.Len() != 5 {
		t.Errorf("Len: got %d, want 5", cache.Len())
	}
}

func TestRasterKey(t *testing.T) {
	a := RasterKey([]byte("%PDF-1.7 a"), 1.5)
	b := RasterKey([]byte("%PDF-1.7 a"), 1.5)
	c := RasterKey([]byte("%PDF-1.7 a"), 2)
	d := RasterKey([]byte("%PDF-1.7 b"), 1.5)

	if a != b {
		t.Error("same input should give the same key")
	}
	if a == c {
		t.Error("different scale should give a different key")
	}
	if a == d {
		t.Error("different content should give a different key")
	}
	if !strings.HasSuffix(a, ":1.5") {
		t.Errorf("key should end with the scale, got %s", a)
	}
	if len(strings.SplitN(a, ":", 2)[0]) != 64 {
		t.Errorf("key should start with a hex sha256, got %s", a)
	}
}
