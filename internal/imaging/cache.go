package imaging

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"image"
	"strconv"
	"sync"
)

// RasterStore keeps rendered page rasters so a document that is re-uploaded
// (or re-rendered after a cancel) does not go through the PDF renderer again.
//
// Implementations must be safe for concurrent use.
type RasterStore interface {
	// Get returns the raster stored under key. The bool is false on a miss.
	Get(ctx context.Context, key string) (image.Image, bool, error)

	// Put stores img under key, replacing any previous entry.
	Put(ctx context.Context, key string, img image.Image) error
}

// RasterKey derives the cache key for a document rendered at the given scale.
//
// The key is the hex SHA-256 of the document bytes followed by the scale, so
// the same file uploaded under a different name still hits the cache.
func RasterKey(data []byte, scale float64) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]) + ":" + strconv.FormatFloat(scale, 'f', -1, 64)
}

// RasterCache provides thread-safe in-memory caching of rendered page rasters.
//
// Rasters are keyed by RasterKey. Once a page is rendered, later lookups for the
// same document bytes and scale return the cached image without rendering.
//
// RasterCache is safe for concurrent use by multiple goroutines. All methods use
// appropriate locking to prevent data races.
//
// # Memory Management
//
// Cached rasters remain in memory until explicitly removed via Evict() or Clear().
// A 1.5x render of an A4 page is roughly 4 MB decoded; long-running servers that
// see many distinct documents should clear the cache periodically or use the
// Redis-backed store instead.
//
// # Example Usage
//
//	cache := imaging.NewRasterCache()
//	key := imaging.RasterKey(pdfBytes, 1.5)
//	if img, ok, _ := cache.Get(ctx, key); ok {
//	    // use img
//	}
type RasterCache struct {
	mu      sync.RWMutex
	rasters map[string]image.Image
}

// NewRasterCache creates and initializes a new empty raster cache.
//
// The returned cache is ready for immediate use and is safe for concurrent access.
func NewRasterCache() *RasterCache {
	return &RasterCache{
		rasters: make(map[string]image.Image),
	}
}

// Get returns the raster stored under key. It never returns an error.
func (c *RasterCache) Get(_ context.Context, key string) (image.Image, bool, error) {
	c.mu.RLock()
	img, ok := c.rasters[key]
	c.mu.RUnlock()
	return img, ok, nil
}

// Put stores img under key.
func (c *RasterCache) Put(_ context.Context, key string, img image.Image) error {
	c.mu.Lock()
	c.rasters[key] = img
	c.mu.Unlock()
	return nil
}

// Len returns the number of cached rasters.
func (c *RasterCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rasters)
}

// Clear removes all rasters from the cache, freeing the associated memory.
func (c *RasterCache) Clear() {
	c.mu.Lock()
	c.rasters = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific raster from the cache by its key.
//
// If the key is not in the cache, this method does nothing.
func (c *RasterCache) Evict(key string) {
	c.mu.Lock()
	delete(c.rasters, key)
	c.mu.Unlock()
}
