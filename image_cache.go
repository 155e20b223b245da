package main

import (
	"context"
	"fmt"
	"image"
	"math"
	"runtime/debug"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/golang-lru/v2/simplelru"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"
)

// CacheEntry owns one decoded buffer.
type CacheEntry struct {
	path     string
	img      *image.RGBA
	byteSize int64
}

// ImageHandle is the result of GetOrLoad. Cached is false when the image
// did not fit the budget and must be shown transiently.
type ImageHandle struct {
	Path   ImagePath
	Image  *image.RGBA
	Cached bool
	Reason error
}

// CacheStats is a point-in-time view of the cache.
type CacheStats struct {
	Entries int
	Used    int64
	Limit   int64
}

func (s CacheStats) String() string {
	return fmt.Sprintf("%d images, %s / %s",
		s.Entries, humanize.IBytes(uint64(s.Used)), humanize.IBytes(uint64(s.Limit)))
}

// ImageCache is a byte-budgeted LRU of decoded images. Every operation on
// the entries, the LRU order and the byte total runs under one mutex.
type ImageCache struct {
	mu      sync.Mutex
	lru     *simplelru.LRU[string, *CacheEntry]
	used    int64
	limit   int64
	epoch   uint64
	decoder Decoder
	metrics *MetricsRegistry
	group   singleflight.Group

	// OnRelease is called under the cache lock whenever an entry's buffer
	// is dropped (eviction, a transform that changes its size or bulk release).
	OnRelease func(path string, byteSize int64)
}

// NewImageCache creates a cache with the given byte limit.
func NewImageCache(limit int64, decoder Decoder, metrics *MetricsRegistry) *ImageCache {
	c := &ImageCache{
		limit:   limit,
		decoder: decoder,
		metrics: metrics,
	}
	// Entry count is unbounded; the byte budget drives eviction.
	lru, err := simplelru.NewLRU[string, *CacheEntry](math.MaxInt32, c.onEvict)
	if err != nil {
		panic(fmt.Sprintf("creating LRU: %v", err))
	}
	c.lru = lru
	return c
}

// onEvict runs for every entry leaving the LRU, with c.mu held.
func (c *ImageCache) onEvict(path string, entry *CacheEntry) {
	c.used -= entry.byteSize
	entry.img = nil
	if c.OnRelease != nil {
		c.OnRelease(path, entry.byteSize)
	}
}

// GetOrLoad returns the cached image for p, or decodes and inserts it.
// Capacity outcomes are reported through the handle, not as errors.
func (c *ImageCache) GetOrLoad(p ImagePath) (*ImageHandle, error) {
	c.mu.Lock()
	if entry, ok := c.lru.Get(p.Path); ok {
		img := entry.img
		c.mu.Unlock()
		c.metrics.Inc(context.Background(), metricCacheHits, 1)
		debugLog("Cache hit %s", p.Path)
		return &ImageHandle{Path: p, Image: img, Cached: true}, nil
	}
	epoch := c.epoch
	c.mu.Unlock()

	c.metrics.Inc(context.Background(), metricCacheMisses, 1)
	debugLog("Cache miss %s", p.Path)

	key := fmt.Sprintf("%d:%s", epoch, p.Path)
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		img, err := c.decoder.Decode(p)
		if err != nil {
			c.metrics.Inc(context.Background(), metricDecodeFailures, 1)
			return nil, err
		}

		resident, err := c.insertAt(p.Path, img, imageByteSize(img), epoch)
		if err != nil {
			c.metrics.Inc(context.Background(), metricCacheRejections, 1,
				attribute.String("reason", err.Error()))
			debugLog("Not caching %s: %v", p.Path, err)
			return &ImageHandle{Path: p, Image: img, Reason: err}, nil
		}
		return &ImageHandle{Path: p, Image: resident, Cached: true}, nil
	})
	if err != nil {
		return nil, err
	}

	handle := *v.(*ImageHandle)
	return &handle, nil
}

// Insert adds an image under path, evicting least recently used entries
// as needed. It fails with a capacity error when the image cannot fit.
func (c *ImageCache) Insert(path string, img *image.RGBA, byteSize int64) error {
	c.mu.Lock()
	epoch := c.epoch
	c.mu.Unlock()

	_, err := c.insertAt(path, img, byteSize, epoch)
	return err
}

func (c *ImageCache) insertAt(path string, img *image.RGBA, byteSize int64, epoch uint64) (*image.RGBA, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.insertLocked(path, img, byteSize, epoch)
}

// insertLocked is the composite check-evict-commit step. An existing entry
// for path is kept and returned.
func (c *ImageCache) insertLocked(path string, img *image.RGBA, byteSize int64, epoch uint64) (*image.RGBA, error) {
	if epoch != c.epoch {
		return nil, ErrStaleInsert
	}
	if existing, ok := c.lru.Get(path); ok {
		return existing.img, nil
	}
	if 2*byteSize > c.limit {
		return nil, ErrImageTooLargeForCache
	}

	for c.used+byteSize > c.limit && c.lru.Len() > 0 {
		c.evictOldestLocked()
	}
	if c.used+byteSize > c.limit {
		return nil, ErrCacheOverBudget
	}

	c.lru.Add(path, &CacheEntry{path: path, img: img, byteSize: byteSize})
	c.used += byteSize
	debugLog("Cached %s (%s, total %s)", path,
		humanize.IBytes(uint64(byteSize)), humanize.IBytes(uint64(c.used)))
	return img, nil
}

func (c *ImageCache) evictOldestLocked() bool {
	path, entry, ok := c.lru.RemoveOldest()
	if !ok {
		return false
	}
	c.metrics.Inc(context.Background(), metricCacheEvictions, 1)
	debugLog("Evicted %s (%s)", path, humanize.IBytes(uint64(entry.byteSize)))
	return true
}

// RemoveOldest evicts the least recently used entry, if any.
func (c *ImageCache) RemoveOldest() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evictOldestLocked()
}

// Touch marks path as most recently used. Unknown paths are ignored.
func (c *ImageCache) Touch(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Get(path)
}

// Lookup returns the cached buffer for path and touches it.
func (c *ImageCache) Lookup(path string) (*image.RGBA, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.lru.Get(path)
	if !ok {
		return nil, false
	}
	return entry.img, true
}

// Contains reports whether path is cached without touching it.
func (c *ImageCache) Contains(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Contains(path)
}

// ReleaseAll drops every entry and starts a new generation; inserts from
// decodes that began before this call are rejected.
func (c *ImageCache) ReleaseAll() {
	c.mu.Lock()
	released := c.lru.Len()
	c.lru.Purge()
	c.used = 0
	c.epoch++
	c.mu.Unlock()

	debug.FreeOSMemory()
	Log.Infof("Released %d cached images", released)
}

// ApplyTransform replaces the cached buffer for path with fn(old). It
// returns the new buffer and whether it is still cached; when the new size
// no longer fits, the entry is dropped and the buffer is transient. A path
// that is not cached is left alone and (nil, false) is returned.
func (c *ImageCache) ApplyTransform(path string, fn func(*image.RGBA) *image.RGBA) (*image.RGBA, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.lru.Get(path)
	if !ok || entry.img == nil {
		return nil, false
	}

	newImg := fn(entry.img)
	newSize := imageByteSize(newImg)
	if newSize == entry.byteSize {
		entry.img = newImg
		return newImg, true
	}

	c.lru.Remove(path)
	if _, err := c.insertLocked(path, newImg, newSize, c.epoch); err != nil {
		debugLog("Transformed %s no longer fits: %v", path, err)
		return newImg, false
	}
	return newImg, true
}

// SetLimit changes the byte budget, evicting oldest entries to fit.
func (c *ImageCache) SetLimit(limit int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.limit = limit
	for c.used > c.limit {
		if !c.evictOldestLocked() {
			break
		}
	}
}

func (c *ImageCache) Used() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.used
}

func (c *ImageCache) Limit() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.limit
}

func (c *ImageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Paths returns the cached paths from least to most recently used.
func (c *ImageCache) Paths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Keys()
}

func (c *ImageCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Entries: c.lru.Len(), Used: c.used, Limit: c.limit}
}
