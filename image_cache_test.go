package main

import (
	"fmt"
	"image"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unitImage returns a small buffer; tests pass byte sizes explicitly so
// the budget arithmetic stays readable.
func unitImage() *image.RGBA {
	return solidImage(10, 10, colorWhite)
}

func assertBudget(t *testing.T, c *ImageCache) {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	var sum int64
	for _, path := range c.lru.Keys() {
		entry, ok := c.lru.Peek(path)
		require.True(t, ok)
		sum += entry.byteSize
	}
	assert.Equal(t, sum, c.used, "used bytes must equal the sum of entry sizes")
	assert.LessOrEqual(t, c.used, c.limit, "used bytes must stay within the limit")
}

func TestImageCacheLRUEviction(t *testing.T) {
	c := NewImageCache(300, newFakeDecoder(), nil)

	for _, p := range []string{"A", "B", "C"} {
		require.NoError(t, c.Insert(p, unitImage(), 100))
	}
	_, ok := c.Lookup("A")
	require.True(t, ok)

	require.NoError(t, c.Insert("D", unitImage(), 100))

	assert.True(t, c.Contains("A"), "recently used A must survive")
	assert.False(t, c.Contains("B"), "B is the least recently used")
	assert.True(t, c.Contains("C"))
	assert.True(t, c.Contains("D"))
	assert.Equal(t, []string{"C", "A", "D"}, c.Paths())
	assertBudget(t, c)
}

func TestImageCacheInsert(t *testing.T) {
	tests := []struct {
		name    string
		limit   int64
		setup   map[string]int64
		size    int64
		wantErr error
		cached  bool
	}{
		{"fits empty cache", 1000, nil, 400, nil, true},
		{"exactly half the limit", 1000, nil, 500, nil, true},
		{"more than half the limit", 1000, nil, 501, ErrImageTooLargeForCache, false},
		{"evicts to make room", 1000, map[string]int64{"x": 400, "y": 400}, 400, nil, true},
		{"zero limit", 0, nil, 1, ErrImageTooLargeForCache, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewImageCache(tt.limit, newFakeDecoder(), nil)
			for path, size := range tt.setup {
				require.NoError(t, c.Insert(path, unitImage(), size))
			}

			err := c.Insert("new", unitImage(), tt.size)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, IsCapacityOutcome(err))
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.cached, c.Contains("new"))
			assertBudget(t, c)
		})
	}
}

func TestImageCacheInsertExistingKeepsEntry(t *testing.T) {
	c := NewImageCache(1000, newFakeDecoder(), nil)
	first := unitImage()
	require.NoError(t, c.Insert("a", first, 100))
	require.NoError(t, c.Insert("a", unitImage(), 100))

	img, ok := c.Lookup("a")
	require.True(t, ok)
	assert.Same(t, first, img)
	assert.Equal(t, int64(100), c.Used())
}

func TestImageCacheOversizedNeverCached(t *testing.T) {
	dec := newFakeDecoder()
	dec.sizes["big"] = image.Pt(100, 100) // 30000 bytes
	c := NewImageCache(50000, dec, nil)

	handle, err := c.GetOrLoad(ImagePath{Path: "big"})
	require.NoError(t, err)
	assert.False(t, handle.Cached)
	assert.ErrorIs(t, handle.Reason, ErrImageTooLargeForCache)
	require.NotNil(t, handle.Image)
	assert.False(t, c.Contains("big"))
	assert.Zero(t, c.Used())
}

func TestImageCacheGetOrLoad(t *testing.T) {
	dec := newFakeDecoder()
	metrics := NewMetricsRegistry()
	c := NewImageCache(10000, dec, metrics)
	p := ImagePath{Path: "a.png"}

	first, err := c.GetOrLoad(p)
	require.NoError(t, err)
	assert.True(t, first.Cached)

	second, err := c.GetOrLoad(p)
	require.NoError(t, err)
	assert.Same(t, first.Image, second.Image)

	assert.Equal(t, 1, dec.Calls("a.png"))
	assert.Equal(t, int64(1), metrics.Get(metricCacheHits))
	assert.Equal(t, int64(1), metrics.Get(metricCacheMisses))
	assert.Equal(t, ByteSize(10, 10), c.Used())
}

func TestImageCacheGetOrLoadDecodeError(t *testing.T) {
	dec := newFakeDecoder()
	dec.fail["bad"] = true
	metrics := NewMetricsRegistry()
	c := NewImageCache(10000, dec, metrics)

	handle, err := c.GetOrLoad(ImagePath{Path: "bad"})
	assert.Nil(t, handle)
	assert.True(t, IsDecodeError(err))
	assert.False(t, c.Contains("bad"))
	assert.Equal(t, int64(1), metrics.Get(metricDecodeFailures))
}

func TestImageCacheStaleInsertAfterRelease(t *testing.T) {
	dec := newFakeDecoder()
	dec.gate = make(chan struct{})
	c := NewImageCache(10000, dec, nil)

	done := make(chan *ImageHandle)
	go func() {
		h, _ := c.GetOrLoad(ImagePath{Path: "slow"})
		done <- h
	}()

	require.Eventually(t, func() bool { return dec.Calls("slow") == 1 }, timeoutShort, pollShort)
	c.ReleaseAll()
	close(dec.gate)

	handle := <-done
	require.NotNil(t, handle)
	assert.False(t, handle.Cached)
	assert.ErrorIs(t, handle.Reason, ErrStaleInsert)
	assert.False(t, c.Contains("slow"))
	assert.Zero(t, c.Used())
}

func TestImageCacheReleaseAll(t *testing.T) {
	c := NewImageCache(1000, newFakeDecoder(), nil)
	var released []string
	c.OnRelease = func(path string, _ int64) { released = append(released, path) }

	require.NoError(t, c.Insert("a", unitImage(), 100))
	require.NoError(t, c.Insert("b", unitImage(), 100))
	c.ReleaseAll()

	assert.Zero(t, c.Len())
	assert.Zero(t, c.Used())
	assert.ElementsMatch(t, []string{"a", "b"}, released)

	require.NoError(t, c.Insert("c", unitImage(), 100), "inserts after release use the new generation")
}

func TestImageCacheApplyTransform(t *testing.T) {
	t.Run("same size stays cached", func(t *testing.T) {
		c := NewImageCache(10000, newFakeDecoder(), nil)
		src := solidImage(10, 10, colorWhite)
		require.NoError(t, c.Insert("a", src, imageByteSize(src)))

		img, cached := c.ApplyTransform("a", FlipHorizontal)
		require.NotNil(t, img)
		assert.True(t, cached)
		got, _ := c.Lookup("a")
		assert.Same(t, img, got)
		assertBudget(t, c)
	})

	t.Run("new size is re-accounted", func(t *testing.T) {
		c := NewImageCache(10000, newFakeDecoder(), nil)
		src := solidImage(20, 10, colorWhite)
		require.NoError(t, c.Insert("a", src, imageByteSize(src)))

		img, cached := c.ApplyTransform("a", func(s *image.RGBA) *image.RGBA { return Rotate(s, 45) })
		require.NotNil(t, img)
		assert.True(t, cached)
		assert.Equal(t, imageByteSize(img), c.Used())
		assertBudget(t, c)
	})

	t.Run("too large after transform becomes transient", func(t *testing.T) {
		c := NewImageCache(1000, newFakeDecoder(), nil)
		src := solidImage(10, 10, colorWhite)
		require.NoError(t, c.Insert("a", src, imageByteSize(src)))

		img, cached := c.ApplyTransform("a", func(*image.RGBA) *image.RGBA { return solidImage(20, 20, colorWhite) })
		require.NotNil(t, img)
		assert.False(t, cached)
		assert.False(t, c.Contains("a"))
		assertBudget(t, c)
	})

	t.Run("missing path", func(t *testing.T) {
		c := NewImageCache(1000, newFakeDecoder(), nil)
		img, cached := c.ApplyTransform("nope", FlipVertical)
		assert.Nil(t, img)
		assert.False(t, cached)
	})
}

func TestImageCacheSetLimitEvicts(t *testing.T) {
	c := NewImageCache(1000, newFakeDecoder(), nil)
	for _, p := range []string{"a", "b", "c"} {
		require.NoError(t, c.Insert(p, unitImage(), 300))
	}
	c.SetLimit(600)

	assert.Equal(t, []string{"b", "c"}, c.Paths())
	assertBudget(t, c)
}

func TestImageCacheBudgetInvariantUnderRandomOps(t *testing.T) {
	c := NewImageCache(1000, newFakeDecoder(), nil)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		switch rng.Intn(4) {
		case 0, 1:
			_ = c.Insert(fmt.Sprintf("img%d", rng.Intn(20)), unitImage(), int64(1+rng.Intn(600)))
		case 2:
			c.RemoveOldest()
		case 3:
			c.Touch(fmt.Sprintf("img%d", rng.Intn(20)))
		}
		assertBudget(t, c)
	}
}

func TestImageCacheConcurrentInserts(t *testing.T) {
	c := NewImageCache(2000, newFakeDecoder(), nil)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_ = c.Insert(fmt.Sprintf("w%d-%d", w, i), unitImage(), 300)
			}
		}(w)
	}
	wg.Wait()

	assertBudget(t, c)
	assert.Equal(t, 6, c.Len())
}

func TestCacheStatsString(t *testing.T) {
	s := CacheStats{Entries: 2, Used: 2048, Limit: 1 << 20}
	assert.Equal(t, "2 images, 2.0 KiB / 1.0 MiB", s.String())
}
