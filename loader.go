package main

import (
	"context"
	"sync"
	"sync/atomic"
)

// ProgressReporter receives bulk loading progress. OnComplete gets the
// indices that could not be decoded, in load order.
type ProgressReporter interface {
	OnProgress(loaded, total int, used, limit int64)
	OnComplete(failed []int)
}

// PartitionIndices splits [0,total) into the first and last n indices and
// everything else, each in ascending order.
func PartitionIndices(total, n int) (priority, remainder []int) {
	if total <= 0 {
		return nil, nil
	}
	if n < 0 {
		n = 0
	}
	for i := 0; i < total; i++ {
		if i < n || i >= total-n {
			priority = append(priority, i)
		} else {
			remainder = append(remainder, i)
		}
	}
	return priority, remainder
}

// PriorityLoader decodes a whole directory into the cache on one background
// goroutine, priority partition first.
type PriorityLoader struct {
	cache         *ImageCache
	priorityCount int

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPriorityLoader(cache *ImageCache, priorityCount int) *PriorityLoader {
	return &PriorityLoader{cache: cache, priorityCount: priorityCount}
}

// Start cancels any running load and begins loading paths. The reporter is
// called from the loader goroutine.
func (l *PriorityLoader) Start(ctx context.Context, paths []ImagePath, reporter ProgressReporter) {
	l.Cancel()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	l.mu.Lock()
	l.cancel = cancel
	l.done = done
	l.mu.Unlock()

	go func() {
		defer close(done)
		l.run(ctx, paths, reporter)
	}()
}

// Cancel stops the running load and waits for the loader goroutine to exit.
// No insert from the cancelled load happens after Cancel returns.
func (l *PriorityLoader) Cancel() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done = nil, nil
	l.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether a load is in progress.
func (l *PriorityLoader) Running() bool {
	l.mu.Lock()
	done := l.done
	l.mu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

func (l *PriorityLoader) run(ctx context.Context, paths []ImagePath, reporter ProgressReporter) {
	total := len(paths)
	priority, remainder := PartitionIndices(total, l.priorityCount)
	order := append(priority, remainder...)

	loaded := 0
	var failed []int
	for _, idx := range order {
		if ctx.Err() != nil {
			debugLog("Priority load cancelled after %d/%d", loaded, total)
			return
		}

		handle, err := l.cache.GetOrLoad(paths[idx])
		switch {
		case IsDecodeError(err):
			Log.Warnf("Skipping %s: %v", paths[idx].Path, err)
			failed = append(failed, idx)
		case err != nil:
			Log.Errorf("Cannot load %s: %v", paths[idx].Path, err)
			failed = append(failed, idx)
		case handle.Cached:
			loaded++
		case IsCapacityOutcome(handle.Reason):
			debugLog("Loaded %s without caching: %v", paths[idx].Path, handle.Reason)
		}

		stats := l.cache.Stats()
		reporter.OnProgress(loaded, total, stats.Used, stats.Limit)
	}

	if ctx.Err() != nil {
		return
	}
	Log.Infof("Loaded %d/%d images, %d failed (%s)", loaded, total, len(failed), l.cache.Stats())
	reporter.OnComplete(failed)
}

// NavigationDirection represents the direction of navigation
type NavigationDirection int

const (
	NavigationForward NavigationDirection = iota
	NavigationBackward
	NavigationJump
)

// PreloadRequest represents a request to preload the neighbours of an index
type PreloadRequest struct {
	Index      int
	Direction  NavigationDirection
	Paths      []ImagePath
	generation uint64
}

// PreloadStats provides statistics about preloading
type PreloadStats struct {
	QueueSize     int
	LoadedCount   int
	FailedCount   int
	LastDirection NavigationDirection
}

// NeighborPreloader warms the cache around the current index on a single
// worker goroutine. A new request discards stale ones.
type NeighborPreloader struct {
	requestChan chan PreloadRequest
	ctx         context.Context
	cancel      context.CancelFunc
	cache       *ImageCache
	mu          sync.RWMutex
	stats       PreloadStats
	maxPreload  int
	enabled     bool

	generation atomic.Uint64
	inflight   sync.Mutex
	stopped    chan struct{}
}

// NewNeighborPreloader creates a preloader and starts its worker.
func NewNeighborPreloader(cache *ImageCache, maxPreload int) *NeighborPreloader {
	if maxPreload < 1 {
		maxPreload = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &NeighborPreloader{
		requestChan: make(chan PreloadRequest, 100),
		ctx:         ctx,
		cancel:      cancel,
		cache:       cache,
		maxPreload:  maxPreload,
		enabled:     true,
		stopped:     make(chan struct{}),
	}

	go p.worker()

	return p
}

// SetEnabled enables or disables preloading
func (p *NeighborPreloader) SetEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = enabled
}

// IsEnabled returns whether preloading is enabled
func (p *NeighborPreloader) IsEnabled() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.enabled
}

// GetStats returns current preload statistics
func (p *NeighborPreloader) GetStats() PreloadStats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	stats := p.stats
	stats.QueueSize = len(p.requestChan)
	return stats
}

// Request asks for the neighbours of index to be loaded.
func (p *NeighborPreloader) Request(index int, direction NavigationDirection, paths []ImagePath) {
	if !p.IsEnabled() || len(paths) == 0 {
		return
	}

	p.drain()

	req := PreloadRequest{
		Index:      index,
		Direction:  direction,
		Paths:      paths,
		generation: p.generation.Load(),
	}
	select {
	case p.requestChan <- req:
	default:
		debugLog("Preload request channel full, skipping preload request")
	}
}

// Reset discards queued requests and waits for the in-flight load, so no
// preload insert happens after it returns.
func (p *NeighborPreloader) Reset() {
	p.generation.Add(1)
	p.drain()
	p.inflight.Lock()
	defer p.inflight.Unlock()
}

// Close stops the worker and waits for it to exit.
func (p *NeighborPreloader) Close() {
	p.cancel()
	<-p.stopped
}

func (p *NeighborPreloader) drain() {
	for {
		select {
		case <-p.requestChan:
		default:
			return
		}
	}
}

func (p *NeighborPreloader) worker() {
	defer close(p.stopped)
	for {
		select {
		case <-p.ctx.Done():
			return
		case req := <-p.requestChan:
			if p.IsEnabled() {
				p.process(req)
			}
		}
	}
}

func (p *NeighborPreloader) process(req PreloadRequest) {
	p.inflight.Lock()
	defer p.inflight.Unlock()

	p.mu.Lock()
	p.stats.LastDirection = req.Direction
	p.mu.Unlock()

	for _, idx := range p.calculatePreloadIndices(req.Index, req.Direction, len(req.Paths)) {
		if p.ctx.Err() != nil || req.generation != p.generation.Load() {
			return
		}
		p.preloadImage(req.Paths[idx])
	}
}

// calculatePreloadIndices lists the neighbours to warm, the direction of
// travel first.
func (p *NeighborPreloader) calculatePreloadIndices(currentIdx int, direction NavigationDirection, pathsCount int) []int {
	var indices []int
	add := func(idx int) {
		if idx >= 0 && idx < pathsCount && idx != currentIdx {
			indices = append(indices, idx)
		}
	}

	switch direction {
	case NavigationForward:
		for i := 1; i <= p.maxPreload; i++ {
			add(currentIdx + i)
		}
		add(currentIdx - 1)
	case NavigationBackward:
		for i := 1; i <= p.maxPreload; i++ {
			add(currentIdx - i)
		}
		add(currentIdx + 1)
	default:
		for i := 1; i <= p.maxPreload; i++ {
			add(currentIdx + i)
			add(currentIdx - i)
		}
	}

	return indices
}

func (p *NeighborPreloader) preloadImage(path ImagePath) {
	handle, err := p.cache.GetOrLoad(path)
	if err != nil {
		p.mu.Lock()
		p.stats.FailedCount++
		p.mu.Unlock()
		if IsDecodeError(err) {
			debugLog("Preload failed for %s: %v", path.Path, err)
		} else {
			Log.Warnf("Preload failed for %s: %v", path.Path, err)
		}
		return
	}

	p.mu.Lock()
	p.stats.LoadedCount++
	p.mu.Unlock()

	if IsCapacityOutcome(handle.Reason) {
		debugLog("Preloaded %s without caching: %v", path.Path, handle.Reason)
		return
	}
	debugLog("Preloaded %s", path.Path)
}
