package main

import (
	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v4/mem"
)

// MemoryProbe reports how much system memory is currently available.
type MemoryProbe interface {
	Available() (uint64, error)
}

// SystemMemoryProbe queries the OS through gopsutil.
type SystemMemoryProbe struct{}

func (SystemMemoryProbe) Available() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.Available, nil
}

// CacheBudget derives the cache byte limit: an explicit cache_limit_mb
// wins, otherwise a fraction of available memory, otherwise the fallback.
func CacheBudget(probe MemoryProbe, config Config) int64 {
	if config.CacheLimitMB > 0 {
		limit := int64(config.CacheLimitMB) * 1024 * 1024
		Log.Infof("Cache budget %s (configured)", humanize.IBytes(uint64(limit)))
		return limit
	}

	fallback := int64(config.FallbackCacheMB) * 1024 * 1024
	if probe == nil {
		return fallback
	}

	available, err := probe.Available()
	if err != nil || available == 0 {
		Log.Warnf("Cannot query available memory, using %s: %v", humanize.IBytes(uint64(fallback)), err)
		return fallback
	}

	limit := int64(float64(available) * config.CacheMemoryFraction)
	Log.Infof("Cache budget %s (%.0f%% of %s available)",
		humanize.IBytes(uint64(limit)), config.CacheMemoryFraction*100, humanize.IBytes(available))
	return limit
}
