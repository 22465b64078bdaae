package data

import (
	"log"
	"path/filepath"
	"sync"

	"almanac/pkg/types"
)

// MemoryCache implements BarCache using in-memory storage
type MemoryCache struct {
	cache map[string][]types.Bar
	mutex sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		cache: make(map[string][]types.Bar),
	}
}

// Get retrieves a series from cache if available
func (c *MemoryCache) Get(key string) ([]types.Bar, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	bars, exists := c.cache[key]
	if exists {
		// Return a copy to prevent external modifications
		result := make([]types.Bar, len(bars))
		copy(result, bars)
		return result, true
	}

	return nil, false
}

// Set stores a series in cache
func (c *MemoryCache) Set(key string, bars []types.Bar) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	// Store a copy to prevent external modifications
	cached := make([]types.Bar, len(bars))
	copy(cached, bars)
	c.cache[key] = cached
}

// Delete removes a single cached series
func (c *MemoryCache) Delete(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.cache, key)
}

// Clear removes all cached series
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache = make(map[string][]types.Bar)
}

// Size returns the number of cached entries
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.cache)
}

// CachedProvider wraps another BarProvider with caching functionality
type CachedProvider struct {
	provider BarProvider
	cache    BarCache
}

// NewCachedProvider creates a new cached provider
func NewCachedProvider(provider BarProvider) *CachedProvider {
	return &CachedProvider{
		provider: provider,
		cache:    NewMemoryCache(),
	}
}

// NewCachedProviderWithCache creates a new cached provider with a custom cache
func NewCachedProviderWithCache(provider BarProvider, cache BarCache) *CachedProvider {
	return &CachedProvider{
		provider: provider,
		cache:    cache,
	}
}

// GetName returns the name of the underlying provider with cache indication
func (p *CachedProvider) GetName() string {
	return "Cached " + p.provider.GetName()
}

// LoadBars loads a series with caching to avoid re-reading files
func (p *CachedProvider) LoadBars(source string) ([]types.Bar, error) {
	// Check cache first
	if cached, exists := p.cache.Get(source); exists {
		return cached, nil
	}

	// Load the series if not in cache
	log.Printf("🔄 Loading price history from %s", filepath.Base(source))
	bars, err := p.provider.LoadBars(source)
	if err != nil {
		log.Printf("❌ Failed to load price history from %s: %v", filepath.Base(source), err)
		return nil, err
	}

	// Store in cache
	p.cache.Set(source, bars)

	log.Printf("✅ Loaded and cached %s (%d bars)", filepath.Base(source), len(bars))
	return bars, nil
}

// ValidateBars validates a series using the underlying provider
func (p *CachedProvider) ValidateBars(bars []types.Bar) error {
	return p.provider.ValidateBars(bars)
}

// Invalidate drops the cached series for a single source
func (p *CachedProvider) Invalidate(source string) {
	p.cache.Delete(source)
}

// GetCache returns the underlying cache for external management
func (p *CachedProvider) GetCache() BarCache {
	return p.cache
}

// ClearCache clears all cached series
func (p *CachedProvider) ClearCache() {
	p.cache.Clear()
}

// GetCacheSize returns the number of cached entries
func (p *CachedProvider) GetCacheSize() int {
	return p.cache.Size()
}
