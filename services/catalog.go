package services

import (
	"fmt"
	"sync"

	"pricewatch/metrics"
	"pricewatch/models"
)

// Selection points at one record of one catalog generation. A selection
// taken before a re-fetch never resolves against the new generation.
type Selection struct {
	Generation uint64
	Index      int
}

// SelectOption is one entry of a comparison picker.
type SelectOption struct {
	Selection Selection
	Label     string
}

// CatalogCache holds the most recently fetched product list. The list is
// replaced wholesale on every successful fetch and never mutated in place.
type CatalogCache struct {
	mu         sync.RWMutex
	records    []models.ProductRecord
	generation uint64
}

// NewCatalogCache creates an empty cache at generation zero.
func NewCatalogCache() *CatalogCache {
	return &CatalogCache{}
}

// Replace installs a new generation and returns its number.
func (c *CatalogCache) Replace(records []models.ProductRecord) uint64 {
	snapshot := make([]models.ProductRecord, len(records))
	copy(snapshot, records)

	c.mu.Lock()
	c.records = snapshot
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	metrics.SetCatalogGeneration(gen)
	return gen
}

// Generation returns the current generation; zero means never loaded.
func (c *CatalogCache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// Len returns the number of records in the current generation.
func (c *CatalogCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Records returns a copy of the current generation.
func (c *CatalogCache) Records() []models.ProductRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.ProductRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Select returns a handle to index i of the current generation. The handle
// is not validated until Get.
func (c *CatalogCache) Select(i int) Selection {
	return Selection{Generation: c.Generation(), Index: i}
}

// Get resolves a selection, returning ErrNotLoaded for stale or out of
// range handles.
func (c *CatalogCache) Get(sel Selection) (models.ProductRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.generation == 0 || sel.Generation != c.generation {
		return models.ProductRecord{}, ErrNotLoaded
	}
	if sel.Index < 0 || sel.Index >= len(c.records) {
		return models.ProductRecord{}, ErrNotLoaded
	}
	return c.records[sel.Index], nil
}

// Options builds the comparison picker entries: "PLATFORM — title".
func (c *CatalogCache) Options() []SelectOption {
	c.mu.RLock()
	defer c.mu.RUnlock()

	opts := make([]SelectOption, len(c.records))
	for i, r := range c.records {
		opts[i] = SelectOption{
			Selection: Selection{Generation: c.generation, Index: i},
			Label:     fmt.Sprintf("%s — %s", r.DisplayPlatform(), truncate(orUnknown(r.Title), 55)),
		}
	}
	return opts
}

// DefaultPair returns the initial picker selection: the first two records
// when there are at least two, otherwise the first record twice.
func (c *CatalogCache) DefaultPair() (Selection, Selection) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	first := Selection{Generation: c.generation, Index: 0}
	second := first
	if len(c.records) > 1 {
		second.Index = 1
	}
	return first, second
}
