// Package catalog maps day keys to solution factories.
// Solution packages register themselves from init via MustRegister; tests
// build isolated catalogs with New.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/MyCarrier-DevOps/advent-runner/internal/domain"
)

// Descriptor declares one solution: the key it claims, whether it reads
// puzzle input, and a factory for fresh instances.
type Descriptor struct {
	Key        domain.DayKey
	NeedsInput bool
	New        func() domain.Solution
}

// Catalog is a registry of solution descriptors keyed by day.
// It implements domain.Catalog.
type Catalog struct {
	mu      sync.RWMutex
	entries map[domain.DayKey]Descriptor
}

// New creates a catalog holding the given descriptors.
// Returns an error if any descriptor is invalid or two share a key.
func New(descs ...Descriptor) (*Catalog, error) {
	c := &Catalog{entries: make(map[domain.DayKey]Descriptor, len(descs))}
	for _, d := range descs {
		if err := c.Register(d); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Register adds a descriptor. An existing registration is never overwritten.
func (c *Catalog) Register(d Descriptor) error {
	if err := d.Key.Validate(); err != nil {
		return err
	}
	if d.New == nil {
		return fmt.Errorf("solution for %s has no factory", d.Key)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[d.Key]; exists {
		return fmt.Errorf("%w: %s is claimed more than once", domain.ErrDuplicateDay, d.Key)
	}
	c.entries[d.Key] = d
	return nil
}

// Resolve constructs the solution registered for key.
func (c *Catalog) Resolve(key domain.DayKey) (*domain.Puzzle, error) {
	c.mu.RLock()
	d, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w for %s", domain.ErrDayNotFound, key)
	}

	return &domain.Puzzle{
		Key:        d.Key,
		NeedsInput: d.NeedsInput,
		Solution:   d.New(),
	}, nil
}

// Has reports whether a solution is registered for key.
func (c *Catalog) Has(key domain.DayKey) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[key]
	return ok
}

// Keys returns every registered key ordered by year, then day.
func (c *Catalog) Keys() []domain.DayKey {
	c.mu.RLock()
	keys := make([]domain.DayKey, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	c.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

var defaultCatalog = &Catalog{entries: make(map[domain.DayKey]Descriptor)}

// Default returns the process-wide catalog populated by MustRegister.
func Default() *Catalog {
	return defaultCatalog
}

// MustRegister adds d to the process-wide catalog. It panics if the
// descriptor is invalid or its key is already claimed: that is a build
// defect, not a runtime condition.
func MustRegister(d Descriptor) {
	if err := defaultCatalog.Register(d); err != nil {
		if errors.Is(err, domain.ErrDuplicateDay) {
			panic(fmt.Sprintf("catalog: %v", err))
		}
		panic(fmt.Sprintf("catalog: invalid registration: %v", err))
	}
}
