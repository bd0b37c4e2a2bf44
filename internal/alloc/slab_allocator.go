// Package alloc provides a tiered, pooled slice allocator. ngram.PostingIndex
// uses it to grow posting-list slices without falling back to append's
// doubling growth curve on every tier crossing.
package alloc

import "sync"

// SlabAllocator is a generic tiered slab allocator: a fixed ladder of
// capacity-sized sync.Pools, each reused across callers instead of
// reallocating on every grow.
type SlabAllocator[T any] struct {
	pools []*poolTier[T]
}

// poolTier is a single size tier in the slab allocator.
type poolTier[T any] struct {
	capacity int
	pool     sync.Pool
}

// SlabTierConfig names one tier's capacity and its expected share of
// allocations, for documentation of the tier ladder's shape.
type SlabTierConfig struct {
	Capacity int
	Weight   float64
}

// PostingTierConfigs is sized for the posting-list slices backing
// ngram.PostingIndex: most grams occur in a handful of sources, a long tail
// occurs in many.
var PostingTierConfigs = []SlabTierConfig{
	{Capacity: 8, Weight: 0.40},   // 40% of grams appear in <=5 sources
	{Capacity: 16, Weight: 0.40},  // 40% of grams appear in 6-10 sources
	{Capacity: 32, Weight: 0.15},  // 15% of grams appear in 11-20 sources
	{Capacity: 64, Weight: 0.03},  // 3% of grams appear in 21-50 sources
	{Capacity: 128, Weight: 0.02}, // 2% of grams appear in >50 sources
}

// NewPostingSlabAllocator creates a slab allocator sized for posting-list growth.
func NewPostingSlabAllocator[T any]() *SlabAllocator[T] {
	sa := &SlabAllocator[T]{pools: make([]*poolTier[T], len(PostingTierConfigs))}
	for i, config := range PostingTierConfigs {
		cap := config.Capacity
		sa.pools[i] = &poolTier[T]{
			capacity: cap,
			pool: sync.Pool{
				New: func() any {
					return make([]T, 0, cap)
				},
			},
		}
	}
	return sa
}

// Get returns a slice with at least the requested capacity and length 0.
func (sa *SlabAllocator[T]) Get(capacity int) []T {
	if capacity <= 0 {
		return make([]T, 0)
	}
	for _, tier := range sa.pools {
		if tier.capacity >= capacity {
			return sa.getFromPool(tier)
		}
	}
	return make([]T, 0, capacity)
}

// Put returns a slice to the appropriate pool for reuse. Slices whose
// capacity doesn't match a tier exactly are discarded.
func (sa *SlabAllocator[T]) Put(slice []T) {
	if slice == nil || cap(slice) == 0 {
		return
	}
	capacity := cap(slice)
	for _, tier := range sa.pools {
		if tier.capacity == capacity {
			tier.pool.Put(slice[:0])
			return
		}
	}
}

func (sa *SlabAllocator[T]) getFromPool(tier *poolTier[T]) []T {
	if slice := tier.pool.Get(); slice != nil {
		return slice.([]T)
	}
	return make([]T, 0, tier.capacity)
}

// GrowSlice grows slice to accommodate additionalCapacity more elements,
// routing the new backing array through the slab pools when the current
// one is too small, and returning the old backing array to its pool.
func (sa *SlabAllocator[T]) GrowSlice(slice []T, additionalCapacity int) []T {
	if additionalCapacity <= 0 {
		return slice
	}
	requiredCap := len(slice) + additionalCapacity
	if cap(slice) >= requiredCap {
		return slice
	}

	newSlice := sa.Get(requiredCap)
	newSlice = append(newSlice, slice...)
	sa.Put(slice)
	return newSlice
}
