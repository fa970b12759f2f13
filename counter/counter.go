// Package counter keeps track of how many times each distinct key has been
// observed and ranks keys by observation count.
package counter

import (
	"cmp"
	"fmt"
	"sort"
	"strings"

	"github.com/twotwotwo/sorts"
)

// Counter maps each distinct key to the number of times it was seen.
//
// A Counter is not safe for concurrent mutation. Code that hands a Counter
// to a long running operation should pass a Clone if it keeps mutating the
// original.
type Counter[K cmp.Ordered] struct {
	counts map[K]int
}

// New returns an empty counter.
func New[K cmp.Ordered]() *Counter[K] {
	return &Counter[K]{counts: make(map[K]int)}
}

// FromMap builds a counter holding a copy of m.
func FromMap[K cmp.Ordered](m map[K]int) *Counter[K] {
	c := &Counter[K]{counts: make(map[K]int, len(m))}
	for k, v := range m {
		c.counts[k] = v
	}
	return c
}

// Clone returns an independent copy of c.
func (c *Counter[K]) Clone() *Counter[K] {
	return FromMap(c.counts)
}

// Has reports whether key is present, even with a count of zero.
func (c *Counter[K]) Has(key K) bool {
	_, ok := c.counts[key]
	return ok
}

// Increment adds one observation of key.
func (c *Counter[K]) Increment(key K) {
	c.IncrementBy(key, 1)
}

// IncrementBy adds n to the count of key, creating it at n if absent.
// Negative n is accepted.
func (c *Counter[K]) IncrementBy(key K, n int) {
	c.counts[key] += n
}

// SetCount overwrites the count of key.
func (c *Counter[K]) SetCount(key K, n int) {
	c.counts[key] = n
}

// Remove deletes key. Removing an absent key is a no-op.
func (c *Counter[K]) Remove(key K) {
	delete(c.counts, key)
}

// Clear removes every key.
func (c *Counter[K]) Clear() {
	c.counts = make(map[K]int)
}

// Count returns the count of key, or 0 if absent.
func (c *Counter[K]) Count(key K) int {
	return c.counts[key]
}

// Len returns the number of distinct keys.
func (c *Counter[K]) Len() int {
	return len(c.counts)
}

// Keys returns all keys in ascending natural order.
func (c *Counter[K]) Keys() []K {
	keys := make([]K, 0, len(c.counts))
	for k := range c.counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// TotalCount returns the sum of all counts.
func (c *Counter[K]) TotalCount() int {
	total := 0
	for _, v := range c.counts {
		total += v
	}
	return total
}

// NumberOfSize returns how many keys have exactly the given count.
func (c *Counter[K]) NumberOfSize(size int) int {
	n := 0
	for _, v := range c.counts {
		if v == size {
			n++
		}
	}
	return n
}

// Mode returns the key with the highest count. Ties go to the smallest key.
// ok is false when the counter is empty.
func (c *Counter[K]) Mode() (mode K, ok bool) {
	best := 0
	for k, v := range c.counts {
		if !ok || v > best || (v == best && k < mode) {
			mode, best, ok = k, v, true
		}
	}
	return mode, ok
}

// FilterByMinCount drops every key seen fewer than minCount times.
func (c *Counter[K]) FilterByMinCount(minCount int) {
	for k, v := range c.counts {
		if v < minCount {
			delete(c.counts, k)
		}
	}
}

// KeysOrderedByCount returns every key sorted by count, largest first when
// descending is true. Keys sharing a count are always in ascending natural
// order, so the result is the same from run to run.
func (c *Counter[K]) KeysOrderedByCount(descending bool) []K {
	s := byCount[K]{
		keys:       make([]K, 0, len(c.counts)),
		counts:     make([]int, 0, len(c.counts)),
		descending: descending,
	}
	for k, v := range c.counts {
		s.keys = append(s.keys, k)
		s.counts = append(s.counts, v)
	}
	sorts.Quicksort(s)
	return s.keys
}

// ReverseMapping groups keys by count. Each group is in ascending order.
func (c *Counter[K]) ReverseMapping() map[int][]K {
	result := make(map[int][]K)
	for _, k := range c.Keys() {
		v := c.counts[k]
		result[v] = append(result[v], k)
	}
	return result
}

func (c *Counter[K]) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range c.Keys() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%v=%d", k, c.counts[k])
	}
	b.WriteByte('}')
	return b.String()
}

// byCount sorts keys and their counts together.
type byCount[K cmp.Ordered] struct {
	keys       []K
	counts     []int
	descending bool
}

func (s byCount[K]) Len() int { return len(s.keys) }

func (s byCount[K]) Swap(i, j int) {
	s.keys[i], s.keys[j] = s.keys[j], s.keys[i]
	s.counts[i], s.counts[j] = s.counts[j], s.counts[i]
}

func (s byCount[K]) Less(i, j int) bool {
	if s.counts[i] != s.counts[j] {
		if s.descending {
			return s.counts[i] > s.counts[j]
		}
		return s.counts[i] < s.counts[j]
	}
	return s.keys[i] < s.keys[j]
}
