package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/oakline/planboard/internal/content"
)

var (
	// ErrItemNotFound is returned when no bucket holds the requested id.
	ErrItemNotFound = errors.New("content item not found in any bucket")
	// ErrNotScheduled is returned when an item without a live date is inserted.
	ErrNotScheduled = errors.New("content item has no live date")
)

// BucketStore keeps the in-memory mapping from calendar day to the ordered set
// of content items scheduled on that day. It holds at most one load scope at a
// time; switching scope resets it wholesale.
//
// An id -> bucket key index is maintained alongside the buckets so removals and
// in-place updates are O(1) lookups instead of a scan over every bucket.
type BucketStore struct {
	mu      sync.RWMutex
	buckets map[string][]content.Item
	index   map[string]string
}

// NewBucketStore creates an empty store.
func NewBucketStore() *BucketStore {
	return &BucketStore{
		buckets: map[string][]content.Item{},
		index:   map[string]string{},
	}
}

// Reset discards every bucket. Used on scope change before a fresh load.
func (s *BucketStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buckets = map[string][]content.Item{}
	s.index = map[string]string{}
}

// Get returns the items scheduled on a day, in append order. The returned
// slice is a copy; mutating it does not affect the store.
func (s *BucketStore) Get(year int, month time.Month, day int) []content.Item {
	return s.GetKey(content.DateKey(year, month, day))
}

// GetKey returns the items in the bucket for the given date key.
func (s *BucketStore) GetKey(key string) []content.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bucket, ok := s.buckets[key]
	if !ok {
		return []content.Item{}
	}
	out := make([]content.Item, len(bucket))
	copy(out, bucket)
	return out
}

// Find returns the item with the given id and the key of the bucket holding it.
func (s *BucketStore) Find(id string) (content.Item, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findUnlocked(id)
}

func (s *BucketStore) findUnlocked(id string) (content.Item, string, bool) {
	key, ok := s.index[id]
	if !ok {
		return content.Item{}, "", false
	}
	for _, item := range s.buckets[key] {
		if item.ID == id {
			return item, key, true
		}
	}
	return content.Item{}, "", false
}

// Insert appends the item to the bucket derived from its live date. Inserting
// an id that is already present in that bucket is a no-op (duplicate
// suppression on rapid double submits); an id already living in a different
// bucket is evicted from it first, so an id is never in two buckets at once.
func (s *BucketStore) Insert(item content.Item) error {
	if !item.Scheduled() {
		return ErrNotScheduled
	}
	key, err := content.KeyForLiveDate(item.LiveDate)
	if err != nil {
		return err
	}
	item.LiveDate = key

	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID != "" {
		if existing, ok := s.index[item.ID]; ok {
			if existing == key {
				return nil
			}
			_, _ = s.removeUnlocked(item.ID)
		}
	}
	s.buckets[key] = append(s.buckets[key], item)
	if item.ID != "" {
		s.index[item.ID] = key
	}
	return nil
}

// Remove deletes the item with the given id from whichever bucket holds it and
// returns the removed item. The bucket itself is deleted when it empties.
func (s *BucketStore) Remove(id string) (content.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeUnlocked(id)
}

func (s *BucketStore) removeUnlocked(id string) (content.Item, error) {
	key, ok := s.index[id]
	if !ok {
		return content.Item{}, ErrItemNotFound
	}
	bucket := s.buckets[key]
	for i, item := range bucket {
		if item.ID != id {
			continue
		}
		s.buckets[key] = append(bucket[:i], bucket[i+1:]...)
		if len(s.buckets[key]) == 0 {
			delete(s.buckets, key)
		}
		delete(s.index, id)
		return item, nil
	}
	// Index pointed at a bucket that no longer holds the item; repair it.
	delete(s.index, id)
	return content.Item{}, ErrItemNotFound
}

// Move relocates an item to the bucket for toKey, re-keying its live date.
// Moving an item onto its current day is a no-op.
func (s *BucketStore) Move(id, toKey string) error {
	normalized, err := content.KeyForLiveDate(toKey)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	fromKey, ok := s.index[id]
	if !ok {
		return ErrItemNotFound
	}
	if fromKey == normalized {
		return nil
	}
	item, err := s.removeUnlocked(id)
	if err != nil {
		return err
	}
	item.LiveDate = normalized
	s.buckets[normalized] = append(s.buckets[normalized], item)
	s.index[id] = normalized
	return nil
}

// UpdateInPlace merges the patch into the item wherever it currently lives.
// The bucket key is never recomputed here; Patch carries no live-date field,
// so a date change cannot enter through this path.
func (s *BucketStore) UpdateInPlace(id string, patch content.Patch) (content.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key, ok := s.index[id]
	if !ok {
		return content.Item{}, ErrItemNotFound
	}
	bucket := s.buckets[key]
	for i := range bucket {
		if bucket[i].ID == id {
			patch.Apply(&bucket[i])
			return bucket[i], nil
		}
	}
	return content.Item{}, ErrItemNotFound
}

// ContainsName reports whether any bucket holds an item with the given content
// name for the brand. Used for create dedup before an id exists.
func (s *BucketStore) ContainsName(contentName, brand string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, bucket := range s.buckets {
		for _, item := range bucket {
			if item.ContentName == contentName && item.SameBrand(brand) {
				return true
			}
		}
	}
	return false
}

// Keys returns the sorted set of date keys that currently have a bucket.
func (s *BucketStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.buckets))
	for k := range s.buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Items returns a copy of every item across all buckets.
func (s *BucketStore) Items() []content.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []content.Item
	for _, key := range s.sortedKeysUnlocked() {
		out = append(out, s.buckets[key]...)
	}
	return out
}

// Snapshot returns a deep copy of the bucket map.
func (s *BucketStore) Snapshot() map[string][]content.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]content.Item, len(s.buckets))
	for key, bucket := range s.buckets {
		cloned := make([]content.Item, len(bucket))
		copy(cloned, bucket)
		out[key] = cloned
	}
	return out
}

// Len returns the total number of items across all buckets.
func (s *BucketStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, bucket := range s.buckets {
		n += len(bucket)
	}
	return n
}

func (s *BucketStore) sortedKeysUnlocked() []string {
	keys := make([]string, 0, len(s.buckets))
	for k := range s.buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
