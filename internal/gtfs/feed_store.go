package gtfs

import (
	"sort"
	"sync"

	"validator.onebusaway.org/internal/table"
)

// FeedStore is a thread-safe in-memory store of the last loaded snapshot of each feed,
// indexed by feed name.
type FeedStore struct {
	mu   sync.RWMutex
	data map[string]*table.Feed
}

// NewFeedStore returns an empty FeedStore. The underlying map is created on first Set.
func NewFeedStore() *FeedStore {
	return &FeedStore{}
}

// Set stores feed under feed.Name, replacing any earlier snapshot.
func (s *FeedStore) Set(feed *table.Feed) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		s.data = make(map[string]*table.Feed)
	}
	s.data[feed.Name] = feed
}

func (s *FeedStore) Get(name string) (*table.Feed, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	feed, exists := s.data[name]
	return feed, exists
}

// Names returns the names of the stored feeds, sorted.
func (s *FeedStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *FeedStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
