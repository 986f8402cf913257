package validator

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"validator.onebusaway.org/internal/notice"
)

// Result is the outcome of one successful validation run.
type Result struct {
	RunID     uuid.UUID         `json:"runId"`
	Feed      string            `json:"feed"`
	StartedAt time.Time         `json:"startedAt"`
	Duration  time.Duration     `json:"durationNanos"`
	Entities  map[string]int    `json:"entities"`
	Summary   []notice.Summary  `json:"summary"`
	Notices   *notice.Container `json:"notices"`
}

// ResultStore keeps the latest Result of each feed, indexed by feed name.
// It is safe for concurrent use.
type ResultStore struct {
	mu   sync.RWMutex
	data map[string]*Result
}

func NewResultStore() *ResultStore {
	return &ResultStore{data: make(map[string]*Result)}
}

// Set replaces the stored result of result.Feed.
func (s *ResultStore) Set(result *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[result.Feed] = result
}

func (s *ResultStore) Get(feed string) (*Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.data[feed]
	return result, ok
}
