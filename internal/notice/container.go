package notice

import "sync"

// Container is an append-only, ordered sink of notices for one validation run.
// It is safe for concurrent use. There is no deduplication and no capacity limit.
type Container struct {
	mu      sync.Mutex
	notices []Notice
}

func NewContainer() *Container {
	return &Container{}
}

// Add appends n.
func (c *Container) Add(n Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, n)
}

// AddAll appends every notice of other, keeping their order.
func (c *Container) AddAll(other *Container) {
	if other == nil || other == c {
		return
	}
	notices := other.Notices()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, notices...)
}

// Notices returns a copy of the collected notices in insertion order.
func (c *Container) Notices() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notice(nil), c.notices...)
}

func (c *Container) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.notices)
}

// HasSeverity reports whether any notice is at least as severe as level.
func (c *Container) HasSeverity(level SeverityLevel) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range c.notices {
		if n.Severity() >= level {
			return true
		}
	}
	return false
}

// Summary is the number of notices of one code.
type Summary struct {
	Code     string        `json:"code"`
	Severity SeverityLevel `json:"severity"`
	Count    int           `json:"count"`
}

// Summaries counts notices per code, in order of first appearance.
func (c *Container) Summaries() []Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	var summaries []Summary
	positions := make(map[string]int)
	for _, n := range c.notices {
		i, ok := positions[n.Code()]
		if !ok {
			positions[n.Code()] = len(summaries)
			summaries = append(summaries, Summary{Code: n.Code(), Severity: n.Severity(), Count: 1})
			continue
		}
		summaries[i].Count++
	}
	return summaries
}
