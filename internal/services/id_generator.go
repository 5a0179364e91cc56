package services

import (
	"sync"
	"time"
)

// IDGenerator hands out photo and album ids. NextID never returns an id it
// has returned before or one passed to Observe.
type IDGenerator interface {
	NextID() int64
	Observe(id int64)
}

// ClockIDGenerator produces millisecond-timestamp ids, bumping by one when
// two ids are requested within the same millisecond.
type ClockIDGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewClockIDGenerator creates a ClockIDGenerator. A nil clock uses time.Now.
func NewClockIDGenerator(now func() time.Time) *ClockIDGenerator {
	if now == nil {
		now = time.Now
	}
	return &ClockIDGenerator{now: now}
}

// NextID returns max(now in ms, last id + 1)
func (g *ClockIDGenerator) NextID() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

// Observe records an id already in use so it is never handed out
func (g *ClockIDGenerator) Observe(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if id > g.last {
		g.last = id
	}
}
