// Package result holds helpers shared by post processors for labelling
// detection results
package result

import "sync"

// IDGenerator hands out incrementing detection IDs, safe for use by multiple
// goroutines
type IDGenerator struct {
	mu sync.Mutex
	id int64
}

// NewIDGenerator returns a generator whose first ID is 1
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// GetNext returns the next ID
func (g *IDGenerator) GetNext() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.id++
	return g.id
}
