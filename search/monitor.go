package search

import "github.com/poiesic/seeker/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterFilter(candidates int)
	AfterStrategy(matchType core.MatchType, candidates int)
	Finish(hits []*core.Hit)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                            {}
func (n *noopMonitor) AfterFilter(_ int)                         {}
func (n *noopMonitor) AfterStrategy(_ core.MatchType, _ int)     {}
func (n *noopMonitor) Finish(_ []*core.Hit)                      {}
