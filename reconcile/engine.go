package reconcile

import (
	"github.com/lexandro/milestones-mcp/milestone"
	"github.com/lexandro/milestones-mcp/scan"
)

// Result summarises one reconciliation.
type Result struct {
	Linked    int      // milestones given a location
	Cleared   int      // milestones whose location was dropped before relinking
	Unmatched []string // marker names that match no milestone, in map order
}

// Engine applies name -> reference maps to the milestone store.
type Engine struct {
	store *milestone.Store
}

// NewEngine creates an engine reconciling into store.
func NewEngine(store *milestone.Store) *Engine {
	return &Engine{store: store}
}

// ReconcileFull links every milestone named in refs to its marker line.
// Milestones absent from refs keep their current state and location.
func (e *Engine) ReconcileFull(refs *scan.ReferenceMap) Result {
	var result Result
	e.store.Update(func(milestones []*milestone.Milestone) {
		result = apply(milestones, refs)
	})
	return result
}

// ReconcilePartial resets every milestone located in path, then links the
// milestones named in refs. refs must come from a scan of path alone.
func (e *Engine) ReconcilePartial(path string, refs *scan.ReferenceMap) Result {
	var result Result
	e.store.Update(func(milestones []*milestone.Milestone) {
		cleared := 0
		for _, m := range milestones {
			if m.Location != nil && m.Location.Path == path {
				m.State = milestone.NotStarted
				m.Location = nil
				cleared++
			}
		}
		result = apply(milestones, refs)
		result.Cleared = cleared
	})
	return result
}

func apply(milestones []*milestone.Milestone, refs *scan.ReferenceMap) Result {
	var result Result
	known := make(map[string]bool, len(milestones))
	for _, m := range milestones {
		known[m.Name] = true
		ref, ok := refs.Get(m.Name)
		if !ok {
			continue
		}
		m.Location = &milestone.Location{Path: ref.Path, Line: ref.Line}
		if ref.Done {
			m.State = milestone.Done
		} else {
			m.State = milestone.InProgress
		}
		result.Linked++
	}
	for _, name := range refs.Names() {
		if !known[name] {
			result.Unmatched = append(result.Unmatched, name)
		}
	}
	return result
}
