package scan

import (
	"strings"

	"github.com/lexandro/milestones-mcp/milestone"
)

// ReferenceMap maps milestone names to the marker line that mentions them.
// Names keep the position of their first insertion; a later line for the
// same name replaces the value.
type ReferenceMap struct {
	order []string
	refs  map[string]KeywordLine
}

// NewReferenceMap creates an empty map.
func NewReferenceMap() *ReferenceMap {
	return &ReferenceMap{refs: make(map[string]KeywordLine)}
}

// Set records line as the reference for name.
func (r *ReferenceMap) Set(name string, line KeywordLine) {
	if _, exists := r.refs[name]; !exists {
		r.order = append(r.order, name)
	}
	r.refs[name] = line
}

// Get returns the reference for name.
func (r *ReferenceMap) Get(name string) (KeywordLine, bool) {
	line, ok := r.refs[name]
	return line, ok
}

// Len returns the number of distinct names.
func (r *ReferenceMap) Len() int {
	return len(r.refs)
}

// Names returns the names in insertion order.
func (r *ReferenceMap) Names() []string {
	result := make([]string, len(r.order))
	copy(result, r.order)
	return result
}

// Occurrence is one marker naming a milestone on one line.
type Occurrence struct {
	Name string
	Line KeywordLine // Done is set for this occurrence only
}

// Occurrences tokenizes marker lines into every marker occurrence, in line order.
//
// Every token equal to the marker is followed by the milestone name; a
// completion token right after the name marks that occurrence done. A marker in
// last position names nothing.
func Occurrences(lines []KeywordLine, tokens milestone.Tokens) []Occurrence {
	var result []Occurrence
	for _, line := range lines {
		cleaned := strings.TrimSpace(strings.NewReplacer("\r", "", "\n", "").Replace(line.Text))
		parts := strings.Fields(cleaned)
		for i, part := range parts {
			if part != tokens.Marker || i+1 >= len(parts) {
				continue
			}
			entry := line
			entry.Done = i+2 < len(parts) && parts[i+2] == tokens.Completion
			result = append(result, Occurrence{Name: parts[i+1], Line: entry})
		}
	}
	return result
}

// Parse tokenizes marker lines into a name -> reference map.
// A name mentioned more than once keeps its last occurrence.
func Parse(lines []KeywordLine, tokens milestone.Tokens) *ReferenceMap {
	return Collect(Occurrences(lines, tokens))
}

// Collect folds occurrences into a reference map, last occurrence winning.
func Collect(occurrences []Occurrence) *ReferenceMap {
	refs := NewReferenceMap()
	for _, occurrence := range occurrences {
		refs.Set(occurrence.Name, occurrence.Line)
	}
	return refs
}
