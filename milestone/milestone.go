package milestone

import (
	"strings"
	"time"
	"unicode"
)

// State is the lifecycle state of a milestone.
// The numeric values are part of the persisted format.
type State int

const (
	NotStarted State = iota
	InProgress
	Done
)

// String returns the display name of the state.
func (s State) String() string {
	switch s {
	case NotStarted:
		return "NOT_STARTED"
	case InProgress:
		return "IN_PROGRESS"
	case Done:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether s is one of the known states.
func (s State) Valid() bool {
	return s >= NotStarted && s <= Done
}

// Location is the marker line currently backing a milestone.
type Location struct {
	Path string // Absolute file path
	Line int    // Zero-based line index
}

// Milestone is a named target with a due date.
type Milestone struct {
	Name     string
	Date     time.Time // Calendar date at UTC midnight
	State    State
	Location *Location // nil when no marker line backs the milestone
}

// clone returns a copy that shares no memory with m.
func (m *Milestone) clone() Milestone {
	c := *m
	if m.Location != nil {
		loc := *m.Location
		c.Location = &loc
	}
	return c
}

// Tokens holds the literal keywords recognised in marker lines.
type Tokens struct {
	Marker     string
	Completion string
}

// DefaultTokens are the keywords used when none are configured.
var DefaultTokens = Tokens{
	Marker:     "MILESTONE",
	Completion: "DONE",
}

// ValidateName checks that name can identify a milestone under the given tokens.
// Uniqueness is checked by the store.
func ValidateName(name string, tokens Tokens) error {
	if name == "" {
		return &ValidationError{Field: "name", Value: name, Reason: "must not be empty"}
	}
	if tokens.Marker != "" && strings.Contains(name, tokens.Marker) {
		return &ValidationError{Field: "name", Value: name, Reason: "must not contain the keyword " + tokens.Marker}
	}
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return &ValidationError{Field: "name", Value: name, Reason: "must not contain whitespace"}
	}
	return nil
}
