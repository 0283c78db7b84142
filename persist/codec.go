package persist

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/lexandro/milestones-mcp/milestone"
)

// record is the persisted shape of one milestone.
// The file path of a location is never stored; the next scan rederives it.
type record struct {
	Name       string `json:"name"`
	Date       string `json:"date"`
	State      int    `json:"state"`
	LineNumber int    `json:"lineNumber"`
}

// DeserializationError reports a persisted payload that is malformed or not a milestone list.
type DeserializationError struct {
	Err error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("decoding milestones: %v", e.Err)
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}

func float(f float64) *float64 { return &f }

// payloadSchema describes the only accepted wire format: a JSON array of records.
var payloadSchema = &jsonschema.Schema{
	Type: "array",
	Items: &jsonschema.Schema{
		Type:     "object",
		Required: []string{"name", "date", "state"},
		Properties: map[string]*jsonschema.Schema{
			"name":       {Type: "string", Pattern: `^\S+$`},
			"date":       {Type: "string"},
			"state":      {Type: "integer", Minimum: float(0), Maximum: float(2)},
			"lineNumber": {Type: "integer"},
		},
	},
}

var resolvedPayloadSchema = mustResolve(payloadSchema)

func mustResolve(schema *jsonschema.Schema) *jsonschema.Resolved {
	resolved, err := schema.Resolve(nil)
	if err != nil {
		panic(fmt.Sprintf("resolving payload schema: %v", err))
	}
	return resolved
}

// Encode serializes milestones in their current order.
func Encode(milestones []milestone.Milestone) (string, error) {
	records := make([]record, 0, len(milestones))
	for _, m := range milestones {
		lineNumber := -1
		if m.Location != nil {
			lineNumber = m.Location.Line
		}
		records = append(records, record{
			Name:       m.Name,
			Date:       m.Date.Format(milestone.ISODateLayout),
			State:      int(m.State),
			LineNumber: lineNumber,
		})
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encoding milestones: %w", err)
	}
	return string(data), nil
}

// Decode parses a payload produced by Encode.
// The payload is validated against the schema before any record is built, and
// duplicate names are rejected, so a non-nil error never comes with partial data.
// Decoded milestones keep their state and have no location.
func Decode(payload string) ([]milestone.Milestone, error) {
	var instance any
	if err := json.Unmarshal([]byte(payload), &instance); err != nil {
		return nil, &DeserializationError{Err: err}
	}
	if err := resolvedPayloadSchema.Validate(instance); err != nil {
		return nil, &DeserializationError{Err: err}
	}

	var records []record
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		return nil, &DeserializationError{Err: err}
	}

	result := make([]milestone.Milestone, 0, len(records))
	seen := make(map[string]bool, len(records))
	for i, r := range records {
		if seen[r.Name] {
			return nil, &DeserializationError{Err: fmt.Errorf("record %d: duplicate name %q", i, r.Name)}
		}
		seen[r.Name] = true
		if err := milestone.ValidateName(r.Name, milestone.DefaultTokens); err != nil {
			return nil, &DeserializationError{Err: fmt.Errorf("record %d: %w", i, err)}
		}

		date, err := parseWireDate(r.Date)
		if err != nil {
			return nil, &DeserializationError{Err: fmt.Errorf("record %d: %w", i, err)}
		}
		result = append(result, milestone.Milestone{
			Name:  r.Name,
			Date:  date,
			State: milestone.State(r.State),
		})
	}
	return result, nil
}

// parseWireDate accepts the plain date written by Encode and full RFC 3339
// timestamps written by older versions. Those stored local midnight in UTC, so
// a timestamp is rounded to the nearest day rather than truncated.
func parseWireDate(text string) (time.Time, error) {
	if t, err := time.Parse(milestone.ISODateLayout, text); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, text)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", text)
	}
	return milestone.Day(t.UTC().Add(12 * time.Hour)), nil
}
