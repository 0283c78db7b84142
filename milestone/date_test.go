package milestone

import (
	"errors"
	"testing"
	"time"
)

func Test_ParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
		ok    bool
	}{
		{"01.02.2024", date(2024, 2, 1), true},
		{"1.2.2024", date(2024, 2, 1), true},
		{" 2024-06-01 ", date(2024, 6, 1), true},
		{"31.02.2024", time.Time{}, false},
		{"32.01.2024", time.Time{}, false},
		{"01.13.2024", time.Time{}, false},
		{"2024/06/01", time.Time{}, false},
		{"", time.Time{}, false},
		{"tomorrow", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.ok {
				if err != nil {
					t.Fatalf("ParseDate(%q) unexpected error: %v", tt.input, err)
				}
				if !got.Equal(tt.want) {
					t.Errorf("ParseDate(%q) = %s, want %s", tt.input, got, tt.want)
				}
				return
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("ParseDate(%q) error = %v, want validation error", tt.input, err)
			}
		})
	}
}

func Test_FormatDate(t *testing.T) {
	if got := FormatDate(date(2024, 3, 9)); got != "09.03.2024" {
		t.Errorf("expected '09.03.2024', got '%s'", got)
	}
}

func Test_State_String(t *testing.T) {
	tests := map[State]string{
		NotStarted: "NOT_STARTED",
		InProgress: "IN_PROGRESS",
		Done:       "DONE",
		State(7):   "UNKNOWN",
	}
	for state, want := range tests {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(state), got, want)
		}
	}
}
