package reconcile

import (
	"log/slog"
	"sync"
	"time"

	"github.com/lexandro/milestones-mcp/index"
	"github.com/lexandro/milestones-mcp/milestone"
	"github.com/lexandro/milestones-mcp/scan"
)

// FileLister enumerates the files of a full scan.
type FileLister func() []string

// Report describes the last full sync.
type Report struct {
	Files    int
	Markers  int
	Result   Result
	Duration time.Duration
	At       time.Time
}

// SyncerOptions wires a Syncer.
type SyncerOptions struct {
	ListFiles FileLister
	Scanner   *scan.Scanner
	Engine    *Engine
	Tokens    milestone.Tokens
	Markers   *index.MarkerIndex // optional
	Logger    *slog.Logger
}

// Syncer runs scan, parse and reconcile as one unit.
// Units never interleave: a save that arrives during a full sync waits for it.
type Syncer struct {
	mu         sync.Mutex
	options    SyncerOptions
	lastReport Report
}

// NewSyncer creates a Syncer.
func NewSyncer(options SyncerOptions) *Syncer {
	return &Syncer{options: options}
}

// FullSync scans every listed file and applies the full map.
func (s *Syncer) FullSync() Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	paths := s.options.ListFiles()
	lines := s.options.Scanner.ScanAll(paths)
	occurrences := scan.Occurrences(lines, s.options.Tokens)
	result := s.options.Engine.ReconcileFull(scan.Collect(occurrences))

	if s.options.Markers != nil {
		if err := s.options.Markers.Reset(toMarkers(occurrences)); err != nil {
			s.options.Logger.Warn("failed to rebuild marker index", "error", err)
		}
	}

	report := Report{
		Files:    len(paths),
		Markers:  len(occurrences),
		Result:   result,
		Duration: time.Since(start),
		At:       start,
	}
	s.lastReport = report

	s.options.Logger.Info("full sync complete",
		"files", report.Files,
		"markers", report.Markers,
		"linked", result.Linked,
		"unmatched", len(result.Unmatched),
		"duration", report.Duration,
	)
	return report
}

// FileSaved rescans path and reconciles only its associations.
// If the file cannot be read nothing is changed and the read error is returned.
func (s *Syncer) FileSaved(path string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.options.Scanner.ScanOne(path)
	if err != nil {
		s.options.Logger.Debug("skipped saved file", "path", path, "error", err)
		return Result{}, err
	}
	occurrences := scan.Occurrences(lines, s.options.Tokens)
	result := s.options.Engine.ReconcilePartial(path, scan.Collect(occurrences))
	s.replaceMarkers(path, occurrences)

	s.options.Logger.Debug("file synced",
		"path", path,
		"cleared", result.Cleared,
		"linked", result.Linked,
	)
	return result, nil
}

// FileRemoved drops the associations and markers of a deleted or renamed file.
func (s *Syncer) FileRemoved(path string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.options.Engine.ReconcilePartial(path, scan.NewReferenceMap())
	s.replaceMarkers(path, nil)

	s.options.Logger.Debug("file removed", "path", path, "cleared", result.Cleared)
	return result
}

// LastReport returns the report of the most recent full sync.
func (s *Syncer) LastReport() Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReport
}

func (s *Syncer) replaceMarkers(path string, occurrences []scan.Occurrence) {
	if s.options.Markers == nil {
		return
	}
	if err := s.options.Markers.ReplaceFile(path, toMarkers(occurrences)); err != nil {
		s.options.Logger.Warn("failed to update marker index", "path", path, "error", err)
	}
}

// toMarkers keeps every occurrence, including repeated names, so the index
// can show duplicate and conflicting markers.
func toMarkers(occurrences []scan.Occurrence) []index.Marker {
	markers := make([]index.Marker, 0, len(occurrences))
	for _, occurrence := range occurrences {
		markers = append(markers, index.Marker{
			Name: occurrence.Name,
			Path: occurrence.Line.Path,
			Line: occurrence.Line.Line,
			Text: occurrence.Line.Text,
			Done: occurrence.Line.Done,
		})
	}
	return markers
}
