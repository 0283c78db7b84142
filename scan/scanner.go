package scan

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// KeywordLine is one line of a file that contains the marker token.
type KeywordLine struct {
	Path string // Absolute file path
	Line int    // Zero-based line index
	Text string // Raw line text, possibly with a trailing \r
	Done bool   // Set by Parse when the completion token follows the name
}

// FileFilter decides which files the filesystem provider returns.
type FileFilter interface {
	ShouldIgnoreDir(absolutePath string) bool
	ShouldIgnore(absolutePath string) bool
	IsFileTooLarge(fileSize int64) bool
}

// Scanner extracts marker lines from files. It never touches milestone state.
type Scanner struct {
	marker string
	logger *slog.Logger
}

// NewScanner creates a scanner looking for the given marker token.
func NewScanner(marker string, logger *slog.Logger) *Scanner {
	return &Scanner{marker: marker, logger: logger}
}

// ScanAll scans every path in order. Files that cannot be read are skipped.
func (s *Scanner) ScanAll(paths []string) []KeywordLine {
	var lines []KeywordLine
	for _, path := range paths {
		fileLines, err := s.ScanOne(path)
		if err != nil {
			s.logger.Debug("skipped file", "path", path, "error", err)
			continue
		}
		lines = append(lines, fileLines...)
	}
	return lines
}

// ScanOne returns the marker lines of a single file in line order.
// Binary files yield no lines and no error.
func (s *Scanner) ScanOne(path string) ([]KeywordLine, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	if isBinaryContent(content) {
		return nil, nil
	}
	return s.extract(path, string(content)), nil
}

func (s *Scanner) extract(path string, content string) []KeywordLine {
	if !strings.Contains(content, s.marker) {
		return nil
	}
	var lines []KeywordLine
	for i, text := range strings.Split(content, "\n") {
		if strings.Contains(text, s.marker) {
			lines = append(lines, KeywordLine{Path: path, Line: i, Text: text})
		}
	}
	return lines
}

// ListFiles walks rootDir and returns the absolute paths of all eligible files, sorted.
// Unreadable entries are skipped rather than aborting the walk.
func ListFiles(rootDir string, filter FileFilter) []string {
	var paths []string
	filepath.WalkDir(rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != rootDir && filter.ShouldIgnoreDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if filter.ShouldIgnore(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if filter.IsFileTooLarge(info.Size()) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	sort.Strings(paths)
	return paths
}

// isBinaryContent reports whether the first 512 bytes contain a NUL byte.
func isBinaryContent(data []byte) bool {
	checkSize := min(len(data), 512)
	for i := 0; i < checkSize; i++ {
		if data[i] == 0 {
			return true
		}
	}
	return false
}
