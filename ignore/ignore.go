package ignore

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
)

// IgnoreFileName is the project-level file listing extra paths to keep out of marker scans.
const IgnoreFileName = ".milestoneignore"

// Matcher decides which files the marker scan may read.
// It combines default patterns, .gitignore, .milestoneignore and doublestar exclusion globs.
// Thread-safe: Reload() takes the write lock, ShouldIgnore()/ShouldIgnoreDir() the read lock.
type Matcher struct {
	mu               sync.RWMutex
	rootDir          string
	gitIgnore        gitignore.GitIgnore
	milestoneIgnore  gitignore.GitIgnore
	excludeGlobs     []string
	ownFiles         map[string]bool
	maxFileSizeBytes int64
}

// MatcherOptions configures the ignore matcher.
type MatcherOptions struct {
	RootDir          string
	ExcludeGlobs     []string // added to DefaultExcludeGlobs
	OwnFiles         []string // absolute paths written by the server itself (state, log)
	MaxFileSizeBytes int64
}

// NewMatcher creates a matcher rooted at options.RootDir.
// Invalid exclusion globs are dropped.
func NewMatcher(options MatcherOptions) *Matcher {
	matcher := &Matcher{
		rootDir:          options.RootDir,
		ownFiles:         make(map[string]bool),
		maxFileSizeBytes: options.MaxFileSizeBytes,
	}

	for _, path := range options.OwnFiles {
		matcher.ownFiles[filepath.Clean(path)] = true
	}

	if matcher.maxFileSizeBytes <= 0 {
		matcher.maxFileSizeBytes = 1024 * 1024 // 1MB default
	}

	for _, pattern := range append(append([]string{}, DefaultExcludeGlobs...), options.ExcludeGlobs...) {
		pattern = filepath.ToSlash(pattern)
		if doublestar.ValidatePattern(pattern) {
			matcher.excludeGlobs = append(matcher.excludeGlobs, pattern)
		}
	}

	matcher.gitIgnore = loadIgnoreFile(filepath.Join(options.RootDir, ".gitignore"), options.RootDir)
	matcher.milestoneIgnore = loadIgnoreFile(filepath.Join(options.RootDir, IgnoreFileName), options.RootDir)

	return matcher
}

// ShouldIgnore returns true if the given absolute path must not be scanned.
func (m *Matcher) ShouldIgnore(absolutePath string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.ownFiles[filepath.Clean(absolutePath)] {
		return true
	}

	relativePath, err := filepath.Rel(m.rootDir, absolutePath)
	if err != nil {
		relativePath = absolutePath
	}
	relativePath = filepath.ToSlash(relativePath)

	if m.matchesDefaultPatterns(relativePath) {
		return true
	}
	if m.matchesExcludeGlobs(relativePath) {
		return true
	}

	isDir := false
	if info, err := os.Stat(absolutePath); err == nil {
		isDir = info.IsDir()
	}

	for _, gi := range []gitignore.GitIgnore{m.gitIgnore, m.milestoneIgnore} {
		if gi == nil {
			continue
		}
		if match := gi.Relative(relativePath, isDir); match != nil && match.Ignore() {
			return true
		}
	}

	return false
}

// ShouldIgnoreDir returns true if a directory should be skipped entirely during traversal.
func (m *Matcher) ShouldIgnoreDir(absolutePath string) bool {
	switch filepath.Base(absolutePath) {
	case ".git", ".svn", ".hg", "node_modules":
		return true
	}
	return m.ShouldIgnore(absolutePath)
}

// IsFileTooLarge returns true if the file exceeds the max file size limit.
func (m *Matcher) IsFileTooLarge(fileSize int64) bool {
	return fileSize > m.maxFileSizeBytes
}

// MaxFileSizeBytes returns the configured maximum file size.
func (m *Matcher) MaxFileSizeBytes() int64 {
	return m.maxFileSizeBytes
}

// IsRuleFile reports whether path is one of the files whose change requires Reload.
func (m *Matcher) IsRuleFile(path string) bool {
	base := filepath.Base(path)
	return filepath.Dir(path) == m.rootDir && (base == ".gitignore" || base == IgnoreFileName)
}

func (m *Matcher) matchesDefaultPatterns(relativePath string) bool {
	parts := strings.Split(strings.ToLower(relativePath), "/")
	baseName := parts[len(parts)-1]

	for _, pattern := range DefaultIgnorePatterns {
		pattern = strings.ToLower(pattern)
		if !strings.ContainsAny(pattern, "*?[") {
			for _, part := range parts {
				if part == pattern {
					return true
				}
			}
			continue
		}
		if matched, err := filepath.Match(pattern, baseName); err == nil && matched {
			return true
		}
	}
	return false
}

// matchesExcludeGlobs matches the path itself and, for directories, the
// path with a trailing component so "**/x/**" also prunes x.
func (m *Matcher) matchesExcludeGlobs(relativePath string) bool {
	for _, pattern := range m.excludeGlobs {
		if doublestar.MatchUnvalidated(pattern, relativePath) ||
			doublestar.MatchUnvalidated(pattern, relativePath+"/_") {
			return true
		}
	}
	return false
}

// Reload re-reads .gitignore and .milestoneignore from disk.
func (m *Matcher) Reload() {
	newGitIgnore := loadIgnoreFile(filepath.Join(m.rootDir, ".gitignore"), m.rootDir)
	newMilestoneIgnore := loadIgnoreFile(filepath.Join(m.rootDir, IgnoreFileName), m.rootDir)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.gitIgnore = newGitIgnore
	m.milestoneIgnore = newMilestoneIgnore
}

// loadIgnoreFile reads an ignore file through an io.Reader so the handle is closed on Windows.
func loadIgnoreFile(filePath string, baseDir string) gitignore.GitIgnore {
	f, err := os.Open(filePath)
	if err != nil {
		return nil
	}
	defer f.Close()

	return gitignore.New(f, baseDir, nil)
}
