package scan

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lexandro/milestones-mcp/ignore"
)

func testScanner() *Scanner {
	return NewScanner("MILESTONE", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// allowAll is a FileFilter that only rejects directories named "skip".
type allowAll struct {
	maxSize int64
}

func (a allowAll) ShouldIgnoreDir(absolutePath string) bool {
	return filepath.Base(absolutePath) == "skip"
}
func (a allowAll) ShouldIgnore(absolutePath string) bool { return false }
func (a allowAll) IsFileTooLarge(fileSize int64) bool {
	return a.maxSize > 0 && fileSize > a.maxSize
}

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func Test_Scanner_ScanOne_LineOrderAndIndices(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "plan.md")
	writeFile(t, path, "intro\n// MILESTONE Alpha\nnothing\r\n// MILESTONE Beta DONE\r\n")

	lines, err := testScanner().ScanOne(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Line != 1 || lines[1].Line != 3 {
		t.Errorf("expected zero-based lines 1 and 3, got %d and %d", lines[0].Line, lines[1].Line)
	}
	if lines[0].Path != path {
		t.Errorf("expected path %s, got %s", path, lines[0].Path)
	}
	if !strings.HasSuffix(lines[1].Text, "\r") {
		t.Errorf("expected raw text to keep the carriage return, got %q", lines[1].Text)
	}
	if lines[0].Done || lines[1].Done {
		t.Error("expected scanner to leave Done unset")
	}
}

func Test_Scanner_ScanOne_SubstringMatch(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "notes.txt")
	writeFile(t, path, "xMILESTONEx\nmilestone lower\n")

	lines, err := testScanner().ScanOne(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 1 || lines[0].Line != 0 {
		t.Errorf("expected only the case-sensitive substring match on line 0, got %+v", lines)
	}
}

func Test_Scanner_ScanOne_MissingFile(t *testing.T) {
	_, err := testScanner().ScanOne(filepath.Join(t.TempDir(), "gone.go"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func Test_Scanner_ScanOne_BinaryFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "blob.dat")
	writeFile(t, path, "MILESTONE A\x00\x01")

	lines, err := testScanner().ScanOne(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("expected binary file to yield no lines, got %d", len(lines))
	}
}

func Test_Scanner_ScanAll_SkipsUnreadable(t *testing.T) {
	tmpDir := t.TempDir()
	a := filepath.Join(tmpDir, "a.go")
	b := filepath.Join(tmpDir, "b.go")
	writeFile(t, a, "// MILESTONE A\n")
	writeFile(t, b, "// MILESTONE B\n")

	lines := testScanner().ScanAll([]string{a, filepath.Join(tmpDir, "missing.go"), b})

	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Path != a || lines[1].Path != b {
		t.Errorf("expected lines in path order, got %s, %s", lines[0].Path, lines[1].Path)
	}
}

func Test_ListFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "b.go"), "package b\n")
	writeFile(t, filepath.Join(tmpDir, "a", "a.go"), "package a\n")
	writeFile(t, filepath.Join(tmpDir, "skip", "hidden.go"), "package hidden\n")
	writeFile(t, filepath.Join(tmpDir, "big.txt"), strings.Repeat("x", 200))

	paths := ListFiles(tmpDir, allowAll{maxSize: 100})

	want := []string{
		filepath.Join(tmpDir, "a", "a.go"),
		filepath.Join(tmpDir, "b.go"),
	}
	if len(paths) != len(want) {
		t.Fatalf("expected %v, got %v", want, paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %s, want %s", i, paths[i], want[i])
		}
	}
}

func Test_ListFiles_ScansBuildAndOutputDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "build", "x.md"), "MILESTONE Alpha\n")
	writeFile(t, filepath.Join(tmpDir, "docs", "out", "y.txt"), "MILESTONE Beta\n")
	writeFile(t, filepath.Join(tmpDir, "cmd", "bin", "main.go"), "// MILESTONE Gamma\n")
	writeFile(t, filepath.Join(tmpDir, "target", "z.txt"), "MILESTONE Delta\n")
	writeFile(t, filepath.Join(tmpDir, "node_modules", "pkg", "index.js"), "// MILESTONE Skipped\n")
	writeFile(t, filepath.Join(tmpDir, ".git", "HEAD"), "ref: refs/heads/main\n")

	paths := ListFiles(tmpDir, ignore.NewMatcher(ignore.MatcherOptions{RootDir: tmpDir}))

	want := []string{
		filepath.Join(tmpDir, "build", "x.md"),
		filepath.Join(tmpDir, "cmd", "bin", "main.go"),
		filepath.Join(tmpDir, "docs", "out", "y.txt"),
		filepath.Join(tmpDir, "target", "z.txt"),
	}
	if len(paths) != len(want) {
		t.Fatalf("expected %v, got %v", want, paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %s, want %s", i, paths[i], want[i])
		}
	}
}
