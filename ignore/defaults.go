package ignore

// DefaultIgnorePatterns lists names that are never scanned for markers.
// Plain names match any path component; patterns with glob characters match the basename.
// Binary files are left to the scanner's content check.
var DefaultIgnorePatterns = []string{
	// Version control
	".git",
	".svn",
	".hg",

	// Milestone state directory and log file
	".milestones",
	"milestones-mcp.log",
}

// DefaultExcludeGlobs are doublestar patterns matched against the root-relative path.
// They mirror the editor convention of never searching dependency-manager directories.
var DefaultExcludeGlobs = []string{
	"**/node_modules/**",
}
