package index

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/bmatcuk/doublestar/v4"
)

// Marker is one milestone reference found in a file.
type Marker struct {
	Name string
	Path string // Absolute file path
	Line int    // Zero-based line index
	Text string // Raw marker line
	Done bool
}

// ID returns the document key of the marker.
func (m Marker) ID() string {
	return fmt.Sprintf("%s:%d:%s", m.Path, m.Line, m.Name)
}

// MarkerIndex keeps the markers of the last scans searchable with an in-memory Bleve index.
// Bleve matches queries; the markers themselves are kept in a map for result building.
type MarkerIndex struct {
	mu      sync.RWMutex
	index   bleve.Index
	markers map[string]Marker   // key: Marker.ID()
	byPath  map[string][]string // path -> marker IDs
}

// NewMarkerIndex creates an empty in-memory marker index.
func NewMarkerIndex() (*MarkerIndex, error) {
	bleveIndex, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating bleve index: %w", err)
	}
	return &MarkerIndex{
		index:   bleveIndex,
		markers: make(map[string]Marker),
		byPath:  make(map[string][]string),
	}, nil
}

// bleveDocument is the document structure stored in Bleve.
type bleveDocument struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Text string `json:"text"`
}

func buildIndexMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	nameFieldMapping := bleve.NewKeywordFieldMapping()
	nameFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	pathFieldMapping := bleve.NewKeywordFieldMapping()
	pathFieldMapping.Store = false
	pathFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt("path", pathFieldMapping)

	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("text", textFieldMapping)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// Reset replaces the whole index with markers.
func (mi *MarkerIndex) Reset(markers []Marker) error {
	mi.mu.Lock()
	defer mi.mu.Unlock()

	newIndex, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("creating new index: %w", err)
	}
	if err := mi.index.Close(); err != nil {
		newIndex.Close()
		return fmt.Errorf("closing old index: %w", err)
	}
	mi.index = newIndex
	mi.markers = make(map[string]Marker)
	mi.byPath = make(map[string][]string)

	return mi.addLocked(markers)
}

// ReplaceFile drops every marker of path and indexes markers in their place.
func (mi *MarkerIndex) ReplaceFile(path string, markers []Marker) error {
	mi.mu.Lock()
	defer mi.mu.Unlock()

	batch := mi.index.NewBatch()
	for _, id := range mi.byPath[path] {
		batch.Delete(id)
		delete(mi.markers, id)
	}
	delete(mi.byPath, path)
	if err := mi.index.Batch(batch); err != nil {
		return fmt.Errorf("removing markers of %s: %w", path, err)
	}

	return mi.addLocked(markers)
}

func (mi *MarkerIndex) addLocked(markers []Marker) error {
	batch := mi.index.NewBatch()
	for _, marker := range markers {
		id := marker.ID()
		if _, exists := mi.markers[id]; !exists {
			mi.byPath[marker.Path] = append(mi.byPath[marker.Path], id)
		}
		mi.markers[id] = marker
		doc := bleveDocument{Name: marker.Name, Path: marker.Path, Text: marker.Text}
		if err := batch.Index(id, doc); err != nil {
			return fmt.Errorf("indexing marker %s: %w", id, err)
		}
	}
	if err := mi.index.Batch(batch); err != nil {
		return fmt.Errorf("indexing markers: %w", err)
	}
	return nil
}

// SearchOptions configures a marker search.
type SearchOptions struct {
	Query      string // empty matches every marker
	PathGlob   string // doublestar pattern on the path relative to RootDir
	RootDir    string
	MaxResults int
}

// Search returns matching markers ordered by path and line.
// Query format:
//   - Plain text: word match on the line text, or the exact milestone name
//   - "quoted text": phrase match on the line text
//   - /regex/: regular expression on the milestone name
func (mi *MarkerIndex) Search(options SearchOptions) ([]Marker, error) {
	mi.mu.RLock()
	defer mi.mu.RUnlock()

	if options.MaxResults <= 0 {
		options.MaxResults = 50
	}
	pathGlob := strings.ReplaceAll(options.PathGlob, "\\", "/")
	if pathGlob != "" && !doublestar.ValidatePattern(pathGlob) {
		return nil, fmt.Errorf("invalid glob pattern: %s", options.PathGlob)
	}

	searchRequest := bleve.NewSearchRequest(buildQuery(options.Query))
	searchRequest.Size = len(mi.markers) + 1

	searchResults, err := mi.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("searching markers: %w", err)
	}

	var results []Marker
	for _, hit := range searchResults.Hits {
		marker, ok := mi.markers[hit.ID]
		if !ok {
			continue
		}
		if pathGlob != "" && !matchPath(pathGlob, options.RootDir, marker.Path) {
			continue
		}
		results = append(results, marker)
	}

	sortMarkers(results)
	if len(results) > options.MaxResults {
		results = results[:options.MaxResults]
	}
	return results, nil
}

// All returns every indexed marker ordered by path and line.
func (mi *MarkerIndex) All() []Marker {
	mi.mu.RLock()
	defer mi.mu.RUnlock()

	result := make([]Marker, 0, len(mi.markers))
	for _, marker := range mi.markers {
		result = append(result, marker)
	}
	sortMarkers(result)
	return result
}

// Count returns the number of indexed markers.
func (mi *MarkerIndex) Count() int {
	mi.mu.RLock()
	defer mi.mu.RUnlock()
	return len(mi.markers)
}

// DocumentCount returns the number of documents in the Bleve index.
func (mi *MarkerIndex) DocumentCount() uint64 {
	mi.mu.RLock()
	defer mi.mu.RUnlock()
	count, _ := mi.index.DocCount()
	return count
}

// Close closes the Bleve index.
func (mi *MarkerIndex) Close() error {
	mi.mu.Lock()
	defer mi.mu.Unlock()
	return mi.index.Close()
}

func buildQuery(queryString string) query.Query {
	queryString = strings.TrimSpace(queryString)

	if queryString == "" {
		return bleve.NewMatchAllQuery()
	}

	if strings.HasPrefix(queryString, "/") && strings.HasSuffix(queryString, "/") && len(queryString) > 2 {
		regexQuery := bleve.NewRegexpQuery(queryString[1 : len(queryString)-1])
		regexQuery.SetField("name")
		return regexQuery
	}

	if strings.HasPrefix(queryString, "\"") && strings.HasSuffix(queryString, "\"") && len(queryString) > 2 {
		phraseQuery := bleve.NewMatchPhraseQuery(queryString[1 : len(queryString)-1])
		phraseQuery.SetField("text")
		return phraseQuery
	}

	textQuery := bleve.NewMatchQuery(queryString)
	textQuery.SetField("text")
	nameQuery := bleve.NewTermQuery(queryString)
	nameQuery.SetField("name")
	return bleve.NewDisjunctionQuery(textQuery, nameQuery)
}

func matchPath(pattern string, rootDir string, path string) bool {
	relative := path
	if rootDir != "" {
		if trimmed, ok := strings.CutPrefix(path, rootDir); ok {
			relative = strings.TrimLeft(trimmed, "/\\")
		}
	}
	relative = strings.ReplaceAll(relative, "\\", "/")
	matched, err := doublestar.Match(pattern, relative)
	return err == nil && matched
}

func sortMarkers(markers []Marker) {
	sort.Slice(markers, func(i, j int) bool {
		if markers[i].Path != markers[j].Path {
			return markers[i].Path < markers[j].Path
		}
		if markers[i].Line != markers[j].Line {
			return markers[i].Line < markers[j].Line
		}
		return markers[i].Name < markers[j].Name
	})
}
