package parser

import (
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/tidwall/gjson"

	"github.com/devark-ai/devark/internal/timeutil"
)

// headReadSize bounds the quick timestamp probe.
const headReadSize = 2048

// deniedFolderParts are lowercased substrings of project folder
// names that identify this product's own temp and integration
// directories. Folder names encode absolute paths with "-"
// separators, so a temp-dir transcript folder carries these.
var deniedFolderParts = []string{
	"devark-analysis",
	"devark-temp",
	"devark-hooks",
}

// isDeniedFolder reports whether a project folder is skipped
// entirely.
func isDeniedFolder(name string) bool {
	lower := strings.ToLower(name)
	for _, part := range deniedFolderParts {
		if strings.Contains(lower, part) {
			return true
		}
	}
	return false
}

// isSessionFile reports whether a file name is a candidate
// transcript: *.jsonl and not an agent-side file.
func isSessionFile(name string) bool {
	return strings.HasSuffix(name, ".jsonl") &&
		!strings.HasPrefix(name, "agent-")
}

// discoveredFile is one candidate transcript file.
type discoveredFile struct {
	ProjectDir string // folder name under the root
	Name       string // file name
	Path       string // full path
}

// discoverSessionFiles lists candidate transcript files under
// root, applying the folder deny-list and the file filter.
// Files are returned in a stable order.
func discoverSessionFiles(fs afero.Fs, root string) ([]discoveredFile, error) {
	entries, err := afero.ReadDir(fs, root)
	if err != nil {
		return nil, err
	}

	var files []discoveredFile
	for _, entry := range entries {
		if !entry.IsDir() || isDeniedFolder(entry.Name()) {
			continue
		}
		dir := root + "/" + entry.Name()
		children, err := afero.ReadDir(fs, dir)
		if err != nil {
			continue // unreadable project folder
		}
		for _, child := range children {
			if child.IsDir() || !isSessionFile(child.Name()) {
				continue
			}
			files = append(files, discoveredFile{
				ProjectDir: entry.Name(),
				Name:       child.Name(),
				Path:       dir + "/" + child.Name(),
			})
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files, nil
}

// readFileHead returns up to n bytes from the start of a file.
func readFileHead(fs afero.Fs, path string, n int) ([]byte, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := f.Read(buf)
	if read == 0 && err != nil {
		return nil, err
	}
	return buf[:read], nil
}

// headTimestamp parses the first recoverable timestamp from the
// head of a transcript. Returns the zero time when none is found
// within the probe window.
func headTimestamp(fs afero.Fs, path string) time.Time {
	head, err := readFileHead(fs, path, headReadSize)
	if err != nil {
		return time.Time{}
	}
	for _, line := range strings.Split(string(head), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !gjson.Valid(line) {
			continue
		}
		if ts := timeutil.Parse(gjson.Get(line, "timestamp").Str); !ts.IsZero() {
			return ts
		}
	}
	return time.Time{}
}

// shouldSkipSince applies the incremental optimization: a file
// is skipped when its mtime predates the cutoff, or when the
// first timestamp in its head does. A zero head timestamp is
// inconclusive and the file is parsed in full.
func shouldSkipSince(fs afero.Fs, file discoveredFile, since time.Time) bool {
	if since.IsZero() {
		return false
	}
	info, err := fs.Stat(file.Path)
	if err != nil {
		return false
	}
	if info.ModTime().Before(since) {
		return true
	}
	if ts := headTimestamp(fs, file.Path); !ts.IsZero() && ts.Before(since) {
		return true
	}
	return false
}
