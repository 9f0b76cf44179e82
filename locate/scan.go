package locate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alanbriolat/course-archiver"
)

// FilesystemScan finds video pages without an index document: every <parent>/<prefix><n>*/index.html, ordered by n.
type FilesystemScan struct {
	Parent   string
	Prefixes map[string]string
}

func (s FilesystemScan) Locate(root string, videoType string) ([]Page, error) {
	if err := CheckRoot(root); err != nil {
		return nil, err
	}
	prefix, err := dirFor(s.Prefixes, videoType)
	if err != nil {
		return nil, err
	}
	parent := filepath.Join(root, s.Parent)
	entries, err := os.ReadDir(parent)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", course_archiver.ErrPrecondition, err)
	}
	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		if leadingNumber(name[len(prefix):]) < 0 {
			continue
		}
		names = append(names, name)
	}
	sortNatural(names)
	pages := make([]Page, 0, len(names))
	for _, name := range names {
		path := filepath.Join(parent, name, "index.html")
		if err := checkFile(path); err != nil {
			return nil, err
		}
		pages = append(pages, Page{Path: path})
	}
	if len(pages) == 0 {
		return nil, noPages(videoType, parent)
	}
	return pages, nil
}

// SessionScan finds video pages grouped by session number: for each session i in 1..Sessions, every subdirectory
// of fmt.Sprintf(Pattern, i) holding an index.html. Pages carry i as their episode index and the subdirectory name
// as their label.
type SessionScan struct {
	// Pattern is relative to the static root, e.g. "pages/c%[1]d/c%[1]ds2".
	Pattern  string
	Sessions int
	Types    []string
}

func (s SessionScan) Locate(root string, videoType string) ([]Page, error) {
	if err := CheckRoot(root); err != nil {
		return nil, err
	}
	supported := false
	for _, t := range s.Types {
		supported = supported || t == videoType
	}
	if !supported {
		return nil, fmt.Errorf("%w: %q", course_archiver.ErrUnsupportedVideoType, videoType)
	}
	var pages []Page
	for i := 1; i <= s.Sessions; i++ {
		sessionDir := filepath.Join(root, filepath.FromSlash(fmt.Sprintf(s.Pattern, i)))
		entries, err := os.ReadDir(sessionDir)
		if err != nil {
			return nil, fmt.Errorf("%w: session %d: %v", course_archiver.ErrPrecondition, i, err)
		}
		var names []string
		for _, entry := range entries {
			if entry.IsDir() {
				names = append(names, entry.Name())
			}
		}
		sortNatural(names)
		for _, name := range names {
			path := filepath.Join(sessionDir, name, "index.html")
			if err := checkFile(path); err != nil {
				return nil, err
			}
			pages = append(pages, Page{Path: path, Index: i, Label: name})
		}
	}
	if len(pages) == 0 {
		return nil, noPages(videoType, filepath.Join(root, filepath.Dir(s.Pattern)))
	}
	return pages, nil
}
