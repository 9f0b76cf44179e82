package course_archiver

import (
	"fmt"
	"net/url"
	"sort"
)

// VideoRecord is a single resolved video (or other file).
type VideoRecord struct {
	Title string
	URL   string
}

// Validate checks that the title survives sanitization and the URL is absolute.
func (r VideoRecord) Validate() error {
	if SanitizeTitle(r.Title) == "" {
		return fmt.Errorf("%w: empty title for %q", ErrLayout, r.URL)
	}
	parsed, err := url.Parse(r.URL)
	if err != nil {
		return fmt.Errorf("%w: invalid URL for %q: %v", ErrLayout, r.Title, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("%w: URL for %q is not absolute: %q", ErrLayout, r.Title, r.URL)
	}
	return nil
}

// EpisodeMapping maps title to URL for all videos sharing one episode. A duplicate title overwrites the earlier one.
type EpisodeMapping map[string]string

// Add inserts a record, overwriting any existing record with the same title.
func (m EpisodeMapping) Add(r VideoRecord) {
	m[r.Title] = r.URL
}

// Titles returns the titles in sorted order.
func (m EpisodeMapping) Titles() []string {
	titles := make([]string, 0, len(m))
	for title := range m {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	return titles
}

// Records returns the mapping as records, sorted by title.
func (m EpisodeMapping) Records() []VideoRecord {
	records := make([]VideoRecord, 0, len(m))
	for _, title := range m.Titles() {
		records = append(records, VideoRecord{Title: title, URL: m[title]})
	}
	return records
}

type Episode struct {
	Number int
	Videos EpisodeMapping
}

// EpisodeSequence is the ordered list of episodes for one video type. Numbers need not be contiguous.
type EpisodeSequence []Episode

// Len counts all records across all episodes.
func (s EpisodeSequence) Len() int {
	n := 0
	for _, e := range s {
		n += len(e.Videos)
	}
	return n
}

// VideoTypeCollection maps a video type label ("Lecture", "Recitation", ...) to its episodes.
type VideoTypeCollection map[string]EpisodeSequence

// Types returns the video type labels in sorted order.
func (c VideoTypeCollection) Types() []string {
	types := make([]string, 0, len(c))
	for t := range c {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
