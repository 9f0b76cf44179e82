package resolve

import (
	"context"
	"fmt"

	"github.com/alanbriolat/course-archiver"
	"github.com/alanbriolat/course-archiver/episode"
	"github.com/alanbriolat/course-archiver/extract"
	"github.com/alanbriolat/course-archiver/locate"
)

// Gallery resolves video_galleries/<dir>/index.html, numbering the linked player pages by position.
type Gallery struct {
	// Dirs maps video type to gallery directory name.
	Dirs map[string]string
}

func (g Gallery) Kind() course_archiver.ResolutionKind {
	return course_archiver.GalleryResolution
}

func (g Gallery) VideoTypes() []string {
	return sortedKeys(g.Dirs)
}

func (g Gallery) Resolve(ctx context.Context, root string, types []string) (course_archiver.VideoTypeCollection, error) {
	p := pipeline{
		kind:      g.Kind(),
		types:     g.VideoTypes(),
		locator:   locate.GalleryIndex{Dirs: g.Dirs},
		numbering: episode.Positional{},
	}
	return p.resolve(ctx, root, types)
}

// ResourceIndex resolves resources/<dir>/index.html. With Thumbnails set, the index itself lists one video per
// resource thumbnail and each is one episode. Otherwise each resource item links to a player page, numbered by
// Numbering (positional if nil).
type ResourceIndex struct {
	Dirs         map[string]string
	Thumbnails   bool
	Numbering    episode.Numbering
	LocaleMarker string
}

func (r ResourceIndex) Kind() course_archiver.ResolutionKind {
	return course_archiver.ResourceIndexResolution
}

func (r ResourceIndex) VideoTypes() []string {
	return sortedKeys(r.Dirs)
}

func (r ResourceIndex) Resolve(ctx context.Context, root string, types []string) (course_archiver.VideoTypeCollection, error) {
	p := pipeline{
		kind:         r.Kind(),
		types:        r.VideoTypes(),
		numbering:    r.Numbering,
		localeMarker: r.LocaleMarker,
	}
	if r.Thumbnails {
		p.locator = locate.IndexPage{Dirs: r.Dirs}
		p.numbering = episode.Positional{}
	} else {
		p.locator = locate.ResourceIndex{Dirs: r.Dirs, LocaleMarker: r.LocaleMarker}
	}
	if p.numbering == nil {
		p.numbering = episode.Positional{}
	}
	return p.resolve(ctx, root, types)
}

// FilesystemScan resolves courses with no index document by scanning numbered directories. Build one with
// NewFilesystemScan or NewSessionScan.
type FilesystemScan struct {
	types     []string
	locator   locate.Locator
	numbering episode.Numbering
	headings  []string
}

// NewFilesystemScan scans <parent>/<prefix><n>*/index.html for each video type's prefix.
func NewFilesystemScan(parent string, prefixes map[string]string, numbering episode.Numbering) FilesystemScan {
	if numbering == nil {
		numbering = episode.Positional{}
	}
	return FilesystemScan{
		types:     sortedKeys(prefixes),
		locator:   locate.FilesystemScan{Parent: parent, Prefixes: prefixes},
		numbering: numbering,
	}
}

// NewSessionScan scans every subdirectory of fmt.Sprintf(pattern, i) for sessions 1..sessions. Each subdirectory is
// one video of session i, titled "<subdirectory>, <clip heading>" from the course content section.
func NewSessionScan(pattern string, sessions int, types ...string) FilesystemScan {
	return FilesystemScan{
		types:     types,
		locator:   locate.SessionScan{Pattern: pattern, Sessions: sessions, Types: types},
		numbering: episode.Explicit{},
		headings:  []string{extract.SectionHeading},
	}
}

func (s FilesystemScan) Kind() course_archiver.ResolutionKind {
	return course_archiver.FilesystemScanResolution
}

func (s FilesystemScan) VideoTypes() []string {
	return append([]string(nil), s.types...)
}

func (s FilesystemScan) Resolve(ctx context.Context, root string, types []string) (course_archiver.VideoTypeCollection, error) {
	if s.locator == nil {
		return nil, fmt.Errorf("%w: uninitialised filesystem scan", course_archiver.ErrInvalidStrategy)
	}
	p := pipeline{
		kind:      s.Kind(),
		types:     s.types,
		locator:   s.locator,
		numbering: s.numbering,
		headings:  s.headings,
	}
	return p.resolve(ctx, root, types)
}

// A Template generates the URL head+i+tail for item i.
type Template struct {
	Head string
	Tail string
}

// SyntheticTemplate generates a fixed range of numbered items per type without reading anything.
type SyntheticTemplate struct {
	Count     int
	Templates map[string]Template
}

func (s SyntheticTemplate) Kind() course_archiver.ResolutionKind {
	return course_archiver.SyntheticTemplateResolution
}

func (s SyntheticTemplate) VideoTypes() []string {
	return sortedKeys(s.Templates)
}

func (s SyntheticTemplate) Resolve(ctx context.Context, _ string, types []string) (course_archiver.VideoTypeCollection, error) {
	if len(types) == 0 {
		types = s.VideoTypes()
	}
	if err := checkTypes(s.VideoTypes(), types); err != nil {
		return nil, err
	}
	if s.Count <= 0 {
		return nil, fmt.Errorf("%w: no episodes resolved", course_archiver.ErrLayout)
	}
	collection := make(course_archiver.VideoTypeCollection, len(types))
	for _, t := range types {
		tmpl := s.Templates[t]
		collection[t] = episode.Synthetic(t, s.Count, tmpl.Head, tmpl.Tail)
	}
	course_archiver.Logger(ctx).Sugar().Named("resolve").Debugw("generated", "types", types, "count", s.Count)
	return collection, nil
}

var (
	_ course_archiver.Resolution = Gallery{}
	_ course_archiver.Resolution = ResourceIndex{}
	_ course_archiver.Resolution = FilesystemScan{}
	_ course_archiver.Resolution = SyntheticTemplate{}
)
