// Package extract turns a parsed course page into title -> URL records. The page layout is recognised from the
// elements present in the document.
package extract

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/alanbriolat/course-archiver"
	"github.com/alanbriolat/course-archiver/internal/htmlutil"
	"github.com/alanbriolat/course-archiver/locate"
)

type Extractor struct {
	// LocaleMarker excludes resource thumbnails whose link contains it; empty disables the filter.
	LocaleMarker string
	// Headings are the selectors tried in order for the title of a player page; nil means DefaultHeadings.
	Headings     []string
	log          *zap.SugaredLogger
}

func New(localeMarker string) *Extractor {
	return &Extractor{
		LocaleMarker: localeMarker,
		log:          zap.S().Named("extract"),
	}
}

// Extract returns the episode mappings found in the document: one per resource thumbnail on a resource index
// page, or a single mapping for an inline player page.
func (e *Extractor) Extract(doc *goquery.Document, videoType string) ([]course_archiver.EpisodeMapping, error) {
	var mappings []course_archiver.EpisodeMapping
	var err error
	switch {
	case hasThumbnails(doc):
		mappings, err = e.thumbnails(doc)
	case hasPlayer(doc):
		var record course_archiver.VideoRecord
		record, err = player(doc, e.headings())
		if err == nil {
			m := course_archiver.EpisodeMapping{}
			m.Add(record)
			mappings = []course_archiver.EpisodeMapping{m}
		}
	default:
		err = fmt.Errorf("%w: no video player or resource thumbnails", course_archiver.ErrLayout)
	}
	if err != nil {
		return nil, err
	}
	for _, m := range mappings {
		for _, r := range m.Records() {
			e.logger().Debugf("%s found: %s: %s", videoType, r.Title, r.URL)
		}
	}
	return mappings, nil
}

// ExtractPage loads and extracts a located page. A title or label supplied by the locator replaces or prefixes the
// title from the page itself, which is only meaningful for single-video pages.
func (e *Extractor) ExtractPage(page locate.Page, videoType string) ([]course_archiver.EpisodeMapping, error) {
	doc, err := htmlutil.Load(page.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", course_archiver.ErrLayout, err)
	}
	mappings, err := e.Extract(doc, videoType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", page.Path, err)
	}
	if page.Title == "" && page.Label == "" {
		return mappings, nil
	}
	if len(mappings) != 1 || len(mappings[0]) != 1 {
		return nil, fmt.Errorf("%w: %s: expected a single video to retitle", course_archiver.ErrLayout, page.Path)
	}
	record := mappings[0].Records()[0]
	if page.Title != "" {
		record.Title = page.Title
	}
	if page.Label != "" {
		record.Title = page.Label + ", " + record.Title
	}
	m := course_archiver.EpisodeMapping{}
	m.Add(record)
	return []course_archiver.EpisodeMapping{m}, nil
}

func (e *Extractor) logger() *zap.SugaredLogger {
	if e.log == nil {
		return zap.S().Named("extract")
	}
	return e.log
}

func (e *Extractor) headings() []string {
	if e.Headings == nil {
		return DefaultHeadings
	}
	return e.Headings
}
