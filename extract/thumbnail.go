package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/alanbriolat/course-archiver"
	"github.com/alanbriolat/course-archiver/internal/htmlutil"
)

const (
	thumbnailContainer = "div.d-inline-flex"
	thumbnailTitle     = "a.resource-list-title"
	thumbnailLink      = "a.resource-thumbnail"
)

func hasThumbnails(doc *goquery.Document) bool {
	return doc.Find(thumbnailContainer + " " + thumbnailLink).Length() > 0
}

// thumbnails reads each resource container's title anchor and thumbnail anchor. The thumbnail's href is the video
// URL as-is.
func (e *Extractor) thumbnails(doc *goquery.Document) ([]course_archiver.EpisodeMapping, error) {
	var mappings []course_archiver.EpisodeMapping
	var err error
	doc.Find(thumbnailContainer).EachWithBreak(func(i int, c *goquery.Selection) bool {
		title := c.Find(thumbnailTitle).First()
		link := c.Find(thumbnailLink).First()
		if title.Length() == 0 && link.Length() == 0 {
			return true
		}
		if title.Length() == 0 || link.Length() == 0 {
			err = fmt.Errorf("%w: resource container %d lacks a title or thumbnail", course_archiver.ErrLayout, i)
			return false
		}
		href, ok := link.Attr("href")
		if !ok {
			err = fmt.Errorf("%w: resource thumbnail %d has no link", course_archiver.ErrLayout, i)
			return false
		}
		href = strings.TrimSpace(href)
		if e.LocaleMarker != "" && strings.Contains(href, e.LocaleMarker) {
			e.logger().Debugf("skipping localized resource %s", href)
			return true
		}
		record := course_archiver.VideoRecord{Title: htmlutil.Text(title), URL: href}
		if err = record.Validate(); err != nil {
			return false
		}
		m := course_archiver.EpisodeMapping{}
		m.Add(record)
		mappings = append(mappings, m)
		return true
	})
	if err != nil {
		return nil, err
	}
	if len(mappings) == 0 {
		return nil, fmt.Errorf("%w: no resource thumbnails left after filtering", course_archiver.ErrLayout)
	}
	return mappings, nil
}
