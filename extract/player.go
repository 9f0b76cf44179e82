package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/alanbriolat/course-archiver"
	"github.com/alanbriolat/course-archiver/internal/htmlutil"
)

const playerSelector = "video[data-setup]"

// SectionHeading is the clip heading of a course content section. Its first text node is the title, cut before any
// parenthesised suffix.
const SectionHeading = "main#course-content-section h3"

// DefaultHeadings are tried in order for the title of a player page.
var DefaultHeadings = []string{
	"div.course-section-title-container h2",
	SectionHeading,
	"h1",
	"h2",
}

var trailingDuration = regexp.MustCompile(`\s*\(\d{1,2}:\d{2}(:\d{2})?\)$`)

type playerSetup struct {
	Sources []struct {
		Src  string `json:"src"`
		Type string `json:"type"`
	} `json:"sources"`
}

func hasPlayer(doc *goquery.Document) bool {
	return doc.Find(playerSelector).Length() > 0
}

// player reads the embedded player configuration; the first source is the video URL.
func player(doc *goquery.Document, headings []string) (course_archiver.VideoRecord, error) {
	var record course_archiver.VideoRecord
	video := doc.Find(playerSelector).First()
	setup := playerSetup{}
	if err := json.Unmarshal([]byte(video.AttrOr("data-setup", "")), &setup); err != nil {
		return record, fmt.Errorf("%w: bad player configuration: %v", course_archiver.ErrLayout, err)
	}
	if len(setup.Sources) == 0 || strings.TrimSpace(setup.Sources[0].Src) == "" {
		return record, fmt.Errorf("%w: player configuration has no sources", course_archiver.ErrLayout)
	}
	title, err := heading(doc, headings)
	if err != nil {
		return record, err
	}
	record = course_archiver.VideoRecord{Title: title, URL: strings.TrimSpace(setup.Sources[0].Src)}
	return record, record.Validate()
}

func heading(doc *goquery.Document, selectors []string) (string, error) {
	for _, selector := range selectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		var title string
		if selector == SectionHeading {
			title = firstText(sel)
			if i := strings.Index(title, " ("); i != -1 {
				title = title[:i]
			}
		} else {
			title = htmlutil.Text(sel)
		}
		title = trailingDuration.ReplaceAllString(title, "")
		if title != "" {
			return title, nil
		}
	}
	return "", fmt.Errorf("%w: no section heading", course_archiver.ErrLayout)
}

// firstText is the normalized text of the selection's first child text node, ignoring nested markup.
func firstText(sel *goquery.Selection) string {
	for c := sel.Get(0).FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			if s := htmlutil.NormalizeText(c.Data); s != "" {
				return s
			}
		}
	}
	return htmlutil.Text(sel)
}
