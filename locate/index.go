package locate

import (
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/alanbriolat/course-archiver/internal/htmlutil"
)

// GalleryIndex finds video pages through video_galleries/<dir>/index.html, following every video-link anchor.
type GalleryIndex struct {
	Dirs map[string]string
}

func (g GalleryIndex) Locate(root string, videoType string) ([]Page, error) {
	if err := CheckRoot(root); err != nil {
		return nil, err
	}
	dir, err := dirFor(g.Dirs, videoType)
	if err != nil {
		return nil, err
	}
	indexPath := filepath.Join(root, "video_galleries", dir, "index.html")
	doc, err := loadIndex(indexPath)
	if err != nil {
		return nil, err
	}
	var pages []Page
	var linkErr error
	doc.Find("a.video-link").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, ok := a.Attr("href")
		if !ok {
			return true
		}
		path, err := resolveHref(root, indexPath, href)
		if err != nil {
			linkErr = err
			return false
		}
		pages = append(pages, Page{Path: path})
		return true
	})
	if linkErr != nil {
		return nil, linkErr
	}
	if len(pages) == 0 {
		return nil, noPages(videoType, indexPath)
	}
	return pages, nil
}

// ResourceIndex finds video pages through resources/<dir>/index.html, following the title anchor of every resource
// list item. The anchor text becomes the page title. Links containing LocaleMarker are skipped.
type ResourceIndex struct {
	Dirs         map[string]string
	LocaleMarker string
}

func (r ResourceIndex) Locate(root string, videoType string) ([]Page, error) {
	if err := CheckRoot(root); err != nil {
		return nil, err
	}
	dir, err := dirFor(r.Dirs, videoType)
	if err != nil {
		return nil, err
	}
	indexPath := filepath.Join(root, "resources", dir, "index.html")
	doc, err := loadIndex(indexPath)
	if err != nil {
		return nil, err
	}
	var pages []Page
	var linkErr error
	doc.Find("div.resource-list-item-details").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		a := item.Find("a").First()
		href, ok := a.Attr("href")
		if !ok {
			return true
		}
		if excluded(href, r.LocaleMarker) {
			return true
		}
		path, err := resolveHref(root, indexPath, href)
		if err != nil {
			linkErr = err
			return false
		}
		pages = append(pages, Page{Path: path, Title: htmlutil.Text(a)})
		return true
	})
	if linkErr != nil {
		return nil, linkErr
	}
	if len(pages) == 0 {
		return nil, noPages(videoType, indexPath)
	}
	return pages, nil
}

// IndexPage returns resources/<dir>/index.html itself, for catalogs whose index lists the videos directly.
type IndexPage struct {
	Dirs map[string]string
}

func (p IndexPage) Locate(root string, videoType string) ([]Page, error) {
	if err := CheckRoot(root); err != nil {
		return nil, err
	}
	dir, err := dirFor(p.Dirs, videoType)
	if err != nil {
		return nil, err
	}
	indexPath := filepath.Join(root, "resources", dir, "index.html")
	if err := checkFile(indexPath); err != nil {
		return nil, err
	}
	return []Page{{Path: indexPath}}, nil
}

func excluded(href string, marker string) bool {
	if marker == "" {
		return false
	}
	return strings.Contains(href, marker)
}
