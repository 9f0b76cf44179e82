// Package locate enumerates the HTML pages that hold one video type's videos within a static site snapshot.
package locate

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"github.com/alanbriolat/course-archiver"
	"github.com/alanbriolat/course-archiver/internal/htmlutil"
)

// DefaultLocaleMarker identifies links to translated variants, which are skipped.
const DefaultLocaleMarker = "zh-hans"

// A Page is one HTML document to extract videos from.
type Page struct {
	Path string
	// Title advertised for the page by an index document, empty if the page's own heading should be used.
	Title string
	// Index is an explicit episode number, or 0 if the episode must be inferred.
	Index int
	// Label is prefixed to the extracted title, to keep titles unique within an episode.
	Label string
}

type Locator interface {
	Locate(root string, videoType string) ([]Page, error)
}

// CheckRoot verifies that the static root exists and is a directory.
func CheckRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: static root: %v", course_archiver.ErrPrecondition, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: static root %s is not a directory", course_archiver.ErrPrecondition, root)
	}
	return nil
}

func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: expected file: %v", course_archiver.ErrPrecondition, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: expected file, found directory %s", course_archiver.ErrPrecondition, path)
	}
	return nil
}

func loadIndex(path string) (*goquery.Document, error) {
	if err := checkFile(path); err != nil {
		return nil, err
	}
	doc, err := htmlutil.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", course_archiver.ErrPrecondition, err)
	}
	return doc, nil
}

func dirFor(dirs map[string]string, videoType string) (string, error) {
	dir, ok := dirs[videoType]
	if !ok {
		return "", fmt.Errorf("%w: %q", course_archiver.ErrUnsupportedVideoType, videoType)
	}
	return dir, nil
}

// resolveHref maps a link in an index document to the HTML file it refers to. Relative links are relative to the
// index document, absolute paths to the static root; directory links refer to their index.html.
func resolveHref(root string, indexPath string, href string) (string, error) {
	u, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("%w: bad link %q in %s: %v", course_archiver.ErrLayout, href, indexPath, err)
	}
	if u.Scheme != "" || u.Host != "" {
		return "", fmt.Errorf("%w: link %q in %s leaves the snapshot", course_archiver.ErrLayout, href, indexPath)
	}
	if u.Path == "" {
		return "", fmt.Errorf("%w: empty link in %s", course_archiver.ErrLayout, indexPath)
	}
	var target string
	if strings.HasPrefix(u.Path, "/") {
		target = filepath.Join(root, filepath.FromSlash(u.Path))
	} else {
		target = filepath.Join(filepath.Dir(indexPath), filepath.FromSlash(u.Path))
	}
	if strings.HasSuffix(u.Path, "/") {
		target = filepath.Join(target, "index.html")
	} else if info, err := os.Stat(target); err == nil && info.IsDir() {
		target = filepath.Join(target, "index.html")
	}
	if err := checkFile(target); err != nil {
		return "", err
	}
	return target, nil
}

func noPages(videoType string, where string) error {
	return fmt.Errorf("%w: no %s pages found in %s", course_archiver.ErrPrecondition, videoType, where)
}

// leadingNumber parses the run of digits at the start of s, or -1 if there is none.
func leadingNumber(s string) int {
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if end == -1 {
		end = len(s)
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return -1
	}
	return n
}

// naturalLess orders strings by comparing embedded digit runs numerically, so "v2" sorts before "v10".
func naturalLess(a, b string) bool {
	for a != "" && b != "" {
		ca, cb := rune(a[0]), rune(b[0])
		if unicode.IsDigit(ca) && unicode.IsDigit(cb) {
			na, nb := leadingNumber(a), leadingNumber(b)
			if na != nb {
				return na < nb
			}
			a = strings.TrimLeftFunc(a, unicode.IsDigit)
			b = strings.TrimLeftFunc(b, unicode.IsDigit)
			continue
		}
		if ca != cb {
			return ca < cb
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func sortNatural(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		return naturalLess(names[i], names[j])
	})
}
