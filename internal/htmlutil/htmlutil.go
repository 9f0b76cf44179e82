// Package htmlutil holds the small amount of DOM plumbing shared by page location and extraction.
package htmlutil

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// Load parses the HTML document at path.
func Load(path string) (*goquery.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

// NormalizeText removes embedded newlines and non-printable characters, collapses runs of whitespace and trims.
func NormalizeText(s string) string {
	s = strings.NewReplacer("\r", "", "\n", "").Replace(s)
	b := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || c == '\t' {
			b.WriteRune(c)
		}
	}
	s = innerWhitespace.ReplaceAllString(b.String(), " ")
	return norm.NFC.String(strings.TrimSpace(s))
}

// Text is the normalized text of every node in the selection.
func Text(sel *goquery.Selection) string {
	var buffer bytes.Buffer
	for _, n := range sel.Nodes {
		getTextRecursive(n, &buffer)
	}
	return NormalizeText(buffer.String())
}
