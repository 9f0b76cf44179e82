package util

import (
	"errors"
	"net/url"
	"path"
	"strings"
)

var (
	ErrNoFilename = errors.New("cannot extract valid filename")
)

// FilenameFromURL returns the final path segment of the URL.
func FilenameFromURL(url *url.URL) (string, error) {
	if url == nil {
		return "", ErrNoFilename
	}
	trimmed := strings.Trim(url.Path, "/")
	if trimmed == "" {
		return "", ErrNoFilename
	}
	pathElements := strings.Split(trimmed, "/")
	filename := pathElements[len(pathElements)-1]
	if filename == "" {
		return "", ErrNoFilename
	}
	// Don't allow "filenames" that are just ".", "..", etc.
	if strings.ReplaceAll(filename, ".", "") == "" {
		return "", ErrNoFilename
	}
	return filename, nil
}

func FilenameFromURLString(s string) (string, error) {
	if parsedURL, err := url.Parse(s); err != nil {
		return "", err
	} else {
		return FilenameFromURL(parsedURL)
	}
}

// ExtensionFromURL returns the extension (including the dot) of the URL's final path segment, or "" if it has none.
func ExtensionFromURL(s string) (string, error) {
	filename, err := FilenameFromURLString(s)
	if err != nil {
		return "", err
	}
	return path.Ext(filename), nil
}
