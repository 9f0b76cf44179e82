package download

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alanbriolat/course-archiver"
	"github.com/alanbriolat/course-archiver/generic"
)

// TempPrefix marks in-progress transfers, which never count as existing files.
const TempPrefix = ".course-archiver-"

// A Cursor is a working directory plus the filename stems present in it. It is built once when the directory is
// entered and then updated by completed transfers, never rescanned.
type Cursor struct {
	path  string
	stems generic.Set[string]
}

// Stem is the filename without its final extension.
func Stem(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// Open scans the directory, which must already exist.
func Open(path string) (*Cursor, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("%w: working directory: %v", course_archiver.ErrPrecondition, err)
	}
	c := &Cursor{path: path, stems: generic.NewSet[string]()}
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), TempPrefix) {
			continue
		}
		c.stems.Add(Stem(entry.Name()))
	}
	return c, nil
}

func (c *Cursor) Dir() string {
	return c.path
}

// Has reports whether a file with this title as its stem is present, whatever its extension.
func (c *Cursor) Has(title string) bool {
	return c.stems.Contains(title)
}

func (c *Cursor) Add(title string) {
	c.stems.Add(title)
}

// Path is the location of filename within the working directory.
func (c *Cursor) Path(filename string) string {
	return filepath.Join(c.path, filename)
}

// CreateTemp creates a new temporary file in the working directory, so that Commit is a rename on one filesystem.
func (c *Cursor) CreateTemp() (*os.File, error) {
	f, err := os.CreateTemp(c.path, TempPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", course_archiver.ErrTransfer, err)
	}
	return f, nil
}

// Commit moves a completed temporary file into place as title+ext and records title. The extension must be
// non-empty, otherwise a rescan would take the tail of a title like "Lecture 1.5" for one.
func (c *Cursor) Commit(tempPath string, title string, ext string) error {
	if ext == "" || Stem(title+ext) != title {
		return fmt.Errorf("%w: %q has no usable extension", course_archiver.ErrTransfer, title+ext)
	}
	if err := os.Rename(tempPath, c.Path(title+ext)); err != nil {
		return fmt.Errorf("%w: %v", course_archiver.ErrTransfer, err)
	}
	c.Add(title)
	return nil
}
