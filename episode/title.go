package episode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alanbriolat/course-archiver"
)

// A TitleRule reads an episode number out of free-text titles like "Session 7 Clip 2" or "Lecture 13: ...".
type TitleRule struct {
	// Keyword precedes the number, separated by exactly one character.
	Keyword string
	// Secondary, if present after the number, ends the scan (e.g. "Clip" in "Session 7 Clip 2").
	Secondary string
}

var (
	SessionRule = TitleRule{Keyword: "Session", Secondary: "Clip"}
	LectureRule = TitleRule{Keyword: "Lecture"}
)

// Number returns the 1–2 digit number after the keyword. Titles without the keyword are introductory material and
// belong to episode 1.
func (r TitleRule) Number(title string) (int, error) {
	k := strings.Index(title, r.Keyword)
	if k == -1 {
		return 1, nil
	}
	start := k + len(r.Keyword) + 1
	if start > len(title) {
		return 0, fmt.Errorf("%w: no number after %q in %q", course_archiver.ErrLayout, r.Keyword, title)
	}
	rest := title[start:]
	if r.Secondary != "" {
		if i := strings.Index(rest, r.Secondary); i != -1 {
			rest = rest[:i]
		}
	}
	end := 0
	for end < len(rest) && end < 2 && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, fmt.Errorf("%w: no number after %q in %q", course_archiver.ErrLayout, r.Keyword, title)
	}
	n, err := strconv.Atoi(rest[:end])
	if err != nil {
		return 0, fmt.Errorf("%w: %v", course_archiver.ErrLayout, err)
	}
	return n, nil
}
