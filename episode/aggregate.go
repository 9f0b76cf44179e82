// Package episode assigns episode numbers to the mappings extracted from a course's pages.
package episode

import (
	"fmt"
	"strconv"

	"github.com/alanbriolat/course-archiver"
)

// A Page is the videos extracted from one page (or one entry of an index page).
type Page struct {
	Videos course_archiver.EpisodeMapping
	// Index is an explicit episode number from the locator, 0 if none.
	Index int
}

// Numbering is one of Positional, ParsedFromTitle or Explicit.
type Numbering interface {
	number(pages []Page) (course_archiver.EpisodeSequence, error)
}

// Positional numbers pages 1, 2, 3... in the order given, one episode per page.
type Positional struct{}

// ParsedFromTitle numbers pages by the first title of each. A number greater than any seen so far starts a new
// episode; anything else continues the current one, so multi-clip sessions stay together.
type ParsedFromTitle struct {
	Rule TitleRule
}

// Explicit numbers pages by their Index; pages sharing an Index form one episode.
type Explicit struct{}

// Aggregate builds the episode sequence. No pages at all means the layout rules matched nothing.
func Aggregate(pages []Page, numbering Numbering) (course_archiver.EpisodeSequence, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no episodes resolved", course_archiver.ErrLayout)
	}
	for i, p := range pages {
		if len(p.Videos) == 0 {
			return nil, fmt.Errorf("%w: page %d has no videos", course_archiver.ErrLayout, i+1)
		}
	}
	return numbering.number(pages)
}

func copyInto(dst course_archiver.EpisodeMapping, src course_archiver.EpisodeMapping) {
	for title, url := range src {
		dst[title] = url
	}
}

func clone(m course_archiver.EpisodeMapping) course_archiver.EpisodeMapping {
	c := make(course_archiver.EpisodeMapping, len(m))
	copyInto(c, m)
	return c
}

func (Positional) number(pages []Page) (course_archiver.EpisodeSequence, error) {
	seq := make(course_archiver.EpisodeSequence, 0, len(pages))
	for i, p := range pages {
		seq = append(seq, course_archiver.Episode{Number: i + 1, Videos: clone(p.Videos)})
	}
	return seq, nil
}

func (n ParsedFromTitle) number(pages []Page) (course_archiver.EpisodeSequence, error) {
	var seq course_archiver.EpisodeSequence
	highest := 0
	for _, p := range pages {
		num, err := n.Rule.Number(p.Videos.Titles()[0])
		if err != nil {
			return nil, err
		}
		if len(seq) == 0 || num > highest {
			// Episodes are numbered from 1; a leading "Session 0" page opens episode 1.
			highest = max(num, 1)
			seq = append(seq, course_archiver.Episode{Number: highest, Videos: clone(p.Videos)})
		} else {
			copyInto(seq[len(seq)-1].Videos, p.Videos)
		}
	}
	return seq, nil
}

func (Explicit) number(pages []Page) (course_archiver.EpisodeSequence, error) {
	var seq course_archiver.EpisodeSequence
	positions := make(map[int]int)
	for i, p := range pages {
		if p.Index < 1 {
			return nil, fmt.Errorf("%w: page %d has no episode index", course_archiver.ErrLayout, i+1)
		}
		if pos, ok := positions[p.Index]; ok {
			copyInto(seq[pos].Videos, p.Videos)
			continue
		}
		positions[p.Index] = len(seq)
		seq = append(seq, course_archiver.Episode{Number: p.Index, Videos: clone(p.Videos)})
	}
	return seq, nil
}

// Synthetic generates count single-video episodes numbered from 0, titled "<type> <i>" with URL head+i+tail.
func Synthetic(videoType string, count int, head string, tail string) course_archiver.EpisodeSequence {
	seq := make(course_archiver.EpisodeSequence, 0, count)
	for i := 0; i < count; i++ {
		n := strconv.Itoa(i)
		seq = append(seq, course_archiver.Episode{
			Number: i,
			Videos: course_archiver.EpisodeMapping{videoType + " " + n: head + n + tail},
		})
	}
	return seq
}
