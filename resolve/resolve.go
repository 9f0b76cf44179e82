// Package resolve implements the course resolutions: each turns a static site snapshot into numbered episodes of
// title -> URL records, by combining a page locator, the page extractor and an episode numbering.
package resolve

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/alanbriolat/course-archiver"
	"github.com/alanbriolat/course-archiver/episode"
	"github.com/alanbriolat/course-archiver/extract"
	"github.com/alanbriolat/course-archiver/generic"
	"github.com/alanbriolat/course-archiver/locate"
)

type pipeline struct {
	kind         course_archiver.ResolutionKind
	types        []string
	locator      locate.Locator
	numbering    episode.Numbering
	localeMarker string
	headings     []string
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// checkTypes rejects unsupported types before anything is read.
func checkTypes(supported []string, types []string) error {
	known := generic.NewSet(supported...)
	for _, t := range types {
		if !known.Contains(t) {
			return fmt.Errorf("%w: %q (supported: %s)", course_archiver.ErrUnsupportedVideoType, t, strings.Join(supported, ", "))
		}
	}
	return nil
}

func (p *pipeline) resolve(ctx context.Context, root string, types []string) (course_archiver.VideoTypeCollection, error) {
	if len(types) == 0 {
		types = p.types
	}
	if err := checkTypes(p.types, types); err != nil {
		return nil, err
	}
	if err := locate.CheckRoot(root); err != nil {
		return nil, err
	}
	log := course_archiver.Logger(ctx).Sugar().Named("resolve")
	extractor := extract.New(p.localeMarker)
	extractor.Headings = p.headings
	collection := make(course_archiver.VideoTypeCollection, len(types))
	for _, t := range types {
		pages, err := p.locator.Locate(root, t)
		if err != nil {
			return nil, err
		}
		log.Debugw("located pages", "kind", p.kind, "type", t, "count", len(pages))
		var found []episode.Page
		for _, page := range pages {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			mappings, err := extractor.ExtractPage(page, t)
			if err != nil {
				return nil, err
			}
			for _, m := range mappings {
				found = append(found, episode.Page{Videos: m, Index: page.Index})
			}
		}
		seq, err := episode.Aggregate(found, p.numbering)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t, err)
		}
		log.Infow("resolved", "type", t, "episodes", len(seq), "videos", seq.Len())
		collection[t] = seq
	}
	return collection, nil
}
