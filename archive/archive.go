// Package archive downloads a resolved collection into <root>/<Type>s/<episode>/, one working directory per episode.
package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hashicorp/go-multierror"

	"github.com/alanbriolat/course-archiver"
	"github.com/alanbriolat/course-archiver/download"
)

// A Fetcher downloads titles into a working directory; *download.Downloader is the implementation.
type Fetcher interface {
	SetWorkingDirectory(path string) error
	Fetch(ctx context.Context, title string, url string) (download.Outcome, error)
}

// Summary counts the outcomes of a run.
type Summary struct {
	Downloaded int
	Skipped    int
	Failed     int
}

func (s Summary) Total() int {
	return s.Downloaded + s.Skipped + s.Failed
}

func (s *Summary) add(outcome download.Outcome) {
	switch outcome {
	case download.Downloaded:
		s.Downloaded++
	case download.SkippedAlreadyExists:
		s.Skipped++
	default:
		s.Failed++
	}
}

// TypeDir is the directory holding every episode of a video type.
func TypeDir(videosRoot string, videoType string) string {
	return filepath.Join(videosRoot, videoType+"s")
}

// EpisodeDir is the working directory for one episode.
func EpisodeDir(videosRoot string, videoType string, number int) string {
	return filepath.Join(TypeDir(videosRoot, videoType), strconv.Itoa(number))
}

func checkRoot(videosRoot string) error {
	info, err := os.Stat(videosRoot)
	if err != nil {
		return fmt.Errorf("%w: videos root: %v", course_archiver.ErrPrecondition, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: videos root %s is not a directory", course_archiver.ErrPrecondition, videosRoot)
	}
	return nil
}

// Archive fetches every record of the collection, types and titles in sorted order and episodes in sequence order.
// Titles are sanitized before they reach the Fetcher. A failed transfer does not stop the run: all of them are
// returned together once every record has been tried. Cancellation and precondition errors stop the run at once.
func Archive(ctx context.Context, collection course_archiver.VideoTypeCollection, videosRoot string, fetcher Fetcher) (Summary, error) {
	var summary Summary
	if len(collection) == 0 {
		return summary, fmt.Errorf("%w: nothing to download", course_archiver.ErrPrecondition)
	}
	if fetcher == nil {
		return summary, fmt.Errorf("%w: no downloader", course_archiver.ErrPrecondition)
	}
	if err := checkRoot(videosRoot); err != nil {
		return summary, err
	}
	log := course_archiver.Logger(ctx).Sugar().Named("archive")

	var failures error
	for _, videoType := range collection.Types() {
		for _, episode := range collection[videoType] {
			dir := EpisodeDir(videosRoot, videoType, episode.Number)
			if err := os.MkdirAll(dir, 0755); err != nil {
				return summary, fmt.Errorf("%w: %v", course_archiver.ErrPrecondition, err)
			}
			if err := fetcher.SetWorkingDirectory(dir); err != nil {
				return summary, err
			}
			log.Infof("downloading videos for %s %d", videoType, episode.Number)
			for _, record := range episode.Videos.Records() {
				if err := ctx.Err(); err != nil {
					return summary, multierror.Append(failures, err)
				}
				outcome, err := fetcher.Fetch(ctx, course_archiver.SanitizeTitle(record.Title), record.URL)
				summary.add(outcome)
				if err == nil {
					continue
				}
				if errors.Is(err, course_archiver.ErrPrecondition) {
					return summary, err
				}
				if ctxErr := ctx.Err(); ctxErr != nil {
					return summary, multierror.Append(failures, err)
				}
				log.Warnf("%s %d: %v", videoType, episode.Number, err)
				failures = multierror.Append(failures, fmt.Errorf("%s %d: %w", videoType, episode.Number, err))
			}
		}
	}
	log.Infof("finished: %d downloaded, %d skipped, %d failed", summary.Downloaded, summary.Skipped, summary.Failed)
	return summary, failures
}
