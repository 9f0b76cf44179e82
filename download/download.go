// Package download transfers one title/url pair at a time into a working directory, skipping titles that are
// already present there.
package download

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/alanbriolat/course-archiver"
)

type Outcome int

const (
	Downloaded Outcome = iota
	SkippedAlreadyExists
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Downloaded:
		return "downloaded"
	case SkippedAlreadyExists:
		return "skipped (already exists)"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// A Transfer retrieves url into the cursor's directory as title plus whatever extension the mechanism decides.
type Transfer interface {
	Transfer(ctx context.Context, cur *Cursor, title string, url string) error
}

// TransferFunc adapts a function to the Transfer interface.
type TransferFunc func(ctx context.Context, cur *Cursor, title string, url string) error

func (f TransferFunc) Transfer(ctx context.Context, cur *Cursor, title string, url string) error {
	return f(ctx, cur, title, url)
}

// A Record describes the outcome of one Fetch.
type Record struct {
	Dir     string
	Title   string
	URL     string
	Outcome Outcome
	Error   string
	Time    time.Time
}

// A Recorder persists fetch outcomes.
type Recorder interface {
	Record(record Record) error
}

type Option func(*Downloader)

func WithRecorder(r Recorder) Option {
	return func(d *Downloader) {
		d.recorder = r
	}
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(d *Downloader) {
		d.log = l
	}
}

// A Downloader owns the cursor for the current working directory and runs a Transfer for each title not yet there.
type Downloader struct {
	transfer Transfer
	recorder Recorder
	cursor   *Cursor
	log      *zap.SugaredLogger
}

func New(transfer Transfer, opts ...Option) *Downloader {
	d := &Downloader{
		transfer: transfer,
		log:      zap.S().Named("download"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SetWorkingDirectory discards the current cursor and scans path for a new one.
func (d *Downloader) SetWorkingDirectory(path string) error {
	d.cursor = nil
	cursor, err := Open(path)
	if err != nil {
		return err
	}
	d.cursor = cursor
	return nil
}

// WorkingDirectory returns the current directory, or "" before SetWorkingDirectory.
func (d *Downloader) WorkingDirectory() string {
	if d.cursor == nil {
		return ""
	}
	return d.cursor.Dir()
}

// Fetch transfers url as title unless a file with that stem already exists. A failed transfer leaves the title
// unrecorded so a later run retries it.
func (d *Downloader) Fetch(ctx context.Context, title string, url string) (Outcome, error) {
	if d.cursor == nil {
		return Failed, fmt.Errorf("%w: no working directory set", course_archiver.ErrPrecondition)
	}
	if d.cursor.Has(title) {
		d.log.Infof("skipping %q: already exists in %s", title, d.cursor.Dir())
		d.record(title, url, SkippedAlreadyExists, nil)
		return SkippedAlreadyExists, nil
	}
	d.log.Infof("downloading %q from %s", title, url)
	if err := d.transfer.Transfer(ctx, d.cursor, title, url); err != nil {
		if !errors.Is(err, course_archiver.ErrTransfer) {
			err = fmt.Errorf("%w: %w", course_archiver.ErrTransfer, err)
		}
		err = fmt.Errorf("%s: %w", title, err)
		d.log.Warnf("failed: %v", err)
		d.record(title, url, Failed, err)
		return Failed, err
	}
	d.cursor.Add(title)
	d.record(title, url, Downloaded, nil)
	return Downloaded, nil
}

func (d *Downloader) record(title string, url string, outcome Outcome, err error) {
	if d.recorder == nil {
		return
	}
	r := Record{
		Dir:     d.cursor.Dir(),
		Title:   title,
		URL:     url,
		Outcome: outcome,
		Time:    time.Now().UTC(),
	}
	if err != nil {
		r.Error = err.Error()
	}
	if err := d.recorder.Record(r); err != nil {
		d.log.Warnf("failed to record outcome for %q: %v", title, err)
	}
}
