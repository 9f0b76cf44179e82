package download

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/alanbriolat/course-archiver"
)

// A context-aware io.Reader wrapper.
type readerContext struct {
	ctx context.Context
	r   io.Reader
}

func (r *readerContext) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Progress counts transferred bytes, reporting every change to an optional callback.
type Progress struct {
	expected   int64
	downloaded int64
	callback   func(downloaded int64, expected int64)
}

func NewProgress(callback func(downloaded int64, expected int64)) *Progress {
	return &Progress{callback: callback}
}

// NewProgressBar reports progress on a terminal progress bar.
func NewProgressBar(description string) *Progress {
	bar := progressbar.DefaultBytes(-1, description)
	return NewProgress(func(downloaded int64, expected int64) {
		if expected > 0 && bar.GetMax64() != expected {
			bar.ChangeMax64(expected)
		}
		_ = bar.Set64(downloaded)
		if expected > 0 && downloaded >= expected {
			_ = bar.Finish()
		}
	})
}

// AddExpectedBytes increases how many bytes are expected. Unknown lengths (negative) are ignored.
func (p *Progress) AddExpectedBytes(n int64) {
	if n <= 0 {
		return
	}
	p.expected += n
	p.report()
}

// Write discards the data but counts it, so a Progress can be the last writer of an io.MultiWriter.
func (p *Progress) Write(b []byte) (int, error) {
	p.downloaded += int64(len(b))
	p.report()
	return len(b), nil
}

// Bytes returns the downloaded and expected byte counts.
func (p *Progress) Bytes() (int64, int64) {
	return p.downloaded, p.expected
}

func (p *Progress) report() {
	if p.callback != nil {
		p.callback(p.downloaded, p.expected)
	}
}

// SaveStream copies the stream into a fresh temporary file in the cursor's directory, then renames it to title+ext
// (ext including the dot). On any failure the temporary file is removed and nothing is recorded in the cursor.
func SaveStream(ctx context.Context, cur *Cursor, title string, ext string, stream io.Reader, progress *Progress) (err error) {
	f, err := cur.CreateTemp()
	if err != nil {
		return err
	}
	tempPath := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tempPath)
		}
	}()

	var w io.Writer = f
	if progress != nil {
		w = io.MultiWriter(f, progress)
	}
	_, err = io.Copy(w, &readerContext{ctx: ctx, r: stream})
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("%w: failed to save stream: %w", course_archiver.ErrTransfer, err)
	}
	return cur.Commit(tempPath, title, ext)
}
