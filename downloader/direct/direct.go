// Package direct downloads files over plain HTTP(S), retrying the whole request with exponential backoff.
package direct

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/alanbriolat/course-archiver"
	"github.com/alanbriolat/course-archiver/download"
	"github.com/alanbriolat/course-archiver/util"
)

type Transfer struct {
	client   *resty.Client
	config   course_archiver.DirectConfig
	progress bool
	log      *zap.SugaredLogger
}

type Option func(*Transfer)

// WithProgress shows a progress bar for each file.
func WithProgress(enabled bool) Option {
	return func(t *Transfer) {
		t.progress = enabled
	}
}

// WithClient replaces the default HTTP client.
func WithClient(client *resty.Client) Option {
	return func(t *Transfer) {
		t.client = client
	}
}

func New(config course_archiver.DirectConfig, opts ...Option) *Transfer {
	t := &Transfer{
		config: config,
		log:    zap.S().Named("direct"),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.client == nil {
		t.client = resty.New().SetLogger(t.log)
	}
	if config.Timeout > 0 {
		t.client.SetTimeout(config.Timeout)
	}
	if config.UserAgent != "" {
		t.client.SetHeader("User-Agent", config.UserAgent)
	}
	return t
}

func (t *Transfer) backOff(ctx context.Context) backoff.BackOff {
	attempts := t.config.Attempts
	if attempts < 1 {
		attempts = 1
	}
	exp := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(t.config.InitialInterval),
		backoff.WithMaxInterval(t.config.MaxInterval),
		backoff.WithMaxElapsedTime(0),
	)
	return backoff.WithMaxRetries(backoff.WithContext(exp, ctx), uint64(attempts-1))
}

// Transfer saves url as title plus the extension of the URL's last path segment. Transport errors and non-2xx
// responses are retried up to the configured number of attempts.
func (t *Transfer) Transfer(ctx context.Context, cur *download.Cursor, title string, url string) error {
	ext, err := util.ExtensionFromURL(url)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", course_archiver.ErrTransfer, url, err)
	}
	if ext == "" {
		return fmt.Errorf("%w: %s: no file extension in URL", course_archiver.ErrTransfer, url)
	}

	attempt := 0
	operation := func() error {
		attempt++
		t.log.Debugf("attempt %d of %d: %s", attempt, t.config.Attempts, url)
		return t.attempt(ctx, cur, title, ext, url)
	}
	notify := func(err error, next time.Duration) {
		t.log.Infof("attempt %d for %q failed: %v (retrying in %s)", attempt, title, err, next)
	}
	if err := backoff.RetryNotify(operation, t.backOff(ctx), notify); err != nil {
		return fmt.Errorf("%w: %s: giving up after %d attempts: %w", course_archiver.ErrTransfer, url, attempt, err)
	}
	return nil
}

func (t *Transfer) attempt(ctx context.Context, cur *download.Cursor, title string, ext string, url string) error {
	resp, err := t.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return err
	}
	body := resp.RawBody()
	defer body.Close()
	if !resp.IsSuccess() {
		return fmt.Errorf("unexpected status %s", resp.Status())
	}
	var progress *download.Progress
	if t.progress {
		progress = download.NewProgressBar(title + ext)
		progress.AddExpectedBytes(resp.RawResponse.ContentLength)
	}
	return download.SaveStream(ctx, cur, title, ext, body, progress)
}
