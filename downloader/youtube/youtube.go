// Package youtube downloads YouTube videos natively, without an external client.
package youtube

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/kkdai/youtube/v2"
	"go.uber.org/zap"

	"github.com/alanbriolat/course-archiver"
	"github.com/alanbriolat/course-archiver/download"
)

type Transfer struct {
	client   youtube.Client
	progress bool
	log      *zap.SugaredLogger
}

func New(progress bool) *Transfer {
	return &Transfer{
		progress: progress,
		log:      zap.S().Named("youtube"),
	}
}

// Transfer streams the first format that has audio into <title>.<ext>, ext taken from the format's MIME type.
func (t *Transfer) Transfer(ctx context.Context, cur *download.Cursor, title string, rawURL string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", course_archiver.ErrTransfer, err)
	}
	videoID, err := extractVideoID(parsedURL)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", course_archiver.ErrTransfer, rawURL, err)
	}
	video, err := t.client.GetVideoContext(ctx, "https://www.youtube.com/watch?v="+videoID)
	if err != nil {
		return fmt.Errorf("%w: failed to get video info: %w", course_archiver.ErrTransfer, err)
	}
	// TODO: select "highest" quality
	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return fmt.Errorf("%w: no format with audio for %s", course_archiver.ErrTransfer, videoID)
	}
	format := &formats[0]
	ext, err := extensionFromMimeType(format.MimeType)
	if err != nil {
		return fmt.Errorf("%w: %v", course_archiver.ErrTransfer, err)
	}
	stream, size, err := t.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return fmt.Errorf("%w: failed to get stream: %w", course_archiver.ErrTransfer, err)
	}
	defer stream.Close()

	ext = "." + ext
	t.log.Debugf("saving %s [%s] as %s%s", video.Title, video.ID, title, ext)
	var progress *download.Progress
	if t.progress {
		progress = download.NewProgressBar(title + ext)
		progress.AddExpectedBytes(size)
	}
	return download.SaveStream(ctx, cur, title, ext, stream, progress)
}

// extensionFromMimeType maps e.g. `video/mp4; codecs="avc1.42001E, mp4a.40.2"` to "mp4".
func extensionFromMimeType(mimeType string) (string, error) {
	mediaType := strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
	parts := strings.SplitN(mediaType, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", fmt.Errorf("unusable MIME type %q", mimeType)
	}
	return parts[1], nil
}

// Extract video ID from YouTube URL.
//
// Allowed URL formats:
//
//	http(s?)://(www|m).youtube.com/(watch|details)?v={VIDEO_ID}
//	http(s?)://(www|m).youtube.com/(v|embed)/{VIDEO_ID}
//	http(s?)://youtu.be/{VIDEO_ID}
func extractVideoID(url *url.URL) (string, error) {
	var id string
	switch url.Hostname() {
	case "youtube.com", "www.youtube.com", "m.youtube.com":
		if strings.HasPrefix(url.Path, "/v/") || strings.HasPrefix(url.Path, "/embed/") {
			id = strings.SplitN(url.Path, "/", 3)[2]
		} else if url.Path == "/watch" || url.Path == "/details" {
			if !url.Query().Has("v") {
				return "", fmt.Errorf("missing ?v= query parameter")
			}
			id = url.Query().Get("v")
		}
	case "youtu.be":
		id = strings.Trim(url.Path, "/")
	default:
		return "", fmt.Errorf("unrecognised hostname %q", url.Hostname())
	}
	if id == "" {
		return "", fmt.Errorf("could not extract video ID")
	}
	return id, nil
}
