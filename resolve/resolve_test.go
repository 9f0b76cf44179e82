package resolve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	assert_ "github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanbriolat/course-archiver"
	"github.com/alanbriolat/course-archiver/episode"
	"github.com/alanbriolat/course-archiver/locate"
)

func writeFile(t *testing.T, root string, rel string, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func playerPage(heading string, url string) string {
	return fmt.Sprintf(`<html><body><h2>%s</h2><video data-setup='{"sources":[{"src":"%s","type":"video/youtube"}]}'></video></body></html>`, heading, url)
}

func sessionPage(heading string, url string) string {
	return fmt.Sprintf(`<html><body><main id="course-content-section"><h3>%s</h3><video data-setup='{"sources":[{"src":"%s"}]}'></video></main></body></html>`, heading, url)
}

func TestGallery(t *testing.T) {
	assert := assert_.New(t)
	root := t.TempDir()
	writeFile(t, root, "video_galleries/lecture-videos/index.html", `<html><body>
<a class="video-link" href="../../resources/lecture-1/">1</a>
<a class="video-link" href="../../resources/lecture-2/">2</a>
</body></html>`)
	writeFile(t, root, "video_galleries/mega-recitation-videos/index.html", `<html><body>
<a class="video-link" href="../../resources/mega-recitation-1/">1</a>
</body></html>`)
	writeFile(t, root, "resources/lecture-1/index.html", playerPage("1. Introduction and Scope", "https://www.youtube.com/watch?v=TjZBTDzGeGg"))
	writeFile(t, root, "resources/lecture-2/index.html", playerPage("2. Reasoning: Goal Trees", "https://www.youtube.com/watch?v=PNKj529yY5c"))
	writeFile(t, root, "resources/mega-recitation-1/index.html", playerPage("Mega-Recitation 1: Rule-Based Systems", "https://www.youtube.com/watch?v=rlvjKMGnlMg"))

	g := Gallery{Dirs: map[string]string{"Lecture": "lecture-videos", "Mega-Recitation": "mega-recitation-videos"}}
	assert.Equal(course_archiver.GalleryResolution, g.Kind())
	assert.Equal([]string{"Lecture", "Mega-Recitation"}, g.VideoTypes())

	collection, err := g.Resolve(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Equal(course_archiver.VideoTypeCollection{
		"Lecture": {
			{Number: 1, Videos: course_archiver.EpisodeMapping{"1. Introduction and Scope": "https://www.youtube.com/watch?v=TjZBTDzGeGg"}},
			{Number: 2, Videos: course_archiver.EpisodeMapping{"2. Reasoning: Goal Trees": "https://www.youtube.com/watch?v=PNKj529yY5c"}},
		},
		"Mega-Recitation": {
			{Number: 1, Videos: course_archiver.EpisodeMapping{"Mega-Recitation 1: Rule-Based Systems": "https://www.youtube.com/watch?v=rlvjKMGnlMg"}},
		},
	}, collection)

	collection, err = g.Resolve(context.Background(), root, []string{"Mega-Recitation"})
	require.NoError(t, err)
	assert.Equal([]string{"Mega-Recitation"}, collection.Types())
}

func TestResolve_UnsupportedTypeBeforeIO(t *testing.T) {
	assert := assert_.New(t)
	missing := filepath.Join(t.TempDir(), "missing")

	resolutions := []course_archiver.Resolution{
		Gallery{Dirs: map[string]string{"Lecture": "lecture-videos"}},
		ResourceIndex{Dirs: map[string]string{"Lecture": "lecture-videos"}},
		NewFilesystemScan("resources", map[string]string{"Lecture": "lecture-"}, nil),
		SyntheticTemplate{Count: 1, Templates: map[string]Template{"Lecture": {Head: "https://example.com/", Tail: ".mp4"}}},
	}
	for _, r := range resolutions {
		_, err := r.Resolve(context.Background(), missing, []string{"Recitation"})
		assert.ErrorIs(err, course_archiver.ErrUnsupportedVideoType, r.Kind().String())
	}

	_, err := resolutions[0].Resolve(context.Background(), missing, nil)
	assert.ErrorIs(err, course_archiver.ErrPrecondition)
}

func TestResourceIndex_Pages(t *testing.T) {
	assert := assert_.New(t)
	root := t.TempDir()
	writeFile(t, root, "resources/lecture-videos/index.html", `<html><body>
<div class="resource-list-item-details"><a href="../course-introduction/">Course Introduction</a></div>
<div class="resource-list-item-details"><a href="../session-1-clip-1/">Session 1 Clip 1</a></div>
<div class="resource-list-item-details"><a href="../session-1-clip-1-zh-hans/">Session 1 Clip 1 (Chinese)</a></div>
<div class="resource-list-item-details"><a href="../session-2-clip-1/">Session 2 Clip 1</a></div>
<div class="resource-list-item-details"><a href="../session-2-clip-2/">Session 2 Clip 2</a></div>
</body></html>`)
	for _, dir := range []string{"course-introduction", "session-1-clip-1", "session-2-clip-1", "session-2-clip-2"} {
		writeFile(t, root, "resources/"+dir+"/index.html", playerPage("ignored heading", "https://www.youtube.com/watch?v="+dir))
	}

	r := ResourceIndex{
		Dirs:         map[string]string{"Lecture": "lecture-videos"},
		Numbering:    episode.ParsedFromTitle{Rule: episode.SessionRule},
		LocaleMarker: locate.DefaultLocaleMarker,
	}
	collection, err := r.Resolve(context.Background(), root, []string{"Lecture"})
	require.NoError(t, err)
	assert.Equal(course_archiver.EpisodeSequence{
		{Number: 1, Videos: course_archiver.EpisodeMapping{
			"Course Introduction": "https://www.youtube.com/watch?v=course-introduction",
			"Session 1 Clip 1":    "https://www.youtube.com/watch?v=session-1-clip-1",
		}},
		{Number: 2, Videos: course_archiver.EpisodeMapping{
			"Session 2 Clip 1": "https://www.youtube.com/watch?v=session-2-clip-1",
			"Session 2 Clip 2": "https://www.youtube.com/watch?v=session-2-clip-2",
		}},
	}, collection["Lecture"])
}

func TestResourceIndex_Thumbnails(t *testing.T) {
	assert := assert_.New(t)
	root := t.TempDir()
	writeFile(t, root, "resources/recitation-videos/index.html", `<html><body>
<div class="d-inline-flex"><a class="resource-thumbnail" href="https://archive.org/download/r/rec1_300k.mp4"></a><a class="resource-list-title">Recitation 1</a></div>
<div class="d-inline-flex"><a class="resource-thumbnail" href="https://archive.org/download/r/zh-hans/rec1_300k.mp4"></a><a class="resource-list-title">Recitation 1 (Chinese)</a></div>
<div class="d-inline-flex"><a class="resource-thumbnail" href="https://archive.org/download/r/rec2_300k.mp4"></a><a class="resource-list-title">Recitation 2</a></div>
</body></html>`)

	r := ResourceIndex{
		Dirs:         map[string]string{"Lecture": "lecture-videos", "Recitation": "recitation-videos"},
		Thumbnails:   true,
		LocaleMarker: locate.DefaultLocaleMarker,
	}
	collection, err := r.Resolve(context.Background(), root, []string{"Recitation"})
	require.NoError(t, err)
	assert.Equal(course_archiver.EpisodeSequence{
		{Number: 1, Videos: course_archiver.EpisodeMapping{"Recitation 1": "https://archive.org/download/r/rec1_300k.mp4"}},
		{Number: 2, Videos: course_archiver.EpisodeMapping{"Recitation 2": "https://archive.org/download/r/rec2_300k.mp4"}},
	}, collection["Recitation"])

	_, err = r.Resolve(context.Background(), root, []string{"Lecture"})
	assert.ErrorIs(err, course_archiver.ErrPrecondition)
}

func TestFilesystemScan_LectureTitles(t *testing.T) {
	assert := assert_.New(t)
	root := t.TempDir()
	writeFile(t, root, "resources/lecture-10-survey/index.html", playerPage("Lecture 10: Survey of Difficulties", "https://www.youtube.com/watch?v=10"))
	writeFile(t, root, "resources/lecture-2/index.html", playerPage("Lecture 2: Multiplying and Factoring", "https://www.youtube.com/watch?v=2"))
	writeFile(t, root, "resources/lecture-1/index.html", playerPage("Lecture 1: The Column Space of A", "https://www.youtube.com/watch?v=1"))
	writeFile(t, root, "resources/syllabus/index.html", "<html></html>")

	s := NewFilesystemScan("resources", map[string]string{"Lecture": "lecture-"}, episode.ParsedFromTitle{Rule: episode.LectureRule})
	assert.Equal(course_archiver.FilesystemScanResolution, s.Kind())
	collection, err := s.Resolve(context.Background(), root, nil)
	require.NoError(t, err)
	seq := collection["Lecture"]
	require.Len(t, seq, 3)
	assert.Equal(1, seq[0].Number)
	assert.Equal(2, seq[1].Number)
	assert.Equal(10, seq[2].Number)
	assert.Equal(course_archiver.EpisodeMapping{"Lecture 10: Survey of Difficulties": "https://www.youtube.com/watch?v=10"}, seq[2].Videos)
}

func TestFilesystemScan_Sessions(t *testing.T) {
	assert := assert_.New(t)
	root := t.TempDir()
	writeFile(t, root, "pages/c1/c1s2/c1s2v1/index.html", `<html><body>
<div class="course-section-title-container"><h2>Computation Structures</h2></div>
<main id="course-content-section">
<h3 id="a">Part A: Vectors (10:40)</h3>
<video data-setup='{"sources":[{"src":"https://www.youtube.com/watch?v=a"}]}'></video>
</main></body></html>`)
	writeFile(t, root, "pages/c1/c1s2/c1s2v2/index.html", sessionPage("Part B: Dot Product", "https://www.youtube.com/watch?v=b"))
	writeFile(t, root, "pages/c2/c2s2/c2s2v1/index.html", sessionPage("Part A: Matrices", "https://www.youtube.com/watch?v=c"))

	s := NewSessionScan("pages/c%[1]d/c%[1]ds2", 2, "Lecture")
	collection, err := s.Resolve(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Equal(course_archiver.EpisodeSequence{
		{Number: 1, Videos: course_archiver.EpisodeMapping{
			"c1s2v1, Part A: Vectors":     "https://www.youtube.com/watch?v=a",
			"c1s2v2, Part B: Dot Product": "https://www.youtube.com/watch?v=b",
		}},
		{Number: 2, Videos: course_archiver.EpisodeMapping{
			"c2s2v1, Part A: Matrices": "https://www.youtube.com/watch?v=c",
		}},
	}, collection["Lecture"])

	_, err = NewSessionScan("pages/c%[1]d/c%[1]ds2", 3, "Lecture").Resolve(context.Background(), root, nil)
	assert.ErrorIs(err, course_archiver.ErrPrecondition)

	_, err = FilesystemScan{}.Resolve(context.Background(), root, nil)
	assert.ErrorIs(err, course_archiver.ErrInvalidStrategy)
}

func TestResolve_LayoutErrorStopsRun(t *testing.T) {
	assert := assert_.New(t)
	root := t.TempDir()
	writeFile(t, root, "video_galleries/lecture-videos/index.html", `<html><body>
<a class="video-link" href="../../resources/lecture-1/">1</a>
<a class="video-link" href="../../resources/lecture-2/">2</a>
</body></html>`)
	writeFile(t, root, "resources/lecture-1/index.html", playerPage("Lecture 1", "https://www.youtube.com/watch?v=1"))
	writeFile(t, root, "resources/lecture-2/index.html", `<html><body><h2>Lecture 2</h2><p>video removed</p></body></html>`)

	_, err := Gallery{Dirs: map[string]string{"Lecture": "lecture-videos"}}.Resolve(context.Background(), root, nil)
	assert.ErrorIs(err, course_archiver.ErrLayout)
}

func TestResolve_Cancelled(t *testing.T) {
	assert := assert_.New(t)
	root := t.TempDir()
	writeFile(t, root, "video_galleries/lecture-videos/index.html", `<html><body><a class="video-link" href="../../resources/lecture-1/">1</a></body></html>`)
	writeFile(t, root, "resources/lecture-1/index.html", playerPage("Lecture 1", "https://www.youtube.com/watch?v=1"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Gallery{Dirs: map[string]string{"Lecture": "lecture-videos"}}.Resolve(ctx, root, nil)
	assert.ErrorIs(err, context.Canceled)
}

func TestSyntheticTemplate(t *testing.T) {
	assert := assert_.New(t)
	const head = "https://www.cs.toronto.edu/~hehner/FMSD/"
	s := SyntheticTemplate{
		Count: 34,
		Templates: map[string]Template{
			"Lecture":    {Head: head + "FMSD", Tail: ".mp4"},
			"Transcript": {Head: head + "talk", Tail: ".pdf"},
			"Slide":      {Head: head + "show", Tail: ".pdf"},
		},
	}
	assert.Equal(course_archiver.SyntheticTemplateResolution, s.Kind())

	// No snapshot is read, so the root need not exist.
	collection, err := s.Resolve(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Equal([]string{"Lecture", "Slide", "Transcript"}, collection.Types())
	for videoType, tmpl := range s.Templates {
		seq := collection[videoType]
		require.Len(t, seq, 34)
		for i, e := range seq {
			assert.Equal(i, e.Number)
			assert.Equal(course_archiver.EpisodeMapping{
				fmt.Sprintf("%s %d", videoType, i): fmt.Sprintf("%s%d%s", tmpl.Head, i, tmpl.Tail),
			}, e.Videos)
		}
	}

	_, err = SyntheticTemplate{Templates: s.Templates}.Resolve(context.Background(), "", nil)
	assert.ErrorIs(err, course_archiver.ErrLayout)
}
