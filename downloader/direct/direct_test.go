package direct

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	assert_ "github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanbriolat/course-archiver"
	"github.com/alanbriolat/course-archiver/download"
)

func testConfig() course_archiver.DirectConfig {
	return course_archiver.DirectConfig{Attempts: course_archiver.DefaultAttempts}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestTransfer_Success(t *testing.T) {
	assert := assert_.New(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal("/~hehner/FMSD/FMSD3.mp4", r.URL.Path)
		_, _ = w.Write([]byte("lecture three"))
	}))
	defer server.Close()

	dir := t.TempDir()
	d := download.New(New(testConfig()))
	require.NoError(t, d.SetWorkingDirectory(dir))
	outcome, err := d.Fetch(context.Background(), "Lecture 3", server.URL+"/~hehner/FMSD/FMSD3.mp4")
	require.NoError(t, err)
	assert.Equal(download.Downloaded, outcome)
	assert.Equal([]string{"Lecture 3.mp4"}, listDir(t, dir))
	data, err := os.ReadFile(filepath.Join(dir, "Lecture 3.mp4"))
	require.NoError(t, err)
	assert.Equal("lecture three", string(data))

	outcome, err = d.Fetch(context.Background(), "Lecture 3", server.URL+"/~hehner/FMSD/FMSD3.mp4")
	assert.NoError(err)
	assert.Equal(download.SkippedAlreadyExists, outcome)
}

func TestTransfer_RetryExhaustion(t *testing.T) {
	assert := assert_.New(t)
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("try later"))
	}))
	defer server.Close()

	dir := t.TempDir()
	d := download.New(New(testConfig()))
	require.NoError(t, d.SetWorkingDirectory(dir))
	outcome, err := d.Fetch(context.Background(), "Slide 0", server.URL+"/show0.pdf")
	assert.Equal(download.Failed, outcome)
	assert.ErrorIs(err, course_archiver.ErrTransfer)
	assert.Equal(int32(8), atomic.LoadInt32(&hits))
	assert.Empty(listDir(t, dir))

	// The failed title is not remembered, so the next call tries again.
	outcome, _ = d.Fetch(context.Background(), "Slide 0", server.URL+"/show0.pdf")
	assert.Equal(download.Failed, outcome)
	assert.Equal(int32(16), atomic.LoadInt32(&hits))
}

func TestTransfer_TruncatedBody(t *testing.T) {
	assert := assert_.New(t)
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Length", "20")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("first half"))
		w.(http.Flusher).Flush()
		conn, _, err := w.(http.Hijacker).Hijack()
		if assert.NoError(err) {
			_ = conn.Close()
		}
	}))
	defer server.Close()

	dir := t.TempDir()
	d := download.New(New(testConfig()))
	require.NoError(t, d.SetWorkingDirectory(dir))
	outcome, err := d.Fetch(context.Background(), "Lecture 7", server.URL+"/FMSD7.mp4")
	assert.Equal(download.Failed, outcome)
	assert.ErrorIs(err, course_archiver.ErrTransfer)
	assert.Equal(int32(8), atomic.LoadInt32(&hits))
	assert.Empty(listDir(t, dir))
}

func TestTransfer_RequiresExtension(t *testing.T) {
	assert := assert_.New(t)
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte("data"))
	}))
	defer server.Close()

	dir := t.TempDir()
	d := download.New(New(testConfig()))
	require.NoError(t, d.SetWorkingDirectory(dir))
	outcome, err := d.Fetch(context.Background(), "Lecture 1.5", server.URL+"/download")
	assert.Equal(download.Failed, outcome)
	assert.ErrorIs(err, course_archiver.ErrTransfer)
	assert.Equal(int32(0), atomic.LoadInt32(&hits))
	assert.Empty(listDir(t, dir))

	outcome, err = d.Fetch(context.Background(), "Lecture 1.5", server.URL+"/lecture-1.5.mp4")
	require.NoError(t, err)
	assert.Equal(download.Downloaded, outcome)
	assert.Equal([]string{"Lecture 1.5.mp4"}, listDir(t, dir))

	outcome, err = d.Fetch(context.Background(), "Lecture 1", server.URL+"/lecture-1.mp4")
	require.NoError(t, err)
	assert.Equal(download.Downloaded, outcome)
}

func TestTransfer_Recovers(t *testing.T) {
	assert := assert_.New(t)
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("%PDF"))
	}))
	defer server.Close()

	dir := t.TempDir()
	cur, err := download.Open(dir)
	require.NoError(t, err)
	require.NoError(t, New(testConfig()).Transfer(context.Background(), cur, "Transcript 1", server.URL+"/talk1.pdf?dl=1"))
	assert.Equal(int32(3), atomic.LoadInt32(&hits))
	assert.Equal([]string{"Transcript 1.pdf"}, listDir(t, dir))
	assert.True(cur.Has("Transcript 1"))
}

func TestTransfer_SingleAttempt(t *testing.T) {
	assert := assert_.New(t)
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cur, err := download.Open(t.TempDir())
	require.NoError(t, err)
	err = New(course_archiver.DirectConfig{Attempts: 1}).Transfer(context.Background(), cur, "x", server.URL+"/x.mp4")
	assert.ErrorIs(err, course_archiver.ErrTransfer)
	assert.Equal(int32(1), atomic.LoadInt32(&hits))
}

func TestTransfer_Cancelled(t *testing.T) {
	assert := assert_.New(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	dir := t.TempDir()
	cur, err := download.Open(dir)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = New(testConfig()).Transfer(ctx, cur, "Lecture 1", server.URL+"/FMSD1.mp4")
	assert.ErrorIs(err, context.Canceled)
	assert.ErrorIs(err, course_archiver.ErrTransfer)
	assert.Empty(listDir(t, dir))
}

func TestTransfer_BadURL(t *testing.T) {
	assert := assert_.New(t)
	cur, err := download.Open(t.TempDir())
	require.NoError(t, err)
	err = New(testConfig()).Transfer(context.Background(), cur, "Lecture 1", "https://example.com/")
	assert.ErrorIs(err, course_archiver.ErrTransfer)
}
