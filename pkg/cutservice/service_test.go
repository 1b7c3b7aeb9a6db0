package cutservice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tcolgate/mp3"

	"radiocut/pkg/config"
	"radiocut/pkg/domain"
	"radiocut/pkg/logger"
	"radiocut/pkg/metadata"
	"radiocut/pkg/token"
)

// framesPerChunk silent frames last just over 25 seconds.
const framesPerChunk = 958

// fakeRadiocut serves a cut page, a single manifest page with six 25-second
// chunks covering [123450, 123600), and the chunk payloads.
type fakeRadiocut struct {
	*httptest.Server
	manifestStatus int
	chunkStatus    map[string]int

	mu        sync.Mutex
	chunkHits map[string]int
}

func newFakeRadiocut(t *testing.T) *fakeRadiocut {
	f := &fakeRadiocut{chunkStatus: map[string]int{}, chunkHits: map[string]int{}}
	mux := http.NewServeMux()
	mux.HandleFunc("/audiocut/", f.page)
	mux.HandleFunc("/server/gec/www/", f.manifest)
	mux.HandleFunc("/chunks/", f.chunk)
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeRadiocut) page(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, `<ul>
<li class="audio_seconds">123456.0</li>
<li class="audio_duration">30</li>
<li class="audio_station">abc</li>
<li class="audio_base_url">%s</li>
</ul>`, f.URL)
}

func (f *fakeRadiocut) manifest(w http.ResponseWriter, r *http.Request) {
	if f.manifestStatus != 0 {
		w.WriteHeader(f.manifestStatus)
		return
	}
	tok := strings.Trim(strings.TrimPrefix(r.URL.Path, "/server/gec/www/"), "/")
	station, folder, err := token.Decode(tok)
	if err != nil || station != "abc" || folder != 123456 {
		http.NotFound(w, r)
		return
	}

	var chunks []string
	for i := 0; i < 6; i++ {
		start := 123450 + i*25
		chunks = append(chunks, fmt.Sprintf(`{"start": %d, "length": 25, "filename": "%d.mp3"}`, start, start))
	}
	fmt.Fprintf(w, `{"123456": {"baseURL": "%s/chunks", "chunks": [%s]}}`, f.URL, strings.Join(chunks, ","))
}

func (f *fakeRadiocut) chunk(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/chunks/")
	f.mu.Lock()
	f.chunkHits[name]++
	f.mu.Unlock()
	if code := f.chunkStatus[name]; code != 0 {
		w.WriteHeader(code)
		return
	}
	w.Write(bytes.Repeat(mp3.SilentBytes, framesPerChunk))
}

func newTestService(t *testing.T, trim bool) (*Service, string) {
	cfg := config.Default()
	cfg.Engine.StagingDir = t.TempDir()
	cfg.Engine.TrimHead = trim
	cfg.Engine.RequestTimeoutSeconds = 30
	return NewFromConfig(&cfg, logger.Nop()), cfg.Engine.StagingDir
}

func frame() time.Duration {
	return mp3.SilentFrame.Duration()
}

func TestCut_EndToEnd(t *testing.T) {
	site := newFakeRadiocut(t)
	svc, staging := newTestService(t, false)
	dst := filepath.Join(t.TempDir(), "cut.mp3")

	res, err := svc.Cut(context.Background(), metadata.Reference{URL: site.URL + "/audiocut/test/"}, dst)
	require.NoError(t, err)

	assert.Equal(t, domain.CutMetadata{Station: "abc", BaseURL: site.URL, StartSeconds: 123456, DurationSeconds: 30}, res.Metadata)
	assert.Equal(t, 0, res.Window.First)
	assert.Equal(t, 2, res.Window.Last)
	assert.InDelta(t, 6.0, res.Window.TrimOffset, 1e-9)
	assert.Equal(t, 2, res.Clip.Segments)
	assert.GreaterOrEqual(t, res.Clip.Duration, 30*time.Second)
	assert.NotEmpty(t, res.RequestID)

	assert.Equal(t, 1, site.chunkHits["123450.mp3"])
	assert.Equal(t, 1, site.chunkHits["123475.mp3"])
	assert.Zero(t, site.chunkHits["123500.mp3"])

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, res.Clip.Size, info.Size())
	assert.Equal(t, int64(2*framesPerChunk*len(mp3.SilentBytes)), info.Size())

	entries, err := os.ReadDir(staging)
	require.NoError(t, err)
	assert.Empty(t, entries, "staged chunks must be removed")
}

func TestCut_TrimHead(t *testing.T) {
	site := newFakeRadiocut(t)
	svc, _ := newTestService(t, true)
	dst := filepath.Join(t.TempDir(), "cut.mp3")

	res, err := svc.Cut(context.Background(), metadata.Reference{URL: site.URL + "/audiocut/test/"}, dst)
	require.NoError(t, err)

	// 6 seconds of head audio is 229.7 frames, rounded up to whole frames
	dropped := 230
	assert.Equal(t, time.Duration(2*framesPerChunk-dropped)*frame(), res.Clip.Duration)
	assert.Equal(t, int64((2*framesPerChunk-dropped)*len(mp3.SilentBytes)), res.Clip.Size)
}

func TestCut_ManifestNotFound(t *testing.T) {
	site := newFakeRadiocut(t)
	site.manifestStatus = http.StatusNotFound
	svc, _ := newTestService(t, false)
	dir := t.TempDir()
	dst := filepath.Join(dir, "cut.mp3")

	_, err := svc.Cut(context.Background(), metadata.Reference{URL: site.URL + "/audiocut/test/"}, dst)
	assert.ErrorIs(t, err, domain.ErrManifestFetch)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCut_ChunkFailureLeavesNoOutput(t *testing.T) {
	site := newFakeRadiocut(t)
	site.chunkStatus["123475.mp3"] = http.StatusNotFound
	svc, staging := newTestService(t, false)
	dir := t.TempDir()
	dst := filepath.Join(dir, "cut.mp3")

	_, err := svc.Cut(context.Background(), metadata.Reference{URL: site.URL + "/audiocut/test/"}, dst)

	var dlErr *domain.ChunkDownloadError
	require.True(t, errors.As(err, &dlErr))
	assert.Equal(t, http.StatusNotFound, dlErr.StatusCode)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = os.ReadDir(staging)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestJoin_ConcatenatesCuts(t *testing.T) {
	site := newFakeRadiocut(t)
	svc, _ := newTestService(t, false)
	dst := filepath.Join(t.TempDir(), "joined.mp3")

	ref := metadata.Reference{URL: site.URL + "/audiocut/test/"}
	results, err := svc.Join(context.Background(), []metadata.Reference{ref, ref.WithDuration(60)}, dst)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// the second cut ends at 123516 and needs a third chunk
	assert.Equal(t, 2, results[0].Clip.Segments)
	assert.Equal(t, 3, results[1].Clip.Segments)

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, results[0].Clip.Size+results[1].Clip.Size, info.Size())
	assert.Equal(t, results[0].RequestID, results[1].RequestID)
}

func TestCutAll(t *testing.T) {
	site := newFakeRadiocut(t)
	svc, _ := newTestService(t, false)
	dir := t.TempDir()

	ref := metadata.Reference{URL: site.URL + "/audiocut/test/"}
	dsts := []string{filepath.Join(dir, "a.mp3"), filepath.Join(dir, "b.mp3")}
	results, err := svc.CutAll(context.Background(), []metadata.Reference{ref, ref}, dsts)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.NotEqual(t, results[0].RequestID, results[1].RequestID)

	for _, dst := range dsts {
		assert.FileExists(t, dst)
	}

	_, err = svc.CutAll(context.Background(), []metadata.Reference{ref}, dsts)
	assert.Error(t, err)
}

type stubLister struct{ urls []string }

func (s stubLister) PodcastCutURLs(context.Context, string) ([]string, error) {
	return s.urls, nil
}

func TestExpand(t *testing.T) {
	svc := New(nil, nil, nil, stubLister{urls: []string{"http://x/audiocut/a/", "http://x/audiocut/b/"}}, Config{}, nil)

	ref := metadata.Reference{URL: "http://x/audiocut/a/", Kind: metadata.KindAudiocut}
	refs, err := svc.Expand(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, []metadata.Reference{ref}, refs)

	podcast := metadata.Reference{URL: "http://x/pdc/a/b", Kind: metadata.KindPodcast}.WithDuration(10)
	refs, err = svc.Expand(context.Background(), podcast)
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "http://x/audiocut/b/", refs[1].URL)
	assert.Equal(t, 10.0, *refs[1].Duration)
}

func TestCut_StaticResolverSkipsPage(t *testing.T) {
	site := newFakeRadiocut(t)
	svc, _ := newTestService(t, false)
	svc = svc.WithResolver(metadata.StaticResolver{Metadata: domain.CutMetadata{
		Station:         "abc",
		BaseURL:         site.URL,
		StartSeconds:    123456,
		DurationSeconds: 30,
	}})
	dst := filepath.Join(t.TempDir(), "tuple.mp3")

	res, err := svc.Cut(context.Background(), metadata.Reference{URL: "abc@123456"}, dst)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Window.Len())
	assert.FileExists(t, dst)
}
