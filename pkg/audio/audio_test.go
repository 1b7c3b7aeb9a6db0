package audio

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tcolgate/mp3"
)

type fileSource struct {
	path   string
	length time.Duration
}

func (f fileSource) Open() (io.ReadCloser, error) { return os.Open(f.path) }
func (f fileSource) Length() time.Duration        { return f.length }

func silence(frames int) []byte {
	return bytes.Repeat(mp3.SilentBytes, frames)
}

func frameDuration() time.Duration {
	return mp3.SilentFrame.Duration()
}

func writeSources(t *testing.T, frameCounts ...int) []Source {
	dir := t.TempDir()
	var sources []Source
	for i, n := range frameCounts {
		path := filepath.Join(dir, "chunk"+string(rune('a'+i))+".mp3")
		require.NoError(t, os.WriteFile(path, silence(n), 0o644))
		sources = append(sources, fileSource{path: path, length: time.Duration(n) * frameDuration()})
	}
	return sources
}

func TestDuration(t *testing.T) {
	d, err := Duration(bytes.NewReader(silence(40)))
	require.NoError(t, err)
	assert.Equal(t, 40*frameDuration(), d)
}

func TestDuration_TruncatedTail(t *testing.T) {
	data := silence(3)
	data = append(data, mp3.SilentBytes[:len(mp3.SilentBytes)/2]...)

	d, err := Duration(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 3*frameDuration(), d)
}

func TestAssemble_ConcatenatesInOrder(t *testing.T) {
	sources := writeSources(t, 5, 7, 3)

	var out bytes.Buffer
	clip, err := Assemble(sources, &out)
	require.NoError(t, err)

	assert.Equal(t, 3, clip.Segments)
	assert.Equal(t, int64(out.Len()), clip.Size)
	assert.Equal(t, 15*frameDuration(), clip.Duration)
	assert.Equal(t, silence(15), out.Bytes())

	d, err := Duration(&out)
	require.NoError(t, err)
	assert.Equal(t, clip.Duration, d)
}

func TestAssemble_Idempotent(t *testing.T) {
	sources := writeSources(t, 4, 4)

	var first, second bytes.Buffer
	clip1, err := Assemble(sources, &first)
	require.NoError(t, err)
	clip2, err := Assemble(sources, &second)
	require.NoError(t, err)

	assert.Equal(t, clip1, clip2)
	assert.Equal(t, first.Bytes(), second.Bytes())
}

func TestAssemble_MissingSource(t *testing.T) {
	sources := writeSources(t, 2)
	sources = append(sources, fileSource{path: filepath.Join(t.TempDir(), "gone.mp3")})

	_, err := Assemble(sources, io.Discard)
	assert.Error(t, err)
}

func TestTrimHead(t *testing.T) {
	var out bytes.Buffer
	offset := 10*frameDuration() - time.Millisecond

	dropped, err := TrimHead(bytes.NewReader(silence(30)), &out, offset)
	require.NoError(t, err)

	assert.Equal(t, 10*frameDuration(), dropped)
	assert.Equal(t, silence(20), out.Bytes())
}

func TestTrimHead_ZeroOffsetKeepsEverything(t *testing.T) {
	var out bytes.Buffer
	dropped, err := TrimHead(bytes.NewReader(silence(6)), &out, 0)
	require.NoError(t, err)
	assert.Zero(t, dropped)
	assert.Equal(t, silence(6), out.Bytes())
}
