package feed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radiocut/pkg/show"
)

func testShow() show.Show {
	return show.Show{
		ID:          "lavenganza",
		Name:        "La venganza será terrible",
		Description: "Dolina",
		ImageURL:    "http://example.com/lv.jpg",
		Location:    time.FixedZone("-03", -3*3600),
	}
}

func TestFileName(t *testing.T) {
	start := time.Date(2024, 3, 1, 22, 0, 0, 0, time.UTC)
	assert.Equal(t, "lavenganza_2024-03-01.mp3", FileName("lavenganza", start))
}

func TestWriteAndRead(t *testing.T) {
	dir := t.TempDir()
	s := testShow()

	files := map[string]int{
		"lavenganza_2024-03-01.mp3": 100,
		"lavenganza_2024-03-04.mp3": 250,
		"other_2024-03-01.mp3":      10,
		"lavenganza_notes.mp3":      5,
	}
	for name, size := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), make([]byte, size), 0o644))
	}

	path, err := Write(s, dir, "https://pod.example/")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "lavenganza.xml"), path)

	entries, err := NewReader().ReadFile(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	newest := entries[0]
	assert.Equal(t, "lavenganza_2024-03-04", newest.GUID)
	assert.Equal(t, "Programa del 04/03/2024", newest.Title)
	assert.Equal(t, "https://pod.example/lavenganza_2024-03-04.mp3", newest.EnclosureURL)
	assert.Equal(t, "250", newest.Length)
	assert.True(t, newest.Published.Equal(time.Date(2024, 3, 4, 0, 0, 0, 0, s.Location)))

	assert.Equal(t, "lavenganza_2024-03-01", entries[1].GUID)
}

func TestEpisodes_EmptyDir(t *testing.T) {
	episodes, err := Episodes(t.TempDir(), "x", time.UTC)
	require.NoError(t, err)
	assert.Empty(t, episodes)
}
