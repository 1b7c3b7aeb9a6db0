package show

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validShows = `
lavenganza:
  name: La venganza será terrible
  description: Dolina
  station: nacional870
  cron: "0 0 * * 1-5"
  timezone: America/Argentina/Buenos_Aires
  duration: 7200
  image_url: http://example.com/lv.jpg
metro951:
  name: Metro
  description: Morning show
  station: metro951
  cron: "0 9 * * *"
  timezone: UTC
  duration: 3600
  image_url: http://example.com/m.jpg
`

func TestParse(t *testing.T) {
	shows, err := Parse([]byte(validShows))
	require.NoError(t, err)
	require.Len(t, shows, 2)

	lv := shows[0]
	assert.Equal(t, "lavenganza", lv.ID)
	assert.Equal(t, "nacional870", lv.Station)
	assert.Equal(t, 2*time.Hour, lv.Duration)
	assert.Equal(t, "America/Argentina/Buenos_Aires", lv.Location.String())
	require.NotNil(t, lv.Schedule)

	assert.Equal(t, "metro951", shows[1].ID)
}

func TestParse_AggregatesProblems(t *testing.T) {
	doc := `
bad-id:
  name: x
  description: x
  station: x
  cron: "0 0 * * *"
  timezone: UTC
  duration: 10
  image_url: x
incomplete:
  name: x
  station: x
broken:
  name: x
  description: x
  station: x
  cron: "not a cron"
  timezone: Mars/Olympus
  duration: 0
  image_url: x
`
	_, err := Parse([]byte(doc))

	var verr *ConfigValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Problems, 5)

	msg := err.Error()
	assert.Contains(t, msg, `"bad-id"`)
	assert.Contains(t, msg, "missing keys [cron description duration image_url timezone] for show id incomplete")
	assert.Contains(t, msg, "Mars/Olympus")
	assert.Contains(t, msg, "not a cron")
	assert.Contains(t, msg, "duration must be positive")
}

func TestParse_NotAMap(t *testing.T) {
	_, err := Parse([]byte("- a\n- b\n"))
	var verr *ConfigValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestLoadAndSelect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shows.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validShows), 0o644))

	shows, err := Load(path)
	require.NoError(t, err)

	selected, err := Select(shows, "metro951")
	require.NoError(t, err)
	require.Len(t, selected, 1)
	assert.Equal(t, "metro951", selected[0].ID)

	all, err := Select(shows, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = Select(shows, "nope")
	assert.ErrorIs(t, err, ErrUnknownShow)
	assert.True(t, strings.Contains(err.Error(), "nope"))
}
