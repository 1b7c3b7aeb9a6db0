package token

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radiocut/pkg/domain"
)

func TestDerive_KnownValue(t *testing.T) {
	tok, err := Derive("nacional870", 149887)
	require.NoError(t, err)

	want := base64.StdEncoding.EncodeToString([]byte("andaanacional870|149887cagar"))
	want = strings.NewReplacer("=", "~", "+", "-", "/", "_").Replace(want)
	assert.Equal(t, want, tok)
	assert.NotContains(t, tok, "=")
	assert.NotContains(t, tok, "+")
	assert.NotContains(t, tok, "/")
}

func TestManifestURL(t *testing.T) {
	url, err := ManifestURL("https://chunks.example", "la2x4", 150000)
	require.NoError(t, err)

	tok, _ := Derive("la2x4", 150000)
	assert.Equal(t, "https://chunks.example/server/gec/www/"+tok+"/", url)
}

func TestDeriveDecode_RoundTrip(t *testing.T) {
	cases := []struct {
		station string
		folder  int
	}{
		{"nacional870", 149887},
		{"a", 0},
		{"radio-con-vos", 999999},
		{"fm 89.9?", 123456},
		{"~~~>>>", 42},
	}

	for _, tc := range cases {
		t.Run(tc.station, func(t *testing.T) {
			tok, err := Derive(tc.station, tc.folder)
			require.NoError(t, err)

			station, folder, err := Decode(tok)
			require.NoError(t, err)
			assert.Equal(t, tc.station, station)
			assert.Equal(t, tc.folder, folder)
		})
	}
}

func TestDerive_InvalidStation(t *testing.T) {
	for _, station := range []string{"", "caña", "tab\there", "a|b"} {
		_, err := Derive(station, 1)
		assert.ErrorIs(t, err, domain.ErrInvalidStationID, "station %q", station)
	}
}

func TestDecode_Garbage(t *testing.T) {
	_, _, err := Decode("!!!")
	assert.Error(t, err)

	tok := base64.StdEncoding.EncodeToString([]byte("hello world"))
	_, _, err = Decode(tok)
	assert.Error(t, err)
}

func TestTimeFolder(t *testing.T) {
	assert.Equal(t, 149887, TimeFolder(1498870800))
	assert.Equal(t, 149887, TimeFolder(1498870800.75))
	assert.Equal(t, 1234, TimeFolder(1234))
	assert.Equal(t, 0, TimeFolder(0))
}
