// Package token derives the obfuscated manifest tokens used by the radiocut archive.
package token

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"radiocut/pkg/domain"
)

const (
	prefix    = "andaa"
	suffix    = "cagar"
	separator = "|"

	folderDigits = 6
)

var (
	encodeReplacer = strings.NewReplacer("=", "~", "+", "-", "/", "_")
	decodeReplacer = strings.NewReplacer("~", "=", "-", "+", "_", "/")
)

// Derive returns the manifest token for station and time folder.
func Derive(station string, folder int) (string, error) {
	if err := ValidateStation(station); err != nil {
		return "", err
	}
	raw := prefix + station + separator + strconv.Itoa(folder) + suffix
	return encodeReplacer.Replace(base64.StdEncoding.EncodeToString([]byte(raw))), nil
}

// ManifestURL returns the manifest location for one time folder.
func ManifestURL(baseURL, station string, folder int) (string, error) {
	tok, err := Derive(station, folder)
	if err != nil {
		return "", err
	}
	return baseURL + "/server/gec/www/" + tok + "/", nil
}

// Decode reverses Derive.
func Decode(tok string) (string, int, error) {
	raw, err := base64.StdEncoding.DecodeString(decodeReplacer.Replace(tok))
	if err != nil {
		return "", 0, fmt.Errorf("decode token: %w", err)
	}

	s := string(raw)
	if !strings.HasPrefix(s, prefix) || !strings.HasSuffix(s, suffix) || len(s) < len(prefix)+len(suffix) {
		return "", 0, fmt.Errorf("decode token: bad envelope %q", s)
	}
	body := s[len(prefix) : len(s)-len(suffix)]

	// The station cannot contain the separator, so the last one splits the fields.
	idx := strings.LastIndex(body, separator)
	if idx < 0 {
		return "", 0, fmt.Errorf("decode token: missing separator in %q", s)
	}
	station := body[:idx]
	folder, err := strconv.Atoi(body[idx+1:])
	if err != nil {
		return "", 0, fmt.Errorf("decode token: folder: %w", err)
	}
	if err := ValidateStation(station); err != nil {
		return "", 0, err
	}
	return station, folder, nil
}

// TimeFolder returns the leading six digits of the integer part of startSeconds.
func TimeFolder(startSeconds float64) int {
	digits := strconv.FormatInt(int64(startSeconds), 10)
	if len(digits) > folderDigits {
		digits = digits[:folderDigits]
	}
	folder, _ := strconv.Atoi(digits)
	return folder
}

// ValidateStation rejects ids that cannot be encoded as an ASCII token field.
func ValidateStation(station string) error {
	if station == "" {
		return fmt.Errorf("%w: empty", domain.ErrInvalidStationID)
	}
	for i := 0; i < len(station); i++ {
		c := station[i]
		if c < 0x20 || c > 0x7e || c == '|' {
			return fmt.Errorf("%w: %q", domain.ErrInvalidStationID, station)
		}
	}
	return nil
}
