// Package manifest fetches the archive's time-folder manifests and accumulates
// chunk listings until a requested interval is covered.
package manifest

import (
	"context"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"

	"radiocut/pkg/domain"
	"radiocut/pkg/httpclient"
)

// PageFetcher retrieves one manifest page
type PageFetcher interface {
	FetchPage(ctx context.Context, url string, folder int) (domain.ManifestPage, error)
}

// Client fetches manifest pages over HTTP
type Client struct {
	http *httpclient.HTTPClient
}

// NewClient creates a manifest client. The given HTTP client should use the
// manifest profile.
func NewClient(client *httpclient.HTTPClient) *Client {
	return &Client{http: client}
}

type pageJSON struct {
	BaseURL string      `json:"baseURL"`
	Chunks  []chunkJSON `json:"chunks"`
}

type chunkJSON struct {
	Start    float64 `json:"start"`
	Length   float64 `json:"length"`
	Filename string  `json:"filename"`
	BaseURL  string  `json:"base_url"`
}

// FetchPage downloads the manifest at url and returns the page stored under folder.
func (c *Client) FetchPage(ctx context.Context, url string, folder int) (domain.ManifestPage, error) {
	body, err := c.http.GetBody(ctx, url)
	if err != nil {
		return domain.ManifestPage{}, fmt.Errorf("%w: %s: %v", domain.ErrManifestFetch, url, err)
	}

	page, err := ParsePage(body, folder)
	if err != nil {
		return domain.ManifestPage{}, fmt.Errorf("%s: %w", url, err)
	}
	return page, nil
}

// ParsePage decodes a manifest document. The document is an object keyed by
// the folder number; chunks inherit the page base URL unless they carry their own.
func ParsePage(body []byte, folder int) (domain.ManifestPage, error) {
	if !gjson.ValidBytes(body) {
		return domain.ManifestPage{}, fmt.Errorf("%w: malformed JSON", domain.ErrManifestFetch)
	}

	key := strconv.Itoa(folder)
	entry := gjson.GetBytes(body, gjson.Escape(key))
	if !entry.Exists() || !entry.IsObject() {
		return domain.ManifestPage{}, fmt.Errorf("%w: folder %s not present", domain.ErrManifestFetch, key)
	}

	var raw pageJSON
	if err := json.Unmarshal([]byte(entry.Raw), &raw); err != nil {
		return domain.ManifestPage{}, fmt.Errorf("%w: decode folder %s: %v", domain.ErrManifestFetch, key, err)
	}

	page := domain.ManifestPage{
		Folder:  folder,
		BaseURL: raw.BaseURL,
		Chunks:  make([]domain.Chunk, 0, len(raw.Chunks)),
	}
	for _, ch := range raw.Chunks {
		base := ch.BaseURL
		if base == "" {
			base = raw.BaseURL
		}
		page.Chunks = append(page.Chunks, domain.Chunk{
			Start:    ch.Start,
			Length:   ch.Length,
			Filename: ch.Filename,
			BaseURL:  base,
		})
	}
	return page, nil
}
