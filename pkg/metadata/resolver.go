package metadata

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"radiocut/pkg/domain"
	"radiocut/pkg/httpclient"
	"radiocut/pkg/logger"
)

// Resolver turns a reference into the station/time tuple of a cut.
type Resolver interface {
	Resolve(ctx context.Context, ref Reference) (domain.CutMetadata, error)
}

// StaticResolver returns a fixed tuple, used when the caller already knows it.
type StaticResolver struct {
	Metadata domain.CutMetadata
}

func (s StaticResolver) Resolve(_ context.Context, ref Reference) (domain.CutMetadata, error) {
	meta := s.Metadata
	if ref.Duration != nil {
		meta.DurationSeconds = *ref.Duration
	}
	if meta.Station == "" || meta.BaseURL == "" {
		return domain.CutMetadata{}, fmt.Errorf("%w: static metadata is incomplete", domain.ErrMetadataUnavailable)
	}
	return meta, nil
}

// PageResolver scrapes the metadata list radiocut embeds in audiocut and station pages
type PageResolver struct {
	client *httpclient.HTTPClient
	log    logger.Logger
}

// NewPageResolver creates a resolver fetching pages with client
func NewPageResolver(client *httpclient.HTTPClient, log logger.Logger) *PageResolver {
	if log == nil {
		log = logger.Nop()
	}
	return &PageResolver{client: client, log: log}
}

// Resolve implements Resolver
func (r *PageResolver) Resolve(ctx context.Context, ref Reference) (domain.CutMetadata, error) {
	r.log.Debugf("Retrieving %s", ref.URL)

	doc, err := r.fetchDocument(ctx, ref.URL)
	if err != nil {
		return domain.CutMetadata{}, fmt.Errorf("%w: %v", domain.ErrMetadataUnavailable, err)
	}

	meta, err := ExtractMetadata(doc, ref.Duration)
	if err != nil {
		return domain.CutMetadata{}, fmt.Errorf("%s: %w", ref.URL, err)
	}
	return meta, nil
}

// PodcastCutURLs lists the audiocut links of a podcast page as absolute URLs
func (r *PageResolver) PodcastCutURLs(ctx context.Context, pageURL string) ([]string, error) {
	doc, err := r.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch podcast page: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid podcast URL: %w", err)
	}

	var urls []string
	doc.Find(".cut_brief h4 a").Each(func(i int, link *goquery.Selection) {
		href, exists := link.Attr("href")
		if !exists || strings.TrimSpace(href) == "" {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			r.log.Warnf("Skipping malformed cut link %q: %v", href, err)
			return
		}
		urls = append(urls, base.ResolveReference(ref).String())
	})

	if len(urls) == 0 {
		return nil, fmt.Errorf("no cuts found in podcast page %s", pageURL)
	}
	return urls, nil
}

func (r *PageResolver) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	body, err := r.client.GetBody(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// ExtractMetadata reads the li.audio_* fields of a cut page. A non-nil
// duration wins over the page value.
func ExtractMetadata(doc *goquery.Document, duration *float64) (domain.CutMetadata, error) {
	field := func(name string) string {
		return strings.TrimSpace(doc.Find("li.audio_" + name).First().Text())
	}

	meta := domain.CutMetadata{
		Station: field("station"),
		BaseURL: strings.TrimSuffix(field("base_url"), "/"),
	}
	if meta.Station == "" {
		return domain.CutMetadata{}, fmt.Errorf("%w: missing station", domain.ErrMetadataUnavailable)
	}
	if meta.BaseURL == "" {
		return domain.CutMetadata{}, fmt.Errorf("%w: missing base URL", domain.ErrMetadataUnavailable)
	}

	seconds, err := parseSeconds(field("seconds"))
	if err != nil {
		return domain.CutMetadata{}, fmt.Errorf("%w: start seconds: %v", domain.ErrMetadataUnavailable, err)
	}
	meta.StartSeconds = seconds

	if duration != nil {
		meta.DurationSeconds = *duration
	} else {
		d, err := parseSeconds(field("duration"))
		if err != nil {
			return domain.CutMetadata{}, fmt.Errorf("%w: duration: %v", domain.ErrMetadataUnavailable, err)
		}
		meta.DurationSeconds = d
	}

	return meta, nil
}

func parseSeconds(text string) (float64, error) {
	if text == "" {
		return 0, fmt.Errorf("field is empty")
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("negative value %v", v)
	}
	return v, nil
}
