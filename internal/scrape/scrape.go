// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scrape fetches page metadata (title, description, image) for a
// URL, with a 24-hour cache keyed by the full URL. Unlike trend
// resolution, this pipeline is allowed to fail outward: when extraction
// yields nothing usable it returns ErrManualEntry and the caller falls
// back to manual input. There is no synthetic-content tier here.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/pdiddy/trend-engine/pkg/types"
)

// ErrManualEntry signals that no metadata could be extracted and the
// caller should collect the details manually.
var ErrManualEntry = errors.New("metadata extraction failed: enter details manually")

// MetadataCache is the store surface the scraper needs.
type MetadataCache interface {
	GetMetadata(ctx context.Context, url string) (*types.PageMetadata, error)
	PutMetadata(ctx context.Context, m types.PageMetadata) error
}

// Scraper fetches and caches page metadata.
type Scraper struct {
	Client *http.Client
	Cache  MetadataCache
	Config types.ScrapeConfig

	// TTL is the cache freshness window (default types.TTLMetadata).
	TTL time.Duration

	// Now is the clock (default time.Now). Tests pin it.
	Now func() time.Time

	// Log receives cache-write warnings (default io.Discard).
	Log io.Writer
}

// Fetch returns metadata for the URL, serving a fresh cache entry when one
// exists. Transport errors, non-2xx statuses, and pages without a usable
// title all wrap ErrManualEntry.
func (s *Scraper) Fetch(ctx context.Context, pageURL string) (types.PageMetadata, error) {
	now := s.now()
	ttl := s.TTL
	if ttl <= 0 {
		ttl = types.TTLMetadata
	}

	if s.Cache != nil {
		cached, err := s.Cache.GetMetadata(ctx, pageURL)
		if err != nil {
			fmt.Fprintf(s.log(), "warning: metadata cache read for %q failed: %v\n", pageURL, err)
		}
		if cached != nil && cached.Fresh(now, ttl) {
			return *cached, nil
		}
	}

	meta, err := s.extract(ctx, pageURL)
	if err != nil {
		return types.PageMetadata{}, err
	}
	meta.FetchedAt = now

	if s.Cache != nil {
		if err := s.Cache.PutMetadata(ctx, meta); err != nil {
			fmt.Fprintf(s.log(), "warning: caching metadata for %q failed: %v\n", pageURL, err)
		}
	}
	return meta, nil
}

func (s *Scraper) extract(ctx context.Context, pageURL string) (types.PageMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return types.PageMetadata{}, fmt.Errorf("%w: invalid URL %q: %v", ErrManualEntry, pageURL, err)
	}
	if s.Config.UserAgent != "" {
		req.Header.Set("User-Agent", s.Config.UserAgent)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return types.PageMetadata{}, fmt.Errorf("%w: fetching %q: %v", ErrManualEntry, pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return types.PageMetadata{}, fmt.Errorf("%w: %q returned HTTP %d", ErrManualEntry, pageURL, resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return types.PageMetadata{}, fmt.Errorf("%w: parsing %q: %v", ErrManualEntry, pageURL, err)
	}

	meta := types.PageMetadata{URL: pageURL}
	walk(doc, &meta)

	if meta.Title == "" {
		return types.PageMetadata{}, fmt.Errorf("%w: no title found at %q", ErrManualEntry, pageURL)
	}
	return meta, nil
}

// walk collects Open Graph tags, falling back to the document title.
func walk(n *html.Node, meta *types.PageMetadata) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "meta":
			prop, content := metaAttrs(n)
			switch prop {
			case "og:title":
				meta.Title = content
			case "og:description", "description":
				if meta.Description == "" {
					meta.Description = content
				}
			case "og:image":
				meta.ImageURL = content
			}
		case "title":
			if meta.Title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				meta.Title = strings.TrimSpace(n.FirstChild.Data)
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, meta)
	}
}

// metaAttrs returns the property (or name) and content of a meta element.
func metaAttrs(n *html.Node) (prop, content string) {
	for _, attr := range n.Attr {
		switch attr.Key {
		case "property", "name":
			if prop == "" {
				prop = attr.Val
			}
		case "content":
			content = attr.Val
		}
	}
	return prop, content
}

func (s *Scraper) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Scraper) log() io.Writer {
	if s.Log != nil {
		return s.Log
	}
	return io.Discard
}
