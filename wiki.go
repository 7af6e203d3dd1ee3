package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ErrNoImage is returned by an ImageSource when a search term has no image.
var ErrNoImage = errors.New("no image found")

// ImageSource looks up a thumbnail URL for a search term.
type ImageSource interface {
	Lookup(ctx context.Context, term string) (string, error)
}

const userAgent = "f1backend/1.0 (driver portrait lookup)"

// wikiSource queries the MediaWiki search API for the best page match and
// returns its thumbnail.
type wikiSource struct {
	endpoint  string
	client    *http.Client
	thumbSize int
}

func newWikiSource(endpoint string, client *http.Client) *wikiSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &wikiSource{endpoint: endpoint, client: client, thumbSize: 400}
}

type wikiResponse struct {
	Query *struct {
		Pages map[string]struct {
			Title     string `json:"title"`
			Index     int    `json:"index"`
			Thumbnail *struct {
				Source string `json:"source"`
			} `json:"thumbnail"`
		} `json:"pages"`
	} `json:"query"`
}

func (w *wikiSource) Lookup(ctx context.Context, term string) (string, error) {
	q := url.Values{}
	q.Set("action", "query")
	q.Set("format", "json")
	q.Set("generator", "search")
	q.Set("gsrsearch", term)
	q.Set("gsrlimit", "1")
	q.Set("prop", "pageimages")
	q.Set("piprop", "thumbnail")
	q.Set("pithumbsize", strconv.Itoa(w.thumbSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build wiki request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("wiki lookup %q: %w", term, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("wiki lookup %q: unexpected status %d", term, resp.StatusCode)
	}

	var body wikiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode wiki response: %w", err)
	}

	if body.Query == nil {
		return "", ErrNoImage
	}

	// Pages is keyed by page id, so rank by search index.
	best, bestIndex := "", 0
	for _, p := range body.Query.Pages {
		if p.Thumbnail == nil || p.Thumbnail.Source == "" {
			continue
		}
		if best == "" || p.Index < bestIndex {
			best, bestIndex = p.Thumbnail.Source, p.Index
		}
	}
	if best == "" {
		return "", ErrNoImage
	}
	return best, nil
}
