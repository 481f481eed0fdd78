package oembed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Video is the display metadata a resolver returns for a video URL. Fields
// the provider omits stay empty strings.
type Video struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// Resolver translates a video URL into display metadata.
type Resolver interface {
	Resolve(ctx context.Context, videoURL string) (Video, error)
}

// Client resolves metadata through an oEmbed endpoint such as
// https://www.youtube.com/oembed.
type Client struct {
	endpoint string
	http     *http.Client
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

func (c *Client) Resolve(ctx context.Context, videoURL string) (Video, error) {
	reqURL := fmt.Sprintf("%s?url=%s&format=json", c.endpoint, url.QueryEscape(videoURL))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Video{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Video{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Video{}, fmt.Errorf("oembed: status %d for %s", resp.StatusCode, videoURL)
	}

	// A 2xx with an empty or malformed body degrades to empty fields rather
	// than failing the ingest.
	var v Video
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return Video{}, nil
	}
	return v, nil
}
