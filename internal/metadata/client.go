// Package metadata talks to an external book-search API (Google Books
// volume shape). All lookups are best-effort: callers are expected to
// degrade on error rather than surface failures to the user.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"leafnote/pkg/utils"
)

const defaultPageSize = 20

// Client queries the books API with a shared rate limit so a burst of
// enrichment lookups cannot hammer the upstream.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client

	limiter *rate.Limiter
}

func NewClient(cfg utils.MetadataConfig) *Client {
	return &Client{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		HTTP:    &http.Client{Timeout: 12 * time.Second},
		// one request per second, small burst for interactive adds
		limiter: rate.NewLimiter(rate.Every(time.Second), 3),
	}
}

// Search runs one bounded lookup. limit is clamped to the API page size.
func (c *Client) Search(ctx context.Context, q Query, limit int) ([]Volume, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	if limit <= 0 || limit > defaultPageSize {
		limit = defaultPageSize
	}

	u, err := url.Parse(c.BaseURL + "/volumes")
	if err != nil {
		return nil, fmt.Errorf("books api: parse url: %w", err)
	}
	params := u.Query()
	params.Set("q", q.Encode())
	params.Set("maxResults", fmt.Sprintf("%d", limit))
	params.Set("printType", "books")
	if c.APIKey != "" {
		params.Set("key", c.APIKey)
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("books api: build request: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("books api: request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("books api: status %d", resp.StatusCode)
	}

	var vr volumesResponse
	if err := json.Unmarshal(body, &vr); err != nil {
		return nil, fmt.Errorf("books api: decode: %w", err)
	}

	out := make([]Volume, 0, len(vr.Items))
	for _, item := range vr.Items {
		if item.ID == "" || item.VolumeInfo.Title == "" {
			continue
		}
		out = append(out, Volume{
			ID:          item.ID,
			Title:       item.VolumeInfo.Title,
			Subtitle:    item.VolumeInfo.Subtitle,
			Authors:     item.VolumeInfo.Authors,
			Description: item.VolumeInfo.Description,
			Language:    item.VolumeInfo.Language,
			Categories:  item.VolumeInfo.Categories,
		})
	}
	return out, nil
}
