// Package imagesearch finds pictures of heritage sites on Wikimedia Commons.
package imagesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

const DefaultEndpoint = "https://commons.wikimedia.org/w/api.php"

// CommonsClient searches the File namespace of a MediaWiki API.
type CommonsClient struct {
	endpoint  string
	userAgent string
	client    *http.Client
	cache     *cache.Cache
}

func NewCommonsClient(endpoint, userAgent string, timeout, cacheTTL time.Duration) *CommonsClient {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CommonsClient{
		endpoint:  endpoint,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
		cache:     cache.New(cacheTTL, 10*time.Minute),
	}
}

type commonsResponse struct {
	Query struct {
		Pages map[string]struct {
			Index     int `json:"index"`
			ImageInfo []struct {
				URL  string `json:"url"`
				Mime string `json:"mime"`
			} `json:"imageinfo"`
		} `json:"pages"`
	} `json:"query"`
}

// Search returns up to n image URLs in search rank order. An empty result is
// not an error.
func (c *CommonsClient) Search(ctx context.Context, query string, n int) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" || n <= 0 {
		return nil, nil
	}

	key := strings.ToLower(query) + "|" + strconv.Itoa(n)
	if v, ok := c.cache.Get(key); ok {
		return v.([]string), nil
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("generator", "search")
	params.Set("gsrsearch", query+" filetype:bitmap")
	params.Set("gsrnamespace", "6")
	params.Set("gsrlimit", strconv.Itoa(n))
	params.Set("prop", "imageinfo")
	params.Set("iiprop", "url|mime")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("image search error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var out commonsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode image search response: %w", err)
	}

	type ranked struct {
		index int
		url   string
	}
	var hits []ranked
	for _, p := range out.Query.Pages {
		if len(p.ImageInfo) == 0 || p.ImageInfo[0].URL == "" {
			continue
		}
		if mime := p.ImageInfo[0].Mime; mime != "" && !strings.HasPrefix(mime, "image/") {
			continue
		}
		hits = append(hits, ranked{index: p.Index, url: p.ImageInfo[0].URL})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].index < hits[j].index })

	urls := make([]string, 0, n)
	for _, h := range hits {
		if len(urls) == n {
			break
		}
		urls = append(urls, h.url)
	}

	c.cache.SetDefault(key, urls)
	return urls, nil
}
