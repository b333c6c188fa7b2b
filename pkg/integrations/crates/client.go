package crates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/depman/pkg/cache"
	"github.com/matzehuels/depman/pkg/integrations"
)

// DefaultBaseURL is the public crates.io API root.
const DefaultBaseURL = "https://crates.io/api/v1"

// CrateInfo holds metadata for a Rust crate from crates.io.
type CrateInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	License     string   `json:"license,omitempty"`
	Repository  string   `json:"repository,omitempty"`
	HomePage    string   `json:"homepage,omitempty"`
	PublishedBy string   `json:"published_by,omitempty"` // publisher of the newest version
	MaxVersion  string   `json:"max_version,omitempty"`
	Versions    []string `json:"versions"` // version numbers as listed by the API
}

// SearchHit is one entry of a crates.io search.
type SearchHit struct {
	Name    string
	Version string
}

// Client provides access to the crates.io package registry API.
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a crates.io client for the API at baseURL, caching crate
// documents in backend for ttl.
func NewClient(baseURL string, backend cache.Cache, ttl time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	headers := map[string]string{"User-Agent": integrations.DefaultUserAgent}
	return &Client{
		Client:  integrations.NewClient(backend, "crates:", ttl, headers),
		baseURL: integrations.TrimBaseURL(baseURL),
	}
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchCrate retrieves metadata for a crate.
//
// The crate parameter must match the published crate name. If refresh is
// true, the cache is bypassed.
//
// Returns:
//   - [integrations.ErrNotFound] if the crate doesn't exist
//   - [integrations.ErrNetwork] for HTTP failures (timeout, 5xx, etc.)
//   - [integrations.ErrDecode] for malformed responses
func (c *Client) FetchCrate(ctx context.Context, crate string, refresh bool) (*CrateInfo, error) {
	var info CrateInfo
	err := c.Cached(ctx, crate, refresh, &info, func() error {
		return c.fetch(ctx, crate, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, crate string, info *CrateInfo) error {
	var data crateResponse
	url := fmt.Sprintf("%s/crates/%s", c.baseURL, integrations.PathEscape(crate))
	if err := c.Get(ctx, url, &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: crate %s", err, crate)
		}
		return err
	}

	*info = CrateInfo{
		Name:        data.Crate.Name,
		Description: data.Crate.Description,
		License:     data.Crate.License,
		Repository:  integrations.NormalizeRepoURL(data.Crate.Repository),
		HomePage:    data.Crate.HomePage,
		MaxVersion:  data.Crate.MaxVersion,
		Versions:    make([]string, 0, len(data.Versions)),
	}
	if info.Name == "" {
		info.Name = crate
	}
	for i, v := range data.Versions {
		info.Versions = append(info.Versions, v.Num)
		if i > 0 {
			continue
		}
		if info.License == "" {
			info.License = v.License
		}
		if v.PublishedBy != nil {
			info.PublishedBy = v.PublishedBy.Name
			if info.PublishedBy == "" {
				info.PublishedBy = v.PublishedBy.Login
			}
		}
	}
	return nil
}

// Search queries crates.io, returning at most perPage hits of the first page.
func (c *Client) Search(ctx context.Context, term string, perPage int) ([]SearchHit, error) {
	url := fmt.Sprintf("%s/crates?page=1&per_page=%d&q=%s", c.baseURL, perPage, integrations.URLEncode(term))

	var data searchResponse
	if err := c.Get(ctx, url, &data); err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(data.Crates))
	for _, cr := range data.Crates {
		v := cr.NewestVersion
		if v == "" {
			v = cr.MaxVersion
		}
		hits = append(hits, SearchHit{Name: cr.Name, Version: v})
	}
	return hits, nil
}

type crateResponse struct {
	Crate struct {
		Name        string `json:"name"`
		MaxVersion  string `json:"max_version"`
		Description string `json:"description"`
		License     string `json:"license"`
		Repository  string `json:"repository"`
		HomePage    string `json:"homepage"`
	} `json:"crate"`
	Versions []versionEntry `json:"versions"`
}

type versionEntry struct {
	Num         string     `json:"num"`
	License     string     `json:"license"`
	Yanked      bool       `json:"yanked"`
	PublishedBy *publisher `json:"published_by"`
}

type publisher struct {
	Login string `json:"login"`
	Name  string `json:"name"`
}

type searchResponse struct {
	Crates []struct {
		Name          string `json:"name"`
		NewestVersion string `json:"newest_version"`
		MaxVersion    string `json:"max_version"`
	} `json:"crates"`
}
