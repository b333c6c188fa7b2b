package npm

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/depman/pkg/cache"
	"github.com/matzehuels/depman/pkg/integrations"
)

// DefaultBaseURL is the public npm registry.
const DefaultBaseURL = "https://registry.npmjs.org"

// PackageInfo holds the metadata of an npm package.
type PackageInfo struct {
	Name        string   `json:"name"`
	Author      string   `json:"author,omitempty"`
	Description string   `json:"description,omitempty"`
	License     string   `json:"license,omitempty"`
	HomePage    string   `json:"homepage,omitempty"`
	Repository  string   `json:"repository,omitempty"`
	Latest      string   `json:"latest,omitempty"` // dist-tags.latest
	Versions    []string `json:"versions"`         // unordered keys of "versions"
}

// SearchHit is one entry of a registry search.
type SearchHit struct {
	Name    string
	Version string
}

// Client provides access to an npm registry.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a client for the registry at baseURL, caching package
// documents in backend for ttl.
func NewClient(baseURL string, backend cache.Cache, ttl time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	headers := map[string]string{"User-Agent": integrations.DefaultUserAgent}
	return &Client{
		Client:  integrations.NewClient(backend, "npm:", ttl, headers),
		baseURL: integrations.TrimBaseURL(baseURL),
	}
}

// BaseURL returns the registry base URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchPackage retrieves the package document for pkg.
//
// Returns an error wrapping [integrations.ErrNotFound] if the package does
// not exist.
func (c *Client) FetchPackage(ctx context.Context, pkg string, refresh bool) (*PackageInfo, error) {
	pkg = strings.TrimSpace(pkg)

	var info PackageInfo
	err := c.Cached(ctx, pkg, refresh, &info, func() error {
		return c.fetch(ctx, pkg, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, pkg string, info *PackageInfo) error {
	var data registryResponse
	if err := c.Get(ctx, c.baseURL+"/"+integrations.PathEscape(pkg), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: npm package %s", err, pkg)
		}
		return err
	}

	latest := data.Versions[data.DistTags.Latest]
	*info = PackageInfo{
		Name:        firstNonEmpty(data.Name, pkg),
		Author:      formatPerson(firstNonNil(data.Author, latest.Author)),
		Description: firstNonEmpty(data.Description, latest.Description),
		License:     extractField(firstNonNil(data.License, latest.License), "type"),
		HomePage:    firstNonEmpty(data.HomePage, latest.HomePage),
		Repository:  integrations.NormalizeRepoURL(extractField(firstNonNil(data.Repository, latest.Repository), "url")),
		Latest:      data.DistTags.Latest,
		Versions:    slices.Sorted(maps.Keys(data.Versions)),
	}
	return nil
}

// Search queries the registry's search endpoint, returning at most size hits.
func (c *Client) Search(ctx context.Context, term string, size int) ([]SearchHit, error) {
	url := fmt.Sprintf("%s/-/v1/search?text=%s&size=%d", c.baseURL, integrations.URLEncode(term), size)

	var data searchResponse
	if err := c.Get(ctx, url, &data); err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(data.Objects))
	for _, o := range data.Objects {
		hits = append(hits, SearchHit{Name: o.Package.Name, Version: o.Package.Version})
	}
	return hits, nil
}

// extractField returns v when it is a string, or v[field] when it is an object.
func extractField(v any, field string) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		if s, ok := val[field].(string); ok {
			return s
		}
	}
	return ""
}

// formatPerson renders an author given as "Name <email> (url)" or as
// {name, email, url}.
func formatPerson(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case map[string]any:
		name, _ := val["name"].(string)
		email, _ := val["email"].(string)
		switch {
		case name != "" && email != "":
			return fmt.Sprintf("%s <%s>", name, email)
		case name != "":
			return name
		default:
			return email
		}
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonNil(vals ...any) any {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

type registryResponse struct {
	Name        string                    `json:"name"`
	Description string                    `json:"description"`
	Author      any                       `json:"author"`
	License     any                       `json:"license"`
	HomePage    string                    `json:"homepage"`
	Repository  any                       `json:"repository"`
	DistTags    distTags                  `json:"dist-tags"`
	Versions    map[string]versionDetails `json:"versions"`
}

type distTags struct {
	Latest string `json:"latest"`
}

type versionDetails struct {
	Description string `json:"description"`
	License     any    `json:"license"`
	Author      any    `json:"author"`
	Repository  any    `json:"repository"`
	HomePage    string `json:"homepage"`
}

type searchResponse struct {
	Objects []struct {
		Package struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"package"`
	} `json:"objects"`
}
