package status

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tectrixdev/unplayit/pkg/model"
)

const (
	DefaultEndpoint    = "https://api.mcsrvstat.us"
	DefaultCheckPrefix = "https://mcsrvstat.us/server/"
)

type Lookup interface {
	Lookup(ctx context.Context, hostname string) (model.ServerStatus, error)
}

// Client queries the mcsrvstat.us v2 API.
type Client struct {
	endpoint *url.URL
	http     *http.Client
}

func NewClient(endpoint string, httpClient *http.Client) (*Client, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}
	return &Client{endpoint: u, http: httpClient}, nil
}

func (c *Client) Lookup(ctx context.Context, hostname string) (model.ServerStatus, error) {
	var s model.ServerStatus

	u := c.endpoint.ResolveReference(&url.URL{Path: "/2/" + hostname})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return s, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return s, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return s, fmt.Errorf("status lookup for %s: %s", hostname, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return s, fmt.Errorf("status lookup for %s: %w", hostname, err)
	}
	return s, nil
}

// CheckURL is the page on the status provider's own site for a manual check.
func CheckURL(hostname string) string {
	return DefaultCheckPrefix + strings.TrimSuffix(hostname, ".")
}
