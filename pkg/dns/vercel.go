package dns

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultVercelEndpoint = "https://api.vercel.com"

	vercelListPageSize = 100
)

// Vercel talks to the Vercel DNS REST API directly. Its SDK does not accept a
// name for SRV records, so records are created with a plain POST.
type Vercel struct {
	endpoint *url.URL
	domain   string
	token    string
	teamID   string
	teamSlug string
	http     *http.Client
}

type VercelOptions struct {
	Endpoint string
	Domain   string
	Token    string
	TeamID   string
	TeamSlug string
}

func NewVercel(opts VercelOptions, httpClient *http.Client) (*Vercel, error) {
	if opts.Domain == "" {
		return nil, fmt.Errorf("vercel: domain must be provided")
	}
	if opts.Token == "" {
		return nil, fmt.Errorf("vercel: token must be provided")
	}
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultVercelEndpoint
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	u, err := url.Parse(opts.Endpoint)
	if err != nil {
		return nil, err
	}

	return &Vercel{
		endpoint: u,
		domain:   opts.Domain,
		token:    opts.Token,
		teamID:   opts.TeamID,
		teamSlug: opts.TeamSlug,
		http:     httpClient,
	}, nil
}

type vercelSRV struct {
	Port     int    `json:"port"`
	Priority int    `json:"priority"`
	Weight   int    `json:"weight"`
	Target   string `json:"target"`
}

type vercelCreateRequest struct {
	Name    string    `json:"name"`
	Type    string    `json:"type"`
	SRV     vercelSRV `json:"srv"`
	Comment string    `json:"comment,omitempty"`
}

type vercelCreateResponse struct {
	UID string `json:"uid"`
}

type vercelRecord struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Value   string `json:"value"`
	Comment string `json:"comment"`
	Created int64  `json:"created"`
}

type vercelListResponse struct {
	Records    []vercelRecord `json:"records"`
	Pagination struct {
		Count int    `json:"count"`
		Next  *int64 `json:"next"`
	} `json:"pagination"`
}

type vercelErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (v *Vercel) Verify(ctx context.Context) error {
	_, err := v.listPage(ctx, 1, nil)
	return err
}

func (v *Vercel) CreateSRV(ctx context.Context, record SRVRecord) (string, error) {
	body := vercelCreateRequest{
		Name: record.Name,
		Type: "SRV",
		SRV: vercelSRV{
			Port:     record.Port,
			Priority: record.Priority,
			Weight:   record.Weight,
			Target:   record.Target,
		},
		Comment: record.Comment,
	}

	req, err := v.newRequest(ctx, http.MethodPost, v.recordsPath("v2"), nil, body)
	if err != nil {
		return "", err
	}

	var resp vercelCreateResponse
	if err := v.do(req, &resp); err != nil {
		return "", fmt.Errorf("failed to create SRV record %s: %w", record.Name, err)
	}
	if resp.UID == "" {
		return "", fmt.Errorf("failed to create SRV record %s: response carried no record id", record.Name)
	}

	logrus.Debugf("created vercel record %s for %s", resp.UID, record.Name)
	return resp.UID, nil
}

func (v *Vercel) Delete(ctx context.Context, id string) error {
	req, err := v.newRequest(ctx, http.MethodDelete, v.recordsPath("v2")+"/"+id, nil, nil)
	if err != nil {
		return err
	}
	if err := v.do(req, nil); err != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}
	return nil
}

func (v *Vercel) ListSRV(ctx context.Context, prefix string) ([]Record, error) {
	var result []Record
	var until *int64
	for {
		page, err := v.listPage(ctx, vercelListPageSize, until)
		if err != nil {
			return nil, err
		}

		for _, r := range page.Records {
			if r.Type != "SRV" || !strings.HasPrefix(r.Name, prefix) {
				continue
			}
			result = append(result, Record{
				ID:      r.ID,
				Name:    r.Name,
				Type:    r.Type,
				Comment: r.Comment,
				Created: time.UnixMilli(r.Created),
			})
		}

		if page.Pagination.Next == nil || len(page.Records) == 0 {
			return result, nil
		}
		until = page.Pagination.Next
	}
}

func (v *Vercel) listPage(ctx context.Context, limit int, until *int64) (vercelListResponse, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if until != nil {
		q.Set("until", strconv.FormatInt(*until, 10))
	}
	if v.teamSlug != "" {
		q.Set("slug", v.teamSlug)
	}

	var resp vercelListResponse
	req, err := v.newRequest(ctx, http.MethodGet, v.recordsPath("v4"), q, nil)
	if err != nil {
		return resp, err
	}
	if err := v.do(req, &resp); err != nil {
		return resp, fmt.Errorf("failed to list records for %s: %w", v.domain, err)
	}
	return resp, nil
}

func (v *Vercel) recordsPath(apiVersion string) string {
	return fmt.Sprintf("/%s/domains/%s/records", apiVersion, v.domain)
}

func (v *Vercel) newRequest(ctx context.Context, method, path string, query url.Values, body interface{}) (*http.Request, error) {
	if query == nil {
		query = url.Values{}
	}
	if v.teamID != "" {
		query.Set("teamId", v.teamID)
	}

	u := v.endpoint.ResolveReference(&url.URL{Path: path, RawQuery: query.Encode()})

	var buf io.ReadWriter
	if body != nil {
		buf = new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), buf)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+v.token)
	return req, nil
}

func (v *Vercel) do(req *http.Request, out interface{}) error {
	resp, err := v.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		msg := strings.TrimSpace(string(b))
		var e vercelErrorResponse
		if json.Unmarshal(b, &e) == nil && e.Error.Message != "" {
			msg = e.Error.Message
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
