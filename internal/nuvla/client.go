package nuvla

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// DefaultEndpoint is the public Nuvla service.
	DefaultEndpoint = "https://nuvla.io"
	// DefaultTimeout bounds every request made to the API.
	DefaultTimeout = 10 * time.Second

	apiKeySessionTemplate = "session-template/api-key"
	userAgent             = "nuvla-job-stats-scraper/1.0"
)

// Options configures an APIClient.
type Options struct {
	Endpoint string
	Key      string
	Secret   string
	Insecure bool
	Timeout  time.Duration
}

// APIClient talks to the Nuvla REST API with an API-key session.
// It is meant to be used from a single goroutine.
type APIClient struct {
	httpClient    *http.Client
	BaseURL       string
	key           string
	secret        string
	authenticated bool
}

// Ensure APIClient implements the JobSearcher interface.
var _ JobSearcher = (*APIClient)(nil)

// NewClient creates a Nuvla client. The session cookie obtained by Login is kept in
// the client's cookie jar and reused for every search.
func NewClient(opts Options) (*APIClient, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.Insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &APIClient{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			Jar:       jar,
		},
		BaseURL: NormalizeEndpoint(opts.Endpoint),
		key:     opts.Key,
		secret:  opts.Secret,
	}, nil
}

// NormalizeEndpoint turns a bare host such as "nuvla.io" into a base URL.
func NormalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return DefaultEndpoint
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}
	return strings.TrimRight(endpoint, "/")
}

type sessionTemplate struct {
	Href   string `json:"href"`
	Key    string `json:"key"`
	Secret string `json:"secret"`
}

type sessionRequest struct {
	Template sessionTemplate `json:"template"`
}

// Login opens an API-key session.
func (c *APIClient) Login(ctx context.Context) error {
	body, err := json.Marshal(sessionRequest{Template: sessionTemplate{
		Href:   apiKeySessionTemplate,
		Key:    c.key,
		Secret: c.secret,
	}})
	if err != nil {
		return fmt.Errorf("failed to encode session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/session", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	log.Debug("Opening Nuvla session", "url", req.URL.String(), "key", c.key)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute login request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.authenticated = false
		return fmt.Errorf("%w: login rejected with status %d", ErrUnauthorized, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		log.Error("Received non-OK HTTP status from Nuvla session endpoint", "status", resp.StatusCode, "body", string(respBody))
		return fmt.Errorf("received non-OK HTTP status on login: %d", resp.StatusCode)
	}

	c.authenticated = true
	log.Info("Logged in to Nuvla", "endpoint", c.BaseURL)
	return nil
}

// Search runs a search over a collection, e.g. "job".
//
// A 401/403 response marks the session as expired and returns ErrUnauthorized; the
// following call logs in again before searching. The failing call is not retried.
func (c *APIClient) Search(ctx context.Context, resource string, params SearchParams) (*SearchResult, error) {
	if !c.authenticated {
		log.Info("Nuvla session is not open, logging in again")
		if err := c.Login(ctx); err != nil {
			return nil, fmt.Errorf("failed to re-authenticate: %w", err)
		}
	}

	form := url.Values{}
	if params.Filter != "" {
		form.Set("filter", params.Filter)
	}
	if params.Aggregation != "" {
		form.Set("aggregation", params.Aggregation)
	}
	form.Set("last", strconv.Itoa(params.Last))

	endpoint := c.BaseURL + "/api/" + strings.TrimLeft(resource, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	log.Debug("Searching Nuvla collection", "resource", resource, "filter", params.Filter, "aggregation", params.Aggregation)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.authenticated = false
		return nil, fmt.Errorf("%w: search on %s returned status %d", ErrUnauthorized, resource, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Error("Received non-OK HTTP status from Nuvla API", "status", resp.StatusCode, "resource", resource, "body", string(body))
		return nil, fmt.Errorf("received non-OK HTTP status: %d", resp.StatusCode)
	}

	var result SearchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}
