// Package contributions fetches real contribution activity for a GitHub user
// from the public contributions API.
package contributions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/klabast/wb-services/time-travel/internal/calendar"
)

const (
	DefaultBaseURL = "https://github-contributions-api.jogruber.de/v4/"
	DefaultTimeout = 10 * time.Second

	// maxBodySize bounds the response; a full history is a few hundred KB
	maxBodySize = 8 << 20
)

// Fetcher loads the contribution history of a user
type Fetcher interface {
	Fetch(ctx context.Context, username string) (*Response, error)
}

// Response is the decoded API answer
type Response struct {
	Total         map[string]int      `json:"total"`
	Contributions []calendar.Activity `json:"contributions"`
}

// Error is returned when the API answers with a non-2xx status
type Error struct {
	Username string
	Status   int
	Message  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetching contribution data for %q failed: %s", e.Username, e.Message)
}

// Client is a Fetcher backed by the HTTP API
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a client for baseURL. An empty baseURL selects
// DefaultBaseURL; a zero timeout selects DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// Fetch loads all contributions of username, sorted by date
func (c *Client) Fetch(ctx context.Context, username string) (*Response, error) {
	if username == "" {
		return nil, fmt.Errorf("fetching contribution data: empty username")
	}

	endpoint, err := url.JoinPath(c.BaseURL, username)
	if err != nil {
		return nil, fmt.Errorf("build contributions url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build contributions request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching contribution data for %q: %w", username, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read contributions response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		msg := http.StatusText(resp.StatusCode)
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return nil, &Error{Username: username, Status: resp.StatusCode, Message: msg}
	}

	var data Response
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decode contributions for %q: %w", username, err)
	}

	for i, a := range data.Contributions {
		if err := calendar.Validate(a); err != nil {
			return nil, fmt.Errorf("contribution %d for %q: %w", i, username, err)
		}
	}
	sort.SliceStable(data.Contributions, func(i, j int) bool {
		return data.Contributions[i].Date < data.Contributions[j].Date
	})

	return &data, nil
}
