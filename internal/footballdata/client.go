// Package footballdata provides the HTTP client for the football-data.org
// v4 API.
//
// football-data.org uses X-Auth-Token header auth and aggressive rate
// limits on the free tier, so every request goes through a token bucket
// limiter.
package footballdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.football-data.org/v4"

// ErrMatchNotFound indicates the provider no longer resolves a match id.
// Callers skip the match rather than treating this as a transient failure.
var ErrMatchNotFound = errors.New("match not found")

// Client is the HTTP client for football-data.org endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	authToken  string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a football-data.org HTTP client with rate limiting.
func NewClient(authToken string, requestsPerMinute int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		baseURL:    defaultBaseURL,
		authToken:  authToken,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// WithBaseURL overrides the API base URL. Used by tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// --------------------------------------------------------------------------
// Wire types — subset of the v4 match resource the bot consumes
// --------------------------------------------------------------------------

type teamJSON struct {
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
}

type scoreJSON struct {
	FullTime Score `json:"fullTime"`
	HalfTime Score `json:"halfTime"`
}

type matchJSON struct {
	ID       int64     `json:"id"`
	UTCDate  time.Time `json:"utcDate"`
	Status   string    `json:"status"`
	HomeTeam teamJSON  `json:"homeTeam"`
	AwayTeam teamJSON  `json:"awayTeam"`
	Score    scoreJSON `json:"score"`
}

func (m matchJSON) snapshot() Snapshot {
	return Snapshot{
		ID:       fmt.Sprintf("%d", m.ID),
		Status:   mapStatus(m.Status),
		HomeTeam: teamName(m.HomeTeam),
		AwayTeam: teamName(m.AwayTeam),
		Kickoff:  m.UTCDate,
		FullTime: m.Score.FullTime,
		HalfTime: m.Score.HalfTime,
	}
}

func teamName(t teamJSON) string {
	if t.ShortName != "" {
		return t.ShortName
	}
	return t.Name
}

// --------------------------------------------------------------------------
// Endpoints
// --------------------------------------------------------------------------

// Match fetches the current state of a single match by id.
// Returns ErrMatchNotFound when the provider no longer resolves the id.
func (c *Client) Match(ctx context.Context, matchID string) (Snapshot, error) {
	var result struct {
		Match *matchJSON `json:"match"`
	}
	if err := c.get(ctx, "/matches/"+matchID, nil, &result); err != nil {
		return Snapshot{}, err
	}
	if result.Match == nil {
		return Snapshot{}, fmt.Errorf("match %s: %w", matchID, ErrMatchNotFound)
	}
	return result.Match.snapshot(), nil
}

// CompetitionMatches fetches all matches of a competition on a given day.
func (c *Client) CompetitionMatches(ctx context.Context, competitionCode string, day time.Time) ([]Snapshot, error) {
	date := day.UTC().Format("2006-01-02")
	params := url.Values{}
	params.Set("dateFrom", date)
	params.Set("dateTo", date)

	var result struct {
		Matches []matchJSON `json:"matches"`
	}
	if err := c.get(ctx, "/competitions/"+competitionCode+"/matches", params, &result); err != nil {
		return nil, err
	}

	snapshots := make([]Snapshot, 0, len(result.Matches))
	for _, m := range result.Matches {
		snapshots = append(snapshots, m.snapshot())
	}
	return snapshots, nil
}

// get performs a rate-limited GET request to a football-data.org endpoint.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Auth-Token", c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", path, ErrMatchNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("football-data %s returned %d: %s", path, resp.StatusCode, truncate(body, 200))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
