package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"nba_ytd/boxscores/internal/metrics"
	"nba_ytd/boxscores/internal/models"
	"nba_ytd/boxscores/internal/retry"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the public stats.nba.com API root
const DefaultBaseURL = "https://stats.nba.com/stats"

const (
	endpointTeamGameLog = "teamgamelog"
	endpointBoxScore    = "boxscoretraditionalv2"

	resultSetGameLog     = "TeamGameLog"
	resultSetPlayerStats = "PlayerStats"

	seasonTypeRegular = "Regular Season"

	// stats.nba.com rejects requests that do not look like they come from the site
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	referer   = "https://www.nba.com/"
)

// StatusError is a non-200 response from the provider
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Retryable reports whether the status is worth another attempt
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client is the stats.nba.com API client. Each call makes exactly one request;
// pacing and retries belong to the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new stats API client
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// resultSet is one table of the provider envelope
type resultSet struct {
	Name    string            `json:"name"`
	Headers []string          `json:"headers"`
	RowSet  []json.RawMessage `json:"rowSet"`
}

type envelope struct {
	ResultSets []resultSet `json:"resultSets"`
}

// get performs a GET request against an endpoint. Errors that another attempt
// cannot fix are marked retry.Permanent.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	u := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Referer", referer)
	req.Header.Set("Origin", "https://www.nba.com")
	req.Header.Set("User-Agent", userAgent)

	log.Debug().
		Str("endpoint", endpoint).
		Str("url", u).
		Msg("Making API request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPICall(endpoint, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordAPICall(endpoint, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	metrics.RecordAPICall(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		statusErr := &StatusError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       truncate(string(body), 200),
		}
		if statusErr.Retryable() {
			log.Warn().
				Str("endpoint", endpoint).
				Int("status", resp.StatusCode).
				Msg("Received retryable error")
			return nil, statusErr
		}
		return nil, retry.Permanent(statusErr)
	}

	log.Debug().
		Str("endpoint", endpoint).
		Int("size", len(body)).
		Msg("API request successful")

	return body, nil
}

// FetchTeamGameLog fetches the regular-season game log of a team.
// season is the provider's season label ("2020-21").
func (c *Client) FetchTeamGameLog(ctx context.Context, teamID int, season string) ([]models.GameLogInput, error) {
	params := url.Values{}
	params.Set("TeamID", strconv.Itoa(teamID))
	params.Set("Season", season)
	params.Set("SeasonType", seasonTypeRegular)
	params.Set("LeagueID", "00")

	body, err := c.get(ctx, endpointTeamGameLog, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch game log for team %d: %w", teamID, err)
	}

	var games []models.GameLogInput
	if err := decodeResultSet(body, resultSetGameLog, &games); err != nil {
		return nil, retry.Permanent(fmt.Errorf("failed to decode game log for team %d: %w", teamID, err))
	}

	return games, nil
}

// FetchBoxScore fetches the traditional box score player rows of one game,
// both teams included.
func (c *Client) FetchBoxScore(ctx context.Context, gameID string) ([]models.PlayerStatsInput, error) {
	params := url.Values{}
	params.Set("GameID", gameID)
	params.Set("StartPeriod", "0")
	params.Set("EndPeriod", "10")
	params.Set("StartRange", "0")
	params.Set("EndRange", "0")
	params.Set("RangeType", "0")

	body, err := c.get(ctx, endpointBoxScore, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch box score for game %s: %w", gameID, err)
	}

	var players []models.PlayerStatsInput
	if err := decodeResultSet(body, resultSetPlayerStats, &players); err != nil {
		return nil, retry.Permanent(fmt.Errorf("failed to decode box score for game %s: %w", gameID, err))
	}

	return players, nil
}

// decodeResultSet finds the named result set and decodes each row into an
// element of out (a pointer to a slice of structs) by matching headers to
// json tags. Column order is never assumed.
func decodeResultSet(body []byte, name string, out interface{}) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("%w: malformed response: %v", models.ErrSchema, err)
	}

	var set *resultSet
	for i := range env.ResultSets {
		if env.ResultSets[i].Name == name {
			set = &env.ResultSets[i]
			break
		}
	}
	if set == nil {
		return fmt.Errorf("%w: result set %q missing", models.ErrSchema, name)
	}

	headers := make([][]byte, len(set.Headers))
	for i, h := range set.Headers {
		key, err := json.Marshal(h)
		if err != nil {
			return fmt.Errorf("failed to encode header %q: %w", h, err)
		}
		headers[i] = key
	}

	// Rebuild the rows as objects keyed by header and decode them as one array
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, raw := range set.RowSet {
		var cells []json.RawMessage
		if err := json.Unmarshal(raw, &cells); err != nil {
			return fmt.Errorf("%w: %s row %d: %v", models.ErrSchema, name, i, err)
		}
		if len(cells) != len(headers) {
			return fmt.Errorf("%w: %s row %d has %d cells for %d headers", models.ErrSchema, name, i, len(cells), len(headers))
		}

		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, cell := range cells {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.Write(headers[j])
			buf.WriteByte(':')
			buf.Write(cell)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')

	if err := json.Unmarshal(buf.Bytes(), out); err != nil {
		return fmt.Errorf("%w: %s rows: %v", models.ErrSchema, name, err)
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
