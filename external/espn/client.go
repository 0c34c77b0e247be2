package espn

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/pickemhq/pickem-backend/internal/platform/logging"
	"github.com/pickemhq/pickem-backend/internal/platform/resilience"
	"github.com/pickemhq/pickem-backend/internal/usecase"
)

const (
	defaultBaseURL = "https://site.api.espn.com/apis/site/v2/sports/football/nfl"
	maxBodyBytes   = 6 << 20
)

var errESPNTransient = crerr.New("espn transient failure")

// eventDateLayouts covers the formats the scoreboard feed has been seen
// emitting, minute precision first.
var eventDateLayouts = []string{
	"2006-01-02T15:04Z07:00",
	time.RFC3339,
}

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client fetches NFL scoreboards from ESPN's public site API and maps them
// onto the provider contract.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

var _ usecase.ProviderClient = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		maxRetries:     max(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) FetchContests(ctx context.Context, season, seasonType, week int) ([]usecase.RawContest, error) {
	query := map[string]string{
		"year":       strconv.Itoa(season),
		"seasontype": strconv.Itoa(seasonType),
		"week":       strconv.Itoa(week),
	}

	var envelope scoreboardEnvelope
	if err := c.doJSON(ctx, "/scoreboard", query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch scoreboard year=%d type=%d week=%d: %w", season, seasonType, week, err)
	}

	out := make([]usecase.RawContest, 0, len(envelope.Events))
	for _, event := range envelope.Events {
		item, err := mapEvent(event)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "espn circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: scoreboard provider is temporarily unavailable", usecase.ErrProviderUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && stderrors.Is(reqErr, errESPNTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode scoreboard payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		raw, retryable, err := c.getOnce(ctx, fullURL)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !retryable || attempt == c.maxRetries {
			break
		}

		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	c.logger.WarnContext(ctx, "espn request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) getOnce(ctx context.Context, fullURL string) (raw []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("%w: send request: %v", errESPNTransient, err)
	}
	defer func() { _ = resp.Body.Close() }()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := io.Copy(buf, io.LimitReader(resp.Body, maxBodyBytes)); err != nil {
		return nil, true, fmt.Errorf("%w: read response body: %v", errESPNTransient, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if isRetryableStatus(resp.StatusCode) {
			return nil, true, fmt.Errorf("%w: provider status=%d body=%s", errESPNTransient, resp.StatusCode, abbreviateBody(buf.B))
		}
		return nil, false, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(buf.B))
	}

	return append([]byte(nil), buf.B...), false, nil
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	body := strings.TrimSpace(string(raw))
	if len(body) > limit {
		return body[:limit] + "..."
	}
	return body
}

func mapEvent(event scoreboardEvent) (usecase.RawContest, error) {
	if len(event.Competitions) == 0 {
		return usecase.RawContest{}, fmt.Errorf("event %s has no competition", event.ID)
	}
	comp := event.Competitions[0]

	date, err := parseEventDate(firstNonEmpty(comp.Date, event.Date))
	if err != nil {
		return usecase.RawContest{}, fmt.Errorf("event %s: %w", event.ID, err)
	}

	out := usecase.RawContest{
		ExternalID: event.ID,
		Date:       date,
		Status: usecase.RawContestStatus{
			State:        comp.Status.Type.State,
			Completed:    comp.Status.Type.Completed,
			Detail:       comp.Status.Type.ShortDetail,
			Period:       comp.Status.Period,
			DisplayClock: comp.Status.DisplayClock,
		},
	}

	for _, competitor := range comp.Competitors {
		participant := usecase.RawParticipant{
			ID:           competitor.Team.ID,
			Name:         firstNonEmpty(competitor.Team.DisplayName, competitor.Team.Name),
			Abbreviation: competitor.Team.Abbreviation,
			Score:        parseScore(competitor.Score),
		}
		switch competitor.HomeAway {
		case "home":
			out.Home = participant
		case "away":
			out.Away = participant
		}
	}
	if out.Home.ID == "" || out.Away.ID == "" {
		return usecase.RawContest{}, fmt.Errorf("event %s is missing a home or away side", event.ID)
	}

	return out, nil
}

func parseEventDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range eventDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable event date %q", value)
}

// Scores arrive as strings; a missing or malformed score counts as zero.
func parseScore(value string) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return parsed
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
