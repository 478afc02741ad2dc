package nhle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/rinkcharts/shotmap/internal/domain/rawdata"
	"github.com/rinkcharts/shotmap/internal/platform/cache"
	"github.com/rinkcharts/shotmap/internal/platform/logging"
	"github.com/rinkcharts/shotmap/internal/platform/resilience"
	"github.com/rinkcharts/shotmap/internal/usecase"
)

const (
	defaultBaseURL       = "https://api-web.nhle.com/v1"
	defaultStandingsDate = "2023-12-01"
	sourceName           = "nhle"
	maxResponseBytes     = 16 << 20
)

var errNHLETransient = crerr.New("nhle transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	StandingsDate  string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	CacheEnabled   bool
	CacheTTL       time.Duration
}

// Client talks to the NHL web API (api-web.nhle.com). It implements
// usecase.StatsProvider and usecase.PayloadSource: every successful response
// body is captured for the optional provenance archive.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	standingsDate  string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	responses      *cache.Store
	flight         resilience.SingleFlight

	payloadMu sync.Mutex
	payloads  []rawdata.Payload
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	standingsDate := strings.TrimSpace(cfg.StandingsDate)
	if standingsDate == "" {
		standingsDate = defaultStandingsDate
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	var responses *cache.Store
	if cfg.CacheEnabled {
		responses = cache.NewStore(cfg.CacheTTL)
	}

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		standingsDate:  standingsDate,
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
		responses:      responses,
	}
}

func (c *Client) FetchStandings(ctx context.Context) ([]usecase.TeamStanding, error) {
	path := "/standings/" + c.standingsDate

	var envelope standingsEnvelope
	if err := c.doJSON(ctx, path, &envelope, "standings", c.standingsDate, ""); err != nil {
		return nil, fmt.Errorf("fetch standings date=%s: %w", c.standingsDate, err)
	}

	out := make([]usecase.TeamStanding, 0, len(envelope.Standings))
	for _, row := range envelope.Standings {
		out = append(out, row.toTeamStanding())
	}
	return out, nil
}

func (c *Client) FetchClubSchedule(ctx context.Context, teamAbbrev, season string) ([]usecase.ScheduledGame, error) {
	if strings.TrimSpace(teamAbbrev) == "" {
		return nil, fmt.Errorf("team abbrev is required")
	}
	path := "/club-schedule-season/" + teamAbbrev + "/" + season

	var envelope scheduleEnvelope
	if err := c.doJSON(ctx, path, &envelope, "schedule", teamAbbrev, season); err != nil {
		return nil, fmt.Errorf("fetch schedule team=%s season=%s: %w", teamAbbrev, season, err)
	}

	out := make([]usecase.ScheduledGame, 0, len(envelope.Games))
	for _, g := range envelope.Games {
		out = append(out, g.toScheduledGame())
	}
	return out, nil
}

func (c *Client) FetchRoster(ctx context.Context, teamAbbrev, season string) (usecase.Roster, error) {
	if strings.TrimSpace(teamAbbrev) == "" {
		return usecase.Roster{}, fmt.Errorf("team abbrev is required")
	}
	path := "/roster/" + teamAbbrev + "/" + season

	var envelope rosterEnvelope
	if err := c.doJSON(ctx, path, &envelope, "roster", teamAbbrev, season); err != nil {
		return usecase.Roster{}, fmt.Errorf("fetch roster team=%s season=%s: %w", teamAbbrev, season, err)
	}

	return mapRoster(envelope), nil
}

func (c *Client) FetchPlayByPlay(ctx context.Context, gameID int64) (usecase.GameFeed, error) {
	if gameID <= 0 {
		return usecase.GameFeed{}, fmt.Errorf("game id must be greater than zero")
	}
	key := strconv.FormatInt(gameID, 10)
	path := "/gamecenter/" + key + "/play-by-play"

	var envelope playByPlayEnvelope
	if err := c.doJSON(ctx, path, &envelope, "play_by_play", key, ""); err != nil {
		return usecase.GameFeed{}, fmt.Errorf("fetch play-by-play game_id=%d: %w", gameID, err)
	}

	return mapGameFeed(envelope), nil
}

func (c *Client) FetchPlayerProfile(ctx context.Context, playerID int64) (usecase.PlayerProfile, error) {
	if playerID <= 0 {
		return usecase.PlayerProfile{}, fmt.Errorf("player id must be greater than zero")
	}
	key := strconv.FormatInt(playerID, 10)
	path := "/player/" + key + "/landing"

	var envelope playerLandingEnvelope
	if err := c.doJSON(ctx, path, &envelope, "player", key, ""); err != nil {
		return usecase.PlayerProfile{}, fmt.Errorf("fetch player profile player_id=%d: %w", playerID, err)
	}

	return envelope.toPlayerProfile(playerID), nil
}

// DrainPayloads returns the captured responses and resets the buffer.
func (c *Client) DrainPayloads() []rawdata.Payload {
	c.payloadMu.Lock()
	defer c.payloadMu.Unlock()

	out := c.payloads
	c.payloads = nil
	return out
}

func (c *Client) doJSON(ctx context.Context, path string, target any, entityType, entityKey, season string) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "nhle circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("upstream api is temporarily unavailable: %w", err)
		}
	}

	fullURL := c.baseURL + path
	raw, err := c.fetchRaw(ctx, path, fullURL, entityType, entityKey, season)
	if err != nil {
		return err
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode upstream payload: %w", err)
	}

	return nil
}

// fetchRaw goes through the response cache when one is configured (the run
// reads a point-in-time snapshot, so a body fetched once is valid for the
// whole run) and otherwise dedupes concurrent in-flight requests per path.
func (c *Client) fetchRaw(ctx context.Context, path, fullURL, entityType, entityKey, season string) ([]byte, error) {
	if c.responses != nil {
		value, err := c.responses.GetOrLoad(ctx, path, func(ctx context.Context) (any, error) {
			return c.requestAndRecord(ctx, fullURL, entityType, entityKey, season)
		})
		if err != nil {
			return nil, err
		}
		raw, ok := value.([]byte)
		if !ok {
			return nil, fmt.Errorf("unexpected cached payload type %T", value)
		}
		return raw, nil
	}

	value, err, _ := c.flight.Do(path, func() (any, error) {
		return c.requestAndRecord(ctx, fullURL, entityType, entityKey, season)
	})
	if err != nil {
		return nil, err
	}
	raw, ok := value.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", value)
	}
	return raw, nil
}

func (c *Client) requestAndRecord(ctx context.Context, fullURL, entityType, entityKey, season string) ([]byte, error) {
	raw, err := c.executeRequest(ctx, fullURL)
	if c.circuitEnabled {
		if err != nil && crerr.Is(err, errNHLETransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	if err != nil {
		return nil, err
	}

	c.recordPayload(entityType, entityKey, season, raw)
	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errNHLETransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errNHLETransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: upstream status=%d body=%s", errNHLETransient, resp.StatusCode, abbreviateBody(raw))
			} else {
				return nil, fmt.Errorf("upstream status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
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

	if lastErr == nil {
		lastErr = fmt.Errorf("upstream request failed")
	}
	c.logger.WarnContext(ctx, "nhle request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) recordPayload(entityType, entityKey, season string, raw []byte) {
	sum := sha256.Sum256(raw)
	item := rawdata.Payload{
		Source:      sourceName,
		EntityType:  entityType,
		EntityKey:   entityKey,
		Season:      season,
		PayloadJSON: string(raw),
		PayloadHash: hex.EncodeToString(sum[:]),
		FetchedAt:   time.Now().UTC(),
	}

	c.payloadMu.Lock()
	c.payloads = append(c.payloads, item)
	c.payloadMu.Unlock()
}

func isRetryableStatus(status int) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	return status >= 500
}

func abbreviateBody(raw []byte) string {
	const maxLen = 256
	body := strings.TrimSpace(string(raw))
	if len(body) <= maxLen {
		return body
	}
	return body[:maxLen] + "..."
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
