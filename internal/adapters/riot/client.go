// Package riot is a minimal, rate-limited client for the Riot Games API:
// Riot ID lookup and ranked solo queue entries.
package riot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/riftbalance/internal/domain/model"
	"github.com/okian/riftbalance/pkg/logger"
	"github.com/okian/riftbalance/pkg/metrics"
)

const (
	defaultPlatformURL = "https://jp1.api.riotgames.com"
	defaultRegionalURL = "https://asia.api.riotgames.com"
	defaultTimeout     = 5 * time.Second
	defaultRetries     = 2
	defaultBackoff     = time.Second
	maxBackoff         = 16 * time.Second

	// QueueSoloDuo is the queue type of ranked solo/duo entries.
	QueueSoloDuo = "RANKED_SOLO_5x5"
)

// Account is the account-v1 representation of a Riot ID.
type Account struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

// LeagueEntry is one league-v4 entry.
type LeagueEntry struct {
	QueueType    string `json:"queueType"`
	Tier         string `json:"tier"`
	Rank         string `json:"rank"`
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
}

// Client talks to the Riot API.
type Client struct {
	httpClient  *http.Client
	limiter     *rate.Limiter
	apiKey      string
	platformURL string
	regionalURL string
	maxRetries  int
	backoff     time.Duration
	logger      logger.Logger
}

// NewClient creates a client. Without WithAPIKey every call fails with
// ErrNoAPIKey.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: defaultTimeout},
		limiter:     rate.NewLimiter(rate.Limit(20), 1),
		platformURL: defaultPlatformURL,
		regionalURL: defaultRegionalURL,
		maxRetries:  defaultRetries,
		backoff:     defaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.platformURL = strings.TrimRight(c.platformURL, "/")
	c.regionalURL = strings.TrimRight(c.regionalURL, "/")
	return c
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool { return c.apiKey != "" }

// AccountByRiotID resolves gameName#tagLine to an account.
func (c *Client) AccountByRiotID(ctx context.Context, gameName, tagLine string) (*Account, error) {
	u := fmt.Sprintf("%s/riot/account/v1/accounts/by-riot-id/%s/%s",
		c.regionalURL, url.PathEscape(gameName), url.PathEscape(tagLine))

	var acct Account
	if err := c.get(ctx, "account", u, &acct); err != nil {
		return nil, fmt.Errorf("account %s#%s: %w", gameName, tagLine, err)
	}
	return &acct, nil
}

// LeagueEntries returns every ranked entry of puuid.
func (c *Client) LeagueEntries(ctx context.Context, puuid string) ([]LeagueEntry, error) {
	u := fmt.Sprintf("%s/lol/league/v4/entries/by-puuid/%s", c.platformURL, url.PathEscape(puuid))

	var entries []LeagueEntry
	if err := c.get(ctx, "league", u, &entries); err != nil {
		return nil, fmt.Errorf("league entries: %w", err)
	}
	return entries, nil
}

// SoloRank returns the solo/duo rank of puuid, or nil when unranked.
func (c *Client) SoloRank(ctx context.Context, puuid string) (*model.SoloRank, error) {
	entries, err := c.LeagueEntries(ctx, puuid)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.QueueType == QueueSoloDuo {
			return e.SoloRank()
		}
	}
	return nil, nil
}

// SoloRank converts e into the domain rank.
func (e LeagueEntry) SoloRank() (*model.SoloRank, error) {
	tier, err := model.ParseTier(e.Tier)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	r := &model.SoloRank{Tier: tier, LeaguePoints: e.LeaguePoints, Wins: e.Wins, Losses: e.Losses}
	if !tier.IsApex() && e.Rank != "" {
		div, err := model.ParseDivision(e.Rank)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
		}
		r.Rank = div
	}
	return r, nil
}

// get performs a rate-limited GET, retrying 429 responses with backoff.
func (c *Client) get(ctx context.Context, endpoint, u string, out any) error {
	if c.apiKey == "" {
		return ErrNoAPIKey
	}

	start := time.Now()
	outcome := "error"
	defer func() {
		metrics.RecordRiotRequest(endpoint, outcome, float64(time.Since(start).Milliseconds()))
	}()

	backoff := c.backoff
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("X-Riot-Token", c.apiKey)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrUpstream, err)
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		_ = resp.Body.Close()
		if err != nil {
			return fmt.Errorf("%w: read body: %w", ErrUpstream, err)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("%w: decode: %w", ErrUpstream, err)
			}
			outcome = "ok"
			return nil
		case resp.StatusCode == http.StatusNotFound:
			outcome = "not_found"
			return ErrNotFound
		case resp.StatusCode == http.StatusTooManyRequests:
			outcome = "rate_limited"
			if attempt >= c.maxRetries {
				return ErrRateLimited
			}
			wait := retryAfter(resp.Header.Get("Retry-After"), backoff)
			if c.logger != nil {
				c.logger.Warn(ctx, "riot api rate limited, backing off",
					logger.String("endpoint", endpoint), logger.Duration("wait", wait))
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			backoff = min(backoff*2, maxBackoff)
		default:
			return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
		}
	}
}

func retryAfter(header string, fallback time.Duration) time.Duration {
	if secs, err := strconv.Atoi(strings.TrimSpace(header)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

// Lookup resolves a Riot ID and fetches its solo/duo rank in one call.
func (c *Client) Lookup(ctx context.Context, gameName, tagLine string) (model.RiotAccount, *model.SoloRank, error) {
	acct, err := c.AccountByRiotID(ctx, gameName, tagLine)
	if err != nil {
		return model.RiotAccount{}, nil, err
	}
	linked := model.RiotAccount{GameName: acct.GameName, TagLine: acct.TagLine, PUUID: acct.PUUID}
	rank, err := c.SoloRank(ctx, acct.PUUID)
	if err != nil {
		return linked, nil, err
	}
	return linked, rank, nil
}
