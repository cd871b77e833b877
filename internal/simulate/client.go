package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/riftbalance/internal/domain/balance"
	"github.com/okian/riftbalance/internal/domain/model"
	"github.com/okian/riftbalance/pkg/logger"
)

// HTTPClient wraps http.Client with the service base URL.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// do sends body as JSON and decodes a 2xx response into out. Non-2xx
// responses are returned as *StatusError.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(bytes.TrimSpace(data))}
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s response: %w", path, err)
		}
	}
	return resp.StatusCode, nil
}

type createPlayerRequest struct {
	Name string `json:"name"`
}

type balancePlayer struct {
	ID            string     `json:"id"`
	PrimaryRole   model.Lane `json:"primaryRole,omitempty"`
	SecondaryRole model.Lane `json:"secondaryRole,omitempty"`
}

type balanceRequest struct {
	Mode    balance.Mode    `json:"mode"`
	Players []balancePlayer `json:"players"`
}

// createPlayers registers the roster and stores the assigned ids.
func createPlayers(ctx context.Context, c *HTTPClient, roster []Player, stats *Stats) error {
	for i := range roster {
		var created model.Player
		if _, err := c.do(ctx, http.MethodPost, "/players", createPlayerRequest{Name: roster[i].Name}, &created); err != nil {
			return fmt.Errorf("create player %s: %w", roster[i].Name, err)
		}
		roster[i].ID = created.ID
		stats.PlayersCreated++
	}
	return nil
}

// submitGames submits games concurrently using a worker pool.
func submitGames(ctx context.Context, c *HTTPClient, cfg *Config, games []model.Game, stats *Stats) {
	log := logger.Get().Named("simulate")
	log.Info(ctx, "submitting games", logger.Int("games", len(games)), logger.Int("workers", cfg.Workers))

	var submitted, accepted, duplicate, failed atomic.Int64

	gameChan := make(chan model.Game, cfg.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for g := range gameChan {
				submitted.Add(1)
				var ack AckResponse
				code, err := c.do(ctx, http.MethodPost, "/games", g, &ack)
				switch {
				case err != nil:
					failed.Add(1)
					if cfg.Verbose {
						log.Warn(ctx, "game rejected", logger.String("gameID", g.ID), logger.Error(err))
					}
				case code == http.StatusOK && ack.Duplicate:
					duplicate.Add(1)
				default:
					accepted.Add(1)
				}
			}
		}()
	}

	go func() {
		defer close(gameChan)
		for _, g := range games {
			select {
			case <-ctx.Done():
				return
			case gameChan <- g:
			}
		}
	}()

	wg.Wait()

	stats.GamesSubmitted = int(submitted.Load())
	stats.GamesAccepted = int(accepted.Load())
	stats.GamesDuplicate = int(duplicate.Load())
	stats.GamesFailed = int(failed.Load())

	log.Info(ctx, "game submission completed",
		logger.Int("accepted", stats.GamesAccepted),
		logger.Int("duplicate", stats.GamesDuplicate),
		logger.Int("failed", stats.GamesFailed))
}

// waitForRecording polls /stats until the service has recorded want games.
func waitForRecording(ctx context.Context, c *HTTPClient, cfg *Config, want int) error {
	deadline := time.Now().Add(cfg.ProcessWait)
	for {
		var s map[string]any
		if _, err := c.do(ctx, http.MethodGet, "/stats", nil, &s); err != nil {
			return err
		}
		recorded, _ := s["gamesRecorded"].(float64)
		failed, _ := s["gamesFailed"].(float64)
		if int(recorded+failed) >= want {
			if failed > 0 {
				logger.Get().Warn(ctx, "some games failed to record", logger.Int("failed", int(failed)))
			}
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %d of %d games recorded", ErrProcessingTimeout, int(recorded), want)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cfg.PollInterval):
		}
	}
}

// requestBalance asks the service to split players in mode.
func requestBalance(ctx context.Context, c *HTTPClient, mode balance.Mode, players []Player) (balance.Result, error) {
	req := balanceRequest{Mode: mode, Players: make([]balancePlayer, len(players))}
	for i, p := range players {
		req.Players[i] = balancePlayer{ID: p.ID}
		if mode == balance.ModeLanes {
			req.Players[i].PrimaryRole = p.Lanes[0]
			req.Players[i].SecondaryRole = p.Lanes[1]
		}
	}
	var res balance.Result
	if _, err := c.do(ctx, http.MethodPost, "/balance", req, &res); err != nil {
		return balance.Result{}, err
	}
	return res, nil
}
