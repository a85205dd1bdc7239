package scrape

import (
	"context"
	"fmt"
	"sync"
	"time"

	"arena-tracker/internal/config"
	"arena-tracker/internal/constants"
	"arena-tracker/internal/reconstruct"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// Client fetches pages from the source site. All requests share one
// politeness limiter: at most one request per configured delay,
// regardless of how many reconstruction runs are in flight.
type Client struct {
	baseURL string
	delay   time.Duration
	client  *fasthttp.Client
	logger  zerolog.Logger

	mu       sync.Mutex
	lastFire time.Time
}

func NewClient(cfg *config.Config, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: cfg.SourceBaseURL,
		delay:   cfg.ScrapeDelay,
		client: &fasthttp.Client{
			MaxConnsPerHost:     4,
			ReadTimeout:         constants.ScrapeTimeout,
			WriteTimeout:        constants.ScrapeTimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger,
	}
}

// wait blocks until the politeness delay since the previous request has
// elapsed, or the context is done.
func (c *Client) wait(ctx context.Context) error {
	c.mu.Lock()
	now := time.Now()
	next := c.lastFire.Add(c.delay)
	if next.Before(now) {
		next = now
	}
	c.lastFire = next
	c.mu.Unlock()

	pause := time.Until(next)
	if pause <= 0 {
		return nil
	}

	timer := time.NewTimer(pause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	start := time.Now()
	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := c.client.DoTimeout(req, resp, constants.ScrapeTimeout); err != nil {
			return nil, err
		}
	}

	c.logger.Debug().
		Str("url", url).
		Int("status", resp.StatusCode()).
		Dur("duration", time.Since(start)).
		Msg("fetched source page")

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("source returned status %d for %s", resp.StatusCode(), url)
	}

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, nil
}

// FetchArenaRows downloads a team's arena history page and parses its
// table into raw rows ready for classification.
func (c *Client) FetchArenaRows(ctx context.Context, teamID string) ([]reconstruct.RawRow, error) {
	url := fmt.Sprintf("%s/teams/%s/arena", c.baseURL, teamID)
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch arena page for team %s: %w", teamID, err)
	}
	return ParseArenaTable(body)
}
