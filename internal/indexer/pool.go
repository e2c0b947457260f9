package indexer

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/wnt/swaplens/internal/metrics"
	"golang.org/x/time/rate"
)

// Pool manages a set of indexer API endpoints with round-robin selection,
// per-endpoint rate limiting and health tracking.
type Pool struct {
	endpoints []*Endpoint
	current   int
	mutex     sync.RWMutex
	logger    zerolog.Logger
}

// Endpoint is a single indexer base URL with its own rate limiter.
type Endpoint struct {
	URL           string
	client        *http.Client
	limiter       *rate.Limiter
	healthy       bool
	cooldownUntil time.Time
	mutex         sync.RWMutex
}

// NewPool creates a pool over the given base URLs. Each endpoint is rate
// limited to ~2 req/s to stay under free tier limits.
func NewPool(urls []string, logger zerolog.Logger) *Pool {
	endpoints := make([]*Endpoint, len(urls))

	for i, url := range urls {
		endpoints[i] = &Endpoint{
			URL: url,
			client: &http.Client{
				Timeout: 30 * time.Second,
			},
			limiter: rate.NewLimiter(rate.Limit(2.0), 5),
			healthy: true,
		}

		metrics.SetIndexerEndpointHealth(url, true)
	}

	return &Pool{
		endpoints: endpoints,
		current:   rand.Intn(len(endpoints)),
		logger:    logger.With().Str("component", "indexer_pool").Logger(),
	}
}

// Acquire returns the next available endpoint's client and base URL,
// skipping unhealthy or cooled-down endpoints. When every endpoint is rate
// limited it waits on the first one, honoring context cancellation.
func (p *Pool) Acquire(ctx context.Context) (*http.Client, string, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	attempts := 0
	startIndex := p.current

	for {
		endpoint := p.endpoints[p.current]
		p.current = (p.current + 1) % len(p.endpoints)
		attempts++

		endpoint.mutex.RLock()
		inCooldown := time.Now().Before(endpoint.cooldownUntil)
		healthy := endpoint.healthy
		endpoint.mutex.RUnlock()

		if inCooldown || !healthy {
			p.logger.Debug().
				Str("endpoint", endpoint.URL).
				Bool("cooldown", inCooldown).
				Msg("Endpoint unavailable, skipping")

			if attempts >= len(p.endpoints) {
				break
			}
			continue
		}

		if endpoint.limiter.Allow() {
			return endpoint.client, endpoint.URL, nil
		}

		if attempts >= len(p.endpoints) {
			break
		}
	}

	// Everyone is rate limited; reserve a slot on the starting endpoint and
	// wait it out.
	endpoint := p.endpoints[startIndex]

	p.logger.Debug().
		Str("endpoint", endpoint.URL).
		Msg("All endpoints rate limited, waiting for availability")

	reservation := endpoint.limiter.Reserve()
	if !reservation.OK() {
		return nil, "", fmt.Errorf("rate limiter failed to make reservation")
	}

	delay := reservation.Delay()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			reservation.Cancel()
			return nil, "", ctx.Err()
		}
	}

	return endpoint.client, endpoint.URL, nil
}

// MarkUnhealthy flags an endpoint so Acquire skips it.
func (p *Pool) MarkUnhealthy(url string) {
	for _, endpoint := range p.endpoints {
		if endpoint.URL == url {
			endpoint.mutex.Lock()
			endpoint.healthy = false
			endpoint.mutex.Unlock()

			metrics.SetIndexerEndpointHealth(url, false)
			p.logger.Warn().Str("endpoint", url).Msg("Marked endpoint as unhealthy")
			break
		}
	}
}

// MarkHealthy restores an endpoint and clears any cooldown.
func (p *Pool) MarkHealthy(url string) {
	for _, endpoint := range p.endpoints {
		if endpoint.URL == url {
			endpoint.mutex.Lock()
			wasHealthy := endpoint.healthy
			endpoint.healthy = true
			endpoint.cooldownUntil = time.Time{}
			endpoint.mutex.Unlock()

			metrics.SetIndexerEndpointHealth(url, true)
			if !wasHealthy {
				p.logger.Info().Str("endpoint", url).Msg("Marked endpoint as healthy")
			}
			break
		}
	}
}

// SetCooldown benches an endpoint for the given duration.
func (p *Pool) SetCooldown(url string, duration time.Duration) {
	for _, endpoint := range p.endpoints {
		if endpoint.URL == url {
			endpoint.mutex.Lock()
			endpoint.cooldownUntil = time.Now().Add(duration)
			endpoint.mutex.Unlock()

			p.logger.Warn().
				Str("endpoint", url).
				Dur("duration", duration).
				Msg("Set endpoint cooldown")
			break
		}
	}
}

// HealthyCount returns the number of endpoints currently usable.
func (p *Pool) HealthyCount() int {
	count := 0
	for _, endpoint := range p.endpoints {
		endpoint.mutex.RLock()
		if endpoint.healthy && time.Now().After(endpoint.cooldownUntil) {
			count++
		}
		endpoint.mutex.RUnlock()
	}
	return count
}
