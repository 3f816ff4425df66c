package ai

import (
	"context"
	"time"

	"github.com/docketlabs/docket/backend/pkg/logger"

	"github.com/sony/gobreaker"
)

// BreakerClient wraps an EmbeddingClient with a circuit breaker so a dead
// embedding service fails fast instead of holding every request until its
// timeout. Once open, calls return gobreaker.ErrOpenState immediately and
// callers take their degraded path.
type BreakerClient struct {
	inner EmbeddingClient
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerClient wraps inner in a circuit breaker. The breaker opens after
// at least 3 requests with a failure ratio of 60% or more within a one
// minute window, and probes again after 30 seconds.
func NewBreakerClient(name string, inner EmbeddingClient) *BreakerClient {
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Embedding circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	}
	return &BreakerClient{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker(st),
	}
}

func (c *BreakerClient) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	res, err := c.cb.Execute(func() (any, error) {
		return c.inner.GenerateEmbedding(ctx, input)
	})
	if err != nil {
		return nil, err
	}
	return res.([]float32), nil
}

func (c *BreakerClient) GenerateEmbeddings(ctx context.Context, inputs [][]byte) ([][]float32, error) {
	res, err := c.cb.Execute(func() (any, error) {
		return c.inner.GenerateEmbeddings(ctx, inputs)
	})
	if err != nil {
		return nil, err
	}
	return res.([][]float32), nil
}

func (c *BreakerClient) ResetMetrics() {
	c.inner.ResetMetrics()
}

func (c *BreakerClient) GetMetrics() ModelMetrics {
	return c.inner.GetMetrics()
}
