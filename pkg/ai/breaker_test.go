package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"
)

type fakeEmbedder struct {
	calls int
	err   error
	vec   []float32
}

func (f *fakeEmbedder) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

func (f *fakeEmbedder) GenerateEmbeddings(ctx context.Context, inputs [][]byte) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(inputs))
	for i := range out {
		out[i] = f.vec
	}
	return out, nil
}

func (f *fakeEmbedder) ResetMetrics() {}

func (f *fakeEmbedder) GetMetrics() ModelMetrics {
	return ModelMetrics{TotalTokens: f.calls}
}

func TestBreakerClient_PassesThroughSuccess(t *testing.T) {
	inner := &fakeEmbedder{vec: []float32{1, 2, 3}}
	c := NewBreakerClient("test", inner)

	got, err := c.GenerateEmbedding(context.Background(), []byte("hello"))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 dims, got %d", len(got))
	}
	if inner.calls != 1 {
		t.Fatalf("expected 1 inner call, got %d", inner.calls)
	}
}

func TestBreakerClient_OpensAfterRepeatedFailures(t *testing.T) {
	inner := &fakeEmbedder{err: errors.New("connection refused")}
	c := NewBreakerClient("test", inner)

	for i := 0; i < 3; i++ {
		if _, err := c.GenerateEmbedding(context.Background(), []byte("x")); err == nil {
			t.Fatalf("expected error on call %d, got nil", i+1)
		}
	}

	callsBefore := inner.calls
	_, err := c.GenerateEmbedding(context.Background(), []byte("x"))
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected ErrOpenState, got %v", err)
	}
	if inner.calls != callsBefore {
		t.Fatalf("expected no inner call while open, got %d extra", inner.calls-callsBefore)
	}
}

func TestBreakerClient_BatchPassesThrough(t *testing.T) {
	inner := &fakeEmbedder{vec: []float32{1}}
	c := NewBreakerClient("test", inner)

	got, err := c.GenerateEmbeddings(context.Background(), [][]byte{[]byte("a"), []byte("b")})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
}

func TestBreakerClient_DelegatesMetrics(t *testing.T) {
	inner := &fakeEmbedder{vec: []float32{1}}
	c := NewBreakerClient("test", inner)

	if _, err := c.GenerateEmbedding(context.Background(), []byte("x")); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if c.GetMetrics().TotalTokens != 1 {
		t.Fatalf("expected metrics from inner client, got %+v", c.GetMetrics())
	}
}
