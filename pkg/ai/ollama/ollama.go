package ollama

import (
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/docketlabs/docket/backend/pkg/ai"

	"github.com/ollama/ollama/api"
	"golang.org/x/sync/semaphore"
)

// OllamaEmbeddingClient implements ai.EmbeddingClient using a locally hosted
// Ollama server as the backend.
type OllamaEmbeddingClient struct {
	embeddingModel string
	dimensions     int
	maxInputTokens int
	timeout        time.Duration

	reqLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client

	Client *api.Client
}

// NewOllamaEmbeddingClientParams contains configuration options for creating
// a new OllamaEmbeddingClient.
type NewOllamaEmbeddingClientParams struct {
	EmbeddingModel string

	BaseURL string
	APIKey  string

	Dimensions     int
	MaxInputTokens int
	Timeout        time.Duration

	MaxConcurrentRequests int64
}

type headerTransport struct {
	headers map[string]string
	rt      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone so original request isn't modified
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		// don't overwrite if already set
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	return t.rt.RoundTrip(r)
}

// NewOllamaEmbeddingClient creates a new Ollama-backed embedding client. It
// connects to the Ollama server at the given BaseURL (or the default if
// empty) and uses the configured model for embeddings.
func NewOllamaEmbeddingClient(
	params NewOllamaEmbeddingClientParams,
) (*OllamaEmbeddingClient, error) {
	var (
		u   *url.URL
		err error
	)

	if params.BaseURL != "" {
		u, err = url.Parse(params.BaseURL)
		if err != nil {
			return nil, err
		}
	}

	if params.Dimensions <= 0 {
		params.Dimensions = defaultDimensions
	}
	if params.Timeout <= 0 {
		params.Timeout = 30 * time.Second
	}
	if params.MaxConcurrentRequests <= 0 {
		params.MaxConcurrentRequests = 1
	}

	httpClient := &http.Client{
		Transport: &headerTransport{
			headers: map[string]string{
				"Authorization": "Bearer " + params.APIKey,
			},
			rt: http.DefaultTransport,
		},
	}

	cli := api.NewClient(u, httpClient)

	sem := semaphore.NewWeighted(params.MaxConcurrentRequests)

	return &OllamaEmbeddingClient{
		embeddingModel: params.EmbeddingModel,
		dimensions:     params.Dimensions,
		maxInputTokens: params.MaxInputTokens,
		timeout:        params.Timeout,

		reqLock: sem,

		metricsLock: sync.Mutex{},
		metrics: ai.ModelMetrics{
			InputTokens:  0,
			OutputTokens: 0,
			TotalTokens:  0,
			DurationMs:   0,
		},

		baseURL:    u,
		apiKey:     params.APIKey,
		httpClient: httpClient,

		Client: cli,
	}, nil
}
