package openai

import (
	"sync"
	"time"

	"github.com/docketlabs/docket/backend/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/semaphore"
)

// OpenAIEmbeddingClient implements ai.EmbeddingClient against an
// OpenAI-compatible embeddings endpoint.
//
// An OpenAIEmbeddingClient should be created using NewOpenAIEmbeddingClient.
type OpenAIEmbeddingClient struct {
	embeddingModel string
	dimensions     int
	maxInputTokens int
	timeout        time.Duration

	reqLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	Client *openai.Client
}

// NewOpenAIEmbeddingClientParams defines the configuration for creating a
// new OpenAIEmbeddingClient.
//
// Dimensions is the vector size results are padded or truncated to, so the
// database column stays consistent across model changes. MaxInputTokens
// bounds each input before it is sent. MaxConcurrentRequests limits
// parallel calls against the endpoint.
type NewOpenAIEmbeddingClientParams struct {
	EmbeddingModel string

	BaseURL string
	APIKey  string

	Dimensions     int
	MaxInputTokens int
	Timeout        time.Duration

	MaxConcurrentRequests int64
}

// NewOpenAIEmbeddingClient creates and returns a new OpenAIEmbeddingClient
// configured with the provided parameters.
func NewOpenAIEmbeddingClient(
	params NewOpenAIEmbeddingClientParams,
) *OpenAIEmbeddingClient {
	if params.Dimensions <= 0 {
		params.Dimensions = defaultDimensions
	}
	if params.Timeout <= 0 {
		params.Timeout = 30 * time.Second
	}
	if params.MaxConcurrentRequests <= 0 {
		params.MaxConcurrentRequests = 1
	}

	client := newOpenaiClient(params.BaseURL, params.APIKey)

	return &OpenAIEmbeddingClient{
		embeddingModel: params.EmbeddingModel,
		dimensions:     params.Dimensions,
		maxInputTokens: params.MaxInputTokens,
		timeout:        params.Timeout,

		reqLock: semaphore.NewWeighted(params.MaxConcurrentRequests),

		metricsLock: sync.Mutex{},
		metrics: ai.ModelMetrics{
			InputTokens:  0,
			OutputTokens: 0,
			TotalTokens:  0,
			DurationMs:   0,
		},

		Client: client,
	}
}

func newOpenaiClient(
	baseURL string,
	apiKey string,
) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}

	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)

	return &client
}
