// Package llm issues completion requests shaped to each model
// family's accepted parameters and normalizes provider responses into
// a single result type.
package llm

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/plimantour/rai-agent/core/config"
)

// API is the thin seam over the provider SDK. Both endpoint families
// are exposed because reasoning models report their summaries only
// through the responses endpoint.
type API interface {
	CreateChat(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
	CreateResponse(ctx context.Context, params responses.ResponseNewParams) (*responses.Response, error)
}

type clientAPI struct {
	client *openai.Client
}

// NewAPI builds a provider client from the configured endpoint. Azure
// deployments authenticate with the api-key header and pin an API
// version via query parameter.
func NewAPI(cfg config.OpenAIConfig) API {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}
	if cfg.APIVersion != "" {
		opts = append(opts,
			option.WithHeader("api-key", cfg.APIKey),
			option.WithQuery("api-version", cfg.APIVersion),
		)
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout.Std()))
	}

	client := openai.NewClient(opts...)
	return &clientAPI{client: &client}
}

func (c *clientAPI) CreateChat(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}

func (c *clientAPI) CreateResponse(ctx context.Context, params responses.ResponseNewParams) (*responses.Response, error) {
	return c.client.Responses.New(ctx, params)
}
