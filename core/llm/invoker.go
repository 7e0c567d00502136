package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"

	"github.com/plimantour/rai-agent/core/pricing"
)

// Request is one completion request before model-family shaping.
type Request struct {
	Model           string
	SystemPrompt    string
	Prompt          string
	Temperature     float64
	JSONMode        bool
	ReasoningEffort string
	MaxOutputTokens int64
}

// SummaryStatus records the outcome of reasoning-summary extraction.
type SummaryStatus string

const (
	// SummaryCaptured means non-empty summary text was extracted.
	SummaryCaptured SummaryStatus = "captured"
	// SummaryEmpty means a reasoning segment existed but carried no text.
	SummaryEmpty SummaryStatus = "empty"
	// SummaryAbsent means the response had no reasoning segment at all.
	SummaryAbsent SummaryStatus = "absent"
)

// ReasoningSummary is the reasoning trace digest from one invocation.
type ReasoningSummary struct {
	Text             string
	Status           SummaryStatus
	FallbackUsed     bool
	UsedResponsesAPI bool
}

// Result normalizes both endpoint families into one shape.
// OutputTokens includes hidden reasoning tokens, which are billed but
// not returned in the visible completion count.
type Result struct {
	Answer       string
	Model        string
	PromptTokens int64
	OutputTokens int64
	FinishReason string
	Summary      ReasoningSummary
}

// FinishLength is the normalized finish reason for truncated output.
const FinishLength = "length"

// Invoker shapes requests per model profile and handles the bounded
// parameter-stripping retry when a provider rejects an optional field.
type Invoker struct {
	api     API
	pricing *pricing.Table
	logger  *slog.Logger
}

func NewInvoker(api API, table *pricing.Table, logger *slog.Logger) *Invoker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Invoker{api: api, pricing: table, logger: logger}
}

// Invoke issues one completion request. Reasoning models go through
// the responses endpoint, which is the only one that reports reasoning
// summaries; everything else goes through chat completions.
func (inv *Invoker) Invoke(ctx context.Context, req Request) (Result, error) {
	profile := inv.pricing.Profile(req.Model)
	if inv.pricing.IsReasoning(req.Model) {
		return inv.invokeResponses(ctx, req, profile)
	}
	return inv.invokeChat(ctx, req, profile)
}

func (inv *Invoker) invokeChat(ctx context.Context, req Request, profile pricing.ModelProfile) (Result, error) {
	includeEffort := req.ReasoningEffort != "" && profile.SupportsReasoningEffort
	includeFormat := req.JSONMode

	attempts := 1
	if includeEffort {
		attempts++
	}
	if includeFormat {
		attempts++
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		params := buildChatParams(req, profile, includeEffort, includeFormat)
		completion, err := inv.api.CreateChat(ctx, params)
		if err == nil {
			return chatResult(req.Model, completion), nil
		}
		lastErr = err
		if !isUnsupportedParameter(err) {
			return Result{}, fmt.Errorf("completion request for %s failed: %w", req.Model, err)
		}
		switch {
		case includeEffort:
			includeEffort = false
			inv.logger.Warn("provider rejected reasoning_effort, retrying without it", slog.String("model", req.Model))
		case includeFormat:
			includeFormat = false
			inv.logger.Warn("provider rejected response_format, retrying without it", slog.String("model", req.Model))
		}
	}
	return Result{}, fmt.Errorf("completion request for %s failed after stripping optional parameters: %w", req.Model, lastErr)
}

func buildChatParams(req Request, profile pricing.ModelProfile, includeEffort, includeFormat bool) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.SystemPrompt),
			openai.UserMessage(req.Prompt),
		},
	}
	if profile.SupportsSampling {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxOutputTokens > 0 {
		if profile.TokenParam == "max_completion_tokens" {
			params.MaxCompletionTokens = openai.Int(req.MaxOutputTokens)
		} else {
			params.MaxTokens = openai.Int(req.MaxOutputTokens)
		}
	}
	if includeEffort {
		params.ReasoningEffort = shared.ReasoningEffort(req.ReasoningEffort)
	}
	if includeFormat {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	return params
}

func chatResult(model string, completion *openai.ChatCompletion) Result {
	result := Result{Model: model, FinishReason: "unknown"}
	if completion == nil {
		return result
	}
	if len(completion.Choices) > 0 {
		result.Answer = completion.Choices[0].Message.Content
		result.FinishReason = string(completion.Choices[0].FinishReason)
	}
	result.PromptTokens = completion.Usage.PromptTokens
	result.OutputTokens = completion.Usage.CompletionTokens +
		completion.Usage.CompletionTokensDetails.ReasoningTokens
	result.Summary = ReasoningSummary{Status: SummaryAbsent}
	return result
}

func (inv *Invoker) invokeResponses(ctx context.Context, req Request, profile pricing.ModelProfile) (Result, error) {
	result, err := inv.callResponses(ctx, req, profile, shared.ReasoningSummaryAuto)
	if err != nil {
		return Result{}, err
	}
	if result.Summary.Status == SummaryCaptured {
		return result, nil
	}

	// One fallback attempt asking for a detailed summary. The retry is
	// a full billed invocation, so its usage is added to the first's.
	inv.logger.Info("no reasoning summary returned, retrying with detailed summary", slog.String("model", req.Model))
	retried, err := inv.callResponses(ctx, req, profile, shared.ReasoningSummaryDetailed)
	if err != nil {
		inv.logger.Warn("detailed summary retry failed, keeping first response", slog.String("error", err.Error()))
		result.Summary.FallbackUsed = true
		return result, nil
	}
	retried.PromptTokens += result.PromptTokens
	retried.OutputTokens += result.OutputTokens
	retried.Summary.FallbackUsed = true
	return retried, nil
}

func (inv *Invoker) callResponses(ctx context.Context, req Request, profile pricing.ModelProfile, summaryMode shared.ReasoningSummary) (Result, error) {
	includeEffort := req.ReasoningEffort != "" && profile.SupportsReasoningEffort

	attempts := 1
	if includeEffort {
		attempts++
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		params := buildResponseParams(req, includeEffort, summaryMode)
		response, err := inv.api.CreateResponse(ctx, params)
		if err == nil {
			return responsesResult(req.Model, response), nil
		}
		lastErr = err
		if !isUnsupportedParameter(err) {
			return Result{}, fmt.Errorf("responses request for %s failed: %w", req.Model, err)
		}
		if includeEffort {
			includeEffort = false
			inv.logger.Warn("provider rejected reasoning effort, retrying without it", slog.String("model", req.Model))
		}
	}
	return Result{}, fmt.Errorf("responses request for %s failed after stripping optional parameters: %w", req.Model, lastErr)
}

func buildResponseParams(req Request, includeEffort bool, summaryMode shared.ReasoningSummary) responses.ResponseNewParams {
	input := responses.ResponseInputParam{
		responses.ResponseInputItemParamOfMessage(req.SystemPrompt, responses.EasyInputMessageRoleSystem),
		responses.ResponseInputItemParamOfMessage(req.Prompt, responses.EasyInputMessageRoleUser),
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(req.Model),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: input,
		},
	}
	if req.MaxOutputTokens > 0 {
		params.MaxOutputTokens = openai.Int(req.MaxOutputTokens)
	}

	params.Reasoning = shared.ReasoningParam{Summary: summaryMode}
	if includeEffort {
		params.Reasoning.Effort = shared.ReasoningEffort(req.ReasoningEffort)
	}
	return params
}

func responsesResult(model string, response *responses.Response) Result {
	result := Result{Model: model, FinishReason: "unknown"}
	if response == nil {
		return result
	}

	result.Answer = outputText(response)
	result.FinishReason = "stop"
	if response.IncompleteDetails.Reason == "max_output_tokens" {
		result.FinishReason = FinishLength
	}
	result.PromptTokens = response.Usage.InputTokens
	result.OutputTokens = response.Usage.OutputTokens +
		response.Usage.OutputTokensDetails.ReasoningTokens

	text, status := summaryFromResponse(response)
	result.Summary = ReasoningSummary{
		Text:             text,
		Status:           status,
		UsedResponsesAPI: true,
	}
	return result
}

// outputText flattens the message items of a response into one string.
func outputText(response *responses.Response) string {
	var sb strings.Builder
	for _, item := range response.Output {
		if item.Type != "message" {
			continue
		}
		for _, content := range item.Content {
			if content.Type == "output_text" {
				sb.WriteString(content.Text)
			}
		}
	}
	return sb.String()
}

// isUnsupportedParameter matches the provider's rejection of an
// optional field a given deployment does not accept.
func isUnsupportedParameter(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Unsupported parameter") ||
		strings.Contains(msg, "unsupported_parameter") ||
		strings.Contains(msg, "Unsupported value")
}
