package compress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Result carries one compression outcome with its token accounting.
type Result struct {
	CompressedPrompt string `json:"compressed_prompt"`
	CompressedTokens int    `json:"compressed_tokens"`
	OriginTokens     int    `json:"origin_tokens"`
}

// Compressor reduces a span of prompt text to roughly rate times its
// original token count.
type Compressor interface {
	Compress(ctx context.Context, text string, rate float64) (Result, error)
}

// Identity is a no-op Compressor used when no compression service is
// configured.
type Identity struct{}

func (Identity) Compress(_ context.Context, text string, _ float64) (Result, error) {
	return Result{CompressedPrompt: text}, nil
}

// HTTPCompressor calls an external compression service. Results are
// memoized per (rate, text) since prompts repeat heavily across
// pipeline runs.
type HTTPCompressor struct {
	url    string
	client *http.Client
	memo   *lru.Cache[string, Result]
}

const memoSize = 512

// NewHTTPCompressor returns a compressor backed by the service at url.
func NewHTTPCompressor(url string, timeout time.Duration) *HTTPCompressor {
	memo, _ := lru.New[string, Result](memoSize)
	return &HTTPCompressor{
		url:    url,
		client: &http.Client{Timeout: timeout},
		memo:   memo,
	}
}

type compressRequest struct {
	Text string  `json:"text"`
	Rate float64 `json:"rate"`
}

func (c *HTTPCompressor) Compress(ctx context.Context, text string, rate float64) (Result, error) {
	key := fmt.Sprintf("%.4f\x1f%s", rate, text)
	if cached, ok := c.memo.Get(key); ok {
		return cached, nil
	}

	body, err := json.Marshal(compressRequest{Text: text, Rate: rate})
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode compression request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("failed to build compression request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("compression service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("compression service returned status %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("failed to decode compression response: %w", err)
	}

	c.memo.Add(key, result)
	return result, nil
}

// ProcessPrompt compresses the compressible segments of a prompt and
// reassembles it. Segments marked compress=False pass through
// untouched. A compressor failure on one segment degrades to the
// original segment text instead of failing the whole prompt.
func ProcessPrompt(ctx context.Context, compressor Compressor, prompt string, globalRate float64, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	segments, err := ParseSegments(prompt, globalRate)
	if err != nil {
		return Result{}, err
	}

	var out Result
	for _, seg := range segments {
		if !seg.Compress {
			out.CompressedPrompt += seg.Text
			continue
		}
		compressed, err := compressor.Compress(ctx, seg.Text, seg.Rate)
		if err != nil {
			logger.Warn(
				"segment compression failed, keeping original text",
				slog.Float64("rate", seg.Rate),
				slog.String("error", err.Error()),
			)
			out.CompressedPrompt += seg.Text
			continue
		}
		out.CompressedPrompt += compressed.CompressedPrompt
		out.CompressedTokens += compressed.CompressedTokens
		out.OriginTokens += compressed.OriginTokens
	}
	return out, nil
}
