package compress

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSegmentsPlainText(t *testing.T) {
	segments, err := ParseSegments("Describe the system.", 0.33)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, "Describe the system.", segments[0].Text)
	assert.True(t, segments[0].Compress)
	assert.Equal(t, 0.33, segments[0].Rate)
}

func TestParseSegmentsAnnotated(t *testing.T) {
	prompt := "<llmlingua, compress=False>KEEP THIS VERBATIM</llmlingua>" +
		"<llmlingua, rate=0.5>background material</llmlingua>" +
		"<llmlingua, rate=0.8, compress=True>more background</llmlingua>"

	segments, err := ParseSegments(prompt, 0.33)
	require.NoError(t, err)
	require.Len(t, segments, 3)

	assert.False(t, segments[0].Compress)
	assert.Equal(t, 1.0, segments[0].Rate)
	assert.Equal(t, "KEEP THIS VERBATIM", segments[0].Text)

	assert.True(t, segments[1].Compress)
	assert.Equal(t, 0.5, segments[1].Rate)

	assert.True(t, segments[2].Compress)
	assert.Equal(t, 0.8, segments[2].Rate)
}

func TestParseSegmentsCompressBeforeRate(t *testing.T) {
	segments, err := ParseSegments("<llmlingua, compress=True, rate=0.4>text</llmlingua>", 0.33)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, 0.4, segments[0].Rate)
	assert.True(t, segments[0].Compress)
}

func TestParseSegmentsRejectsRateAboveOne(t *testing.T) {
	_, err := ParseSegments("<llmlingua, rate=1.5>text</llmlingua>", 0.33)
	assert.Error(t, err)
}

func TestStripMarkup(t *testing.T) {
	prompt := "<llmlingua, compress=False>Answer in JSON.</llmlingua><llmlingua, rate=0.5>Context here.</llmlingua>"
	assert.Equal(t, "Answer in JSON.Context here.", StripMarkup(prompt))
	assert.Equal(t, "no markup at all", StripMarkup("no markup at all"))
}

type fakeCompressor struct {
	calls int
	fail  bool
}

func (f *fakeCompressor) Compress(_ context.Context, text string, _ float64) (Result, error) {
	f.calls++
	if f.fail {
		return Result{}, assert.AnError
	}
	return Result{
		CompressedPrompt: strings.ToUpper(text),
		CompressedTokens: len(text) / 2,
		OriginTokens:     len(text),
	}, nil
}

func TestProcessPromptCompressesOnlyMarkedSegments(t *testing.T) {
	fake := &fakeCompressor{}
	prompt := "<llmlingua, compress=False>keep</llmlingua><llmlingua, rate=0.5>shrink</llmlingua>"

	result, err := ProcessPrompt(context.Background(), fake, prompt, 0.33, nil)
	require.NoError(t, err)
	assert.Equal(t, "keepSHRINK", result.CompressedPrompt)
	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, len("shrink"), result.OriginTokens)
}

func TestProcessPromptDegradesOnCompressorFailure(t *testing.T) {
	fake := &fakeCompressor{fail: true}

	result, err := ProcessPrompt(context.Background(), fake, "some long context", 0.33, nil)
	require.NoError(t, err)
	assert.Equal(t, "some long context", result.CompressedPrompt)
}

func TestHTTPCompressorMemoizes(t *testing.T) {
	var served int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served++
		var req compressRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		json.NewEncoder(w).Encode(Result{
			CompressedPrompt: "short",
			CompressedTokens: 1,
			OriginTokens:     4,
		})
	}))
	defer server.Close()

	compressor := NewHTTPCompressor(server.URL, 5*time.Second)

	first, err := compressor.Compress(context.Background(), "long text", 0.33)
	require.NoError(t, err)
	second, err := compressor.Compress(context.Background(), "long text", 0.33)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, served)
}

func TestHTTPCompressorServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	compressor := NewHTTPCompressor(server.URL, 5*time.Second)
	_, err := compressor.Compress(context.Background(), "text", 0.33)
	assert.Error(t, err)
}

func TestIdentityCompressor(t *testing.T) {
	result, err := Identity{}.Compress(context.Background(), "unchanged", 0.5)
	require.NoError(t, err)
	assert.Equal(t, "unchanged", result.CompressedPrompt)
	assert.Zero(t, result.OriginTokens)
}
