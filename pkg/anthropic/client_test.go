package anthropic

import (
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSDKMessage_ConcatenatesTextBlocks(t *testing.T) {
	msg := &sdk.Message{
		Content: []sdk.ContentBlockUnion{
			{Type: "text", Text: "Hello "},
			{Type: "text", Text: "world"},
		},
		Usage: sdk.Usage{
			InputTokens:  100,
			OutputTokens: 25,
		},
	}

	resp, err := fromSDKMessage(msg)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", resp.Text)
	assert.Equal(t, int64(100), resp.Usage.InputTokens)
	assert.Equal(t, int64(25), resp.Usage.OutputTokens)
}

func TestFromSDKMessage_NoTextBlocksIsMalformed(t *testing.T) {
	msg := &sdk.Message{
		StopReason: "max_tokens",
		Content: []sdk.ContentBlockUnion{
			{Type: "tool_use"},
		},
	}

	_, err := fromSDKMessage(msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no text content")
}

func TestFromSDKMessage_EmptyContent(t *testing.T) {
	// An empty content array decodes to an empty answer; the pipeline's
	// fallback handles it, not this client.
	resp, err := fromSDKMessage(&sdk.Message{})
	require.NoError(t, err)
	assert.Empty(t, resp.Text)
}

func TestEstimateCost_KnownModel(t *testing.T) {
	u := TokenUsage{InputTokens: 1_000_000, OutputTokens: 500_000}
	cost := u.EstimateCost("claude-haiku-4-5-20251001")
	assert.InDelta(t, 0.80+2.00, cost, 0.0001)
}

func TestEstimateCost_UnknownModel(t *testing.T) {
	u := TokenUsage{InputTokens: 1000, OutputTokens: 1000}
	assert.Zero(t, u.EstimateCost("some-other-model"))
}
