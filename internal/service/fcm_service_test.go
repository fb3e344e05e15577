package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// An FCMService without credentials runs in disabled mode: every method
// returns a structured failure instead of erroring.
func TestDisabledPushReturnsStructuredResults(t *testing.T) {
	svc := NewFCMService("")
	require.False(t, svc.Enabled())
	ctx := context.Background()

	res := svc.SendToToken(ctx, "tok-1", PushNotification{Title: "Hi"}, nil)
	assert.False(t, res.Success)
	assert.Equal(t, "tok-1", res.Token)
	assert.NotEmpty(t, res.Error)

	mres := svc.SendToTokens(ctx, []string{"tok-1", "tok-2"}, PushNotification{}, nil)
	assert.False(t, mres.Success)
	assert.Equal(t, 2, mres.FailureCount)
	require.Len(t, mres.Results, 2)
	for _, r := range mres.Results {
		assert.False(t, r.Success)
		assert.NotEmpty(t, r.Error)
	}

	tres := svc.SendToTopic(ctx, "all_users", PushNotification{}, nil)
	assert.False(t, tres.Success)
	assert.Equal(t, "all_users", tres.Topic)

	ok, failed := svc.SubscribeToTopic(ctx, []string{"tok-1"}, "all_users")
	assert.Zero(t, ok)
	assert.Equal(t, 1, failed)
}

func TestSendToTokensEmptyInputIsSuccess(t *testing.T) {
	svc := NewFCMService("")
	mres := svc.SendToTokens(context.Background(), nil, PushNotification{}, nil)
	assert.True(t, mres.Success)
	assert.Empty(t, mres.Results)
}

func TestWithDefaultsInjectsTypeAndClickAction(t *testing.T) {
	out := withDefaults(map[string]string{"order_id": "7"})
	assert.Equal(t, "7", out["order_id"])
	assert.Equal(t, "general", out["type"])
	assert.Equal(t, defaultClickAction, out["click_action"])

	out = withDefaults(map[string]string{"type": "order"})
	assert.Equal(t, "order", out["type"])
}

func TestChunkTokensCoversEveryTokenExactlyOnce(t *testing.T) {
	tokens := make([]string, 1203)
	for i := range tokens {
		tokens[i] = fmt.Sprintf("tok-%d", i)
	}
	chunks := chunkTokens(tokens, 500)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 500)
	assert.Len(t, chunks[1], 500)
	assert.Len(t, chunks[2], 203)

	seen := make(map[string]int)
	for _, c := range chunks {
		for _, tok := range c {
			seen[tok]++
		}
	}
	require.Len(t, seen, len(tokens))
	for tok, n := range seen {
		assert.Equal(t, 1, n, "token %s appeared %d times", tok, n)
	}

	assert.Empty(t, chunkTokens(nil, 500))
}
