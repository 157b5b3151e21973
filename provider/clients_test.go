package provider

import (
	"testing"
	"time"

	"github.com/slate-ai/slate/internal/testutil"
)

func TestClientCacheReusesClientPerEndpoint(t *testing.T) {
	assert := testutil.New(t)

	cache := NewClientCache(30 * time.Second)

	a := cache.Get("https://api.anthropic.com")
	b := cache.Get("https://api.anthropic.com")
	assert.True(a == b)

	c := cache.Get("https://api.openai.com")
	assert.True(a != c)
	assert.Equal(2, cache.Len())
}

func TestClientCachePutOverrides(t *testing.T) {
	assert := testutil.New(t)

	cache := NewClientCache(0)
	mock := &testutil.MockHTTPClient{}
	cache.Put("https://api.x.ai", mock)

	got := cache.Get("https://api.x.ai")
	assert.True(got == mock)
	assert.Equal(1, cache.Len())
}
