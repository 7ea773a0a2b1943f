package genie

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/grantdesk/pkg/config"
	"go.uber.org/zap"
)

type chatRequest struct {
	Model    string `json:"model"`
	Stream   bool   `json:"stream"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

// fakeLLM serves chat completions, streaming the reply word by word when
// asked to.
func fakeLLM(t *testing.T, words []string) (*httptest.Server, *chatRequest) {
	t.Helper()

	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		if !got.Stream {
			w.Header().Set("Content-Type", "application/json")
			full := strings.Join(words, "")
			fmt.Fprintf(w, `{"id":"c1","object":"chat.completion","model":"test","choices":[{"index":0,"message":{"role":"assistant","content":%q},"finish_reason":"stop"}],"usage":{"total_tokens":12}}`, full)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, word := range words {
			fmt.Fprintf(w, "data: {\"id\":\"c1\",\"object\":\"chat.completion.chunk\",\"model\":\"test\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", word)
			flusher.Flush()
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
		flusher.Flush()
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func newTestClient(url string) *Client {
	return NewClient(config.GenieConfig{APIKey: "sk-test", BaseURL: url + "/v1", Model: "test-model", Timeout: 5 * time.Second}, zap.NewNop())
}

func TestComplete(t *testing.T) {
	srv, got := fakeLLM(t, []string{"Try ", "the ", "Arts Council."})
	a, ok := Lookup("grant-search")
	require.True(t, ok)

	text, err := newTestClient(srv.URL).Complete(context.Background(), a, []Message{{Role: "user", Content: "arts funding?"}})
	require.NoError(t, err)
	assert.Equal(t, "Try the Arts Council.", text)

	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, a.SystemPrompt, got.Messages[0].Content)
	assert.Equal(t, "arts funding?", got.Messages[1].Content)
}

func TestStreamDeliversDeltasInOrder(t *testing.T) {
	srv, got := fakeLLM(t, []string{"Dear ", "funder", ","})
	a, _ := Lookup("proposal")

	var deltas []string
	err := newTestClient(srv.URL).Stream(context.Background(), a, []Message{{Role: "user", Content: "open a letter"}}, func(d string) error {
		deltas = append(deltas, d)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Dear ", "funder", ","}, deltas)
	assert.True(t, got.Stream)
}

func TestStreamStopsWhenCallbackFails(t *testing.T) {
	srv, _ := fakeLLM(t, []string{"a", "b", "c"})
	a, _ := Lookup("compliance")

	stop := fmt.Errorf("client went away")
	calls := 0
	err := newTestClient(srv.URL).Stream(context.Background(), a, []Message{{Role: "user", Content: "x"}}, func(string) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestCompleteUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"error":{"message":"overloaded","type":"server_error"}}`)
	}))
	defer srv.Close()

	a, _ := Lookup("donor-practice")
	_, err := newTestClient(srv.URL).Complete(context.Background(), a, []Message{{Role: "user", Content: "hi"}})
	assert.Error(t, err)
}

func TestLookup(t *testing.T) {
	for _, name := range Names() {
		a, ok := Lookup(name)
		assert.True(t, ok, name)
		assert.Equal(t, name, a.Name)
		assert.NotEmpty(t, a.SystemPrompt)
	}
	_, ok := Lookup("poetry")
	assert.False(t, ok)
}
