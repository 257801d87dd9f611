package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(srv.URL, "test-key", "gemini-test")
	require.NoError(t, err)
	return srv, client
}

func textResponse(text string) []byte {
	b, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"role": "model", "parts": []map[string]any{{"text": text}}}},
		},
	})
	return b
}

func TestClientGenerateSendsPromptAndKey(t *testing.T) {
	var got generateContentRequest
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write(textResponse("hello"))
	})

	text, err := client.Generate(context.Background(), GenerateRequest{
		Prompt: "say hello",
		System: "be brief",
		JSON:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	require.Len(t, got.Contents, 1)
	assert.Equal(t, "say hello", got.Contents[0].Parts[0].Text)
	require.NotNil(t, got.SystemInstruction)
	assert.Equal(t, "be brief", got.SystemInstruction.Parts[0].Text)
	assert.Equal(t, "application/json", got.GenerationConfig.ResponseMIMEType)
}

func TestClientGenerateJoinsParts(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"a"},{"text":"b"}]}}]}`))
	})
	text, err := client.Generate(context.Background(), GenerateRequest{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "ab", text)
}

func TestClientGenerateEmptyResponse(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[],"promptFeedback":{"blockReason":"SAFETY"}}`))
	})
	_, err := client.Generate(context.Background(), GenerateRequest{Prompt: "x"})
	require.ErrorIs(t, err, ErrEmptyResponse)
	assert.Contains(t, err.Error(), "SAFETY")
}

func TestClientGenerateGoogleErrorEnvelope(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"API key not valid.","status":"INVALID_ARGUMENT"}}`))
	})
	_, err := client.Generate(context.Background(), GenerateRequest{Prompt: "x"})
	require.Error(t, err)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.Equal(t, "INVALID_ARGUMENT: API key not valid.", se.Message)
	assert.ErrorIs(t, err, ErrInvalidAPIKey)
}

func TestStatusErrorAuthClassification(t *testing.T) {
	cases := []struct {
		err  *StatusError
		auth bool
	}{
		{&StatusError{StatusCode: 401}, true},
		{&StatusError{StatusCode: 403, Message: "PERMISSION_DENIED: key restricted"}, true},
		{&StatusError{StatusCode: 400, Message: "INVALID_ARGUMENT: API key expired. Please renew the API key."}, true},
		{&StatusError{StatusCode: 400, Message: "API_KEY_INVALID"}, true},
		{&StatusError{StatusCode: 400, Message: "INVALID_ARGUMENT: bad temperature"}, false},
		{&StatusError{StatusCode: 429, Message: "RESOURCE_EXHAUSTED: quota"}, false},
		{&StatusError{StatusCode: 500}, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.auth, errors.Is(tc.err, ErrInvalidAPIKey), tc.err.Error())
		assert.Equal(t, tc.auth, IsAuthError(fmt.Errorf("wrapped: %w", tc.err)), tc.err.Error())
	}
	assert.True(t, IsAuthError(ErrMissingAPIKey))
	assert.False(t, IsAuthError(errors.New("other")))
}

func TestClientGeneratePlainErrorBody(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	})
	_, err := client.Generate(context.Background(), GenerateRequest{Prompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502: upstream down")
}

func TestClientGenerateHonorsContext(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Generate(ctx, GenerateRequest{Prompt: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient("http://localhost", "  ", "")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestNewClientDefaults(t *testing.T) {
	client, err := NewClient("", "k", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, client.baseURL)
	assert.Equal(t, DefaultModel, client.Model())
}

func TestParseErrorValueVariants(t *testing.T) {
	msg, ok := extractAPIErrorBody([]byte(`{"detail":"rate limited"}`))
	assert.True(t, ok)
	assert.Equal(t, "rate limited", msg)

	msg, ok = extractAPIErrorBody([]byte(`{"error":{"error":{"message":"nested"}}}`))
	assert.True(t, ok)
	assert.Equal(t, "nested", msg)

	_, ok = extractAPIErrorBody([]byte(`not json`))
	assert.False(t, ok)

	_, ok = extractAPIErrorBody(nil)
	assert.False(t, ok)

	assert.True(t, strings.HasPrefix((&StatusError{StatusCode: 500}).Error(), "HTTP 500"))
}
