package chatgpt

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessageMarshalsPartsAsArray(t *testing.T) {
	msg := Message{Role: "user", Parts: []ContentPart{
		TextPart("what is this"),
		ImagePart("data:image/jpeg;base64,AAAA"),
	}}
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	require.JSONEq(t, `{"role":"user","content":[{"type":"text","text":"what is this"},{"type":"image_url","image_url":{"url":"data:image/jpeg;base64,AAAA"}}]}`, string(data))

	plain, err := json.Marshal(Message{Role: "system", Content: "be brief"})
	require.NoError(t, err)
	require.JSONEq(t, `{"role":"system","content":"be brief"}`, string(plain))
}

func TestMessageUnmarshalAcceptsBothShapes(t *testing.T) {
	var m Message
	require.NoError(t, json.Unmarshal([]byte(`{"role":"assistant","content":"hi"}`), &m))
	require.Equal(t, "hi", m.Content)

	require.NoError(t, json.Unmarshal([]byte(`{"role":"assistant","content":[{"type":"text","text":"a"},{"type":"text","text":"b"}]}`), &m))
	require.Equal(t, "ab", m.Content)
	require.Len(t, m.Parts, 2)

	require.NoError(t, json.Unmarshal([]byte(`{"role":"assistant","content":null}`), &m))
	require.Empty(t, m.Content)
}

func TestCreateChatCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.Contains(t, string(body), `"model":"gpt-4o-mini"`)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"calories\":420}"}}],"usage":{"prompt_tokens":12,"completion_tokens":5,"total_tokens":17}}`))
	}))
	defer srv.Close()

	client, err := NewClient("sk-test", srv.URL+"/v1/")
	require.NoError(t, err)
	resp, err := client.CreateChatCompletion(context.Background(), ChatCompletionRequest{
		Model:    "gpt-4o-mini",
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)
	require.Equal(t, `{"calories":420}`, resp.Choices[0].Message.Content)
	require.Equal(t, 17, resp.Usage.TotalTokens)
}

func TestCreateChatCompletionSurfacesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, err := NewClient("sk-test", srv.URL)
	require.NoError(t, err)
	_, err = client.CreateChatCompletion(context.Background(), ChatCompletionRequest{Model: "m"})
	require.ErrorContains(t, err, "status=429")
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(" ", "")
	require.Error(t, err)
}
