package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test-key"

type annotateRequest struct {
	Requests []struct {
		Image struct {
			Content string `json:"content"`
		} `json:"image"`
		Features []struct {
			Type       string `json:"type"`
			MaxResults int    `json:"maxResults"`
		} `json:"features"`
	} `json:"requests"`
}

func newVisionServer(t *testing.T, status int, body string, inspect func(*http.Request, annotateRequest)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req annotateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		if inspect != nil {
			inspect(r, req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client, err := NewBackendClient(context.Background(), testKey, server.URL+"/", 5*time.Second)
	require.NoError(t, err)
	return client
}

func TestDominantColors(t *testing.T) {
	body := `{"responses":[{"imagePropertiesAnnotation":{"dominantColors":{"colors":[
		{"color":{"red":250,"green":2,"blue":2},"score":0.9},
		{"color":{"green":255},"score":0.95},
		{"color":{"blue":255},"score":0.1}
	]}}}]}`

	var calls int
	server := newVisionServer(t, http.StatusOK, body, func(r *http.Request, req annotateRequest) {
		calls++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/images:annotate", r.URL.Path)
		assert.Equal(t, testKey, r.URL.Query().Get("key"))
		require.Len(t, req.Requests, 1)
		assert.Equal(t, "aGVsbG8=", req.Requests[0].Image.Content)
		require.Len(t, req.Requests[0].Features, 1)
		assert.Equal(t, FeatureImageProperties, req.Requests[0].Features[0].Type)
		assert.Equal(t, MaxCandidates, req.Requests[0].Features[0].MaxResults)
	})

	got, err := newTestClient(t, server).DominantColors(context.Background(), "aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	require.Len(t, got, 3)
	assert.Equal(t, 250.0, got[0].Red)
	assert.Equal(t, 0.9, got[0].Score)
	assert.Equal(t, 0.0, got[1].Red)
	assert.Equal(t, 255.0, got[1].Green)
	assert.Equal(t, 255.0, got[2].Blue)
}

func TestDominantColorsUpstreamError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{
			name:    "error envelope",
			status:  http.StatusForbidden,
			body:    `{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`,
			message: "API key not valid",
		},
		{
			name:    "malformed body",
			status:  http.StatusBadRequest,
			body:    `<html>bad request</html>`,
			message: "Unknown error",
		},
		{
			name:    "envelope without message",
			status:  http.StatusForbidden,
			body:    `{"error":{"code":403}}`,
			message: "Unknown error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newVisionServer(t, tt.status, tt.body, nil)

			_, err := newTestClient(t, server).DominantColors(context.Background(), "aGVsbG8=")

			var upstream *UpstreamError
			require.ErrorAs(t, err, &upstream)
			assert.Equal(t, tt.status, upstream.StatusCode)
			assert.Equal(t, tt.message, upstream.Message)
		})
	}
}

func TestDominantColorsMalformedResponse(t *testing.T) {
	bodies := map[string]string{
		"no responses":       `{"responses":[]}`,
		"no annotation":      `{"responses":[{}]}`,
		"no dominant colors": `{"responses":[{"imagePropertiesAnnotation":{}}]}`,
		"annotation error":   `{"responses":[{"error":{"code":3,"message":"Bad image data."}}]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			server := newVisionServer(t, http.StatusOK, body, nil)

			_, err := newTestClient(t, server).DominantColors(context.Background(), "aGVsbG8=")

			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestDominantColorsNetworkFailure(t *testing.T) {
	server := newVisionServer(t, http.StatusOK, `{}`, nil)
	client := newTestClient(t, server)
	server.Close()

	_, err := client.DominantColors(context.Background(), "aGVsbG8=")

	require.Error(t, err)
	var upstream *UpstreamError
	assert.False(t, errors.As(err, &upstream))
}

func TestDominantColorsTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client, err := NewBackendClient(context.Background(), testKey, server.URL+"/", 50*time.Millisecond)
	require.NoError(t, err)

	_, err = client.DominantColors(context.Background(), "aGVsbG8=")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDominantColorsWithoutKey(t *testing.T) {
	client, err := NewBackendClient(context.Background(), "", "http://127.0.0.1:1/", time.Second)
	require.NoError(t, err)

	_, err = client.DominantColors(context.Background(), "aGVsbG8=")

	assert.ErrorIs(t, err, ErrNoAPIKey)
}
