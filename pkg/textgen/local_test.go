package textgen

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		w.Write([]byte(`{"response":"{\"business_identity\":{}}","done":true}`))
	}))
	defer srv.Close()

	c := NewLocal(WithBaseURL(srv.URL), WithModel("test-model"))
	out, err := c.Generate(context.Background(), "system", "user")
	require.NoError(t, err)
	assert.Equal(t, `{"business_identity":{}}`, out)
}

func TestLocalGenerateBackendStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewLocal(WithBaseURL(srv.URL))
	_, err := c.Generate(context.Background(), "s", "u")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindGenerationFailed))
	assert.Contains(t, err.Error(), "404")
}

func TestLocalGenerateBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"out of memory"}`))
	}))
	defer srv.Close()

	c := NewLocal(WithBaseURL(srv.URL))
	_, err := c.Generate(context.Background(), "s", "u")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindGenerationFailed))
	assert.Contains(t, err.Error(), "out of memory")
}

func TestLocalGenerateEmptyCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"","done":true}`))
	}))
	defer srv.Close()

	c := NewLocal(WithBaseURL(srv.URL))
	_, err := c.Generate(context.Background(), "s", "u")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindGenerationFailed))
}

func TestLocalGenerateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewLocal(WithBaseURL(srv.URL), WithTimeout(20*time.Millisecond))
	_, err := c.Generate(context.Background(), "s", "u")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindTimeout))
	assert.False(t, IsKind(err, KindConnectionFailed))
}

func TestLocalGenerateConnectionRefused(t *testing.T) {
	// Reserve a port, then close the listener so nothing is accepting.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewLocal(WithBaseURL(url))
	_, err := c.Generate(context.Background(), "s", "u")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindConnectionFailed))
	assert.Contains(t, err.Error(), "ensure the backend is running")
}

func TestIsKindNonGatewayError(t *testing.T) {
	assert.False(t, IsKind(context.Canceled, KindTimeout))
	assert.False(t, IsKind(nil, KindTimeout))
}
