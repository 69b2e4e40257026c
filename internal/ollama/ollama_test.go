package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mktpassos/audiodescricao-app/describer"
)

func TestDescribeImage(t *testing.T) {
	var captured generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model":"llava","response":"Two children fly a kite.","done":true}`))
	}))
	defer srv.Close()

	o := Init("", srv.URL, srv.Client())
	text, err := o.DescribeImage(context.Background(), describer.Image{Base64: "eA==", MimeType: "image/jpeg"}, "describe")
	require.NoError(t, err)
	require.Equal(t, "Two children fly a kite.", text)

	require.Equal(t, DefaultModel, captured.Model)
	require.Equal(t, "describe", captured.Prompt)
	require.Equal(t, []string{"eA=="}, captured.Images)
	require.False(t, captured.Stream)
}

func TestDescribeImageError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"model \"llava\" not found"}`))
	}))
	defer srv.Close()

	o := Init("llava", srv.URL, srv.Client())
	_, err := o.DescribeImage(context.Background(), describer.Image{Base64: "eA=="}, "describe")
	require.ErrorContains(t, err, `ollama status 404: model "llava" not found`)
}

func TestIsHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	require.True(t, Init("", srv.URL, srv.Client()).IsHealthy(context.Background()))
	require.Error(t, Init("", "", nil).Validate())
}
