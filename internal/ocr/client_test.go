package ocr

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_JSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, _, err := r.FormFile("file")
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"extracted_text": "member id 12345"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, nil)
	text, err := c.Extract(context.Background(), []byte("fake-image"), "image.png", "image/png")
	require.NoError(t, err)
	assert.Equal(t, "member id 12345", text)
}

func TestExtract_PlainTextResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("  member id 12345\n"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, nil)
	text, err := c.Extract(context.Background(), []byte("fake-image"), "image.png", "image/png")
	require.NoError(t, err)
	assert.Equal(t, "member id 12345", text)
}

func TestExtract_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, nil)
	_, err := c.Extract(context.Background(), []byte("fake-image"), "image.png", "image/png")
	require.Error(t, err)
}

func TestExtractDataURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text": "dob 01/01/1990"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, nil)
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("fake-image"))
	text, err := c.ExtractDataURL(context.Background(), dataURL)
	require.NoError(t, err)
	assert.Equal(t, "dob 01/01/1990", text)

	_, err = c.ExtractDataURL(context.Background(), "data:image/png;base64,@@not-base64@@")
	require.Error(t, err)
}

func TestDisabledClient(t *testing.T) {
	c := NewClient("", 0, nil)
	assert.False(t, c.Enabled())
	_, err := c.Extract(context.Background(), nil, "image.png", "image/png")
	require.Error(t, err)
}
