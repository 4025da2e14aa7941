package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateScreenshot(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		size        int64
		wantErr     string
	}{
		{"valid png", "proof.png", "image/png", 1024, ""},
		{"valid jpeg at the cap", "proof.jpg", "image/jpeg", MaxScreenshotSize, ""},
		{"empty file", "proof.png", "image/png", 0, "no screenshot selected"},
		{"not an image", "notes.pdf", "application/pdf", 1024, "not an image"},
		{"oversized", "huge.png", "image/png", MaxScreenshotSize + 1, "too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateScreenshot(tt.filename, tt.contentType, tt.size)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestSubmitProof(t *testing.T) {
	var gotTask, gotUser, gotFilename string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/submit-verification", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(8<<20))
		gotTask = r.FormValue("task")
		gotUser = r.FormValue("userAddress")

		file, header, err := r.FormFile("screenshot")
		require.NoError(t, err)
		defer file.Close()
		gotFilename = header.Filename

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success":        true,
			"verificationId": "VER-123-abc",
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	payload := strings.NewReader("fake image bytes")
	id, err := c.SubmitProof(context.Background(), "twitter", "0xABC", "proof.png", "image/png", 16, payload)
	require.NoError(t, err)
	assert.Equal(t, "VER-123-abc", id)
	assert.Equal(t, "twitter", gotTask)
	assert.Equal(t, "0xABC", gotUser)
	assert.Equal(t, "proof.png", gotFilename)
}

func TestSubmitProofValidatesLocally(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.SubmitProof(context.Background(), "twitter", "0xABC", "notes.pdf", "application/pdf", 16, strings.NewReader("x"))
	require.Error(t, err)
	assert.False(t, called, "advisory validation must reject before any network call")
}

func TestSubmitProofSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "screenshot too large (max 5MB)",
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.SubmitProof(context.Background(), "twitter", "0xABC", "proof.png", "image/png", 16, strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "screenshot too large")
}

func TestStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/verification-status/0xABC", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{"twitter": "verified", "youtube": "pending"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	statuses, err := c.Status(context.Background(), "0xABC")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"twitter": "verified", "youtube": "pending"}, statuses)
}

func TestRegister(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/track-registration", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "0xABC", body["userAddress"])
		assert.Equal(t, "FRIEND42", body["referralCode"])
		_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
	}))
	defer srv.Close()

	c := New(srv.URL)
	require.NoError(t, c.Register(context.Background(), "0xABC", "FRIEND42"))
}
