package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetector_Detect(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		switch r.URL.Path {
		case "/8.8.8.8/json/":
			_, _ = w.Write([]byte(`{"ip":"8.8.8.8","country_code":"us"}`))
		case "/1.1.1.1/json/":
			_, _ = w.Write([]byte(`{"error":true,"reason":"RateLimited"}`))
		case "/9.9.9.9/json/":
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			_, _ = w.Write([]byte(`not json`))
		}
	}))
	defer srv.Close()

	d := NewDetector(srv.Client()).WithBaseURL(srv.URL + "/")
	ctx := context.Background()

	country, err := d.Detect(ctx, "8.8.8.8")
	require.NoError(t, err)
	assert.Equal(t, "US", country)
	assert.Equal(t, "/8.8.8.8/json/", gotPath)

	tests := []struct {
		name string
		ip   string
	}{
		{"api error", "1.1.1.1"},
		{"bad status", "9.9.9.9"},
		{"bad body", "4.4.4.4"},
		{"not an ip", "example.com"},
		{"loopback", "127.0.0.1"},
		{"private", "10.0.0.8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Detect(ctx, tt.ip)
			assert.Error(t, err)
		})
	}
}
