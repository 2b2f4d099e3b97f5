package openmeteo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("latitude"); got != "1.500000" {
			t.Errorf("latitude = %q", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q", got)
		}
		_, _ = w.Write([]byte(`{"latitude":1.5,"timezone":"GMT"}`))
	}))
	defer srv.Close()

	var h Header
	if err := Get(context.Background(), srv.Client(), srv.URL, Query(1.5, 2, nil, nil, nil), &h); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if h.Latitude != 1.5 || h.Timezone != "GMT" {
		t.Errorf("decoded %+v", h)
	}
}

func TestGet_APIError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"with reason", http.StatusBadRequest, `{"error":true,"reason":"Latitude must be in range of -90 to 90°."}`,
			"unexpected status code: 400: Latitude must be in range of -90 to 90°."},
		{"plain body", http.StatusBadGateway, `bad gateway`, "unexpected status code: 502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			var h Header
			err := Get(context.Background(), srv.Client(), srv.URL, url.Values{}, &h)

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v, want *APIError", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d", apiErr.StatusCode)
			}
			if err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.want)
			}
		})
	}
}

func TestGet_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	var h Header
	err := Get(context.Background(), srv.Client(), srv.URL, url.Values{}, &h)
	if err == nil || !strings.Contains(err.Error(), "decoding response") {
		t.Fatalf("err = %v", err)
	}
}
