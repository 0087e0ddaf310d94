package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClient_DownloadBytes(t *testing.T) {
	body := strings.Repeat("x", 1000)
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.UserAgent()
		switch r.URL.Path {
		case "/song.mp3":
			w.Write([]byte(body))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient()
	var last int64
	data, err := c.DownloadBytes(context.Background(), srv.URL+"/song.mp3", func(written, total int64) {
		last = written
	})
	if err != nil {
		t.Fatalf("DownloadBytes() error = %v", err)
	}
	if string(data) != body {
		t.Errorf("got %d bytes, want %d", len(data), len(body))
	}
	if last != int64(len(body)) {
		t.Errorf("progress ended at %d", last)
	}
	if gotUA != "vinyl-player" {
		t.Errorf("User-Agent = %q", gotUA)
	}

	if _, err := c.DownloadBytes(context.Background(), srv.URL+"/missing", nil); err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("missing file error = %v", err)
	}
}

func TestClient_SizeLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/chunked" {
			w.Header().Set("Content-Type", "application/octet-stream")
			for i := 0; i < 4; i++ {
				w.Write([]byte(strings.Repeat("y", 50)))
				w.(http.Flusher).Flush()
			}
			return
		}
		w.Write([]byte(strings.Repeat("y", 200)))
	}))
	defer srv.Close()

	c := NewClient(WithMaxSize(100))
	tests := []string{"/sized", "/chunked"}
	for _, path := range tests {
		t.Run(path, func(t *testing.T) {
			_, err := c.DownloadBytes(context.Background(), srv.URL+path, nil)
			if !errors.Is(err, ErrTooLarge) {
				t.Errorf("err = %v, want ErrTooLarge", err)
			}
		})
	}

	ok := NewClient(WithMaxSize(200))
	if data, err := ok.DownloadBytes(context.Background(), srv.URL+"/sized", nil); err != nil || len(data) != 200 {
		t.Errorf("exact limit: %d bytes, err %v", len(data), err)
	}
}

func TestNewClient_Options(t *testing.T) {
	c := NewClient(WithTimeout(3*time.Second), WithMaxSize(1<<10))
	if c.httpClient.Timeout != 3*time.Second {
		t.Errorf("timeout = %s", c.httpClient.Timeout)
	}
	if c.maxSize != 1<<10 {
		t.Errorf("maxSize = %d", c.maxSize)
	}

	d := NewClient(WithMaxSize(0))
	if d.maxSize != DefaultMaxSize || d.httpClient.Timeout != 60*time.Second {
		t.Errorf("defaults = %d, %s", d.maxSize, d.httpClient.Timeout)
	}
}
