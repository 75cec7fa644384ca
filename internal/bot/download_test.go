package bot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/file/botTOKEN/voice/file_1.oga" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("OggS-bytes"))
	}))
	defer srv.Close()

	d := NewDownloader(time.Second)
	data, err := d.Fetch(context.Background(), srv.URL+"/file/botTOKEN/voice/file_1.oga")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != "OggS-bytes" {
		t.Errorf("Fetch() = %q", data)
	}

	_, err = d.Fetch(context.Background(), srv.URL+"/missing")
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("Fetch(missing) error = %v, want 404 status error", err)
	}
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	d := NewDownloader(50 * time.Millisecond)
	if _, err := d.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("Fetch() error = nil, want timeout")
	}
}

func TestFetchErrorHidesToken(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	d := NewDownloader(time.Second)
	_, err := d.Fetch(context.Background(), base+"/file/bot123456:SECRET-TOKEN/voice/file_1.oga")
	if err == nil {
		t.Fatal("Fetch() error = nil, want connection error")
	}
	if strings.Contains(err.Error(), "SECRET-TOKEN") {
		t.Errorf("error leaks the bot token: %v", err)
	}
	if !strings.HasPrefix(err.Error(), "download: ") {
		t.Errorf("error = %q, want download prefix", err)
	}
}
