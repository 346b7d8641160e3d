package video

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFindVideoID(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		_, _ = w.Write([]byte(`<html>..."url":"/watch?v=pSUydWEqKwE","x":"/watch?v=aaaaaaaaaaa"...</html>`))
	}))
	defer srv.Close()

	f := NewFinder(srv.URL, time.Second)
	id, err := f.FindVideoID(context.Background(), "NewJeans Ditto official MV")
	if err != nil {
		t.Fatalf("FindVideoID() error: %v", err)
	}
	if id != "pSUydWEqKwE" {
		t.Errorf("id = %s, want pSUydWEqKwE", id)
	}
	if gotQuery != "NewJeans Ditto official MV" {
		t.Errorf("search_query = %q", gotQuery)
	}
}

func TestFindVideoIDNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>no results, watch?v=short</html>`))
	}))
	defer srv.Close()

	_, err := NewFinder(srv.URL, time.Second).FindVideoID(context.Background(), "nothing")
	if !errors.Is(err, ErrNoVideo) {
		t.Errorf("expected ErrNoVideo, got %v", err)
	}
}

func TestFindVideoIDBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, err := NewFinder(srv.URL, time.Second).FindVideoID(context.Background(), "x"); err == nil {
		t.Error("expected error for non-200 status")
	}
}

func TestEmbedHTML(t *testing.T) {
	html := EmbedHTML("pSUydWEqKwE")
	if !strings.Contains(html, "https://www.youtube.com/embed/pSUydWEqKwE") {
		t.Errorf("embed missing video url: %s", html)
	}
	if !strings.HasPrefix(html, `<div class="video-embed">`) {
		t.Errorf("embed should be a wrapped block: %s", html)
	}
}
