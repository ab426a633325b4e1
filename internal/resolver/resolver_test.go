package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ArtistGrid/player/internal/catalog"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		url      string
		expected catalog.Source
	}{
		{"https://pillows.su/f/abc123", catalog.SourcePillowcase},
		{"https://pillowcase.su/f/abc123", catalog.SourcePillowcase},
		{"https://plwcse.top/f/abc123", catalog.SourcePillowcase},
		{"https://music.froste.lol/song/xyz789", catalog.SourceFroste},
		{"https://krakenfiles.com/view/abc/file.mp3", catalog.SourceKrakenfiles},
		{"https://onlyfiles.cc/f/abc", catalog.SourceOnlyfiles},
		{"https://sugarwillow.com/file/some-id", catalog.SourceSugarwillow},
		{"https://soundcloud.com/user/track", catalog.SourceSoundcloud},
		{"https://files.catbox.moe/abc.mp3", catalog.SourceDirect},
		{"https://example.com/audio.flac", catalog.SourceDirect},
		{"https://example.com/page.html", catalog.SourceUnknown},
		{"not a url at all ://", catalog.SourceUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := Classify(tt.url); got != tt.expected {
				t.Errorf("Classify(%q) = %q, want %q", tt.url, got, tt.expected)
			}
		})
	}
}

func TestResolve_PatternRewrites(t *testing.T) {
	r := New(Config{})
	ctx := context.Background()

	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{
			name:     "pillowcase",
			url:      "https://pillows.su/f/abc123",
			expected: "https://api.pillows.su/api/download/abc123",
		},
		{
			name:     "pillowcase alias pillowcase.su",
			url:      "https://pillowcase.su/f/abc123",
			expected: "https://api.pillows.su/api/download/abc123",
		},
		{
			name:     "pillowcase alias plwcse.top",
			url:      "https://plwcse.top/f/abc123",
			expected: "https://api.pillows.su/api/download/abc123",
		},
		{
			name:     "froste",
			url:      "https://music.froste.lol/song/xyz789",
			expected: "https://music.froste.lol/song/xyz789/file",
		},
		{
			name:     "sugarwillow direct construction",
			url:      "https://sugarwillow.com/file/some-id",
			expected: "https://sugarwillow.com/api/download/some-id",
		},
		{
			name:     "catbox identity",
			url:      "https://files.catbox.moe/abc.mp3",
			expected: "https://files.catbox.moe/abc.mp3",
		},
		{
			name:     "bare audio file identity",
			url:      "https://example.com/song.m4a",
			expected: "https://example.com/song.m4a",
		},
		{
			name:     "unknown host",
			url:      "https://example.com/page",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Resolve(ctx, tt.url); got != tt.expected {
				t.Errorf("Resolve(%q) = %q, want %q", tt.url, got, tt.expected)
			}
		})
	}
}

func TestResolve_Deterministic(t *testing.T) {
	r := New(Config{})
	ctx := context.Background()
	url := "https://pillows.su/f/abc123"

	first := r.Resolve(ctx, url)
	for i := 0; i < 5; i++ {
		if got := r.Resolve(ctx, url); got != first {
			t.Fatalf("Resolve not deterministic: %q != %q", got, first)
		}
	}
}

func TestResolve_Soundcloud(t *testing.T) {
	r := New(Config{
		SoundcloudProxy: "https://proxy.example.com/stream/{user}/{track}",
	})

	got := r.Resolve(context.Background(), "https://soundcloud.com/some_user/some-track")
	want := "https://proxy.example.com/stream/some_user/some-track"
	if got != want {
		t.Errorf("Resolve() = %q, want %q", got, want)
	}
}

func TestResolve_Soundcloud_NoProxy(t *testing.T) {
	r := New(Config{})
	if got := r.Resolve(context.Background(), "https://soundcloud.com/user/track"); got != "" {
		t.Errorf("Resolve() without proxy = %q, want empty", got)
	}
}

func TestResolve_KrakenfilesLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		if id != "abc123" {
			t.Errorf("lookup id = %q, want %q", id, "abc123")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"url":     "https://cdn.example.com/stream/abc123.mp3",
		})
	}))
	defer srv.Close()

	r := New(Config{KrakenfilesProxy: srv.URL})

	got := r.Resolve(context.Background(), "https://krakenfiles.com/view/abc123/file.mp3")
	want := "https://cdn.example.com/stream/abc123.mp3"
	if got != want {
		t.Errorf("Resolve() = %q, want %q", got, want)
	}
}

func TestResolve_OnlyfilesLookup_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": false})
	}))
	defer srv.Close()

	r := New(Config{OnlyfilesProxy: srv.URL})

	if got := r.Resolve(context.Background(), "https://onlyfiles.cc/f/abc123"); got != "" {
		t.Errorf("Resolve() with success=false = %q, want empty", got)
	}
}

func TestResolveMany_AllKeysPresent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"url":     "https://cdn.example.com/" + id,
		})
	}))
	defer srv.Close()

	r := New(Config{KrakenfilesProxy: srv.URL})

	urls := []string{
		"https://pillows.su/f/one",
		"https://krakenfiles.com/view/two/f.mp3",
		"https://example.com/unknown",
		"https://music.froste.lol/song/three",
	}
	// Pad past one batch to exercise sequential batching.
	for i := 0; i < 12; i++ {
		urls = append(urls, fmt.Sprintf("https://pillows.su/f/pad%d", i))
	}

	results := r.ResolveMany(context.Background(), urls)

	if len(results) != len(urls) {
		t.Fatalf("results length = %d, want %d", len(results), len(urls))
	}
	for _, u := range urls {
		if _, ok := results[u]; !ok {
			t.Errorf("missing result for %q", u)
		}
	}

	if results["https://pillows.su/f/one"] != "https://api.pillows.su/api/download/one" {
		t.Errorf("pillowcase result = %q", results["https://pillows.su/f/one"])
	}
	if results["https://krakenfiles.com/view/two/f.mp3"] != "https://cdn.example.com/two" {
		t.Errorf("krakenfiles result = %q", results["https://krakenfiles.com/view/two/f.mp3"])
	}
	if results["https://example.com/unknown"] != "" {
		t.Errorf("unknown result = %q, want empty", results["https://example.com/unknown"])
	}
}

func TestResolveMany_Duplicates(t *testing.T) {
	r := New(Config{})

	urls := []string{
		"https://pillows.su/f/same",
		"https://pillows.su/f/same",
		"https://pillows.su/f/same",
	}

	results := r.ResolveMany(context.Background(), urls)

	if len(results) != 1 {
		t.Fatalf("results length = %d, want 1", len(results))
	}
	if results["https://pillows.su/f/same"] != "https://api.pillows.su/api/download/same" {
		t.Errorf("result = %q", results["https://pillows.su/f/same"])
	}
}

func TestResolveMany_Empty(t *testing.T) {
	r := New(Config{})
	results := r.ResolveMany(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("results length = %d, want 0", len(results))
	}
}

func TestHasAudioExtension(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/song.mp3", true},
		{"/song.MP3", true},
		{"/song.flac", true},
		{"/song.opus", true},
		{"/page.html", false},
		{"/song.mp3.html", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := hasAudioExtension(tt.path); got != tt.expected {
			t.Errorf("hasAudioExtension(%q) = %v, want %v", tt.path, got, tt.expected)
		}
	}
}
