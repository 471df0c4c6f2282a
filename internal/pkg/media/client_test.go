package media

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/h2non/gock"
)

type memCache struct {
	values map[string]string
}

func newMemCache() *memCache {
	return &memCache{values: map[string]string{}}
}

func (m *memCache) Get(key string) (string, error) {
	return m.values[key], nil
}

func (m *memCache) Set(key, value string, _ time.Duration) error {
	m.values[key] = value
	return nil
}

func newTestClient(cache CollectionCache) *Client {
	c := &Client{
		APIKey:     "test-key",
		LibraryID:  "42",
		APIBaseURL: "https://video.example.test",
		CDNHost:    "cdn.example.test",
		HTTPClient: &http.Client{},
		Cache:      cache,
	}
	gock.InterceptClient(c.HTTPClient)
	return c
}

func TestGetOrCreateCollectionCacheHit(t *testing.T) {
	defer gock.Off()

	cache := newMemCache()
	cache.values[collectionCachePrefix+"creator-7"] = "cached-guid"
	client := newTestClient(cache)

	// No mocks registered: any HTTP call would fail the test
	got, err := client.GetOrCreateCollection(context.Background(), "creator-7")
	if err != nil {
		t.Fatalf("GetOrCreateCollection() error = %v", err)
	}
	if got != "cached-guid" {
		t.Fatalf("GetOrCreateCollection() = %q, want cached-guid", got)
	}
}

func TestGetOrCreateCollectionFindsExisting(t *testing.T) {
	defer gock.Off()

	gock.New("https://video.example.test").
		Get("/library/42/collections").
		MatchHeader("AccessKey", "test-key").
		Reply(200).
		JSON(map[string]any{
			"items": []map[string]string{
				{"guid": "abc-123", "name": "Creator-7"},
			},
		})

	cache := newMemCache()
	client := newTestClient(cache)

	got, err := client.GetOrCreateCollection(context.Background(), "creator-7")
	if err != nil {
		t.Fatalf("GetOrCreateCollection() error = %v", err)
	}
	if got != "abc-123" {
		t.Fatalf("GetOrCreateCollection() = %q, want abc-123", got)
	}
	if cache.values[collectionCachePrefix+"creator-7"] != "abc-123" {
		t.Fatal("resolved collection id was not cached")
	}
}

func TestGetOrCreateCollectionCreatesWhenMissing(t *testing.T) {
	defer gock.Off()

	gock.New("https://video.example.test").
		Get("/library/42/collections").
		Reply(200).
		JSON(map[string]any{"items": []map[string]string{}})

	gock.New("https://video.example.test").
		Post("/library/42/collections").
		MatchHeader("AccessKey", "test-key").
		Reply(200).
		JSON(map[string]string{"guid": "new-guid", "name": "creator-9"})

	client := newTestClient(newMemCache())

	got, err := client.GetOrCreateCollection(context.Background(), "creator-9")
	if err != nil {
		t.Fatalf("GetOrCreateCollection() error = %v", err)
	}
	if got != "new-guid" {
		t.Fatalf("GetOrCreateCollection() = %q, want new-guid", got)
	}
}

func TestCreateVideo(t *testing.T) {
	defer gock.Off()

	gock.New("https://video.example.test").
		Post("/library/42/videos").
		Reply(200).
		JSON(map[string]any{"guid": "vid-1", "title": "clip", "collectionId": "abc-123"})

	client := newTestClient(newMemCache())

	video, err := client.CreateVideo(context.Background(), "clip", "abc-123")
	if err != nil {
		t.Fatalf("CreateVideo() error = %v", err)
	}
	if video.GUID != "vid-1" || video.CollectionID != "abc-123" {
		t.Fatalf("CreateVideo() = %+v", video)
	}
}

func TestGetVideo(t *testing.T) {
	defer gock.Off()

	gock.New("https://video.example.test").
		Get("/library/42/videos/vid-1").
		Reply(200).
		JSON(map[string]any{"guid": "vid-1", "title": "clip", "status": VideoStatusFinished})

	client := newTestClient(newMemCache())

	video, err := client.GetVideo(context.Background(), "vid-1")
	if err != nil {
		t.Fatalf("GetVideo() error = %v", err)
	}
	if !video.Ready() {
		t.Fatalf("GetVideo() status = %d, want finished", video.Status)
	}
	if video.Failed() {
		t.Fatal("finished video reported as failed")
	}
}

func TestVideoStatusHelpers(t *testing.T) {
	encoding := &Video{Status: 3}
	if encoding.Ready() || encoding.Failed() {
		t.Fatalf("in-flight video misclassified: %+v", encoding)
	}

	failed := &Video{Status: VideoStatusError}
	if !failed.Failed() || failed.Ready() {
		t.Fatalf("failed video misclassified: %+v", failed)
	}
}

func TestPlaybackURL(t *testing.T) {
	client := newTestClient(newMemCache())

	got := client.PlaybackURL("vid-1")
	want := "https://cdn.example.test/vid-1/playlist.m3u8"
	if got != want {
		t.Fatalf("PlaybackURL() = %q, want %q", got, want)
	}

	client.CDNHost = ""
	if client.PlaybackURL("vid-1") != "" {
		t.Fatal("PlaybackURL() without CDN host should be empty")
	}
}

func TestUnconfiguredClient(t *testing.T) {
	client := newTestClient(newMemCache())
	client.APIKey = ""

	if _, err := client.GetOrCreateCollection(context.Background(), "x"); err == nil {
		t.Fatal("expected error for unconfigured client")
	}
	if _, err := client.CreateVideo(context.Background(), "x", "y"); err == nil {
		t.Fatal("expected error for unconfigured client")
	}
}

func TestUploadTokenRoundTrip(t *testing.T) {
	token, err := GenerateUploadToken(7, "abc-123", 1<<30, time.Minute, "secret")
	if err != nil {
		t.Fatalf("GenerateUploadToken() error = %v", err)
	}

	claims, err := VerifyUploadToken(token, "secret")
	if err != nil {
		t.Fatalf("VerifyUploadToken() error = %v", err)
	}
	if claims.UserID != 7 || claims.CollectionID != "abc-123" || claims.MaxBytes != 1<<30 {
		t.Fatalf("VerifyUploadToken() claims = %+v", claims)
	}
}

func TestUploadTokenTampered(t *testing.T) {
	token, err := GenerateUploadToken(7, "abc-123", 1<<30, time.Minute, "secret")
	if err != nil {
		t.Fatalf("GenerateUploadToken() error = %v", err)
	}

	if _, err := VerifyUploadToken(token, "other-secret"); err == nil {
		t.Fatal("expected verification failure with wrong secret")
	}

	parts := strings.SplitN(token, ".", 2)
	tampered := parts[0] + "x." + parts[1]
	if _, err := VerifyUploadToken(tampered, "secret"); err == nil {
		t.Fatal("expected verification failure for tampered payload")
	}
}

func TestUploadTokenExpired(t *testing.T) {
	token, err := GenerateUploadToken(7, "abc-123", 1<<30, -time.Minute, "secret")
	if err != nil {
		t.Fatalf("GenerateUploadToken() error = %v", err)
	}
	if _, err := VerifyUploadToken(token, "secret"); err == nil {
		t.Fatal("expected expired token to fail verification")
	}
}
