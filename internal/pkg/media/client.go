package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/fantribe/fantribe/internal/pkg/cache"
	"github.com/fantribe/fantribe/internal/pkg/env"
)

const (
	defaultAPIBaseURL = "https://video.bunnycdn.com"

	// collectionCacheTTL bounds how long a resolved collection id is reused
	// before the provider is asked again.
	collectionCacheTTL = 12 * time.Hour

	collectionCachePrefix = "media:collection:"
)

// CollectionCache stores resolved collection ids keyed by collection name.
type CollectionCache interface {
	Get(key string) (string, error)
	Set(key, value string, ttl time.Duration) error
}

// redisCollectionCache is the production cache backed by the shared Redis client.
type redisCollectionCache struct{}

func (redisCollectionCache) Get(key string) (string, error) {
	return cache.Get(key)
}

func (redisCollectionCache) Set(key, value string, ttl time.Duration) error {
	return cache.Set(key, value, ttl)
}

// Client talks to the video hosting API. Each creator gets a collection
// holding their uploads.
type Client struct {
	APIKey     string
	LibraryID  string
	APIBaseURL string
	CDNHost    string

	HTTPClient *http.Client
	Cache      CollectionCache
}

func NewClientFromEnv() *Client {
	return &Client{
		APIKey:     strings.TrimSpace(env.GetEnv("MEDIA_API_KEY", "")),
		LibraryID:  strings.TrimSpace(env.GetEnv("MEDIA_LIBRARY_ID", "")),
		APIBaseURL: strings.TrimSpace(env.GetEnv("MEDIA_API_BASE_URL", defaultAPIBaseURL)),
		CDNHost:    strings.TrimSpace(env.GetEnv("MEDIA_CDN_HOSTNAME", "")),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		Cache: redisCollectionCache{},
	}
}

// Configured reports whether the client has the credentials it needs.
func (c *Client) Configured() bool {
	return c.APIKey != "" && c.LibraryID != ""
}

type collection struct {
	GUID string `json:"guid"`
	Name string `json:"name"`
}

type collectionList struct {
	Items []collection `json:"items"`
}

// GetOrCreateCollection resolves the collection id for a name, creating the
// collection on first use. Resolved ids are cached with a TTL so a renamed or
// deleted collection heals itself instead of pinning a stale id forever.
func (c *Client) GetOrCreateCollection(ctx context.Context, name string) (string, error) {
	if !c.Configured() {
		return "", errors.New("MEDIA_API_KEY/MEDIA_LIBRARY_ID are not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("collection name is required")
	}

	cacheKey := collectionCachePrefix + name
	if cached, err := c.Cache.Get(cacheKey); err == nil && cached != "" {
		return cached, nil
	}

	// Search existing collections by name
	searchURL := fmt.Sprintf("%s/library/%s/collections?search=%s",
		strings.TrimRight(c.APIBaseURL, "/"), c.LibraryID, url.QueryEscape(name))
	var list collectionList
	if err := c.doJSON(ctx, http.MethodGet, searchURL, nil, &list); err != nil {
		return "", err
	}
	for _, col := range list.Items {
		if strings.EqualFold(col.Name, name) {
			if err := c.Cache.Set(cacheKey, col.GUID, collectionCacheTTL); err != nil {
				log.Warnf("media: failed to cache collection id: %v", err)
			}
			return col.GUID, nil
		}
	}

	// Not found, create it
	createURL := fmt.Sprintf("%s/library/%s/collections",
		strings.TrimRight(c.APIBaseURL, "/"), c.LibraryID)
	var created collection
	if err := c.doJSON(ctx, http.MethodPost, createURL, map[string]string{"name": name}, &created); err != nil {
		return "", err
	}
	if created.GUID == "" {
		return "", errors.New("collection create response has no guid")
	}

	if err := c.Cache.Set(cacheKey, created.GUID, collectionCacheTTL); err != nil {
		log.Warnf("media: failed to cache collection id: %v", err)
	}
	return created.GUID, nil
}

// Video is the provider record for an uploaded clip.
type Video struct {
	GUID         string `json:"guid"`
	Title        string `json:"title"`
	CollectionID string `json:"collectionId"`
	Status       int    `json:"status"`
}

// Provider encode statuses.
const (
	VideoStatusFinished = 4
	VideoStatusError    = 5
)

// Ready reports whether the video finished encoding and can be played.
func (v *Video) Ready() bool {
	return v.Status == VideoStatusFinished
}

// Failed reports whether the provider gave up on encoding the video.
func (v *Video) Failed() bool {
	return v.Status == VideoStatusError
}

// CreateVideo registers a new video in the creator's collection and returns
// its id; the binary is uploaded separately against that id.
func (c *Client) CreateVideo(ctx context.Context, title, collectionID string) (*Video, error) {
	if !c.Configured() {
		return nil, errors.New("MEDIA_API_KEY/MEDIA_LIBRARY_ID are not configured")
	}
	if strings.TrimSpace(title) == "" {
		return nil, errors.New("video title is required")
	}

	createURL := fmt.Sprintf("%s/library/%s/videos",
		strings.TrimRight(c.APIBaseURL, "/"), c.LibraryID)
	var video Video
	err := c.doJSON(ctx, http.MethodPost, createURL, map[string]string{
		"title":        title,
		"collectionId": collectionID,
	}, &video)
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// GetVideo fetches the provider record for a video, including encode status.
func (c *Client) GetVideo(ctx context.Context, videoID string) (*Video, error) {
	if !c.Configured() {
		return nil, errors.New("MEDIA_API_KEY/MEDIA_LIBRARY_ID are not configured")
	}
	if strings.TrimSpace(videoID) == "" {
		return nil, errors.New("video id is required")
	}

	videoURL := fmt.Sprintf("%s/library/%s/videos/%s",
		strings.TrimRight(c.APIBaseURL, "/"), c.LibraryID, url.PathEscape(videoID))
	var video Video
	if err := c.doJSON(ctx, http.MethodGet, videoURL, nil, &video); err != nil {
		return nil, err
	}
	return &video, nil
}

// PlaybackURL returns the public HLS playlist URL for a video id.
func (c *Client) PlaybackURL(videoID string) string {
	if c.CDNHost == "" || videoID == "" {
		return ""
	}
	return fmt.Sprintf("https://%s/%s/playlist.m3u8", c.CDNHost, videoID)
}

func (c *Client) doJSON(ctx context.Context, method, rawURL string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return err
	}
	req.Header.Set("AccessKey", c.APIKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("media api request failed: status=%d body=%s", resp.StatusCode, string(raw))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}
