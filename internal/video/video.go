// Package video finds recipe videos on YouTube.
package video

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/ayusman/rasoi/internal/cache"
	"github.com/ayusman/rasoi/internal/logging"
	"github.com/ayusman/rasoi/internal/upstream"
)

// MaxResults is the most videos returned for one dish.
const MaxResults = 2

// Video is one search hit.
type Video struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	EmbedURL string `json:"embed_url"`
}

// WatchURL returns the YouTube watch page for id.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

// EmbedURL returns the embeddable player URL for id.
func EmbedURL(id string) string {
	return "https://www.youtube.com/embed/" + id
}

// Searcher finds videos for a dish.
type Searcher interface {
	Search(ctx context.Context, dish string) ([]Video, error)
}

// Options configures a Client.
type Options struct {
	APIKey string
	// Endpoint overrides the API base URL; used by tests.
	Endpoint   string
	MaxResults int64
	Timeout    time.Duration
	Cache      cache.Cache
	CacheTTL   time.Duration
}

// Client searches the YouTube Data API v3.
type Client struct {
	svc        *youtube.Service
	maxResults int64
	timeout    time.Duration
	cache      cache.Cache
	ttl        time.Duration
	breaker    *upstream.Breaker
}

// NewClient creates a YouTube client authenticated with opts.APIKey.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("youtube: api key required: %w", upstream.ErrPermanent)
	}

	clientOpts := []option.ClientOption{option.WithAPIKey(opts.APIKey)}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}

	svc, err := youtube.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("youtube: failed to create service: %w", err)
	}

	if opts.MaxResults <= 0 || opts.MaxResults > MaxResults {
		opts.MaxResults = MaxResults
	}
	if opts.Cache == nil {
		opts.Cache = cache.Noop{}
	}

	return &Client{
		svc:        svc,
		maxResults: opts.MaxResults,
		timeout:    opts.Timeout,
		cache:      opts.Cache,
		ttl:        opts.CacheTTL,
		breaker:    upstream.NewBreaker("youtube", upstream.BreakerSettings{}),
	}, nil
}

// Search returns up to MaxResults videos for "<dish> recipe".
func (c *Client) Search(ctx context.Context, dish string) ([]Video, error) {
	log := logging.Ctx(ctx)
	key := cache.Key("videos", strings.ToLower(strings.TrimSpace(dish)))

	var cached []Video
	if ok, err := cache.GetJSON(ctx, c.cache, "videos", key, &cached); err != nil {
		log.Warn().Err(err).Str("dish", dish).Msg("video cache read failed")
	} else if ok {
		return cached, nil
	}

	videos, err := upstream.Do(c.breaker, func() ([]Video, error) {
		return c.search(ctx, dish)
	})
	if err != nil {
		return nil, err
	}

	if err := cache.SetJSON(ctx, c.cache, key, videos, c.ttl); err != nil {
		log.Warn().Err(err).Str("dish", dish).Msg("video cache write failed")
	}
	return videos, nil
}

func (c *Client) search(ctx context.Context, dish string) ([]Video, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.svc.Search.List([]string{"snippet"}).
		Q(dish + " recipe").
		MaxResults(c.maxResults).
		Type("video").
		Context(ctx).
		Do()
	if err != nil {
		return nil, upstream.GoogleError(ctx, "youtube", err)
	}

	videos := make([]Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		v := Video{
			ID:       item.Id.VideoId,
			URL:      WatchURL(item.Id.VideoId),
			EmbedURL: EmbedURL(item.Id.VideoId),
		}
		if item.Snippet != nil {
			v.Title = item.Snippet.Title
		}
		videos = append(videos, v)
		if len(videos) == MaxResults {
			break
		}
	}
	return videos, nil
}
