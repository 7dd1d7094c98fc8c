// Package spotify talks to the streaming provider: the OAuth login flow and
// the data fetches the analytics pipeline consumes. All requests go through a
// shared rate limiter, and server-side failures are retried with backoff.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/soundlens/soundlens/internal/apperrors"
	"github.com/soundlens/soundlens/internal/models"
)

const (
	// PageLimit is the maximum page size the provider allows for history
	// and top-entity resources.
	PageLimit = 50

	defaultAttempts   = 3
	defaultRetryDelay = 250 * time.Millisecond
)

// Client fetches listening data from the provider on behalf of a user.
type Client struct {
	conf    *oauth2.Config
	baseURL string
	limiter *rate.Limiter
	logger  *zap.Logger

	attempts   uint
	retryDelay time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the provider API root. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithLimiter replaces the default request rate limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithRetry overrides the retry attempt count and base delay.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(c *Client) {
		c.attempts = attempts
		c.retryDelay = delay
	}
}

// New builds a provider client around an OAuth configuration.
func New(conf *oauth2.Config, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		conf:       conf,
		baseURL:    DefaultAPIBaseURL,
		limiter:    rate.NewLimiter(rate.Limit(10), 10),
		logger:     logger,
		attempts:   defaultAttempts,
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AuthCodeURL returns the provider consent URL for the given CSRF state. The
// consent screen is always shown so users can switch accounts.
func (c *Client) AuthCodeURL(state string) string {
	return c.conf.AuthCodeURL(state, oauth2.SetAuthURLParam("show_dialog", "true"))
}

// Exchange trades an authorization code for a token pair.
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := c.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	return tok, nil
}

// Profile fetches the authenticated user's account identity. The returned
// token reflects any refresh that happened during the call.
func (c *Client) Profile(ctx context.Context, tok *oauth2.Token) (*models.UserProfile, *oauth2.Token, error) {
	ts := c.conf.TokenSource(ctx, tok)
	hc := oauth2.NewClient(ctx, ts)

	var wire wireProfile
	if err := c.get(ctx, hc, "/me", "profile", &wire); err != nil {
		return nil, nil, err
	}
	return mapProfile(wire), currentToken(ts, tok), nil
}

// FetchAll pulls the full raw data bundle for the extractor: recent plays,
// top tracks and artists for every lookback window, and audio features for
// the short-term tracks. Audio-feature failures degrade to a nil map instead
// of failing the whole fetch. The returned token reflects any refresh.
func (c *Client) FetchAll(ctx context.Context, tok *oauth2.Token) (*models.RawData, *oauth2.Token, error) {
	ts := c.conf.TokenSource(ctx, tok)
	hc := oauth2.NewClient(ctx, ts)

	raw := &models.RawData{
		TopTracks:  make(map[models.TimeRange][]models.Track, len(models.TimeRanges)),
		TopArtists: make(map[models.TimeRange][]models.Artist, len(models.TimeRanges)),
	}

	var recent wireRecentlyPlayed
	path := fmt.Sprintf("/me/player/recently-played?limit=%d", PageLimit)
	if err := c.get(ctx, hc, path, "recently-played", &recent); err != nil {
		return nil, nil, err
	}
	raw.RecentPlays = mapRecentPlays(recent)

	for _, tr := range models.TimeRanges {
		var tracks wireTrackPage
		path := fmt.Sprintf("/me/top/tracks?time_range=%s&limit=%d", tr, PageLimit)
		if err := c.get(ctx, hc, path, "top-tracks", &tracks); err != nil {
			return nil, nil, err
		}
		raw.TopTracks[tr] = mapTracks(tracks.Items)

		var artists wireArtistPage
		path = fmt.Sprintf("/me/top/artists?time_range=%s&limit=%d", tr, PageLimit)
		if err := c.get(ctx, hc, path, "top-artists", &artists); err != nil {
			return nil, nil, err
		}
		raw.TopArtists[tr] = mapArtists(artists.Items)
	}

	if ids := trackIDs(raw.TopTracks[models.TimeRangeShort]); len(ids) > 0 {
		var feats wireAudioFeaturePage
		path := "/audio-features?ids=" + strings.Join(ids, ",")
		if err := c.get(ctx, hc, path, "audio-features", &feats); err != nil {
			// Restricted apps lose access to this resource. The
			// extractor handles the missing map.
			c.logger.Warn("audio features unavailable, continuing without them",
				zap.Error(err))
		} else {
			raw.AudioFeatures = mapAudioFeatures(feats)
		}
	}

	return raw, currentToken(ts, tok), nil
}

func trackIDs(tracks []models.Track) []string {
	ids := make([]string, 0, len(tracks))
	for _, t := range tracks {
		if t.ID != "" {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// currentToken surfaces the token the source is actually holding, falling
// back to the original when the source cannot produce one.
func currentToken(ts oauth2.TokenSource, orig *oauth2.Token) *oauth2.Token {
	tok, err := ts.Token()
	if err != nil {
		return orig
	}
	return tok
}

// get performs a rate-limited GET against the provider, retrying server-side
// failures, and decodes the response body into out.
func (c *Client) get(ctx context.Context, hc *http.Client, path, resource string, out any) error {
	err := retry.Do(
		func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
			return c.getOnce(ctx, hc, path, resource, out)
		},
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var ue *apperrors.UpstreamError
			return errors.As(err, &ue) && ue.Retryable()
		}),
	)
	if err != nil {
		return err
	}
	return nil
}

func (c *Client) getOnce(ctx context.Context, hc *http.Client, path, resource string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building %s request: %w", resource, err)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return &apperrors.UpstreamError{Resource: resource, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &apperrors.UpstreamError{Resource: resource, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &apperrors.UpstreamError{Resource: resource, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}
