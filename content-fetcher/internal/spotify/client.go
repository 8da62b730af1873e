// Package spotify searches the Spotify Web API with client-credentials
// OAuth.
package spotify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/oe/sunrain-sub002/content-fetcher/catalog"
	"github.com/oe/sunrain-sub002/content-fetcher/internal/upstream"
	infralogger "github.com/oe/sunrain-sub002/infrastructure/logger"
)

const (
	DefaultBaseURL  = "https://api.spotify.com/v1"
	DefaultTokenURL = "https://accounts.spotify.com/api/token"
	defaultLimit    = 5
)

// Config holds app credentials.
type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	TokenURL     string
	Market       string
	PerQuery     int
}

// Client is a music provider.
type Client struct {
	cfg Config
	api *upstream.Client
}

// New wraps base in an OAuth2 token source. Without credentials the client
// reports ErrNotConfigured on use.
func New(ctx context.Context, cfg Config, base *http.Client, log infralogger.Logger, opts ...upstream.Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.PerQuery <= 0 {
		cfg.PerQuery = defaultLimit
	}

	httpClient := base
	if cfg.ClientID != "" && cfg.ClientSecret != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
		httpClient = cc.Client(context.WithValue(ctx, oauth2.HTTPClient, base))
		httpClient.Timeout = base.Timeout
	}
	return &Client{cfg: cfg, api: upstream.New("spotify", httpClient, log, opts...)}
}

func (c *Client) Name() string { return "spotify" }

func (c *Client) configured() bool {
	return c.cfg.ClientID != "" && c.cfg.ClientSecret != ""
}

type image struct {
	URL string `json:"url"`
}

type trackJSON struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	DurationMS int    `json:"duration_ms"`
	PreviewURL string `json:"preview_url"`
	Artists    []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name   string  `json:"name"`
		Images []image `json:"images"`
	} `json:"album"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
}

type playlistJSON struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Images       []image `json:"images"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
	Owner struct {
		DisplayName string `json:"display_name"`
	} `json:"owner"`
}

type searchResponse struct {
	Tracks struct {
		Items []*trackJSON `json:"items"`
	} `json:"tracks"`
	Playlists struct {
		Items []*playlistJSON `json:"items"`
	} `json:"playlists"`
}

// Search finds playlists and tracks for query. Spotify returns null
// entries for removed items; those are skipped.
func (c *Client) Search(ctx context.Context, query string) ([]catalog.Track, error) {
	if !c.configured() {
		return nil, upstream.ErrNotConfigured
	}

	params := url.Values{
		"q":     {query},
		"type":  {"playlist,track"},
		"limit": {strconv.Itoa(c.cfg.PerQuery)},
	}
	if c.cfg.Market != "" {
		params.Set("market", c.cfg.Market)
	}

	var resp searchResponse
	if err := c.api.GetJSON(ctx, c.url("/search", params), nil, &resp); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	out := make([]catalog.Track, 0, len(resp.Playlists.Items)+len(resp.Tracks.Items))
	for _, p := range resp.Playlists.Items {
		if p != nil && p.ID != "" {
			out = append(out, toPlaylist(p, query))
		}
	}
	for _, t := range resp.Tracks.Items {
		if t != nil && t.ID != "" {
			out = append(out, toTrack(t, query))
		}
	}
	return out, nil
}

// PlaylistTracks lists the tracks of a playlist.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID, category string) ([]catalog.Track, error) {
	if !c.configured() {
		return nil, upstream.ErrNotConfigured
	}

	params := url.Values{"limit": {strconv.Itoa(c.cfg.PerQuery)}}
	if c.cfg.Market != "" {
		params.Set("market", c.cfg.Market)
	}
	var resp struct {
		Items []struct {
			Track *trackJSON `json:"track"`
		} `json:"items"`
	}
	if err := c.api.GetJSON(ctx, c.url("/playlists/"+url.PathEscape(playlistID)+"/tracks", params), nil, &resp); err != nil {
		return nil, fmt.Errorf("playlist %s tracks: %w", playlistID, err)
	}

	out := make([]catalog.Track, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Track != nil && item.Track.ID != "" {
			out = append(out, toTrack(item.Track, category))
		}
	}
	return out, nil
}

func (c *Client) url(path string, params url.Values) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + path + "?" + params.Encode()
}

func toTrack(t *trackJSON, category string) catalog.Track {
	track := catalog.Track{
		ID:         "spotify:track:" + t.ID,
		Kind:       "track",
		Name:       t.Name,
		Album:      t.Album.Name,
		DurationMS: t.DurationMS,
		SpotifyURL: t.ExternalURLs.Spotify,
		PreviewURL: t.PreviewURL,
		Category:   category,
		Source:     "spotify",
	}
	for _, a := range t.Artists {
		track.Artists = append(track.Artists, a.Name)
	}
	if len(t.Album.Images) > 0 {
		track.ImageURL = t.Album.Images[0].URL
	}
	if track.SpotifyURL == "" {
		track.SpotifyURL = "https://open.spotify.com/track/" + t.ID
	}
	return track
}

func toPlaylist(p *playlistJSON, category string) catalog.Track {
	track := catalog.Track{
		ID:         "spotify:playlist:" + p.ID,
		Kind:       "playlist",
		Name:       p.Name,
		SpotifyURL: p.ExternalURLs.Spotify,
		Category:   category,
		Source:     "spotify",
	}
	if p.Owner.DisplayName != "" {
		track.Artists = []string{p.Owner.DisplayName}
	}
	if len(p.Images) > 0 {
		track.ImageURL = p.Images[0].URL
	}
	if track.SpotifyURL == "" {
		track.SpotifyURL = "https://open.spotify.com/playlist/" + p.ID
	}
	return track
}
