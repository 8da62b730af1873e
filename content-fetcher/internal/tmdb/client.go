// Package tmdb searches The Movie Database v3 API.
package tmdb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/oe/sunrain-sub002/content-fetcher/catalog"
	"github.com/oe/sunrain-sub002/content-fetcher/internal/affiliate"
	"github.com/oe/sunrain-sub002/content-fetcher/internal/upstream"
)

const (
	DefaultBaseURL = "https://api.themoviedb.org/3"
	imageBase      = "https://image.tmdb.org/t/p/w500"
	siteBase       = "https://www.themoviedb.org/movie/"
	defaultLimit   = 5
)

// Config holds TMDB credentials. Either an API key or a v4 read token works.
type Config struct {
	APIKey      string
	BearerToken string
	BaseURL     string
	Language    string
	PerQuery    int
}

// Client is a movie provider.
type Client struct {
	cfg    Config
	api    *upstream.Client
	linker affiliate.Linker
}

// New returns a client; it reports ErrNotConfigured on use when no
// credentials are set.
func New(cfg Config, api *upstream.Client, linker affiliate.Linker) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PerQuery <= 0 {
		cfg.PerQuery = defaultLimit
	}
	return &Client{cfg: cfg, api: api, linker: linker}
}

func (c *Client) Name() string { return "tmdb" }

func (c *Client) configured() bool {
	return c.cfg.APIKey != "" || c.cfg.BearerToken != ""
}

type searchResponse struct {
	Results []movieJSON `json:"results"`
}

type movieJSON struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
	PosterPath  string  `json:"poster_path"`
	GenreIDs    []int   `json:"genre_ids"`
	Genres      []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

// Search runs /search/movie and enriches the top results from /movie/{id}.
func (c *Client) Search(ctx context.Context, query string) ([]catalog.Movie, error) {
	if !c.configured() {
		return nil, upstream.ErrNotConfigured
	}

	params := url.Values{"query": {query}, "include_adult": {"false"}}
	var resp searchResponse
	if err := c.get(ctx, "/search/movie", params, &resp); err != nil {
		return nil, fmt.Errorf("search movies %q: %w", query, err)
	}

	results := resp.Results
	if len(results) > c.cfg.PerQuery {
		results = results[:c.cfg.PerQuery]
	}
	movies := make([]catalog.Movie, 0, len(results))
	for _, r := range results {
		detail, err := c.Movie(ctx, r.ID)
		if err != nil {
			movies = append(movies, c.toMovie(r))
			continue
		}
		movies = append(movies, *detail)
	}
	return movies, nil
}

// Movie fetches one movie by TMDB id.
func (c *Client) Movie(ctx context.Context, id int) (*catalog.Movie, error) {
	if !c.configured() {
		return nil, upstream.ErrNotConfigured
	}
	var m movieJSON
	if err := c.get(ctx, "/movie/"+strconv.Itoa(id), url.Values{}, &m); err != nil {
		return nil, fmt.Errorf("movie %d: %w", id, err)
	}
	movie := c.toMovie(m)
	return &movie, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if c.cfg.Language != "" {
		params.Set("language", c.cfg.Language)
	}
	header := http.Header{}
	if c.cfg.BearerToken != "" {
		header.Set("Authorization", "Bearer "+c.cfg.BearerToken)
	} else {
		params.Set("api_key", c.cfg.APIKey)
	}
	return c.api.GetJSON(ctx, strings.TrimRight(c.cfg.BaseURL, "/")+path+"?"+params.Encode(), header, out)
}

func (c *Client) toMovie(m movieJSON) catalog.Movie {
	movie := catalog.Movie{
		ID:          "tmdb:" + strconv.Itoa(m.ID),
		Title:       m.Title,
		Overview:    m.Overview,
		ReleaseDate: m.ReleaseDate,
		Rating:      m.VoteAverage,
		TMDBURL:     siteBase + strconv.Itoa(m.ID),
		Source:      c.Name(),
	}
	if m.PosterPath != "" {
		movie.PosterURL = imageBase + m.PosterPath
	}
	for _, g := range m.Genres {
		movie.Genres = append(movie.Genres, g.Name)
	}
	if len(movie.Genres) == 0 {
		for _, id := range m.GenreIDs {
			if name, ok := genreNames[id]; ok {
				movie.Genres = append(movie.Genres, name)
			}
		}
	}
	year, _, _ := strings.Cut(m.ReleaseDate, "-")
	movie.AmazonURL = c.linker.MovieURL(m.Title, year)
	return movie
}

// genreNames is TMDB's fixed movie genre table.
var genreNames = map[int]string{
	12: "Adventure", 14: "Fantasy", 16: "Animation", 18: "Drama", 27: "Horror",
	28: "Action", 35: "Comedy", 36: "History", 37: "Western", 53: "Thriller",
	80: "Crime", 99: "Documentary", 878: "Science Fiction", 9648: "Mystery",
	10402: "Music", 10749: "Romance", 10751: "Family", 10752: "War", 10770: "TV Movie",
}
