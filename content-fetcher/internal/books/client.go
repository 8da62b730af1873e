// Package books searches the Google Books volumes API.
package books

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/oe/sunrain-sub002/content-fetcher/catalog"
	"github.com/oe/sunrain-sub002/content-fetcher/internal/affiliate"
	"github.com/oe/sunrain-sub002/content-fetcher/internal/upstream"
)

const (
	DefaultBaseURL = "https://www.googleapis.com/books/v1"
	defaultLimit   = 5
)

// Config holds the optional API key. Google Books answers anonymous
// requests at a lower quota.
type Config struct {
	APIKey   string
	BaseURL  string
	Language string
	PerQuery int
}

// Client is a book provider.
type Client struct {
	cfg    Config
	api    *upstream.Client
	linker affiliate.Linker
}

func New(cfg Config, api *upstream.Client, linker affiliate.Linker) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PerQuery <= 0 {
		cfg.PerQuery = defaultLimit
	}
	return &Client{cfg: cfg, api: api, linker: linker}
}

func (c *Client) Name() string { return "google_books" }

type volumesResponse struct {
	TotalItems int          `json:"totalItems"`
	Items      []volumeJSON `json:"items"`
}

type volumeJSON struct {
	ID         string `json:"id"`
	VolumeInfo struct {
		Title               string   `json:"title"`
		Subtitle            string   `json:"subtitle"`
		Authors             []string `json:"authors"`
		Description         string   `json:"description"`
		Categories          []string `json:"categories"`
		Language            string   `json:"language"`
		IndustryIdentifiers []struct {
			Type       string `json:"type"`
			Identifier string `json:"identifier"`
		} `json:"industryIdentifiers"`
		ImageLinks struct {
			Thumbnail      string `json:"thumbnail"`
			SmallThumbnail string `json:"smallThumbnail"`
		} `json:"imageLinks"`
	} `json:"volumeInfo"`
}

// Search returns up to PerQuery volumes for query. Volumes without a title
// are dropped.
func (c *Client) Search(ctx context.Context, query string) ([]catalog.Book, error) {
	params := url.Values{
		"q":          {query},
		"maxResults": {strconv.Itoa(c.cfg.PerQuery)},
		"printType":  {"books"},
	}
	if c.cfg.APIKey != "" {
		params.Set("key", c.cfg.APIKey)
	}
	if c.cfg.Language != "" {
		params.Set("langRestrict", c.cfg.Language)
	}

	var resp volumesResponse
	rawURL := strings.TrimRight(c.cfg.BaseURL, "/") + "/volumes?" + params.Encode()
	if err := c.api.GetJSON(ctx, rawURL, nil, &resp); err != nil {
		return nil, fmt.Errorf("search books %q: %w", query, err)
	}

	out := make([]catalog.Book, 0, len(resp.Items))
	for _, v := range resp.Items {
		if strings.TrimSpace(v.VolumeInfo.Title) == "" {
			continue
		}
		out = append(out, c.toBook(v, query))
	}
	return out, nil
}

func (c *Client) toBook(v volumeJSON, topic string) catalog.Book {
	info := v.VolumeInfo
	title := info.Title
	if info.Subtitle != "" {
		title += ": " + info.Subtitle
	}

	book := catalog.Book{
		ID:          "gbooks:" + v.ID,
		Title:       title,
		Authors:     info.Authors,
		Description: info.Description,
		Categories:  info.Categories,
		Language:    info.Language,
		Source:      c.Name(),
		Topic:       topic,
	}
	book.ISBN = isbn(v)
	if book.ISBN != "" {
		book.ID = "isbn:" + book.ISBN
	}

	cover := info.ImageLinks.Thumbnail
	if cover == "" {
		cover = info.ImageLinks.SmallThumbnail
	}
	book.CoverURL = strings.Replace(cover, "http://", "https://", 1)

	author := ""
	if len(info.Authors) > 0 {
		author = info.Authors[0]
	}
	book.AmazonURL = c.linker.BookURL(book.ISBN, info.Title, author)
	book.GoodreadsURL = affiliate.GoodreadsURL(book.ISBN, info.Title, author)
	return book
}

// isbn prefers ISBN-13 over ISBN-10.
func isbn(v volumeJSON) string {
	var isbn10 string
	for _, id := range v.VolumeInfo.IndustryIdentifiers {
		switch id.Type {
		case "ISBN_13":
			return affiliate.NormalizeISBN(id.Identifier)
		case "ISBN_10":
			isbn10 = affiliate.NormalizeISBN(id.Identifier)
		}
	}
	return isbn10
}
