// Package catalog holds the content records written by the fetcher and
// served by the website, plus the helpers both sides share.
package catalog

import (
	"crypto/sha1" //nolint:gosec // identity hash, not a security boundary
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Type names one content library.
type Type string

const (
	TypeBooks  Type = "books"
	TypeMovies Type = "movies"
	TypeMusic  Type = "music"
	TypeQuotes Type = "quotes"
)

// Types lists every library in output order.
var Types = []Type{TypeBooks, TypeMovies, TypeMusic, TypeQuotes}

// ParseType accepts a library name.
func ParseType(s string) (Type, error) {
	for _, t := range Types {
		if string(t) == strings.ToLower(strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown content type %q", s)
}

// FileName is the output file of t inside the content directory.
func (t Type) FileName() string {
	return string(t) + ".json"
}

// Book is one reading recommendation.
type Book struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Authors      []string `json:"authors"`
	Description  string   `json:"description,omitempty"`
	CoverURL     string   `json:"coverUrl,omitempty"`
	Categories   []string `json:"categories,omitempty"`
	ISBN         string   `json:"isbn,omitempty"`
	AmazonURL    string   `json:"amazonUrl,omitempty"`
	GoodreadsURL string   `json:"goodreadsUrl,omitempty"`
	Language     string   `json:"language,omitempty"`
	Source       string   `json:"source"`
	Topic        string   `json:"topic,omitempty"`
}

// Movie is one film recommendation.
type Movie struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Overview    string   `json:"overview,omitempty"`
	ReleaseDate string   `json:"releaseDate,omitempty"`
	Rating      float64  `json:"rating"`
	PosterURL   string   `json:"posterUrl,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	TMDBURL     string   `json:"tmdbUrl,omitempty"`
	AmazonURL   string   `json:"amazonUrl,omitempty"`
	Source      string   `json:"source"`
	Topic       string   `json:"topic,omitempty"`
}

// Track is one music recommendation: a track or a playlist.
type Track struct {
	ID         string   `json:"id"`
	Kind       string   `json:"kind"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists,omitempty"`
	Album      string   `json:"album,omitempty"`
	DurationMS int      `json:"durationMs,omitempty"`
	SpotifyURL string   `json:"spotifyUrl,omitempty"`
	PreviewURL string   `json:"previewUrl,omitempty"`
	ImageURL   string   `json:"imageUrl,omitempty"`
	Category   string   `json:"category,omitempty"`
	Source     string   `json:"source"`
}

// Quote is one short inspirational text.
type Quote struct {
	ID         string   `json:"id"`
	Text       string   `json:"text"`
	Author     string   `json:"author,omitempty"`
	Source     string   `json:"source,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Quality    int      `json:"quality"`
	Language   string   `json:"language,omitempty"`
}

// Manifest summarizes one fetch run.
type Manifest struct {
	GeneratedAt time.Time         `json:"generatedAt"`
	Counts      map[Type]int      `json:"counts"`
	Sources     map[Type][]string `json:"sources,omitempty"`
}

// NormalizeText folds case, trims punctuation at the edges and collapses
// whitespace.
func NormalizeText(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})
}

// QuoteID is stable for the same text and author regardless of case,
// spacing or surrounding quotation marks.
func QuoteID(text, author string) string {
	sum := sha1.Sum([]byte(NormalizeText(text) + "|" + NormalizeText(author))) //nolint:gosec // identity hash
	return "quote:" + hex.EncodeToString(sum[:8])
}
