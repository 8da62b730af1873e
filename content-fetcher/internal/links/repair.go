package links

import (
	"strings"

	"github.com/oe/sunrain-sub002/content-fetcher/catalog"
	"github.com/oe/sunrain-sub002/content-fetcher/internal/affiliate"
)

// Repairer regenerates store and search links from item metadata.
type Repairer struct {
	linker affiliate.Linker
}

func NewRepairer(linker affiliate.Linker) *Repairer {
	return &Repairer{linker: linker}
}

// needsRepair is true for empty, malformed, known broken or untagged
// Amazon links.
func (r *Repairer) needsRepair(rawURL string, broken map[string]bool, amazon bool) bool {
	if rawURL == "" || !Wellformed(rawURL) || broken[rawURL] {
		return true
	}
	return amazon && r.linker.Tag != "" && !r.linker.HasTag(rawURL)
}

// Books rewrites book links in place and returns how many changed.
func (r *Repairer) Books(books []catalog.Book, broken map[string]bool) int {
	fixed := 0
	for i := range books {
		b := &books[i]
		author := first(b.Authors)
		if r.needsRepair(b.AmazonURL, broken, true) {
			b.AmazonURL = r.linker.BookURL(b.ISBN, b.Title, author)
			fixed++
		}
		if r.needsRepair(b.GoodreadsURL, broken, false) {
			b.GoodreadsURL = affiliate.GoodreadsURL(b.ISBN, b.Title, author)
			fixed++
		}
		if b.CoverURL != "" && (broken[b.CoverURL] || !Wellformed(b.CoverURL)) {
			b.CoverURL = ""
			fixed++
		}
	}
	return fixed
}

// Movies rewrites movie links in place and returns how many changed.
func (r *Repairer) Movies(movies []catalog.Movie, broken map[string]bool) int {
	fixed := 0
	for i := range movies {
		m := &movies[i]
		if r.needsRepair(m.AmazonURL, broken, true) {
			year, _, _ := strings.Cut(m.ReleaseDate, "-")
			m.AmazonURL = r.linker.MovieURL(m.Title, year)
			fixed++
		}
		if m.PosterURL != "" && (broken[m.PosterURL] || !Wellformed(m.PosterURL)) {
			m.PosterURL = ""
			fixed++
		}
	}
	return fixed
}

// Tracks clears broken Spotify links that cannot be regenerated and
// rebuilds open.spotify.com links from the id.
func (r *Repairer) Tracks(tracks []catalog.Track, broken map[string]bool) int {
	fixed := 0
	for i := range tracks {
		t := &tracks[i]
		if t.SpotifyURL != "" && !broken[t.SpotifyURL] && Wellformed(t.SpotifyURL) {
			continue
		}
		rest, spotify := strings.CutPrefix(t.ID, "spotify:")
		kind, id, ok := strings.Cut(rest, ":")
		if !spotify || !ok || id == "" {
			continue
		}
		rebuilt := "https://open.spotify.com/" + kind + "/" + id
		if rebuilt != t.SpotifyURL {
			t.SpotifyURL = rebuilt
			fixed++
		}
	}
	return fixed
}

func first(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// BookURLs lists every outbound URL of books.
func BookURLs(books []catalog.Book) []string {
	var out []string
	for _, b := range books {
		out = appendNonEmpty(out, b.AmazonURL, b.GoodreadsURL, b.CoverURL)
	}
	return out
}

// MovieURLs lists every outbound URL of movies.
func MovieURLs(movies []catalog.Movie) []string {
	var out []string
	for _, m := range movies {
		out = appendNonEmpty(out, m.AmazonURL, m.TMDBURL, m.PosterURL)
	}
	return out
}

// TrackURLs lists every outbound URL of tracks.
func TrackURLs(tracks []catalog.Track) []string {
	var out []string
	for _, t := range tracks {
		out = appendNonEmpty(out, t.SpotifyURL, t.ImageURL)
	}
	return out
}

func appendNonEmpty(out []string, urls ...string) []string {
	for _, u := range urls {
		if u != "" {
			out = append(out, u)
		}
	}
	return out
}

// BrokenSet indexes failed results by URL.
func BrokenSet(results []Result) map[string]bool {
	set := make(map[string]bool)
	for _, r := range Broken(results) {
		set[r.URL] = true
	}
	return set
}
