// Package affiliate builds Amazon affiliate and Goodreads search URLs.
package affiliate

import (
	"net/url"
	"strings"
)

const (
	DefaultDomain  = "www.amazon.com"
	goodreadsBase  = "https://www.goodreads.com/search"
	amazonTagParam = "tag"
)

// Linker templates store URLs. No store API is called.
type Linker struct {
	Tag    string
	Domain string
}

// New returns a Linker for the partner tag on domain.
func New(tag, domain string) Linker {
	if domain == "" {
		domain = DefaultDomain
	}
	return Linker{Tag: tag, Domain: domain}
}

// BookURL links the product page when isbn converts to an ISBN-10, and a
// book search for title and author otherwise.
func (l Linker) BookURL(isbn, title, author string) string {
	if isbn10, ok := ToISBN10(isbn); ok {
		return l.withTag(&url.URL{Scheme: "https", Host: l.Domain, Path: "/dp/" + isbn10})
	}
	return l.search(strings.TrimSpace(title+" "+author), "stripbooks")
}

// MovieURL links a Movies & TV search for title and year.
func (l Linker) MovieURL(title, year string) string {
	return l.search(strings.TrimSpace(title+" "+year), "movies-tv")
}

func (l Linker) search(keywords, index string) string {
	u := &url.URL{Scheme: "https", Host: l.Domain, Path: "/s"}
	q := url.Values{}
	q.Set("k", keywords)
	q.Set("i", index)
	u.RawQuery = q.Encode()
	return l.withTag(u)
}

func (l Linker) withTag(u *url.URL) string {
	if l.Tag != "" {
		q := u.Query()
		q.Set(amazonTagParam, l.Tag)
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// HasTag reports whether rawURL is an Amazon link carrying the partner tag.
func (l Linker) HasTag(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || !strings.Contains(u.Host, "amazon.") {
		return false
	}
	return l.Tag != "" && u.Query().Get(amazonTagParam) == l.Tag
}

// GoodreadsURL searches by ISBN when known, else by title and author.
func GoodreadsURL(isbn, title, author string) string {
	query := NormalizeISBN(isbn)
	if query == "" {
		query = strings.TrimSpace(title + " " + author)
	}
	return goodreadsBase + "?" + url.Values{"q": {query}}.Encode()
}

// NormalizeISBN strips separators. It returns "" unless the result has 10
// or 13 characters.
func NormalizeISBN(isbn string) string {
	var b strings.Builder
	for _, r := range isbn {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'X' || r == 'x':
			b.WriteRune('X')
		}
	}
	s := b.String()
	if len(s) != 10 && len(s) != 13 {
		return ""
	}
	return s
}

// ToISBN10 converts a 978-prefixed ISBN-13, or passes an ISBN-10 through.
func ToISBN10(isbn string) (string, bool) {
	s := NormalizeISBN(isbn)
	switch {
	case len(s) == 10:
		return s, true
	case len(s) == 13 && strings.HasPrefix(s, "978"):
		core := s[3:12]
		sum := 0
		for i, r := range core {
			sum += int(r-'0') * (10 - i)
		}
		check := (11 - sum%11) % 11
		if check == 10 {
			return core + "X", true
		}
		return core + string(rune('0'+check)), true
	default:
		return "", false
	}
}
