package i18n

import (
	"golang.org/x/text/language"
)

// Negotiator picks a supported language for a request.
type Negotiator struct {
	supported []string
	matcher   language.Matcher
	fallback  string
}

// NewNegotiator matches against supported; the first entry is the fallback.
func NewNegotiator(supported []string) *Negotiator {
	tags := make([]language.Tag, 0, len(supported))
	for _, s := range supported {
		tags = append(tags, language.Make(s))
	}
	fallback := ""
	if len(supported) > 0 {
		fallback = supported[0]
	}
	return &Negotiator{supported: supported, matcher: language.NewMatcher(tags), fallback: fallback}
}

// Supported lists the configured languages.
func (n *Negotiator) Supported() []string {
	return n.supported
}

// Negotiate prefers an explicit query value, then Accept-Language.
func (n *Negotiator) Negotiate(query, acceptLanguage string) string {
	if query != "" {
		if lang, ok := n.match(query); ok {
			return lang
		}
	}
	if acceptLanguage != "" {
		if lang, ok := n.match(acceptLanguage); ok {
			return lang
		}
	}
	return n.fallback
}

// match returns the supported language closest to raw.
func (n *Negotiator) match(raw string) (string, bool) {
	tags, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(tags) == 0 {
		return "", false
	}
	_, idx, conf := n.matcher.Match(tags...)
	if conf == language.No {
		return "", false
	}
	return n.supported[idx], true
}
