// Package links checks and repairs outbound URLs in the content catalog.
package links

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	infralogger "github.com/oe/sunrain-sub002/infrastructure/logger"
)

const (
	DefaultConcurrency = 8
	DefaultTimeout     = 10 * time.Second
	maxPageBytes       = 1 << 20
)

// notFoundMarkers appear in the title or main heading of soft-404 pages
// that answer with 200.
var notFoundMarkers = []string{
	"page not found",
	"not found",
	"404",
	"looking for something",
	"no results for",
	"does not exist",
}

// Result is the outcome of one URL check.
type Result struct {
	URL        string `json:"url"`
	StatusCode int    `json:"statusCode,omitempty"`
	OK         bool   `json:"ok"`
	Reason     string `json:"reason,omitempty"`
}

// Validator checks URLs with bounded concurrency.
type Validator struct {
	client      *http.Client
	concurrency int
	logger      infralogger.Logger
}

func NewValidator(client *http.Client, concurrency int, log infralogger.Logger) *Validator {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Validator{client: client, concurrency: concurrency, logger: log}
}

// Check validates every URL and returns results in input order. Duplicate
// URLs are requested once.
func (v *Validator) Check(ctx context.Context, urls []string) ([]Result, error) {
	unique := make(map[string]int)
	var targets []string
	for _, u := range urls {
		if _, ok := unique[u]; !ok {
			unique[u] = len(targets)
			targets = append(targets, u)
		}
	}

	checked := make([]Result, len(targets))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(v.concurrency)
	for i, u := range targets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			checked[i] = v.check(ctx, u)
			if !checked[i].OK {
				v.logger.Debug("Broken link",
					infralogger.String("url", u),
					infralogger.String("reason", checked[i].Reason),
				)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("check links: %w", err)
	}

	out := make([]Result, len(urls))
	for i, u := range urls {
		out[i] = checked[unique[u]]
	}
	return out, nil
}

func (v *Validator) check(ctx context.Context, rawURL string) Result {
	res := Result{URL: rawURL}
	if !Wellformed(rawURL) {
		res.Reason = "malformed url"
		return res
	}

	method := http.MethodHead
	resp, err := v.do(ctx, method, rawURL)
	if err == nil && needsGet(resp) {
		_ = resp.Body.Close()
		method = http.MethodGet
		resp, err = v.do(ctx, method, rawURL)
	}
	if err != nil {
		res.Reason = err.Error()
		return res
	}
	defer func() { _ = resp.Body.Close() }()

	res.StatusCode = resp.StatusCode
	if resp.StatusCode >= http.StatusBadRequest {
		res.Reason = http.StatusText(resp.StatusCode)
		return res
	}
	if method == http.MethodGet && isHTML(resp) {
		if marker, found := softNotFound(resp.Body); found {
			res.Reason = "not found page: " + marker
			return res
		}
	}

	res.OK = true
	return res
}

func (v *Validator) do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	req, err := http.NewRequestWithContext(ctx, method, rawURL, http.NoBody)
	if err != nil {
		cancel()
		return nil, err
	}
	resp, err := v.client.Do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelBody{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	defer b.cancel()
	return b.ReadCloser.Close()
}

// needsGet is true when HEAD is refused or the page body must be inspected.
func needsGet(resp *http.Response) bool {
	switch {
	case resp.StatusCode == http.StatusMethodNotAllowed, resp.StatusCode == http.StatusForbidden:
		return true
	case resp.StatusCode < http.StatusBadRequest:
		return isHTML(resp)
	default:
		return false
	}
}

func isHTML(resp *http.Response) bool {
	return strings.Contains(resp.Header.Get("Content-Type"), "text/html")
}

// softNotFound inspects the title and first h1.
func softNotFound(body io.Reader) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(io.LimitReader(body, maxPageBytes))
	if err != nil {
		return "", false
	}
	texts := []string{
		doc.Find("title").First().Text(),
		doc.Find("h1").First().Text(),
	}
	for _, text := range texts {
		text = strings.ToLower(strings.TrimSpace(text))
		for _, marker := range notFoundMarkers {
			if strings.Contains(text, marker) {
				return marker, true
			}
		}
	}
	return "", false
}

// Wellformed reports whether rawURL is an absolute http(s) URL with a host.
func Wellformed(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Broken filters failed results.
func Broken(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.OK {
			out = append(out, r)
		}
	}
	return out
}
