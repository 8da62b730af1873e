package books_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oe/sunrain-sub002/content-fetcher/internal/affiliate"
	"github.com/oe/sunrain-sub002/content-fetcher/internal/books"
	"github.com/oe/sunrain-sub002/content-fetcher/internal/upstream"
	infralogger "github.com/oe/sunrain-sub002/infrastructure/logger"
)

func TestClient_Search(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/volumes", r.URL.Path)
		assert.Equal(t, "anxiety self help", r.URL.Query().Get("q"))
		assert.Equal(t, "k", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{"totalItems":3,"items":[
			{"id":"v1","volumeInfo":{"title":"The Anxiety Workbook","authors":["Ann Author"],
				"industryIdentifiers":[{"type":"ISBN_10","identifier":"0306406152"},{"type":"ISBN_13","identifier":"978-0-306-40615-7"}],
				"imageLinks":{"thumbnail":"http://books.google.com/cover.jpg"}}},
			{"id":"v2","volumeInfo":{"title":"Untitled Notes","authors":[]}},
			{"id":"v3","volumeInfo":{"title":""}}
		]}`))
	}))
	t.Cleanup(srv.Close)

	api := upstream.New("google_books", srv.Client(), infralogger.NewNop())
	c := books.New(books.Config{APIKey: "k", BaseURL: srv.URL}, api, affiliate.New("sunrain-20", ""))

	got, err := c.Search(context.Background(), "anxiety self help")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "isbn:9780306406157", got[0].ID)
	assert.Equal(t, "9780306406157", got[0].ISBN)
	assert.Equal(t, "https://books.google.com/cover.jpg", got[0].CoverURL)
	assert.Equal(t, "https://www.amazon.com/dp/0306406152?tag=sunrain-20", got[0].AmazonURL)
	assert.Contains(t, got[0].GoodreadsURL, "9780306406157")
	assert.Equal(t, "anxiety self help", got[0].Topic)

	assert.Equal(t, "gbooks:v2", got[1].ID)
	assert.Contains(t, got[1].AmazonURL, "i=stripbooks")
}
