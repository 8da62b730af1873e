// Package mockdata holds the fixed datasets written when a provider has no
// credentials or every upstream call failed.
package mockdata

import (
	"strings"

	"github.com/oe/sunrain-sub002/content-fetcher/catalog"
	"github.com/oe/sunrain-sub002/content-fetcher/internal/affiliate"
)

const source = "mock"

// Books returns the fallback reading list with links built by linker.
func Books(linker affiliate.Linker) []catalog.Book {
	books := []catalog.Book{
		{
			Title:       "Feeling Good: The New Mood Therapy",
			Authors:     []string{"David D. Burns"},
			ISBN:        "9780380810338",
			Description: "Cognitive techniques for lifting depression and building self-esteem.",
			Categories:  []string{"Psychology", "Self-Help"},
			Topic:       "depression",
		},
		{
			Title:       "The Anxiety and Phobia Workbook",
			Authors:     []string{"Edmund J. Bourne"},
			ISBN:        "9781684033713",
			Description: "Step-by-step exercises for managing anxiety, panic and worry.",
			Categories:  []string{"Psychology", "Self-Help"},
			Topic:       "anxiety",
		},
		{
			Title:       "Wherever You Go, There You Are",
			Authors:     []string{"Jon Kabat-Zinn"},
			ISBN:        "9781401307783",
			Description: "Mindfulness meditation in everyday life.",
			Categories:  []string{"Body, Mind & Spirit"},
			Topic:       "mindfulness",
		},
		{
			Title:       "Self-Compassion",
			Authors:     []string{"Kristin Neff"},
			ISBN:        "9780061733529",
			Description: "The proven power of being kind to yourself.",
			Categories:  []string{"Psychology"},
			Topic:       "self-care",
		},
		{
			Title:       "The Body Keeps the Score",
			Authors:     []string{"Bessel van der Kolk"},
			ISBN:        "9780143127741",
			Description: "Brain, mind and body in the healing of trauma.",
			Categories:  []string{"Psychology"},
			Topic:       "resilience",
		},
	}
	for i := range books {
		b := &books[i]
		b.ID = "isbn:" + b.ISBN
		b.Language = "en"
		b.Source = source
		b.AmazonURL = linker.BookURL(b.ISBN, b.Title, b.Authors[0])
		b.GoodreadsURL = affiliate.GoodreadsURL(b.ISBN, b.Title, b.Authors[0])
	}
	return books
}

// Movies returns the fallback film list.
func Movies(linker affiliate.Linker) []catalog.Movie {
	movies := []catalog.Movie{
		{
			ID:          "tmdb:150540",
			Title:       "Inside Out",
			Overview:    "Joy, Sadness and the other emotions guide a girl through a move.",
			ReleaseDate: "2015-06-09",
			Rating:      7.9,
			Genres:      []string{"Animation", "Family", "Comedy"},
			Topic:       "emotions",
		},
		{
			ID:          "tmdb:489",
			Title:       "Good Will Hunting",
			Overview:    "A gifted janitor works through his past with a therapist.",
			ReleaseDate: "1997-12-05",
			Rating:      8.1,
			Genres:      []string{"Drama"},
			Topic:       "therapy",
		},
		{
			ID:          "tmdb:13",
			Title:       "Forrest Gump",
			Overview:    "A kind man lives through decades of history with an open heart.",
			ReleaseDate: "1994-06-23",
			Rating:      8.5,
			Genres:      []string{"Comedy", "Drama", "Romance"},
			Topic:       "resilience",
		},
		{
			ID:          "tmdb:84892",
			Title:       "The Perks of Being a Wallflower",
			Overview:    "A shy teenager finds friends while facing past trauma.",
			ReleaseDate: "2012-09-20",
			Rating:      7.7,
			Genres:      []string{"Drama"},
			Topic:       "depression",
		},
		{
			ID:          "tmdb:116745",
			Title:       "The Secret Life of Walter Mitty",
			Overview:    "A daydreamer sets out on a real adventure.",
			ReleaseDate: "2013-12-18",
			Rating:      7.1,
			Genres:      []string{"Adventure", "Comedy", "Drama"},
			Topic:       "hope",
		},
	}
	for i := range movies {
		m := &movies[i]
		m.Source = source
		m.TMDBURL = "https://www.themoviedb.org/movie/" + strings.TrimPrefix(m.ID, "tmdb:")
		m.AmazonURL = linker.MovieURL(m.Title, m.ReleaseDate[:4])
	}
	return movies
}

// Music returns the fallback playlists and tracks.
func Music() []catalog.Track {
	tracks := []catalog.Track{
		{
			ID:         "spotify:track:6kkwzB6hXLIONkEk9JciA6",
			Kind:       "track",
			Name:       "Weightless",
			Artists:    []string{"Marconi Union"},
			Album:      "Weightless",
			DurationMS: 480000,
			Category:   "relaxation",
		},
		{
			ID:         "spotify:track:3Mf7yWYaMXWSjT0D3L5AY2",
			Kind:       "track",
			Name:       "Clair de Lune",
			Artists:    []string{"Claude Debussy"},
			Album:      "Suite bergamasque",
			DurationMS: 300000,
			Category:   "classical",
		},
		{
			ID:         "spotify:track:0SiywuOBRcynK0uKGWdCnn",
			Kind:       "track",
			Name:       "Electra",
			Artists:    []string{"Airstream"},
			DurationMS: 360000,
			Category:   "relaxation",
		},
		{
			ID:       "spotify:playlist:37i9dQZF1DWZqd5JICZI0u",
			Kind:     "playlist",
			Name:     "Peaceful Meditation",
			Artists:  []string{"Spotify"},
			Category: "meditation",
		},
		{
			ID:       "spotify:playlist:37i9dQZF1DX3Ogo9pFvBkY",
			Kind:     "playlist",
			Name:     "Ambient Relaxation",
			Artists:  []string{"Spotify"},
			Category: "sleep",
		},
	}
	for i := range tracks {
		t := &tracks[i]
		t.Source = source
		t.SpotifyURL = "https://open.spotify.com/" + t.Kind + "/" + strings.TrimPrefix(t.ID, "spotify:"+t.Kind+":")
	}
	return tracks
}

// Quotes returns the fallback quote pool. Ids and quality are assigned by
// the caller.
func Quotes() []catalog.Quote {
	return []catalog.Quote{
		{
			Text:       "You don't have to control your thoughts. You just have to stop letting them control you.",
			Author:     "Dan Millman",
			Categories: []string{"anxiety", "mindfulness"},
		},
		{
			Text:       "There is hope, even when your brain tells you there isn't.",
			Author:     "John Green",
			Categories: []string{"depression", "hope"},
		},
		{
			Text:       "Almost everything will work again if you unplug it for a few minutes, including you.",
			Author:     "Anne Lamott",
			Categories: []string{"stress", "self-care"},
		},
		{
			Text:       "The present moment is filled with joy and happiness. If you are attentive, you will see it.",
			Author:     "Thich Nhat Hanh",
			Categories: []string{"mindfulness"},
		},
		{
			Text:       "Out of suffering have emerged the strongest souls.",
			Author:     "Khalil Gibran",
			Categories: []string{"resilience"},
		},
		{
			Text:       "Talk to yourself like you would to someone you love.",
			Author:     "Brené Brown",
			Categories: []string{"self-care"},
		},
		{
			Text:       "Every storm runs out of rain.",
			Author:     "Maya Angelou",
			Categories: []string{"hope", "resilience"},
		},
		{
			Text:       "Feelings are just visitors. Let them come and go.",
			Author:     "Mooji",
			Categories: []string{"mindfulness", "anxiety"},
		},
	}
}
