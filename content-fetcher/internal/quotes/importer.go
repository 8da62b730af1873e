package quotes

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/oe/sunrain-sub002/content-fetcher/catalog"
)

// ErrUnsupportedFormat is returned for input files that are neither JSON
// nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported quote file format")

// ImportError reports a rejected spreadsheet row.
type ImportError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// ImportFile reads quotes from a .json or .xlsx file and normalizes them.
func ImportFile(path string) ([]catalog.Quote, []ImportError, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", path, err)
		}
		quotes, err := ParseJSON(data)
		return quotes, nil, err
	case ".xlsx":
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer func() { _ = f.Close() }()
		return ParseXLSX(f)
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// jsonQuote accepts both the catalog shape and the ZenQuotes shape.
type jsonQuote struct {
	catalog.Quote
	Q string `json:"q"`
	A string `json:"a"`
}

// ParseJSON decodes an array of quotes.
func ParseJSON(data []byte) ([]catalog.Quote, error) {
	var raw []jsonQuote
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode quotes: %w", err)
	}
	out := make([]catalog.Quote, 0, len(raw))
	for _, r := range raw {
		q := r.Quote
		if q.Text == "" {
			q.Text, q.Author = r.Q, r.A
		}
		if q.Source == "" {
			q.Source = "import"
		}
		if n, ok := Normalize(q); ok {
			out = append(out, n)
		}
	}
	return out, nil
}

// Spreadsheet columns, located by header name in row 1.
const (
	headerText     = "text"
	headerAuthor   = "author"
	headerCategory = "categories"
	headerLanguage = "language"
	headerSource   = "source"
)

// ParseXLSX reads the first sheet. Row 1 holds headers; text is required,
// author, categories (comma separated), language and source are optional.
func ParseXLSX(r io.Reader) ([]catalog.Quote, []ImportError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	cols := make(map[string]int)
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	textCol, ok := cols[headerText]
	if !ok {
		return nil, nil, fmt.Errorf("missing %q column", headerText)
	}
	cell := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var (
		quotes  []catalog.Quote
		rejects []ImportError
	)
	for i, row := range rows[1:] {
		rowNum := i + 2
		if textCol >= len(row) || strings.TrimSpace(row[textCol]) == "" {
			rejects = append(rejects, ImportError{Row: rowNum, Error: "text is required"})
			continue
		}
		q := catalog.Quote{
			Text:     row[textCol],
			Author:   cell(row, headerAuthor),
			Language: cell(row, headerLanguage),
			Source:   cell(row, headerSource),
		}
		if q.Source == "" {
			q.Source = "import"
		}
		for _, c := range strings.Split(cell(row, headerCategory), ",") {
			if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
				q.Categories = append(q.Categories, c)
			}
		}
		n, ok := Normalize(q)
		if !ok {
			rejects = append(rejects, ImportError{Row: rowNum, Error: "text is empty after normalization"})
			continue
		}
		quotes = append(quotes, n)
	}
	return quotes, rejects, nil
}
