package flashcard

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// XLSXSource loads a dataset from a spreadsheet. Each sheet is a topic named
// after the sheet; column A holds questions and column B answers. An optional
// first row reading "question"/"answer" (or "q"/"a") is treated as a header.
type XLSXSource struct {
	path string
}

// NewXLSXSource creates a spreadsheet-backed source.
func NewXLSXSource(path string) *XLSXSource {
	return &XLSXSource{path: path}
}

// Load reads every sheet of the workbook in workbook order.
func (s *XLSXSource) Load(_ context.Context) (*Dataset, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	ds := &Dataset{Topics: []Topic{}}
	used := make(map[string]bool)
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}

		id := uniqueID(Slug(sheet), used)

		topic := Topic{ID: id, Name: strings.TrimSpace(sheet), Cards: []Card{}}
		for i, row := range rows {
			q, a := cell(row, 0), cell(row, 1)
			if i == 0 && isHeaderRow(q, a) {
				continue
			}
			if q == "" && a == "" {
				continue
			}
			topic.Cards = append(topic.Cards, Card{Q: q, A: a})
		}
		ds.Topics = append(ds.Topics, topic)
	}

	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid workbook %s: %w", s.path, err)
	}
	return ds, nil
}

// uniqueID returns base, or base-2, base-3 ... for the first candidate not
// already in used, and marks it used.
func uniqueID(base string, used map[string]bool) string {
	id := base
	for n := 2; used[id]; n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	used[id] = true
	return id
}

// HealthCheck verifies the workbook file exists.
func (s *XLSXSource) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(s.path); err != nil {
		return fmt.Errorf("workbook unavailable: %w", err)
	}
	return nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isHeaderRow(q, a string) bool {
	q, a = strings.ToLower(q), strings.ToLower(a)
	return (q == "question" && a == "answer") || (q == "q" && a == "a")
}

// Slug turns a display name into a topic ID: accents are folded, letters
// lowercased, and runs of anything else collapsed to a single hyphen.
func Slug(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			hyphen = false
			continue
		}
		if b.Len() > 0 && !hyphen {
			b.WriteByte('-')
			hyphen = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "topic"
	}
	return slug
}
