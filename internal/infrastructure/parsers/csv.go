package parsers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ersonp/watlas/internal/domain/entities"
)

// RelationSeparator joins relation ids inside a single CSV cell.
const RelationSeparator = "|"

// CSVColumns is the column order written by exports.
var CSVColumns = []string{"id", "slug", "name", "kind", "canonical", "universe", "relations", "sections", "image_url"}

// Legacy header names mapped to their current column.
var csvAliases = map[string]string{
	"type":     "kind",
	"canon":    "canonical",
	"univers":  "universe",
	"imageurl": "image_url",
}

// CSVParser parses pages from CSV format.
type CSVParser struct{}

// Parse reads CSV from the reader and returns parsed pages.
// Required columns: name, kind. Relations are separated by "|"; sections
// hold a JSON array of {title, content}.
func (p *CSVParser) Parse(r io.Reader) ([]RawPage, error) {
	reader := csv.NewReader(r)

	colIndex, err := p.readHeader(reader)
	if err != nil {
		return nil, err
	}

	return p.readRecords(reader, colIndex)
}

// readHeader reads and validates the CSV header row.
func (p *CSVParser) readHeader(reader *csv.Reader) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		col = strings.ToLower(strings.TrimSpace(col))
		if alias, ok := csvAliases[col]; ok {
			col = alias
		}
		colIndex[col] = i
	}

	requiredCols := []string{"name", "kind"}
	for _, col := range requiredCols {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	return colIndex, nil
}

// readRecords reads all data rows and converts them to RawPages.
func (p *CSVParser) readRecords(reader *csv.Reader, colIndex map[string]int) ([]RawPage, error) {
	var pages []RawPage
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		page, err := p.parseRecord(record, colIndex, lineNum)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}

	return pages, nil
}

// parseRecord converts a CSV record to a RawPage.
func (p *CSVParser) parseRecord(record []string, colIndex map[string]int, lineNum int) (RawPage, error) {
	page := RawPage{
		ID:          getColumn(record, colIndex, "id"),
		Slug:        getColumn(record, colIndex, "slug"),
		Name:        getColumn(record, colIndex, "name"),
		Kind:        getColumn(record, colIndex, "kind"),
		Universe:    getColumn(record, colIndex, "universe"),
		Description: getColumn(record, colIndex, "description"),
		ImageURL:    getColumn(record, colIndex, "image_url"),
		LineNum:     lineNum,
	}

	if canonStr := getColumn(record, colIndex, "canonical"); canonStr != "" {
		canonical, err := strconv.ParseBool(strings.TrimSpace(canonStr))
		if err != nil {
			return RawPage{}, fmt.Errorf("line %d: invalid canonical value %q: %w", lineNum, canonStr, err)
		}
		page.Canonical = &canonical
	}

	if relStr := getColumn(record, colIndex, "relations"); relStr != "" {
		for _, id := range strings.Split(relStr, RelationSeparator) {
			if id = strings.TrimSpace(id); id != "" {
				page.Relations = append(page.Relations, id)
			}
		}
	}

	if secStr := getColumn(record, colIndex, "sections"); strings.TrimSpace(secStr) != "" {
		var sections []entities.Section
		if err := json.Unmarshal([]byte(secStr), &sections); err != nil {
			return RawPage{}, fmt.Errorf("line %d: invalid sections value: %w", lineNum, err)
		}
		page.Sections = sections
	}

	return page, nil
}

// EncodeCSVRecord renders a page in CSVColumns order.
func EncodeCSVRecord(p *entities.Page) ([]string, error) {
	sections := "[]"
	if len(p.Sections) > 0 {
		b, err := json.Marshal(p.Sections)
		if err != nil {
			return nil, fmt.Errorf("encoding sections: %w", err)
		}
		sections = string(b)
	}
	return []string{
		p.ID,
		p.Slug,
		p.Name,
		string(p.Kind),
		strconv.FormatBool(p.Canonical),
		p.Universe,
		strings.Join(p.Relations, RelationSeparator),
		sections,
		p.ImageURL,
	}, nil
}

// getColumn safely retrieves a column value from a record.
func getColumn(record []string, colIndex map[string]int, col string) string {
	if idx, ok := colIndex[col]; ok && idx < len(record) {
		return record[idx]
	}
	return ""
}
