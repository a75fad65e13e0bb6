package parsers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// JSONParser parses pages from JSON. It accepts a bare array of records or
// a backup document whose records sit under "data" (or "pages").
type JSONParser struct{}

// Parse reads JSON from the reader and returns parsed pages.
func (p *JSONParser) Parse(r io.Reader) ([]RawPage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading JSON: %w", err)
	}
	data = bytes.TrimSpace(data)

	var pages []RawPage
	if len(data) > 0 && data[0] == '{' {
		var doc struct {
			Data  []RawPage `json:"data"`
			Pages []RawPage `json:"pages"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
		pages = doc.Data
		if pages == nil {
			pages = doc.Pages
		}
		if pages == nil {
			return nil, fmt.Errorf("parsing JSON: document has no \"data\" or \"pages\" array")
		}
	} else if err := json.Unmarshal(data, &pages); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	// Set line numbers (array index + 1, 1-indexed)
	for i := range pages {
		pages[i].LineNum = i + 1
	}

	return pages, nil
}
