package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ersonp/watlas/internal/domain/entities"
	"github.com/ersonp/watlas/internal/domain/services"
)

const noUniverseHint = "No universe selected. Use 'watlas universes use NAME', --universe NAME or --all-universes."

func canonLabel(canonical bool) string {
	if canonical {
		return "canon"
	}
	return "non-canon"
}

func displayPageLine(w io.Writer, p *entities.Page) {
	universe := p.Universe
	if universe == "" {
		universe = "-"
	}
	fmt.Fprintf(w, "%-18s %-30s %-10s %-16s %s\n", p.Kind, p.Name, canonLabel(p.Canonical), universe, p.Slug)
}

func displayPageTable(w io.Writer, pages []entities.Page) {
	fmt.Fprintf(w, "%-18s %-30s %-10s %-16s %s\n", "KIND", "NAME", "CANON", "UNIVERSE", "SLUG")
	fmt.Fprintf(w, "%-18s %-30s %-10s %-16s %s\n", "----", "----", "-----", "--------", "----")
	for i := range pages {
		displayPageLine(w, &pages[i])
	}
}

func displayPageDetail(w io.Writer, d *services.PageDetail) {
	p := &d.Page
	fmt.Fprintf(w, "%s (%s)\n", p.Name, p.Kind)
	fmt.Fprintf(w, "  ID:       %s\n", p.ID)
	if p.Slug != "" {
		fmt.Fprintf(w, "  Slug:     %s\n", p.Slug)
	}
	fmt.Fprintf(w, "  Canon:    %s\n", canonLabel(p.Canonical))
	if p.Universe != "" {
		fmt.Fprintf(w, "  Universe: %s\n", p.Universe)
	}
	if p.ImageURL != "" {
		fmt.Fprintf(w, "  Image:    %s\n", p.ImageURL)
	}

	for _, sec := range p.Sections {
		fmt.Fprintf(w, "\n## %s\n%s\n", sec.Title, sec.Content)
	}

	if len(d.Relations) > 0 {
		fmt.Fprintln(w, "\nRelations:")
		for _, rel := range d.Relations {
			if rel.Found() {
				fmt.Fprintf(w, "  - %s (%s)\n", rel.Label(), rel.Page.Kind)
			} else {
				fmt.Fprintf(w, "  - %s (not in view)\n", rel.Label())
			}
		}
	}

	if len(d.Inbound) > 0 {
		fmt.Fprintln(w, "\nReferenced by:")
		for _, in := range d.Inbound {
			fmt.Fprintf(w, "  - %s (%s)\n", in.Name, in.Kind)
		}
	}
}

// parseSection reads a "Title=Content" flag value.
func parseSection(s string) (entities.Section, error) {
	title, content, ok := strings.Cut(s, "=")
	if !ok {
		return entities.Section{}, fmt.Errorf("invalid section %q (expected TITLE=CONTENT)", s)
	}
	return entities.Section{Title: strings.TrimSpace(title), Content: content}, nil
}

func parseSections(values []string) ([]entities.Section, error) {
	sections := make([]entities.Section, 0, len(values))
	for _, v := range values {
		sec, err := parseSection(v)
		if err != nil {
			return nil, err
		}
		sections = append(sections, sec)
	}
	return sections, nil
}

func confirmAction(prompt string) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("%s [y/N]: ", prompt)
	response, _ := reader.ReadString('\n') // Error ignored: EOF/error treated as "no"
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

// promptLine reads one line from r after printing prompt.
func promptLine(r io.Reader, prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
