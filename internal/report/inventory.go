package report

import (
	"regexp"
	"strings"

	"github.com/avermeer/migrep/internal/domain"
)

var inventoryHeadingRegex = regexp.MustCompile(`(?mi)^##[^#\n]*usage inventory.*$`)

// ParseInventory parses the markdown table enumerating files and the APIs
// they touch. The table is located loosely by its heading; rows with
// anything other than three cells are discarded along with the header and
// separator rows.
func ParseInventory(content string) []domain.InventoryRow {
	loc := inventoryHeadingRegex.FindStringIndex(content)
	if loc == nil {
		return nil
	}
	region := content[loc[1]:]
	if end := nextSectionRegex.FindStringIndex(region); end != nil {
		region = region[:end[0]]
	}

	var rows []domain.InventoryRow
	inTable := false
	for _, line := range strings.Split(region, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "|") && strings.Contains(line, "---"):
			inTable = true
		case strings.HasPrefix(line, "|") && inTable:
			cells := tableCells(line)
			if len(cells) == 3 {
				rows = append(rows, domain.InventoryRow{
					File:     cells[0],
					APIsUsed: cells[1],
					Summary:  cells[2],
				})
			}
		case inTable && line != "":
			// Table over.
			return rows
		}
	}
	return rows
}

func tableCells(line string) []string {
	parts := strings.Split(line, "|")
	// Drop the empty leading and trailing fields produced by the outer pipes.
	if len(parts) > 0 && strings.TrimSpace(parts[0]) == "" {
		parts = parts[1:]
	}
	if len(parts) > 0 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}
