package inventory

import (
	"strings"

	"github.com/vasii/catalog/internal/core/domain"
)

const byteOrderMark = "\ufeff"

// ParseInventory parses every line of text and keeps the products in input
// order. It never fails; lines that are not products are counted as skipped.
func ParseInventory(text string) domain.ParseReport {
	text = strings.TrimPrefix(text, byteOrderMark)
	lines := strings.Split(text, "\n")
	// A final newline terminates the last line; it does not open another.
	if n := len(lines); n > 1 && strings.TrimSuffix(lines[n-1], "\r") == "" {
		lines = lines[:n-1]
	}

	report := domain.ParseReport{
		Products:   make([]domain.Product, 0, len(lines)),
		TotalLines: len(lines),
	}
	for i, line := range lines {
		p, ok := ParseLine(strings.TrimSuffix(line, "\r"), i+1)
		if !ok {
			continue
		}
		report.Products = append(report.Products, p)
	}
	report.Parsed = len(report.Products)
	report.Skipped = report.TotalLines - report.Parsed
	report.DuplicateIDs = duplicateIDs(report.Products)
	return report
}

func duplicateIDs(products []domain.Product) []int64 {
	seen := make(map[int64]int, len(products))
	var dups []int64
	for _, p := range products {
		seen[p.ID]++
		if seen[p.ID] == 2 {
			dups = append(dups, p.ID)
		}
	}
	return dups
}
