package inventory

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"github.com/vasii/catalog/internal/core/domain"
)

const defaultCategory = "General"

var commentMarkers = []string{"**", "---", "="}

// parseRow does the work of ParseLine; tests swap it to reach the
// recovery path.
var parseRow = parseProductRow

// ParseLine turns one raw inventory line into an unclassified product.
// Headers, separators, blank lines and rows without a numeric id are
// rejected. A panic while parsing is logged and treated as a rejection.
func ParseLine(line string, lineNumber int) (p domain.Product, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("inventory_line_recovered",
				"line", lineNumber,
				"error", fmt.Sprint(r),
			)
			p, ok = domain.Product{}, false
		}
	}()
	return parseRow(line, lineNumber)
}

func parseProductRow(line string, lineNumber int) (domain.Product, bool) {
	trimmed := strings.TrimSpace(line)
	if !isProductRow(trimmed) {
		return domain.Product{}, false
	}

	tokens := SplitLine(trimmed)
	id, ok := parseID(tokens[0])
	if !ok {
		return domain.Product{}, false
	}

	category := defaultCategory
	if len(tokens) > 1 && tokens[1] != "" {
		category = tokens[1]
	}

	fields, ok := extract(tokens, GroupOf(category).Strategy())
	if !ok {
		return domain.Product{}, false
	}
	cols := MapColumns(fields.Tokens, category, fields.PriceIndex, fields.ImageIndex)

	return domain.Product{
		ID:          id,
		Code:        tokens[0],
		Category:    category,
		Subcategory: cols.Subcategory,
		Size:        cols.Size,
		Fabric:      cols.Fabric,
		Price:       fields.Price,
		ImageURL:    fields.ImageURL,
		Stock:       domain.DefaultStock,
		IsPlus:      domain.IsPlusSize(cols.Size, cols.Subcategory, category),
		Collection:  domain.CollectionInbox,
		Line:        lineNumber,
	}, true
}

func isProductRow(trimmed string) bool {
	if trimmed == "" {
		return false
	}
	for _, marker := range commentMarkers {
		if strings.HasPrefix(trimmed, marker) {
			return false
		}
	}
	first := []rune(trimmed)[0]
	return unicode.IsDigit(first)
}

// parseID accepts only an all-digit leading token.
func parseID(token string) (int64, bool) {
	if token == "" {
		return 0, false
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(token, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
