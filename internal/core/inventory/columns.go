package inventory

import (
	"regexp"
	"strings"

	"github.com/vasii/catalog/internal/core/domain"
)

// Group is the coarse category grouping that decides how columns map.
type Group int

const (
	GroupWomen Group = iota
	GroupMen
	GroupKidsTeen
	GroupBabyMaternity
)

func (g Group) String() string {
	switch g {
	case GroupMen:
		return "MEN"
	case GroupKidsTeen:
		return "KIDS_TEEN"
	case GroupBabyMaternity:
		return "BABY_MATERNITY"
	default:
		return "WOMEN"
	}
}

// Strategy returns the extraction strategy for rows of this group. Women
// rows have a stable layout; the other groups shift columns.
func (g Group) Strategy() Strategy {
	if g == GroupWomen {
		return StrategyFixed
	}
	return StrategyFlexible
}

var (
	babyKeywords = []string{"baby", "maternity", "bebe", "bebé", "maternidad"}
	kidsKeywords = []string{"kid", "teen", "tenis", "niño", "niña"}
	menKeywords  = []string{"men", "hombre"}
)

// GroupOf detects the group of a category by case-insensitive substring
// match. Anything unrecognised is treated as women.
func GroupOf(category string) Group {
	lower := strings.ToLower(category)
	switch {
	case containsAny(lower, babyKeywords):
		return GroupBabyMaternity
	case containsAny(lower, kidsKeywords):
		return GroupKidsTeen
	case containsAny(strings.ReplaceAll(lower, "women", ""), menKeywords):
		return GroupMen
	default:
		return GroupWomen
	}
}

var (
	sizePattern    = regexp.MustCompile(`(?i)^(XXS|XS|S|M|L|XL|XXL|XXXL|[1-6]XL|\d+Y|\d+-\d+Y|\d+M|\d+-\d+M)$`)
	fabricKeywords = []string{
		"cotton", "polyester", "viscose", "spandex", "elastane", "rayon", "nylon", "linen",
		"wool", "silk", "denim", "acrylic", "modal", "lyocell", "polyamide",
		"algodon", "algodón", "poliester", "poliéster", "viscosa", "lino", "lana", "seda",
	}
)

// Columns holds the category-dependent fields of a row.
type Columns struct {
	Subcategory string
	Size        string
	Fabric      string
}

// MapColumns resolves subcategory, size and fabric. Women rows are read by
// position; the other groups are content-sniffed between index 2 and the
// price/image boundary.
func MapColumns(tokens []string, category string, priceIndex, imageIndex int) Columns {
	boundary := len(tokens)
	switch {
	case priceIndex >= 0:
		boundary = priceIndex
	case imageIndex >= 0:
		boundary = imageIndex
	}
	at := func(i int) string {
		if i < boundary && i < len(tokens) {
			return tokens[i]
		}
		return ""
	}

	var cols Columns
	if GroupOf(category) == GroupWomen {
		cols = Columns{Subcategory: at(2), Size: at(3), Fabric: at(4)}
	} else {
		cols = sniffColumns(tokens, boundary)
		cols.Subcategory = at(2)
	}

	if cols.Subcategory == "" {
		cols.Subcategory = category
	}
	if cols.Size == "" {
		cols.Size = domain.DefaultSize
	}
	if cols.Fabric == "" {
		cols.Fabric = domain.DefaultFabric
	}
	return cols
}

func sniffColumns(tokens []string, boundary int) Columns {
	var cols Columns
	var fabrics, rest []string
	for i := 3; i < boundary && i < len(tokens); i++ {
		tok := tokens[i]
		switch {
		case tok == "":
		case cols.Size == "" && sizePattern.MatchString(tok):
			cols.Size = tok
		case isFabric(tok):
			fabrics = append(fabrics, tok)
		default:
			rest = append(rest, tok)
		}
	}
	if len(fabrics) > 0 {
		cols.Fabric = strings.Join(fabrics, " ")
	} else {
		cols.Fabric = strings.Join(rest, " ")
	}
	return cols
}

func isFabric(token string) bool {
	if strings.Contains(token, "%") {
		return true
	}
	return containsAny(strings.ToLower(token), fabricKeywords)
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
