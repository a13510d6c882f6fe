package inventory

import (
	"encoding/csv"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/vasii/catalog/internal/core/domain"
)

// Strategy selects how empty tokens are treated during extraction.
type Strategy int

const (
	// StrategyFixed keeps empty tokens so column positions stay stable.
	StrategyFixed Strategy = iota
	// StrategyFlexible drops empty tokens and relies on reverse lookup.
	StrategyFlexible
)

func (s Strategy) String() string {
	if s == StrategyFlexible {
		return "flexible"
	}
	return "fixed"
}

// MinFields is the least number of non-empty tokens a product row carries.
const MinFields = 3

// priceFloor keeps the reverse price scan away from the id and category.
const priceFloor = 2

var (
	urlPattern       = regexp.MustCompile(`https?://\S+`)
	thousandsPattern = regexp.MustCompile(`(?i)^\d{1,3}(?:[.,]\d{3})+(?:\s*COP)?$|^\d+\s*COP$`)
	digitGroup       = regexp.MustCompile(`^\d{3}$`)
)

// Fields is a split line with the positions of its image and price
// tokens. ImageIndex and PriceIndex are -1 when not found.
type Fields struct {
	Tokens     []string
	ImageURL   string
	ImageIndex int
	Price      int64
	PriceIndex int
}

// SplitLine splits a raw line on tab when it holds one, otherwise on comma.
// Double-quoted fields keep their delimiters. Tokens are trimmed and empty
// ones are kept.
func SplitLine(line string) []string {
	delim := ','
	if strings.ContainsRune(line, '\t') {
		delim = '\t'
	}

	r := csv.NewReader(strings.NewReader(line))
	r.Comma = delim
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	// Leading-space trimming would also swallow empty tab columns.
	r.TrimLeadingSpace = delim == ','

	tokens, err := r.Read()
	if err != nil {
		tokens = strings.Split(line, string(delim))
	}
	for i := range tokens {
		tokens[i] = strings.TrimSpace(tokens[i])
	}
	if delim == ',' {
		tokens = rejoinAmounts(tokens)
	}
	return tokens
}

// rejoinAmounts undoes an unquoted "$ 83,000" being split into "$ 83" and
// "000": three-digit groups following a currency token are glued back.
func rejoinAmounts(tokens []string) []string {
	out := tokens[:0]
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if strings.Contains(tok, "$") && endsWithDigit(tok) {
			for i+1 < len(tokens) && digitGroup.MatchString(tokens[i+1]) {
				tok += "," + tokens[i+1]
				i++
			}
		}
		out = append(out, tok)
	}
	return out
}

func endsWithDigit(s string) bool {
	return s != "" && s[len(s)-1] >= '0' && s[len(s)-1] <= '9'
}

// ExtractFields splits line and locates its image URL and price.
func ExtractFields(line string, strategy Strategy) (Fields, bool) {
	return extract(SplitLine(line), strategy)
}

func extract(tokens []string, strategy Strategy) (Fields, bool) {
	nonEmpty := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok != "" {
			nonEmpty = append(nonEmpty, tok)
		}
	}
	if len(nonEmpty) < MinFields {
		return Fields{}, false
	}
	if strategy == StrategyFlexible {
		tokens = nonEmpty
	}

	f := Fields{
		Tokens:     tokens,
		ImageURL:   domain.PlaceholderImage,
		ImageIndex: -1,
		PriceIndex: -1,
	}
	f.ImageIndex, f.ImageURL = findImage(tokens)
	f.PriceIndex = findPrice(tokens, f.ImageIndex)
	if f.PriceIndex >= 0 {
		f.Price = NormalizePrice(tokens[f.PriceIndex])
	}
	return f, true
}

// findImage returns the last token holding a URL. A malformed URL keeps its
// index but resolves to the placeholder.
func findImage(tokens []string) (int, string) {
	for i := len(tokens) - 1; i >= 0; i-- {
		raw, ok := imageCandidate(tokens[i])
		if !ok {
			continue
		}
		if valid := validateImageURL(raw); valid != "" {
			return i, valid
		}
		return i, domain.PlaceholderImage
	}
	return -1, domain.PlaceholderImage
}

func imageCandidate(token string) (string, bool) {
	if strings.Contains(strings.ToLower(token), "<img") {
		if src := imgSrc(token); src != "" {
			return src, true
		}
	}
	m := urlPattern.FindString(token)
	if m == "" {
		return "", false
	}
	// =IMAGE("https://...") and similar wrappers leave quoting behind.
	return strings.TrimRight(m, `"')>;,`), true
}

func imgSrc(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data != "img" {
				continue
			}
			for _, attr := range tok.Attr {
				if attr.Key == "src" {
					return strings.TrimSpace(attr.Val)
				}
			}
		}
	}
}

func validateImageURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	if u.Host == "" {
		return ""
	}
	return u.String()
}

func looksLikePrice(token string) bool {
	if strings.Contains(token, "$") {
		return true
	}
	return thousandsPattern.MatchString(token)
}

// findPrice scans backward from just before the image (or from the end) for
// a currency-looking token. Without a match the token right before the image
// is taken best-effort.
func findPrice(tokens []string, imageIndex int) int {
	start := len(tokens) - 1
	if imageIndex >= 0 {
		start = imageIndex - 1
	}
	for i := start; i >= priceFloor; i-- {
		if looksLikePrice(tokens[i]) {
			return i
		}
	}
	if imageIndex-1 >= priceFloor {
		return imageIndex - 1
	}
	return -1
}
