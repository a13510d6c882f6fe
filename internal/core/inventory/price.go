package inventory

import (
	"regexp"
	"strconv"
	"strings"
)

var priceNoise = regexp.MustCompile(`(?i)cop|[$€\s\x{00A0}]`)

var thousandsSeparators = strings.NewReplacer(".", "", ",", "")

// NormalizePrice turns a COP amount such as "$ 109,000" into 109000. Dots
// and commas are both thousands separators; anything unparseable is 0.
func NormalizePrice(raw string) int64 {
	cleaned := priceNoise.ReplaceAllString(raw, "")
	cleaned = thousandsSeparators.Replace(cleaned)
	if cleaned == "" {
		return 0
	}
	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// FormatPrice renders an amount the way the storefront shows it, e.g.
// "$ 109.000".
func FormatPrice(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)

	var sb strings.Builder
	sb.WriteString(sign + "$ ")
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	sb.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		sb.WriteByte('.')
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}
