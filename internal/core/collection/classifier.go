package collection

import (
	"strings"

	"github.com/vasii/catalog/internal/core/domain"
)

var (
	familyCategoryKeywords = []string{"baby", "bebé", "bebe", "maternity", "maternidad", "teen", "kid", "niño", "niña"}
	menCategoryKeywords    = []string{"men", "hombre", "caballero"}
	sportKeywords          = []string{"sport", "deportiv"}
	partyKeywords          = []string{
		"dress", "vestido", "two-piece", "two piece", "dos piezas",
		"jumpsuit", "enterizo", "blazer", "cocktail", "coctel", "cóctel",
	}
	winterKeywords = []string{
		"coat", "jacket", "sweater", "cardigan", "outerwear",
		"abrigo", "chaqueta", "chamarra", "suéter", "sueter", "gabardina", "parka",
	}
	casualKeywords = []string{
		"blouse", "blusa", "jean", "t-shirt", "tshirt", "camiseta", "top", "blazer",
		"skirt", "falda", "pant", "pantalón", "pantalon", "short", "legging",
		"lingerie", "lencería", "lenceria", "bikini", "pajama", "pijama",
	}
	womenCategoryKeywords = []string{"women", "mujer", "dama"}
)

// Classify assigns a product to one of the five collections. Rules are
// evaluated in order and the first match wins; a plus-size dress must land
// in curvy-edition, never glamour-fiesta. The result is never inbox.
func Classify(category, subcategory, signal string) domain.Collection {
	cat := strings.ToLower(category)
	sub := strings.ToLower(subcategory)
	sig := strings.ToLower(signal)

	if strings.Contains(cat, "tenis") || strings.Contains(sub, "tenis") || strings.Contains(sig, "tenis") {
		return domain.CollectionElBazar
	}

	if isFamilyCategory(cat) || matchesAny(sub, sig, sportKeywords) {
		return domain.CollectionElBazar
	}

	isPlus := domain.IsPlusSize(subcategory, signal, category)

	if matchesAny(sub, sig, partyKeywords) {
		if isPlus {
			return domain.CollectionCurvyEdition
		}
		return domain.CollectionGlamourFiesta
	}

	if isPlus {
		return domain.CollectionCurvyEdition
	}

	if matchesAny(sub, sig, winterKeywords) {
		return domain.CollectionWinter
	}

	if matchesAny(sub, sig, casualKeywords) {
		return domain.CollectionWorkCasual
	}

	if containsAny(cat, womenCategoryKeywords) {
		return domain.CollectionWorkCasual
	}

	return domain.CollectionElBazar
}

// isFamilyCategory matches men (but not women), baby, maternity, teens and
// kids categories.
func isFamilyCategory(category string) bool {
	if containsAny(category, familyCategoryKeywords) {
		return true
	}
	return containsAny(strings.ReplaceAll(category, "women", ""), menCategoryKeywords)
}

func matchesAny(subcategory, signal string, keywords []string) bool {
	return containsAny(subcategory, keywords) || containsAny(signal, keywords)
}

func containsAny(s string, keywords []string) bool {
	if s == "" {
		return false
	}
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// RuleClassifier exposes Classify through ports.CollectionClassifier.
type RuleClassifier struct{}

func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{}
}

func (RuleClassifier) Classify(category, subcategory, signal string) domain.Collection {
	return Classify(category, subcategory, signal)
}
