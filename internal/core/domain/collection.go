package domain

import (
	"fmt"
	"strings"
)

// Collection identifies one of the five merchandising buckets, or the
// inbox sentinel for records that have not been classified yet.
type Collection string

const (
	CollectionGlamourFiesta Collection = "glamour-fiesta"
	CollectionWorkCasual    Collection = "work-casual"
	CollectionCurvyEdition  Collection = "curvy-edition"
	CollectionWinter        Collection = "winter"
	CollectionElBazar       Collection = "el-bazar"

	CollectionInbox Collection = "inbox"
)

var collections = []Collection{
	CollectionGlamourFiesta,
	CollectionWorkCasual,
	CollectionCurvyEdition,
	CollectionWinter,
	CollectionElBazar,
}

// Collections returns the five classifiable collections in display order.
func Collections() []Collection {
	out := make([]Collection, len(collections))
	copy(out, collections)
	return out
}

// Valid reports whether c is one of the five real collections. The inbox
// sentinel is not valid.
func (c Collection) Valid() bool {
	for _, known := range collections {
		if c == known {
			return true
		}
	}
	return false
}

func ParseCollection(raw string) (Collection, error) {
	c := Collection(strings.ToLower(strings.TrimSpace(raw)))
	if c == CollectionInbox || c.Valid() {
		return c, nil
	}
	return "", WrapError(ErrInvalidInput, "parse collection", fmt.Errorf("unknown collection %q", raw))
}
