package collection

import (
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vasii/catalog/internal/core/domain"
)

//go:embed collections.yaml
var defaultCatalogYAML []byte

// Info is the display metadata of a collection.
type Info struct {
	ID              domain.Collection `yaml:"id" json:"id"`
	Name            string            `yaml:"name" json:"name"`
	Description     string            `yaml:"description" json:"description"`
	ContactLink     string            `yaml:"contact_link" json:"contact_link"`
	Icon            string            `yaml:"icon" json:"icon"`
	Color           string            `yaml:"color" json:"color"`
	MessageTemplate string            `yaml:"message_template" json:"message_template"`
}

type catalogFile struct {
	Collections []Info `yaml:"collections"`
}

// Catalog holds metadata for exactly the five collections, in file order.
type Catalog struct {
	items []Info
	byID  map[domain.Collection]Info
}

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalogYAML)
}

// LoadCatalog reads a catalog file. An empty path yields the embedded one.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read collection catalog: %w", err)
	}
	return ParseCatalog(raw)
}

func ParseCatalog(raw []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse collection catalog", err)
	}
	if err := validateCatalog(file.Collections); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "validate collection catalog", err)
	}

	c := &Catalog{
		items: file.Collections,
		byID:  make(map[domain.Collection]Info, len(file.Collections)),
	}
	for _, info := range file.Collections {
		c.byID[info.ID] = info
	}
	return c, nil
}

func validateCatalog(items []Info) error {
	want := domain.Collections()
	if len(items) != len(want) {
		return fmt.Errorf("expected %d collections, got %d", len(want), len(items))
	}
	seen := make(map[domain.Collection]bool, len(items))
	for _, info := range items {
		if !info.ID.Valid() {
			return fmt.Errorf("unknown collection %q", info.ID)
		}
		if seen[info.ID] {
			return fmt.Errorf("duplicate collection %q", info.ID)
		}
		seen[info.ID] = true
		if info.Name == "" {
			return fmt.Errorf("collection %q: name is required", info.ID)
		}
		if info.ContactLink == "" {
			return fmt.Errorf("collection %q: contact_link is required", info.ID)
		}
		if u, err := url.Parse(info.ContactLink); err != nil || u.Scheme != "https" {
			return errors.New("collection " + string(info.ID) + ": contact_link must be an https url")
		}
	}
	return nil
}

// All returns the collections in catalog order.
func (c *Catalog) All() []Info {
	out := make([]Info, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Catalog) Get(id domain.Collection) (Info, error) {
	info, ok := c.byID[id]
	if !ok {
		return Info{}, domain.WrapError(domain.ErrInvalidInput, "get collection", fmt.Errorf("unknown collection %q", id))
	}
	return info, nil
}
