// Package catalog holds the read-only listing inventory that shortlists are built from.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

//go:embed listings.json
var defaultInventory []byte

// Listing is a single property as published in the site's listings.json.
type Listing struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Type         string    `json:"type"`
	City         string    `json:"city"`
	Price        float64   `json:"price"`
	PriceDisplay string    `json:"priceDisplay,omitempty"`
	Address      string    `json:"address,omitempty"`
	Details      string    `json:"details,omitempty"`
	Cover        string    `json:"cover,omitempty"`
	WebP         string    `json:"webp,omitempty"`
	Gallery      []string  `json:"gallery,omitempty"`
	Badge        string    `json:"badge,omitempty"`
	Coords       []float64 `json:"coords,omitempty"`
}

// Catalog is an immutable id -> listing index. Safe for concurrent reads.
type Catalog struct {
	listings map[string]Listing
}

// New indexes the given listings by id. Entries without an id are skipped
// and a later entry replaces an earlier one with the same id.
func New(listings []Listing) *Catalog {
	index := make(map[string]Listing, len(listings))

	for _, l := range listings {
		id := strings.TrimSpace(l.ID)
		if id == "" {
			continue
		}

		l.ID = id
		index[id] = l
	}

	return &Catalog{listings: index}
}

// Load decodes a JSON array of listings.
func Load(r io.Reader) (*Catalog, error) {
	var listings []Listing
	if err := json.NewDecoder(r).Decode(&listings); err != nil {
		return nil, fmt.Errorf("decode listings: %w", err)
	}

	return New(listings), nil
}

// LoadFile reads the inventory from a JSON file on disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	defer f.Close()

	return Load(f)
}

// Default returns the inventory bundled with the binary.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultInventory))
}

// Has reports whether id is a known listing.
func (c *Catalog) Has(id string) bool {
	_, ok := c.listings[id]

	return ok
}

// Lookup returns the listing for id.
func (c *Catalog) Lookup(id string) (Listing, bool) {
	l, ok := c.listings[id]

	return l, ok
}

// Len returns the number of listings.
func (c *Catalog) Len() int {
	return len(c.listings)
}

// IDs returns all listing ids in lexical order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.listings))
	for id := range c.listings {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}
