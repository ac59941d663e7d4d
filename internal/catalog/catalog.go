package catalog

import (
	_ "embed"
	"errors"
	"fmt"

	"SignalDesk/internal/domain/models"

	"gopkg.in/yaml.v3"
)

// ErrAssetNotFound is returned by Resolve for an unknown asset id.
var ErrAssetNotFound = errors.New("asset not found")

//go:embed assets.yaml
var defaultAssets []byte

// Catalog is an immutable registry of tradable assets.
type Catalog struct {
	assets     []models.Asset
	byID       map[string]int
	byCategory map[string][]int
	categories []string
}

// New builds a catalog from assets in declaration order.
func New(assets ...models.Asset) (*Catalog, error) {
	c := &Catalog{
		assets:     make([]models.Asset, 0, len(assets)),
		byID:       make(map[string]int, len(assets)),
		byCategory: make(map[string][]int),
	}
	for _, a := range assets {
		if a.ID == "" {
			return nil, fmt.Errorf("asset with empty id (name=%q)", a.Name)
		}
		if a.Category == "" {
			return nil, fmt.Errorf("asset %s: empty category", a.ID)
		}
		if _, dup := c.byID[a.ID]; dup {
			return nil, fmt.Errorf("duplicate asset id %s", a.ID)
		}
		idx := len(c.assets)
		c.assets = append(c.assets, a)
		c.byID[a.ID] = idx
		if _, seen := c.byCategory[a.Category]; !seen {
			c.categories = append(c.categories, a.Category)
		}
		c.byCategory[a.Category] = append(c.byCategory[a.Category], idx)
	}
	return c, nil
}

type catalogFile struct {
	Assets []models.Asset `yaml:"assets"`
}

// Parse builds a catalog from YAML of the form `assets: [{id, name, category}, ...]`.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(f.Assets...)
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(defaultAssets)
}

// Resolve looks up an asset by id.
func (c *Catalog) Resolve(id string) (models.Asset, error) {
	idx, ok := c.byID[id]
	if !ok {
		return models.Asset{}, fmt.Errorf("%w: %s", ErrAssetNotFound, id)
	}
	return c.assets[idx], nil
}

// ListByCategory returns the assets of a category in declaration order.
func (c *Catalog) ListByCategory(category string) []models.Asset {
	idxs := c.byCategory[category]
	out := make([]models.Asset, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, c.assets[i])
	}
	return out
}

// Categories returns category labels in order of first appearance.
func (c *Catalog) Categories() []string {
	return append([]string(nil), c.categories...)
}

// All returns every asset in declaration order.
func (c *Catalog) All() []models.Asset {
	return append([]models.Asset(nil), c.assets...)
}

// Len returns the number of assets.
func (c *Catalog) Len() int { return len(c.assets) }
