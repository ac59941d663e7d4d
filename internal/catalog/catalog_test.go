package catalog

import (
	"errors"
	"testing"

	"SignalDesk/internal/domain/models"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	want := map[string]int{"forex": 55, "crypto": 10, "stocks": 8, "commodities": 4}
	for cat, n := range want {
		if got := len(c.ListByCategory(cat)); got != n {
			t.Fatalf("category %s: expected %d assets, got %d", cat, n, got)
		}
	}
	if c.Len() != 77 {
		t.Fatalf("expected 77 assets, got %d", c.Len())
	}
	cats := c.Categories()
	if len(cats) != 4 || cats[0] != "forex" || cats[3] != "commodities" {
		t.Fatalf("unexpected categories %v", cats)
	}
	a, err := c.Resolve("eur_usd")
	if err != nil {
		t.Fatalf("resolve eur_usd: %v", err)
	}
	if a.Name != "EUR/USD" || a.Category != "forex" {
		t.Fatalf("unexpected asset %+v", a)
	}
}

func TestResolveNotFound(t *testing.T) {
	c, err := New(models.Asset{ID: "btc_usd", Name: "BTC/USD", Category: "crypto"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := c.Resolve("doge_usd"); !errors.Is(err, ErrAssetNotFound) {
		t.Fatalf("expected ErrAssetNotFound, got %v", err)
	}
}

func TestListByCategoryKeepsDeclarationOrder(t *testing.T) {
	c, err := New(
		models.Asset{ID: "b", Name: "B", Category: "x"},
		models.Asset{ID: "z", Name: "Z", Category: "y"},
		models.Asset{ID: "a", Name: "A", Category: "x"},
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	got := c.ListByCategory("x")
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("unexpected order %+v", got)
	}
	if len(c.ListByCategory("missing")) != 0 {
		t.Fatalf("expected empty list for unknown category")
	}
	// Mutating the returned slice must not leak into the catalog.
	got[0].Name = "changed"
	if a, _ := c.Resolve("b"); a.Name != "B" {
		t.Fatalf("catalog mutated through returned slice")
	}
}

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := New(
		models.Asset{ID: "a", Name: "A", Category: "x"},
		models.Asset{ID: "a", Name: "A2", Category: "x"},
	)
	if err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestParseInvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("assets: [")); err == nil {
		t.Fatalf("expected parse error")
	}
}
