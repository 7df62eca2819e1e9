// ABOUTME: Read-only alias catalog for fast manual nutrition logging.
// ABOUTME: Constructed once at startup and injected; no global state.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Item is a fixed nutrition profile addressable by a short alias.
// Macro fields are per unit (one drink, one tablet).
type Item struct {
	Alias    string             `json:"alias"`
	Label    string             `json:"label"`
	Kcal     *float64           `json:"kcal,omitempty"`
	ProteinG *float64           `json:"protein_g,omitempty"`
	FatG     *float64           `json:"fat_g,omitempty"`
	CarbsG   *float64           `json:"carbs_g,omitempty"`
	Micros   map[string]float64 `json:"micros,omitempty"`
	Unit     *string            `json:"unit,omitempty"`
}

// Catalog is an immutable alias lookup.
type Catalog struct {
	items map[string]Item
}

// New builds a catalog from a list of items. Later duplicates win.
func New(items []Item) *Catalog {
	m := make(map[string]Item, len(items))
	for _, it := range items {
		m[it.Alias] = it
	}
	return &Catalog{items: m}
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return New(defaultItems())
}

// LoadFile reads a JSON array of items and merges it over the built-ins, so
// a user file can add aliases or override a built-in profile.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(append(defaultItems(), items...)), nil
}

// Lookup returns the item for an alias.
func (c *Catalog) Lookup(alias string) (Item, bool) {
	it, ok := c.items[alias]
	return it, ok
}

// Aliases returns the known aliases, sorted.
func (c *Catalog) Aliases() []string {
	out := make([]string, 0, len(c.items))
	for a := range c.items {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

func f(v float64) *float64 { return &v }
func s(v string) *string   { return &v }

func defaultItems() []Item {
	return []Item{
		{
			Alias:    "protein",
			Label:    "Milk protein drink, fat free, caramel, 200ml",
			Kcal:     f(107),
			ProteinG: f(20),
			FatG:     f(0),
			CarbsG:   f(6.8),
			Unit:     s("bottle"),
		},
		{
			Alias:    "vitamin_d",
			Label:    "Vitamin D3 2000 IU softgel",
			Kcal:     f(0),
			ProteinG: f(0),
			FatG:     f(0),
			CarbsG:   f(0),
			Micros: map[string]float64{
				"vitamin_d3_iu":  2000,
				"vitamin_d3_mcg": 50,
			},
			Unit: s("tablet"),
		},
		{
			Alias:    "multivitamin",
			Label:    "Super multivitamin and mineral",
			Kcal:     f(3.36),
			ProteinG: f(0.1),
			FatG:     f(0.1),
			CarbsG:   f(0.656),
			Micros: map[string]float64{
				"calcium_mg":            200,
				"magnesium_mg":          100,
				"zinc_mg":               6,
				"copper_mg":             0.6,
				"selenium_mcg":          50,
				"chromium_mcg":          20,
				"vitamin_a_mcg":         1200,
				"vitamin_b1_mg":         1.5,
				"vitamin_b2_mg":         1.7,
				"vitamin_b6_mg":         2.0,
				"vitamin_b12_mcg":       3.0,
				"niacin_mg":             15,
				"pantothenic_acid_mg":   6,
				"biotin_mcg":            50,
				"folate_mcg":            240,
				"vitamin_c_mg":          125,
				"vitamin_d_mcg":         10,
				"vitamin_e_mg":          9,
				"salt_equivalent_g_max": 0.01,
			},
			Unit: s("tablet"),
		},
		{
			Alias:    "fish_oil",
			Label:    "Super fish oil",
			Kcal:     f(8.34),
			ProteinG: f(0.222),
			FatG:     f(0.791),
			CarbsG:   f(0.1),
			Micros: map[string]float64{
				"epa_mg":                190,
				"dha_mg":                80,
				"omega3_mg":             270,
				"salt_equivalent_g_max": 0.01,
			},
			Unit: s("capsule"),
		},
	}
}
