// Package pricing holds the contractor's rate tables: pricing tiers,
// hardwood species and the sales tax rate. A Catalog is resolved into an
// estimation.PricingConfig by the caller before pricing an estimate.
package pricing

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"flooring-cost/decision/estimation"
	fcerrors "flooring-cost/pkg/errors"
	"flooring-cost/pkg/money"
)

// DefaultTaxRate applies when a catalog file does not set one.
const DefaultTaxRate = 0.08

// Tier is a named package of per-sqft rates.
type Tier struct {
	Name          string  `json:"name" yaml:"-"`
	MaterialPrice float64 `json:"material_price" yaml:"material_price"`
	InstallRate   float64 `json:"install_rate" yaml:"install_rate"`
}

// Species scales a tier's material price for a hardwood species.
type Species struct {
	Name       string  `json:"name" yaml:"-"`
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
}

// Catalog is the full set of rate tables. Keys are lower case.
type Catalog struct {
	TaxRate float64            `json:"tax_rate" yaml:"tax_rate"`
	Tiers   map[string]Tier    `json:"tiers" yaml:"tiers"`
	Species map[string]Species `json:"species" yaml:"species"`
	Grades  []string           `json:"grades" yaml:"grades"`
}

// DefaultCatalog returns the built-in rate tables.
func DefaultCatalog() *Catalog {
	c := &Catalog{
		TaxRate: DefaultTaxRate,
		Tiers: map[string]Tier{
			"economy":  {MaterialPrice: 4.50, InstallRate: 3.00},
			"standard": {MaterialPrice: 6.50, InstallRate: 3.50},
			"premium":  {MaterialPrice: 9.00, InstallRate: 4.50},
		},
		Species: map[string]Species{
			"red oak":          {Multiplier: 1.00},
			"white oak":        {Multiplier: 1.15},
			"maple":            {Multiplier: 1.10},
			"hickory":          {Multiplier: 1.20},
			"walnut":           {Multiplier: 1.60},
			"brazilian cherry": {Multiplier: 1.45},
		},
		Grades: []string{"Select", "#1 Common", "#2 Common", "Character"},
	}
	c.normalize()
	return c
}

// LoadCatalog reads a YAML catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// catalogFile is the on-disk shape. TaxRate is a pointer so an explicit 0
// (tax-exempt) is kept apart from an absent rate.
type catalogFile struct {
	TaxRate *float64           `yaml:"tax_rate"`
	Tiers   map[string]Tier    `yaml:"tiers"`
	Species map[string]Species `yaml:"species"`
	Grades  []string           `yaml:"grades"`
}

// ParseCatalog decodes and validates a YAML catalog. A missing tax_rate
// falls back to DefaultTaxRate.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fcerrors.NewInvalidCatalogError("malformed catalog: %v", err)
	}

	c := Catalog{
		TaxRate: DefaultTaxRate,
		Tiers:   f.Tiers,
		Species: f.Species,
		Grades:  f.Grades,
	}
	if f.TaxRate != nil {
		c.TaxRate = *f.TaxRate
	}
	c.normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects catalogs that would price nonsense.
func (c *Catalog) Validate() error {
	if len(c.Tiers) == 0 {
		return fcerrors.NewInvalidCatalogError("catalog has no pricing tiers")
	}
	if c.TaxRate < 0 || c.TaxRate >= 1 {
		return fcerrors.NewInvalidCatalogError("tax rate %.4f out of range [0, 1)", c.TaxRate)
	}
	for _, name := range c.TierNames() {
		t := c.Tiers[name]
		if t.MaterialPrice < 0 || t.InstallRate < 0 {
			return fcerrors.NewInvalidCatalogError("tier %q has a negative rate", name)
		}
	}
	for _, name := range c.SpeciesNames() {
		if c.Species[name].Multiplier <= 0 {
			return fcerrors.NewInvalidCatalogError("species %q needs a positive multiplier", name)
		}
	}
	return nil
}

// Resolve builds the pricing configuration for a tier and species.
// An empty species leaves the tier's material price as is.
func (c *Catalog) Resolve(tier, species string) (estimation.PricingConfig, error) {
	t, ok := c.Tiers[key(tier)]
	if !ok {
		return estimation.PricingConfig{}, fcerrors.NewUnknownTierError(tier)
	}

	multiplier := 1.0
	if key(species) != "" {
		s, ok := c.Species[key(species)]
		if !ok {
			return estimation.PricingConfig{}, fcerrors.NewUnknownSpeciesError(species)
		}
		multiplier = s.Multiplier
	}

	return estimation.PricingConfig{
		MaterialPrice: money.Round2(t.MaterialPrice * multiplier),
		InstallRate:   t.InstallRate,
		TaxRate:       c.TaxRate,
	}, nil
}

// ConfigFor returns the request's explicit config, or resolves its tier and
// species against the catalog.
func (c *Catalog) ConfigFor(req estimation.EstimateRequest) (estimation.PricingConfig, error) {
	if req.Config != nil {
		return *req.Config, nil
	}
	if key(req.Tier) == "" {
		return estimation.PricingConfig{}, fcerrors.NewInvalidRequestError("request needs either a pricing config or a tier")
	}
	return c.Resolve(req.Tier, req.Species)
}

// TierNames lists tier keys alphabetically.
func (c *Catalog) TierNames() []string {
	names := make([]string, 0, len(c.Tiers))
	for name := range c.Tiers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SpeciesNames lists species keys alphabetically.
func (c *Catalog) SpeciesNames() []string {
	names := make([]string, 0, len(c.Species))
	for name := range c.Species {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Catalog) normalize() {
	tiers := make(map[string]Tier, len(c.Tiers))
	for name, t := range c.Tiers {
		t.Name = key(name)
		tiers[t.Name] = t
	}
	c.Tiers = tiers

	species := make(map[string]Species, len(c.Species))
	for name, s := range c.Species {
		s.Name = key(name)
		species[s.Name] = s
	}
	c.Species = species
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
