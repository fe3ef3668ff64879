package tier

import (
	_ "embed"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// TierInfo is the display metadata of a tier.
type TierInfo struct {
	Name  string `yaml:"name"`
	Label string `yaml:"label"`
	Price string `yaml:"price"`
}

// FeatureInfo describes a gated feature and the lowest tier that unlocks it.
type FeatureInfo struct {
	Key     string `yaml:"key"`
	Label   string `yaml:"label"`
	MinTier string `yaml:"minTier"`
}

// LimitInfo describes a numeric limit and its seed value per tier.
type LimitInfo struct {
	Key      string           `yaml:"key"`
	Label    string           `yaml:"label"`
	Defaults map[string]int64 `yaml:"defaults,omitempty"`
}

// Catalog is the human-readable metadata used by gating components to show upgrade hints.
type Catalog struct {
	Tiers    []TierInfo    `yaml:"tiers"`
	Features []FeatureInfo `yaml:"features"`
	Limits   []LimitInfo   `yaml:"limits"`
}

// DefaultCatalog returns the catalog compiled into the binary.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded tier catalog is invalid: %v", err))
	}
	return c
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse tier catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that tiers are unique and that every feature and limit refers to a known tier.
func (c *Catalog) Validate() error {
	if len(c.Tiers) == 0 {
		return fmt.Errorf("tier catalog defines no tiers")
	}
	seen := make(map[string]bool, len(c.Tiers))
	for _, t := range c.Tiers {
		if t.Name == "" {
			return fmt.Errorf("tier catalog contains a tier without a name")
		}
		if seen[t.Name] {
			return fmt.Errorf("tier %s is defined more than once", t.Name)
		}
		seen[t.Name] = true
	}
	for _, f := range c.Features {
		if !seen[f.MinTier] {
			return fmt.Errorf("feature %s: %w", f.Key, &UnknownTierError{Tier: f.MinTier})
		}
	}
	for _, l := range c.Limits {
		for t := range l.Defaults {
			if !seen[t] {
				return fmt.Errorf("limit %s: %w", l.Key, &UnknownTierError{Tier: t})
			}
		}
	}
	return nil
}

// Has reports whether name is a catalog tier.
func (c *Catalog) Has(name string) bool {
	return c.Rank(name) >= 0
}

// Rank returns the position of a tier from lowest (0) to highest, or -1 when unknown.
func (c *Catalog) Rank(name string) int {
	return slices.IndexFunc(c.Tiers, func(t TierInfo) bool { return t.Name == name })
}

// Name returns the display name of a tier, or the raw name when it is not in the catalog.
func (c *Catalog) Name(tier string) string {
	if i := c.Rank(tier); i >= 0 && c.Tiers[i].Label != "" {
		return c.Tiers[i].Label
	}
	return tier
}

// Price returns the display price of a tier, "" when unknown.
func (c *Catalog) Price(tier string) string {
	if i := c.Rank(tier); i >= 0 {
		return c.Tiers[i].Price
	}
	return ""
}

// MinTier returns the lowest tier that unlocks feature.
func (c *Catalog) MinTier(feature string) (string, bool) {
	for _, f := range c.Features {
		if f.Key == feature {
			return f.MinTier, true
		}
	}
	return "", false
}

// HasLimit reports whether key is a catalog limit.
func (c *Catalog) HasLimit(key string) bool {
	return slices.ContainsFunc(c.Limits, func(l LimitInfo) bool { return l.Key == key })
}

// FeatureLabel returns the display label of a feature, or the key itself.
func (c *Catalog) FeatureLabel(feature string) string {
	for _, f := range c.Features {
		if f.Key == feature && f.Label != "" {
			return f.Label
		}
	}
	return feature
}

// LimitLabel returns the display label of a limit, or the key itself.
func (c *Catalog) LimitLabel(key string) string {
	for _, l := range c.Limits {
		if l.Key == key && l.Label != "" {
			return l.Label
		}
	}
	return key
}

// DefaultFeatureRows expands the catalog into tier_features seed rows: a feature is enabled
// for its minimum tier and every tier above it.
func (c *Catalog) DefaultFeatureRows() []FeatureRow {
	rows := make([]FeatureRow, 0, len(c.Features)*len(c.Tiers))
	for _, f := range c.Features {
		minRank := c.Rank(f.MinTier)
		for i, t := range c.Tiers {
			rows = append(rows, FeatureRow{
				Tier:    t.Name,
				Feature: f.Key,
				Enabled: i >= minRank,
			})
		}
	}
	return rows
}

// DefaultLimitRows expands the catalog into tier_limits seed rows.
func (c *Catalog) DefaultLimitRows() []LimitRow {
	var rows []LimitRow
	for _, l := range c.Limits {
		for _, t := range c.Tiers {
			v, ok := l.Defaults[t.Name]
			if !ok {
				continue
			}
			rows = append(rows, LimitRow{Tier: t.Name, LimitKey: l.Key, LimitValue: v})
		}
	}
	return rows
}
