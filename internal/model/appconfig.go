package model

// DefaultMargin is the clearance in mm kept between placed pieces.
const DefaultMargin = 5.0

// DefaultHistoryDepth bounds the number of undo snapshots kept.
const DefaultHistoryDepth = 50

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Editor defaults
	DefaultMargin   float64 `json:"default_margin"`
	DefaultUnit     Unit    `json:"default_unit"`
	HistoryDepth    int     `json:"history_depth"`
	DefaultMaterial string  `json:"default_material"`

	// Catalog storage; empty means the built-in in-memory catalog
	CatalogDB string `json:"catalog_db"`

	Machining CutSettings `json:"machining"`

	RecentLayouts []string `json:"recent_layouts"`
	Theme         string   `json:"theme"` // "light", "dark", "system"
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		DefaultMargin: DefaultMargin,
		DefaultUnit:   UnitMM,
		HistoryDepth:  DefaultHistoryDepth,
		Machining:     DefaultSettings(),
		RecentLayouts: []string{},
		Theme:         "system",
	}
}

// Normalize replaces out-of-range values with their defaults.
func (c *AppConfig) Normalize() {
	if c.DefaultMargin < 0 {
		c.DefaultMargin = 0
	}
	if _, ok := ParseUnit(string(c.DefaultUnit)); !ok {
		c.DefaultUnit = UnitMM
	}
	if c.HistoryDepth <= 0 {
		c.HistoryDepth = DefaultHistoryDepth
	}
	if c.RecentLayouts == nil {
		c.RecentLayouts = []string{}
	}
	if c.Theme == "" {
		c.Theme = "system"
	}
}

// maxRecentLayouts bounds AppConfig.RecentLayouts.
const maxRecentLayouts = 10

// AddRecentLayout moves path to the front of the recent list.
func (c *AppConfig) AddRecentLayout(path string) {
	list := []string{path}
	for _, p := range c.RecentLayouts {
		if p != path {
			list = append(list, p)
		}
	}
	if len(list) > maxRecentLayouts {
		list = list[:maxRecentLayouts]
	}
	c.RecentLayouts = list
}
