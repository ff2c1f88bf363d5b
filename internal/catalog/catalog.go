// Package catalog holds the static indicator tables for each data source.
// A catalog maps category names to indicator entries and answers reverse
// lookups (code to description, code to category). Catalogs are built once at
// init and never mutated.
package catalog

// Source names as they appear in storage paths, settings, and the API.
const (
	SourceFRED = "FRED"
	SourceECOS = "ECOS"
	SourceBLS  = "BLS"
)

// OtherCategory is the fallback category for codes a catalog does not list.
const OtherCategory = "Other"

// Cadence values describe the native publication frequency of an indicator.
// They are informational; collection and analysis treat every series as an
// ordered sequence of dated observations.
const (
	CadenceDaily     = "daily"
	CadenceWeekly    = "weekly"
	CadenceMonthly   = "monthly"
	CadenceQuarterly = "quarterly"
)

// Entry describes one indicator within a source.
type Entry struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Cadence string `json:"cadence,omitempty"`
}

// Category is a named, ordered group of entries.
type Category struct {
	Name    string  `json:"name"`
	Entries []Entry `json:"entries"`
}

// Catalog is the full indicator table for one source.
type Catalog struct {
	source     string
	categories []Category
	byCode     map[string]Entry
	codeToCat  map[string]string
}

// New builds a catalog from ordered categories. Later duplicates of a code
// win, matching how the source tables were historically merged.
func New(source string, categories []Category) *Catalog {
	c := &Catalog{
		source:     source,
		categories: categories,
		byCode:     make(map[string]Entry),
		codeToCat:  make(map[string]string),
	}
	for _, cat := range categories {
		for _, e := range cat.Entries {
			c.byCode[e.Code] = e
			c.codeToCat[e.Code] = cat.Name
		}
	}
	return c
}

// Source returns the source name the catalog belongs to.
func (c *Catalog) Source() string { return c.source }

// Categories returns category names in declaration order.
func (c *Catalog) Categories() []string {
	names := make([]string, len(c.categories))
	for i, cat := range c.categories {
		names[i] = cat.Name
	}
	return names
}

// Entries returns the entries of one category in declaration order, or nil
// for an unknown category.
func (c *Catalog) Entries(category string) []Entry {
	for _, cat := range c.categories {
		if cat.Name == category {
			return cat.Entries
		}
	}
	return nil
}

// Codes returns the indicator codes of one category in declaration order.
func (c *Catalog) Codes(category string) []string {
	entries := c.Entries(category)
	codes := make([]string, len(entries))
	for i, e := range entries {
		codes[i] = e.Code
	}
	return codes
}

// All returns every entry across categories in declaration order.
func (c *Catalog) All() []Entry {
	var all []Entry
	for _, cat := range c.categories {
		all = append(all, cat.Entries...)
	}
	return all
}

// Len returns the number of distinct codes in the catalog.
func (c *Catalog) Len() int { return len(c.byCode) }

// Lookup returns the entry for a code.
func (c *Catalog) Lookup(code string) (Entry, bool) {
	e, ok := c.byCode[code]
	return e, ok
}

// DescriptionFor returns the display name for a code, falling back to the
// code itself for indicators the catalog does not know.
func (c *Catalog) DescriptionFor(code string) string {
	if e, ok := c.byCode[code]; ok {
		return e.Name
	}
	return code
}

// CategoryFor returns the category a code belongs to, or OtherCategory when
// the catalog does not list it.
func (c *Catalog) CategoryFor(code string) string {
	if cat, ok := c.codeToCat[code]; ok {
		return cat
	}
	return OtherCategory
}

var registry = map[string]*Catalog{
	SourceFRED: FRED,
	SourceECOS: ECOS,
	SourceBLS:  BLS,
}

// Sources lists the supported source names in collection order.
func Sources() []string {
	return []string{SourceFRED, SourceECOS, SourceBLS}
}

// ForSource returns the catalog for a source name.
func ForSource(source string) (*Catalog, bool) {
	c, ok := registry[source]
	return c, ok
}
