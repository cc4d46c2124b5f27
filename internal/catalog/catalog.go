// Package catalog holds the static technical-keyword catalog used for
// extraction and categorization. The catalog is embedded at compile time
// and is read-only once loaded.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed catalog.json
var embedded []byte

// Category identifies a keyword group.
type Category string

// Keyword is a single catalog entry.
type Keyword struct {
	Canonical string   `json:"canonical"`
	Category  Category `json:"category"`
	Display   string   `json:"display,omitempty"`
	Aliases   []string `json:"aliases,omitempty"`
}

// CategoryInfo describes one category and its members in declared order.
type CategoryInfo struct {
	Name       Category `json:"name"`
	Label      string   `json:"label"`
	Canonicals []string `json:"canonicals"`
}

// Catalog is an immutable keyword catalog.
type Catalog struct {
	categories  []CategoryInfo
	keywords    []Keyword
	byCanonical map[string]Keyword
	byAlias     map[string]string
}

type fileFormat struct {
	Version    int `json:"version"`
	Categories []struct {
		Name     Category `json:"name"`
		Label    string   `json:"label"`
		Keywords []struct {
			Canonical string   `json:"canonical"`
			Display   string   `json:"display"`
			Aliases   []string `json:"aliases"`
		} `json:"keywords"`
	} `json:"categories"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the embedded catalog, loading it on first use.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(embedded)
	})
	return defaultCatalog, defaultErr
}

// MustDefault returns the embedded catalog, panicking if it is malformed.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(fmt.Sprintf("failed to load keyword catalog: %v", err))
	}
	return c
}

// Parse builds a catalog from its JSON form. Canonicals are lowercased;
// a canonical or alias declared twice is an error.
func Parse(data []byte) (*Catalog, error) {
	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(f.Categories) == 0 {
		return nil, fmt.Errorf("catalog has no categories")
	}

	c := &Catalog{
		byCanonical: make(map[string]Keyword),
		byAlias:     make(map[string]string),
	}
	for _, cat := range f.Categories {
		if cat.Name == "" {
			return nil, fmt.Errorf("catalog category without a name")
		}
		info := CategoryInfo{Name: cat.Name, Label: cat.Label}
		for _, k := range cat.Keywords {
			canonical := strings.ToLower(strings.TrimSpace(k.Canonical))
			if canonical == "" {
				return nil, fmt.Errorf("empty canonical in category %s", cat.Name)
			}
			if prev, dup := c.byCanonical[canonical]; dup {
				return nil, fmt.Errorf("keyword %q declared in both %s and %s", canonical, prev.Category, cat.Name)
			}
			kw := Keyword{
				Canonical: canonical,
				Category:  cat.Name,
				Display:   k.Display,
			}
			for _, a := range k.Aliases {
				alias := strings.ToLower(strings.TrimSpace(a))
				if alias == "" {
					continue
				}
				if owner, dup := c.byAlias[alias]; dup {
					return nil, fmt.Errorf("alias %q declared for both %s and %s", alias, owner, canonical)
				}
				c.byAlias[alias] = canonical
				kw.Aliases = append(kw.Aliases, alias)
			}
			c.byCanonical[canonical] = kw
			c.keywords = append(c.keywords, kw)
			info.Canonicals = append(info.Canonicals, canonical)
		}
		c.categories = append(c.categories, info)
	}

	for alias, owner := range c.byAlias {
		if _, clash := c.byCanonical[alias]; clash {
			return nil, fmt.Errorf("alias %q of %s shadows a canonical keyword", alias, owner)
		}
	}
	return c, nil
}

// Lookup returns the keyword for a canonical form.
func (c *Catalog) Lookup(canonical string) (Keyword, bool) {
	kw, ok := c.byCanonical[strings.ToLower(canonical)]
	return kw, ok
}

// Contains reports whether term is a canonical keyword.
func (c *Catalog) Contains(term string) bool {
	_, ok := c.byCanonical[strings.ToLower(term)]
	return ok
}

// Resolve maps a term or one of its aliases to its canonical form.
func (c *Catalog) Resolve(term string) (string, bool) {
	t := strings.ToLower(term)
	if _, ok := c.byCanonical[t]; ok {
		return t, true
	}
	canonical, ok := c.byAlias[t]
	return canonical, ok
}

// Keywords returns every keyword in declared order. The slice must not be
// modified.
func (c *Catalog) Keywords() []Keyword {
	return c.keywords
}

// Categories returns category descriptions in declared order.
func (c *Catalog) Categories() []CategoryInfo {
	return c.categories
}

// Len returns the number of canonical keywords.
func (c *Catalog) Len() int {
	return len(c.keywords)
}

// DisplayName returns the preferred display spelling of a canonical,
// falling back to title case.
func (c *Catalog) DisplayName(canonical string) string {
	if kw, ok := c.Lookup(canonical); ok && kw.Display != "" {
		return kw.Display
	}
	return TitleCase(canonical)
}

// Categorize groups keywords (in any casing) by category, keeping input
// order within each group. Keywords outside the catalog are dropped.
// Every category is present in the result, possibly with an empty slice.
func (c *Catalog) Categorize(keywords []string) map[Category][]string {
	out := make(map[Category][]string, len(c.categories))
	for _, cat := range c.categories {
		out[cat.Name] = []string{}
	}
	for _, k := range keywords {
		canonical, ok := c.Resolve(k)
		if !ok {
			continue
		}
		kw := c.byCanonical[canonical]
		out[kw.Category] = append(out[kw.Category], k)
	}
	return out
}

// TitleCase upper-cases the first letter of every space-separated word.
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
