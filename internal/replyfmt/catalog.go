// Package replyfmt renders every text the bot sends: static replies from an
// embedded catalog and the formatted API results.
package replyfmt

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed messages.yaml
var catalogYAML []byte

// Fields are the values a catalog entry is rendered with.
type Fields map[string]any

type Catalog struct {
	templates map[string]*template.Template
}

// ParseCatalog decodes a YAML mapping of key to text/template source.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var entries map[string]string
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("replyfmt: decode catalog: %w", err)
	}
	c := &Catalog{templates: make(map[string]*template.Template, len(entries))}
	for key, src := range entries {
		t, err := template.New(key).Option("missingkey=zero").Parse(src)
		if err != nil {
			return nil, fmt.Errorf("replyfmt: parse %q: %w", key, err)
		}
		c.templates[key] = t
	}
	return c, nil
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := ParseCatalog(catalogYAML)
	if err != nil {
		panic(err)
	}
	return c
})

// Default returns the embedded catalog.
func Default() *Catalog { return defaultCatalog() }

// Keys lists the catalog entries in sorted order.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.templates))
	for k := range c.templates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Render executes the entry for key. An unknown key or a template failure
// yields the key itself so a reply is always sent.
func (c *Catalog) Render(key string, f Fields) string {
	t, ok := c.templates[key]
	if !ok {
		return key
	}
	var b strings.Builder
	if err := t.Execute(&b, map[string]any(f)); err != nil {
		return key
	}
	return strings.TrimSpace(b.String())
}

// Text renders key from the embedded catalog.
func Text(key string, f Fields) string {
	return Default().Render(key, f)
}
