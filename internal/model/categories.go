package model

import (
	_ "embed"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var categoriesYAML []byte

// CategoryDefinition is one entry in the static category table.
type CategoryDefinition struct {
	Key         string   `yaml:"key" json:"key"`
	DisplayName string   `yaml:"display_name" json:"display_name"`
	Icon        string   `yaml:"icon" json:"icon"`
	HighValue   bool     `yaml:"high_value" json:"-"`
	MatchTags   []string `yaml:"match_tags" json:"-"`
}

// CategoryTable is the immutable category configuration. Build accessors
// return copies so callers cannot mutate the shared table.
type CategoryTable struct {
	defs      []CategoryDefinition
	byKey     map[string]CategoryDefinition
	byTag     map[string]string            // "amenity=cafe" -> "cafe"
	fallbacks map[string]map[string]string // tag key -> tag value -> category key
}

type categoriesFile struct {
	Categories []CategoryDefinition         `yaml:"categories"`
	Fallbacks  map[string]map[string]string `yaml:"fallbacks"`
}

var categoryTable = mustLoadCategories()

// Categories returns the process-wide category table.
func Categories() *CategoryTable { return categoryTable }

func mustLoadCategories() *CategoryTable {
	var f categoriesFile
	if err := yaml.Unmarshal(categoriesYAML, &f); err != nil {
		panic("model: parse embedded category table: " + err.Error())
	}

	t := &CategoryTable{
		defs:      f.Categories,
		byKey:     make(map[string]CategoryDefinition, len(f.Categories)),
		byTag:     make(map[string]string),
		fallbacks: f.Fallbacks,
	}
	for _, def := range f.Categories {
		t.byKey[def.Key] = def
		for _, tag := range def.MatchTags {
			t.byTag[tag] = def.Key
		}
	}
	return t
}

// All returns every category definition in table order.
func (t *CategoryTable) All() []CategoryDefinition {
	out := make([]CategoryDefinition, len(t.defs))
	copy(out, t.defs)
	return out
}

// Keys returns every category key in table order.
func (t *CategoryTable) Keys() []string {
	out := make([]string, 0, len(t.defs))
	for _, def := range t.defs {
		out = append(out, def.Key)
	}
	return out
}

// Lookup returns the definition for a category key.
func (t *CategoryTable) Lookup(key string) (CategoryDefinition, bool) {
	def, ok := t.byKey[key]
	return def, ok
}

// HighValue returns the categories included in the composite live query.
func (t *CategoryTable) HighValue() []CategoryDefinition {
	var out []CategoryDefinition
	for _, def := range t.defs {
		if def.HighValue {
			out = append(out, def)
		}
	}
	return out
}

// Classify maps a raw element's tags to a category key. Exact key=value
// matches against the table win; otherwise the amenity/shop/tourism fallback
// dictionaries are consulted. Returns false when no rule claims the element.
func (t *CategoryTable) Classify(tags map[string]string) (string, bool) {
	for k, v := range tags {
		if key, ok := t.byTag[k+"="+strings.ToLower(v)]; ok {
			return key, true
		}
	}
	for _, tagKey := range []string{"amenity", "shop", "tourism"} {
		v, ok := tags[tagKey]
		if !ok {
			continue
		}
		if key, ok := t.fallbacks[tagKey][strings.ToLower(v)]; ok {
			return key, true
		}
	}
	return "", false
}
