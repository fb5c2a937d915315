package panels

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"gopkg.in/yaml.v3"
)

//go:embed layouts.yaml
var builtinLayouts []byte

// Layout declares the panels and modals of one page.
type Layout struct {
	Name         string   `yaml:"-" toml:"-"`
	DefaultPanel string   `yaml:"default_panel" toml:"default_panel"`
	Panels       []string `yaml:"panels" toml:"panels"`
	Modals       []string `yaml:"modals" toml:"modals"`
}

func (l Layout) HasPanel(id string) bool {
	return slices.Contains(l.Panels, id)
}

// Suggest returns the panels whose ids fuzzily contain query, closest first.
func (l Layout) Suggest(query string) []string {
	ranks := fuzzy.RankFindFold(query, l.Panels)
	sort.Sort(ranks)
	out := make([]string, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, r.Target)
	}
	return out
}

func (l Layout) Validate() error {
	if l.DefaultPanel == "" {
		return fmt.Errorf("layout %q: default_panel is required", l.Name)
	}
	if len(l.Panels) > 0 && !l.HasPanel(l.DefaultPanel) {
		return fmt.Errorf("layout %q: default_panel %q is not one of its panels", l.Name, l.DefaultPanel)
	}
	return nil
}

type Layouts map[string]Layout

// Get returns the named layout.
func (ls Layouts) Get(name string) (Layout, error) {
	l, ok := ls[name]
	if !ok {
		return Layout{}, fmt.Errorf("%w: %q", ErrUnknownLayout, name)
	}
	return l, nil
}

func ParseLayouts(data []byte) (Layouts, error) {
	var raw map[string]Layout
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse layouts: %w", err)
	}
	return validated(raw)
}

// ParseLayoutsTOML is ParseLayouts for the TOML form, one table per layout.
func ParseLayoutsTOML(data []byte) (Layouts, error) {
	var raw map[string]Layout
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse layouts: %w", err)
	}
	return validated(raw)
}

func validated(raw map[string]Layout) (Layouts, error) {
	out := make(Layouts, len(raw))
	for name, l := range raw {
		l.Name = name
		if err := l.Validate(); err != nil {
			return nil, err
		}
		out[name] = l
	}
	return out, nil
}

// LoadLayouts reads layouts from path, or the built-in set when path is empty.
// Files ending in .toml are read as TOML, anything else as YAML.
func LoadLayouts(path string) (Layouts, error) {
	if path == "" {
		return ParseLayouts(builtinLayouts)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return ParseLayoutsTOML(data)
	}
	return ParseLayouts(data)
}
