package styles

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultStyle is applied when a pack request names no style.
const DefaultStyle = "anime"

// Preset pairs a style name with the prompt fragment appended to generation prompts.
type Preset struct {
	Name   string `yaml:"name" json:"name"`
	Prompt string `yaml:"prompt" json:"prompt"`
}

// Registry holds the available style presets.
type Registry struct {
	presets map[string]Preset
}

func builtinPresets() []Preset {
	return []Preset{
		{Name: "anime", Prompt: "Anime style, cute, expressive"},
		{Name: "chibi", Prompt: "Chibi style, super-deformed proportions, playful"},
		{Name: "watercolor", Prompt: "Soft watercolor style, gentle pastel palette"},
		{Name: "pixel", Prompt: "Pixel art style, crisp 1-bit outlines, retro"},
	}
}

// NewRegistry returns a registry with the built-in presets.
func NewRegistry() *Registry {
	r := &Registry{presets: make(map[string]Preset)}
	for _, p := range builtinPresets() {
		r.presets[p.Name] = p
	}
	return r
}

// LoadRegistry returns the built-in presets merged with the YAML file at path,
// if given. File entries override built-ins with the same name.
func LoadRegistry(path string) (*Registry, error) {
	r := NewRegistry()
	if strings.TrimSpace(path) == "" {
		return r, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read style presets: %w", err)
	}

	var file struct {
		Presets []Preset `yaml:"presets"`
	}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse style presets: %w", err)
	}

	for _, p := range file.Presets {
		name := strings.ToLower(strings.TrimSpace(p.Name))
		prompt := strings.TrimSpace(p.Prompt)
		if name == "" || prompt == "" {
			return nil, fmt.Errorf("style preset entries need both name and prompt")
		}
		r.presets[name] = Preset{Name: name, Prompt: prompt}
	}
	return r, nil
}

// Get returns the preset for name. Empty name resolves to the default style.
func (r *Registry) Get(name string) (Preset, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DefaultStyle
	}
	p, ok := r.presets[key]
	return p, ok
}

// List returns all presets sorted by name.
func (r *Registry) List() []Preset {
	out := make([]Preset, 0, len(r.presets))
	for _, p := range r.presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
