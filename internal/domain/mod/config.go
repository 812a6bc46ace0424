package mod

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DefaultEntry is used when neither the manifest nor mod.json names an entry point.
const DefaultEntry = "./index.js"

// DependencyMap keeps dependency constraints in declared order.
type DependencyMap = orderedmap.OrderedMap[string, string]

// NewDependencyMap returns an empty ordered dependency map.
func NewDependencyMap() *DependencyMap {
	return orderedmap.New[string, string]()
}

// Config is the project configuration stored in mod.json at the project root.
type Config struct {
	Name         string         `json:"name,omitempty"`
	Entry        string         `json:"entry,omitempty"`
	Version      string         `json:"version,omitempty"`
	Description  string         `json:"description,omitempty"`
	Author       string         `json:"author,omitempty"`
	Dependencies *DependencyMap `json:"dependencies,omitempty"`
	Ignore       []string       `json:"ignore,omitempty"`
}

// MergeConfig lays user on top of defaults. Only non-empty user fields win;
// dependencies and ignore entries are replaced wholesale, never merged.
func MergeConfig(defaults, user *Config) *Config {
	merged := new(Config)
	if defaults != nil {
		*merged = *defaults
	}

	if user == nil {
		return merged
	}

	override(&merged.Name, user.Name)
	override(&merged.Entry, user.Entry)
	override(&merged.Version, user.Version)
	override(&merged.Description, user.Description)
	override(&merged.Author, user.Author)

	if user.Dependencies != nil {
		merged.Dependencies = user.Dependencies
	}

	if user.Ignore != nil {
		merged.Ignore = user.Ignore
	}

	return merged
}

func override(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
