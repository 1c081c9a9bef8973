package routeconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// document is the object form of a route config.
type document struct {
	Routes []Entry `json:"routes" yaml:"routes" toml:"routes"`
}

// Parse decodes a route config by extension (".yaml", ".yml", ".json" or
// ".toml"). YAML and JSON documents may be a bare list of entries or an
// object with a "routes" list; TOML documents use [[routes]] tables.
func Parse(data []byte, ext string) ([]Entry, error) {
	switch ext {
	case ".json":
		return parseJSON(data)
	case ".yaml", ".yml":
		return parseYAML(data)
	case ".toml":
		var doc document
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return nil, fmt.Errorf("parsing toml: %w", err)
		}
		return doc.Routes, nil
	}
	return nil, fmt.Errorf("unsupported route config extension %q", ext)
}

// ParseFile reads and parses name from fsys.
func ParseFile(fsys fs.FS, name string) ([]Entry, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	entries, err := Parse(data, path.Ext(name))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return entries, nil
}

func parseJSON(data []byte) ([]Entry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var entries []Entry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("parsing json: %w", err)
		}
		return entries, nil
	}
	var doc document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("parsing json: %w", err)
	}
	return doc.Routes, nil
}

func parseYAML(data []byte) ([]Entry, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	node := root.Content[0]
	switch node.Kind {
	case yaml.SequenceNode:
		var entries []Entry
		if err := node.Decode(&entries); err != nil {
			return nil, fmt.Errorf("parsing yaml: %w", err)
		}
		return entries, nil
	case yaml.MappingNode:
		var doc document
		if err := node.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parsing yaml: %w", err)
		}
		return doc.Routes, nil
	}
	return nil, fmt.Errorf("parsing yaml: expected a list or a mapping, line %d", node.Line)
}
