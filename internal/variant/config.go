package variant

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the parsed variant configuration: an ordered mapping from
// variant key to candidate value list, plus the reserved zip_keys and
// pin_run_as_build entries. Immutable once loaded.
type Config struct {
	// Keys holds the normalized variant keys in declaration order. The
	// declaration order fixes the Cartesian loop order, which makes build
	// ordering reproducible across runs.
	Keys       []string
	Candidates map[string][]string
	ZipKeys    [][]string
	Pins       map[string]Pin
}

// LoadConfigFile reads and parses a variant configuration from disk.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading variant config %s: %w", path, err)
	}
	cfg, err := LoadConfig(data)
	if err != nil {
		return nil, fmt.Errorf("variant config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadConfig parses a variant configuration document. Scalar candidates are
// promoted to one-element lists. Key declaration order is preserved.
func LoadConfig(data []byte) (*Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	cfg := &Config{
		Candidates: map[string][]string{},
		Pins:       map[string]Pin{},
	}
	if doc.Kind == 0 {
		// Empty document: a valid config with no keys.
		return cfg, nil
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: variant config root must be a mapping", ErrConfig)
	}
	root := doc.Content[0]

	for i := 0; i < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		switch key.Value {
		case "zip_keys":
			if err := cfg.loadZipKeys(val); err != nil {
				return nil, err
			}
		case "pin_run_as_build":
			if err := cfg.loadPins(val); err != nil {
				return nil, err
			}
		default:
			if err := cfg.loadCandidates(key.Value, val); err != nil {
				return nil, err
			}
		}
	}

	if err := cfg.validateZipKeys(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadCandidates(key string, n *yaml.Node) error {
	normalized := NormalizeKey(key)
	if _, exists := c.Candidates[normalized]; exists {
		return fmt.Errorf("%w: variant key %q declared twice", ErrConfig, key)
	}

	var values []string
	switch n.Kind {
	case yaml.ScalarNode:
		values = []string{n.Value}
	case yaml.SequenceNode:
		for _, item := range n.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("%w: candidates for %q must be scalars at line %d", ErrConfig, key, item.Line)
			}
			values = append(values, item.Value)
		}
	default:
		return fmt.Errorf("%w: candidates for %q must be a scalar or list at line %d", ErrConfig, key, n.Line)
	}
	if len(values) == 0 {
		return fmt.Errorf("%w: variant key %q has no candidates", ErrConfig, key)
	}

	c.Keys = append(c.Keys, normalized)
	c.Candidates[normalized] = values
	return nil
}

func (c *Config) loadZipKeys(n *yaml.Node) error {
	var groups [][]string
	if err := n.Decode(&groups); err != nil {
		return fmt.Errorf("%w: zip_keys must be a list of key lists: %v", ErrConfig, err)
	}
	for _, group := range groups {
		if len(group) < 2 {
			return fmt.Errorf("%w: zip_keys group %v needs at least two keys", ErrConfig, group)
		}
		normalized := make([]string, len(group))
		for i, key := range group {
			normalized[i] = NormalizeKey(key)
		}
		c.ZipKeys = append(c.ZipKeys, normalized)
	}
	return nil
}

func (c *Config) loadPins(n *yaml.Node) error {
	var pins map[string]struct {
		MinPin string `yaml:"min_pin"`
		MaxPin string `yaml:"max_pin"`
	}
	if err := n.Decode(&pins); err != nil {
		return fmt.Errorf("%w: pin_run_as_build must map package to {min_pin, max_pin}: %v", ErrConfig, err)
	}
	for pkg, pin := range pins {
		c.Pins[NormalizeKey(pkg)] = Pin{MinPin: pin.MinPin, MaxPin: pin.MaxPin}
	}
	return nil
}

// validateZipKeys checks that every zip group member is a declared variant
// key, that no key belongs to two groups, and that member candidate lists
// have equal length.
func (c *Config) validateZipKeys() error {
	seen := map[string]bool{}
	for _, group := range c.ZipKeys {
		lengths := make([]int, len(group))
		mismatch := false
		for i, key := range group {
			candidates, ok := c.Candidates[key]
			if !ok {
				return fmt.Errorf("%w: zip_keys references undeclared key %q", ErrConfig, key)
			}
			if seen[key] {
				return fmt.Errorf("%w: key %q appears in more than one zip_keys group", ErrConfig, key)
			}
			seen[key] = true
			lengths[i] = len(candidates)
			if lengths[i] != lengths[0] {
				mismatch = true
			}
		}
		if mismatch {
			return &ZipKeysLengthMismatchError{Group: group, Lengths: lengths}
		}
	}
	return nil
}

// zipGroup returns the zip group containing key, or nil.
func (c *Config) zipGroup(key string) []string {
	for _, group := range c.ZipKeys {
		for _, member := range group {
			if member == key {
				return group
			}
		}
	}
	return nil
}
