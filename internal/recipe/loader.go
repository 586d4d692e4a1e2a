package recipe

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoadFile reads and parses a recipe document from disk.
func LoadFile(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading recipe %s: %w", path, err)
	}
	r, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("recipe %s: %w", path, err)
	}
	return r, nil
}

// Load parses a recipe document. The document is decoded once into the
// conditional node tree; the returned Recipe is read-only.
func Load(data []byte) (*Recipe, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return nil, fmt.Errorf("%w: expected a single YAML document", ErrConfig)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: recipe root must be a mapping, got %s at line %d", ErrConfig, kindName(root.Kind), root.Line)
	}

	r := &Recipe{}
	for i := 0; i < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		var err error
		switch key.Value {
		case "context":
			err = r.loadContext(val)
		case "package":
			err = r.loadPackage(val)
		case "source":
			err = r.loadSource(val)
		case "build":
			err = r.loadBuild(val)
		case "requirements":
			err = r.loadRequirements(val)
		case "tests":
			r.Tests, err = decodeNode(val)
		case "about":
			err = val.Decode(&r.About)
		default:
			err = fmt.Errorf("%w: unknown recipe section %q at line %d", ErrConfig, key.Value, key.Line)
		}
		if err != nil {
			return nil, err
		}
	}
	if r.Package.Name == "" {
		return nil, fmt.Errorf("%w: recipe is missing package.name", ErrConfig)
	}
	return r, nil
}

func (r *Recipe) loadContext(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: context must be a mapping at line %d", ErrConfig, n.Line)
	}
	for i := 0; i < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return fmt.Errorf("%w: context entry %q must be a scalar at line %d", ErrConfig, key.Value, val.Line)
		}
		r.Context = append(r.Context, ContextEntry{Name: key.Value, Expr: val.Value})
	}
	return nil
}

func (r *Recipe) loadPackage(n *yaml.Node) error {
	var pkg struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	}
	if err := n.Decode(&pkg); err != nil {
		return fmt.Errorf("%w: package section: %v", ErrConfig, err)
	}
	r.Package = Package(pkg)
	return nil
}

func (r *Recipe) loadSource(n *yaml.Node) error {
	var src struct {
		URL    string `yaml:"url"`
		SHA256 string `yaml:"sha256"`
	}
	if err := n.Decode(&src); err != nil {
		return fmt.Errorf("%w: source section: %v", ErrConfig, err)
	}
	r.Source = Source(src)
	return nil
}

func (r *Recipe) loadBuild(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: build must be a mapping at line %d", ErrConfig, n.Line)
	}
	for i := 0; i < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		switch key.Value {
		case "number":
			num, err := strconv.Atoi(val.Value)
			if err != nil {
				return fmt.Errorf("%w: build.number must be an integer at line %d", ErrConfig, val.Line)
			}
			r.Build.Number = num
		case "script":
			script, err := decodeNode(val)
			if err != nil {
				return err
			}
			r.Build.Script = script
		default:
			return fmt.Errorf("%w: unknown build field %q at line %d", ErrConfig, key.Value, key.Line)
		}
	}
	return nil
}

func (r *Recipe) loadRequirements(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: requirements must be a mapping at line %d", ErrConfig, n.Line)
	}
	for i := 0; i < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		node, err := decodeNode(val)
		if err != nil {
			return err
		}
		switch key.Value {
		case "build":
			r.Requirements.Build = node
		case "host":
			r.Requirements.Host = node
		case "run":
			r.Requirements.Run = node
		default:
			return fmt.Errorf("%w: unknown requirements list %q at line %d", ErrConfig, key.Value, key.Line)
		}
	}
	return nil
}

// decodeNode converts a YAML node into the conditional node tree. A mapping
// containing an "if" key becomes an If node; everything else maps one to one.
func decodeNode(n *yaml.Node) (Node, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return decodeNode(n.Alias)
	case yaml.ScalarNode:
		return Literal{Value: n.Value}, nil
	case yaml.SequenceNode:
		seq := Sequence{Items: make([]Node, 0, len(n.Content))}
		for _, item := range n.Content {
			node, err := decodeNode(item)
			if err != nil {
				return nil, err
			}
			seq.Items = append(seq.Items, node)
		}
		return seq, nil
	case yaml.MappingNode:
		if hasKey(n, "if") {
			return decodeIf(n)
		}
		m := Mapping{Entries: make([]MapEntry, 0, len(n.Content)/2)}
		for i := 0; i < len(n.Content); i += 2 {
			val, err := decodeNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m.Entries = append(m.Entries, MapEntry{Key: n.Content[i].Value, Value: val})
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: unsupported YAML node kind at line %d", ErrConfig, n.Line)
	}
}

func decodeIf(n *yaml.Node) (Node, error) {
	cond := If{}
	for i := 0; i < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		switch key.Value {
		case "if":
			if val.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%w: 'if' condition must be a scalar at line %d", ErrConfig, val.Line)
			}
			cond.Cond = val.Value
		case "then":
			branch, err := decodeNode(val)
			if err != nil {
				return nil, err
			}
			cond.Then = branch
		case "else":
			branch, err := decodeNode(val)
			if err != nil {
				return nil, err
			}
			cond.Else = branch
		default:
			return nil, fmt.Errorf("%w: unexpected key %q in conditional at line %d", ErrConfig, key.Value, key.Line)
		}
	}
	if cond.Cond == "" {
		return nil, fmt.Errorf("%w: conditional at line %d has an empty condition", ErrConfig, n.Line)
	}
	if cond.Then == nil {
		return nil, fmt.Errorf("%w: conditional at line %d is missing 'then'", ErrConfig, n.Line)
	}
	return cond, nil
}

func hasKey(n *yaml.Node, key string) bool {
	for i := 0; i < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return true
		}
	}
	return false
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}
