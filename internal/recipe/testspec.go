package recipe

import "fmt"

// TestSpec is one concrete test to run against a built package. It is a
// tagged union: ImportsTest, ScriptTest, DownstreamTest or PackageContentsTest.
type TestSpec interface {
	isTestSpec()
	// Kind returns the spec's discriminator as written in the recipe.
	Kind() string
}

// ImportsTest checks that each named module imports cleanly under the
// interpreter.
type ImportsTest struct {
	Imports     []string
	Interpreter string
}

// ScriptTest runs a test script, either inline content or a file staged from
// the recipe or source tree.
type ScriptTest struct {
	Content     []string
	File        string
	Interpreter string
	Env         map[string]string
	Secrets     []string
}

// DownstreamTest builds and tests a downstream package against the freshly
// built one.
type DownstreamTest struct {
	Package string
}

// PackageContentsTest asserts that the packaged prefix contains the named
// files, libraries and headers.
type PackageContentsTest struct {
	Exists  []string
	Lib     []string
	Include []string
}

func (ImportsTest) isTestSpec()         {}
func (ScriptTest) isTestSpec()          {}
func (DownstreamTest) isTestSpec()      {}
func (PackageContentsTest) isTestSpec() {}

func (ImportsTest) Kind() string         { return "imports" }
func (ScriptTest) Kind() string          { return "script" }
func (DownstreamTest) Kind() string      { return "downstream" }
func (PackageContentsTest) Kind() string { return "package_contents" }

// ParseTests converts a concrete (already rendered, If-free) tests node into
// TestSpecs. A nil node yields no tests.
func ParseTests(n Node) ([]TestSpec, error) {
	if n == nil {
		return nil, nil
	}
	seq, ok := n.(Sequence)
	if !ok {
		return nil, fmt.Errorf("%w: tests must be a list, got %T", ErrConfig, n)
	}
	specs := make([]TestSpec, 0, len(seq.Items))
	for _, item := range seq.Items {
		m, ok := item.(Mapping)
		if !ok {
			return nil, fmt.Errorf("%w: each test must be a mapping, got %T", ErrConfig, item)
		}
		spec, err := parseTest(m)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func parseTest(m Mapping) (TestSpec, error) {
	switch {
	case m.Get("imports") != nil:
		return parseImportsTest(m)
	case m.Get("script") != nil:
		return parseScriptTest(m.Get("script"))
	case m.Get("downstream") != nil:
		lit, ok := m.Get("downstream").(Literal)
		if !ok {
			return nil, fmt.Errorf("%w: downstream test must name a single package", ErrConfig)
		}
		return DownstreamTest{Package: lit.Value}, nil
	case m.Get("package_contents") != nil:
		return parsePackageContentsTest(m.Get("package_contents"))
	}
	keys := make([]string, 0, len(m.Entries))
	for _, e := range m.Entries {
		keys = append(keys, e.Key)
	}
	return nil, fmt.Errorf("%w: unrecognized test kind, keys %v", ErrConfig, keys)
}

func parseImportsTest(m Mapping) (TestSpec, error) {
	imports, err := Strings(m.Get("imports"))
	if err != nil {
		return nil, err
	}
	test := ImportsTest{Imports: imports, Interpreter: "python"}
	if interp := m.Get("interpreter"); interp != nil {
		lit, ok := interp.(Literal)
		if !ok {
			return nil, fmt.Errorf("%w: imports test interpreter must be a scalar", ErrConfig)
		}
		test.Interpreter = lit.Value
	}
	return test, nil
}

func parseScriptTest(n Node) (TestSpec, error) {
	test := ScriptTest{Env: map[string]string{}}
	switch v := n.(type) {
	case Literal:
		// Shorthand: a bare scalar is the script content.
		test.Content = []string{v.Value}
		return test, nil
	case Mapping:
		for _, e := range v.Entries {
			switch e.Key {
			case "content":
				content, err := Strings(e.Value)
				if err != nil {
					return nil, err
				}
				test.Content = content
			case "file":
				lit, ok := e.Value.(Literal)
				if !ok {
					return nil, fmt.Errorf("%w: script test file must be a scalar", ErrConfig)
				}
				test.File = lit.Value
			case "interpreter":
				lit, ok := e.Value.(Literal)
				if !ok {
					return nil, fmt.Errorf("%w: script test interpreter must be a scalar", ErrConfig)
				}
				test.Interpreter = lit.Value
			case "env":
				env, ok := e.Value.(Mapping)
				if !ok {
					return nil, fmt.Errorf("%w: script test env must be a mapping", ErrConfig)
				}
				for _, entry := range env.Entries {
					lit, ok := entry.Value.(Literal)
					if !ok {
						return nil, fmt.Errorf("%w: script test env values must be scalars", ErrConfig)
					}
					test.Env[entry.Key] = lit.Value
				}
			case "secrets":
				secrets, err := Strings(e.Value)
				if err != nil {
					return nil, err
				}
				test.Secrets = secrets
			default:
				return nil, fmt.Errorf("%w: unknown script test field %q", ErrConfig, e.Key)
			}
		}
	default:
		return nil, fmt.Errorf("%w: script test must be a scalar or mapping, got %T", ErrConfig, n)
	}
	if len(test.Content) > 0 && test.File != "" {
		return nil, fmt.Errorf("%w: script test may set content or file, not both", ErrConfig)
	}
	if len(test.Content) == 0 && test.File == "" {
		return nil, fmt.Errorf("%w: script test needs content or file", ErrConfig)
	}
	return test, nil
}

func parsePackageContentsTest(n Node) (TestSpec, error) {
	m, ok := n.(Mapping)
	if !ok {
		return nil, fmt.Errorf("%w: package_contents test must be a mapping", ErrConfig)
	}
	test := PackageContentsTest{}
	for _, e := range m.Entries {
		switch e.Key {
		case "files":
			files, ok := e.Value.(Mapping)
			if !ok {
				return nil, fmt.Errorf("%w: package_contents files must be a mapping", ErrConfig)
			}
			exists, err := Strings(files.Get("exists"))
			if err != nil {
				return nil, err
			}
			test.Exists = exists
		case "lib":
			libs, err := Strings(e.Value)
			if err != nil {
				return nil, err
			}
			test.Lib = libs
		case "include":
			includes, err := Strings(e.Value)
			if err != nil {
				return nil, err
			}
			test.Include = includes
		default:
			return nil, fmt.Errorf("%w: unknown package_contents field %q", ErrConfig, e.Key)
		}
	}
	return test, nil
}
