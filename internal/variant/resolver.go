package variant

// Matrix is an ordered, duplicate-free set of variants, computed once per
// invocation.
type Matrix struct {
	Variants []Variant
}

// axis is one dimension of the Cartesian product. A zip-key group is merged
// into a single synthetic axis whose candidates are the positional tuples of
// its member keys.
type axis struct {
	keys   []string
	tuples [][]string
}

// Resolve expands the variant key space into the build matrix. Only keys in
// the used set (directly referenced by the recipe, or pulled in through a
// zip group) become axes. The Cartesian loop order follows the config's key
// declaration order, outermost first, and duplicate tuples keep their
// first-seen position, so build ordering is reproducible across runs.
//
// A recipe referencing no variant keys resolves to a matrix of exactly one
// empty variant; that is valid, not an error.
func Resolve(cfg *Config, used map[string]bool) (*Matrix, error) {
	expanded := expandUsed(cfg, used)

	axes, err := buildAxes(cfg, expanded)
	if err != nil {
		return nil, err
	}

	matrix := &Matrix{}
	seen := map[string]bool{}
	indices := make([]int, len(axes))
	for {
		values := map[string]string{}
		for i, ax := range axes {
			tuple := ax.tuples[indices[i]]
			for j, key := range ax.keys {
				values[key] = tuple[j]
			}
		}
		v := New(values)
		if hash := v.Hash(); !seen[hash] {
			seen[hash] = true
			matrix.Variants = append(matrix.Variants, v)
		}
		if !advance(indices, axes) {
			break
		}
	}
	return matrix, nil
}

// expandUsed normalizes the used-key set and pulls whole zip groups in when
// any member is referenced.
func expandUsed(cfg *Config, used map[string]bool) map[string]bool {
	expanded := map[string]bool{}
	for key := range used {
		normalized := NormalizeKey(key)
		if group := cfg.zipGroup(normalized); group != nil {
			for _, member := range group {
				expanded[member] = true
			}
		} else {
			expanded[normalized] = true
		}
	}
	return expanded
}

func buildAxes(cfg *Config, used map[string]bool) ([]axis, error) {
	var axes []axis
	consumed := map[string]bool{}
	for _, key := range cfg.Keys {
		if consumed[key] || !used[key] {
			continue
		}
		group := cfg.zipGroup(key)
		if group == nil {
			candidates := cfg.Candidates[key]
			tuples := make([][]string, len(candidates))
			for i, c := range candidates {
				tuples[i] = []string{c}
			}
			axes = append(axes, axis{keys: []string{key}, tuples: tuples})
			consumed[key] = true
			continue
		}

		// Synthetic zip axis. Lengths were validated at load time, but the
		// check is repeated here so a hand-built Config fails the same way.
		length := len(cfg.Candidates[group[0]])
		lengths := make([]int, len(group))
		for i, member := range group {
			lengths[i] = len(cfg.Candidates[member])
		}
		for _, l := range lengths {
			if l != length {
				return nil, &ZipKeysLengthMismatchError{Group: group, Lengths: lengths}
			}
		}
		tuples := make([][]string, length)
		for i := 0; i < length; i++ {
			tuple := make([]string, len(group))
			for j, member := range group {
				tuple[j] = cfg.Candidates[member][i]
			}
			tuples[i] = tuple
		}
		for _, member := range group {
			consumed[member] = true
		}
		axes = append(axes, axis{keys: group, tuples: tuples})
	}
	return axes, nil
}

// advance increments the index vector odometer-style, innermost axis
// fastest. Returns false once every combination has been produced.
func advance(indices []int, axes []axis) bool {
	for i := len(indices) - 1; i >= 0; i-- {
		indices[i]++
		if indices[i] < len(axes[i].tuples) {
			return true
		}
		indices[i] = 0
	}
	return false
}
