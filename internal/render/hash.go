package render

import (
	"fmt"
	"sort"

	"github.com/vk/packforge/internal/recipe"
	"github.com/zeebo/blake3"
)

// contentHash digests everything that defines build identity. Requirement
// lists are sorted before hashing because their order is immaterial to the
// build; script statements are hashed in order because theirs is not.
func contentHash(r *Rendered) string {
	h := blake3.New()
	fmt.Fprintf(h, "package\x00%s\x00%s\x00%d\x00", r.Name, r.Version, r.BuildNumber)
	fmt.Fprintf(h, "source\x00%s\x00%s\x00", r.Source.URL, r.Source.SHA256)

	hashSorted := func(section string, list []string) {
		sorted := make([]string, len(list))
		copy(sorted, list)
		sort.Strings(sorted)
		fmt.Fprintf(h, "%s\x00", section)
		for _, item := range sorted {
			fmt.Fprintf(h, "%s\x00", item)
		}
	}
	hashSorted("build", r.Requirements.Build)
	hashSorted("host", r.Requirements.Host)
	hashSorted("run", r.Requirements.Run)

	fmt.Fprintf(h, "script\x00")
	for _, stmt := range r.Script {
		fmt.Fprintf(h, "%s\x00", stmt)
	}

	fmt.Fprintf(h, "tests\x00")
	for _, test := range r.Tests {
		fmt.Fprintf(h, "%s\x00", canonicalTest(test))
	}

	return fmt.Sprintf("%x", h.Sum(nil)[:16])
}

// canonicalTest serializes a test spec deterministically (map fields are
// emitted in sorted key order).
func canonicalTest(spec recipe.TestSpec) string {
	switch t := spec.(type) {
	case recipe.ImportsTest:
		return fmt.Sprintf("imports|%s|%v", t.Interpreter, t.Imports)
	case recipe.ScriptTest:
		keys := make([]string, 0, len(t.Env))
		for k := range t.Env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		env := ""
		for _, k := range keys {
			env += k + "=" + t.Env[k] + ";"
		}
		return fmt.Sprintf("script|%v|%s|%s|%s|%v", t.Content, t.File, t.Interpreter, env, t.Secrets)
	case recipe.DownstreamTest:
		return fmt.Sprintf("downstream|%s", t.Package)
	case recipe.PackageContentsTest:
		return fmt.Sprintf("package_contents|%v|%v|%v", t.Exists, t.Lib, t.Include)
	}
	return fmt.Sprintf("unknown|%T", spec)
}
