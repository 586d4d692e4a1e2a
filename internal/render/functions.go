package render

import (
	"fmt"
	"strings"

	"github.com/vk/packforge/internal/variant"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// builtins returns the functions available inside template expressions. The
// compiler helper closes over the variant so that
// `${{ compiler("c") }}` derives its requirement string from the
// `c_compiler` / `c_compiler_version` variant keys.
func builtins(v variant.Variant) map[string]function.Function {
	return map[string]function.Function{
		"compiler": compilerFunction(v),
		"lower":    caseFunction(strings.ToLower),
		"upper":    caseFunction(strings.ToUpper),
	}
}

func compilerFunction(v variant.Variant) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "language", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			lang := args[0].AsString()
			name, ok := v.Get(lang + "_compiler")
			if !ok {
				// Forces the matrix to cover the compiler axis instead of
				// silently defaulting.
				return cty.NilVal, fmt.Errorf("variant does not define %s_compiler", lang)
			}
			if version, ok := v.Get(lang + "_compiler_version"); ok && version != "" {
				return cty.StringVal(name + " " + version), nil
			}
			return cty.StringVal(name), nil
		},
	})
}

func caseFunction(transform func(string) string) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "value", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			return cty.StringVal(transform(args[0].AsString())), nil
		},
	})
}
