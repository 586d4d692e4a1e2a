package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`platform == "win"`, `platform == "win"`},
		{`platform == "win" and arch != "arm64"`, `platform == "win" && arch != "arm64"`},
		{`a == "1" or b == "2"`, `a == "1" || b == "2"`},
		{`not (platform == "osx")`, `!((platform == "osx"))`},
		// Unparenthesized not reaches through the comparison and stops at
		// the next conjunction.
		{`not platform == "win"`, `!(platform == "win")`},
		{`not a == "1" and b == "2"`, `!(a == "1" ) && b == "2"`},
		{`not (a or b) and c`, `!((a || b) ) && c`},
		{`not not a`, `!(!(a))`},
		{`platform == 'linux'`, `platform == "linux"`},
		// Words inside string literals must survive.
		{`name == "sand and gravel"`, `name == "sand and gravel"`},
		{`name == 'or else'`, `name == "or else"`},
		// Identifiers containing operator words must survive.
		{`android == "yes"`, `android == "yes"`},
		{`vendor_or_brand == "x"`, `vendor_or_brand == "x"`},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Normalize(tc.in), "input: %s", tc.in)
	}
}

func TestEvaluate(t *testing.T) {
	env := map[string]string{
		"platform":        "linux",
		"target_platform": "linux-64",
		"arch":            "x86_64",
		"python":          "3.11",
	}

	cases := []struct {
		expr string
		want bool
	}{
		{`platform == "linux"`, true},
		{`platform == "win"`, false},
		{`platform != "win"`, true},
		{`platform == "linux" and arch == "x86_64"`, true},
		{`platform == "win" or arch == "x86_64"`, true},
		{`not (platform == "win")`, true},
		{`not platform == "win"`, true},
		{`not platform == "linux"`, false},
		{`not platform == "win" and arch == "x86_64"`, true},
		{`not (platform == "linux" and arch == "x86_64")`, false},
		{`(platform == "win" or platform == "osx") and python == "3.11"`, false},
		{`python == '3.11'`, true},
	}
	for _, tc := range cases {
		got, err := Evaluate(tc.expr, env)
		require.NoError(t, err, "expr: %s", tc.expr)
		assert.Equal(t, tc.want, got, "expr: %s", tc.expr)
	}
}

func TestEvaluateUnknownVariable(t *testing.T) {
	_, err := Evaluate(`cuda == "11.8"`, map[string]string{"platform": "linux"})
	require.Error(t, err)

	var unknown *UnknownVariableError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "cuda", unknown.Name)
}

func TestEvaluateMalformed(t *testing.T) {
	_, err := Evaluate(`platform ==`, map[string]string{"platform": "linux"})
	assert.Error(t, err)
}

func TestEvaluateNonBoolean(t *testing.T) {
	_, err := Evaluate(`platform`, map[string]string{"platform": "linux"})
	assert.Error(t, err)
}
