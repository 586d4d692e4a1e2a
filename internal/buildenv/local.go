package buildenv

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/vk/packforge/internal/ctxlog"
)

// LocalExecutor runs scripts as shell processes on the host. Cancelling the
// context kills the in-flight process.
type LocalExecutor struct {
	// Shell is the interpreter the script lines are fed to. Defaults to sh.
	Shell string
}

// NewLocalExecutor creates an executor running scripts through sh.
func NewLocalExecutor() *LocalExecutor {
	return &LocalExecutor{Shell: "sh"}
}

// Run joins the script lines into a single sh -e program so a failing line
// aborts the rest, then executes it in dir with env appended to the host
// environment.
func (e *LocalExecutor) Run(ctx context.Context, script []string, dir string, env map[string]string) (string, error) {
	if len(script) == 0 {
		return "", nil
	}
	logger := ctxlog.FromContext(ctx)

	program := strings.Join(script, "\n")
	cmd := exec.CommandContext(ctx, e.Shell, "-e", "-c", program)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), flattenEnv(env)...)

	logger.Debug("running script", "dir", dir, "lines", len(script))
	out, err := cmd.CombinedOutput()
	output := string(out)
	if err != nil {
		if ctx.Err() != nil {
			return output, ctx.Err()
		}
		return output, &ScriptError{Dir: dir, Output: output, Err: err}
	}
	return output, nil
}

// flattenEnv renders the map as KEY=value pairs in a stable order.
func flattenEnv(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, env[k]))
	}
	return pairs
}
