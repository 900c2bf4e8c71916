package gitcmd

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/rios0rios0/gerritops/internal/domain/repositories"
)

// CommandRunner implements repositories.Runner over os/exec. The process
// environment is inherited and the given map merged on top, so callers can
// inject GIT_SSH or committer identity without clobbering PATH.
type CommandRunner struct{}

// NewCommandRunner creates a runner using the ambient process environment.
func NewCommandRunner() repositories.Runner {
	return &CommandRunner{}
}

func (it *CommandRunner) Run(
	ctx context.Context,
	dir string,
	env map[string]string,
	name string,
	args ...string,
) (string, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = mergeEnv(os.Environ(), env)

	out, err := cmd.CombinedOutput()
	output := strings.TrimRight(string(out), "\n")
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			status := exitErr.ExitCode()
			log.Debugf("command %s %s exited %d: %s", name, strings.Join(args, " "), status, output)
			return output, status, nil
		}
		return output, -1, err
	}

	return output, 0, nil
}

func mergeEnv(base []string, extra map[string]string) []string {
	if len(extra) == 0 {
		return base
	}

	merged := make([]string, 0, len(base)+len(extra))
	for _, kv := range base {
		key := kv[:strings.Index(kv, "=")+1]
		if _, shadowed := extra[strings.TrimSuffix(key, "=")]; !shadowed {
			merged = append(merged, kv)
		}
	}
	for k, v := range extra {
		merged = append(merged, k+"="+v)
	}
	return merged
}
