//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"strings"

	"github.com/rios0rios0/gerritops/internal/domain/repositories"
)

// RunnerCall records one executed command.
type RunnerCall struct {
	Dir  string
	Env  map[string]string
	Name string
	Args []string
}

// ScriptedResult is the canned outcome for commands matching a prefix.
type ScriptedResult struct {
	Output string
	Status int
	Err    error
}

// StubRunner implements repositories.Runner with scripted results. Commands
// are matched by prefix against "name arg1 arg2 ..."; unmatched commands
// succeed with empty output.
type StubRunner struct {
	Results map[string]ScriptedResult
	Calls   []RunnerCall
}

var _ repositories.Runner = (*StubRunner)(nil)

func (s *StubRunner) Run(
	_ context.Context,
	dir string,
	env map[string]string,
	name string,
	args ...string,
) (string, int, error) {
	s.Calls = append(s.Calls, RunnerCall{Dir: dir, Env: env, Name: name, Args: args})

	command := name + " " + strings.Join(args, " ")
	for prefix, result := range s.Results {
		if strings.HasPrefix(command, prefix) {
			return result.Output, result.Status, result.Err
		}
	}
	return "", 0, nil
}

// CommandLines renders every recorded call as "name arg1 arg2 ...".
func (s *StubRunner) CommandLines() []string {
	lines := make([]string, 0, len(s.Calls))
	for _, call := range s.Calls {
		lines = append(lines, call.Name+" "+strings.Join(call.Args, " "))
	}
	return lines
}
