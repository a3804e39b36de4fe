package gitrepo

import (
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes git queries against a repository root and returns raw text.
//
// The default implementation shells out to the git executable; the interface
// exists so the history service can be exercised against canned output.
type Runner interface {
	Run(dir string, args ...string) (string, error)
	RunLines(dir string, args ...string) ([]string, error)
}

// ExecRunner runs the git binary found on PATH.
type ExecRunner struct{}

// NewRunner returns a Runner backed by the git executable.
func NewRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes `git -C dir args...` and returns trimmed stdout.
func (r *ExecRunner) Run(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSuffix(string(out), "\n"), nil
}

// RunLines executes the query and splits stdout into lines, dropping the
// trailing newline. An empty output yields an empty slice, not [""].
func (r *ExecRunner) RunLines(dir string, args ...string) ([]string, error) {
	out, err := r.Run(dir, args...)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(out)
	if text == "" {
		return []string{}, nil
	}
	return strings.Split(text, "\n"), nil
}
