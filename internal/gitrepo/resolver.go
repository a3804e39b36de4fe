package gitrepo

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/ini.v1"
)

// ErrNotRepository is returned when no known root owns the queried path.
var ErrNotRepository = errors.New("path is not inside a known git repository")

// RepoRoot is one repository the resolver knows about: the main worktree or
// a submodule checked out beneath it. The bound Runner is the session handle
// for all queries against this root.
type RepoRoot struct {
	Path string // absolute
	git  Runner
}

// Run executes a git query against this root.
func (r *RepoRoot) Run(args ...string) (string, error) {
	return r.git.Run(r.Path, args...)
}

// RunLines executes a git query against this root and splits the output.
func (r *RepoRoot) RunLines(args ...string) ([]string, error) {
	return r.git.RunLines(r.Path, args...)
}

// Resolver maps absolute file paths to the repository root that owns them.
// Submodule roots are consulted before the main root because a submodule
// path is itself a subdirectory of the main worktree.
type Resolver struct {
	main *RepoRoot
	subs []*RepoRoot // sorted by descending path length
}

// Discover locates the repository containing startPath and enumerates its
// submodules once. Submodule entries whose directory carries no .git
// metadata (registered but not initialized) are silently excluded.
func Discover(startPath string, git Runner) (*Resolver, error) {
	dir := startPath
	if fi, err := os.Stat(startPath); err != nil || !fi.IsDir() {
		dir = filepath.Dir(startPath)
	}

	top, err := git.Run(dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, ErrNotRepository
	}
	mainPath := filepath.Clean(strings.TrimSpace(top))

	r := &Resolver{main: &RepoRoot{Path: mainPath, git: git}}

	for _, rel := range enumerateSubmodules(mainPath, git) {
		abs := filepath.Join(mainPath, rel)
		if !hasGitMetadata(abs) {
			continue
		}
		r.subs = append(r.subs, &RepoRoot{Path: abs, git: git})
	}
	sort.Slice(r.subs, func(i, j int) bool {
		return len(r.subs[i].Path) > len(r.subs[j].Path)
	})
	return r, nil
}

// NewResolver builds a resolver from known roots. Used by tests and by
// callers that already did their own discovery.
func NewResolver(git Runner, mainPath string, submodulePaths ...string) *Resolver {
	r := &Resolver{main: &RepoRoot{Path: filepath.Clean(mainPath), git: git}}
	for _, p := range submodulePaths {
		r.subs = append(r.subs, &RepoRoot{Path: filepath.Clean(p), git: git})
	}
	sort.Slice(r.subs, func(i, j int) bool {
		return len(r.subs[i].Path) > len(r.subs[j].Path)
	})
	return r
}

// Main returns the main worktree root.
func (r *Resolver) Main() *RepoRoot { return r.main }

// Resolve returns the root owning absPath, longest prefix first.
func (r *Resolver) Resolve(absPath string) (*RepoRoot, error) {
	p := filepath.Clean(absPath)
	for _, sub := range r.subs {
		if underRoot(p, sub.Path) {
			return sub, nil
		}
	}
	if underRoot(p, r.main.Path) {
		return r.main, nil
	}
	return nil, ErrNotRepository
}

// Relativize strips the root prefix from absPath and normalizes separators
// to forward slashes. A path that does not live under any known root is
// returned unchanged, so the call is idempotent on already-relative input.
func (r *Resolver) Relativize(absPath string) string {
	p := filepath.Clean(absPath)
	root, err := r.Resolve(p)
	if err != nil {
		return filepath.ToSlash(absPath)
	}
	rel := strings.TrimPrefix(p, root.Path)
	rel = strings.TrimPrefix(rel, string(filepath.Separator))
	rel = strings.TrimPrefix(rel, "/")
	return filepath.ToSlash(rel)
}

func underRoot(path, root string) bool {
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator)) ||
		strings.HasPrefix(path, root+"/")
}

// enumerateSubmodules asks git for the registered submodules in a single
// status query and falls back to parsing .gitmodules when the query fails.
func enumerateSubmodules(root string, git Runner) []string {
	lines, err := git.RunLines(root, "submodule", "status")
	if err == nil {
		return parseSubmoduleStatus(lines)
	}
	return parseGitmodules(filepath.Join(root, ".gitmodules"))
}

// parseSubmoduleStatus extracts the path column from `git submodule status`
// output. Each line is `<state><sha> <path> (<describe>)` where state is one
// of space, '-', '+' or 'U'.
func parseSubmoduleStatus(lines []string) []string {
	var paths []string
	for _, line := range lines {
		line = strings.TrimLeft(line, " -+U")
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		paths = append(paths, fields[1])
	}
	return paths
}

// parseGitmodules reads submodule paths from a .gitmodules file.
func parseGitmodules(path string) []string {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil
	}
	var paths []string
	for _, section := range cfg.Sections() {
		if !strings.HasPrefix(section.Name(), "submodule") {
			continue
		}
		if p := section.Key("path").String(); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// hasGitMetadata reports whether dir is a real checkout: submodules carry a
// .git file pointing at the parent's module store, standalone repos a .git
// directory. Either counts.
func hasGitMetadata(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}
