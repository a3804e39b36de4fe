// Package filetree converts the flat list of paths a commit touched into a
// foldable directory tree. Build is pure: the same files and policy always
// yield a structurally identical tree, and callers rebuild rather than
// mutate when the commit or fold policy changes.
package filetree

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/dlepage/ghist/internal/history"
)

// Kind discriminates the node union.
type Kind int

const (
	KindFolder Kind = iota
	KindFile
)

// Node is one entry of the tree: a folder with a fold flag or a file with
// its change status. Consumers switch on Kind; there is no other variant.
type Node struct {
	Kind Kind
	Name string
	Path string // slash-joined ancestor chain including Name

	// Folder only.
	Expanded bool

	// File only.
	Status   history.Status
	IsTarget bool
}

// PolicyKind selects how folders fold.
type PolicyKind int

const (
	// PolicyAutoExpand opens only the ancestor chain of the target file.
	PolicyAutoExpand PolicyKind = iota
	// PolicyAllExpanded opens every folder.
	PolicyAllExpanded
	// PolicyAllCollapsed closes every folder.
	PolicyAllCollapsed
)

// Policy is the fold rule for one build. Target is set only for
// PolicyAutoExpand and holds the repo-relative path to reveal.
type Policy struct {
	Kind   PolicyKind
	Target string
}

// AutoExpandTo reveals target and collapses every sibling branch.
func AutoExpandTo(target string) Policy {
	return Policy{Kind: PolicyAutoExpand, Target: target}
}

// AllExpanded opens every folder.
func AllExpanded() Policy { return Policy{Kind: PolicyAllExpanded} }

// AllCollapsed closes every folder.
func AllCollapsed() Policy { return Policy{Kind: PolicyAllCollapsed} }

// String gives a stable cache-key form of the policy.
func (p Policy) String() string {
	switch p.Kind {
	case PolicyAllExpanded:
		return "all-expanded"
	case PolicyAllCollapsed:
		return "all-collapsed"
	default:
		return "auto:" + p.Target
	}
}

// Tree maps each folder path to its ordered children. The root folder is "".
type Tree map[string][]Node

// Build assembles the tree for one commit's changed files under the given
// fold policy. Folders materialize lazily, once, for every proper prefix of
// every file path; within a folder all folders sort before all files and
// each group is collated by display name.
func Build(files []history.ChangedFile, policy Policy) Tree {
	collator := collate.New(language.Und)

	sorted := make([]history.ChangedFile, len(files))
	copy(sorted, files)
	sort.SliceStable(sorted, func(i, j int) bool {
		return collator.CompareString(sorted[i].Path, sorted[j].Path) < 0
	})

	targetPath := resolveTarget(sorted, policy)
	expandDefault := policy.Kind == PolicyAllExpanded

	tree := make(Tree)
	tree[""] = nil
	seenFolder := make(map[string]bool)

	for _, f := range sorted {
		segments := strings.Split(f.Path, "/")
		parent := ""
		for _, seg := range segments[:len(segments)-1] {
			folderPath := joinPath(parent, seg)
			if !seenFolder[folderPath] {
				seenFolder[folderPath] = true
				tree[parent] = append(tree[parent], Node{
					Kind:     KindFolder,
					Name:     seg,
					Path:     folderPath,
					Expanded: expandDefault,
				})
				if _, ok := tree[folderPath]; !ok {
					tree[folderPath] = nil
				}
			}
			parent = folderPath
		}
		tree[parent] = append(tree[parent], Node{
			Kind:     KindFile,
			Name:     segments[len(segments)-1],
			Path:     f.Path,
			Status:   f.Status,
			IsTarget: f.Path == targetPath && targetPath != "",
		})
	}

	for folder, children := range tree {
		sortChildren(collator, children)
		tree[folder] = children
	}

	if policy.Kind == PolicyAutoExpand && targetPath != "" {
		expandAncestors(tree, targetPath)
	}
	return tree
}

// resolveTarget finds the file the auto-expand policy should reveal. Exact
// path match wins; a suffix or basename match tolerates callers whose path
// representation drifted from the repo-relative form.
func resolveTarget(files []history.ChangedFile, policy Policy) string {
	if policy.Kind != PolicyAutoExpand || policy.Target == "" {
		return ""
	}
	target := strings.TrimPrefix(policy.Target, "/")
	for _, f := range files {
		if f.Path == target {
			return f.Path
		}
	}
	base := target
	if i := strings.LastIndex(target, "/"); i >= 0 {
		base = target[i+1:]
	}
	for _, f := range files {
		if strings.HasSuffix(f.Path, "/"+target) || f.Path == base ||
			strings.HasSuffix(f.Path, "/"+base) {
			return f.Path
		}
	}
	return ""
}

// sortChildren orders folders before files, then alphabetically by display
// name within each group.
func sortChildren(collator *collate.Collator, children []Node) {
	sort.SliceStable(children, func(i, j int) bool {
		if children[i].Kind != children[j].Kind {
			return children[i].Kind == KindFolder
		}
		return collator.CompareString(children[i].Name, children[j].Name) < 0
	})
}

// expandAncestors flips Expanded on every folder along the target's chain.
func expandAncestors(tree Tree, targetPath string) {
	onChain := make(map[string]bool)
	segments := strings.Split(targetPath, "/")
	parent := ""
	for _, seg := range segments[:len(segments)-1] {
		parent = joinPath(parent, seg)
		onChain[parent] = true
	}
	for folder, children := range tree {
		for i := range children {
			if children[i].Kind == KindFolder && onChain[children[i].Path] {
				children[i].Expanded = true
			}
		}
		tree[folder] = children
	}
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}
