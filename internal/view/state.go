// Package view holds the session state machine that decides which tree the
// shell renders: the paginated log for the active file, or the folder tree
// of one focused commit. The session is constructed explicitly, owns its
// cache, and is torn down with Close rather than living for the process.
package view

import (
	"go.uber.org/zap"

	"github.com/dlepage/ghist/internal/blame"
	"github.com/dlepage/ghist/internal/filetree"
	"github.com/dlepage/ghist/internal/histcache"
	"github.com/dlepage/ghist/internal/history"
)

// Mode is the session's render mode.
type Mode int

const (
	// ModeLog shows the paginated commit log for the active file.
	ModeLog Mode = iota
	// ModeFocused shows the changed-file tree of one commit.
	ModeFocused
)

// Session drives the history view for one workspace. Fold policy is state
// of the focused mode only and resets to auto whenever focus clears.
type Session struct {
	svc *history.Service
	log *zap.Logger

	mode       Mode
	focused    string // commit hash, ModeFocused only
	activeFile string // absolute path of the viewed document
	policy     filetree.Policy
}

// NewSession builds a session over a history service. A nil logger is
// replaced with a no-op one.
func NewSession(svc *history.Service, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{svc: svc, log: logger, mode: ModeLog}
}

// Mode reports the current render mode.
func (s *Session) Mode() Mode { return s.mode }

// FocusedCommit reports the focused commit hash, empty outside ModeFocused.
func (s *Session) FocusedCommit() string { return s.focused }

// ActiveFile reports the tracked document path.
func (s *Session) ActiveFile() string { return s.activeFile }

// Policy reports the fold policy applied to the focused tree.
func (s *Session) Policy() filetree.Policy { return s.policy }

// SetActiveFile tracks a document switch. Moving to a different file while
// focused clears the focus; re-selecting the same file (e.g. flipping
// between diff panes of one document) does not.
func (s *Session) SetActiveFile(path string) {
	if s.mode == ModeFocused && path != s.activeFile {
		s.clearFocus()
	}
	s.activeFile = path
}

// FocusCommit moves Log -> Focused and resets the fold policy to
// auto-expand toward the active file. The cached tree for that commit is
// invalidated so the builder re-runs against fresh changed-file data.
func (s *Session) FocusCommit(commitHash string) {
	s.mode = ModeFocused
	s.focused = commitHash
	s.policy = filetree.AutoExpandTo(s.svc.Relativize(s.activeFile))
	s.svc.Cache().InvalidateCommit(commitHash)
	s.log.Debug("focused commit", zap.String("commit", commitHash))
}

// Back moves Focused -> Log.
func (s *Session) Back() {
	s.clearFocus()
}

// SetFoldPolicy overrides the fold policy of the focused tree and flushes
// only that commit's cached tree. Outside ModeFocused it is a no-op.
func (s *Session) SetFoldPolicy(policy filetree.Policy) {
	if s.mode != ModeFocused {
		return
	}
	s.policy = policy
	s.svc.Cache().InvalidateCommit(s.focused)
}

// Log returns the requested page of the active file's commit log.
func (s *Session) Log(page int) []history.CommitRecord {
	return s.svc.Log(s.activeFile, page)
}

// Tree returns the render-ready tree for the focused commit under the
// current fold policy, memoized per (commit, policy) pair. Outside
// ModeFocused it returns nil.
func (s *Session) Tree() filetree.Tree {
	if s.mode != ModeFocused {
		return nil
	}
	key := histcache.Key("tree", s.focused, s.policy.String())
	if v, ok := s.svc.Cache().Get(key); ok {
		return v.(filetree.Tree)
	}
	files := s.svc.ChangedFiles(s.focused, s.activeFile)
	tree := filetree.Build(files, s.policy)
	s.svc.Cache().Set(key, tree, histcache.Tags{CommitHash: s.focused})
	return tree
}

// Blame returns per-line attribution for the active file's working tree.
// Blame bypasses tree building entirely.
func (s *Session) Blame() []blame.Line {
	return s.svc.Blame(s.activeFile, "")
}

// Close releases session state. The cache dies with the session.
func (s *Session) Close() {
	s.svc.Cache().InvalidateAll()
}

func (s *Session) clearFocus() {
	s.mode = ModeLog
	s.focused = ""
	s.policy = filetree.Policy{}
}
