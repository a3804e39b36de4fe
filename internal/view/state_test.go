package view_test

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/dlepage/ghist/internal/filetree"
	"github.com/dlepage/ghist/internal/gitrepo"
	"github.com/dlepage/ghist/internal/histcache"
	"github.com/dlepage/ghist/internal/history"
	"github.com/dlepage/ghist/internal/view"
)

const commitA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
const commitB = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"

// scriptRunner answers the git queries the session triggers.
type scriptRunner struct {
	nameStatusCalls int
}

func (s *scriptRunner) Run(dir string, args ...string) (string, error) {
	if args[0] == "show" && len(args) > 1 && args[1] == "--name-status" {
		s.nameStatusCalls++
		return "M\tsrc/a.ts\nA\tsrc/b.ts\nD\told.ts", nil
	}
	if args[0] == "log" {
		return commitA + "\t2024-03-01T10:00:00Z\tAlice\ta@e.com\tfix", nil
	}
	return "", errors.New("unexpected git call: " + strings.Join(args, " "))
}

func (s *scriptRunner) RunLines(dir string, args ...string) ([]string, error) {
	out, err := s.Run(dir, args...)
	if err != nil {
		return nil, err
	}
	return strings.Split(out, "\n"), nil
}

func newTestSession(t *testing.T) (*view.Session, *scriptRunner) {
	t.Helper()
	runner := &scriptRunner{}
	resolver := gitrepo.NewResolver(runner, "/repo")
	svc := history.NewService(resolver, histcache.New(), zap.NewNop())
	session := view.NewSession(svc, zap.NewNop())
	session.SetActiveFile("/repo/src/a.ts")
	return session, runner
}

func TestInitialModeIsLog(t *testing.T) {
	session, _ := newTestSession(t)

	if session.Mode() != view.ModeLog {
		t.Errorf("expected ModeLog got %v", session.Mode())
	}
	if session.Tree() != nil {
		t.Errorf("expected nil tree outside focused mode")
	}
}

func TestFocusCommitEntersFocusedWithAutoPolicy(t *testing.T) {
	session, _ := newTestSession(t)

	session.FocusCommit(commitA)

	if session.Mode() != view.ModeFocused {
		t.Fatalf("expected ModeFocused got %v", session.Mode())
	}
	if session.FocusedCommit() != commitA {
		t.Errorf("unexpected focused commit %s", session.FocusedCommit())
	}
	policy := session.Policy()
	if policy.Kind != filetree.PolicyAutoExpand || policy.Target != "src/a.ts" {
		t.Errorf("expected auto policy toward active file, got %+v", policy)
	}
}

func TestTreeBuildsAndAutoExpandsTowardActiveFile(t *testing.T) {
	session, _ := newTestSession(t)
	session.FocusCommit(commitA)

	tree := session.Tree()
	if tree == nil {
		t.Fatalf("expected tree in focused mode")
	}

	var src filetree.Node
	for _, n := range tree[""] {
		if n.Kind == filetree.KindFolder && n.Name == "src" {
			src = n
		}
	}
	if !src.Expanded {
		t.Errorf("ancestor folder of active file not expanded: %+v", src)
	}
}

func TestTreeIsMemoizedPerCommitAndPolicy(t *testing.T) {
	session, runner := newTestSession(t)
	session.FocusCommit(commitA)

	session.Tree()
	session.Tree()
	if runner.nameStatusCalls != 1 {
		t.Errorf("expected one name-status query got %d", runner.nameStatusCalls)
	}
}

func TestSetFoldPolicyRebuildsOnlyThatCommitTree(t *testing.T) {
	session, runner := newTestSession(t)
	session.FocusCommit(commitA)

	first := session.Tree()
	session.SetFoldPolicy(filetree.AllExpanded())
	second := session.Tree()

	if first == nil || second == nil {
		t.Fatalf("expected trees before and after policy change")
	}
	for _, n := range second[""] {
		if n.Kind == filetree.KindFolder && !n.Expanded {
			t.Errorf("AllExpanded policy not applied on rebuild: %+v", n)
		}
	}
	if runner.nameStatusCalls < 2 {
		t.Errorf("expected tree rebuild to re-query changed files, got %d calls", runner.nameStatusCalls)
	}
}

func TestBackReturnsToLogAndResetsPolicy(t *testing.T) {
	session, _ := newTestSession(t)
	session.FocusCommit(commitA)
	session.SetFoldPolicy(filetree.AllCollapsed())

	session.Back()

	if session.Mode() != view.ModeLog {
		t.Errorf("expected ModeLog after Back got %v", session.Mode())
	}
	if session.FocusedCommit() != "" {
		t.Errorf("focus not cleared: %q", session.FocusedCommit())
	}
	if session.Policy().Kind != filetree.PolicyAutoExpand || session.Policy().Target != "" {
		t.Errorf("policy not reset: %+v", session.Policy())
	}
}

func TestSwitchingFileClearsFocus(t *testing.T) {
	session, _ := newTestSession(t)
	session.FocusCommit(commitA)

	session.SetActiveFile("/repo/src/other.ts")

	if session.Mode() != view.ModeLog {
		t.Errorf("expected focus cleared on file switch, mode=%v", session.Mode())
	}
}

func TestReselectingSameFileKeepsFocus(t *testing.T) {
	session, _ := newTestSession(t)
	session.FocusCommit(commitA)

	session.SetActiveFile("/repo/src/a.ts")

	if session.Mode() != view.ModeFocused || session.FocusedCommit() != commitA {
		t.Errorf("same-file switch should keep focus, mode=%v commit=%s",
			session.Mode(), session.FocusedCommit())
	}
}

func TestSetFoldPolicyIgnoredInLogMode(t *testing.T) {
	session, _ := newTestSession(t)

	session.SetFoldPolicy(filetree.AllExpanded())

	if session.Policy().Kind == filetree.PolicyAllExpanded {
		t.Errorf("fold policy applied outside focused mode")
	}
}

func TestRefocusDifferentCommit(t *testing.T) {
	session, _ := newTestSession(t)
	session.FocusCommit(commitA)
	session.FocusCommit(commitB)

	if session.FocusedCommit() != commitB {
		t.Errorf("expected focus on %s got %s", commitB, session.FocusedCommit())
	}
	policy := session.Policy()
	if policy.Kind != filetree.PolicyAutoExpand {
		t.Errorf("refocus should reset policy to auto, got %+v", policy)
	}
}

func TestLogPagePassesThrough(t *testing.T) {
	session, _ := newTestSession(t)

	commits := session.Log(0)
	if len(commits) != 1 || commits[0].Hash != commitA {
		t.Errorf("unexpected log result: %+v", commits)
	}
}
