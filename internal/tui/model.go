package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dlepage/ghist/internal/blame"
	"github.com/dlepage/ghist/internal/config"
	"github.com/dlepage/ghist/internal/diff"
	"github.com/dlepage/ghist/internal/export"
	"github.com/dlepage/ghist/internal/filetree"
	"github.com/dlepage/ghist/internal/history"
	"github.com/dlepage/ghist/internal/view"
)

// pane selects what the detail area shows alongside the main list.
type pane int

const (
	paneNone pane = iota
	paneDiff
	paneBlame
)

// Model is the bubbletea shell over the history session. It stays thin:
// every data decision lives in view.Session and the service layer.
type Model struct {
	session *view.Session
	svc     *history.Service
	cfg     *config.Config
	styles  *Styles

	width  int
	height int

	page    int
	commits []history.CommitRecord
	cursor  int

	rows []treeRow // flattened visible tree, ModeFocused only

	detail   pane
	viewport viewport.Model
	ready    bool

	showHelp bool
	status   string
}

// treeRow is one visible line of the rendered tree.
type treeRow struct {
	node  filetree.Node
	depth int
}

// Styles holds all the lipgloss styles
type Styles struct {
	added      lipgloss.Style
	removed    lipgloss.Style
	modified   lipgloss.Style
	folder     lipgloss.Style
	file       lipgloss.Style
	hash       lipgloss.Style
	author     lipgloss.Style
	date       lipgloss.Style
	lineNumber lipgloss.Style
	title      lipgloss.Style
	help       lipgloss.Style
	statusBar  lipgloss.Style
	cursor     lipgloss.Style
	target     lipgloss.Style
}

// NewModel creates the shell for an already-constructed session.
func NewModel(session *view.Session, svc *history.Service, cfg *config.Config) Model {
	m := Model{
		session: session,
		svc:     svc,
		cfg:     cfg,
		styles:  createStyles(cfg.Theme),
	}
	m.reloadLog()
	return m
}

func createStyles(theme config.Theme) *Styles {
	return &Styles{
		added:      lipgloss.NewStyle().Foreground(theme.AddedFg),
		removed:    lipgloss.NewStyle().Foreground(theme.RemovedFg),
		modified:   lipgloss.NewStyle().Foreground(theme.ModifiedFg),
		folder:     lipgloss.NewStyle().Foreground(theme.FolderFg).Bold(true),
		file:       lipgloss.NewStyle().Foreground(theme.FileFg),
		hash:       lipgloss.NewStyle().Foreground(theme.HashFg),
		author:     lipgloss.NewStyle().Foreground(theme.AuthorFg),
		date:       lipgloss.NewStyle().Foreground(theme.DateFg),
		lineNumber: lipgloss.NewStyle().Foreground(theme.LineNumberFg).Width(5).Align(lipgloss.Right),
		title:      lipgloss.NewStyle().Foreground(theme.TitleFg).Background(theme.TitleBg).Bold(true).Padding(0, 1),
		help:       lipgloss.NewStyle().Foreground(theme.HelpFg).Italic(true),
		statusBar:  lipgloss.NewStyle().Foreground(theme.TitleFg).Background(theme.TitleBg).Padding(0, 1),
		cursor:     lipgloss.NewStyle().Reverse(true),
		target:     lipgloss.NewStyle().Background(theme.TargetBg),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := m.height - 4
		if vpHeight < 3 {
			vpHeight = 3
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch {
	case m.bound("quit", key):
		return m, tea.Quit
	case m.bound("toggle_help", key):
		m.showHelp = !m.showHelp
	case m.bound("back", key):
		m.leaveDetailOrFocus()
	case m.bound("scroll_down", key):
		m.moveCursor(1)
	case m.bound("scroll_up", key):
		m.moveCursor(-1)
	case m.bound("go_top", key):
		m.cursor = 0
		m.viewport.GotoTop()
	case m.bound("go_bottom", key):
		m.cursor = m.listLen() - 1
		m.viewport.GotoBottom()
	case m.bound("select", key):
		m.selectCurrent()
	case m.bound("next_page", key):
		if m.session.Mode() == view.ModeLog && len(m.commits) == m.cfg.PageSize {
			m.page++
			m.reloadLog()
		}
	case m.bound("prev_page", key):
		if m.session.Mode() == view.ModeLog && m.page > 0 {
			m.page--
			m.reloadLog()
		}
	case m.bound("toggle_blame", key):
		m.toggleBlame()
	case m.bound("expand_all", key):
		m.applyFold(filetree.AllExpanded())
	case m.bound("collapse_all", key):
		m.applyFold(filetree.AllCollapsed())
	case m.bound("fold_auto", key):
		m.applyFold(filetree.AutoExpandTo(m.svc.Relativize(m.session.ActiveFile())))
	case m.bound("open_remote", key):
		if url, ok := m.svc.GitHubRemoteURL(m.session.ActiveFile()); ok {
			m.status = url
		} else {
			m.status = "no GitHub remote configured"
		}
	case m.bound("copy_markdown", key):
		m.copyMarkdown()
	}
	return m, nil
}

func (m *Model) bound(action, key string) bool {
	for _, k := range m.cfg.Keybindings[action] {
		if k == key {
			return true
		}
	}
	return false
}

func (m *Model) reloadLog() {
	m.commits = m.session.Log(m.page)
	m.cursor = 0
	m.status = ""
}

func (m *Model) reloadTree() {
	m.rows = flatten(m.session.Tree())
	if m.cursor >= len(m.rows) {
		m.cursor = maxInt(0, len(m.rows)-1)
	}
}

// flatten walks the tree from the root, descending only into expanded
// folders, and yields the rows the terminal actually shows.
func flatten(tree filetree.Tree) []treeRow {
	var rows []treeRow
	var walk func(folder string, depth int)
	walk = func(folder string, depth int) {
		for _, node := range tree[folder] {
			rows = append(rows, treeRow{node: node, depth: depth})
			if node.Kind == filetree.KindFolder && node.Expanded {
				walk(node.Path, depth+1)
			}
		}
	}
	walk("", 0)
	return rows
}

func (m *Model) listLen() int {
	if m.session.Mode() == view.ModeFocused {
		return len(m.rows)
	}
	return len(m.commits)
}

func (m *Model) moveCursor(delta int) {
	if m.detail != paneNone {
		if delta > 0 {
			m.viewport.LineDown(1)
		} else {
			m.viewport.LineUp(1)
		}
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if max := m.listLen() - 1; m.cursor > max && max >= 0 {
		m.cursor = max
	}
}

func (m *Model) selectCurrent() {
	switch m.session.Mode() {
	case view.ModeLog:
		if m.cursor < 0 || m.cursor >= len(m.commits) {
			return
		}
		m.session.FocusCommit(m.commits[m.cursor].Hash)
		m.cursor = 0
		m.detail = paneNone
		m.reloadTree()
	case view.ModeFocused:
		if m.cursor < 0 || m.cursor >= len(m.rows) {
			return
		}
		row := m.rows[m.cursor]
		switch row.node.Kind {
		case filetree.KindFolder:
			// Folding is a policy change, not an in-place mutation.
			if row.node.Expanded {
				m.applyFold(filetree.AllCollapsed())
			} else {
				m.applyFold(filetree.AllExpanded())
			}
		case filetree.KindFile:
			m.openDiff(row.node)
		}
	}
}

// openDiff shows the selected file at the focused commit against its
// parent. A root commit has nothing to diff against, so the file renders
// as fully added.
func (m *Model) openDiff(node filetree.Node) {
	commit := m.session.FocusedCommit()
	rightText, _ := m.svc.FileContent(commit, node.Path)
	leftText := ""
	leftLabel := "(none)"
	if parent, ok := m.svc.ParentCommit(commit, node.Path); ok {
		leftText, _ = m.svc.FileContent(parent, node.Path)
		leftLabel = shortHash(parent) + ":" + node.Path
	}
	result := diff.Compare(leftText, rightText, leftLabel, shortHash(commit)+":"+node.Path)
	m.detail = paneDiff
	m.viewport.SetContent(m.renderDiff(result))
	m.viewport.GotoTop()
}

func (m *Model) toggleBlame() {
	if m.detail == paneBlame {
		m.detail = paneNone
		return
	}
	lines := m.session.Blame()
	m.detail = paneBlame
	m.viewport.SetContent(m.renderBlame(lines))
	m.viewport.GotoTop()
}

func (m *Model) applyFold(policy filetree.Policy) {
	if m.session.Mode() != view.ModeFocused {
		return
	}
	m.session.SetFoldPolicy(policy)
	m.reloadTree()
}

func (m *Model) leaveDetailOrFocus() {
	if m.detail != paneNone {
		m.detail = paneNone
		return
	}
	if m.session.Mode() == view.ModeFocused {
		m.session.Back()
		m.reloadLog()
	}
}

func (m *Model) copyMarkdown() {
	var rendered string
	var err error
	if m.detail == paneBlame {
		rendered, err = export.RenderBlame(m.session.Blame(), export.FormatMarkdown,
			export.Options{Title: "Blame: " + m.svc.Relativize(m.session.ActiveFile())})
	} else {
		rendered, err = export.RenderLog(m.commits, export.FormatMarkdown,
			export.Options{Title: "History: " + m.svc.Relativize(m.session.ActiveFile())})
	}
	if err != nil {
		m.status = err.Error()
		return
	}
	if err := export.CopyToClipboard(rendered, os.Stdout); err != nil {
		m.status = err.Error()
		return
	}
	m.status = "copied markdown to clipboard"
}

// View renders the UI
func (m Model) View() string {
	var sections []string
	sections = append(sections, m.renderTitle())

	if m.detail != paneNone && m.ready {
		sections = append(sections, m.viewport.View())
	} else if m.session.Mode() == view.ModeFocused {
		sections = append(sections, m.renderTree())
	} else {
		sections = append(sections, m.renderLog())
	}

	if m.showHelp {
		sections = append(sections, m.renderHelp())
	}
	sections = append(sections, m.renderStatusBar())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTitle() string {
	file := m.svc.Relativize(m.session.ActiveFile())
	var title string
	if m.session.Mode() == view.ModeFocused {
		title = fmt.Sprintf("ghist: %s @ %s", file, shortHash(m.session.FocusedCommit()))
	} else {
		title = fmt.Sprintf("ghist: %s (page %d)", file, m.page+1)
	}
	return m.styles.title.Render(title)
}

func (m Model) renderLog() string {
	if len(m.commits) == 0 {
		return m.styles.help.Render("no history found")
	}
	var lines []string
	for i, c := range m.commits {
		line := fmt.Sprintf("%s %s %s %s",
			m.styles.hash.Render(shortHash(c.Hash)),
			m.styles.date.Render(c.Date.Format("2006-01-02")),
			m.styles.author.Render(padRight(c.Author, 18)),
			truncate(c.Message, maxInt(20, m.width-36)),
		)
		if i == m.cursor {
			line = m.styles.cursor.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderTree() string {
	if len(m.rows) == 0 {
		return m.styles.help.Render("commit touched no files")
	}
	var lines []string
	for i, row := range m.rows {
		indent := strings.Repeat("  ", row.depth)
		var line string
		switch row.node.Kind {
		case filetree.KindFolder:
			marker := "▸"
			if row.node.Expanded {
				marker = "▾"
			}
			line = indent + m.styles.folder.Render(marker+" "+row.node.Name+"/")
		case filetree.KindFile:
			line = indent + "  " + m.statusStyle(row.node.Status).Render(statusGlyph(row.node.Status)+" "+row.node.Name)
			if row.node.IsTarget {
				line = m.styles.target.Render(line)
			}
		}
		if i == m.cursor {
			line = m.styles.cursor.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderDiff(result *diff.Result) string {
	var b strings.Builder
	b.WriteString(m.styles.help.Render(result.LeftLabel+" → "+result.RightLabel) + "\n")
	for _, line := range result.Lines {
		var style lipgloss.Style
		var symbol string
		switch line.Op {
		case diff.OpAdded:
			style, symbol = m.styles.added, "+"
		case diff.OpRemoved:
			style, symbol = m.styles.removed, "-"
		default:
			style, symbol = m.styles.file, " "
		}
		if m.cfg.ShowLineNo {
			b.WriteString(m.styles.lineNumber.Render(lineNo(line.LeftNo)))
			b.WriteString(m.styles.lineNumber.Render(lineNo(line.RightNo)))
			b.WriteString(" ")
		}
		b.WriteString(style.Render(symbol + " " + line.Content))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderBlame(lines []blame.Line) string {
	if len(lines) == 0 {
		return m.styles.help.Render("no blame available")
	}
	var b strings.Builder
	for _, ln := range lines {
		b.WriteString(m.styles.lineNumber.Render(fmt.Sprintf("%d", ln.Number)))
		b.WriteString(" ")
		b.WriteString(m.styles.hash.Render(shortHash(ln.CommitHash)))
		b.WriteString(" ")
		b.WriteString(m.styles.author.Render(padRight(ln.Author, 16)))
		b.WriteString(" ")
		b.WriteString(m.styles.date.Render(ln.Date.Format("2006-01-02")))
		b.WriteString(" ")
		b.WriteString(m.styles.file.Render(truncate(ln.Summary, maxInt(20, m.width-40))))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderHelp() string {
	helpText := []string{
		"",
		"Keyboard Shortcuts:",
		"  j, ↓   Move down      │  enter  Select commit/file  │  b  Toggle blame",
		"  k, ↑   Move up        │  esc    Back                │  y  Copy as markdown",
		"  n/p    Next/prev page │  E/C/A  Fold all/none/auto  │  o  Show remote URL",
		"  g/G    Top/bottom     │  ?      Toggle help         │  q  Quit",
		"",
	}
	helpStyle := m.styles.help.
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(m.cfg.Theme.BorderFg).
		Padding(0, 1).
		Width(maxInt(20, m.width-2))
	return helpStyle.Render(strings.Join(helpText, "\n"))
}

func (m Model) renderStatusBar() string {
	status := m.status
	if status == "" {
		switch m.session.Mode() {
		case view.ModeFocused:
			status = fmt.Sprintf("commit %s | %d entries | fold: %s",
				shortHash(m.session.FocusedCommit()), len(m.rows), m.session.Policy())
		default:
			status = fmt.Sprintf("%d commits | page %d | enter: inspect  b: blame  ?: help",
				len(m.commits), m.page+1)
		}
	}
	return m.styles.statusBar.Width(maxInt(10, m.width)).Render(status)
}

func (m Model) statusStyle(s history.Status) lipgloss.Style {
	switch s {
	case history.StatusAdded:
		return m.styles.added
	case history.StatusDeleted:
		return m.styles.removed
	case history.StatusModified:
		return m.styles.modified
	default:
		return m.styles.file
	}
}

func statusGlyph(s history.Status) string {
	switch s {
	case history.StatusAdded:
		return "A"
	case history.StatusDeleted:
		return "D"
	case history.StatusModified:
		return "M"
	default:
		return " "
	}
}

func lineNo(no int) string {
	if no <= 0 {
		return ""
	}
	return fmt.Sprintf("%d", no)
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
