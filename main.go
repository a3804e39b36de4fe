package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/dlepage/ghist/internal/config"
	"github.com/dlepage/ghist/internal/export"
	"github.com/dlepage/ghist/internal/gitrepo"
	"github.com/dlepage/ghist/internal/histcache"
	"github.com/dlepage/ghist/internal/history"
	"github.com/dlepage/ghist/internal/tui"
	"github.com/dlepage/ghist/internal/view"
)

var (
	showVersion  bool
	noLineNumber bool
	pageSize     int
	debounceMs   int
	themeName    string
	highContrast bool
	blameRef     string
	exportWhat   string
	exportFormat string
	exportFile   string
	exportCopy   bool
	logFile      string
	help         bool
)

func init() {
	flag.BoolVarP(&showVersion, "version", "v", false, "Show version information")
	flag.BoolVarP(&noLineNumber, "no-line-numbers", "n", false, "Hide line numbers in diff panes")
	flag.IntVar(&pageSize, "page-size", 50, "Commits per log page")
	flag.IntVar(&debounceMs, "debounce", 300, "Quiet period in milliseconds before flushing caches after repo changes")
	flag.StringVar(&themeName, "theme", "default", "Color theme (default, mono)")
	flag.BoolVar(&highContrast, "high-contrast", false, "Brighten theme colors")
	flag.StringVar(&blameRef, "blame-ref", "", "Blame the file at this revision instead of the working tree")
	flag.StringVar(&exportWhat, "export", "", "Export 'blame' or 'log' for the file without launching the TUI")
	flag.StringVar(&exportFormat, "export-format", "", "Export format: markdown, html, or ansi")
	flag.StringVar(&exportFile, "export-file", "", "Write exported output to the provided file path")
	flag.BoolVar(&exportCopy, "export-copy", false, "Copy the exported output to your clipboard")
	flag.StringVar(&logFile, "log-file", "", "Write debug logs to this file")
	flag.BoolVarP(&help, "help", "h", false, "Show help information")
	flag.Usage = usage
}

func usage() {
	fmt.Println("ghist - a terminal git history, blame and commit-tree viewer")
	fmt.Println("")
	fmt.Println("Usage:")
	fmt.Println("  ghist [options] <tracked file>")
	fmt.Println("")
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println("")
	fmt.Println("Examples:")
	fmt.Println("  ghist src/server.go                       # Browse the file's history")
	fmt.Println("  ghist --export blame --export-format md src/server.go")
	fmt.Println("  ghist --export log --export-file log.html --export-format html src/server.go")
	fmt.Println("")
	fmt.Println("Keyboard shortcuts:")
	fmt.Println("  j/k     Move            enter  Inspect commit / open file diff")
	fmt.Println("  n/p     Page log        esc    Back")
	fmt.Println("  b       Toggle blame    E/C/A  Fold all / collapse all / auto")
	fmt.Println("  o       Remote URL      y      Copy view as markdown")
	fmt.Println("  ?       Help            q      Quit")
}

func newLogger() (*zap.Logger, error) {
	if logFile == "" {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{logFile}
	cfg.ErrorOutputPaths = []string{logFile}
	return cfg.Build()
}

func runExport(session *view.Session, svc *history.Service, target string) error {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}

	var rendered string
	switch exportWhat {
	case "blame":
		rendered, err = export.RenderBlame(svc.Blame(target, blameRef), format,
			export.Options{Title: "Blame: " + svc.Relativize(target)})
	case "log":
		rendered, err = export.RenderLog(session.Log(0), format,
			export.Options{Title: "History: " + svc.Relativize(target)})
	default:
		err = fmt.Errorf("unsupported export target: %s (want blame or log)", exportWhat)
	}
	if err != nil {
		return err
	}

	if exportFile != "" {
		if err := os.WriteFile(exportFile, []byte(rendered), 0o644); err != nil {
			return err
		}
		fmt.Printf("Export saved to %s\n", exportFile)
	}
	if exportCopy {
		if err := export.CopyToClipboard(rendered, os.Stdout); err != nil {
			return err
		}
		fmt.Println("Export copied to clipboard.")
	}
	if exportFile == "" && !exportCopy {
		fmt.Println(rendered)
	}
	return nil
}

func main() {
	flag.Parse()

	if help {
		usage()
		os.Exit(0)
	}
	if showVersion {
		fmt.Println("ghist version 0.1.0")
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}

	target, err := filepath.Abs(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving path: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	resolver, err := gitrepo.Discover(target, gitrepo.NewRunner())
	if err != nil {
		// Surfaced once at startup; queries never error on this per call.
		fmt.Fprintf(os.Stderr, "Error: git repository not detected for %s\n", target)
		os.Exit(1)
	}

	cfg := config.DefaultConfig()
	cfg.ShowLineNo = !noLineNumber
	cfg.Theme = config.ThemeForPreset(config.ThemePreset(themeName), highContrast)
	cfg.HighContrast = highContrast
	if pageSize > 0 {
		cfg.PageSize = pageSize
	}
	if debounceMs > 0 {
		cfg.InvalidateDebounce = time.Duration(debounceMs) * time.Millisecond
	}

	cache := histcache.New()
	svc := history.NewService(resolver, cache, logger)
	svc.SetPageSize(cfg.PageSize)

	session := view.NewSession(svc, logger)
	session.SetActiveFile(target)
	defer session.Close()

	if exportWhat != "" || exportFormat != "" || exportFile != "" || exportCopy {
		if exportWhat == "" {
			exportWhat = "log"
		}
		if err := runExport(session, svc, target); err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	invalidator := history.NewInvalidator(cache.InvalidateAll, cfg.InvalidateDebounce, logger)
	defer invalidator.Close()

	model := tui.NewModel(session, svc, cfg)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
