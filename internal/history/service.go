// Package history serves commit logs, changed-file sets, blobs at revisions
// and blame for a resolved repository, memoizing every read through the
// history cache. Query failures are logged and converted to empty results:
// a missing log or blob is a displayable "no history" state, not an error
// the caller has to handle per call.
package history

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dlepage/ghist/internal/blame"
	"github.com/dlepage/ghist/internal/gitrepo"
	"github.com/dlepage/ghist/internal/histcache"
)

// DefaultPageSize is the fixed log page length.
const DefaultPageSize = 50

// logFormat emits hash, strict-ISO author date, author name, author mail
// and subject, tab-separated, one commit per line.
const logFormat = "%H%x09%aI%x09%an%x09%ae%x09%s"

// Service answers history queries against the repositories a Resolver knows
// about. All methods are safe for concurrent use and serve cached results
// without re-running git when a fresh entry exists.
type Service struct {
	resolver *gitrepo.Resolver
	cache    *histcache.Cache
	log      *zap.Logger
	pageSize int
}

// NewService wires a service to a resolver and cache. A nil logger is
// replaced with a no-op one.
func NewService(resolver *gitrepo.Resolver, cache *histcache.Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		resolver: resolver,
		cache:    cache,
		log:      logger,
		pageSize: DefaultPageSize,
	}
}

// SetPageSize overrides the log page length. Values below 1 are ignored.
func (s *Service) SetPageSize(n int) {
	if n >= 1 {
		s.pageSize = n
	}
}

// Cache exposes the backing cache for invalidation by collaborators.
func (s *Service) Cache() *histcache.Cache { return s.cache }

// Relativize maps an absolute path to its owning-root-relative form.
func (s *Service) Relativize(absPath string) string {
	return s.resolver.Relativize(absPath)
}

// rootFor resolves the repository owning filePath, falling back to the main
// root when the path is empty or unowned.
func (s *Service) rootFor(filePath string) *gitrepo.RepoRoot {
	if filePath == "" {
		return s.resolver.Main()
	}
	root, err := s.resolver.Resolve(filePath)
	if err != nil {
		return s.resolver.Main()
	}
	return root
}

// Log returns one page of the file's commit log, newest first, following
// renames. page is a zero-based skip multiplier.
func (s *Service) Log(filePath string, page int) []CommitRecord {
	key := histcache.Key("log", filePath, strconv.Itoa(page))
	if v, ok := s.cache.Get(key); ok {
		return v.([]CommitRecord)
	}

	root := s.rootFor(filePath)
	rel := s.resolver.Relativize(filePath)
	lines, err := root.RunLines(
		"log", "--follow", "--format="+logFormat,
		"--skip", strconv.Itoa(page*s.pageSize),
		"-n", strconv.Itoa(s.pageSize),
		"--", rel,
	)
	if err != nil {
		s.log.Warn("log query failed", zap.String("file", rel), zap.Error(err))
		lines = nil
	}

	commits := parseLogLines(lines)
	s.cache.Set(key, commits, histcache.Tags{FilePath: filePath})
	return commits
}

func parseLogLines(lines []string) []CommitRecord {
	commits := make([]CommitRecord, 0, len(lines))
	for _, line := range lines {
		fields := strings.SplitN(line, "\t", 5)
		if len(fields) < 5 || len(fields[0]) != 40 {
			continue
		}
		date, err := time.Parse(time.RFC3339, fields[1])
		if err != nil {
			date = time.Time{}
		}
		commits = append(commits, CommitRecord{
			Hash:        fields[0],
			Date:        date,
			Author:      fields[2],
			AuthorEmail: fields[3],
			Message:     fields[4],
		})
	}
	return commits
}

// ChangedFiles lists the paths a commit touched, resolved against the
// repository owning filePath (the main repository when filePath is empty).
func (s *Service) ChangedFiles(commitHash, filePath string) []ChangedFile {
	key := histcache.Key("changed", commitHash, filePath)
	if v, ok := s.cache.Get(key); ok {
		return v.([]ChangedFile)
	}

	root := s.rootFor(filePath)
	lines, err := root.RunLines("show", "--name-status", "--format=", commitHash)
	if err != nil {
		s.log.Warn("name-status query failed", zap.String("commit", commitHash), zap.Error(err))
		lines = nil
	}

	files := parseNameStatus(lines)
	s.cache.Set(key, files, histcache.Tags{FilePath: filePath, CommitHash: commitHash})
	return files
}

// parseNameStatus maps name-status lines to ChangedFiles. A line is a one-
// or two-character status code, whitespace, then the path; rename and copy
// lines carry two paths and keep the destination.
func parseNameStatus(lines []string) []ChangedFile {
	var files []ChangedFile
	for _, line := range lines {
		fields := strings.Split(line, "\t")
		if len(fields) < 2 || fields[0] == "" {
			continue
		}
		code := fields[0]
		path := strings.TrimSpace(fields[len(fields)-1])
		if path == "" {
			continue
		}
		var status Status
		switch code[0] {
		case 'A':
			status = StatusAdded
		case 'D':
			status = StatusDeleted
		default:
			// M, R, T, C all render as a modification of the surviving path.
			status = StatusModified
		}
		files = append(files, ChangedFile{Path: filepath.ToSlash(path), Status: status})
	}
	return files
}

// ParentCommit resolves the first parent of a commit. ok is false for a
// root commit, meaning "nothing to diff against", and also after a failed
// lookup; failures are logged before being folded into the empty result.
func (s *Service) ParentCommit(commitHash, filePath string) (string, bool) {
	key := histcache.Key("parent", commitHash, filePath)
	if v, ok := s.cache.Get(key); ok {
		p := v.(string)
		return p, p != ""
	}

	root := s.rootFor(filePath)
	out, err := root.Run("rev-list", "--parents", "-n", "1", commitHash)
	if err != nil {
		s.log.Warn("parent lookup failed", zap.String("commit", commitHash), zap.Error(err))
		return "", false
	}

	parent := ""
	if fields := strings.Fields(out); len(fields) > 1 {
		parent = fields[1]
	}
	s.cache.Set(key, parent, histcache.Tags{FilePath: filePath, CommitHash: commitHash})
	return parent, parent != ""
}

// FileContent returns the blob at commitHash:filePath. The string stays ""
// both for an absent path and an empty file; the FileState disambiguates.
func (s *Service) FileContent(commitHash, filePath string) (string, FileState) {
	key := histcache.Key("content", commitHash, filePath)
	if v, ok := s.cache.Get(key); ok {
		c := v.(cachedContent)
		return c.text, c.state
	}

	root := s.rootFor(filePath)
	rel := s.resolver.Relativize(filePath)
	out, err := root.Run("show", commitHash+":"+rel)
	var state FileState
	switch {
	case err != nil:
		// Path absent at that revision, or the revision itself is bogus.
		s.log.Debug("blob missing at revision",
			zap.String("commit", commitHash), zap.String("file", rel), zap.Error(err))
		out, state = "", FileAbsent
	case out == "":
		state = FileEmpty
	default:
		state = FilePresent
	}

	s.cache.Set(key, cachedContent{text: out, state: state},
		histcache.Tags{FilePath: filePath, CommitHash: commitHash})
	return out, state
}

type cachedContent struct {
	text  string
	state FileState
}

// Blame attributes every line of filePath in the working tree (or at ref,
// when non-empty) to the commit that last changed it.
func (s *Service) Blame(filePath, ref string) []blame.Line {
	key := histcache.Key("blame", filePath, ref)
	if v, ok := s.cache.Get(key); ok {
		return v.([]blame.Line)
	}

	root := s.rootFor(filePath)
	rel := s.resolver.Relativize(filePath)
	args := []string{"blame", "--porcelain"}
	if ref != "" {
		args = append(args, ref)
	}
	args = append(args, "--", rel)
	out, err := root.Run(args...)
	if err != nil {
		s.log.Warn("blame query failed", zap.String("file", rel), zap.Error(err))
		out = ""
	}

	lines := blame.Parse(out)
	s.cache.Set(key, lines, histcache.Tags{FilePath: filePath})
	return lines
}

// InvalidateFile flushes every cached result scoped to filePath.
func (s *Service) InvalidateFile(filePath string) {
	s.cache.InvalidateFile(filePath)
}
