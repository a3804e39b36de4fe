package history

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/ini.v1"

	"github.com/dlepage/ghist/internal/histcache"
)

// GitHubRemoteURL derives a browsable URL from the origin remote of the
// repository owning filePath. Best effort: ok is false for a missing
// remote, an unparsable URL or a non-GitHub host. Never returns an error.
func (s *Service) GitHubRemoteURL(filePath string) (string, bool) {
	key := histcache.Key("remote", filePath)
	if v, ok := s.cache.Get(key); ok {
		u := v.(string)
		return u, u != ""
	}

	root := s.rootFor(filePath)
	raw := remoteURLFromConfig(root.Path)
	if raw == "" {
		// Config parsing came up empty; ask git itself before giving up.
		out, err := root.Run("remote", "get-url", "origin")
		if err != nil {
			s.log.Debug("no origin remote", zap.String("root", root.Path), zap.Error(err))
			return "", false
		}
		raw = strings.TrimSpace(out)
	}

	url, ok := normalizeGitHubRemote(raw)
	if !ok {
		return "", false
	}
	s.cache.Set(key, url, histcache.Tags{FilePath: filePath})
	return url, true
}

// remoteURLFromConfig reads remote.origin.url straight from the repository
// config file. Submodule checkouts keep a .git file pointing at the real
// metadata directory, so that indirection is followed first.
func remoteURLFromConfig(rootPath string) string {
	gitDir := filepath.Join(rootPath, ".git")
	if data, err := os.ReadFile(gitDir); err == nil {
		// A plain file means `gitdir: <path>`.
		line := strings.TrimSpace(string(data))
		if target, found := strings.CutPrefix(line, "gitdir:"); found {
			target = strings.TrimSpace(target)
			if !filepath.IsAbs(target) {
				target = filepath.Join(rootPath, target)
			}
			gitDir = target
		}
	}

	cfg, err := ini.Load(filepath.Join(gitDir, "config"))
	if err != nil {
		return ""
	}
	return cfg.Section(`remote "origin"`).Key("url").String()
}

// normalizeGitHubRemote converts the ssh and https remote forms into a
// plain https URL, dropping a trailing .git.
func normalizeGitHubRemote(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)

	var path string
	switch {
	case strings.HasPrefix(raw, "git@github.com:"):
		path = strings.TrimPrefix(raw, "git@github.com:")
	case strings.HasPrefix(raw, "ssh://git@github.com/"):
		path = strings.TrimPrefix(raw, "ssh://git@github.com/")
	case strings.HasPrefix(raw, "https://github.com/"):
		path = strings.TrimPrefix(raw, "https://github.com/")
	case strings.HasPrefix(raw, "http://github.com/"):
		path = strings.TrimPrefix(raw, "http://github.com/")
	default:
		return "", false
	}

	path = strings.TrimSuffix(path, ".git")
	path = strings.Trim(path, "/")
	if path == "" || !strings.Contains(path, "/") {
		return "", false
	}
	return "https://github.com/" + path, true
}
