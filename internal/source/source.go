// Package source finds Java files on disk and loads them as source units.
package source

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/dshills/docaudit/internal/parser"
	"github.com/dshills/docaudit/pkg/types"
)

// JavaExt is the only extension loaded
const JavaExt = ".java"

// ErrNoSources is returned when the given paths hold no Java files
var ErrNoSources = errors.New("no java source files found")

var skipDirs = map[string]struct{}{
	"build":        {},
	"target":       {},
	"out":          {},
	"bin":          {},
	"node_modules": {},
	"generated":    {},
}

// Config controls discovery
type Config struct {
	IncludeTests bool // Include files under src/test and *Test.java (default: false)
}

// Provider discovers and reads Java sources
type Provider struct {
	config Config
	logger *slog.Logger
}

// New creates a Provider. A nil logger uses slog.Default().
func New(config Config, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{config: config, logger: logger.With("component", "source")}
}

// Discover walks root for Java files, skipping hidden and build
// directories and paths matched by root/.gitignore. Paths are returned
// sorted.
func (p *Provider) Discover(root string) ([]string, error) {
	gi := loadGitignore(root)

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			p.logger.Warn("skipping unreadable path", "path", path, "error", err)
			return nil
		}

		name := d.Name()
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if gi != nil && gi.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			if !p.config.IncludeTests && rel == "src/test" {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") || d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(name), JavaExt) {
			return nil
		}
		if !p.config.IncludeTests && strings.HasSuffix(name, "Test"+JavaExt) {
			return nil
		}
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}

// Load reads every Java file named by paths. Directories are expanded with
// Discover; other non-Java files are skipped with a warning. Duplicate
// paths are loaded once.
func (p *Provider) Load(paths ...string) ([]*types.SourceUnit, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if info.IsDir() {
			found, err := p.Discover(path)
			if err != nil {
				return nil, err
			}
			files = append(files, found...)
			continue
		}
		if !strings.EqualFold(filepath.Ext(path), JavaExt) {
			p.logger.Warn("skipping non-java file", "path", path)
			continue
		}
		files = append(files, path)
	}

	seen := make(map[string]bool, len(files))
	units := make([]*types.SourceUnit, 0, len(files))
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			abs = file
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true

		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		units = append(units, parser.NewSourceUnit(file, string(content)))
	}

	if len(units) == 0 {
		return nil, ErrNoSources
	}
	p.logger.Debug("sources loaded", "files", len(units))
	return units, nil
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
