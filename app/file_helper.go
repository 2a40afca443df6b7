package app

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ludo-technologies/exprlint/internal/constants"
	"github.com/ludo-technologies/exprlint/internal/log"
	ignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/text/unicode/norm"
)

// FileHelper collects DSL source files. It implements domain.SourceReader.
type FileHelper struct {
	respectGitignore bool
}

// NewFileHelper creates a FileHelper that does not read .gitignore files
func NewFileHelper() *FileHelper {
	return &FileHelper{}
}

// WithGitignore makes directory walks skip paths ignored by the .gitignore
// at the root of each walked directory
func (h *FileHelper) WithGitignore(respect bool) *FileHelper {
	h.respectGitignore = respect
	return h
}

// CollectSourceFiles expands paths into a sorted, de-duplicated file list.
// Patterns use .gitignore syntax and are matched against paths relative to
// the walked directory. With include patterns, a file must match one of
// them; without, it must have a source extension. Explicitly named files
// only have to pass the exclude patterns and the extension check.
func (h *FileHelper) CollectSourceFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	include := compilePatterns(includePatterns)
	exclude := compilePatterns(excludePatterns)

	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if h.IsSourceFile(root) && !matches(exclude, filepath.Base(root)) {
				add(root)
			}
			continue
		}

		gitignore := h.loadGitignore(root)
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path == root {
				return nil
			}

			rel := relativeSlashPath(root, path)
			if d.IsDir() {
				if !recursive || matches(exclude, rel) || matches(exclude, rel+"/") || matches(gitignore, rel+"/") {
					return filepath.SkipDir
				}
				return nil
			}

			if matches(exclude, rel) || matches(gitignore, rel) {
				return nil
			}
			if include != nil {
				if matches(include, rel) {
					add(path)
				}
			} else if h.IsSourceFile(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

// IsSourceFile reports whether path has one of the DSL source extensions
func (h *FileHelper) IsSourceFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, known := range constants.SourceExtensions {
		if ext == known {
			return true
		}
	}
	return false
}

// FileExists checks if a file exists
func (h *FileHelper) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// ReadFile reads file content
func (h *FileHelper) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (h *FileHelper) loadGitignore(root string) *ignore.GitIgnore {
	if !h.respectGitignore {
		return nil
	}
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		log.Warn("ignoring unreadable %s: %v", path, err)
		return nil
	}
	return gi
}

func compilePatterns(patterns []string) *ignore.GitIgnore {
	if len(patterns) == 0 {
		return nil
	}
	return ignore.CompileIgnoreLines(patterns...)
}

func matches(gi *ignore.GitIgnore, rel string) bool {
	return gi != nil && gi.MatchesPath(rel)
}

// relativeSlashPath returns path relative to root with forward slashes, in
// NFC so that patterns match names stored decomposed (macOS)
func relativeSlashPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	return norm.NFC.String(filepath.ToSlash(rel))
}

// ResolveFilePaths returns paths unchanged when they all name existing files,
// and collects source files from them otherwise
func ResolveFilePaths(
	fileHelper *FileHelper,
	paths []string,
	recursive bool,
	includePatterns []string,
	excludePatterns []string,
) ([]string, error) {
	allFiles := true
	for _, path := range paths {
		exists, err := fileHelper.FileExists(path)
		if err != nil || !exists {
			allFiles = false
			break
		}
	}

	if allFiles {
		return paths, nil
	}

	return fileHelper.CollectSourceFiles(paths, recursive, includePatterns, excludePatterns)
}
