package app

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// FileHelper provides Python file collection for the analyzer. Exclude
// patterns use gitignore syntax, so "build/" and "**/generated_*.py" both
// work the way developers expect.
type FileHelper struct{}

// NewFileHelper creates a new FileHelper
func NewFileHelper() *FileHelper {
	return &FileHelper{}
}

// CollectPythonFiles collects Python files from paths. The result is sorted
// so analysis order does not depend on directory iteration order.
func (h *FileHelper) CollectPythonFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	excluder := ignore.CompileIgnoreLines(excludePatterns...)

	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		if seen[path] {
			return
		}
		seen[path] = true
		files = append(files, path)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			// Explicitly named files bypass include patterns but still
			// honor excludes
			if h.isPythonFile(path) && !excluder.MatchesPath(path) {
				add(path)
			}
			continue
		}

		if recursive {
			err = filepath.WalkDir(path, func(filePath string, entry os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				rel := h.relativeTo(path, filePath)
				if entry.IsDir() {
					if rel != "." && excluder.MatchesPath(rel+"/") {
						return filepath.SkipDir
					}
					return nil
				}
				if h.matches(rel, filePath, includePatterns, excluder) {
					add(filePath)
				}
				return nil
			})
		} else {
			var entries []os.DirEntry
			entries, err = os.ReadDir(path)
			if err == nil {
				for _, entry := range entries {
					if entry.IsDir() {
						continue
					}
					filePath := filepath.Join(path, entry.Name())
					if h.matches(entry.Name(), filePath, includePatterns, excluder) {
						add(filePath)
					}
				}
			}
		}
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

// IsValidPythonFile checks if a file is a Python source file
func (h *FileHelper) IsValidPythonFile(path string) bool {
	return h.isPythonFile(path)
}

// FileExists checks if a regular file exists at path
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

func (h *FileHelper) isPythonFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".py"
}

// matches applies the include patterns and the exclude set to one file
func (h *FileHelper) matches(rel, full string, includePatterns []string, excluder *ignore.GitIgnore) bool {
	if !h.isPythonFile(full) {
		return false
	}
	if excluder.MatchesPath(rel) || excluder.MatchesPath(full) {
		return false
	}
	if len(includePatterns) == 0 {
		return true
	}
	for _, pattern := range includePatterns {
		if matched, _ := filepath.Match(pattern, filepath.Base(full)); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, rel); matched {
			return true
		}
		// Patterns like **/*.py match any depth
		if strings.HasPrefix(pattern, "**/") {
			if matched, _ := filepath.Match(strings.TrimPrefix(pattern, "**/"), filepath.Base(full)); matched {
				return true
			}
		}
	}
	return false
}

// relativeTo returns filePath relative to root, falling back to the path
// itself when they do not share a prefix
func (h *FileHelper) relativeTo(root, filePath string) string {
	rel, err := filepath.Rel(root, filePath)
	if err != nil {
		return filePath
	}
	return rel
}

// ResolveFilePaths returns paths unchanged when every entry is already a
// file, otherwise collects Python files from the given directories
func ResolveFilePaths(fileHelper *FileHelper, paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
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
	return fileHelper.CollectPythonFiles(paths, recursive, includePatterns, excludePatterns)
}
