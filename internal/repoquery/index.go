// Package repoquery answers questions about a local source tree by
// indexing it, handing a structured summary to a language model, and
// recording the exchange in memory. It is built as a pkg/engine DAG
// rather than a plain function call so its stages show up in traces
// and observers the same way every other workflow in nerva does.
package repoquery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"nerva/internal/logging"
)

var log = logging.New("repoquery")

var indexedExtensions = map[string]bool{
	".go": true, ".md": true, ".toml": true, ".yaml": true,
	".yml": true, ".json": true, ".txt": true, ".proto": true,
}

var excludedDirs = map[string]bool{
	".git": true, "vendor": true, "node_modules": true,
	"dist": true, "build": true, ".cache": true,
}

const maxIndexedFileSize = 1 << 20 // 1MB

// File is a single indexed source file.
type File struct {
	RelPath string
	Size    int64
}

// Index walks root and returns every file matching indexedExtensions,
// skipping excludedDirs and anything larger than maxIndexedFileSize.
func Index(root string) ([]File, error) {
	var files []File
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if excludedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !indexedExtensions[filepath.Ext(path)] {
			return nil
		}
		info, err := d.Info()
		if err != nil || info.Size() > maxIndexedFileSize {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		files = append(files, File{RelPath: rel, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("repoquery: index %s: %w", root, err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	log.Info("indexed repository", "root", root, "file_count", len(files))
	return files, nil
}

// SummarizeStructure groups indexed files by top-level directory and
// reports a per-directory file count, a cheap structural summary an
// LLM prompt can consume without needing full file contents.
func SummarizeStructure(files []File) map[string]int {
	summary := map[string]int{}
	for _, f := range files {
		top := strings.SplitN(f.RelPath, string(os.PathSeparator), 2)[0]
		summary[top]++
	}
	return summary
}
