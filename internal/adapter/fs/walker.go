package fs

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Walker lists ingestable documents under a root using glob patterns.
type Walker struct {
	includes []string
	excludes []string
}

func NewWalker(includes, excludes []string) *Walker {
	if len(includes) == 0 {
		includes = []string{"**/*.pdf", "**/*.txt", "**/*.md"}
	}
	return &Walker{
		includes: includes,
		excludes: excludes,
	}
}

type FileInfo struct {
	Path string
	Size int64
}

func (w *Walker) Walk(root string) ([]FileInfo, error) {
	var files []FileInfo

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		for _, pattern := range w.excludes {
			if ok, _ := doublestar.Match(pattern, rel); ok {
				return nil
			}
		}

		for _, pattern := range w.includes {
			if ok, _ := doublestar.Match(pattern, rel); ok {
				files = append(files, FileInfo{Path: path, Size: info.Size()})
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}
