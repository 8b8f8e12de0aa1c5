package parser

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

var supportedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".pptx": true,
	".xlsx": true,
	".ods":  true,
	".md":   true,
	".csv":  true,
	".txt":  true,
}

// FindDocuments walks root and returns the supported course documents in
// sorted order. Directories named like any of skipDirs (the index directory)
// are not descended into.
func FindDocuments(root string, skipDirs ...string) ([]string, error) {
	skip := make(map[string]bool, len(skipDirs))
	for _, dir := range skipDirs {
		if dir != "" {
			skip[filepath.Base(dir)] = true
		}
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skip[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if supportedExtensions[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
