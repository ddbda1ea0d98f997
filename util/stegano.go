package util

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ReadFiles lists the files of a folder whose extension is one of
// supportedExtensions, ignoring case.
func ReadFiles(folder string, supportedExtensions []string) ([]string, error) {
	allFiles, err := os.ReadDir(folder)
	if err != nil {
		return nil, err
	}
	result := []string{}
	for _, f := range allFiles {
		if f.IsDir() {
			continue
		}
		name := strings.ToLower(f.Name())
		for _, ext := range supportedExtensions {
			if strings.HasSuffix(name, "."+ext) {
				result = append(result, filepath.Join(folder, f.Name()))
				break
			}
		}
	}
	sort.Strings(result)
	return result, nil
}
