package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// imageExts lists the extensions treated as classifiable images. Matching is
// case-insensitive.
var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// ListImages returns the image files at the top level of dir, in directory
// enumeration order. It does not recurse and ignores anything that is not a
// regular file.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read source directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}
