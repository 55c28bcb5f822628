package asset

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hack-pad/hackpadfs"
	osfs "github.com/hack-pad/hackpadfs/os"
)

// DirFS returns a hackpadfs file system rooted at the OS directory root.
func DirFS(root string) (hackpadfs.FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("asset: %w", err)
	}
	abs = strings.TrimPrefix(abs, filepath.VolumeName(abs))
	rel := strings.TrimPrefix(filepath.ToSlash(abs), "/")
	if rel == "" {
		rel = "."
	}
	sub, err := osfs.NewFS().Sub(rel)
	if err != nil {
		return nil, fmt.Errorf("asset: %w", err)
	}
	return sub, nil
}

// NewDirFetcher returns an FSFetcher rooted at the OS directory root.
func NewDirFetcher(root string) (FSFetcher, error) {
	sub, err := DirFS(root)
	if err != nil {
		return FSFetcher{}, err
	}
	return FSFetcher{FS: sub}, nil
}
