// Package archive imports zipped asset packs (a glTF file with its buffers and textures)
// into the asset root.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/hack-pad/hackpadfs"
)

// MaxEntrySize bounds one extracted file.
const MaxEntrySize = 256 << 20

// IsModel reports whether name is a glTF scene file.
func IsModel(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".gltf", ".glb":
		return true
	}
	return false
}

// ExtractFile extracts the zip at zipPath into dir of dst. See Extract.
func ExtractFile(zipPath string, dst hackpadfs.FS, dir string) (models []string, err error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("unzip: %w", err)
	}
	defer r.Close()
	return Extract(&r.Reader, dst, dir)
}

// Extract copies every file of r below dir in dst, preserving directory structure, and
// returns the slash-separated paths of the glTF files it wrote. Entries that would land
// outside dir are skipped.
func Extract(r *zip.Reader, dst hackpadfs.FS, dir string) (models []string, err error) {
	dir = path.Clean(strings.TrimPrefix(dir, "/"))
	if dir != "." {
		if err := hackpadfs.MkdirAll(dst, dir, 0o755); err != nil {
			return nil, fmt.Errorf("unzip: %w", err)
		}
	}
	for _, f := range r.File {
		name := path.Clean(strings.ReplaceAll(f.Name, "\\", "/"))
		if !fs.ValidPath(name) || name == "." {
			continue
		}
		dest := path.Join(dir, name)
		if f.FileInfo().IsDir() {
			if err := hackpadfs.MkdirAll(dst, dest, 0o755); err != nil {
				return nil, fmt.Errorf("unzip: %w", err)
			}
			continue
		}
		if err := hackpadfs.MkdirAll(dst, path.Dir(dest), 0o755); err != nil {
			return nil, fmt.Errorf("unzip: %w", err)
		}
		data, err := readEntry(f)
		if err != nil {
			return nil, fmt.Errorf("unzip %s: %w", f.Name, err)
		}
		if err := hackpadfs.WriteFullFile(dst, dest, data, 0o644); err != nil {
			return nil, fmt.Errorf("unzip: %w", err)
		}
		if IsModel(dest) {
			models = append(models, dest)
		}
	}
	return models, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > MaxEntrySize {
		return nil, fmt.Errorf("entry too large (%d bytes)", f.UncompressedSize64)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, MaxEntrySize))
}
