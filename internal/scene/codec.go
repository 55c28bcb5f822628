package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a scene file encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFor picks the format from a file extension: .yaml/.yml is YAML, anything else JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// envelope is the wire shape the text-processing backend replies with: {"sceneData": {...}}.
type envelope struct {
	SceneData *Scene `json:"sceneData" yaml:"sceneData"`
}

// Decode reads a scene in the given format. Both a bare scene and one wrapped in
// {"sceneData": ...} are accepted.
func Decode(r io.Reader, f Format) (Scene, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Scene{}, fmt.Errorf("scene: read: %w", err)
	}
	unmarshal := json.Unmarshal
	if f == FormatYAML {
		unmarshal = yaml.Unmarshal
	}
	var env envelope
	if err := unmarshal(data, &env); err == nil && env.SceneData != nil {
		return *env.SceneData, nil
	}
	var s Scene
	if err := unmarshal(data, &s); err != nil {
		return Scene{}, fmt.Errorf("scene: decode: %w", err)
	}
	return s, nil
}

// Encode writes s in the given format.
func Encode(w io.Writer, s Scene, f Format) error {
	if f == FormatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("scene: encode: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "\t")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("scene: encode: %w", err)
	}
	return nil
}

// Load reads the scene file at path, choosing the format from its extension.
func Load(path string) (Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scene{}, fmt.Errorf("scene: %w", err)
	}
	return Decode(bytes.NewReader(data), FormatFor(path))
}

// Save writes s to path, creating the parent directory if needed.
func Save(path string, s Scene) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("scene: %w", err)
		}
	}
	var buf bytes.Buffer
	if err := Encode(&buf, s, FormatFor(path)); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
