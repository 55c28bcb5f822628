package engineconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// EngineConfigPath is the path to the engine config file, relative to the process working directory.
const EngineConfigPath = "config/engine.json"

// EnginePrefs holds viewer preferences (debug overlays, grid, AI model, last scene).
// Persisted across runs. Scene content is saved separately as scene files.
type EnginePrefs struct {
	ShowFPS      bool   `json:"show_fps"`
	ShowMemAlloc bool   `json:"show_memalloc"`
	GridVisible  bool   `json:"grid_visible"`
	AIModel      string `json:"ai_model,omitempty"`
	LastScene    string `json:"last_scene,omitempty"`
	// FallbackCube draws a placeholder cube for assets that are loading or failed.
	FallbackCube bool `json:"fallback_cube"`
}

// Default returns default engine preferences (debug overlays off, grid on, fallback cube on).
func Default() EnginePrefs {
	return EnginePrefs{
		GridVisible:  true,
		AIModel:      "gpt-4o-mini",
		FallbackCube: true,
	}
}

// Load reads engine preferences from config/engine.json. If the file is missing or invalid,
// returns Default() and does not create a file.
func Load() (EnginePrefs, error) {
	return LoadFrom(EngineConfigPath)
}

// LoadFrom is Load for an explicit path. Fields absent from the file keep their defaults.
// A missing file is not an error; an unreadable or malformed one returns the defaults
// together with the error.
func LoadFrom(path string) (EnginePrefs, error) {
	p := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("engineconfig: %w", err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return Default(), fmt.Errorf("engineconfig: %s: %w", path, err)
	}
	return p, nil
}

// Save writes engine preferences to config/engine.json, creating the config directory if needed.
func Save(p EnginePrefs) error {
	return SaveTo(EngineConfigPath, p)
}

// SaveTo is Save for an explicit path.
func SaveTo(path string, p EnginePrefs) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Env is the process configuration read from environment variables (and .env, once
// loaded into the environment).
type Env struct {
	OpenAIKey    string        `env:"OPENAI_API_KEY"`
	GroqKey      string        `env:"GROQ_API_KEY"`
	OllamaURL    string        `env:"OLLAMA_URL"`
	AssetRoot    string        `env:"SCENE_ASSET_ROOT" envDefault:"assets"`
	LogLevel     string        `env:"SCENE_LOG_LEVEL" envDefault:"info"`
	LogFile      string        `env:"SCENE_LOG_FILE" envDefault:"logs/terminal.txt"`
	AssetTimeout time.Duration `env:"SCENE_ASSET_TIMEOUT" envDefault:"60s"`
}

// LoadEnv parses Env from the process environment.
func LoadEnv() (Env, error) {
	return parseEnv(env.Options{})
}

// LoadEnvFrom parses Env from vars instead of the process environment.
func LoadEnvFrom(vars map[string]string) (Env, error) {
	return parseEnv(env.Options{Environment: vars})
}

func parseEnv(opts env.Options) (Env, error) {
	var e Env
	if err := env.ParseWithOptions(&e, opts); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// HasLLM reports whether any language model backend is configured.
func (e Env) HasLLM() bool {
	return e.OpenAIKey != "" || e.GroqKey != "" || e.OllamaURL != ""
}
