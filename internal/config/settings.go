package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/handiism/photo-timestamper/internal/model"
)

// Settings holds all configuration options.
type Settings struct {
	General    GeneralSettings        `json:"general"`
	TimeSource model.TimeSourceConfig `json:"time_source"`
	Output     model.OutputConfig     `json:"output"`
	UI         UISettings             `json:"ui"`
	Paths      PathSettings           `json:"paths"`
}

// GeneralSettings holds application-level preferences.
type GeneralSettings struct {
	Language           string `json:"language"` // en, zh
	FirstRun           bool   `json:"first_run"`
	RestoreLastSession bool   `json:"restore_last_session"`
}

// UISettings holds presentation preferences.
type UISettings struct {
	LastStyle      string `json:"last_style"`
	PreviewEnabled bool   `json:"preview_enabled"`
	PreviewWidth   int    `json:"preview_width"`
	PreviewHeight  int    `json:"preview_height"`
}

// PathSettings locates the style store, the fonts and the log file.
type PathSettings struct {
	StylesDir string `json:"styles_dir"`
	FontsDir  string `json:"fonts_dir"`
	LogFile   string `json:"log_file"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		General: GeneralSettings{
			Language:           "en",
			FirstRun:           true,
			RestoreLastSession: true,
		},
		TimeSource: model.DefaultTimeSourceConfig(),
		Output:     model.DefaultOutputConfig(),
		UI: UISettings{
			LastStyle:      "CANON",
			PreviewEnabled: true,
			PreviewWidth:   3600,
			PreviewHeight:  2700,
		},
		Paths: PathSettings{
			StylesDir: "styles",
			FontsDir:  "fonts",
		},
	}
}

// Load reads settings from a JSON file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", path, err)
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate rejects unknown time modes and clamps values with a fixed range.
func (s *Settings) Validate() error {
	if !s.TimeSource.Primary.ValidPrimary() {
		return fmt.Errorf("unknown time source %q", s.TimeSource.Primary)
	}
	if !s.TimeSource.FallbackMode.ValidFallback() {
		return fmt.Errorf("unknown fallback mode %q", s.TimeSource.FallbackMode)
	}

	switch {
	case s.Output.JPEGQuality < 1:
		s.Output.JPEGQuality = 1
	case s.Output.JPEGQuality > 100:
		s.Output.JPEGQuality = 100
	}

	if s.UI.PreviewWidth <= 0 || s.UI.PreviewHeight <= 0 {
		def := DefaultSettings().UI
		s.UI.PreviewWidth, s.UI.PreviewHeight = def.PreviewWidth, def.PreviewHeight
	}

	return nil
}

// ResolvePaths makes relative style and font directories relative to base.
func (s *Settings) ResolvePaths(base string) {
	if s.Paths.StylesDir != "" && !filepath.IsAbs(s.Paths.StylesDir) {
		s.Paths.StylesDir = filepath.Join(base, s.Paths.StylesDir)
	}
	if s.Paths.FontsDir != "" && !filepath.IsAbs(s.Paths.FontsDir) {
		s.Paths.FontsDir = filepath.Join(base, s.Paths.FontsDir)
	}
}
