package style

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/handiism/photo-timestamper/internal/logging"
	"github.com/handiism/photo-timestamper/internal/model"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"gopkg.in/yaml.v3"
)

// ErrStyleNotFound is returned when no style file matches a name.
var ErrStyleNotFound = errors.New("style not found")

// styleExtensions are tried in order when loading a style.
var styleExtensions = []string{".yml", ".yaml"}

// brandOrder lists the styles shown first by List.
var brandOrder = []string{"CANON", "NIKON", "FUJIFILM", "PENTAX", "SONY", "PANASONIC", "XIAOMI"}

type faceKey struct {
	file string
	size int
}

// Manager loads styles from a style directory and fonts from a font directory.
//
// Styles, parsed fonts and sized faces are memoized for the lifetime of the
// Manager. A Manager must not be shared between goroutines.
type Manager struct {
	stylesDir string
	fontsDir  string
	logger    logrus.FieldLogger

	styles *Cache[string, model.Style]
	fonts  *Cache[string, *opentype.Font]
	faces  *Cache[faceKey, font.Face]

	fallback *opentype.Font
}

// NewManager creates a Manager. A nil logger discards log output.
func NewManager(stylesDir, fontsDir string, logger logrus.FieldLogger) *Manager {
	return &Manager{
		stylesDir: stylesDir,
		fontsDir:  fontsDir,
		logger:    logging.WithComponent(logger, "style"),
		styles:    NewCache[string, model.Style](),
		fonts:     NewCache[string, *opentype.Font](),
		faces:     NewCache[faceKey, font.Face](),
	}
}

// StylesDir returns the directory styles are read from.
func (m *Manager) StylesDir() string { return m.stylesDir }

// FontsDir returns the directory fonts are resolved against.
func (m *Manager) FontsDir() string { return m.fontsDir }

// List returns the available style names.
//
// Names are deduplicated across extensions. Brand styles come first in a
// fixed order, followed by all other styles in discovery order.
func (m *Manager) List() []string {
	var discovered []string
	seen := make(map[string]bool)

	for _, ext := range styleExtensions {
		matches, err := filepath.Glob(filepath.Join(m.stylesDir, "*"+ext))
		if err != nil {
			continue
		}
		for _, match := range matches {
			name := strings.TrimSuffix(filepath.Base(match), ext)
			if !seen[name] {
				seen[name] = true
				discovered = append(discovered, name)
			}
		}
	}

	sorted := make([]string, 0, len(discovered))
	placed := make(map[string]bool, len(discovered))
	for _, brand := range brandOrder {
		for _, name := range discovered {
			if !placed[name] && strings.EqualFold(baseName(name), brand) {
				sorted = append(sorted, name)
				placed[name] = true
			}
		}
	}
	for _, name := range discovered {
		if !placed[name] {
			sorted = append(sorted, name)
		}
	}

	return sorted
}

// Load returns the named style, reading it from disk on first use.
func (m *Manager) Load(name string) (model.Style, error) {
	if st, ok := m.styles.Get(name); ok {
		return st, nil
	}

	if name == "" || strings.ContainsAny(name, `/\`) {
		return model.Style{}, fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	}

	var data []byte
	var path string
	for _, ext := range styleExtensions {
		candidate := filepath.Join(m.stylesDir, name+ext)
		b, err := os.ReadFile(candidate)
		if err == nil {
			data, path = b, candidate
			break
		}
		if !os.IsNotExist(err) {
			return model.Style{}, fmt.Errorf("%w: %s: %v", ErrStyleNotFound, name, err)
		}
	}
	if path == "" {
		return model.Style{}, fmt.Errorf("%w: %s", ErrStyleNotFound, name)
	}

	st, err := decodeStyle(data)
	if err != nil {
		return model.Style{}, fmt.Errorf("%w: cannot read %s: %v", ErrStyleNotFound, path, err)
	}
	st.Name = name

	m.styles.Put(name, st)
	m.logger.WithField("style", name).Debug("Style loaded")
	return st, nil
}

// CacheStats reports style cache hits and misses.
func (m *Manager) CacheStats() (hits, misses int) {
	return m.styles.Stats()
}

// ClearCache forgets every loaded style, font and face so the next lookups
// read from disk again.
func (m *Manager) ClearCache() {
	m.styles.Clear()
	m.fonts.Clear()
	m.faces.Clear()
}

// decodeStyle overlays the sections present in data onto the defaults.
func decodeStyle(data []byte) (model.Style, error) {
	st := model.DefaultStyle()

	var sections map[string]yaml.Node
	if err := yaml.Unmarshal(data, &sections); err != nil {
		return st, err
	}

	targets := map[string]any{
		"font":     &st.Font,
		"color":    &st.Color,
		"position": &st.Position,
		"format":   &st.Format,
		"effects":  &st.Effects,
	}
	for key, target := range targets {
		node, ok := sections[key]
		if !ok || node.Kind != yaml.MappingNode {
			continue
		}
		if err := node.Decode(target); err != nil {
			return st, fmt.Errorf("section %s: %w", key, err)
		}
	}

	return st, nil
}

// DisplayName picks the part of a bilingual "English&Localized" style name
// matching lang. Names without a separator are returned unchanged.
func DisplayName(name, lang string) string {
	en, local, ok := strings.Cut(name, "&")
	if !ok {
		return name
	}
	if strings.HasPrefix(lang, "en") || strings.TrimSpace(local) == "" {
		return strings.TrimSpace(en)
	}
	return strings.TrimSpace(local)
}

func baseName(name string) string {
	en, _, _ := strings.Cut(name, "&")
	return strings.TrimSpace(en)
}
