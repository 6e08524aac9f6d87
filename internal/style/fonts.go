package style

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// fontMapping maps logical font names used by styles to files under the
// fonts directory.
var fontMapping = map[string]string{
	"DS-Digital.ttf":            "DS-Digital/DS-DIGIB.TTF",
	"DS-Digital-Bold.ttf":       "DS-Digital/DS-DIGIB.TTF",
	"DS-Digital-Italic.ttf":     "DS-Digital/DS-DIGII.TTF",
	"Courier-Prime.ttf":         "Courier_Prime/CourierPrime-Bold.ttf",
	"Courier-Prime-Bold.ttf":    "Courier_Prime/CourierPrime-Bold.ttf",
	"Courier-Prime-Regular.ttf": "Courier_Prime/CourierPrime-Regular.ttf",
	"Roboto-Mono.ttf":           "Roboto_Mono/static/RobotoMono-Regular.ttf",
	"Roboto-Mono-Bold.ttf":      "Roboto_Mono/static/RobotoMono-Bold.ttf",
	"Roboto-Mono-Regular.ttf":   "Roboto_Mono/static/RobotoMono-Regular.ttf",
	"Noto-Sans-SC.ttf":          "Noto_Sans_SC/static/NotoSansSC-Regular.ttf",
	"Noto-Sans-SC-Bold.ttf":     "Noto_Sans_SC/static/NotoSansSC-Bold.ttf",
}

// FontPath resolves a style's font reference to a file.
//
// Resolution order:
//  1. the logical name table
//  2. fontFile as a path under the fonts directory
//  3. any .ttf/.otf file below the fonts directory whose name contains the stem of fontFile
//
// FontPath returns "" when nothing matches; callers fall back to a default font.
func (m *Manager) FontPath(fontFile string) string {
	if fontFile == "" || m.fontsDir == "" {
		return ""
	}

	if mapped, ok := fontMapping[fontFile]; ok {
		p := filepath.Join(m.fontsDir, filepath.FromSlash(mapped))
		if fileExists(p) {
			return p
		}
	}

	direct := filepath.Join(m.fontsDir, fontFile)
	if fileExists(direct) {
		return direct
	}

	stem := strings.TrimSuffix(filepath.Base(fontFile), filepath.Ext(fontFile))
	var found string
	_ = filepath.WalkDir(m.fontsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if (ext == ".ttf" || ext == ".otf") && strings.Contains(d.Name(), stem) {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if found != "" {
		return found
	}

	m.logger.WithField("font", fontFile).Warn("Font file not found, using default font")
	return ""
}

// Face returns a face for fontFile at size pixels.
//
// Faces are memoized per (fontFile, size). A font that cannot be resolved or
// parsed is replaced by the embedded Go Regular font, and if that fails too,
// by a fixed 7x13 bitmap face.
func (m *Manager) Face(fontFile string, size int) font.Face {
	key := faceKey{file: fontFile, size: size}
	if face, ok := m.faces.Get(key); ok {
		return face
	}

	face := m.newFace(m.loadFont(fontFile), size)
	m.faces.Put(key, face)
	return face
}

// FaceStats reports face cache hits and misses.
func (m *Manager) FaceStats() (hits, misses int) {
	return m.faces.Stats()
}

func (m *Manager) newFace(f *opentype.Font, size int) font.Face {
	if f != nil {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    float64(size),
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err == nil {
			return face
		}
		m.logger.WithError(err).Warn("Failed to create font face")
	}

	if def := m.defaultFont(); def != nil && def != f {
		face, err := opentype.NewFace(def, &opentype.FaceOptions{
			Size:    float64(size),
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err == nil {
			return face
		}
	}

	return basicfont.Face7x13
}

// loadFont parses the font file behind fontFile, or returns the default font.
func (m *Manager) loadFont(fontFile string) *opentype.Font {
	if f, ok := m.fonts.Get(fontFile); ok {
		return f
	}

	f := m.defaultFont()
	if path := m.FontPath(fontFile); path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			var parsed *opentype.Font
			parsed, err = opentype.Parse(data)
			if err == nil {
				f = parsed
			}
		}
		if err != nil {
			m.logger.WithError(err).WithField("font", path).Error("Failed to load font, using default font")
		}
	}

	m.fonts.Put(fontFile, f)
	return f
}

func (m *Manager) defaultFont() *opentype.Font {
	if m.fallback == nil {
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			m.logger.WithError(err).Error("Failed to parse embedded font")
			return nil
		}
		m.fallback = f
	}
	return m.fallback
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
