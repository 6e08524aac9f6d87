package style

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/handiism/photo-timestamper/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/basicfont"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestManager_List(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"alpha.yml", "SONY.yml", "CANON&佳能.yaml", "beta.yaml", "alpha.yaml", "notes.txt"} {
		writeFile(t, filepath.Join(dir, name), "font: {}\n")
	}

	mgr := NewManager(dir, "", nil)
	got := mgr.List()

	assert.Equal(t, []string{"CANON&佳能", "SONY", "alpha", "beta"}, got)
	assert.Equal(t, got, mgr.List())
}

func TestManager_List_MissingDir(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing"), "", nil)
	assert.Empty(t, mgr.List())
}

func TestManager_Load(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "CANON.yml"), `
font:
  file: DS-Digital.ttf
  size_ratio: 0.04
position:
  anchor: top-left
format:
  date_pattern: "%Y-%m-%d"
  prefix: "'"
effects:
  shadow_enabled: false
`)

	mgr := NewManager(dir, "", nil)
	st, err := mgr.Load("CANON")
	require.NoError(t, err)

	assert.Equal(t, "CANON", st.Name)
	assert.Equal(t, "DS-Digital.ttf", st.Font.File)
	assert.Equal(t, 0.04, st.Font.SizeRatio)
	assert.Equal(t, model.AnchorTopLeft, st.Position.Anchor)
	assert.Equal(t, 0.02, st.Position.MarginXRatio, "missing key keeps default")
	assert.Equal(t, "%Y-%m-%d", st.Format.DatePattern)
	assert.Equal(t, "'", st.Format.Prefix)
	assert.False(t, st.Effects.ShadowEnabled)
	assert.Equal(t, 1.0, st.Effects.Opacity)
	assert.Equal(t, model.DefaultStyle().Color, st.Color, "missing section keeps defaults")
}

func TestManager_Load_NullSectionUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bare.yaml"), "font:\ncolor:\n")

	st, err := NewManager(dir, "", nil).Load("bare")
	require.NoError(t, err)

	want := model.DefaultStyle()
	want.Name = "bare"
	assert.Equal(t, want, st)
}

func TestManager_Load_Cached(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "NIKON.yml")
	writeFile(t, path, "format:\n  date_pattern: \"%d.%m.%y\"\n")

	mgr := NewManager(dir, "", nil)
	first, err := mgr.Load("NIKON")
	require.NoError(t, err)

	// edits on disk are not picked up while the style is cached
	writeFile(t, path, "format:\n  date_pattern: \"changed\"\n")
	second, err := mgr.Load("NIKON")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	hits, misses := mgr.CacheStats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)

	mgr.ClearCache()
	third, err := mgr.Load("NIKON")
	require.NoError(t, err)
	assert.Equal(t, "changed", third.Format.DatePattern)
}

func TestManager_Load_NotFound(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "broken.yml"), "font: [unclosed\n")

	mgr := NewManager(dir, "", nil)

	for _, name := range []string{"missing", "", "../etc", "broken"} {
		_, err := mgr.Load(name)
		assert.True(t, errors.Is(err, ErrStyleNotFound), "name %q: %v", name, err)
	}
}

func TestManager_FontPath(t *testing.T) {
	fonts := t.TempDir()
	writeFile(t, filepath.Join(fonts, "Courier_Prime", "CourierPrime-Bold.ttf"), "x")
	writeFile(t, filepath.Join(fonts, "Direct.ttf"), "x")
	writeFile(t, filepath.Join(fonts, "nested", "deep", "Special-Mono.otf"), "x")
	writeFile(t, filepath.Join(fonts, "nested", "Special-Mono.txt"), "x")

	mgr := NewManager("", fonts, nil)

	tests := []struct {
		name string
		file string
		want string
	}{
		{"mapping table", "Courier-Prime.ttf", filepath.Join(fonts, "Courier_Prime", "CourierPrime-Bold.ttf")},
		{"direct path", "Direct.ttf", filepath.Join(fonts, "Direct.ttf")},
		{"stem search", "Special-Mono.ttf", filepath.Join(fonts, "nested", "deep", "Special-Mono.otf")},
		{"unresolved", "Nothing.ttf", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mgr.FontPath(tt.file))
		})
	}
}

func TestManager_Face_FallsBackAndCaches(t *testing.T) {
	fonts := t.TempDir()
	writeFile(t, filepath.Join(fonts, "Broken.ttf"), "not a font")

	mgr := NewManager("", fonts, nil)

	face := mgr.Face("Broken.ttf", 24)
	require.NotNil(t, face)
	assert.NotEqual(t, basicfont.Face7x13, face, "embedded font is preferred over the bitmap face")
	assert.Positive(t, face.Metrics().Height.Ceil())

	again := mgr.Face("Broken.ttf", 24)
	assert.Same(t, face, again)

	other := mgr.Face("Missing.ttf", 30)
	require.NotNil(t, other)

	hits, misses := mgr.FaceStats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 2, misses)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "CANON", DisplayName("CANON&佳能", "en"))
	assert.Equal(t, "佳能", DisplayName("CANON&佳能", "zh"))
	assert.Equal(t, "LEICA", DisplayName("LEICA", "zh"))
	assert.Equal(t, "SONY", DisplayName("SONY&", "zh"))
}

func TestCache(t *testing.T) {
	c := NewCache[string, int]()
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Put("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, c.Len())

	hits, misses := c.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)

	c.Clear()
	assert.Equal(t, 0, c.Len())
	hits, misses = c.Stats()
	assert.Zero(t, hits+misses)
}

func TestManager_ShippedStyles(t *testing.T) {
	mgr := NewManager(filepath.Join("..", "..", "styles"), "", nil)

	names := mgr.List()
	assert.Equal(t, []string{"CANON", "NIKON", "FUJIFILM", "SONY"}, names)

	for _, name := range names {
		st, err := mgr.Load(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, st.Format.DatePattern, name)
		assert.Positive(t, st.Font.SizeRatio, name)
	}

	canon, err := mgr.Load("CANON")
	require.NoError(t, err)
	assert.Equal(t, "%y %m %d", canon.Format.DatePattern)
	assert.Equal(t, model.AnchorBottomRight, canon.Position.Anchor)
}
