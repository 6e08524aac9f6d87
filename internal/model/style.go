package model

// Anchor names the image corner the watermark is attached to.
type Anchor string

const (
	AnchorBottomRight Anchor = "bottom-right"
	AnchorBottomLeft  Anchor = "bottom-left"
	AnchorTopRight    Anchor = "top-right"
	AnchorTopLeft     Anchor = "top-left"
)

// Style describes how a watermark is rendered.
//
// A Style is made of five sections which map one-to-one onto the sections
// of a style file:
//
//	font:
//	  file: DS-Digital.ttf
//	  size_ratio: 0.03
//	color:
//	  text: "#FF6B35"
//	  shadow: "#000000"
//	position:
//	  anchor: bottom-right
//	  margin_x_ratio: 0.03
//	  margin_y_ratio: 0.03
//	format:
//	  date_pattern: "%y %m %d"
//	effects:
//	  shadow_enabled: true
//	  shadow_opacity: 0.3
//
// Keys missing from a file keep the values of DefaultStyle.
type Style struct {
	// Name is the style's key in the style store (file name without extension).
	Name string `yaml:"-"`

	Font     FontSpec     `yaml:"font"`
	Color    ColorSpec    `yaml:"color"`
	Position PositionSpec `yaml:"position"`
	Format   FormatSpec   `yaml:"format"`
	Effects  EffectsSpec  `yaml:"effects"`
}

// FontSpec selects the watermark font.
type FontSpec struct {
	// File is a logical font name or a path relative to the fonts directory.
	File string `yaml:"file"`

	// SizeRatio is the font size as a fraction of the image's short edge.
	SizeRatio float64 `yaml:"size_ratio"`
}

// ColorSpec holds hex colors ("#RRGGBB" or "#RGB").
type ColorSpec struct {
	Text   string `yaml:"text"`
	Shadow string `yaml:"shadow"`
}

// PositionSpec places the watermark relative to an image corner.
type PositionSpec struct {
	Anchor Anchor `yaml:"anchor"`

	// MarginXRatio is scaled by the image width, MarginYRatio by its height.
	MarginXRatio float64 `yaml:"margin_x_ratio"`
	MarginYRatio float64 `yaml:"margin_y_ratio"`
}

// FormatSpec controls the watermark text.
type FormatSpec struct {
	// DatePattern is a strftime pattern, e.g. "%y %m %d".
	DatePattern string `yaml:"date_pattern"`
	Prefix      string `yaml:"prefix"`
	Suffix      string `yaml:"suffix"`
}

// EffectsSpec controls opacity and the drop shadow.
//
// Shadow offsets are authored for a 30px font and scaled with the
// rendered font size.
type EffectsSpec struct {
	ShadowEnabled bool    `yaml:"shadow_enabled"`
	ShadowOpacity float64 `yaml:"shadow_opacity"`
	ShadowOffsetX float64 `yaml:"shadow_offset_x"`
	ShadowOffsetY float64 `yaml:"shadow_offset_y"`
	Opacity       float64 `yaml:"opacity"`
}

// DefaultStyle returns a style with every per-field default set.
func DefaultStyle() Style {
	return Style{
		Font: FontSpec{
			File:      "Courier-Prime.ttf",
			SizeRatio: 0.025,
		},
		Color: ColorSpec{
			Text:   "#FF6B35",
			Shadow: "#000000",
		},
		Position: PositionSpec{
			Anchor:       AnchorBottomRight,
			MarginXRatio: 0.02,
			MarginYRatio: 0.02,
		},
		Format: FormatSpec{
			DatePattern: "%y %m %d",
		},
		Effects: EffectsSpec{
			ShadowEnabled: true,
			ShadowOpacity: 0.3,
			ShadowOffsetX: 2,
			ShadowOffsetY: 2,
			Opacity:       1.0,
		},
	}
}
