package render

import (
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/disintegration/imaging"
	"github.com/handiism/photo-timestamper/internal/model"
	"github.com/lestrrat-go/strftime"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

const (
	// MinFontSize is the smallest font size Render will use.
	MinFontSize = 12

	// shadowBaseSize is the font size shadow offsets are authored for.
	shadowBaseSize = 30.0
)

// ErrEmptyImage is returned when the input has no pixels.
var ErrEmptyImage = errors.New("empty image")

// FontProvider returns a usable face for a font file at a pixel size.
//
// *style.Manager satisfies it and never returns nil.
type FontProvider interface {
	Face(fontFile string, size int) font.Face
}

// Renderer draws a Style's timestamp onto images.
type Renderer struct {
	style model.Style
	fonts FontProvider
}

// New creates a Renderer for st.
func New(st model.Style, fonts FontProvider) *Renderer {
	return &Renderer{style: st, fonts: fonts}
}

// Style returns the style the Renderer draws with.
func (r *Renderer) Style() model.Style {
	return r.style
}

// Text formats ts as prefix + strftime(date_pattern) + suffix.
func (r *Renderer) Text(ts time.Time) (string, error) {
	f := r.style.Format
	s, err := strftime.Format(f.DatePattern, ts)
	if err != nil {
		return "", fmt.Errorf("date pattern %q: %w", f.DatePattern, err)
	}
	return f.Prefix + s + f.Suffix, nil
}

// FontSize returns the pixel size used for an image of the given dimensions.
func (r *Renderer) FontSize(width, height int) int {
	short := min(width, height)
	size := int(math.Floor(float64(short) * r.style.Font.SizeRatio))
	return max(MinFontSize, size)
}

// Position returns the top-left corner of a textW x textH box placed at the
// style's anchor inside a width x height image.
func (r *Renderer) Position(width, height, textW, textH int) image.Point {
	p := r.style.Position
	mx := int(float64(width) * p.MarginXRatio)
	my := int(float64(height) * p.MarginYRatio)

	switch p.Anchor {
	case model.AnchorBottomLeft:
		return image.Pt(mx, height-textH-my)
	case model.AnchorTopRight:
		return image.Pt(width-textW-mx, my)
	case model.AnchorTopLeft:
		return image.Pt(mx, my)
	default:
		return image.Pt(width-textW-mx, height-textH-my)
	}
}

// Render returns a copy of img with the timestamp burned in. img is not
// modified. The result always starts at the origin.
func (r *Renderer) Render(img image.Image, ts time.Time) (*image.RGBA, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}

	text, err := r.Text(ts)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	// Flatten onto opaque black so the output carries no alpha.
	draw.Draw(canvas, canvas.Bounds(), image.Black, image.Point{}, draw.Src)
	draw.Draw(canvas, canvas.Bounds(), img, b.Min, draw.Over)

	size := r.FontSize(b.Dx(), b.Dy())
	face := r.fonts.Face(r.style.Font.File, size)

	ink, _ := font.BoundString(face, text)
	minX, minY := ink.Min.X.Floor(), ink.Min.Y.Floor()
	textW, textH := ink.Max.X.Ceil()-minX, ink.Max.Y.Ceil()-minY

	pos := r.Position(b.Dx(), b.Dy(), textW, textH)
	fx := r.style.Effects

	if fx.ShadowEnabled {
		scale := float64(size) / shadowBaseSize
		ox := int(float64(fx.ShadowOffsetX) * scale)
		oy := int(float64(fx.ShadowOffsetY) * scale)
		shadow := ParseColor(r.style.Color.Shadow, fx.ShadowOpacity)
		drawText(canvas, face, text, pos.Add(image.Pt(ox, oy)), minX, minY, image.NewUniform(shadow))
	}

	fill := ParseColor(r.style.Color.Text, fx.Opacity)
	drawText(canvas, face, text, pos, minX, minY, image.NewUniform(fill))

	return canvas, nil
}

// drawText places the ink box of text with its top-left corner at at.
func drawText(dst draw.Image, face font.Face, text string, at image.Point, minX, minY int, src image.Image) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  src,
		Face: face,
		Dot:  fixed.P(at.X-minX, at.Y-minY),
	}
	d.DrawString(text)
}

// RenderPreview renders img and scales the result to fit inside box,
// keeping the aspect ratio. Images already inside box are not enlarged.
func (r *Renderer) RenderPreview(img image.Image, ts time.Time, box image.Point) (image.Image, error) {
	out, err := r.Render(img, ts)
	if err != nil {
		return nil, err
	}

	b := out.Bounds()
	w, h := FitSize(b.Dx(), b.Dy(), box)
	if w == b.Dx() && h == b.Dy() {
		return out, nil
	}
	return imaging.Resize(out, w, h, imaging.Lanczos), nil
}

// FitSize returns the dimensions of a width x height image scaled to fit
// within box. When the image is wider than the box (by aspect ratio) the
// width is bound to box.X, otherwise the height is bound to box.Y.
//
// Images that already fit, and non-positive boxes, keep their size.
func FitSize(width, height int, box image.Point) (int, int) {
	if box.X <= 0 || box.Y <= 0 || width <= 0 || height <= 0 {
		return width, height
	}
	if width <= box.X && height <= box.Y {
		return width, height
	}

	ratio := float64(width) / float64(height)
	boxRatio := float64(box.X) / float64(box.Y)

	if ratio > boxRatio {
		return box.X, max(1, int(float64(box.X)/ratio))
	}
	return max(1, int(float64(box.Y)*ratio)), box.Y
}
