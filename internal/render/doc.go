// Package render burns a formatted timestamp into an image.
//
// A Renderer is bound to one Style and a FontProvider. Rendering never
// mutates its input: the source is copied into a fresh RGBA canvas and the
// text, with an optional drop shadow, is alpha-blended over that copy.
//
// Layout follows a few fixed rules:
//   - Font size is max(12, floor(short edge * size_ratio)).
//   - The ink box of the text is placed at the style's anchor, inset by
//     margins scaled to the image width and height.
//   - Shadow offsets are authored for a 30px font and scale with the
//     computed size.
//
// Example:
//
//	r := render.New(st, styles)
//	out, err := r.Render(img, ts)
//	thumb, err := r.RenderPreview(img, ts, image.Pt(800, 600))
package render
