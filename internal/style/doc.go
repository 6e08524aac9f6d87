// Package style discovers, loads and caches watermark styles and resolves
// the fonts they reference.
//
// # Style Store
//
// A style is a YAML file named after the style in the styles directory
// (".yml" or ".yaml") with the sections font, color, position, format and
// effects. Missing sections and keys take the defaults of model.DefaultStyle.
//
//	mgr := style.NewManager("styles", "fonts", logger)
//	names := mgr.List()            // brand styles first
//	st, err := mgr.Load("CANON")   // read once, then served from cache
//
// # Fonts
//
// Font files are resolved through a fixed table of logical names, then as a
// path under the fonts directory, then by searching the fonts directory for
// a matching file stem. Face never fails: unresolved fonts fall back to the
// embedded Go Regular face.
package style
