// Package model defines the core data structures used throughout
// the photo-timestamper application.
//
// # Style
//
// Style is the declarative description of how a watermark looks. Styles are
// loaded by the style package and never mutated afterwards:
//
//	st := model.DefaultStyle()
//	fmt.Println(st.Font.SizeRatio)      // 0.025
//	fmt.Println(st.Position.Anchor)     // "bottom-right"
//
// # Time Source and Output
//
// TimeSourceConfig chooses where a photo's timestamp comes from, and
// OutputConfig controls where and how the stamped file is written.
//
// # Output Paths
//
// OutputPath computes the destination of a stamped photo from a filename
// pattern:
//
//	cfg := model.DefaultOutputConfig()
//	cfg.FilenamePattern = "{date}_{time}_{index}"
//	path := model.OutputPath("/photos/IMG_0001.jpg", ts, 7, cfg)
//	// "/photos/20230704_101500_007.jpg"
//
// Available placeholders: {original}, {date}, {time}, {index}
package model
