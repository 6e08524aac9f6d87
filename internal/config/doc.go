// Package config provides configuration management for photo-timestamper.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Validation of time-source modes and output quality
//   - Persisting the file list of the last session
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Time from EXIF, fail when it is missing
//	// Output "{original}_stamped.jpg" next to the source, quality 95
//	// EXIF preserved, existing files never overwritten
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.json")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// Values present in the file override the defaults key by key; sections or
// keys missing from the file keep their default values.
//
// # Saving Settings
//
//	settings.Output.JPEGQuality = 90
//	err := settings.Save("/path/to/config.json")
//
// # Sessions
//
// LoadSession, SaveSession and ClearSession keep the list of photos that were
// queued when the application last exited.
package config
