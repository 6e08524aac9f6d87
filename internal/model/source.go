package model

// TimeMode names a timestamp source or fallback policy.
type TimeMode string

const (
	// TimeExif reads the capture time from EXIF metadata.
	TimeExif TimeMode = "exif"

	// TimeFileModified uses the file's modification time.
	TimeFileModified TimeMode = "file_modified"

	// TimeFileCreated uses the file's birth time, or its status-change time
	// on filesystems that do not record one.
	TimeFileCreated TimeMode = "file_created"

	// TimeCustom uses a fixed, user-supplied time.
	TimeCustom TimeMode = "custom"

	// TimeError is a fallback mode only: fail when EXIF has no usable time.
	TimeError TimeMode = "error"
)

// ValidPrimary reports whether m can be used as a primary time source.
func (m TimeMode) ValidPrimary() bool {
	switch m {
	case TimeExif, TimeFileModified, TimeFileCreated, TimeCustom:
		return true
	}
	return false
}

// ValidFallback reports whether m can be used as a fallback mode.
func (m TimeMode) ValidFallback() bool {
	switch m {
	case TimeError, TimeFileModified, TimeFileCreated, TimeCustom:
		return true
	}
	return false
}

// TimeSourceConfig selects how a photo's timestamp is resolved.
type TimeSourceConfig struct {
	Primary      TimeMode `json:"primary"`
	FallbackMode TimeMode `json:"fallback_mode"`

	// CustomTime is "2006-01-02 15:04:05" or "2006-01-02".
	CustomTime string `json:"custom_time"`
}

// DefaultTimeSourceConfig reads EXIF and fails when it is missing.
func DefaultTimeSourceConfig() TimeSourceConfig {
	return TimeSourceConfig{
		Primary:      TimeExif,
		FallbackMode: TimeError,
	}
}

// OutputConfig controls where and how stamped photos are written.
type OutputConfig struct {
	SameDirectory   bool   `json:"same_directory"`
	CustomDirectory string `json:"custom_directory"`

	// FilenamePattern is the output file name without extension.
	// Supports {original}, {date}, {time} and {index}.
	FilenamePattern string `json:"filename_pattern"`

	JPEGQuality       int  `json:"jpeg_quality"`
	PreserveExif      bool `json:"preserve_exif"`
	OverwriteExisting bool `json:"overwrite_existing"`
}

// DefaultOutputConfig writes "<name>_stamped.jpg" next to the source.
func DefaultOutputConfig() OutputConfig {
	return OutputConfig{
		SameDirectory:     true,
		FilenamePattern:   "{original}_stamped",
		JPEGQuality:       95,
		PreserveExif:      true,
		OverwriteExisting: false,
	}
}
