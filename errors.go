package conceptrank

import "errors"

var (
	// ErrLoaderRequired is returned when an engine is created without a loader.
	ErrLoaderRequired = errors.New("concept loader required")

	// ErrLoadFailed wraps a loader failure. The previous snapshot, if any,
	// keeps serving.
	ErrLoadFailed = errors.New("concept load failed")

	// ErrNotLoaded is returned by queries before the first successful load.
	ErrNotLoaded = errors.New("concept dictionary not loaded")

	// ErrInvalidOption is returned when an option value is out of range.
	ErrInvalidOption = errors.New("invalid engine option")
)
