package asset

import "fmt"

// AssetLoadError reports that the asset behind Reference could not be fetched or parsed.
// The loader never substitutes anything on failure; callers pick their own fallback.
type AssetLoadError struct {
	Reference string
	Cause     error
}

func (e *AssetLoadError) Error() string {
	return fmt.Sprintf("asset: load %q: %v", e.Reference, e.Cause)
}

func (e *AssetLoadError) Unwrap() error {
	return e.Cause
}

func loadError(ref string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*AssetLoadError); ok {
		return err
	}
	return &AssetLoadError{Reference: ref, Cause: err}
}
