package assets

import "fmt"

// ResourceLoadError reports an asset that could not be read or decoded.
type ResourceLoadError struct {
	Name string
	Err  error
}

func (e *ResourceLoadError) Error() string {
	return fmt.Sprintf("load asset %q: %v", e.Name, e.Err)
}

func (e *ResourceLoadError) Unwrap() error {
	return e.Err
}
