package assets

import (
	"io"
	"os"
	"path/filepath"

	"golang.org/x/mobile/asset"
)

// DirSource serves assets from a directory on disk. It is the only source
// that can be watched for changes.
type DirSource struct {
	Root string
}

func (d DirSource) Open(name string) (io.ReadCloser, error) {
	return os.Open(d.Path(name))
}

func (d DirSource) Path(name string) string {
	return filepath.Join(d.Root, filepath.FromSlash(name))
}

// BundleSource serves assets packed into the application bundle (the APK
// assets/ directory on Android).
type BundleSource struct{}

func (BundleSource) Open(name string) (io.ReadCloser, error) {
	return asset.Open(name)
}

func (BundleSource) Path(string) string {
	return ""
}
