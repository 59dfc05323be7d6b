package loaders

import "io"

// Source opens asset files by slash-separated name, relative to the asset root.
type Source interface {
	Open(name string) (io.ReadCloser, error)
	// Path returns a filesystem path for name, or "" when the asset lives in
	// a bundle that has no filesystem presence.
	Path(name string) string
}

func readAll(src Source, name string) ([]byte, error) {
	f, err := src.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
