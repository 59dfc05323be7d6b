package assets

import (
	"github.com/spaghettifunk/anima-wear/engine/assets/loaders"
	"github.com/spaghettifunk/anima-wear/engine/renderer/metadata"
)

type Loader interface {
	Load(src loaders.Source, name string, params interface{}) (*metadata.Resource, error) // `interface{}` here allows loaders to take per-type parameters
	Unload(*metadata.Resource) error
}
