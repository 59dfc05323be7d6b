package assets

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/anima-wear/engine/assets/loaders"
	"github.com/spaghettifunk/anima-wear/engine/core"
	"github.com/spaghettifunk/anima-wear/engine/renderer/metadata"
)

type AssetInfo struct {
	Name       string
	Type       metadata.ResourceType
	LastLoaded time.Time
	Modified   time.Time
}

// AssetManager indexes the asset directory, loads assets through per-type
// loaders and, when watching, records which assets changed on disk. The
// watcher goroutine only touches the index; loading happens on the caller's
// goroutine.
type AssetManager struct {
	source  loaders.Source
	root    string
	assets  map[string]AssetInfo
	changed map[string]struct{}
	loaders map[metadata.ResourceType]Loader

	mutex sync.RWMutex

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
}

// NewAssetManager serves assets from source. Sources other than DirSource
// cannot be indexed or watched; their assets are indexed as they load.
func NewAssetManager(source loaders.Source) *AssetManager {
	am := &AssetManager{
		source:  source,
		assets:  make(map[string]AssetInfo),
		changed: make(map[string]struct{}),
		loaders: make(map[metadata.ResourceType]Loader),
	}
	if dir, ok := source.(DirSource); ok {
		am.root = dir.Root
	}

	// Register loaders
	am.registerLoader(metadata.ResourceTypeText, &loaders.TextLoader{})
	am.registerLoader(metadata.ResourceTypeConfig, &loaders.TextLoader{})
	am.registerLoader(metadata.ResourceTypeShader, &loaders.ShaderLoader{})
	am.registerLoader(metadata.ResourceTypeImage, &loaders.ImageLoader{})
	am.registerLoader(metadata.ResourceTypeCubeMap, &loaders.CubeMapLoader{})
	am.registerLoader(metadata.ResourceTypeBitmapFont, &loaders.BitmapFontLoader{})
	am.registerLoader(metadata.ResourceTypeSystemFont, &loaders.SystemFontLoader{})
	return am
}

// Initialize indexes the asset directory and, if watch is set, starts
// watching it and every sub-directory.
func (am *AssetManager) Initialize(watch bool) error {
	if am.root == "" {
		if watch {
			core.LogWarn("asset source cannot be watched, hot reload disabled")
		}
		return nil
	}
	if err := am.index(); err != nil {
		return err
	}
	if !watch {
		return nil
	}

	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	am.fsnotify = fsWatch
	am.done = make(chan struct{})
	am.stopped = make(chan struct{})
	if err := am.addRecursive(am.root); err != nil {
		fsWatch.Close()
		am.fsnotify = nil
		return err
	}
	go am.start()
	core.LogInfo("watching assets in %s", am.root)
	return nil
}

func (am *AssetManager) index() error {
	return filepath.Walk(am.root, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fi.IsDir() {
			am.handleFileEvent(walkPath, false)
		}
		return nil
	})
}

// AddRecursive starts watching the named directory and all sub-directories.
func (am *AssetManager) addRecursive(name string) error {
	if am.isClosed {
		return errors.New("asset watcher already closed")
	}
	return am.watchRecursive(name, false)
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// LoadAsset loads name with the loader registered for resourceType. Every
// failure is a *ResourceLoadError.
func (am *AssetManager) LoadAsset(name string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	loader, loaderExists := am.loaders[resourceType]
	if !loaderExists {
		return nil, &ResourceLoadError{Name: name, Err: fmt.Errorf("no loader registered for asset type: %s", resourceType)}
	}

	res, err := loader.Load(am.source, name, params)
	if err != nil {
		return nil, &ResourceLoadError{Name: name, Err: err}
	}

	am.mutex.Lock()
	asset := am.assets[name]
	asset.Name = name
	asset.Type = resourceType
	asset.LastLoaded = time.Now()
	am.assets[name] = asset // Update the loaded time
	am.mutex.Unlock()

	return res, nil
}

func (am *AssetManager) UnloadAsset(resourceType metadata.ResourceType, asset *metadata.Resource) error {
	loader, ok := am.loaders[resourceType]
	if !ok {
		return fmt.Errorf("no loader registered for asset type: %s", resourceType)
	}
	return loader.Unload(asset)
}

// ReadTextAsset returns the contents of a text asset.
func (am *AssetManager) ReadTextAsset(name string) (string, error) {
	res, err := am.LoadAsset(name, metadata.ResourceTypeText, nil)
	if err != nil {
		return "", err
	}
	return res.Data.(string), nil
}

// DecodeImage decodes an image asset into RGBA8 pixels.
func (am *AssetManager) DecodeImage(name string) (*metadata.ImageData, error) {
	res, err := am.LoadAsset(name, metadata.ResourceTypeImage, &metadata.ImageResourceParams{})
	if err != nil {
		return nil, err
	}
	return res.Data.(*metadata.ImageData), nil
}

// LoadShader reads the <base>.vert and <base>.frag pair.
func (am *AssetManager) LoadShader(base string) (metadata.ShaderSource, error) {
	res, err := am.LoadAsset(base, metadata.ResourceTypeShader, nil)
	if err != nil {
		return metadata.ShaderSource{}, err
	}
	return res.Data.(metadata.ShaderSource), nil
}

// LoadCubeMap decodes six faces in +X, -X, +Y, -Y, +Z, -Z order.
func (am *AssetManager) LoadCubeMap(faces [metadata.CubeFaceCount]string) ([metadata.CubeFaceCount]*metadata.ImageData, error) {
	res, err := am.LoadAsset(faces[0], metadata.ResourceTypeCubeMap, faces)
	if err != nil {
		return [metadata.CubeFaceCount]*metadata.ImageData{}, err
	}
	return res.Data.([metadata.CubeFaceCount]*metadata.ImageData), nil
}

// Exists reports whether the index knows name. Bundle sources only know what
// has been loaded.
func (am *AssetManager) Exists(name string) bool {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	_, ok := am.assets[name]
	return ok
}

// Assets lists the indexed names of the given type, sorted.
func (am *AssetManager) Assets(resourceType metadata.ResourceType) []string {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	var names []string
	for name, info := range am.assets {
		if info.Type == resourceType {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Changed returns the assets written, created or removed since the last
// call, sorted, and clears the set.
func (am *AssetManager) Changed() []string {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	if len(am.changed) == 0 {
		return nil
	}
	names := make([]string, 0, len(am.changed))
	for name := range am.changed {
		names = append(names, name)
	}
	am.changed = make(map[string]struct{})
	sort.Strings(names)
	return names
}

// Shutdown stops the watcher. Safe to call when not watching.
func (am *AssetManager) Shutdown() {
	if am.fsnotify == nil || am.isClosed {
		return
	}
	am.isClosed = true
	close(am.done)
	<-am.stopped
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {

		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					am.watchRecursive(e.Name, false)
				}
				continue
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				am.handleFileEvent(e.Name, true)
			}
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				am.removeAsset(e.Name)
				am.fsnotify.Remove(e.Name)
			}

		case e, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", e)

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

// watchRecursive adds all directories under the given one to the watch list.
// Files created before the watch lands are picked up by the index walk.
func (am *AssetManager) watchRecursive(root string, unWatch bool) error {
	return filepath.Walk(root, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if unWatch {
				return am.fsnotify.Remove(walkPath)
			}
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath, false)
		return nil
	})
}

// assetName turns a filesystem path below the root into a slash-separated
// asset name.
func (am *AssetManager) assetName(fullPath string) string {
	rel, err := filepath.Rel(am.root, fullPath)
	if err != nil {
		return filepath.ToSlash(fullPath)
	}
	return filepath.ToSlash(rel)
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(fullPath string, modified bool) {
	name := am.assetName(fullPath)
	assetType := determineAssetType(name)
	if assetType == metadata.ResourceTypeNone {
		return
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()

	info := am.assets[name]
	info.Name = name
	info.Type = assetType
	if modified {
		info.Modified = time.Now()
		am.changed[name] = struct{}{}
	}
	am.assets[name] = info
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(fullPath string) {
	name := am.assetName(fullPath)

	am.mutex.Lock()
	defer am.mutex.Unlock()

	if _, ok := am.assets[name]; ok {
		delete(am.assets, name)
		am.changed[name] = struct{}{}
	}
}

func determineAssetType(name string) metadata.ResourceType {
	switch strings.ToLower(path.Ext(name)) {
	case ".vert", ".frag", ".glsl":
		return metadata.ResourceTypeShader
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp":
		return metadata.ResourceTypeImage
	case ".fnt":
		return metadata.ResourceTypeBitmapFont
	case ".ttf", ".otf":
		return metadata.ResourceTypeSystemFont
	case ".toml":
		return metadata.ResourceTypeConfig
	case ".txt":
		return metadata.ResourceTypeText
	default:
		return metadata.ResourceTypeNone
	}
}
