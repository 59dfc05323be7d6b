//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

const (
	binDir     = "bin"
	previewBin = "watchface-preview"
	appPackage = "./cmd/watchface"
)

type Build mg.Namespace

// Builds the desktop preview. Needs cgo with the GLFW and GLES2 headers.
func (Build) Preview() error {
	fmt.Println("Building preview...")
	out := filepath.Join(binDir, previewBin)
	if _, err := executeCmd("go", withArgs("build", "-o", out, "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Packages the watch face as an Android APK with gomobile. The assets
// directory is linked next to the app package, where gomobile expects it.
func (Build) Apk() error {
	mg.Deps(linkBundleAssets)
	fmt.Println("Building apk...")
	out := filepath.Join(binDir, "watchface.apk")
	if _, err := executeCmd("gomobile", withArgs("build", "-target=android", "-androidapi", "26", "-o", out, appPackage), withStream()); err != nil {
		return err
	}
	return nil
}

func linkBundleAssets() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return err
	}
	link := filepath.Join("cmd", "watchface", "assets")
	if _, err := os.Lstat(link); err == nil {
		return nil
	}
	return os.Symlink(filepath.Join("..", "..", "assets"), link)
}
