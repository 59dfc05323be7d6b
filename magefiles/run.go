//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the desktop preview with asset hot reload. PRESET picks a built-in scene.
func (Run) Preview() error {
	args := []string{"run", ".", "--watch"}
	if preset := getEnv("PRESET", ""); preset != "" {
		args = append(args, "--preset", preset)
	}
	if getEnv("DEBUG", "") != "" {
		args = append(args, "--debug")
	}
	fmt.Println("Run preview...")
	if _, err := executeCmd("go", withArgs(args...), withStream()); err != nil {
		return err
	}
	return nil
}
