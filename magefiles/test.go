//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Runs every package test with the race detector.
func (Test) All() error {
	if _, err := executeCmd("go", withArgs("test", "-race", "-count=1", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs go vet and go mod tidy.
func (Test) Lint() error {
	mg.Deps(tidy)
	_, err := executeCmd("go", withArgs("vet", "./..."), withStream())
	return err
}
