package gles

import (
	"fmt"

	"github.com/spaghettifunk/anima-wear/engine/renderer/metadata"
	"golang.org/x/mobile/gl"
)

// ShaderCompileError carries the driver's info log for a stage that failed to compile.
type ShaderCompileError struct {
	Program string
	Stage   metadata.ShaderStage
	InfoLog string
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("compile %s shader of %q: %s", e.Stage, e.Program, e.InfoLog)
}

// LinkError carries the driver's info log for a program that failed to link.
type LinkError struct {
	Program string
	InfoLog string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("link program %q: %s", e.Program, e.InfoLog)
}

type LocationKind int

const (
	LocationAttribute LocationKind = iota
	LocationUniform
)

func (k LocationKind) String() string {
	if k == LocationUniform {
		return "uniform"
	}
	return "attribute"
}

// AttributeNotFoundError is returned when a linked program does not expose a
// name the caller needs, usually a typo between Go and GLSL.
type AttributeNotFoundError struct {
	Program string
	Name    string
	Kind    LocationKind
}

func (e *AttributeNotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found in program %q", e.Kind, e.Name, e.Program)
}

// TextureAllocationError means the driver handed back the zero texture name.
type TextureAllocationError struct {
	Type metadata.TextureType
}

func (e *TextureAllocationError) Error() string {
	kind := "2d"
	if e.Type == metadata.TextureTypeCube {
		kind = "cube map"
	}
	return fmt.Sprintf("allocate %s texture: driver returned texture 0", kind)
}

// GLError is a code drained from glGetError after an operation.
type GLError struct {
	Op   string
	Code gl.Enum
}

func (e *GLError) Error() string {
	return fmt.Sprintf("%s caused GL error 0x%x: %s", e.Op, uint32(e.Code), ErrorName(e.Code))
}

// ErrorName maps a glGetError code to its symbolic name.
func ErrorName(code gl.Enum) string {
	switch code {
	case gl.NO_ERROR:
		return "NO_ERROR"
	case gl.INVALID_ENUM:
		return "INVALID_ENUM"
	case gl.INVALID_VALUE:
		return "INVALID_VALUE"
	case gl.INVALID_OPERATION:
		return "INVALID_OPERATION"
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return "INVALID_FRAMEBUFFER_OPERATION"
	case gl.OUT_OF_MEMORY:
		return "OUT_OF_MEMORY"
	}
	return "UNKNOWN"
}
