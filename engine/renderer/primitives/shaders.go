package primitives

import (
	"embed"
	"fmt"

	"github.com/spaghettifunk/anima-wear/engine/renderer/metadata"
)

//go:embed shaders/*.vert shaders/*.frag
var builtinShaders embed.FS

func shaderFile(kind Kind) string {
	switch kind {
	case KindCube, KindTextureCube:
		return "cube"
	case KindSquare:
		return "square"
	case KindMirrorCube:
		return "mirror"
	case KindSkyBox:
		return "skybox"
	}
	return ""
}

// DefaultShader returns the built-in GLSL ES 1.00 source for kind.
func DefaultShader(kind Kind) metadata.ShaderSource {
	file := shaderFile(kind)
	vertex, err := builtinShaders.ReadFile(fmt.Sprintf("shaders/%s.vert", file))
	if err != nil {
		panic(err)
	}
	fragment, err := builtinShaders.ReadFile(fmt.Sprintf("shaders/%s.frag", file))
	if err != nil {
		panic(err)
	}
	return metadata.ShaderSource{Name: kind.String(), Vertex: string(vertex), Fragment: string(fragment)}
}

// ShaderFileName is the asset base name an override for kind is read from,
// e.g. "mirror" for mirror.vert and mirror.frag.
func ShaderFileName(kind Kind) string {
	return shaderFile(kind)
}

// Bindings lists the attribute and uniform names a program for kind must
// expose. Attributes are bound to locations 0, 1 in this order.
func Bindings(kind Kind) metadata.ShaderBindings {
	switch kind {
	case KindSquare:
		return metadata.ShaderBindings{
			Attributes: metadata.TexturedLayout.AttributeNames(),
			Uniforms:   []string{"u_MVPMatrix"},
		}
	case KindMirrorCube:
		return metadata.ShaderBindings{
			Attributes: metadata.NormalLayout.AttributeNames(),
			Uniforms:   []string{"model", "view", "projection", "cameraPos"},
		}
	case KindSkyBox:
		return metadata.ShaderBindings{
			Attributes: metadata.PositionLayout.AttributeNames(),
			Uniforms:   []string{"view", "projection"},
		}
	}
	return metadata.ShaderBindings{
		Attributes: metadata.TexturedLayout.AttributeNames(),
		Uniforms:   []string{"model", "view", "projection"},
	}
}

func shaderFor(kind Kind, opts Options) metadata.ShaderSource {
	if opts.Shader != nil {
		src := *opts.Shader
		if src.Name == "" {
			src.Name = kind.String()
		}
		return src
	}
	return DefaultShader(kind)
}
