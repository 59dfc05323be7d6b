package metadata

/**
 * @brief A programmable pipeline stage.
 */
type ShaderStage int

const (
	ShaderStageVertex ShaderStage = iota
	ShaderStageFragment
)

func (s ShaderStage) String() string {
	switch s {
	case ShaderStageVertex:
		return "vertex"
	case ShaderStageFragment:
		return "fragment"
	}
	return "unknown"
}

/**
 * @brief GLSL ES source for one program.
 */
type ShaderSource struct {
	/** @brief Name used in logs and errors, e.g. "cube". */
	Name     string
	Vertex   string
	Fragment string
}

/**
 * @brief Names a program must expose once linked.
 */
type ShaderBindings struct {
	/** @brief Attribute names; element i is bound to location i before linking. */
	Attributes []string
	/** @brief Uniform names resolved after linking. */
	Uniforms []string
}
