package metadata

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/anima-wear/engine/core"
)

/**
 * @brief Texture coordinate wrapping, applied to both S and T.
 */
type TextureWrap int

const (
	TextureWrapRepeat TextureWrap = iota
	TextureWrapClampToEdge
)

/**
 * @brief Texture sampling filter.
 */
type TextureFilter int

const (
	TextureFilterLinear TextureFilter = iota
	/** @brief Linear sampling across mip levels. Minification only. */
	TextureFilterLinearMipmap
)

/**
 * @brief Represents various types of textures.
 */
type TextureType int

const (
	/** @brief A standard two-dimensional texture. */
	TextureType2d TextureType = iota
	/** @brief A cube texture, used for cubemaps. */
	TextureTypeCube
)

/**
 * @brief Cube-map faces in upload order.
 */
type CubeFace int

const (
	CubeFacePositiveX CubeFace = iota
	CubeFaceNegativeX
	CubeFacePositiveY
	CubeFaceNegativeY
	CubeFacePositiveZ
	CubeFaceNegativeZ
	CubeFaceCount
)

func (f CubeFace) String() string {
	switch f {
	case CubeFacePositiveX:
		return "+x"
	case CubeFaceNegativeX:
		return "-x"
	case CubeFacePositiveY:
		return "+y"
	case CubeFaceNegativeY:
		return "-y"
	case CubeFacePositiveZ:
		return "+z"
	case CubeFaceNegativeZ:
		return "-z"
	}
	return fmt.Sprintf("face(%d)", int(f))
}

/**
 * @brief Sampling parameters of a texture.
 */
type TextureConfig struct {
	Wrap      TextureWrap
	MinFilter TextureFilter
	MagFilter TextureFilter
}

// DefaultTexture2DConfig repeats and filters linearly with mipmaps generated after upload.
func DefaultTexture2DConfig() TextureConfig {
	return TextureConfig{
		Wrap:      TextureWrapRepeat,
		MinFilter: TextureFilterLinear,
		MagFilter: TextureFilterLinear,
	}
}

// DefaultCubeMapConfig clamps to the edge so face seams do not bleed.
func DefaultCubeMapConfig() TextureConfig {
	return TextureConfig{
		Wrap:      TextureWrapClampToEdge,
		MinFilter: TextureFilterLinear,
		MagFilter: TextureFilterLinear,
	}
}

// Validate rejects combinations the GL backend cannot honour. Cube maps carry
// no mip chain, so a mipmap minification filter is invalid for them.
func (c TextureConfig) Validate(textureType TextureType) error {
	switch c.Wrap {
	case TextureWrapRepeat, TextureWrapClampToEdge:
	default:
		return fmt.Errorf("wrap mode %d: %w", c.Wrap, core.ErrInvalidTextureConfig)
	}
	switch c.MinFilter {
	case TextureFilterLinear:
	case TextureFilterLinearMipmap:
		if textureType == TextureTypeCube {
			return fmt.Errorf("cube maps have no mipmaps: %w", core.ErrInvalidTextureConfig)
		}
	default:
		return fmt.Errorf("min filter %d: %w", c.MinFilter, core.ErrInvalidTextureConfig)
	}
	if c.MagFilter != TextureFilterLinear {
		return fmt.Errorf("mag filter %d: %w", c.MagFilter, core.ErrInvalidTextureConfig)
	}
	return nil
}

// RequiresPowerOfTwo reports whether GL ES 2.0 needs power-of-two
// dimensions to sample with this config.
func (c TextureConfig) RequiresPowerOfTwo() bool {
	return c.Wrap == TextureWrapRepeat || c.MinFilter == TextureFilterLinearMipmap
}

// ParseTextureWrap accepts "repeat" and "clamp_to_edge". Empty means repeat.
func ParseTextureWrap(s string) (TextureWrap, error) {
	switch strings.ToLower(s) {
	case "", "repeat":
		return TextureWrapRepeat, nil
	case "clamp_to_edge", "clamptoedge", "clamp":
		return TextureWrapClampToEdge, nil
	}
	return 0, fmt.Errorf("wrap %q: %w", s, core.ErrInvalidTextureConfig)
}

// ParseTextureFilter accepts "linear" and "linear_mipmap". Empty means linear.
func ParseTextureFilter(s string) (TextureFilter, error) {
	switch strings.ToLower(s) {
	case "", "linear":
		return TextureFilterLinear, nil
	case "linear_mipmap", "linearmipmap", "mipmap":
		return TextureFilterLinearMipmap, nil
	}
	return 0, fmt.Errorf("filter %q: %w", s, core.ErrInvalidTextureConfig)
}
