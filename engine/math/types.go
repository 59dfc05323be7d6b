package math

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

/**
 * @brief a 4x4 matrix stored column-major: element (row r, column c) lives at
 * Data[c*4+r]. This is the layout glUniformMatrix4fv expects with transpose=false.
 */
type Mat4 struct {
	/** @brief The matrix elements */
	Data [16]float32
}

/**
 * @brief The per-frame matrix set held by the scene driver.
 */
type TransformState struct {
	/** @brief Object space to world space. */
	Model Mat4
	/** @brief World space to view (camera) space. */
	View Mat4
	/** @brief View space to clip space. */
	Projection Mat4
	/** @brief Projection * View * Model, refreshed by UpdateMVP. */
	MVP Mat4
}

/**
 * @brief An angle accumulator that advances by a fixed step and wraps to [0, 360).
 */
type Spin struct {
	/** @brief The current angle in degrees. */
	Angle float32
	/** @brief Degrees added per Advance call. */
	Step float32
}
