package math

// DefaultSpinStep is the per-frame rotation of the self-rotating primitives, in degrees.
const DefaultSpinStep float32 = 2

// NewSpin returns an accumulator starting at 0 degrees.
func NewSpin(step float32) *Spin {
	return &Spin{Step: step}
}

// Advance adds one step and wraps the result into [0, 360).
func (s *Spin) Advance() float32 {
	s.Angle = WrapDegrees(s.Angle + s.Step)
	return s.Angle
}

// Reset puts the angle back to 0.
func (s *Spin) Reset() {
	s.Angle = 0
}

/**
 * @brief Builds a model matrix: identity, translate, then rotate about axis.
 * The result is T * R, so the object spins in place at translation.
 */
func ComposeModel(angle_degrees float32, axis, translation Vec3) Mat4 {
	return NewMat4Translation(translation).Mul(NewMat4Rotation(angle_degrees, axis))
}

/**
 * @brief Same as ComposeModel with the angle scaled by translation.X, so
 * objects placed further along x spin faster (and in the opposite direction
 * for negative x).
 */
func ComposeSpinModel(angle_degrees float32, axis, translation Vec3) Mat4 {
	return ComposeModel(angle_degrees*translation.X, axis, translation)
}

/**
 * @brief Returns a copy of view with the translation column zeroed. The 3x3
 * rotation block and the bottom row are kept.
 */
func StripTranslation(view Mat4) Mat4 {
	view.Data[12] = 0
	view.Data[13] = 0
	view.Data[14] = 0
	return view
}

// NewTransformState returns a state with every matrix set to identity.
func NewTransformState() TransformState {
	id := NewMat4Identity()
	return TransformState{Model: id, View: id, Projection: id, MVP: id}
}

// ViewProjection returns Projection * View.
func (ts *TransformState) ViewProjection() Mat4 {
	return ts.Projection.Mul(ts.View)
}

// UpdateMVP recomputes MVP from the current model, view and projection.
func (ts *TransformState) UpdateMVP() Mat4 {
	ts.MVP = ts.ViewProjection().Mul(ts.Model)
	return ts.MVP
}

// SkyboxView returns the direction-only view used to draw the sky box.
func (ts *TransformState) SkyboxView() Mat4 {
	return StripTranslation(ts.View)
}
