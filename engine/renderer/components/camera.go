package components

import (
	"github.com/chewxy/math32"
	"github.com/spaghettifunk/anima-wear/engine/math"
)

// minDistance keeps the eye from collapsing onto the target.
const minDistance float32 = 0.1

/**
 * @brief A look-at camera orbiting a target point. The eye is kept in
 * spherical coordinates around the target so it can be spun every frame
 * without drift.
 */
type Camera struct {
	/** @brief The point the camera looks at. */
	Target math.Vec3
	/** @brief The up hint passed to the look-at matrix. */
	Up math.Vec3
	/** @brief Degrees per second the eye orbits around Up. Zero keeps the camera fixed. */
	OrbitSpeed float32

	distance float32
	/** @brief Rotation around the up axis, radians. */
	yaw float32
	/** @brief Elevation above the target's horizontal plane, radians. */
	pitch float32

	/** @brief Internal flag used to determine when the view matrix needs to be rebuilt. */
	IsDirty bool
	/**
	 * @brief The view matrix of this camera.
	 * NOTE: IMPORTANT: Do not get this directly, use GetView() instead
	 * so the view matrix is recalculated when needed.
	 */
	ViewMatrix math.Mat4
}

func NewCamera(eye, target, up math.Vec3) *Camera {
	camera := &Camera{}
	camera.Reset(eye, target, up)
	return camera
}

func (c *Camera) Reset(eye, target, up math.Vec3) {
	c.Target = target
	c.Up = up
	c.SetPosition(eye)
}

func (c *Camera) GetPosition() math.Vec3 {
	cosPitch := math32.Cos(c.pitch)
	offset := math.NewVec3(
		c.distance*cosPitch*math32.Sin(c.yaw),
		c.distance*math32.Sin(c.pitch),
		c.distance*cosPitch*math32.Cos(c.yaw),
	)
	return c.Target.Add(offset)
}

func (c *Camera) SetPosition(position math.Vec3) {
	offset := position.Sub(c.Target)
	c.distance = offset.Length()
	if c.distance < minDistance {
		c.distance = minDistance
	}
	c.yaw = math32.Atan2(offset.X, offset.Z)
	c.pitch = math32.Asin(math.Clamp(offset.Y/c.distance, -1, 1))
	c.IsDirty = true
}

func (c *Camera) Distance() float32 {
	return c.distance
}

func (c *Camera) GetView() math.Mat4 {
	if c.IsDirty {
		c.ViewMatrix = math.NewMat4LookAt(c.GetPosition(), c.Target, c.Up)
		c.IsDirty = false
	}
	return c.ViewMatrix
}

// Update advances the orbit by deltaTime seconds.
func (c *Camera) Update(deltaTime float64) {
	if c.OrbitSpeed == 0 {
		return
	}
	c.Yaw(c.OrbitSpeed * float32(deltaTime))
}

// Yaw turns the eye around the target, in degrees.
func (c *Camera) Yaw(amount float32) {
	c.yaw = math.DegToRad(math.WrapDegrees(math.RadToDeg(c.yaw) + amount))
	c.IsDirty = true
}

// Pitch raises the eye, in degrees.
func (c *Camera) Pitch(amount float32) {
	c.pitch += math.DegToRad(amount)

	// Clamp to avoid Gimbal lock.
	limit := float32(1.55334306) // 89 degrees, or equivalent to deg_to_rad(89.0f);
	c.pitch = math.Clamp(c.pitch, -limit, limit)

	c.IsDirty = true
}

// MoveForward dollies towards the target.
func (c *Camera) MoveForward(amount float32) {
	c.distance -= amount
	if c.distance < minDistance {
		c.distance = minDistance
	}
	c.IsDirty = true
}

func (c *Camera) MoveBackward(amount float32) {
	c.MoveForward(-amount)
}
