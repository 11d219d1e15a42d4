package weapon

import "math"

// Vec3 is a point or direction in simulation space.
type Vec3 struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	Z float64 `yaml:"z" json:"z"`
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Scale returns v scaled by k.
func (v Vec3) Scale(k float64) Vec3 { return Vec3{v.X * k, v.Y * k, v.Z * k} }

// Cross returns v × o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Len returns the Euclidean length of v.
func (v Vec3) Len() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// Quat is a rotation quaternion. The zero value rotates nothing.
type Quat struct {
	W, X, Y, Z float64
}

// IdentityQuat returns the unit quaternion for "no rotation".
func IdentityQuat() Quat { return Quat{W: 1} }

// QuatFromAxisAngle returns the rotation of radians about axis.
//
// Precondition: axis has non-zero length.
// Postcondition: the result is a unit quaternion.
func QuatFromAxisAngle(axis Vec3, radians float64) Quat {
	n := axis.Len()
	if n == 0 {
		return IdentityQuat()
	}
	s := math.Sin(radians/2) / n
	return Quat{W: math.Cos(radians / 2), X: axis.X * s, Y: axis.Y * s, Z: axis.Z * s}
}

// Rotate applies q to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// Transform is a position and orientation in simulation space.
type Transform struct {
	Position Vec3
	Rotation Quat
}

// Point maps local, expressed in the transform's frame, into world space.
func (t Transform) Point(local Vec3) Vec3 {
	return t.Position.Add(t.Rotation.Rotate(local))
}

// Mount supplies the world transform a weapon is held at. It is implemented
// by whatever owns the rig (an actor, a turret, a test fixture).
type Mount interface {
	Transform() Transform
}

// StaticMount is a Mount fixed at one transform.
type StaticMount Transform

// Transform returns the fixed transform.
func (m StaticMount) Transform() Transform { return Transform(m) }

// OriginMount is the identity transform at the origin.
var OriginMount = StaticMount{Rotation: IdentityQuat()}
