// quaternion.go

// Copyright (C) 2018  Steve Merrony

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package vtol

import "math"

// quat is a w,x,y,z Hamilton quaternion, matching the (w,x,y,z) field
// order used throughout this package's attitude setpoints.
type quat struct {
	W, X, Y, Z float64
}

// identityQuat is the no-rotation quaternion.
func identityQuat() quat { return quat{W: 1} }

// quatFromEuler builds a quaternion from ZYX Euler angles in radians
// (yaw about Z, then pitch about Y, then roll about X).
func quatFromEuler(roll, pitch, yaw float64) quat {
	cr, sr := math.Cos(roll*0.5), math.Sin(roll*0.5)
	cp, sp := math.Cos(pitch*0.5), math.Sin(pitch*0.5)
	cy, sy := math.Cos(yaw*0.5), math.Sin(yaw*0.5)

	return quat{
		W: cr*cp*cy + sr*sp*sy,
		X: sr*cp*cy - cr*sp*sy,
		Y: cr*sp*cy + sr*cp*sy,
		Z: cr*cp*sy - sr*sp*cy,
	}
}

// toEuler recovers ZYX Euler angles (roll, pitch, yaw) in radians from q,
// assuming q is a unit quaternion.
func (q quat) toEuler() (roll, pitch, yaw float64) {
	sinrCosp := 2 * (q.W*q.X + q.Y*q.Z)
	cosrCosp := 1 - 2*(q.X*q.X+q.Y*q.Y)
	roll = math.Atan2(sinrCosp, cosrCosp)

	sinp := 2 * (q.W*q.Y - q.Z*q.X)
	sinp = clamp(sinp, -1, 1)
	pitch = math.Asin(sinp)

	sinyCosp := 2 * (q.W*q.Z + q.X*q.Y)
	cosyCosp := 1 - 2*(q.Y*q.Y+q.Z*q.Z)
	yaw = math.Atan2(sinyCosp, cosyCosp)

	return roll, pitch, yaw
}

// normalize returns q scaled to unit length, or the identity quaternion
// if q is degenerate.
func (q quat) normalize() quat {
	n := math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
	if n < 1e-12 {
		return identityQuat()
	}
	return quat{q.W / n, q.X / n, q.Y / n, q.Z / n}
}

func (q quat) dot(o quat) float64 {
	return q.W*o.W + q.X*o.X + q.Y*o.Y + q.Z*o.Z
}

func (q quat) negate() quat {
	return quat{-q.W, -q.X, -q.Y, -q.Z}
}

func (q quat) scale(s float64) quat {
	return quat{q.W * s, q.X * s, q.Y * s, q.Z * s}
}

func (q quat) add(o quat) quat {
	return quat{q.W + o.W, q.X + o.X, q.Y + o.Y, q.Z + o.Z}
}

// quatMul returns the Hamilton product a*b, i.e. applying rotation b then
// rotation a.
func quatMul(a, b quat) quat {
	return quat{
		W: a.W*b.W - a.X*b.X - a.Y*b.Y - a.Z*b.Z,
		X: a.W*b.X + a.X*b.W + a.Y*b.Z - a.Z*b.Y,
		Y: a.W*b.Y - a.X*b.Z + a.Y*b.W + a.Z*b.X,
		Z: a.W*b.Z + a.X*b.Y - a.Y*b.X + a.Z*b.W,
	}
}

// slerp performs spherical linear interpolation between a and b as t
// moves from 0 to 1, taking the shorter arc. Falls back to normalized
// linear interpolation when the two orientations are almost coincident,
// where slerp's coefficients become numerically unstable.
func slerp(a, b quat, t float64) quat {
	a = a.normalize()
	b = b.normalize()

	cosHalfTheta := a.dot(b)
	if cosHalfTheta < 0 {
		b = b.negate()
		cosHalfTheta = -cosHalfTheta
	}

	if cosHalfTheta > 0.9995 {
		return a.add(b.add(a.negate()).scale(t)).normalize()
	}

	halfTheta := math.Acos(clamp(cosHalfTheta, -1, 1))
	sinHalfTheta := math.Sqrt(1 - cosHalfTheta*cosHalfTheta)

	ratioA := math.Sin((1-t)*halfTheta) / sinHalfTheta
	ratioB := math.Sin(t*halfTheta) / sinHalfTheta

	return a.scale(ratioA).add(b.scale(ratioB))
}
