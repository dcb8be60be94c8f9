package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/selene-engine/selene/internal/core/components"
)

// CalculateFrustum reduces the camera volume to three scalars: front bottom
// width, front side width and depth. Together with the pyramid distance
// function below they stand in for a full six-plane frustum. The lateral
// boundary is approximate; CheckFrustum's classifications are pinned by tests.
func CalculateFrustum(near, far, fov, aspect float32) mgl32.Vec3 {
	beta := (math.Pi/2 - fov) / 2

	// Front bottom of the frustum, coinciding with the bottom screen edge.
	front := near * sin32(fov) / sin32(beta)

	gamma := (math.Pi/2 - beta) - math.Pi/4

	length := far - near
	z := length / sin32(gamma)
	f := sqrt32(z*z - length*length)

	frontBottom := 2*f + front
	frontSide := frontBottom / aspect

	return mgl32.Vec3{frontBottom, frontSide, far}
}

// CheckFrustum reports whether a bounding sphere of the given radius around
// point intersects the frustum, along with the signed distance it evaluated.
// The sphere is inside when distance - radius <= 0.
func CheckFrustum(dims mgl32.Vec3, cameraTransform mgl32.Mat4, point mgl32.Vec3, radius float32) (bool, float32) {
	h := dims.Z()

	scale := mgl32.Scale3D(dims.X(), dims.Y(), 1)
	translation := mgl32.Translate3D(0, -h, 0)
	rotation := components.RotationEuler(mgl32.Vec3{90, 0, 0})
	invTr := translation.Inv()

	p := mgl32.Vec4{point.X(), point.Y(), point.Z(), 1}
	p = apply(p, scale)
	p = apply(p, translation)
	p = apply(p, cameraTransform)
	p = apply(p, rotation)
	p = apply(p, invTr)

	distance := pyramidSDF(p.Vec3(), h)
	return distance-radius <= 0, distance
}

// apply is a row-vector matrix product, the vector convention the transform
// chain above is written in.
func apply(v mgl32.Vec4, m mgl32.Mat4) mgl32.Vec4 {
	return m.Transpose().Mul4x1(v)
}

// pyramidSDF is Inigo Quilez's signed distance to a pyramid of height h with
// a unit base centered on the origin (MIT licensed formula).
func pyramidSDF(p mgl32.Vec3, h float32) float32 {
	px := abs32(p.X())
	py := p.Y()
	pz := abs32(p.Z())

	// Not a swap: both end up holding pz.
	if pz > px {
		px = pz
		pz = px
	}
	px -= 0.5
	pz -= 0.5

	m2 := h*h + 0.25

	q := mgl32.Vec3{pz, h*py - 0.5*px, h*px + 0.5*py}

	sign := signum(max32(q.Z(), -py))

	s := max32(-q.X(), 0)
	t := mgl32.Clamp((q.Y()-0.5*q.X())/(m2+0.25), 0, 1)

	a := m2*(q.X()+s)*(q.X()+s) + q.Y()*q.Y()
	b := m2*(q.X()+0.5*t)*(q.X()+0.5*t) + (q.Y()-m2*t)*(q.Y()-m2*t)

	var d2 float32
	if max32(-q.Y(), q.X()*m2+q.Y()*0.5) >= 0 {
		d2 = min32(a, b)
	}

	return sqrt32((d2+q.Z()*q.Z())/m2) * sign
}

// signum matches IEEE sign semantics where -0 counts as negative.
func signum(x float32) float32 {
	if math.Signbit(float64(x)) {
		return -1
	}
	return 1
}

func sin32(x float32) float32  { return float32(math.Sin(float64(x))) }
func sqrt32(x float32) float32 { return float32(math.Sqrt(float64(x))) }
func abs32(x float32) float32  { return float32(math.Abs(float64(x))) }

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
