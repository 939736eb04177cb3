package model

import "math"

const (
	// EqualityTolerance is the absolute tolerance used when comparing
	// float measurements such as line sizes or font sizes.
	EqualityTolerance = 0.001

	// RightAngleRadian is a quarter turn.
	RightAngleRadian = math.Pi / 2
)

// AlignMagnitudeTolerance is the largest angle (in radians) between two
// edges that are still considered aligned.
var AlignMagnitudeTolerance = math.Cos(3 / math.Pi)

// NearlyEqual reports whether a and b differ by at most EqualityTolerance.
func NearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= EqualityTolerance
}

// Point represents a 2D point in page space (origin top-left, y down).
type Point struct {
	X, Y float64
}

// Distance calculates the Euclidean distance to another point
func (p Point) Distance(other Point) float64 {
	return other.Sub(p).Length()
}

// Sub returns the vector going from other to p.
func (p Point) Sub(other Point) Vector {
	return Vector{X: p.X - other.X, Y: p.Y - other.Y}
}

// Add translates p by v.
func (p Point) Add(v Vector) Point {
	return Point{X: p.X + v.X, Y: p.Y + v.Y}
}

// Vector is a 2D displacement.
type Vector struct {
	X, Y float64
}

// Add returns v+o.
func (v Vector) Add(o Vector) Vector { return Vector{v.X + o.X, v.Y + o.Y} }

// Sub returns v-o.
func (v Vector) Sub(o Vector) Vector { return Vector{v.X - o.X, v.Y - o.Y} }

// Scale multiplies both components by s.
func (v Vector) Scale(s float64) Vector { return Vector{v.X * s, v.Y * s} }

// Dot returns the dot product of v and o.
func (v Vector) Dot(o Vector) float64 { return v.X*o.X + v.Y*o.Y }

// Cross returns the z component of the cross product of v and o.
func (v Vector) Cross(o Vector) float64 { return v.X*o.Y - v.Y*o.X }

// Length returns the Euclidean norm.
func (v Vector) Length() float64 { return math.Hypot(v.X, v.Y) }

// Normalize returns the unit vector of v. The zero vector is returned as is.
func (v Vector) Normalize() Vector {
	l := v.Length()
	if l == 0 {
		return v
	}
	return Vector{v.X / l, v.Y / l}
}

// Diff returns the vector going from a to b.
func Diff(a, b Point) Vector {
	return b.Sub(a)
}

// NormalizedDot returns the dot product of the unit vectors of a and b,
// clamped to [-1, 1].
func NormalizedDot(a, b Vector) float64 {
	d := a.Normalize().Dot(b.Normalize())
	return math.Max(-1, math.Min(1, d))
}

// RadianAngle returns the angle between a and b. When matchSin is true the
// direction of the vectors is ignored and the result lies in [0, π/2];
// otherwise it lies in [0, π]. Zero vectors yield zero.
func RadianAngle(a, b Vector, matchSin bool) float64 {
	if a.Length() == 0 || b.Length() == 0 {
		return 0
	}
	d := NormalizedDot(a, b)
	if matchSin {
		d = math.Abs(d)
	}
	return math.Acos(d)
}

// Bounds is an axis-aligned rectangle described by its extremes.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width of the rectangle.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height of the rectangle.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Contains checks if a point is inside the rectangle grown by tolerance.
func (b Bounds) Contains(p Point, tolerance float64) bool {
	return p.X >= b.MinX-tolerance && p.X <= b.MaxX+tolerance &&
		p.Y >= b.MinY-tolerance && p.Y <= b.MaxY+tolerance
}

// Extend returns the smallest rectangle holding b and p.
func (b Bounds) Extend(p Point) Bounds {
	return Bounds{
		MinX: math.Min(b.MinX, p.X),
		MinY: math.Min(b.MinY, p.Y),
		MaxX: math.Max(b.MaxX, p.X),
		MaxY: math.Max(b.MaxY, p.Y),
	}
}

func boundsOf(points []Point) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}
	b := Bounds{MinX: points[0].X, MinY: points[0].Y, MaxX: points[0].X, MaxY: points[0].Y}
	for _, p := range points[1:] {
		b = b.Extend(p)
	}
	return b
}

// Area is an oriented quadrilateral. For upright text it is an
// axis-aligned rectangle; rotated text yields a rotated quad. Areas are
// values and are never modified in place.
type Area struct {
	TopLeft     Point `json:"topLeft"`
	TopRight    Point `json:"topRight"`
	BottomRight Point `json:"bottomRight"`
	BottomLeft  Point `json:"bottomLeft"`
}

// NewArea creates an area from its four corners
func NewArea(topLeft, topRight, bottomRight, bottomLeft Point) Area {
	return Area{TopLeft: topLeft, TopRight: topRight, BottomRight: bottomRight, BottomLeft: bottomLeft}
}

// NewRectArea creates an axis-aligned area from its top-left corner and size.
func NewRectArea(x, y, width, height float64) Area {
	return Area{
		TopLeft:     Point{x, y},
		TopRight:    Point{x + width, y},
		BottomRight: Point{x + width, y + height},
		BottomLeft:  Point{x, y + height},
	}
}

// TopLine runs from TopLeft to TopRight.
func (a Area) TopLine() Vector { return Diff(a.TopLeft, a.TopRight) }

// BottomLine runs from BottomLeft to BottomRight.
func (a Area) BottomLine() Vector { return Diff(a.BottomLeft, a.BottomRight) }

// LeftLine runs from TopLeft to BottomLeft.
func (a Area) LeftLine() Vector { return Diff(a.TopLeft, a.BottomLeft) }

// RightLine runs from TopRight to BottomRight.
func (a Area) RightLine() Vector { return Diff(a.TopRight, a.BottomRight) }

// Width is the length of the top line.
func (a Area) Width() float64 { return a.TopLine().Length() }

// Height is the length of the left line.
func (a Area) Height() float64 { return a.LeftLine().Length() }

// Points returns the corners in clockwise order starting at TopLeft.
func (a Area) Points() []Point {
	return []Point{a.TopLeft, a.TopRight, a.BottomRight, a.BottomLeft}
}

// Bounds returns the axis-aligned rectangle enclosing the corners.
func (a Area) Bounds() Bounds {
	return boundsOf(a.Points())
}

// Center returns the mean of the corners.
func (a Area) Center() Point {
	var x, y float64
	for _, p := range a.Points() {
		x += p.X
		y += p.Y
	}
	return Point{x / 4, y / 4}
}

// Contains checks if a point lies within the area's extent grown by
// tolerance.
func (a Area) Contains(p Point, tolerance float64) bool {
	return a.Bounds().Contains(p, tolerance)
}

// Overlap reports whether any corner of one area lies inside the other,
// within tolerance.
func (a Area) Overlap(other Area, tolerance float64) bool {
	ab := a.Bounds()
	for _, p := range other.Points() {
		if ab.Contains(p, tolerance) {
			return true
		}
	}
	ob := other.Bounds()
	for _, p := range a.Points() {
		if ob.Contains(p, tolerance) {
			return true
		}
	}
	return false
}

// Frame is an orthogonal-ish 2D basis (U along the top line, V along the
// left line) used to express areas in the local coordinates of a block.
type Frame struct {
	U, V Vector
	inv  [4]float64
}

// IdentityFrame is the page frame.
func IdentityFrame() Frame {
	return Frame{U: Vector{1, 0}, V: Vector{0, 1}, inv: [4]float64{1, 0, 0, 1}}
}

// FrameOf builds the local frame of an area from the unit vectors of its
// top and left lines. A degenerate area yields the identity frame.
func FrameOf(a Area) Frame {
	return NewFrame(a.TopLine().Normalize(), a.LeftLine().Normalize())
}

// NewFrame builds a frame from two basis vectors, falling back to the
// identity frame when they do not span the plane.
func NewFrame(u, v Vector) Frame {
	det := u.X*v.Y - v.X*u.Y
	if math.Abs(det) < 1e-9 || math.IsNaN(det) {
		return IdentityFrame()
	}
	return Frame{
		U:   u,
		V:   v,
		inv: [4]float64{v.Y / det, -v.X / det, -u.Y / det, u.X / det},
	}
}

// ToLocal expresses a page point in the frame's coordinates.
func (f Frame) ToLocal(p Point) Point {
	return Point{
		X: f.inv[0]*p.X + f.inv[1]*p.Y,
		Y: f.inv[2]*p.X + f.inv[3]*p.Y,
	}
}

// ToWorld maps frame coordinates back to page space.
func (f Frame) ToWorld(p Point) Point {
	return Point{
		X: f.U.X*p.X + f.V.X*p.Y,
		Y: f.U.Y*p.X + f.V.Y*p.Y,
	}
}

// LocalBounds returns the extent of the given areas in frame coordinates.
func (f Frame) LocalBounds(areas ...Area) Bounds {
	points := make([]Point, 0, len(areas)*4)
	for _, a := range areas {
		for _, p := range a.Points() {
			points = append(points, f.ToLocal(p))
		}
	}
	return boundsOf(points)
}

// WorldArea maps a local rectangle back to a page-space quad.
func (f Frame) WorldArea(b Bounds) Area {
	return Area{
		TopLeft:     f.ToWorld(Point{b.MinX, b.MinY}),
		TopRight:    f.ToWorld(Point{b.MaxX, b.MinY}),
		BottomRight: f.ToWorld(Point{b.MaxX, b.MaxY}),
		BottomLeft:  f.ToWorld(Point{b.MinX, b.MaxY}),
	}
}

// BoundingArea returns the quad enclosing every corner of areas, oriented
// along frame.
func BoundingArea(frame Frame, areas ...Area) Area {
	return frame.WorldArea(frame.LocalBounds(areas...))
}

// Matrix represents a 2D affine transformation matrix [a b c d e f]
type Matrix [6]float64

// Identity returns an identity matrix
func Identity() Matrix {
	return Matrix{1, 0, 0, 1, 0, 0}
}

// Transform applies the matrix transformation to a point
func (m Matrix) Transform(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// TransformVector applies only the linear part of the matrix.
func (m Matrix) TransformVector(v Vector) Vector {
	return Vector{
		X: m[0]*v.X + m[2]*v.Y,
		Y: m[1]*v.X + m[3]*v.Y,
	}
}

// Multiply returns m × other, i.e. m applied first.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		m[0]*other[0] + m[1]*other[2],
		m[0]*other[1] + m[1]*other[3],
		m[2]*other[0] + m[3]*other[2],
		m[2]*other[1] + m[3]*other[3],
		m[4]*other[0] + m[5]*other[2] + other[4],
		m[4]*other[1] + m[5]*other[3] + other[5],
	}
}

// Translate creates a translation matrix
func Translate(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// Scale creates a scaling matrix
func Scale(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, sy, 0, 0}
}

// Rotate creates a rotation matrix (angle in radians)
func Rotate(angle float64) Matrix {
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	return Matrix{cos, sin, -sin, cos, 0, 0}
}
