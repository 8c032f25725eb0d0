package broadphase

import "math"

// BB is an axis aligned bounding box stored as left, bottom, right, top.
// Edges are closed: boxes that only share an edge or a corner intersect.
type BB struct {
	L, B, R, T float64
}

func NewBB(l, b, r, t float64) BB {
	return BB{l, b, r, t}
}

// NewBBForRect builds a box from a position (bottom left corner) and a size.
func NewBBForRect(pos, size Vector) BB {
	return BB{pos.X, pos.Y, pos.X + size.X, pos.Y + size.Y}
}

func NewBBForExtents(c Vector, hw, hh float64) BB {
	return BB{
		L: c.X - hw,
		B: c.Y - hh,
		R: c.X + hw,
		T: c.Y + hh,
	}
}

func NewBBForCircle(p Vector, r float64) BB {
	return NewBBForExtents(p, r, r)
}

func (a BB) Intersects(b BB) bool {
	return a.L <= b.R && b.L <= a.R && a.B <= b.T && b.B <= a.T
}

func (bb BB) Contains(other BB) bool {
	return bb.L <= other.L && bb.R >= other.R && bb.B <= other.B && bb.T >= other.T
}

func (a BB) Merge(b BB) BB {
	return BB{
		math.Min(a.L, b.L),
		math.Min(a.B, b.B),
		math.Max(a.R, b.R),
		math.Max(a.T, b.T),
	}
}

// Grow pads every side by margin.
func (bb BB) Grow(margin float64) BB {
	return BB{bb.L - margin, bb.B - margin, bb.R + margin, bb.T + margin}
}

// Sweep stretches the box along d, keeping the side opposite to the motion.
func (bb BB) Sweep(d Vector) BB {
	if d.X < 0 {
		bb.L += d.X
	} else {
		bb.R += d.X
	}
	if d.Y < 0 {
		bb.B += d.Y
	} else {
		bb.T += d.Y
	}
	return bb
}

func (bb BB) Offset(v Vector) BB {
	return BB{
		bb.L + v.X,
		bb.B + v.Y,
		bb.R + v.X,
		bb.T + v.Y,
	}
}

func (bb BB) Center() Vector {
	return Vector{bb.L, bb.B}.Lerp(Vector{bb.R, bb.T}, 0.5)
}

func (bb BB) Perimeter() float64 {
	return 2.0 * ((bb.R - bb.L) + (bb.T - bb.B))
}

func (a BB) Proximity(b BB) float64 {
	return math.Abs(a.L+a.R-b.L-b.R) + math.Abs(a.B+a.T-b.B-b.T)
}

// SegmentQuery returns the fraction along a->b where the segment enters the
// box, or Infinity when it misses. A segment starting inside returns 0.
func (bb BB) SegmentQuery(a, b Vector) float64 {
	delta := b.Sub(a)
	tmin := -Infinity
	tmax := Infinity

	if delta.X == 0 {
		if a.X < bb.L || bb.R < a.X {
			return Infinity
		}
	} else {
		t1 := (bb.L - a.X) / delta.X
		t2 := (bb.R - a.X) / delta.X
		tmin = math.Max(tmin, math.Min(t1, t2))
		tmax = math.Min(tmax, math.Max(t1, t2))
	}

	if delta.Y == 0 {
		if a.Y < bb.B || bb.T < a.Y {
			return Infinity
		}
	} else {
		t1 := (bb.B - a.Y) / delta.Y
		t2 := (bb.T - a.Y) / delta.Y
		tmin = math.Max(tmin, math.Min(t1, t2))
		tmax = math.Min(tmax, math.Max(t1, t2))
	}

	if tmin <= tmax && 0 <= tmax && tmin <= 1.0 {
		return math.Max(tmin, 0.0)
	}
	return Infinity
}

func (bb BB) IntersectsSegment(a, b Vector) bool {
	return bb.SegmentQuery(a, b) != Infinity
}

// Sanitize replaces NaN coordinates with zero, clamps infinite ones to the
// largest finite float and swaps inverted extents. The second result reports
// whether the box had to be changed.
func (bb BB) Sanitize() (BB, bool) {
	out := bb
	for _, f := range []*float64{&out.L, &out.B, &out.R, &out.T} {
		switch {
		case isFinite(*f):
		case math.IsNaN(*f):
			*f = 0
		case *f > 0:
			*f = math.MaxFloat64
		default:
			*f = -math.MaxFloat64
		}
	}
	if out.L > out.R {
		out.L, out.R = out.R, out.L
	}
	if out.B > out.T {
		out.B, out.T = out.T, out.B
	}
	return out, out != bb
}
