package broadphase

type Segment struct {
	*Shape

	a, b   Vector
	ta, tb Vector
	r      float64
}

func NewSegment(body *Body, a, b Vector, r float64) *Shape {
	segment := &Segment{
		a: a,
		b: b,
		r: r,
	}
	segment.Shape = NewShape(segment, body)
	return segment.Shape
}

func (seg *Segment) CacheData(p Vector) BB {
	seg.ta = p.Add(seg.a)
	seg.tb = p.Add(seg.b)

	var l, r, b, t float64

	if seg.ta.X < seg.tb.X {
		l = seg.ta.X
		r = seg.tb.X
	} else {
		l = seg.tb.X
		r = seg.ta.X
	}

	if seg.ta.Y < seg.tb.Y {
		b = seg.ta.Y
		t = seg.tb.Y
	} else {
		b = seg.tb.Y
		t = seg.ta.Y
	}

	rad := seg.r
	return BB{l - rad, b - rad, r + rad, t + rad}
}

func (seg *Segment) A() Vector {
	return seg.a
}

func (seg *Segment) B() Vector {
	return seg.b
}

func (seg *Segment) Radius() float64 {
	return seg.r
}
