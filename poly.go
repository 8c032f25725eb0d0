package broadphase

// Box is an axis aligned box shape with optional rounded corners.
type Box struct {
	*Shape
	offset Vector
	hw, hh float64
	r      float64
}

func NewBox(body *Body, w, h, r float64) *Shape {
	return NewBoxWithOffset(body, w, h, r, Vector{})
}

func NewBoxWithOffset(body *Body, w, h, r float64, offset Vector) *Shape {
	box := &Box{
		offset: offset,
		hw:     w / 2.0,
		hh:     h / 2.0,
		r:      r,
	}
	box.Shape = NewShape(box, body)
	return box.Shape
}

func (box *Box) CacheData(p Vector) BB {
	return NewBBForExtents(p.Add(box.offset), box.hw, box.hh).Grow(box.r)
}

func (box *Box) Size() Vector {
	return Vector{box.hw * 2, box.hh * 2}
}

func (box *Box) Radius() float64 {
	return box.r
}
