package broadphase

type Circle struct {
	*Shape
	c, tc Vector
	r     float64
}

func NewCircle(body *Body, radius float64, offset Vector) *Shape {
	circle := &Circle{
		c: offset,
		r: radius,
	}
	circle.Shape = NewShape(circle, body)
	return circle.Shape
}

func (circle *Circle) CacheData(p Vector) BB {
	circle.tc = p.Add(circle.c)
	return NewBBForCircle(circle.tc, circle.r)
}

func (circle *Circle) Radius() float64 {
	return circle.r
}

func (circle *Circle) Offset() Vector {
	return circle.c
}

func (circle *Circle) TransformC() Vector {
	return circle.tc
}
