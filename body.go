package broadphase

import (
	"fmt"
)

type BodyType int

const (
	BODY_DYNAMIC BodyType = iota
	BODY_KINEMATIC
	BODY_STATIC
)

func (t BodyType) String() string {
	switch t {
	case BODY_DYNAMIC:
		return "dynamic"
	case BODY_KINEMATIC:
		return "kinematic"
	case BODY_STATIC:
		return "static"
	}
	return fmt.Sprintf("BodyType(%d)", int(t))
}

/// Rigid body position update function type.
type BodyPositionFunc func(body *Body, gravity Vector, dt float64)

// Body is a collision object owning one or more shapes. It is the object
// handed to the broad-phase, a shape's index in the body is its subindex.
type Body struct {
	id int

	position_func BodyPositionFunc

	// position, velocity
	p Vector
	v Vector

	typ    BodyType
	filter ShapeFilter

	UserData interface{}

	space     *Space
	shapeList []*Shape
}

func (b *Body) String() string {
	return fmt.Sprint("Body ", b.id)
}

var bodyCur int = 0

func NewBody() *Body {
	body := &Body{
		id:            bodyCur,
		position_func: BodyUpdatePosition,
		filter:        ShapeFilterAll,
	}
	bodyCur++
	return body
}

func NewStaticBody() *Body {
	body := NewBody()
	body.typ = BODY_STATIC
	return body
}

func NewKinematicBody() *Body {
	body := NewBody()
	body.typ = BODY_KINEMATIC
	return body
}

func (body *Body) GetType() BodyType {
	return body.typ
}

// SetType changes the body type, moving its proxies between the static and
// dynamic trees when it is in a space.
func (body *Body) SetType(typ BodyType) {
	if body.typ == typ {
		return
	}
	body.typ = typ
	if body.space != nil {
		for _, shape := range body.shapeList {
			body.space.index.SetStatic(shape.proxy, typ == BODY_STATIC)
		}
	}
}

func (body *Body) Position() Vector {
	return body.p
}

// SetPosition teleports the body. Shapes are reindexed on the next step, or
// right away through Space.ReindexBody.
func (body *Body) SetPosition(p Vector) {
	body.p = p
}

func (body *Body) Velocity() Vector {
	return body.v
}

func (body *Body) SetVelocity(v Vector) {
	body.v = v
}

func (body *Body) SetPositionUpdateFunc(f BodyPositionFunc) {
	body.position_func = f
}

func (body *Body) Filter() ShapeFilter {
	return body.filter
}

// SetFilter changes what the body collides with and rechecks its pairs.
func (body *Body) SetFilter(filter ShapeFilter) {
	body.filter = filter
	if body.space != nil {
		for _, shape := range body.shapeList {
			body.space.index.RecheckPairs(shape.proxy)
		}
	}
}

func (body *Body) CollisionLayer() uint32 {
	return body.filter.Categories
}

func (body *Body) CollisionMask() uint32 {
	return body.filter.Mask
}

func (body *Body) Space() *Space {
	return body.space
}

func (body *Body) Shapes() []*Shape {
	return body.shapeList
}

// AddShape attaches shape to the body. Its index in the body becomes its
// broad-phase subindex.
func (body *Body) AddShape(shape *Shape) *Shape {
	assert(shape.body == nil || shape.body == body, "shape already belongs to another body")
	shape.body = body
	shape.index = len(body.shapeList)
	body.shapeList = append(body.shapeList, shape)
	if body.space != nil {
		body.space.addShape(shape)
	}
	return shape
}

func (body *Body) EachShape(f func(*Shape)) {
	for _, shape := range body.shapeList {
		f(shape)
	}
}

func BodyUpdatePosition(body *Body, gravity Vector, dt float64) {
	if body.typ == BODY_DYNAMIC {
		body.v = body.v.Add(gravity.Mult(dt))
	}
	body.p = body.p.Add(body.v.Mult(dt))
}
