package broadphase

type CollisionType uint32

type ShapeClass interface {
	// CacheData computes the world bounding box for a body at position p.
	CacheData(p Vector) BB
}

type Shape struct {
	class ShapeClass
	body  *Body
	bb    BB

	collisionType CollisionType

	UserData interface{}

	proxy ID
	index int
}

func NewShape(class ShapeClass, body *Body) *Shape {
	return &Shape{
		class: class,
		body:  body,
	}
}

func (s *Shape) Class() ShapeClass {
	return s.class
}

func (s *Shape) Body() *Body {
	return s.body
}

func (s *Shape) BB() BB {
	return s.bb
}

// ProxyID is the broad-phase id of the shape, or InvalidID when the shape is
// not in a space.
func (s *Shape) ProxyID() ID {
	return s.proxy
}

func (s *Shape) Index() int {
	return s.index
}

func (s *Shape) CollisionType() CollisionType {
	return s.collisionType
}

func (s *Shape) SetCollisionType(collisionType CollisionType) {
	s.collisionType = collisionType
}

func (s *Shape) CacheBB() BB {
	s.bb = s.class.CacheData(s.body.p)
	return s.bb
}
