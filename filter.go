package broadphase

// PairTestFunc decides whether two overlapping objects may form a pair.
type PairTestFunc func(a, b interface{}) bool

// Layered objects carry a collision layer and the mask of layers they scan.
type Layered interface {
	CollisionLayer() uint32
	CollisionMask() uint32
}

// DefaultPairTest pairs two Layered objects when either one's mask sees the
// other's layer. Objects that are not Layered always pair.
func DefaultPairTest(a, b interface{}) bool {
	la, ok := a.(Layered)
	if !ok {
		return true
	}
	lb, ok := b.(Layered)
	if !ok {
		return true
	}
	return la.CollisionMask()&lb.CollisionLayer() != 0 || lb.CollisionMask()&la.CollisionLayer() != 0
}

// ShapeFilter is a fast collision filter for bodies.
type ShapeFilter struct {
	// Two objects with the same non-zero group value do not collide.
	// This is generally used to group objects in a composite object together to disable self collisions.
	Group uint
	// A bitmask of user definable categories that this object belongs to.
	Categories uint32
	// A bitmask of user definable category types that this object object collides with.
	Mask uint32
}

const AllCategories = ^uint32(0)

var ShapeFilterAll = ShapeFilter{0, AllCategories, AllCategories}
var ShapeFilterNone = ShapeFilter{0, 0, 0}

func NewShapeFilter(group uint, categories, mask uint32) ShapeFilter {
	return ShapeFilter{group, categories, mask}
}

// Reject reports whether two filters forbid a collision. Unlike the layer
// test both category/mask combinations must agree.
func (a ShapeFilter) Reject(b ShapeFilter) bool {
	return (a.Group != 0 && a.Group == b.Group) ||
		(a.Categories&b.Mask) == 0 ||
		(b.Categories&a.Mask) == 0
}
