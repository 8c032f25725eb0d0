package broadphase

import (
	"slices"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Space owns bodies and keeps an arbiter for every pair of overlapping
// shapes, driven by the broad-phase pair callbacks.
type Space struct {
	gravity Vector

	stamp uint

	bodies []*Body

	index *BroadPhase

	arbiters       []*Arbiter
	pooledArbiters []*Arbiter

	collisionHandlers *HashSet[*CollisionHandler]
	defaultHandler    CollisionHandler

	logger *zap.SugaredLogger
}

// NewSpace creates an empty space. The broad-phase options are passed
// through, except the pair test which is always the body filter test.
func NewSpace(opts ...Option) (*Space, error) {
	space := &Space{
		collisionHandlers: NewHashSet(handlerSetEql),
		defaultHandler:    CollisionHandlerDefault,
	}

	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	space.logger = o.Logger

	opts = append(opts, WithPairTest(SpacePairTest))
	index, err := New(opts...)
	if err != nil {
		return nil, err
	}
	index.SetPairCallback(spacePair, space)
	index.SetUnpairCallback(spaceUnpair, space)
	space.index = index
	return space, nil
}

// SpacePairTest rejects shapes of the same body and bodies whose filters
// reject each other.
func SpacePairTest(a, b interface{}) bool {
	bodyA, bodyB := a.(*Body), b.(*Body)
	if bodyA == bodyB {
		return false
	}
	return !bodyA.filter.Reject(bodyB.filter)
}

func (space *Space) Index() *BroadPhase {
	return space.index
}

func (space *Space) Gravity() Vector {
	return space.gravity
}

func (space *Space) SetGravity(gravity Vector) {
	space.gravity = gravity
}

func (space *Space) Bodies() []*Body {
	return space.bodies
}

func (space *Space) Stamp() uint {
	return space.stamp
}

func (space *Space) AddBody(body *Body) *Body {
	assert(body.space == nil, "%v is already in a space", body)

	body.space = space
	space.bodies = append(space.bodies, body)
	for _, shape := range body.shapeList {
		space.addShape(shape)
	}

	space.logger.Debugw("added body", "body", body.id, "type", body.typ, "shapes", len(body.shapeList))
	return body
}

func (space *Space) addShape(shape *Shape) {
	body := shape.body
	shape.CacheBB()
	shape.proxy = space.index.Create(body, shape.index, shape.bb, body.typ == BODY_STATIC)
}

// RemoveBody drops the body and calls separate for each of its arbiters.
func (space *Space) RemoveBody(body *Body) {
	assert(body.space == space, "%v is not in this space", body)

	for _, shape := range body.shapeList {
		space.index.Remove(shape.proxy)
		shape.proxy = InvalidID
	}

	if i := slices.Index(space.bodies, body); i != -1 {
		space.bodies = slices.Delete(space.bodies, i, i+1)
	}
	body.space = nil

	space.logger.Debugw("removed body", "body", body.id)
}

func (space *Space) SetBodyType(body *Body, typ BodyType) {
	assert(body.space == space, "%v is not in this space", body)
	body.SetType(typ)
}

func (space *Space) SetFilter(body *Body, filter ShapeFilter) {
	assert(body.space == space, "%v is not in this space", body)
	body.SetFilter(filter)
}

func (space *Space) ContainsBody(body *Body) bool {
	return body.space == space
}

// ReindexBody pushes the current position of the body into the broad-phase
// without stepping, e.g. after teleporting a static body.
func (space *Space) ReindexBody(body *Body) {
	for _, shape := range body.shapeList {
		space.reindexShape(shape)
	}
}

func (space *Space) reindexShape(shape *Shape) {
	old := shape.bb
	if shape.CacheBB() != old {
		space.index.Move(shape.proxy, shape.bb)
	}
}

// Step advances non static bodies by dt and updates the arbiters.
func (space *Space) Step(dt float64) {
	space.stamp++

	for _, arb := range space.arbiters {
		if arb.state == ARBITER_STATE_FIRST_COLLISION {
			arb.state = ARBITER_STATE_NORMAL
		}
	}

	for _, body := range space.bodies {
		if body.typ == BODY_STATIC {
			continue
		}
		body.position_func(body, space.gravity, dt)
		for _, shape := range body.shapeList {
			space.reindexShape(shape)
		}
	}

	space.index.Update()
}

// AddCollisionHandler returns the handler for shapes of the two collision
// types, creating it when needed. The order of the types is the order the
// arbiter reports its shapes in.
func (space *Space) AddCollisionHandler(a, b CollisionType) *CollisionHandler {
	handler := &CollisionHandler{
		TypeA:        a,
		TypeB:        b,
		BeginFunc:    AlwaysCollide,
		SeparateFunc: DoNothing,
	}
	return space.collisionHandlers.Insert(HashPair(uint32(a), uint32(b)), handler, handlerSetTrans, nil)
}

// SetDefaultCollisionHandler replaces the handler used by pairs with no
// registered types.
func (space *Space) SetDefaultCollisionHandler(handler CollisionHandler) {
	space.defaultHandler = handler
}

func (space *Space) lookupHandler(a, b CollisionType) *CollisionHandler {
	probe := &CollisionHandler{TypeA: a, TypeB: b}
	return space.collisionHandlers.Find(HashPair(uint32(a), uint32(b)), probe)
}

// EachArbiter visits the arbiters that were not ignored by their handler.
func (space *Space) EachArbiter(f func(arb *Arbiter)) {
	for _, arb := range space.arbiters {
		if !arb.IsIgnored() {
			f(arb)
		}
	}
}

// Arbiters returns the arbiters that were not ignored by their handler.
func (space *Space) Arbiters() []*Arbiter {
	return lo.Filter(space.arbiters, func(arb *Arbiter, _ int) bool {
		return !arb.IsIgnored()
	})
}

func (space *Space) ArbiterCount() int {
	return len(space.arbiters)
}

func (space *Space) arbiterFromPool() *Arbiter {
	if n := len(space.pooledArbiters); n > 0 {
		arb := space.pooledArbiters[n-1]
		space.pooledArbiters = space.pooledArbiters[:n-1]
		return arb
	}
	return &Arbiter{}
}

func spacePair(userData interface{}, idA ID, objA interface{}, subA int, idB ID, objB interface{}, subB int) interface{} {
	space := userData.(*Space)
	a := objA.(*Body).shapeList[subA]
	b := objB.(*Body).shapeList[subB]

	arb := space.arbiterFromPool().Init(a, b)
	arb.stamp = space.stamp

	arb.handler = space.lookupHandler(a.collisionType, b.collisionType)
	if arb.handler == nil {
		arb.handler = &space.defaultHandler
	} else {
		arb.swapped = a.collisionType != arb.handler.TypeA
	}

	space.arbiters = append(space.arbiters, arb)
	if !arb.handler.begin(arb, space) {
		arb.Ignore()
	}
	return arb
}

func spaceUnpair(userData interface{}, idA ID, objA interface{}, subA int, idB ID, objB interface{}, subB int, pairData interface{}) {
	space := userData.(*Space)
	arb := pairData.(*Arbiter)

	arb.handler.separate(arb, space)

	if i := slices.Index(space.arbiters, arb); i != -1 {
		space.arbiters = slices.Delete(space.arbiters, i, i+1)
	}
	*arb = Arbiter{}
	space.pooledArbiters = append(space.pooledArbiters, arb)
}

// BBQuery calls f for every shape whose box intersects bb and whose body
// passes filter.
func (space *Space) BBQuery(bb BB, filter ShapeFilter, f func(shape *Shape)) {
	space.index.Query(bb, func(p *Proxy) bool {
		body := p.Object().(*Body)
		if !body.filter.Reject(filter) {
			f(body.shapeList[p.Subindex()])
		}
		return true
	})
}

// PointQuery calls f for every shape whose box contains point.
func (space *Space) PointQuery(point Vector, filter ShapeFilter, f func(shape *Shape)) {
	space.BBQuery(BB{point.X, point.Y, point.X, point.Y}, filter, f)
}

// SegmentQuery calls f for every shape whose box the segment a->b touches.
// alpha is the fraction along the segment where it enters the box.
func (space *Space) SegmentQuery(a, b Vector, filter ShapeFilter, f func(shape *Shape, alpha float64)) {
	space.index.QuerySegment(a, b, func(p *Proxy) bool {
		body := p.Object().(*Body)
		if !body.filter.Reject(filter) {
			f(body.shapeList[p.Subindex()], p.BB().SegmentQuery(a, b))
		}
		return true
	})
}

// SegmentQueryFirst returns the shape whose box the segment enters first.
func (space *Space) SegmentQueryFirst(a, b Vector, filter ShapeFilter) (*Shape, float64) {
	var first *Shape
	best := Infinity
	space.SegmentQuery(a, b, filter, func(shape *Shape, alpha float64) {
		if alpha < best {
			first, best = shape, alpha
		}
	})
	return first, best
}
