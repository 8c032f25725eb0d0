package broadphase

type ArbiterState int

// Arbiter states
const (
	// Arbiter is active and its the first step of the collision.
	ARBITER_STATE_FIRST_COLLISION ArbiterState = iota
	// Arbiter is active and its not the first step of the collision.
	ARBITER_STATE_NORMAL
	// Collision has been explicitly ignored by returning false from a begin handler.
	ARBITER_STATE_IGNORE
)

// Arbiter is the pair data of two overlapping shapes. It lives from the pair
// callback to the unpair callback of the broad-phase.
type Arbiter struct {
	UserData interface{}

	a, b           *Shape
	body_a, body_b *Body

	handler *CollisionHandler
	swapped bool

	stamp uint
	state ArbiterState
}

func (arbiter *Arbiter) Init(a, b *Shape) *Arbiter {
	arbiter.handler = nil
	arbiter.swapped = false

	arbiter.a = a
	arbiter.body_a = a.body
	arbiter.b = b
	arbiter.body_b = b.body

	arbiter.stamp = 0
	arbiter.state = ARBITER_STATE_FIRST_COLLISION

	arbiter.UserData = nil
	return arbiter
}

// Shapes returns the shapes in the order the collision handler was
// registered with.
func (arb *Arbiter) Shapes() (*Shape, *Shape) {
	if arb.swapped {
		return arb.b, arb.a
	}
	return arb.a, arb.b
}

func (arb *Arbiter) Bodies() (*Body, *Body) {
	shapeA, shapeB := arb.Shapes()
	return shapeA.body, shapeB.body
}

// IsFirstContact is true during the step the arbiter was created in.
func (arb *Arbiter) IsFirstContact() bool {
	return arb.state == ARBITER_STATE_FIRST_COLLISION
}

func (arb *Arbiter) Ignore() {
	arb.state = ARBITER_STATE_IGNORE
}

func (arb *Arbiter) IsIgnored() bool {
	return arb.state == ARBITER_STATE_IGNORE
}

// Stamp is the space step that created the arbiter.
func (arb *Arbiter) Stamp() uint {
	return arb.stamp
}
