package broadphase

// CollisionBeginFunc is called when two shapes start overlapping. Returning
// false ignores the pair until it separates.
type CollisionBeginFunc func(arb *Arbiter, space *Space, userData interface{}) bool

// CollisionSeparateFunc is called once when two shapes stop overlapping or
// one of them is removed. It is called even if begin returned false.
type CollisionSeparateFunc func(arb *Arbiter, space *Space, userData interface{})

type CollisionHandler struct {
	TypeA, TypeB CollisionType
	BeginFunc    CollisionBeginFunc
	SeparateFunc CollisionSeparateFunc
	UserData     interface{}
}

func AlwaysCollide(arb *Arbiter, space *Space, data interface{}) bool {
	return true
}

func DoNothing(arb *Arbiter, space *Space, data interface{}) {}

var CollisionHandlerDefault = CollisionHandler{
	BeginFunc:    AlwaysCollide,
	SeparateFunc: DoNothing,
}

func (handler *CollisionHandler) begin(arb *Arbiter, space *Space) bool {
	if handler.BeginFunc == nil {
		return true
	}
	return handler.BeginFunc(arb, space, handler.UserData)
}

func (handler *CollisionHandler) separate(arb *Arbiter, space *Space) {
	if handler.SeparateFunc != nil {
		handler.SeparateFunc(arb, space, handler.UserData)
	}
}

func handlerSetEql(check, pair *CollisionHandler) bool {
	if check.TypeA == pair.TypeA && check.TypeB == pair.TypeB {
		return true
	}
	if check.TypeB == pair.TypeA && check.TypeA == pair.TypeB {
		return true
	}
	return false
}

func handlerSetTrans(handler *CollisionHandler, _ interface{}) *CollisionHandler {
	copied := *handler
	return &copied
}
