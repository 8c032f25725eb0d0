package broadphase

// SpatialIndex is the contract a physics world relies on to find candidate
// collision pairs. BroadPhase is the BVH implementation.
type SpatialIndex interface {
	Create(obj interface{}, subindex int, bb BB, static bool) ID
	Move(id ID, bb BB)
	RecheckPairs(id ID)
	SetStatic(id ID, static bool)
	Remove(id ID)

	Object(id ID) interface{}
	IsStatic(id ID) bool
	Subindex(id ID) int

	Query(bb BB, f func(p *Proxy) bool)
	QuerySegment(from, to Vector, f func(p *Proxy) bool)
	CullSegment(from, to Vector, results []interface{}, subindices []int) int
	CullAABB(bb BB, results []interface{}, subindices []int) int

	SetPairCallback(f PairCallback, userData interface{})
	SetUnpairCallback(f UnpairCallback, userData interface{})

	Update()
}
