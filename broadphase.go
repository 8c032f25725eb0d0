package broadphase

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// PairCallback is called when two proxies start overlapping. The returned
// value is stored with the pair and handed back to the UnpairCallback.
// idA is always lower than idB.
type PairCallback func(userData interface{}, idA ID, objA interface{}, subA int, idB ID, objB interface{}, subB int) interface{}

// UnpairCallback is called exactly once when a pair stops overlapping, fails
// the pair test, or loses one of its proxies.
type UnpairCallback func(userData interface{}, idA ID, objA interface{}, subA int, idB ID, objB interface{}, subB int, pairData interface{})

type opKind int

const (
	opInsert opKind = iota
	opMove
	opRemove
	opSetStatic
	opRecheck
)

// deferredOp is a mutation requested from inside a callback.
type deferredOp struct {
	kind   opKind
	proxy  *Proxy
	bb     BB
	static bool
}

// BroadPhase finds overlapping pairs of proxies and reports pair transitions
// through callbacks. It is not safe for concurrent use.
type BroadPhase struct {
	tree  *BBTree
	pairs *pairTable

	pairTest PairTestFunc
	logger   *zap.SugaredLogger

	pairCallback   PairCallback
	pairUserData   interface{}
	unpairCallback UnpairCallback
	unpairUserData interface{}

	moveBuffer []*Proxy
	candidates []*Proxy
	deferred   []deferredOp
	locked     int

	pairsAdded, pairsRemoved uint
}

var _ SpatialIndex = (*BroadPhase)(nil)

func New(opts ...Option) (*BroadPhase, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}

	return &BroadPhase{
		tree:     NewBBTree(o.Margin, o.Prediction),
		pairs:    newPairTable(),
		pairTest: o.PairTest,
		logger:   o.Logger,
	}, nil
}

func (bp *BroadPhase) SetPairCallback(f PairCallback, userData interface{}) {
	bp.pairCallback = f
	bp.pairUserData = userData
}

func (bp *BroadPhase) SetUnpairCallback(f UnpairCallback, userData interface{}) {
	bp.unpairCallback = f
	bp.unpairUserData = userData
}

func (bp *BroadPhase) proxy(id ID) *Proxy {
	p := bp.tree.Proxy(id)
	assert(!p.doomed, "proxy %d was removed", id)
	return p
}

func (bp *BroadPhase) sanitize(bb BB) BB {
	out, changed := bb.Sanitize()
	if changed {
		bp.logger.Warnw("sanitized degenerate box", "in", bb, "out", out)
	}
	return out
}

// Create inserts a proxy for obj and returns its id. From inside a callback
// the id is valid immediately but the proxy joins the tree on the next
// Update.
func (bp *BroadPhase) Create(obj interface{}, subindex int, bb BB, static bool) ID {
	p := bp.tree.Allocate(obj, subindex, bp.sanitize(bb), static)
	if bp.locked > 0 {
		bp.deferred = append(bp.deferred, deferredOp{kind: opInsert, proxy: p})
		return p.id
	}
	bp.tree.InsertProxy(p)
	bp.bufferMove(p)
	return p.id
}

func (bp *BroadPhase) Move(id ID, bb BB) {
	p := bp.proxy(id)
	bb = bp.sanitize(bb)
	if bp.locked > 0 {
		bp.deferred = append(bp.deferred, deferredOp{kind: opMove, proxy: p, bb: bb})
		return
	}
	bp.move(p, bb)
}

func (bp *BroadPhase) move(p *Proxy, bb BB) {
	if p.node != nil && p.bb == bb {
		return
	}
	bp.tree.Move(p.id, bb)
	bp.bufferMove(p)
}

func (bp *BroadPhase) SetStatic(id ID, static bool) {
	p := bp.proxy(id)
	if bp.locked > 0 {
		bp.deferred = append(bp.deferred, deferredOp{kind: opSetStatic, proxy: p, static: static})
		return
	}
	bp.setStatic(p, static)
}

func (bp *BroadPhase) setStatic(p *Proxy, static bool) {
	if bp.tree.SetStatic(p.id, static) {
		bp.bufferMove(p)
	}
}

// Remove drops the proxy. Every pair it belongs to is unpaired before the
// id is released.
func (bp *BroadPhase) Remove(id ID) {
	p := bp.proxy(id)
	if bp.locked > 0 {
		p.doomed = true
		bp.deferred = append(bp.deferred, deferredOp{kind: opRemove, proxy: p})
		return
	}
	bp.remove(p)
	bp.unpairDoomed()
}

func (bp *BroadPhase) remove(p *Proxy) {
	bp.unBufferMove(p)
	p.doomed = true

	bp.locked++
	defer func() { bp.locked-- }()
	for p.pairs != nil {
		bp.unpair(p.pairs)
	}
	bp.tree.Remove(p.id)
}

// RecheckPairs re-evaluates the pairs of a proxy right away, e.g. after its
// collision mask changed without it moving.
func (bp *BroadPhase) RecheckPairs(id ID) {
	p := bp.proxy(id)
	if bp.locked > 0 {
		bp.deferred = append(bp.deferred, deferredOp{kind: opRecheck, proxy: p})
		return
	}
	if p.node == nil {
		return
	}
	bp.checkProxy(p)
	bp.unpairDoomed()
}

func (bp *BroadPhase) Object(id ID) interface{} {
	return bp.proxy(id).obj
}

func (bp *BroadPhase) IsStatic(id ID) bool {
	return bp.proxy(id).static
}

func (bp *BroadPhase) Subindex(id ID) int {
	return bp.proxy(id).subindex
}

func (bp *BroadPhase) AABB(id ID) BB {
	return bp.proxy(id).bb
}

// Update applies deferred mutations and fires the pair and unpair callbacks
// of every proxy touched since the last update.
func (bp *BroadPhase) Update() {
	assert(bp.locked == 0, "Update called from a pair callback")

	bp.flushDeferred()

	added, removed := bp.pairsAdded, bp.pairsRemoved
	buffer := bp.moveBuffer
	for i, p := range buffer {
		buffer[i] = nil
		if p == nil {
			continue
		}
		p.queued = false
		bp.checkProxy(p)
	}
	bp.moveBuffer = buffer[:0]
	bp.unpairDoomed()

	if bp.pairsAdded != added || bp.pairsRemoved != removed {
		bp.logger.Debugw("broad-phase update",
			"added", bp.pairsAdded-added,
			"removed", bp.pairsRemoved-removed,
			"pairs", bp.pairs.Count(),
			"proxies", bp.tree.Count(),
		)
	}
}

func (bp *BroadPhase) flushDeferred() {
	ops := bp.deferred
	bp.deferred = nil

	for _, op := range ops {
		p := op.proxy
		if cur, ok := bp.tree.Lookup(p.id); !ok || cur != p {
			continue
		}

		switch op.kind {
		case opInsert:
			bp.tree.InsertProxy(p)
			bp.bufferMove(p)
		case opMove:
			bp.move(p, op.bb)
		case opRemove:
			bp.remove(p)
		case opSetStatic:
			bp.setStatic(p, op.static)
		case opRecheck:
			bp.bufferMove(p)
		}
	}
}

// unpairDoomed drops the pairs of proxies removed from a callback. The
// proxies stay in the tree until the next flush.
func (bp *BroadPhase) unpairDoomed() {
	bp.locked++
	defer func() { bp.locked-- }()

	// Callbacks may append more removals.
	for i := 0; i < len(bp.deferred); i++ {
		if op := bp.deferred[i]; op.kind == opRemove {
			for op.proxy.pairs != nil {
				bp.unpair(op.proxy.pairs)
			}
		}
	}
}

func (bp *BroadPhase) bufferMove(p *Proxy) {
	if p.queued {
		return
	}
	p.queued = true
	bp.moveBuffer = append(bp.moveBuffer, p)
}

func (bp *BroadPhase) unBufferMove(p *Proxy) {
	if !p.queued {
		return
	}
	for i, q := range bp.moveBuffer {
		if q == p {
			bp.moveBuffer[i] = nil
		}
	}
	p.queued = false
}

func (bp *BroadPhase) shouldPair(p, q *Proxy) bool {
	if p.static && q.static {
		return false
	}
	if p.doomed || q.doomed {
		return false
	}
	return p.bb.Intersects(q.bb) && bp.pairTest(p.obj, q.obj)
}

// checkProxy drops the pairs of p that no longer hold and creates the ones
// that newly do.
func (bp *BroadPhase) checkProxy(p *Proxy) {
	bp.locked++
	defer func() { bp.locked-- }()

	for pair := p.pairs; pair != nil; {
		next := pair.Next(p)
		if !bp.shouldPair(p, pair.Other(p)) {
			bp.unpair(pair)
		}
		pair = next
	}

	// Static proxies never pair with each other.
	mask := TreeFlagAll
	if p.static {
		mask = TreeFlagDynamic
	}

	candidates := bp.candidates[:0]
	bp.candidates = nil
	bp.tree.Query(p.bb, mask, func(q *Proxy) bool {
		if q != p {
			candidates = append(candidates, q)
		}
		return true
	})

	for i, q := range candidates {
		candidates[i] = nil
		if bp.pairs.Find(p, q) == nil && bp.shouldPair(p, q) {
			bp.pair(p, q)
		}
	}
	bp.candidates = candidates[:0]
}

func (bp *BroadPhase) pair(p, q *Proxy) {
	a, b := canonical(p, q)
	var data interface{}
	if bp.pairCallback != nil {
		data = bp.pairCallback(bp.pairUserData, a.id, a.obj, a.subindex, b.id, b.obj, b.subindex)
	}
	bp.pairs.Insert(a, b, data)
	bp.pairsAdded++
}

func (bp *BroadPhase) unpair(pair *Pair) {
	a, b := pair.A(), pair.B()
	if bp.unpairCallback != nil {
		bp.unpairCallback(bp.unpairUserData, a.id, a.obj, a.subindex, b.id, b.obj, b.subindex, pair.data)
	}
	bp.pairs.Remove(pair)
	bp.pairsRemoved++
}

// HasPair reports whether a and b currently form a pair, and its data.
func (bp *BroadPhase) HasPair(a, b ID) (interface{}, bool) {
	pair := bp.pairs.Find(bp.proxy(a), bp.proxy(b))
	if pair == nil {
		return nil, false
	}
	return pair.data, true
}

// EachPair visits every active pair.
func (bp *BroadPhase) EachPair(f func(a, b *Proxy, data interface{})) {
	bp.pairs.Each(func(pair *Pair) {
		f(pair.A(), pair.B(), pair.data)
	})
}

// Query calls f for every live proxy whose box intersects bb until f returns
// false.
func (bp *BroadPhase) Query(bb BB, f func(p *Proxy) bool) {
	bp.tree.Query(bp.sanitize(bb), TreeFlagAll, func(p *Proxy) bool {
		if p.doomed {
			return true
		}
		return f(p)
	})
}

// QuerySegment calls f for every live proxy whose box the segment touches.
func (bp *BroadPhase) QuerySegment(from, to Vector, f func(p *Proxy) bool) {
	bp.tree.SegmentQuery(from, to, TreeFlagAll, func(p *Proxy) bool {
		if p.doomed {
			return true
		}
		return f(p)
	})
}

// CullAABB stores up to len(results) objects whose boxes intersect bb, and
// their subindices when subindices is long enough. It returns the number of
// matches, which exceeds len(results) when the results were truncated.
func (bp *BroadPhase) CullAABB(bb BB, results []interface{}, subindices []int) int {
	n := 0
	bp.Query(bb, func(p *Proxy) bool {
		collect(p, n, results, subindices)
		n++
		return true
	})
	return n
}

// CullSegment is CullAABB for the segment from->to.
func (bp *BroadPhase) CullSegment(from, to Vector, results []interface{}, subindices []int) int {
	n := 0
	bp.QuerySegment(from, to, func(p *Proxy) bool {
		collect(p, n, results, subindices)
		n++
		return true
	})
	return n
}

func collect(p *Proxy, n int, results []interface{}, subindices []int) {
	if n >= len(results) {
		return
	}
	results[n] = p.obj
	if n < len(subindices) {
		subindices[n] = p.subindex
	}
}

type Stats struct {
	Proxies       int
	Pairs         int
	StaticHeight  int
	DynamicHeight int
	Reinserts     uint
	PairsAdded    uint
	PairsRemoved  uint
}

func (bp *BroadPhase) Stats() Stats {
	return Stats{
		Proxies:       bp.tree.Count(),
		Pairs:         bp.pairs.Count(),
		StaticHeight:  bp.tree.Height(TreeStatic),
		DynamicHeight: bp.tree.Height(TreeDynamic),
		Reinserts:     bp.tree.reinserts,
		PairsAdded:    bp.pairsAdded,
		PairsRemoved:  bp.pairsRemoved,
	}
}

// Validate checks the tree structure and the pair threads.
func (bp *BroadPhase) Validate() error {
	return multierr.Combine(bp.tree.Validate(), bp.pairs.validate(bp.tree))
}
