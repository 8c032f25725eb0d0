package broadphase

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Tree names one of the two partitions of a BBTree. Static proxies live in
// their own tree so moving bodies never refit it.
type Tree int

const (
	TreeStatic Tree = iota
	TreeDynamic
	treeCount
)

func (which Tree) String() string {
	switch which {
	case TreeStatic:
		return "static"
	case TreeDynamic:
		return "dynamic"
	}
	return fmt.Sprintf("Tree(%d)", int(which))
}

func (which Tree) Flag() TreeFlag {
	return 1 << which
}

// TreeFlag is a bitmask of partitions a query descends into.
type TreeFlag uint8

const (
	TreeFlagStatic  TreeFlag = 1 << TreeStatic
	TreeFlagDynamic TreeFlag = 1 << TreeDynamic
	TreeFlagAll              = TreeFlagStatic | TreeFlagDynamic
)

// ID identifies a proxy. Zero is reserved and never handed out.
type ID uint32

const InvalidID ID = 0

// treeNode is a leaf when proxy is set, otherwise it has both children.
// Pooled nodes are chained through parent.
type treeNode struct {
	bb     BB
	parent *treeNode
	height int

	children
	proxy *Proxy
}

type children struct {
	a, b *treeNode
}

func (node *treeNode) isLeaf() bool {
	return node.proxy != nil
}

func (node *treeNode) other(child *treeNode) *treeNode {
	if node.a == child {
		return node.b
	}
	return node.a
}

func (node *treeNode) replace(old, value *treeNode) {
	if node.a == old {
		node.a = value
	} else {
		node.b = value
	}
	value.parent = node
}

func (node *treeNode) refresh() {
	node.height = 1 + max(node.a.height, node.b.height)
	node.bb = node.a.bb.Merge(node.b.bb)
}

// Proxy is the leaf record of one inserted object.
type Proxy struct {
	id       ID
	obj      interface{}
	subindex int
	bb       BB
	static   bool

	node  *treeNode
	pairs *Pair

	// queued is set while the proxy sits in the move buffer.
	queued bool
	// doomed is set when removal was deferred to the next update.
	doomed bool
}

func (p *Proxy) ID() ID {
	return p.id
}

func (p *Proxy) Object() interface{} {
	return p.obj
}

func (p *Proxy) Subindex() int {
	return p.subindex
}

func (p *Proxy) BB() BB {
	return p.bb
}

func (p *Proxy) FatBB() BB {
	if p.node == nil {
		return p.bb
	}
	return p.node.bb
}

func (p *Proxy) IsStatic() bool {
	return p.static
}

func (p *Proxy) tree() Tree {
	if p.static {
		return TreeStatic
	}
	return TreeDynamic
}

// BBTree is a dynamic bounding volume hierarchy split in a static and a
// dynamic partition. Leaves store a fattened copy of the proxy box so small
// moves do not restructure the tree.
type BBTree struct {
	roots [treeCount]*treeNode

	proxies []*Proxy
	freeIDs []ID
	keys    map[proxyKey]ID
	count   int

	margin     float64
	prediction float64

	pooledNodes *treeNode
	stack       []*treeNode

	reinserts uint
}

// proxyKey identifies the one proxy allowed per object and subindex.
type proxyKey struct {
	obj      interface{}
	subindex int
}

func NewBBTree(margin, prediction float64) *BBTree {
	return &BBTree{
		keys:       map[proxyKey]ID{},
		margin:     margin,
		prediction: prediction,
	}
}

func (tree *BBTree) Count() int {
	return tree.count
}

func (tree *BBTree) root(which Tree) *treeNode {
	return tree.roots[which]
}

func (tree *BBTree) Height(which Tree) int {
	if root := tree.roots[which]; root != nil {
		return root.height
	}
	return 0
}

// Lookup returns the live proxy for id.
func (tree *BBTree) Lookup(id ID) (*Proxy, bool) {
	if id == InvalidID || int(id) > len(tree.proxies) {
		return nil, false
	}
	p := tree.proxies[id-1]
	return p, p != nil
}

// Proxy returns the live proxy for id and panics on an unknown id.
func (tree *BBTree) Proxy(id ID) *Proxy {
	p, ok := tree.Lookup(id)
	assert(ok, "invalid proxy id %d", id)
	return p
}

// Allocate reserves an id and a proxy record without touching the tree. obj
// must be comparable and each (obj, subindex) may have only one proxy.
func (tree *BBTree) Allocate(obj interface{}, subindex int, bb BB, static bool) *Proxy {
	assert(obj != nil, "proxy object must not be nil")
	key := proxyKey{obj, subindex}
	dup, exists := tree.keys[key]
	assert(!exists, "%v subindex %d already has proxy %d", obj, subindex, dup)

	var id ID
	if n := len(tree.freeIDs); n > 0 {
		id = tree.freeIDs[n-1]
		tree.freeIDs = tree.freeIDs[:n-1]
	} else {
		tree.proxies = append(tree.proxies, nil)
		id = ID(len(tree.proxies))
	}

	p := &Proxy{
		id:       id,
		obj:      obj,
		subindex: subindex,
		bb:       bb,
		static:   static,
	}
	tree.proxies[id-1] = p
	tree.keys[key] = id
	tree.count++
	return p
}

func (tree *BBTree) Insert(obj interface{}, subindex int, bb BB, static bool) ID {
	p := tree.Allocate(obj, subindex, bb, static)
	tree.InsertProxy(p)
	return p.id
}

// InsertProxy links an allocated proxy into its partition.
func (tree *BBTree) InsertProxy(p *Proxy) {
	assert(p.node == nil, "proxy %d is already in the tree", p.id)
	p.node = tree.newLeaf(p, p.bb.Grow(tree.margin))
	tree.insertLeaf(p.node, p.tree())
}

// Move stores the new box of a proxy and reports whether the leaf had to be
// reinserted because the box escaped its fattened bounds.
func (tree *BBTree) Move(id ID, bb BB) bool {
	p := tree.Proxy(id)
	old := p.bb
	p.bb = bb

	if p.node == nil || p.node.bb.Contains(bb) {
		return false
	}

	which := p.tree()
	tree.removeLeaf(p.node, which)

	fat := bb.Grow(tree.margin)
	if tree.prediction > 0 {
		// Huge boxes can overflow the displacement.
		if d := bb.Center().Sub(old.Center()).Mult(tree.prediction); d.IsValid() {
			fat = fat.Sweep(d)
		}
	}
	p.node.bb = fat

	tree.insertLeaf(p.node, which)
	tree.reinserts++
	return true
}

// SetStatic moves a proxy to the other partition. It reports whether the
// flag changed.
func (tree *BBTree) SetStatic(id ID, static bool) bool {
	p := tree.Proxy(id)
	if p.static == static {
		return false
	}
	if p.node != nil {
		tree.removeLeaf(p.node, p.tree())
	}
	p.static = static
	if p.node != nil {
		tree.insertLeaf(p.node, p.tree())
	}
	return true
}

// Remove unlinks the proxy and frees its id for reuse. Pairs must already be
// gone.
func (tree *BBTree) Remove(id ID) {
	p := tree.Proxy(id)
	assert(p.pairs == nil, "proxy %d removed with live pairs", id)

	if p.node != nil {
		tree.removeLeaf(p.node, p.tree())
		tree.nodeRecycle(p.node)
		p.node = nil
	}

	tree.proxies[id-1] = nil
	delete(tree.keys, proxyKey{p.obj, p.subindex})
	tree.freeIDs = append(tree.freeIDs, id)
	tree.count--
}

func (tree *BBTree) insertLeaf(leaf *treeNode, which Tree) {
	root := tree.roots[which]
	if root == nil {
		leaf.parent = nil
		tree.roots[which] = leaf
		return
	}

	// Find the cheapest sibling by perimeter cost.
	leafBB := leaf.bb
	node := root
	for !node.isLeaf() {
		area := node.bb.Perimeter()
		combined := node.bb.Merge(leafBB).Perimeter()

		cost := 2.0 * combined
		inheritance := 2.0 * (combined - area)

		costA := descendCost(node.a, leafBB) + inheritance
		costB := descendCost(node.b, leafBB) + inheritance

		if cost < costA && cost < costB {
			break
		}

		if costA == costB {
			costA = node.a.bb.Proximity(leafBB)
			costB = node.b.bb.Proximity(leafBB)
		}

		if costB < costA {
			node = node.b
		} else {
			node = node.a
		}
	}

	sibling := node
	oldParent := sibling.parent
	parent := tree.newNode(sibling, leaf)

	if oldParent != nil {
		oldParent.replace(sibling, parent)
	} else {
		parent.parent = nil
		tree.roots[which] = parent
	}

	tree.refit(parent, which)
}

func descendCost(child *treeNode, bb BB) float64 {
	merged := child.bb.Merge(bb).Perimeter()
	if child.isLeaf() {
		return merged
	}
	return merged - child.bb.Perimeter()
}

func (tree *BBTree) removeLeaf(leaf *treeNode, which Tree) {
	if leaf == tree.roots[which] {
		tree.roots[which] = nil
		leaf.parent = nil
		return
	}

	parent := leaf.parent
	assert(parent != nil, "leaf is not in the %v tree", which)
	grandParent := parent.parent
	sibling := parent.other(leaf)

	if grandParent != nil {
		grandParent.replace(parent, sibling)
		tree.nodeRecycle(parent)
		tree.refit(grandParent, which)
	} else {
		sibling.parent = nil
		tree.roots[which] = sibling
		tree.nodeRecycle(parent)
	}
	leaf.parent = nil
}

// refit walks from node to the root, rebalancing and recomputing bounds.
func (tree *BBTree) refit(node *treeNode, which Tree) {
	for node != nil {
		node = tree.balance(node, which)
		node.refresh()
		node = node.parent
	}
}

// balance rotates the taller child of node up when the heights of its
// children differ by more than one. Returns the new subtree root.
func (tree *BBTree) balance(node *treeNode, which Tree) *treeNode {
	if node.isLeaf() || node.height < 2 {
		return node
	}

	balance := node.b.height - node.a.height
	if balance > 1 {
		return tree.rotate(node, node.b, which)
	}
	if balance < -1 {
		return tree.rotate(node, node.a, which)
	}
	return node
}

func (tree *BBTree) rotate(node, up *treeNode, which Tree) *treeNode {
	tall, short := up.a, up.b
	if short.height > tall.height {
		tall, short = short, tall
	}

	parent := node.parent
	if parent != nil {
		parent.replace(node, up)
	} else {
		up.parent = nil
		tree.roots[which] = up
	}

	node.replace(up, short)
	up.a, up.b = node, tall
	node.parent = up
	tall.parent = up

	node.refresh()
	up.refresh()
	return up
}

// Query calls f for every proxy in the selected partitions whose box
// intersects bb. Returning false from f stops the walk.
func (tree *BBTree) Query(bb BB, mask TreeFlag, f func(p *Proxy) bool) {
	tree.walk(mask, func(node *treeNode) bool {
		return node.bb.Intersects(bb)
	}, func(p *Proxy) bool {
		if !p.bb.Intersects(bb) {
			return true
		}
		return f(p)
	})
}

// SegmentQuery calls f for every proxy whose box the segment a->b touches.
func (tree *BBTree) SegmentQuery(a, b Vector, mask TreeFlag, f func(p *Proxy) bool) {
	tree.walk(mask, func(node *treeNode) bool {
		return node.bb.IntersectsSegment(a, b)
	}, func(p *Proxy) bool {
		if !p.bb.IntersectsSegment(a, b) {
			return true
		}
		return f(p)
	})
}

func (tree *BBTree) walk(mask TreeFlag, visit func(node *treeNode) bool, leaf func(p *Proxy) bool) {
	// Take the scratch stack so a query issued from a callback gets its own.
	stack := tree.stack[:0]
	tree.stack = nil
	defer func() { tree.stack = stack[:0] }()

	for which := TreeStatic; which < treeCount; which++ {
		if mask&which.Flag() == 0 || tree.roots[which] == nil {
			continue
		}
		stack = append(stack, tree.roots[which])

		for len(stack) > 0 {
			node := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if !visit(node) {
				continue
			}
			if node.isLeaf() {
				if !leaf(node.proxy) {
					return
				}
			} else {
				stack = append(stack, node.a, node.b)
			}
		}
	}
}

// Each visits every proxy that is linked into a partition.
func (tree *BBTree) Each(f func(p *Proxy)) {
	for _, p := range tree.proxies {
		if p != nil && p.node != nil {
			f(p)
		}
	}
}

func (tree *BBTree) newNode(a, b *treeNode) *treeNode {
	node := tree.nodeFromPool()
	node.proxy = nil
	node.parent = nil

	nodeSetA(node, a)
	nodeSetB(node, b)
	node.refresh()
	return node
}

func nodeSetA(node, value *treeNode) {
	node.a = value
	value.parent = node
}

func nodeSetB(node, value *treeNode) {
	node.b = value
	value.parent = node
}

func (tree *BBTree) newLeaf(p *Proxy, bb BB) *treeNode {
	node := tree.nodeFromPool()
	node.proxy = p
	node.bb = bb
	node.parent = nil
	node.height = 0
	node.a, node.b = nil, nil
	return node
}

func (tree *BBTree) nodeFromPool() *treeNode {
	node := tree.pooledNodes

	if node != nil {
		tree.pooledNodes = node.parent
		node.parent = nil
		return node
	}

	// Pool is exhausted make more
	for i := 0; i < 32; i++ {
		tree.nodeRecycle(&treeNode{})
	}

	return tree.nodeFromPool()
}

func (tree *BBTree) nodeRecycle(node *treeNode) {
	node.proxy = nil
	node.a, node.b = nil, nil
	node.height = 0
	node.parent = tree.pooledNodes
	tree.pooledNodes = node
}

// Validate checks links, heights and bounds of both partitions.
func (tree *BBTree) Validate() error {
	var err error
	leaves := 0
	for which := TreeStatic; which < treeCount; which++ {
		root := tree.roots[which]
		if root == nil {
			continue
		}
		if root.parent != nil {
			err = multierr.Append(err, errors.Errorf("%v root has a parent", which))
		}
		err = multierr.Append(err, tree.validateNode(root, which, &leaves))
	}

	linked := 0
	tree.Each(func(p *Proxy) { linked++ })
	if leaves != linked {
		err = multierr.Append(err, errors.Errorf("found %d leaves but %d linked proxies", leaves, linked))
	}
	return err
}

func (tree *BBTree) validateNode(node *treeNode, which Tree, leaves *int) error {
	if node.isLeaf() {
		*leaves++
		p := node.proxy
		var err error
		if node.a != nil || node.b != nil || node.height != 0 {
			err = multierr.Append(err, errors.Errorf("leaf of proxy %d has children", p.id))
		}
		if p.node != node {
			err = multierr.Append(err, errors.Errorf("proxy %d does not point at its leaf", p.id))
		}
		if p.tree() != which {
			err = multierr.Append(err, errors.Errorf("proxy %d is in the %v tree", p.id, which))
		}
		if !node.bb.Contains(p.bb) {
			err = multierr.Append(err, errors.Errorf("fat box of proxy %d does not contain %v", p.id, p.bb))
		}
		return err
	}

	if node.a == nil || node.b == nil {
		return errors.New("internal node is missing a child")
	}

	var err error
	if node.a.parent != node || node.b.parent != node {
		err = multierr.Append(err, errors.New("child does not point at its parent"))
	}
	if node.height != 1+max(node.a.height, node.b.height) {
		err = multierr.Append(err, errors.Errorf("node height %d is stale", node.height))
	}
	if node.bb != node.a.bb.Merge(node.b.bb) {
		err = multierr.Append(err, errors.Errorf("node box %v is not the union of its children", node.bb))
	}
	err = multierr.Append(err, tree.validateNode(node.a, which, leaves))
	return multierr.Append(err, tree.validateNode(node.b, which, leaves))
}
