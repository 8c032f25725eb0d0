package broadphase

import (
	"math/rand"
	"sort"
	"testing"

	"go.viam.com/test"
)

func TestBBTree_NodePool(t *testing.T) {
	tree := NewBBTree(0, 0)
	node := tree.nodeFromPool()
	test.That(t, node.parent, test.ShouldBeNil)

	// the rest of the first batch is chained through parent
	count := 0
	for n := tree.pooledNodes; n != nil; n = n.parent {
		count++
	}
	test.That(t, count, test.ShouldEqual, 31)

	tree.nodeRecycle(node)
	test.That(t, tree.nodeFromPool(), test.ShouldEqual, node)
}

func TestBBTree_InsertRemove(t *testing.T) {
	tree := NewBBTree(DefaultMargin, DefaultPrediction)

	a := tree.Insert("a", 0, NewBB(0, 0, 1, 1), false)
	b := tree.Insert("b", 1, NewBB(2, 0, 3, 1), false)
	c := tree.Insert("c", 2, NewBB(4, 0, 5, 1), true)
	test.That(t, []ID{a, b, c}, test.ShouldResemble, []ID{1, 2, 3})
	test.That(t, tree.Count(), test.ShouldEqual, 3)
	test.That(t, tree.Height(TreeDynamic), test.ShouldEqual, 1)
	test.That(t, tree.Height(TreeStatic), test.ShouldEqual, 0)
	test.That(t, tree.root(TreeStatic).proxy.id, test.ShouldEqual, c)
	test.That(t, tree.Validate(), test.ShouldBeNil)

	t.Run("ids are reused last in first out", func(t *testing.T) {
		tree.Remove(a)
		tree.Remove(b)
		test.That(t, tree.Count(), test.ShouldEqual, 1)
		test.That(t, tree.root(TreeDynamic), test.ShouldBeNil)

		test.That(t, tree.Insert("d", 0, NewBB(0, 0, 1, 1), false), test.ShouldEqual, b)
		test.That(t, tree.Insert("e", 0, NewBB(0, 0, 1, 1), false), test.ShouldEqual, a)
		test.That(t, tree.Insert("f", 0, NewBB(0, 0, 1, 1), false), test.ShouldEqual, ID(4))
		test.That(t, tree.Validate(), test.ShouldBeNil)
	})

	t.Run("unknown ids panic", func(t *testing.T) {
		test.That(t, func() { tree.Proxy(InvalidID) }, test.ShouldPanic)
		test.That(t, func() { tree.Proxy(99) }, test.ShouldPanic)
		test.That(t, func() { tree.Remove(c); tree.Remove(c) }, test.ShouldPanic)
	})

	t.Run("nil objects panic", func(t *testing.T) {
		test.That(t, func() { tree.Insert(nil, 0, BB{}, false) }, test.ShouldPanic)
	})

	t.Run("one proxy per object and subindex", func(t *testing.T) {
		g := tree.Insert("g", 0, NewBB(0, 0, 1, 1), false)
		test.That(t, func() { tree.Insert("g", 0, NewBB(5, 5, 6, 6), true) }, test.ShouldPanic)
		test.That(t, tree.Insert("g", 1, NewBB(0, 0, 1, 1), false), test.ShouldNotEqual, g)

		// the key is released with the proxy
		tree.Remove(g)
		test.That(t, tree.Insert("g", 0, NewBB(0, 0, 1, 1), false), test.ShouldEqual, g)
		test.That(t, tree.Validate(), test.ShouldBeNil)
	})
}

func TestBBTree_Move(t *testing.T) {
	tree := NewBBTree(1, 2)
	id := tree.Insert("a", 0, NewBB(0, 0, 1, 1), false)
	p := tree.Proxy(id)
	test.That(t, p.FatBB(), test.ShouldResemble, NewBB(-1, -1, 2, 2))

	// still inside the fat box
	test.That(t, tree.Move(id, NewBB(0.5, 0.5, 1.5, 1.5)), test.ShouldBeFalse)
	test.That(t, p.BB(), test.ShouldResemble, NewBB(0.5, 0.5, 1.5, 1.5))
	test.That(t, p.FatBB(), test.ShouldResemble, NewBB(-1, -1, 2, 2))

	// escaping reinserts with the displacement stretched ahead
	test.That(t, tree.Move(id, NewBB(3.5, 0.5, 4.5, 1.5)), test.ShouldBeTrue)
	test.That(t, tree.reinserts, test.ShouldEqual, uint(1))
	test.That(t, p.FatBB(), test.ShouldResemble, NewBB(2.5, -0.5, 11.5, 2.5))
	test.That(t, p.FatBB().Contains(p.BB()), test.ShouldBeTrue)
	test.That(t, tree.Validate(), test.ShouldBeNil)
}

func TestBBTree_SetStatic(t *testing.T) {
	tree := NewBBTree(DefaultMargin, DefaultPrediction)
	a := tree.Insert("a", 0, NewBB(0, 0, 1, 1), false)
	b := tree.Insert("b", 0, NewBB(0, 0, 1, 1), false)

	test.That(t, tree.SetStatic(a, true), test.ShouldBeTrue)
	test.That(t, tree.SetStatic(a, true), test.ShouldBeFalse)
	test.That(t, tree.root(TreeStatic).proxy.id, test.ShouldEqual, a)
	test.That(t, tree.root(TreeDynamic).proxy.id, test.ShouldEqual, b)
	test.That(t, tree.Validate(), test.ShouldBeNil)

	var static []ID
	tree.Query(NewBB(0, 0, 1, 1), TreeFlagStatic, func(p *Proxy) bool {
		static = append(static, p.ID())
		return true
	})
	test.That(t, static, test.ShouldResemble, []ID{a})
}

func TestBBTree_QueryMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tree := NewBBTree(DefaultMargin, DefaultPrediction)

	randomBB := func() BB {
		x, y := rng.Float64()*100, rng.Float64()*100
		return NewBBForRect(Vector{x, y}, Vector{rng.Float64() * 6, rng.Float64() * 6})
	}

	var live []ID
	for i := 0; i < 300; i++ {
		live = append(live, tree.Insert(i, 0, randomBB(), rng.Intn(4) == 0))
	}

	for round := 0; round < 20; round++ {
		for i := 0; i < 40; i++ {
			id := live[rng.Intn(len(live))]
			tree.Move(id, tree.Proxy(id).BB().Offset(Vector{rng.Float64()*4 - 2, rng.Float64()*4 - 2}))
		}
		for i := 0; i < 10; i++ {
			k := rng.Intn(len(live))
			tree.Remove(live[k])
			live = append(live[:k], live[k+1:]...)
			live = append(live, tree.Insert((round+1)*1000+i, 0, randomBB(), rng.Intn(4) == 0))
		}
		for i := 0; i < 5; i++ {
			id := live[rng.Intn(len(live))]
			tree.SetStatic(id, !tree.Proxy(id).IsStatic())
		}
		test.That(t, tree.Validate(), test.ShouldBeNil)

		query := randomBB().Grow(5)
		var got, want []ID
		tree.Query(query, TreeFlagAll, func(p *Proxy) bool {
			got = append(got, p.ID())
			return true
		})
		for _, id := range live {
			if tree.Proxy(id).BB().Intersects(query) {
				want = append(want, id)
			}
		}
		sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
		sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
		test.That(t, got, test.ShouldResemble, want)
	}
}

func TestBBTree_Balanced(t *testing.T) {
	tree := NewBBTree(0, 0)
	for i := 0; i < 1024; i++ {
		x := float64(i)
		tree.Insert(i, 0, NewBB(x, 0, x+0.5, 0.5), false)
	}
	test.That(t, tree.Validate(), test.ShouldBeNil)
	test.That(t, tree.Height(TreeDynamic), test.ShouldBeLessThan, 40)
}

func TestBBTree_SegmentQuery(t *testing.T) {
	tree := NewBBTree(DefaultMargin, DefaultPrediction)
	ids := make([]ID, 5)
	for i := range ids {
		x := float64(i * 10)
		ids[i] = tree.Insert(i, 0, NewBB(x, 0, x+1, 1), i%2 == 0)
	}

	var hits []ID
	tree.SegmentQuery(Vector{-5, 0.5}, Vector{25, 0.5}, TreeFlagAll, func(p *Proxy) bool {
		hits = append(hits, p.ID())
		return true
	})
	sort.Slice(hits, func(i, j int) bool { return hits[i] < hits[j] })
	test.That(t, hits, test.ShouldResemble, ids[:3])

	t.Run("stops when the callback returns false", func(t *testing.T) {
		n := 0
		tree.SegmentQuery(Vector{-5, 0.5}, Vector{45, 0.5}, TreeFlagAll, func(p *Proxy) bool {
			n++
			return false
		})
		test.That(t, n, test.ShouldEqual, 1)
	})

	t.Run("misses above the row", func(t *testing.T) {
		tree.SegmentQuery(Vector{-5, 2}, Vector{45, 2}, TreeFlagAll, func(p *Proxy) bool {
			t.Fatal("unexpected hit", p.ID())
			return true
		})
	})
}

func TestBBTree_NestedQuery(t *testing.T) {
	tree := NewBBTree(DefaultMargin, DefaultPrediction)
	for i := 0; i < 16; i++ {
		x := float64(i)
		tree.Insert(i, 0, NewBB(x, 0, x+1, 1), false)
	}

	outer, inner := 0, 0
	tree.Query(NewBB(0, 0, 16, 1), TreeFlagAll, func(p *Proxy) bool {
		outer++
		tree.Query(p.BB(), TreeFlagAll, func(q *Proxy) bool {
			inner++
			return true
		})
		return true
	})
	test.That(t, outer, test.ShouldEqual, 16)
	// each box touches itself and its neighbours on shared edges
	test.That(t, inner, test.ShouldEqual, 16*3-2)
}
