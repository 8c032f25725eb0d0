package broadphase

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Pair is an active overlap between two proxies. Every pair is threaded
// into the pair lists of both of its proxies, a always being the lower id.
type Pair struct {
	a, b Thread
	data interface{}
}

type Thread struct {
	prev, next *Pair
	proxy      *Proxy
}

func (pair *Pair) A() *Proxy {
	return pair.a.proxy
}

func (pair *Pair) B() *Proxy {
	return pair.b.proxy
}

// Data is the value the pair callback returned when the pair was created.
func (pair *Pair) Data() interface{} {
	return pair.data
}

func (pair *Pair) Other(p *Proxy) *Proxy {
	if pair.a.proxy == p {
		return pair.b.proxy
	}
	return pair.a.proxy
}

func (pair *Pair) thread(p *Proxy) *Thread {
	if pair.a.proxy == p {
		return &pair.a
	}
	return &pair.b
}

func (pair *Pair) Next(p *Proxy) *Pair {
	return pair.thread(p).next
}

func (pair *Pair) hash() HashValue {
	return HashPair(uint32(pair.a.proxy.id), uint32(pair.b.proxy.id))
}

func pairEql(ptr, elt *Pair) bool {
	return ptr.a.proxy == elt.a.proxy && ptr.b.proxy == elt.b.proxy
}

// pairTable owns the active pairs of a broad-phase.
type pairTable struct {
	set         *HashSet[*Pair]
	pooledPairs *Pair
	probe       Pair
}

func newPairTable() *pairTable {
	return &pairTable{set: NewHashSet(pairEql)}
}

func (table *pairTable) Count() int {
	return int(table.set.Count())
}

func canonical(a, b *Proxy) (*Proxy, *Proxy) {
	if b.id < a.id {
		return b, a
	}
	return a, b
}

func (table *pairTable) Find(a, b *Proxy) *Pair {
	a, b = canonical(a, b)
	table.probe.a.proxy, table.probe.b.proxy = a, b
	pair := table.set.Find(table.probe.hash(), &table.probe)
	table.probe.a.proxy, table.probe.b.proxy = nil, nil
	return pair
}

// Insert threads a new pair between a and b. The pair must not exist yet.
func (table *pairTable) Insert(a, b *Proxy, data interface{}) *Pair {
	a, b = canonical(a, b)
	pair := table.PairFromPool()
	pair.a = Thread{nil, a.pairs, a}
	pair.b = Thread{nil, b.pairs, b}
	pair.data = data

	if next := a.pairs; next != nil {
		next.thread(a).prev = pair
	}
	a.pairs = pair

	if next := b.pairs; next != nil {
		next.thread(b).prev = pair
	}
	b.pairs = pair

	stored := table.set.Insert(pair.hash(), pair, nil, nil)
	assert(stored == pair, "pair %d-%d inserted twice", a.id, b.id)
	return pair
}

// Remove unthreads the pair from both proxies and recycles it.
func (table *pairTable) Remove(pair *Pair) {
	table.set.Remove(pair.hash(), pair)
	pair.a.unlink()
	pair.b.unlink()
	table.PairRecycle(pair)
}

func (thread *Thread) unlink() {
	p := thread.proxy
	if thread.prev != nil {
		thread.prev.thread(p).next = thread.next
	} else {
		p.pairs = thread.next
	}
	if thread.next != nil {
		thread.next.thread(p).prev = thread.prev
	}
	thread.prev, thread.next = nil, nil
}

func (table *pairTable) Each(f func(pair *Pair)) {
	table.set.Each(f)
}

func (table *pairTable) PairFromPool() *Pair {
	pair := table.pooledPairs

	if pair != nil {
		table.pooledPairs = pair.a.next
		pair.a.next = nil
		return pair
	}

	// Pool is exhausted make more
	for i := 0; i < 32; i++ {
		table.PairRecycle(&Pair{})
	}

	return table.PairFromPool()
}

func (table *pairTable) PairRecycle(pair *Pair) {
	*pair = Pair{}
	pair.a.next = table.pooledPairs
	table.pooledPairs = pair
}

// validate checks that every pair is threaded on both proxies and that the
// per-proxy threads hold nothing but registered pairs.
func (table *pairTable) validate(tree *BBTree) error {
	var err error
	threaded := 0
	for _, p := range tree.proxies {
		if p == nil {
			continue
		}
		var prev *Pair
		for pair := p.pairs; pair != nil; pair = pair.Next(p) {
			threaded++
			if pair.thread(p).prev != prev {
				err = multierr.Append(err, errors.Errorf("broken back link on proxy %d", p.id))
			}
			if table.set.Find(pair.hash(), pair) != pair {
				err = multierr.Append(err, errors.Errorf("pair %d-%d is threaded but not registered", pair.a.proxy.id, pair.b.proxy.id))
			}
			if pair.a.proxy.id >= pair.b.proxy.id {
				err = multierr.Append(err, errors.Errorf("pair %d-%d is not canonical", pair.a.proxy.id, pair.b.proxy.id))
			}
			prev = pair
		}
	}
	if threaded != 2*table.Count() {
		err = multierr.Append(err, errors.Errorf("%d thread entries for %d pairs", threaded, table.Count()))
	}
	return err
}
