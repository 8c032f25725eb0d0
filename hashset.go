package broadphase

type HashValue uint64

type HashSetEqual[T any] func(ptr, elt T) bool
type HashSetTrans[T any] func(ptr T, data interface{}) T
type HashSetIterator[T any] func(elt T)

type HashSetBin[T any] struct {
	elt  T
	hash HashValue
	next *HashSetBin[T]
}

// HashSet chains elements that share a hash value; eql resolves collisions.
type HashSet[T any] struct {
	entries      uint
	eql          HashSetEqual[T]
	defaultValue T

	table map[HashValue]*HashSetBin[T]
}

func NewHashSet[T any](eql HashSetEqual[T]) *HashSet[T] {
	return &HashSet[T]{
		eql:   eql,
		table: map[HashValue]*HashSetBin[T]{},
	}
}

// HashPair hashes an unordered pair of 32 bit keys.
func HashPair(a, b uint32) HashValue {
	if a > b {
		a, b = b, a
	}
	return HashValue(a)<<32 | HashValue(b)
}

func (set *HashSet[T]) Count() uint {
	return set.entries
}

// Insert returns the element matching ptr, creating it with trans (or using
// ptr itself) when it is missing.
func (set *HashSet[T]) Insert(hash HashValue, ptr T, trans HashSetTrans[T], data interface{}) T {
	bin := set.table[hash]
	for bin != nil && !set.eql(ptr, bin.elt) {
		bin = bin.next
	}

	if bin == nil {
		bin = &HashSetBin[T]{hash: hash}
		if trans != nil {
			bin.elt = trans(ptr, data)
		} else {
			bin.elt = ptr
		}

		bin.next = set.table[hash]
		set.table[hash] = bin

		set.entries++
	}

	return bin.elt
}

// Remove unlinks the element matching ptr and returns it, or the default
// value when nothing matched.
func (set *HashSet[T]) Remove(hash HashValue, ptr T) T {
	bin := set.table[hash]
	var prev *HashSetBin[T]

	for bin != nil && !set.eql(ptr, bin.elt) {
		prev = bin
		bin = bin.next
	}

	if bin == nil {
		return set.defaultValue
	}

	if prev == nil {
		if bin.next == nil {
			delete(set.table, hash)
		} else {
			set.table[hash] = bin.next
		}
	} else {
		prev.next = bin.next
	}
	set.entries--
	return bin.elt
}

func (set *HashSet[T]) Find(hash HashValue, ptr T) T {
	bin := set.table[hash]
	for bin != nil && !set.eql(ptr, bin.elt) {
		bin = bin.next
	}

	if bin != nil {
		return bin.elt
	}
	return set.defaultValue
}

func (set *HashSet[T]) Each(f HashSetIterator[T]) {
	for _, bin := range set.table {
		for bin != nil {
			next := bin.next
			f(bin.elt)
			bin = next
		}
	}
}
