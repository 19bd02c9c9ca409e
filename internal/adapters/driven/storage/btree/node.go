package btree

import (
	"cmp"
	"slices"
)

const (
	// Order is the maximum number of children of a node.
	Order = 6

	minDegree = Order / 2
	maxKeys   = Order - 1
)

type item[K cmp.Ordered, V any] struct {
	key   K
	value V
}

type node[K cmp.Ordered, V any] struct {
	items    []item[K, V]
	children []*node[K, V]
}

func (n *node[K, V]) leaf() bool {
	return len(n.children) == 0
}

// find returns the position of key in n.items, or where it would be inserted.
func (n *node[K, V]) find(key K) (int, bool) {
	return slices.BinarySearchFunc(n.items, key, func(it item[K, V], k K) int {
		return cmp.Compare(it.key, k)
	})
}

func (n *node[K, V]) search(key K) (*node[K, V], int, bool) {
	for cur := n; cur != nil; {
		i, found := cur.find(key)
		if found {
			return cur, i, true
		}
		if cur.leaf() {
			return nil, 0, false
		}
		cur = cur.children[i]
	}
	return nil, 0, false
}

// splitChild splits the full child i around its median, which moves up into n.
func (n *node[K, V]) splitChild(i int) {
	child := n.children[i]
	mid := minDegree - 1
	median := child.items[mid]

	right := &node[K, V]{
		items: slices.Clone(child.items[mid+1:]),
	}
	if !child.leaf() {
		right.children = slices.Clone(child.children[mid+1:])
		clear(child.children[mid+1:])
		child.children = child.children[:mid+1]
	}
	clear(child.items[mid:])
	child.items = child.items[:mid]

	n.items = slices.Insert(n.items, i, median)
	n.children = slices.Insert(n.children, i+1, right)
}

// insertNonFull inserts a key known to be absent into a node that is not full.
func (n *node[K, V]) insertNonFull(key K, value V) {
	i, _ := n.find(key)
	if n.leaf() {
		n.items = slices.Insert(n.items, i, item[K, V]{key: key, value: value})
		return
	}

	if len(n.children[i].items) == maxKeys {
		n.splitChild(i)
		if key > n.items[i].key {
			i++
		}
	}
	n.children[i].insertNonFull(key, value)
}

func (n *node[K, V]) min() item[K, V] {
	cur := n
	for !cur.leaf() {
		cur = cur.children[0]
	}
	return cur.items[0]
}

func (n *node[K, V]) max() item[K, V] {
	cur := n
	for !cur.leaf() {
		cur = cur.children[len(cur.children)-1]
	}
	return cur.items[len(cur.items)-1]
}

// remove deletes key from the subtree rooted at n.
// Every node it descends into holds at least minDegree keys, except the root.
func (n *node[K, V]) remove(key K) bool {
	i, found := n.find(key)

	if n.leaf() {
		if !found {
			return false
		}
		n.items = slices.Delete(n.items, i, i+1)
		return true
	}

	if found {
		switch {
		case len(n.children[i].items) >= minDegree:
			pred := n.children[i].max()
			n.items[i] = pred
			return n.children[i].remove(pred.key)
		case len(n.children[i+1].items) >= minDegree:
			succ := n.children[i+1].min()
			n.items[i] = succ
			return n.children[i+1].remove(succ.key)
		default:
			n.merge(i)
			return n.children[i].remove(key)
		}
	}

	if len(n.children[i].items) < minDegree {
		i = n.fill(i)
	}
	return n.children[i].remove(key)
}

// fill makes sure child i has at least minDegree keys and returns the index
// of the child that now covers the same key range.
func (n *node[K, V]) fill(i int) int {
	switch {
	case i > 0 && len(n.children[i-1].items) >= minDegree:
		n.borrowFromLeft(i)
		return i
	case i < len(n.children)-1 && len(n.children[i+1].items) >= minDegree:
		n.borrowFromRight(i)
		return i
	case i < len(n.children)-1:
		n.merge(i)
		return i
	default:
		n.merge(i - 1)
		return i - 1
	}
}

func (n *node[K, V]) borrowFromLeft(i int) {
	child, left := n.children[i], n.children[i-1]

	child.items = slices.Insert(child.items, 0, n.items[i-1])
	n.items[i-1] = left.items[len(left.items)-1]
	left.items = slices.Delete(left.items, len(left.items)-1, len(left.items))

	if !left.leaf() {
		last := left.children[len(left.children)-1]
		child.children = slices.Insert(child.children, 0, last)
		left.children = slices.Delete(left.children, len(left.children)-1, len(left.children))
	}
}

func (n *node[K, V]) borrowFromRight(i int) {
	child, right := n.children[i], n.children[i+1]

	child.items = append(child.items, n.items[i])
	n.items[i] = right.items[0]
	right.items = slices.Delete(right.items, 0, 1)

	if !right.leaf() {
		child.children = append(child.children, right.children[0])
		right.children = slices.Delete(right.children, 0, 1)
	}
}

// merge folds separator i and child i+1 into child i.
func (n *node[K, V]) merge(i int) {
	left, right := n.children[i], n.children[i+1]

	left.items = append(left.items, n.items[i])
	left.items = append(left.items, right.items...)
	left.children = append(left.children, right.children...)

	n.items = slices.Delete(n.items, i, i+1)
	n.children = slices.Delete(n.children, i+1, i+2)
}

func (n *node[K, V]) ascend(fn func(K, V) bool) bool {
	for i := range n.items {
		if !n.leaf() && !n.children[i].ascend(fn) {
			return false
		}
		if !fn(n.items[i].key, n.items[i].value) {
			return false
		}
	}
	if !n.leaf() {
		return n.children[len(n.children)-1].ascend(fn)
	}
	return true
}
