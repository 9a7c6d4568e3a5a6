package font

// lruNode is a node in a doubly-linked LRU list.
type lruNode struct {
	key  rune
	val  Bitmap
	prev *lruNode
	next *lruNode
}

// lru is a bounded glyph cache. head is the most recently used entry.
// Not safe for concurrent use; Font serializes access.
type lru struct {
	capacity int
	items    map[rune]*lruNode
	head     *lruNode
	tail     *lruNode
}

func newLRU(capacity int) *lru {
	return &lru{capacity: capacity, items: make(map[rune]*lruNode, capacity)}
}

func (l *lru) Len() int { return len(l.items) }

func (l *lru) Get(key rune) (Bitmap, bool) {
	n, ok := l.items[key]
	if !ok {
		return Bitmap{}, false
	}
	l.moveToFront(n)
	return n.val, true
}

// Put inserts key, evicting the least recently used entry when full.
// It returns true if an entry was evicted.
func (l *lru) Put(key rune, val Bitmap) bool {
	if n, ok := l.items[key]; ok {
		n.val = val
		l.moveToFront(n)
		return false
	}
	evicted := false
	if len(l.items) >= l.capacity && l.tail != nil {
		old := l.tail
		l.unlink(old)
		delete(l.items, old.key)
		evicted = true
	}
	n := &lruNode{key: key, val: val}
	l.pushFront(n)
	l.items[key] = n
	return evicted
}

func (l *lru) Contains(key rune) bool {
	_, ok := l.items[key]
	return ok
}

func (l *lru) Clear() {
	l.items = make(map[rune]*lruNode, l.capacity)
	l.head, l.tail = nil, nil
}

func (l *lru) pushFront(n *lruNode) {
	n.prev = nil
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
}

func (l *lru) moveToFront(n *lruNode) {
	if n == l.head {
		return
	}
	l.unlink(n)
	l.pushFront(n)
}

func (l *lru) unlink(n *lruNode) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
}
