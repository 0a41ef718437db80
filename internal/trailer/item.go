// Package trailer implements the trailer-block processing engine: locating
// the trailing "Key: Value" block of a message, parsing it into an ordered
// item list, and merging in trailers supplied on the command line or by
// configuration.
package trailer

import "strings"

// Where controls which side of a matching input item a trailer is placed.
type Where int

const (
	After Where = iota
	Before
)

// IfExists controls what happens when at least one input item shares a
// trailer's token.
type IfExists int

const (
	AddIfDifferent IfExists = iota
	AddIfDifferentNeighbor
	Add
	Overwrite
	DoNothing
)

// IfMissing controls what happens when no input item shares a trailer's
// token.
type IfMissing int

const (
	MissingAdd IfMissing = iota
	MissingDoNothing
)

// Conf is the policy triple (plus originating command, if any) attached to
// an Item once it has been matched against a configured Entry.
type Conf struct {
	Name      string
	Command   string
	HasArg    bool
	Where     Where
	IfExists  IfExists
	IfMissing IfMissing
}

// Item is a single trailer (token/value pair) in a doubly-linked List.
// The zero value is not usable; construct with NewItem.
type Item struct {
	Token string
	Value string
	Conf  *Conf

	prev, next *Item
}

// NewItem creates a detached item, not yet linked into any List.
func NewItem(token, value string, conf *Conf) *Item {
	return &Item{Token: token, Value: value, Conf: conf}
}

// Prev returns the item before this one in its list, or nil.
func (it *Item) Prev() *Item { return it.prev }

// Next returns the item after this one in its list, or nil.
func (it *Item) Next() *Item { return it.next }

// List is a doubly-linked ordered sequence of trailer Items. The zero value
// is an empty, usable list.
type List struct {
	head, tail *Item
}

// Head returns the first item in the list, or nil if empty.
func (l *List) Head() *Item { return l.head }

// Tail returns the last item in the list, or nil if empty.
func (l *List) Tail() *Item { return l.tail }

// Empty reports whether the list has no items.
func (l *List) Empty() bool { return l.head == nil }

// PushBack appends item to the end of the list. item must be detached.
func (l *List) PushBack(item *Item) {
	item.prev = l.tail
	item.next = nil
	if l.tail != nil {
		l.tail.next = item
	} else {
		l.head = item
	}
	l.tail = item
}

// InsertAfter splices item immediately after anchor, which must already be
// in the list. item must be detached.
func (l *List) InsertAfter(anchor, item *Item) {
	item.prev = anchor
	item.next = anchor.next
	if anchor.next != nil {
		anchor.next.prev = item
	} else {
		l.tail = item
	}
	anchor.next = item
}

// InsertBefore splices item immediately before anchor, which must already be
// in the list. item must be detached.
func (l *List) InsertBefore(anchor, item *Item) {
	item.next = anchor
	item.prev = anchor.prev
	if anchor.prev != nil {
		anchor.prev.next = item
	} else {
		l.head = item
	}
	anchor.prev = item
}

// Unlink removes item from the list and detaches it. item must be in the
// list; Unlink tolerates item being the head, the tail, or both.
func (l *List) Unlink(item *Item) {
	if item.next != nil {
		item.next.prev = item.prev
	} else {
		l.tail = item.prev
	}
	if item.prev != nil {
		item.prev.next = item.next
	} else {
		l.head = item.next
	}
	item.prev = nil
	item.next = nil
}

// PopFront removes and returns the head item, or nil if the list is empty.
func (l *List) PopFront() *Item {
	item := l.head
	if item == nil {
		return nil
	}
	l.Unlink(item)
	return item
}

// Items returns a snapshot slice of the list's items in order. Intended for
// tests and for the driver's final emit pass, not for mutation during
// iteration (see merge.go for why iteration snapshots its own next links).
func (l *List) Items() []*Item {
	var out []*Item
	for it := l.head; it != nil; it = it.next {
		out = append(out, it)
	}
	return out
}

// CheckWellFormed verifies the doubly-linked invariants: head.prev == nil,
// tail.next == nil, and x.prev == y iff y.next == x for every adjacent pair.
// It is used by tests, not by production code.
func (l *List) CheckWellFormed() bool {
	if l.head != nil && l.head.prev != nil {
		return false
	}
	if l.tail != nil && l.tail.next != nil {
		return false
	}
	for it := l.head; it != nil; it = it.next {
		if it.next != nil && it.next.prev != it {
			return false
		}
		if it == l.tail && it.next != nil {
			return false
		}
	}
	return true
}

// AlnumLen returns the length of the prefix of token up to (but excluding)
// its trailing run of non-alphanumeric characters. Tokens may carry a
// trailing delimiter (":") that must not participate in matching.
func AlnumLen(token string) int {
	n := len(token)
	for n > 0 && !isAlnum(token[n-1]) {
		n--
	}
	return n
}

func isAlnum(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// SameToken reports whether a and b share the same token, comparing the
// leading min(AlnumLen(a), AlnumLen(b)) bytes case-insensitively.
func SameToken(a, b string) bool {
	n := AlnumLen(a)
	if bn := AlnumLen(b); bn < n {
		n = bn
	}
	return strings.EqualFold(a[:n], b[:n])
}

// sameTokenPrefix reports whether a and b match using a caller-supplied
// prefix length (used by the merge engine, which computes the anchor's
// AlnumLen once per input item per spec.md §4.6).
func sameTokenPrefix(a, b string, n int) bool {
	if len(a) < n || len(b) < n {
		return false
	}
	return strings.EqualFold(a[:n], b[:n])
}

// sameValue reports case-insensitive full-string value equality.
func sameValue(a, b string) bool {
	return strings.EqualFold(a, b)
}
