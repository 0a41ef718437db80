package trailer

// Merge applies the argument-item list arg onto the input-item list in,
// mutating in in place and consuming arg, following the three-pass
// algorithm of spec.md §4.6 (itself a direct port of
// original_source/trailer.c's process_trailers_lists).
func Merge(in, arg *List) {
	if arg.Empty() {
		return
	}

	// Pass A: after-trailers, walking input from tail toward head.
	for inTok := in.tail; inTok != nil; inTok = inTok.prev {
		processInputToken(in, inTok, arg, After)
	}

	if arg.Empty() {
		return
	}

	// Pass B: before-trailers, walking input from head toward tail.
	for inTok := in.head; inTok != nil; inTok = inTok.next {
		processInputToken(in, inTok, arg, Before)
	}

	// Pass C: whatever remains in arg has no matching input token.
	for {
		a := arg.PopFront()
		if a == nil {
			break
		}
		applyArgIfMissing(in, a)
	}
}

// processInputToken walks arg (snapshotting next links, since matches are
// unlinked mid-iteration) looking for items that share inTok's token prefix
// and the given placement side, and dispatches each to applyArgIfExists.
func processInputToken(in *List, inTok *Item, arg *List, where Where) {
	after := where == After
	n := AlnumLen(inTok.Token)

	a := arg.head
	for a != nil {
		next := a.next
		if sameTokenPrefix(inTok.Token, a.Token, n) && a.Conf != nil && a.Conf.Where == where {
			arg.Unlink(a)
			applyArgIfExists(in, inTok, a, n)
			// If the action spliced a in adjacent to inTok on the side we
			// are processing, advance the cursor so chained matches among
			// multiple args for the same token are considered too.
			if after && inTok.next == a {
				inTok = a
			} else if !after && inTok.prev == a {
				inTok = a
			}
		}
		a = next
	}
}

func applyArgIfExists(in *List, inTok, a *Item, alnumLen int) {
	switch a.Conf.IfExists {
	case DoNothing:
		// drop a
	case Overwrite:
		inTok.Value = a.Value
	case Add:
		addArgToInput(in, inTok, a)
	case AddIfDifferent:
		if checkIfDifferent(inTok, a, alnumLen, true) {
			addArgToInput(in, inTok, a)
		}
	case AddIfDifferentNeighbor:
		if checkIfDifferent(inTok, a, alnumLen, false) {
			addArgToInput(in, inTok, a)
		}
	}
}

// addArgToInput splices a into in, after inTok if a's policy is After,
// before inTok otherwise.
func addArgToInput(in *List, inTok, a *Item) {
	if a.Conf.Where == After {
		in.InsertAfter(inTok, a)
	} else {
		in.InsertBefore(inTok, a)
	}
}

// checkIfDifferent reports whether a's value is not already present among
// the items reachable from inTok on the relevant side. When a's placement
// is After, sameness is checked walking backward (prev) from inTok, because
// a later identical trailer would be suppressed regardless; when Before, it
// walks forward (next). If checkAll is false, only inTok itself and its
// immediate neighbor on that side are checked (AddIfDifferentNeighbor);
// if true, the whole chain is checked (AddIfDifferent). This direction
// asymmetry is intentional — see spec.md §9 and DESIGN.md.
func checkIfDifferent(inTok, a *Item, alnumLen int, checkAll bool) bool {
	where := a.Conf.Where
	cur := inTok
	for {
		if cur == nil {
			return true
		}
		if sameTokenPrefix(cur.Token, a.Token, alnumLen) && sameValue(cur.Value, a.Value) {
			return false
		}
		if where == After {
			cur = cur.prev
		} else {
			cur = cur.next
		}
		if !checkAll {
			// Neighbor-only: after inTok itself, the one remaining
			// comparison is its immediate neighbor on that side, counted
			// only when it shares the token.
			return cur == nil || !(sameTokenPrefix(cur.Token, a.Token, alnumLen) && sameValue(cur.Value, a.Value))
		}
	}
}

// applyArgIfMissing handles an argument item with no matching input item,
// per spec.md §4.6 Pass C.
func applyArgIfMissing(in *List, a *Item) {
	switch a.Conf.IfMissing {
	case MissingDoNothing:
		// drop a
	case MissingAdd:
		if a.Conf.Where == After {
			in.PushBack(a)
		} else {
			pushFront(in, a)
		}
	}
}

// pushFront prepends item to the front of the list; List has no exported
// PushFront because production code never needs one except here, where a
// missing-and-Before trailer accumulates at the head.
func pushFront(l *List, item *Item) {
	if l.head == nil {
		item.prev, item.next = nil, nil
		l.head, l.tail = item, item
		return
	}
	l.InsertBefore(l.head, item)
}
