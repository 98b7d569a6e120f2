package css

import "cssweave/utils/debug"

// renderPathTree dumps the mini-sequences handed to Weave as an indented
// tree, one line per member, for debug-level tracing of WeaveTraced.
func renderPathTree(path [][]SequenceMember) string {
	tw := debug.NewTreeWriter()
	for i, seq := range path {
		tw.Line(0, "[%d]", i)
		for _, m := range seq {
			switch m.Kind {
			case MemberSimple:
				tw.TextBlock(1, "simple", m.Simple.ToTokens().String())
			case MemberCombinator:
				tw.TextBlock(1, "combinator", string(m.Combinator))
			case MemberNewline:
				tw.Line(1, "newline")
			}
		}
	}
	return tw.String()
}

// Weave expands path — a list of "parenthesized" mini-sequences — into
// every ordering consistent with each mini-sequence's internal relative
// order, per spec.md §4.5. The subweave memoization cache is created
// fresh for this call and never shared with another Weave invocation.
func Weave(path [][]SequenceMember) [][]SequenceMember {
	cache := newSubweaveCache()
	befores := [][]SequenceMember{nil}
	for i, current := range path {
		rest, last := splitTail(current)
		var next [][]SequenceMember
		for _, b := range befores {
			for _, bp := range subweave(b, rest, cache) {
				merged := make([]SequenceMember, 0, len(bp)+len(last))
				merged = append(merged, bp...)
				merged = append(merged, last...)
				next = append(next, merged)
			}
		}
		befores = next
		if i == len(path)-1 {
			return befores
		}
	}
	return befores
}

// splitTail peels the trailing SimpleSequence off seq, plus any
// combinator/newline tokens immediately adjacent to it, so a combinator
// never floats loose at the boundary.
func splitTail(seq []SequenceMember) (rest, tail []SequenceMember) {
	if len(seq) == 0 {
		return nil, nil
	}
	i := len(seq) - 1
	for i >= 0 && !seq[i].isSimple() {
		i--
	}
	if i < 0 {
		return nil, seq
	}
	start := i
	for start > 0 && !seq[start-1].isSimple() {
		start--
	}
	return seq[:start], seq[start:]
}

// seqSplit shifts elements left-to-right onto head until head's last
// element is a SimpleSequence and the next element (if any) is not a
// combinator token, so heads are never split through a combinator.
func seqSplit(seq []SequenceMember) (head, rest []SequenceMember) {
	for i := 0; i < len(seq); i++ {
		if seq[i].isSimple() {
			if i+1 >= len(seq) || !seq[i+1].isCombinator() {
				return seq[:i+1], seq[i+1:]
			}
		}
	}
	return seq, nil
}

func lastSimpleOf(members []SequenceMember) (*SimpleSequence, bool) {
	for i := len(members) - 1; i >= 0; i-- {
		if members[i].isSimple() {
			return members[i].Simple, true
		}
	}
	return nil, false
}

// combinatorPrefix returns everything in head before its trailing simple
// sequence.
func combinatorPrefix(head []SequenceMember) []SequenceMember {
	for i := len(head) - 1; i >= 0; i-- {
		if head[i].isSimple() {
			return head[:i]
		}
	}
	return head
}

type subweaveCache struct {
	m map[string][][]SequenceMember
}

func newSubweaveCache() *subweaveCache {
	return &subweaveCache{m: map[string][][]SequenceMember{}}
}

func subweaveCacheKey(seq1, seq2 []SequenceMember) string {
	return (&Sequence{Members: seq1}).ToTokens().String() + "\x00" + (&Sequence{Members: seq2}).ToTokens().String()
}

// subweave implements spec.md §4.5: the combinatorial interleave of two
// mini-sequences, with head unification attempted both ways round.
func subweave(seq1, seq2 []SequenceMember, cache *subweaveCache) [][]SequenceMember {
	if len(seq1) == 0 {
		return [][]SequenceMember{seq2}
	}
	if len(seq2) == 0 {
		return [][]SequenceMember{seq1}
	}

	key := subweaveCacheKey(seq1, seq2)
	if cached, ok := cache.m[key]; ok {
		return cached
	}

	head1, rest1 := seqSplit(seq1)
	head2, rest2 := seqSplit(seq2)
	simple1, _ := lastSimpleOf(head1)
	simple2, _ := lastSimpleOf(head2)

	var unifiedHead []SequenceMember
	if unified, ok := simple1.Unify(simple2.Members); ok {
		unifiedHead = append(append([]SequenceMember{}, mergedPrefix(head1, head2)...), SimpleMember(unified))
	} else if unified, ok := simple2.Unify(simple1.Members); ok {
		unifiedHead = append(append([]SequenceMember{}, mergedPrefix(head1, head2)...), SimpleMember(unified))
	}

	var out [][]SequenceMember
	for _, s := range subweave(rest1, seq2, cache) {
		out = append(out, concatMembers(head1, s))
	}
	if unifiedHead != nil {
		for _, s := range subweave(rest1, rest2, cache) {
			out = append(out, concatMembers(unifiedHead, s))
		}
	}
	for _, s := range subweave(seq1, rest2, cache) {
		out = append(out, concatMembers(head2, s))
	}

	cache.m[key] = out
	return out
}

// mergedPrefix resolves which side's leading combinator context survives
// a successful head unification: the side that actually carries one,
// preferring seq1's when both do (an arbitrary but deterministic
// tie-break, since a unifiable pair only ever arises at a shared join
// point in practice).
func mergedPrefix(head1, head2 []SequenceMember) []SequenceMember {
	p1 := combinatorPrefix(head1)
	if len(p1) > 0 {
		return p1
	}
	return combinatorPrefix(head2)
}

func concatMembers(a, b []SequenceMember) []SequenceMember {
	out := make([]SequenceMember, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}
