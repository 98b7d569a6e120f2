package css

import (
	"strings"
	"testing"
)

func seqMembers(t *testing.T, text string) []SequenceMember {
	t.Helper()
	cs := mustParse(t, text)
	if len(cs.Sequences) != 1 {
		t.Fatalf("expected a single sequence, got %d", len(cs.Sequences))
	}
	return cs.Sequences[0].Members
}

func containsRendering(results [][]SequenceMember, want string) bool {
	for _, r := range results {
		if (&Sequence{Members: r}).String() == want {
			return true
		}
	}
	return false
}

func TestSubweavePreservesInputsAsExtremes(t *testing.T) {
	a := seqMembers(t, ".x")
	b := seqMembers(t, ".y")
	cache := newSubweaveCache()

	results := subweave(a, b, cache)

	ab := append(append([]SequenceMember{}, a...), b...)
	ba := append(append([]SequenceMember{}, b...), a...)

	if !containsRendering(results, (&Sequence{Members: ab}).String()) {
		t.Fatalf("subweave(a, b) should contain a++b; got %v", renderAll(results))
	}
	if !containsRendering(results, (&Sequence{Members: ba}).String()) {
		t.Fatalf("subweave(a, b) should contain b++a; got %v", renderAll(results))
	}
}

func renderAll(results [][]SequenceMember) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = (&Sequence{Members: r}).String()
	}
	return out
}

// TestSubweaveScenario6 exercises the three-family shape spec.md §8's
// scenario 6 describes for subweave([".x"," "],[".a"," "]): the two
// order-preserving concatenations (disjoint, descendant-joined), plus a
// fused compound carrying both simple selectors in a single
// SimpleSequence (the unified-head family).
func TestSubweaveScenario6(t *testing.T) {
	x := []SequenceMember{SimpleMember(simpleSeq(ClassSelector{Name: TokLit("x")})), CombinatorMember(CombinatorDescendant)}
	a := []SequenceMember{SimpleMember(simpleSeq(ClassSelector{Name: TokLit("a")})), CombinatorMember(CombinatorDescendant)}
	cache := newSubweaveCache()

	results := subweave(x, a, cache)

	var sawDisjointXFirst, sawDisjointAFirst, sawFused bool
	for _, r := range results {
		simples := 0
		var compound *SimpleSequence
		for _, m := range r {
			if m.isSimple() {
				simples++
				compound = m.Simple
			}
		}
		switch {
		case simples == 1 && compound != nil && len(compound.Members) == 2:
			sawFused = true
		case simples == 2:
			seq := &Sequence{Members: r}
			switch {
			case seq.String() == ".x .a " || seq.String() == ".x .a":
				sawDisjointXFirst = true
			case seq.String() == ".a .x " || seq.String() == ".a .x":
				sawDisjointAFirst = true
			}
		}
	}

	if !sawDisjointXFirst {
		t.Fatalf("subweave(.x, .a) missing the x-before-a disjoint continuation; got %v", renderAll(results))
	}
	if !sawDisjointAFirst {
		t.Fatalf("subweave(.x, .a) missing the a-before-x disjoint continuation; got %v", renderAll(results))
	}
	if !sawFused {
		t.Fatalf("subweave(.x, .a) missing a fused .x.a/.a.x compound; got %v", renderAll(results))
	}
}

func TestWeaveSingleElementPathIsIdentity(t *testing.T) {
	path := [][]SequenceMember{seqMembers(t, ".a .b")}
	results := Weave(path)
	if len(results) != 1 {
		t.Fatalf("expected exactly one result for a single-element path, got %d", len(results))
	}
	if (&Sequence{Members: results[0]}).String() != ".a .b" {
		t.Fatalf("got %q, want %q", (&Sequence{Members: results[0]}).String(), ".a .b")
	}
}

func TestRenderPathTreeContainsEachSelector(t *testing.T) {
	path := [][]SequenceMember{seqMembers(t, ".a > .b"), seqMembers(t, ".c")}
	tree := renderPathTree(path)
	for _, want := range []string{"[0]", "[1]", ".a", ".b", ".c", ">"} {
		if !strings.Contains(tree, want) {
			t.Fatalf("renderPathTree output missing %q:\n%s", want, tree)
		}
	}
}

func TestSeqSplitNeverSplitsThroughCombinator(t *testing.T) {
	members := seqMembers(t, ".a > .b")
	head, rest := seqSplit(members)

	if len(head) == 0 {
		t.Fatalf("expected a non-empty head")
	}
	last := head[len(head)-1]
	if !last.isSimple() {
		t.Fatalf("head must end on a SimpleSequence, got kind %v", last.Kind)
	}
	if len(rest) > 0 && rest[0].isCombinator() {
		t.Fatalf("a combinator must never be the first element of rest: %v", rest)
	}
}
