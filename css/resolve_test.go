package css

import "testing"

func mustParse(t *testing.T, text string) *CommaSequence {
	t.Helper()
	cs, err := ParseSelectorList([]byte(text))
	if err != nil {
		t.Fatalf("ParseSelectorList(%q): %v", text, err)
	}
	return cs
}

func TestResolveParentRefsScenario1(t *testing.T) {
	own := mustParse(t, ".foo")
	parent := mustParse(t, ".bar")

	got, err := own.ResolveParentRefs(parent)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.String() != ".bar .foo" {
		t.Fatalf("got %q, want %q", got.String(), ".bar .foo")
	}
}

func TestResolveParentRefsScenario2(t *testing.T) {
	own := mustParse(t, "&.foo")
	parent := mustParse(t, ".bar, .baz")

	got, err := own.ResolveParentRefs(parent)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.String() != ".bar.foo, .baz.foo" {
		t.Fatalf("got %q, want %q", got.String(), ".bar.foo, .baz.foo")
	}
}

func TestResolveParentRefsScenario3(t *testing.T) {
	own := mustParse(t, "&")
	parent := mustParse(t, "a b")

	got, err := own.ResolveParentRefs(parent)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.String() != "a b" {
		t.Fatalf("got %q, want %q", got.String(), "a b")
	}
}

func TestResolveParentRefsIdentityWithoutParent(t *testing.T) {
	own := mustParse(t, ".foo, .bar baz")
	got, err := own.ResolveParentRefs(nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != own {
		t.Fatalf("resolve with nil parent and no '&' should return self unchanged")
	}
}

func TestResolveParentRefsBaseLevelAmpersandFails(t *testing.T) {
	own := mustParse(t, "&.foo")
	_, err := own.ResolveParentRefs(nil)
	if err == nil {
		t.Fatalf("expected a syntax error for base-level '&'")
	}
	se, ok := err.(*SyntaxError)
	if !ok {
		t.Fatalf("expected *SyntaxError, got %T", err)
	}
	if se.Message == "" {
		t.Fatalf("expected a non-empty message")
	}
}

func TestResolveParentRefsComposesOverCommas(t *testing.T) {
	own := mustParse(t, ".a, .b, .c")
	parent := mustParse(t, ".p, .q")

	got, err := own.ResolveParentRefs(parent)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	wantCount := len(parent.Sequences) * len(own.Sequences)
	if len(got.Sequences) != wantCount {
		t.Fatalf("got %d top-level sequences, want %d", len(got.Sequences), wantCount)
	}
	if got.Sequences[0].String() != ".p .a" {
		t.Fatalf("expected lexicographic (parent, own) order, got first = %q", got.Sequences[0].String())
	}
}

func TestResolveParentRefsInvalidParentComposition(t *testing.T) {
	// A parent sequence ending in a bare combinator, fused against a
	// compound "&.foo", must fail: there is no trailing SimpleSequence
	// to fuse the compound into.
	ss := &SimpleSequence{Members: []SimpleSelector{ParentSelector{}, ClassSelector{Name: TokLit("foo")}}}
	parentSeq := &Sequence{Members: []SequenceMember{CombinatorMember(CombinatorChild)}}

	_, err := ss.resolveParentRefs(parentSeq)
	if err == nil {
		t.Fatalf("expected 'Invalid parent selector' error")
	}
}
