package css

import "testing"

func simpleSeq(sels ...SimpleSelector) *SimpleSequence { return NewSimpleSequence(sels...) }

func TestSimpleSequenceEqlIgnoresRestOrder(t *testing.T) {
	a := simpleSeq(ElementSelector{Name: TokLit("a"), Namespace: NamespaceUnspecified()}, ClassSelector{Name: TokLit("foo")}, ClassSelector{Name: TokLit("bar")})
	b := simpleSeq(ElementSelector{Name: TokLit("a"), Namespace: NamespaceUnspecified()}, ClassSelector{Name: TokLit("bar")}, ClassSelector{Name: TokLit("foo")})

	if !a.Eql(b) {
		t.Fatalf("permutations of non-base members should be equal: %v vs %v", a, b)
	}
	if a.Hash() != b.Hash() {
		t.Fatalf("permutations of non-base members should hash equal")
	}
}

func TestSimpleSequenceEqlChangesWithNewElement(t *testing.T) {
	a := simpleSeq(ClassSelector{Name: TokLit("foo")})
	b := simpleSeq(ClassSelector{Name: TokLit("foo")}, ClassSelector{Name: TokLit("bar")})

	if a.Eql(b) {
		t.Fatalf("adding a member should break equality")
	}
	if a.Hash() == b.Hash() {
		t.Fatalf("adding a member should (almost certainly) change the hash")
	}
}

func TestSequenceNewlineInsensitivity(t *testing.T) {
	s := NewSequence(
		SimpleMember(simpleSeq(ClassSelector{Name: TokLit("a")})),
		CombinatorMember(CombinatorDescendant),
		SimpleMember(simpleSeq(ClassSelector{Name: TokLit("b")})),
	)
	withNewlines := s.WithExtraNewlines()

	if !s.Eql(withNewlines) {
		t.Fatalf("Sequence should equal itself with extra newline markers spliced in")
	}
	if s.Hash() != withNewlines.Hash() {
		t.Fatalf("hash should be newline-insensitive")
	}
}

func TestCommaSequenceEqlIsOrderSensitive(t *testing.T) {
	a := NewCommaSequence(
		NewSequence(SimpleMember(simpleSeq(ClassSelector{Name: TokLit("foo")}))),
		NewSequence(SimpleMember(simpleSeq(ClassSelector{Name: TokLit("bar")}))),
	)
	b := NewCommaSequence(
		NewSequence(SimpleMember(simpleSeq(ClassSelector{Name: TokLit("bar")}))),
		NewSequence(SimpleMember(simpleSeq(ClassSelector{Name: TokLit("foo")}))),
	)

	if a.Eql(b) {
		t.Fatalf("CommaSequence equality must respect branch order")
	}
}

func TestSimpleSequenceBaseAndRest(t *testing.T) {
	el := ElementSelector{Name: TokLit("div"), Namespace: NamespaceUnspecified()}
	cls := ClassSelector{Name: TokLit("foo")}
	ss := simpleSeq(el, cls)

	base, ok := ss.Base()
	if !ok || !base.Eql(el) {
		t.Fatalf("expected base %v, got %v (ok=%v)", el, base, ok)
	}
	rest := ss.Rest()
	if len(rest) != 1 || !rest[0].Eql(cls) {
		t.Fatalf("expected rest [%v], got %v", cls, rest)
	}
}

func TestSimpleSequenceNoBaseWhenHeadIsNotElementOrUniversal(t *testing.T) {
	ss := simpleSeq(ClassSelector{Name: TokLit("foo")}, ClassSelector{Name: TokLit("bar")})
	if _, ok := ss.Base(); ok {
		t.Fatalf("a class-only sequence should have no base")
	}
	if len(ss.Rest()) != 2 {
		t.Fatalf("rest should be all members when there is no base")
	}
}
