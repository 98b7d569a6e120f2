package css

import "testing"

func extendMapFrom(t *testing.T, target, replacement string) *ExtendMap {
	t.Helper()
	targetSeq := mustParse(t, target)
	if len(targetSeq.Sequences) != 1 || len(targetSeq.Sequences[0].Members) != 1 {
		t.Fatalf("extend target must be a single simple sequence: %q", target)
	}
	targetMembers := targetSeq.Sequences[0].Members[0].Simple.Members

	replSeq := mustParse(t, replacement)
	if len(replSeq.Sequences) != 1 {
		t.Fatalf("replacement must be a single sequence: %q", replacement)
	}

	m := NewExtendMap()
	m.Add(targetMembers, replSeq.Sequences[0], 1, "")
	return m
}

func TestExtendScenario4(t *testing.T) {
	cs := mustParse(t, ".foo")
	m := extendMapFrom(t, ".foo", ".bar")

	got, err := cs.Extend(m)
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	if got.String() != ".foo, .bar" {
		t.Fatalf("got %q, want %q", got.String(), ".foo, .bar")
	}
}

func TestExtendScenario5(t *testing.T) {
	cs := mustParse(t, "a.foo")
	m := extendMapFrom(t, ".foo", ".bar")

	got, err := cs.Extend(m)
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	if got.String() != "a.foo, a.bar" {
		t.Fatalf("got %q, want %q", got.String(), "a.foo, a.bar")
	}
}

func TestExtendIdempotentWhenNoKeyMatches(t *testing.T) {
	cs := mustParse(t, ".unrelated")
	m := extendMapFrom(t, ".foo", ".bar")

	got, err := cs.Extend(m)
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	if !got.Eql(cs) {
		t.Fatalf("extend with no matching key should be identity: got %q, want %q", got.String(), cs.String())
	}
}

func TestExtendLoopDetectionFires(t *testing.T) {
	cs := mustParse(t, ".a")
	m := NewExtendMap()
	m.SetLimits(Limits{MaxExtendDepth: 20})

	aMembers := mustParse(t, ".a").Sequences[0].Members[0].Simple.Members
	bMembers := mustParse(t, ".b").Sequences[0].Members[0].Simple.Members
	bRepl := mustParse(t, ".b").Sequences[0]
	aRepl := mustParse(t, ".a").Sequences[0]

	m.Add(aMembers, bRepl, 1, "")
	m.Add(bMembers, aRepl, 2, "")

	_, err := cs.Extend(m)
	if err == nil {
		t.Fatalf("expected an @extend loop error")
	}
	se, ok := err.(*SyntaxError)
	if !ok {
		t.Fatalf("expected *SyntaxError, got %T", err)
	}
	const prefix = "An @extend loop was found:"
	if len(se.Message) < len(prefix) || se.Message[:len(prefix)] != prefix {
		t.Fatalf("message %q does not start with %q", se.Message, prefix)
	}
}

func TestExtendMapGetIsSubsetLookup(t *testing.T) {
	m := extendMapFrom(t, ".foo", ".bar")

	compound := mustParse(t, "a.foo.extra").Sequences[0].Members[0].Simple.Members
	entries := m.Get(compound)
	if len(entries) != 1 {
		t.Fatalf("expected the .foo target to match a superset member list, got %d entries", len(entries))
	}

	unrelated := mustParse(t, "a.other").Sequences[0].Members[0].Simple.Members
	if entries := m.Get(unrelated); len(entries) != 0 {
		t.Fatalf("expected no match against unrelated members, got %v", entries)
	}
}
