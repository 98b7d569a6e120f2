package css

import (
	"encoding/binary"
	"hash/fnv"
	"sort"
)

// SimpleSequence is an ordered, non-empty list of SimpleSelector
// targeting one element (e.g. "a.foo#bar[x]").
type SimpleSequence struct {
	Members  []SimpleSelector
	Line     int
	Filename string
}

// NewSimpleSequence builds a SimpleSequence from members in source order.
func NewSimpleSequence(members ...SimpleSelector) *SimpleSequence {
	return &SimpleSequence{Members: members}
}

// Base returns the first member when it is an Element or Universal
// selector, which anchors the rest of the sequence.
func (ss *SimpleSequence) Base() (SimpleSelector, bool) {
	if len(ss.Members) == 0 {
		return nil, false
	}
	switch ss.Members[0].(type) {
	case ElementSelector, UniversalSelector:
		return ss.Members[0], true
	default:
		return nil, false
	}
}

// Rest returns the members other than Base, as an unordered set for
// equality purposes (order among them does not matter).
func (ss *SimpleSequence) Rest() []SimpleSelector {
	if _, ok := ss.Base(); ok {
		return ss.Members[1:]
	}
	return ss.Members
}

// SetLocation records where this sequence came from.
func (ss *SimpleSequence) SetLocation(line int, filename string) {
	ss.Line = line
	ss.Filename = filename
}

// Eql compares (base, rest) as spec.md §3 requires: order among
// non-base members is irrelevant.
func (ss *SimpleSequence) Eql(other *SimpleSequence) bool {
	if ss == other {
		return true
	}
	if ss == nil || other == nil {
		return false
	}
	b1, ok1 := ss.Base()
	b2, ok2 := other.Base()
	if ok1 != ok2 {
		return false
	}
	if ok1 && !b1.Eql(b2) {
		return false
	}
	return multisetEqual(ss.Rest(), other.Rest())
}

func multisetEqual(a, b []SimpleSelector) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, x := range a {
		found := false
		for j, y := range b {
			if used[j] {
				continue
			}
			if x.Eql(y) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Hash is derived to match Eql: it depends only on the base and on the
// multiset of the remaining members.
func (ss *SimpleSequence) Hash() uint64 {
	h := fnv.New64a()
	if b, ok := ss.Base(); ok {
		h.Write([]byte(b.ToTokens().String()))
	}
	h.Write([]byte{0})
	rest := make([]string, 0, len(ss.Rest()))
	for _, m := range ss.Rest() {
		rest = append(rest, m.ToTokens().String())
	}
	sort.Strings(rest)
	for _, r := range rest {
		h.Write([]byte(r))
		h.Write([]byte{0})
	}
	return h.Sum64()
}

// ToTokens renders the members in their original (source) order.
func (ss *SimpleSequence) ToTokens() Tok {
	var out Tok
	for _, m := range ss.Members {
		out = append(out, m.ToTokens()...)
	}
	return out
}

func (ss *SimpleSequence) String() string { return ss.ToTokens().String() }

// containsMember reports whether members contains an element structurally
// equal to target, per the Eql() a target simple selector exposes.
func containsMember(members []SimpleSelector, target SimpleSelector) bool {
	for _, m := range members {
		if m.Eql(target) {
			return true
		}
	}
	return false
}

// withoutMembers computes a multiset difference, preserving order of the
// remaining elements of members: each element of remove cancels out at
// most one matching element of members.
func withoutMembers(members, remove []SimpleSelector) []SimpleSelector {
	used := make([]bool, len(members))
	for _, r := range remove {
		for i, m := range members {
			if used[i] {
				continue
			}
			if m.Eql(r) {
				used[i] = true
				break
			}
		}
	}
	out := make([]SimpleSelector, 0, len(members))
	for i, m := range members {
		if !used[i] {
			out = append(out, m)
		}
	}
	return out
}

// MemberKind tags a Sequence element.
type MemberKind int

const (
	MemberSimple MemberKind = iota
	MemberCombinator
	MemberNewline
)

// Combinator is one of the fixed set of CSS combinators.
type Combinator string

const (
	CombinatorDescendant      Combinator = " "
	CombinatorChild           Combinator = ">"
	CombinatorAdjacentSibling Combinator = "+"
	CombinatorGeneralSibling  Combinator = "~"
)

// SequenceMember is one element of a Sequence: a SimpleSequence, a
// combinator token, or the "\n" formatting marker.
type SequenceMember struct {
	Kind       MemberKind
	Simple     *SimpleSequence
	Combinator Combinator
}

func SimpleMember(ss *SimpleSequence) SequenceMember {
	return SequenceMember{Kind: MemberSimple, Simple: ss}
}

func CombinatorMember(c Combinator) SequenceMember {
	return SequenceMember{Kind: MemberCombinator, Combinator: c}
}

func NewlineMember() SequenceMember {
	return SequenceMember{Kind: MemberNewline}
}

func (m SequenceMember) isSimple() bool     { return m.Kind == MemberSimple }
func (m SequenceMember) isCombinator() bool { return m.Kind == MemberCombinator }
func (m SequenceMember) isNewline() bool    { return m.Kind == MemberNewline }

func (m SequenceMember) equal(other SequenceMember) bool {
	if m.Kind != other.Kind {
		return false
	}
	switch m.Kind {
	case MemberSimple:
		return m.Simple.Eql(other.Simple)
	case MemberCombinator:
		return m.Combinator == other.Combinator
	default:
		return true
	}
}

// Sequence is a list of SimpleSequences joined by combinators, matching a
// descent path in the document.
type Sequence struct {
	Members []SequenceMember
}

// NewSequence builds a Sequence from members in source order.
func NewSequence(members ...SequenceMember) *Sequence {
	return &Sequence{Members: members}
}

// SetLocation propagates (line, filename) to every SimpleSequence member.
func (s *Sequence) SetLocation(line int, filename string) {
	for _, m := range s.Members {
		if m.isSimple() {
			m.Simple.SetLocation(line, filename)
		}
	}
}

func stripNewlines(members []SequenceMember) []SequenceMember {
	out := make([]SequenceMember, 0, len(members))
	for _, m := range members {
		if !m.isNewline() {
			out = append(out, m)
		}
	}
	return out
}

// WithExtraNewlines returns a copy of s with a "\n" marker spliced before
// every member; used by the round-trip test for spec.md §8 property 2
// (newline insensitivity).
func (s *Sequence) WithExtraNewlines() *Sequence {
	out := make([]SequenceMember, 0, len(s.Members)*2)
	for _, m := range s.Members {
		out = append(out, NewlineMember(), m)
	}
	return &Sequence{Members: out}
}

// Eql ignores "\n" formatting markers.
func (s *Sequence) Eql(other *Sequence) bool {
	a := stripNewlines(s.Members)
	b := stripNewlines(other.Members)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].equal(b[i]) {
			return false
		}
	}
	return true
}

// Hash ignores "\n" formatting markers, matching Eql.
func (s *Sequence) Hash() uint64 {
	h := fnv.New64a()
	for _, m := range stripNewlines(s.Members) {
		switch m.Kind {
		case MemberSimple:
			h.Write([]byte{1})
			var buf [8]byte
			binary.LittleEndian.PutUint64(buf[:], m.Simple.Hash())
			h.Write(buf[:])
		case MemberCombinator:
			h.Write([]byte{2})
			h.Write([]byte(m.Combinator))
		}
	}
	return h.Sum64()
}

// LastSimpleSequence returns the final SimpleSequence member, used by the
// extension engine to anchor a replacement sequence's unification.
func (s *Sequence) LastSimpleSequence() (*SimpleSequence, bool) {
	for i := len(s.Members) - 1; i >= 0; i-- {
		if s.Members[i].isSimple() {
			return s.Members[i].Simple, true
		}
	}
	return nil, false
}

// CommaSequence is an ordered list of Sequence, representing "A, B, C".
type CommaSequence struct {
	Sequences []*Sequence
}

// NewCommaSequence builds a CommaSequence from sequences in source order.
func NewCommaSequence(seqs ...*Sequence) *CommaSequence {
	return &CommaSequence{Sequences: seqs}
}

// SetLocation propagates (line, filename) to every contained sequence.
func (cs *CommaSequence) SetLocation(line int, filename string) {
	for _, s := range cs.Sequences {
		s.SetLocation(line, filename)
	}
}

// Eql is order-sensitive.
func (cs *CommaSequence) Eql(other *CommaSequence) bool {
	if len(cs.Sequences) != len(other.Sequences) {
		return false
	}
	for i := range cs.Sequences {
		if !cs.Sequences[i].Eql(other.Sequences[i]) {
			return false
		}
	}
	return true
}
