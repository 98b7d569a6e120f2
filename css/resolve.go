package css

// ResolveParentRefs rewrites every '&' in cs against parent, distributing
// over commas, per spec.md §4.3. A nil parent means "base level": any
// Parent member anywhere is a syntax error.
func (cs *CommaSequence) ResolveParentRefs(parent *CommaSequence) (*CommaSequence, error) {
	if parent == nil {
		if cs.containsParentRef() {
			return nil, newSyntaxError("Base-level rules cannot contain the parent-selector-referencing character '&'.", cs.firstLine(), cs.firstFilename())
		}
		return cs, nil
	}

	var out []*Sequence
	for _, parentSeq := range parent.Sequences {
		for _, ownSeq := range cs.Sequences {
			resolved, err := ownSeq.resolveParentRefs(parentSeq)
			if err != nil {
				return nil, err
			}
			out = append(out, resolved)
		}
	}
	return &CommaSequence{Sequences: out}, nil
}

func (cs *CommaSequence) containsParentRef() bool {
	for _, s := range cs.Sequences {
		if s.containsParentRef() {
			return true
		}
	}
	return false
}

func (s *Sequence) containsParentRef() bool {
	for _, m := range s.Members {
		if m.isSimple() && simpleSequenceStartsWithParent(m.Simple) {
			return true
		}
	}
	return false
}

func (cs *CommaSequence) firstLine() int {
	if len(cs.Sequences) == 0 {
		return 0
	}
	for _, m := range cs.Sequences[0].Members {
		if m.isSimple() {
			return m.Simple.Line
		}
	}
	return 0
}

func (cs *CommaSequence) firstFilename() string {
	if len(cs.Sequences) == 0 {
		return ""
	}
	for _, m := range cs.Sequences[0].Members {
		if m.isSimple() {
			return m.Simple.Filename
		}
	}
	return ""
}

func simpleSequenceStartsWithParent(ss *SimpleSequence) bool {
	if len(ss.Members) == 0 {
		return false
	}
	_, ok := ss.Members[0].(ParentSelector)
	return ok
}

// resolveParentRefs implements spec.md §4.3's Sequence.resolve_parent_refs:
// if no member begins with Parent, an implicit "& sel" descendant is
// restored (with its leading "\n" marker preserved); then every simple
// member is spliced through SimpleSequence.resolveParentRefs.
func (s *Sequence) resolveParentRefs(parentSeq *Sequence) (*Sequence, error) {
	members := s.Members
	if !s.containsParentRef() {
		leadingNewline := len(members) > 0 && members[0].isNewline()
		implicit := SimpleMember(NewSimpleSequence(ParentSelector{}))
		descendant := CombinatorMember(CombinatorDescendant)
		if leadingNewline {
			rest := members[1:]
			members = append([]SequenceMember{members[0], implicit, descendant}, rest...)
		} else {
			members = append([]SequenceMember{implicit, descendant}, members...)
		}
	}

	out := make([]SequenceMember, 0, len(members))
	for _, m := range members {
		if !m.isSimple() {
			out = append(out, m)
			continue
		}
		spliced, err := m.Simple.resolveParentRefs(parentSeq)
		if err != nil {
			return nil, err
		}
		out = append(out, spliced...)
	}
	return &Sequence{Members: out}, nil
}

// resolveParentRefs implements spec.md §4.3's SimpleSequence version: bare
// '&' splices the parent sequence's members wholesale, and '&' fused with
// a compound (e.g. "&.foo") requires the parent sequence's last member to
// itself be a SimpleSequence, into which the remaining own members fuse.
func (ss *SimpleSequence) resolveParentRefs(parentSeq *Sequence) ([]SequenceMember, error) {
	if !simpleSequenceStartsWithParent(ss) {
		return []SequenceMember{SimpleMember(ss)}, nil
	}
	if len(ss.Members) == 1 {
		out := make([]SequenceMember, len(parentSeq.Members))
		copy(out, parentSeq.Members)
		return out, nil
	}

	n := len(parentSeq.Members)
	if n == 0 || !parentSeq.Members[n-1].isSimple() {
		return nil, newSyntaxError("Invalid parent selector", ss.Line, ss.Filename)
	}
	lastSimple := parentSeq.Members[n-1].Simple

	fused := &SimpleSequence{
		Members:  append(append([]SimpleSelector{}, lastSimple.Members...), ss.Members[1:]...),
		Line:     ss.Line,
		Filename: ss.Filename,
	}

	out := make([]SequenceMember, n-1, n)
	copy(out, parentSeq.Members[:n-1])
	out = append(out, SimpleMember(fused))
	return out, nil
}
