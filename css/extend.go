package css

// ExtendEntry is one "@extend" registration: selector-set target, the
// replacement sequence that should also match it, and the source
// location used for loop diagnostics.
type ExtendEntry struct {
	Target      []SimpleSelector
	Replacement *Sequence
	Line        int
	Filename    string
}

// ExtendMap holds every ExtendEntry registered in a stylesheet. Lookup is
// by subset per spec.md §4.4: Get returns every entry whose Target is a
// subset of the queried member list.
type ExtendMap struct {
	entries []ExtendEntry
	limits  Limits
}

// NewExtendMap builds an empty map with DefaultLimits; Add registers
// entries as the enclosing compiler discovers "@extend" directives.
func NewExtendMap() *ExtendMap { return &ExtendMap{limits: DefaultLimits()} }

func (m *ExtendMap) Add(target []SimpleSelector, replacement *Sequence, line int, filename string) {
	m.entries = append(m.entries, ExtendEntry{Target: target, Replacement: replacement, Line: line, Filename: filename})
}

// Get returns every registered entry whose Target is a sub-multiset of
// members.
func (m *ExtendMap) Get(members []SimpleSelector) []ExtendEntry {
	var out []ExtendEntry
	for _, e := range m.entries {
		if isSubMultiset(e.Target, members) {
			out = append(out, e)
		}
	}
	return out
}

func isSubMultiset(small, big []SimpleSelector) bool {
	used := make([]bool, len(big))
	for _, s := range small {
		found := false
		for j, b := range big {
			if used[j] {
				continue
			}
			if s.Eql(b) {
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

// defaultExtendMaxDepth bounds the recursive-extension chase when no
// explicit Limits is supplied, matching spec.md §5's depth-bounded
// cycle detection.
const defaultExtendMaxDepth = 10000

// extendFrame tracks one step of the current recursive-extension chain,
// for building the cycle diagnostic of spec.md §4.4 if recursion runs
// away.
type extendFrame struct {
	childKey string
	edge     extendCycleEdge
}

// Extend rewrites every occurrence of an extended selector in cs,
// per spec.md §4.4.
func (cs *CommaSequence) Extend(m *ExtendMap) (*CommaSequence, error) {
	var out []*Sequence
	for _, s := range cs.Sequences {
		expanded, err := s.Extend(m)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded...)
	}
	return &CommaSequence{Sequences: out}, nil
}

// Extend implements spec.md §4.4's Sequence.extend: each member becomes
// an alternative set (itself, plus any extensions), the cartesian product
// across members is woven member-by-member, and the results are wrapped
// back into Sequences.
func (s *Sequence) Extend(m *ExtendMap) ([]*Sequence, error) {
	var alternatives [][][]SequenceMember
	for _, member := range s.Members {
		if !member.isSimple() {
			alternatives = append(alternatives, [][]SequenceMember{{member}})
			continue
		}
		extended, err := member.Simple.Extend(m, nil)
		if err != nil {
			return nil, err
		}
		alts := make([][]SequenceMember, 0, len(extended)+1)
		alts = append(alts, []SequenceMember{member})
		for _, alt := range extended {
			alts = append(alts, alt.Members)
		}
		alternatives = append(alternatives, alts)
	}

	var results []*Sequence
	for _, path := range cartesianProduct(alternatives) {
		woven, err := WeaveTraced(path, m.limits, nil)
		if err != nil {
			return nil, err
		}
		for _, w := range woven {
			results = append(results, &Sequence{Members: w})
		}
	}
	return results, nil
}

// cartesianProduct enumerates every combination choosing one alternative
// per position, preserving position order.
func cartesianProduct(alternatives [][][]SequenceMember) [][][]SequenceMember {
	if len(alternatives) == 0 {
		return [][][]SequenceMember{nil}
	}
	rest := cartesianProduct(alternatives[1:])
	var out [][][]SequenceMember
	for _, choice := range alternatives[0] {
		for _, tail := range rest {
			path := make([][]SequenceMember, 0, len(tail)+1)
			path = append(path, choice)
			path = append(path, tail...)
			out = append(out, path)
		}
	}
	return out
}

// Extend implements spec.md §4.4's SimpleSequence.extend: every matching
// ExtendMap entry produces one direct extension, and each direct
// extension not itself identical to self is recursively extended, with
// visited frames bounding the recursion to detect @extend loops.
func (ss *SimpleSequence) Extend(m *ExtendMap, visited []extendFrame) ([]*Sequence, error) {
	if len(visited) > m.limits.extendMaxDepth() {
		return nil, newExtendLoopError(edgesFrom(visited))
	}

	selfKey := ss.signature()
	if cycleIdx := frameIndex(visited, selfKey); cycleIdx >= 0 {
		return nil, newExtendLoopError(edgesFrom(visited[cycleIdx:]))
	}

	var direct []*Sequence
	var edges []extendCycleEdge
	for _, entry := range m.Get(ss.Members) {
		withoutTarget := withoutMembers(ss.Members, entry.Target)
		lastSimple, ok := entry.Replacement.LastSimpleSequence()
		if !ok {
			continue
		}
		unified, ok := lastSimple.Unify(withoutTarget)
		if !ok {
			continue
		}

		n := len(entry.Replacement.Members)
		newMembers := make([]SequenceMember, n)
		copy(newMembers, entry.Replacement.Members)
		newMembers[n-1] = SimpleMember(unified)

		direct = append(direct, &Sequence{Members: newMembers})
		edges = append(edges, extendCycleEdge{
			child:    ss.ToTokens().String(),
			parent:   entry.Replacement.ToTokens().String(),
			line:     entry.Line,
			filename: entry.Filename,
		})
	}

	seen := map[uint64]bool{}
	result := make([]*Sequence, 0, len(direct))
	for _, d := range direct {
		key := d.Hash()
		if !seen[key] {
			seen[key] = true
			result = append(result, d)
		}
	}

	var recursive []*Sequence
	for i, d := range direct {
		lastSimple, ok := d.LastSimpleSequence()
		if !ok {
			continue
		}
		if len(d.Members) == 1 && lastSimple.Eql(ss) {
			continue
		}
		frame := extendFrame{childKey: selfKey, edge: edges[i]}
		more, err := lastSimple.Extend(m, append(visited, frame))
		if err != nil {
			return nil, err
		}
		for _, alt := range more {
			key := alt.Hash()
			if !seen[key] {
				seen[key] = true
				recursive = append(recursive, alt)
			}
		}
	}

	return append(result, recursive...), nil
}

func (ss *SimpleSequence) signature() string { return ss.ToTokens().String() }

func frameIndex(frames []extendFrame, key string) int {
	for i, f := range frames {
		if f.childKey == key {
			return i
		}
	}
	return -1
}

func edgesFrom(frames []extendFrame) []extendCycleEdge {
	out := make([]extendCycleEdge, 0, len(frames))
	for _, f := range frames {
		out = append(out, f.edge)
	}
	return out
}
