package css

// Unify folds every member of ss into otherMembers using the
// simple-selector unifier of spec.md §4.2, returning a new SimpleSequence
// or ok=false as soon as any member's fusion fails.
func (ss *SimpleSequence) Unify(otherMembers []SimpleSelector) (*SimpleSequence, bool) {
	acc := otherMembers
	for _, m := range ss.Members {
		next, ok := m.Unify(acc)
		if !ok {
			return nil, false
		}
		acc = next
	}
	return &SimpleSequence{Members: acc, Line: ss.Line, Filename: ss.Filename}, true
}
