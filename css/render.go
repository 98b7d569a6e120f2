package css

// ToTokens renders s to the canonical token form of spec.md §4.6:
// combinators get a single space on each side, the implicit descendant
// combinator is itself a single space, and a "\n" marker sitting between
// two descendant spaces collapses the triple into a bare "\n".
func (s *Sequence) ToTokens() Tok {
	var out Tok
	for _, m := range s.Members {
		switch m.Kind {
		case MemberSimple:
			out = append(out, m.Simple.ToTokens()...)
		case MemberCombinator:
			if m.Combinator == CombinatorDescendant {
				out = append(out, Lit(" "))
			} else {
				out = append(out, Lit(" "+string(m.Combinator)+" "))
			}
		case MemberNewline:
			out = append(out, Lit("\n"))
		}
	}
	return collapseNewlineMarkers(out)
}

// collapseNewlineMarkers substitutes the literal-token subsequence
// [" ", "\n", " "] with ["\n"], per spec.md §4.6.
func collapseNewlineMarkers(t Tok) Tok {
	out := make(Tok, 0, len(t))
	for i := 0; i < len(t); i++ {
		if i+2 < len(t) && isLiteral(t[i], " ") && isLiteral(t[i+1], "\n") && isLiteral(t[i+2], " ") {
			out = append(out, Lit("\n"))
			i += 2
			continue
		}
		out = append(out, t[i])
	}
	return out
}

func isLiteral(e TokElem, s string) bool {
	return !e.isScript() && e.Literal == s
}

func (s *Sequence) String() string { return s.ToTokens().String() }

// ToTokens renders cs as its members joined by ", ".
func (cs *CommaSequence) ToTokens() Tok {
	var out Tok
	for i, s := range cs.Sequences {
		if i > 0 {
			out = append(out, Lit(", "))
		}
		out = append(out, s.ToTokens()...)
	}
	return out
}

func (cs *CommaSequence) String() string { return cs.ToTokens().String() }
