// Package css implements the selector algebra of a CSS preprocessor: the
// in-memory representation of CSS selectors and the three operations that
// act on them — parent-reference resolution, unification, and @extend
// expansion (including the weave/subweave interleaving algorithm).
package css

// SimpleSelector is a single atomic selector: a class, id, element,
// attribute, pseudo, negation, universal selector, an unresolved parent
// reference, or an unresolved interpolation. The variant set is closed —
// it is complete for CSS level 3 and every algorithm below switches on
// the concrete type rather than leaving room for external extension.
type SimpleSelector interface {
	// Eql reports structural equality with another simple selector.
	Eql(other SimpleSelector) bool
	// ToTokens renders this selector to its canonical token form.
	ToTokens() Tok
	// Unify fuses this selector into sels, the member list of a
	// SimpleSequence that must remain homogeneous, returning the new
	// member list or ok=false when the fusion is impossible.
	Unify(sels []SimpleSelector) (result []SimpleSelector, ok bool)
}

// ParentSelector is the unresolved '&' marker.
type ParentSelector struct{}

func (ParentSelector) Eql(other SimpleSelector) bool {
	_, ok := other.(ParentSelector)
	return ok
}

func (ParentSelector) ToTokens() Tok { return TokLit("&") }

func (ParentSelector) Unify([]SimpleSelector) ([]SimpleSelector, bool) {
	panicInvariant("[BUG] Cannot unify parent selectors.")
	return nil, false
}

// ClassSelector is ".name".
type ClassSelector struct{ Name Tok }

func (c ClassSelector) Eql(other SimpleSelector) bool {
	o, ok := other.(ClassSelector)
	return ok && c.Name.Equal(o.Name)
}

func (c ClassSelector) ToTokens() Tok {
	return append(TokLit("."), c.Name...)
}

func (c ClassSelector) Unify(sels []SimpleSelector) ([]SimpleSelector, bool) {
	return defaultUnify(c, sels)
}

// IDSelector is "#name".
type IDSelector struct{ Name Tok }

func (id IDSelector) Eql(other SimpleSelector) bool {
	o, ok := other.(IDSelector)
	return ok && id.Name.Equal(o.Name)
}

func (id IDSelector) ToTokens() Tok {
	return append(TokLit("#"), id.Name...)
}

func (id IDSelector) Unify(sels []SimpleSelector) ([]SimpleSelector, bool) {
	for _, s := range sels {
		if other, ok := s.(IDSelector); ok && !other.Eql(id) {
			return nil, false
		}
	}
	return defaultUnify(id, sels)
}

// UniversalSelector is "*" or "ns|*".
type UniversalSelector struct{ Namespace Namespace }

func (u UniversalSelector) Eql(other SimpleSelector) bool {
	o, ok := other.(UniversalSelector)
	return ok && u.Namespace.Equal(o.Namespace)
}

func (u UniversalSelector) ToTokens() Tok {
	return append(TokLit(u.Namespace.String()), Lit("*"))
}

func (u UniversalSelector) Unify(sels []SimpleSelector) ([]SimpleSelector, bool) {
	if len(sels) == 0 {
		return []SimpleSelector{u}, true
	}
	switch head := sels[0].(type) {
	case UniversalSelector:
		ns, ok := UnifyNamespaces(u.Namespace, head.Namespace)
		if !ok {
			return nil, false
		}
		out := cloneWithHead(sels, UniversalSelector{Namespace: ns})
		return out, true
	case ElementSelector:
		ns, ok := UnifyNamespaces(u.Namespace, head.Namespace)
		if !ok {
			return nil, false
		}
		out := cloneWithHead(sels, ElementSelector{Name: head.Name, Namespace: ns})
		return out, true
	default:
		if !u.Namespace.Present || u.Namespace.isAny() {
			return sels, true
		}
		return prepend(u, sels), true
	}
}

// ElementSelector is "name" or "ns|name".
type ElementSelector struct {
	Name      Tok
	Namespace Namespace
}

func (e ElementSelector) Eql(other SimpleSelector) bool {
	o, ok := other.(ElementSelector)
	return ok && e.Name.Equal(o.Name) && e.Namespace.Equal(o.Namespace)
}

func (e ElementSelector) ToTokens() Tok {
	return append(TokLit(e.Namespace.String()), e.Name...)
}

func (e ElementSelector) Unify(sels []SimpleSelector) ([]SimpleSelector, bool) {
	if len(sels) == 0 {
		return []SimpleSelector{e}, true
	}
	switch head := sels[0].(type) {
	case UniversalSelector:
		ns, ok := UnifyNamespaces(e.Namespace, head.Namespace)
		if !ok {
			return nil, false
		}
		return cloneWithHead(sels, ElementSelector{Name: e.Name, Namespace: ns}), true
	case ElementSelector:
		if !e.Name.Equal(head.Name) {
			return nil, false
		}
		ns, ok := UnifyNamespaces(e.Namespace, head.Namespace)
		if !ok {
			return nil, false
		}
		return cloneWithHead(sels, ElementSelector{Name: e.Name, Namespace: ns}), true
	default:
		return prepend(e, sels), true
	}
}

// AttributeSelector is "[name]", "[ns|name op value]", etc. Op and Value
// are both nil together: spec.md's "when op is absent, value is absent".
type AttributeSelector struct {
	Name      Tok
	Namespace Namespace
	Op        *string
	Value     *Tok
}

func (a AttributeSelector) Eql(other SimpleSelector) bool {
	o, ok := other.(AttributeSelector)
	if !ok {
		return false
	}
	if !a.Name.Equal(o.Name) || !a.Namespace.Equal(o.Namespace) {
		return false
	}
	if (a.Op == nil) != (o.Op == nil) {
		return false
	}
	if a.Op != nil && *a.Op != *o.Op {
		return false
	}
	if (a.Value == nil) != (o.Value == nil) {
		return false
	}
	if a.Value != nil && !a.Value.Equal(*o.Value) {
		return false
	}
	return true
}

func (a AttributeSelector) ToTokens() Tok {
	out := append(TokLit("["), TokLit(a.Namespace.String())...)
	out = append(out, a.Name...)
	if a.Op != nil {
		out = append(out, TokLit(*a.Op)...)
		out = append(out, Lit(`"`))
		if a.Value != nil {
			out = append(out, *a.Value...)
		}
		out = append(out, Lit(`"`))
	}
	out = append(out, Lit("]"))
	return out
}

func (a AttributeSelector) Unify(sels []SimpleSelector) ([]SimpleSelector, bool) {
	return defaultUnify(a, sels)
}

// PseudoKind distinguishes pseudo-classes (one colon) from
// pseudo-elements (two colons).
type PseudoKind int

const (
	PseudoKindClass PseudoKind = iota
	PseudoKindElement
)

func (k PseudoKind) String() string {
	if k == PseudoKindElement {
		return "::"
	}
	return ":"
}

// PseudoSelector is ":name", ":name(arg)", "::name", or "::name(arg)".
type PseudoSelector struct {
	Kind PseudoKind
	Name Tok
	Arg  *Tok
}

func (p PseudoSelector) Eql(other SimpleSelector) bool {
	o, ok := other.(PseudoSelector)
	if !ok || p.Kind != o.Kind || !p.Name.Equal(o.Name) {
		return false
	}
	if (p.Arg == nil) != (o.Arg == nil) {
		return false
	}
	return p.Arg == nil || p.Arg.Equal(*o.Arg)
}

func (p PseudoSelector) sameNameAndArg(other PseudoSelector) bool {
	if !p.Name.Equal(other.Name) {
		return false
	}
	if (p.Arg == nil) != (other.Arg == nil) {
		return false
	}
	return p.Arg == nil || p.Arg.Equal(*other.Arg)
}

func (p PseudoSelector) ToTokens() Tok {
	out := append(TokLit(p.Kind.String()), p.Name...)
	if p.Arg != nil {
		out = append(out, Lit("("))
		out = append(out, *p.Arg...)
		out = append(out, Lit(")"))
	}
	return out
}

func (p PseudoSelector) Unify(sels []SimpleSelector) ([]SimpleSelector, bool) {
	if p.Kind == PseudoKindElement {
		for _, s := range sels {
			if other, ok := s.(PseudoSelector); ok && other.Kind == PseudoKindElement && !p.sameNameAndArg(other) {
				return nil, false
			}
		}
	}
	return defaultUnify(p, sels)
}

// NegationSelector is ":not(inner)".
type NegationSelector struct{ Inner SimpleSelector }

func (n NegationSelector) Eql(other SimpleSelector) bool {
	o, ok := other.(NegationSelector)
	return ok && n.Inner.Eql(o.Inner)
}

func (n NegationSelector) ToTokens() Tok {
	out := TokLit(":not(")
	out = append(out, n.Inner.ToTokens()...)
	return append(out, Lit(")"))
}

func (n NegationSelector) Unify(sels []SimpleSelector) ([]SimpleSelector, bool) {
	return defaultUnify(n, sels)
}

// InterpolationSelector is "#{script}", unresolved until the enclosing
// compiler evaluates the expression. Like ParentSelector, it must be
// resolved before unify or extend ever sees it.
type InterpolationSelector struct{ Script ScriptNode }

func (i InterpolationSelector) Eql(other SimpleSelector) bool {
	o, ok := other.(InterpolationSelector)
	return ok && i.Script.Equal(o.Script)
}

func (i InterpolationSelector) ToTokens() Tok { return Tok{Interp(i.Script)} }

func (i InterpolationSelector) Unify([]SimpleSelector) ([]SimpleSelector, bool) {
	panicInvariant("[BUG] Cannot unify interpolation selectors.")
	return nil, false
}

// defaultUnify implements spec.md §4.2's default fusion rule, shared by
// Class, Attribute, Negation, and Pseudo(class).
func defaultUnify(self SimpleSelector, sels []SimpleSelector) ([]SimpleSelector, bool) {
	for _, s := range sels {
		if s.Eql(self) {
			return sels, true
		}
	}
	if n := len(sels); n > 0 {
		if last, ok := sels[n-1].(PseudoSelector); ok && last.Kind == PseudoKindElement {
			out := make([]SimpleSelector, 0, n+1)
			out = append(out, sels[:n-1]...)
			out = append(out, self, sels[n-1])
			return out, true
		}
	}
	out := make([]SimpleSelector, len(sels)+1)
	copy(out, sels)
	out[len(sels)] = self
	return out, true
}

func prepend(self SimpleSelector, sels []SimpleSelector) []SimpleSelector {
	out := make([]SimpleSelector, len(sels)+1)
	out[0] = self
	copy(out[1:], sels)
	return out
}

func cloneWithHead(sels []SimpleSelector, head SimpleSelector) []SimpleSelector {
	out := make([]SimpleSelector, len(sels))
	copy(out, sels)
	out[0] = head
	return out
}
