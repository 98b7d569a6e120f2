package css

// Namespace models spec.md §3/§6's Option<Tok> namespace field: Present
// is false for "unspecified" (None), and when Present is true the Tok
// distinguishes no-namespace (Some([""])) from wildcard (Some(["*"]))
// from a concrete namespace name (Some([other])).
type Namespace struct {
	Present bool
	Tok     Tok
}

// NamespaceUnspecified is the default-namespace placeholder: None.
func NamespaceUnspecified() Namespace { return Namespace{} }

// NamespaceNone is the explicit no-namespace marker: Some([""]).
func NamespaceNone() Namespace { return Namespace{Present: true, Tok: tokNamespaceNone} }

// NamespaceAny is the wildcard marker: Some(["*"]).
func NamespaceAny() Namespace { return Namespace{Present: true, Tok: tokNamespaceAny} }

// NamespaceNamed wraps a concrete namespace token: Some([other]).
func NamespaceNamed(t Tok) Namespace { return Namespace{Present: true, Tok: t} }

func (n Namespace) isAny() bool {
	return n.Present && len(n.Tok) == 1 && !n.Tok[0].isScript() && n.Tok[0].Literal == "*"
}

// Equal reports namespace equality per spec.md's invariant that
// None != Some([""]).
func (n Namespace) Equal(other Namespace) bool {
	if n.Present != other.Present {
		return false
	}
	if !n.Present {
		return true
	}
	return n.Tok.Equal(other.Tok)
}

// String renders the namespace prefix, including its trailing '|', or
// "" when unspecified.
func (n Namespace) String() string {
	if !n.Present {
		return ""
	}
	return n.Tok.String() + "|"
}

// UnifyNamespaces implements spec.md §4.1: reconcile two optional
// namespaces under wildcard rules. The returned bool reports acceptance;
// when false, the returned Namespace is meaningless.
func UnifyNamespaces(n1, n2 Namespace) (Namespace, bool) {
	switch {
	case n1.Equal(n2):
		return n1, true
	case !n1.Present:
		return n2, true
	case !n2.Present:
		return n1, true
	case n1.isAny():
		return n2, true
	case n2.isAny():
		return n1, true
	default:
		return Namespace{}, false
	}
}
