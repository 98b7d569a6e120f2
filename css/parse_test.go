package css

import "testing"

func TestParseSelectorListBasics(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{".foo", ".foo"},
		{"#bar", "#bar"},
		{"a.foo#bar", "a.foo#bar"},
		{"a b", "a b"},
		{"a > b", "a > b"},
		{"a + b", "a + b"},
		{"a ~ b", "a ~ b"},
		{".a, .b", ".a, .b"},
		{"*", "*"},
		{"svg|rect", "svg|rect"},
		{"*|rect", "*|rect"},
		{"|rect", "|rect"},
		{"[href]", "[href]"},
		{`[href="x"]`, `[href="x"]`},
		{":hover", ":hover"},
		{"::before", "::before"},
		{":not(.foo)", ":not(.foo)"},
		{"&.foo", "&.foo"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			cs, err := ParseSelectorList([]byte(tc.in))
			if err != nil {
				t.Fatalf("ParseSelectorList(%q): %v", tc.in, err)
			}
			if got := cs.String(); got != tc.want {
				t.Fatalf("ParseSelectorList(%q).String() = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseSelectorListInterpolation(t *testing.T) {
	cs, err := ParseSelectorList([]byte(".icon-#{$size}"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := cs.String(); got != ".icon-#{$size}" {
		t.Fatalf("got %q, want %q", got, ".icon-#{$size}")
	}
	ss := cs.Sequences[0].Members[0].Simple
	cls, ok := ss.Members[0].(ClassSelector)
	if !ok {
		t.Fatalf("expected ClassSelector, got %T", ss.Members[0])
	}
	if !cls.Name.HasInterpolation() {
		t.Fatalf("expected interpolation in class name")
	}
}

func TestParseSelectorListRejectsTrailingGarbage(t *testing.T) {
	if _, err := ParseSelectorList([]byte(".foo)")); err == nil {
		t.Fatalf("expected an error for trailing garbage")
	}
}

func TestParseSelectorListWithFilenameAndLine(t *testing.T) {
	cs, err := ParseSelectorList([]byte("&.foo"), WithFilename("app.scss"), WithStartLine(1))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	_, resolveErr := cs.ResolveParentRefs(nil)
	if resolveErr == nil {
		t.Fatalf("expected base-level '&' error")
	}
	se, ok := resolveErr.(*SyntaxError)
	if !ok {
		t.Fatalf("expected *SyntaxError, got %T", resolveErr)
	}
	if se.Filename != "app.scss" || se.Line != 1 {
		t.Fatalf("expected error at line 1 of app.scss, got line %d of %q", se.Line, se.Filename)
	}
}
