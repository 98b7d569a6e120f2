package css

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser adapts selector-list source text into a *CommaSequence. It
// leans on github.com/tdewolff/parse/v2/css for the grammar-level work
// of peeling a selector list out of a synthetic ruleset, and a small
// hand-rolled scanner for the selector grammar itself (namespaces,
// combinators, pseudo-arguments, interpolation) that tdewolff's CSS-only
// grammar does not know about.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new selector parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// ParseOption configures a single ParseSelectorList call.
type ParseOption func(*parseConfig)

type parseConfig struct {
	filename string
	line     int
}

// WithFilename attaches a filename to every syntax error and to every
// SimpleSequence produced, for spec.md §7's "line/filename from the
// most relevant SimpleSequence" requirement.
func WithFilename(name string) ParseOption {
	return func(c *parseConfig) { c.filename = name }
}

// WithStartLine offsets line numbers reported in errors and locations,
// for selector text extracted from the middle of a larger file.
func WithStartLine(line int) ParseOption {
	return func(c *parseConfig) { c.line = line }
}

// ParseSelectorList implements spec.md §6's "parse_selector(tokens) ->
// CommaSequence" external interface, using a fresh Parser with no
// logging.
func ParseSelectorList(data []byte, opts ...ParseOption) (*CommaSequence, error) {
	return NewParser(nil).ParseSelectorList(data, opts...)
}

// ParseSelectorList parses data (a bare selector list, e.g. "a.foo,
// &.bar > .baz") into a *CommaSequence.
func (p *Parser) ParseSelectorList(data []byte, opts ...ParseOption) (*CommaSequence, error) {
	cfg := &parseConfig{line: 1}
	for _, o := range opts {
		o(cfg)
	}

	text, err := p.peelSelectorText(data)
	if err != nil {
		return nil, err
	}
	p.log.Debug("parsing selector list", zap.String("text", text), zap.String("filename", cfg.filename))

	sc := newSelectorScanner(text, cfg.line, cfg.filename)
	cs, err := sc.parseCommaSequence()
	if err != nil {
		return nil, err
	}
	if !sc.eof() {
		return nil, newSyntaxError(fmt.Sprintf("unexpected character %q in selector", sc.peek()), sc.line, cfg.filename)
	}
	return cs, nil
}

// peelSelectorText wraps data in a synthetic empty ruleset so tdewolff's
// grammar-level CSS tokenizer will hand back the selector-list text as
// one BeginRulesetGrammar token plus its Values(), exactly the way the
// teacher's own parser did for extracting selector strings.
func (p *Parser) peelSelectorText(data []byte) (string, error) {
	// tdewolff takes the '{' of "#{...}" as the start of the ruleset
	// block, so text with interpolation goes to the scanner unpeeled.
	if bytes.Contains(data, []byte("#{")) {
		return string(data), nil
	}
	synthetic := append(append([]byte{}, data...), []byte("{}")...)
	input := parse.NewInput(bytes.NewReader(synthetic))
	parser := css.NewParser(input, false)
	for {
		gt, _, d := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			if parser.Err() != nil && parser.Err().Error() != "EOF" {
				return "", fmt.Errorf("peeling selector text: %w", parser.Err())
			}
			return "", fmt.Errorf("no selector found in %q", string(data))
		case css.BeginRulesetGrammar, css.QualifiedRuleGrammar:
			var sb strings.Builder
			sb.Write(d)
			for _, v := range parser.Values() {
				sb.Write(v.Data)
			}
			return sb.String(), nil
		}
	}
}

// selectorScanner is a hand-rolled recursive-descent scanner over
// selector-list text: tdewolff's CSS grammar only tokenizes down to
// "this is a selector list", not into simple selectors, combinators, or
// interpolation.
type selectorScanner struct {
	src      []rune
	pos      int
	line     int
	filename string
}

func newSelectorScanner(s string, line int, filename string) *selectorScanner {
	return &selectorScanner{src: []rune(s), line: line, filename: filename}
}

func (sc *selectorScanner) eof() bool { return sc.pos >= len(sc.src) }

func (sc *selectorScanner) peek() rune {
	if sc.eof() {
		return 0
	}
	return sc.src[sc.pos]
}

func (sc *selectorScanner) peekAt(n int) rune {
	if sc.pos+n >= len(sc.src) {
		return 0
	}
	return sc.src[sc.pos+n]
}

func (sc *selectorScanner) advance() rune {
	r := sc.src[sc.pos]
	sc.pos++
	if r == '\n' {
		sc.line++
	}
	return r
}

func (sc *selectorScanner) errf(format string, args ...any) error {
	return newSyntaxError(fmt.Sprintf(format, args...), sc.line, sc.filename)
}

// skipSpaces consumes run of CSS whitespace and reports whether any was
// found, since whitespace between two simple sequences is the implicit
// descendant combinator.
func (sc *selectorScanner) skipSpaces() bool {
	start := sc.pos
	for !sc.eof() && isCSSSpace(sc.peek()) {
		sc.advance()
	}
	return sc.pos != start
}

func isCSSSpace(r rune) bool { return r == ' ' || r == '\t' || r == '\r' || r == '\n' || r == '\f' }

func isNameStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || r == '-' || r > unicode.MaxASCII
}

func isNameChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r > unicode.MaxASCII
}

// parseCommaSequence parses a full "A, B, C" selector list.
func (sc *selectorScanner) parseCommaSequence() (*CommaSequence, error) {
	var seqs []*Sequence
	for {
		sc.skipSpaces()
		seq, err := sc.parseSequence()
		if err != nil {
			return nil, err
		}
		seqs = append(seqs, seq)
		sc.skipSpaces()
		if sc.eof() {
			break
		}
		if sc.peek() == ',' {
			sc.advance()
			continue
		}
		break
	}
	return &CommaSequence{Sequences: seqs}, nil
}

// parseSequence parses one "A B > C" combinator chain.
func (sc *selectorScanner) parseSequence() (*Sequence, error) {
	var members []SequenceMember
	for {
		hadSpace := sc.skipSpaces()
		if sc.eof() || sc.peek() == ',' {
			break
		}
		if ch := sc.peek(); ch == '>' || ch == '+' || ch == '~' {
			sc.advance()
			members = append(members, CombinatorMember(Combinator(string(ch))))
			sc.skipSpaces()
			continue
		}
		if hadSpace && len(members) > 0 && members[len(members)-1].isSimple() {
			members = append(members, CombinatorMember(CombinatorDescendant))
		}
		line, filename := sc.line, sc.filename
		ss, err := sc.parseSimpleSequence()
		if err != nil {
			return nil, err
		}
		ss.SetLocation(line, filename)
		members = append(members, SimpleMember(ss))
	}
	if len(members) == 0 {
		return nil, sc.errf("expected a selector")
	}
	return &Sequence{Members: members}, nil
}

// parseSimpleSequence parses one run of simple selectors with no
// separating combinator, e.g. "a.foo#bar[x]:hover".
func (sc *selectorScanner) parseSimpleSequence() (*SimpleSequence, error) {
	var sels []SimpleSelector
	for {
		if sc.eof() {
			break
		}
		switch ch := sc.peek(); {
		case isCSSSpace(ch) || ch == ',' || ch == '>' || ch == '+' || ch == '~':
			goto done
		default:
			sel, err := sc.parseOneSimpleSelector()
			if err != nil {
				return nil, err
			}
			sels = append(sels, sel)
		}
	}
done:
	if len(sels) == 0 {
		return nil, sc.errf("expected a selector")
	}
	return &SimpleSequence{Members: sels}, nil
}

// parseOneSimpleSelector parses exactly one SimpleSelector starting at
// the current position.
func (sc *selectorScanner) parseOneSimpleSelector() (SimpleSelector, error) {
	switch ch := sc.peek(); {
	case ch == '&':
		sc.advance()
		return ParentSelector{}, nil

	case ch == '.':
		sc.advance()
		return ClassSelector{Name: sc.parseNameTok()}, nil

	case ch == '#' && sc.peekAt(1) == '{':
		script, err := sc.parseInterpolation()
		if err != nil {
			return nil, err
		}
		return InterpolationSelector{Script: RawScript(script)}, nil

	case ch == '#':
		sc.advance()
		return IDSelector{Name: sc.parseNameTok()}, nil

	case ch == '[':
		return sc.parseAttribute()

	case ch == ':':
		return sc.parsePseudo()

	case ch == '*':
		if sc.peekAt(1) == '|' {
			sc.advance()
			sc.advance()
			return sc.parseNamedOrUniversal(NamespaceAny())
		}
		sc.advance()
		return UniversalSelector{Namespace: NamespaceUnspecified()}, nil

	case ch == '|':
		sc.advance()
		return sc.parseNamedOrUniversal(NamespaceNone())

	case isNameStart(ch):
		name := sc.parseNameTok()
		if sc.peek() == '|' && sc.peekAt(1) != '=' {
			sc.advance()
			return sc.parseNamedOrUniversal(NamespaceNamed(name))
		}
		return ElementSelector{Name: name, Namespace: NamespaceUnspecified()}, nil

	default:
		return nil, sc.errf("unexpected character %q in selector", ch)
	}
}

// parseNamedOrUniversal parses the part of a selector after a resolved
// namespace prefix: either "*" (UniversalSelector) or a name
// (ElementSelector).
func (sc *selectorScanner) parseNamedOrUniversal(ns Namespace) (SimpleSelector, error) {
	if sc.peek() == '*' {
		sc.advance()
		return UniversalSelector{Namespace: ns}, nil
	}
	if !isNameStart(sc.peek()) {
		return nil, sc.errf("expected a name after namespace prefix")
	}
	return ElementSelector{Name: sc.parseNameTok(), Namespace: ns}, nil
}

// parseNameTok scans a CSS identifier, splicing in #{...} interpolation
// runs so a single logical name can mix literal and script segments
// (e.g. ".icon-#{$size}").
func (sc *selectorScanner) parseNameTok() Tok {
	var tok Tok
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			tok = append(tok, Lit(lit.String()))
			lit.Reset()
		}
	}
	for !sc.eof() {
		if sc.peek() == '#' && sc.peekAt(1) == '{' {
			flush()
			script, err := sc.parseInterpolation()
			if err == nil {
				tok = append(tok, Interp(RawScript(script)))
			}
			continue
		}
		if isNameChar(sc.peek()) {
			lit.WriteRune(sc.advance())
			continue
		}
		break
	}
	flush()
	return tok
}

// parseInterpolation consumes "#{" ... "}" and returns the raw inner
// text, tracking brace nesting.
func (sc *selectorScanner) parseInterpolation() (string, error) {
	sc.advance() // '#'
	sc.advance() // '{'
	depth := 1
	var sb strings.Builder
	for {
		if sc.eof() {
			return "", sc.errf("unterminated interpolation")
		}
		r := sc.advance()
		if r == '{' {
			depth++
		}
		if r == '}' {
			depth--
			if depth == 0 {
				return sb.String(), nil
			}
		}
		sb.WriteRune(r)
	}
}

// parseAttribute parses "[name]", "[ns|name op \"value\"]", etc.
func (sc *selectorScanner) parseAttribute() (SimpleSelector, error) {
	sc.advance() // '['
	sc.skipSpaces()

	ns := NamespaceUnspecified()
	name := sc.parseNameTok()
	if sc.peek() == '|' && sc.peekAt(1) != '=' {
		sc.advance()
		ns = NamespaceNamed(name)
		name = sc.parseNameTok()
	}
	sc.skipSpaces()

	if sc.peek() == ']' {
		sc.advance()
		return AttributeSelector{Name: name, Namespace: ns}, nil
	}

	op, err := sc.parseAttributeOp()
	if err != nil {
		return nil, err
	}
	sc.skipSpaces()

	value, err := sc.parseAttributeValue()
	if err != nil {
		return nil, err
	}
	sc.skipSpaces()
	if sc.peek() != ']' {
		return nil, sc.errf("expected ']' to close attribute selector")
	}
	sc.advance()
	return AttributeSelector{Name: name, Namespace: ns, Op: &op, Value: &value}, nil
}

func (sc *selectorScanner) parseAttributeOp() (string, error) {
	switch sc.peek() {
	case '=':
		sc.advance()
		return "=", nil
	case '~', '|', '^', '$', '*':
		first := sc.advance()
		if sc.peek() != '=' {
			return "", sc.errf("expected '=' after %q in attribute selector", first)
		}
		sc.advance()
		return string(first) + "=", nil
	default:
		return "", sc.errf("expected an attribute operator")
	}
}

func (sc *selectorScanner) parseAttributeValue() (Tok, error) {
	if sc.peek() == '"' || sc.peek() == '\'' {
		quote := sc.advance()
		var lit strings.Builder
		for {
			if sc.eof() {
				return nil, sc.errf("unterminated attribute value")
			}
			r := sc.advance()
			if r == quote {
				break
			}
			lit.WriteRune(r)
		}
		return TokLit(lit.String()), nil
	}
	return sc.parseNameTok(), nil
}

// parsePseudo parses ":name", ":name(arg)", "::name", or
// "::name(arg)", including ":not(inner)".
func (sc *selectorScanner) parsePseudo() (SimpleSelector, error) {
	sc.advance() // ':'
	kind := PseudoKindClass
	if sc.peek() == ':' {
		sc.advance()
		kind = PseudoKindElement
	}
	if !isNameStart(sc.peek()) {
		return nil, sc.errf("expected a pseudo name")
	}
	name := sc.parseNameTok()

	if sc.peek() != '(' {
		return PseudoSelector{Kind: kind, Name: name}, nil
	}
	sc.advance() // '('

	if kind == PseudoKindClass && strings.EqualFold(name.String(), "not") {
		sc.skipSpaces()
		inner, err := sc.parseOneSimpleSelector()
		if err != nil {
			return nil, err
		}
		sc.skipSpaces()
		if sc.peek() != ')' {
			return nil, sc.errf("expected ')' to close :not(...)")
		}
		sc.advance()
		return NegationSelector{Inner: inner}, nil
	}

	arg, err := sc.parsePseudoArg()
	if err != nil {
		return nil, err
	}
	return PseudoSelector{Kind: kind, Name: name, Arg: &arg}, nil
}

// parsePseudoArg consumes the raw text of a pseudo-class/element
// argument up to its closing, depth-tracked ')'.
func (sc *selectorScanner) parsePseudoArg() (Tok, error) {
	var tok Tok
	var lit strings.Builder
	depth := 1
	for {
		if sc.eof() {
			return nil, sc.errf("unterminated pseudo argument")
		}
		if sc.peek() == '#' && sc.peekAt(1) == '{' {
			if lit.Len() > 0 {
				tok = append(tok, Lit(lit.String()))
				lit.Reset()
			}
			script, err := sc.parseInterpolation()
			if err != nil {
				return nil, err
			}
			tok = append(tok, Interp(RawScript(script)))
			continue
		}
		r := sc.advance()
		if r == '(' {
			depth++
		}
		if r == ')' {
			depth--
			if depth == 0 {
				if lit.Len() > 0 {
					tok = append(tok, Lit(lit.String()))
				}
				return tok, nil
			}
		}
		lit.WriteRune(r)
	}
}
