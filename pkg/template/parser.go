package template

import (
	"strings"
)

// helperNames is the closed set of recognized formatting helpers.
// Tokens starting with any other word fall through to variable
// classification.
var helperNames = map[string]bool{
	"format_number": true,
}

// Parse turns template source text into an ordered node tree. An
// unterminated {{ expression or a block with no matching closer is a
// hard failure; unknown directive keywords are not.
func Parse(src string) ([]Node, error) {
	p := &parser{src: src}
	nodes, _, err := p.parseUntil(nil)
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

type parser struct {
	src string
	pos int
}

// nextTag scans forward to the next {{...}} expression. It returns the
// literal text preceding it and the trimmed expression content. found
// is false at end of input.
func (p *parser) nextTag() (text, expr string, found bool, err error) {
	start := strings.Index(p.src[p.pos:], "{{")
	if start < 0 {
		text = p.src[p.pos:]
		p.pos = len(p.src)
		return text, "", false, nil
	}
	start += p.pos

	end := strings.Index(p.src[start+2:], "}}")
	if end < 0 {
		return "", "", false, &ParseError{Msg: "unterminated expression: missing }}", Pos: start}
	}
	end += start + 2

	text = p.src[p.pos:start]
	expr = strings.TrimSpace(p.src[start+2 : end])
	p.pos = end + 2
	return text, expr, true, nil
}

// parseUntil consumes nodes until it reaches a tag whose keyword is in
// stops, returning that tag's full expression. With no stops it parses
// to end of input. Nested blocks are consumed by their own recursive
// calls, so an inner closer never terminates an outer block.
func (p *parser) parseUntil(stops map[string]bool) (nodes []Node, end string, err error) {
	for {
		text, expr, found, err := p.nextTag()
		if err != nil {
			return nil, "", err
		}
		if text != "" {
			nodes = append(nodes, &TextNode{Text: text})
		}
		if !found {
			if len(stops) > 0 {
				return nil, "", &ParseError{Msg: "unterminated block: expected " + stopList(stops), Pos: p.pos}
			}
			return nodes, "", nil
		}

		if len(stops) > 0 && stops[keyword(expr)] {
			return nodes, expr, nil
		}

		node, err := p.parseExpr(expr)
		if err != nil {
			return nil, "", err
		}
		if node != nil {
			nodes = append(nodes, node)
		}
	}
}

// parseExpr classifies a single {{...}} expression by prefix.
func (p *parser) parseExpr(expr string) (Node, error) {
	switch {
	case strings.HasPrefix(expr, "#if_locale "):
		return p.parseIfLocale(strings.TrimSpace(expr[len("#if_locale"):]))
	case strings.HasPrefix(expr, "#if "):
		return p.parseIf(strings.TrimSpace(expr[len("#if"):]))
	case strings.HasPrefix(expr, "#each "):
		return p.parseEach(strings.TrimSpace(expr[len("#each"):]))
	case strings.HasPrefix(expr, "#switch "):
		return p.parseSwitch(strings.TrimSpace(expr[len("#switch"):]))
	case strings.HasPrefix(expr, ">"):
		return parseInclude(strings.TrimSpace(expr[1:]))
	case strings.HasPrefix(expr, "i18n "):
		return parseI18n(strings.TrimSpace(expr[len("i18n"):]))
	}

	if fields := splitArgs(expr); len(fields) > 0 && helperNames[fields[0]] {
		return parseHelper(fields), nil
	}

	// Unknown keywords fall through to variable classification; stray
	// closers and misspelled directives become variable lookups that
	// fail at render time.
	if strings.Contains(expr, ".") {
		return &NestedVariableNode{Path: strings.Split(expr, ".")}, nil
	}
	return &VariableNode{Name: expr}, nil
}

func (p *parser) parseIf(cond string) (Node, error) {
	if cond == "" {
		return nil, &ParseError{Msg: "#if requires a condition name", Pos: p.pos}
	}
	n := &IfNode{Condition: cond}
	body, end, err := p.parseUntil(map[string]bool{"else": true, "/if": true})
	if err != nil {
		return nil, err
	}
	n.Then = body
	if keyword(end) == "else" {
		elseBody, _, err := p.parseUntil(map[string]bool{"/if": true})
		if err != nil {
			return nil, err
		}
		n.Else = elseBody
	}
	return n, nil
}

func (p *parser) parseEach(source string) (Node, error) {
	if source == "" {
		return nil, &ParseError{Msg: "#each requires a source name", Pos: p.pos}
	}
	body, _, err := p.parseUntil(map[string]bool{"/each": true})
	if err != nil {
		return nil, err
	}
	return &EachNode{Source: source, Body: body}, nil
}

func (p *parser) parseIfLocale(arg string) (Node, error) {
	loc, ok := unquote(arg)
	if !ok {
		return nil, &ParseError{Msg: "#if_locale expects a quoted locale literal", Pos: p.pos}
	}
	n := &IfLocaleNode{Locale: loc}
	body, end, err := p.parseUntil(map[string]bool{"else": true, "/if_locale": true})
	if err != nil {
		return nil, err
	}
	n.Then = body
	if keyword(end) == "else" {
		elseBody, _, err := p.parseUntil(map[string]bool{"/if_locale": true})
		if err != nil {
			return nil, err
		}
		n.Else = elseBody
	}
	return n, nil
}

// parseSwitch scans for repeated {{#case "literal"}}...{{/case}} arms
// until {{/switch}}. Text between arms is discarded.
func (p *parser) parseSwitch(source string) (Node, error) {
	if source == "" {
		return nil, &ParseError{Msg: "#switch requires a source name", Pos: p.pos}
	}
	n := &SwitchNode{Source: source}
	for {
		_, expr, found, err := p.nextTag()
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, &ParseError{Msg: "unterminated #switch block: expected {{/switch}}", Pos: p.pos}
		}
		switch {
		case expr == "/switch":
			return n, nil
		case strings.HasPrefix(expr, "#case "):
			lit, ok := unquote(strings.TrimSpace(expr[len("#case"):]))
			if !ok {
				return nil, &ParseError{Msg: "#case expects a quoted literal", Pos: p.pos}
			}
			body, _, err := p.parseUntil(map[string]bool{"/case": true})
			if err != nil {
				return nil, err
			}
			n.Cases = append(n.Cases, CaseClause{Value: lit, Body: body})
		default:
			// Anything else between cases is ignored.
		}
	}
}

// parseInclude parses "> path/file.md name=value ..." content. Tokens
// containing = become named params; their values stay raw until render.
func parseInclude(args string) (Node, error) {
	fields := splitArgs(args)
	if len(fields) == 0 {
		return nil, &ParseError{Msg: "include expects a path"}
	}
	n := &IncludeNode{Path: fields[0], Params: map[string]string{}}
	for _, tok := range fields[1:] {
		if name, value, ok := strings.Cut(tok, "="); ok {
			n.Params[name] = value
		}
	}
	return n, nil
}

// parseI18n parses `"dotted.key" name=value ...` content. Parameter
// values may be quoted literals, bare identifiers, or a parenthesized
// helper call.
func parseI18n(args string) (Node, error) {
	fields := splitArgs(args)
	if len(fields) == 0 {
		return nil, &ParseError{Msg: "i18n expects a quoted key"}
	}
	key, ok := unquote(fields[0])
	if !ok {
		return nil, &ParseError{Msg: "i18n expects a quoted key"}
	}
	n := &I18nNode{Key: key, Params: map[string]string{}}
	for _, tok := range fields[1:] {
		if name, value, ok := strings.Cut(tok, "="); ok {
			n.Params[name] = value
		}
	}
	return n, nil
}

// parseHelper splits helper tokens into positional args (no =) and
// named params (name=value).
func parseHelper(fields []string) Node {
	n := &HelperNode{Name: fields[0], Params: map[string]string{}}
	for _, tok := range fields[1:] {
		if name, value, ok := strings.Cut(tok, "="); ok {
			n.Params[name] = value
		} else {
			n.Args = append(n.Args, tok)
		}
	}
	return n
}

// keyword returns the first word of an expression, used for block-closer
// matching ("else", "/if", "#case", ...).
func keyword(expr string) string {
	word, _, _ := strings.Cut(expr, " ")
	return word
}

func stopList(stops map[string]bool) string {
	var names []string
	for s := range stops {
		names = append(names, "{{"+s+"}}")
	}
	// Two entries at most; keep a stable order for error messages.
	if len(names) == 2 && names[0] > names[1] {
		names[0], names[1] = names[1], names[0]
	}
	return strings.Join(names, " or ")
}

// splitArgs splits on whitespace while keeping quoted strings and
// parenthesized expressions intact, so `title=(format_number v style="percent")`
// stays one token.
func splitArgs(s string) []string {
	var args []string
	var b strings.Builder
	depth := 0
	inQuote := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '(' && !inQuote:
			depth++
			b.WriteByte(c)
		case c == ')' && !inQuote:
			depth--
			b.WriteByte(c)
		case (c == ' ' || c == '\t' || c == '\n' || c == '\r') && !inQuote && depth == 0:
			if b.Len() > 0 {
				args = append(args, b.String())
				b.Reset()
			}
		default:
			b.WriteByte(c)
		}
	}
	if b.Len() > 0 {
		args = append(args, b.String())
	}
	return args
}

// unquote strips a matching pair of double or single quotes.
func unquote(s string) (string, bool) {
	if len(s) < 2 {
		return "", false
	}
	q := s[0]
	if (q != '"' && q != '\'') || s[len(s)-1] != q {
		return "", false
	}
	return s[1 : len(s)-1], true
}
