package lang

import "github.com/pkg/errors"

// parser is a hand-written recursive-descent parser mirroring the chumsky
// combinator grammar of original_source/src/parser.rs.
type parser struct {
	toks []Token
	pos  int
}

// Parse lexes and parses src into a Program.
func Parse(src string) (*Program, error) {
	toks, err := Lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	prog, err := p.parseProgram()
	if err != nil {
		return nil, err
	}
	if !p.atEOF() {
		return nil, errors.Errorf("lang: unexpected trailing input at byte %d", p.peek().Pos)
	}
	return prog, nil
}

// ParseExpr lexes and parses a single relation expression, for tools (such
// as a REPL) that evaluate one expression at a time rather than a whole
// Program.
func ParseExpr(src string) (Expr, error) {
	toks, err := Lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.atEOF() {
		return nil, errors.Errorf("lang: unexpected trailing input at byte %d", p.peek().Pos)
	}
	return expr, nil
}

func (p *parser) peek() Token { return p.toks[p.pos] }
func (p *parser) atEOF() bool { return p.peek().Kind == TokenEOF }

func (p *parser) advance() Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) peekIs(kind TokenKind, text string) bool {
	t := p.peek()
	return t.Kind == kind && t.Text == text
}

func (p *parser) expectCtrl(c byte) error {
	if !p.peekIs(TokenCtrl, string(c)) {
		t := p.peek()
		return errors.Errorf("lang: expected %q at byte %d, found %q", string(c), t.Pos, t.Text)
	}
	p.advance()
	return nil
}

func (p *parser) expectOp(c byte) error {
	if !p.peekIs(TokenOp, string(c)) {
		t := p.peek()
		return errors.Errorf("lang: expected %q at byte %d, found %q", string(c), t.Pos, t.Text)
	}
	p.advance()
	return nil
}

func (p *parser) expectKind(k TokenKind, name string) error {
	if p.peek().Kind != k {
		t := p.peek()
		return errors.Errorf("lang: expected %s at byte %d", name, t.Pos)
	}
	p.advance()
	return nil
}

func (p *parser) expectIdent() (string, error) {
	t := p.peek()
	if t.Kind != TokenIdent {
		return "", errors.Errorf("lang: expected identifier at byte %d", t.Pos)
	}
	p.advance()
	return t.Text, nil
}

func (p *parser) parseProgram() (*Program, error) {
	var items []Item
	for !p.atEOF() {
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return &Program{Items: items}, nil
}

func (p *parser) parseItem() (Item, error) {
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}

	if p.peekIs(TokenOp, "=") {
		p.advance()
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectCtrl('.'); err != nil {
			return nil, err
		}
		return &FunctionDef{Name: name, Params: params, Value: value}, nil
	}

	var decls []string
	if p.peek().Kind == TokenDecl {
		p.advance()
		decls, err = p.parseIdentList()
		if err != nil {
			return nil, err
		}
	}
	if err := p.expectKind(TokenBeg, "BEG"); err != nil {
		return nil, err
	}
	body, err := p.parseStmtsUntil(TokenEnd)
	if err != nil {
		return nil, err
	}
	if err := p.expectKind(TokenEnd, "END"); err != nil {
		return nil, err
	}
	if err := p.expectCtrl('.'); err != nil {
		return nil, err
	}
	return &Procedure{Name: name, Params: params, Decls: decls, Body: body}, nil
}

func (p *parser) parseParams() ([]string, error) {
	if err := p.expectCtrl('('); err != nil {
		return nil, err
	}
	var params []string
	if !p.peekIs(TokenCtrl, ")") {
		list, err := p.parseIdentList()
		if err != nil {
			return nil, err
		}
		params = list
	}
	if err := p.expectCtrl(')'); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *parser) parseIdentList() ([]string, error) {
	var out []string
	for {
		id, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		out = append(out, id)
		if p.peekIs(TokenCtrl, ",") {
			p.advance()
			continue
		}
		break
	}
	return out, nil
}

func (p *parser) parseStmtsUntil(stops ...TokenKind) ([]Stmt, error) {
	var stmts []Stmt
	for !p.atStop(stops) {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

func (p *parser) atStop(stops []TokenKind) bool {
	k := p.peek().Kind
	for _, s := range stops {
		if k == s {
			return true
		}
	}
	return false
}

func (p *parser) parseStmt() (Stmt, error) {
	switch p.peek().Kind {
	case TokenWhile:
		p.advance()
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectKind(TokenDo, "DO"); err != nil {
			return nil, err
		}
		body, err := p.parseStmtsUntil(TokenOd)
		if err != nil {
			return nil, err
		}
		if err := p.expectKind(TokenOd, "OD"); err != nil {
			return nil, err
		}
		return &WhileStmt{Cond: cond, Body: body}, nil

	case TokenReturn:
		p.advance()
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ReturnStmt{Value: value}, nil

	case TokenIf:
		p.advance()
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectKind(TokenThen, "THEN"); err != nil {
			return nil, err
		}
		body, err := p.parseStmtsUntil(TokenElse, TokenFi)
		if err != nil {
			return nil, err
		}
		var elseBody []Stmt
		if p.peek().Kind == TokenElse {
			p.advance()
			elseBody, err = p.parseStmtsUntil(TokenFi)
			if err != nil {
				return nil, err
			}
		}
		if err := p.expectKind(TokenFi, "FI"); err != nil {
			return nil, err
		}
		return &IfStmt{Cond: cond, Body: body, ElseBody: elseBody}, nil

	case TokenIdent:
		lhs, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp('='); err != nil {
			return nil, err
		}
		rhs, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &AssignStmt{Lhs: lhs, Rhs: rhs}, nil

	default:
		t := p.peek()
		return nil, errors.Errorf("lang: unexpected token at byte %d", t.Pos)
	}
}

// parseExpr parses a single optional binary operator (|, &, +) applied to
// two products — the grammar never chains outer operators, mirroring
// parser.rs's bin_expr.
func (p *parser) parseExpr() (Expr, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	if p.peek().Kind == TokenOp {
		var op BinOp
		switch p.peek().Text {
		case "|":
			op = OpUnion
		case "&":
			op = OpIntersect
		case "+":
			op = OpSum
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		return &BinExpr{Left: left, Op: op, Right: right}, nil
	}
	return left, nil
}

// parseProduct parses a chain of terms separated by '*', left-folded into
// nested Compose expressions.
func (p *parser) parseProduct() (Expr, error) {
	result, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.peekIs(TokenOp, "*") {
		p.advance()
		next, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		result = &BinExpr{Left: result, Op: OpCompose, Right: next}
	}
	return result, nil
}

func (p *parser) parseTerm() (Expr, error) {
	if p.peekIs(TokenOp, "-") {
		p.advance()
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &NegateExpr{Value: value}, nil
	}
	return p.parseInner()
}

// parseInner parses a parenthesized expression, call, or identifier,
// followed by an optional postfix '^' transpose.
func (p *parser) parseInner() (Expr, error) {
	var value Expr
	switch {
	case p.peekIs(TokenCtrl, "("):
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectCtrl(')'); err != nil {
			return nil, err
		}
		value = inner

	case p.peek().Kind == TokenIdent:
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if p.peekIs(TokenCtrl, "(") {
			p.advance()
			var args []Expr
			if !p.peekIs(TokenCtrl, ")") {
				for {
					arg, err := p.parseExpr()
					if err != nil {
						return nil, err
					}
					args = append(args, arg)
					if p.peekIs(TokenCtrl, ",") {
						p.advance()
						continue
					}
					break
				}
			}
			if err := p.expectCtrl(')'); err != nil {
				return nil, err
			}
			value = &CallExpr{Func: name, Args: args}
		} else {
			value = &IdentExpr{Ident: name}
		}

	default:
		t := p.peek()
		return nil, errors.Errorf("lang: unexpected token at byte %d", t.Pos)
	}

	if p.peekIs(TokenOp, "^") {
		p.advance()
		value = &TransposeExpr{Value: value}
	}
	return value, nil
}
