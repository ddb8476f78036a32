package script

// parser is a recursive-descent parser over the grammar in spec §4.4: a
// straight precedence chain or -> and -> eq -> cmp -> sum -> prod -> unary
// -> atom, one statement kind per keyword, curly-brace blocks.
type parser struct {
	lex *lexer
	cur token
	src string
}

// Parse lexes and parses src into a Program. A parse error aborts parsing
// and is returned as-is (the teacher constructs a ScriptAST the same way:
// parse failure is reported immediately, never partially).
func Parse(src string) (*Program, *Error) {
	p := &parser{lex: newLexer(src), src: src}
	if err := p.advance(); err != nil {
		return nil, err
	}

	var stmts []*Stmt
	for p.cur.kind != tokEOF {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return &Program{Stmts: stmts}, nil
}

func (p *parser) advance() *Error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *parser) expect(k tokenKind, what string) (token, *Error) {
	if p.cur.kind != k {
		return token{}, newError(p.src, p.cur.span, "expected %s", what)
	}
	tok := p.cur
	if err := p.advance(); err != nil {
		return token{}, err
	}
	return tok, nil
}

func (p *parser) parseStmt() (*Stmt, *Error) {
	start := p.cur.span
	switch p.cur.kind {
	case tokLet:
		if err := p.advance(); err != nil {
			return nil, err
		}
		name, err := p.expect(tokIdent, "identifier")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokAssign, "'='"); err != nil {
			return nil, err
		}
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		end, err := p.expect(tokSemi, "';'")
		if err != nil {
			return nil, err
		}
		return &Stmt{Kind: StmtLet, Name: name.text, Expr: expr, Span: joinSpan(start, end.span)}, nil

	case tokIdent:
		// Either "ident = expr;" (assign) or an expr-statement starting
		// with a call/var. Peek by lexing ahead is avoided: an identifier
		// followed directly by '=' (not '==') is an assignment.
		save := *p.lex
		name := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.kind == tokAssign {
			if err := p.advance(); err != nil {
				return nil, err
			}
			expr, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			end, err := p.expect(tokSemi, "';'")
			if err != nil {
				return nil, err
			}
			return &Stmt{Kind: StmtAssign, Name: name.text, Expr: expr, Span: joinSpan(start, end.span)}, nil
		}
		*p.lex = save
		p.cur = name
		return p.parseExprStmt()

	case tokIf:
		return p.parseIf()

	case tokWhile:
		return p.parseWhile()

	case tokLBrace:
		return p.parseBlock()

	default:
		return p.parseExprStmt()
	}
}

func (p *parser) parseExprStmt() (*Stmt, *Error) {
	start := p.cur.span
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	end, err := p.expect(tokSemi, "';'")
	if err != nil {
		return nil, err
	}
	return &Stmt{Kind: StmtExpr, Expr: expr, Span: joinSpan(start, end.span)}, nil
}

func (p *parser) parseBlock() (*Stmt, *Error) {
	open, err := p.expect(tokLBrace, "'{'")
	if err != nil {
		return nil, err
	}
	var stmts []*Stmt
	for p.cur.kind != tokRBrace {
		if p.cur.kind == tokEOF {
			return nil, newError(p.src, p.cur.span, "unterminated block, expected '}'")
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	closeBrace, err := p.expect(tokRBrace, "'}'")
	if err != nil {
		return nil, err
	}
	return &Stmt{Kind: StmtBlock, Stmts: stmts, Span: joinSpan(open.span, closeBrace.span)}, nil
}

func (p *parser) parseIf() (*Stmt, *Error) {
	start := p.cur.span
	if err := p.advance(); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var elseStmt *Stmt
	end := then.Span
	if p.cur.kind == tokElse {
		if err := p.advance(); err != nil {
			return nil, err
		}
		elseStmt, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
		end = elseStmt.Span
	}
	return &Stmt{Kind: StmtIf, Expr: cond, Then: then, Else: elseStmt, Span: joinSpan(start, end)}, nil
}

func (p *parser) parseWhile() (*Stmt, *Error) {
	start := p.cur.span
	if err := p.advance(); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &Stmt{Kind: StmtWhile, Expr: cond, Body: body, Span: joinSpan(start, body.Span)}, nil
}

func (p *parser) parseExpr() (*Expr, *Error) { return p.parseOr() }

func (p *parser) parseOr() (*Expr, *Error) {
	return p.parseBinaryChain(p.parseAnd, map[tokenKind]BinOp{tokOrOr: OpOr})
}

func (p *parser) parseAnd() (*Expr, *Error) {
	return p.parseBinaryChain(p.parseEq, map[tokenKind]BinOp{tokAndAnd: OpAnd})
}

func (p *parser) parseEq() (*Expr, *Error) {
	return p.parseBinaryChain(p.parseCmp, map[tokenKind]BinOp{tokEqEq: OpEq, tokNeq: OpNeq})
}

func (p *parser) parseCmp() (*Expr, *Error) {
	return p.parseBinaryChain(p.parseSum, map[tokenKind]BinOp{
		tokLt: OpLt, tokLe: OpLe, tokGt: OpGt, tokGe: OpGe,
	})
}

func (p *parser) parseSum() (*Expr, *Error) {
	return p.parseBinaryChain(p.parseProd, map[tokenKind]BinOp{tokPlus: OpAdd, tokMinus: OpSub})
}

func (p *parser) parseProd() (*Expr, *Error) {
	return p.parseBinaryChain(p.parseUnary, map[tokenKind]BinOp{
		tokStar: OpMul, tokSlash: OpDiv, tokPercent: OpMod,
	})
}

func (p *parser) parseBinaryChain(next func() (*Expr, *Error), ops map[tokenKind]BinOp) (*Expr, *Error) {
	lhs, err := next()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := ops[p.cur.kind]
		if !ok {
			return lhs, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := next()
		if err != nil {
			return nil, err
		}
		lhs = &Expr{Kind: ExprBinary, BinOp: op, Lhs: lhs, Rhs2: rhs, Span: joinSpan(lhs.Span, rhs.Span)}
	}
}

func (p *parser) parseUnary() (*Expr, *Error) {
	start := p.cur.span
	var op UnaryOp
	switch p.cur.kind {
	case tokPlus:
		op = OpPlus
	case tokMinus:
		op = OpMinus
	case tokBang:
		op = OpNot
	default:
		return p.parseAtom()
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	rhs, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	return &Expr{Kind: ExprUnary, UnaryOp: op, Rhs: rhs, Span: joinSpan(start, rhs.Span)}, nil
}

func (p *parser) parseAtom() (*Expr, *Error) {
	tok := p.cur
	switch tok.kind {
	case tokNumber:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Expr{Kind: ExprNumber, Number: tok.num, Span: tok.span}, nil

	case tokTrue, tokFalse:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Expr{Kind: ExprBool, Bool: tok.kind == tokTrue, Span: tok.span}, nil

	case tokString:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Expr{Kind: ExprStr, Str: tok.text, Span: tok.span}, nil

	case tokIdent:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.kind != tokLParen {
			return &Expr{Kind: ExprVar, Name: tok.text, Span: tok.span}, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		var args []*Expr
		for p.cur.kind != tokRParen {
			if len(args) > 0 {
				if _, err := p.expect(tokComma, "','"); err != nil {
					return nil, err
				}
			}
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		end, err := p.expect(tokRParen, "')'")
		if err != nil {
			return nil, err
		}
		return &Expr{Kind: ExprCall, Name: tok.text, Args: args, Span: joinSpan(tok.span, end.span)}, nil

	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return expr, nil

	default:
		return nil, newError(p.src, tok.span, "unexpected token, expected an expression")
	}
}

func joinSpan(a, b Span) Span {
	return Span{StartLine: a.StartLine, StartCol: a.StartCol, EndLine: b.EndLine, EndCol: b.EndCol}
}
