package script

// Host is how a running script reaches outside the interpreter for every
// builtin with a side effect: touches, keycodes, and clipboard paste.
// internal/runtime.Engine implements it; this package never imports
// internal/runtime, mirroring the mapping.ScriptChecker injection seam
// used to keep internal/mapping free of internal/runtime.
type Host interface {
	// Tap sends one touch (action is "down", "up", or "move") at (x, y) in
	// the mapping's original_size coordinate space.
	Tap(pointerID uint64, x, y int32, action string) error
	// Swipe sends Down at points[0], sigmoid-eased Move segments of
	// intervalMS each between consecutive points, then Up at the last
	// point, all in original_size coordinates.
	Swipe(pointerID uint64, intervalMS uint64, points [][2]int32) error
	// SendKey injects one keycode event. action is "down" or "up";
	// metastate is the device's flag spelling (e.g. "CTRL_ON|SHIFT_ON").
	SendKey(name, action, metastate string) error
	// PasteText publishes SetClipboard{paste:true} with a random sequence.
	PasteText(text string) error
	// Log records a print() call.
	Log(line string)
}

// Env is the per-invocation environment: the four preset variables plus
// whatever Host a caller wires in.
type Env struct {
	OriginalW, OriginalH int64
	CursorX, CursorY     int64
	Host                 Host
}

// Script is one parsed program, ready to be Run repeatedly against
// different Envs (spec §4.3.l parses pressed/held/released once and reuses
// the AST on every activation/tick/deactivation).
type Script struct {
	program *Program
	source  string
	empty   bool
}

// Empty reports whether the script source was blank (a no-op Run).
func (s *Script) Empty() bool { return s.empty }

// New parses src into a reusable Script. An empty src is valid and Run is
// then a no-op, matching the teacher's ScriptAST::empty shortcut for
// bindings that leave a phase blank.
func New(src string) (*Script, *Error) {
	if src == "" {
		return &Script{empty: true}, nil
	}
	prog, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return &Script{program: prog, source: src}, nil
}

// Run evaluates the script's statements in order against env.
func (s *Script) Run(env Env) *Error {
	if s.empty {
		return nil
	}
	it := &interp{source: s.source, env: env, vars: map[string]Value{
		"ORIGINAL_W": IntValue(env.OriginalW),
		"ORIGINAL_H": IntValue(env.OriginalH),
		"CURSOR_X":   IntValue(env.CursorX),
		"CURSOR_Y":   IntValue(env.CursorY),
	}}
	for _, stmt := range s.program.Stmts {
		if err := it.execStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

type interp struct {
	source string
	env    Env
	vars   map[string]Value
}

func (it *interp) execStmt(stmt *Stmt) *Error {
	switch stmt.Kind {
	case StmtLet:
		val, err := it.eval(stmt.Expr)
		if err != nil {
			return err.withOuterSpan(stmt.Span)
		}
		it.vars[stmt.Name] = val
		return nil

	case StmtAssign:
		if _, ok := it.vars[stmt.Name]; !ok {
			return newError(it.source, stmt.Span, "variable '%s' not defined", stmt.Name)
		}
		val, err := it.eval(stmt.Expr)
		if err != nil {
			return err.withOuterSpan(stmt.Span)
		}
		it.vars[stmt.Name] = val
		return nil

	case StmtExpr:
		if _, err := it.eval(stmt.Expr); err != nil {
			return err.withOuterSpan(stmt.Span)
		}
		return nil

	case StmtBlock:
		for _, s := range stmt.Stmts {
			if err := it.execStmt(s); err != nil {
				return err
			}
		}
		return nil

	case StmtIf:
		cond, err := it.eval(stmt.Expr)
		if err != nil {
			return err.withOuterSpan(stmt.Span)
		}
		if cond.Truthy() {
			return it.execStmt(stmt.Then)
		} else if stmt.Else != nil {
			return it.execStmt(stmt.Else)
		}
		return nil

	case StmtWhile:
		for {
			cond, err := it.eval(stmt.Expr)
			if err != nil {
				return err.withOuterSpan(stmt.Span)
			}
			if !cond.Truthy() {
				return nil
			}
			if err := it.execStmt(stmt.Body); err != nil {
				return err
			}
		}

	default:
		return newError(it.source, stmt.Span, "unhandled statement kind")
	}
}

func (it *interp) eval(expr *Expr) (Value, *Error) {
	switch expr.Kind {
	case ExprNumber:
		return IntValue(expr.Number), nil
	case ExprBool:
		return BoolValue(expr.Bool), nil
	case ExprStr:
		return StrValue(expr.Str), nil

	case ExprVar:
		if v, ok := it.vars[expr.Name]; ok {
			return v, nil
		}
		return Value{}, newError(it.source, expr.Span, "variable '%s' not defined", expr.Name)

	case ExprCall:
		return it.evalCall(expr)

	case ExprUnary:
		rhs, err := it.eval(expr.Rhs)
		if err != nil {
			return Value{}, err
		}
		switch expr.UnaryOp {
		case OpPlus:
			if !rhs.isNumeric() {
				return Value{}, newError(it.source, expr.Span, "unary plus operator only supports integers or booleans")
			}
			return IntValue(rhs.Int()), nil
		case OpMinus:
			if !rhs.isNumeric() {
				return Value{}, newError(it.source, expr.Span, "unary minus operator only supports integers or booleans")
			}
			return IntValue(-rhs.Int()), nil
		default: // OpNot
			return BoolValue(!rhs.Truthy()), nil
		}

	case ExprBinary:
		return it.evalBinary(expr)

	default:
		return Value{}, newError(it.source, expr.Span, "unhandled expression kind")
	}
}

func (it *interp) evalBinary(expr *Expr) (Value, *Error) {
	lhs, err := it.eval(expr.Lhs)
	if err != nil {
		return Value{}, err
	}
	rhs, err := it.eval(expr.Rhs2)
	if err != nil {
		return Value{}, err
	}

	numeric := lhs.isNumeric() && rhs.isNumeric()
	comparable := numeric || (lhs.IsStr() && rhs.IsStr())

	switch expr.BinOp {
	case OpAdd:
		if lhs.IsStr() && rhs.IsStr() {
			return StrValue(lhs.Str() + rhs.Str()), nil
		}
		if !numeric {
			return Value{}, newError(it.source, expr.Span, "addition not supported between these values")
		}
		return IntValue(lhs.Int() + rhs.Int()), nil

	case OpSub:
		if !numeric {
			return Value{}, newError(it.source, expr.Span, "subtraction not supported between these values")
		}
		return IntValue(lhs.Int() - rhs.Int()), nil

	case OpMul:
		if !numeric {
			return Value{}, newError(it.source, expr.Span, "multiplication not supported between these values")
		}
		return IntValue(lhs.Int() * rhs.Int()), nil

	case OpDiv:
		if !numeric {
			return Value{}, newError(it.source, expr.Span, "division not supported between these values")
		}
		if rhs.Int() == 0 {
			return Value{}, newError(it.source, expr.Span, "division by zero")
		}
		return IntValue(lhs.Int() / rhs.Int()), nil

	case OpMod:
		if !numeric {
			return Value{}, newError(it.source, expr.Span, "modulo not supported between these values")
		}
		if rhs.Int() == 0 {
			return Value{}, newError(it.source, expr.Span, "modulo by zero")
		}
		return IntValue(lhs.Int() % rhs.Int()), nil

	case OpAnd:
		return BoolValue(lhs.Truthy() && rhs.Truthy()), nil
	case OpOr:
		return BoolValue(lhs.Truthy() || rhs.Truthy()), nil

	case OpEq:
		if !comparable {
			return BoolValue(false), nil
		}
		return BoolValue(valuesEqual(lhs, rhs)), nil
	case OpNeq:
		if !comparable {
			return BoolValue(true), nil
		}
		return BoolValue(!valuesEqual(lhs, rhs)), nil

	case OpLt, OpLe, OpGt, OpGe:
		if !comparable {
			return Value{}, newError(it.source, expr.Span, "comparison not supported between these values")
		}
		return BoolValue(compareOp(expr.BinOp, lhs, rhs)), nil

	default:
		return Value{}, newError(it.source, expr.Span, "unhandled operator")
	}
}

func valuesEqual(lhs, rhs Value) bool {
	if lhs.IsStr() && rhs.IsStr() {
		return lhs.Str() == rhs.Str()
	}
	return lhs.Int() == rhs.Int()
}

func compareOp(op BinOp, lhs, rhs Value) bool {
	if lhs.IsStr() && rhs.IsStr() {
		l, r := lhs.Str(), rhs.Str()
		switch op {
		case OpLt:
			return l < r
		case OpLe:
			return l <= r
		case OpGt:
			return l > r
		default:
			return l >= r
		}
	}
	l, r := lhs.Int(), rhs.Int()
	switch op {
	case OpLt:
		return l < r
	case OpLe:
		return l <= r
	case OpGt:
		return l > r
	default:
		return l >= r
	}
}

func (it *interp) evalCall(expr *Expr) (Value, *Error) {
	args := make([]Value, len(expr.Args))
	for i, a := range expr.Args {
		v, err := it.eval(a)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}

	switch expr.Name {
	case "print":
		return it.callPrint(args)
	case "wait":
		return it.callWait(expr.Span, args)
	case "tap":
		return it.callTap(expr.Span, args)
	case "swipe":
		return it.callSwipe(expr.Span, args)
	case "send_key":
		return it.callSendKey(expr.Span, args)
	case "paste_text":
		return it.callPasteText(expr.Span, args)
	default:
		return Value{}, newError(it.source, expr.Span, "function '%s' not defined", expr.Name)
	}
}

func (it *interp) errAt(span Span, format string, args ...any) *Error {
	return newError(it.source, span, format, args...)
}
