package lang

import (
	"github.com/pkg/errors"

	"github.com/relalg/robdd"
	"github.com/relalg/robdd/relation"
)

// Evaluation errors, grounded on original_source/src/eval.rs's Error enum.
var (
	ErrArityMismatch       = errors.New("lang: argument count mismatch")
	ErrDomainMismatch      = errors.New("lang: relation domains do not match")
	ErrUnknownLocal        = errors.New("lang: unknown local variable")
	ErrUninitializedLocal  = errors.New("lang: local variable read before assignment")
	ErrUnknownFunction     = errors.New("lang: unknown function")
	ErrProcedureNoReturn   = errors.New("lang: procedure did not reach a RETURN")
)

type builtinFunc func(m *robdd.Manager, args []relation.Relation) (relation.Relation, error)

type function struct {
	builtin builtinFunc
	custom  Item
}

// Globals holds every function and procedure a program can call: the
// fixed relation-algebra builtins of eval.rs's register_builtins, plus
// whatever a loaded Program defines via Extend.
type Globals struct {
	m         *robdd.Manager
	functions map[string]function
}

// NewGlobals creates a Globals bound to m with the standard builtins
// registered: TRUE/true, FALSE/false, L (universal of an argument's
// domain), O (empty of an argument's domain), I (identity), eq.
func NewGlobals(m *robdd.Manager) *Globals {
	g := &Globals{m: m, functions: make(map[string]function)}
	g.registerBuiltins()
	return g
}

func (g *Globals) registerBuiltins() {
	trueFn := function{builtin: func(m *robdd.Manager, args []relation.Relation) (relation.Relation, error) {
		if len(args) != 0 {
			return relation.Relation{}, ErrArityMismatch
		}
		return relation.TrueRelation(m)
	}}
	falseFn := function{builtin: func(m *robdd.Manager, args []relation.Relation) (relation.Relation, error) {
		if len(args) != 0 {
			return relation.Relation{}, ErrArityMismatch
		}
		return relation.FalseRelation(m), nil
	}}
	g.functions["TRUE"] = trueFn
	g.functions["true"] = trueFn
	g.functions["FALSE"] = falseFn
	g.functions["false"] = falseFn

	g.functions["L"] = function{builtin: func(m *robdd.Manager, args []relation.Relation) (relation.Relation, error) {
		if len(args) != 1 {
			return relation.Relation{}, ErrArityMismatch
		}
		return relation.Universal(m, args[0].DomainX(), args[0].DomainY())
	}}
	g.functions["O"] = function{builtin: func(m *robdd.Manager, args []relation.Relation) (relation.Relation, error) {
		if len(args) != 1 {
			return relation.Relation{}, ErrArityMismatch
		}
		return relation.Empty(m, args[0].DomainX(), args[0].DomainY()), nil
	}}
	g.functions["I"] = function{builtin: func(m *robdd.Manager, args []relation.Relation) (relation.Relation, error) {
		if len(args) != 1 {
			return relation.Relation{}, ErrArityMismatch
		}
		r := args[0]
		if r.DomainX() != r.DomainY() {
			return relation.Relation{}, ErrDomainMismatch
		}
		return relation.Identity(m, r.DomainX())
	}}
	g.functions["eq"] = function{builtin: func(m *robdd.Manager, args []relation.Relation) (relation.Relation, error) {
		if len(args) != 2 {
			return relation.Relation{}, ErrArityMismatch
		}
		lhs, rhs := args[0], args[1]
		if lhs.DomainX() != rhs.DomainX() || lhs.DomainY() != rhs.DomainY() {
			return relation.Relation{}, ErrDomainMismatch
		}
		if lhs.Equal(rhs) {
			return relation.TrueRelation(m)
		}
		return relation.FalseRelation(m), nil
	}}
}

// Extend registers a parsed program's procedures and functions, shadowing
// any builtin or previously-loaded item of the same name.
func (g *Globals) Extend(items []Item) {
	for _, item := range items {
		g.functions[item.itemName()] = function{custom: item}
	}
}

func (f function) call(g *Globals, args []relation.Relation) (relation.Relation, error) {
	if f.builtin != nil {
		return f.builtin(g.m, args)
	}
	switch it := f.custom.(type) {
	case *Procedure:
		if len(it.Params) != len(args) {
			return relation.Relation{}, ErrArityMismatch
		}
		locals := newLocals()
		defer locals.releaseAll()
		for i, param := range it.Params {
			locals.assign(param, args[i].Clone())
		}
		for _, decl := range it.Decls {
			locals.declare(decl)
		}
		result, returned, err := evalStmts(g, locals, it.Body)
		if err != nil {
			return relation.Relation{}, err
		}
		if !returned {
			return relation.Relation{}, ErrProcedureNoReturn
		}
		return result, nil
	case *FunctionDef:
		if len(it.Params) != len(args) {
			return relation.Relation{}, ErrArityMismatch
		}
		locals := newLocals()
		defer locals.releaseAll()
		for i, param := range it.Params {
			locals.assign(param, args[i].Clone())
		}
		return Eval(g, locals, it.Value)
	default:
		return relation.Relation{}, ErrUnknownFunction
	}
}

// locals is the per-call variable environment: a declared-but-unset
// variable maps to a nil entry, matching eval.rs's Locals'
// HashMap<String, Option<Relation>>.
type locals struct {
	relations map[string]*relation.Relation
}

func newLocals() *locals {
	return &locals{relations: make(map[string]*relation.Relation)}
}

func (l *locals) declare(name string) {
	l.relations[name] = nil
}

// assign stores value under name, releasing whatever relation name
// previously held so assignment never leaks a reference.
func (l *locals) assign(name string, value relation.Relation) {
	if old, ok := l.relations[name]; ok && old != nil {
		old.Release()
	}
	v := value
	l.relations[name] = &v
}

// releaseAll drops every relation still held by the environment. Every
// value Eval hands back to a caller is independently owned (idents are
// cloned on read), so this is always safe to call once a call frame is
// done with its locals.
func (l *locals) releaseAll() {
	for _, v := range l.relations {
		if v != nil {
			v.Release()
		}
	}
}

// evalStmts runs body in order, short-circuiting on the first RETURN or
// error. The bool result reports whether a RETURN was reached.
func evalStmts(g *Globals, l *locals, body []Stmt) (relation.Relation, bool, error) {
	for _, stmt := range body {
		result, returned, err := evalStmt(g, l, stmt)
		if err != nil || returned {
			return result, returned, err
		}
	}
	return relation.Relation{}, false, nil
}

func evalStmt(g *Globals, l *locals, stmt Stmt) (relation.Relation, bool, error) {
	switch s := stmt.(type) {
	case *AssignStmt:
		if _, declared := l.relations[s.Lhs]; !declared {
			return relation.Relation{}, false, errors.Wrapf(ErrUnknownLocal, "%q", s.Lhs)
		}
		value, err := Eval(g, l, s.Rhs)
		if err != nil {
			return relation.Relation{}, false, err
		}
		l.assign(s.Lhs, value)
		return relation.Relation{}, false, nil

	case *WhileStmt:
		for {
			cond, err := Eval(g, l, s.Cond)
			if err != nil {
				return relation.Relation{}, false, err
			}
			stop := cond.IsEmpty()
			cond.Release()
			if stop {
				return relation.Relation{}, false, nil
			}
			result, returned, err := evalStmts(g, l, s.Body)
			if err != nil || returned {
				return result, returned, err
			}
		}

	case *ReturnStmt:
		value, err := Eval(g, l, s.Value)
		if err != nil {
			return relation.Relation{}, false, err
		}
		return value, true, nil

	case *IfStmt:
		cond, err := Eval(g, l, s.Cond)
		if err != nil {
			return relation.Relation{}, false, err
		}
		truthy := !cond.IsEmpty()
		cond.Release()
		if truthy {
			return evalStmts(g, l, s.Body)
		}
		if s.ElseBody != nil {
			return evalStmts(g, l, s.ElseBody)
		}
		return relation.Relation{}, false, nil

	default:
		return relation.Relation{}, false, errors.Errorf("lang: unknown statement type %T", stmt)
	}
}

// Eval evaluates expr against locals, returning an independently owned
// Relation the caller must eventually Release.
func Eval(g *Globals, l *locals, expr Expr) (relation.Relation, error) {
	switch e := expr.(type) {
	case *IdentExpr:
		v, declared := l.relations[e.Ident]
		if !declared {
			return relation.Relation{}, errors.Wrapf(ErrUnknownLocal, "%q", e.Ident)
		}
		if v == nil {
			return relation.Relation{}, errors.Wrapf(ErrUninitializedLocal, "%q", e.Ident)
		}
		return v.Clone(), nil

	case *CallExpr:
		fn, ok := g.functions[e.Func]
		if !ok {
			return relation.Relation{}, errors.Wrapf(ErrUnknownFunction, "%q", e.Func)
		}
		args := make([]relation.Relation, len(e.Args))
		for i, a := range e.Args {
			v, err := Eval(g, l, a)
			if err != nil {
				for _, done := range args[:i] {
					done.Release()
				}
				return relation.Relation{}, err
			}
			args[i] = v
		}
		result, err := fn.call(g, args)
		for _, a := range args {
			a.Release()
		}
		return result, err

	case *NegateExpr:
		v, err := Eval(g, l, e.Value)
		if err != nil {
			return relation.Relation{}, err
		}
		defer v.Release()
		return v.Complement()

	case *TransposeExpr:
		v, err := Eval(g, l, e.Value)
		if err != nil {
			return relation.Relation{}, err
		}
		defer v.Release()
		return v.Converse()

	case *BinExpr:
		lhs, err := Eval(g, l, e.Left)
		if err != nil {
			return relation.Relation{}, err
		}
		rhs, err := Eval(g, l, e.Right)
		if err != nil {
			lhs.Release()
			return relation.Relation{}, err
		}
		defer lhs.Release()
		defer rhs.Release()
		switch e.Op {
		case OpUnion:
			if lhs.DomainX() != rhs.DomainX() || lhs.DomainY() != rhs.DomainY() {
				return relation.Relation{}, ErrDomainMismatch
			}
			return lhs.Union(rhs)
		case OpIntersect:
			if lhs.DomainX() != rhs.DomainX() || lhs.DomainY() != rhs.DomainY() {
				return relation.Relation{}, ErrDomainMismatch
			}
			return lhs.Intersect(rhs)
		case OpCompose:
			if lhs.DomainY() != rhs.DomainX() {
				return relation.Relation{}, ErrDomainMismatch
			}
			return lhs.Compose(rhs)
		case OpSum:
			return lhs.DirectSum(rhs)
		default:
			return relation.Relation{}, errors.Errorf("lang: unknown binary operator %v", e.Op)
		}

	default:
		return relation.Relation{}, errors.Errorf("lang: unknown expression type %T", expr)
	}
}

// EvalExpr evaluates expr with no local variables declared — only the
// builtins and whatever procedures/functions g has been Extended with are
// in scope. Intended for tools (a REPL) that evaluate one relation
// expression at a time, outside of any procedure body.
func EvalExpr(g *Globals, expr Expr) (relation.Relation, error) {
	l := newLocals()
	defer l.releaseAll()
	return Eval(g, l, expr)
}

// Run loads program's items into g and invokes the function or procedure
// named name with args, returning an owned Relation. Run borrows args —
// the caller keeps its own references and must Release them.
func Run(g *Globals, program *Program, name string, args []relation.Relation) (relation.Relation, error) {
	g.Extend(program.Items)
	fn, ok := g.functions[name]
	if !ok {
		return relation.Relation{}, errors.Wrapf(ErrUnknownFunction, "%q", name)
	}
	return fn.call(g, args)
}
