// Package lang implements the toy relational-algebra language of
// original_source/src/ast.rs, lexer.rs, parser.rs and eval.rs: variable
// declarations, assignment, control flow, procedures, pure functions, and
// relation expressions (union, intersect, compose, transpose, negate,
// sum), evaluated directly against the relation package.
package lang

// Program is a parsed source file: an ordered list of procedure and
// function definitions.
type Program struct {
	Items []Item
}

// Item is either a Procedure or a FunctionDef.
type Item interface {
	itemName() string
}

// Procedure is a named, imperative relation-algebra routine: it declares
// local variables and returns via an explicit RETURN statement.
type Procedure struct {
	Name   string
	Params []string
	Decls  []string
	Body   []Stmt
}

func (p *Procedure) itemName() string { return p.Name }

// FunctionDef is a named routine whose body is a single expression.
type FunctionDef struct {
	Name   string
	Params []string
	Value  Expr
}

func (f *FunctionDef) itemName() string { return f.Name }

// Stmt is one statement within a procedure body.
type Stmt interface {
	stmtNode()
}

// AssignStmt assigns the value of Rhs to the already-declared local Lhs.
type AssignStmt struct {
	Lhs string
	Rhs Expr
}

// WhileStmt repeats Body while Cond evaluates to a non-empty relation.
type WhileStmt struct {
	Cond Expr
	Body []Stmt
}

// ReturnStmt ends the enclosing procedure with Value as its result.
type ReturnStmt struct {
	Value Expr
}

// IfStmt runs Body when Cond is non-empty, ElseBody (if present) otherwise.
type IfStmt struct {
	Cond     Expr
	Body     []Stmt
	ElseBody []Stmt
}

func (*AssignStmt) stmtNode() {}
func (*WhileStmt) stmtNode()  {}
func (*ReturnStmt) stmtNode() {}
func (*IfStmt) stmtNode()    {}

// Expr is a relation-algebra expression.
type Expr interface {
	exprNode()
}

// IdentExpr reads a local variable's current value.
type IdentExpr struct {
	Ident string
}

// CallExpr calls a builtin or user-defined function/procedure.
type CallExpr struct {
	Func string
	Args []Expr
}

// NegateExpr is relation complement, written with a prefix '-'.
type NegateExpr struct {
	Value Expr
}

// TransposeExpr is relation converse, written with a postfix '^'.
type TransposeExpr struct {
	Value Expr
}

// BinOp names one of the four binary relation operators.
type BinOp int

const (
	OpUnion BinOp = iota
	OpIntersect
	OpCompose
	OpSum
)

// BinExpr applies Op to Left and Right.
type BinExpr struct {
	Left  Expr
	Op    BinOp
	Right Expr
}

func (*IdentExpr) exprNode()     {}
func (*CallExpr) exprNode()      {}
func (*NegateExpr) exprNode()    {}
func (*TransposeExpr) exprNode() {}
func (*BinExpr) exprNode()       {}
